package estimate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/dataset"
)

// exactFrame builds a noiseless frame with y = 1 + 2*treat + 3*x.
func exactFrame() *dataset.Frame {
	f := &dataset.Frame{}
	year := 2010
	for firm := 0; firm < 10; firm++ {
		for i := 0; i < 5; i++ {
			x := float64(firm)*0.3 - float64(i)*0.7
			treat := (firm + i) % 2
			f.FirmID = append(f.FirmID, firm)
			f.Year = append(f.Year, year+i)
			f.X = append(f.X, x)
			f.Treat = append(f.Treat, treat)
			f.Y = append(f.Y, 1+2*float64(treat)+3*x)
		}
	}
	return f
}

func TestFitRecoversExactCoefficients(t *testing.T) {
	formula, err := ParseFormula("y ~ treat + x")
	require.NoError(t, err)

	for _, covType := range []config.CovType{config.CovNonRobust, config.CovHC1, config.CovCluster} {
		res, err := Fit(exactFrame(), formula, covType)
		require.NoError(t, err, "cov type %s", covType)

		intercept, ok := res.TermByName("Intercept")
		require.True(t, ok)
		treat, ok := res.TermByName("treat")
		require.True(t, ok)
		x, ok := res.TermByName("x")
		require.True(t, ok)

		assert.InDelta(t, 1.0, intercept.Coef, 1e-8)
		assert.InDelta(t, 2.0, treat.Coef, 1e-8)
		assert.InDelta(t, 3.0, x.Coef, 1e-8)
		assert.InDelta(t, 1.0, res.R2, 1e-10)
	}
}

func TestFitDegreesOfFreedom(t *testing.T) {
	formula, err := ParseFormula("y ~ treat + x")
	require.NoError(t, err)
	f := exactFrame()

	res, err := Fit(f, formula, config.CovNonRobust)
	require.NoError(t, err)
	assert.Equal(t, f.Len()-3, res.DF)
	assert.Zero(t, res.NClusters)

	res, err = Fit(f, formula, config.CovCluster)
	require.NoError(t, err)
	assert.Equal(t, 10, res.NClusters)
	assert.Equal(t, 9, res.DF)
}

func TestFitOnGeneratedPanel(t *testing.T) {
	frame := dataset.Generate(20000, 42)
	formula, err := ParseFormula("y ~ treat + x")
	require.NoError(t, err)

	res, err := Fit(frame, formula, config.CovCluster)
	require.NoError(t, err)

	treat, ok := res.TermByName("treat")
	require.True(t, ok)

	// The generator embeds tau = 0.5 with mild confounding from firm effects.
	assert.InDelta(t, dataset.TrueTau, treat.Coef, 0.25)
	assert.Greater(t, treat.StdErr, 0.0)
	assert.Less(t, treat.PValue, 0.05)
	assert.Equal(t, frame.Len(), res.NObs)
	assert.Greater(t, res.NClusters, 1)
}

func TestFitPValueCalibration(t *testing.T) {
	frame := dataset.Generate(10000, 7)
	formula, err := ParseFormula("y ~ treat + x")
	require.NoError(t, err)

	res, err := Fit(frame, formula, config.CovHC1)
	require.NoError(t, err)

	for _, term := range res.Terms {
		assert.GreaterOrEqual(t, term.PValue, 0.0)
		assert.LessOrEqual(t, term.PValue, 1.0)
		assert.False(t, math.IsNaN(term.StdErr), "term %s", term.Name)
		assert.Less(t, term.CILow, term.CIHigh, "term %s", term.Name)
	}
}

func TestFitErrors(t *testing.T) {
	formula, err := ParseFormula("y ~ treat + x")
	require.NoError(t, err)

	// Too few observations.
	small := &dataset.Frame{
		FirmID: []int{0, 1},
		Year:   []int{2010, 2010},
		X:      []float64{1, 2},
		Treat:  []int{0, 1},
		Y:      []float64{1, 2},
	}
	_, err = Fit(small, formula, config.CovNonRobust)
	assert.Error(t, err)

	// Unknown regressor.
	bad, err := ParseFormula("y ~ treat + z")
	require.NoError(t, err)
	_, err = Fit(exactFrame(), bad, config.CovNonRobust)
	assert.Error(t, err)

	// Single cluster cannot be clustered.
	f := exactFrame()
	for i := range f.FirmID {
		f.FirmID[i] = 0
	}
	// Re-key years to keep rows distinct.
	for i := range f.Year {
		f.Year[i] = 2000 + i
	}
	_, err = Fit(f, formula, config.CovCluster)
	assert.Error(t, err)
}
