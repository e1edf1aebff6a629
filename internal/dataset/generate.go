package dataset

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Generation constants for the synthetic panel. The treatment effect is known
// so downstream estimation can be sanity-checked against it.
const (
	TrueTau    = 0.5
	xCoef      = 0.8
	firstYear  = 2010
	lastYear   = 2020
	minFirms   = 50
	firmFEStep = 0.05
	yearFEStep = 0.02
)

// Generate produces a synthetic panel with a known treatment effect.
// Identical seed and nRows always yield an identical frame: treatment
// assignment uses firm-level heterogeneity so clustered standard errors have
// something to correct for.
func Generate(nRows int, seed int64) *Frame {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	nFirms := minFirms
	if byRows := int(math.Sqrt(float64(nRows))); byRows > nFirms {
		nFirms = byRows
	}

	firmID := make([]int, nRows)
	year := make([]int, nRows)
	x := make([]float64, nRows)
	treat := make([]int, nRows)
	y := make([]float64, nRows)

	yearSum := 0.0
	for i := 0; i < nRows; i++ {
		firmID[i] = rng.IntN(nFirms)
		year[i] = firstYear + rng.IntN(lastYear-firstYear+1)
		x[i] = rng.NormFloat64()
		yearSum += float64(year[i])
	}
	yearMean := yearSum / float64(nRows)

	for i := 0; i < nRows; i++ {
		// Treatment assignment with firm heterogeneity.
		logit := 0.3*x[i] + float64(firmID[i]%7-3)*0.2
		p := 1 / (1 + math.Exp(-logit))
		if rng.Float64() < p {
			treat[i] = 1
		}

		firmFE := float64(firmID[i]%10-5) * firmFEStep
		yearFE := (float64(year[i]) - yearMean) * yearFEStep
		eps := rng.NormFloat64()

		y[i] = TrueTau*float64(treat[i]) + xCoef*x[i] + firmFE + yearFE + eps
	}

	frame := &Frame{FirmID: firmID, Year: year, X: x, Treat: treat, Y: y}
	return aggregateUnique(frame)
}

// aggregateUnique enforces unique (firm_id, year) keys: x and y are averaged,
// treat takes the maximum. Rows come out sorted by (firm_id, year).
func aggregateUnique(f *Frame) *Frame {
	type key struct{ firm, year int }
	type acc struct {
		xSum, ySum float64
		treat      int
		n          int
	}

	groups := make(map[key]*acc, f.Len())
	keys := make([]key, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		k := key{f.FirmID[i], f.Year[i]}
		g, ok := groups[k]
		if !ok {
			g = &acc{}
			groups[k] = g
			keys = append(keys, k)
		}
		g.xSum += f.X[i]
		g.ySum += f.Y[i]
		if f.Treat[i] > g.treat {
			g.treat = f.Treat[i]
		}
		g.n++
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].firm != keys[j].firm {
			return keys[i].firm < keys[j].firm
		}
		return keys[i].year < keys[j].year
	})

	out := &Frame{
		FirmID: make([]int, len(keys)),
		Year:   make([]int, len(keys)),
		X:      make([]float64, len(keys)),
		Treat:  make([]int, len(keys)),
		Y:      make([]float64, len(keys)),
	}
	for i, k := range keys {
		g := groups[k]
		out.FirmID[i] = k.firm
		out.Year[i] = k.year
		out.X[i] = g.xSum / float64(g.n)
		out.Treat[i] = g.treat
		out.Y[i] = g.ySum / float64(g.n)
	}
	return out
}
