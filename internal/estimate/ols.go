// Package estimate fits the evaluation model on a validated panel frame.
package estimate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/dataset"
	apperrors "git.home.luguber.info/inful/housing-dpe/internal/errors"
)

// Critical value used for the reported 95% confidence intervals.
const ciZ = 1.96

// Term holds per-coefficient estimation results.
type Term struct {
	Name   string  `json:"name"`
	Coef   float64 `json:"coef"`
	StdErr float64 `json:"std_err"`
	TStat  float64 `json:"t_stat"`
	PValue float64 `json:"p_value"`
	CILow  float64 `json:"ci_low"`
	CIHigh float64 `json:"ci_high"`
}

// Result is a fitted model summary.
type Result struct {
	Formula   string         `json:"formula"`
	CovType   config.CovType `json:"cov_type"`
	Terms     []Term         `json:"terms"`
	NObs      int            `json:"n_obs"`
	DF        int            `json:"df"` // residual degrees of freedom used for inference
	NClusters int            `json:"n_clusters,omitempty"`
	R2        float64        `json:"r2"`
}

// TermByName returns the result row for a named regressor.
func (r *Result) TermByName(name string) (Term, bool) {
	for _, t := range r.Terms {
		if t.Name == name {
			return t, true
		}
	}
	return Term{}, false
}

// Fit estimates the formula on the frame by OLS and computes standard errors
// under the requested covariance estimator. Clustering is by firm_id.
func Fit(f *dataset.Frame, formula *Formula, covType config.CovType) (*Result, error) {
	n := f.Len()
	k := len(formula.Terms) + 1
	if n <= k {
		return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
			fmt.Sprintf("not enough observations: n=%d, k=%d", n, k))
	}

	y, ok := f.Column(formula.Response)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
			fmt.Sprintf("unknown response column: %s", formula.Response))
	}

	X := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
	}
	for j, term := range formula.Terms {
		col, ok := f.Column(term)
		if !ok {
			return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
				fmt.Sprintf("unknown regressor column: %s", term))
		}
		for i := 0; i < n; i++ {
			X.Set(i, j+1, col[i])
		}
	}
	yVec := mat.NewVecDense(n, append([]float64(nil), y...))

	var qr mat.QR
	qr.Factorize(X)
	beta := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(beta, false, yVec); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryEstimate, apperrors.SeverityError,
			"design matrix is rank deficient")
	}

	// Residuals and fit statistics.
	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(X, beta)
	resid := mat.NewVecDense(n, nil)
	resid.SubVec(yVec, fitted)

	rss := mat.Dot(resid, resid)
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)
	tss := 0.0
	for _, v := range y {
		tss += (v - yMean) * (v - yMean)
	}
	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}

	// (X'X)^{-1} bread for all covariance estimators.
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var bread mat.Dense
	if err := bread.Inverse(&xtx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryEstimate, apperrors.SeverityError,
			"X'X is singular")
	}

	cov, df, nClusters, err := covariance(covType, X, resid, &bread, f.FirmID, n, k, rss)
	if err != nil {
		return nil, err
	}

	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	names := formula.ParamNames()
	terms := make([]Term, k)
	for j := 0; j < k; j++ {
		coef := beta.AtVec(j)
		se := math.Sqrt(cov.At(j, j))
		tstat := math.Inf(1)
		pval := 0.0
		if se > 0 {
			tstat = coef / se
			pval = 2 * tdist.Survival(math.Abs(tstat))
		}
		terms[j] = Term{
			Name:   names[j],
			Coef:   coef,
			StdErr: se,
			TStat:  tstat,
			PValue: pval,
			CILow:  coef - ciZ*se,
			CIHigh: coef + ciZ*se,
		}
	}

	return &Result{
		Formula:   formula.String(),
		CovType:   covType,
		Terms:     terms,
		NObs:      n,
		DF:        df,
		NClusters: nClusters,
		R2:        r2,
	}, nil
}

// covariance computes the coefficient covariance matrix, the degrees of
// freedom for inference, and the cluster count (0 unless clustered).
func covariance(covType config.CovType, X *mat.Dense, resid *mat.VecDense, bread *mat.Dense, firmID []int, n, k int, rss float64) (*mat.Dense, int, int, error) {
	switch covType {
	case config.CovNonRobust:
		sigma2 := rss / float64(n-k)
		var cov mat.Dense
		cov.Scale(sigma2, bread)
		return &cov, n - k, 0, nil

	case config.CovHC1:
		meat := mat.NewDense(k, k, nil)
		row := make([]float64, k)
		for i := 0; i < n; i++ {
			mat.Row(row, i, X)
			e2 := resid.AtVec(i) * resid.AtVec(i)
			rankOneUpdate(meat, row, e2)
		}
		cov := sandwich(bread, meat)
		cov.Scale(float64(n)/float64(n-k), cov)
		return cov, n - k, 0, nil

	case config.CovCluster:
		scores := make(map[int][]float64)
		row := make([]float64, k)
		for i := 0; i < n; i++ {
			g := firmID[i]
			s, ok := scores[g]
			if !ok {
				s = make([]float64, k)
				scores[g] = s
			}
			mat.Row(row, i, X)
			e := resid.AtVec(i)
			for j := 0; j < k; j++ {
				s[j] += e * row[j]
			}
		}
		nG := len(scores)
		if nG < 2 {
			return nil, 0, 0, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
				fmt.Sprintf("clustered covariance needs at least 2 clusters, got %d", nG))
		}

		meat := mat.NewDense(k, k, nil)
		for _, s := range scores {
			rankOneUpdate(meat, s, 1)
		}
		cov := sandwich(bread, meat)

		// Stata-style small-sample correction.
		c := float64(nG) / float64(nG-1) * float64(n-1) / float64(n-k)
		cov.Scale(c, cov)
		return cov, nG - 1, nG, nil

	default:
		return nil, 0, 0, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
			fmt.Sprintf("unsupported covariance type: %s", covType))
	}
}

// rankOneUpdate adds w * v v' to m.
func rankOneUpdate(m *mat.Dense, v []float64, w float64) {
	for a := range v {
		for b := range v {
			m.Set(a, b, m.At(a, b)+w*v[a]*v[b])
		}
	}
}

// sandwich returns bread * meat * bread.
func sandwich(bread, meat *mat.Dense) *mat.Dense {
	var tmp, cov mat.Dense
	tmp.Mul(bread, meat)
	cov.Mul(&tmp, bread)
	return &cov
}
