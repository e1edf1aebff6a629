package outputs

import (
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"git.home.luguber.info/inful/housing-dpe/internal/errors"
	"git.home.luguber.info/inful/housing-dpe/internal/estimate"
)

// coefPoint exposes a single coefficient with symmetric error bars to the
// plotter (XYer + YErrorer).
type coefPoint struct {
	coef, margin float64
}

func (p coefPoint) Len() int                      { return 1 }
func (p coefPoint) XY(int) (float64, float64)     { return 0, p.coef }
func (p coefPoint) YError(int) (float64, float64) { return p.margin, p.margin }

// WriteFigure renders the treatment-effect coefficient plot
// (point estimate with a 1.96*SE error bar and a dashed zero line).
func (w *Writer) WriteFigure(res *estimate.Result) error {
	term, ok := res.TermByName("treat")
	if !ok {
		// Fall back to the first non-intercept regressor.
		for _, t := range res.Terms {
			if t.Name != "Intercept" {
				term = t
				ok = true
				break
			}
		}
	}
	if !ok {
		return errors.New(errors.CategoryOutput, errors.SeverityError, "no regressor available for the coefficient plot")
	}

	p := plot.New()
	p.Title.Text = "Treatment effect (coef ± 1.96*SE)"
	p.Y.Label.Text = "coefficient"
	p.NominalX(term.Name)

	point := coefPoint{coef: term.Coef, margin: term.Coef - term.CILow}

	scatter, err := plotter.NewScatter(point)
	if err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "build scatter")
	}
	scatter.GlyphStyle.Radius = vg.Points(3)

	bars, err := plotter.NewYErrorBars(point)
	if err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "build error bars")
	}

	zero := plotter.XYs{{X: -0.5, Y: 0}, {X: 0.5, Y: 0}}
	zeroLine, err := plotter.NewLine(zero)
	if err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "build zero line")
	}
	zeroLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(zeroLine, bars, scatter)

	path := filepath.Join(w.dir, FiguresDir, FigureFile)
	if err := p.Save(6*vg.Inch, 3*vg.Inch, path); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "save figure")
	}
	return nil
}
