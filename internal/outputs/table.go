package outputs

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/housing-dpe/internal/errors"
	"git.home.luguber.info/inful/housing-dpe/internal/estimate"
)

var tableHeader = []string{"term", "coef", "std_err", "t", "p_value", "ci_low", "ci_high"}

// WriteRegressionTable writes the estimation summary as CSV and as a LaTeX
// tabular for direct inclusion in the paper.
func (w *Writer) WriteRegressionTable(res *estimate.Result) error {
	if err := w.writeTableCSV(res); err != nil {
		return err
	}
	return w.writeTableTex(res)
}

func (w *Writer) writeTableCSV(res *estimate.Result) error {
	file, err := os.Create(filepath.Join(w.dir, TablesDir, TableCSV))
	if err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "create table csv")
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(tableHeader); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "write table header")
	}
	for _, t := range res.Terms {
		row := []string{
			t.Name,
			fmt.Sprintf("%.6f", t.Coef),
			fmt.Sprintf("%.6f", t.StdErr),
			fmt.Sprintf("%.6f", t.TStat),
			fmt.Sprintf("%.6f", t.PValue),
			fmt.Sprintf("%.6f", t.CILow),
			fmt.Sprintf("%.6f", t.CIHigh),
		}
		if err := cw.Write(row); err != nil {
			return errors.WrapError(err, errors.CategoryOutput, "write table row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "flush table csv")
	}
	return nil
}

func (w *Writer) writeTableTex(res *estimate.Result) error {
	var b strings.Builder
	b.WriteString("\\begin{tabular}{lrrrrrr}\n\\toprule\n")
	b.WriteString(" & Coef. & Std.Err. & t & P$>|$t$|$ & [0.025 & 0.975] \\\\\n\\midrule\n")
	for _, t := range res.Terms {
		fmt.Fprintf(&b, "%s & %.4f & %.4f & %.4f & %.4f & %.4f & %.4f \\\\\n",
			escapeTex(t.Name), t.Coef, t.StdErr, t.TStat, t.PValue, t.CILow, t.CIHigh)
	}
	b.WriteString("\\bottomrule\n\\end{tabular}\n")

	path := filepath.Join(w.dir, TablesDir, TableTex)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "write table tex")
	}
	return nil
}

var texEscaper = strings.NewReplacer(
	"_", "\\_",
	"&", "\\&",
	"%", "\\%",
	"#", "\\#",
	"$", "\\$",
)

func escapeTex(s string) string {
	return texEscaper.Replace(s)
}
