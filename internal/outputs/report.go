package outputs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/housing-dpe/internal/errors"
	"git.home.luguber.info/inful/housing-dpe/internal/estimate"
)

// WriteReport renders a human-readable run summary as Markdown and as HTML.
func (w *Writer) WriteReport(meta RunMetadata, res *estimate.Result) error {
	md := buildReportMarkdown(meta, res)

	mdPath := filepath.Join(w.dir, ReportMD)
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "write markdown report")
	}

	var buf bytes.Buffer
	renderer := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "render html report")
	}

	htmlPath := filepath.Join(w.dir, ReportHTML)
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "write html report")
	}
	return nil
}

func buildReportMarkdown(meta RunMetadata, res *estimate.Result) string {
	var b strings.Builder

	b.WriteString("# housing-dpe run report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", meta.RunID)
	fmt.Fprintf(&b, "- Timestamp: %s\n", meta.TimestampUTC)
	fmt.Fprintf(&b, "- Commit: `%s`\n", meta.GitCommit)
	fmt.Fprintf(&b, "- Observations: %d\n\n", meta.NObs)

	b.WriteString("## Model\n\n")
	fmt.Fprintf(&b, "- Formula: `%s`\n", res.Formula)
	fmt.Fprintf(&b, "- Covariance: %s\n", res.CovType)
	if res.NClusters > 0 {
		fmt.Fprintf(&b, "- Clusters: %d\n", res.NClusters)
	}
	fmt.Fprintf(&b, "- R²: %.4f\n\n", res.R2)

	b.WriteString("## Coefficients\n\n")
	b.WriteString("| term | coef | std err | t | p | 95% CI |\n")
	b.WriteString("|------|------|---------|---|---|--------|\n")
	for _, t := range res.Terms {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.4f | %.4f | [%.4f, %.4f] |\n",
			t.Name, t.Coef, t.StdErr, t.TStat, t.PValue, t.CILow, t.CIHigh)
	}

	b.WriteString("\n## Artifacts\n\n")
	fmt.Fprintf(&b, "- `%s`\n", DataFile)
	fmt.Fprintf(&b, "- `%s/%s`, `%s/%s`\n", TablesDir, TableCSV, TablesDir, TableTex)
	fmt.Fprintf(&b, "- `%s/%s`\n", FiguresDir, FigureFile)
	fmt.Fprintf(&b, "- `%s/%s`\n", LogsDir, MetadataFile)

	return b.String()
}
