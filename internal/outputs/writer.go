// Package outputs renders pipeline artifacts into the output directory tree.
package outputs

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/housing-dpe/internal/dataset"
	apperrors "git.home.luguber.info/inful/housing-dpe/internal/errors"
)

// Subdirectories of the output tree.
const (
	TablesDir  = "tables"
	FiguresDir = "figures"
	LogsDir    = "logs"
)

// Well-known artifact names.
const (
	DataFile     = "data_processed.csv"
	TableCSV     = "regression.csv"
	TableTex     = "regression.tex"
	FigureFile   = "treat_effect.png"
	MetadataFile = "run_metadata.json"
	ReportMD     = "report.md"
	ReportHTML   = "report.html"
)

// Writer renders artifacts under a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output root.
func (w *Writer) Dir() string { return w.dir }

// Prepare creates the output directory tree.
func (w *Writer) Prepare() error {
	for _, d := range []string{w.dir,
		filepath.Join(w.dir, TablesDir),
		filepath.Join(w.dir, FiguresDir),
		filepath.Join(w.dir, LogsDir),
	} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return apperrors.WrapError(err, apperrors.CategoryOutput, "create output directory")
		}
	}
	return nil
}

// WriteData writes the processed panel frame as CSV.
func (w *Writer) WriteData(f *dataset.Frame) error {
	file, err := os.Create(filepath.Join(w.dir, DataFile))
	if err != nil {
		return apperrors.WrapError(err, apperrors.CategoryOutput, "create data file")
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(dataset.ColumnNames); err != nil {
		return apperrors.WrapError(err, apperrors.CategoryOutput, "write data header")
	}
	for i := 0; i < f.Len(); i++ {
		if err := cw.Write(f.Row(i)); err != nil {
			return apperrors.WrapError(err, apperrors.CategoryOutput, "write data row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.WrapError(err, apperrors.CategoryOutput, "flush data file")
	}
	return nil
}
