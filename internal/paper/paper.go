// Package paper compiles the LaTeX research paper from the pipeline outputs.
package paper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	apperrors "git.home.luguber.info/inful/housing-dpe/internal/errors"
)

// Builder runs latexmk against the configured document. The build refuses to
// start unless the pipeline outputs exist, mirroring the outputs -> paper
// target ordering.
type Builder struct {
	Document   string // main .tex file
	BuildDir   string
	Latexmk    string
	OutputsDir string
}

// NewBuilder creates a Builder with the given paths.
func NewBuilder(document, buildDir, latexmk, outputsDir string) *Builder {
	if latexmk == "" {
		latexmk = "latexmk"
	}
	return &Builder{
		Document:   document,
		BuildDir:   buildDir,
		Latexmk:    latexmk,
		OutputsDir: outputsDir,
	}
}

// Build compiles the document into the build directory.
func (b *Builder) Build(ctx context.Context) error {
	if _, err := os.Stat(b.OutputsDir); err != nil {
		return apperrors.New(apperrors.CategoryLatex, apperrors.SeverityError,
			fmt.Sprintf("outputs directory %s not found: run the pipeline first", b.OutputsDir))
	}
	if _, err := os.Stat(b.Document); err != nil {
		return apperrors.New(apperrors.CategoryLatex, apperrors.SeverityError,
			fmt.Sprintf("paper document not found: %s", b.Document))
	}
	if err := os.MkdirAll(b.BuildDir, 0o750); err != nil {
		return apperrors.WrapError(err, apperrors.CategoryLatex, "create paper build directory")
	}

	args := []string{
		"-pdf",
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory=" + b.BuildDir,
		b.Document,
	}
	slog.Info("Compiling paper",
		slog.String("document", b.Document),
		slog.String("build_dir", b.BuildDir))

	cmd := exec.CommandContext(ctx, b.Latexmk, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryLatex, apperrors.SeverityError,
			"latexmk failed").WithContext("output", tail(string(out), 20))
	}

	slog.Info("Paper compiled", slog.String("pdf", b.PDFPath()))
	return nil
}

// PDFPath returns the expected location of the compiled PDF.
func (b *Builder) PDFPath() string {
	base := strings.TrimSuffix(filepath.Base(b.Document), filepath.Ext(b.Document))
	return filepath.Join(b.BuildDir, base+".pdf")
}

// Clean removes the paper build directory. Auxiliary-file cleanup via
// latexmk -C is best-effort; a missing build directory is not an error.
func (b *Builder) Clean(ctx context.Context) error {
	if _, err := os.Stat(b.BuildDir); err == nil {
		cmd := exec.CommandContext(ctx, b.Latexmk, "-C", "-output-directory="+b.BuildDir, b.Document)
		if out, err := cmd.CombinedOutput(); err != nil {
			slog.Debug("latexmk -C failed (ignored)",
				slog.Any("error", err),
				slog.String("output", tail(string(out), 5)))
		}
	}
	if err := os.RemoveAll(b.BuildDir); err != nil {
		return apperrors.WrapError(err, apperrors.CategoryLatex, "remove paper build directory")
	}
	return nil
}

// View opens the compiled PDF in the platform viewer. Failure is tolerated:
// the viewer is a convenience, not part of the build contract.
func (b *Builder) View(ctx context.Context) {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	cmd := exec.CommandContext(ctx, opener, b.PDFPath())
	if err := cmd.Start(); err != nil {
		slog.Warn("Could not open paper viewer", slog.Any("error", err))
		return
	}
	// Detach: the viewer outlives the CLI invocation.
	go func() { _ = cmd.Wait() }()
}

func tail(s string, lines int) string {
	all := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(all) <= lines {
		return strings.Join(all, "\n")
	}
	return strings.Join(all[len(all)-lines:], "\n")
}
