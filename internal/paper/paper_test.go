package paper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "git.home.luguber.info/inful/housing-dpe/internal/errors"
)

func testBuilder(t *testing.T) (*Builder, string) {
	t.Helper()
	root := t.TempDir()
	doc := filepath.Join(root, "paper", "main.tex")
	require.NoError(t, os.MkdirAll(filepath.Dir(doc), 0o750))
	require.NoError(t, os.WriteFile(doc, []byte("\\documentclass{article}\\begin{document}x\\end{document}\n"), 0o644))

	b := NewBuilder(doc, filepath.Join(root, "paper", "build"), "true", filepath.Join(root, "outputs"))
	return b, root
}

func TestBuildRequiresOutputs(t *testing.T) {
	b, _ := testBuilder(t)

	// Outputs directory missing: ordering is enforced.
	err := b.Build(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryLatex))
	assert.Contains(t, err.Error(), "run the pipeline first")
}

func TestBuildRunsWithOutputsPresent(t *testing.T) {
	b, root := testBuilder(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "outputs"), 0o750))

	// "true" stands in for latexmk.
	require.NoError(t, b.Build(context.Background()))

	// Build directory is created for latexmk.
	_, err := os.Stat(b.BuildDir)
	assert.NoError(t, err)
}

func TestBuildSurfacesLatexmkFailure(t *testing.T) {
	b, root := testBuilder(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "outputs"), 0o750))
	b.Latexmk = "false"

	err := b.Build(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryLatex))
}

func TestBuildRequiresDocument(t *testing.T) {
	b, root := testBuilder(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "outputs"), 0o750))
	require.NoError(t, os.Remove(b.Document))

	err := b.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paper document not found")
}

func TestCleanMissingDirSucceeds(t *testing.T) {
	b, _ := testBuilder(t)
	require.NoError(t, b.Clean(context.Background()))
}

func TestCleanRemovesBuildDir(t *testing.T) {
	b, _ := testBuilder(t)
	require.NoError(t, os.MkdirAll(b.BuildDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(b.BuildDir, "main.aux"), []byte("aux"), 0o644))

	// latexmk -C failing (binary "false") must not fail the clean.
	b.Latexmk = "false"
	require.NoError(t, b.Clean(context.Background()))

	_, err := os.Stat(b.BuildDir)
	assert.True(t, os.IsNotExist(err))
}

func TestPDFPath(t *testing.T) {
	b := NewBuilder("paper/main.tex", "paper/build", "", "outputs")
	assert.Equal(t, filepath.Join("paper", "build", "main.pdf"), b.PDFPath())
	assert.Equal(t, "latexmk", b.Latexmk)
}

func TestViewToleratesMissingViewer(t *testing.T) {
	b, _ := testBuilder(t)
	// Must not panic or fail even when nothing can be opened.
	b.View(context.Background())
}
