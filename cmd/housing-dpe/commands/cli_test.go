package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	outDir := filepath.Join(dir, "outputs")
	configPath := filepath.Join(dir, "params.yaml")
	content := `seed: 7
n_rows: 200

model:
  formula: "y ~ treat + x"
  cov_type: HC1

output:
  directory: ` + outDir + `

state:
  disabled: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestInitCreatesConfigFile(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: filepath.Join(dir, "conf", "params.yaml")}

	cmd := &InitCmd{}
	require.NoError(t, cmd.Run(&Global{}, root))

	data, err := os.ReadFile(root.Config)
	require.NoError(t, err)
	require.Contains(t, string(data), "seed: 42")

	// A second init without --force must refuse to overwrite.
	require.Error(t, cmd.Run(&Global{}, root))
	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, root))
}

func TestRunWritesOutputsTree(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeTestConfig(t, dir)}

	require.NoError(t, (&RunCmd{}).Run(&Global{}, root))

	for _, rel := range []string{
		"data_processed.csv",
		filepath.Join("tables", "regression.csv"),
		filepath.Join("tables", "regression.tex"),
		filepath.Join("figures", "treat_effect.png"),
		filepath.Join("logs", "run_metadata.json"),
	} {
		_, err := os.Stat(filepath.Join(dir, "outputs", rel))
		require.NoError(t, err, "missing output %s", rel)
	}
}

func TestRunWithOutdirOverride(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeTestConfig(t, dir)}
	override := filepath.Join(dir, "elsewhere")

	require.NoError(t, (&RunCmd{Outdir: override}).Run(&Global{}, root))

	_, err := os.Stat(filepath.Join(override, "data_processed.csv"))
	require.NoError(t, err)
}

func TestRunFailsOnMissingConfig(t *testing.T) {
	root := &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")}
	require.Error(t, (&RunCmd{}).Run(&Global{}, root))
}

func TestCleanRemovesOutputs(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeTestConfig(t, dir)}
	require.NoError(t, (&RunCmd{}).Run(&Global{}, root))

	require.NoError(t, (&CleanCmd{Outputs: true}).Run(&Global{}, root))

	_, err := os.Stat(filepath.Join(dir, "outputs"))
	require.True(t, os.IsNotExist(err))

	// Cleaning again is fine when nothing is left.
	require.NoError(t, (&CleanCmd{Outputs: true}).Run(&Global{}, root))
}

func writeStatefulConfig(t *testing.T, dir string) string {
	t.Helper()
	configPath := filepath.Join(dir, "params.yaml")
	content := `seed: 7
n_rows: 200

output:
  directory: ` + filepath.Join(dir, "outputs") + `

state:
  directory: ` + filepath.Join(dir, "state") + `
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))
	return configPath
}

func TestHistoryBeforeFirstRun(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeStatefulConfig(t, dir)}

	// No database exists yet; history must not fail.
	require.NoError(t, (&HistoryCmd{Limit: 5}).Run(&Global{}, root))
	require.NoError(t, (&HistoryCmd{Events: "no-such-run"}).Run(&Global{}, root))
}

func TestHistoryAfterRun(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeStatefulConfig(t, dir)}

	require.NoError(t, (&RunCmd{}).Run(&Global{}, root))
	require.NoError(t, (&HistoryCmd{Limit: 5}).Run(&Global{}, root))
}

func TestHistoryWithoutStoreErrors(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: writeTestConfig(t, dir)}

	err := (&HistoryCmd{Limit: 5}).Run(&Global{}, root)
	require.Error(t, err)
	require.Contains(t, err.Error(), "disabled")
}
