package outputs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	gogit "github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/housing-dpe/internal/errors"
)

// RunMetadata is persisted alongside the outputs to make runs reproducible.
type RunMetadata struct {
	RunID        string `json:"run_id"`
	TimestampUTC string `json:"timestamp_utc"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	GitCommit    string `json:"git_commit"`
	ConfigPath   string `json:"config_path"`
	NObs         int    `json:"n_obs"`
}

// CollectMetadata gathers run metadata for the current process.
func CollectMetadata(runID, configPath string, nObs int) RunMetadata {
	return RunMetadata{
		RunID:        runID,
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		GitCommit:    SafeGitCommit("."),
		ConfigPath:   configPath,
		NObs:         nObs,
	}
}

// SafeGitCommit returns the HEAD commit hash of the repository containing
// path, or "unknown" when the path is not inside a git repository.
func SafeGitCommit(path string) string {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "unknown"
	}
	head, err := repo.Head()
	if err != nil {
		return "unknown"
	}
	return head.Hash().String()
}

// WriteMetadata writes the run metadata JSON into the logs directory.
func (w *Writer) WriteMetadata(meta RunMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "marshal run metadata")
	}
	path := filepath.Join(w.dir, LogsDir, MetadataFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryOutput, "write run metadata")
	}
	return nil
}
