package pipeline

import (
	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/dataset"
	"git.home.luguber.info/inful/housing-dpe/internal/estimate"
	"git.home.luguber.info/inful/housing-dpe/internal/outputs"
)

// RunState carries mutable state between pipeline stages for one run.
type RunState struct {
	RunID      string
	ConfigPath string
	Config     *config.Config

	Frame    *dataset.Frame
	Result   *estimate.Result
	Metadata outputs.RunMetadata

	Writer *outputs.Writer
}

// StageExecution is the outcome of executing a single stage.
type StageExecution struct {
	Err     error
	Skipped bool
}

// IsSuccess returns true when the stage completed (or was skipped) without error.
func (e StageExecution) IsSuccess() bool { return e.Err == nil }

// ExecutionSuccess returns a successful execution result.
func ExecutionSuccess() StageExecution { return StageExecution{} }

// ExecutionSkipped returns a skipped execution result.
func ExecutionSkipped() StageExecution { return StageExecution{Skipped: true} }

// ExecutionFailure returns a failed execution result.
func ExecutionFailure(err error) StageExecution { return StageExecution{Err: err} }
