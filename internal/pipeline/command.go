package pipeline

import (
	"context"
	"fmt"
	"sort"
)

// StageName identifies a pipeline stage.
type StageName string

// Pipeline stages in their canonical order.
const (
	StagePrepareOutput StageName = "prepare-output"
	StageGenerateData  StageName = "generate-data"
	StageValidateData  StageName = "validate-data"
	StageEstimateModel StageName = "estimate-model"
	StageWriteOutputs  StageName = "write-outputs"
	StageRenderReport  StageName = "render-report"
)

// StageCommand represents a single pipeline stage that can be executed.
type StageCommand interface {
	// Name returns the name of this stage command
	Name() StageName

	// Execute runs the stage command with the given run state
	Execute(ctx context.Context, rs *RunState) StageExecution

	// Description returns a human-readable description of what this stage does
	Description() string

	// Dependencies returns the names of stages that must complete successfully before this stage
	Dependencies() []StageName
}

// CommandMetadata provides static information about a command.
type CommandMetadata struct {
	Name         StageName
	Description  string
	Dependencies []StageName
	SkipIf       func(*RunState) bool // Function to determine if stage should be skipped
}

// BaseCommand provides a common implementation for stage commands.
type BaseCommand struct {
	metadata CommandMetadata
}

// NewBaseCommand creates a base command from metadata.
func NewBaseCommand(metadata CommandMetadata) BaseCommand {
	return BaseCommand{metadata: metadata}
}

func (b *BaseCommand) Name() StageName           { return b.metadata.Name }
func (b *BaseCommand) Description() string       { return b.metadata.Description }
func (b *BaseCommand) Dependencies() []StageName { return b.metadata.Dependencies }

// ShouldSkip reports whether the stage should be skipped for this run state.
func (b *BaseCommand) ShouldSkip(rs *RunState) bool {
	return b.metadata.SkipIf != nil && b.metadata.SkipIf(rs)
}

// Registry holds the available stage commands.
type Registry struct {
	commands map[StageName]StageCommand
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[StageName]StageCommand)}
}

// Register adds a command to the registry. Duplicate names are an error.
func (r *Registry) Register(cmd StageCommand) error {
	if _, exists := r.commands[cmd.Name()]; exists {
		return fmt.Errorf("stage %s already registered", cmd.Name())
	}
	r.commands[cmd.Name()] = cmd
	return nil
}

// Get returns the command for a stage name.
func (r *Registry) Get(name StageName) (StageCommand, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all registered stage names in lexical order.
func (r *Registry) List() []StageName {
	names := make([]StageName, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
