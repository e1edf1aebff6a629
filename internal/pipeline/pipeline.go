// Package pipeline orchestrates the data-processing-and-evaluation stages in
// dependency order using the Command pattern.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// EventSink receives stage lifecycle events (e.g. the run store).
type EventSink interface {
	AppendStageEvent(ctx context.Context, runID, stage, eventType, detail string) error
}

// Pipeline orchestrates the execution of stage commands in dependency order.
type Pipeline struct {
	registry    *Registry
	middleware  []Middleware
	sink        EventSink
	stopOnError bool
}

// Option configures pipeline behavior.
type Option func(*Pipeline)

// WithMiddleware adds middleware to the pipeline.
func WithMiddleware(mw ...Middleware) Option {
	return func(p *Pipeline) {
		p.middleware = append(p.middleware, mw...)
	}
}

// WithEventSink records stage lifecycle events to the given sink.
func WithEventSink(sink EventSink) Option {
	return func(p *Pipeline) {
		p.sink = sink
	}
}

// WithStopOnError configures whether the pipeline stops on first error.
func WithStopOnError(stop bool) Option {
	return func(p *Pipeline) {
		p.stopOnError = stop
	}
}

// New creates a stage pipeline over the given registry.
func New(registry *Registry, options ...Option) *Pipeline {
	p := &Pipeline{
		registry:    registry,
		stopOnError: true,
		middleware:  DefaultMiddleware(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// ExecutionPlan represents the planned execution order of commands.
type ExecutionPlan struct {
	Order []StageName
	Graph map[StageName][]StageName // adjacency list: dependency -> dependents
}

// BuildExecutionPlan creates an execution plan based on command dependencies.
func (p *Pipeline) BuildExecutionPlan(stages []StageName) (*ExecutionPlan, error) {
	if len(stages) == 0 {
		return &ExecutionPlan{Order: []StageName{}, Graph: make(map[StageName][]StageName)}, nil
	}

	for _, stage := range stages {
		if _, exists := p.registry.Get(stage); !exists {
			return nil, fmt.Errorf("stage %s not found in registry", stage)
		}
	}

	graph := make(map[StageName][]StageName)
	inDegree := make(map[StageName]int)

	stageSet := make(map[StageName]bool)
	for _, stage := range stages {
		stageSet[stage] = true
	}

	// Add dependencies transitively
	var addDependencies func(StageName) error
	addDependencies = func(stage StageName) error {
		cmd, exists := p.registry.Get(stage)
		if !exists {
			return fmt.Errorf("dependency %s not found", stage)
		}

		for _, dep := range cmd.Dependencies() {
			if !stageSet[dep] {
				stageSet[dep] = true
				if err := addDependencies(dep); err != nil {
					return err
				}
			}
			graph[dep] = append(graph[dep], stage)
		}
		return nil
	}

	for _, stage := range stages {
		if err := addDependencies(stage); err != nil {
			return nil, fmt.Errorf("resolving dependencies for %s: %w", stage, err)
		}
	}

	for stage := range stageSet {
		inDegree[stage] = 0
	}
	for _, dependents := range graph {
		for _, dependent := range dependents {
			inDegree[dependent]++
		}
	}

	// Topological sort with deterministic tie-breaking
	var order []StageName
	queue := make([]StageName, 0)
	for stage, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, stage)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		dependents := graph[current]
		sort.Slice(dependents, func(i, j int) bool { return dependents[i] < dependents[j] })

		for _, dependent := range dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(stageSet) {
		return nil, fmt.Errorf("circular dependency detected among stages")
	}

	return &ExecutionPlan{Order: order, Graph: graph}, nil
}

// Execute runs the pipeline with the given stages.
func (p *Pipeline) Execute(ctx context.Context, rs *RunState, stages ...StageName) (*ExecutionResult, error) {
	plan, err := p.BuildExecutionPlan(stages)
	if err != nil {
		return nil, fmt.Errorf("building execution plan: %w", err)
	}

	slog.Info("Executing pipeline",
		slog.Int("stages", len(plan.Order)),
		slog.Any("order", plan.Order))

	result := &ExecutionResult{
		ExecutedStages: make(map[StageName]StageExecution),
		Plan:           plan,
	}

	for _, stageName := range plan.Order {
		select {
		case <-ctx.Done():
			result.ExecutedStages[stageName] = ExecutionFailure(ctx.Err())
			result.Canceled = true
			return result, ctx.Err()
		default:
		}

		cmd, exists := p.registry.Get(stageName)
		if !exists {
			err := fmt.Errorf("stage %s not found during execution", stageName)
			result.ExecutedStages[stageName] = ExecutionFailure(err)
			if p.stopOnError {
				return result, err
			}
			continue
		}

		wrappedCmd := cmd
		for _, mw := range p.middleware {
			wrappedCmd = mw(wrappedCmd)
		}

		p.recordEvent(ctx, rs, stageName, "stage.started", "")
		stageResult := wrappedCmd.Execute(ctx, rs)
		result.ExecutedStages[stageName] = stageResult

		if !stageResult.IsSuccess() {
			p.recordEvent(ctx, rs, stageName, "stage.failed", stageResult.Err.Error())
			slog.Error("Stage failed",
				slog.String("stage", string(stageName)),
				slog.Any("error", stageResult.Err))

			if p.stopOnError {
				return result, stageResult.Err
			}
			continue
		}

		if stageResult.Skipped {
			p.recordEvent(ctx, rs, stageName, "stage.skipped", "")
			slog.Debug("Stage skipped", slog.String("stage", string(stageName)))
		} else {
			p.recordEvent(ctx, rs, stageName, "stage.completed", "")
			slog.Debug("Stage completed", slog.String("stage", string(stageName)))
		}
	}

	return result, nil
}

// ExecuteAll runs all registered stages in dependency order.
func (p *Pipeline) ExecuteAll(ctx context.Context, rs *RunState) (*ExecutionResult, error) {
	return p.Execute(ctx, rs, p.registry.List()...)
}

func (p *Pipeline) recordEvent(ctx context.Context, rs *RunState, stage StageName, eventType, detail string) {
	if p.sink == nil {
		return
	}
	if err := p.sink.AppendStageEvent(ctx, rs.RunID, string(stage), eventType, detail); err != nil {
		slog.Warn("Failed to record stage event",
			slog.String("stage", string(stage)),
			slog.Any("error", err))
	}
}

// ExecutionResult contains the results of pipeline execution.
type ExecutionResult struct {
	ExecutedStages map[StageName]StageExecution
	Plan           *ExecutionPlan
	Canceled       bool
}

// IsSuccess returns true if all executed stages completed successfully.
func (r *ExecutionResult) IsSuccess() bool {
	if r.Canceled {
		return false
	}
	for _, result := range r.ExecutedStages {
		if !result.IsSuccess() {
			return false
		}
	}
	return true
}

// FailedStages returns the names of stages that failed.
func (r *ExecutionResult) FailedStages() []StageName {
	var failed []StageName
	for stage, result := range r.ExecutedStages {
		if !result.IsSuccess() {
			failed = append(failed, stage)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i] < failed[j] })
	return failed
}
