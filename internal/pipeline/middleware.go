package pipeline

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/housing-dpe/internal/metrics"
	"git.home.luguber.info/inful/housing-dpe/internal/observability"
)

// Middleware wraps a stage command with cross-cutting behavior.
type Middleware func(StageCommand) StageCommand

// wrappedCommand delegates metadata to the inner command and overrides Execute.
type wrappedCommand struct {
	StageCommand
	execute func(ctx context.Context, rs *RunState) StageExecution
}

func (w *wrappedCommand) Execute(ctx context.Context, rs *RunState) StageExecution {
	return w.execute(ctx, rs)
}

// DefaultMiddleware returns the middleware every pipeline carries.
func DefaultMiddleware() []Middleware {
	return []Middleware{LoggingMiddleware()}
}

// LoggingMiddleware logs stage start and completion with durations, carrying
// the run id and stage name on the context.
func LoggingMiddleware() Middleware {
	return func(cmd StageCommand) StageCommand {
		return &wrappedCommand{
			StageCommand: cmd,
			execute: func(ctx context.Context, rs *RunState) StageExecution {
				ctx = observability.WithRunID(ctx, rs.RunID)
				ctx = observability.WithStage(ctx, string(cmd.Name()))

				observability.DebugContext(ctx, "Stage starting")
				start := time.Now()
				result := cmd.Execute(ctx, rs)
				elapsed := time.Since(start)

				if result.Err != nil {
					observability.ErrorContext(ctx, "Stage failed",
						slog.Duration("elapsed", elapsed),
						slog.Any("error", result.Err))
				} else if result.Skipped {
					observability.DebugContext(ctx, "Stage skipped")
				} else {
					observability.InfoContext(ctx, "Stage completed",
						slog.Duration("elapsed", elapsed))
				}
				return result
			},
		}
	}
}

// MetricsMiddleware records stage durations and results to the recorder.
func MetricsMiddleware(rec metrics.Recorder) Middleware {
	return func(cmd StageCommand) StageCommand {
		return &wrappedCommand{
			StageCommand: cmd,
			execute: func(ctx context.Context, rs *RunState) StageExecution {
				start := time.Now()
				result := cmd.Execute(ctx, rs)
				rec.ObserveStageDuration(string(cmd.Name()), time.Since(start))

				label := metrics.ResultSuccess
				switch {
				case result.Err != nil && ctx.Err() != nil:
					label = metrics.ResultCanceled
				case result.Err != nil:
					label = metrics.ResultFailure
				}
				rec.IncStageResult(string(cmd.Name()), label)
				return result
			},
		}
	}
}
