package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/metrics"
	"git.home.luguber.info/inful/housing-dpe/internal/outputs"
	"git.home.luguber.info/inful/housing-dpe/internal/runstore"
)

// Runner assembles and executes the full pipeline for one configuration.
// Store and Recorder are optional.
type Runner struct {
	Store    *runstore.Store
	Recorder metrics.Recorder
}

// Run executes all pipeline stages and returns the final run state.
// The run is recorded in the store (when configured) regardless of outcome.
func (r *Runner) Run(ctx context.Context, cfg *config.Config, configPath string) (*RunState, error) {
	runID := uuid.NewString()
	rs := &RunState{
		RunID:      runID,
		ConfigPath: configPath,
		Config:     cfg,
		Writer:     outputs.NewWriter(cfg.Output.Directory),
	}

	opts := []Option{}
	if r.Recorder != nil {
		opts = append(opts, WithMiddleware(MetricsMiddleware(r.Recorder)))
	}
	if r.Store != nil {
		opts = append(opts, WithEventSink(r.Store))
		if err := r.Store.RecordRunStart(ctx, runID, configPath); err != nil {
			slog.Warn("Failed to record run start", slog.Any("error", err))
		}
	}

	p := New(DefaultRegistry(), opts...)

	start := time.Now()
	result, execErr := p.ExecuteAll(ctx, rs)
	elapsed := time.Since(start)

	outcome := "success"
	switch {
	case result != nil && result.Canceled:
		outcome = "canceled"
	case execErr != nil:
		outcome = "failed"
	}

	if r.Recorder != nil {
		r.Recorder.ObserveRunDuration(elapsed)
		r.Recorder.IncRunOutcome(outcome)
	}
	if r.Store != nil {
		nObs := 0
		if rs.Frame != nil {
			nObs = rs.Frame.Len()
		}
		// Best effort: a full outputs tree matters more than history bookkeeping.
		if err := r.Store.RecordRunFinish(context.WithoutCancel(ctx), runID, outcome, nObs); err != nil {
			slog.Warn("Failed to record run finish", slog.Any("error", err))
		}
	}

	if execErr != nil {
		return rs, execErr
	}
	slog.Info("Pipeline run completed",
		slog.String("run_id", runID),
		slog.String("output", cfg.Output.Directory),
		slog.Duration("elapsed", elapsed))
	return rs, nil
}
