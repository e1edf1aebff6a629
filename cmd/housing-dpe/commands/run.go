package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/pipeline"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Outdir string `short:"o" help:"Override the configured output directory"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if r.Outdir != "" {
		cfg.Output.Directory = r.Outdir
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runPipeline(ctx, cfg, root.Config)
}

// runPipeline executes the pipeline with the run history store attached.
func runPipeline(ctx context.Context, cfg *config.Config, configPath string) error {
	store := openStore(cfg)
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	runner := &pipeline.Runner{Store: store}
	if _, err := runner.Run(ctx, cfg, configPath); err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	return nil
}
