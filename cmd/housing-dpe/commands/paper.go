package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/paper"
)

// PaperCmd implements the 'paper' command. It refuses to build unless the
// pipeline outputs exist.
type PaperCmd struct{}

func (p *PaperCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return paperBuilder(cfg).Build(ctx)
}

// ViewCmd implements the 'view' command: best-effort open of the built PDF.
type ViewCmd struct{}

func (v *ViewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	b := paperBuilder(cfg)
	if _, err := os.Stat(b.PDFPath()); err != nil {
		slog.Warn("No compiled paper to open", slog.String("pdf", b.PDFPath()))
		return nil
	}
	b.View(context.Background())
	return nil
}

// CleanCmd implements the 'clean' command. Without flags it removes both the
// outputs and the paper build directory; missing directories are fine.
type CleanCmd struct {
	Outputs bool `help:"Only remove the pipeline output directory"`
	Paper   bool `help:"Only remove the paper build directory"`
}

func (c *CleanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	all := !c.Outputs && !c.Paper

	if c.Outputs || all {
		if err := os.RemoveAll(cfg.Output.Directory); err != nil {
			return fmt.Errorf("remove outputs: %w", err)
		}
		slog.Info("Removed outputs", slog.String("dir", cfg.Output.Directory))
	}
	if c.Paper || all {
		if err := paperBuilder(cfg).Clean(context.Background()); err != nil {
			return fmt.Errorf("remove paper build: %w", err)
		}
		slog.Info("Removed paper build", slog.String("dir", cfg.Paper.BuildDir))
	}
	return nil
}

// AllCmd implements 'all': pipeline run followed by the paper build.
type AllCmd struct{}

func (a *AllCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runPipeline(ctx, cfg, root.Config); err != nil {
		return err
	}
	return paperBuilder(cfg).Build(ctx)
}

func paperBuilder(cfg *config.Config) *paper.Builder {
	return paper.NewBuilder(cfg.Paper.Document, cfg.Paper.BuildDir, cfg.Paper.Latexmk, cfg.Output.Directory)
}
