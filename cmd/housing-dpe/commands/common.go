package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/runstore"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config/params.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run     RunCmd     `cmd:"" help:"Run the data-processing-and-evaluation pipeline"`
	Paper   PaperCmd   `cmd:"" help:"Compile the LaTeX paper from the pipeline outputs"`
	View    ViewCmd    `cmd:"" help:"Open the compiled paper (best effort)"`
	Clean   CleanCmd   `cmd:"" help:"Remove generated outputs and paper build artifacts"`
	All     AllCmd     `cmd:"" help:"Run the pipeline and compile the paper"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	Watch   WatchCmd   `cmd:"" help:"Re-run the pipeline on config changes or on a schedule"`
	History HistoryCmd `cmd:"" help:"List previous pipeline runs"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// configureLogging re-applies logging settings once the config file is known.
// The --verbose flag takes precedence over the configured level.
func configureLogging(cfg *config.Config, verbose bool) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case config.LogLevelDebug:
		level = slog.LevelDebug
	case config.LogLevelWarn:
		level = slog.LevelWarn
	case config.LogLevelError:
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Logging.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// openStore opens the run history store, or returns nil when disabled or
// unavailable. History is bookkeeping; the pipeline must run without it.
func openStore(cfg *config.Config) *runstore.Store {
	if cfg.State.Disabled {
		return nil
	}
	if err := os.MkdirAll(cfg.State.Directory, 0o750); err != nil {
		slog.Warn("Run history disabled: cannot create state directory",
			slog.String("dir", cfg.State.Directory),
			slog.Any("error", err))
		return nil
	}
	store, err := runstore.Open(storePath(cfg))
	if err != nil {
		slog.Warn("Run history disabled", slog.Any("error", err))
		return nil
	}
	return store
}

func storePath(cfg *config.Config) string {
	return cfg.State.Directory + string(os.PathSeparator) + "runs.db"
}
