package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/housing-dpe/internal/config"
	"git.home.luguber.info/inful/housing-dpe/internal/metrics"
	"git.home.luguber.info/inful/housing-dpe/internal/pipeline"
	"git.home.luguber.info/inful/housing-dpe/internal/watch"
)

// WatchCmd implements the 'watch' command: run the pipeline once, then re-run
// it whenever the configuration file changes, and optionally on a schedule.
type WatchCmd struct {
	Interval time.Duration `help:"Also re-run on this interval (overrides config)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configureLogging(cfg, root.Verbose)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := openStore(cfg)
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	runner := &pipeline.Runner{Store: store}
	if cfg.Watch.MetricsListen != "" {
		reg := prom.NewRegistry()
		runner.Recorder = metrics.NewPrometheusRecorder(reg)
		go serveMetrics(ctx, cfg.Watch.MetricsListen, reg)
	}

	// The config is reloaded for every trigger so edits take effect.
	trigger := func(ctx context.Context, reason string) {
		slog.Info("Re-running pipeline", slog.String("reason", reason))
		current, err := config.Load(root.Config)
		if err != nil {
			slog.Error("Configuration invalid, keeping previous outputs", slog.Any("error", err))
			return
		}
		if _, err := runner.Run(ctx, current, root.Config); err != nil {
			slog.Error("Pipeline run failed", slog.Any("error", err))
		}
	}

	interval := cfg.Watch.Interval.Std()
	if w.Interval > 0 {
		interval = w.Interval
	}

	watcher, err := watch.New(root.Config, cfg.Watch.Debounce.Std(), interval, trigger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() { _ = watcher.Stop() }()

	// Initial run before settling into watch mode.
	if _, err := runner.Run(ctx, cfg, root.Config); err != nil {
		slog.Error("Initial pipeline run failed", slog.Any("error", err))
	}

	<-ctx.Done()
	slog.Info("Watch mode stopped")
	return nil
}

func serveMetrics(ctx context.Context, addr string, reg *prom.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", slog.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Warn("Metrics server stopped", slog.Any("error", err))
	}
}
