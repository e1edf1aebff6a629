// Package watch re-runs the pipeline when the configuration changes or on a
// fixed schedule.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
)

// TriggerFunc is invoked for every (debounced) re-run request.
type TriggerFunc func(ctx context.Context, reason string)

// Watcher monitors the configuration file and optionally schedules periodic
// re-runs. Rapid file events are debounced into a single trigger.
type Watcher struct {
	configPath string
	debounce   time.Duration
	interval   time.Duration
	trigger    TriggerFunc

	watcher    *fsnotify.Watcher
	scheduler  gocron.Scheduler
	reloadChan chan struct{}
	stopChan   chan struct{}
}

// New creates a watcher for the given configuration file.
// interval <= 0 disables scheduled re-runs.
func New(configPath string, debounce, interval time.Duration, trigger TriggerFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	w := &Watcher{
		configPath: absPath,
		debounce:   debounce,
		interval:   interval,
		trigger:    trigger,
		watcher:    fw,
		reloadChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}

	if interval > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		w.scheduler = s
	}
	return w, nil
}

// Start begins monitoring. Watching the directory is more reliable than
// watching the file directly (editors replace files on save).
func (w *Watcher) Start(ctx context.Context) error {
	configDir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(configDir); err != nil {
		return fmt.Errorf("watch config directory %s: %w", configDir, err)
	}

	slog.Info("Watching configuration",
		slog.String("config", w.configPath),
		slog.Duration("debounce", w.debounce))

	go w.watchLoop(ctx)
	go w.reloadLoop(ctx)

	if w.scheduler != nil {
		_, err := w.scheduler.NewJob(
			gocron.DurationJob(w.interval),
			gocron.NewTask(func() {
				w.trigger(ctx, "schedule")
			}),
			gocron.WithName("scheduled-run"),
		)
		if err != nil {
			return fmt.Errorf("schedule periodic run: %w", err)
		}
		w.scheduler.Start()
		slog.Info("Scheduled periodic runs", slog.Duration("interval", w.interval))
	}
	return nil
}

// Stop stops the watcher and the scheduler.
func (w *Watcher) Stop() error {
	close(w.stopChan)
	err := w.watcher.Close()
	if w.scheduler != nil {
		if serr := w.scheduler.Shutdown(); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.configPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("Configuration change detected", slog.String("op", event.Op.String()))
			select {
			case w.reloadChan <- struct{}{}:
			default:
				// A reload is already pending.
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-w.reloadChan:
			// Debounce: editors fire several events per save.
			timer := time.NewTimer(w.debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-w.stopChan:
				timer.Stop()
				return
			case <-timer.C:
			}
			// Drain anything that arrived during the debounce window.
			select {
			case <-w.reloadChan:
			default:
			}
			w.trigger(ctx, "config-change")
		}
	}
}
