package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigChangeTriggersRun(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("seed: 1\nn_rows: 10\n"), 0o644))

	triggered := make(chan string, 4)
	w, err := New(configPath, 50*time.Millisecond, 0, func(_ context.Context, reason string) {
		triggered <- reason
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	// Give the watcher a moment to install before mutating the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(configPath, []byte("seed: 2\nn_rows: 10\n"), 0o644))

	select {
	case reason := <-triggered:
		if reason != "config-change" {
			t.Errorf("expected config-change trigger, got %q", reason)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not trigger on config change")
	}
}

func TestUnrelatedFileDoesNotTrigger(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("seed: 1\nn_rows: 10\n"), 0o644))

	var count atomic.Int32
	w, err := New(configPath, 20*time.Millisecond, 0, func(context.Context, string) {
		count.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(300 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected no triggers for unrelated file, got %d", got)
	}
}

func TestScheduledTrigger(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("seed: 1\nn_rows: 10\n"), 0o644))

	triggered := make(chan string, 16)
	w, err := New(configPath, 20*time.Millisecond, 100*time.Millisecond, func(_ context.Context, reason string) {
		triggered <- reason
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case reason := <-triggered:
			if reason == "schedule" {
				return
			}
		case <-deadline:
			t.Fatal("no scheduled trigger observed")
		}
	}
}

func TestStopIsIdempotentlySafe(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "params.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("seed: 1\nn_rows: 10\n"), 0o644))

	w, err := New(configPath, 10*time.Millisecond, 0, func(context.Context, string) {})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Stop())
}
