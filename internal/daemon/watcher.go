// Package daemon observes the dock engagement state and drives the
// configured reaction when it changes.
package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StatusSource is the slice of the dock sensor the watcher needs.
type StatusSource interface {
	Docked() bool
	DockedPath() string
}

// WatcherConfig holds configuration for the dock watcher.
type WatcherConfig struct {
	// Interval between polls. Sysfs attribute files do not reliably emit
	// inotify events, so the ticker is the backstop; fsnotify just makes
	// reactions faster when events do arrive.
	Interval time.Duration
	Logger   *slog.Logger
}

// Watcher tracks dock engagement and invokes a callback on every change.
type Watcher struct {
	sensor   StatusSource
	interval time.Duration
	onChange func(docked bool)
	logger   *slog.Logger
}

// NewWatcher creates a dock watcher. onChange runs on the watcher goroutine
// whenever the engagement state flips.
func NewWatcher(cfg WatcherConfig, sensor StatusSource, onChange func(docked bool)) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		sensor:   sensor,
		interval: interval,
		onChange: onChange,
		logger:   logger,
	}
}

// Run starts the watch loop. Blocks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	// Watch the containing directory; the status file itself may be
	// recreated by the driver.
	if err := fsw.Add(filepath.Dir(w.sensor.DockedPath())); err != nil {
		w.logger.Warn("cannot watch dock status directory, polling only", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.sensor.Docked()
	w.logger.Info("dock watcher started", "interval", w.interval, "docked", last)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dock watcher stopped")
			return ctx.Err()
		case event := <-fsw.Events:
			if event.Name != w.sensor.DockedPath() {
				continue
			}
			last = w.check(last)
		case err := <-fsw.Errors:
			w.logger.Warn("dock watch error", "error", err)
		case <-ticker.C:
			last = w.check(last)
		}
	}
}

// check compares the current engagement state against the previous one and
// fires the callback on a flip.
func (w *Watcher) check(last bool) bool {
	cur := w.sensor.Docked()
	if cur == last {
		return last
	}
	w.logger.Info("dock state changed", "docked", cur)
	if w.onChange != nil {
		w.onChange(cur)
	}
	return cur
}
