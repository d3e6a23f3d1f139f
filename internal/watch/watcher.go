// Package watch polls local files for modification.
package watch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 500 * time.Millisecond

// Config configures the file watcher.
type Config struct {
	// Paths are the files to watch.
	Paths []string

	// Interval is the delay between polls.
	Interval time.Duration

	// Logger receives stat failures at debug level.
	Logger *slog.Logger
}

// Watcher reports files whose modification time moved forward. A file that
// disappears and comes back is reported when it returns.
type Watcher struct {
	config   Config
	onChange func(path string)
	mu       sync.Mutex
	running  bool
	stopCh   chan struct{}
	modTimes map[string]time.Time
}

// New creates a new file watcher.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	w := &Watcher{
		config:   config,
		modTimes: make(map[string]time.Time),
	}
	w.scanInitial()
	return w
}

// OnChange sets the callback for file changes. It runs on the polling
// goroutine.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Run polls until ctx is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.notify(w.Poll())
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scanInitial records the current modification times.
func (w *Watcher) scanInitial() {
	for _, p := range w.config.Paths {
		if info, err := os.Stat(p); err == nil {
			w.modTimes[p] = info.ModTime()
		}
	}
}

// Poll checks every path once and returns the changed ones in config order.
func (w *Watcher) Poll() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for _, p := range w.config.Paths {
		info, err := os.Stat(p)
		if err != nil {
			if _, known := w.modTimes[p]; known {
				w.config.Logger.Debug("watched file unavailable", "path", p, "error", err)
				delete(w.modTimes, p)
			}
			continue
		}

		last, known := w.modTimes[p]
		if !known || info.ModTime().After(last) {
			w.modTimes[p] = info.ModTime()
			changed = append(changed, p)
		}
	}
	return changed
}

func (w *Watcher) notify(paths []string) {
	if len(paths) == 0 {
		return
	}

	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	if callback == nil {
		return
	}
	for _, p := range paths {
		callback(p)
	}
}
