// Package watcher monitors a .blend file for changes, re-extracts its
// statistics when it is saved, and emits alerts describing what moved.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/blendstats/internal/blend"
)

// ErrNoProjectFile is returned by Run when the reader has no real project
// path (it is using the bundled sample).
var ErrNoProjectFile = errors.New("no project file to watch")

// WatchState captures a point-in-time view of the watched file.
type WatchState struct {
	Timestamp time.Time
	Exists    bool
	ModTime   time.Time
	Size      int64
	Values    map[string]float64
	Err       error // extraction error, if the last extraction failed
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher polls a project file at a regular interval and re-runs the
// extraction whenever its modification time or size changes.
type Watcher struct {
	reader        *blend.Reader
	path          string
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
}

// New creates a Watcher for the reader's project file.
func New(reader *blend.Reader, interval time.Duration, alertFn func(Alert)) *Watcher {
	path, _ := reader.ProjectPath()
	return &Watcher{
		reader:        reader,
		path:          path,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
	}
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Previous returns the last observed state, or nil before the first snapshot.
func (w *Watcher) Previous() *WatchState {
	return w.previous
}

// Run takes an initial snapshot unless one was already taken, then checks at
// every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.path == "" {
		return ErrNoProjectFile
	}

	if w.previous == nil {
		initial, err := w.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("initial snapshot: %w", err)
		}
		w.previous = initial
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			alerts := w.Check(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			for _, a := range alerts {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Start takes the initial snapshot and records it as the baseline.
func (w *Watcher) Start(ctx context.Context) (*WatchState, error) {
	if w.path == "" {
		return nil, ErrNoProjectFile
	}
	state, err := w.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	w.previous = state
	return state, nil
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if ctx.Err() != nil {
		// Shutting down; an interrupted extraction is not a failure.
		return nil
	}
	if err != nil {
		return []Alert{{
			Level:   "warning",
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not read %s: %v", w.path, err),
			Time:    time.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot stats the watched file and, if it changed since the previous
// state, runs a fresh extraction. An unchanged file reuses the previous
// values without launching Blender.
func (w *Watcher) Snapshot(ctx context.Context) (*WatchState, error) {
	state := &WatchState{Timestamp: time.Now()}

	info, err := os.Stat(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, err
	}
	state.Exists = true
	state.ModTime = info.ModTime()
	state.Size = info.Size()

	if prev := w.previous; prev != nil && prev.Exists &&
		prev.ModTime.Equal(state.ModTime) && prev.Size == state.Size {
		state.Values = prev.Values
		state.Err = prev.Err
		return state, nil
	}

	stats, err := w.reader.Extract(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		state.Err = err
		return state, nil
	}
	state.Values = stats.Numbers()
	return state, nil
}
