// Package watcher polls a sheet source in the background, appends new
// deltas to the local cache and emits alerts about what changed.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Refresher pulls new deltas into the cache. *sheet.Loader implements it.
type Refresher interface {
	Refresh(ctx context.Context, command string) (added, maxVersion int, err error)
}

// WatchState is the outcome of one poll.
type WatchState struct {
	Timestamp  time.Time
	Added      int
	MaxVersion int
	Err        error
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher polls at a fixed interval.
type Watcher struct {
	source        Refresher
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)
	lastAlertKeys map[string]bool
	failures      int
	log           zerolog.Logger
}

// New creates a Watcher that refreshes source every interval.
func New(source Refresher, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		source:        source,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		log:           zerolog.Nop(),
	}
}

// WithLogger sets the logger used for per-poll debug lines.
func (w *Watcher) WithLogger(log zerolog.Logger) *Watcher {
	w.log = log
	return w
}

// Run polls once immediately, then at every interval. Blocks until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.emit(w.Check(ctx))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.emit(w.Check(ctx))
		}
	}
}

func (w *Watcher) emit(alerts []Alert) {
	if w.alertFn == nil {
		return
	}
	for _, a := range alerts {
		w.alertFn(a)
	}
}

// Check performs one poll and returns the alerts it raised. An alert
// identical to one raised by the previous poll is suppressed.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr := w.Poll(ctx)
	if curr.Err != nil {
		w.failures++
	} else {
		w.failures = 0
	}

	raw := Compare(w.previous, curr, w.failures)

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

	if curr.Err == nil {
		w.previous = curr
	}
	return alerts
}

// Poll refreshes the cache once.
func (w *Watcher) Poll(ctx context.Context) *WatchState {
	state := &WatchState{Timestamp: time.Now()}
	added, ver, err := w.source.Refresh(ctx, "watch")
	if err != nil {
		state.Err = fmt.Errorf("refreshing cache: %w", err)
		w.log.Debug().Err(err).Msg("poll failed")
		return state
	}
	state.Added = added
	state.MaxVersion = ver
	w.log.Debug().Int("added", added).Int("version", ver).Msg("poll")
	return state
}
