// Package debounce coalesces bursts of raw filesystem notifications into
// single logical change events and groups temporally clustered events into
// batches.
package debounce

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/logging"
)

const (
	// DefaultWindow is the per-path settle window.
	DefaultWindow = 100 * time.Millisecond
	// DefaultBatchWindow is the idle gap that closes a batch.
	DefaultBatchWindow = 5 * time.Second
	// DefaultBuffer is the capacity of the emitted event channel.
	DefaultBuffer = 64
)

// Options configure a Debouncer. Zero values fall back to the defaults.
type Options struct {
	Window      time.Duration
	BatchWindow time.Duration
	Buffer      int
}

func (o *Options) applyDefaults() {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.BatchWindow <= 0 {
		o.BatchWindow = DefaultBatchWindow
	}
	if o.Buffer <= 0 {
		o.Buffer = DefaultBuffer
	}
}

// pathState is the pending window for one path. first and last are the raw
// kinds observed at the window's edges; they determine the folded kind when
// the window settles.
type pathState struct {
	timer    *time.Timer
	first    change.Kind
	last     change.Kind
	allMoved bool
}

// Debouncer turns raw per-path notifications into debounced change events.
// Each path settles independently; a notification arriving while a path is
// pending restarts that path's window instead of stacking a second timer.
type Debouncer struct {
	opts Options
	log  zerolog.Logger
	out  chan change.Event

	mu         sync.Mutex
	pending    map[string]*pathState
	closed     bool
	batchID    string
	lastSettle time.Time
}

// New builds a Debouncer and starts accepting notifications immediately.
func New(opts Options) *Debouncer {
	opts.applyDefaults()
	return &Debouncer{
		opts:    opts,
		log:     logging.Component("debounce"),
		out:     make(chan change.Event, opts.Buffer),
		pending: make(map[string]*pathState),
	}
}

// Events returns the channel of settled change events. The channel is closed
// by Close.
func (d *Debouncer) Events() <-chan change.Event {
	return d.out
}

// Notify records a raw notification for path. kind is the raw notification
// kind mapped onto the logical change kinds. The emitted event is stamped
// with its settle time, not the raw notification time.
func (d *Debouncer) Notify(path string, kind change.Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if st, ok := d.pending[path]; ok {
		st.last = kind
		if kind != change.KindMoved {
			st.allMoved = false
		}
		st.timer.Reset(d.opts.Window)
		return
	}

	st := &pathState{
		first:    kind,
		last:     kind,
		allMoved: kind == change.KindMoved,
	}
	st.timer = time.AfterFunc(d.opts.Window, func() {
		d.settle(path)
	})
	d.pending[path] = st
}

// Close stops all pending timers, discards unsettled paths, and closes the
// event channel.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	for _, st := range d.pending {
		st.timer.Stop()
	}
	d.pending = make(map[string]*pathState)
	close(d.out)
}

// settle emits the folded event for path once its window has elapsed.
func (d *Debouncer) settle(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.pending[path]
	if !ok || d.closed {
		return
	}
	delete(d.pending, path)

	kind, emit := fold(st)
	if !emit {
		// Created then Deleted inside one window: the file never existed
		// from an observer's viewpoint.
		d.log.Debug().Str("path", path).Msg("create+delete collapsed, nothing to emit")
		return
	}

	now := time.Now()
	if d.batchID == "" || now.Sub(d.lastSettle) >= d.opts.BatchWindow {
		d.batchID = uuid.NewString()
		d.log.Debug().Str("batch_id", d.batchID).Msg("opened new batch")
	}
	d.lastSettle = now

	ev := change.Event{
		Path:      path,
		Kind:      kind,
		Timestamp: now,
		BatchID:   d.batchID,
	}

	select {
	case d.out <- ev:
	default:
		// Consumer is behind; dropping beats blocking the timer goroutine.
		d.log.Warn().Str("path", path).Msg("event channel full, dropping event")
	}
}

// fold resolves the raw kinds observed during one window into the logical
// kind to emit. emit is false when the sequence cancels itself out.
func fold(st *pathState) (kind change.Kind, emit bool) {
	switch {
	case st.first == change.KindCreated && st.last == change.KindDeleted:
		return "", false
	case st.last == change.KindDeleted:
		return change.KindDeleted, true
	case st.first == change.KindCreated:
		return change.KindCreated, true
	case st.allMoved:
		return change.KindMoved, true
	default:
		return change.KindModified, true
	}
}
