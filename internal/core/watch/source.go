// Package watch delivers raw filesystem notifications for a directory tree.
// It owns recursive fsnotify registration and path filtering; debouncing and
// everything downstream consume its events through a channel.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/logging"
)

const rawBufferSize = 256

// RawEvent is one undebounced filesystem notification.
type RawEvent struct {
	Path string // absolute path
	Rel  string // path relative to the watch root
	Kind change.Kind
	Time time.Time
}

// Source watches a directory tree recursively and emits filtered raw events.
type Source struct {
	root    string
	watcher *fsnotify.Watcher
	filter  *Filter
	out     chan RawEvent
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSource starts watching root and all directories beneath it. Directories
// created later are picked up automatically.
func NewSource(root string, filter *Filter) (*Source, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Source{
		root:    abs,
		watcher: watcher,
		filter:  filter,
		out:     make(chan RawEvent, rawBufferSize),
		log:     logging.Component("watch"),
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := s.addTree(abs); err != nil {
		cancel()
		_ = watcher.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.run()

	return s, nil
}

// Events returns the raw event channel. It is closed by Close.
func (s *Source) Events() <-chan RawEvent {
	return s.out
}

// Close stops watching and closes the event channel.
func (s *Source) Close() error {
	s.cancel()
	err := s.watcher.Close()
	s.wg.Wait()
	close(s.out)
	return err
}

// addTree registers dir and every non-excluded directory beneath it.
func (s *Source) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(s.root, p); relErr == nil && rel != "." && s.filter.ExcludedDir(rel) {
			return filepath.SkipDir
		}
		if err := s.watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (s *Source) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (s *Source) handleEvent(event fsnotify.Event) {
	kind, ok := mapOp(event.Op)
	if !ok {
		return
	}

	// New directories must be registered before their contents change.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			rel, relErr := filepath.Rel(s.root, event.Name)
			if relErr == nil && !s.filter.ExcludedDir(rel) {
				if err := s.addTree(event.Name); err != nil {
					s.log.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
				}
			}
			return
		}
	}

	rel, err := filepath.Rel(s.root, event.Name)
	if err != nil {
		return
	}
	if !s.filter.Included(rel) {
		return
	}

	raw := RawEvent{
		Path: event.Name,
		Rel:  rel,
		Kind: kind,
		Time: time.Now(),
	}
	select {
	case s.out <- raw:
	case <-s.ctx.Done():
	}
}

// mapOp translates an fsnotify op bitmask to a logical change kind. Chmod is
// metadata-only noise and produces nothing.
func mapOp(op fsnotify.Op) (change.Kind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return change.KindCreated, true
	case op.Has(fsnotify.Write):
		return change.KindModified, true
	case op.Has(fsnotify.Remove):
		return change.KindDeleted, true
	case op.Has(fsnotify.Rename):
		return change.KindMoved, true
	default:
		return "", false
	}
}
