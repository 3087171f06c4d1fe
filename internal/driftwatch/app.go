// Package driftwatch assembles the pipeline stages into the running
// application: one App owns the caches, the diff engine, and the scorers,
// and hands out wired pipelines and watch sources.
package driftwatch

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/activity"
	"github.com/colonyops/driftwatch/internal/core/config"
	"github.com/colonyops/driftwatch/internal/core/content"
	"github.com/colonyops/driftwatch/internal/core/debounce"
	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/internal/core/highlight"
	"github.com/colonyops/driftwatch/internal/core/logging"
	"github.com/colonyops/driftwatch/internal/core/pipeline"
	"github.com/colonyops/driftwatch/internal/core/scoring"
	"github.com/colonyops/driftwatch/internal/core/watch"
	"github.com/colonyops/driftwatch/pkg/executil"
)

// App holds the long-lived pieces of the application. Caches are constructed
// once here and passed by handle into the components that need them.
type App struct {
	Config      *config.Config
	Contents    *content.Store
	Engine      *diff.Engine
	Scorer      *scoring.Scorer
	Origin      *scoring.OriginDetector
	Highlighter *highlight.Highlighter

	log zerolog.Logger
}

// NewApp wires an App from configuration. exec backs the process scanner
// used for origin attribution.
func NewApp(cfg *config.Config, exec executil.Executor) (*App, error) {
	algorithm, err := diff.ParseAlgorithm(cfg.Diff.Algorithm)
	if err != nil {
		return nil, err
	}

	scorer, err := scoring.NewScorer(cfg.Scoring)
	if err != nil {
		return nil, err
	}

	var source scoring.ActivitySource
	if cfg.Origin.ScanProcesses {
		source = activity.NewScanner(exec, cfg.Origin.ScanTTL())
	}

	return &App{
		Config:   cfg,
		Contents: content.NewStore(content.OSReader{}, cfg.Cache.Content),
		Engine: diff.NewEngine(diff.Options{
			Algorithm:    algorithm,
			ContextLines: cfg.Diff.ContextLines,
			MaxFileSize:  cfg.Diff.MaxFileSize,
			MemoEntries:  cfg.Cache.Diff,
		}),
		Scorer:      scorer,
		Origin:      scoring.NewOriginDetector(source, cfg.Origin.BatchThreshold),
		Highlighter: highlight.New(cfg.Cache.Highlight),
		log:         logging.Component("app"),
	}, nil
}

// NewSource opens a watch source over the configured root and patterns.
func (a *App) NewSource() (*watch.Source, error) {
	filter, err := watch.NewFilter(a.Config.Watcher.Include, a.Config.Watcher.Exclude)
	if err != nil {
		return nil, fmt.Errorf("build path filter: %w", err)
	}
	src, err := watch.NewSource(a.Config.Root, filter)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", a.Config.Root, err)
	}
	return src, nil
}

// NewPipeline builds a pipeline over the App's shared caches and scorers.
func (a *App) NewPipeline() *pipeline.Pipeline {
	deb := debounce.New(debounce.Options{
		Window:      a.Config.Watcher.Debounce(),
		BatchWindow: a.Config.Watcher.BatchWindow(),
		Buffer:      a.Config.Watcher.EventBuffer,
	})
	return pipeline.New(deb, a.Contents, a.Engine, a.Scorer, a.Origin, pipeline.Options{
		Workers: a.Config.Diff.Workers,
		Buffer:  a.Config.Watcher.EventBuffer,
	})
}

// CapturePath is where the watch loop persists finalized changes for later
// review and export.
func (a *App) CapturePath() string {
	return filepath.Join(a.Config.DataDir, "changes.json")
}
