// Package config handles configuration loading and validation for
// driftwatch.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/driftwatch/internal/core/scoring"
)

// Config holds the application configuration.
type Config struct {
	Root    string        `yaml:"root"`
	Watcher WatcherConfig `yaml:"watcher"`
	Diff    DiffConfig    `yaml:"diff"`
	Cache   CacheConfig   `yaml:"cache"`
	Origin  OriginConfig  `yaml:"origin"`
	Scoring scoring.Table `yaml:"scoring"`
	Session SessionConfig `yaml:"session"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// WatcherConfig tunes event intake: debounce/batch windows are in
// milliseconds, include/exclude are doublestar globs matched against paths
// relative to the root.
type WatcherConfig struct {
	DebounceMS    int      `yaml:"debounce_ms"`
	BatchWindowMS int      `yaml:"batch_window_ms"`
	Include       []string `yaml:"include"`
	Exclude       []string `yaml:"exclude"`
	EventBuffer   int      `yaml:"event_buffer"`
	// MaxEvents bounds the in-memory window of finalized changes retained
	// while watching; the oldest entries are dropped past this count.
	MaxEvents int `yaml:"max_events"`
}

// Debounce returns the per-path settle window.
func (w WatcherConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// BatchWindow returns the idle gap that closes a batch.
func (w WatcherConfig) BatchWindow() time.Duration {
	return time.Duration(w.BatchWindowMS) * time.Millisecond
}

// DiffConfig tunes diff computation.
type DiffConfig struct {
	Algorithm    string `yaml:"algorithm"`
	ContextLines int    `yaml:"context_lines"`
	MaxFileSize  int64  `yaml:"max_file_size"` // bytes
	Workers      int    `yaml:"workers"`
}

// CacheConfig bounds the three LRU caches, in entries.
type CacheConfig struct {
	Content   int `yaml:"content"`
	Diff      int `yaml:"diff"`
	Highlight int `yaml:"highlight"`
}

// OriginConfig tunes origin attribution.
type OriginConfig struct {
	// BatchThreshold is the batch size at which changes with no activity
	// signal are attributed to automated tooling. Zero disables the
	// heuristic.
	BatchThreshold int `yaml:"batch_threshold"`
	// ScanProcesses enables the process-table scan for known tools.
	ScanProcesses bool `yaml:"scan_processes"`
	ScanTTLMS     int  `yaml:"scan_ttl_ms"`
}

// ScanTTL returns how long one process scan is reused.
func (o OriginConfig) ScanTTL() time.Duration {
	return time.Duration(o.ScanTTLMS) * time.Millisecond
}

// SessionConfig locates review session snapshots.
type SessionConfig struct {
	Dir string `yaml:"dir"` // defaults to <data dir>/sessions
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Root: ".",
		Watcher: WatcherConfig{
			DebounceMS:    100,
			BatchWindowMS: 5000,
			EventBuffer:   64,
			MaxEvents:     500,
		},
		Diff: DiffConfig{
			Algorithm:    "myers",
			ContextLines: 3,
			MaxFileSize:  1 << 20,
			Workers:      4,
		},
		Cache: CacheConfig{
			Content:   200,
			Diff:      100,
			Highlight: 100,
		},
		Origin: OriginConfig{
			BatchThreshold: 3,
			ScanProcesses:  true,
			ScanTTLMS:      5000,
		},
		Scoring: scoring.DefaultTable(),
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the
// provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Root == "" {
		c.Root = defaults.Root
	}
	if c.Watcher.DebounceMS == 0 {
		c.Watcher.DebounceMS = defaults.Watcher.DebounceMS
	}
	if c.Watcher.BatchWindowMS == 0 {
		c.Watcher.BatchWindowMS = defaults.Watcher.BatchWindowMS
	}
	if c.Watcher.EventBuffer == 0 {
		c.Watcher.EventBuffer = defaults.Watcher.EventBuffer
	}
	if c.Watcher.MaxEvents == 0 {
		c.Watcher.MaxEvents = defaults.Watcher.MaxEvents
	}
	if c.Diff.Algorithm == "" {
		c.Diff.Algorithm = defaults.Diff.Algorithm
	}
	if c.Diff.ContextLines == 0 {
		c.Diff.ContextLines = defaults.Diff.ContextLines
	}
	if c.Diff.MaxFileSize == 0 {
		c.Diff.MaxFileSize = defaults.Diff.MaxFileSize
	}
	if c.Diff.Workers == 0 {
		c.Diff.Workers = defaults.Diff.Workers
	}
	if c.Cache.Content == 0 {
		c.Cache.Content = defaults.Cache.Content
	}
	if c.Cache.Diff == 0 {
		c.Cache.Diff = defaults.Cache.Diff
	}
	if c.Cache.Highlight == 0 {
		c.Cache.Highlight = defaults.Cache.Highlight
	}
	if c.Origin.ScanTTLMS == 0 {
		c.Origin.ScanTTLMS = defaults.Origin.ScanTTLMS
	}
	if c.Scoring.DefaultBase == 0 {
		c.Scoring.DefaultBase = defaults.Scoring.DefaultBase
	}
	if c.Scoring.BaseScores == nil {
		c.Scoring.BaseScores = defaults.Scoring.BaseScores
	}
	if c.Scoring.Rules == nil {
		c.Scoring.Rules = defaults.Scoring.Rules
	}
	if c.Scoring.MediumChangeLines == 0 {
		c.Scoring.MediumChangeLines = defaults.Scoring.MediumChangeLines
		c.Scoring.MediumChangePenalty = defaults.Scoring.MediumChangePenalty
	}
	if c.Scoring.LargeChangeLines == 0 {
		c.Scoring.LargeChangeLines = defaults.Scoring.LargeChangeLines
		c.Scoring.LargeChangePenalty = defaults.Scoring.LargeChangePenalty
	}
	if c.Session.Dir == "" && c.DataDir != "" {
		c.Session.Dir = filepath.Join(c.DataDir, "sessions")
	}
}

// SessionPath returns the snapshot location for the current review session.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Session.Dir, "current.json")
}
