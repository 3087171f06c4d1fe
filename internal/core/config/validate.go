package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"

	"github.com/colonyops/driftwatch/internal/core/diff"
)

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root cannot be empty")
	}
	if c.Watcher.DebounceMS < 1 {
		return fmt.Errorf("watcher.debounce_ms must be at least 1")
	}
	if c.Watcher.BatchWindowMS < c.Watcher.DebounceMS {
		return fmt.Errorf("watcher.batch_window_ms must be at least watcher.debounce_ms")
	}
	if _, err := diff.ParseAlgorithm(c.Diff.Algorithm); err != nil {
		return fmt.Errorf("diff.algorithm: %w", err)
	}
	if c.Diff.ContextLines < 0 {
		return fmt.Errorf("diff.context_lines cannot be negative")
	}
	if c.Diff.Workers < 1 {
		return fmt.Errorf("diff.workers must be at least 1")
	}
	if c.Cache.Content < 1 || c.Cache.Diff < 1 || c.Cache.Highlight < 1 {
		return fmt.Errorf("cache capacities must be at least 1")
	}

	table := c.Scoring
	if err := table.Compile(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}

// ValidateDeep performs comprehensive validation including glob patterns and
// filesystem access. This calls Validate() first for basic structural
// validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("root", c.Root, isDirectory),
		criterio.Run("session.dir", c.Session.Dir, isDirectoryOrNotExist),
		c.validatePatterns(),
	)
}

// validatePatterns checks watcher globs.
func (c *Config) validatePatterns() error {
	var errs criterio.FieldErrorsBuilder
	for i, p := range c.Watcher.Include {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("watcher.include[%d]", i), fmt.Errorf("invalid glob pattern %q", p))
		}
	}
	for i, p := range c.Watcher.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = errs.Append(fmt.Sprintf("watcher.exclude[%d]", i), fmt.Errorf("invalid glob pattern %q", p))
		}
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
