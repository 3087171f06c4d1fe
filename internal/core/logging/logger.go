// Package logging provides component-scoped loggers and context propagation
// for the fields shared across pipeline stages.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// ForPath returns a component logger pre-bound to a watched path, for code
// whose whole lifetime concerns one file.
func ForPath(name, path string) zerolog.Logger {
	return log.With().Str("cmp", name).Str("path", path).Logger()
}
