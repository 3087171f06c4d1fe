// Package activity detects change-producing tools running on the host by
// scanning the process table. It backs origin attribution: a change observed
// while a known AI assistant is running is attributed to that assistant.
package activity

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/logging"
	"github.com/colonyops/driftwatch/pkg/executil"
)

// Tool is a known change-producing process.
type Tool struct {
	Name   string
	Origin change.Origin
}

// knownTools maps process names to the tools they belong to. AI assistants
// outrank formatters when both are running.
var knownTools = map[string]Tool{
	"claude":   {Name: "claude", Origin: change.OriginAI},
	"cursor":   {Name: "cursor", Origin: change.OriginAI},
	"aider":    {Name: "aider", Origin: change.OriginAI},
	"copilot":  {Name: "copilot", Origin: change.OriginAI},
	"codex":    {Name: "codex", Origin: change.OriginAI},
	"gemini":   {Name: "gemini", Origin: change.OriginAI},
	"windsurf": {Name: "windsurf", Origin: change.OriginAI},
	"gofmt":    {Name: "gofmt", Origin: change.OriginTool},
	"rustfmt":  {Name: "rustfmt", Origin: change.OriginTool},
	"prettier": {Name: "prettier", Origin: change.OriginTool},
	"eslint":   {Name: "eslint", Origin: change.OriginTool},
}

const scanTimeout = 2 * time.Second

// Scanner polls the process table for known tools. Scans are cached for ttl
// so a burst of changes costs a single process listing.
type Scanner struct {
	exec executil.Executor
	ttl  time.Duration
	log  zerolog.Logger

	mu        sync.Mutex
	scannedAt time.Time
	active    []Tool
}

// NewScanner builds a scanner over the given executor. ttl bounds how long a
// scan result is reused.
func NewScanner(exec executil.Executor, ttl time.Duration) *Scanner {
	return &Scanner{
		exec: exec,
		ttl:  ttl,
		log:  logging.Component("activity"),
	}
}

// ActiveTool reports the highest-priority known tool running near time t.
// AI assistants win over formatters. ok is false when nothing matched or the
// process table could not be read.
func (s *Scanner) ActiveTool(t time.Time) (name string, origin change.Origin, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.scannedAt) > s.ttl {
		s.active = s.scan()
		s.scannedAt = time.Now()
	}

	var fallback *Tool
	for i := range s.active {
		tool := s.active[i]
		if tool.Origin == change.OriginAI {
			return tool.Name, tool.Origin, true
		}
		if fallback == nil {
			fallback = &s.active[i]
		}
	}
	if fallback != nil {
		return fallback.Name, fallback.Origin, true
	}
	return "", change.OriginUnknown, false
}

func (s *Scanner) scan() []Tool {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	out, err := s.exec.Run(ctx, "ps", "-eo", "comm=")
	if err != nil {
		s.log.Debug().Err(err).Msg("process scan failed")
		return nil
	}

	seen := map[string]bool{}
	var active []Tool
	for _, line := range strings.Split(string(out), "\n") {
		comm := strings.ToLower(strings.TrimSpace(line))
		if comm == "" {
			continue
		}
		// ps reports the base name, but strip any path just in case.
		if i := strings.LastIndexByte(comm, '/'); i >= 0 {
			comm = comm[i+1:]
		}
		tool, found := knownTools[comm]
		if !found || seen[tool.Name] {
			continue
		}
		seen[tool.Name] = true
		active = append(active, tool)
	}
	if len(active) > 0 {
		s.log.Debug().Int("count", len(active)).Msg("known tools active")
	}
	return active
}
