package scoring

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/internal/core/logging"
)

// Scorer scores diffs against a compiled rule table.
type Scorer struct {
	table Table
	log   zerolog.Logger
}

// NewScorer compiles the table and returns a scorer for it.
func NewScorer(table Table) (*Scorer, error) {
	if err := table.Compile(); err != nil {
		return nil, fmt.Errorf("compile scoring table: %w", err)
	}
	return &Scorer{
		table: table,
		log:   logging.Component("scoring"),
	}, nil
}

// Score rates the diff of a change to path. The result depends only on the
// diff's added lines, its line counts, and the extension of path.
func (s *Scorer) Score(path string, result *diff.Result) change.Confidence {
	score := s.table.DefaultBase
	ext := strings.ToLower(filepath.Ext(path))
	if base, ok := s.table.BaseScores[ext]; ok {
		score = base
	}

	var reasons []string
	added := addedText(result)
	for i := range s.table.Rules {
		r := &s.table.Rules[i]
		if r.re.MatchString(added) {
			score -= r.Weight
			reasons = append(reasons, r.Reason)
		}
	}

	changed := result.Stats.Added + result.Stats.Removed
	switch {
	case s.table.LargeChangeLines > 0 && changed > s.table.LargeChangeLines:
		score -= s.table.LargeChangePenalty
		reasons = append(reasons, fmt.Sprintf("large change (%d lines)", changed))
	case s.table.MediumChangeLines > 0 && changed > s.table.MediumChangeLines:
		score -= s.table.MediumChangePenalty
		reasons = append(reasons, fmt.Sprintf("sizable change (%d lines)", changed))
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	conf := change.Confidence{
		Score:   score,
		Level:   change.LevelForScore(score),
		Reasons: reasons,
	}
	s.log.Debug().
		Str("path", path).
		Float64("score", score).
		Str("level", string(conf.Level)).
		Strs("reasons", reasons).
		Msg("scored change")
	return conf
}

func addedText(result *diff.Result) string {
	var b strings.Builder
	for _, h := range result.Hunks {
		for _, l := range h.Lines {
			if l.Kind == diff.LineAdded {
				b.WriteString(l.Text)
			}
		}
	}
	return b.String()
}
