// Package change defines the domain model for observed filesystem changes:
// the logical event produced by debouncing, its origin attribution, and the
// confidence score attached after diffing.
package change

import "time"

// Kind classifies a logical filesystem change.
type Kind string

// Supported change kinds.
const (
	KindCreated  Kind = "created"
	KindModified Kind = "modified"
	KindDeleted  Kind = "deleted"
	KindMoved    Kind = "moved"
)

// Origin identifies who or what authored a change. Origin is a heuristic
// signal, not ground truth.
type Origin string

// Supported change origins.
const (
	OriginUnknown Origin = "unknown"
	OriginHuman   Origin = "human"
	OriginAI      Origin = "ai"
	OriginTool    Origin = "tool"
)

// Level buckets a confidence score into operator-facing severity.
type Level string

// Confidence levels, ordered from least to most scrutiny required.
const (
	LevelSafe   Level = "safe"   // score >= 0.7
	LevelReview Level = "review" // score >= 0.4
	LevelRisky  Level = "risky"  // score < 0.4
)

// LevelForScore maps a confidence score in [0,1] to its level.
func LevelForScore(score float64) Level {
	switch {
	case score >= 0.7:
		return LevelSafe
	case score >= 0.4:
		return LevelReview
	default:
		return LevelRisky
	}
}

// Confidence is the deterministic risk estimate for a change. Score runs
// from 0 (risky) to 1 (safe). Reasons list the rules that lowered the score.
type Confidence struct {
	Score   float64  `json:"score"`
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons,omitempty"`
}

// Event is one debounced logical change to a single path. Path, Kind,
// Timestamp, and BatchID are fixed at emission; Origin, Tool, and Confidence
// are attached by later pipeline stages and immutable afterwards.
type Event struct {
	Path      string    `json:"path"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	BatchID   string    `json:"batch_id,omitempty"`

	Origin     Origin      `json:"origin"`
	Tool       string      `json:"tool,omitempty"` // tool name when Origin is ai or tool
	Confidence *Confidence `json:"confidence,omitempty"`

	// Preview holds a bounded content prefix for created files.
	Preview string `json:"preview,omitempty"`
	// Note carries a non-fatal problem encountered while producing the
	// event, such as content that could not be read at settle time.
	Note string `json:"note,omitempty"`
}
