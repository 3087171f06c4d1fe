package diff

import (
	"bytes"

	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/logging"
	"github.com/colonyops/driftwatch/pkg/lru"
)

// binarySniffLen bounds how many leading bytes are inspected for NUL when
// classifying content as binary.
const binarySniffLen = 8000

// Options configures a diff Engine.
type Options struct {
	Algorithm    Algorithm
	ContextLines int
	MaxFileSize  int64 // contents larger than this skip diffing
	MemoEntries  int   // capacity of the result memo
}

// Engine computes diffs with a bounded memo keyed by fingerprint pair,
// algorithm, and context width. Results are immutable, so a memo hit
// returns the identical value a cold computation would produce.
//
// Safe for concurrent use.
type Engine struct {
	algorithm Algorithm
	context   int
	maxSize   int64
	memo      *lru.Cache[memoKey, *Result]
	log       zerolog.Logger
}

type memoKey struct {
	oldFP     Fingerprint
	newFP     Fingerprint
	algorithm Algorithm
	context   int
}

// NewEngine creates an Engine from options, applying defaults for any
// zero values.
func NewEngine(opts Options) *Engine {
	if opts.Algorithm == "" {
		opts.Algorithm = AlgorithmMyers
	}
	if opts.ContextLines <= 0 {
		opts.ContextLines = 3
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 1 << 20
	}
	if opts.MemoEntries <= 0 {
		opts.MemoEntries = 100
	}
	return &Engine{
		algorithm: opts.Algorithm,
		context:   opts.ContextLines,
		maxSize:   opts.MaxFileSize,
		memo:      lru.New[memoKey, *Result](opts.MemoEntries),
		log:       logging.Component("diff"),
	}
}

// Algorithm returns the engine's configured algorithm.
func (e *Engine) Algorithm() Algorithm {
	return e.algorithm
}

// Diff returns the diff between the two content versions, consulting the
// memo first. Binary content or content over the size ceiling short-circuits
// to an unavailable result carrying the reason.
func (e *Engine) Diff(oldFP, newFP Fingerprint, oldData, newData []byte) *Result {
	if int64(len(oldData)) > e.maxSize || int64(len(newData)) > e.maxSize {
		return &Result{Algorithm: e.algorithm, Unavailable: ReasonTooLarge}
	}
	if isBinary(oldData) || isBinary(newData) {
		return &Result{Algorithm: e.algorithm, Unavailable: ReasonBinary}
	}

	key := memoKey{oldFP: oldFP, newFP: newFP, algorithm: e.algorithm, context: e.context}
	if cached, ok := e.memo.Get(key); ok {
		e.log.Debug().Str("old", oldFP.Short()).Str("new", newFP.Short()).Msg("diff memo hit")
		return cached
	}

	result := Compute(e.algorithm, string(oldData), string(newData), e.context)
	e.memo.Put(key, result)
	return result
}

// Unavailable builds a skipped diff result with the given reason, for
// failures detected outside the engine such as unreadable content.
func (e *Engine) Unavailable(reason Reason) *Result {
	return &Result{Algorithm: e.algorithm, Unavailable: reason}
}

// isBinary reports whether content looks binary, using the NUL-byte
// heuristic over a bounded prefix.
func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
