// Package highlight produces syntax-highlighted preview spans for diff
// lines. Highlighting is opportunistic presentation data and never affects
// diff correctness; failures fall back to plain text.
package highlight

import (
	"crypto/sha256"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/logging"
	"github.com/colonyops/driftwatch/pkg/lru"
)

// DefaultCapacity bounds the highlight cache when no capacity is configured.
const DefaultCapacity = 100

// Span is a run of text sharing one color.
type Span struct {
	Text  string
	Color string // hex color string, empty for default
}

// Line is one highlighted source line.
type Line struct {
	Spans []Span
}

// Plain returns the line's text with highlighting stripped.
func (l Line) Plain() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// cacheKey identifies a highlight computation by path (for lexer choice) and
// content hash, so edits invalidate naturally.
type cacheKey struct {
	path string
	sum  [sha256.Size]byte
}

// Highlighter tokenizes source lines with chroma and caches the results.
type Highlighter struct {
	style *chroma.Style
	cache *lru.Cache[cacheKey, []Line]
	log   zerolog.Logger
}

// New builds a highlighter with a bounded result cache. capacity <= 0 uses
// DefaultCapacity.
func New(capacity int) *Highlighter {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{
		style: style,
		cache: lru.New[cacheKey, []Line](capacity),
		log:   logging.Component("highlight"),
	}
}

// Lines highlights source lines for the language inferred from path. It
// always returns exactly one Line per input line.
func (h *Highlighter) Lines(path string, lines []string) []Line {
	source := strings.Join(lines, "\n")
	key := cacheKey{path: path, sum: sha256.Sum256([]byte(source))}
	if cached, ok := h.cache.Get(key); ok {
		return cached
	}

	result := h.tokenize(path, source, len(lines))
	h.cache.Put(key, result)
	return result
}

func (h *Highlighter) tokenize(path, source string, lineCount int) []Line {
	lexer := lexerFor(path)
	if lexer == nil {
		return plain(source, lineCount)
	}

	it, err := lexer.Tokenise(nil, source)
	if err != nil {
		h.log.Debug().Err(err).Str("path", path).Msg("tokenize failed, falling back to plain")
		return plain(source, lineCount)
	}

	result := make([]Line, 0, lineCount)
	var current Line
	for _, token := range it.Tokens() {
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				result = append(result, current)
				current = Line{}
			}
			if part == "" {
				continue
			}
			current.Spans = append(current.Spans, Span{
				Text:  part,
				Color: h.colorFor(token.Type),
			})
		}
	}
	result = append(result, current)

	for len(result) < lineCount {
		result = append(result, Line{})
	}
	return result[:lineCount]
}

func (h *Highlighter) colorFor(tt chroma.TokenType) string {
	entry := h.style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}

func plain(source string, lineCount int) []Line {
	lines := strings.Split(source, "\n")
	result := make([]Line, lineCount)
	for i := range result {
		if i < len(lines) {
			result[i] = Line{Spans: []Span{{Text: lines[i]}}}
		}
	}
	return result
}

// lexerFor picks a chroma lexer from the file name, falling back to matching
// on the bare extension.
func lexerFor(path string) chroma.Lexer {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		if ext := filepath.Ext(path); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	return lexer
}
