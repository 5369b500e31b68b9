// Package chunker splits document text into overlapping, size-bounded
// chunks along natural boundaries, as preparation for embedding.
package chunker

import (
	"fmt"
	"strings"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextChunker = (*Chunker)(nil)

// Chunker implements driven.TextChunker. Splitting is deterministic:
// the same text and options always produce the same chunk boundaries.
type Chunker struct{}

// New creates a new Chunker
func New() *Chunker {
	return &Chunker{}
}

// Split splits text into chunks.
//
// The window scan prefers natural break points: within each candidate
// window the separators are tried in priority order, and the first one
// whose last occurrence lies past MinChunkSize wins. Chunks that trim to
// less than MinChunkSize are dropped, except when the whole document is
// shorter than MinChunkSize, which yields a single chunk so short
// documents are still indexed.
func (c *Chunker) Split(text string, opts domain.ChunkingOptions) []domain.DocumentChunk {
	opts = withDefaults(opts)

	text = normalize(text, opts.PreserveFormatting)
	if text == "" {
		return nil
	}

	if len(text) < opts.MinChunkSize {
		return []domain.DocumentChunk{{
			ID:         "chunk-0",
			Text:       text,
			StartIndex: 0,
			EndIndex:   len(text),
		}}
	}

	var chunks []domain.DocumentChunk
	start := 0
	for start < len(text) {
		end := start + opts.ChunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			end = breakPoint(text, start, end, opts)
		}

		if chunk, ok := makeChunk(text, start, end, len(chunks), opts.MinChunkSize); ok {
			chunks = append(chunks, chunk)
		}

		// Overlap the next window with the tail of this one. The step is
		// clamped to at least one character so the scan always terminates,
		// even when ChunkOverlap >= ChunkSize.
		next := end - opts.ChunkOverlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// breakPoint finds where to cut the window [start, end). Separators are
// tried in priority order; the first whose last occurrence inside the
// window lies past MinChunkSize wins, and the cut includes the separator.
// Without a usable separator the window is cut at ChunkSize.
func breakPoint(text string, start, end int, opts domain.ChunkingOptions) int {
	window := text[start:end]
	for _, sep := range opts.Separators {
		idx := strings.LastIndex(window, sep)
		if idx > opts.MinChunkSize {
			return start + idx + len(sep)
		}
	}
	return end
}

// makeChunk trims the span [start, end) and emits a chunk when the
// trimmed text is long enough. Offsets always point at the trimmed span,
// so EndIndex-StartIndex equals the text length.
func makeChunk(text string, start, end, seq, minSize int) (domain.DocumentChunk, bool) {
	span := text[start:end]
	trimmed := strings.TrimSpace(span)
	if len(trimmed) < minSize {
		return domain.DocumentChunk{}, false
	}

	leading := strings.Index(span, trimmed)
	chunkStart := start + leading
	return domain.DocumentChunk{
		ID:         fmt.Sprintf("chunk-%d", seq),
		Text:       trimmed,
		StartIndex: chunkStart,
		EndIndex:   chunkStart + len(trimmed),
	}, true
}

// normalize collapses whitespace runs to single spaces and trims, unless
// the caller asked to preserve formatting
func normalize(text string, preserveFormatting bool) string {
	if preserveFormatting {
		return text
	}
	return strings.Join(strings.Fields(text), " ")
}

func withDefaults(opts domain.ChunkingOptions) domain.ChunkingOptions {
	defaults := domain.DefaultChunkingOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaults.ChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = defaults.ChunkOverlap
	}
	if opts.MinChunkSize <= 0 {
		opts.MinChunkSize = defaults.MinChunkSize
	}
	if len(opts.Separators) == 0 {
		opts.Separators = defaults.Separators
	}
	return opts
}
