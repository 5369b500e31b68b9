package chunker

import (
	"reflect"
	"strings"
	"testing"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

func TestSplitOnSentenceBreaks(t *testing.T) {
	c := New()

	chunks := c.Split("A. B. C.", domain.ChunkingOptions{
		ChunkSize:    5,
		ChunkOverlap: 0,
		MinChunkSize: 1,
	})

	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}
	for _, chunk := range chunks {
		// Every chunk should end at a sentence boundary, never mid-sentence
		if !strings.HasSuffix(chunk.Text, ".") {
			t.Errorf("chunk %q does not end at a sentence break", chunk.Text)
		}
	}
}

func TestSplitShortDocumentFallback(t *testing.T) {
	c := New()

	text := "short note"
	chunks := c.Split(text, domain.ChunkingOptions{
		ChunkSize:    400,
		MinChunkSize: 80,
	})

	if len(chunks) != 1 {
		t.Fatalf("expected single fallback chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("fallback chunk text = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].StartIndex != 0 || chunks[0].EndIndex != len(text) {
		t.Errorf("fallback chunk spans [%d,%d), want [0,%d)",
			chunks[0].StartIndex, chunks[0].EndIndex, len(text))
	}
}

func TestSplitEmptyInput(t *testing.T) {
	c := New()

	if chunks := c.Split("", domain.DefaultChunkingOptions()); chunks != nil {
		t.Errorf("expected nil for empty input, got %v", chunks)
	}
	if chunks := c.Split("   \n\t  ", domain.DefaultChunkingOptions()); chunks != nil {
		t.Errorf("expected nil for whitespace input, got %v", chunks)
	}
}

func TestSplitDeterminism(t *testing.T) {
	c := New()
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	opts := domain.DefaultChunkingOptions()

	first := c.Split(text, opts)
	second := c.Split(text, opts)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different chunk boundaries")
	}
}

func TestSplitTerminatesWithOverlapExceedingChunkSize(t *testing.T) {
	c := New()
	text := strings.Repeat("word ", 200)

	// Overlap >= chunk size would loop forever without the forward-progress
	// clamp. The call simply has to return.
	chunks := c.Split(text, domain.ChunkingOptions{
		ChunkSize:    50,
		ChunkOverlap: 80,
		MinChunkSize: 10,
	})

	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}
}

func TestSplitChunkInvariants(t *testing.T) {
	c := New()
	text := strings.Repeat("Paragraphs of policy text follow here. Each sentence carries meaning. ", 30)
	opts := domain.ChunkingOptions{
		ChunkSize:    300,
		ChunkOverlap: 50,
		MinChunkSize: 60,
	}

	normalized := strings.Join(strings.Fields(text), " ")
	chunks := c.Split(text, opts)
	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}

	for i, chunk := range chunks {
		if chunk.Text == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if chunk.EndIndex-chunk.StartIndex != len(chunk.Text) {
			t.Errorf("chunk %d offsets [%d,%d) disagree with text length %d",
				i, chunk.StartIndex, chunk.EndIndex, len(chunk.Text))
		}
		if got := normalized[chunk.StartIndex:chunk.EndIndex]; got != chunk.Text {
			t.Errorf("chunk %d text does not match its recorded span: %q vs %q", i, chunk.Text, got)
		}
		if len(chunk.Text) < opts.MinChunkSize {
			t.Errorf("chunk %d shorter than min size: %d < %d", i, len(chunk.Text), opts.MinChunkSize)
		}
	}
}

func TestSplitCoversInput(t *testing.T) {
	c := New()
	text := strings.Repeat("All work and no play makes this a very dull document indeed. ", 25)
	opts := domain.ChunkingOptions{
		ChunkSize:    200,
		ChunkOverlap: 40,
		MinChunkSize: 20,
	}

	normalized := strings.Join(strings.Fields(text), " ")
	chunks := c.Split(text, opts)

	// With overlap, consecutive chunks must not leave holes: every chunk
	// has to start at or before the previous chunk's end.
	prevEnd := 0
	for i, chunk := range chunks {
		if chunk.StartIndex > prevEnd {
			t.Errorf("gap before chunk %d: previous end %d, start %d", i, prevEnd, chunk.StartIndex)
		}
		if chunk.EndIndex > prevEnd {
			prevEnd = chunk.EndIndex
		}
	}
	// The final chunk must reach (close to) the end of the input; only a
	// sub-minimum tail may remain uncovered.
	if len(normalized)-prevEnd >= opts.MinChunkSize+opts.ChunkSize {
		t.Errorf("uncovered tail of %d chars", len(normalized)-prevEnd)
	}
}

func TestSplitPreserveFormatting(t *testing.T) {
	c := New()
	text := "line one\n\nline two"

	collapsed := c.Split(text, domain.ChunkingOptions{
		ChunkSize:    400,
		MinChunkSize: 5,
	})
	if len(collapsed) != 1 || collapsed[0].Text != "line one line two" {
		t.Errorf("expected collapsed whitespace, got %+v", collapsed)
	}

	preserved := c.Split(text, domain.ChunkingOptions{
		ChunkSize:          400,
		MinChunkSize:       5,
		PreserveFormatting: true,
	})
	if len(preserved) != 1 || preserved[0].Text != text {
		t.Errorf("expected original formatting, got %+v", preserved)
	}
}

func TestSplitSequentialIDs(t *testing.T) {
	c := New()
	text := strings.Repeat("Sentence after sentence marches on. ", 40)

	chunks := c.Split(text, domain.ChunkingOptions{
		ChunkSize:    120,
		ChunkOverlap: 20,
		MinChunkSize: 30,
	})

	for i, chunk := range chunks {
		want := "chunk-" + string(rune('0'+i))
		if i < 10 && chunk.ID != want {
			t.Errorf("chunk %d has id %q, want %q", i, chunk.ID, want)
		}
	}
}
