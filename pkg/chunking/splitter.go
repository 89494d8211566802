// Package chunking splits parsed document text into overlapping windows
// sized for the search index. Splitting is recursive over an ordered list
// of separators so chunk boundaries land on structural breaks (headings,
// paragraphs, sentences) before falling back to arbitrary cut points.
package chunking

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/llm"
)

// markdownSeparators biases split points toward markdown structure, from
// coarsest to finest. The empty separator is the rune-level last resort.
var markdownSeparators = []string{"\n## ", "\n### ", "\n\n", "\n", ". ", " ", ""}

// plainSeparators is used when no format hint is given.
var plainSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Config holds the splitter parameters.
type Config struct {
	TargetChars  int    // Upper bound on chunk size in characters
	OverlapChars int    // Fixed character overlap between consecutive chunks
	MinChars     int    // Chunks shorter than this are discarded
	Format       string // "markdown" biases split points toward headings
}

// Splitter produces ordered overlapping text windows from document text.
type Splitter struct {
	cfg        Config
	separators []string
}

// NewSplitter creates a splitter for the given parameters.
func NewSplitter(cfg Config) *Splitter {
	seps := plainSeparators
	if strings.EqualFold(cfg.Format, "markdown") {
		seps = markdownSeparators
	}
	if cfg.TargetChars <= 0 {
		cfg.TargetChars = 1800
	}
	if cfg.OverlapChars < 0 {
		cfg.OverlapChars = 0
	}
	return &Splitter{cfg: cfg, separators: seps}
}

// Split returns the ordered chunk texts for the document. Consecutive
// chunks share the configured character overlap; fragments shorter than
// MinChars are discarded.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	segments := s.splitRecursive(text, s.separators)
	merged := s.merge(segments)

	var chunks []string
	for i, c := range merged {
		if i > 0 && s.cfg.OverlapChars > 0 {
			prev := merged[i-1]
			tail := prev
			if len(prev) > s.cfg.OverlapChars {
				// Back the cut up to a rune boundary so macronized
				// text never yields an invalid UTF-8 chunk.
				start := len(prev) - s.cfg.OverlapChars
				for start > 0 && !utf8.RuneStart(prev[start]) {
					start--
				}
				tail = prev[start:]
			}
			c = tail + c
		}
		if len(strings.TrimSpace(c)) < s.cfg.MinChars {
			continue
		}
		chunks = append(chunks, c)
	}
	return chunks
}

// splitRecursive breaks text into segments no longer than TargetChars,
// preferring the earliest separator in the list that actually occurs.
func (s *Splitter) splitRecursive(text string, separators []string) []string {
	if len(text) <= s.cfg.TargetChars {
		return []string{text}
	}

	sep := separators[len(separators)-1]
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = candidate
			rest = nil
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	var parts []string
	if sep == "" {
		// Rune-level fallback: hard-cut at the target size.
		runes := []rune(text)
		for start := 0; start < len(runes); start += s.cfg.TargetChars {
			end := start + s.cfg.TargetChars
			if end > len(runes) {
				end = len(runes)
			}
			parts = append(parts, string(runes[start:end]))
		}
		return parts
	}

	// Heading and paragraph separators belong to the piece that follows
	// them; sentence and word separators stay with the piece before.
	var pieces []string
	if strings.HasPrefix(sep, "\n") {
		pieces = strings.Split(text, sep)
		for i := 1; i < len(pieces); i++ {
			pieces[i] = sep + pieces[i]
		}
	} else {
		pieces = strings.SplitAfter(text, sep)
	}

	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if len(piece) > s.cfg.TargetChars {
			parts = append(parts, s.splitRecursive(piece, rest)...)
		} else {
			parts = append(parts, piece)
		}
	}
	return parts
}

// merge greedily packs adjacent segments into windows up to TargetChars.
// Segments carry their own separators, so concatenation reconstructs the
// original text exactly.
func (s *Splitter) merge(segments []string) []string {
	var out []string
	var current strings.Builder

	for _, seg := range segments {
		if current.Len() > 0 && current.Len()+len(seg) > s.cfg.TargetChars {
			out = append(out, current.String())
			current.Reset()
		}
		current.WriteString(seg)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// FilterByTokens drops chunks whose token count exceeds maxTokens, as
// counted by the provided tokenizer. Returns the surviving chunk texts,
// their token counts, and how many were dropped. A chunk of exactly
// maxTokens is retained.
func FilterByTokens(ctx context.Context, tok llm.Tokenizer, chunks []string, maxTokens int) ([]string, []int, int, error) {
	var kept []string
	var counts []int
	dropped := 0

	for _, c := range chunks {
		n, err := tok.CountTokens(ctx, c)
		if err != nil {
			return nil, nil, 0, err
		}
		if n > maxTokens {
			dropped++
			continue
		}
		kept = append(kept, c)
		counts = append(counts, n)
	}
	return kept, counts, dropped, nil
}
