// Package chunker splits journal text into embedding-sized segments.
// Short inputs pass through whole: embedding tiny fragments produces
// degenerate vectors, so no splitting happens below the threshold.
package chunker

import "unicode"

// DefaultThreshold is the segment size used when none is given.
const DefaultThreshold = 1200

// Chunk splits text into contiguous segments of at most threshold runes,
// preferring cuts after sentence punctuation, then after whitespace, with a
// hard cut as the fallback. Segments concatenate back to the exact input:
// every rune belongs to exactly one segment, no overlap.
func Chunk(text string, threshold int) []string {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	runes := []rune(text)
	if len(runes) <= threshold {
		return []string{text}
	}

	segments := make([]string, 0, len(runes)/threshold+1)
	start := 0
	for start < len(runes) {
		end := start + threshold
		if end >= len(runes) {
			segments = append(segments, string(runes[start:]))
			break
		}

		cut := boundary(runes, start, end)
		segments = append(segments, string(runes[start:cut]))
		start = cut
	}

	return segments
}

// boundary picks the cut position in (start, end]: after the last sentence
// punctuation inside the window, else after the last whitespace, else the
// hard limit.
func boundary(runes []rune, start, end int) int {
	for i := end; i > start; i-- {
		switch runes[i-1] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	for i := end; i > start; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
