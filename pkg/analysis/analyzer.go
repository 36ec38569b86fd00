// Package analysis provides high-level journal metrics.
package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/somnia-app/gosomnia/pkg/constellation"
)

// EntryMetrics holds the computed stats for one journal entry.
type EntryMetrics struct {
	WordCount      int     `json:"wordCount"`
	CharacterCount int     `json:"charCount"`
	SentenceCount  int     `json:"sentCount"`
	ReadingTimeMin float64 `json:"readingTimeMin"`
	SymbolDensity  float64 `json:"symbolDensity"` // symbols per 100 words
}

// JournalEntry is the slice of an entry the analyzer needs.
type JournalEntry struct {
	ID      string
	Text    string
	Symbols []string
}

// JournalMetrics summarizes a run of entries in chronological order.
type JournalMetrics struct {
	Entries         int     `json:"entries"`
	TotalWords      int     `json:"totalWords"`
	ContinuityScore float64 `json:"continuityScore"` // 0-100
	ContinuityTrend []int   `json:"continuityTrend"` // Sparkline data
}

// AnalyzeEntry computes per-entry stats.
func AnalyzeEntry(text string, symbols []string) EntryMetrics {
	words := len(strings.Fields(text))
	density := 0.0
	if words > 0 {
		density = float64(len(symbols)) / float64(words) * 100.0
	}

	return EntryMetrics{
		WordCount:      words,
		CharacterCount: utf8.RuneCountInString(text),
		SentenceCount:  countSentences(text),
		ReadingTimeMin: float64(words) / 250.0, // Avg 250 wpm
		SymbolDensity:  density,
	}
}

func countSentences(text string) int {
	count := 0
	for _, r := range text {
		if r == '.' || r == '?' || r == '!' {
			count++
		}
	}
	if count == 0 && strings.TrimSpace(text) != "" {
		return 1
	}
	return count
}

// Analyzer computes journal-level metrics with access to the
// constellation graph for indirect links.
type Analyzer struct {
	Graph *constellation.Graph
}

// NewAnalyzer creates an analyzer. A nil graph disables indirect links.
func NewAnalyzer(g *constellation.Graph) *Analyzer {
	return &Analyzer{Graph: g}
}

// AnalyzeJournal scores how much consecutive entries carry each other's
// imagery. Entries must be in chronological order.
func (a *Analyzer) AnalyzeJournal(entries []JournalEntry) JournalMetrics {
	m := JournalMetrics{Entries: len(entries)}
	for _, e := range entries {
		m.TotalWords += len(strings.Fields(e.Text))
	}

	score, trend := a.computeContinuity(entries)
	m.ContinuityScore = score
	m.ContinuityTrend = trend
	return m
}

// computeContinuity walks consecutive entry pairs. Shared symbols are a
// strong link, a constellation edge between the entries is a weak one,
// and a jump between two symbol-bearing entries with neither costs.
func (a *Analyzer) computeContinuity(entries []JournalEntry) (float64, []int) {
	if len(entries) < 2 {
		return 100.0, []int{100}
	}

	symbolSets := make([]map[string]bool, len(entries))
	for i, e := range entries {
		symbolSets[i] = make(map[string]bool, len(e.Symbols))
		for _, s := range e.Symbols {
			symbolSets[i][s] = true
		}
	}

	scores := []int{100}
	totalScore := 100.0

	for i := 1; i < len(entries); i++ {
		prevSet := symbolSets[i-1]
		currSet := symbolSets[i]

		score := 70

		overlap := 0
		for s := range currSet {
			if prevSet[s] {
				overlap++
			}
		}
		if overlap > 0 {
			score += 30
		}

		if overlap == 0 {
			if a.linked(entries[i-1].ID, entries[i].ID) {
				score += 15
			} else if len(currSet) > 0 && len(prevSet) > 0 {
				score -= 20
			}
		}

		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}

		// Smoothing (Weighted Moving Average)
		prevFinal := scores[len(scores)-1]
		smoothed := int(0.7*float64(score) + 0.3*float64(prevFinal))

		scores = append(scores, smoothed)
		totalScore += float64(smoothed)
	}

	return totalScore / float64(len(scores)), scores
}

func (a *Analyzer) linked(aID, bID string) bool {
	if a.Graph == nil {
		return false
	}
	_, ok := a.Graph.Edges[constellation.EdgeID(aID, bID)]
	return ok
}
