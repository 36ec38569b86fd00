package analysis

import (
	"testing"

	"github.com/somnia-app/gosomnia/pkg/constellation"
)

func TestAnalyzeEntry(t *testing.T) {
	m := AnalyzeEntry("The moon rose over the lake. I waded in.", []string{"moon", "lake"})

	if m.WordCount != 10 {
		t.Errorf("expected 10 words, got %d", m.WordCount)
	}
	if m.SentenceCount != 2 {
		t.Errorf("expected 2 sentences, got %d", m.SentenceCount)
	}
	if m.ReadingTimeMin <= 0 {
		t.Errorf("expected positive reading time, got %f", m.ReadingTimeMin)
	}
	if m.SymbolDensity != 20.0 {
		t.Errorf("expected density 20, got %f", m.SymbolDensity)
	}
}

func TestAnalyzeEntryNoTerminator(t *testing.T) {
	m := AnalyzeEntry("a fragment without punctuation", nil)
	if m.SentenceCount != 1 {
		t.Errorf("expected 1 sentence, got %d", m.SentenceCount)
	}

	empty := AnalyzeEntry("", nil)
	if empty.SentenceCount != 0 || empty.WordCount != 0 {
		t.Errorf("expected zero metrics for empty text, got %+v", empty)
	}
}

func TestContinuityHighOnSharedSymbols(t *testing.T) {
	a := NewAnalyzer(nil)

	// moon carries across both entries -> strong link
	m := a.AnalyzeJournal([]JournalEntry{
		{ID: "e1", Text: "The moon over water.", Symbols: []string{"moon", "water"}},
		{ID: "e2", Text: "The moon again, this time red.", Symbols: []string{"moon"}},
	})

	if m.ContinuityScore < 80 {
		t.Errorf("expected high continuity for shared symbol, got %f", m.ContinuityScore)
	}
}

func TestContinuityIndirectViaConstellation(t *testing.T) {
	g := constellation.NewGraph()
	g.EnsureNode("e1", "moonlit", 0.9)
	g.EnsureNode("e2", "teeth", 0.8)
	g.AddEdge("e1", "e2", 0.7)

	a := NewAnalyzer(g)
	linked := a.AnalyzeJournal([]JournalEntry{
		{ID: "e1", Text: "Moon over water.", Symbols: []string{"moon"}},
		{ID: "e2", Text: "My teeth fell out.", Symbols: []string{"teeth"}},
	})

	unlinked := NewAnalyzer(nil).AnalyzeJournal([]JournalEntry{
		{ID: "e1", Text: "Moon over water.", Symbols: []string{"moon"}},
		{ID: "e2", Text: "My teeth fell out.", Symbols: []string{"teeth"}},
	})

	if linked.ContinuityScore <= unlinked.ContinuityScore {
		t.Errorf("expected constellation edge to lift continuity: linked=%f unlinked=%f",
			linked.ContinuityScore, unlinked.ContinuityScore)
	}
}

func TestContinuityPenalizesJumps(t *testing.T) {
	a := NewAnalyzer(nil)

	m := a.AnalyzeJournal([]JournalEntry{
		{ID: "e1", Text: "Moon over water.", Symbols: []string{"moon"}},
		{ID: "e2", Text: "Spreadsheet rows forever.", Symbols: []string{"spreadsheet"}},
	})

	if m.ContinuityScore >= 90 {
		t.Errorf("expected jump penalty, got %f", m.ContinuityScore)
	}
}

func TestContinuitySingleEntry(t *testing.T) {
	a := NewAnalyzer(nil)

	m := a.AnalyzeJournal([]JournalEntry{
		{ID: "e1", Text: "Moon over water.", Symbols: []string{"moon"}},
	})

	if m.ContinuityScore != 100.0 {
		t.Errorf("expected 100 for a single entry, got %f", m.ContinuityScore)
	}
	if len(m.ContinuityTrend) != 1 {
		t.Errorf("expected one trend point, got %d", len(m.ContinuityTrend))
	}
}

func TestJournalTotals(t *testing.T) {
	a := NewAnalyzer(nil)

	m := a.AnalyzeJournal([]JournalEntry{
		{ID: "e1", Text: "one two three", Symbols: nil},
		{ID: "e2", Text: "four five", Symbols: nil},
	})

	if m.Entries != 2 {
		t.Errorf("expected 2 entries, got %d", m.Entries)
	}
	if m.TotalWords != 5 {
		t.Errorf("expected 5 words, got %d", m.TotalWords)
	}
}
