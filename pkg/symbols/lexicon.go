package symbols

import (
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// LexiconEntry maps one canonical dream symbol to the surface forms that
// evoke it in free text.
type LexiconEntry struct {
	Symbol   string
	Surfaces []string
}

// Lexicon matches curated, possibly multi-word dream symbols in text with a
// single Aho-Corasick automaton, so one pass over the entry covers the whole
// dictionary.
type Lexicon struct {
	ac       ahocorasick.AhoCorasick
	patterns []string
	canon    []string // pattern index -> canonical symbol
}

// CompileLexicon builds the automaton from entries. Surface forms are
// matched case-insensitively on whole words only.
func CompileLexicon(entries []LexiconEntry) *Lexicon {
	l := &Lexicon{}

	for _, e := range entries {
		for _, surface := range e.Surfaces {
			s := strings.ToLower(strings.TrimSpace(surface))
			if s == "" {
				continue
			}
			l.patterns = append(l.patterns, s)
			l.canon = append(l.canon, e.Symbol)
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	l.ac = builder.Build(l.patterns)

	return l
}

// Scan returns the canonical symbols whose surface forms occur in text, in
// first-match order, deduplicated.
func (l *Lexicon) Scan(text string) []string {
	matches := l.ac.FindAll(strings.ToLower(text))

	seen := make(map[string]bool, len(matches))
	var result []string
	for _, m := range matches {
		sym := l.canon[m.Pattern()]
		if !seen[sym] {
			seen[sym] = true
			result = append(result, sym)
		}
	}
	return result
}

// DefaultLexicon covers the recurring dream-symbol inventory the journal's
// constellation view labels against.
func DefaultLexicon() *Lexicon {
	return CompileLexicon([]LexiconEntry{
		{Symbol: "moon", Surfaces: []string{"moon", "full moon", "crescent moon", "moonlight"}},
		{Symbol: "water", Surfaces: []string{"water", "ocean", "sea", "river", "lake", "flood", "rain", "waves"}},
		{Symbol: "falling", Surfaces: []string{"falling", "fell from", "plummeting"}},
		{Symbol: "flying", Surfaces: []string{"flying", "flew", "floating above", "soaring"}},
		{Symbol: "teeth", Surfaces: []string{"teeth", "tooth", "teeth falling out", "losing teeth"}},
		{Symbol: "bridge", Surfaces: []string{"bridge", "crossing", "overpass"}},
		{Symbol: "door", Surfaces: []string{"door", "doorway", "locked door", "gate"}},
		{Symbol: "mirror", Surfaces: []string{"mirror", "reflection"}},
		{Symbol: "chase", Surfaces: []string{"chased", "chasing", "running from", "pursued"}},
		{Symbol: "house", Surfaces: []string{"house", "childhood home", "old house", "rooms"}},
		{Symbol: "snake", Surfaces: []string{"snake", "serpent"}},
		{Symbol: "fire", Surfaces: []string{"fire", "burning", "flames"}},
		{Symbol: "stairs", Surfaces: []string{"stairs", "staircase", "climbing"}},
		{Symbol: "darkness", Surfaces: []string{"darkness", "shadow", "pitch black"}},
		{Symbol: "death", Surfaces: []string{"death", "dying", "funeral", "graveyard"}},
	})
}
