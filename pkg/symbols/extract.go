// Package symbols extracts ranked keyword symbols from journal text and
// matches entries against a curated dream-symbol lexicon.
package symbols

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SymbolsMax caps an entry's symbol set.
const SymbolsMax = 10

// minTokenRunes drops fragments too short to carry meaning.
const minTokenRunes = 3

// stopWords is a fixed closed list: articles, pronouns, conjunctions,
// auxiliaries and common prepositions. Not a statistical model.
var stopWords = map[string]bool{
	// articles, determiners
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "some": true, "any": true, "each": true,
	"every": true, "all": true,
	// pronouns
	"i": true, "me": true, "my": true, "mine": true, "myself": true,
	"you": true, "your": true, "yours": true, "yourself": true,
	"he": true, "him": true, "his": true, "she": true, "her": true,
	"hers": true, "it": true, "its": true, "itself": true,
	"we": true, "us": true, "our": true, "ours": true,
	"they": true, "them": true, "their": true, "theirs": true,
	"who": true, "whom": true, "whose": true, "which": true, "what": true,
	"someone": true, "something": true, "anyone": true, "anything": true,
	"everyone": true, "everything": true, "nothing": true,
	// conjunctions
	"and": true, "but": true, "or": true, "nor": true, "so": true,
	"yet": true, "because": true, "although": true, "while": true,
	"when": true, "where": true, "then": true, "than": true, "if": true,
	// auxiliaries, copulas
	"is": true, "am": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true,
	"do": true, "does": true, "did": true, "done": true,
	"has": true, "have": true, "had": true, "having": true,
	"will": true, "would": true, "shall": true, "should": true,
	"can": true, "could": true, "may": true, "might": true, "must": true,
	"not": true, "no": true, "don't": true, "didn't": true, "wasn't": true,
	"isn't": true, "can't": true, "couldn't": true, "wouldn't": true,
	"i'm": true, "it's": true, "there's": true, "that's": true,
	// common prepositions and fillers
	"of": true, "to": true, "in": true, "on": true, "for": true, "at": true,
	"by": true, "with": true, "from": true, "into": true, "onto": true,
	"over": true, "under": true, "about": true, "after": true,
	"before": true, "between": true, "through": true, "during": true,
	"above": true, "below": true, "off": true, "out": true, "up": true,
	"down": true, "again": true, "there": true, "here": true, "very": true,
	"just": true, "like": true, "how": true, "too": true, "also": true,
	"felt": true, "feel": true,
}

// Extract tokenizes text and returns up to max symbol tokens ranked by
// descending frequency, ties broken by first appearance. Lowercases, splits
// on non-letter runes except internal apostrophes, discards short tokens and
// stopwords. Pure and deterministic; a text made entirely of stopwords and
// fragments yields an empty slice, not an error.
func Extract(text string, max int) []string {
	if max <= 0 {
		max = SymbolsMax
	}

	counts := make(map[string]int)
	order := make(map[string]int)
	var tokens []string

	for _, tok := range tokenize(text) {
		if utf8.RuneCountInString(tok) < minTokenRunes || stopWords[tok] {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order[tok] = len(tokens)
			tokens = append(tokens, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return order[tokens[i]] < order[tokens[j]]
	})

	if len(tokens) > max {
		tokens = tokens[:max]
	}
	return tokens
}

// tokenize lowercases and splits on any non-letter rune, keeping internal
// apostrophes ("doesn't" stays whole) and trimming leftover edge punctuation.
func tokenize(text string) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := strings.Trim(b.String(), "'")
		b.Reset()
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	for _, ch := range text {
		c := unicode.ToLower(ch)
		// Curly apostrophe -> straight.
		if c == '’' {
			c = '\''
		}
		if unicode.IsLetter(c) || c == '\'' {
			b.WriteRune(c)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}
