package symbols

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractFixture(t *testing.T) {
	got := Extract("The moon over water and a rising bridge with you.", 10)

	gotSet := make(map[string]bool, len(got))
	for _, s := range got {
		gotSet[s] = true
	}

	for _, want := range []string{"moon", "water", "rising", "bridge"} {
		if !gotSet[want] {
			t.Errorf("expected symbol %q in %v", want, got)
		}
	}
	if gotSet["the"] {
		t.Errorf("stopword %q must be excluded, got %v", "the", got)
	}
	if gotSet["you"] {
		t.Errorf("pronoun %q must be excluded, got %v", "you", got)
	}
}

func TestExtractCapsAtMax(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "dreamword%c%c ", 'a'+i/26, 'a'+i%26)
	}

	got := Extract(sb.String(), 5)
	if len(got) != 5 {
		t.Fatalf("expected exactly 5 tokens, got %d", len(got))
	}
}

func TestExtractFrequencyRanking(t *testing.T) {
	got := Extract("river stone river bridge river bridge stone lantern", 10)

	if len(got) < 3 || got[0] != "river" {
		t.Fatalf("most frequent token should rank first, got %v", got)
	}
	// bridge and stone both occur twice; stone was seen first.
	if got[1] != "stone" || got[2] != "bridge" {
		t.Errorf("ties must break by first appearance, got %v", got)
	}
	if got[len(got)-1] != "lantern" {
		t.Errorf("singleton should rank last, got %v", got)
	}
}

func TestExtractStableAcrossCalls(t *testing.T) {
	text := "owl forest owl lake forest moth lake owl"
	first := Extract(text, 10)
	for i := 0; i < 20; i++ {
		if again := Extract(text, 10); strings.Join(again, ",") != strings.Join(first, ",") {
			t.Fatalf("extraction not deterministic: %v vs %v", first, again)
		}
	}
}

func TestExtractAllStopwordsYieldsEmpty(t *testing.T) {
	got := Extract("the and a of it is to be was", 10)
	if len(got) != 0 {
		t.Errorf("all-stopword text should yield nothing, got %v", got)
	}
}

func TestExtractShortTokensDropped(t *testing.T) {
	got := Extract("ox ax owl", 10)
	if len(got) != 1 || got[0] != "owl" {
		t.Errorf("tokens under 3 runes must drop, got %v", got)
	}
}

func TestExtractKeepsInternalApostrophe(t *testing.T) {
	got := Extract("grandmother's lantern", 10)

	found := false
	for _, s := range got {
		if s == "grandmother's" {
			found = true
		}
	}
	if !found {
		t.Errorf("internal apostrophe should survive tokenization, got %v", got)
	}
}

func TestExtractTrimsEdgePunctuation(t *testing.T) {
	got := Extract("'moonlight' — rising!", 10)

	gotSet := make(map[string]bool)
	for _, s := range got {
		gotSet[s] = true
	}
	if !gotSet["moonlight"] || !gotSet["rising"] {
		t.Errorf("edge punctuation should trim away, got %v", got)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	if got := Extract("", 10); len(got) != 0 {
		t.Errorf("empty input should yield nothing, got %v", got)
	}
}
