package domain

import (
	"math/rand"
	"testing"
)

func TestBuildDeckSize(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	deck := BuildDeck(rng)

	want := TotalCompanyCards() - RemovedDeckCards
	if len(deck) != want {
		t.Fatalf("deck size = %d, want %d", len(deck), want)
	}
	if want != 40 {
		t.Fatalf("catalog changed: expected 40-card deck, got %d", want)
	}
}

func TestBuildDeckRespectsCompanyCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	deck := BuildDeck(rng)

	counts := make(map[string]int)
	for _, c := range deck {
		counts[c.Company]++
	}

	removed := 0
	for _, c := range Companies {
		got := counts[c.Name]
		if got > c.Count {
			t.Fatalf("company %s has %d cards, catalog max %d", c.Name, got, c.Count)
		}
		removed += c.Count - got
	}
	if len(counts) > len(Companies) {
		t.Fatalf("deck contains unknown companies: %v", counts)
	}
	if removed != RemovedDeckCards {
		t.Fatalf("removed %d cards, want %d", removed, RemovedDeckCards)
	}
}

func TestBuildDeckDeterministicForSeed(t *testing.T) {
	a := BuildDeck(rand.New(rand.NewSource(99)))
	b := BuildDeck(rand.New(rand.NewSource(99)))

	if len(a) != len(b) {
		t.Fatalf("deck sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("decks diverge at %d: %v vs %v", i, a[i], b[i])
		}
	}
}
