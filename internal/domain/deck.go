package domain

import "math/rand"

// BuildDeck assembles the draw deck: every company contributes Count copies,
// then exactly RemovedDeckCards cards are discarded at uniformly random
// positions (each removal drawn against the shrunk slice), and the remainder
// is shuffled with a Fisher-Yates permutation. The result is always
// TotalCompanyCards() - RemovedDeckCards long.
func BuildDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, TotalCompanyCards())
	for _, c := range Companies {
		for i := 0; i < c.Count; i++ {
			deck = append(deck, Card{Company: c.Name})
		}
	}

	for i := 0; i < RemovedDeckCards; i++ {
		j := rng.Intn(len(deck))
		deck = append(deck[:j], deck[j+1:]...)
	}

	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}
