package bot

import (
	"startups/internal/domain"
)

// Move is one phase decision. In the draw phase FromMarket selects a market
// slot over the deck; in the play phase ToMarket returns the card to the
// market instead of the portfolio.
type Move struct {
	FromMarket  bool
	MarketIndex int
	ToMarket    bool
	HandIndex   int
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(room *domain.Room, player *domain.Player) (Move, error)
}
