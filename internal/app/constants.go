package app

// Intent action identifiers accepted by ApplyIntent. These are the wire-level
// action names, kept stable for clients.
const (
	ActionTakeFromDeck    = "take_from_deck"
	ActionTakeFromMarket  = "take_from_market"
	ActionPlayToPortfolio = "play_to_portfolio"
	ActionPlayToMarket    = "play_to_market"
)
