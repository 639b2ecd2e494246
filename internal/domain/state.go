package domain

// TurnPhase is the half of a player's turn the room currently waits on.
type TurnPhase string

const (
	// PhaseDraw expects the current player to acquire exactly one card.
	PhaseDraw TurnPhase = "draw"
	// PhasePlay expects the current player to dispose of exactly one card.
	PhasePlay TurnPhase = "play"
)

// Company is a static catalog entry for one of the six tradable companies.
type Company struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"` // cards of this company seeded into the deck
}

// Card is a single card. Cards are fungible within a company; only the
// company name matters.
type Card struct {
	Company string `json:"company"`
}

// MarketSlot is a face-up card in the shared market together with the
// payment chips it has accumulated from deck draws.
type MarketSlot struct {
	Company string `json:"company"`
	Chips   int    `json:"chips"`
}

// Player holds the in-room state for one participant.
type Player struct {
	ID        string
	Name      string
	Hand      []Card
	Portfolio map[string]int // company -> count
	Chips1    int            // low-denomination currency, spent funding draws
	Chips3    int            // majority-bonus currency, settled at game end

	// LastTakenCompany is set only while the player's current turn draw came
	// from the market; empty means no restriction.
	LastTakenCompany string
}

// Result is one entry of the ranked outcome list attached after the game ends.
type Result struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Chips1   int    `json:"chips1"`
	Chips3   int    `json:"chips3"`
}

// Room holds all mutable state for one match. Player order is join order and
// fixes both turn order and tie-break precedence for the whole game.
type Room struct {
	Code    string
	OwnerID string
	GameID  string // assigned when a game starts, for settlement metadata

	Players []*Player

	Deck      []Card            // drawn from the top (end of slice)
	Market    []MarketSlot      // insertion order = display/selection order
	AntiChips map[string]string // company -> majority holder id, "" = none

	CurrentPlayerIndex int
	TurnPhase          TurnPhase

	GameStarted bool
	GameEnded   bool

	// LastCardTaken flips true on the draw that empties the deck; the game
	// ends when that player completes their disposal.
	LastCardTaken       bool
	LastCardTakenPlayer string

	Results []Result
}

// PlayerByID returns the player with the given id, or nil.
func (r *Room) PlayerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CurrentPlayer returns the player whose turn it is, or nil before the game
// starts or after every player has left.
func (r *Room) CurrentPlayer() *Player {
	if len(r.Players) == 0 || r.CurrentPlayerIndex < 0 || r.CurrentPlayerIndex >= len(r.Players) {
		return nil
	}
	return r.Players[r.CurrentPlayerIndex]
}

// IsFull reports whether the room has reached the player cap.
func (r *Room) IsFull() bool {
	return len(r.Players) >= MaxPlayers
}
