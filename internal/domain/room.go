package domain

import (
	"errors"
	"math/rand"
	"strings"
)

var (
	ErrGameInProgress  = errors.New("game already started")
	ErrGameNotActive   = errors.New("game is not active")
	ErrRoomFull        = errors.New("room is full")
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrDuplicatePlayer = errors.New("player already in room")
	ErrUnknownPlayer   = errors.New("player not found")
)

// NewRoom creates an empty, not-started room. Codes are case-insensitive and
// stored uppercase.
func NewRoom(code, ownerID string) *Room {
	return &Room{
		Code:      strings.ToUpper(code),
		OwnerID:   ownerID,
		AntiChips: emptyAntiChips(),
		TurnPhase: PhaseDraw,
	}
}

func emptyAntiChips() map[string]string {
	chips := make(map[string]string, len(Companies))
	for _, c := range Companies {
		chips[c.Name] = ""
	}
	return chips
}

// AddPlayer appends a player in turn order. Rejected once the game has
// started or the room is at capacity.
func (r *Room) AddPlayer(id, name string) (*Player, error) {
	if r.GameStarted {
		return nil, ErrGameInProgress
	}
	if r.IsFull() {
		return nil, ErrRoomFull
	}
	if r.PlayerByID(id) != nil {
		return nil, ErrDuplicatePlayer
	}

	p := &Player{
		ID:        id,
		Name:      name,
		Portfolio: make(map[string]int),
		Chips1:    StartingChips1,
	}
	r.Players = append(r.Players, p)
	return p, nil
}

// RemovePlayer drops a player from the room, reassigning ownership to the
// earliest remaining player if the owner left. Mid-game, the turn pointer is
// adjusted so it keeps addressing the same (or next) surviving player, and
// the game is finished when the room falls below the two-player floor.
func (r *Room) RemovePlayer(id string) error {
	idx := -1
	for i, p := range r.Players {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrUnknownPlayer
	}

	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)

	if r.OwnerID == id && len(r.Players) > 0 {
		r.OwnerID = r.Players[0].ID
	}

	if r.GameStarted && !r.GameEnded {
		switch {
		case idx < r.CurrentPlayerIndex:
			r.CurrentPlayerIndex--
		case idx == r.CurrentPlayerIndex:
			// The departing player's slot is gone, so the index already
			// addresses the next player; they start from a fresh draw.
			r.TurnPhase = PhaseDraw
		}
		if r.CurrentPlayerIndex >= len(r.Players) {
			r.CurrentPlayerIndex = 0
		}
		r.RecalcAntiChips()
		if len(r.Players) < MinPlayers {
			r.Finish()
		}
	}
	return nil
}

// Start builds the deck, deals StartingHandSize cards to every player, resets
// both currencies and picks a uniformly random starting player.
func (r *Room) Start(rng *rand.Rand) error {
	if r.GameStarted {
		return ErrGameInProgress
	}
	if len(r.Players) < MinPlayers {
		return ErrTooFewPlayers
	}

	r.Deck = BuildDeck(rng)
	for _, p := range r.Players {
		p.Hand = nil
		for i := 0; i < StartingHandSize; i++ {
			p.Hand = append(p.Hand, r.popDeck())
		}
		p.Portfolio = make(map[string]int)
		p.Chips1 = StartingChips1
		p.Chips3 = 0
		p.LastTakenCompany = ""
	}

	r.Market = nil
	r.AntiChips = emptyAntiChips()
	r.CurrentPlayerIndex = rng.Intn(len(r.Players))
	r.TurnPhase = PhaseDraw
	r.GameStarted = true
	r.GameEnded = false
	r.LastCardTaken = false
	r.LastCardTakenPlayer = ""
	r.Results = nil
	return nil
}

func (r *Room) popDeck() Card {
	card := r.Deck[len(r.Deck)-1]
	r.Deck = r.Deck[:len(r.Deck)-1]
	return card
}
