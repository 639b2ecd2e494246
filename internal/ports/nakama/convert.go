package nakama

import (
	"startups/internal/bot"
	"startups/internal/domain"
)

// MatchLabel is the queryable match metadata kept in sync with room state.
type MatchLabel struct {
	Game    string `json:"game"`
	Open    bool   `json:"open"`
	Phase   string `json:"phase"` // "lobby", "playing" or "finished"
	Code    string `json:"code"`
	Players int    `json:"players"`
}

// PlayerView is the public projection of one seated player. Hands are never
// included; only their size is public.
type PlayerView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	HandCount int            `json:"hand_count"`
	Portfolio map[string]int `json:"portfolio"`
	Chips1    int            `json:"chips1"`
	Chips3    int            `json:"chips3"`
	IsBot     bool           `json:"is_bot"`
}

// RoomSnapshot is the full public view broadcast on every state change.
type RoomSnapshot struct {
	Code            string              `json:"code"`
	OwnerID         string              `json:"owner_id"`
	GameID          string              `json:"game_id,omitempty"`
	Players         []PlayerView        `json:"players"`
	DeckCount       int                 `json:"deck_count"`
	Market          []domain.MarketSlot `json:"market"`
	AntiChips       map[string]string   `json:"anti_chips"`
	CurrentPlayerID string              `json:"current_player_id,omitempty"`
	TurnPhase       string              `json:"turn_phase"`
	GameStarted     bool                `json:"game_started"`
	GameEnded       bool                `json:"game_ended"`
	LastCardTaken   bool                `json:"last_card_taken"`
	Results         []domain.Result     `json:"results,omitempty"`
}

func roomSnapshot(room *domain.Room) RoomSnapshot {
	players := make([]PlayerView, 0, len(room.Players))
	for _, p := range room.Players {
		players = append(players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			HandCount: len(p.Hand),
			Portfolio: p.Portfolio,
			Chips1:    p.Chips1,
			Chips3:    p.Chips3,
			IsBot:     bot.IsBot(p.ID),
		})
	}

	currentID := ""
	if room.GameStarted && !room.GameEnded {
		if p := room.CurrentPlayer(); p != nil {
			currentID = p.ID
		}
	}

	market := room.Market
	if market == nil {
		market = []domain.MarketSlot{}
	}

	return RoomSnapshot{
		Code:            room.Code,
		OwnerID:         room.OwnerID,
		GameID:          room.GameID,
		Players:         players,
		DeckCount:       len(room.Deck),
		Market:          market,
		AntiChips:       room.AntiChips,
		CurrentPlayerID: currentID,
		TurnPhase:       string(room.TurnPhase),
		GameStarted:     room.GameStarted,
		GameEnded:       room.GameEnded,
		LastCardTaken:   room.LastCardTaken,
		Results:         room.Results,
	}
}
