package app

import "startups/internal/domain"

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined EventKind = "player_joined"
	EventPlayerLeft   EventKind = "player_left"
	EventGameStarted  EventKind = "game_started"
	EventHandDealt    EventKind = "hand_dealt"
	EventRoomUpdated  EventKind = "room_updated"
	EventGameEnded    EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Position int    `json:"position"` // index in turn order
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type GameStartedPayload struct {
	GameID        string `json:"game_id"`
	FirstPlayerID string `json:"first_player_id"`
}

// HandDealtPayload is always delivered privately to its owner. It is emitted
// at the opening deal and again after every draw, carrying the full hand.
type HandDealtPayload struct {
	PlayerID string        `json:"player_id"`
	Hand     []domain.Card `json:"hand"`
}

// EventRoomUpdated carries no payload; the transport projects the public
// snapshot straight from the room. Hand contents never ride the snapshot,
// only EventHandDealt.

type GameEndedPayload struct {
	GameID  string          `json:"game_id"`
	Results []domain.Result `json:"results"`
	// BalanceChanges is the meta-wallet settlement per player, derived from
	// final scores by the service's reward plan.
	BalanceChanges map[string]int64 `json:"balance_changes"`
}
