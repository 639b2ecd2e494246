package app

import (
	"errors"
	"math/rand"
	"time"

	"startups/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrNotOwner      = errors.New("actor is not the room owner")
	ErrUnknownAction = errors.New("unknown action")
)

// RewardPlan converts final scores into meta-wallet chip grants.
type RewardPlan struct {
	ScoreMultiplier int64 // chips granted per final score point
	WinnerBonus     int64 // extra chips for the top-ranked player
}

// Service contains the game use-cases operating on room state. All
// randomness flows through the injected rng so identical seeds and intent
// sequences replay identically.
type Service struct {
	rng     *rand.Rand
	rewards RewardPlan
}

// NewService constructs a Service with the provided rng or a time-seeded
// default.
func NewService(rng *rand.Rand, rewards RewardPlan) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, rewards: rewards}
}

// CreateRoom returns a fresh, not-started room.
func (s *Service) CreateRoom(code, ownerID string) *domain.Room {
	return domain.NewRoom(code, ownerID)
}

// AddPlayer seats a player at the end of the turn order.
func (s *Service) AddPlayer(room *domain.Room, id, name string) ([]Event, error) {
	p, err := room.AddPlayer(id, name)
	if err != nil {
		return nil, err
	}
	return []Event{
		{Kind: EventPlayerJoined, Payload: PlayerJoinedPayload{
			PlayerID: p.ID,
			Name:     p.Name,
			Position: len(room.Players) - 1,
		}},
		{Kind: EventRoomUpdated},
	}, nil
}

// RemovePlayer drops a player from the room. Mid-game departures terminate
// the game with the regular endgame sweep: the transport cannot distinguish
// an explicit leave from a dropped connection, and both end the game.
func (s *Service) RemovePlayer(room *domain.Room, id string) ([]Event, error) {
	endedBefore := room.GameEnded
	if err := room.RemovePlayer(id); err != nil {
		return nil, err
	}

	if room.GameStarted && !room.GameEnded {
		room.Finish()
	}

	events := []Event{
		{Kind: EventPlayerLeft, Payload: PlayerLeftPayload{PlayerID: id}},
		{Kind: EventRoomUpdated},
	}
	if room.GameEnded && !endedBefore {
		events = append(events, s.gameEndedEvent(room))
	}
	return events, nil
}

// StartGame begins a game on behalf of the room owner: deck build, opening
// deal, currency reset and a random starting player.
func (s *Service) StartGame(room *domain.Room, actorID string) ([]Event, error) {
	if actorID != room.OwnerID {
		return nil, ErrNotOwner
	}
	if err := room.Start(s.rng); err != nil {
		return nil, err
	}
	room.GameID = uuid.NewString()

	events := make([]Event, 0, len(room.Players)+2)
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			GameID:        room.GameID,
			FirstPlayerID: room.CurrentPlayer().ID,
		},
	})
	for _, p := range room.Players {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{PlayerID: p.ID, Hand: p.Hand},
			Recipients: []string{p.ID},
		})
	}
	events = append(events, Event{Kind: EventRoomUpdated})
	return events, nil
}

// Intent is one player action within a turn.
type Intent struct {
	Action      string `json:"action"`
	MarketIndex int    `json:"market_index"`
	HandIndex   int    `json:"hand_index"`
}

// ApplyIntent validates and applies a single intent. Rejections carry no
// state change; the caller reports them to the acting client only. A
// successful draw re-deals the actor's hand privately, since the public
// snapshot only ever exposes hand counts.
func (s *Service) ApplyIntent(room *domain.Room, playerID string, intent Intent) ([]Event, error) {
	var err error
	switch intent.Action {
	case ActionTakeFromDeck:
		err = room.TakeFromDeck(playerID)
	case ActionTakeFromMarket:
		err = room.TakeFromMarket(playerID, intent.MarketIndex)
	case ActionPlayToPortfolio:
		err = room.PlayToPortfolio(playerID, intent.HandIndex)
	case ActionPlayToMarket:
		err = room.PlayToMarket(playerID, intent.HandIndex)
	default:
		err = ErrUnknownAction
	}
	if err != nil {
		return nil, err
	}

	var events []Event
	if intent.Action == ActionTakeFromDeck || intent.Action == ActionTakeFromMarket {
		if p := room.PlayerByID(playerID); p != nil {
			events = append(events, Event{
				Kind:       EventHandDealt,
				Payload:    HandDealtPayload{PlayerID: p.ID, Hand: p.Hand},
				Recipients: []string{p.ID},
			})
		}
	}
	events = append(events, Event{Kind: EventRoomUpdated})
	if room.GameEnded {
		events = append(events, s.gameEndedEvent(room))
	}
	return events, nil
}

func (s *Service) gameEndedEvent(room *domain.Room) Event {
	changes := make(map[string]int64, len(room.Results))
	for i, res := range room.Results {
		grant := int64(res.Score) * s.rewards.ScoreMultiplier
		if grant < 0 {
			// chips3 debt can push a score negative; wallets only receive.
			grant = 0
		}
		if i == 0 {
			grant += s.rewards.WinnerBonus
		}
		changes[res.PlayerID] = grant
	}
	return Event{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			GameID:         room.GameID,
			Results:        room.Results,
			BalanceChanges: changes,
		},
	}
}
