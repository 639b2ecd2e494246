package app

import (
	"errors"
	"math/rand"
	"testing"

	"startups/internal/domain"
)

func newTestService() *Service {
	return NewService(rand.New(rand.NewSource(42)), RewardPlan{ScoreMultiplier: 10, WinnerBonus: 100})
}

func lobbyRoom(t *testing.T, svc *Service, ids ...string) *domain.Room {
	t.Helper()
	room := svc.CreateRoom("TEST", ids[0])
	for _, id := range ids {
		if _, err := svc.AddPlayer(room, id, "player "+id); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	return room
}

func TestStartGameDealsHandsPrivately(t *testing.T) {
	svc := newTestService()
	room := lobbyRoom(t, svc, "u1", "u2", "u3")

	events, err := svc.StartGame(room, "u1")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if !room.GameStarted {
		t.Fatal("room should be started")
	}
	if room.GameID == "" {
		t.Fatal("game id not assigned")
	}

	handEvents := 0
	for _, ev := range events {
		if ev.Kind != EventHandDealt {
			continue
		}
		handEvents++
		payload := ev.Payload.(HandDealtPayload)
		if len(payload.Hand) != domain.StartingHandSize {
			t.Fatalf("hand size = %d, want %d", len(payload.Hand), domain.StartingHandSize)
		}
		if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.PlayerID {
			t.Fatalf("hand for %s leaked to %v", payload.PlayerID, ev.Recipients)
		}
	}
	if handEvents != 3 {
		t.Fatalf("hand events = %d, want 3", handEvents)
	}
}

func TestStartGameRequiresOwner(t *testing.T) {
	svc := newTestService()
	room := lobbyRoom(t, svc, "u1", "u2")

	if _, err := svc.StartGame(room, "u2"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}

func TestApplyIntentFullTurn(t *testing.T) {
	svc := newTestService()
	room := lobbyRoom(t, svc, "u1", "u2")
	if _, err := svc.StartGame(room, "u1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	actor := room.CurrentPlayer().ID
	events, err := svc.ApplyIntent(room, actor, Intent{Action: ActionTakeFromDeck})
	if err != nil {
		t.Fatalf("take_from_deck: %v", err)
	}
	if len(events) != 2 || events[0].Kind != EventHandDealt || events[1].Kind != EventRoomUpdated {
		t.Fatalf("events = %v, want a hand deal then a room update", events)
	}
	if room.TurnPhase != domain.PhasePlay {
		t.Fatalf("phase = %s, want play", room.TurnPhase)
	}

	played, err := svc.ApplyIntent(room, actor, Intent{Action: ActionPlayToPortfolio, HandIndex: 0})
	if err != nil {
		t.Fatalf("play_to_portfolio: %v", err)
	}
	for _, ev := range played {
		if ev.Kind == EventHandDealt {
			t.Fatal("a disposal reveals nothing new, no hand deal expected")
		}
	}
	if next := room.CurrentPlayer().ID; next == actor {
		t.Fatal("turn did not advance")
	}
}

func TestDrawRedealsHandToActorOnly(t *testing.T) {
	svc := newTestService()
	room := lobbyRoom(t, svc, "u1", "u2")
	if _, err := svc.StartGame(room, "u1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	actor := room.CurrentPlayer().ID
	top := room.Deck[len(room.Deck)-1]

	events, err := svc.ApplyIntent(room, actor, Intent{Action: ActionTakeFromDeck})
	if err != nil {
		t.Fatalf("take_from_deck: %v", err)
	}

	var deal *HandDealtPayload
	for _, ev := range events {
		if ev.Kind != EventHandDealt {
			continue
		}
		if len(ev.Recipients) != 1 || ev.Recipients[0] != actor {
			t.Fatalf("hand deal addressed to %v, want only %s", ev.Recipients, actor)
		}
		payload := ev.Payload.(HandDealtPayload)
		deal = &payload
	}
	if deal == nil {
		t.Fatal("draw produced no hand deal for the actor")
	}
	if deal.PlayerID != actor {
		t.Fatalf("hand deal owner = %s, want %s", deal.PlayerID, actor)
	}
	if len(deal.Hand) != domain.StartingHandSize+1 {
		t.Fatalf("hand size = %d, want %d", len(deal.Hand), domain.StartingHandSize+1)
	}
	if deal.Hand[len(deal.Hand)-1] != top {
		t.Fatalf("dealt hand ends with %v, want the drawn card %v", deal.Hand[len(deal.Hand)-1], top)
	}

	// A market take changes the hand too and must re-deal the same way.
	if _, err := svc.ApplyIntent(room, actor, Intent{Action: ActionPlayToMarket, HandIndex: 0}); err != nil {
		t.Fatalf("play_to_market: %v", err)
	}
	next := room.CurrentPlayer().ID
	events, err = svc.ApplyIntent(room, next, Intent{Action: ActionTakeFromMarket, MarketIndex: 0})
	if err != nil {
		t.Fatalf("take_from_market: %v", err)
	}
	found := false
	for _, ev := range events {
		if ev.Kind == EventHandDealt {
			found = true
			if len(ev.Recipients) != 1 || ev.Recipients[0] != next {
				t.Fatalf("hand deal addressed to %v, want only %s", ev.Recipients, next)
			}
		}
	}
	if !found {
		t.Fatal("market take produced no hand deal for the actor")
	}
}

func TestApplyIntentRejectionsLeaveRoomUntouched(t *testing.T) {
	svc := newTestService()
	room := lobbyRoom(t, svc, "u1", "u2")
	if _, err := svc.StartGame(room, "u1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	bystander := "u1"
	if room.CurrentPlayer().ID == "u1" {
		bystander = "u2"
	}
	deckBefore := len(room.Deck)

	tests := []struct {
		name   string
		player string
		intent Intent
	}{
		{name: "unknown action", player: room.CurrentPlayer().ID, intent: Intent{Action: "discard_all"}},
		{name: "not your turn", player: bystander, intent: Intent{Action: ActionTakeFromDeck}},
		{name: "disposal in draw phase", player: room.CurrentPlayer().ID, intent: Intent{Action: ActionPlayToPortfolio}},
		{name: "market index out of range", player: room.CurrentPlayer().ID, intent: Intent{Action: ActionTakeFromMarket, MarketIndex: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ApplyIntent(room, tt.player, tt.intent); err == nil {
				t.Fatal("expected rejection")
			}
			if len(room.Deck) != deckBefore || room.TurnPhase != domain.PhaseDraw {
				t.Fatal("rejected intent mutated the room")
			}
		})
	}
}

func TestRemovePlayerMidGameEndsAndSettles(t *testing.T) {
	svc := newTestService()
	room := lobbyRoom(t, svc, "u1", "u2", "u3")
	if _, err := svc.StartGame(room, "u1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	events, err := svc.RemovePlayer(room, "u2")
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if !room.GameEnded {
		t.Fatal("mid-game departure should end the game")
	}

	var ended *GameEndedPayload
	for _, ev := range events {
		if ev.Kind == EventGameEnded {
			payload := ev.Payload.(GameEndedPayload)
			ended = &payload
		}
	}
	if ended == nil {
		t.Fatal("expected game ended event")
	}
	if len(ended.Results) != 2 {
		t.Fatalf("results = %v, want the two survivors", ended.Results)
	}
	if _, ok := ended.BalanceChanges["u2"]; ok {
		t.Fatal("departed player should not be settled")
	}

	// The second departure must not produce another settlement.
	events, err = svc.RemovePlayer(room, "u3")
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	for _, ev := range events {
		if ev.Kind == EventGameEnded {
			t.Fatal("endgame settled twice")
		}
	}
}

func TestGameEndedBalancesFollowRewardPlan(t *testing.T) {
	svc := newTestService()
	room := lobbyRoom(t, svc, "u1", "u2")
	if _, err := svc.StartGame(room, "u1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}

	events, err := svc.RemovePlayer(room, "u2")
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}

	for _, ev := range events {
		if ev.Kind != EventGameEnded {
			continue
		}
		payload := ev.Payload.(GameEndedPayload)
		winner := payload.Results[0]
		want := int64(winner.Score)*10 + 100
		if winner.Score < 0 {
			want = 100
		}
		if payload.BalanceChanges[winner.PlayerID] != want {
			t.Fatalf("winner grant = %d, want %d", payload.BalanceChanges[winner.PlayerID], want)
		}
		return
	}
	t.Fatal("expected game ended event")
}
