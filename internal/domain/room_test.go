package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestAddPlayerRules(t *testing.T) {
	r := NewRoom("abcd", "a")
	if r.Code != "ABCD" {
		t.Fatalf("code = %q, want uppercase", r.Code)
	}

	for i := 0; i < MaxPlayers; i++ {
		id := string(rune('a' + i))
		if _, err := r.AddPlayer(id, "p"+id); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}

	if _, err := r.AddPlayer("z", "pz"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}
	if _, err := r.AddPlayer("a", "again"); !errors.Is(err, ErrDuplicatePlayer) {
		t.Fatalf("err = %v, want ErrDuplicatePlayer", err)
	}
}

func TestAddPlayerRejectedAfterStart(t *testing.T) {
	r := NewRoom("ROOM", "a")
	r.AddPlayer("a", "pa")
	r.AddPlayer("b", "pb")
	if err := r.Start(rand.New(rand.NewSource(1))); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := r.AddPlayer("c", "pc"); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("err = %v, want ErrGameInProgress", err)
	}
}

func TestStartDealsAndResets(t *testing.T) {
	r := NewRoom("ROOM", "a")
	r.AddPlayer("a", "pa")
	r.AddPlayer("b", "pb")
	r.AddPlayer("c", "pc")
	r.PlayerByID("a").Chips1 = 99 // stale lobby state must be reset

	if err := r.Start(rand.New(rand.NewSource(5))); err != nil {
		t.Fatalf("Start: %v", err)
	}

	wantDeck := TotalCompanyCards() - RemovedDeckCards - 3*StartingHandSize
	if len(r.Deck) != wantDeck {
		t.Fatalf("deck size = %d, want %d", len(r.Deck), wantDeck)
	}
	for _, p := range r.Players {
		if len(p.Hand) != StartingHandSize {
			t.Fatalf("player %s hand = %d cards, want %d", p.ID, len(p.Hand), StartingHandSize)
		}
		if p.Chips1 != StartingChips1 || p.Chips3 != 0 {
			t.Fatalf("player %s chips = %d/%d, want %d/0", p.ID, p.Chips1, p.Chips3, StartingChips1)
		}
	}
	if r.CurrentPlayerIndex < 0 || r.CurrentPlayerIndex >= len(r.Players) {
		t.Fatalf("starting index %d out of range", r.CurrentPlayerIndex)
	}
	if r.TurnPhase != PhaseDraw || !r.GameStarted || r.GameEnded {
		t.Fatalf("unexpected lifecycle state: %s %v %v", r.TurnPhase, r.GameStarted, r.GameEnded)
	}
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	r := NewRoom("ROOM", "a")
	r.AddPlayer("a", "pa")
	if err := r.Start(rand.New(rand.NewSource(1))); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("err = %v, want ErrTooFewPlayers", err)
	}
}

func TestStartDeterministicForSeed(t *testing.T) {
	build := func() *Room {
		r := NewRoom("ROOM", "a")
		r.AddPlayer("a", "pa")
		r.AddPlayer("b", "pb")
		r.Start(rand.New(rand.NewSource(77)))
		return r
	}
	r1, r2 := build(), build()

	if r1.CurrentPlayerIndex != r2.CurrentPlayerIndex {
		t.Fatalf("starting player diverged: %d vs %d", r1.CurrentPlayerIndex, r2.CurrentPlayerIndex)
	}
	for i := range r1.Deck {
		if r1.Deck[i] != r2.Deck[i] {
			t.Fatalf("deck diverged at %d", i)
		}
	}
}

func TestRemovePlayerReassignsOwner(t *testing.T) {
	r := NewRoom("ROOM", "a")
	r.AddPlayer("a", "pa")
	r.AddPlayer("b", "pb")
	r.AddPlayer("c", "pc")

	if err := r.RemovePlayer("a"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if r.OwnerID != "b" {
		t.Fatalf("owner = %s, want b", r.OwnerID)
	}
	if err := r.RemovePlayer("zz"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
}

func TestRemovePlayerAdjustsTurnPointer(t *testing.T) {
	r := startedRoom("a", "b", "c")
	r.CurrentPlayerIndex = 2 // c's turn

	if err := r.RemovePlayer("a"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if got := r.CurrentPlayer(); got == nil || got.ID != "c" {
		t.Fatalf("current player = %v, want c", got)
	}
}

func TestRemovePlayerBelowFloorFinishesOnce(t *testing.T) {
	r := startedRoom("a", "b")
	r.PlayerByID("a").Portfolio["Giraffe Beer"] = 1

	if err := r.RemovePlayer("b"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if !r.GameEnded {
		t.Fatal("game should end when the room drops below two players")
	}
	if len(r.Results) != 1 {
		t.Fatalf("results = %v, want the surviving player only", r.Results)
	}

	chips3 := r.PlayerByID("a").Chips3
	// A second departure-driven sweep must not re-settle.
	r.Finish()
	if r.PlayerByID("a").Chips3 != chips3 {
		t.Fatal("endgame sweep ran twice")
	}
}
