package bot

import (
	"fmt"
	"math/rand"
	"testing"

	"startups/internal/domain"
)

func startedRoom(t *testing.T, seed int64, players int) *domain.Room {
	t.Helper()
	room := domain.NewRoom("bots", "b0")
	for i := 0; i < players; i++ {
		if _, err := room.AddPlayer(fmt.Sprintf("b%d", i), fmt.Sprintf("bot %d", i)); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}
	if err := room.Start(rand.New(rand.NewSource(seed))); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return room
}

func applyMove(room *domain.Room, playerID string, move Move) error {
	if room.TurnPhase == domain.PhaseDraw {
		if move.FromMarket {
			return room.TakeFromMarket(playerID, move.MarketIndex)
		}
		return room.TakeFromDeck(playerID)
	}
	if move.ToMarket {
		return room.PlayToMarket(playerID, move.HandIndex)
	}
	return room.PlayToPortfolio(playerID, move.HandIndex)
}

// Drives full games with the given brain and fails on any illegal move.
func playOutGames(t *testing.T, makeBrain func(seed int64) Brain) {
	t.Helper()
	for seed := int64(0); seed < 20; seed++ {
		room := startedRoom(t, seed, 2+int(seed%6))
		brain := makeBrain(seed)

		for step := 0; step < 10000 && !room.GameEnded; step++ {
			p := room.CurrentPlayer()
			move, err := brain.CalculateMove(room, p)
			if err != nil {
				t.Fatalf("seed %d step %d: CalculateMove: %v", seed, step, err)
			}
			if err := applyMove(room, p.ID, move); err != nil {
				t.Fatalf("seed %d step %d: illegal move %+v: %v", seed, step, move, err)
			}
		}
		if !room.GameEnded {
			t.Fatalf("seed %d: game did not finish", seed)
		}
		if len(room.Results) != len(room.Players) {
			t.Fatalf("seed %d: results = %d, players = %d", seed, len(room.Results), len(room.Players))
		}
	}
}

func TestEasyBrainPlaysFullGamesLegally(t *testing.T) {
	playOutGames(t, func(seed int64) Brain {
		return NewEasyBrain(rand.New(rand.NewSource(seed)))
	})
}

func TestSharpBrainPlaysFullGamesLegally(t *testing.T) {
	playOutGames(t, func(seed int64) Brain {
		return &SharpBrain{}
	})
}

func TestSharpBrainPrefersChipRichMarketSlot(t *testing.T) {
	room := startedRoom(t, 1, 2)
	room.Market = []domain.MarketSlot{
		{Company: domain.Companies[0].Name, Chips: 0},
		{Company: domain.Companies[1].Name, Chips: 3},
	}

	brain := &SharpBrain{}
	move, err := brain.CalculateMove(room, room.CurrentPlayer())
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if !move.FromMarket || move.MarketIndex != 1 {
		t.Fatalf("move = %+v, want the chip-rich slot", move)
	}
}

func TestSharpBrainDrawsWhenMarketIsPoor(t *testing.T) {
	room := startedRoom(t, 1, 2)
	room.Market = []domain.MarketSlot{{Company: domain.Companies[0].Name, Chips: 0}}

	brain := &SharpBrain{}
	move, err := brain.CalculateMove(room, room.CurrentPlayer())
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if move.FromMarket {
		t.Fatalf("move = %+v, want a deck draw", move)
	}
}

func TestSharpBrainDumpsDominatedCompany(t *testing.T) {
	room := startedRoom(t, 1, 2)
	p := room.CurrentPlayer()
	rival := room.Players[0]
	if rival.ID == p.ID {
		rival = room.Players[1]
	}

	dominated := domain.Companies[0].Name
	held := domain.Companies[1].Name
	rival.Portfolio[dominated] = 3
	p.Portfolio[held] = 2
	room.RecalcAntiChips()

	p.Hand = []domain.Card{{Company: held}, {Company: dominated}}
	room.TurnPhase = domain.PhasePlay

	brain := &SharpBrain{}
	move, err := brain.CalculateMove(room, p)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if !move.ToMarket || move.HandIndex != 1 {
		t.Fatalf("move = %+v, want to dump the dominated company", move)
	}
}

func TestSharpBrainKeepsCardWhenLastCardTaker(t *testing.T) {
	room := startedRoom(t, 1, 2)
	p := room.CurrentPlayer()
	rival := room.Players[0]
	if rival.ID == p.ID {
		rival = room.Players[1]
	}

	dominated := domain.Companies[0].Name
	rival.Portfolio[dominated] = 3
	room.RecalcAntiChips()

	p.Hand = []domain.Card{{Company: dominated}}
	room.TurnPhase = domain.PhasePlay
	room.LastCardTaken = true
	room.LastCardTakenPlayer = p.ID

	brain := &SharpBrain{}
	move, err := brain.CalculateMove(room, p)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	if move.ToMarket {
		t.Fatalf("move = %+v, last card taker must build the portfolio", move)
	}
}

func TestAgentPlayRequiresSeat(t *testing.T) {
	room := startedRoom(t, 1, 2)
	agent := &Agent{ID: "ghost", Strategy: &SharpBrain{}}
	if _, err := agent.Play(room); err != ErrNotSeated {
		t.Fatalf("err = %v, want ErrNotSeated", err)
	}
}
