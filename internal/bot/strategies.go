package bot

import (
	"errors"
	"math/rand"
	"time"

	"startups/internal/domain"
)

var ErrNoLegalMove = errors.New("no legal move available")

// legalMarketSlots lists the market indices the player may claim.
func legalMarketSlots(room *domain.Room, player *domain.Player) []int {
	var slots []int
	for i, slot := range room.Market {
		if room.AntiChips[slot.Company] != player.ID {
			slots = append(slots, i)
		}
	}
	return slots
}

func canDraw(room *domain.Room, player *domain.Player) bool {
	return len(room.Deck) > 0 && player.Chips1 >= room.DeckCost(player.ID)
}

func mustKeepCard(room *domain.Room, player *domain.Player) bool {
	return room.LastCardTaken && player.ID == room.LastCardTakenPlayer
}

// EasyBrain picks a uniformly random legal move each phase.
type EasyBrain struct {
	rng *rand.Rand
}

func NewEasyBrain(rng *rand.Rand) *EasyBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &EasyBrain{rng: rng}
}

func (b *EasyBrain) CalculateMove(room *domain.Room, player *domain.Player) (Move, error) {
	if room.TurnPhase == domain.PhaseDraw {
		slots := legalMarketSlots(room, player)
		options := len(slots)
		if canDraw(room, player) {
			options++
		}
		if options == 0 {
			return Move{}, ErrNoLegalMove
		}
		pick := b.rng.Intn(options)
		if pick < len(slots) {
			return Move{FromMarket: true, MarketIndex: slots[pick]}, nil
		}
		return Move{}, nil
	}

	if len(player.Hand) == 0 {
		return Move{}, ErrNoLegalMove
	}
	idx := b.rng.Intn(len(player.Hand))
	move := Move{HandIndex: idx}
	if mustKeepCard(room, player) {
		return move, nil
	}
	if player.Hand[idx].Company != player.LastTakenCompany && b.rng.Intn(2) == 0 {
		move.ToMarket = true
	}
	return move, nil
}

// SharpBrain plays a deterministic greedy heuristic: claim chip-rich market
// slots for companies it is invested in, grow its largest holdings, and dump
// cards for companies an opponent already dominates.
type SharpBrain struct{}

func (b *SharpBrain) CalculateMove(room *domain.Room, player *domain.Player) (Move, error) {
	if room.TurnPhase == domain.PhaseDraw {
		return b.drawMove(room, player)
	}
	return b.playMove(room, player)
}

func (b *SharpBrain) drawMove(room *domain.Room, player *domain.Player) (Move, error) {
	slots := legalMarketSlots(room, player)
	bestSlot := -1
	bestScore := 0
	for _, i := range slots {
		slot := room.Market[i]
		score := slot.Chips + 2*player.Portfolio[slot.Company]
		if score > bestScore {
			bestScore = score
			bestSlot = i
		}
	}

	if bestSlot >= 0 && (bestScore >= 2 || !canDraw(room, player)) {
		return Move{FromMarket: true, MarketIndex: bestSlot}, nil
	}
	if canDraw(room, player) {
		return Move{}, nil
	}
	if len(slots) > 0 {
		return Move{FromMarket: true, MarketIndex: slots[0]}, nil
	}
	return Move{}, ErrNoLegalMove
}

func (b *SharpBrain) playMove(room *domain.Room, player *domain.Player) (Move, error) {
	if len(player.Hand) == 0 {
		return Move{}, ErrNoLegalMove
	}

	// Keep the card whose company we hold the most of.
	keep := 0
	for i, card := range player.Hand {
		if player.Portfolio[card.Company] > player.Portfolio[player.Hand[keep].Company] {
			keep = i
		}
	}
	if mustKeepCard(room, player) {
		return Move{HandIndex: keep}, nil
	}

	// Dump a card for a company an opponent dominates and we barely hold.
	for i, card := range player.Hand {
		if card.Company == player.LastTakenCompany {
			continue
		}
		holder := room.AntiChips[card.Company]
		if holder != "" && holder != player.ID && player.Portfolio[card.Company] <= 1 {
			return Move{ToMarket: true, HandIndex: i}, nil
		}
	}
	return Move{HandIndex: keep}, nil
}
