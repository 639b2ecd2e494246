package domain

import "errors"

var (
	ErrNotYourTurn         = errors.New("not your turn")
	ErrWrongPhase          = errors.New("action not allowed in this phase")
	ErrDeckEmpty           = errors.New("deck is empty")
	ErrInsufficientChips   = errors.New("not enough chips to pay the market")
	ErrInvalidMarketIndex  = errors.New("invalid market index")
	ErrInvalidHandIndex    = errors.New("invalid hand index")
	ErrOwnAntiChip         = errors.New("cannot take a company you already dominate")
	ErrSameCompanyReturn   = errors.New("cannot return the company just taken from the market")
	ErrMustPlayToPortfolio = errors.New("last card taker must play to portfolio")
)

// actingPlayer resolves the acting player, enforcing game liveness and turn
// ownership. Every rule entry point goes through it so a rejection can never
// come with a partial mutation.
func (r *Room) actingPlayer(playerID string) (*Player, error) {
	if !r.GameStarted || r.GameEnded {
		return nil, ErrGameNotActive
	}
	p := r.CurrentPlayer()
	if p == nil || p.ID != playerID {
		return nil, ErrNotYourTurn
	}
	return p, nil
}

// payableMarketCount is the number of market slots the player must fund when
// drawing from the deck: every slot whose company they do not hold the
// anti-chip for.
func (r *Room) payableMarketCount(playerID string) int {
	count := 0
	for _, slot := range r.Market {
		if r.AntiChips[slot.Company] != playerID {
			count++
		}
	}
	return count
}

// DeckCost is the chips1 price the player would pay to draw from the deck
// right now.
func (r *Room) DeckCost(playerID string) int {
	return r.payableMarketCount(playerID)
}

// TakeFromDeck pays one chips1 onto every market slot the player does not
// dominate, then moves the top deck card into their hand. Drawing the final
// deck card arms the endgame for this player's disposal.
func (r *Room) TakeFromDeck(playerID string) error {
	p, err := r.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if r.TurnPhase != PhaseDraw {
		return ErrWrongPhase
	}
	if len(r.Deck) == 0 {
		// Defensive: the game ends before another draw is possible.
		return ErrDeckEmpty
	}
	cost := r.payableMarketCount(p.ID)
	if p.Chips1 < cost {
		return ErrInsufficientChips
	}

	for i := range r.Market {
		if r.AntiChips[r.Market[i].Company] != p.ID {
			r.Market[i].Chips++
		}
	}
	p.Chips1 -= cost

	p.Hand = append(p.Hand, r.popDeck())
	if len(r.Deck) == 0 && !r.LastCardTaken {
		r.LastCardTaken = true
		r.LastCardTakenPlayer = p.ID
	}

	r.TurnPhase = PhasePlay
	return nil
}

// TakeFromMarket claims the slot at marketIndex: the card joins the player's
// hand, the accrued chips join their chips1, and the company is remembered to
// block an immediate return to the market. A player cannot re-claim a company
// they already hold the anti-chip for.
func (r *Room) TakeFromMarket(playerID string, marketIndex int) error {
	p, err := r.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if r.TurnPhase != PhaseDraw {
		return ErrWrongPhase
	}
	if marketIndex < 0 || marketIndex >= len(r.Market) {
		return ErrInvalidMarketIndex
	}
	slot := r.Market[marketIndex]
	if r.AntiChips[slot.Company] == p.ID {
		return ErrOwnAntiChip
	}

	r.Market = append(r.Market[:marketIndex], r.Market[marketIndex+1:]...)
	p.Hand = append(p.Hand, Card{Company: slot.Company})
	p.Chips1 += slot.Chips
	p.LastTakenCompany = slot.Company

	r.TurnPhase = PhasePlay
	return nil
}

// PlayToPortfolio moves a hand card into the player's portfolio and
// recomputes anti-chip ownership. If this was the last card taker's disposal
// the game ends here instead of advancing the turn.
func (r *Room) PlayToPortfolio(playerID string, handIndex int) error {
	p, err := r.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if r.TurnPhase != PhasePlay {
		return ErrWrongPhase
	}
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return ErrInvalidHandIndex
	}

	card := p.Hand[handIndex]
	p.Hand = append(p.Hand[:handIndex], p.Hand[handIndex+1:]...)
	p.Portfolio[card.Company]++
	r.RecalcAntiChips()
	p.LastTakenCompany = ""

	if r.LastCardTaken && p.ID == r.LastCardTakenPlayer {
		r.Finish()
		return nil
	}
	r.NextTurn()
	return nil
}

// PlayToMarket appends a hand card to the market as a fresh zero-chip slot.
// Two restrictions apply: the company just taken from the market cannot go
// straight back, and the player who emptied the deck must resolve into their
// portfolio (a market card would be stranded with nobody left to draw it).
func (r *Room) PlayToMarket(playerID string, handIndex int) error {
	p, err := r.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if r.TurnPhase != PhasePlay {
		return ErrWrongPhase
	}
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return ErrInvalidHandIndex
	}
	if r.LastCardTaken && p.ID == r.LastCardTakenPlayer {
		return ErrMustPlayToPortfolio
	}
	card := p.Hand[handIndex]
	if p.LastTakenCompany != "" && card.Company == p.LastTakenCompany {
		return ErrSameCompanyReturn
	}

	p.Hand = append(p.Hand[:handIndex], p.Hand[handIndex+1:]...)
	r.Market = append(r.Market, MarketSlot{Company: card.Company})
	p.LastTakenCompany = ""

	r.NextTurn()
	return nil
}

// NextTurn advances the turn pointer around the (possibly shrunk) player
// list and resets the phase to draw.
func (r *Room) NextTurn() {
	r.CurrentPlayerIndex = (r.CurrentPlayerIndex + 1) % len(r.Players)
	r.TurnPhase = PhaseDraw
	for _, p := range r.Players {
		p.LastTakenCompany = ""
	}
}

// RecalcAntiChips recomputes every company's majority holder from portfolios
// only. A unique strict maximum wins the chip outright; on a tie the previous
// holder keeps it while still tied for the max, otherwise the earliest tied
// player in turn order takes it. Companies nobody holds have no owner.
func (r *Room) RecalcAntiChips() {
	next := emptyAntiChips()
	for _, c := range Companies {
		max := 0
		for _, p := range r.Players {
			if p.Portfolio[c.Name] > max {
				max = p.Portfolio[c.Name]
			}
		}
		if max == 0 {
			continue
		}

		var leaders []string
		for _, p := range r.Players {
			if p.Portfolio[c.Name] == max {
				leaders = append(leaders, p.ID)
			}
		}

		if len(leaders) == 1 {
			next[c.Name] = leaders[0]
			continue
		}
		prev := r.AntiChips[c.Name]
		holder := leaders[0]
		for _, id := range leaders {
			if id == prev {
				holder = prev
				break
			}
		}
		next[c.Name] = holder
	}
	r.AntiChips = next
}
