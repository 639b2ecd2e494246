package domain

import "sort"

// Finish runs the endgame: sweep remaining hands into portfolios, settle
// majority chips3 transfers and attach the ranked result list. Safe to call
// from any trigger (final disposal, player-count collapse, disconnect); it
// runs at most once per game.
func (r *Room) Finish() {
	if r.GameEnded {
		return
	}

	for _, p := range r.Players {
		for _, card := range p.Hand {
			p.Portfolio[card.Company]++
		}
		p.Hand = nil
	}

	// Final informational snapshot for clients.
	r.RecalcAntiChips()

	net := make(map[string]int, len(r.Players))
	for _, c := range Companies {
		leaderID, unique := r.strictLeader(c.Name)
		if !unique {
			continue
		}
		for _, p := range r.Players {
			count := p.Portfolio[c.Name]
			if p.ID != leaderID && count > 0 {
				net[leaderID] += count
				net[p.ID] -= count // may go negative; debts are not clamped
			}
		}
	}

	results := make([]Result, 0, len(r.Players))
	for _, p := range r.Players {
		p.Chips3 += net[p.ID]
		results = append(results, Result{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Chips1 + p.Chips3*3,
			Chips1:   p.Chips1,
			Chips3:   p.Chips3,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chips3 != results[j].Chips3 {
			return results[i].Chips3 > results[j].Chips3
		}
		// Full ties favor whoever drew the final deck card.
		if results[i].PlayerID == r.LastCardTakenPlayer {
			return true
		}
		return false
	})

	r.GameEnded = true
	r.Results = results
}

// strictLeader returns the unique strict-maximum portfolio holder for a
// company, or unique=false when nobody holds it or the lead is tied.
func (r *Room) strictLeader(company string) (string, bool) {
	max := 0
	leaderID := ""
	unique := false
	for _, p := range r.Players {
		count := p.Portfolio[company]
		switch {
		case count > max:
			max = count
			leaderID = p.ID
			unique = true
		case count == max && count > 0:
			unique = false
		}
	}
	if max == 0 {
		return "", false
	}
	return leaderID, unique
}
