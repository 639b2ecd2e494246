package bot

import (
	"errors"

	"startups/internal/domain"
)

var ErrNotSeated = errors.New("agent is not seated in this room")

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent to calculate its move for the current turn phase.
func (a *Agent) Play(room *domain.Room) (Move, error) {
	player := room.PlayerByID(a.ID)
	if player == nil {
		return Move{}, ErrNotSeated
	}
	return a.Strategy.CalculateMove(room, player)
}
