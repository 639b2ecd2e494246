package bot

import (
	"fmt"
	"math/rand"
)

// BotLevel selects a strategy for auto-filled bots.
type BotLevel string

const (
	BotLevelEasy  BotLevel = "easy"
	BotLevelSharp BotLevel = "sharp"
)

// NewBrain creates a new AI brain for the specified level. rng may be nil to
// use a time-seeded default; only the easy brain consumes randomness.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return NewEasyBrain(rng), nil
	case BotLevelSharp:
		return &SharpBrain{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %s", level)
	}
}
