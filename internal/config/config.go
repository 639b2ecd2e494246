package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	// ScoreChipMultiplier converts final score points into meta-wallet chips.
	ScoreChipMultiplier int64 `json:"score_chip_multiplier"`
	// WinnerBonusChips is granted to the top-ranked player on top of the score reward.
	WinnerBonusChips int64 `json:"winner_bonus_chips"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// BotLevel selects the brain for auto-filled bots ("easy" or "sharp").
	BotLevel string `json:"bot_level"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetScoreChipMultiplier returns the configured multiplier or a safe default.
func GetScoreChipMultiplier() int64 {
	if cfg == nil || cfg.ScoreChipMultiplier <= 0 {
		return 10
	}
	return cfg.ScoreChipMultiplier
}

// GetWinnerBonusChips returns the configured winner bonus or a safe default.
func GetWinnerBonusChips() int64 {
	if cfg == nil || cfg.WinnerBonusChips < 0 {
		return 100
	}
	return cfg.WinnerBonusChips
}

// GetBotAutoFillDelaySeconds returns the lobby auto-fill delay or a safe default.
func GetBotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 15
	}
	return cfg.BotAutoFillDelaySeconds
}

// GetBotLevel returns the configured bot level or a safe default.
func GetBotLevel() string {
	if cfg == nil || cfg.BotLevel == "" {
		return "easy"
	}
	return cfg.BotLevel
}
