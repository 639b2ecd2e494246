package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIdentity is one configured bot account. DeviceID is the stable device
// key the account is authenticated under; UserID is filled in at load time
// for pre-provisioned pools or at provisioning for fresh databases.
type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Level       string `json:"level"` // "easy" or "sharp"
	AvatarIndex int    `json:"avatar_index"`
}

// profileMetadata is the account metadata bots carry so clients and the
// match handler can tell them apart from founders.
func (bi BotIdentity) profileMetadata() map[string]interface{} {
	return map[string]interface{}{
		"is_bot":       true,
		"level":        bi.Level,
		"avatar_index": bi.AvatarIndex,
	}
}

// identityPool is the process-wide bot roster: the ordered list drives seat
// filling, the index answers per-user lookups.
type identityPool struct {
	roster []BotIdentity
	byUser map[string]BotIdentity
}

func (ip *identityPool) index(identity BotIdentity) {
	if ip.byUser == nil {
		ip.byUser = make(map[string]BotIdentity)
	}
	ip.byUser[identity.UserID] = identity
}

var (
	pool          identityPool
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities reads the bot roster from the given JSON file. Identities
// that already carry a user id are indexed immediately; the rest become
// addressable once ProvisionBots has authenticated them.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("read bot roster: %w", err)
			return
		}
		if err := json.Unmarshal(data, &pool.roster); err != nil {
			loadErr = fmt.Errorf("parse bot roster: %w", err)
			return
		}
		for _, identity := range pool.roster {
			if identity.UserID != "" {
				pool.index(identity)
			}
		}
	})
	return loadErr
}

// ProvisionBots makes sure every rostered bot has a Nakama account carrying
// the bot profile metadata. Failures skip the one identity and keep going;
// an unprovisioned bot just never gets seated.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) error {
	provisionOnce.Do(func() {
		for i := range pool.roster {
			identity := &pool.roster[i]
			if identity.DeviceID == "" {
				continue
			}
			if err := provisionIdentity(ctx, nk, identity); err != nil {
				logger.Error("ProvisionBots: %s skipped: %v", identity.Username, err)
				continue
			}
			pool.index(*identity)
			logger.Info("ProvisionBots: %s (%s) seatable at level %s.", identity.DisplayName, identity.UserID, identity.Level)
		}
	})
	return nil
}

// provisionIdentity authenticates the bot's device, creating the account on
// first run, and stamps its profile. The roster entry is updated in place
// with the ids Nakama assigned.
func provisionIdentity(ctx context.Context, nk runtime.NakamaModule, identity *BotIdentity) error {
	userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
	if err != nil {
		return fmt.Errorf("authenticate device: %w", err)
	}
	identity.UserID = userID
	identity.Username = username

	if err := nk.AccountUpdateId(ctx, userID, username, identity.profileMetadata(), identity.DisplayName, "", "", "", ""); err != nil {
		return fmt.Errorf("stamp profile: %w", err)
	}
	return nil
}

// GetBotConfig returns the rostered identity behind a user id.
func GetBotConfig(userID string) (BotIdentity, bool) {
	identity, ok := pool.byUser[userID]
	return identity, ok
}

// GetBotIdentity returns a roster entry by seat index, wrapping around the
// pool. With no roster loaded it fabricates a placeholder so lobbies can
// still fill.
func GetBotIdentity(index int) BotIdentity {
	if len(pool.roster) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("Investor Bot %d", index),
		}
	}
	return pool.roster[index%len(pool.roster)]
}

// IsBot reports whether the user id belongs to the bot roster.
func IsBot(userID string) bool {
	_, ok := pool.byUser[userID]
	return ok
}
