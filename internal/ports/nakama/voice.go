package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"startups/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// voiceService is initialized lazily from runtime env credentials. Tests may
// set it directly.
var voiceService *app.VoiceService

// VoiceTokenRequest is the payload for the voice_token RPC. RoomCode is
// required for join tokens and names the room whose channel is joined.
type VoiceTokenRequest struct {
	Action   string `json:"action"` // "login" or "join"
	RoomCode string `json:"room_code"`
}

// VoiceTokenResponse carries the signed voice token back to the client.
type VoiceTokenResponse struct {
	Token   string `json:"token"`
	Channel string `json:"channel,omitempty"`
}

func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", 16) // UNAUTHENTICATED
	}

	var req VoiceTokenRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
	}

	if voiceService == nil {
		env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
		secret := env["vivox_secret"]
		issuer := env["vivox_issuer"]
		domain := env["vivox_domain"]
		if secret == "" || issuer == "" || domain == "" {
			logger.Warn("rpcVoiceToken: Voice credentials missing from env.")
			return "", runtime.NewError("voice chat not configured", 9) // FAILED_PRECONDITION
		}
		voiceService = app.NewVoiceService(secret, issuer, domain)
	}

	channel := ""
	if req.Action == app.VoiceTokenActionJoin {
		if req.RoomCode == "" {
			return "", runtime.NewError("room code required for join", 3)
		}
		channel = app.RoomChannelName(req.RoomCode)
	}

	token, err := voiceService.GenerateToken(userID, req.Action, channel)
	if err != nil {
		logger.Error("rpcVoiceToken: Failed to generate token for %s: %v", userID, err)
		return "", runtime.NewError("failed to generate voice token", 13) // INTERNAL
	}

	b, _ := json.Marshal(VoiceTokenResponse{Token: token, Channel: channel})
	return string(b), nil
}
