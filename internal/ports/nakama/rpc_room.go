package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateRoomResponse is returned from the create_room RPC.
type CreateRoomResponse struct {
	MatchID string `json:"match_id"`
	Code    string `json:"code"`
}

// JoinRoomRequest is the payload for the join_room RPC.
type JoinRoomRequest struct {
	Code string `json:"code"`
}

// JoinRoomResponse is returned from the join_room RPC.
type JoinRoomResponse struct {
	MatchID string `json:"match_id"`
	Code    string `json:"code"`
}

// rpcCreateRoom creates a private room with a shareable code. The caller
// still joins the returned match through the realtime socket.
func rpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	code := generateRoomCode()
	matchID, err := nk.MatchCreate(ctx, MatchNameStartups, map[string]interface{}{"code": code})
	if err != nil {
		logger.Error("rpcCreateRoom [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("failed to create room", 13) // INTERNAL
	}

	logger.Info("rpcCreateRoom [User:%s]: Created room %s (%s)", userID, code, matchID)
	b, _ := json.Marshal(CreateRoomResponse{MatchID: matchID, Code: code})
	return string(b), nil
}

// rpcJoinRoom resolves a room code to its match ID. Codes are
// case-insensitive.
func rpcJoinRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req JoinRoomRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid payload", 3) // INVALID_ARGUMENT
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return "", runtime.NewError("room code required", 3)
	}

	query := fmt.Sprintf("+label.game:%s +label.code:%s", LabelGameValue, code)
	limit := 1
	authoritative := true
	matches, err := nk.MatchList(ctx, limit, authoritative, "", nil, nil, query)
	if err != nil {
		logger.Error("rpcJoinRoom [User:%s]: MatchList error: %v", userID, err)
		return "", runtime.NewError("failed to look up room", 13)
	}
	if len(matches) == 0 {
		return "", runtime.NewError("room not found", 5) // NOT_FOUND
	}

	b, _ := json.Marshal(JoinRoomResponse{MatchID: matches[0].MatchId, Code: code})
	return string(b), nil
}
