package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"startups/internal/app"
	"startups/internal/bot"
	"startups/internal/config"
	"startups/internal/domain"
	"startups/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// botFillTarget is how many total seats the lobby auto-fill aims for when a
// single human is waiting.
const botFillTarget = 4

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Room      *domain.Room                // authoritative room and game state
	Presences map[string]runtime.Presence // UserId -> Presence for targeted messaging
	App       *app.Service                // game use-cases
	Tick      int64

	BotsEnabled          bool
	BotMinDelay          int // min seconds a bot waits before acting
	BotMaxDelay          int // max seconds a bot waits before acting
	BotAutoFillDelay     int // seconds to wait before auto-filling a solo lobby
	BotWaitUntil         int64
	LastSinglePlayerTick int64
	Bots                 map[string]*bot.Agent

	Economy ports.EconomyPort
}

func (ms *MatchState) HumanPlayerCount() int {
	count := 0
	for _, p := range ms.Room.Players {
		if !isBotUserId(p.ID) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// firstHumanID returns the earliest seated human player id, or "".
func firstHumanID(room *domain.Room) string {
	for _, p := range room.Players {
		if !isBotUserId(p.ID) {
			return p.ID
		}
	}
	return ""
}

var roomCodeAlphabet = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")

// generateRoomCode returns a short shareable room code.
func generateRoomCode() string {
	code := make([]rune, 4)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	code, _ := params["code"].(string)
	if code == "" {
		code = generateRoomCode()
	}

	rewards := app.RewardPlan{
		ScoreMultiplier: config.GetScoreChipMultiplier(),
		WinnerBonus:     config.GetWinnerBonusChips(),
	}

	state := &MatchState{
		Room:             domain.NewRoom(code, ""),
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil, rewards),
		Tick:             time.Now().Unix(),
		Bots:             make(map[string]*bot.Agent),
		BotAutoFillDelay: config.GetBotAutoFillDelaySeconds(),
		Economy:          NewNakamaEconomyAdapter(nk),
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["startups_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["startups_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["startups_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["startups_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}

	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}

	labelBytes, err := json.Marshal(labelFor(state.Room))
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// GameStarted stays true after the game ends; a finished room never
	// reseats, so late joiners are turned away in both cases.
	if matchState.Room.GameStarted {
		if matchState.Room.GameEnded {
			return state, false, "game already finished"
		}
		return state, false, "game in progress"
	}

	// A full lobby still admits a human when a bot seat can be reclaimed.
	if matchState.Room.IsFull() {
		hasBot := false
		for _, p := range matchState.Room.Players {
			if isBotUserId(p.ID) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "room full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		if matchState.Room.IsFull() {
			mh.reclaimBotSeat(ctx, matchState, dispatcher, logger)
		}

		events, err := matchState.App.AddPlayer(matchState.Room, p.GetUserId(), p.GetUsername())
		if err != nil {
			logger.Warn("MatchJoin: Could not seat user %s: %v", p.GetUserId(), err)
			continue
		}
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	}

	// Ownership always rests with a human player.
	if matchState.Room.OwnerID == "" || isBotUserId(matchState.Room.OwnerID) {
		if id := firstHumanID(matchState.Room); id != "" {
			matchState.Room.OwnerID = id
			logger.Debug("MatchJoin: Owner set to %s.", id)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// reclaimBotSeat removes one bot from a full lobby to make room for a human.
func (mh *matchHandler) reclaimBotSeat(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Room.GameStarted {
		return
	}
	for _, p := range state.Room.Players {
		if !isBotUserId(p.ID) {
			continue
		}
		logger.Info("MatchJoin: Reclaiming bot seat %s for a human.", p.ID)
		delete(state.Bots, p.ID)
		events, err := state.App.RemovePlayer(state.Room, p.ID)
		if err != nil {
			logger.Error("MatchJoin: Failed to remove bot %s: %v", p.ID, err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		return
	}
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		events, err := matchState.App.RemovePlayer(matchState.Room, p.GetUserId())
		if err != nil {
			if !errors.Is(err, domain.ErrUnknownPlayer) {
				logger.Error("MatchLeave: Failed to remove %s: %v", p.GetUserId(), err)
			}
			continue
		}
		logger.Debug("MatchLeave: User %s left the room.", p.GetUserId())
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	}

	if firstHumanID(matchState.Room) == "" {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpTakeFromDeck:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, app.ActionTakeFromDeck)
		case OpTakeFromMarket:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, app.ActionTakeFromMarket)
		case OpPlayToPortfolio:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, app.ActionPlayToPortfolio)
		case OpPlayToMarket:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, app.ActionPlayToMarket)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	logger.Info("StartGame: Request received from %s (owner=%s, players=%d)", senderID, state.Room.OwnerID, len(state.Room.Players))

	events, err := state.App.StartGame(state.Room, senderID)
	if err != nil {
		logger.Warn("StartGame: User %s could not start the game: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	logger.Info("StartGame: Game %s started with %d players.", state.Room.GameID, len(state.Room.Players))
}

func (mh *matchHandler) handleIntent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, action string) {
	senderID := msg.GetUserId()

	intent := app.Intent{}
	if data := msg.GetData(); len(data) > 0 {
		if err := json.Unmarshal(data, &intent); err != nil {
			logger.Warn("handleIntent: Invalid payload from %s: %v", senderID, err)
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid payload")
			return
		}
	}
	intent.Action = action

	events, err := state.App.ApplyIntent(state.Room, senderID, intent)
	if err != nil {
		logger.Warn("handleIntent: User %s action %s rejected: %v", senderID, action, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	if state.Room.GameEnded {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby when a single human has been waiting.
	if !state.Room.GameStarted {
		if state.HumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				mh.autoFillBots(ctx, state, dispatcher, logger)
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Handle bot turns in-game.
	if state.Room.GameEnded {
		return
	}
	current := state.Room.CurrentPlayer()
	if current == nil || !isBotUserId(current.ID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", current.ID, state.BotWaitUntil, state.Tick)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent, exists := state.Bots[current.ID]
	if !exists {
		var err error
		agent, err = mh.newBotAgent(current.ID, current.Name)
		if err != nil {
			logger.Error("processBots: Failed to create fallback agent: %v", err)
			return
		}
		state.Bots[current.ID] = agent
	}

	move, err := agent.Play(state.Room)
	if err != nil {
		logger.Error("processBots: Bot %s failed to calculate move: %v", current.ID, err)
		return
	}

	intent := moveToIntent(state.Room, move)
	events, err := state.App.ApplyIntent(state.Room, current.ID, intent)
	if err != nil {
		logger.Error("processBots: Bot %s move %+v rejected: %v", current.ID, move, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	if state.Room.GameEnded {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) autoFillBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	added := false
	for i := 0; i < 2*botFillTarget && len(state.Room.Players) < botFillTarget; i++ {
		identity := bot.GetBotIdentity(i)
		if state.Room.PlayerByID(identity.UserID) != nil {
			continue
		}

		agent, err := mh.newBotAgent(identity.UserID, identity.DisplayName)
		if err != nil {
			logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
			return
		}

		events, err := state.App.AddPlayer(state.Room, identity.UserID, identity.DisplayName)
		if err != nil {
			logger.Error("processBots: Failed to seat bot %s: %v", identity.UserID, err)
			return
		}
		state.Bots[identity.UserID] = agent
		logger.Info("processBots: Added bot %s (%s).", identity.DisplayName, identity.UserID)
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		added = true
	}
	if added {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) newBotAgent(userID, name string) (*bot.Agent, error) {
	level := bot.BotLevel(config.GetBotLevel())
	if identity, ok := bot.GetBotConfig(userID); ok && identity.Level != "" {
		level = bot.BotLevel(identity.Level)
	}
	brain, err := bot.NewBrain(level, nil)
	if err != nil {
		return nil, err
	}
	return &bot.Agent{ID: userID, Name: name, Strategy: brain}, nil
}

// moveToIntent maps a bot decision onto the wire intent for the current phase.
func moveToIntent(room *domain.Room, move bot.Move) app.Intent {
	if room.TurnPhase == domain.PhaseDraw {
		if move.FromMarket {
			return app.Intent{Action: app.ActionTakeFromMarket, MarketIndex: move.MarketIndex}
		}
		return app.Intent{Action: app.ActionTakeFromDeck}
	}
	if move.ToMarket {
		return app.Intent{Action: app.ActionPlayToMarket, HandIndex: move.HandIndex}
	}
	return app.Intent{Action: app.ActionPlayToPortfolio, HandIndex: move.HandIndex}
}

// dispatchEvents converts app events into opcode broadcasts. Events with
// recipients go only to those presences; hand deals for bots are dropped.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		var opCode int64
		var payload interface{}

		switch ev.Kind {
		case app.EventPlayerJoined:
			opCode = OpPlayerJoined
			payload = ev.Payload
		case app.EventPlayerLeft:
			opCode = OpPlayerLeft
			payload = ev.Payload
		case app.EventGameStarted:
			opCode = OpGameStarted
			payload = ev.Payload
		case app.EventHandDealt:
			opCode = OpHandDealt
			payload = ev.Payload
		case app.EventRoomUpdated:
			opCode = OpRoomUpdated
			payload = roomSnapshot(state.Room)
		case app.EventGameEnded:
			opCode = OpGameEnded
			p := ev.Payload.(app.GameEndedPayload)
			mh.settleGame(ctx, state, logger, p)
			payload = p
		default:
			logger.Warn("dispatchEvents: Unknown event kind: %v", ev.Kind)
			continue
		}

		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error("dispatchEvents: Failed to marshal %v event: %v", ev.Kind, err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			// Intended recipients without a presence are bots; never widen a
			// targeted message to everyone.
			if len(recipients) == 0 {
				continue
			}
		}

		dispatcher.BroadcastMessage(opCode, data, recipients, nil, true)
	}
}

// settleGame applies the endgame chip grants to human wallets.
func (mh *matchHandler) settleGame(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameEndedPayload) {
	if state.Economy == nil {
		return
	}
	updates := make([]ports.WalletUpdate, 0, len(p.BalanceChanges))
	for userID, amount := range p.BalanceChanges {
		if isBotUserId(userID) {
			continue
		}
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"game_id":  p.GameID,
				"reason":   "game_settlement",
			},
		})
	}
	if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
		logger.Error("settleGame: Failed to update balances: %v", err)
	}
}

// sendError sends a private error payload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("sendError: Failed to marshal error payload: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("sendError: Cannot send error to %s: presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func labelFor(room *domain.Room) MatchLabel {
	phase := "lobby"
	if room.GameStarted {
		phase = "playing"
	}
	if room.GameEnded {
		phase = "finished"
	}
	return MatchLabel{
		Game:    LabelGameValue,
		Open:    !room.GameStarted && !room.IsFull(),
		Phase:   phase,
		Code:    room.Code,
		Players: len(room.Players),
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(labelFor(state.Room))
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
