package nakama

const (
	// RpcCreateRoom creates a private room and returns its match ID and code.
	RpcCreateRoom = "create_room"
	// RpcJoinRoom resolves a room code to a joinable match ID.
	RpcJoinRoom = "join_room"
	// RpcQuickMatch finds or creates a lobby-capable public match.
	RpcQuickMatch = "quick_match"
	// RpcVoiceToken mints a voice-chat access token for the calling user.
	RpcVoiceToken = "voice_token"

	// MatchNameStartups is the authoritative match handler name registered with Nakama.
	MatchNameStartups = "startups_match"

	// LabelGameValue identifies matches of this module in label queries.
	LabelGameValue = "startups"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame       int64 = 1
	OpTakeFromDeck    int64 = 2
	OpTakeFromMarket  int64 = 3
	OpPlayToPortfolio int64 = 4
	OpPlayToMarket    int64 = 5

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpGameStarted  int64 = 103
	OpHandDealt    int64 = 104 // send privately
	OpRoomUpdated  int64 = 105
	OpGameEnded    int64 = 106
	OpGameError    int64 = 107 // send privately
)
