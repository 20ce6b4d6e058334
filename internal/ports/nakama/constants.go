package nakama

const (
	RpcPracticeMatch = "practice_match"
	MatchNameTennis  = "tennis"
)

// Client to server opcodes.
const (
	OpTap   int64 = 1
	OpReset int64 = 2
)

// Server to client opcodes.
const (
	OpFrame int64 = 100
	OpEvent int64 = 101
	OpError int64 = 102
)

const (
	// NotificationCodeMatchResult tags result notifications for the campaign client.
	NotificationCodeMatchResult = 1001

	gameConfigPath    = "data/game_config.json"
	botIdentitiesPath = "data/bot_identities.json"
	defaultTickRate   = 30
	joinTimeoutSec    = 30
	finishedLingerSec = 10
	maxClientTapLagMs = 250
)
