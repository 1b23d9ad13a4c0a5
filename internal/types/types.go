// Package types defines the websocket wire protocol.
//
// Client -> Server
//   joinGame:         { name? }
//   leaveGame:        {}
//   playerMovement:   { x, y }
//   tagPlayer:        { target_id }
//   changeColor:      { color }
//   changeBackground: { image }   // data-URI base64 payload
//   redeemCode:       { code }
//
// Server -> Client
//   currentPlayers, gameJoined, newPlayer, playerMoved, updateWolf,
//   playerTagged, updateBackground, updatePlayerColor, playerDisconnected,
//   serverMessage, uploadError, afkKicked, achievementUnlocked
package types

type ClientMessage struct {
	Type     string  `json:"type"`
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	TargetID string  `json:"target_id,omitempty"`
	Color    string  `json:"color,omitempty"`
	Image    string  `json:"image,omitempty"`
	Code     string  `json:"code,omitempty"`
}

// Inbound event names.
const (
	EvJoinGame         = "joinGame"
	EvLeaveGame        = "leaveGame"
	EvPlayerMovement   = "playerMovement"
	EvTagPlayer        = "tagPlayer"
	EvChangeColor      = "changeColor"
	EvChangeBackground = "changeBackground"
	EvRedeemCode       = "redeemCode"
)

type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Outbound event names.
const (
	EvCurrentPlayers      = "currentPlayers"
	EvGameJoined          = "gameJoined"
	EvNewPlayer           = "newPlayer"
	EvPlayerMoved         = "playerMoved"
	EvUpdateWolf          = "updateWolf"
	EvPlayerTagged        = "playerTagged"
	EvUpdateBackground    = "updateBackground"
	EvUpdatePlayerColor   = "updatePlayerColor"
	EvPlayerDisconnected  = "playerDisconnected"
	EvServerMessage       = "serverMessage"
	EvUploadError         = "uploadError"
	EvAfkKicked           = "afkKicked"
	EvAchievementUnlocked = "achievementUnlocked"
)

type PlayerInfo struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
	Name  string  `json:"name,omitempty"`
}

type GameJoined struct {
	ID   string     `json:"id"`
	Info PlayerInfo `json:"info"`
}

type NewPlayer struct {
	PlayerID   string     `json:"playerId"`
	PlayerInfo PlayerInfo `json:"playerInfo"`
}

type PlayerMoved struct {
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type WolfUpdate struct {
	WolfID string `json:"wolfId"` // empty means no wolf
}

type TagImpact struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
}

type BackgroundUpdate struct {
	Image string `json:"image"`
}

type ColorUpdate struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// Notice is a server-wide or private text message with a severity color.
type Notice struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

type AchievementUnlocked struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Skin     string `json:"skin"`
	SkinName string `json:"skinName"`
}
