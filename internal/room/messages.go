package room

import (
	"wolftag/internal/achievements"
	"wolftag/internal/game"
	"wolftag/internal/moderation"
	"wolftag/internal/types"
)

type Msg interface{ isRoomMsg() }

// Connect registers a connection's outbox and replays the current world:
// roster, wolf assignment and background.
type Connect struct {
	ConnID string
	Outbox chan types.ServerMessage
}

func (Connect) isRoomMsg() {}

type Disconnect struct{ ConnID string }

func (Disconnect) isRoomMsg() {}

// Join puts the connection into the game. Name and Registered come from the
// ws layer, which resolves the account before the message is sent; Skin is
// the persisted skin for registered players, empty for guests.
type Join struct {
	ConnID     string
	Name       string
	Registered bool
	Skin       string
}

func (Join) isRoomMsg() {}

// Leave removes the player from the game without closing the connection.
type Leave struct{ ConnID string }

func (Leave) isRoomMsg() {}

type Move struct {
	ConnID string
	X, Y   float64
}

func (Move) isRoomMsg() {}

type Tag struct {
	ConnID   string
	TargetID string
}

func (Tag) isRoomMsg() {}

type ChangeColor struct {
	ConnID string
	Color  string
}

func (ChangeColor) isRoomMsg() {}

type ChangeBackground struct {
	ConnID  string
	Payload string
}

func (ChangeBackground) isRoomMsg() {}

type RedeemCode struct {
	ConnID string
	Code   string
}

func (RedeemCode) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

// GetView reflects internal state without data races; test-only.
type GetView struct{ Reply chan View }

func (GetView) isRoomMsg() {}

type View struct {
	NumClients int
	WolfID     string
	Background string
	Players    map[string]game.Player
}

// verdict re-enters the loop when a classification resolves. The decision is
// applied against then-current state; the submitter may be gone by now.
type verdict struct {
	connID  string
	payload string
	result  moderation.Verdict
	err     error
}

func (verdict) isRoomMsg() {}

// unlock is posted by the stats queue when an achievement is granted.
type unlock struct {
	name string
	ach  achievements.Achievement
}

func (unlock) isRoomMsg() {}
