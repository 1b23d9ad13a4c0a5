package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wolftag/internal/room"
	"wolftag/internal/stats"
	"wolftag/internal/types"
)

// AccountResolver maps a display name to its registered record, if any.
// Resolved once per join, outside the room loop, so the loop never touches
// the database.
type AccountResolver interface {
	FindByName(name string) (stats.Record, bool, error)
}

func Handler(rm *room.Room, accounts AccountResolver, readLimit int64, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit) // image uploads ride the socket

		connID := uuid.NewString()
		out := make(chan types.ServerMessage, 32)

		rm.Inbox() <- room.Connect{ConnID: connID, Outbox: out}
		defer func() { rm.Inbox() <- room.Disconnect{ConnID: connID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for m := range out {
				payload, _ := json.Marshal(m)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Otherwise, just exit (room.Disconnect in defer):
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"serverMessage","payload":{"text":"bad json","color":"red"}}`))
				continue
			}

			msg, ok := toRoomMsg(connID, cm, accounts, log)
			if !ok {
				log.Debug("unknown client message", zap.String("type", cm.Type))
				continue
			}
			rm.Inbox() <- msg
		}
	}
}

func toRoomMsg(connID string, cm types.ClientMessage, accounts AccountResolver, log *zap.Logger) (room.Msg, bool) {
	switch cm.Type {
	case types.EvJoinGame:
		return joinMsg(connID, cm.Name, accounts, log), true
	case types.EvLeaveGame:
		return room.Leave{ConnID: connID}, true
	case types.EvPlayerMovement:
		return room.Move{ConnID: connID, X: cm.X, Y: cm.Y}, true
	case types.EvTagPlayer:
		return room.Tag{ConnID: connID, TargetID: cm.TargetID}, true
	case types.EvChangeColor:
		return room.ChangeColor{ConnID: connID, Color: cm.Color}, true
	case types.EvChangeBackground:
		return room.ChangeBackground{ConnID: connID, Payload: cm.Image}, true
	case types.EvRedeemCode:
		return room.RedeemCode{ConnID: connID, Code: cm.Code}, true
	default:
		return nil, false
	}
}

// joinMsg resolves the account up front: registered players keep their
// persisted skin and their stats keep accruing; everyone else joins as a
// guest.
func joinMsg(connID, name string, accounts AccountResolver, log *zap.Logger) room.Join {
	msg := room.Join{ConnID: connID, Name: name}
	if accounts == nil || name == "" {
		return msg
	}
	rec, found, err := accounts.FindByName(name)
	if err != nil {
		log.Warn("account lookup failed", zap.String("name", name), zap.Error(err))
		return msg
	}
	if found {
		msg.Registered = true
		msg.Skin = rec.CurrentSkin
	}
	return msg
}
