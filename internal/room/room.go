// Package room runs the authoritative game session. A single goroutine owns
// the game state, the client outboxes and the AFK sweeper; every mutation
// happens on that goroutine, so the state needs no locks. The only work that
// leaves the loop is the content-classification call, which re-enters as a
// verdict message when it resolves.
package room

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"wolftag/internal/achievements"
	"wolftag/internal/game"
	"wolftag/internal/moderation"
	"wolftag/internal/types"
)

// StatsSink receives fire-and-forget persistence writes. Implemented by
// stats.Queue; tests plug in a recorder.
type StatsSink interface {
	Increment(name, counter string, amount float64)
	SetSkin(name, token string)
}

type Config struct {
	NormalCooldown   time.Duration // after any processed upload
	PenaltyCooldown  time.Duration // after a rejected upload
	AFKThreshold     time.Duration // wolf idle time before ejection
	SweepPeriod      time.Duration
	PlaceholderImage string // shown to everyone after a rejected upload
	Now              func() time.Time
}

func DefaultConfig() Config {
	return Config{
		NormalCooldown:   15 * time.Second,
		PenaltyCooldown:  60 * time.Second,
		AFKThreshold:     30 * time.Second,
		SweepPeriod:      time.Second,
		PlaceholderImage: "https://i.redd.it/58qnz74nf5j41.png",
	}
}

type Room struct {
	inbox    chan Msg
	clients  map[string]chan types.ServerMessage
	state    *game.State
	pipeline *moderation.Pipeline
	sink     StatsSink
	table    achievements.Table
	cfg      Config
	log      *zap.Logger
	now      func() time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewRoom(parent context.Context, state *game.State, pipeline *moderation.Pipeline,
	sink StatsSink, table achievements.Table, cfg Config, log *zap.Logger) *Room {
	ctx, cancel := context.WithCancel(parent)
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	r := &Room{
		inbox:    make(chan Msg, 64),
		clients:  make(map[string]chan types.ServerMessage),
		state:    state,
		pipeline: pipeline,
		sink:     sink,
		table:    table,
		cfg:      cfg,
		log:      log,
		now:      now,
		ctx:      ctx,
		cancel:   cancel,
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// NotifyUnlock is the stats queue's achievement callback. Safe to call from
// any goroutine; the notice is delivered on the loop.
func (r *Room) NotifyUnlock(name string, a achievements.Achievement) {
	select {
	case r.inbox <- unlock{name: name, ach: a}:
	case <-r.ctx.Done():
	}
}

func (r *Room) loop() {
	sweep := time.NewTicker(r.cfg.SweepPeriod)
	defer sweep.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-sweep.C:
			r.sweepIdleWolf()

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Connect:
				r.clients[msg.ConnID] = msg.Outbox
				r.sendTo(msg.ConnID, types.ServerMessage{Type: types.EvCurrentPlayers, Payload: r.roster()})
				r.sendTo(msg.ConnID, types.ServerMessage{Type: types.EvUpdateWolf, Payload: types.WolfUpdate{WolfID: r.state.WolfID()}})
				if bg := r.state.Background(); bg != "" {
					r.sendTo(msg.ConnID, types.ServerMessage{Type: types.EvUpdateBackground, Payload: types.BackgroundUpdate{Image: bg}})
				}

			case Disconnect:
				r.removeFromPlay(msg.ConnID)
				r.state.ClearCooldown(msg.ConnID)
				// Close the outbox so the connection's writer goroutine exits.
				if ch, ok := r.clients[msg.ConnID]; ok {
					close(ch)
					delete(r.clients, msg.ConnID)
				}

			case Join:
				r.handleJoin(msg)

			case Leave:
				r.removeFromPlay(msg.ConnID)

			case Move:
				if r.state.RecordMovement(msg.ConnID, msg.X, msg.Y, r.now()) {
					r.broadcastExcept(msg.ConnID, types.ServerMessage{
						Type:    types.EvPlayerMoved,
						Payload: types.PlayerMoved{PlayerID: msg.ConnID, X: msg.X, Y: msg.Y},
					})
				}

			case Tag:
				r.handleTag(msg)

			case ChangeColor:
				r.handleChangeColor(msg.ConnID, msg.Color, true)

			case ChangeBackground:
				r.handleChangeBackground(msg)

			case RedeemCode:
				r.handleRedeemCode(msg)

			case verdict:
				r.handleVerdict(msg)

			case unlock:
				r.handleUnlock(msg)

			case GetView:
				msg.Reply <- View{
					NumClients: len(r.clients),
					WolfID:     r.state.WolfID(),
					Background: r.state.Background(),
					Players:    r.state.Players(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) handleJoin(msg Join) {
	if _, ok := r.state.Player(msg.ConnID); ok {
		return // already in game; a repeated joinGame must not re-announce
	}
	p, becameWolf := r.state.AddPlayer(msg.ConnID, msg.Name, msg.Registered, r.now())
	if msg.Skin != "" {
		r.state.SetColor(msg.ConnID, msg.Skin)
		p.Color = msg.Skin
	}
	if becameWolf {
		r.broadcast(types.ServerMessage{Type: types.EvUpdateWolf, Payload: types.WolfUpdate{WolfID: msg.ConnID}})
	}
	r.sendTo(msg.ConnID, types.ServerMessage{
		Type:    types.EvGameJoined,
		Payload: types.GameJoined{ID: p.ID, Info: playerInfo(p)},
	})
	r.broadcastExcept(msg.ConnID, types.ServerMessage{
		Type:    types.EvNewPlayer,
		Payload: types.NewPlayer{PlayerID: p.ID, PlayerInfo: playerInfo(p)},
	})
	r.log.Info("player joined", zap.String("conn", msg.ConnID), zap.Bool("wolf", becameWolf))
}

func (r *Room) handleTag(msg Tag) {
	tagger, _ := r.state.Player(msg.ConnID)
	target, _ := r.state.Player(msg.TargetID)

	res, err := r.state.AttemptTag(msg.ConnID, msg.TargetID, r.now())
	if err != nil {
		// Disallowed attempts stay invisible to clients.
		r.log.Debug("tag ignored", zap.String("by", msg.ConnID),
			zap.String("target", msg.TargetID), zap.Error(err))
		return
	}
	r.broadcast(types.ServerMessage{Type: types.EvUpdateWolf, Payload: types.WolfUpdate{WolfID: res.NewWolfID}})
	r.broadcast(types.ServerMessage{
		Type:    types.EvPlayerTagged,
		Payload: types.TagImpact{X: res.ImpactX, Y: res.ImpactY, Color: res.Color},
	})
	if tagger.Registered {
		r.sink.Increment(tagger.Name, achievements.CounterTagsInflicted, 1)
	}
	if target.Registered {
		r.sink.Increment(target.Name, achievements.CounterTimesTagged, 1)
	}
	r.log.Info("tag", zap.String("by", msg.ConnID), zap.String("target", msg.TargetID))
}

func (r *Room) handleChangeColor(connID, color string, persist bool) {
	p, ok := r.state.Player(connID)
	if !ok {
		return
	}
	r.state.SetColor(connID, color)
	r.broadcast(types.ServerMessage{
		Type:    types.EvUpdatePlayerColor,
		Payload: types.ColorUpdate{ID: connID, Color: color},
	})
	if persist && p.Registered {
		r.sink.SetSkin(p.Name, color)
	}
}

func (r *Room) handleRedeemCode(msg RedeemCode) {
	sc, ok := r.table.LookupCode(msg.Code)
	if !ok {
		r.sendTo(msg.ConnID, types.ServerMessage{
			Type:    types.EvServerMessage,
			Payload: types.Notice{Text: "Unknown code.", Color: "red"},
		})
		return
	}
	r.handleChangeColor(msg.ConnID, sc.Skin, true)
	r.sendTo(msg.ConnID, types.ServerMessage{
		Type:    types.EvServerMessage,
		Payload: types.Notice{Text: "Skin unlocked: " + sc.Name, Color: "green"},
	})
}

// handleChangeBackground runs the synchronous part of the pipeline: the
// cooldown gate (zero classifier calls for a blocked attempt) and the
// configuration gate. Decode and classification run off-loop and come back
// as a verdict message.
func (r *Room) handleChangeBackground(msg ChangeBackground) {
	now := r.now()
	if remaining := r.state.CooldownRemaining(msg.ConnID, now); remaining > 0 {
		secs := int(math.Ceil(remaining.Seconds()))
		r.sendTo(msg.ConnID, types.ServerMessage{
			Type:    types.EvUploadError,
			Payload: types.Notice{Text: fmt.Sprintf("Wait another %d seconds before sending an image.", secs), Color: "red"},
		})
		return
	}
	if !r.pipeline.Enabled() {
		r.sendTo(msg.ConnID, types.ServerMessage{
			Type:    types.EvUploadError,
			Payload: types.Notice{Text: "Server config error (missing API keys).", Color: "red"},
		})
		return
	}
	r.log.Info("moderation requested", zap.String("conn", msg.ConnID))

	go func() {
		res, err := r.pipeline.Check(r.ctx, msg.Payload)
		select {
		case r.inbox <- verdict{connID: msg.ConnID, payload: msg.Payload, result: res, err: err}:
		case <-r.ctx.Done():
		}
	}()
}

func (r *Room) handleVerdict(msg verdict) {
	if msg.err != nil {
		// Transient: no cooldown, no background change.
		r.log.Warn("moderation failed", zap.String("conn", msg.connID), zap.Error(msg.err))
		r.sendTo(msg.connID, types.ServerMessage{
			Type:    types.EvUploadError,
			Payload: types.Notice{Text: "Technical error. Try again.", Color: "red"},
		})
		return
	}

	now := r.now()
	_, present := r.clients[msg.connID]

	if msg.result.Unsafe {
		r.log.Info("image blocked", zap.String("conn", msg.connID))
		if present {
			r.state.SetCooldown(msg.connID, r.cfg.PenaltyCooldown, now)
		}
		r.state.SetBackground(r.cfg.PlaceholderImage)
		r.broadcast(types.ServerMessage{
			Type:    types.EvUpdateBackground,
			Payload: types.BackgroundUpdate{Image: r.cfg.PlaceholderImage},
		})
		r.broadcast(types.ServerMessage{
			Type: types.EvServerMessage,
			Payload: types.Notice{
				Text:  "A forbidden image was blocked! Its author is punished.",
				Color: "red",
			},
		})
		r.sendTo(msg.connID, types.ServerMessage{
			Type: types.EvUploadError,
			Payload: types.Notice{
				Text:  fmt.Sprintf("Forbidden image! You are blocked for %d seconds.", int(r.cfg.PenaltyCooldown.Seconds())),
				Color: "red",
			},
		})
		return
	}

	r.log.Info("image accepted", zap.String("conn", msg.connID))
	if present {
		r.state.SetCooldown(msg.connID, r.cfg.NormalCooldown, now)
	}
	// Broadcast the original payload, not the sampled frame, so an accepted
	// animation keeps animating for viewers.
	r.state.SetBackground(msg.payload)
	r.broadcast(types.ServerMessage{
		Type:    types.EvUpdateBackground,
		Payload: types.BackgroundUpdate{Image: msg.payload},
	})
	r.sendTo(msg.connID, types.ServerMessage{
		Type:    types.EvServerMessage,
		Payload: types.Notice{Text: "Background changed!", Color: "green"},
	})
	if p, ok := r.state.Player(msg.connID); ok && p.Registered {
		r.sink.Increment(p.Name, achievements.CounterBackgroundsChanged, 1)
	}
}

func (r *Room) handleUnlock(msg unlock) {
	for id, p := range r.state.Players() {
		if p.Registered && p.Name == msg.name {
			r.sendTo(id, types.ServerMessage{
				Type: types.EvAchievementUnlocked,
				Payload: types.AchievementUnlocked{
					ID: msg.ach.ID, Name: msg.ach.Name,
					Skin: msg.ach.RewardSkin, SkinName: msg.ach.SkinName,
				},
			})
			return
		}
	}
}

func (r *Room) sweepIdleWolf() {
	now := r.now()
	if !r.state.WolfIdle(now, r.cfg.AFKThreshold) {
		return
	}
	id := r.state.WolfID()
	r.sendTo(id, types.ServerMessage{Type: types.EvAfkKicked})
	r.removeFromPlay(id)
	r.log.Info("wolf ejected for inactivity", zap.String("conn", id))
}

// removeFromPlay takes a player out of the game (connection stays open),
// flushes accrued distance and reassigns the wolf role if needed. No-op for
// ids that already left.
func (r *Room) removeFromPlay(id string) {
	p, _ := r.state.Player(id)
	flushed, change, ok := r.state.RemovePlayer(id, r.now())
	if !ok {
		return
	}
	r.broadcast(types.ServerMessage{Type: types.EvPlayerDisconnected, Payload: id})
	if p.Registered && flushed > 0 {
		r.sink.Increment(p.Name, achievements.CounterDistanceTraveled, flushed)
	}
	if change.Changed {
		r.broadcast(types.ServerMessage{Type: types.EvUpdateWolf, Payload: types.WolfUpdate{WolfID: change.NewID}})
	}
	r.log.Info("player left", zap.String("conn", id))
}

func (r *Room) roster() map[string]types.PlayerInfo {
	players := r.state.Players()
	out := make(map[string]types.PlayerInfo, len(players))
	for id, p := range players {
		out[id] = playerInfo(p)
	}
	return out
}

func playerInfo(p game.Player) types.PlayerInfo {
	return types.PlayerInfo{X: p.X, Y: p.Y, Color: p.Color, Name: p.Name}
}

func (r *Room) sendTo(id string, m types.ServerMessage) {
	ch, ok := r.clients[id]
	if !ok {
		return // submitter already disconnected; private notices are dropped
	}
	select {
	case ch <- m:
	default:
		close(ch)
		delete(r.clients, id)
	}
}

func (r *Room) broadcast(m types.ServerMessage) {
	for id, ch := range r.clients {
		select {
		case ch <- m:
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) broadcastExcept(origin string, m types.ServerMessage) {
	for id, ch := range r.clients {
		if id == origin {
			continue
		}
		select {
		case ch <- m:
		default:
			close(ch)
			delete(r.clients, id)
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch)
		delete(r.clients, id)
	}
	r.cancel()
}
