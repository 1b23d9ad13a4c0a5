package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrNotWolf = errors.New("caller is not the wolf")
var ErrNoTarget = errors.New("target not in game")
var ErrSelfTag = errors.New("cannot tag yourself")
var ErrOutOfRange = errors.New("target out of range")
var ErrTagCooldown = errors.New("tag cooldown active")

// Rand is the random source used for spawn points, colors and replacement
// wolves. Injected so tests can supply fixed values.
type Rand interface {
	Intn(n int) int
}

type Rules struct {
	TagTolerance float64       // axis-aligned, both |dx| and |dy| must be below it
	TagCooldown  time.Duration // global minimum interval between successful tags
}

func DefaultRules() Rules {
	return Rules{
		TagTolerance: 90,
		TagCooldown:  time.Second,
	}
}

type Player struct {
	ID         string
	Name       string
	Registered bool
	X, Y       float64
	Color      string
	// Distance walked since the last flush to the stats store.
	Distance float64
}

// State is the authoritative game state: the player set, the wolf role, the
// shared background and the per-player upload cooldown ledger. It is not
// safe for concurrent use; the room actor is its single writer.
type State struct {
	players      map[string]*Player
	joinOrder    []string
	wolf         Role
	lastWolfMove time.Time
	lastTag      time.Time
	background   string
	cooldowns    map[string]time.Time
	rules        Rules
	rng          Rand
}

func NewState(rules Rules, rng Rand) *State {
	return &State{
		players:   make(map[string]*Player),
		cooldowns: make(map[string]time.Time),
		rules:     rules,
		rng:       rng,
	}
}

// AddPlayer spawns a player at a random position with a random color. If no
// wolf is assigned the new player takes the role. Returns the created player
// and whether it became the wolf.
func (s *State) AddPlayer(id, name string, registered bool, now time.Time) (Player, bool) {
	if p, ok := s.players[id]; ok {
		return *p, false // already in game; joinGame twice is a no-op
	}
	p := &Player{
		ID:         id,
		Name:       name,
		Registered: registered,
		X:          float64(s.rng.Intn(500) + 50),
		Y:          float64(s.rng.Intn(400) + 50),
		Color:      fmt.Sprintf("#%06x", s.rng.Intn(0x1000000)),
	}
	s.players[id] = p
	s.joinOrder = append(s.joinOrder, id)

	becameWolf := false
	if _, ok := s.wolf.Holder(); !ok {
		s.wolf = assignedTo(id)
		s.lastWolfMove = now
		becameWolf = true
	}
	return *p, becameWolf
}

// WolfChange reports a role transition caused by a departure. NewID is empty
// when the role was cleared because nobody was left.
type WolfChange struct {
	Changed bool
	NewID   string
}

// RemovePlayer deletes the player, returning the distance left to flush and
// any wolf reclamation that happened. Safe to call for ids that already
// left. The cooldown ledger entry survives: uploads are a connection-level
// concern and the entry is cleared on disconnect instead.
func (s *State) RemovePlayer(id string, now time.Time) (flushed float64, change WolfChange, ok bool) {
	p, ok := s.players[id]
	if !ok {
		return 0, WolfChange{}, false
	}
	flushed = p.Distance
	delete(s.players, id)
	for i, jid := range s.joinOrder {
		if jid == id {
			s.joinOrder = append(s.joinOrder[:i], s.joinOrder[i+1:]...)
			break
		}
	}

	if holder, held := s.wolf.Holder(); held && holder == id {
		change = s.reclaimWolf(now)
	}
	return flushed, change, true
}

// reclaimWolf hands the role to a uniformly random survivor, or clears it
// when the game is empty.
func (s *State) reclaimWolf(now time.Time) WolfChange {
	if len(s.joinOrder) == 0 {
		s.wolf = unassigned()
		return WolfChange{Changed: true}
	}
	next := s.joinOrder[s.rng.Intn(len(s.joinOrder))]
	s.wolf = assignedTo(next)
	s.lastWolfMove = now
	s.lastTag = now // grace period so the new wolf can't be insta-tagged back
	return WolfChange{Changed: true, NewID: next}
}

// RecordMovement sets the reported position verbatim (no smoothing or
// clamping), accrues walked distance and resets the wolf idle timer when the
// mover holds the role.
func (s *State) RecordMovement(id string, x, y float64, now time.Time) bool {
	p, ok := s.players[id]
	if !ok {
		return false
	}
	p.Distance += math.Hypot(x-p.X, y-p.Y)
	p.X, p.Y = x, y
	if holder, held := s.wolf.Holder(); held && holder == id {
		s.lastWolfMove = now
	}
	return true
}

func (s *State) SetColor(id, color string) bool {
	p, ok := s.players[id]
	if !ok {
		return false
	}
	p.Color = color
	return true
}

func (s *State) Player(id string) (Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Players returns a copy of the roster keyed by id.
func (s *State) Players() map[string]Player {
	out := make(map[string]Player, len(s.players))
	for id, p := range s.players {
		out[id] = *p
	}
	return out
}

func (s *State) NumPlayers() int { return len(s.players) }

func (s *State) Background() string { return s.background }

func (s *State) SetBackground(ref string) { s.background = ref }

// CooldownRemaining reports how long the player must still wait before the
// next upload attempt. Zero means no restriction.
func (s *State) CooldownRemaining(id string, now time.Time) time.Duration {
	until, ok := s.cooldowns[id]
	if !ok || !now.Before(until) {
		return 0
	}
	return until.Sub(now)
}

func (s *State) SetCooldown(id string, d time.Duration, now time.Time) {
	s.cooldowns[id] = now.Add(d)
}

// ClearCooldown drops the ledger entry for a connection that went away, so
// the ledger stays bounded by the number of live connections.
func (s *State) ClearCooldown(id string) {
	delete(s.cooldowns, id)
}
