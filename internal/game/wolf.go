package game

import "time"

// Role is the wolf assignment: either unassigned or held by exactly one
// player. Kept opaque so the only transitions are the ones defined on State.
type Role struct {
	id   string
	held bool
}

func unassigned() Role          { return Role{} }
func assignedTo(id string) Role { return Role{id: id, held: true} }

func (r Role) Holder() (string, bool) { return r.id, r.held }

// WolfID returns the current holder, or "" when the role is unassigned.
func (s *State) WolfID() string {
	id, _ := s.wolf.Holder()
	return id
}

// TagResult describes a successful tag for the broadcast: the new wolf and
// the impact point (center of the tagged player's sprite) with its color.
type TagResult struct {
	NewWolfID        string
	ImpactX, ImpactY float64
	Color            string
}

// AttemptTag transfers the wolf role from byID to targetID. All conditions
// must hold: the caller is the wolf, the target is present and not the
// caller, both coordinate deltas are within tolerance, and the global tag
// cooldown has elapsed. On any failure the state is untouched and the reason
// is returned for logging only; callers must not surface it to clients.
func (s *State) AttemptTag(byID, targetID string, now time.Time) (TagResult, error) {
	holder, held := s.wolf.Holder()
	if !held || holder != byID {
		return TagResult{}, ErrNotWolf
	}
	if byID == targetID {
		return TagResult{}, ErrSelfTag
	}
	target, ok := s.players[targetID]
	if !ok {
		return TagResult{}, ErrNoTarget
	}
	wolf := s.players[byID]

	dx := wolf.X - target.X
	dy := wolf.Y - target.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dx >= s.rules.TagTolerance || dy >= s.rules.TagTolerance {
		return TagResult{}, ErrOutOfRange
	}
	if now.Sub(s.lastTag) < s.rules.TagCooldown {
		return TagResult{}, ErrTagCooldown
	}

	s.wolf = assignedTo(targetID)
	s.lastTag = now
	s.lastWolfMove = now
	return TagResult{
		NewWolfID: targetID,
		ImpactX:   target.X + 25,
		ImpactY:   target.Y + 25,
		Color:     target.Color,
	}, nil
}

// WolfIdle reports whether the wolf has not moved for longer than threshold.
// False when the role is unassigned or fewer than two players remain (no one
// to hand the role to).
func (s *State) WolfIdle(now time.Time, threshold time.Duration) bool {
	if _, held := s.wolf.Holder(); !held {
		return false
	}
	if len(s.players) < 2 {
		return false
	}
	return now.Sub(s.lastWolfMove) > threshold
}
