package game

import (
	"errors"
	"testing"
	"time"
)

// setupTag places a wolf "w" and a runner "r" at the given positions.
func setupTag(t *testing.T, wx, wy, rx, ry float64) *State {
	t.Helper()
	s := newTestState()
	s.AddPlayer("w", "", false, t0)
	s.AddPlayer("r", "", false, t0)
	s.RecordMovement("w", wx, wy, t0)
	s.RecordMovement("r", rx, ry, t0)
	return s
}

func TestAttemptTagRejections(t *testing.T) {
	cases := []struct {
		name    string
		by      string
		target  string
		rx, ry  float64
		wantErr error
	}{
		{name: "caller is not the wolf", by: "r", target: "w", rx: 100, ry: 100, wantErr: ErrNotWolf},
		{name: "self tag", by: "w", target: "w", rx: 100, ry: 100, wantErr: ErrSelfTag},
		{name: "target absent", by: "w", target: "ghost", rx: 100, ry: 100, wantErr: ErrNoTarget},
		{name: "x delta at tolerance", by: "w", target: "r", rx: 190, ry: 100, wantErr: ErrOutOfRange},
		{name: "y delta past tolerance", by: "w", target: "r", rx: 100, ry: 250, wantErr: ErrOutOfRange},
		{name: "close on one axis only", by: "w", target: "r", rx: 105, ry: 400, wantErr: ErrOutOfRange},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := setupTag(t, 100, 100, tc.rx, tc.ry)
			_, err := s.AttemptTag(tc.by, tc.target, t0.Add(time.Minute))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if s.WolfID() != "w" {
				t.Fatalf("failed tag must not move the role, wolf = %q", s.WolfID())
			}
		})
	}
}

func TestAttemptTagSamePositionSucceeds(t *testing.T) {
	s := setupTag(t, 100, 100, 100, 100)

	res, err := s.AttemptTag("w", "r", t0.Add(time.Minute))
	if err != nil {
		t.Fatalf("tag failed: %v", err)
	}
	if res.NewWolfID != "r" || s.WolfID() != "r" {
		t.Fatalf("role did not transfer: res=%+v wolf=%q", res, s.WolfID())
	}
	// Impact is the target's prior position, offset to sprite center.
	if res.ImpactX != 125 || res.ImpactY != 125 {
		t.Fatalf("impact = (%v, %v), want (125, 125)", res.ImpactX, res.ImpactY)
	}
}

func TestAttemptTagWithinToleranceSucceeds(t *testing.T) {
	s := setupTag(t, 100, 100, 189, 11) // dx=89, dy=89, both under 90

	if _, err := s.AttemptTag("w", "r", t0.Add(time.Minute)); err != nil {
		t.Fatalf("tag failed: %v", err)
	}
	if s.WolfID() != "r" {
		t.Fatalf("wolf = %q, want r", s.WolfID())
	}
}

func TestGlobalTagCooldown(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)
	s.AddPlayer("b", "", false, t0)
	s.AddPlayer("c", "", false, t0)
	for _, id := range []string{"a", "b", "c"} {
		s.RecordMovement(id, 100, 100, t0)
	}

	now := t0.Add(time.Minute)
	if _, err := s.AttemptTag("a", "b", now); err != nil {
		t.Fatalf("first tag failed: %v", err)
	}

	// The cooldown is global: the new wolf cannot tag anyone inside the
	// window, no matter the target.
	if _, err := s.AttemptTag("b", "c", now.Add(500*time.Millisecond)); !errors.Is(err, ErrTagCooldown) {
		t.Fatalf("err = %v, want ErrTagCooldown", err)
	}
	if s.WolfID() != "b" {
		t.Fatalf("blocked tag must not move the role, wolf = %q", s.WolfID())
	}

	if _, err := s.AttemptTag("b", "c", now.Add(1100*time.Millisecond)); err != nil {
		t.Fatalf("tag after cooldown failed: %v", err)
	}
	if s.WolfID() != "c" {
		t.Fatalf("wolf = %q, want c", s.WolfID())
	}
}

func TestDepartureReclaimArmsTagCooldown(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)
	s.AddPlayer("b", "", false, t0)
	s.AddPlayer("c", "", false, t0)
	for _, id := range []string{"a", "b", "c"} {
		s.RecordMovement(id, 100, 100, t0)
	}

	now := t0.Add(time.Minute)
	s.RemovePlayer("a", now)

	newWolf := s.WolfID()
	other := "b"
	if newWolf == "b" {
		other = "c"
	}
	if _, err := s.AttemptTag(newWolf, other, now.Add(200*time.Millisecond)); !errors.Is(err, ErrTagCooldown) {
		t.Fatalf("reclaimed wolf should be inside the tag cooldown, err = %v", err)
	}
}

func TestWolfIdle(t *testing.T) {
	s := newTestState()
	threshold := 30 * time.Second

	if s.WolfIdle(t0, threshold) {
		t.Fatalf("empty game cannot have an idle wolf")
	}

	s.AddPlayer("a", "", false, t0)
	if s.WolfIdle(t0.Add(time.Hour), threshold) {
		t.Fatalf("a lone wolf is never swept; nothing to hand the role to")
	}

	s.AddPlayer("b", "", false, t0)
	if s.WolfIdle(t0.Add(10*time.Second), threshold) {
		t.Fatalf("wolf not yet past the threshold")
	}
	if !s.WolfIdle(t0.Add(31*time.Second), threshold) {
		t.Fatalf("wolf past the threshold should be idle")
	}

	// Any wolf movement resets the timer.
	s.RecordMovement("a", 1, 1, t0.Add(31*time.Second))
	if s.WolfIdle(t0.Add(60*time.Second), threshold) {
		t.Fatalf("movement should reset the idle timer")
	}
}
