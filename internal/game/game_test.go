package game

import (
	"testing"
	"time"
)

// fixedRand returns scripted values so spawns and reclaims are
// deterministic.
type fixedRand struct {
	vals []int
	i    int
}

func (f *fixedRand) Intn(n int) int {
	if len(f.vals) == 0 {
		return 0
	}
	v := f.vals[f.i%len(f.vals)] % n
	f.i++
	return v
}

func newTestState() *State {
	return NewState(DefaultRules(), &fixedRand{})
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestFirstJoinBecomesWolf(t *testing.T) {
	s := newTestState()

	_, wolf := s.AddPlayer("a", "", false, t0)
	if !wolf {
		t.Fatalf("first player should become wolf")
	}
	if s.WolfID() != "a" {
		t.Fatalf("wolf = %q, want a", s.WolfID())
	}

	_, wolf = s.AddPlayer("b", "", false, t0)
	if wolf {
		t.Fatalf("second player must not take the role")
	}
	if s.WolfID() != "a" {
		t.Fatalf("wolf changed on second join: %q", s.WolfID())
	}
}

func TestJoinTwiceIsNoop(t *testing.T) {
	s := newTestState()
	p1, _ := s.AddPlayer("a", "", false, t0)
	s.RecordMovement("a", 300, 300, t0)
	p2, wolf := s.AddPlayer("a", "", false, t0)
	if wolf {
		t.Fatalf("re-join must not reassign the role")
	}
	if p2.X != 300 || p2.Y != 300 {
		t.Fatalf("re-join respawned the player: %+v vs %+v", p2, p1)
	}
	if s.NumPlayers() != 1 {
		t.Fatalf("NumPlayers = %d, want 1", s.NumPlayers())
	}
}

func TestMoveRoundTrip(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)

	// No smoothing or clamping: position reads back exactly.
	if !s.RecordMovement("a", 123.25, -7.5, t0) {
		t.Fatalf("move rejected for present player")
	}
	p, _ := s.Player("a")
	if p.X != 123.25 || p.Y != -7.5 {
		t.Fatalf("position = (%v, %v), want (123.25, -7.5)", p.X, p.Y)
	}
}

func TestMoveUnknownPlayerIgnored(t *testing.T) {
	s := newTestState()
	if s.RecordMovement("ghost", 1, 1, t0) {
		t.Fatalf("movement for absent player must be ignored")
	}
}

func TestDistanceAccrual(t *testing.T) {
	s := NewState(DefaultRules(), &fixedRand{vals: []int{0, 0}}) // spawn at (50, 50)
	s.AddPlayer("a", "", false, t0)

	s.RecordMovement("a", 50, 150, t0) // +100
	s.RecordMovement("a", 50, 50, t0)  // +100 back; monotonic, not displacement
	p, _ := s.Player("a")
	if p.Distance != 200 {
		t.Fatalf("distance = %v, want 200", p.Distance)
	}

	flushed, _, ok := s.RemovePlayer("a", t0)
	if !ok || flushed != 200 {
		t.Fatalf("flushed = %v (ok=%v), want 200", flushed, ok)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)
	s.AddPlayer("b", "", false, t0)

	if _, _, ok := s.RemovePlayer("b", t0); !ok {
		t.Fatalf("first removal should report ok")
	}
	flushed, change, ok := s.RemovePlayer("b", t0)
	if ok || flushed != 0 || change.Changed {
		t.Fatalf("second removal must be a no-op, got flushed=%v change=%+v ok=%v", flushed, change, ok)
	}
	if s.WolfID() != "a" {
		t.Fatalf("wolf lost on repeated removal: %q", s.WolfID())
	}
}

func TestWolfReclaimOnDeparture(t *testing.T) {
	s := NewState(DefaultRules(), &fixedRand{vals: []int{0, 0, 0, 0, 1}})
	s.AddPlayer("a", "", false, t0) // wolf
	s.AddPlayer("b", "", false, t0)
	s.AddPlayer("c", "", false, t0)

	_, change, _ := s.RemovePlayer("a", t0)
	if !change.Changed || change.NewID == "" {
		t.Fatalf("expected reclamation to a survivor, got %+v", change)
	}
	if got := s.WolfID(); got != "b" && got != "c" {
		t.Fatalf("wolf = %q, want a survivor", got)
	}
}

func TestSoleWolfDepartureClearsRole(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)

	_, change, _ := s.RemovePlayer("a", t0)
	if !change.Changed || change.NewID != "" {
		t.Fatalf("expected role cleared, got %+v", change)
	}
	if s.WolfID() != "" {
		t.Fatalf("wolf should be unset, got %q", s.WolfID())
	}

	// A later join takes the role again.
	_, wolf := s.AddPlayer("z", "", false, t0)
	if !wolf || s.WolfID() != "z" {
		t.Fatalf("later join should become wolf, got wolf=%v id=%q", wolf, s.WolfID())
	}
}

func TestNonWolfDepartureKeepsRole(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)
	s.AddPlayer("b", "", false, t0)

	_, change, _ := s.RemovePlayer("b", t0)
	if change.Changed {
		t.Fatalf("role must not move when a non-wolf departs: %+v", change)
	}
	if s.WolfID() != "a" {
		t.Fatalf("wolf = %q, want a", s.WolfID())
	}
}

func TestCooldownLedger(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)

	if got := s.CooldownRemaining("a", t0); got != 0 {
		t.Fatalf("no entry should mean no restriction, got %v", got)
	}

	s.SetCooldown("a", 60*time.Second, t0)
	if got := s.CooldownRemaining("a", t0.Add(15*time.Second)); got != 45*time.Second {
		t.Fatalf("remaining = %v, want 45s", got)
	}
	if got := s.CooldownRemaining("a", t0.Add(61*time.Second)); got != 0 {
		t.Fatalf("expired entry should mean no restriction, got %v", got)
	}

	s.ClearCooldown("a")
	if got := s.CooldownRemaining("a", t0.Add(time.Second)); got != 0 {
		t.Fatalf("cleared entry should mean no restriction, got %v", got)
	}
}

func TestCooldownSurvivesLeave(t *testing.T) {
	s := newTestState()
	s.AddPlayer("a", "", false, t0)
	s.SetCooldown("a", 60*time.Second, t0)
	s.RemovePlayer("a", t0)

	// Uploads are connection-scoped; leaving the game does not lift a
	// penalty.
	if got := s.CooldownRemaining("a", t0.Add(time.Second)); got != 59*time.Second {
		t.Fatalf("remaining = %v, want 59s", got)
	}
}
