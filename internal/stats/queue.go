package stats

import (
	"sync"

	"go.uber.org/zap"

	"wolftag/internal/achievements"
)

type opKind int

const (
	opIncrement opKind = iota
	opSetSkin
)

type op struct {
	kind    opKind
	name    string
	counter string
	amount  float64
	token   string
}

// Queue applies stats writes in the background, fire-and-forget. Writes for
// guests (empty name) are dropped at the door, a full queue drops the op
// rather than stall the caller, and store failures are logged and forgotten.
// After each increment it re-reads the record and grants newly crossed
// achievements through the unlock callback.
type Queue struct {
	store Store
	table achievements.Table
	log   *zap.Logger
	ops   chan op
	done  chan struct{}

	mu       sync.Mutex
	closing  bool
	onUnlock func(name string, a achievements.Achievement)
}

func NewQueue(store Store, table achievements.Table, log *zap.Logger) *Queue {
	q := &Queue{
		store: store,
		table: table,
		log:   log,
		ops:   make(chan op, 256),
		done:  make(chan struct{}),
	}
	go q.loop()
	return q
}

// OnUnlock sets the callback invoked when an achievement is granted. Set
// once during wiring; the queue and the room are constructed in either
// order.
func (q *Queue) OnUnlock(fn func(name string, a achievements.Achievement)) {
	q.mu.Lock()
	q.onUnlock = fn
	q.mu.Unlock()
}

func (q *Queue) unlockCallback() func(name string, a achievements.Achievement) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.onUnlock
}

func (q *Queue) Increment(name, counter string, amount float64) {
	if name == "" {
		return
	}
	q.enqueue(op{kind: opIncrement, name: name, counter: counter, amount: amount})
}

func (q *Queue) SetSkin(name, token string) {
	if name == "" {
		return
	}
	q.enqueue(op{kind: opSetSkin, name: name, token: token})
}

func (q *Queue) enqueue(o op) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closing {
		return
	}
	select {
	case q.ops <- o:
	default:
		q.log.Warn("stats queue full, dropping write", zap.String("name", o.name))
	}
}

// Close stops the consumer after draining what is already queued. Writes
// arriving after Close are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closing {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closing = true
	q.mu.Unlock()
	close(q.ops)
	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)
	for o := range q.ops {
		switch o.kind {
		case opIncrement:
			if err := q.store.Increment(o.name, o.counter, o.amount); err != nil {
				q.log.Warn("stats increment failed",
					zap.String("name", o.name), zap.String("counter", o.counter), zap.Error(err))
				continue
			}
			q.grantAchievements(o.name)
		case opSetSkin:
			if err := q.store.SetCurrentSkin(o.name, o.token); err != nil {
				q.log.Warn("skin persist failed", zap.String("name", o.name), zap.Error(err))
			}
		}
	}
}

func (q *Queue) grantAchievements(name string) {
	rec, found, err := q.store.FindByName(name)
	if err != nil || !found {
		return
	}
	for _, a := range q.table.Unlocked(rec.Counters()) {
		if rec.HasUnlocked(a.ID) {
			continue
		}
		if err := q.store.Unlock(name, a.ID); err != nil {
			q.log.Warn("achievement unlock failed",
				zap.String("name", name), zap.String("achievement", a.ID), zap.Error(err))
			continue
		}
		q.log.Info("achievement unlocked",
			zap.String("name", name), zap.String("achievement", a.ID))
		if fn := q.unlockCallback(); fn != nil {
			fn(name, a)
		}
	}
}
