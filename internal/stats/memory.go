package stats

import "sync"

// Memory is an in-memory Store for tests and for running without a
// database. Names must be registered with Put or CreateUser before writes
// land.
type Memory struct {
	mu     sync.Mutex
	users  map[string]*Record
	hashes map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[string]*Record),
		hashes: make(map[string]string),
	}
}

func (m *Memory) Put(rec Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := rec
	m.users[rec.Name] = &cp
}

func (m *Memory) Increment(name, counter string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.users[name]
	if !ok {
		return nil
	}
	switch counter {
	case "tags_inflicted":
		r.TagsInflicted += int64(amount)
	case "times_tagged":
		r.TimesTagged += int64(amount)
	case "distance_traveled":
		r.DistanceTraveled += amount
	case "backgrounds_changed":
		r.BackgroundsChanged += int64(amount)
	default:
		return ErrUnknownCounter
	}
	return nil
}

func (m *Memory) SetCurrentSkin(name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.users[name]; ok {
		r.CurrentSkin = token
	}
	return nil
}

func (m *Memory) FindByName(name string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.users[name]
	if !ok {
		return Record{}, false, nil
	}
	return *r, true, nil
}

func (m *Memory) CreateUser(name, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[name]; ok {
		return ErrNameTaken
	}
	m.users[name] = &Record{Name: name}
	m.hashes[name] = passwordHash
	return nil
}

func (m *Memory) Credentials(name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hashes[name]
	return h, ok, nil
}

func (m *Memory) Unlock(name, achievementID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.users[name]
	if !ok {
		return nil
	}
	if !r.HasUnlocked(achievementID) {
		r.Unlocked = append(r.Unlocked, achievementID)
	}
	return nil
}
