// Package stats is the long-term player statistics store. The game only
// ever talks to it through the best-effort Queue; nothing in here may block
// or fail the room loop.
package stats

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wolftag/internal/achievements"
)

var ErrUnknownCounter = errors.New("unknown stats counter")
var ErrNameTaken = errors.New("name already registered")

// Record is a registered player's persistent stats.
type Record struct {
	Name               string
	TagsInflicted      int64
	TimesTagged        int64
	DistanceTraveled   float64
	BackgroundsChanged int64
	CurrentSkin        string
	Unlocked           []string // achievement ids already granted
}

func (r Record) Counters() achievements.Counters {
	return achievements.Counters{
		achievements.CounterTagsInflicted:      float64(r.TagsInflicted),
		achievements.CounterTimesTagged:        float64(r.TimesTagged),
		achievements.CounterDistanceTraveled:   r.DistanceTraveled,
		achievements.CounterBackgroundsChanged: float64(r.BackgroundsChanged),
	}
}

func (r Record) HasUnlocked(achievementID string) bool {
	for _, id := range r.Unlocked {
		if id == achievementID {
			return true
		}
	}
	return false
}

// Store is the interface the game depends on. Idempotency and durability
// are the implementation's problem.
type Store interface {
	Increment(name, counter string, amount float64) error
	SetCurrentSkin(name, token string) error
	FindByName(name string) (Record, bool, error)
	Unlock(name, achievementID string) error
}

// User is the gorm model backing registered players.
type User struct {
	ID                 uint   `gorm:"primaryKey"`
	Name               string `gorm:"uniqueIndex;size:32"`
	PasswordHash       string
	TagsInflicted      int64
	TimesTagged        int64
	DistanceTraveled   float64
	BackgroundsChanged int64
	CurrentSkin        string
	UnlockedSkins      string // comma-separated achievement ids
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// DB is the postgres-backed Store. It also carries the credential lookups
// the auth handlers need.
type DB struct {
	orm *gorm.DB
}

func Open(dsn string) (*DB, error) {
	orm, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	if err := orm.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrate stats db: %w", err)
	}
	return &DB{orm: orm}, nil
}

var counterColumns = map[string]string{
	achievements.CounterTagsInflicted:      "tags_inflicted",
	achievements.CounterTimesTagged:        "times_tagged",
	achievements.CounterDistanceTraveled:   "distance_traveled",
	achievements.CounterBackgroundsChanged: "backgrounds_changed",
}

func (db *DB) Increment(name, counter string, amount float64) error {
	col, ok := counterColumns[counter]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCounter, counter)
	}
	return db.orm.Model(&User{}).
		Where("name = ?", name).
		UpdateColumn(col, gorm.Expr(col+" + ?", amount)).Error
}

func (db *DB) SetCurrentSkin(name, token string) error {
	return db.orm.Model(&User{}).
		Where("name = ?", name).
		UpdateColumn("current_skin", token).Error
}

func (db *DB) FindByName(name string) (Record, bool, error) {
	var u User
	err := db.orm.Where("name = ?", name).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	return u.record(), true, nil
}

func (db *DB) Unlock(name, achievementID string) error {
	var u User
	err := db.orm.Where("name = ?", name).First(&u).Error
	if err != nil {
		return err
	}
	rec := u.record()
	if rec.HasUnlocked(achievementID) {
		return nil
	}
	rec.Unlocked = append(rec.Unlocked, achievementID)
	return db.orm.Model(&User{}).
		Where("name = ?", name).
		UpdateColumn("unlocked_skins", strings.Join(rec.Unlocked, ",")).Error
}

func (u User) record() Record {
	var unlocked []string
	if u.UnlockedSkins != "" {
		unlocked = strings.Split(u.UnlockedSkins, ",")
	}
	return Record{
		Name:               u.Name,
		TagsInflicted:      u.TagsInflicted,
		TimesTagged:        u.TimesTagged,
		DistanceTraveled:   u.DistanceTraveled,
		BackgroundsChanged: u.BackgroundsChanged,
		CurrentSkin:        u.CurrentSkin,
		Unlocked:           unlocked,
	}
}

// CreateUser registers a new account. Used by the auth handlers only.
func (db *DB) CreateUser(name, passwordHash string) error {
	var count int64
	if err := db.orm.Model(&User{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrNameTaken
	}
	return db.orm.Create(&User{Name: name, PasswordHash: passwordHash}).Error
}

// Credentials returns the stored password hash for a name.
func (db *DB) Credentials(name string) (string, bool, error) {
	var u User
	err := db.orm.Where("name = ?", name).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return u.PasswordHash, true, nil
}
