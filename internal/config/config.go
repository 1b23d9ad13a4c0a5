// Package config reads the server configuration from the environment.
// main loads .env first via godotenv, so a local file and real env vars
// both work.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	DatabaseURL string // empty disables accounts and stats persistence

	// Classifier credentials; both empty disables moderation, which makes
	// every upload fail with a configuration error (never unchecked).
	SightengineUser   string
	SightengineSecret string

	NormalCooldown  time.Duration
	PenaltyCooldown time.Duration
	TagTolerance    float64
	TagCooldown     time.Duration
	AFKThreshold    time.Duration
	SweepPeriod     time.Duration

	MaxUploadBytes   int64
	PlaceholderImage string
	AchievementsFile string
}

func Load() Config {
	return Config{
		Port:              envInt("PORT", 2220),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SightengineUser:   os.Getenv("SIGHTENGINE_USER"),
		SightengineSecret: os.Getenv("SIGHTENGINE_SECRET"),
		NormalCooldown:    envDuration("UPLOAD_COOLDOWN", 15*time.Second),
		PenaltyCooldown:   envDuration("UPLOAD_PENALTY_COOLDOWN", 60*time.Second),
		TagTolerance:      envFloat("TAG_TOLERANCE", 90),
		TagCooldown:       envDuration("TAG_COOLDOWN", time.Second),
		AFKThreshold:      envDuration("AFK_THRESHOLD", 30*time.Second),
		SweepPeriod:       envDuration("AFK_SWEEP_PERIOD", time.Second),
		MaxUploadBytes:    envInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		PlaceholderImage:  envString("BLOCKED_IMAGE", "https://i.redd.it/58qnz74nf5j41.png"),
		AchievementsFile:  os.Getenv("ACHIEVEMENTS_FILE"),
	}
}

// ModerationEnabled reports whether classifier credentials are present.
func (c Config) ModerationEnabled() bool {
	return c.SightengineUser != "" && c.SightengineSecret != ""
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
