// Package achievements holds the unlockable-skin table: counter-threshold
// achievements plus secret codes that grant a skin directly.
package achievements

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Achievement struct {
	ID         string  `yaml:"id"`
	Name       string  `yaml:"name"`
	Desc       string  `yaml:"desc"`
	Counter    string  `yaml:"counter"` // stats counter the condition reads
	Threshold  float64 `yaml:"threshold"`
	RewardSkin string  `yaml:"reward_skin"`
	SkinName   string  `yaml:"skin_name"`
}

type SecretCode struct {
	Skin string `yaml:"skin"`
	Name string `yaml:"name"`
}

type Table struct {
	Achievements []Achievement         `yaml:"achievements"`
	SecretCodes  map[string]SecretCode `yaml:"secret_codes"`
}

// Counters is the view of a player record the conditions are evaluated
// against, keyed by counter name.
type Counters map[string]float64

// Counter names understood by the default table.
const (
	CounterTagsInflicted      = "tags_inflicted"
	CounterTimesTagged        = "times_tagged"
	CounterDistanceTraveled   = "distance_traveled"
	CounterBackgroundsChanged = "backgrounds_changed"
)

// Load reads a table from a YAML file, or returns the built-in defaults when
// path is empty.
func Load(path string) (Table, error) {
	if path == "" {
		return Defaults(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read achievements table: %w", err)
	}
	var t Table
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Table{}, fmt.Errorf("parse achievements table: %w", err)
	}
	return t, nil
}

// Unlocked returns the achievements whose condition holds for the given
// counters, in table order.
func (t Table) Unlocked(c Counters) []Achievement {
	var out []Achievement
	for _, a := range t.Achievements {
		if a.Threshold <= 0 {
			continue // unobtainable by counters (e.g. god_mode)
		}
		if c[a.Counter] >= a.Threshold {
			out = append(out, a)
		}
	}
	return out
}

func (t Table) LookupCode(code string) (SecretCode, bool) {
	sc, ok := t.SecretCodes[code]
	return sc, ok
}

// Defaults mirrors the shipped game configuration.
func Defaults() Table {
	return Table{
		Achievements: []Achievement{
			{ID: "first_blood", Name: "First Blood", Desc: "Land 1 tag",
				Counter: CounterTagsInflicted, Threshold: 1,
				RewardSkin: "#ff0000", SkinName: "Blood Red"},
			{ID: "hunter_pro", Name: "Pro Hunter", Desc: "Land 10 tags",
				Counter: CounterTagsInflicted, Threshold: 10,
				RewardSkin: "linear-gradient(45deg, #ff9a9e 0%, #fecfef 99%, #fecfef 100%)", SkinName: "Dawn"},
			{ID: "traveler", Name: "Traveler", Desc: "Walk 5,000px",
				Counter: CounterDistanceTraveled, Threshold: 5000,
				RewardSkin: "#00ccff", SkinName: "Azure"},
			{ID: "marathon", Name: "Marathoner", Desc: "Walk 20,000px",
				Counter: CounterDistanceTraveled, Threshold: 20000,
				RewardSkin: "linear-gradient(to right, #f12711, #f5af19)", SkinName: "Fire"},
			{ID: "architect", Name: "Architect", Desc: "Change the background 5 times",
				Counter: CounterBackgroundsChanged, Threshold: 5,
				RewardSkin: "#9b59b6", SkinName: "Amethyst"},
			{ID: "survivor", Name: "Punching Bag", Desc: "Get tagged 10 times",
				Counter: CounterTimesTagged, Threshold: 10,
				RewardSkin: "#7f8c8d", SkinName: "Ghost"},
			{ID: "god_mode", Name: "Game God", Desc: "Unlock everything",
				RewardSkin: "skin-rainbow", SkinName: "Divine Light"},
		},
		SecretCodes: map[string]SecretCode{
			"PATPAT":  {Skin: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)", Name: "Admin Skin"},
			"DEV2025": {Skin: "#00ff00", Name: "Hacker Green"},
			"GOLD":    {Skin: "linear-gradient(to bottom, #f7971e, #ffd200)", Name: "Solid Gold"},
			"RAINBOW": {Skin: "skin-rainbow", Name: "Rainbow"},
			"MATRIX":  {Skin: "skin-glitch", Name: "Matrix"},
			"BOOM":    {Skin: "skin-pulse", Name: "Pulse"},
		},
	}
}
