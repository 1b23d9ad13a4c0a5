package achievements

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsUnlocked(t *testing.T) {
	table := Defaults()

	cases := []struct {
		name     string
		counters Counters
		want     []string
	}{
		{name: "fresh account", counters: Counters{}, want: nil},
		{
			name:     "one tag",
			counters: Counters{CounterTagsInflicted: 1},
			want:     []string{"first_blood"},
		},
		{
			name:     "veteran hunter",
			counters: Counters{CounterTagsInflicted: 12},
			want:     []string{"first_blood", "hunter_pro"},
		},
		{
			name:     "long walk",
			counters: Counters{CounterDistanceTraveled: 21000},
			want:     []string{"traveler", "marathon"},
		},
		{
			name:     "decorator",
			counters: Counters{CounterBackgroundsChanged: 5},
			want:     []string{"architect"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []string
			for _, a := range table.Unlocked(tc.counters) {
				got = append(got, a.ID)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGodModeNeverUnlocksByCounters(t *testing.T) {
	huge := Counters{
		CounterTagsInflicted:      1e9,
		CounterTimesTagged:        1e9,
		CounterDistanceTraveled:   1e9,
		CounterBackgroundsChanged: 1e9,
	}
	for _, a := range Defaults().Unlocked(huge) {
		if a.ID == "god_mode" {
			t.Fatalf("god_mode has no counter condition and must stay locked")
		}
	}
}

func TestLookupCode(t *testing.T) {
	table := Defaults()

	sc, ok := table.LookupCode("MATRIX")
	require.True(t, ok)
	assert.Equal(t, "skin-glitch", sc.Skin)

	_, ok = table.LookupCode("matrix") // codes are case-sensitive
	assert.False(t, ok)
}

func TestLoadFromFile(t *testing.T) {
	src := `
achievements:
  - id: speedrun
    name: Speedrun
    desc: Land 3 tags
    counter: tags_inflicted
    threshold: 3
    reward_skin: "#abcdef"
    skin_name: Sky
secret_codes:
  HELLO:
    skin: "#000000"
    name: Void
`
	path := filepath.Join(t.TempDir(), "achievements.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	got := table.Unlocked(Counters{CounterTagsInflicted: 3})
	require.Len(t, got, 1)
	assert.Equal(t, "speedrun", got[0].ID)

	sc, ok := table.LookupCode("HELLO")
	require.True(t, ok)
	assert.Equal(t, "Void", sc.Name)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	table, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, table.Achievements)
	assert.NotEmpty(t, table.SecretCodes)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
