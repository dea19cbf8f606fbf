package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNameFoldsUmlauts(t *testing.T) {
	assert.Equal(t, "juergen hansen", NormalizeName("Jürgen Hansen"))
	assert.Equal(t, "juergen hansen", NormalizeName("  Juergen   Hansen "))
}

func TestNormalizeNameResolvesAlias(t *testing.T) {
	assert.Equal(t, "thomas grueneberg", NormalizeName("Thommy Grueneberg"))
	assert.Equal(t, "thomas grueneberg", NormalizeName("Thomas Grüneberg"))
}

func TestSplitPlayersDropsEmpties(t *testing.T) {
	assert.Equal(t, []string{"Anke Ihde", "Lena Meiss"}, SplitPlayers("Anke Ihde, , Lena Meiss,"))
	assert.Empty(t, SplitPlayers("  ,  "))
}

func TestPreferenceAllows(t *testing.T) {
	assert.True(t, PrefNone.Allows(MatchSingles))
	assert.True(t, PrefNone.Allows(MatchDoubles))
	assert.True(t, PrefSinglesOnly.Allows(MatchSingles))
	assert.False(t, PrefSinglesOnly.Allows(MatchDoubles))
	assert.False(t, PrefDoublesOnly.Allows(MatchSingles))
}

func TestPlayerAvailableOn(t *testing.T) {
	unconstrained := Player{DaysUnconstrained: true}
	assert.True(t, unconstrained.AvailableOn(time.Sunday))

	limited := Player{AvailableDays: []time.Weekday{time.Monday, time.Wednesday}}
	assert.True(t, limited.AvailableOn(time.Monday))
	assert.False(t, limited.AvailableOn(time.Thursday))
}
