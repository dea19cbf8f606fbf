package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotCodeDoubles(t *testing.T) {
	spec, err := ParseSlotCode("D20:00-120 PLA", time.Monday)
	require.NoError(t, err)
	assert.Equal(t, MatchDoubles, spec.MatchType)
	assert.Equal(t, "20:00", spec.Start)
	assert.Equal(t, 120, spec.Minutes)
	assert.Equal(t, "A", spec.Court)
	assert.Equal(t, 4, spec.Headcount())
}

func TestParseSlotCodeSingles(t *testing.T) {
	spec, err := ParseSlotCode("E19:00-60 PLB", time.Wednesday)
	require.NoError(t, err)
	assert.Equal(t, MatchSingles, spec.MatchType)
	assert.Equal(t, "19:00", spec.Start)
	assert.Equal(t, 60, spec.Minutes)
	assert.Equal(t, "B", spec.Court)
	assert.Equal(t, 2, spec.Headcount())
}

func TestParseSlotCodeRejectsMalformed(t *testing.T) {
	for _, code := range []string{
		"",
		"X20:00-120 PLA",
		"D20:00 PLA",
		"D20:00-120 PLC",
		"D20:00-120PLA",
		"d20:00-120 PLA",
		"D20:00-99999999999999999999 PLA",
	} {
		_, err := ParseSlotCode(code, time.Monday)
		assert.Error(t, err, "code %q", code)
	}
}

func TestDefaultCatalogShape(t *testing.T) {
	catalog := DefaultCatalog()
	require.Len(t, catalog, 9)

	perDay := map[time.Weekday]int{}
	for _, spec := range catalog {
		perDay[spec.Weekday]++
	}
	assert.Equal(t, 2, perDay[time.Monday])
	assert.Equal(t, 5, perDay[time.Wednesday])
	assert.Equal(t, 2, perDay[time.Thursday])
}

func TestWeekOfISOBoundary(t *testing.T) {
	// 2025-12-29 falls into ISO week 1 of 2026.
	wk := WeekOf(time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, WeekKey{Year: 2026, Week: 1}, wk)
	assert.Equal(t, "2026-W01", wk.String())
}

func TestWeekKeyBefore(t *testing.T) {
	assert.True(t, WeekKey{2025, 52}.Before(WeekKey{2026, 1}))
	assert.True(t, WeekKey{2026, 1}.Before(WeekKey{2026, 2}))
	assert.False(t, WeekKey{2026, 2}.Before(WeekKey{2026, 2}))
}

func TestParseWeekdayGermanAndEnglish(t *testing.T) {
	d, ok := ParseWeekday(" Mittwoch ")
	require.True(t, ok)
	assert.Equal(t, time.Wednesday, d)

	d, ok = ParseWeekday("thursday")
	require.True(t, ok)
	assert.Equal(t, time.Thursday, d)

	_, ok = ParseWeekday("Feiertag")
	assert.False(t, ok)
}
