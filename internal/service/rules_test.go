package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// testReference builds the reference tables from a roster that exercises
// every club rule: the Monday core group, the singles ban list, protected
// times and the rank table.
func testReference(t *testing.T) *Reference {
	return testReferenceSpan(t, day(2025, 10, 1), day(2026, 3, 31))
}

func testReferenceSpan(t *testing.T, start, end time.Time) *Reference {
	t.Helper()
	svc, err := NewReferenceService(start, end, zap.NewNop())
	require.NoError(t, err)

	prefs := []models.PreferenceRow{
		{Name: "Bernd Sotzek"},
		{Name: "Jürgen Hansen"},
		{Name: "Oliver Böss"},
		{Name: "Ralf Colditz"},
		{Name: "Mohamad Albadry"},
		{Name: "Kerstin Baarck"},
		{Name: "Lena Meiß"},
		{Name: "Anke Ihde"},
		{Name: "Martina Schmidt"},
		{Name: "Dirk Kistner"},
		{Name: "Patrick Bührsch"},
		{Name: "Frank Petermann"},
		{Name: "Matthias Duddek"},
		{Name: "Arndt Stüber"},
		{Name: "Jens Hafner"},
		{Name: "Thomas Grüneberg"},
		{Name: "Holger Witt"},
		{Name: "Sven Petersen"},
		{Name: "Michael Lorenz"},
		{Name: "Andreas Kruse"},
	}
	ranks := []models.RankRow{
		{Name: "Bernd Sotzek", Rank: "2"},
		{Name: "Jürgen Hansen", Rank: "2"},
		{Name: "Oliver Böss", Rank: "3"},
		{Name: "Ralf Colditz", Rank: "3"},
		{Name: "Mohamad Albadry", Rank: "1"},
		{Name: "Kerstin Baarck", Rank: "4"},
		{Name: "Lena Meiß", Rank: "4"},
		{Name: "Thomas Grüneberg", Rank: "3"},
		{Name: "Holger Witt", Rank: "1"},
		{Name: "Sven Petersen", Rank: "2"},
		{Name: "Michael Lorenz", Rank: "4"},
		{Name: "Andreas Kruse", Rank: "5"},
	}
	ref, err := svc.Build(prefs, nil, ranks)
	require.NoError(t, err)
	return ref
}

func catalogSlot(t *testing.T, ref *Reference, weekday time.Weekday, code string) models.SlotSpec {
	t.Helper()
	spec, ok := ref.CatalogSlot(weekday, code)
	require.True(t, ok, "slot %s on %v not in catalog", code, weekday)
	return spec
}

func assign(ref *Reference, date time.Time, code string, names ...string) models.Assignment {
	spec, onCatalog := ref.CatalogSlot(date.Weekday(), code)
	if !onCatalog {
		spec, _ = models.ParseSlotCode(code, date.Weekday())
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = models.NormalizeName(n)
	}
	return models.Assignment{Date: date, Slot: spec, Players: names, PlayerKeys: keys, OnCatalog: onCatalog}
}

func hasCode(hits []RuleHit, code models.RuleCode) bool {
	for _, h := range hits {
		if h.Code == code {
			return true
		}
	}
	return false
}

func TestEvaluatePlayerOffCatalogSlot(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)

	// Wednesday singles code does not exist on Thursday.
	spec, err := models.ParseSlotCode("E18:00-60 PLA", time.Thursday)
	require.NoError(t, err)

	hits := eval.EvaluatePlayer("holger witt", day(2025, 10, 9), spec, nil, NewPlanContext(nil), false)
	require.Len(t, hits, 1)
	assert.Equal(t, models.RuleIllegalSlotCode, hits[0].Code)
}

func TestProtectedTimeStarts(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	ctx := NewPlanContext(nil)
	wed := day(2025, 10, 8)

	late := catalogSlot(t, ref, time.Wednesday, "E19:00-60 PLA")
	hits := eval.EvaluatePlayer("patrick buehrsch", wed, late, nil, ctx, false)
	assert.True(t, hasCode(hits, models.RuleProtectedTime))

	early := catalogSlot(t, ref, time.Wednesday, "E18:00-60 PLA")
	hits = eval.EvaluatePlayer("patrick buehrsch", wed, early, nil, ctx, false)
	assert.False(t, hasCode(hits, models.RuleProtectedTime))
}

func TestProtectedTimePerWeekday(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	ctx := NewPlanContext(nil)

	// Dirk may play Wednesdays only at 19:00, but Thursdays at 20:00.
	wedDoubles := catalogSlot(t, ref, time.Wednesday, "D20:00-90 PLA")
	hits := eval.EvaluatePlayer("dirk kistner", day(2025, 10, 8), wedDoubles, nil, ctx, false)
	assert.True(t, hasCode(hits, models.RuleProtectedTime))

	thuSingles := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLA")
	hits = eval.EvaluatePlayer("dirk kistner", day(2025, 10, 9), thuSingles, nil, ctx, false)
	assert.False(t, hasCode(hits, models.RuleProtectedTime))
}

func TestWomensSinglesBan(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	ctx := NewPlanContext(nil)
	slot := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLA")

	hits := eval.EvaluatePlayer("kerstin baarck", day(2025, 10, 9), slot, []string{"michael lorenz"}, ctx, false)
	assert.True(t, hasCode(hits, models.RuleWomensSingles))
	assert.True(t, hasCode(hits, models.RuleMixedSingles))

	// Paired with another banned player, only the ban itself fires.
	hits = eval.EvaluatePlayer("kerstin baarck", day(2025, 10, 9), slot, []string{"lena meiss"}, ctx, false)
	assert.True(t, hasCode(hits, models.RuleWomensSingles))
	assert.False(t, hasCode(hits, models.RuleMixedSingles))
}

func TestMondayCoreBannedPlayer(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	slot := catalogSlot(t, ref, time.Monday, "D20:00-120 PLA")

	hits := eval.EvaluatePlayer("mohamad albadry", day(2025, 10, 6), slot, nil, NewPlanContext(nil), false)
	assert.True(t, hasCode(hits, models.RuleMonPLAMohamad))

	// The B court carries no such ban.
	slotB := catalogSlot(t, ref, time.Monday, "D20:00-120 PLB")
	hits = eval.EvaluatePlayer("mohamad albadry", day(2025, 10, 6), slotB, nil, NewPlanContext(nil), false)
	assert.False(t, hasCode(hits, models.RuleMonPLAMohamad))
}

func TestCoreCompleteness(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	mon := day(2025, 10, 6)

	// Three of four core players present is tolerated.
	a := assign(ref, mon, "D20:00-120 PLA", "Bernd Sotzek", "Jürgen Hansen", "Oliver Böss", "Holger Witt")
	assert.False(t, hasCode(eval.EvaluateAssignment(a), models.RuleMonPLACore))

	// Two present with no holiday excuse is a violation.
	a = assign(ref, mon, "D20:00-120 PLA", "Bernd Sotzek", "Jürgen Hansen", "Holger Witt", "Sven Petersen")
	assert.True(t, hasCode(eval.EvaluateAssignment(a), models.RuleMonPLACore))
}

func TestMondayCoreWomanNeedsPartner(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	mon := day(2025, 10, 6)

	a := assign(ref, mon, "D20:00-120 PLA", "Bernd Sotzek", "Jürgen Hansen", "Oliver Böss", "Lena Meiß")
	assert.True(t, hasCode(eval.EvaluateAssignment(a), models.RuleMonPLAWoman))

	a = assign(ref, mon, "D20:00-120 PLA", "Bernd Sotzek", "Jürgen Hansen", "Lena Meiß", "Kerstin Baarck")
	assert.False(t, hasCode(eval.EvaluateAssignment(a), models.RuleMonPLAWoman))
}

func TestHolidayBlocksExceptCoreSlot(t *testing.T) {
	svc, err := NewReferenceService(day(2025, 10, 1), day(2026, 3, 31), zap.NewNop())
	require.NoError(t, err)
	ref, err := svc.Build([]models.PreferenceRow{
		{Name: "Bernd Sotzek", BlockedDays: "2025-10-06; 2025-10-09"},
		{Name: "Holger Witt"},
	}, nil, nil)
	require.NoError(t, err)
	eval := NewEvaluator(ref)
	ctx := NewPlanContext(nil)

	// Core players keep their Monday core slot through holidays.
	core := catalogSlot(t, ref, time.Monday, "D20:00-120 PLA")
	hits := eval.EvaluatePlayer("bernd sotzek", day(2025, 10, 6), core, nil, ctx, false)
	assert.False(t, hasCode(hits, models.RuleHolidayConflicts))

	thu := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLA")
	hits = eval.EvaluatePlayer("bernd sotzek", day(2025, 10, 9), thu, nil, ctx, false)
	assert.True(t, hasCode(hits, models.RuleHolidayConflicts))
}

func TestBlackoutDates(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)

	// 2025-12-24 is a Wednesday; the club is closed regardless of player.
	slot := catalogSlot(t, ref, time.Wednesday, "E18:00-60 PLA")
	hits := eval.EvaluatePlayer("holger witt", day(2025, 12, 24), slot, nil, NewPlanContext(nil), false)
	assert.True(t, hasCode(hits, models.RuleHolidayConflicts))

	hits = eval.EvaluatePlayer("holger witt", day(2025, 12, 17), slot, nil, NewPlanContext(nil), false)
	assert.False(t, hasCode(hits, models.RuleHolidayConflicts))
}

func TestOverlapSelectionVersusAudit(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	thu := day(2025, 10, 9)
	slotA := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLA")
	slotB := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLB")

	booked := NewPlanContext([]models.Assignment{
		assign(ref, thu, "E20:00-90 PLA", "Holger Witt", "Sven Petersen"),
	})

	// During selection the existing booking blocks a second one.
	hits := eval.EvaluatePlayer("holger witt", thu, slotB, nil, booked, false)
	assert.True(t, hasCode(hits, models.RuleOverlapsSameDay))

	// During an audit the player's own booking is already in the context.
	hits = eval.EvaluatePlayer("holger witt", thu, slotA, []string{"sven petersen"}, booked, true)
	assert.False(t, hasCode(hits, models.RuleOverlapsSameDay))
}

func TestDuplicatePlayerWithinSlot(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	slot := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLA")

	hits := eval.EvaluatePlayer("holger witt", day(2025, 10, 9), slot, []string{"holger witt"}, NewPlanContext(nil), false)
	assert.True(t, hasCode(hits, models.RuleOverlapsSameDay))
}

func TestWeeklyCap(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)

	// Dirk carries a weekly limit of two.
	existing := NewPlanContext([]models.Assignment{
		assign(ref, day(2025, 10, 6), "D20:00-120 PLB", "Dirk Kistner", "Holger Witt", "Sven Petersen", "Michael Lorenz"),
		assign(ref, day(2025, 10, 9), "E20:00-90 PLA", "Dirk Kistner", "Sven Petersen"),
	})

	thuB := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLB")
	hits := eval.EvaluatePlayer("dirk kistner", day(2025, 10, 9), thuB, nil, existing, false)
	assert.True(t, hasCode(hits, models.RuleWeeklyCap))

	// Auditing the two existing bookings themselves stays clean.
	monB := catalogSlot(t, ref, time.Monday, "D20:00-120 PLB")
	hits = eval.EvaluatePlayer("dirk kistner", day(2025, 10, 6), monB, []string{"holger witt", "sven petersen", "michael lorenz"}, existing, true)
	assert.False(t, hasCode(hits, models.RuleWeeklyCap))
}

func TestSeasonCap(t *testing.T) {
	svc, err := NewReferenceService(day(2025, 10, 6), day(2025, 10, 19), zap.NewNop())
	require.NoError(t, err)
	ref, err := svc.Build([]models.PreferenceRow{
		{Name: "Sven Petersen"},
		{Name: "Holger Witt"},
	}, []models.OverrideRow{
		{Name: "Sven Petersen", SeasonCap: 2},
	}, nil)
	require.NoError(t, err)
	eval := NewEvaluator(ref)

	// Sven already plays twice this season, one match per week.
	existing := NewPlanContext([]models.Assignment{
		assign(ref, day(2025, 10, 9), "E20:00-90 PLA", "Sven Petersen", "Holger Witt"),
		assign(ref, day(2025, 10, 16), "E20:00-90 PLA", "Sven Petersen", "Holger Witt"),
	})

	// A third booking would breach the season cap.
	thuB := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLB")
	hits := eval.EvaluatePlayer("sven petersen", day(2025, 10, 16), thuB, nil, existing, false)
	assert.True(t, hasCode(hits, models.RuleSeasonCap))

	// Auditing the two committed bookings themselves stays clean.
	thuA := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLA")
	hits = eval.EvaluatePlayer("sven petersen", day(2025, 10, 16), thuA, []string{"holger witt"}, existing, true)
	assert.False(t, hasCode(hits, models.RuleSeasonCap))
}

func TestSinglesRankWindow(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	ctx := NewPlanContext(nil)
	slot := catalogSlot(t, ref, time.Thursday, "E20:00-90 PLA")
	thu := day(2025, 10, 9)

	// Rank 1 against rank 4 exceeds the window.
	hits := eval.EvaluatePlayer("holger witt", thu, slot, []string{"michael lorenz"}, ctx, false)
	assert.True(t, hasCode(hits, models.RuleSinglesRankWindow))

	// Rank 2 against rank 4 is the widest allowed gap.
	hits = eval.EvaluatePlayer("sven petersen", thu, slot, []string{"michael lorenz"}, ctx, false)
	assert.False(t, hasCode(hits, models.RuleSinglesRankWindow))

	// Unknown ranks never constrain.
	hits = eval.EvaluatePlayer("martina schmidt", thu, slot, []string{"holger witt"}, ctx, false)
	assert.False(t, hasCode(hits, models.RuleSinglesRankWindow))
}

func TestEvaluateAssignmentSlotShape(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)

	// A start after 20:00 cannot be booked.
	a := assign(ref, day(2025, 10, 6), "D21:00-120 PLA", "Holger Witt", "Sven Petersen", "Michael Lorenz", "Andreas Kruse")
	hits := eval.EvaluateAssignment(a)
	assert.True(t, hasCode(hits, models.RuleIllegalSlotCode))
	assert.True(t, hasCode(hits, models.RuleStartsAfter2000))

	// Wednesday doubles before 20:00 are off limits.
	a = assign(ref, day(2025, 10, 8), "D19:00-60 PLA", "Holger Witt", "Sven Petersen", "Michael Lorenz", "Andreas Kruse")
	assert.True(t, hasCode(eval.EvaluateAssignment(a), models.RuleWedDoublesNot2000))
}

func TestEvaluateAssignmentHeadcount(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)

	a := assign(ref, day(2025, 10, 6), "D20:00-120 PLB", "Holger Witt", "Sven Petersen", "Michael Lorenz")
	assert.True(t, hasCode(eval.EvaluateAssignment(a), models.RuleHeadcountErrors))

	a = assign(ref, day(2025, 10, 9), "E20:00-90 PLA", "Holger Witt", "Sven Petersen")
	assert.False(t, hasCode(eval.EvaluateAssignment(a), models.RuleHeadcountErrors))
}

func TestDoublesBalanceAdvisory(t *testing.T) {
	ref := testReference(t)
	eval := NewEvaluator(ref)
	mon := day(2025, 10, 6)

	// Ranks 1,3,4,5: wide spread and no tight pair split.
	a := assign(ref, mon, "D20:00-120 PLB", "Holger Witt", "Oliver Böss", "Michael Lorenz", "Andreas Kruse")
	hits := eval.EvaluateAssignment(a)
	assert.True(t, hasCode(hits, models.RuleDoublesUnbalanced))

	// Ranks 2,2,3,3 stay within the spread.
	a = assign(ref, mon, "D20:00-120 PLB", "Bernd Sotzek", "Jürgen Hansen", "Oliver Böss", "Ralf Colditz")
	assert.False(t, hasCode(eval.EvaluateAssignment(a), models.RuleDoublesUnbalanced))

	// Two tight pairs far apart are a deliberate pairing, not an imbalance.
	a = assign(ref, mon, "D20:00-120 PLB", "Holger Witt", "Sven Petersen", "Michael Lorenz", "Lena Meiß")
	assert.False(t, hasCode(eval.EvaluateAssignment(a), models.RuleDoublesUnbalanced))

	// An unknown rank disables the check.
	a = assign(ref, mon, "D20:00-120 PLB", "Holger Witt", "Sven Petersen", "Michael Lorenz", "Martina Schmidt")
	assert.False(t, hasCode(eval.EvaluateAssignment(a), models.RuleDoublesUnbalanced))
}

func TestLegalIgnoresAdvisories(t *testing.T) {
	assert.True(t, Legal(nil))
	assert.True(t, Legal([]RuleHit{{Code: models.RuleDoublesUnbalanced}}))
	assert.False(t, Legal([]RuleHit{{Code: models.RuleDoublesUnbalanced}, {Code: models.RuleWeeklyCap}}))
}
