package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/dto"
	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

type planReaderStub struct {
	rows []models.PlanRow
	err  error
}

func (s *planReaderStub) ListAll(ctx context.Context) ([]models.PlanRow, error) {
	return s.rows, s.err
}

func newTestPopulate(t *testing.T, ref *Reference, reader planReader) *PopulateService {
	t.Helper()
	return NewPopulateService(ref, reader, nil, nil, nil, nil, zap.NewNop(), PopulateConfig{})
}

func TestPopulateFillsOneWeek(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	svc := newTestPopulate(t, ref, &planReaderStub{})

	resp, err := svc.Populate(context.Background(), dto.PopulateRequest{FromScratch: true})
	require.NoError(t, err)
	assert.Equal(t, 9, len(resp.Filled)+len(resp.Skipped))
	assert.Equal(t, 0, resp.Remaining)
	assert.NotEmpty(t, resp.ProposalID)

	// Every filled slot carries the required headcount.
	for _, f := range resp.Filled {
		spec, ok := ref.CatalogSlot(mustDate(t, f.Date).Weekday(), f.Slot)
		require.True(t, ok, f.Slot)
		assert.Len(t, f.Players, spec.Headcount(), f.Slot)
	}
}

func TestPopulateIsDeterministic(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	svc := newTestPopulate(t, ref, &planReaderStub{})

	first, err := svc.Populate(context.Background(), dto.PopulateRequest{FromScratch: true})
	require.NoError(t, err)
	second, err := svc.Populate(context.Background(), dto.PopulateRequest{FromScratch: true})
	require.NoError(t, err)

	assert.Equal(t, first.Filled, second.Filled)
	assert.Equal(t, first.Skipped, second.Skipped)
}

func TestPopulateSkipsOccupiedSlots(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	reader := &planReaderStub{rows: []models.PlanRow{
		{Date: "2025-10-06", SlotCode: "D20:00-120 PLA", Players: "Bernd Sotzek, Jürgen Hansen, Oliver Böss, Ralf Colditz"},
	}}
	svc := newTestPopulate(t, ref, reader)

	resp, err := svc.Populate(context.Background(), dto.PopulateRequest{})
	require.NoError(t, err)
	for _, f := range resp.Filled {
		assert.False(t, f.Date == "2025-10-06" && f.Slot == "D20:00-120 PLA", "occupied slot was refilled")
	}
	assert.Equal(t, 8, len(resp.Filled)+len(resp.Skipped))
}

func TestPopulateHonorsMaxSlots(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	svc := newTestPopulate(t, ref, &planReaderStub{})

	resp, err := svc.Populate(context.Background(), dto.PopulateRequest{FromScratch: true, MaxSlots: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Filled, 2)
	assert.Equal(t, 7, resp.Remaining+len(resp.Skipped))
}

func TestPopulateFairnessPrefersLeastPlayed(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	svc := newTestPopulate(t, ref, &planReaderStub{})

	resp, err := svc.Populate(context.Background(), dto.PopulateRequest{FromScratch: true})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, f := range resp.Filled {
		for _, p := range f.Players {
			counts[p]++
		}
	}
	// One week has 26 seats for 20 players; nobody hoards them.
	for name, n := range counts {
		assert.LessOrEqual(t, n, 2, name)
	}
}

func TestPopulateReportsUnfillableSlots(t *testing.T) {
	// Two players who both only play doubles: the singles slots of the
	// week cannot be staffed, the doubles slots lack headcount.
	svc, err := NewReferenceService(day(2025, 10, 6), day(2025, 10, 12), zap.NewNop())
	require.NoError(t, err)
	ref, err := svc.Build([]models.PreferenceRow{
		{Name: "Holger Witt", Preference: "nur Doppel"},
		{Name: "Sven Petersen", Preference: "nur Doppel"},
	}, nil, nil)
	require.NoError(t, err)

	populate := newTestPopulate(t, ref, &planReaderStub{})
	resp, err := populate.Populate(context.Background(), dto.PopulateRequest{FromScratch: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Filled)
	assert.Len(t, resp.Skipped, 9)
	for _, sk := range resp.Skipped {
		assert.NotEmpty(t, sk.Reason)
	}
}

func TestPopulateSinglesBacktracksOverFirstPick(t *testing.T) {
	// Ranks 1, 4 and 5: the fairness order picks rank 1 first, but only
	// 4 and 5 can meet the rank window together.
	svc, err := NewReferenceService(day(2025, 10, 9), day(2025, 10, 9), zap.NewNop())
	require.NoError(t, err)
	ref, err := svc.Build([]models.PreferenceRow{
		{Name: "Holger Witt"},
		{Name: "Michael Lorenz"},
		{Name: "Andreas Kruse"},
	}, nil, []models.RankRow{
		{Name: "Holger Witt", Rank: "1"},
		{Name: "Michael Lorenz", Rank: "4"},
		{Name: "Andreas Kruse", Rank: "5"},
	})
	require.NoError(t, err)

	populate := newTestPopulate(t, ref, &planReaderStub{})
	resp, err := populate.Populate(context.Background(), dto.PopulateRequest{FromScratch: true})
	require.NoError(t, err)

	// 2025-10-09 is a Thursday with two singles slots. The first gets the
	// rank-compatible pair, the second has no pairing left.
	require.Len(t, resp.Filled, 1)
	assert.ElementsMatch(t, []string{"Michael Lorenz", "Andreas Kruse"}, resp.Filled[0].Players)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, "no legal pairing among candidates (blocked by overlaps_same_day, singles_rank_window)", resp.Skipped[0].Reason)
}

func TestPopulateSkipReasonCitesEveryExclusionCause(t *testing.T) {
	// A singles-banned woman and a rank-incompatible man: the skip reason
	// must name both causes, not just the rank window.
	svc, err := NewReferenceService(day(2025, 10, 8), day(2025, 10, 8), zap.NewNop())
	require.NoError(t, err)
	ref, err := svc.Build([]models.PreferenceRow{
		{Name: "Anke Ihde"},
		{Name: "Holger Witt"},
	}, nil, []models.RankRow{
		{Name: "Anke Ihde", Rank: "5"},
		{Name: "Holger Witt", Rank: "1"},
	})
	require.NoError(t, err)

	populate := newTestPopulate(t, ref, &planReaderStub{})
	resp, err := populate.Populate(context.Background(), dto.PopulateRequest{FromScratch: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Filled)

	var reasons []string
	for _, sk := range resp.Skipped {
		if sk.Slot == "E18:00-60 PLA" {
			reasons = append(reasons, sk.Reason)
		}
	}
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], string(models.RuleWomensSingles))
	assert.Contains(t, reasons[0], string(models.RuleSinglesRankWindow))
}

func TestPopulateReaderFailure(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	svc := newTestPopulate(t, ref, &planReaderStub{err: errors.New("boom")})

	_, err := svc.Populate(context.Background(), dto.PopulateRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestSaveUnknownProposal(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	svc := newTestPopulate(t, ref, &planReaderStub{})

	_, err := svc.Save(context.Background(), dto.SavePlanRequest{ProposalID: "2b0d38b6-4a47-4f95-9a3e-0f2e9c2f6a10"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSaveRejectsInvalidProposalID(t *testing.T) {
	ref := testReferenceSpan(t, day(2025, 10, 6), day(2025, 10, 12))
	svc := newTestPopulate(t, ref, &planReaderStub{})

	_, err := svc.Save(context.Background(), dto.SavePlanRequest{ProposalID: "nicht-uuid"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := parsePlanDate(raw)
	require.NoError(t, err)
	return parsed
}
