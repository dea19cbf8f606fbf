package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

// AnalyticsService derives season statistics from the committed plan:
// per-player load distribution, opponent variety and pairing frequency.
type AnalyticsService struct {
	ref     *Reference
	plans   planReader
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAnalyticsService wires the analytics reads.
func NewAnalyticsService(ref *Reference, plans planReader, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{ref: ref, plans: plans, metrics: metrics, logger: logger}
}

// Distribution aggregates per-player booking counts and start-time shares.
func (s *AnalyticsService) Distribution(ctx context.Context) ([]models.DistributionRow, error) {
	assignments, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	type acc struct {
		row   models.DistributionRow
		weeks map[models.WeekKey]int
	}
	byKey := make(map[string]*acc)
	for _, a := range assignments {
		for _, key := range a.PlayerKeys {
			entry := byKey[key]
			if entry == nil {
				entry = &acc{row: models.DistributionRow{Player: s.displayName(key)}, weeks: make(map[models.WeekKey]int)}
				byKey[key] = entry
			}
			entry.row.Total++
			entry.weeks[a.Week()]++
			if a.Slot.MatchType == models.MatchSingles {
				entry.row.Singles++
			} else {
				entry.row.Doubles++
			}
			if a.Slot.Start < "20:00" {
				entry.row.EarlyStarts++
			} else {
				entry.row.LateStarts++
			}
		}
	}

	rows := make([]models.DistributionRow, 0, len(byKey))
	for key, entry := range byKey {
		row := entry.row
		if row.Total > 0 {
			row.EarlyShare = float64(row.EarlyStarts) / float64(row.Total)
		}
		row.WeeksPlayed = len(entry.weeks)
		for _, n := range entry.weeks {
			if n > row.MaxPerWeek {
				row.MaxPerWeek = n
			}
		}
		if p, ok := s.ref.Player(key); ok && p.SeasonCap > 0 {
			row.SeasonCap = p.SeasonCap
			row.CapUtilization = float64(row.Total) / float64(p.SeasonCap)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Player < rows[j].Player
	})
	return rows, nil
}

// Variety reports how many distinct people each player shared a court with.
func (s *AnalyticsService) Variety(ctx context.Context) ([]models.VarietyRow, error) {
	assignments, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	type acc struct {
		matches   int
		opponents map[string]bool
		partners  map[string]bool
		meetings  int
	}
	byKey := make(map[string]*acc)
	ensure := func(key string) *acc {
		entry := byKey[key]
		if entry == nil {
			entry = &acc{opponents: make(map[string]bool), partners: make(map[string]bool)}
			byKey[key] = entry
		}
		return entry
	}

	for _, a := range assignments {
		for i, key := range a.PlayerKeys {
			entry := ensure(key)
			entry.matches++
			for j, other := range a.PlayerKeys {
				if i == j {
					continue
				}
				entry.meetings++
				// In doubles the pairs are positional: 1+2 vs 3+4.
				if a.Slot.MatchType == models.MatchDoubles && i/2 == j/2 {
					entry.partners[other] = true
				} else {
					entry.opponents[other] = true
				}
			}
		}
	}

	rows := make([]models.VarietyRow, 0, len(byKey))
	for key, entry := range byKey {
		distinct := len(entry.opponents) + len(entry.partners)
		row := models.VarietyRow{
			Player:            s.displayName(key),
			Matches:           entry.matches,
			DistinctOpponents: len(entry.opponents),
			DistinctPartners:  len(entry.partners),
		}
		if entry.meetings > 0 {
			row.RepeatRate = 1.0 - float64(distinct)/float64(entry.meetings)
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Player < rows[j].Player })
	return rows, nil
}

// Pairing counts how often each pair of players appeared in the same booking.
func (s *AnalyticsService) Pairing(ctx context.Context) ([]models.PairingRow, error) {
	assignments, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	type pairKey struct{ a, b string }
	counts := make(map[pairKey]int)
	for _, a := range assignments {
		for i := 0; i < len(a.PlayerKeys); i++ {
			for j := i + 1; j < len(a.PlayerKeys); j++ {
				k1, k2 := a.PlayerKeys[i], a.PlayerKeys[j]
				if k2 < k1 {
					k1, k2 = k2, k1
				}
				counts[pairKey{k1, k2}]++
			}
		}
	}

	rows := make([]models.PairingRow, 0, len(counts))
	for pk, n := range counts {
		rows = append(rows, models.PairingRow{
			PlayerA: s.displayName(pk.a),
			PlayerB: s.displayName(pk.b),
			Shared:  n,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Shared != rows[j].Shared {
			return rows[i].Shared > rows[j].Shared
		}
		if rows[i].PlayerA != rows[j].PlayerA {
			return rows[i].PlayerA < rows[j].PlayerA
		}
		return rows[i].PlayerB < rows[j].PlayerB
	})
	return rows, nil
}

// System exposes the instrumentation snapshot.
func (s *AnalyticsService) System(_ context.Context) models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) load(ctx context.Context) ([]models.Assignment, error) {
	rows, err := s.plans.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	assignments, _ := ParsePlan(rows, s.ref)
	return assignments, nil
}

func (s *AnalyticsService) displayName(key string) string {
	if p, ok := s.ref.Player(key); ok {
		return p.Name
	}
	return key
}
