package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

// CostService splits the season court costs across the players: every booked
// slot is paid by its players, every slot left open is carried pro rata by
// minutes played.
type CostService struct {
	ref        *Reference
	plans      planReader
	hourlyRate float64
	logger     *zap.Logger
}

// NewCostService wires the cost report.
func NewCostService(ref *Reference, plans planReader, hourlyRate float64, logger *zap.Logger) *CostService {
	if hourlyRate <= 0 {
		hourlyRate = 17.50
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostService{ref: ref, plans: plans, hourlyRate: hourlyRate, logger: logger}
}

// Season computes the full season cost report from the current plan.
func (s *CostService) Season(ctx context.Context) (*models.CostSummary, error) {
	rows, err := s.plans.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	assignments, _ := ParsePlan(rows, s.ref)
	return s.compute(assignments), nil
}

func (s *CostService) compute(assignments []models.Assignment) *models.CostSummary {
	type share struct {
		hours  float64
		direct float64
	}
	shares := make(map[string]*share)
	ensure := func(key string) *share {
		sh := shares[key]
		if sh == nil {
			sh = &share{}
			shares[key] = sh
		}
		return sh
	}
	for key := range s.ref.Players() {
		ensure(key)
	}

	occupied := make(map[string]bool)
	bookedHours := 0.0
	for _, a := range assignments {
		hours := float64(a.Slot.Minutes) / 60.0
		bookedHours += hours
		if a.OnCatalog {
			occupied[slotInstanceKey(a.Date, a.Slot.Code)] = true
		}
		if len(a.PlayerKeys) == 0 {
			continue
		}
		perPlayer := hours / float64(len(a.PlayerKeys))
		for _, key := range a.PlayerKeys {
			sh := ensure(key)
			sh.hours += perPlayer
			sh.direct += perPlayer * s.hourlyRate
		}
	}

	unusedHours := 0.0
	for _, inst := range SeasonSlots(s.ref) {
		if !occupied[slotInstanceKey(inst.Date, inst.Slot.Code)] {
			unusedHours += float64(inst.Slot.Minutes) / 60.0
		}
	}

	summary := &models.CostSummary{
		HourlyRate:  s.hourlyRate,
		BookedHours: bookedHours,
		UnusedHours: unusedHours,
		BookedCosts: bookedHours * s.hourlyRate,
		UnusedCosts: unusedHours * s.hourlyRate,
	}
	summary.TotalCosts = summary.BookedCosts + summary.UnusedCosts

	// Open slots are distributed pro rata by minutes played; a player who
	// never played carries no share.
	totalHours := 0.0
	for _, sh := range shares {
		totalHours += sh.hours
	}
	for key, sh := range shares {
		name := key
		if p, ok := s.ref.Player(key); ok {
			name = p.Name
		}
		shared := 0.0
		if totalHours > 0 {
			shared = summary.UnusedCosts * sh.hours / totalHours
		}
		summary.Rows = append(summary.Rows, models.CostRow{
			Player:      name,
			Hours:       sh.hours,
			DirectCosts: sh.direct,
			SharedCosts: shared,
			TotalCosts:  sh.direct + shared,
		})
	}
	sort.Slice(summary.Rows, func(i, j int) bool { return summary.Rows[i].Player < summary.Rows[j].Player })
	return summary
}
