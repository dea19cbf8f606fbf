package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/dto"
	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

// PlanService serves read-only plan views.
type PlanService struct {
	ref    *Reference
	plans  planReader
	logger *zap.Logger
}

// NewPlanService wires the plan views.
func NewPlanService(ref *Reference, plans planReader, logger *zap.Logger) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{ref: ref, plans: plans, logger: logger}
}

// Week returns the plan rows of one ISO week plus the catalog slots still open.
func (s *PlanService) Week(ctx context.Context, year, week int) (*dto.WeekPlanResponse, error) {
	if year < 2000 || week < 1 || week > 53 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year and week are out of range")
	}
	rows, err := s.plans.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	assignments, _ := ParsePlan(rows, s.ref)

	target := models.WeekKey{Year: year, Week: week}
	var inWeek []models.Assignment
	booked := make(map[string]bool)
	for _, a := range assignments {
		if a.Week() != target {
			continue
		}
		inWeek = append(inWeek, a)
		if a.OnCatalog {
			booked[catalogKey(a.Slot.Weekday, a.Slot.Code)] = true
		}
	}

	resp := &dto.WeekPlanResponse{Year: year, Week: week, Rows: RenderPlan(inWeek)}
	for _, spec := range s.ref.Catalog {
		if !booked[catalogKey(spec.Weekday, spec.Code)] {
			resp.Missing = append(resp.Missing, models.WeekdayName(spec.Weekday)+" "+spec.Code)
		}
	}
	return resp, nil
}

// PlayerMatches returns every booking of one player, name-normalized.
func (s *PlanService) PlayerMatches(ctx context.Context, name string) (*dto.PlayerMatchesResponse, error) {
	key := models.NormalizeName(name)
	if key == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "player name is required")
	}
	rows, err := s.plans.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	assignments, _ := ParsePlan(rows, s.ref)

	display := name
	if p, ok := s.ref.Player(key); ok {
		display = p.Name
	}
	resp := &dto.PlayerMatchesResponse{Player: display}
	var mine []models.Assignment
	for _, a := range assignments {
		if !a.HasPlayer(key) {
			continue
		}
		mine = append(mine, a)
		resp.Total++
		if a.Slot.MatchType == models.MatchSingles {
			resp.Singles++
		} else {
			resp.Doubles++
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].Date.Before(mine[j].Date) })
	resp.Rows = RenderPlan(mine)
	return resp, nil
}
