package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

// AuditReport is the full result of one audit pass.
type AuditReport struct {
	Summary    models.AuditSummary   `json:"summary"`
	Violations []models.Violation    `json:"violations"`
	Advisories []models.Violation    `json:"advisories"`
	Usage      []models.UsageRow     `json:"usage"`
	Warnings   []models.ParseWarning `json:"warnings,omitempty"`
}

type auditCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AuditService scans a plan for rule violations and produces the usage
// report. It never mutates its input and is order-independent over rows.
type AuditService struct {
	ref      *Reference
	eval     *Evaluator
	cache    auditCache
	cacheTTL time.Duration
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAuditService wires the auditor. Cache and metrics may be nil.
func NewAuditService(ref *Reference, cache auditCache, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{ref: ref, eval: NewEvaluator(ref), cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// AuditRows parses raw plan rows and audits them, consulting the report
// cache keyed by a fingerprint of the rows.
func (s *AuditService) AuditRows(ctx context.Context, rows []models.PlanRow) (*AuditReport, error) {
	key := auditCacheKey(rows)
	if s.cache != nil {
		var cached AuditReport
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("audit cache read failed", zap.Error(err))
		}
	}

	assignments, warnings := ParsePlan(rows, s.ref)
	report := s.Audit(assignments)
	report.Warnings = append(warnings, report.Warnings...)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("audit cache write failed", zap.Error(err))
		}
	}
	return report, nil
}

// Audit runs every check over the parsed plan.
func (s *AuditService) Audit(assignments []models.Assignment) *AuditReport {
	report := &AuditReport{
		Summary: models.AuditSummary{
			Assignments: len(assignments),
			ByRule:      make(map[models.RuleCode]int),
		},
	}
	planCtx := NewPlanContext(assignments)

	for _, a := range assignments {
		for _, hit := range s.eval.EvaluateAssignment(a) {
			s.record(report, violationFor(a, hit))
		}
		if !a.OnCatalog {
			// Per-player checks are meaningless off-catalog.
			continue
		}
		for idx, key := range a.PlayerKeys {
			others := otherKeys(a.PlayerKeys, idx)
			for _, hit := range s.eval.EvaluatePlayer(key, a.Date, a.Slot, others, planCtx, true) {
				s.record(report, violationFor(a, hit))
			}
		}
	}

	s.checkWeeklyCoverage(assignments, report)
	s.checkRotationShares(assignments, report)
	s.checkSeasonTargets(planCtx, report)
	s.checkPairings(assignments, report)
	report.Usage = s.usageReport(planCtx)
	report.Summary.WeeksCovered = len(weeksOf(assignments))

	s.dedupe(report)

	if s.metrics != nil {
		s.metrics.ObserveAudit(len(assignments), report.Summary.HardCount, report.Summary.AdvisoryCount)
	}
	s.logger.Info("plan audited",
		zap.Int("assignments", len(assignments)),
		zap.Int("hard_violations", report.Summary.HardCount),
		zap.Int("advisories", report.Summary.AdvisoryCount),
	)
	return report
}

// checkWeeklyCoverage verifies each catalog slot appears exactly once per
// week the plan touches.
func (s *AuditService) checkWeeklyCoverage(assignments []models.Assignment, report *AuditReport) {
	type weekSlot struct {
		week models.WeekKey
		code string
	}
	counts := make(map[weekSlot]int)
	for _, a := range assignments {
		if a.OnCatalog {
			counts[weekSlot{a.Week(), a.Slot.Code}]++
		}
	}

	for _, week := range weeksOf(assignments) {
		for _, spec := range s.ref.Catalog {
			n := counts[weekSlot{week, spec.Code}]
			base := models.Violation{
				Weekday: models.WeekdayName(spec.Weekday),
				Slot:    spec.Code,
				Type:    string(spec.MatchType),
			}
			switch {
			case n == 0:
				base.Rule = models.RuleMissingWeeklySlots
				base.Detail = fmt.Sprintf("%s has no %s %s booking", week, models.WeekdayName(spec.Weekday), spec.Code)
				s.record(report, base)
			case n > 1:
				base.Rule = models.RuleDuplicateWeeklySlots
				base.Detail = fmt.Sprintf("%s books %s %d times", week, spec.Code, n)
				s.record(report, base)
			}
		}
	}
}

// checkRotationShares recomputes the advisory 70/30 split from the full
// committed history each audit, for every player carrying a rotation rule.
func (s *AuditService) checkRotationShares(assignments []models.Assignment, report *AuditReport) {
	for key, player := range s.ref.Players() {
		rule := player.Rotation
		if rule == nil {
			continue
		}
		total, early, wed20 := 0, 0, 0
		for _, a := range assignments {
			if !a.HasPlayer(key) {
				continue
			}
			total++
			if a.Slot.Start == "18:00" || a.Slot.Start == "19:00" {
				early++
			}
			if a.Slot.Weekday == time.Wednesday && a.Slot.Start == "20:00" {
				wed20++
			}
		}
		if total == 0 {
			continue
		}
		earlyShare := float64(early) / float64(total)
		lateShare := float64(wed20) / float64(total)
		if earlyShare < rule.EarlyShareMin-rule.Tolerance {
			s.record(report, models.Violation{
				AffectedPlayer: player.Name,
				Rule:           models.RuleRotationShare,
				Detail:         fmt.Sprintf("%s plays %.0f%% early starts, target is at least %.0f%%", player.Name, earlyShare*100, rule.EarlyShareMin*100),
			})
		}
		if lateShare > rule.LateShareMax+rule.Tolerance {
			s.record(report, models.Violation{
				AffectedPlayer: player.Name,
				Rule:           models.RuleRotationShare,
				Detail:         fmt.Sprintf("%s plays %.0f%% Wednesday 20:00 starts, target is at most %.0f%%", player.Name, lateShare*100, rule.LateShareMax*100),
			})
		}
	}
}

func (s *AuditService) checkSeasonTargets(planCtx *PlanContext, report *AuditReport) {
	for _, target := range s.ref.Targets {
		total := planCtx.SeasonCount(target.Player)
		if total >= target.Target {
			continue
		}
		name := target.Player
		if p, ok := s.ref.Player(target.Player); ok {
			name = p.Name
		}
		s.record(report, models.Violation{
			AffectedPlayer: name,
			Rule:           target.Code,
			Detail:         fmt.Sprintf("%s has %d of %d targeted season matches", name, total, target.Target),
		})
	}
}

// checkPairings flags dates where one half of a designated pair plays
// without the other at the same start time.
func (s *AuditService) checkPairings(assignments []models.Assignment, report *AuditReport) {
	slotTimes := func(key string) map[string]bool {
		out := make(map[string]bool)
		for _, a := range assignments {
			if a.HasPlayer(key) {
				out[dayKey(a.Date)+" "+a.Slot.Start] = true
			}
		}
		return out
	}
	for _, pair := range s.ref.Pairs {
		timesA, timesB := slotTimes(pair.A), slotTimes(pair.B)
		nameA, nameB := s.displayName(pair.A), s.displayName(pair.B)
		for at := range timesA {
			if !timesB[at] {
				s.record(report, models.Violation{
					AffectedPlayer: nameA,
					Rule:           models.RulePairingMismatch,
					Detail:         fmt.Sprintf("%s plays %s without %s", nameA, at, nameB),
				})
			}
		}
		for at := range timesB {
			if !timesA[at] {
				s.record(report, models.Violation{
					AffectedPlayer: nameB,
					Rule:           models.RulePairingMismatch,
					Detail:         fmt.Sprintf("%s plays %s without %s", nameB, at, nameA),
				})
			}
		}
	}
}

func (s *AuditService) usageReport(planCtx *PlanContext) []models.UsageRow {
	var rows []models.UsageRow
	for key, counter := range planCtx.usage {
		name := s.displayName(key)
		limit := 0
		if p, ok := s.ref.Player(key); ok {
			limit = p.WeeklyCap
		}
		for week, n := range counter.Weeks {
			rows = append(rows, models.UsageRow{
				Player:  name,
				Year:    week.Year,
				Week:    week.Week,
				Matches: n,
				Cap:     limit,
				OverCap: limit > 0 && n > limit,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Player != rows[j].Player {
			return rows[i].Player < rows[j].Player
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Week < rows[j].Week
	})
	return rows
}

func (s *AuditService) displayName(key string) string {
	if p, ok := s.ref.Player(key); ok {
		return p.Name
	}
	return key
}

func (s *AuditService) record(report *AuditReport, v models.Violation) {
	report.Summary.ByRule[v.Rule]++
	if v.Rule.Advisory() {
		report.Summary.AdvisoryCount++
		report.Advisories = append(report.Advisories, v)
		return
	}
	report.Summary.HardCount++
	report.Violations = append(report.Violations, v)
}

// dedupe keeps the violation list stable and idempotent: identical findings
// from repeated passes collapse, and ordering is canonical.
func (s *AuditService) dedupe(report *AuditReport) {
	report.Violations = dedupeViolations(report.Violations)
	report.Advisories = dedupeViolations(report.Advisories)
}

func dedupeViolations(in []models.Violation) []models.Violation {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, v := range in {
		sig := strings.Join([]string{v.Date, v.Slot, string(v.Rule), v.AffectedPlayer, v.Detail}, "|")
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, v)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}

func violationFor(a models.Assignment, hit RuleHit) models.Violation {
	v := models.Violation{
		Date:    a.Date.Format("2006-01-02"),
		Weekday: models.WeekdayName(a.Slot.Weekday),
		Slot:    a.Slot.Code,
		Type:    string(a.Slot.MatchType),
		Players: strings.Join(a.Players, ", "),
		Rule:    hit.Code,
		Detail:  hit.Detail,
	}
	if hit.Player != "" {
		for i, key := range a.PlayerKeys {
			if key == hit.Player && i < len(a.Players) {
				v.AffectedPlayer = a.Players[i]
				break
			}
		}
		if v.AffectedPlayer == "" {
			v.AffectedPlayer = hit.Player
		}
	}
	return v
}

func otherKeys(keys []string, skip int) []string {
	out := make([]string, 0, len(keys)-1)
	for i, k := range keys {
		if i != skip {
			out = append(out, k)
		}
	}
	return out
}

func weeksOf(assignments []models.Assignment) []models.WeekKey {
	seen := make(map[models.WeekKey]bool)
	var weeks []models.WeekKey
	for _, a := range assignments {
		wk := a.Week()
		if !seen[wk] {
			seen[wk] = true
			weeks = append(weeks, wk)
		}
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Before(weeks[j]) })
	return weeks
}

func auditCacheKey(rows []models.PlanRow) string {
	h := fnv.New64a()
	for _, r := range rows {
		fmt.Fprintf(h, "%s|%s|%s|%s\n", r.Date, r.SlotCode, r.Type, r.Players)
	}
	return fmt.Sprintf("audit:report:%x", h.Sum64())
}
