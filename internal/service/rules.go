package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
)

// RuleHit is a single fired rule with human-readable context.
type RuleHit struct {
	Code   models.RuleCode `json:"code"`
	Player string          `json:"player,omitempty"`
	Detail string          `json:"detail"`
}

// Legal reports whether no hard rule fired. Advisory hits never block.
func Legal(hits []RuleHit) bool {
	for _, h := range hits {
		if !h.Code.Advisory() {
			return false
		}
	}
	return true
}

func dayKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// PlanContext carries the booking state the per-player checks need: usage
// counters and the per-day player index. The selector commits tentative
// picks into a context copy; the auditor builds one from the full plan.
type PlanContext struct {
	usage map[string]*models.UsageCounter
	byDay map[string]map[string]int
}

// NewPlanContext indexes a set of assignments.
func NewPlanContext(assignments []models.Assignment) *PlanContext {
	ctx := &PlanContext{
		usage: make(map[string]*models.UsageCounter),
		byDay: make(map[string]map[string]int),
	}
	for _, a := range assignments {
		ctx.Commit(a)
	}
	return ctx
}

// Commit books an assignment into the context.
func (c *PlanContext) Commit(a models.Assignment) {
	day := dayKey(a.Date)
	week := a.Week()
	if c.byDay[day] == nil {
		c.byDay[day] = make(map[string]int)
	}
	for _, key := range a.PlayerKeys {
		c.byDay[day][key]++
		u := c.usage[key]
		if u == nil {
			u = &models.UsageCounter{Weeks: make(map[models.WeekKey]int)}
			c.usage[key] = u
		}
		u.Season++
		u.Weeks[week]++
	}
}

// Clone copies the context so tentative commits stay local.
func (c *PlanContext) Clone() *PlanContext {
	out := &PlanContext{
		usage: make(map[string]*models.UsageCounter, len(c.usage)),
		byDay: make(map[string]map[string]int, len(c.byDay)),
	}
	for k, u := range c.usage {
		weeks := make(map[models.WeekKey]int, len(u.Weeks))
		for wk, n := range u.Weeks {
			weeks[wk] = n
		}
		out.usage[k] = &models.UsageCounter{Season: u.Season, Weeks: weeks}
	}
	for day, set := range c.byDay {
		copied := make(map[string]int, len(set))
		for k, n := range set {
			copied[k] = n
		}
		out.byDay[day] = copied
	}
	return out
}

// BookedOn returns how many assignments the player already has on a date.
func (c *PlanContext) BookedOn(d time.Time, key string) int {
	return c.byDay[dayKey(d)][key]
}

// SeasonCount returns the player's committed season total.
func (c *PlanContext) SeasonCount(key string) int {
	if u := c.usage[key]; u != nil {
		return u.Season
	}
	return 0
}

// WeekCount returns the player's committed total in one ISO week.
func (c *PlanContext) WeekCount(key string, wk models.WeekKey) int {
	return c.usage[key].InWeek(wk)
}

// Evaluator applies every hard and advisory rule category. It is the single
// source of legality shared by the auditor and the candidate selector.
type Evaluator struct {
	ref *Reference
}

// NewEvaluator wires the rule engine to its reference tables.
func NewEvaluator(ref *Reference) *Evaluator {
	return &Evaluator{ref: ref}
}

// EvaluatePlayer checks one player's placement into a slot on a date against
// every per-player rule. others are the remaining players of the same
// assignment (tentative picks during selection). selfIncluded tells the cap
// and overlap checks whether ctx already contains this very placement, as it
// does during an audit of an existing plan.
func (e *Evaluator) EvaluatePlayer(key string, date time.Time, slot models.SlotSpec, others []string, ctx *PlanContext, selfIncluded bool) []RuleHit {
	if _, ok := e.ref.CatalogSlot(slot.Weekday, slot.Code); !ok {
		return []RuleHit{{Code: models.RuleIllegalSlotCode, Player: key, Detail: fmt.Sprintf("slot %s is not in the weekly catalog", slot.Code)}}
	}

	var hits []RuleHit
	player, known := e.ref.Player(key)
	if !known {
		// Unknown players carry no restrictions; the parse warning was
		// already raised when the plan was read.
		player = &models.Player{Name: key, Key: key, Preference: models.PrefNone, DaysUnconstrained: true}
	}

	if !player.AvailableOn(slot.Weekday) {
		hits = append(hits, RuleHit{Code: models.RuleWeekdayConflicts, Player: key, Detail: fmt.Sprintf("%s is not available on %s", player.Name, models.WeekdayName(slot.Weekday))})
	}

	if player.OnHoliday(date) || e.ref.Blackout(date) {
		if !e.holidayExempt(key, slot) {
			hits = append(hits, RuleHit{Code: models.RuleHolidayConflicts, Player: key, Detail: fmt.Sprintf("%s is blocked on %s", player.Name, dayKey(date))})
		}
	}

	hits = append(hits, e.checkProtectedTime(player, slot)...)
	hits = append(hits, e.checkSinglesBan(player, slot, others)...)
	hits = append(hits, e.checkMondayCore(player, slot)...)

	overlapThreshold := 0
	if selfIncluded {
		overlapThreshold = 1
	}
	if ctx.BookedOn(date, key) > overlapThreshold {
		hits = append(hits, RuleHit{Code: models.RuleOverlapsSameDay, Player: key, Detail: fmt.Sprintf("%s already plays on %s", player.Name, dayKey(date))})
	}
	for _, other := range others {
		if other == key {
			hits = append(hits, RuleHit{Code: models.RuleOverlapsSameDay, Player: key, Detail: fmt.Sprintf("%s listed twice in the same slot", player.Name)})
			break
		}
	}

	week := models.WeekOf(date)
	extra := 1
	if selfIncluded {
		extra = 0
	}
	if player.WeeklyCap > 0 && ctx.WeekCount(key, week)+extra > player.WeeklyCap {
		hits = append(hits, RuleHit{Code: models.RuleWeeklyCap, Player: key, Detail: fmt.Sprintf("%s exceeds %d matches in week %s", player.Name, player.WeeklyCap, week)})
	}
	if player.SeasonCap > 0 && ctx.SeasonCount(key)+extra > player.SeasonCap {
		hits = append(hits, RuleHit{Code: models.RuleSeasonCap, Player: key, Detail: fmt.Sprintf("%s exceeds season cap of %d", player.Name, player.SeasonCap)})
	}

	hits = append(hits, e.checkRankWindow(player, slot, others)...)
	return hits
}

// EvaluateAssignment runs the slot-shape and group-level checks. These fire
// even for off-catalog slots, where the per-player checks are meaningless.
func (e *Evaluator) EvaluateAssignment(a models.Assignment) []RuleHit {
	var hits []RuleHit

	if _, ok := e.ref.CatalogSlot(a.Slot.Weekday, a.Slot.Code); !ok {
		hits = append(hits, RuleHit{Code: models.RuleIllegalSlotCode, Detail: fmt.Sprintf("slot %s on %s is not in the weekly catalog", a.Slot.Code, models.WeekdayName(a.Slot.Weekday))})
	}
	if a.Slot.Start > "20:00" {
		hits = append(hits, RuleHit{Code: models.RuleStartsAfter2000, Detail: fmt.Sprintf("start %s is after 20:00", a.Slot.Start)})
	}
	if a.Slot.Weekday == time.Wednesday && a.Slot.MatchType == models.MatchDoubles && a.Slot.Start != "20:00" {
		hits = append(hits, RuleHit{Code: models.RuleWedDoublesNot2000, Detail: fmt.Sprintf("Wednesday doubles must start at 20:00, not %s", a.Slot.Start)})
	}
	if len(a.PlayerKeys) != a.Slot.Headcount() {
		hits = append(hits, RuleHit{Code: models.RuleHeadcountErrors, Detail: fmt.Sprintf("%s needs %d players, has %d", a.Slot.Code, a.Slot.Headcount(), len(a.PlayerKeys))})
	}

	hits = append(hits, e.checkCoreCompleteness(a)...)
	hits = append(hits, e.checkDoublesBalance(a)...)
	return hits
}

// holidayExempt: the Monday core doubles slot keeps its core group even
// during their holidays.
func (e *Evaluator) holidayExempt(key string, slot models.SlotSpec) bool {
	if !e.ref.CoreSlot(slot) {
		return false
	}
	for _, core := range e.ref.MondayCore.CorePlayers {
		if core == key {
			return true
		}
	}
	return false
}

func (e *Evaluator) checkProtectedTime(p *models.Player, slot models.SlotSpec) []RuleHit {
	rule := p.Protected
	if rule == nil {
		return nil
	}
	var hits []RuleHit
	if len(rule.AllowedWeekdays) > 0 && !containsWeekday(rule.AllowedWeekdays, slot.Weekday) {
		hits = append(hits, RuleHit{Code: models.RuleProtectedTime, Player: p.Key, Detail: fmt.Sprintf("%s may only play on %s", p.Name, weekdayList(rule.AllowedWeekdays))})
	}
	if len(rule.AllowedStarts) > 0 && !containsString(rule.AllowedStarts, slot.Start) {
		hits = append(hits, RuleHit{Code: models.RuleProtectedTime, Player: p.Key, Detail: fmt.Sprintf("%s may only start at %s", p.Name, strings.Join(rule.AllowedStarts, " or "))})
	}
	if starts, ok := rule.WeekdayStarts[slot.Weekday]; ok && !containsString(starts, slot.Start) {
		hits = append(hits, RuleHit{Code: models.RuleProtectedTime, Player: p.Key, Detail: fmt.Sprintf("%s may only start at %s on %s", p.Name, strings.Join(starts, " or "), models.WeekdayName(slot.Weekday))})
	}
	return hits
}

func (e *Evaluator) checkSinglesBan(p *models.Player, slot models.SlotSpec, others []string) []RuleHit {
	if slot.MatchType != models.MatchSingles || !p.SinglesBanned {
		return nil
	}
	hits := []RuleHit{{Code: models.RuleWomensSingles, Player: p.Key, Detail: fmt.Sprintf("%s may not play singles", p.Name)}}
	if len(others) == 1 {
		if other, ok := e.ref.Player(others[0]); ok && !other.SinglesBanned {
			hits = append(hits, RuleHit{Code: models.RuleMixedSingles, Player: p.Key, Detail: fmt.Sprintf("%s paired into singles with %s", p.Name, other.Name)})
		}
	}
	return hits
}

// checkMondayCore covers the per-player parts of the Monday A-court rule:
// outright bans and the female exception-partner requirement are evaluated
// against the player; group completeness lives in checkCoreCompleteness.
func (e *Evaluator) checkMondayCore(p *models.Player, slot models.SlotSpec) []RuleHit {
	if !e.ref.CoreSlot(slot) {
		return nil
	}
	rule := e.ref.MondayCore
	for _, banned := range rule.BannedPlayers {
		if banned == p.Key {
			return []RuleHit{{Code: models.RuleMonPLAMohamad, Player: p.Key, Detail: fmt.Sprintf("%s is excluded from the Monday A-court doubles", p.Name)}}
		}
	}
	return nil
}

func (e *Evaluator) checkCoreCompleteness(a models.Assignment) []RuleHit {
	if !e.ref.CoreSlot(a.Slot) {
		return nil
	}
	rule := e.ref.MondayCore

	var hits []RuleHit
	present := 0
	for _, core := range rule.CorePlayers {
		if a.HasPlayer(core) {
			present++
		}
	}
	if present < len(rule.CorePlayers)-1 {
		unexcused := false
		for _, core := range rule.CorePlayers {
			if a.HasPlayer(core) {
				continue
			}
			p, ok := e.ref.Player(core)
			if !ok || !p.OnHoliday(a.Date) {
				unexcused = true
				break
			}
		}
		if unexcused {
			hits = append(hits, RuleHit{Code: models.RuleMonPLACore, Detail: fmt.Sprintf("only %d of %d core players present on %s", present, len(rule.CorePlayers), dayKey(a.Date))})
		}
	}

	hasPartner := a.HasPlayer(rule.ExceptionPartner)
	for _, key := range a.PlayerKeys {
		p, ok := e.ref.Player(key)
		if !ok || !p.Female || key == rule.ExceptionPartner {
			continue
		}
		if !hasPartner {
			hits = append(hits, RuleHit{Code: models.RuleMonPLAWoman, Player: key, Detail: fmt.Sprintf("%s requires the designated partner in the Monday A-court doubles", p.Name)})
		}
	}
	return hits
}

func (e *Evaluator) checkRankWindow(p *models.Player, slot models.SlotSpec, others []string) []RuleHit {
	if slot.MatchType != models.MatchSingles || !p.RankKnown() {
		return nil
	}
	var hits []RuleHit
	for _, otherKey := range others {
		other, ok := e.ref.Player(otherKey)
		if !ok || !other.RankKnown() {
			continue
		}
		if diff := absInt(p.Rank - other.Rank); diff > 2 {
			hits = append(hits, RuleHit{Code: models.RuleSinglesRankWindow, Player: p.Key, Detail: fmt.Sprintf("rank gap %d between %s and %s exceeds 2", diff, p.Name, other.Name)})
		}
	}
	return hits
}

// checkDoublesBalance is advisory: sorted ranks r1≤r2≤r3≤r4 are balanced iff
// the spread stays within 2, or the group splits into two tight pairs.
func (e *Evaluator) checkDoublesBalance(a models.Assignment) []RuleHit {
	if a.Slot.MatchType != models.MatchDoubles {
		return nil
	}
	var ranks []int
	for _, key := range a.PlayerKeys {
		p, ok := e.ref.Player(key)
		if !ok || !p.RankKnown() {
			return nil
		}
		ranks = append(ranks, p.Rank)
	}
	if len(ranks) != 4 {
		return nil
	}
	sort.Ints(ranks)
	r1, r2, r3, r4 := ranks[0], ranks[1], ranks[2], ranks[3]
	if r4-r1 <= 2 {
		return nil
	}
	if r2-r1 <= 1 && r4-r3 <= 1 && r3-r2 >= 2 {
		return nil
	}
	return []RuleHit{{Code: models.RuleDoublesUnbalanced, Detail: fmt.Sprintf("doubles ranks %v are unbalanced", ranks)}}
}

func containsWeekday(days []time.Weekday, d time.Weekday) bool {
	for _, day := range days {
		if day == d {
			return true
		}
	}
	return false
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func weekdayList(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = models.WeekdayName(d)
	}
	return strings.Join(names, "/")
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
