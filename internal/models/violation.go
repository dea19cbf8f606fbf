package models

// RuleCode is the closed set of audit rule categories.
type RuleCode string

const (
	RuleIllegalSlotCode       RuleCode = "illegal_slot_code"
	RuleHeadcountErrors       RuleCode = "headcount_errors"
	RuleStartsAfter2000       RuleCode = "starts_after_20_00"
	RuleWedDoublesNot2000     RuleCode = "wed_doubles_not_20_00"
	RuleWeekdayConflicts      RuleCode = "weekday_conflicts"
	RuleHolidayConflicts      RuleCode = "holiday_conflicts"
	RuleProtectedTime         RuleCode = "protected_time_violations"
	RuleWomensSingles         RuleCode = "womens_singles"
	RuleMixedSingles          RuleCode = "mixed_singles"
	RuleMonPLAMohamad         RuleCode = "mon_pla_mohamad"
	RuleMonPLAWoman           RuleCode = "mon_pla_woman"
	RuleMonPLACore            RuleCode = "mon_pla_core"
	RuleOverlapsSameDay       RuleCode = "overlaps_same_day"
	RuleWeeklyCap             RuleCode = "weekly_cap_violations"
	RuleSeasonCap             RuleCode = "season_cap_violations"
	RuleSinglesRankWindow     RuleCode = "singles_rank_window"
	RuleMissingWeeklySlots    RuleCode = "missing_required_weekly_slots"
	RuleDuplicateWeeklySlots  RuleCode = "duplicate_weekly_slots"
	RuleDoublesUnbalanced     RuleCode = "doubles_unbalanced_advisory"
	RuleRotationShare         RuleCode = "rotation_share_advisory"
	RuleKerstinTarget         RuleCode = "kerstin_target"
	RulePairingMismatch       RuleCode = "pairing_mismatch_advisory"
)

// advisoryCodes are reported but never block legality or selection.
var advisoryCodes = map[RuleCode]bool{
	RuleDoublesUnbalanced: true,
	RuleRotationShare:     true,
	RuleKerstinTarget:     true,
	RulePairingMismatch:   true,
}

// Advisory reports whether the code is informational only.
func (c RuleCode) Advisory() bool {
	return advisoryCodes[c]
}

// Violation is one audited rule breach, immutable once emitted.
type Violation struct {
	Date           string   `json:"date"`
	Weekday        string   `json:"weekday"`
	Slot           string   `json:"slot"`
	Type           string   `json:"type"`
	Players        string   `json:"players"`
	AffectedPlayer string   `json:"affected_player,omitempty"`
	Rule           RuleCode `json:"rule"`
	Detail         string   `json:"detail"`
}

// ParseWarning records a recoverable data issue; processing continues.
type ParseWarning struct {
	Row    int    `json:"row,omitempty"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Detail string `json:"detail"`
}

// UsageRow is one line of the per-player weekly usage report.
type UsageRow struct {
	Player  string `json:"player"`
	Year    int    `json:"year"`
	Week    int    `json:"week"`
	Matches int    `json:"matches"`
	Cap     int    `json:"cap,omitempty"`
	OverCap bool   `json:"over_cap"`
}

// AuditSummary aggregates an audit run.
type AuditSummary struct {
	Assignments   int              `json:"assignments"`
	WeeksCovered  int              `json:"weeks_covered"`
	HardCount     int              `json:"hard_violations"`
	AdvisoryCount int              `json:"advisories"`
	ByRule        map[RuleCode]int `json:"by_rule"`
}
