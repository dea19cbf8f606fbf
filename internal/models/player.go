package models

import "time"

// Preference narrows a player to one match type.
type Preference string

const (
	PrefNone        Preference = "keine Präferenz"
	PrefSinglesOnly Preference = "nur Einzel"
	PrefDoublesOnly Preference = "nur Doppel"
)

// Allows reports whether the preference admits the given match type.
func (p Preference) Allows(t MatchType) bool {
	switch p {
	case PrefSinglesOnly:
		return t == MatchSingles
	case PrefDoublesOnly:
		return t == MatchDoubles
	default:
		return true
	}
}

// DateRange is an inclusive date interval.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// ProtectedTimeRule restricts the start times a player may be booked at.
// Empty slices leave the dimension unconstrained. WeekdayStarts narrows the
// allowed starts further on specific weekdays.
type ProtectedTimeRule struct {
	AllowedStarts   []string                  `json:"allowed_starts,omitempty"`
	AllowedWeekdays []time.Weekday            `json:"allowed_weekdays,omitempty"`
	WeekdayStarts   map[time.Weekday][]string `json:"weekday_starts,omitempty"`
}

// RotationRule is the advisory 70/30 split: early (18:00/19:00) starts should
// stay at or above EarlyShareMin of a player's season total, Wednesday 20:00
// starts at or below LateShareMax. Evaluated over full history at audit time.
type RotationRule struct {
	EarlyShareMin float64 `json:"early_share_min"`
	LateShareMax  float64 `json:"late_share_max"`
	Tolerance     float64 `json:"tolerance"`
}

// Player is the reference record for one club member. Rank 0 means unknown.
type Player struct {
	Name              string             `json:"name"`
	Key               string             `json:"key"`
	Rank              int                `json:"rank"`
	Female            bool               `json:"female"`
	SinglesBanned     bool               `json:"singles_banned"`
	Preference        Preference         `json:"preference"`
	AvailableDays     []time.Weekday     `json:"available_days,omitempty"`
	DaysUnconstrained bool               `json:"days_unconstrained"`
	Holidays          []DateRange        `json:"holidays,omitempty"`
	WeeklyCap         int                `json:"weekly_cap,omitempty"`
	SeasonCap         int                `json:"season_cap,omitempty"`
	Protected         *ProtectedTimeRule `json:"protected,omitempty"`
	Rotation          *RotationRule      `json:"rotation,omitempty"`
}

// RankKnown reports whether the player has a usable rank.
func (p Player) RankKnown() bool {
	return p.Rank >= 1 && p.Rank <= 6
}

// AvailableOn reports weekday availability under the override-then-general
// precedence already resolved into AvailableDays.
func (p Player) AvailableOn(day time.Weekday) bool {
	if p.DaysUnconstrained {
		return true
	}
	for _, d := range p.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// OnHoliday reports whether the date falls into any blocked range.
func (p Player) OnHoliday(d time.Time) bool {
	for _, r := range p.Holidays {
		if r.Contains(d) {
			return true
		}
	}
	return false
}

// MondayCoreRule governs the designated Monday doubles A-court slot: the core
// group must be nearly complete, certain players are banned outright, and
// female players require the exception partner to be present.
type MondayCoreRule struct {
	SlotCode         string   `json:"slot_code"`
	CorePlayers      []string `json:"core_players"`
	BannedPlayers    []string `json:"banned_players"`
	ExceptionPartner string   `json:"exception_partner"`
}

// PairRule requires two players to always play on the same date and start.
type PairRule struct {
	A string `json:"a"`
	B string `json:"b"`
}

// SeasonTarget is a per-player season match target advisory.
type SeasonTarget struct {
	Player string   `json:"player"`
	Target int      `json:"target"`
	Code   RuleCode `json:"code"`
}

// UsageCounter tracks per-player booking counts, grouped by ISO week.
type UsageCounter struct {
	Season int             `json:"season"`
	Weeks  map[WeekKey]int `json:"-"`
}

// InWeek returns the count for one ISO week.
func (u *UsageCounter) InWeek(k WeekKey) int {
	if u == nil || u.Weeks == nil {
		return 0
	}
	return u.Weeks[k]
}
