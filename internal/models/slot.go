package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MatchType distinguishes singles and doubles slots.
type MatchType string

const (
	MatchSingles MatchType = "Einzel"
	MatchDoubles MatchType = "Doppel"
)

// Headcount returns the number of players a match type requires.
func (t MatchType) Headcount() int {
	if t == MatchDoubles {
		return 4
	}
	return 2
}

// SlotSpec is one entry of the fixed weekly slot catalog.
type SlotSpec struct {
	Code      string       `json:"code"`
	Weekday   time.Weekday `json:"weekday"`
	Start     string       `json:"start"`
	Minutes   int          `json:"minutes"`
	Court     string       `json:"court"`
	MatchType MatchType    `json:"match_type"`
}

// Headcount returns the required player count for the slot.
func (s SlotSpec) Headcount() int {
	return s.MatchType.Headcount()
}

// slotCodeRe is the authoritative shape for slot codes, e.g. "D20:00-120 PLA".
var slotCodeRe = regexp.MustCompile(`^([DE])(\d\d:\d\d)-(\d+)\s+PL([AB])$`)

// ParseSlotCode decodes a slot code string. The weekday is not part of the
// code and must be supplied by the caller.
func ParseSlotCode(code string, weekday time.Weekday) (SlotSpec, error) {
	m := slotCodeRe.FindStringSubmatch(code)
	if m == nil {
		return SlotSpec{}, fmt.Errorf("slot code %q does not match ^([DE])(\\d\\d:\\d\\d)-(\\d+) PL([AB])$", code)
	}
	spec := SlotSpec{
		Code:    code,
		Weekday: weekday,
		Start:   m[2],
		Court:   m[4],
	}
	if m[1] == "D" {
		spec.MatchType = MatchDoubles
	} else {
		spec.MatchType = MatchSingles
	}
	minutes, err := strconv.Atoi(m[3])
	if err != nil {
		return SlotSpec{}, fmt.Errorf("slot code %q has an unusable duration: %w", code, err)
	}
	spec.Minutes = minutes
	return spec, nil
}

// DefaultCatalog returns the nine allowed weekly slots.
func DefaultCatalog() []SlotSpec {
	return []SlotSpec{
		{Code: "D20:00-120 PLA", Weekday: time.Monday, Start: "20:00", Minutes: 120, Court: "A", MatchType: MatchDoubles},
		{Code: "D20:00-120 PLB", Weekday: time.Monday, Start: "20:00", Minutes: 120, Court: "B", MatchType: MatchDoubles},
		{Code: "E18:00-60 PLA", Weekday: time.Wednesday, Start: "18:00", Minutes: 60, Court: "A", MatchType: MatchSingles},
		{Code: "E19:00-60 PLA", Weekday: time.Wednesday, Start: "19:00", Minutes: 60, Court: "A", MatchType: MatchSingles},
		{Code: "E19:00-60 PLB", Weekday: time.Wednesday, Start: "19:00", Minutes: 60, Court: "B", MatchType: MatchSingles},
		{Code: "D20:00-90 PLA", Weekday: time.Wednesday, Start: "20:00", Minutes: 90, Court: "A", MatchType: MatchDoubles},
		{Code: "D20:00-90 PLB", Weekday: time.Wednesday, Start: "20:00", Minutes: 90, Court: "B", MatchType: MatchDoubles},
		{Code: "E20:00-90 PLA", Weekday: time.Thursday, Start: "20:00", Minutes: 90, Court: "A", MatchType: MatchSingles},
		{Code: "E20:00-90 PLB", Weekday: time.Thursday, Start: "20:00", Minutes: 90, Court: "B", MatchType: MatchSingles},
	}
}

var weekdayNames = map[string]time.Weekday{
	"montag": time.Monday, "monday": time.Monday,
	"dienstag": time.Tuesday, "tuesday": time.Tuesday,
	"mittwoch": time.Wednesday, "wednesday": time.Wednesday,
	"donnerstag": time.Thursday, "thursday": time.Thursday,
	"freitag": time.Friday, "friday": time.Friday,
	"samstag": time.Saturday, "sonnabend": time.Saturday, "saturday": time.Saturday,
	"sonntag": time.Sunday, "sunday": time.Sunday,
}

var germanWeekday = map[time.Weekday]string{
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
	time.Sunday:    "Sonntag",
}

// ParseWeekday accepts German and English day names.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// WeekdayName renders a weekday in the plan's German day naming.
func WeekdayName(d time.Weekday) string {
	return germanWeekday[d]
}

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// WeekOf derives the ISO week key for a date.
func WeekOf(d time.Time) WeekKey {
	y, w := d.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// Before reports whether k sorts before other.
func (k WeekKey) Before(other WeekKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Week < other.Week
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%d-W%02d", k.Year, k.Week)
}
