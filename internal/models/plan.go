package models

import "time"

// PlanRow is one schedule row as stored and exchanged with collaborators
// (CSV files, the plan table). Dates are ISO 8601, players comma separated.
type PlanRow struct {
	ID        string    `db:"id" json:"id,omitempty"`
	Date      string    `db:"match_date" json:"date"`
	Weekday   string    `db:"weekday" json:"weekday"`
	SlotCode  string    `db:"slot_code" json:"slot"`
	Type      string    `db:"match_type" json:"type"`
	Players   string    `db:"players" json:"players"`
	CreatedAt time.Time `db:"created_at" json:"-"`
}

// Assignment is a parsed, validated booking of players into one slot on one
// date. PlayerKeys hold normalized names; Players the original spellings.
type Assignment struct {
	Date       time.Time `json:"date"`
	Slot       SlotSpec  `json:"slot"`
	Players    []string  `json:"players"`
	PlayerKeys []string  `json:"-"`
	OnCatalog  bool      `json:"on_catalog"`
}

// Week returns the ISO week key of the assignment date.
func (a Assignment) Week() WeekKey {
	return WeekOf(a.Date)
}

// HasPlayer reports whether the normalized key participates in the assignment.
func (a Assignment) HasPlayer(key string) bool {
	for _, k := range a.PlayerKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SlotInstance identifies one concrete occurrence of a catalog slot.
type SlotInstance struct {
	Date time.Time `json:"date"`
	Slot SlotSpec  `json:"slot"`
}
