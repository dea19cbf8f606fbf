package models

// PreferenceRow is one player record from the general preferences source.
type PreferenceRow struct {
	Name          string `db:"name" json:"name"`
	AvailableDays string `db:"available_days" json:"available_days"`
	Preference    string `db:"preference" json:"preference"`
	BlockedRanges string `db:"blocked_ranges" json:"blocked_ranges"`
	BlockedDays   string `db:"blocked_days" json:"blocked_days"`
	Notes         string `db:"notes" json:"notes"`
}

// OverrideRow is one record from the override source; it wins over the
// general source for every field it defines.
type OverrideRow struct {
	Name          string `db:"name" json:"name"`
	AvailableDays string `db:"available_days" json:"available_days"`
	BlockedRanges string `db:"blocked_ranges" json:"blocked_ranges"`
	BlockedDays   string `db:"blocked_days" json:"blocked_days"`
	WeeklyCap     int    `db:"weekly_cap" json:"weekly_cap"`
	SeasonCap     int    `db:"season_cap" json:"season_cap"`
}

// RankRow is one entry of the rank table. Rank stays raw here; validation
// happens when the reference tables are built.
type RankRow struct {
	Name string `db:"name" json:"name"`
	Rank string `db:"rank" json:"rank"`
}
