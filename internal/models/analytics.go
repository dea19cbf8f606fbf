package models

import "time"

// DistributionRow aggregates one player's bookings across the season.
type DistributionRow struct {
	Player         string  `json:"player"`
	Total          int     `json:"total"`
	Singles        int     `json:"singles"`
	Doubles        int     `json:"doubles"`
	EarlyStarts    int     `json:"early_starts"`
	LateStarts     int     `json:"late_starts"`
	EarlyShare     float64 `json:"early_share"`
	WeeksPlayed    int     `json:"weeks_played"`
	MaxPerWeek     int     `json:"max_per_week"`
	SeasonCap      int     `json:"season_cap,omitempty"`
	CapUtilization float64 `json:"cap_utilization,omitempty"`
}

// VarietyRow reports how many distinct opponents and partners a player met.
type VarietyRow struct {
	Player            string  `json:"player"`
	Matches           int     `json:"matches"`
	DistinctOpponents int     `json:"distinct_opponents"`
	DistinctPartners  int     `json:"distinct_partners"`
	RepeatRate        float64 `json:"repeat_rate"`
}

// PairingRow counts how often two players appeared in the same booking.
type PairingRow struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
	Shared  int    `json:"shared"`
}

// CostRow is one player's share of the season court costs.
type CostRow struct {
	Player      string  `json:"player"`
	Hours       float64 `json:"hours"`
	DirectCosts float64 `json:"direct_costs"`
	SharedCosts float64 `json:"shared_costs"`
	TotalCosts  float64 `json:"total_costs"`
}

// CostSummary aggregates the season cost report.
type CostSummary struct {
	HourlyRate  float64   `json:"hourly_rate"`
	BookedHours float64   `json:"booked_hours"`
	UnusedHours float64   `json:"unused_hours"`
	BookedCosts float64   `json:"booked_costs"`
	UnusedCosts float64   `json:"unused_costs"`
	TotalCosts  float64   `json:"total_costs"`
	Rows        []CostRow `json:"rows"`
}

// SystemMetrics represents system level analytics captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	AuditsRun                uint64    `json:"audits_run"`
	SlotsFilled              uint64    `json:"slots_filled"`
	SlotsSkipped             uint64    `json:"slots_skipped"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
