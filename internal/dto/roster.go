package dto

import "github.com/tvgw-tennis/winterplan-api/internal/models"

// PlanRowInput is one raw plan line as submitted by a client.
type PlanRowInput struct {
	Date    string `json:"date" validate:"required"`
	Weekday string `json:"weekday"`
	Slot    string `json:"slot" validate:"required"`
	Type    string `json:"type"`
	Players string `json:"players" validate:"required"`
}

// AuditRequest submits a full plan for rule checking.
type AuditRequest struct {
	Rows []PlanRowInput `json:"rows" validate:"required,min=1,dive"`
}

// AuditResponse returns findings grouped by severity plus the usage report.
type AuditResponse struct {
	Summary    models.AuditSummary   `json:"summary"`
	Violations []models.Violation    `json:"violations"`
	Advisories []models.Violation    `json:"advisories"`
	Usage      []models.UsageRow     `json:"usage"`
	Warnings   []models.ParseWarning `json:"warnings,omitempty"`
}

// PopulateRequest instructs the slot filler to extend or rebuild the plan.
type PopulateRequest struct {
	MaxSlots    int  `json:"maxSlots" validate:"omitempty,min=1"`
	FromScratch bool `json:"fromScratch"`
}

// FilledSlot is one booking proposed by the slot filler.
type FilledSlot struct {
	Date    string   `json:"date"`
	Weekday string   `json:"weekday"`
	Slot    string   `json:"slot"`
	Type    string   `json:"type"`
	Players []string `json:"players"`
}

// SkippedSlot is one slot the filler left open, with the blocking reason.
type SkippedSlot struct {
	Date   string `json:"date"`
	Slot   string `json:"slot"`
	Reason string `json:"reason"`
}

// PopulateResponse returns the proposal for review before persisting.
type PopulateResponse struct {
	ProposalID string        `json:"proposalId"`
	Filled     []FilledSlot  `json:"filled"`
	Skipped    []SkippedSlot `json:"skipped"`
	Remaining  int           `json:"remaining"`
}

// SavePlanRequest persists a reviewed populate proposal.
type SavePlanRequest struct {
	ProposalID string `json:"proposalId" validate:"required,uuid4"`
}

// WeekPlanResponse is the plan view for one ISO week.
type WeekPlanResponse struct {
	Year    int              `json:"year"`
	Week    int              `json:"week"`
	Rows    []models.PlanRow `json:"rows"`
	Missing []string         `json:"missing,omitempty"`
}

// PlayerMatchesResponse lists all bookings of one player.
type PlayerMatchesResponse struct {
	Player  string           `json:"player"`
	Total   int              `json:"total"`
	Singles int              `json:"singles"`
	Doubles int              `json:"doubles"`
	Rows    []models.PlanRow `json:"rows"`
}
