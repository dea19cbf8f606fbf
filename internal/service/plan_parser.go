package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
)

// ParsePlan converts raw plan rows into assignments, matching each slot code
// against the catalog. Problems are recoverable warnings; rows without a
// usable date or slot code are skipped, everything else is kept so the
// auditor can judge it.
func ParsePlan(rows []models.PlanRow, ref *Reference) ([]models.Assignment, []models.ParseWarning) {
	assignments := make([]models.Assignment, 0, len(rows))
	var warnings []models.ParseWarning

	for i, row := range rows {
		date, err := parsePlanDate(row.Date)
		if err != nil {
			warnings = append(warnings, models.ParseWarning{Row: i, Field: "Datum", Value: row.Date, Detail: "unparseable date"})
			continue
		}
		if declared, ok := models.ParseWeekday(row.Weekday); ok && declared != date.Weekday() {
			warnings = append(warnings, models.ParseWarning{Row: i, Field: "Tag", Value: row.Weekday, Detail: fmt.Sprintf("declared weekday disagrees with %s", row.Date)})
		}

		code := strings.TrimSpace(row.SlotCode)
		spec, parseErr := models.ParseSlotCode(code, date.Weekday())
		if parseErr != nil {
			warnings = append(warnings, models.ParseWarning{Row: i, Field: "Slot", Value: code, Detail: string(models.RuleIllegalSlotCode)})
			continue
		}
		if catalogSpec, ok := ref.CatalogSlot(date.Weekday(), code); ok {
			spec = catalogSpec
		}

		players := models.SplitPlayers(row.Players)
		keys := make([]string, 0, len(players))
		for _, name := range players {
			key := models.NormalizeName(name)
			if _, known := ref.Player(key); !known {
				warnings = append(warnings, models.ParseWarning{Row: i, Field: "Spieler", Value: name, Detail: "unknown player name"})
			}
			keys = append(keys, key)
		}

		_, onCatalog := ref.CatalogSlot(date.Weekday(), code)
		assignments = append(assignments, models.Assignment{
			Date:       date,
			Slot:       spec,
			Players:    players,
			PlayerKeys: keys,
			OnCatalog:  onCatalog,
		})
	}
	return assignments, warnings
}

// RenderPlan converts assignments back into the row shape the collaborators
// consume, sorted by date then slot code.
func RenderPlan(assignments []models.Assignment) []models.PlanRow {
	rows := make([]models.PlanRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, models.PlanRow{
			Date:     a.Date.Format("2006-01-02"),
			Weekday:  models.WeekdayName(a.Slot.Weekday),
			SlotCode: a.Slot.Code,
			Type:     string(a.Slot.MatchType),
			Players:  strings.Join(a.Players, ", "),
		})
	}
	return rows
}

// SeasonSlots expands the catalog over every ISO week touching the season
// bounds, yielding each allowed slot instance in date-then-catalog order.
func SeasonSlots(ref *Reference) []models.SlotInstance {
	var out []models.SlotInstance
	for d := ref.SeasonStart; !d.After(ref.SeasonEnd); d = d.AddDate(0, 0, 1) {
		for _, spec := range ref.Catalog {
			if spec.Weekday == d.Weekday() {
				out = append(out, models.SlotInstance{Date: d, Slot: spec})
			}
		}
	}
	return out
}

// slotInstanceKey identifies one (date, slot) occurrence.
func slotInstanceKey(date time.Time, code string) string {
	return dayKey(date) + "|" + code
}
