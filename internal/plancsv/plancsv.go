// Package plancsv reads and writes the CSV shapes the club exchanges:
// the weekly plan, the player preference sources and the rank table.
package plancsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
)

// Column headers as they appear in the club's sheets.
var (
	planHeaders       = []string{"Datum", "Wochentag", "Slot", "Typ", "Spieler"}
	preferenceHeaders = []string{"Spieler", "Wunschtage", "Praeferenz", "Urlaub", "GesperrteTage", "Notizen"}
	overrideHeaders   = []string{"Spieler", "Wunschtage", "Urlaub", "GesperrteTage", "WochenLimit", "SaisonLimit"}
	rankHeaders       = []string{"Spieler", "Staerke"}
)

// ReadPlan decodes plan rows. Header order is fixed; a malformed header is
// an error, malformed data rows surface later as parse warnings.
func ReadPlan(r io.Reader) ([]models.PlanRow, error) {
	records, err := readAll(r, planHeaders)
	if err != nil {
		return nil, err
	}
	rows := make([]models.PlanRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.PlanRow{
			Date:     rec[0],
			Weekday:  rec[1],
			SlotCode: rec[2],
			Type:     rec[3],
			Players:  rec[4],
		})
	}
	return rows, nil
}

// WritePlan encodes plan rows with the canonical header.
func WritePlan(w io.Writer, rows []models.PlanRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(planHeaders); err != nil {
		return fmt.Errorf("write plan header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Date, row.Weekday, row.SlotCode, row.Type, row.Players}); err != nil {
			return fmt.Errorf("write plan row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadPreferences decodes the general preference source.
func ReadPreferences(r io.Reader) ([]models.PreferenceRow, error) {
	records, err := readAll(r, preferenceHeaders)
	if err != nil {
		return nil, err
	}
	rows := make([]models.PreferenceRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.PreferenceRow{
			Name:          rec[0],
			AvailableDays: rec[1],
			Preference:    rec[2],
			BlockedRanges: rec[3],
			BlockedDays:   rec[4],
			Notes:         rec[5],
		})
	}
	return rows, nil
}

// ReadOverrides decodes the override source. Cap columns may be empty.
func ReadOverrides(r io.Reader) ([]models.OverrideRow, error) {
	records, err := readAll(r, overrideHeaders)
	if err != nil {
		return nil, err
	}
	rows := make([]models.OverrideRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.OverrideRow{
			Name:          rec[0],
			AvailableDays: rec[1],
			BlockedRanges: rec[2],
			BlockedDays:   rec[3],
			WeeklyCap:     parseOptionalInt(rec[4]),
			SeasonCap:     parseOptionalInt(rec[5]),
		})
	}
	return rows, nil
}

// ReadRanks decodes the rank table.
func ReadRanks(r io.Reader) ([]models.RankRow, error) {
	records, err := readAll(r, rankHeaders)
	if err != nil {
		return nil, err
	}
	rows := make([]models.RankRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.RankRow{Name: rec[0], Rank: rec[1]})
	}
	return rows, nil
}

func readAll(r io.Reader, headers []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = len(headers)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, want := range headers {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, fmt.Errorf("unexpected column %d: got %q, want %q", i+1, header[i], want)
		}
	}

	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseOptionalInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
