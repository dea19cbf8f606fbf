package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

// Reference bundles the read-only lookup tables every rule check consults.
// Built once at startup; never mutated afterwards.
type Reference struct {
	Catalog     []models.SlotSpec
	SeasonStart time.Time
	SeasonEnd   time.Time

	players  map[string]*models.Player
	catalog  map[string]models.SlotSpec // key: weekday|code
	blackout map[[2]int]bool            // (month, day), any year

	MondayCore *models.MondayCoreRule
	Pairs      []models.PairRule
	Targets    []models.SeasonTarget

	Warnings []models.ParseWarning
}

func catalogKey(day time.Weekday, code string) string {
	return fmt.Sprintf("%d|%s", day, code)
}

// CatalogSlot resolves a (weekday, slot code) pair against the fixed catalog.
func (r *Reference) CatalogSlot(day time.Weekday, code string) (models.SlotSpec, bool) {
	spec, ok := r.catalog[catalogKey(day, code)]
	return spec, ok
}

// Player returns the reference record for a normalized key.
func (r *Reference) Player(key string) (*models.Player, bool) {
	p, ok := r.players[key]
	return p, ok
}

// Players returns all reference players keyed by normalized name.
func (r *Reference) Players() map[string]*models.Player {
	return r.players
}

// Blackout reports whether the date is globally blocked (any year).
func (r *Reference) Blackout(d time.Time) bool {
	return r.blackout[[2]int{int(d.Month()), d.Day()}]
}

// CoreSlot reports whether a slot instance is the designated Monday core slot.
func (r *Reference) CoreSlot(slot models.SlotSpec) bool {
	return r.MondayCore != nil && slot.Weekday == time.Monday && slot.Code == r.MondayCore.SlotCode
}

// ReferenceService assembles the immutable Reference from raw source rows.
type ReferenceService struct {
	seasonStart time.Time
	seasonEnd   time.Time
	logger      *zap.Logger
}

// NewReferenceService validates season bounds and returns the builder.
// Malformed season configuration is a startup failure, not a warning.
func NewReferenceService(seasonStart, seasonEnd time.Time, logger *zap.Logger) (*ReferenceService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seasonStart.IsZero() || seasonEnd.IsZero() || seasonEnd.Before(seasonStart) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "season bounds are missing or inverted")
	}
	return &ReferenceService{seasonStart: seasonStart, seasonEnd: seasonEnd, logger: logger}, nil
}

// Build merges the ordered sources into one Reference. Per-record problems
// become warnings; the build itself only fails on an unusable catalog.
func (s *ReferenceService) Build(prefs []models.PreferenceRow, overrides []models.OverrideRow, ranks []models.RankRow) (*Reference, error) {
	catalog := models.DefaultCatalog()
	if len(catalog) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "slot catalog is empty")
	}

	ref := &Reference{
		Catalog:     catalog,
		SeasonStart: s.seasonStart,
		SeasonEnd:   s.seasonEnd,
		players:     make(map[string]*models.Player),
		catalog:     make(map[string]models.SlotSpec, len(catalog)),
		blackout:    map[[2]int]bool{{12, 24}: true, {12, 25}: true, {12, 31}: true},
		MondayCore:  defaultMondayCore(),
		Pairs:       defaultPairs(),
		Targets:     defaultTargets(),
	}
	for _, spec := range catalog {
		ref.catalog[catalogKey(spec.Weekday, spec.Code)] = spec
	}

	// General source first, override source second: the override wins per
	// player for every field it defines.
	for i, row := range prefs {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			ref.Warnings = append(ref.Warnings, models.ParseWarning{Row: i, Field: "Spieler", Detail: "empty player name"})
			continue
		}
		key := models.NormalizeName(name)
		p := &models.Player{Name: name, Key: key, Preference: parsePreference(row.Preference)}
		p.AvailableDays, p.DaysUnconstrained = parseAvailableDays(row.AvailableDays)
		p.Holidays = append(parseBlockedRanges(row.BlockedRanges, &ref.Warnings, i), parseBlockedDays(row.BlockedDays, &ref.Warnings, i)...)
		ref.players[key] = p
	}

	for i, row := range overrides {
		key := models.NormalizeName(row.Name)
		p, ok := ref.players[key]
		if !ok {
			p = &models.Player{Name: strings.TrimSpace(row.Name), Key: key, Preference: models.PrefNone, DaysUnconstrained: true}
			ref.players[key] = p
		}
		if strings.TrimSpace(row.AvailableDays) != "" {
			p.AvailableDays, p.DaysUnconstrained = parseAvailableDays(row.AvailableDays)
		}
		if strings.TrimSpace(row.BlockedRanges) != "" || strings.TrimSpace(row.BlockedDays) != "" {
			p.Holidays = append(parseBlockedRanges(row.BlockedRanges, &ref.Warnings, i), parseBlockedDays(row.BlockedDays, &ref.Warnings, i)...)
		}
		if row.WeeklyCap > 0 {
			p.WeeklyCap = row.WeeklyCap
		}
		if row.SeasonCap > 0 {
			p.SeasonCap = row.SeasonCap
		}
	}

	for i, row := range ranks {
		key := models.NormalizeName(row.Name)
		rank, err := strconv.Atoi(strings.TrimSpace(row.Rank))
		if err != nil || rank < 1 || rank > 6 {
			ref.Warnings = append(ref.Warnings, models.ParseWarning{Row: i, Field: "Rank", Value: row.Rank, Detail: fmt.Sprintf("unrecognized rank for %s", row.Name)})
			continue
		}
		if p, ok := ref.players[key]; ok {
			p.Rank = rank
		} else {
			ref.players[key] = &models.Player{Name: strings.TrimSpace(row.Name), Key: key, Rank: rank, Preference: models.PrefNone, DaysUnconstrained: true}
		}
	}

	s.applyClubRules(ref)

	s.logger.Info("reference data built",
		zap.Int("players", len(ref.players)),
		zap.Int("catalog_slots", len(ref.Catalog)),
		zap.Int("warnings", len(ref.Warnings)),
	)
	return ref, nil
}

// applyClubRules attaches the static per-player club rules (singles bans,
// protected times, caps, rotation split) to whoever is present.
func (s *ReferenceService) applyClubRules(ref *Reference) {
	for _, name := range womenSinglesBan {
		if p, ok := ref.players[models.NormalizeName(name)]; ok {
			p.SinglesBanned = true
			p.Female = true
		}
	}
	for name, rule := range protectedTimeRules {
		if p, ok := ref.players[models.NormalizeName(name)]; ok {
			r := rule
			p.Protected = &r
		}
	}
	for name, limit := range weeklyCaps {
		if p, ok := ref.players[models.NormalizeName(name)]; ok && p.WeeklyCap == 0 {
			p.WeeklyCap = limit
		}
	}
	if p, ok := ref.players[models.NormalizeName("Thomas Grueneberg")]; ok {
		p.Rotation = &models.RotationRule{EarlyShareMin: 0.70, LateShareMax: 0.30, Tolerance: 0.0}
	}
}

func parsePreference(raw string) models.Preference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "nur einzel", "singles only", "singles-only":
		return models.PrefSinglesOnly
	case "nur doppel", "doubles only", "doubles-only":
		return models.PrefDoublesOnly
	default:
		return models.PrefNone
	}
}

// parseAvailableDays splits a delimited day-name list. An empty value leaves
// the player unconstrained, per the evaluator contract.
func parseAvailableDays(raw string) ([]time.Weekday, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	sep := ","
	if !strings.Contains(raw, ",") && strings.Contains(raw, ";") {
		sep = ";"
	}
	var days []time.Weekday
	for _, part := range strings.Split(raw, sep) {
		if d, ok := models.ParseWeekday(part); ok {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil, true
	}
	return days, false
}

// parseBlockedRanges reads "YYYY-MM-DD → YYYY-MM-DD" chunks joined by ";".
func parseBlockedRanges(raw string, warnings *[]models.ParseWarning, row int) []models.DateRange {
	var out []models.DateRange
	for _, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		parts := strings.SplitN(chunk, "→", 2)
		if len(parts) != 2 {
			*warnings = append(*warnings, models.ParseWarning{Row: row, Field: "BlockedRanges", Value: chunk, Detail: "expected start → end"})
			continue
		}
		start, err1 := parsePlanDate(parts[0])
		end, err2 := parsePlanDate(parts[1])
		if err1 != nil || err2 != nil || end.Before(start) {
			*warnings = append(*warnings, models.ParseWarning{Row: row, Field: "BlockedRanges", Value: chunk, Detail: "unparseable date range"})
			continue
		}
		out = append(out, models.DateRange{Start: start, End: end})
	}
	return out
}

// parseBlockedDays reads single dates joined by ";".
func parseBlockedDays(raw string, warnings *[]models.ParseWarning, row int) []models.DateRange {
	var out []models.DateRange
	for _, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		d, err := parsePlanDate(chunk)
		if err != nil {
			*warnings = append(*warnings, models.ParseWarning{Row: row, Field: "BlockedDays", Value: chunk, Detail: "unparseable date"})
			continue
		}
		out = append(out, models.DateRange{Start: d, End: d})
	}
	return out
}

// parsePlanDate accepts ISO and German date formats.
func parsePlanDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d, nil
	}
	return time.Parse("02.01.2006", raw)
}

// Static club rules carried over season to season.
var womenSinglesBan = []string{"Anke Ihde", "Lena Meiss", "Martina Schmidt", "Kerstin Baarck"}

var protectedTimeRules = map[string]models.ProtectedTimeRule{
	"Patrick Buehrsch": {AllowedStarts: []string{"18:00"}},
	"Frank Petermann":  {AllowedStarts: []string{"19:00", "20:00"}},
	"Matthias Duddek":  {AllowedStarts: []string{"18:00", "19:00"}},
	"Dirk Kistner": {
		AllowedWeekdays: []time.Weekday{time.Monday, time.Wednesday, time.Thursday},
		WeekdayStarts:   map[time.Weekday][]string{time.Wednesday: {"19:00"}},
	},
	"Arndt Stueber": {
		AllowedWeekdays: []time.Weekday{time.Wednesday},
		WeekdayStarts:   map[time.Weekday][]string{time.Wednesday: {"19:00"}},
	},
	"Jens Hafner": {
		AllowedWeekdays: []time.Weekday{time.Wednesday},
		WeekdayStarts:   map[time.Weekday][]string{time.Wednesday: {"19:00"}},
	},
}

var weeklyCaps = map[string]int{
	"Dirk Kistner": 2,
}

func defaultMondayCore() *models.MondayCoreRule {
	return &models.MondayCoreRule{
		SlotCode: "D20:00-120 PLA",
		CorePlayers: []string{
			models.NormalizeName("Bernd Sotzek"),
			models.NormalizeName("Juergen Hansen"),
			models.NormalizeName("Oliver Boess"),
			models.NormalizeName("Ralf Colditz"),
		},
		BannedPlayers:    []string{models.NormalizeName("Mohamad Albadry")},
		ExceptionPartner: models.NormalizeName("Kerstin Baarck"),
	}
}

func defaultPairs() []models.PairRule {
	return []models.PairRule{
		{A: models.NormalizeName("Lena Meiss"), B: models.NormalizeName("Kerstin Baarck")},
	}
}

func defaultTargets() []models.SeasonTarget {
	return []models.SeasonTarget{
		{Player: models.NormalizeName("Kerstin Baarck"), Target: 10, Code: models.RuleKerstinTarget},
	}
}
