package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
	"github.com/tvgw-tennis/winterplan-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders audit findings and usage reports as downloadable files.
type ExportService struct {
	audit      *AuditService
	plans      planReader
	csv        csvRenderer
	pdf        pdfRenderer
	archiveDir string
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(audit *AuditService, plans planReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{audit: audit, plans: plans, csv: csv, pdf: pdf, logger: logger}
}

// ArchiveTo keeps a timestamped copy of every generated report in dir.
// An empty dir disables archiving.
func (s *ExportService) ArchiveTo(dir string) {
	s.archiveDir = dir
}

// ViolationsCSV renders every audit finding, hard and advisory, as CSV.
func (s *ExportService) ViolationsCSV(ctx context.Context) ([]byte, error) {
	dataset, _, err := s.violationsDataset(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render violations csv")
	}
	s.archive("violations", "csv", payload)
	return payload, nil
}

// ViolationsPDF renders the audit findings as a printable table.
func (s *ExportService) ViolationsPDF(ctx context.Context) ([]byte, error) {
	dataset, title, err := s.violationsDataset(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render violations pdf")
	}
	s.archive("violations", "pdf", payload)
	return payload, nil
}

// UsageCSV renders the per-player weekly usage report as CSV.
func (s *ExportService) UsageCSV(ctx context.Context) ([]byte, error) {
	report, err := s.runAudit(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(report.Usage))
	for _, u := range report.Usage {
		over := ""
		if u.OverCap {
			over = "ja"
		}
		rows = append(rows, map[string]string{
			"Spieler":  u.Player,
			"Jahr":     fmt.Sprintf("%d", u.Year),
			"Woche":    fmt.Sprintf("%d", u.Week),
			"Spiele":   fmt.Sprintf("%d", u.Matches),
			"Limit":    formatCap(u.Cap),
			"Ueberzug": over,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Spieler", "Jahr", "Woche", "Spiele", "Limit", "Ueberzug"},
		Rows:    rows,
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render usage csv")
	}
	s.archive("usage", "csv", payload)
	return payload, nil
}

func (s *ExportService) archive(name, ext string, payload []byte) {
	if s.archiveDir == "" {
		return
	}
	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		s.logger.Warn("report archive dir unavailable", zap.String("dir", s.archiveDir), zap.Error(err))
		return
	}
	file := filepath.Join(s.archiveDir, fmt.Sprintf("%s-%s.%s", name, time.Now().Format("20060102-150405"), ext))
	if err := os.WriteFile(file, payload, 0o644); err != nil {
		s.logger.Warn("report archive write failed", zap.String("file", file), zap.Error(err))
	}
}

func (s *ExportService) violationsDataset(ctx context.Context) (export.Dataset, string, error) {
	report, err := s.runAudit(ctx)
	if err != nil {
		return export.Dataset{}, "", err
	}

	all := make([]models.Violation, 0, len(report.Violations)+len(report.Advisories))
	all = append(all, report.Violations...)
	all = append(all, report.Advisories...)

	rows := make([]map[string]string, 0, len(all))
	for _, v := range all {
		severity := "hart"
		if v.Rule.Advisory() {
			severity = "Hinweis"
		}
		rows = append(rows, map[string]string{
			"Datum":     v.Date,
			"Wochentag": v.Weekday,
			"Slot":      v.Slot,
			"Typ":       v.Type,
			"Spieler":   v.Players,
			"Betroffen": v.AffectedPlayer,
			"Regel":     string(v.Rule),
			"Stufe":     severity,
			"Detail":    v.Detail,
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Datum", "Wochentag", "Slot", "Typ", "Spieler", "Betroffen", "Regel", "Stufe", "Detail"},
		Rows:    rows,
	}
	return dataset, "Regelverstoesse Winterplan", nil
}

func (s *ExportService) runAudit(ctx context.Context) (*AuditReport, error) {
	rows, err := s.plans.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	return s.audit.AuditRows(ctx, rows)
}

func formatCap(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", limit)
}
