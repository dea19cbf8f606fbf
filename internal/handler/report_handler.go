package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tvgw-tennis/winterplan-api/internal/service"
	"github.com/tvgw-tennis/winterplan-api/pkg/response"
)

type reportExporter interface {
	ViolationsCSV(ctx context.Context) ([]byte, error)
	ViolationsPDF(ctx context.Context) ([]byte, error)
	UsageCSV(ctx context.Context) ([]byte, error)
}

// ReportHandler streams audit findings and usage reports as files.
type ReportHandler struct {
	service reportExporter
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc *service.ExportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// ViolationsCSV godoc
// @Summary Download all audit findings as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file
// @Router /reports/violations.csv [get]
func (h *ReportHandler) ViolationsCSV(c *gin.Context) {
	payload, err := h.service.ViolationsCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="violations.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

// ViolationsPDF godoc
// @Summary Download all audit findings as PDF
// @Tags Reports
// @Produce application/pdf
// @Success 200 {file} file
// @Router /reports/violations.pdf [get]
func (h *ReportHandler) ViolationsPDF(c *gin.Context) {
	payload, err := h.service.ViolationsPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="violations.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// UsageCSV godoc
// @Summary Download the per-player weekly usage report as CSV
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file
// @Router /reports/usage.csv [get]
func (h *ReportHandler) UsageCSV(c *gin.Context) {
	payload, err := h.service.UsageCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="usage.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}
