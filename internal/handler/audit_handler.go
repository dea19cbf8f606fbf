package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tvgw-tennis/winterplan-api/internal/dto"
	"github.com/tvgw-tennis/winterplan-api/internal/models"
	"github.com/tvgw-tennis/winterplan-api/internal/service"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
	"github.com/tvgw-tennis/winterplan-api/pkg/response"
)

const maxAuditRows = 2048

type planAuditor interface {
	AuditRows(ctx context.Context, rows []models.PlanRow) (*service.AuditReport, error)
}

type storedPlanLister interface {
	ListAll(ctx context.Context) ([]models.PlanRow, error)
}

// AuditHandler exposes the plan audit endpoint.
type AuditHandler struct {
	service planAuditor
	plans   storedPlanLister
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(svc *service.AuditService, plans storedPlanLister) *AuditHandler {
	return &AuditHandler{service: svc, plans: plans}
}

// Audit godoc
// @Summary Audit a plan against every club rule
// @Description Returns hard violations, advisories, parse warnings and the weekly usage report. The submitted plan is never modified.
// @Tags Audit
// @Accept json
// @Produce json
// @Param payload body dto.AuditRequest false "Plan rows to audit"
// @Param source query string false "Set to db to audit the stored plan"
// @Success 200 {object} response.Envelope
// @Router /audit [post]
func (h *AuditHandler) Audit(c *gin.Context) {
	var rows []models.PlanRow

	if c.Query("source") == "db" {
		stored, err := h.plans.ListAll(c.Request.Context())
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stored plan"))
			return
		}
		rows = stored
	} else {
		var req dto.AuditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid audit payload"))
			return
		}
		if len(req.Rows) > maxAuditRows {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "plan exceeds supported row count"))
			return
		}
		rows = make([]models.PlanRow, 0, len(req.Rows))
		for _, r := range req.Rows {
			rows = append(rows, models.PlanRow{
				Date:     r.Date,
				Weekday:  r.Weekday,
				SlotCode: r.Slot,
				Type:     r.Type,
				Players:  r.Players,
			})
		}
	}

	report, err := h.service.AuditRows(c.Request.Context(), rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AuditResponse{
		Summary:    report.Summary,
		Violations: report.Violations,
		Advisories: report.Advisories,
		Usage:      report.Usage,
		Warnings:   report.Warnings,
	})
}
