package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
	"github.com/tvgw-tennis/winterplan-api/internal/service"
	"github.com/tvgw-tennis/winterplan-api/pkg/response"
)

type seasonAnalytics interface {
	Distribution(ctx context.Context) ([]models.DistributionRow, error)
	Variety(ctx context.Context) ([]models.VarietyRow, error)
	Pairing(ctx context.Context) ([]models.PairingRow, error)
	System(ctx context.Context) models.SystemMetrics
}

type seasonCosts interface {
	Season(ctx context.Context) (*models.CostSummary, error)
}

// AnalyticsHandler exposes the season statistics endpoints.
type AnalyticsHandler struct {
	analytics seasonAnalytics
	costs     seasonCosts
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, costs *service.CostService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, costs: costs}
}

// Distribution godoc
// @Summary Per-player booking distribution over the season
// @Tags Analysis
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analysis/distribution [get]
func (h *AnalyticsHandler) Distribution(c *gin.Context) {
	rows, err := h.analytics.Distribution(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Variety godoc
// @Summary Opponent and partner variety per player
// @Tags Analysis
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analysis/variety [get]
func (h *AnalyticsHandler) Variety(c *gin.Context) {
	rows, err := h.analytics.Variety(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Pairing godoc
// @Summary Shared-court counts for every player pair
// @Tags Analysis
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analysis/pairing [get]
func (h *AnalyticsHandler) Pairing(c *gin.Context) {
	rows, err := h.analytics.Pairing(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows)
}

// Costs godoc
// @Summary Season court cost split per player
// @Tags Analysis
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analysis/costs [get]
func (h *AnalyticsHandler) Costs(c *gin.Context) {
	summary, err := h.costs.Season(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// System godoc
// @Summary Instrumentation snapshot
// @Tags Analysis
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analysis/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.analytics.System(c.Request.Context()))
}
