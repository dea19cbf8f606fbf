package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tvgw-tennis/winterplan-api/internal/dto"
	"github.com/tvgw-tennis/winterplan-api/internal/service"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
	"github.com/tvgw-tennis/winterplan-api/pkg/response"
)

type planViewer interface {
	Week(ctx context.Context, year, week int) (*dto.WeekPlanResponse, error)
	PlayerMatches(ctx context.Context, name string) (*dto.PlayerMatchesResponse, error)
}

// PlanHandler exposes read-only plan views.
type PlanHandler struct {
	service planViewer
}

// NewPlanHandler constructs the handler.
func NewPlanHandler(svc *service.PlanService) *PlanHandler {
	return &PlanHandler{service: svc}
}

// Week godoc
// @Summary Plan rows of one ISO week, including open catalog slots
// @Tags Plan
// @Produce json
// @Param year query int true "ISO year"
// @Param week query int true "ISO week"
// @Success 200 {object} response.Envelope
// @Router /plan/weeks [get]
func (h *PlanHandler) Week(c *gin.Context) {
	year, err1 := strconv.Atoi(c.Query("year"))
	week, err2 := strconv.Atoi(c.Query("week"))
	if err1 != nil || err2 != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and week query parameters are required"))
		return
	}
	result, err := h.service.Week(c.Request.Context(), year, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// WeekByPath godoc
// @Summary Plan rows of one ISO week, path variant
// @Tags Plan
// @Produce json
// @Param year path int true "ISO year"
// @Param week path int true "ISO week"
// @Success 200 {object} response.Envelope
// @Router /plan/weeks/{year}/{week} [get]
func (h *PlanHandler) WeekByPath(c *gin.Context) {
	year, err1 := strconv.Atoi(c.Param("year"))
	week, err2 := strconv.Atoi(c.Param("week"))
	if err1 != nil || err2 != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year and week must be numeric"))
		return
	}
	result, err := h.service.Week(c.Request.Context(), year, week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// PlayerMatches godoc
// @Summary Every booking of one player
// @Tags Plan
// @Produce json
// @Param name path string true "Player name"
// @Success 200 {object} response.Envelope
// @Router /plan/players/{name} [get]
func (h *PlanHandler) PlayerMatches(c *gin.Context) {
	result, err := h.service.PlayerMatches(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
