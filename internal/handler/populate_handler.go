package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tvgw-tennis/winterplan-api/internal/dto"
	"github.com/tvgw-tennis/winterplan-api/internal/service"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
	"github.com/tvgw-tennis/winterplan-api/pkg/response"
)

type slotFiller interface {
	Populate(ctx context.Context, req dto.PopulateRequest) (*dto.PopulateResponse, error)
	Save(ctx context.Context, req dto.SavePlanRequest) (int, error)
}

// PopulateHandler exposes the slot filler endpoints.
type PopulateHandler struct {
	service slotFiller
}

// NewPopulateHandler constructs the handler.
func NewPopulateHandler(svc *service.PopulateService) *PopulateHandler {
	return &PopulateHandler{service: svc}
}

// Populate godoc
// @Summary Fill open catalog slots with legal player groups
// @Description Builds a deterministic proposal without touching the stored plan. Skipped slots carry the blocking reason.
// @Tags Populate
// @Accept json
// @Produce json
// @Param payload body dto.PopulateRequest true "Populate options"
// @Success 200 {object} response.Envelope
// @Router /populate [post]
func (h *PopulateHandler) Populate(c *gin.Context) {
	var req dto.PopulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid populate payload"))
		return
	}
	result, err := h.service.Populate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Save godoc
// @Summary Persist a reviewed populate proposal
// @Tags Populate
// @Accept json
// @Produce json
// @Param payload body dto.SavePlanRequest true "Save proposal payload"
// @Success 201 {object} response.Envelope
// @Router /populate/save [post]
func (h *PopulateHandler) Save(c *gin.Context) {
	var req dto.SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	count, err := h.service.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"rows": count})
}
