package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvgw-tennis/winterplan-api/internal/dto"
	appErrors "github.com/tvgw-tennis/winterplan-api/pkg/errors"
)

type slotFillerMock struct {
	result  *dto.PopulateResponse
	saveErr error
	saved   int
	lastReq dto.PopulateRequest
}

func (m *slotFillerMock) Populate(ctx context.Context, req dto.PopulateRequest) (*dto.PopulateResponse, error) {
	m.lastReq = req
	return m.result, nil
}

func (m *slotFillerMock) Save(ctx context.Context, req dto.SavePlanRequest) (int, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	return m.saved, nil
}

func TestPopulateHandlerForwardsOptions(t *testing.T) {
	mock := &slotFillerMock{result: &dto.PopulateResponse{
		ProposalID: "7f6f3a1e-9f0f-4a74-8e06-3f8b4b2c9d10",
		Filled: []dto.FilledSlot{
			{Date: "2025-10-09", Weekday: "Donnerstag", Slot: "E20:00-90 PLA", Type: "Einzel", Players: []string{"Holger Witt", "Sven Petersen"}},
		},
		Skipped:   []dto.SkippedSlot{{Date: "2025-10-09", Slot: "E20:00-90 PLB", Reason: "not enough available players"}},
		Remaining: 7,
	}}
	handler := &PopulateHandler{service: mock}

	w, c := postJSON(t, "/populate", dto.PopulateRequest{MaxSlots: 4, FromScratch: true})
	handler.Populate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, mock.lastReq.MaxSlots)
	assert.True(t, mock.lastReq.FromScratch)

	var envelope struct {
		Data dto.PopulateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Filled, 1)
	assert.Equal(t, 7, envelope.Data.Remaining)
}

func TestPopulateHandlerRejectsInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &PopulateHandler{service: &slotFillerMock{}}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/populate", bytes.NewReader([]byte(`{"maxSlots":"vier"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Populate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPopulateHandlerSaveCreated(t *testing.T) {
	mock := &slotFillerMock{saved: 9}
	handler := &PopulateHandler{service: mock}

	w, c := postJSON(t, "/populate/save", dto.SavePlanRequest{ProposalID: "7f6f3a1e-9f0f-4a74-8e06-3f8b4b2c9d10"})
	handler.Save(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var envelope struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 9, envelope.Data["rows"])
}

func TestPopulateHandlerSaveUnknownProposal(t *testing.T) {
	mock := &slotFillerMock{saveErr: appErrors.Clone(appErrors.ErrNotFound, "proposal expired or unknown")}
	handler := &PopulateHandler{service: mock}

	w, c := postJSON(t, "/populate/save", dto.SavePlanRequest{ProposalID: "7f6f3a1e-9f0f-4a74-8e06-3f8b4b2c9d10"})
	handler.Save(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
