package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvgw-tennis/winterplan-api/internal/models"
)

type seasonAnalyticsMock struct {
	distribution []models.DistributionRow
	variety      []models.VarietyRow
	pairing      []models.PairingRow
}

func (m *seasonAnalyticsMock) Distribution(ctx context.Context) ([]models.DistributionRow, error) {
	return m.distribution, nil
}

func (m *seasonAnalyticsMock) Variety(ctx context.Context) ([]models.VarietyRow, error) {
	return m.variety, nil
}

func (m *seasonAnalyticsMock) Pairing(ctx context.Context) ([]models.PairingRow, error) {
	return m.pairing, nil
}

func (m *seasonAnalyticsMock) System(ctx context.Context) models.SystemMetrics {
	return models.SystemMetrics{GeneratedAt: time.Date(2025, 10, 9, 12, 0, 0, 0, time.UTC)}
}

type seasonCostsMock struct {
	summary *models.CostSummary
}

func (m *seasonCostsMock) Season(ctx context.Context) (*models.CostSummary, error) {
	return m.summary, nil
}

func TestAnalyticsHandlerDistribution(t *testing.T) {
	mock := &seasonAnalyticsMock{distribution: []models.DistributionRow{
		{Player: "Sven Petersen", Total: 3, Singles: 1, Doubles: 2},
	}}
	handler := &AnalyticsHandler{analytics: mock}

	w, c := getRequest(t, "/analysis/distribution")
	handler.Distribution(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.DistributionRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, 3, envelope.Data[0].Total)
}

func TestAnalyticsHandlerCosts(t *testing.T) {
	handler := &AnalyticsHandler{costs: &seasonCostsMock{summary: &models.CostSummary{
		BookedHours: 13, BookedCosts: 227.5,
	}}}

	w, c := getRequest(t, "/analysis/costs")
	handler.Costs(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.CostSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.InDelta(t, 227.5, envelope.Data.BookedCosts, 1e-9)
}

func TestAnalyticsHandlerSystem(t *testing.T) {
	handler := &AnalyticsHandler{analytics: &seasonAnalyticsMock{}}

	w, c := getRequest(t, "/analysis/system")
	handler.System(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "2025-10-09")
}
