package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
)

func seedClosedTrades(t *testing.T, s *testServer, user string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/trades/bulk", user, map[string]any{
		"trades": []any{
			closedTradeBody("EURUSD", "1.10", "1.12", 86_400_000),
			closedTradeBody("EURUSD", "1.12", "1.11", 2*86_400_000),
			closedTradeBody("EURUSD", "1.11", "1.14", 3*86_400_000),
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestGetMetrics(t *testing.T) {
	s := newTestServer(t)
	seedClosedTrades(t, s, "u1")

	var got metricsResponse
	w := s.do(t, http.MethodGet, "/api/v1/metrics", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeEnvelope(t, w, &got)

	assert.Equal(t, benchmark.DefaultPreset, got.Preset)
	assert.Equal(t, 3, got.Metrics.ClosedTrades)
	assert.InDelta(t, 40, got.Metrics.Essential.NetPnL, 1e-6)
	assert.InDelta(t, 2.0/3.0, got.Metrics.Essential.WinRate, 1e-9)
	require.NotEmpty(t, got.Results)
	assert.Equal(t, benchmark.MetricNetPnL, got.Results[0].ID)
	assert.Nil(t, got.Results[0].Trend, "no snapshot, no trend")
	require.NotNil(t, got.Assessment)

	// Another user sees an empty journal
	decodeEnvelope(t, s.do(t, http.MethodGet, "/api/v1/metrics", "u2", nil), &got)
	assert.Equal(t, 0, got.Metrics.TotalTrades)
}

func TestGetMetrics_UnknownPreset(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/metrics?preset=yolo", "u1", nil).Code)
}

func TestGetMetrics_TrendAfterSnapshot(t *testing.T) {
	s := newTestServer(t)
	seedClosedTrades(t, s, "u1")

	w := s.do(t, http.MethodPost, "/api/v1/metrics/snapshots", "u1", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var snap snapshotResponse
	decodeEnvelope(t, w, &snap)
	assert.Len(t, snap.SnapshotID, 64)
	assert.Equal(t, 3, snap.Metrics.ClosedTrades)

	var got metricsResponse
	decodeEnvelope(t, s.do(t, http.MethodGet, "/api/v1/metrics", "u1", nil), &got)
	require.NotEmpty(t, got.Results)
	require.NotNil(t, got.Results[0].Trend)
	assert.Equal(t, domain.TrendFlat, *got.Results[0].Trend)

	var list []snapshotResponse
	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/api/v1/metrics/snapshots", "u1", nil), &list)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 1, env.Meta["count"])
}

func TestCreateSnapshot_NoTrades(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodPost, "/api/v1/metrics/snapshots", "u1", nil).Code)
}

func TestDrawdown(t *testing.T) {
	s := newTestServer(t)
	seedClosedTrades(t, s, "u1")

	var points []domain.DrawdownPoint
	w := s.do(t, http.MethodGet, "/api/v1/metrics/drawdown", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeEnvelope(t, w, &points)
	require.Len(t, points, 3)
	assert.False(t, points[0].InDrawdown)
	assert.True(t, points[1].InDrawdown)
}

func TestCompute_Stateless(t *testing.T) {
	s := newTestServer(t)

	badDirection := closedTradeBody("EURUSD", "1.1", "1.2", 1000)
	badDirection["trade_id"] = "bad-dir"
	badDirection["direction"] = "UP"
	badPrice := closedTradeBody("EURUSD", "-1", "1.2", 1000)
	badPrice["trade_id"] = "bad-price"

	body := map[string]any{
		"trades": []any{
			closedTradeBody("EURUSD", "1.10", "1.12", 86_400_000),
			badDirection,
			closedTradeBody("EURUSD", "1.12", "1.11", 2*86_400_000),
			badPrice,
		},
		"config": map[string]any{"initial_capital": 1000, "periodicity": "daily"},
		"preset": "conservative",
	}

	w := s.do(t, http.MethodPost, "/api/v1/metrics/compute", "u1", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got metricsResponse
	decodeEnvelope(t, w, &got)

	assert.Equal(t, "conservative", got.Preset)
	assert.Equal(t, 2, got.Metrics.ClosedTrades)
	require.Len(t, got.Rejected, 2)
	assert.Equal(t, 1, got.Rejected[0].Index)
	assert.Equal(t, "direction", got.Rejected[0].Field)
	assert.Equal(t, 3, got.Rejected[1].Index)
	assert.Equal(t, "bad-price", got.Rejected[1].TradeID)
	assert.Equal(t, "entry_price", got.Rejected[1].Field)

	// Nothing was stored
	trades, err := s.trades.GetByUser(t.Context(), "u1")
	require.NoError(t, err)
	assert.Empty(t, trades)

	body["policy"] = "reject"
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/metrics/compute", "u1", body).Code)

	body["policy"] = "maybe"
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/metrics/compute", "u1", body).Code)
}

func TestCompute_RejectPolicyValidation(t *testing.T) {
	s := newTestServer(t)

	bad := closedTradeBody("EURUSD", "1.1", "1.2", 1000)
	bad["fees"] = "-3"
	w := s.do(t, http.MethodPost, "/api/v1/metrics/compute", "u1", map[string]any{
		"trades": []any{closedTradeBody("EURUSD", "1.1", "1.2", 1000), bad},
		"policy": "reject",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w, nil)
	assert.Contains(t, env.Message, "trade 1")
}

func TestReport(t *testing.T) {
	s := newTestServer(t)
	seedClosedTrades(t, s, "u1")

	w := s.do(t, http.MethodGet, "/api/v1/metrics/report", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown"))
	assert.Contains(t, w.Body.String(), "# Trading Performance Report")

	w = s.do(t, http.MethodGet, "/api/v1/metrics/report?format=csv", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "metric_id,"), w.Body.String())

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/metrics/report?format=json", "u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/metrics/report?format=pdf", "u1", nil).Code)
}

func TestBenchmarks(t *testing.T) {
	s := newTestServer(t)

	var presets []presetResponse
	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/api/v1/benchmarks", "u1", nil), &presets)
	require.Len(t, presets, 3)
	assert.Equal(t, "aggressive", presets[0].Name)
	assert.Equal(t, benchmark.MetricNetPnL, presets[0].Metrics[0].ID)
	assert.Equal(t, benchmark.DefaultPreset, env.Meta["default"])
}
