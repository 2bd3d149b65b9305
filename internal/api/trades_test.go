package api

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/domain"
	"trading-journal/internal/idhash"
	"trading-journal/internal/metrics"
)

func closedTradeBody(symbol, entry, exit string, exitMs int64) map[string]any {
	return map[string]any{
		"symbol":       symbol,
		"direction":    "BUY",
		"market_type":  "forex",
		"entry_price":  entry,
		"exit_price":   exit,
		"quantity":     "1000",
		"exit_time_ms": exitMs,
	}
}

func TestCreateTrade_Manual(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/trades", "u1", closedTradeBody("EURUSD", "1.1000", "1.1050", 1000))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got tradeResponse
	decodeEnvelope(t, w, &got)
	assert.Len(t, got.TradeID, 36)
	assert.Equal(t, domain.DirectionLong, got.Direction)
	assert.Equal(t, domain.MarketForex, got.MarketType)
	require.True(t, got.PnL.Valid)
	assert.True(t, got.PnL.Decimal.Equal(decimal.RequireFromString("5")), "pnl %s", got.PnL.Decimal)
	assert.Nil(t, got.Broker)

	stored, err := s.trades.GetByID(t.Context(), got.TradeID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
}

func TestCreateTrade_BrokerImportIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	body := closedTradeBody("XAUUSD", "2000", "2010", 1000)
	body["account_id"] = "acc-1"
	body["broker"] = map[string]any{"platform": "mt5", "ticket": "778899", "magic": 42}

	w := s.do(t, http.MethodPost, "/api/v1/trades", "u1", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got tradeResponse
	decodeEnvelope(t, w, &got)
	assert.Equal(t, idhash.ComputeTradeID("u1", "acc-1", "MT5", "778899"), got.TradeID)
	require.NotNil(t, got.Broker)
	assert.Equal(t, "MT5", got.Broker.Platform)

	w = s.do(t, http.MethodPost, "/api/v1/trades", "u1", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateTrade_Invalid(t *testing.T) {
	s := newTestServer(t)

	bad := closedTradeBody("EURUSD", "1.1", "1.2", 1000)
	bad["direction"] = "SIDEWAYS"
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/trades", "u1", bad).Code)

	bad = closedTradeBody("EURUSD", "0", "1.2", 1000)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/trades", "u1", bad).Code)

	bad = closedTradeBody("EURUSD", "1.1", "1.2", 1000)
	bad["broker"] = map[string]any{"platform": "NINJA", "ticket": "1"}
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/trades", "u1", bad).Code)
}

func TestCreateBulk_AtomicAndOrdered(t *testing.T) {
	s := newTestServer(t)

	bad := closedTradeBody("GBPUSD", "1.25", "1.26", 2000)
	bad["quantity"] = "-1"
	w := s.do(t, http.MethodPost, "/api/v1/trades/bulk", "u1", map[string]any{
		"trades": []any{closedTradeBody("EURUSD", "1.1", "1.2", 1000), bad},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var list []tradeResponse
	decodeEnvelope(t, s.do(t, http.MethodGet, "/api/v1/trades", "u1", nil), &list)
	assert.Empty(t, list, "rejected batch must store nothing")

	w = s.do(t, http.MethodPost, "/api/v1/trades/bulk", "u1", map[string]any{
		"trades": []any{
			closedTradeBody("EURUSD", "1.1", "1.2", 1000),
			closedTradeBody("GBPUSD", "1.25", "1.26", 2000),
			closedTradeBody("USDJPY", "150", "149", 3000),
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	env := decodeEnvelope(t, s.do(t, http.MethodGet, "/api/v1/trades", "u1", nil), &list)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"EURUSD", "GBPUSD", "USDJPY"}, []string{list[0].Symbol, list[1].Symbol, list[2].Symbol})
	assert.EqualValues(t, 3, env.Meta["count"])
}

func TestGetTrade_HidesOtherUsers(t *testing.T) {
	s := newTestServer(t)

	var created tradeResponse
	decodeEnvelope(t, s.do(t, http.MethodPost, "/api/v1/trades", "u1", closedTradeBody("EURUSD", "1.1", "1.2", 1000)), &created)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/trades/"+created.TradeID, "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/trades/"+created.TradeID, "u2", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/trades/missing", "u1", nil).Code)
}

func TestPricesExcursionAndMark(t *testing.T) {
	s := newTestServer(t)

	var created tradeResponse
	decodeEnvelope(t, s.do(t, http.MethodPost, "/api/v1/trades", "u1", map[string]any{
		"symbol":      "BTCUSD",
		"direction":   "LONG",
		"entry_price": "100",
		"quantity":    "2",
	}), &created)
	base := "/api/v1/trades/" + created.TradeID

	// No samples yet
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodGet, base+"/mark?at=1500", "u1", nil).Code)

	samples := map[string]any{"samples": []any{
		map[string]any{"timestamp_ms": 1000, "price": "98"},
		map[string]any{"timestamp_ms": 2000, "price": "105"},
		map[string]any{"timestamp_ms": 3000, "price": "103"},
	}}
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, base+"/prices", "u2", samples).Code)
	w := s.do(t, http.MethodPost, base+"/prices", "u1", samples)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, base+"/prices", "u1", samples).Code)

	var exc struct {
		Excursion domain.ExcursionMetrics `json:"excursion"`
		Path      []domain.RunningPnL     `json:"path"`
	}
	w = s.do(t, http.MethodGet, base+"/excursion", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeEnvelope(t, w, &exc)
	assert.InDelta(t, -4, exc.Excursion.MAE, 1e-9)
	assert.InDelta(t, 10, exc.Excursion.MFE, 1e-9)
	assert.Len(t, exc.Path, 3)

	var mark metrics.MarkPrice
	w = s.do(t, http.MethodGet, base+"/mark?at=2500", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeEnvelope(t, w, &mark)
	assert.True(t, mark.Price.Equal(decimal.RequireFromString("105")))
	assert.True(t, mark.UnrealizedPnL.Equal(decimal.RequireFromString("10")))

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, base+"/mark?at=soon", "u1", nil).Code)
}

func TestPriceEndpoints_DisabledWithoutSampleStore(t *testing.T) {
	s := newTestServer(t, func(d *Deps) {
		d.Samples = nil
		d.Aggregator = metrics.NewAggregator(d.Trades, nil, d.Snapshots, nil)
	})

	var created tradeResponse
	decodeEnvelope(t, s.do(t, http.MethodPost, "/api/v1/trades", "u1", closedTradeBody("EURUSD", "1.1", "1.2", 1000)), &created)
	base := "/api/v1/trades/" + created.TradeID

	assert.Equal(t, http.StatusNotImplemented, s.do(t, http.MethodGet, base+"/excursion", "u1", nil).Code)
	assert.Equal(t, http.StatusNotImplemented, s.do(t, http.MethodGet, base+"/mark", "u1", nil).Code)
	assert.Equal(t, http.StatusNotImplemented, s.do(t, http.MethodPost, base+"/prices", "u1", map[string]any{
		"samples": []any{map[string]any{"timestamp_ms": 1, "price": "1"}},
	}).Code)
}
