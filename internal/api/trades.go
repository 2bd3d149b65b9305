package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal/internal/domain"
	"trading-journal/internal/metrics"
	"trading-journal/internal/storage"
)

// maxBulkTrades caps one bulk import request.
const maxBulkTrades = 5000

// TradesHandler serves journal entries and their price samples.
type TradesHandler struct {
	trades  storage.TradeStore
	samples storage.PriceSampleStore // nil disables price endpoints
	agg     *metrics.Aggregator
	log     *zap.Logger
	now     func() time.Time
}

func NewTradesHandler(trades storage.TradeStore, samples storage.PriceSampleStore, agg *metrics.Aggregator, log *zap.Logger) *TradesHandler {
	return &TradesHandler{
		trades:  trades,
		samples: samples,
		agg:     agg,
		log:     log.Named("trades"),
		now:     time.Now,
	}
}

func (h *TradesHandler) Register(g *gin.RouterGroup) {
	g.POST("/trades", h.Create)
	g.POST("/trades/bulk", h.CreateBulk)
	g.GET("/trades", h.List)
	g.GET("/trades/:trade_id", h.Get)
	g.POST("/trades/:trade_id/prices", h.AddPrices)
	g.GET("/trades/:trade_id/excursion", h.Excursion)
	g.GET("/trades/:trade_id/mark", h.Mark)
}

// Create journals one trade for the caller.
func (h *TradesHandler) Create(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", map[string]any{"error": err.Error()})
		return
	}

	t, err := req.toDomain(CurrentUserID(c), h.now().UnixMilli(), false)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := domain.ValidateTrade(t); err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.trades.Insert(c.Request.Context(), t); err != nil {
		writeError(c, h.log, err)
		return
	}

	Created(c, newTradeResponse(t))
}

type bulkTradesRequest struct {
	Trades []tradeRequest `json:"trades"`
}

// CreateBulk imports a batch atomically. One invalid trade rejects the batch.
// Creation times are offset by input index so list order follows the payload.
func (h *TradesHandler) CreateBulk(c *gin.Context) {
	var req bulkTradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", map[string]any{"error": err.Error()})
		return
	}
	if len(req.Trades) == 0 || len(req.Trades) > maxBulkTrades {
		Error(c, http.StatusBadRequest, "trades must contain between 1 and "+strconv.Itoa(maxBulkTrades)+" entries", nil)
		return
	}

	userID := CurrentUserID(c)
	base := h.now().UnixMilli()
	trades := make([]*domain.Trade, len(req.Trades))
	for i := range req.Trades {
		t, err := req.Trades[i].toDomain(userID, base+int64(i), false)
		if err != nil {
			Error(c, http.StatusBadRequest, err.Error(), map[string]any{"index": i})
			return
		}
		trades[i] = t
	}

	if _, _, err := metrics.ValidateTrades(trades, metrics.RejectBatch); err != nil {
		writeError(c, h.log, err)
		return
	}
	if err := h.trades.InsertBulk(c.Request.Context(), trades); err != nil {
		writeError(c, h.log, err)
		return
	}

	out := make([]tradeResponse, len(trades))
	for i, t := range trades {
		out[i] = newTradeResponse(t)
	}
	Created(c, out)
}

// List returns the caller's trades in journal order.
func (h *TradesHandler) List(c *gin.Context) {
	trades, err := h.trades.GetByUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	out := make([]tradeResponse, len(trades))
	for i, t := range trades {
		out[i] = newTradeResponse(t)
	}
	Ok(c, out, map[string]any{"count": len(out)})
}

func (h *TradesHandler) Get(c *gin.Context) {
	t, err := h.ownedTrade(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	Ok(c, newTradeResponse(t), nil)
}

type addPricesRequest struct {
	Samples []sampleRequest `json:"samples"`
}

// AddPrices appends price samples to one of the caller's trades.
func (h *TradesHandler) AddPrices(c *gin.Context) {
	if h.samples == nil {
		Error(c, http.StatusNotImplemented, "price samples are not enabled", nil)
		return
	}

	var req addPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", map[string]any{"error": err.Error()})
		return
	}
	if len(req.Samples) == 0 {
		Error(c, http.StatusBadRequest, "samples must not be empty", nil)
		return
	}

	t, err := h.ownedTrade(c)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	samples := make([]*domain.PriceSample, len(req.Samples))
	for i, s := range req.Samples {
		samples[i] = &domain.PriceSample{TradeID: t.TradeID, TimestampMs: s.TimestampMs, Price: s.Price}
	}
	if err := h.samples.InsertBulk(c.Request.Context(), samples); err != nil {
		writeError(c, h.log, err)
		return
	}

	Created(c, gin.H{"trade_id": t.TradeID, "inserted": len(samples)})
}

// Excursion returns MAE/MFE and the unrealized P&L path of a trade.
func (h *TradesHandler) Excursion(c *gin.Context) {
	if !h.agg.HasSampleStore() {
		Error(c, http.StatusNotImplemented, "price samples are not enabled", nil)
		return
	}

	m, path, err := h.agg.Excursion(c.Request.Context(), CurrentUserID(c), c.Param("trade_id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	Ok(c, gin.H{"excursion": m, "path": path}, map[string]any{"points": len(path)})
}

// Mark values a trade at ?at= (unix ms, default now).
func (h *TradesHandler) Mark(c *gin.Context) {
	if !h.agg.HasSampleStore() {
		Error(c, http.StatusNotImplemented, "price samples are not enabled", nil)
		return
	}

	at := h.now().UnixMilli()
	if raw := c.Query("at"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			Error(c, http.StatusBadRequest, "at must be a unix millisecond timestamp", nil)
			return
		}
		at = v
	}

	mark, err := h.agg.MarkToMarket(c.Request.Context(), CurrentUserID(c), c.Param("trade_id"), at)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	Ok(c, mark, nil)
}

// ownedTrade loads :trade_id, hiding trades of other users.
func (h *TradesHandler) ownedTrade(c *gin.Context) (*domain.Trade, error) {
	t, err := h.trades.GetByID(c.Request.Context(), c.Param("trade_id"))
	if err != nil {
		return nil, err
	}
	if t.UserID != CurrentUserID(c) {
		return nil, storage.ErrNotFound
	}
	return t, nil
}
