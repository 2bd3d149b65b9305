package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
	"trading-journal/internal/insight"
	"trading-journal/internal/metrics"
	"trading-journal/internal/observability"
	"trading-journal/internal/reporting"
	"trading-journal/internal/storage"
)

// MetricsHandler serves computed metrics, snapshots and reports.
type MetricsHandler struct {
	agg           *metrics.Aggregator
	snapshots     storage.MetricSnapshotStore // nil disables snapshot endpoints
	presets       benchmark.Presets
	defaultPreset string
	engine        domain.EngineConfig
	reports       *reporting.Generator
	log           *zap.Logger
	now           func() time.Time
}

func NewMetricsHandler(
	agg *metrics.Aggregator,
	snapshots storage.MetricSnapshotStore,
	presets benchmark.Presets,
	defaultPreset string,
	engine domain.EngineConfig,
	log *zap.Logger,
) *MetricsHandler {
	return &MetricsHandler{
		agg:           agg,
		snapshots:     snapshots,
		presets:       presets,
		defaultPreset: defaultPreset,
		engine:        engine.WithDefaults(),
		reports:       reporting.NewGenerator(agg, presets),
		log:           log.Named("metrics"),
		now:           time.Now,
	}
}

func (h *MetricsHandler) Register(g *gin.RouterGroup) {
	g.GET("/metrics", h.Get)
	g.GET("/metrics/drawdown", h.Drawdown)
	g.GET("/metrics/excursions", h.Excursions)
	g.GET("/metrics/snapshots", h.Snapshots)
	g.POST("/metrics/snapshots", h.CreateSnapshot)
	g.POST("/metrics/compute", h.Compute)
	g.GET("/metrics/report", h.Report)
	g.GET("/benchmarks", h.Benchmarks)
}

type metricsResponse struct {
	Preset     string                `json:"preset"`
	Metrics    *domain.AllMetrics    `json:"metrics"`
	Results    []domain.MetricResult `json:"results"`
	Assessment *insight.Assessment   `json:"assessment"`
	Rejected   []rejectionResponse   `json:"rejected,omitempty"`
}

func (h *MetricsHandler) preset(c *gin.Context) string {
	return c.DefaultQuery("preset", h.defaultPreset)
}

// Get computes the caller's metrics and classifies them against ?preset=.
// Trends compare against the latest stored snapshot.
func (h *MetricsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	userID := CurrentUserID(c)
	preset := h.preset(c)

	table, err := h.presets.Get(preset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	um, err := h.agg.ComputeForUser(ctx, userID, h.engine)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	prev, err := h.agg.PreviousSnapshot(ctx, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	var previous *domain.AllMetrics
	if prev != nil {
		previous = prev.ToAllMetrics()
	}

	Ok(c, classify(preset, table, um.Metrics, previous, um.Rejected), nil)
}

func classify(preset string, table benchmark.Table, m, previous *domain.AllMetrics, rejected []metrics.Rejection) metricsResponse {
	results := table.Results(m, previous)
	return metricsResponse{
		Preset:  preset,
		Metrics: m,
		Results: results,
		Assessment: insight.NewEvaluator(table).Evaluate(insight.Input{
			Metrics:  m,
			Results:  results,
			Rejected: len(rejected),
		}),
		Rejected: newRejections(rejected),
	}
}

func (h *MetricsHandler) Drawdown(c *gin.Context) {
	points, err := h.agg.DrawdownForUser(c.Request.Context(), CurrentUserID(c), h.engine)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	Ok(c, points, map[string]any{"count": len(points)})
}

func (h *MetricsHandler) Excursions(c *gin.Context) {
	if !h.agg.HasSampleStore() {
		Error(c, http.StatusNotImplemented, "price samples are not enabled", nil)
		return
	}
	stats, err := h.agg.ExcursionStatsForUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	Ok(c, stats, nil)
}

// Snapshots lists the caller's stored snapshots, oldest first.
func (h *MetricsHandler) Snapshots(c *gin.Context) {
	if h.snapshots == nil {
		Error(c, http.StatusNotImplemented, "snapshots are not enabled", nil)
		return
	}
	snaps, err := h.snapshots.GetByUser(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	out := make([]snapshotResponse, len(snaps))
	for i, s := range snaps {
		out[i] = newSnapshotResponse(s)
	}
	Ok(c, out, map[string]any{"count": len(out)})
}

// CreateSnapshot stores a snapshot of the caller's metrics stamped now.
func (h *MetricsHandler) CreateSnapshot(c *gin.Context) {
	if h.snapshots == nil {
		Error(c, http.StatusNotImplemented, "snapshots are not enabled", nil)
		return
	}
	snap, err := h.agg.ComputeAndStore(c.Request.Context(), CurrentUserID(c), h.engine, h.now().UnixMilli())
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	Created(c, newSnapshotResponse(snap))
}

type engineConfigRequest struct {
	RiskFreeRate     float64   `json:"risk_free_rate"`
	BenchmarkReturns []float64 `json:"benchmark_returns"`
	InitialCapital   float64   `json:"initial_capital"`
	Periodicity      string    `json:"periodicity"`
	RuinThreshold    float64   `json:"ruin_threshold"`
	RiskPerTrade     float64   `json:"risk_per_trade"`
	MinRatioSamples  int       `json:"min_ratio_samples"`
}

type computeRequest struct {
	Trades   []tradeRequest       `json:"trades"`
	Config   *engineConfigRequest `json:"config"`
	Preset   string               `json:"preset"`
	Policy   string               `json:"policy"`   // exclude (default) | reject
	Previous *domain.AllMetrics   `json:"previous"` // optional, enables trends
}

// Compute runs the engine over a trades payload without touching storage.
func (h *MetricsHandler) Compute(c *gin.Context) {
	start := time.Now()

	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", map[string]any{"error": err.Error()})
		return
	}

	policy := metrics.ExcludeInvalid
	switch strings.ToLower(req.Policy) {
	case "", "exclude":
	case "reject":
		policy = metrics.RejectBatch
	default:
		Error(c, http.StatusBadRequest, "policy must be exclude or reject", nil)
		return
	}

	cfg := h.engine
	if req.Config != nil {
		if req.Config.Periodicity != "" && !domain.Periodicity(req.Config.Periodicity).Valid() {
			Error(c, http.StatusBadRequest, "unknown periodicity "+req.Config.Periodicity, nil)
			return
		}
		cfg = domain.EngineConfig{
			RiskFreeRate:     req.Config.RiskFreeRate,
			BenchmarkReturns: req.Config.BenchmarkReturns,
			InitialCapital:   req.Config.InitialCapital,
			Periodicity:      domain.Periodicity(req.Config.Periodicity),
			RuinThreshold:    req.Config.RuinThreshold,
			RiskPerTrade:     req.Config.RiskPerTrade,
			MinRatioSamples:  req.Config.MinRatioSamples,
		}.WithDefaults()
	}

	preset := req.Preset
	if preset == "" {
		preset = h.defaultPreset
	}
	table, err := h.presets.Get(preset)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	// Parse failures are rejections like any other invalid record.
	userID := CurrentUserID(c)
	parsed := make([]*domain.Trade, 0, len(req.Trades))
	index := make([]int, 0, len(req.Trades))
	var rejected []metrics.Rejection
	for i := range req.Trades {
		t, err := req.Trades[i].toDomain(userID, int64(i), true)
		if err != nil {
			if policy == metrics.RejectBatch {
				observability.RecordComputation("stateless", "rejected", 0, time.Since(start))
				Error(c, http.StatusBadRequest, err.Error(), map[string]any{"index": i})
				return
			}
			rejected = append(rejected, metrics.Rejection{Index: i, TradeID: req.Trades[i].TradeID, Err: err})
			continue
		}
		parsed = append(parsed, t)
		index = append(index, i)
	}

	valid, invalid, err := metrics.ValidateTrades(parsed, policy)
	if err != nil {
		observability.RecordComputation("stateless", "rejected", 0, time.Since(start))
		writeError(c, h.log, err)
		return
	}
	for _, r := range invalid {
		r.Index = index[r.Index]
		rejected = append(rejected, r)
	}

	m := metrics.Compute(valid, cfg)
	observability.RecordComputation("stateless", "success", len(valid), time.Since(start))

	Ok(c, classify(preset, table, m, req.Previous, rejected), nil)
}

// Report renders the caller's performance report as ?format=markdown|csv|json.
func (h *MetricsHandler) Report(c *gin.Context) {
	format := c.DefaultQuery("format", "markdown")
	switch format {
	case "markdown", "csv", "json":
	default:
		Error(c, http.StatusBadRequest, "format must be markdown, csv or json", nil)
		return
	}

	r, err := h.reports.Generate(c.Request.Context(), CurrentUserID(c), h.preset(c), h.engine)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	switch format {
	case "csv":
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(reporting.RenderCSV(r.Results)))
	case "json":
		Ok(c, r, nil)
	default:
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(reporting.RenderMarkdown(r)))
	}
}

type presetResponse struct {
	Name    string               `json:"name"`
	Metrics []thresholdsResponse `json:"metrics"`
}

type thresholdsResponse struct {
	ID        string              `json:"id"`
	Label     string              `json:"label"`
	Good      float64             `json:"good"`
	Warning   float64             `json:"warning"`
	Direction benchmark.Direction `json:"direction"`
	Format    domain.Format       `json:"format"`
}

// Benchmarks lists the loaded presets and their thresholds.
func (h *MetricsHandler) Benchmarks(c *gin.Context) {
	names := h.presets.Names()
	out := make([]presetResponse, 0, len(names))
	for _, name := range names {
		table := h.presets[name]
		p := presetResponse{Name: name}
		for _, id := range table.IDs() {
			th := table[id]
			p.Metrics = append(p.Metrics, thresholdsResponse{
				ID:        id,
				Label:     th.Label,
				Good:      th.Good,
				Warning:   th.Warning,
				Direction: th.Direction,
				Format:    th.Format,
			})
		}
		out = append(out, p)
	}
	Ok(c, out, map[string]any{"default": h.defaultPreset})
}
