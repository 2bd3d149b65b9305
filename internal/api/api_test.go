package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/domain"
	"trading-journal/internal/metrics"
	"trading-journal/internal/storage/memory"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

type testServer struct {
	router    *gin.Engine
	auth      *Authenticator
	trades    *memory.TradeStore
	samples   *memory.PriceSampleStore
	snapshots *memory.MetricSnapshotStore
}

func newTestServer(t *testing.T, opts ...func(*Deps)) *testServer {
	t.Helper()
	s := &testServer{
		auth:      NewAuthenticator(testSecret, "trading-journal", time.Hour),
		trades:    memory.NewTradeStore(),
		samples:   memory.NewPriceSampleStore(),
		snapshots: memory.NewMetricSnapshotStore(),
	}
	d := Deps{
		Trades:        s.trades,
		Samples:       s.samples,
		Snapshots:     s.snapshots,
		Aggregator:    metrics.NewAggregator(s.trades, s.samples, s.snapshots, zap.NewNop()),
		Presets:       benchmark.Default(),
		DefaultPreset: benchmark.DefaultPreset,
		Engine:        domain.DefaultEngineConfig(),
		Auth:          s.auth,
		Logger:        zap.NewNop(),
	}
	for _, o := range opts {
		o(&d)
	}
	s.router = NewRouter(d)
	return s
}

// do sends a request as user; an empty user sends no token.
func (s *testServer) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, _, err := s.auth.Sign(user)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyz_NotReady(t *testing.T) {
	s := newTestServer(t, func(d *Deps) {
		d.Ready = func(context.Context) error { return errors.New("postgres down") }
	})

	w := s.do(t, http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decodeEnvelope(t, w, nil)
	assert.Equal(t, "postgres down", env.Meta["error"])
}

func TestAuth_RejectsMissingAndForeignTokens(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/trades", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	foreign, _, err := NewAuthenticator("other-secret", "trading-journal", time.Hour).Sign("u1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/trades", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticator_SignVerify(t *testing.T) {
	a := NewAuthenticator(testSecret, "trading-journal", time.Hour)

	token, exp, err := a.Sign("u1")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	uid, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	_, err = NewAuthenticator(testSecret, "someone-else", time.Hour).Verify(token)
	assert.Error(t, err, "issuer mismatch must fail")

	_, _, err = a.Sign("")
	assert.Error(t, err)
}

func TestAuthenticator_Expired(t *testing.T) {
	a := NewAuthenticator(testSecret, "trading-journal", time.Minute)
	a.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := a.Sign("u1")
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.Verify(token)
	assert.Error(t, err)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestRateLimiter_PerUser(t *testing.T) {
	s := newTestServer(t, func(d *Deps) {
		d.Limiter = NewRateLimiter(0.001, 1)
	})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/trades", "u1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodGet, "/api/v1/trades", "u1", nil).Code)
	// Other users have their own bucket
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/trades", "u2", nil).Code)
}

func TestRateLimiter_Sweep(t *testing.T) {
	l := NewRateLimiter(1, 1)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(10 * time.Minute)
	l.Allow("b")

	assert.Equal(t, 1, l.Sweep(5*time.Minute))
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, "b")
}
