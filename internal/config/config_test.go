package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/domain"
)

func TestLoad_DefaultsWithEnv(t *testing.T) {
	t.Setenv("TJ_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("TJ_SERVER_HTTP_ADDR", ":9999")
	t.Setenv("TJ_ENGINE_PERIODICITY", "weekly")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.HTTPAddr)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "default", cfg.Benchmark.Preset)
	assert.Equal(t, "0 0 * * *", cfg.Cron.Snapshot)

	ec := cfg.EngineConfig()
	assert.Equal(t, domain.PeriodWeekly, ec.Periodicity)
	assert.Equal(t, domain.DefaultRuinThreshold, ec.RuinThreshold)
	assert.Equal(t, domain.DefaultMinRatioSamples, ec.MinRatioSamples)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
auth:
  jwt_secret: from-file
engine:
  risk_free_rate: 0.04
  initial_capital: 25000
  periodicity: monthly
  benchmark_returns: [0.01, -0.02, 0.015]
benchmark:
  preset: conservative
rate_limit:
  rps: 2
  burst: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, "conservative", cfg.Benchmark.Preset)
	assert.InDelta(t, 2.0, cfg.RateLimit.RPS, 1e-9)

	ec := cfg.EngineConfig()
	assert.InDelta(t, 0.04, ec.RiskFreeRate, 1e-9)
	assert.InDelta(t, 25000, ec.InitialCapital, 1e-9)
	assert.Equal(t, domain.PeriodMonthly, ec.Periodicity)
	assert.Equal(t, []float64{0.01, -0.02, 0.015}, ec.BenchmarkReturns)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("TJ_AUTH_JWT_SECRET", "s3cret")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage:   StorageConfig{Backend: BackendMemory},
			Auth:      AuthConfig{JWTSecret: "x"},
			Engine:    EngineConfig{Periodicity: "daily"},
			RateLimit: RateLimitConfig{Enabled: true, RPS: 1, Burst: 1},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*Config){
		"unknown backend": func(c *Config) { c.Storage.Backend = "s3" },
		"database no dsn": func(c *Config) { c.Storage.Backend = BackendDatabase },
		"periodicity":     func(c *Config) { c.Engine.Periodicity = "hourly" },
		"capital":         func(c *Config) { c.Engine.InitialCapital = -1 },
		"rate limit":      func(c *Config) { c.RateLimit.Burst = 0 },
	}
	for name, mutate := range tests {
		c := valid()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestValidateServer_NeedsSecret(t *testing.T) {
	c := Config{
		Storage: StorageConfig{Backend: BackendMemory},
		Engine:  EngineConfig{Periodicity: "daily"},
	}
	require.NoError(t, c.Validate())
	assert.Error(t, c.ValidateServer())

	c.Auth.JWTSecret = "x"
	assert.NoError(t, c.ValidateServer())
}
