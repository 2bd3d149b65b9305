// Package config loads service configuration from a YAML file, a .env file
// and TJ_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"trading-journal/internal/domain"
)

// EnvPrefix is prepended to every environment variable, e.g. TJ_SERVER_HTTP_ADDR.
const EnvPrefix = "TJ"

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark"`
	Cron      CronConfig      `mapstructure:"cron"`
}

type AppConfig struct {
	Env  string `mapstructure:"env"`
	Demo bool   `mapstructure:"demo"` // seed fixture trades into memory storage
}

type ServerConfig struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendDatabase = "database" // trades in Postgres, samples and snapshots in ClickHouse
)

type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	ClickhouseDSN string `mapstructure:"clickhouse_dsn"`
	Migrate       bool   `mapstructure:"migrate"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type EngineConfig struct {
	RiskFreeRate     float64   `mapstructure:"risk_free_rate"`
	InitialCapital   float64   `mapstructure:"initial_capital"`
	Periodicity      string    `mapstructure:"periodicity"`
	BenchmarkReturns []float64 `mapstructure:"benchmark_returns"`
	RuinThreshold    float64   `mapstructure:"ruin_threshold"`
	RiskPerTrade     float64   `mapstructure:"risk_per_trade"`
	MinRatioSamples  int       `mapstructure:"min_ratio_samples"`
}

type BenchmarkConfig struct {
	Preset      string `mapstructure:"preset"`
	PresetsFile string `mapstructure:"presets_file"` // replaces the embedded presets when set
}

type CronConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Snapshot    string `mapstructure:"snapshot"`
	Concurrency int    `mapstructure:"concurrency"`
}

// Load reads configuration. A .env file in the working directory is applied
// to the environment first when present. An empty path skips the YAML file.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.demo", false)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.clickhouse_dsn", "")
	v.SetDefault("storage.migrate", true)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "trading-journal")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("engine.risk_free_rate", 0.0)
	v.SetDefault("engine.initial_capital", 0.0)
	v.SetDefault("engine.periodicity", string(domain.PeriodDaily))
	v.SetDefault("engine.ruin_threshold", domain.DefaultRuinThreshold)
	v.SetDefault("engine.risk_per_trade", domain.DefaultRiskPerTrade)
	v.SetDefault("engine.min_ratio_samples", domain.DefaultMinRatioSamples)
	v.SetDefault("benchmark.preset", "default")
	v.SetDefault("benchmark.presets_file", "")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.snapshot", "0 0 * * *")
	v.SetDefault("cron.concurrency", 4)
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendDatabase:
		if c.Storage.PostgresDSN == "" || c.Storage.ClickhouseDSN == "" {
			return errors.New("config: database backend needs storage.postgres_dsn and storage.clickhouse_dsn")
		}
	default:
		return fmt.Errorf("config: unknown storage.backend %q", c.Storage.Backend)
	}
	if !domain.Periodicity(c.Engine.Periodicity).Valid() {
		return fmt.Errorf("config: unknown engine.periodicity %q", c.Engine.Periodicity)
	}
	if c.Engine.InitialCapital < 0 {
		return errors.New("config: engine.initial_capital must be >= 0")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("config: rate_limit.rps and rate_limit.burst must be > 0")
	}
	return nil
}

// ValidateServer adds the checks only the API server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	return nil
}

// EngineConfig converts the engine section into the engine's parameters.
func (c Config) EngineConfig() domain.EngineConfig {
	return domain.EngineConfig{
		RiskFreeRate:     c.Engine.RiskFreeRate,
		BenchmarkReturns: c.Engine.BenchmarkReturns,
		InitialCapital:   c.Engine.InitialCapital,
		Periodicity:      domain.Periodicity(c.Engine.Periodicity),
		RuinThreshold:    c.Engine.RuinThreshold,
		RiskPerTrade:     c.Engine.RiskPerTrade,
		MinRatioSamples:  c.Engine.MinRatioSamples,
	}.WithDefaults()
}
