// Package main runs the journal API server with its scheduled snapshot job.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"trading-journal/internal/api"
	"trading-journal/internal/benchmark"
	"trading-journal/internal/config"
	"trading-journal/internal/cronrunner"
	"trading-journal/internal/fixtures"
	"trading-journal/internal/logger"
	"trading-journal/internal/metrics"
	"trading-journal/internal/orchestrator"
	"trading-journal/internal/storage/backend"
)

// limiterIdle is how long an unused per-user limiter is kept.
const limiterIdle = 30 * time.Minute

func main() {
	configPath := flag.String("config", os.Getenv("TJ_CONFIG"), "Path to YAML config file")
	issueToken := flag.String("issue-token", "", "Print a bearer token for this user id and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	auth := api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if *issueToken != "" {
		token, exp, err := auth.Sign(*issueToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error issuing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n# expires %s\n", token, exp.UTC().Format(time.RFC3339))
		return
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(shutdown(log, run(cfg, auth, log)))
}

// shutdown logs the outcome of run, flushes the logger and returns the exit code.
func shutdown(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("server stopped", zap.Error(err))
		code = 1
	} else {
		log.Info("shutdown complete")
	}
	_ = log.Sync()
	return code
}

func run(cfg config.Config, auth *api.Authenticator, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := backend.Open(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	if cfg.App.Demo {
		if err := fixtures.Load(ctx, stores.Trades, stores.Samples); err != nil {
			log.Warn("demo fixtures not loaded", zap.Error(err))
		} else {
			log.Info("demo fixtures loaded", zap.String("user_id", fixtures.DemoUserID))
		}
	}

	presets := benchmark.Default()
	if cfg.Benchmark.PresetsFile != "" {
		presets, err = benchmark.LoadFile(cfg.Benchmark.PresetsFile)
		if err != nil {
			return err
		}
	}
	if _, err := presets.Get(cfg.Benchmark.Preset); err != nil {
		return fmt.Errorf("benchmark.preset: %w", err)
	}

	engine := cfg.EngineConfig()
	agg := metrics.NewAggregator(stores.Trades, stores.Samples, stores.Snapshots, log)

	var limiter *api.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = api.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	router := api.NewRouter(api.Deps{
		Trades:        stores.Trades,
		Samples:       stores.Samples,
		Snapshots:     stores.Snapshots,
		Aggregator:    agg,
		Presets:       presets,
		DefaultPreset: cfg.Benchmark.Preset,
		Engine:        engine,
		Auth:          auth,
		Limiter:       limiter,
		Ready:         stores.Ping,
		Logger:        log,
	})

	cron := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled {
		orch := orchestrator.New(orchestrator.Options{
			TradeStore:  stores.Trades,
			Aggregator:  agg,
			Config:      engine,
			Concurrency: cfg.Cron.Concurrency,
			Logger:      log,
		})
		if _, err := cron.Add("snapshot", cfg.Cron.Snapshot, func(ctx context.Context) {
			res, err := orch.Run(ctx)
			if err != nil {
				log.Error("snapshot run failed", zap.Error(err))
				return
			}
			log.Info("snapshot run finished",
				zap.Int("users", res.UsersProcessed),
				zap.Int("stored", res.SnapshotsStored),
				zap.Int("skipped", res.UsersSkipped),
				zap.Int("errors", len(res.Errors)))
		}); err != nil {
			return fmt.Errorf("schedule snapshot job: %w", err)
		}
	}
	if limiter != nil {
		if _, err := cron.Add("limiter-sweep", "@every 5m", func(context.Context) {
			if n := limiter.Sweep(limiterIdle); n > 0 {
				log.Debug("dropped idle rate limiters", zap.Int("count", n))
			}
		}); err != nil {
			return fmt.Errorf("schedule limiter sweep: %w", err)
		}
	}
	cron.Start()
	defer cron.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
