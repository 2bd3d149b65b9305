// Package main renders a performance report for one journal owner.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"trading-journal/internal/benchmark"
	"trading-journal/internal/config"
	"trading-journal/internal/fixtures"
	"trading-journal/internal/logger"
	"trading-journal/internal/metrics"
	"trading-journal/internal/reporting"
	"trading-journal/internal/storage/backend"
)

func main() {
	configPath := flag.String("config", os.Getenv("TJ_CONFIG"), "Path to YAML config file")
	userID := flag.String("user", "", "Journal owner to report on (defaults to the demo user with --use-fixtures)")
	preset := flag.String("preset", "", "Benchmark preset (defaults to benchmark.preset)")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory demo trades instead of the configured storage")
	fixedClock := flag.Bool("fixed-clock", false, "Stamp the report with a fixed time for reproducible output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	fail := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, format, args...)
		_ = log.Sync()
		os.Exit(1)
	}

	if *useFixtures && *userID == "" {
		*userID = fixtures.DemoUserID
	}
	if *userID == "" {
		fail("Error: --user is required unless --use-fixtures is set\n")
	}
	if *preset == "" {
		*preset = cfg.Benchmark.Preset
	}

	files, err := run(context.Background(), cfg, log, *userID, *preset, *outputDir, *useFixtures, *fixedClock)
	if err != nil {
		fail("Error generating report: %v\n", err)
	}

	fmt.Println("Report generated successfully:")
	for _, f := range files {
		fmt.Printf("  - %s\n", f)
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger, userID, preset, outputDir string, useFixtures, fixedClock bool) ([]string, error) {
	var (
		stores *backend.Stores
		err    error
	)
	if useFixtures {
		stores = backend.Memory()
		if err := fixtures.Load(ctx, stores.Trades, stores.Samples); err != nil {
			return nil, err
		}
	} else {
		stores, err = backend.Open(ctx, cfg.Storage, log)
		if err != nil {
			return nil, err
		}
	}
	defer stores.Close()

	presets := benchmark.Default()
	if cfg.Benchmark.PresetsFile != "" {
		presets, err = benchmark.LoadFile(cfg.Benchmark.PresetsFile)
		if err != nil {
			return nil, err
		}
	}

	agg := metrics.NewAggregator(stores.Trades, stores.Samples, stores.Snapshots, log)
	gen := reporting.NewGenerator(agg, presets)
	if fixedClock {
		fixed := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
		gen = gen.WithClock(func() time.Time { return fixed })
	}

	r, err := gen.Generate(ctx, userID, preset, cfg.EngineConfig())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	outputs := map[string][]byte{
		"PERFORMANCE_REPORT.md": []byte(reporting.RenderMarkdown(r)),
		"METRICS.csv":           []byte(reporting.RenderCSV(r.Results)),
		"EQUITY_CURVE.csv":      []byte(reporting.RenderDrawdownCSV(r.Drawdown)),
		"report.json":           report,
	}
	order := []string{"PERFORMANCE_REPORT.md", "METRICS.csv", "EQUITY_CURVE.csv", "report.json"}

	files := make([]string, 0, len(order))
	for _, name := range order {
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, outputs[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}
