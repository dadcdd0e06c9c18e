// Command analyze runs one analysis from the terminal, on downloaded prices or a local file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"StockLens/internal/analyzer"
	"StockLens/internal/cache"
	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/dataset"
	"StockLens/internal/logger"
	"StockLens/internal/model"
	"StockLens/internal/pipeline"
)

var (
	cfgFlag        = flag.String("config", "configs/config.yaml", "config file")
	symbolFlag     = flag.String("symbol", "", "ticker to download, e.g. AAPL")
	fileFlag       = flag.String("file", "", "CSV or XLSX price file to analyze instead of downloading")
	modeFlag       = flag.String("mode", "regression", "regression, classification or clustering")
	startFlag      = flag.String("start", "", "first day, YYYY-MM-DD (default: -days before end)")
	endFlag        = flag.String("end", "", "last day inclusive, YYYY-MM-DD (default: today)")
	daysFlag       = flag.Int("days", 0, "lookback when -start is empty (default: config lookback_days)")
	horizonFlag    = flag.Int("horizon", -1, "days ahead to predict (default: config default_horizon)")
	targetFlag     = flag.String("target", "", "target column (default: Close)")
	thresholdFlag  = flag.Float64("threshold", 0, "classification move threshold (default: config)")
	clustersFlag   = flag.Int("clusters", 0, "cluster count (default: config)")
	autoFlag       = flag.Bool("auto", false, "search the cluster count by silhouette")
	indicatorsFlag = flag.Bool("indicators", false, "add indicator columns before building features")
	themeFlag      = flag.String("theme", "", "theme voice for the verdict")
	jsonFlag       = flag.Bool("json", false, "print the full report as JSON")
	csvFlag        = flag.String("csv", "", "also write the raw bars to this CSV path")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if (*symbolFlag == "") == (*fileFlag == "") {
		return fmt.Errorf("exactly one of -symbol or -file is required")
	}
	cfg, err := config.Load(*cfgFlag)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Log.Output = "stderr"
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}

	col := collector.NewCollector(newFetcher(cfg), cache.NewMemoryStore(), log)
	pipe := pipeline.New(pipeline.Options{
		ReducedPrecision: cfg.Pipeline.ReducedPrecision,
		DefaultTarget:    cfg.Pipeline.DefaultTarget,
		ClassThreshold:   cfg.Pipeline.ClassThreshold,
	}, log)
	svc := analyzer.NewService(col, pipe, cfg.ModelOptions(), log, analyzer.WithMaxClusters(cfg.Model.MaxClusters))

	req, err := buildRequest(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.DataSource.Timeout+time.Minute)
	defer cancel()

	if *csvFlag != "" {
		if err := dumpCSV(ctx, col, req); err != nil {
			return err
		}
	}

	report, err := svc.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("%s error: %w", model.KindOf(err), err)
	}
	if *jsonFlag {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(report)
	return nil
}

func buildRequest(cfg *config.Config, log zerolog.Logger) (analyzer.Request, error) {
	req := analyzer.Request{
		Mode:           model.AnalysisMode(*modeFlag),
		Target:         *targetFlag,
		Horizon:        cfg.Pipeline.DefaultHorizon,
		Threshold:      *thresholdFlag,
		WithIndicators: *indicatorsFlag,
		Clusters:       *clustersFlag,
		AutoClusters:   *autoFlag,
		Theme:          *themeFlag,
	}
	if *horizonFlag >= 0 {
		req.Horizon = *horizonFlag
	}

	if *fileFlag != "" {
		f, err := os.Open(*fileFlag)
		if err != nil {
			return req, err
		}
		defer f.Close()
		series, err := dataset.Read(f.Name(), f)
		if err != nil {
			return req, err
		}
		log.Debug().Str("file", f.Name()).Int("rows", len(series.Bars)).Msg("file loaded")
		req.Upload = series
		req.Symbol = series.Symbol
		return req, nil
	}

	req.Symbol = *symbolFlag
	end := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	if *endFlag != "" {
		t, err := time.Parse(time.DateOnly, *endFlag)
		if err != nil {
			return req, fmt.Errorf("-end: %w", err)
		}
		end = t.AddDate(0, 0, 1)
	}
	days := *daysFlag
	if days <= 0 {
		days = cfg.Pipeline.LookbackDays
	}
	start := end.AddDate(0, 0, -days)
	if *startFlag != "" {
		t, err := time.Parse(time.DateOnly, *startFlag)
		if err != nil {
			return req, fmt.Errorf("-start: %w", err)
		}
		start = t
	}
	req.Start, req.End = start, end
	return req, nil
}

func dumpCSV(ctx context.Context, col *collector.Collector, req analyzer.Request) error {
	var bars []model.OHLCV
	if req.Upload != nil {
		bars = req.Upload.Bars
	} else {
		series, err := col.Load(ctx, req.Symbol, req.Start, req.End, false)
		if err != nil {
			return err
		}
		bars = series.Bars
	}
	f, err := os.Create(*csvFlag)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(f, bars); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	f := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	if y, ok := f.(*collector.YahooFetcher); ok {
		y.Adjusted = cfg.DataSource.Adjusted
	}
	return f
}

func printReport(r *analyzer.Report) {
	fmt.Printf("%s  %s  %s (%s)\n", r.Symbol, r.Mode, r.ModelName, r.Source)
	fmt.Printf("rows %d  horizon %d", r.Rows, r.Horizon)
	if r.Target != "" {
		fmt.Printf("  target %s", r.Target)
	}
	fmt.Println()

	names := make([]string, 0, len(r.Metrics.Values))
	for n := range r.Metrics.Values {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-12s %.4f\n", n, r.Metrics.Values[n])
	}

	if len(r.Coefficients) > 0 {
		fmt.Println("coefficients:")
		features := make([]string, 0, len(r.Coefficients))
		for f := range r.Coefficients {
			features = append(features, f)
		}
		sort.Strings(features)
		for _, f := range features {
			fmt.Printf("  %-20s %+.6f\n", f, r.Coefficients[f])
		}
	}
	if r.Clusters != nil {
		parts := make([]string, 0, len(r.Clusters.Counts))
		for _, id := range r.Clusters.SortedClusterIDs() {
			parts = append(parts, fmt.Sprintf("#%d=%d", id, r.Clusters.Counts[id]))
		}
		fmt.Printf("clusters k=%d  %s\n", r.Clusters.K, strings.Join(parts, " "))
	}
	if r.Message != "" {
		fmt.Println()
		fmt.Println(r.Message)
	}
}
