package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"StockLens/internal/analyzer"
	"StockLens/internal/api"
	"StockLens/internal/cache"
	"StockLens/internal/collector"
	"StockLens/internal/config"
	"StockLens/internal/logger"
	"StockLens/internal/metrics"
	"StockLens/internal/notifier"
	"StockLens/internal/pipeline"
	"StockLens/internal/recorder"
	"StockLens/internal/scheduler"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog().Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		bootLog().Fatal().Err(err).Msg("config validation")
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		bootLog().Fatal().Err(err).Msg("init logger")
	}
	log.Info().Str("config", cfgPath).Msg("StockLens starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rec *metrics.Recorder
	if !cfg.Metrics.Disabled {
		rec = metrics.New()
	}

	store := newStore(ctx, cfg, log)

	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")
	col := collector.NewCollector(fetcher, store, log)
	col.Metrics = rec

	// Run history
	var history recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			history = sr
		}
	}
	defer history.Close()
	col.Recorder = history

	pipe := pipeline.New(pipeline.Options{
		ReducedPrecision: cfg.Pipeline.ReducedPrecision,
		DefaultTarget:    cfg.Pipeline.DefaultTarget,
		ClassThreshold:   cfg.Pipeline.ClassThreshold,
	}, log.With().Str("component", "pipeline").Logger())

	svc := analyzer.NewService(col, pipe, cfg.ModelOptions(), log,
		analyzer.WithRecorder(history),
		analyzer.WithMetrics(rec),
		analyzer.WithMaxClusters(cfg.Model.MaxClusters),
	)

	// Optional Telegram bot with the scheduled watchlist refresh
	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.APIBase, cfg.Proxy, log)
		sched := scheduler.NewScheduler(ctx, svc, tn, scheduler.Config{
			RefreshCron:  cfg.Schedule.RefreshCron,
			Watchlist:    cfg.Schedule.Watchlist,
			LookbackDays: cfg.Pipeline.LookbackDays,
			Horizon:      cfg.Pipeline.DefaultHorizon,
		}, log)
		if err := sched.RegisterAll(); err != nil {
			log.Fatal().Err(err).Msg("register cron tasks")
		}
		sched.Start()
		defer sched.Stop()

		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")

		if os.Getenv("RUN_ON_START") == "true" {
			log.Info().Msg("RUN_ON_START enabled, refreshing watchlist now")
			go sched.RunRefreshNow()
		}
	}

	handlers := api.NewHandlers(svc, api.HandlerConfig{
		LookbackDays:   cfg.Pipeline.LookbackDays,
		DefaultHorizon: cfg.Pipeline.DefaultHorizon,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	}, log)
	opts := []api.ServerOption{
		api.WithHost(cfg.Server.Host),
		api.WithPort(cfg.Server.Port),
		api.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		api.WithCORS(cfg.Server.CORSOrigins...),
	}
	if rec != nil {
		opts = append(opts, api.WithMetrics(rec, cfg.Metrics.Path))
	}
	srv := api.NewServer(log, []api.Handler{handlers}, opts...)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("start http server")
	}

	log.Info().Str("addr", cfg.Addr()).Msg("StockLens is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	if err := srv.Stop(context.Background()); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	log.Info().Msg("StockLens stopped")
}

func bootLog() *zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return &l
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	f := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	if y, ok := f.(*collector.YahooFetcher); ok {
		y.Adjusted = cfg.DataSource.Adjusted
	}
	return f
}

// newStore layers the in-process cache over Redis when Redis is enabled and reachable.
func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) cache.Store {
	mem := cache.NewMemoryStore(
		cache.WithMaxEntries(cfg.Cache.MaxEntries),
		cache.WithTTL(cfg.Cache.TTL),
	)
	if !cfg.Cache.Redis.Enabled {
		return mem
	}
	rs, err := cache.NewRedisStore(ctx, cfg.Cache.Redis.RedisConfig)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.Redis.Addr).Msg("redis unavailable, using memory cache only")
		return mem
	}
	log.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("redis cache enabled")
	return cache.NewLayeredStore(mem, rs)
}
