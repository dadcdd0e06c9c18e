package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockLens/internal/analyzer"
	"StockLens/internal/model"
	"StockLens/internal/notifier"
)

// Sender delivers formatted messages.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Config controls the refresh job.
type Config struct {
	RefreshCron  string
	Watchlist    []string
	LookbackDays int
	Horizon      int
}

// Scheduler manages the cron refresh job and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Analyzer *analyzer.Service
	Notifier Sender // nil disables notifications
	Ctx      context.Context
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *analyzer.Service, sender Sender, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 365
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: svc,
		Notifier: sender,
		Ctx:      ctx,
		cfg:      cfg,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

// RegisterAll registers the watchlist refresh.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc(s.cfg.RefreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Str("cron", s.cfg.RefreshCron).Strs("watchlist", s.cfg.Watchlist).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunRefreshNow executes the refresh immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunRefreshNow() []notifier.RefreshResult {
	return s.refresh(s.Ctx)
}

func (s *Scheduler) refreshTask() {
	s.refresh(s.Ctx)
}

// refresh re-downloads the lookback window for each watchlist symbol and fits the
// default regression. Symbols are processed in order; one failure does not stop the rest.
func (s *Scheduler) refresh(ctx context.Context) []notifier.RefreshResult {
	s.log.Info().Int("symbols", len(s.cfg.Watchlist)).Msg("running watchlist refresh")
	end := s.now().UTC()
	start := end.AddDate(0, 0, -s.cfg.LookbackDays)

	results := make([]notifier.RefreshResult, 0, len(s.cfg.Watchlist))
	for _, symbol := range s.cfg.Watchlist {
		if ctx.Err() != nil {
			break
		}
		report, err := s.Analyzer.Run(ctx, analyzer.Request{
			Symbol:       symbol,
			Start:        start,
			End:          end,
			ForceRefresh: true,
			Mode:         model.ModeRegression,
			Horizon:      s.cfg.Horizon,
		})
		if err != nil {
			s.log.Error().Err(err).Str("symbol", symbol).Msg("refresh failed")
		}
		results = append(results, notifier.RefreshResult{Symbol: symbol, Report: report, Err: err})
	}
	s.trySend(notifier.FormatRefreshSummary(results, end))
	return results
}

const helpText = "Available commands:\n" +
	"• /analyze SYMBOL [regression|classification|clustering] [days]\n" +
	"• /runs [limit]\n" +
	"• /refresh"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/analyze":
		return s.analyzeCommand(ctx, fields[1:])
	case "/runs":
		limit := 10
		if len(fields) > 1 {
			if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
				limit = n
			}
		}
		runs, err := s.Analyzer.Recorder().RecentRuns(limit)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRuns(runs)
	case "/refresh":
		s.refresh(ctx)
		return ""
	default:
		return helpText
	}
}

func (s *Scheduler) analyzeCommand(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /analyze SYMBOL [mode] [days]"
	}
	mode := model.ModeRegression
	if len(args) > 1 {
		m, err := model.ParseAnalysisMode(args[1])
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		mode = m
	}
	days := s.cfg.LookbackDays
	if len(args) > 2 {
		if n, err := strconv.Atoi(args[2]); err == nil && n > 0 {
			days = n
		}
	}
	end := s.now().UTC()
	report, err := s.Analyzer.Run(ctx, analyzer.Request{
		Symbol:  args[0],
		Start:   end.AddDate(0, 0, -days),
		End:     end,
		Mode:    mode,
		Horizon: s.cfg.Horizon,
	})
	if err != nil {
		return fmt.Sprintf("❌ %s: %v", strings.ToUpper(args[0]), err)
	}
	return notifier.FormatAnalysisReport(report)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
