package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"FinScope/internal/domain/models"
	"FinScope/pkg/logger"
)

// Scanner analyzes a fixed watchlist on a cron schedule. Tickers in one run
// are analyzed sequentially to stay inside provider rate limits.
type Scanner struct {
	analyzer  *Analyzer
	watchlist []string
	schedule  string
	log       *logger.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScanner(analyzer *Analyzer, schedule string, watchlist []string, log *logger.Logger) *Scanner {
	if log == nil {
		log = logger.Nop()
	}
	return &Scanner{
		analyzer:  analyzer,
		watchlist: watchlist,
		schedule:  schedule,
		log:       log,
		cron:      cron.New(),
	}
}

func (s *Scanner) Name() string { return "scanner" }

// Start registers the schedule and returns immediately.
func (s *Scanner) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Run(s.ctx) }); err != nil {
		return fmt.Errorf("register scan schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.Info("scanner started",
		logger.String("schedule", s.schedule),
		logger.Strings("watchlist", s.watchlist),
	)
	return nil
}

// Stop cancels an in-flight run and waits for it to return.
func (s *Scanner) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.log.Info("scanner stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run scans the watchlist once. Overlapping runs are skipped.
func (s *Scanner) Run(ctx context.Context) []models.ScanResult {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("previous scan still running, skipping")
		return nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx = WithTrigger(ctx, TriggerCron)
	out := make([]models.ScanResult, 0, len(s.watchlist))
	for _, ticker := range s.watchlist {
		if ctx.Err() != nil {
			break
		}
		res := models.ScanResult{Trigger: string(TriggerCron), Ticker: ticker}
		r, err := s.analyzer.Analyze(ctx, ticker)
		if err != nil {
			res.Error = err.Error()
			s.log.Warn("scan failed", logger.String("ticker", ticker), logger.Error(err))
		} else {
			res.Ticker = r.Ticker
			res.Result = r
		}
		out = append(out, res)
	}
	s.log.Info("scan finished", logger.Int("tickers", len(out)))
	return out
}
