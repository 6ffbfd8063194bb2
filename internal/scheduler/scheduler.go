package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jwaldner/stockai/internal/logger"
)

// SessionPruner drops idle dashboard sessions
type SessionPruner interface {
	Prune(idle time.Duration) int
}

// SymbolUpdater refreshes the ticker suggestion list
type SymbolUpdater interface {
	UpdateSymbols(ctx context.Context) (int, error)
	AutoUpdate(ctx context.Context, maxAge time.Duration) error
}

// Scheduler owns the background maintenance jobs of the server
type Scheduler struct {
	Cron     *cron.Cron
	Sessions SessionPruner
	Symbols  SymbolUpdater
	Ctx      context.Context
}

// New creates a scheduler using six-field cron specs (seconds first)
func New(ctx context.Context, sessions SessionPruner, symbols SymbolUpdater) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Sessions: sessions,
		Symbols:  symbols,
		Ctx:      ctx,
	}
}

// RegisterAll registers session pruning and, when updateCron is set, the
// symbol list refresh.
func (s *Scheduler) RegisterAll(pruneCron string, idle time.Duration, updateCron string) error {
	if _, err := s.Cron.AddFunc(pruneCron, func() { s.pruneSessions(idle) }); err != nil {
		return fmt.Errorf("register session prune: %w", err)
	}

	if updateCron == "" || s.Symbols == nil {
		return nil
	}
	if _, err := s.Cron.AddFunc(updateCron, s.refreshSymbols); err != nil {
		return fmt.Errorf("register symbol refresh: %w", err)
	}
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info.Printf("⏰ SCHEDULER: started with %d jobs", len(s.Cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info.Println("⏰ SCHEDULER: stopped")
}

// RefreshSymbolsIfStale updates the symbol list once when it is missing or
// older than maxAge. Failures only cost the suggestions, so they are logged.
func (s *Scheduler) RefreshSymbolsIfStale(maxAge time.Duration) {
	if s.Symbols == nil {
		return
	}
	if err := s.Symbols.AutoUpdate(s.Ctx, maxAge); err != nil {
		logger.Warn.Printf("⚠️  SCHEDULER: startup symbol refresh failed: %v", err)
	}
}

func (s *Scheduler) pruneSessions(idle time.Duration) {
	n := s.Sessions.Prune(idle)
	logger.Verbose.Printf("⏰ SCHEDULER: prune pass dropped %d sessions", n)
}

func (s *Scheduler) refreshSymbols() {
	n, err := s.Symbols.UpdateSymbols(s.Ctx)
	if err != nil {
		logger.Error.Printf("❌ SCHEDULER: symbol refresh failed: %v", err)
		return
	}
	logger.Info.Printf("⏰ SCHEDULER: symbol refresh saved %d symbols", n)
}
