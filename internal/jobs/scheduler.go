// Package jobs runs the periodic housekeeping of the wizard service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshTimeout = time.Minute

// SessionEvictor is satisfied by *wizard.Manager.
type SessionEvictor interface {
	EvictIdle(maxIdle time.Duration) int
}

// CatalogRefresher is satisfied by *catalog.Catalog.
type CatalogRefresher interface {
	Reload(ctx context.Context) error
}

type Config struct {
	SessionIdleTTL     time.Duration
	SessionSweepSpec   string
	CatalogRefreshSpec string
}

type Scheduler struct {
	cron     *cron.Cron
	sessions SessionEvictor
	catalog  CatalogRefresher
	idleTTL  time.Duration
	logger   *zap.Logger
}

// NewScheduler registers the jobs. An empty spec disables that job.
func NewScheduler(cfg Config, sessions SessionEvictor, catalog CatalogRefresher, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
		sessions: sessions,
		catalog:  catalog,
		idleTTL:  cfg.SessionIdleTTL,
		logger:   logger,
	}

	if cfg.SessionSweepSpec != "" && cfg.SessionIdleTTL > 0 {
		if _, err := s.cron.AddFunc(cfg.SessionSweepSpec, s.EvictIdleSessions); err != nil {
			return nil, fmt.Errorf("schedule session sweep: %w", err)
		}
	}
	if cfg.CatalogRefreshSpec != "" && catalog != nil {
		if _, err := s.cron.AddFunc(cfg.CatalogRefreshSpec, s.RefreshCatalog); err != nil {
			return nil, fmt.Errorf("schedule catalog refresh: %w", err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// EvictIdleSessions drops abandoned wizard sessions.
func (s *Scheduler) EvictIdleSessions() {
	if n := s.sessions.EvictIdle(s.idleTTL); n > 0 {
		s.logger.Info("cron: evicted idle sessions", zap.Int("count", n))
	}
}

// RefreshCatalog picks up catalog changes nobody announced.
func (s *Scheduler) RefreshCatalog() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := s.catalog.Reload(ctx); err != nil {
		s.logger.Warn("cron: catalog refresh failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
