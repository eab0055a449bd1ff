package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"wkchat/internal/keycheck"
)

// Disabled turns the periodic key check off.
const Disabled = "off"

// KeyChecker is implemented by keycheck.Checker.
type KeyChecker interface {
	CheckAll(ctx context.Context) []keycheck.Result
}

type Scheduler struct {
	checker  KeyChecker
	schedule string
	logger   *slog.Logger
	c        *cron.Cron
}

func NewScheduler(checker KeyChecker, schedule string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		checker:  checker,
		schedule: schedule,
		logger:   logger.With("component", "scheduler"),
		c:        cron.New(),
	}
}

// Start registers the key check job and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.schedule == Disabled {
		s.logger.Info("Periodic key check disabled")
		return nil
	}
	_, err := s.c.AddFunc(s.schedule, s.runKeyCheck)
	if err != nil {
		return fmt.Errorf("error scheduling key check job: %w", err)
	}
	s.c.Start()
	s.logger.Info("Scheduler started", "key_check_schedule", s.schedule)
	return nil
}

func (s *Scheduler) runKeyCheck() {
	s.logger.Info("Running scheduled job: re-validating stored API keys.")
	invalid := 0
	for _, r := range s.checker.CheckAll(context.Background()) {
		if !r.Valid {
			invalid++
		}
	}
	if invalid > 0 {
		s.logger.Warn("Scheduled key check found invalid keys", "invalid", invalid)
	}
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}
