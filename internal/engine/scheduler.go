package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduled maintenance:
//   - cache cleanup deletes expired cache entries (they are already unreadable)
//   - profile refresh recomputes the self-profile so hooks read a warm cache
//
// Both run on cron specs from config. Cleanup also runs once at startup.

const jobTimeout = 2 * time.Minute

// StartScheduler registers the maintenance jobs and starts the cron runner.
// An empty refreshSpec disables the profile refresh.
func (e *Engine) StartScheduler(cleanupSpec, refreshSpec string) error {
	if e.cron != nil {
		return fmt.Errorf("scheduler already started")
	}
	c := cron.New(cron.WithLocation(e.loc))

	if e.cache != nil && cleanupSpec != "" {
		if _, err := c.AddFunc(cleanupSpec, e.cleanupCache); err != nil {
			return fmt.Errorf("schedule cache cleanup %q: %w", cleanupSpec, err)
		}
	}
	if refreshSpec != "" {
		if _, err := c.AddFunc(refreshSpec, e.refreshProfile); err != nil {
			return fmt.Errorf("schedule profile refresh %q: %w", refreshSpec, err)
		}
	}

	e.cron = c
	c.Start()
	e.logger.Info("scheduler started",
		zap.String("cleanup", cleanupSpec),
		zap.String("refresh", refreshSpec),
		zap.Int("jobs", len(c.Entries())))

	if e.cache != nil {
		e.jobs.Add(1)
		go func() {
			defer e.jobs.Done()
			e.cleanupCache()
		}()
	}
	return nil
}

// Stop halts the scheduler and waits for running jobs, including the
// startup cleanup, to finish.
func (e *Engine) Stop() {
	if e.cron != nil {
		<-e.cron.Stop().Done()
		e.cron = nil
	}
	e.jobs.Wait()
}

func (e *Engine) cleanupCache() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := e.cache.Cleanup(ctx)
	if err != nil {
		e.logger.Warn("cache cleanup failed", zap.Error(err))
		return
	}
	if n > 0 {
		e.logger.Info("cache cleanup", zap.Int64("removed", n))
	}
}

func (e *Engine) refreshProfile() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	p, err := e.RunSelfProfile(ctx, true)
	if err != nil {
		e.logger.Warn("profile refresh failed", zap.Error(err))
		return
	}
	e.logger.Info("profile refreshed", zap.String("run_id", p.RunID))
}
