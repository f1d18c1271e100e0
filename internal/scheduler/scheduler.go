// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/user/ledgerline/internal/ledger"
)

// sweepSchedule runs the retention sweep nightly, off-peak.
const sweepSchedule = "0 3 * * *"

// Scheduler prunes old audit-log rows on a cron schedule so the logs table
// does not grow without bound.
type Scheduler struct {
	logs      ledger.LogStore
	retention time.Duration
	cron      *cron.Cron
	log       zerolog.Logger
}

// New creates a Scheduler that keeps audit logs for retentionDays.
func New(logs ledger.LogStore, retentionDays int, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		logs:      logs,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		cron:      cron.New(),
		log:       log,
	}
}

// Start registers the sweep and starts the cron ticker.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(sweepSchedule, s.runSweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the cron ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	n, err := s.logs.Prune(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("log retention sweep failed")
		return
	}
	s.log.Info().Int64("pruned", n).Time("cutoff", cutoff).Msg("log retention sweep done")
}
