package syncer

import (
	"context"
	"time"

	"github.com/MKhiriev/go-notes-sync/internal/logger"
)

// Scheduler drives one [Syncer] in its own loop. It implements
// workers.Worker.
type Scheduler struct {
	syncer Syncer
	cfg    *SyncConfig
	logger *logger.Logger
}

// NewScheduler returns a scheduler for s.
func NewScheduler(s Syncer, cfg *SyncConfig, log *logger.Logger) *Scheduler {
	return &Scheduler{
		syncer: s,
		cfg:    cfg,
		logger: log.Named(s.Name()),
	}
}

// Run loops until ctx is done, syncing is disabled or the shared run
// generation moves past the one current at start. A failed batch is logged
// and does not stop the loop. Run always returns nil.
func (s *Scheduler) Run(ctx context.Context) error {
	generation := s.cfg.RunVersion()
	s.syncer.SetRunVersion(generation)
	ctx = s.logger.WithContext(ctx)

	s.logger.Info().
		Str("func", "Scheduler.Run").
		Int64("run_version", generation).
		Msg("sync loop started")

	timer := time.NewTimer(s.syncer.PollDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str("func", "Scheduler.Run").Msg("sync loop stopped: shutdown")
			return nil
		case <-timer.C:
		}

		if !s.syncer.IsEnabled() {
			s.logger.Info().Str("func", "Scheduler.Run").Msg("sync loop stopped: disabled")
			return nil
		}
		if current := s.cfg.RunVersion(); current != generation {
			s.logger.Info().
				Str("func", "Scheduler.Run").
				Int64("run_version", generation).
				Int64("current_version", current).
				Msg("sync loop stopped: superseded")
			return nil
		}

		if err := s.syncer.RunBatch(ctx); err != nil {
			s.logger.Err(err).
				Str("func", "Scheduler.Run").
				Int64("run_version", generation).
				Msg("sync batch failed")
		}

		timer.Reset(s.syncer.PollDelay())
	}
}
