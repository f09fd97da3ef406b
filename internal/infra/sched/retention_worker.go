package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nexus-ai-chat/internal/domain/ports/repository"
	"nexus-ai-chat/internal/infra/metrics"
)

// RetentionWorker periodically deletes turns older than the retention window.
type RetentionWorker struct {
	interval      time.Duration
	retentionDays int
	sessions      repository.SessionRepository
	log           *zerolog.Logger
}

func NewRetentionWorker(interval time.Duration, retentionDays int, sessions repository.SessionRepository, logger *zerolog.Logger) *RetentionWorker {
	l := logger.With().Str("component", "RetentionWorker").Logger()
	return &RetentionWorker{
		interval:      interval,
		retentionDays: retentionDays,
		sessions:      sessions,
		log:           &l,
	}
}

func (w *RetentionWorker) Run(ctx context.Context) error {
	w.log.Info().Int("retention_days", w.retentionDays).Msg("Starting retention worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping retention worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sessions.CleanupOldTurns(ctx, w.retentionDays)
			if err != nil {
				w.log.Error().Err(err).Msg("retention sweep failed")
				continue
			}
			if n > 0 {
				metrics.AddTurnsPruned(n)
				w.log.Info().Int64("count", n).Msg("old turns pruned")
			}
		}
	}
}
