package housekeeping

import (
	"context"
	"time"

	"github.com/nkiryanov/salesoffice/internal/logger"
	"github.com/nkiryanov/salesoffice/internal/repository"
)

const defaultInterval = time.Hour

// Periodically deletes expired refresh tokens so the table does not grow forever
type Sweeper struct {
	interval    time.Duration
	refreshRepo repository.RefreshTokenRepo
	logger      logger.Logger

	now func() time.Time
}

func New(interval time.Duration, refreshRepo repository.RefreshTokenRepo, logger logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Sweeper{
		interval:    interval,
		refreshRepo: refreshRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Sweep once right away and then every interval until ctx is done
// Returned channel is closed when sweeper stopped
func (s *Sweeper) Run(ctx context.Context) <-chan struct{} {
	stopped := make(chan struct{})
	s.logger.Debug("Starting housekeeping", "interval", s.interval)

	go func() {
		defer close(stopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			s.Sweep(ctx)

			select {
			case <-ctx.Done():
				s.logger.Debug("Housekeeping stopped by context")
				return
			case <-ticker.C:
			}
		}
	}()

	return stopped
}

// Delete refresh tokens expired by now
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	deleted, err := s.refreshRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("Failed to delete expired refresh tokens", "error", err)
		}
		return 0
	}

	if deleted > 0 {
		s.logger.Info("Expired refresh tokens deleted", "count", deleted)
	}
	return deleted
}
