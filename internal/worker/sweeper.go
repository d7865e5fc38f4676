package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/application"
)

// Sweeper runs the scheduled expiry passes over stale pending bookings
// and stale extension proposals.
type Sweeper struct {
	cron         *cron.Cron
	reservations *application.ReservationService
	extensions   *application.ExtensionService
	pendingTTL   time.Duration
	extensionTTL time.Duration
	logger       *zap.Logger
}

// NewSweeper creates a sweeper running on the given cron schedule.
func NewSweeper(
	schedule string,
	reservations *application.ReservationService,
	extensions *application.ExtensionService,
	pendingTTL, extensionTTL time.Duration,
	logger *zap.Logger,
) (*Sweeper, error) {
	c := cron.New(cron.WithLocation(time.UTC))

	s := &Sweeper{
		cron:         c,
		reservations: reservations,
		extensions:   extensions,
		pendingTTL:   pendingTTL,
		extensionTTL: extensionTTL,
		logger:       logger,
	}
	if _, err := c.AddFunc(schedule, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the cron scheduler.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("expiry sweeper started")
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("expiry sweeper stopped")
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expiredBookings, err := s.reservations.ExpireStalePending(ctx, s.pendingTTL)
	if err != nil {
		s.logger.Error("pending booking sweep failed", zap.Error(err))
	}
	expiredExtensions, err := s.extensions.ExpireStaleProposals(ctx, s.extensionTTL)
	if err != nil {
		s.logger.Error("extension proposal sweep failed", zap.Error(err))
	}

	if expiredBookings > 0 || expiredExtensions > 0 {
		s.logger.Info("expiry sweep finished",
			zap.Int("expired_bookings", expiredBookings),
			zap.Int("expired_extensions", expiredExtensions),
		)
	}
}
