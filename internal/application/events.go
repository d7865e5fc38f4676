package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
	"github.com/zemo-rentals/service-reservation/internal/kafka"
)

// publish wraps the payload in a CloudEvent and writes it to the
// reservation topic. Publishing is best-effort: failures are logged and
// the state change stands, matching at-least-once downstream consumers.
func publish(ctx context.Context, producer EventPublisher, logger *zap.Logger, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishEvent(ctx, reservation.TopicReservationEvents, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
