package kafka_middleware

import (
	"context"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/kafka"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"
)

// LoggingProducerMiddleware logs message publishing operations
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		log.Debug("publishing message",
			"topic", msg.Topic,
			"key", msg.Key,
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
			"correlation_id", msg.GetCorrelationID(),
		)

		err := next(ctx, msg)
		duration := time.Since(start)

		if err != nil {
			log.Error("failed to publish message",
				"topic", msg.Topic,
				"key", msg.Key,
				"event_type", msg.GetEventType(),
				"event_id", msg.GetEventID(),
				"correlation_id", msg.GetCorrelationID(),
				"duration", duration,
				"error", err,
			)
			return err
		}

		log.Info("published message",
			"topic", msg.Topic,
			"key", msg.Key,
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
			"duration", duration,
		)
		return nil
	}
}
