package kafka_middleware

import (
	"context"
	"time"

	"github.com/Developer-Square/Park254-Backend/pkg/kafka"
	"github.com/Developer-Square/Park254-Backend/pkg/metrics"
)

// MetricsProducerMiddleware records publish latency and outcome per event type.
func MetricsProducerMiddleware(m *metrics.EventMetrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		m.Observe(msg.GetEventType(), time.Since(start), err)
		return err
	}
}
