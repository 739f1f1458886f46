package events

import (
	"context"
	"fmt"

	"github.com/Developer-Square/Park254-Backend/pkg/config"
	"github.com/Developer-Square/Park254-Backend/pkg/kafka"
	kafka_config "github.com/Developer-Square/Park254-Backend/pkg/kafka/config"
	kafka_middleware "github.com/Developer-Square/Park254-Backend/pkg/kafka/middleware"
	"github.com/Developer-Square/Park254-Backend/pkg/metrics"
	"github.com/Developer-Square/Park254-Backend/pkg/middleware"
)

// MessageProducer is the part of *kafka.Producer used for publishing.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer MessageProducer
	source   string
}

func NewKafkaPublisher(producer MessageProducer, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

func (p *kafkaPublisher) Publish(ctx context.Context, evt Event) error {
	correlationID := evt.CorrelationID
	if correlationID == "" {
		correlationID = middleware.RequestIDFrom(ctx)
	}

	msg, err := kafka.NewMessage().
		WithKey(evt.Key).
		WithValue(evt.Payload).
		WithEventType(evt.Type).
		WithCorrelationID(correlationID).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", evt.Type, err)
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NewPublisher builds the process publisher. With events disabled it returns
// a no-op publisher and never touches Kafka configuration.
func NewPublisher(cfg *config.Config, source string, m *metrics.EventMetrics) (Publisher, error) {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Domain events disabled")
		return NewNoopPublisher(), nil
	}

	kafkaCfg, err := kafka_config.Load(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load kafka config: %w", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	return NewKafkaPublisher(producer, kafkaCfg.ClientSource), nil
}
