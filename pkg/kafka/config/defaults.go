package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultEventsTopic  = "park254.events"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerWriteTimeout = 5 * time.Second
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false
)
