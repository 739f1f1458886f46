package main

import (
	"testing"

	"github.com/Developer-Square/Park254-Backend/pkg/config"
	kafka_config "github.com/Developer-Square/Park254-Backend/pkg/kafka/config"
	"github.com/Developer-Square/Park254-Backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsSetupErrors(t *testing.T) {
	t.Setenv(kafka_config.EnvKafkaProducerMaxAttempts, "0")
	cfg := &config.Config{Log: logger.Discard(), EventsEnabled: true}

	err := run(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize event publisher")
}
