package handoff

import (
	"log/slog"
	"time"

	"github.com/ygrebnov/handoff/metrics"
)

// Defaults applied by Run when the matching option is not given.
const (
	DefaultProducers        = 3
	DefaultConsumers        = 2
	DefaultCapacity         = 10
	DefaultItemsPerProducer = 50
	DefaultProducerDelay    = 10 * time.Millisecond
	DefaultConsumerDelay    = 20 * time.Millisecond
)

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		Producers:        DefaultProducers,
		Consumers:        DefaultConsumers,
		Capacity:         DefaultCapacity,
		ItemsPerProducer: DefaultItemsPerProducer,
		ProducerDelay:    DefaultProducerDelay,
		ConsumerDelay:    DefaultConsumerDelay,
		Logger:           slog.Default(),
		Metrics:          metrics.NewNoopProvider(),
	}
}
