package handoff

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/handoff/metrics"
)

// config holds a run configuration.
type config struct {
	// Producers is the number of producer workers. Must be > 0.
	// Default: 3
	Producers int

	// Consumers is the number of consumer workers. Must be > 0.
	// Default: 2
	Consumers int

	// Capacity is the fixed size of the shared queue. Must be > 0.
	// Default: 10
	Capacity int

	// ItemsPerProducer is how many items every producer pushes. Must be > 0.
	// Default: 50
	ItemsPerProducer int

	// ProducerDelay is slept before each item is produced. Zero disables pacing.
	// Default: 10ms
	ProducerDelay time.Duration

	// ConsumerDelay is slept after each item is consumed. Zero disables pacing.
	// Default: 20ms
	ConsumerDelay time.Duration

	// Logger receives run and worker lifecycle records.
	// Default: slog.Default()
	Logger *slog.Logger

	// Metrics receives queue, worker and run instruments.
	// Default: metrics.NoopProvider
	Metrics metrics.Provider

	// Handler, when set, is called by consumers for every item they pop.
	// Default: nil
	Handler func(context.Context, Item)
}

// validateConfig checks the invariants a run depends on before any worker starts.
func validateConfig(cfg *config) error {
	positive := []struct {
		field string
		value int
	}{
		{"producers", cfg.Producers},
		{"consumers", cfg.Consumers},
		{"capacity", cfg.Capacity},
		{"items per producer", cfg.ItemsPerProducer},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String(p.field, mustBePositive(p.value)))
		}
	}
	if cfg.ProducerDelay < 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("producer delay", "must not be negative"))
	}
	if cfg.ConsumerDelay < 0 {
		return errorc.With(ErrInvalidConfig, errorc.String("consumer delay", "must not be negative"))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoopProvider()
	}
	return nil
}

func mustBePositive(v int) string {
	return "must be > 0, got " + strconv.Itoa(v)
}

// Option configures a run. Use Run(ctx, opts...) to apply options.
// Invalid values are reported as errors wrapping ErrInvalidConfig.
type Option func(*config) error

// WithProducers sets the number of producer workers (must be > 0).
func WithProducers(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("producers", mustBePositive(n)))
		}
		cfg.Producers = n
		return nil
	}
}

// WithConsumers sets the number of consumer workers (must be > 0).
func WithConsumers(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("consumers", mustBePositive(n)))
		}
		cfg.Consumers = n
		return nil
	}
}

// WithCapacity sets the queue capacity (must be > 0, default 10).
func WithCapacity(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("capacity", mustBePositive(n)))
		}
		cfg.Capacity = n
		return nil
	}
}

// WithItemsPerProducer sets how many items each producer pushes (must be > 0, default 50).
func WithItemsPerProducer(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("items per producer", mustBePositive(n)))
		}
		cfg.ItemsPerProducer = n
		return nil
	}
}

// WithPacing sets the producer and consumer delays. Zero disables pacing on that side.
func WithPacing(producer, consumer time.Duration) Option {
	return func(cfg *config) error {
		if producer < 0 || consumer < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("pacing", "delays must not be negative"))
		}
		cfg.ProducerDelay = producer
		cfg.ConsumerDelay = consumer
		return nil
	}
}

// WithLogger sets the structured logger used by the run and its workers.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error { cfg.Logger = l; return nil }
}

// WithMetrics sets the metrics provider.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error { cfg.Metrics = p; return nil }
}

// WithHandler sets a function every consumer calls with each popped item.
// The handler runs on the consumer goroutine; it must be safe for concurrent use
// when more than one consumer is configured.
func WithHandler(fn func(context.Context, Item)) Option {
	return func(cfg *config) error { cfg.Handler = fn; return nil }
}

func buildConfig(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			return config{}, errorc.With(ErrInvalidConfig, errorc.String("option", "nil option"))
		}
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	if err := validateConfig(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
