package handoff

import (
	"context"
	"log/slog"
	"time"

	"github.com/ygrebnov/handoff/metrics"
)

// workerConfig is shared by producers and consumers.
type workerConfig struct {
	delay   time.Duration
	logger  *slog.Logger
	metrics metrics.Provider
	handler func(context.Context, Item) // consumers only
}

// WorkerOption configures a Producer or a Consumer.
type WorkerOption func(*workerConfig)

// WithPace makes the worker sleep d per item: producers before producing,
// consumers after consuming. Zero or negative disables pacing.
func WithPace(d time.Duration) WorkerOption {
	return func(c *workerConfig) { c.delay = d }
}

// WithWorkerLogger sets the logger lifecycle records are written to.
func WithWorkerLogger(l *slog.Logger) WorkerOption {
	return func(c *workerConfig) { c.logger = l }
}

// WithWorkerMetrics sets the provider for the produced/consumed counters.
func WithWorkerMetrics(p metrics.Provider) WorkerOption {
	return func(c *workerConfig) { c.metrics = p }
}

// WithItemHandler sets the function a Consumer calls with every popped item.
// Producers ignore it.
func WithItemHandler(fn func(context.Context, Item)) WorkerOption {
	return func(c *workerConfig) { c.handler = fn }
}

func newWorkerConfig(opts []WorkerOption) workerConfig {
	var c workerConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNoopProvider()
	}
	return c
}
