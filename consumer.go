package handoff

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/ygrebnov/handoff/metrics"
)

// ConsumerState is the lifecycle position of a Consumer.
type ConsumerState int32

const (
	ConsumerRunning ConsumerState = iota
	// ConsumerDraining means production is complete but the queue still held
	// items the last time this consumer popped.
	ConsumerDraining
	ConsumerDone
)

func (s ConsumerState) String() string {
	switch s {
	case ConsumerRunning:
		return "running"
	case ConsumerDraining:
		return "draining"
	case ConsumerDone:
		return "done"
	default:
		return "unknown"
	}
}

// Consumer pops items from a queue until it is drained and production is complete.
type Consumer struct {
	id  int
	q   *Queue[Item]
	cfg workerConfig

	state    atomic.Int32
	ran      atomic.Bool
	consumed atomic.Int64
	counter  metrics.Counter
}

// NewConsumer creates a consumer of q.
func NewConsumer(id int, q *Queue[Item], opts ...WorkerOption) *Consumer {
	cfg := newWorkerConfig(opts)
	return &Consumer{
		id:      id,
		q:       q,
		cfg:     cfg,
		counter: cfg.metrics.Counter(MetricItemsConsumed, metrics.WithDescription("Items consumed")),
	}
}

// Run consumes items until the queue reports there is no more work, which is
// its only normal way out. It returns nil in that case and a tagged ctx error
// if ctx ends first.
func (c *Consumer) Run(ctx context.Context) (err error) {
	if !c.ran.CompareAndSwap(false, true) {
		return newWorkerError(ErrWorkerReused, RoleConsumer, c.id)
	}

	c.cfg.logger.Debug("consumer started", "consumer", c.id)
	defer func() {
		c.state.Store(int32(ConsumerDone))
		c.cfg.logger.Debug("consumer finished", "consumer", c.id, "consumed", c.consumed.Load(), "error", err)
		err = newWorkerError(err, RoleConsumer, c.id)
	}()

	for {
		item, err := c.q.PopContext(ctx)
		if errors.Is(err, ErrNoMoreWork) {
			return nil
		}
		if err != nil {
			return err
		}
		if c.q.Tracker().IsComplete() {
			c.state.CompareAndSwap(int32(ConsumerRunning), int32(ConsumerDraining))
		}

		c.consumed.Add(1)
		c.counter.Add(1)
		if c.cfg.handler != nil {
			c.cfg.handler(ctx, item)
		}

		if err := pace(ctx, c.cfg.delay); err != nil {
			return err
		}
	}
}

// ID returns the consumer id.
func (c *Consumer) ID() int { return c.id }

// Consumed returns how many items this consumer has taken so far.
func (c *Consumer) Consumed() int64 { return c.consumed.Load() }

// State returns the current lifecycle state.
func (c *Consumer) State() ConsumerState { return ConsumerState(c.state.Load()) }
