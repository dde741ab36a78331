package handoff

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/handoff/metrics"
)

// ProducerState is the lifecycle position of a Producer.
type ProducerState int32

const (
	ProducerStarting ProducerState = iota
	ProducerProducing
	ProducerDone
)

func (s ProducerState) String() string {
	switch s {
	case ProducerStarting:
		return "starting"
	case ProducerProducing:
		return "producing"
	case ProducerDone:
		return "done"
	default:
		return "unknown"
	}
}

// Producer pushes a fixed number of freshly numbered items into a queue.
type Producer struct {
	id    int
	q     *Queue[Item]
	seq   *Sequence
	items int
	cfg   workerConfig

	state    atomic.Int32
	ran      atomic.Bool
	produced atomic.Int64
	counter  metrics.Counter
}

// NewProducer creates a producer that will push items items into q, numbering
// them from seq.
//
// The producer registers with q's Tracker here, not in Run. Construct every
// producer before starting any of them, the same way sync.WaitGroup.Add goes
// before the go statement: otherwise a fast producer could finish, complete
// production and strand a peer that has not registered yet.
//
// Run must be called exactly once, or the queue never reports completion.
func NewProducer(id int, q *Queue[Item], seq *Sequence, items int, opts ...WorkerOption) (*Producer, error) {
	if items <= 0 {
		return nil, errorc.With(
			ErrInvalidConfig, errorc.String("items per producer", "must be > 0, got "+strconv.Itoa(items)),
		)
	}
	if err := q.Tracker().Register(); err != nil {
		return nil, newWorkerError(err, RoleProducer, id)
	}

	cfg := newWorkerConfig(opts)
	p := &Producer{
		id:      id,
		q:       q,
		seq:     seq,
		items:   items,
		cfg:     cfg,
		counter: cfg.metrics.Counter(MetricItemsProduced, metrics.WithDescription("Items produced")),
	}
	p.state.Store(int32(ProducerStarting))
	return p, nil
}

// Run produces the configured number of items, blocking whenever the queue is
// full. It deregisters from the tracker on every return path, so a cancelled
// producer never leaves consumers waiting for a completion that cannot happen.
func (p *Producer) Run(ctx context.Context) (err error) {
	if !p.ran.CompareAndSwap(false, true) {
		return newWorkerError(ErrWorkerReused, RoleProducer, p.id)
	}

	p.state.Store(int32(ProducerProducing))
	p.cfg.logger.Debug("producer started", "producer", p.id, "items", p.items)

	defer func() {
		p.state.Store(int32(ProducerDone))
		p.q.Tracker().Deregister()
		p.cfg.logger.Debug("producer finished", "producer", p.id, "produced", p.produced.Load(), "error", err)
		err = newWorkerError(err, RoleProducer, p.id)
	}()

	for range p.items {
		if err := pace(ctx, p.cfg.delay); err != nil {
			return err
		}
		if err := p.q.PushContext(ctx, p.seq.Next()); err != nil {
			return err
		}
		p.produced.Add(1)
		p.counter.Add(1)
	}
	return nil
}

// ID returns the producer id.
func (p *Producer) ID() int { return p.id }

// Produced returns how many items this producer has pushed so far.
func (p *Producer) Produced() int64 { return p.produced.Load() }

// State returns the current lifecycle state.
func (p *Producer) State() ProducerState { return ProducerState(p.state.Load()) }
