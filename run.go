package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ygrebnov/errorc"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/handoff/metrics"
)

// Summary reports a finished run. Its counters are read only after every
// worker has returned.
type Summary struct {
	RunID            uuid.UUID
	Producers        int
	Consumers        int
	Capacity         int
	ItemsPerProducer int

	Produced int64
	Consumed int64
	Elapsed  time.Duration

	Queue QueueStats
}

// Expected is the number of items the run must produce and consume.
func (s Summary) Expected() int64 {
	return int64(s.Producers) * int64(s.ItemsPerProducer)
}

// Verify checks conservation: everything produced was consumed and every
// producer produced its full quota. A mismatch means a synchronization bug;
// it is reported as ErrConservation and must not be retried.
func (s Summary) Verify() error {
	if s.Produced == s.Consumed && s.Produced == s.Expected() {
		return nil
	}
	return errorc.With(ErrConservation, errorc.String(
		"counts",
		fmt.Sprintf("produced=%d consumed=%d expected=%d", s.Produced, s.Consumed, s.Expected()),
	))
}

func (s Summary) String() string {
	return fmt.Sprintf(
		"run %s: producers=%d consumers=%d capacity=%d produced=%d consumed=%d elapsed=%s",
		s.RunID, s.Producers, s.Consumers, s.Capacity, s.Produced, s.Consumed, s.Elapsed,
	)
}

// Run executes one handoff run configured by opts.
// It owns the lifecycle: validate the configuration, build the queue, register
// and start every producer and consumer, wait for all of them, then verify.
//
// Semantics:
//   - An invalid configuration returns an error wrapping ErrInvalidConfig before any worker starts.
//   - If ctx ends, workers stop, the error is returned tagged with the first failing worker,
//     and the summary carries the partial counts.
//   - On success the summary satisfies Verify; otherwise the ErrConservation error is returned
//     together with the summary.
func Run(ctx context.Context, opts ...Option) (Summary, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		RunID:            uuid.New(),
		Producers:        cfg.Producers,
		Consumers:        cfg.Consumers,
		Capacity:         cfg.Capacity,
		ItemsPerProducer: cfg.ItemsPerProducer,
	}
	log := cfg.Logger.With("run", s.RunID.String())

	q, err := NewQueue[Item](cfg.Capacity, WithQueueMetrics(cfg.Metrics))
	if err != nil {
		return s, err
	}

	producers, consumers, err := newWorkers(q, &cfg, log)
	if err != nil {
		return s, err
	}

	log.Info("run started",
		"producers", cfg.Producers,
		"consumers", cfg.Consumers,
		"capacity", cfg.Capacity,
		"items_per_producer", cfg.ItemsPerProducer,
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range producers {
		g.Go(func() error { return p.Run(gctx) })
	}
	for _, c := range consumers {
		g.Go(func() error { return c.Run(gctx) })
	}
	runErr := g.Wait()
	s.Elapsed = time.Since(start)

	for _, p := range producers {
		s.Produced += p.Produced()
	}
	for _, c := range consumers {
		s.Consumed += c.Consumed()
	}
	s.Queue = q.Stats()
	cfg.Metrics.Histogram(MetricRunSeconds, metrics.WithUnit("seconds")).Record(s.Elapsed.Seconds())

	if runErr != nil {
		log.Error("run aborted", "produced", s.Produced, "consumed", s.Consumed, "error", runErr)
		return s, runErr
	}
	if err := s.Verify(); err != nil {
		log.Error("run failed verification", "produced", s.Produced, "consumed", s.Consumed, "error", err)
		return s, err
	}

	log.Info("run finished",
		"produced", s.Produced,
		"consumed", s.Consumed,
		"elapsed", s.Elapsed,
		"high_water", s.Queue.HighWater,
	)
	return s, nil
}

// newWorkers constructs every producer (registering it with the tracker) and
// every consumer. Nothing runs yet.
func newWorkers(q *Queue[Item], cfg *config, log *slog.Logger) ([]*Producer, []*Consumer, error) {
	seq := &Sequence{}

	producers := make([]*Producer, cfg.Producers)
	for i := range producers {
		p, err := NewProducer(i, q, seq, cfg.ItemsPerProducer,
			WithPace(cfg.ProducerDelay),
			WithWorkerLogger(log),
			WithWorkerMetrics(cfg.Metrics),
		)
		if err != nil {
			return nil, nil, err
		}
		producers[i] = p
	}

	consumers := make([]*Consumer, cfg.Consumers)
	for i := range consumers {
		consumers[i] = NewConsumer(i, q,
			WithPace(cfg.ConsumerDelay),
			WithWorkerLogger(log),
			WithWorkerMetrics(cfg.Metrics),
			WithItemHandler(cfg.Handler),
		)
	}
	return producers, consumers, nil
}
