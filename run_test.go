package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/handoff/metrics"
)

func quietLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// Capacity 10, 3 producers of 50 items, 2 consumers, no pacing.
func TestRun_Nominal(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = make(map[Item]int)
	)
	s, err := Run(context.Background(),
		WithCapacity(10),
		WithProducers(3),
		WithConsumers(2),
		WithItemsPerProducer(50),
		WithPacing(0, 0),
		WithLogger(quietLogger()),
		WithHandler(func(_ context.Context, it Item) {
			mu.Lock()
			seen[it]++
			mu.Unlock()
		}),
	)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, s.RunID)
	require.Equal(t, int64(150), s.Expected())
	require.Equal(t, int64(150), s.Produced)
	require.Equal(t, int64(150), s.Consumed)
	require.NoError(t, s.Verify())

	require.Len(t, seen, 150)
	for id := Item(0); id < 150; id++ {
		require.Equal(t, 1, seen[id], "item %d", id)
	}

	require.LessOrEqual(t, s.Queue.HighWater, 10)
	require.Equal(t, 0, s.Queue.Len)
	require.Equal(t, uint64(150), s.Queue.Pushed)
	require.Equal(t, uint64(150), s.Queue.Popped)
}

func TestRun_Defaults(t *testing.T) {
	if testing.Short() {
		t.Skip("default pacing makes this run take about a second")
	}
	s, err := Run(context.Background(), WithLogger(quietLogger()))
	require.NoError(t, err)
	require.Equal(t, 3, s.Producers)
	require.Equal(t, 2, s.Consumers)
	require.Equal(t, 10, s.Capacity)
	require.Equal(t, int64(150), s.Consumed)
}

func TestRun_ManyConsumersFewItems(t *testing.T) {
	// more consumers than items: the idle ones must still terminate
	s, err := Run(context.Background(),
		WithCapacity(1),
		WithProducers(1),
		WithConsumers(8),
		WithItemsPerProducer(3),
		WithPacing(time.Millisecond, 0),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	require.Equal(t, int64(3), s.Consumed)
}

func TestRun_InvalidConfig(t *testing.T) {
	for _, opt := range []Option{WithProducers(0), WithConsumers(-1), WithCapacity(0), WithItemsPerProducer(0)} {
		s, err := Run(context.Background(), opt)
		require.ErrorIs(t, err, ErrInvalidConfig)
		require.Equal(t, Summary{}, s)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	s, err := Run(ctx,
		WithCapacity(2),
		WithProducers(2),
		WithConsumers(1),
		WithItemsPerProducer(1000),
		WithPacing(0, 5*time.Millisecond),
		WithLogger(quietLogger()),
	)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)

	_, _, ok := ExtractWorker(err)
	require.True(t, ok, "run errors carry the worker that failed first")

	require.Less(t, s.Consumed, s.Expected())
	require.LessOrEqual(t, s.Consumed, s.Produced)
}

func TestRun_Metrics(t *testing.T) {
	p := metrics.NewBasicProvider()
	_, err := Run(context.Background(),
		WithProducers(2),
		WithConsumers(2),
		WithItemsPerProducer(20),
		WithPacing(0, 0),
		WithMetrics(p),
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)

	for _, name := range []string{MetricItemsPushed, MetricItemsPopped, MetricItemsProduced, MetricItemsConsumed} {
		v, ok := p.Value(name)
		require.True(t, ok, name)
		require.Equal(t, int64(40), v, name)
	}
	length, ok := p.Value(MetricQueueLength)
	require.True(t, ok)
	require.Equal(t, int64(0), length)

	h, ok := p.HistogramSnapshot(MetricRunSeconds)
	require.True(t, ok)
	require.Equal(t, int64(1), h.Count)
}

func TestSummary_Verify(t *testing.T) {
	s := Summary{Producers: 2, ItemsPerProducer: 5, Produced: 10, Consumed: 10}
	require.NoError(t, s.Verify())

	s.Consumed = 9
	require.ErrorIs(t, s.Verify(), ErrConservation)

	s.Consumed, s.Produced = 8, 8
	require.ErrorIs(t, s.Verify(), ErrConservation, "both sides agree but the quota was not met")
}

func TestSummary_String(t *testing.T) {
	id := uuid.New()
	s := Summary{RunID: id, Producers: 1, Consumers: 2, Capacity: 3, Produced: 4, Consumed: 4, Elapsed: time.Second}
	require.Equal(t,
		fmt.Sprintf("run %s: producers=1 consumers=2 capacity=3 produced=4 consumed=4 elapsed=1s", id),
		s.String(),
	)
}
