package handoff

import (
	"context"
	"strconv"
	"sync"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/handoff/metrics"
)

// Queue is a fixed-capacity FIFO shared by producers and consumers.
//
// Push blocks while the queue is full. Pop blocks while the queue is empty and
// production is not complete; once the queue's Tracker reports completion and the
// queue is drained, Pop returns the "no more work" outcome instead of blocking.
//
// All methods are safe for concurrent use. A Queue must not be copied.
type Queue[T any] struct {
	//go:nocopy
	nc noCopy

	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	// ring buffer; len(items) is the capacity
	items []T
	head  int
	size  int

	tracker *Tracker

	// guarded by mu
	pushed    uint64
	popped    uint64
	highWater int
	pushWaits uint64
	popWaits  uint64

	inst queueInstruments
}

// noCopy is a vet-recognized marker to discourage copying types embedding it.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type queueOptions struct {
	metrics metrics.Provider
}

// QueueOption configures NewQueue.
type QueueOption func(*queueOptions)

// WithQueueMetrics records queue instruments into p.
func WithQueueMetrics(p metrics.Provider) QueueOption {
	return func(o *queueOptions) { o.metrics = p }
}

// NewQueue creates an empty queue holding at most capacity items.
func NewQueue[T any](capacity int, opts ...QueueOption) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, errorc.With(
			ErrInvalidConfig, errorc.String("capacity", "must be > 0, got "+strconv.Itoa(capacity)),
		)
	}

	var o queueOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	q := &Queue[T]{
		items: make([]T, capacity),
		inst:  newQueueInstruments(o.metrics),
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	q.tracker = newTracker(&q.mu, q.notEmpty, q.notFull)
	return q, nil
}

// Tracker returns the completion tracker bound to this queue.
func (q *Queue[T]) Tracker() *Tracker { return q.tracker }

// Cap returns the fixed capacity.
func (q *Queue[T]) Cap() int { return len(q.items) }

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Push appends item, blocking while the queue is full.
// It returns ErrProductionComplete if production has completed, including when
// completion happens while Push is waiting for room.
func (q *Queue[T]) Push(item T) error {
	return q.PushContext(context.Background(), item)
}

// PushContext is Push bounded by ctx. If ctx ends while waiting for room,
// the item is not enqueued and ctx.Err() is returned.
func (q *Queue[T]) PushContext(ctx context.Context, item T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, q.broadcast(q.notFull))
		defer stop()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	waited := false
	for {
		// Re-checked after every wakeup: completion may arrive while parked,
		// and an item pushed after it could never be consumed.
		if q.tracker.complete.Load() {
			return ErrProductionComplete
		}
		if q.size < len(q.items) {
			break
		}
		if !waited {
			waited = true
			q.pushWaits++
			q.inst.pushWaits.Add(1)
		}
		// Checked only while still full, so a Signal meant for this waiter
		// is never swallowed by a cancelled return.
		if err := ctx.Err(); err != nil {
			return err
		}
		q.notFull.Wait()
	}
	q.enqueue(item)
	return nil
}

// TryPush appends item if there is room, without blocking.
func (q *Queue[T]) TryPush(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tracker.complete.Load() || q.size == len(q.items) {
		return false
	}
	q.enqueue(item)
	return true
}

// Pop removes the head item, blocking while the queue is empty and production
// is not complete. The second result is false when the queue is drained and
// production is complete: no more work will ever arrive.
func (q *Queue[T]) Pop() (T, bool) {
	item, err := q.PopContext(context.Background())
	return item, err == nil
}

// PopContext is Pop bounded by ctx. It returns ErrNoMoreWork for the terminal
// outcome and ctx.Err() if ctx ends while waiting.
func (q *Queue[T]) PopContext(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, q.broadcast(q.notEmpty))
		defer stop()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 && !q.tracker.complete.Load() {
		q.popWaits++
		q.inst.popWaits.Add(1)
		// Empty while producers are active is starvation, not completion: keep waiting.
		for q.size == 0 && !q.tracker.complete.Load() {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			q.notEmpty.Wait()
		}
	}
	if q.size == 0 {
		return zero, ErrNoMoreWork
	}
	return q.dequeue(), nil
}

// TryPop removes the head item if there is one, without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.dequeue(), true
}

// enqueue requires q.mu held and q.size < cap.
func (q *Queue[T]) enqueue(item T) {
	q.items[(q.head+q.size)%len(q.items)] = item
	q.size++
	q.pushed++
	if q.size > q.highWater {
		q.highWater = q.size
	}
	q.inst.pushed.Add(1)
	q.inst.length.Add(1)
	q.notEmpty.Signal()
}

// dequeue requires q.mu held and q.size > 0.
func (q *Queue[T]) dequeue() T {
	var zero T
	item := q.items[q.head]
	q.items[q.head] = zero
	q.head = (q.head + 1) % len(q.items)
	q.size--
	q.popped++
	q.inst.popped.Add(1)
	q.inst.length.Add(-1)
	q.notFull.Signal()
	return item
}

func (q *Queue[T]) broadcast(c *sync.Cond) func() {
	return func() {
		q.mu.Lock()
		c.Broadcast()
		q.mu.Unlock()
	}
}

// QueueStats is a point-in-time view of a Queue.
type QueueStats struct {
	Capacity  int
	Len       int
	HighWater int    // largest length ever observed; never exceeds Capacity
	Pushed    uint64 // items appended
	Popped    uint64 // items removed
	PushWaits uint64 // pushes that found the queue full (backpressure)
	PopWaits  uint64 // pops that found the queue empty before completion (starvation)
}

// Stats returns a snapshot of the queue counters.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Capacity:  len(q.items),
		Len:       q.size,
		HighWater: q.highWater,
		Pushed:    q.pushed,
		Popped:    q.popped,
		PushWaits: q.pushWaits,
		PopWaits:  q.popWaits,
	}
}
