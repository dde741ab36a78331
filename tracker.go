package handoff

import (
	"sync"
	"sync/atomic"
)

// Tracker counts active producers and flips an irreversible "production
// complete" flag when the last one deregisters.
//
// A Tracker always belongs to a Queue and shares its mutex, so a change of the
// active count and a change of the queue length are never observed out of order.
// Obtain it with Queue.Tracker.
type Tracker struct {
	mu       *sync.Mutex
	notEmpty *sync.Cond // consumers wait here; completion broadcasts on it
	notFull  *sync.Cond // parked pushers are woken on completion to fail

	active   int
	complete atomic.Bool
	done     chan struct{}
}

func newTracker(mu *sync.Mutex, notEmpty, notFull *sync.Cond) *Tracker {
	return &Tracker{mu: mu, notEmpty: notEmpty, notFull: notFull, done: make(chan struct{})}
}

// Register records one more active producer.
// It fails with ErrProductionComplete once production has completed.
func (t *Tracker) Register() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.complete.Load() {
		return ErrProductionComplete
	}
	t.active++
	return nil
}

// Deregister records that one producer has finished. When the count drops to
// zero, production becomes complete, every consumer blocked in Pop is woken and
// every Push still waiting for room fails with ErrProductionComplete.
// Deregister with no active producers is a no-op.
func (t *Tracker) Deregister() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == 0 {
		return
	}
	t.active--
	if t.active > 0 {
		return
	}
	t.complete.Store(true)
	close(t.done)
	t.notEmpty.Broadcast()
	t.notFull.Broadcast()
}

// IsComplete reports whether production has completed. It does not block.
func (t *Tracker) IsComplete() bool {
	return t.complete.Load()
}

// Active returns the number of registered producers that have not finished.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Done returns a channel closed when production completes.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}
