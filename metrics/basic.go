package metrics

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
)

// BasicProvider keeps every instrument in memory.
// It is safe for concurrent use and is what the handoff tests and the command's
// -report flag read counters back from.
type BasicProvider struct {
	mu         sync.RWMutex
	counters   map[string]*BasicCounter
	updowns    map[string]*BasicUpDownCounter
	histograms map[string]*BasicHistogram
	meta       map[string]InstrumentConfig
}

// NewBasicProvider constructs an empty BasicProvider.
func NewBasicProvider() *BasicProvider {
	return &BasicProvider{
		counters:   make(map[string]*BasicCounter),
		updowns:    make(map[string]*BasicUpDownCounter),
		histograms: make(map[string]*BasicHistogram),
		meta:       make(map[string]InstrumentConfig),
	}
}

// lookupOrCreate returns m[name], creating it with newFn under the write lock
// when absent. The read path only takes the read lock.
func lookupOrCreate[T any](
	p *BasicProvider, m map[string]*T, name string, opts []InstrumentOption, newFn func() *T,
) *T {
	p.mu.RLock()
	v, ok := m[name]
	p.mu.RUnlock()
	if ok {
		return v
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok = m[name]; ok {
		return v
	}
	p.meta[name] = applyOptions(opts)
	v = newFn()
	m[name] = v
	return v
}

// Counter returns the counter registered under name, creating it once.
func (p *BasicProvider) Counter(name string, opts ...InstrumentOption) Counter {
	return lookupOrCreate(p, p.counters, name, opts, func() *BasicCounter { return &BasicCounter{} })
}

// UpDownCounter returns the up/down counter registered under name, creating it once.
func (p *BasicProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	return lookupOrCreate(p, p.updowns, name, opts, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

// Histogram returns the histogram registered under name, creating it once.
func (p *BasicProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	return lookupOrCreate(p, p.histograms, name, opts, func() *BasicHistogram {
		return &BasicHistogram{min: math.Inf(1), max: math.Inf(-1)}
	})
}

// Value returns the current value of the counter or up/down counter named name.
// The second result is false when no such instrument exists.
func (p *BasicProvider) Value(name string) (int64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if c, ok := p.counters[name]; ok {
		return c.Snapshot(), true
	}
	if u, ok := p.updowns[name]; ok {
		return u.Snapshot(), true
	}
	return 0, false
}

// HistogramSnapshot returns the state of the histogram named name.
func (p *BasicProvider) HistogramSnapshot(name string) (HistSnapshot, bool) {
	p.mu.RLock()
	h, ok := p.histograms[name]
	p.mu.RUnlock()
	if !ok {
		return HistSnapshot{}, false
	}
	return h.Snapshot(), true
}

// Description returns the description an instrument was created with.
func (p *BasicProvider) Description(name string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meta[name].Description
}

// Names lists every instrument name known to the provider, sorted.
func (p *BasicProvider) Names() []string {
	p.mu.RLock()
	names := make([]string, 0, len(p.meta))
	for n := range p.meta {
		names = append(names, n)
	}
	p.mu.RUnlock()
	sort.Strings(names)
	return names
}

// BasicCounter is a monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

// Add increments the counter by n. Negative n is ignored.
func (c *BasicCounter) Add(n int64) {
	if n > 0 {
		c.val.Add(n)
	}
}

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a counter that may go both ways.
type BasicUpDownCounter struct {
	val atomic.Int64
}

// Add adds n (positive or negative) to the current value.
func (u *BasicUpDownCounter) Add(n int64) { u.val.Add(n) }

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 { return u.val.Load() }

// BasicHistogram tracks count, sum, min and max without buckets.
type BasicHistogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// Record adds a measurement.
func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	h.count++
	h.sum += v
	h.min = math.Min(h.min, v)
	h.max = math.Max(h.max, v)
	h.mu.Unlock()
}

// HistSnapshot is an immutable view of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
	Mean  float64
}

// Snapshot returns a copy of the histogram state.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	s := HistSnapshot{Count: h.count, Sum: h.sum, Min: h.min, Max: h.max}
	h.mu.Unlock()
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}
