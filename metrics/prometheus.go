package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusProvider registers a Prometheus collector per instrument name.
// Counters map to prometheus.Counter, up/down counters to prometheus.Gauge and
// histograms to prometheus.Histogram with the default buckets.
//
// A registry may back only one PrometheusProvider: a second provider asking for
// an already registered name panics inside promauto.
type PrometheusProvider struct {
	factory promauto.Factory

	mu         sync.Mutex
	counters   map[string]Counter
	gauges     map[string]UpDownCounter
	histograms map[string]Histogram
}

// NewPrometheusProvider returns a provider registering into reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewPrometheusProvider(reg prometheus.Registerer) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusProvider{
		factory:    promauto.With(reg),
		counters:   make(map[string]Counter),
		gauges:     make(map[string]UpDownCounter),
		histograms: make(map[string]Histogram),
	}
}

func help(name string, cfg InstrumentConfig) string {
	if cfg.Description != "" {
		return cfg.Description
	}
	return name
}

// Counter returns the Prometheus counter registered under name.
func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return c
	}
	cfg := applyOptions(opts)
	c := promCounter{p.factory.NewCounter(prometheus.CounterOpts{
		Name:        name,
		Help:        help(name, cfg),
		ConstLabels: cfg.Attributes,
	})}
	p.counters[name] = c
	return c
}

// UpDownCounter returns the Prometheus gauge registered under name.
func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if g, ok := p.gauges[name]; ok {
		return g
	}
	cfg := applyOptions(opts)
	g := promGauge{p.factory.NewGauge(prometheus.GaugeOpts{
		Name:        name,
		Help:        help(name, cfg),
		ConstLabels: cfg.Attributes,
	})}
	p.gauges[name] = g
	return g
}

// Histogram returns the Prometheus histogram registered under name.
func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return h
	}
	cfg := applyOptions(opts)
	h := promHistogram{p.factory.NewHistogram(prometheus.HistogramOpts{
		Name:        name,
		Help:        help(name, cfg),
		ConstLabels: cfg.Attributes,
		Buckets:     prometheus.DefBuckets,
	})}
	p.histograms[name] = h
	return h
}

type promCounter struct{ c prometheus.Counter }

// Add ignores negative n; prometheus.Counter panics on decrease.
func (c promCounter) Add(n int64) {
	if n > 0 {
		c.c.Add(float64(n))
	}
}

type promGauge struct{ g prometheus.Gauge }

func (g promGauge) Add(n int64) { g.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h promHistogram) Record(v float64) { h.h.Observe(v) }
