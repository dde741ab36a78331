package handoff

import "github.com/ygrebnov/handoff/metrics"

const (
	MetricItemsPushed   = "handoff_items_pushed_total"
	MetricItemsPopped   = "handoff_items_popped_total"
	MetricQueueLength   = "handoff_queue_length"
	MetricPushWaits     = "handoff_push_waits_total"
	MetricPopWaits      = "handoff_pop_waits_total"
	MetricItemsProduced = "handoff_items_produced_total"
	MetricItemsConsumed = "handoff_items_consumed_total"
	MetricRunSeconds    = "handoff_run_seconds"
)

// queueInstruments are resolved once per queue so the hot path does not hit
// the provider's name lookup.
type queueInstruments struct {
	pushed    metrics.Counter
	popped    metrics.Counter
	length    metrics.UpDownCounter
	pushWaits metrics.Counter
	popWaits  metrics.Counter
}

func newQueueInstruments(p metrics.Provider) queueInstruments {
	if p == nil {
		p = metrics.NewNoopProvider()
	}
	return queueInstruments{
		pushed:    p.Counter(MetricItemsPushed, metrics.WithDescription("Items appended to the queue")),
		popped:    p.Counter(MetricItemsPopped, metrics.WithDescription("Items removed from the queue")),
		length:    p.UpDownCounter(MetricQueueLength, metrics.WithDescription("Current queue length")),
		pushWaits: p.Counter(MetricPushWaits, metrics.WithDescription("Pushes that waited on a full queue")),
		popWaits:  p.Counter(MetricPopWaits, metrics.WithDescription("Pops that waited on an empty queue")),
	}
}
