// Package handoff hands work items from any number of producers to any number of
// consumers through one fixed-capacity queue.
//
// Building blocks
//   - Queue[T]: bounded FIFO. Push blocks while full (backpressure); Pop blocks while
//     empty until an item arrives or production completes.
//   - Tracker: counts active producers. When the last one deregisters, production is
//     complete for good and every consumer blocked in Pop wakes up. The tracker shares
//     the queue's mutex, so "empty" and "complete" are always observed consistently.
//   - Producer / Consumer: workers built on the two above. A consumer stops only when
//     the queue is drained and production is complete; an empty queue while producers
//     are still active is waited out.
//   - Run: the coordinator. It validates options, spawns the workers, waits for all of
//     them and verifies that produced == consumed == producers*items.
//
// Defaults
// Unless overridden, Run uses:
//   - Producers: 3
//   - Consumers: 2
//   - Capacity: 10
//   - ItemsPerProducer: 50
//   - ProducerDelay: 10ms (slept before each item)
//   - ConsumerDelay: 20ms (slept after each item)
//   - Logger: slog.Default()
//   - Metrics: metrics.NoopProvider
//
// Producer registration
// A Producer registers with the tracker when it is constructed, not when it starts
// running. Construct all producers first, then start them; Run does exactly that.
//
// Cancellation
// The blocking queue operations have Context variants. A producer whose context ends
// still deregisters, so consumers are never left waiting for a completion that cannot
// happen.
package handoff
