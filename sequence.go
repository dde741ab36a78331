package handoff

import "sync/atomic"

// Item is a unit of work. Its value is its identity: unique across all
// producers sharing a Sequence.
type Item uint64

// Sequence hands out Items in increasing order starting at zero.
// It is independent of any queue lock.
type Sequence struct {
	next atomic.Uint64
}

// Next returns a fresh Item.
func (s *Sequence) Next() Item {
	return Item(s.next.Add(1) - 1)
}

// Issued reports how many Items have been handed out.
func (s *Sequence) Issued() uint64 {
	return s.next.Load()
}
