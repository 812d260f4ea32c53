package testutil

import "sync"

// Sequence provides a thread-safe monotonic counter for tests.
//
// The harness numbers report entries with it so that the same scenario
// run twice produces identical seq values, which golden comparison
// depends on.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Sequence struct {
	mu  sync.Mutex
	seq int
}

// NewSequence creates a new sequence starting at 0.
//
// The first call to Next() returns 1.
func NewSequence() *Sequence {
	return &Sequence{seq: 0}
}

// Next increments and returns the next sequence number.
//
// Monotonic: always returns seq+1, never decreases.
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Current returns the current sequence number without incrementing.
func (s *Sequence) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Reset resets the sequence to 0.
//
// Used for test reuse. After Reset(), the next call to Next() returns 1.
func (s *Sequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = 0
}
