// Package syncslot provides a mutex-guarded single-value holder used to
// publish a handle across goroutines. The holder distinguishes "read the
// current value, which may be absent" from "this call site requires a value
// and treats absence as a caller bug".
package syncslot

import "sync"

// Slot holds at most one value of type T behind a mutex.
//
// The zero value is not usable; construct with New, supplying the error
// returned by GetOrErr when the slot is empty.
type Slot[T any] struct {
	mu       sync.Mutex
	value    T
	present  bool
	emptyErr error
}

// New creates an empty slot. emptyErr is returned by GetOrErr while no
// value is set.
func New[T any](emptyErr error) *Slot[T] {
	return &Slot[T]{emptyErr: emptyErr}
}

// Get returns the current value and whether one is set.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.present
}

// GetOrErr returns the current value, or the slot's empty error if none is
// set. Callers use this where an absent value is a programming error rather
// than a condition to recover from.
func (s *Slot[T]) GetOrErr() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		var zero T
		return zero, s.emptyErr
	}
	return s.value, nil
}

// Set replaces any previous value. No notification is made.
func (s *Slot[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	s.present = true
}

// Clear empties the slot.
func (s *Slot[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.value = zero
	s.present = false
}
