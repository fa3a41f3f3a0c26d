package util

import (
	"sync"
)

// Mailbox holds the most recent value put into it and signals its
// arrival on a channel of size 1. Bursts of Put calls coalesce into a
// single pending notification; Take returns the latest value.
type Mailbox[T any] struct {
	mu      sync.Mutex
	value   T
	pending bool
	notify  chan struct{}
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{
		notify: make(chan struct{}, 1),
	}
}

// Put stores value, replacing any unread one. It never blocks.
func (m *Mailbox[T]) Put(value T) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.value = value
	m.pending = true

	select {
	case m.notify <- struct{}{}:
	default:
		// notification already pending
	}
}

// Notify returns the channel to select on.
func (m *Mailbox[T]) Notify() <-chan struct{} {
	return m.notify
}

// Take returns the latest value and whether one was unread. It also
// drains a notification that has not been received yet.
func (m *Mailbox[T]) Take() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	select {
	case <-m.notify:
	default:
	}

	ok := m.pending
	m.pending = false
	return m.value, ok
}
