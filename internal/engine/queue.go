package engine

import (
	"sync"

	"github.com/bryanerjunyet/GuitarHero-Game/internal/ir"
)

// eventQueue is a thread-safe FIFO of game events.
//
// Sources enqueue from their own goroutines; the Runner dequeues. Events
// keep arrival order, so two events stamped with the same tick are applied
// in the order they were delivered.
//
// The signal channel (buffered, size 1) lets Run wait on the queue and a
// context at the same time.
type eventQueue struct {
	mu     sync.Mutex
	events []ir.Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]ir.Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends an event. Returns false once the queue is closed.
func (q *eventQueue) Enqueue(e ir.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking; the size-1 buffer coalesces signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front event without blocking.
func (q *eventQueue) TryDequeue() (ir.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil, false
	}

	e := q.events[0]
	q.events[0] = nil // release for GC

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that fires when events may be available.
// It is closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close stops further enqueues and wakes any waiter.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
