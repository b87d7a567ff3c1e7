package game

import "sync"

// foodEvent is an external food placement waiting to be applied.
type foodEvent struct {
	X, Y   float32
	Amount float32
}

// eventQueue is the single shared mutable structure touched by the input
// layer. Events accumulate between ticks and are drained atomically at a
// fixed point in the tick, so food never appears mid-tick.
type eventQueue struct {
	mu      sync.Mutex
	pending []foodEvent
}

func newEventQueue() *eventQueue {
	return &eventQueue{pending: make([]foodEvent, 0, 16)}
}

// Push enqueues an event. Safe for concurrent use.
func (q *eventQueue) Push(ev foodEvent) {
	q.mu.Lock()
	q.pending = append(q.pending, ev)
	q.mu.Unlock()
}

// Drain returns all pending events and empties the queue in one critical
// section. The returned slice is owned by the caller.
func (q *eventQueue) Drain() []foodEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	drained := q.pending
	q.pending = make([]foodEvent, 0, 16)
	return drained
}
