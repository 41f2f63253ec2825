// Package events provides a serial event dispatcher. All notifications
// raised through it are delivered on one long-lived goroutine, so
// subscribers observe a consistent view without their own locking and raise
// order is preserved.
package events

import "sync"

// defaultQueueSize bounds the pending-notification queue. Producers block
// once the queue is full rather than dropping notifications.
const defaultQueueSize = 64

// Dispatcher marshals callbacks onto a single dispatch goroutine.
type Dispatcher struct {
	queue chan func()

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewDispatcher creates a dispatcher and starts its dispatch goroutine.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		queue: make(chan func(), defaultQueueSize),
		done:  make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for fn := range d.queue {
		fn()
	}
}

// Post enqueues fn for execution on the dispatch goroutine. Calls from one
// producer are executed in the order they were posted. Post after Close is
// a silent no-op.
func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	// Enqueue under the mutex so Close cannot close the channel between the
	// check and the send.
	d.queue <- fn
	d.mu.Unlock()
}

// Close stops the dispatch goroutine after draining already-posted
// callbacks. Blocks until the last callback has run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	<-d.done
}
