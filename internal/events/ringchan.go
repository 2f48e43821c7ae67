// Package events delivers state-machine notifications to slow observers without ever
// blocking the polling loop.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/hedzr/go-ringbuf/v2/mpmc"
)

// RingChannel is a bounded buffer with overwrite-oldest semantics. Publishers never
// block: when the buffer is full the oldest value is dropped to make room.
//
//	rc := events.NewRingChannel[device.Transition](16)
//	machine.Subscribe(func(t device.Transition) { rc.Send(t) })
//
//	for t := range rc.C() {
//	    log.Println(t.From, "->", t.To)
//	}
type RingChannel[T any] struct {
	// mu serializes publishers and Close; the ring itself handles the reader side.
	mu     sync.Mutex
	buffer mpmc.RichOverlappedRingBuffer[T]
	closed bool

	ready chan struct{}
	done  chan struct{}

	drainOnce sync.Once
	out       chan T

	metrics Metrics
}

// NewRingChannel creates a ring holding up to capacity values. The ring rounds
// capacity up to a power of two.
func NewRingChannel[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("events: capacity must be > 0")
	}
	return &RingChannel[T]{
		buffer: mpmc.NewOverlappedRingBuffer[T](uint32(capacity)),
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Send publishes v, dropping the oldest buffered values if the ring is full.
// It reports whether anything was dropped. Sends after Close are discarded.
func (rc *RingChannel[T]) Send(v T) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		atomic.AddInt64(&rc.metrics.Dropped, 1)
		return true
	}

	overwrites, err := rc.buffer.EnqueueM(v)
	if err != nil {
		atomic.AddInt64(&rc.metrics.Dropped, 1)
		return true
	}
	atomic.AddInt64(&rc.metrics.Published, 1)
	atomic.AddInt64(&rc.metrics.Dropped, int64(overwrites))

	select {
	case rc.ready <- struct{}{}:
	default:
	}
	return overwrites > 0
}

// TryReceive returns the oldest buffered value without blocking.
func (rc *RingChannel[T]) TryReceive() (T, bool) {
	var zero T
	if rc.buffer.IsEmpty() {
		return zero, false
	}
	v, err := rc.buffer.Dequeue()
	if err != nil {
		return zero, false
	}
	atomic.AddInt64(&rc.metrics.Delivered, 1)
	return v, true
}

// C returns a channel draining the ring in order. It is closed once the ring is
// closed and empty. Use either C or TryReceive, not both.
func (rc *RingChannel[T]) C() <-chan T {
	rc.drainOnce.Do(func() {
		rc.out = make(chan T)
		go rc.drain()
	})
	return rc.out
}

func (rc *RingChannel[T]) drain() {
	defer close(rc.out)

	for {
		rc.flush()
		select {
		case <-rc.ready:
		case <-rc.done:
			rc.flush()
			return
		}
	}
}

func (rc *RingChannel[T]) flush() {
	for {
		v, ok := rc.TryReceive()
		if !ok {
			return
		}
		rc.out <- v
	}
}

// Len returns the number of buffered values.
func (rc *RingChannel[T]) Len() int {
	return int(rc.buffer.Quantity())
}

// Cap returns the ring capacity.
func (rc *RingChannel[T]) Cap() int {
	return int(rc.buffer.Cap())
}

// Close ends the stream. Buffered values can still be drained. Close is idempotent.
func (rc *RingChannel[T]) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if !rc.closed {
		rc.closed = true
		close(rc.done)
	}
}

// Metrics returns a snapshot of the counters.
func (rc *RingChannel[T]) Metrics() Metrics {
	return Metrics{
		Published: atomic.LoadInt64(&rc.metrics.Published),
		Dropped:   atomic.LoadInt64(&rc.metrics.Dropped),
		Delivered: atomic.LoadInt64(&rc.metrics.Delivered),
	}
}

// Metrics counts ring traffic.
type Metrics struct {
	Published int64
	Dropped   int64
	Delivered int64
}
