// Package util
//
// This file provides a lock-free Multi-Producer Single-Consumer (MPSC) queue.
//
// Features and Guarantees:
//
//   - Lock-Free Push: producers append with compare-and-swap, so writers of
//     different keys never wait on each other.
//   - Unbounded Size: the queue grows as needed, a producer never blocks on a
//     slow consumer.
//   - Single Consumer: values are delivered on the channel returned by Recv().
//     The channel is closed after Close() once all queued values are delivered.
//   - No Strict FIFO Guarantee across producers: the order of concurrent
//     pushes is the order in which their appends succeed. Values pushed by a
//     single goroutine keep their order.
package util

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node represents a single element in the queue
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// LockFreeMPSC is a lock-free multi-producer single-consumer queue backed by
// a linked list. A forwarding goroutine moves values from the list to the
// channel returned by Recv.
type LockFreeMPSC[T any] struct {
	head     atomic.Pointer[node[T]]
	tail     atomic.Pointer[node[T]]
	out      chan T
	consumer sync.WaitGroup
	closed   atomic.Bool
	length   atomic.Int64

	// wakes the forwarding goroutine when the list was empty
	mu   sync.Mutex
	cond *sync.Cond
}

// NewLockFreeMPSC creates a new queue and starts its forwarding goroutine
func NewLockFreeMPSC[T any]() *LockFreeMPSC[T] {
	sentinel := &node[T]{}

	q := &LockFreeMPSC[T]{
		out: make(chan T),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.consumer.Add(1)
	go q.forward()

	return q
}

// Push adds a value to the queue.
// Returns false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *LockFreeMPSC[T]) Push(value T) bool {
	if q.closed.Load() {
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()

		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				// a failed CAS means another producer already advanced the tail
				q.tail.CompareAndSwap(tailNode, newNode)
				q.length.Add(1)
				q.signal()
				return true
			}
		} else {
			// help a producer that appended but has not moved the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin with exponential backoff at low contention, yield otherwise
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// signal wakes the forwarding goroutine. Holding mu while signalling
// guarantees the wakeup cannot fall between its emptiness check and Wait.
func (q *LockFreeMPSC[T]) signal() {
	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// forward sends values from the linked list to the output channel
func (q *LockFreeMPSC[T]) forward() {
	defer q.consumer.Done()
	defer close(q.out)

	var zero T
	for {
		drained := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			drained = true

			value := next.value
			q.head.Store(next)
			q.out <- value
			q.length.Add(-1)

			// the node is the new sentinel, drop the reference for the gc
			next.value = zero
		}

		if !drained && q.closed.Load() {
			return
		}

		if !drained {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// Recv returns a receive-only channel for consuming from the queue.
// This allows the queue to be used with the '<-' operator in select statements.
func (q *LockFreeMPSC[T]) Recv() <-chan T {
	return q.out
}

// Close closes the queue, preventing further writes.
// Values already in the queue are still delivered to the consumer.
func (q *LockFreeMPSC[T]) Close() {
	q.closed.Store(true)
	q.signal()
}

// IsClosed returns true if the queue is closed.
func (q *LockFreeMPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns the number of values pushed but not yet received
func (q *LockFreeMPSC[T]) Len() int {
	return int(q.length.Load())
}
