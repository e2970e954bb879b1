// Package util
//
// This file provides the expiration ledger used by the storage engines.
//
// MapHeap combines a binary min-heap with a hash map. The heap orders items
// by priority (for the engines: the expiry instant in unix nanoseconds), the
// map gives direct access to the item of a key. A key is contained at most
// once, adding it again updates its priority in place.
//
// Complexity:
//   - O(log n) for AddItem, RemoveByKey and heap.Pop
//   - O(1) for Peek, Contains and GetByKey
//
// Thread-safety: MapHeap is not thread-safe. The engines only ever touch a
// ledger from the sweeper goroutine of its shard.
//
// Example usage:
//
//	ledger := NewMapHeap[string]()
//	ledger.AddItem("session:1", deadline1)
//	ledger.AddItem("session:2", deadline2)
//
//	// earliest deadline
//	next, ok := ledger.Peek()
//
//	// the key was overwritten without expiry
//	ledger.RemoveByKey("session:1")
package util

import (
	"container/heap"
	"fmt"
)

// Item is an entry of a MapHeap
type Item[K comparable] struct {
	Key      K     // Unique identifier for the item
	Priority int64 // Smaller priorities are popped first
	index    int   // Index in the heap, maintained by heap package
}

func (i *Item[K]) String() string {
	return fmt.Sprintf("{Key: %v, Priority: %d}", i.Key, i.Priority)
}

// MapHeap implements a min-heap with key-based access
type MapHeap[K comparable] struct {
	items    []*Item[K]     // The actual heap slice
	itemsMap map[K]*Item[K] // Map for O(1) access by key
}

// NewMapHeap creates a new, empty MapHeap. The heap needs no further
// initialization.
func NewMapHeap[K comparable]() *MapHeap[K] {
	return &MapHeap[K]{
		items:    make([]*Item[K], 0),
		itemsMap: make(map[K]*Item[K]),
	}
}

// Len returns the number of items in the queue (part of heap.Interface)
func (mh *MapHeap[K]) Len() int { return len(mh.items) }

// Less compares items by priority (part of heap.Interface)
func (mh *MapHeap[K]) Less(i, j int) bool {
	return mh.items[i].Priority < mh.items[j].Priority
}

// Swap exchanges items at positions i and j (part of heap.Interface)
func (mh *MapHeap[K]) Swap(i, j int) {
	mh.items[i], mh.items[j] = mh.items[j], mh.items[i]
	mh.items[i].index = i
	mh.items[j].index = j
}

// Push adds an item to the heap (part of heap.Interface).
// Use AddItem instead, it keeps keys unique.
func (mh *MapHeap[K]) Push(x interface{}) {
	it := x.(*Item[K])
	it.index = len(mh.items)
	mh.items = append(mh.items, it)
	mh.itemsMap[it.Key] = it
}

// Pop removes and returns the minimum item (part of heap.Interface)
func (mh *MapHeap[K]) Pop() interface{} {
	old := mh.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil // Avoid memory leak
	it.index = -1
	mh.items = old[:n-1]
	delete(mh.itemsMap, it.Key)
	return it
}

// AddItem adds a new item to the queue or updates the priority of an existing one
func (mh *MapHeap[K]) AddItem(key K, priority int64) {
	if it, exists := mh.itemsMap[key]; exists {
		it.Priority = priority
		heap.Fix(mh, it.index)
		return
	}
	heap.Push(mh, &Item[K]{Key: key, Priority: priority})
}

// RemoveByKey removes an item by its key and returns its priority
func (mh *MapHeap[K]) RemoveByKey(key K) (int64, bool) {
	it, exists := mh.itemsMap[key]
	if !exists {
		return 0, false
	}
	heap.Remove(mh, it.index)
	return it.Priority, true
}

// Peek returns the minimum item without removing it
func (mh *MapHeap[K]) Peek() (*Item[K], bool) {
	if len(mh.items) == 0 {
		return nil, false
	}
	return mh.items[0], true
}

// Contains checks if a key exists in the queue
func (mh *MapHeap[K]) Contains(key K) bool {
	_, exists := mh.itemsMap[key]
	return exists
}

// GetByKey retrieves an item by its key without removing it.
// The returned item must not be modified.
func (mh *MapHeap[K]) GetByKey(key K) (*Item[K], bool) {
	it, exists := mh.itemsMap[key]
	return it, exists
}
