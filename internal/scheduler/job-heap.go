package scheduler

import (
	"container/heap"
	"time"
)

type (
	// Entry describes one scheduled job and its pending fire time
	Entry struct {
		Handle  *JobHandle
		Job     Job
		Context JobContext
		Trigger Trigger
		At      time.Time
		index   int
	}

	// JobHeap stores scheduled jobs ordered by fire time
	JobHeap struct {
		items []*Entry
		byID  map[uint64]*Entry
	}
)

// NewJobHeap creates an empty job heap with handle lookup
func NewJobHeap() *JobHeap {
	h := &JobHeap{
		byID: map[uint64]*Entry{},
	}
	heap.Init(h)
	return h
}

// Insert adds an entry or moves the existing entry for the same handle
func (h *JobHeap) Insert(e *Entry) {
	if e == nil || e.Handle == nil || e.Job == nil || e.At.IsZero() {
		return
	}
	if old, ok := h.byID[e.Handle.id]; ok {
		old.At = e.At
		heap.Fix(h, old.index)
		return
	}
	heap.Push(h, e)
}

// PopEntry removes and returns the entry due first
func (h *JobHeap) PopEntry() *Entry {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Entry)
}

// Peek returns the entry due first without removing it
func (h *JobHeap) Peek() *Entry {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// Remove drops the entry for the handle id, if present
func (h *JobHeap) Remove(id uint64) bool {
	e, ok := h.byID[id]
	if !ok {
		return false
	}
	heap.Remove(h, e.index)
	return true
}

// Len returns the number of scheduled entries
func (h *JobHeap) Len() int {
	return len(h.items)
}

// Less reports whether the entry at i is due before the entry at j
func (h *JobHeap) Less(i, j int) bool {
	return h.items[i].At.Before(h.items[j].At)
}

// Swap exchanges the heap items at the provided indexes
func (h *JobHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

// Push adds an entry to the underlying heap implementation
func (h *JobHeap) Push(x any) {
	e := x.(*Entry)
	e.index = len(h.items)
	h.items = append(h.items, e)
	h.byID[e.Handle.id] = e
}

// Pop removes an entry from the underlying heap implementation
func (h *JobHeap) Pop() any {
	old := h.items
	n := len(old)
	if n == 0 {
		return nil
	}
	e := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	e.index = -1
	delete(h.byID, e.Handle.id)
	return e
}
