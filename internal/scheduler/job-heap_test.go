package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
)

func TestJobHeapOrderAndRemove(t *testing.T) {
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)
	h := scheduler.NewJobHeap()
	job := runOnce(nil)
	insert := func(id uint64, at time.Time) *scheduler.JobHandle {
		handle := scheduler.NewJobHandle(id)
		h.Insert(&scheduler.Entry{Handle: handle, Job: job, At: at})
		return handle
	}

	a := insert(1, now.Add(3*time.Second))
	insert(2, now.Add(2*time.Second))
	insert(3, now.Add(4*time.Second))
	assert.Equal(t, 3, h.Len())

	peek := h.Peek()
	if assert.NotNil(t, peek) {
		assert.Equal(t, uint64(2), peek.Handle.ID())
	}

	h.Insert(&scheduler.Entry{Handle: a, Job: job, At: now.Add(time.Second)})
	assert.Equal(t, 3, h.Len())
	peek = h.Peek()
	if assert.NotNil(t, peek) {
		assert.Equal(t, uint64(1), peek.Handle.ID())
	}

	assert.True(t, h.Remove(1))
	assert.False(t, h.Remove(1))

	var ids []uint64
	for e := h.PopEntry(); e != nil; e = h.PopEntry() {
		ids = append(ids, e.Handle.ID())
	}
	assert.Equal(t, []uint64{2, 3}, ids)
	assert.Nil(t, h.Peek())
}

func TestJobHeapIgnoresIncompleteEntries(t *testing.T) {
	h := scheduler.NewJobHeap()
	h.Insert(nil)
	h.Insert(&scheduler.Entry{Job: runOnce(nil), At: time.Now()})
	h.Insert(&scheduler.Entry{
		Handle: scheduler.NewJobHandle(1), Job: runOnce(nil),
	})
	assert.Equal(t, 0, h.Len())
}
