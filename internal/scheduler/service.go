package scheduler

import (
	"sync/atomic"
	"time"
)

type (
	// Service is the contract a timer manager relies on to run jobs when
	// their triggers fire
	Service interface {
		// ScheduleJob submits job to run each time trigger fires. The
		// returned handle is also stored on ctx before the first fire. A
		// trigger with no fire time at all yields a nil handle
		ScheduleJob(job Job, ctx JobContext, trigger Trigger) *JobHandle

		// RemoveJob cancels the job behind handle, reporting whether it
		// was still scheduled
		RemoveJob(handle *JobHandle) bool

		// CurrentTime returns the backend's notion of now
		CurrentTime() time.Time

		// Shutdown stops the backend. Only the owner may call it
		Shutdown()

		// Shared reports whether the backend is owned elsewhere and merely
		// delegated to
		Shared() bool
	}

	// Job is the reusable body executed when a trigger fires
	Job interface {
		Execute(ctx JobContext) error
	}

	// JobContext is the addressing bundle handed to a Job at fire time
	JobContext interface {
		JobHandle() *JobHandle
		SetJobHandle(handle *JobHandle)
	}

	// Trigger computes when a job fires next
	Trigger interface {
		// NextFireTime returns the pending fire time without consuming it.
		// Repeated calls without an intervening Advance agree
		NextFireTime() (time.Time, bool)

		// Advance consumes the pending fire time
		Advance()
	}

	// JobHandle is the opaque reference to one scheduled job
	JobHandle struct {
		id        uint64
		cancelled atomic.Bool
	}
)

// NewJobHandle creates a handle for backends that allocate their own ids
func NewJobHandle(id uint64) *JobHandle {
	return &JobHandle{id: id}
}

// ID returns the backend-assigned identifier of the job
func (h *JobHandle) ID() uint64 {
	return h.id
}

// Cancel marks the handle cancelled, reporting whether this call did it
func (h *JobHandle) Cancel() bool {
	return h.cancelled.CompareAndSwap(false, true)
}

// Cancelled reports whether the job behind the handle was removed
func (h *JobHandle) Cancelled() bool {
	return h.cancelled.Load()
}
