package timer

import (
	"sync"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

type (
	// ProcessJobContext addresses a fire at a running process instance
	ProcessJobContext struct {
		Timer             *TimerInstance
		Trigger           scheduler.Trigger
		ProcessInstanceID api.ProcessInstanceID
		SessionID         api.SessionID
		Runtime           Runtime

		mu     sync.Mutex
		handle *scheduler.JobHandle
	}

	// StartProcessJobContext addresses a fire that starts a new process
	StartProcessJobContext struct {
		ProcessJobContext
		ProcessID string
		Params    map[string]any
	}
)

var (
	_ scheduler.JobContext = (*ProcessJobContext)(nil)
	_ scheduler.JobContext = (*StartProcessJobContext)(nil)
)

// NewProcessJobContext binds a timer and its trigger to a process instance
func NewProcessJobContext(
	t *TimerInstance, tr scheduler.Trigger, id api.ProcessInstanceID,
	rt Runtime,
) *ProcessJobContext {
	return &ProcessJobContext{
		Timer:             t,
		Trigger:           tr,
		ProcessInstanceID: id,
		SessionID:         rt.Identifier(),
		Runtime:           rt,
	}
}

// NewStartProcessJobContext binds a timer and its trigger to the start of
// processID. It carries no owning process instance
func NewStartProcessJobContext(
	t *TimerInstance, tr scheduler.Trigger, processID string,
	params map[string]any, rt Runtime,
) *StartProcessJobContext {
	return &StartProcessJobContext{
		ProcessJobContext: ProcessJobContext{
			Timer:     t,
			Trigger:   tr,
			SessionID: rt.Identifier(),
			Runtime:   rt,
		},
		ProcessID: processID,
		Params:    params,
	}
}

// JobHandle returns the handle the backend assigned at submission
func (c *ProcessJobContext) JobHandle() *scheduler.JobHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// SetJobHandle records the backend handle
func (c *ProcessJobContext) SetJobHandle(h *scheduler.JobHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handle = h
}
