package timer

import (
	"maps"
	"time"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/internal/trigger"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

// TimerInstance is the record of one scheduled timer
type TimerInstance struct {
	ID                int64
	ProcessInstanceID api.ProcessInstanceID
	SessionID         api.SessionID

	// Period zero means the timer will not fire again; the executor that
	// observes it drops the timer from its manager
	Delay       time.Duration
	Period      time.Duration
	RepeatLimit int

	CronExpression string

	Activated     time.Time
	LastTriggered time.Time

	// ProcessID and Params are only set on timers that start a process
	ProcessID string
	Params    map[string]any

	JobHandle *scheduler.JobHandle
}

// NewTimer returns an interval timer with no repeat limit
func NewTimer(delay, period time.Duration) *TimerInstance {
	return &TimerInstance{
		Delay:       delay,
		Period:      period,
		RepeatLimit: trigger.Unlimited,
	}
}

// NewCronTimer returns a timer driven by a cron expression
func NewCronTimer(expr string) *TimerInstance {
	return &TimerInstance{
		CronExpression: expr,
		RepeatLimit:    trigger.Unlimited,
	}
}

// IsCron reports whether the timer is driven by a cron expression
func (t *TimerInstance) IsCron() bool {
	return t.CronExpression != ""
}

// StartsProcess reports whether firing the timer starts a new process
// rather than signalling an existing instance
func (t *TimerInstance) StartsProcess() bool {
	return t.ProcessID != "" && t.ProcessInstanceID == api.NoProcessInstance
}

// HasFired reports whether the timer has fired at least once
func (t *TimerInstance) HasFired() bool {
	return !t.LastTriggered.IsZero()
}

// Copy returns a detached copy of the timer
func (t *TimerInstance) Copy() TimerInstance {
	res := *t
	res.Params = maps.Clone(t.Params)
	return res
}

// Kind returns the job kind that fires the timer
func (t *TimerInstance) Kind() JobKind {
	if t.StartsProcess() {
		return StartKind
	}
	return ProcessKind
}
