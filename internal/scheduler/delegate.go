package scheduler

import "time"

// Delegate forwards to a Service owned by someone else. It reports itself as
// shared and never shuts the wrapped backend down
type Delegate struct {
	target Service
}

var _ Service = (*Delegate)(nil)

// NewDelegate wraps target so that consumers may use but not own it
func NewDelegate(target Service) *Delegate {
	return &Delegate{target: target}
}

// ScheduleJob forwards to the wrapped backend
func (d *Delegate) ScheduleJob(
	job Job, ctx JobContext, trigger Trigger,
) *JobHandle {
	return d.target.ScheduleJob(job, ctx, trigger)
}

// RemoveJob forwards to the wrapped backend
func (d *Delegate) RemoveJob(handle *JobHandle) bool {
	return d.target.RemoveJob(handle)
}

// CurrentTime forwards to the wrapped backend
func (d *Delegate) CurrentTime() time.Time {
	return d.target.CurrentTime()
}

// Shutdown is a no-op; the owner shuts the wrapped backend down
func (d *Delegate) Shutdown() {}

// Shared always reports true
func (d *Delegate) Shared() bool {
	return true
}

// Target returns the wrapped backend
func (d *Delegate) Target() Service {
	return d.target
}
