package trigger

import (
	"time"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
)

// Overdue defers fire times that are already in the past by a fixed delay,
// giving a restored session time to settle before working off missed fires
type Overdue struct {
	orig  scheduler.Trigger
	clock scheduler.Clock
	delay time.Duration
}

// DefaultOverdueDelay is the recovery delay used when none is configured
const DefaultOverdueDelay = 2 * time.Second

var _ scheduler.Trigger = (*Overdue)(nil)

// NewOverdue wraps orig, measuring overdue-ness against clock
func NewOverdue(
	orig scheduler.Trigger, clock scheduler.Clock, delay time.Duration,
) *Overdue {
	return &Overdue{
		orig:  orig,
		clock: clock,
		delay: delay,
	}
}

// NextFireTime returns the wrapped fire time, or now plus the delay when
// the wrapped time has already passed
func (o *Overdue) NextFireTime() (time.Time, bool) {
	at, ok := o.orig.NextFireTime()
	if !ok {
		return time.Time{}, false
	}
	if now := o.clock(); at.Before(now) {
		return now.Add(o.delay), true
	}
	return at, true
}

// Advance consumes the wrapped trigger's pending fire time
func (o *Overdue) Advance() {
	o.orig.Advance()
}

// Unwrap returns the wrapped trigger
func (o *Overdue) Unwrap() scheduler.Trigger {
	return o.orig
}
