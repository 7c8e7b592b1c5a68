package trigger

import (
	"time"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
)

// Interval fires at start+delay and then every period, up to a repeat limit
type Interval struct {
	next        time.Time
	period      time.Duration
	repeatLimit int
	repeatCount int
}

// Unlimited is the repeat limit of an interval that never runs out
const Unlimited = -1

var _ scheduler.Trigger = (*Interval)(nil)

// NewInterval creates an interval trigger anchored at start. A zero period
// fires once; a repeat limit of zero never fires
func NewInterval(
	start time.Time, delay, period time.Duration, repeatLimit int,
) *Interval {
	return &Interval{
		next:        start.Add(delay),
		period:      period,
		repeatLimit: repeatLimit,
	}
}

// NextFireTime returns the pending fire time, if any remain
func (i *Interval) NextFireTime() (time.Time, bool) {
	if i.exhausted() {
		return time.Time{}, false
	}
	return i.next, true
}

// Advance consumes the pending fire time
func (i *Interval) Advance() {
	if i.exhausted() {
		return
	}
	i.repeatCount++
	if i.period > 0 {
		i.next = i.next.Add(i.period)
	}
}

// SkipThrough consumes every pending fire time at or before t
func (i *Interval) SkipThrough(t time.Time) {
	if i.exhausted() || i.next.After(t) {
		return
	}
	if i.period <= 0 {
		i.repeatCount++
		return
	}
	n := int(t.Sub(i.next)/i.period) + 1
	if i.repeatLimit != Unlimited && i.repeatCount+n > i.repeatLimit {
		n = i.repeatLimit - i.repeatCount
	}
	i.repeatCount += n
	i.next = i.next.Add(time.Duration(n) * i.period)
}

// RepeatCount returns how many fire times have been consumed
func (i *Interval) RepeatCount() int {
	return i.repeatCount
}

func (i *Interval) exhausted() bool {
	if i.repeatLimit != Unlimited && i.repeatCount >= i.repeatLimit {
		return true
	}
	return i.period <= 0 && i.repeatCount > 0
}
