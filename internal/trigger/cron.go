package trigger

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
)

// Cron fires on every match of a cron expression, without end
type Cron struct {
	expr     string
	schedule cron.Schedule
	next     time.Time
}

// cronLead keeps a freshly registered cron timer from matching the instant
// it was registered in
const cronLead = time.Second

var (
	ErrInvalidCron = errors.New("invalid cron expression")

	cronParser = cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour |
			cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
)

var _ scheduler.Trigger = (*Cron)(nil)

// NewCron creates a cron trigger whose first fire is the first match after
// now plus a one second lead
func NewCron(now time.Time, expr string) (*Cron, error) {
	sched, err := ParseCron(expr)
	if err != nil {
		return nil, err
	}
	return &Cron{
		expr:     expr,
		schedule: sched,
		next:     sched.Next(now.Add(cronLead)),
	}, nil
}

// ParseCron parses a five or six field expression, or a descriptor such as
// @hourly or @every 5m
func ParseCron(expr string) (cron.Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidCron, expr, err)
	}
	return sched, nil
}

// NextFireTime returns the pending match. An expression that can never
// match again reports none
func (c *Cron) NextFireTime() (time.Time, bool) {
	if c.next.IsZero() {
		return time.Time{}, false
	}
	return c.next, true
}

// Advance moves to the match following the pending one
func (c *Cron) Advance() {
	if c.next.IsZero() {
		return
	}
	c.next = c.schedule.Next(c.next)
}

// Expression returns the cron expression the trigger was built from
func (c *Cron) Expression() string {
	return c.expr
}
