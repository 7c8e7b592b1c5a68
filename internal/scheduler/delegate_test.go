package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
)

type ownedService struct {
	now       time.Time
	shutdowns int
	scheduled int
	removed   int
}

func TestDelegateForwards(t *testing.T) {
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)
	target := &ownedService{now: now}
	d := scheduler.NewDelegate(target)

	assert.True(t, d.Shared())
	assert.False(t, target.Shared())
	assert.Same(t, target, d.Target())
	assert.Equal(t, now, d.CurrentTime())

	ctx := &testContext{}
	h := d.ScheduleJob(runOnce(nil), ctx, newListTrigger(now))
	assert.NotNil(t, h)
	assert.Same(t, h, ctx.JobHandle())
	assert.True(t, d.RemoveJob(h))
	assert.Equal(t, 1, target.scheduled)
	assert.Equal(t, 1, target.removed)
}

func TestDelegateShutdownLeavesTarget(t *testing.T) {
	target := &ownedService{}
	d := scheduler.NewDelegate(target)
	d.Shutdown()
	assert.Equal(t, 0, target.shutdowns)
}

func (o *ownedService) ScheduleJob(
	_ scheduler.Job, ctx scheduler.JobContext, _ scheduler.Trigger,
) *scheduler.JobHandle {
	o.scheduled++
	h := scheduler.NewJobHandle(uint64(o.scheduled))
	ctx.SetJobHandle(h)
	return h
}

func (o *ownedService) RemoveJob(h *scheduler.JobHandle) bool {
	o.removed++
	return h.Cancel()
}

func (o *ownedService) CurrentTime() time.Time {
	return o.now
}

func (o *ownedService) Shutdown() {
	o.shutdowns++
}

func (o *ownedService) Shared() bool {
	return false
}
