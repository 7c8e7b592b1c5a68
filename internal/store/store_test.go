package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/internal/session"
	"github.com/evacchi/droolsjbpm-knowledge/internal/store"
	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
	"github.com/evacchi/droolsjbpm-knowledge/internal/trigger"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

type recordingService struct {
	nextID   uint64
	triggers map[uint64]scheduler.Trigger
	contexts map[uint64]scheduler.JobContext
}

var activated = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestSaveLoad(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	timers := []timer.TimerInstance{
		{
			ID:                1,
			ProcessInstanceID: 10,
			SessionID:         "s1",
			Delay:             5 * time.Second,
			Period:            time.Minute,
			RepeatLimit:       trigger.Unlimited,
			Activated:         activated,
			LastTriggered:     activated.Add(5 * time.Second),
		},
		{
			ID:                3,
			ProcessInstanceID: api.NoProcessInstance,
			SessionID:         "s1",
			RepeatLimit:       trigger.Unlimited,
			CronExpression:    "@hourly",
			Activated:         activated,
			ProcessID:         "nightly",
			Params:            map[string]any{"region": "eu"},
		},
	}
	require.NoError(t, s.Save(ctx, timers, 3))

	got, lastID, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), lastID)
	assert.Equal(t, timers, got)
}

func TestSaveReplacesSnapshot(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []timer.TimerInstance{
		{ID: 1, SessionID: "s1", Activated: activated},
		{ID: 2, SessionID: "s1", Activated: activated},
	}, 2))
	require.NoError(t, s.Save(ctx, []timer.TimerInstance{
		{ID: 5, SessionID: "s1", Activated: activated},
	}, 5))

	got, lastID, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), lastID)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)

	require.NoError(t, s.Save(ctx, nil, 5))
	got, _, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadEmpty(t *testing.T) {
	s, _ := newStore(t)
	got, lastID, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int64(0), lastID)
}

func TestLoadSession(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []timer.TimerInstance{
		{ID: 1, SessionID: "a", Activated: activated},
		{ID: 2, SessionID: "b", Activated: activated},
		{ID: 3, SessionID: "a", Activated: activated},
	}, 3))

	got, _, err := s.LoadSession(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestPutDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	tm := &timer.TimerInstance{ID: 7, SessionID: "a", Activated: activated}
	require.NoError(t, s.Put(ctx, tm))
	got, _, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	require.NoError(t, s.Delete(ctx, 7))
	got, _, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadCorruptTimer(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	mr.HSet("test:timers", "9", "{not json")
	_, _, err := s.Load(ctx)
	assert.ErrorIs(t, err, store.ErrDecodeTimer)

	mr.HSet("test:timers", "9", `{"id":"nine"}`)
	_, _, err = s.Load(ctx)
	assert.ErrorIs(t, err, store.ErrDecodeTimer)
}

func TestSaveRestoreManager(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	src := session.New(newRecordingService(), session.WithID("node-1"))
	mgr := src.TimerManager()
	inst := src.Processes().NewInstance()

	interval := timer.NewTimer(time.Hour, time.Minute)
	require.NoError(t, mgr.RegisterTimer(interval, inst))
	cron := timer.NewCronTimer("@every 5m")
	require.NoError(t, mgr.RegisterTimer(cron, inst))
	start := timer.NewTimer(time.Hour, 0)
	require.NoError(t, mgr.RegisterStartTimer(start, "report", nil))

	require.NoError(t, s.SaveManager(ctx, mgr))

	svc := newRecordingService()
	dst := session.New(svc, session.WithID("node-1"))
	n, err := s.RestoreManager(ctx, dst.TimerManager(), "node-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(3), dst.TimerManager().InternalGetTimerID())

	restored := dst.TimerManager().Timers()
	require.Len(t, restored, 3)

	got := restored[0]
	assert.Equal(t, interval.ID, got.ID)
	assert.Equal(t, inst.ID(), got.ProcessInstanceID)
	assert.IsType(t, &trigger.Interval{}, svc.triggers[got.JobHandle.ID()])

	got = restored[1]
	assert.Equal(t, "@every 5m", got.CronExpression)
	assert.IsType(t, &trigger.Overdue{}, svc.triggers[got.JobHandle.ID()])

	got = restored[2]
	assert.Equal(t, "report", got.ProcessID)
	assert.IsType(t, &trigger.Overdue{}, svc.triggers[got.JobHandle.ID()])
	assert.IsType(t,
		&timer.StartProcessJobContext{}, svc.contexts[got.JobHandle.ID()],
	)

	other := session.New(newRecordingService(), session.WithID("node-2"))
	n, err = s.RestoreManager(ctx, other.TimerManager(), "node-2")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(3), other.TimerManager().InternalGetTimerID())
}

func TestRestoreSkipsBadTimer(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []timer.TimerInstance{
		{
			ID:                1,
			ProcessInstanceID: 4,
			SessionID:         "n",
			CronExpression:    "not cron",
			RepeatLimit:       trigger.Unlimited,
			Activated:         activated,
		},
		{
			ID:                2,
			ProcessInstanceID: 4,
			SessionID:         "n",
			Delay:             time.Hour,
			RepeatLimit:       trigger.Unlimited,
			Activated:         activated,
		},
	}, 2))

	dst := session.New(newRecordingService(), session.WithID("n"))
	n, err := s.RestoreManager(ctx, dst.TimerManager(), "n")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func newStore(t *testing.T) (*store.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.New(client, "test"), mr
}

func newRecordingService() *recordingService {
	return &recordingService{
		triggers: map[uint64]scheduler.Trigger{},
		contexts: map[uint64]scheduler.JobContext{},
	}
}

func (r *recordingService) ScheduleJob(
	_ scheduler.Job, ctx scheduler.JobContext, tr scheduler.Trigger,
) *scheduler.JobHandle {
	if _, ok := tr.NextFireTime(); !ok {
		return nil
	}
	r.nextID++
	h := scheduler.NewJobHandle(r.nextID)
	ctx.SetJobHandle(h)
	r.triggers[h.ID()] = tr
	r.contexts[h.ID()] = ctx
	return h
}

func (r *recordingService) RemoveJob(h *scheduler.JobHandle) bool {
	return h.Cancel()
}

func (r *recordingService) CurrentTime() time.Time {
	return time.Now()
}

func (r *recordingService) Shutdown() {}

func (r *recordingService) Shared() bool {
	return false
}
