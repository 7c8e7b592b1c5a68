package timer_test

import (
	"sync"
	"testing"
	"time"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

type (
	fakeRuntime struct {
		mu        sync.Mutex
		clock     time.Time
		inactive  bool
		mgr       *timer.Manager
		signals   []signalled
		starts    []started
		signalErr error
		startErr  error
		onSignal  func()
	}

	signalled struct {
		id      api.ProcessInstanceID
		event   string
		payload any
	}

	started struct {
		processID string
		params    map[string]any
		trigger   string
	}

	fakeService struct {
		now       time.Time
		shared    bool
		nextID    uint64
		jobs      map[uint64]*submitted
		removed   []uint64
		shutdowns int
	}

	submitted struct {
		job     scheduler.Job
		ctx     scheduler.JobContext
		trigger scheduler.Trigger
	}

	fakeRecorder struct {
		mu        sync.Mutex
		scheduled map[timer.JobKind]int
		fired     map[timer.JobKind]int
		failed    map[timer.JobKind]int
		skipped   map[timer.JobKind]int
		active    int
	}

	instance api.ProcessInstanceID
)

const sessionID api.SessionID = "session-1"

var (
	wallNow    = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	backendNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	sessionNow = time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
)

func newFixture(
	t *testing.T, opts ...timer.Option,
) (*fakeRuntime, *fakeService, *timer.Manager) {
	t.Helper()
	rt := &fakeRuntime{clock: sessionNow}
	svc := &fakeService{
		now:  backendNow,
		jobs: map[uint64]*submitted{},
	}
	opts = append([]timer.Option{
		timer.WithNow(func() time.Time { return wallNow }),
	}, opts...)
	rt.mgr = timer.NewManager(rt, svc, opts...)
	return rt, svc, rt.mgr
}

func (r *fakeRuntime) StartOperation() {
	r.mu.Lock()
}

func (r *fakeRuntime) EndOperation() {
	r.mu.Unlock()
}

func (r *fakeRuntime) SessionClock() scheduler.Clock {
	return func() time.Time { return r.clock }
}

func (r *fakeRuntime) SignalManager() timer.SignalManager {
	return r
}

func (r *fakeRuntime) SignalEvent(
	id api.ProcessInstanceID, event string, payload any,
) error {
	if r.onSignal != nil {
		r.onSignal()
	}
	if r.signalErr != nil {
		return r.signalErr
	}
	r.signals = append(r.signals, signalled{id, event, payload})
	return nil
}

func (r *fakeRuntime) StartProcess(
	processID string, params map[string]any, trigger string,
) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.starts = append(r.starts, started{processID, params, trigger})
	return nil
}

func (r *fakeRuntime) Identifier() api.SessionID {
	return sessionID
}

func (r *fakeRuntime) TimerManager() *timer.Manager {
	return r.mgr
}

func (r *fakeRuntime) IsActive() bool {
	return !r.inactive
}

// Unlocked reports whether the operation lock is free
func (r *fakeRuntime) Unlocked() bool {
	if !r.mu.TryLock() {
		return false
	}
	r.mu.Unlock()
	return true
}

func (s *fakeService) ScheduleJob(
	job scheduler.Job, ctx scheduler.JobContext, tr scheduler.Trigger,
) *scheduler.JobHandle {
	if _, ok := tr.NextFireTime(); !ok {
		return nil
	}
	s.nextID++
	h := scheduler.NewJobHandle(s.nextID)
	ctx.SetJobHandle(h)
	s.jobs[h.ID()] = &submitted{job: job, ctx: ctx, trigger: tr}
	return h
}

func (s *fakeService) RemoveJob(h *scheduler.JobHandle) bool {
	s.removed = append(s.removed, h.ID())
	return h.Cancel()
}

func (s *fakeService) CurrentTime() time.Time {
	return s.now
}

func (s *fakeService) Shutdown() {
	s.shutdowns++
}

func (s *fakeService) Shared() bool {
	return s.shared
}

// Fire consumes the pending fire time and runs the job the way the owned
// scheduler does
func (s *fakeService) Fire(h *scheduler.JobHandle) error {
	j := s.jobs[h.ID()]
	j.trigger.Advance()
	return j.job.Execute(j.ctx)
}

// FireAll keeps firing the job until its trigger runs out, it is
// cancelled, or it fails, returning the number of fires
func (s *fakeService) FireAll(h *scheduler.JobHandle, limit int) int {
	j := s.jobs[h.ID()]
	n := 0
	for ; n < limit; n++ {
		if _, ok := j.trigger.NextFireTime(); !ok || h.Cancelled() {
			break
		}
		if err := s.Fire(h); err != nil {
			return n + 1
		}
	}
	return n
}

func (s *fakeService) Next(h *scheduler.JobHandle) (time.Time, bool) {
	return s.jobs[h.ID()].trigger.NextFireTime()
}

func (s *fakeService) Context(h *scheduler.JobHandle) scheduler.JobContext {
	return s.jobs[h.ID()].ctx
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		scheduled: map[timer.JobKind]int{},
		fired:     map[timer.JobKind]int{},
		failed:    map[timer.JobKind]int{},
		skipped:   map[timer.JobKind]int{},
	}
}

func (r *fakeRecorder) TimerScheduled(kind timer.JobKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled[kind]++
}

func (r *fakeRecorder) TimerFired(kind timer.JobKind, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.failed[kind]++
		return
	}
	r.fired[kind]++
}

func (r *fakeRecorder) TimerSkipped(kind timer.JobKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped[kind]++
}

func (r *fakeRecorder) TimersActive(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

func (i instance) ID() api.ProcessInstanceID {
	return api.ProcessInstanceID(i)
}
