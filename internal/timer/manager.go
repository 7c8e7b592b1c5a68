package timer

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/internal/trigger"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/log"
)

type (
	// Manager owns the timers of one session: it allocates their ids,
	// submits them to the scheduling backend, and cancels them
	Manager struct {
		rt           Runtime
		timers       sync.Map
		active       atomic.Int64
		timerID      atomic.Int64
		now          func() time.Time
		overdueDelay time.Duration
		recorder     Recorder
		disposed     bool

		svcMu sync.RWMutex
		svc   scheduler.Service
	}

	// Option configures a Manager
	Option func(*Manager)
)

// cronPeriod marks a cron timer as repeating
const cronPeriod = time.Millisecond

var ErrNilTimer = errors.New("timer is nil")

// NewManager creates a Manager for rt that schedules through svc
func NewManager(rt Runtime, svc scheduler.Service, opts ...Option) *Manager {
	m := &Manager{
		rt:           rt,
		svc:          svc,
		now:          time.Now,
		overdueDelay: trigger.DefaultOverdueDelay,
		recorder:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithNow sets the wall clock used to stamp activation and to measure
// elapsed time on recovery
func WithNow(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithOverdueDelay sets how long reloaded timers that missed a fire wait
// before catching up
func WithOverdueDelay(d time.Duration) Option {
	return func(m *Manager) {
		m.overdueDelay = d
	}
}

// WithRecorder installs a lifecycle observer
func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.recorder = r
		}
	}
}

// RegisterTimer schedules t to signal pi each time it fires
func (m *Manager) RegisterTimer(t *TimerInstance, pi ProcessInstance) error {
	if t == nil {
		return ErrNilTimer
	}
	m.rt.StartOperation()
	defer m.rt.EndOperation()

	svc := m.Service()
	tr, err := newTrigger(t, svc.CurrentTime())
	if err != nil {
		return err
	}
	t.ID = m.timerID.Add(1)
	t.ProcessInstanceID = pi.ID()
	t.SessionID = m.rt.Identifier()
	t.Activated = m.now()

	ctx := NewProcessJobContext(t, tr, t.ProcessInstanceID, m.rt)
	m.schedule(svc, t, processJob, ctx, tr)
	return nil
}

// RegisterStartTimer schedules t to start processID with params each time
// it fires
func (m *Manager) RegisterStartTimer(
	t *TimerInstance, processID string, params map[string]any,
) error {
	if t == nil {
		return ErrNilTimer
	}
	m.rt.StartOperation()
	defer m.rt.EndOperation()

	svc := m.Service()
	tr, err := newTrigger(t, svc.CurrentTime())
	if err != nil {
		return err
	}
	t.ID = m.timerID.Add(1)
	t.ProcessInstanceID = api.NoProcessInstance
	t.SessionID = m.rt.Identifier()
	t.Activated = m.now()
	t.ProcessID = processID
	t.Params = params

	ctx := NewStartProcessJobContext(t, tr, processID, params, m.rt)
	m.schedule(svc, t, startProcessJob, ctx, tr)
	return nil
}

// InternalAddTimer resubmits a previously persisted process timer, taking
// the wall time elapsed since it was activated or last fired off its next
// delay. Repeats left over are not tracked, so the resubmitted timer
// repeats without limit
func (m *Manager) InternalAddTimer(t *TimerInstance) error {
	if t == nil {
		return ErrNilTimer
	}
	m.rt.StartOperation()
	defer m.rt.EndOperation()

	svc := m.Service()
	now := m.now()
	var delay time.Duration
	if t.HasFired() {
		delay = max(0, now.Sub(t.LastTriggered)-t.Period)
	} else {
		delay = max(0, t.Delay-now.Sub(t.Activated))
	}

	tr := trigger.NewInterval(
		svc.CurrentTime(), delay, t.Period, trigger.Unlimited,
	)
	ctx := NewProcessJobContext(t, tr, t.ProcessInstanceID, m.rt)
	m.schedule(svc, t, processJob, ctx, tr)
	return nil
}

// ReloadTimer resubmits a persisted timer on its original schedule,
// anchored at its activation time. Fire times at or before its last fire
// are skipped, and a fire already missed is deferred by the overdue delay.
// A timer with nothing left to fire is dropped
func (m *Manager) ReloadTimer(t *TimerInstance) error {
	if t == nil {
		return ErrNilTimer
	}
	m.rt.StartOperation()
	defer m.rt.EndOperation()

	svc := m.Service()
	orig, err := reloadTrigger(t)
	if err != nil {
		return err
	}
	if _, ok := orig.NextFireTime(); !ok {
		slog.Debug("Timer exhausted, not reloaded", log.TimerID(t.ID))
		return nil
	}
	tr := trigger.NewOverdue(orig, m.rt.SessionClock(), m.overdueDelay)

	if t.StartsProcess() {
		ctx := NewStartProcessJobContext(t, tr, t.ProcessID, t.Params, m.rt)
		m.schedule(svc, t, startProcessJob, ctx, tr)
		return nil
	}
	ctx := NewProcessJobContext(t, tr, t.ProcessInstanceID, m.rt)
	m.schedule(svc, t, processJob, ctx, tr)
	return nil
}

// CancelTimer forgets the timer and cancels its job. Unknown ids are
// ignored
func (m *Manager) CancelTimer(id int64) {
	m.rt.StartOperation()
	defer m.rt.EndOperation()
	m.remove(id)
}

// Dispose releases every timer. A shared backend is left running; an owned
// one has its jobs cancelled and is then shut down
func (m *Manager) Dispose() {
	m.rt.StartOperation()
	defer m.rt.EndOperation()

	if m.disposed {
		return
	}
	m.disposed = true

	svc := m.Service()
	if svc.Shared() {
		m.timers.Range(func(k, _ any) bool {
			m.forget(k.(int64))
			return true
		})
		m.recorder.TimersActive(0)
		return
	}

	m.timers.Range(func(k, _ any) bool {
		m.remove(k.(int64))
		return true
	})
	svc.Shutdown()
	slog.Debug("Timer manager disposed",
		log.SessionID(m.rt.Identifier()))
}

// Timers returns copies of the registered timers ordered by id
func (m *Manager) Timers() []TimerInstance {
	m.rt.StartOperation()
	defer m.rt.EndOperation()

	var res []TimerInstance
	m.timers.Range(func(_, v any) bool {
		res = append(res, v.(*TimerInstance).Copy())
		return true
	})
	slices.SortFunc(res, func(a, b TimerInstance) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return res
}

// Timer returns a copy of the registered timer with the given id
func (m *Manager) Timer(id int64) (TimerInstance, bool) {
	m.rt.StartOperation()
	defer m.rt.EndOperation()

	v, ok := m.timers.Load(id)
	if !ok {
		return TimerInstance{}, false
	}
	return v.(*TimerInstance).Copy(), true
}

// Service returns the scheduling backend
func (m *Manager) Service() scheduler.Service {
	m.svcMu.RLock()
	defer m.svcMu.RUnlock()
	return m.svc
}

// SetService replaces the scheduling backend for subsequent operations
func (m *Manager) SetService(svc scheduler.Service) {
	m.svcMu.Lock()
	defer m.svcMu.Unlock()
	m.svc = svc
}

// InternalGetTimerID returns the last allocated timer id
func (m *Manager) InternalGetTimerID() int64 {
	return m.timerID.Load()
}

// InternalSetTimerID sets the last allocated timer id
func (m *Manager) InternalSetTimerID(id int64) {
	m.timerID.Store(id)
}

func (m *Manager) schedule(
	svc scheduler.Service, t *TimerInstance, job scheduler.Job,
	ctx scheduler.JobContext, tr scheduler.Trigger,
) {
	t.JobHandle = svc.ScheduleJob(job, ctx, tr)
	if _, loaded := m.timers.Swap(t.ID, t); !loaded {
		m.active.Add(1)
	}
	m.recorder.TimerScheduled(t.Kind())
	m.recorder.TimersActive(int(m.active.Load()))
	slog.Debug("Timer scheduled",
		log.TimerID(t.ID),
		log.ProcessInstanceID(t.ProcessInstanceID))
}

// remove forgets the timer and cancels its job; the operation lock must be
// held
func (m *Manager) remove(id int64) {
	t, ok := m.forget(id)
	if !ok {
		return
	}
	if t.JobHandle != nil {
		m.Service().RemoveJob(t.JobHandle)
	}
	m.recorder.TimersActive(int(m.active.Load()))
}

func (m *Manager) forget(id int64) (*TimerInstance, bool) {
	v, ok := m.timers.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	m.active.Add(-1)
	return v.(*TimerInstance), true
}

func newTrigger(t *TimerInstance, now time.Time) (scheduler.Trigger, error) {
	if t.IsCron() {
		c, err := trigger.NewCron(now, t.CronExpression)
		if err != nil {
			return nil, err
		}
		t.Period = cronPeriod
		return c, nil
	}
	return trigger.NewInterval(now, t.Delay, t.Period, t.RepeatLimit), nil
}

func reloadTrigger(t *TimerInstance) (scheduler.Trigger, error) {
	if t.IsCron() {
		anchor := t.Activated
		if t.LastTriggered.After(anchor) {
			anchor = t.LastTriggered
		}
		c, err := trigger.NewCron(anchor, t.CronExpression)
		if err != nil {
			return nil, err
		}
		t.Period = cronPeriod
		return c, nil
	}
	iv := trigger.NewInterval(t.Activated, t.Delay, t.Period, t.RepeatLimit)
	if t.HasFired() {
		iv.SkipThrough(t.LastTriggered)
	}
	return iv, nil
}
