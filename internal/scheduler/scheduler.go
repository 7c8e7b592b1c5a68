package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/evacchi/droolsjbpm-knowledge/pkg/log"
)

type (
	// Scheduler is the owned scheduling backend. A single loop goroutine
	// keeps due jobs in a heap and hands each fire to its own goroutine
	Scheduler struct {
		now       Clock
		makeTimer TimerConstructor
		reqs      chan jobReq
		ctx       context.Context
		cancel    context.CancelFunc
		done      chan struct{}
		nextID    atomic.Uint64
		startOnce sync.Once
		stopOnce  sync.Once
		started   atomic.Bool
	}

	jobReqOp uint8

	jobReq struct {
		op     jobReqOp
		entry  *Entry
		handle *JobHandle
	}
)

const (
	jobReqSchedule jobReqOp = iota
	jobReqCancel
)

var _ Service = (*Scheduler)(nil)

// New creates a scheduler using the provided clock and timer constructor
func New(now Clock, makeTimer TimerConstructor) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		now:       now,
		makeTimer: makeTimer,
		reqs:      make(chan jobReq, 100),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start launches the scheduler loop. Calling it more than once is harmless
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
	})
}

// ScheduleJob submits job to fire whenever trigger says so
func (s *Scheduler) ScheduleJob(
	job Job, ctx JobContext, trigger Trigger,
) *JobHandle {
	at, ok := trigger.NextFireTime()
	if !ok {
		return nil
	}
	h := NewJobHandle(s.nextID.Add(1))
	ctx.SetJobHandle(h)
	s.submit(jobReq{
		op: jobReqSchedule,
		entry: &Entry{
			Handle:  h,
			Job:     job,
			Context: ctx,
			Trigger: trigger,
			At:      at,
		},
	})
	return h
}

// RemoveJob cancels the job behind handle
func (s *Scheduler) RemoveJob(handle *JobHandle) bool {
	if handle == nil || !handle.Cancel() {
		return false
	}
	s.submit(jobReq{op: jobReqCancel, handle: handle})
	return true
}

// CurrentTime returns the scheduler clock's current time
func (s *Scheduler) CurrentTime() time.Time {
	return s.now()
}

// Shutdown stops the loop. Jobs already executing are not waited for
func (s *Scheduler) Shutdown() {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.started.Load() {
			<-s.done
		}
	})
}

// Shared reports false: the scheduler belongs to whoever created it
func (s *Scheduler) Shared() bool {
	return false
}

func (s *Scheduler) run() {
	defer close(s.done)

	timer := s.makeTimer(0)
	var timerCh <-chan time.Time
	jobs := NewJobHeap()

	resetTimer := func() {
		var next time.Time
		if e := jobs.Peek(); e != nil {
			next = e.At
		}
		if next.IsZero() {
			timer.Stop()
			timerCh = nil
			return
		}
		delay := next.Sub(s.now())
		timer.Reset(delay)
		timerCh = timer.Channel()
	}

	resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case req := <-s.reqs:
			switch req.op {
			case jobReqSchedule:
				if !req.entry.Handle.Cancelled() {
					jobs.Insert(req.entry)
				}
			case jobReqCancel:
				jobs.Remove(req.handle.ID())
			}
			resetTimer()
		case <-timerCh:
			e := jobs.PopEntry()
			if e == nil {
				resetTimer()
				continue
			}
			e.Trigger.Advance()
			go s.execute(e)
			resetTimer()
		}
	}
}

func (s *Scheduler) execute(e *Entry) {
	if e.Handle.Cancelled() {
		return
	}
	if err := e.Job.Execute(e.Context); err != nil {
		slog.Error("Scheduled job failed",
			slog.Uint64("job_id", e.Handle.ID()),
			log.Error(err))
		return
	}
	if e.Handle.Cancelled() {
		return
	}
	at, ok := e.Trigger.NextFireTime()
	if !ok {
		return
	}
	s.submit(jobReq{
		op: jobReqSchedule,
		entry: &Entry{
			Handle:  e.Handle,
			Job:     e.Job,
			Context: e.Context,
			Trigger: e.Trigger,
			At:      at,
		},
	})
}

func (s *Scheduler) submit(req jobReq) {
	select {
	case s.reqs <- req:
	case <-s.ctx.Done():
	}
}
