package timer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/log"
)

type (
	// ProcessJob signals timerTriggered to the instance owning the timer
	ProcessJob struct{}

	// StartProcessJob starts a new process instance each time it fires
	StartProcessJob struct{}
)

const (
	// EventTimerTriggered is the event signalled to a timer's instance
	EventTimerTriggered = "timerTriggered"

	// StartReasonTimer is the trigger recorded on timer-started processes
	StartReasonTimer = "timer"
)

var (
	ErrMissingProcessInstance = errors.New("process instance not found for timer")
	ErrUnexpectedContext      = errors.New("unexpected job context")
	ErrJobPanicked            = errors.New("timer job panicked")
)

var (
	processJob      scheduler.Job = ProcessJob{}
	startProcessJob scheduler.Job = StartProcessJob{}
)

// Execute fires a process timer. Every failure is logged and returned
func (ProcessJob) Execute(c scheduler.JobContext) error {
	ctx, ok := c.(*ProcessJobContext)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedContext, c)
	}
	err := signalTimer(ctx)
	ctx.Runtime.TimerManager().recorder.TimerFired(ProcessKind, err)
	if err != nil {
		slog.Error("Timer job failed",
			log.TimerID(ctx.Timer.ID),
			log.ProcessInstanceID(ctx.ProcessInstanceID),
			log.Error(err))
	}
	return err
}

// Execute fires a start timer. Failures are logged and swallowed so the
// timer keeps its schedule
func (StartProcessJob) Execute(c scheduler.JobContext) error {
	ctx, ok := c.(*StartProcessJobContext)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedContext, c)
	}
	rec := ctx.Runtime.TimerManager().recorder
	started, err := startTimer(ctx)
	switch {
	case err != nil:
		rec.TimerFired(StartKind, err)
		slog.Error("Timer start process failed",
			log.TimerID(ctx.Timer.ID),
			log.ProcessID(ctx.ProcessID),
			log.Error(err))
	case started:
		rec.TimerFired(StartKind, nil)
	default:
		rec.TimerSkipped(StartKind)
	}
	return nil
}

func signalTimer(ctx *ProcessJobContext) (err error) {
	rt := ctx.Runtime
	rt.StartOperation()
	defer rt.EndOperation()
	defer recoverJob(&err)

	if !ctx.ProcessInstanceID.IsSet() {
		return ErrMissingProcessInstance
	}

	t := ctx.Timer
	stampFire(t, ctx.Trigger, rt)
	err = rt.SignalManager().SignalEvent(
		ctx.ProcessInstanceID, EventTimerTriggered, t,
	)
	if err != nil {
		return err
	}
	if t.Period == 0 {
		rt.TimerManager().remove(t.ID)
	}
	return nil
}

func startTimer(ctx *StartProcessJobContext) (started bool, err error) {
	rt := ctx.Runtime
	rt.StartOperation()
	defer rt.EndOperation()
	defer recoverJob(&err)

	t := ctx.Timer
	if !rt.IsActive() {
		slog.Debug("Timer start ignored, deployment inactive",
			log.TimerID(t.ID),
			log.ProcessID(ctx.ProcessID))
		rt.TimerManager().remove(t.ID)
		return false, nil
	}

	stampFire(t, ctx.Trigger, rt)
	err = rt.StartProcess(ctx.ProcessID, ctx.Params, StartReasonTimer)
	if err != nil {
		return false, err
	}
	if t.Period == 0 {
		rt.TimerManager().remove(t.ID)
	}
	return true, nil
}

func stampFire(t *TimerInstance, tr scheduler.Trigger, rt Runtime) {
	t.LastTriggered = rt.SessionClock()()
	if _, ok := tr.NextFireTime(); !ok {
		t.Period = 0
	}
}

func recoverJob(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
	}
}
