package timer

// JobKind distinguishes timers that signal an instance from timers that
// start a process
type JobKind string

const (
	ProcessKind JobKind = "process"
	StartKind   JobKind = "start"
)

// Recorder observes timer lifecycle events
type Recorder interface {
	TimerScheduled(kind JobKind)
	TimerFired(kind JobKind, err error)
	TimerSkipped(kind JobKind)
	TimersActive(n int)
}

type nopRecorder struct{}

func (nopRecorder) TimerScheduled(JobKind)    {}
func (nopRecorder) TimerFired(JobKind, error) {}
func (nopRecorder) TimerSkipped(JobKind)      {}
func (nopRecorder) TimersActive(int)          {}
