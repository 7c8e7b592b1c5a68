package session

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/log"
)

type (
	// Session is an in-process engine runtime: it serializes operations
	// behind a single lock and owns the timer manager of its timers
	Session struct {
		id        api.SessionID
		mu        sync.Mutex
		clock     scheduler.Clock
		active    atomic.Bool
		signals   *SignalManager
		processes *Processes
		channels  *api.ChannelManager
		timers    *timer.Manager
	}

	// Option configures a Session
	Option func(*config)

	config struct {
		id        api.SessionID
		clock     scheduler.Clock
		timerOpts []timer.Option
	}
)

var _ timer.Runtime = (*Session)(nil)

// New creates an active session scheduling its timers through svc
func New(svc scheduler.Service, opts ...Option) *Session {
	cfg := &config{
		id:    api.SessionID(uuid.NewString()),
		clock: scheduler.SystemClock,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Session{
		id:        cfg.id,
		clock:     cfg.clock,
		signals:   NewSignalManager(),
		processes: NewProcesses(),
		channels:  api.NewChannelManager(),
	}
	s.active.Store(true)
	s.timers = timer.NewManager(s, svc, cfg.timerOpts...)
	return s
}

// WithID sets the session identifier instead of generating one
func WithID(id api.SessionID) Option {
	return func(c *config) {
		c.id = id
	}
}

// WithClock sets the session clock timer jobs stamp their fires with
func WithClock(clock scheduler.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithTimerOptions passes options through to the timer manager
func WithTimerOptions(opts ...timer.Option) Option {
	return func(c *config) {
		c.timerOpts = append(c.timerOpts, opts...)
	}
}

// StartOperation acquires the session operation lock
func (s *Session) StartOperation() {
	s.mu.Lock()
}

// EndOperation releases the session operation lock
func (s *Session) EndOperation() {
	s.mu.Unlock()
}

// SessionClock returns the session's logical clock
func (s *Session) SessionClock() scheduler.Clock {
	return s.clock
}

// SignalManager returns the event router used by timer jobs
func (s *Session) SignalManager() timer.SignalManager {
	return s.signals
}

// Signals returns the concrete signal manager for handler registration
func (s *Session) Signals() *SignalManager {
	return s.signals
}

// Processes returns the registry of startable process definitions
func (s *Session) Processes() *Processes {
	return s.processes
}

// Channels returns the session's channel registry
func (s *Session) Channels() *api.ChannelManager {
	return s.channels
}

// StartProcess starts a new instance of processID
func (s *Session) StartProcess(
	processID string, params map[string]any, trigger string,
) error {
	id, err := s.processes.Start(processID, params, trigger)
	if err != nil {
		return err
	}
	slog.Info("Process started",
		log.ProcessID(processID),
		log.ProcessInstanceID(id),
		slog.String("trigger", trigger))
	return nil
}

// Identifier returns the session id
func (s *Session) Identifier() api.SessionID {
	return s.id
}

// TimerManager returns the manager of this session's timers
func (s *Session) TimerManager() *timer.Manager {
	return s.timers
}

// IsActive reports whether the deployment backing the session is active
func (s *Session) IsActive() bool {
	return s.active.Load()
}

// Activate marks the deployment active; start timers fire again
func (s *Session) Activate() {
	s.active.Store(true)
}

// Deactivate marks the deployment inactive; start timers that fire while
// inactive are dropped
func (s *Session) Deactivate() {
	s.active.Store(false)
}

// Dispose releases the session's timers
func (s *Session) Dispose() {
	s.timers.Dispose()
}
