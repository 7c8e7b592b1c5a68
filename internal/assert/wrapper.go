package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/evacchi/droolsjbpm-knowledge/internal/config"
	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
)

// Wrapper wraps testify assertions with timer-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
	}
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.ShutdownTimeout > 0)
	w.GreaterOrEqual(cfg.OverdueDelay, time.Duration(0))
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// TimerRegistered asserts that the manager holds the timer and returns it
func (w *Wrapper) TimerRegistered(
	m *timer.Manager, id int64,
) timer.TimerInstance {
	w.Helper()
	t, ok := m.Timer(id)
	w.True(ok, "timer should be registered: %d", id)
	return t
}

// TimerRemoved asserts that the manager no longer holds the timer
func (w *Wrapper) TimerRemoved(m *timer.Manager, id int64) {
	w.Helper()
	_, ok := m.Timer(id)
	w.False(ok, "timer should be removed: %d", id)
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}
