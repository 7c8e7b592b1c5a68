package log_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/log"
)

type errStub string

func TestTimerID(t *testing.T) {
	attr := log.TimerID(7)
	assertAttrEqual(t, attr, "timer_id", "7")
}

func TestProcessInstanceID(t *testing.T) {
	attr := log.ProcessInstanceID(api.ProcessInstanceID(42))
	assertAttrEqual(t, attr, "process_instance_id", "42")
}

func TestProcessID(t *testing.T) {
	attr := log.ProcessID("order.reminder")
	assertAttrEqual(t, attr, "process_id", "order.reminder")
}

func TestSessionID(t *testing.T) {
	attr := log.SessionID(api.SessionID("session-1"))
	assertAttrEqual(t, attr, "session_id", "session-1")
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
