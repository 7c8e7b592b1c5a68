package timer

import (
	"github.com/evacchi/droolsjbpm-knowledge/internal/scheduler"
	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

type (
	// Runtime is the engine session a Manager and its jobs operate against.
	// The operation lock is not reentrant: signal handlers and process
	// starters run while it is held and must not call back into the Manager
	Runtime interface {
		StartOperation()
		EndOperation()
		SessionClock() scheduler.Clock
		SignalManager() SignalManager
		StartProcess(
			processID string, params map[string]any, trigger string,
		) error
		Identifier() api.SessionID
		TimerManager() *Manager
		IsActive() bool
	}

	// SignalManager delivers named events to process instances
	SignalManager interface {
		SignalEvent(
			id api.ProcessInstanceID, event string, payload any,
		) error
	}

	// ProcessInstance is the running instance a timer is attached to
	ProcessInstance interface {
		ID() api.ProcessInstanceID
	}
)
