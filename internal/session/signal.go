package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

type (
	// SignalHandler receives events signalled to one process instance
	SignalHandler func(event string, payload any) error

	// SignalManager routes events to the handlers of process instances
	SignalManager struct {
		mu       sync.RWMutex
		handlers map[api.ProcessInstanceID]SignalHandler
	}
)

var ErrUnknownInstance = errors.New("unknown process instance")

// NewSignalManager creates an empty signal router
func NewSignalManager() *SignalManager {
	return &SignalManager{
		handlers: map[api.ProcessInstanceID]SignalHandler{},
	}
}

// Register binds handler to the process instance id
func (m *SignalManager) Register(id api.ProcessInstanceID, h SignalHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[id] = h
}

// Unregister removes the handler bound to id
func (m *SignalManager) Unregister(id api.ProcessInstanceID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, id)
}

// SignalEvent delivers event to the instance's handler
func (m *SignalManager) SignalEvent(
	id api.ProcessInstanceID, event string, payload any,
) error {
	m.mu.RLock()
	h, ok := m.handlers[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	return h(event, payload)
}
