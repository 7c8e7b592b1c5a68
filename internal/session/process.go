package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/evacchi/droolsjbpm-knowledge/pkg/api"
)

type (
	// StartFunc runs a new instance of a process definition
	StartFunc func(
		id api.ProcessInstanceID, params map[string]any, trigger string,
	) error

	// Processes is the registry of process definitions a session can start
	Processes struct {
		mu         sync.RWMutex
		defs       map[string]StartFunc
		instanceID atomic.Int64
	}

	// Instance is a started process instance
	Instance api.ProcessInstanceID
)

var ErrUnknownProcess = errors.New("unknown process")

// NewProcesses creates an empty process registry
func NewProcesses() *Processes {
	return &Processes{
		defs: map[string]StartFunc{},
	}
}

// Register binds a process definition id to its start function
func (p *Processes) Register(processID string, fn StartFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defs[processID] = fn
}

// Start allocates a new instance id and runs the definition
func (p *Processes) Start(
	processID string, params map[string]any, trigger string,
) (api.ProcessInstanceID, error) {
	p.mu.RLock()
	fn, ok := p.defs[processID]
	p.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProcess, processID)
	}
	id := api.ProcessInstanceID(p.instanceID.Add(1))
	if err := fn(id, params, trigger); err != nil {
		return 0, err
	}
	return id, nil
}

// NewInstance allocates an instance id without running a definition
func (p *Processes) NewInstance() Instance {
	return Instance(p.instanceID.Add(1))
}

// ID returns the instance id
func (i Instance) ID() api.ProcessInstanceID {
	return api.ProcessInstanceID(i)
}
