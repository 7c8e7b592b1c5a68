package api

import "strconv"

type (
	// ProcessInstanceID identifies a running process instance
	ProcessInstanceID int64

	// SessionID identifies the session that owns a set of timers
	SessionID string
)

// NoProcessInstance marks timers that start new process instances rather
// than signal an existing one
const NoProcessInstance ProcessInstanceID = -1

// IsSet reports whether the id refers to a process instance at all. The zero
// value is treated as missing
func (id ProcessInstanceID) IsSet() bool {
	return id != 0
}

func (id ProcessInstanceID) String() string {
	return strconv.FormatInt(int64(id), 10)
}
