package api

type (
	// WorkItem represents one unit of external work requested by a process
	// instance. Parameters carry what is needed to perform the work and
	// Results carry what came back
	WorkItem interface {
		ID() int64
		Name() string
		State() WorkItemState
		ProcessInstanceID() ProcessInstanceID
		Parameters() map[string]any
		Results() map[string]any
	}

	// WorkItemState is the lifecycle state of a WorkItem
	WorkItemState int
)

const (
	WorkItemPending WorkItemState = iota
	WorkItemActive
	WorkItemCompleted
	WorkItemAborted
)

var workItemStateNames = map[WorkItemState]string{
	WorkItemPending:   "pending",
	WorkItemActive:    "active",
	WorkItemCompleted: "completed",
	WorkItemAborted:   "aborted",
}

func (s WorkItemState) String() string {
	if name, ok := workItemStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are possible
func (s WorkItemState) IsTerminal() bool {
	return s == WorkItemCompleted || s == WorkItemAborted
}
