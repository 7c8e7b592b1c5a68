// Package scheduler provides the backend that sleeps and wakes timer jobs
//
// The Service contract is what timer managers submit work to. Scheduler is
// the owned, heap-based implementation driven by an injectable clock and
// timer constructor; Delegate wraps a Service owned by someone else so that
// disposing one consumer never shuts the shared backend down
package scheduler
