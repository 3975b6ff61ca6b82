// Package lifecycle validates job status changes reported by the server
package lifecycle

import (
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/util"
)

// StateTransitions maps states to their set of valid next states
type StateTransitions[T comparable] map[T]util.Set[T]

var jobTransitions = StateTransitions[api.JobStatus]{
	api.JobPending: util.SetOf(
		api.JobAccepted,
		api.JobRejected,
		api.JobCancelled,
	),
	api.JobAccepted: util.SetOf(
		api.JobArrived,
		api.JobInProgress,
		api.JobCancelled,
	),
	api.JobArrived: util.SetOf(
		api.JobInProgress,
		api.JobCancelled,
	),
	api.JobInProgress: util.SetOf(
		api.JobCompleted,
		api.JobCancelled,
	),
	api.JobCompleted: {},
	api.JobCancelled: {},
	api.JobRejected:  {},
}

// IsValidTransition reports whether a job may move from current to next.
// Unknown statuses never transition
func IsValidTransition(current, next api.JobStatus) bool {
	return jobTransitions.CanTransition(current, next)
}

// IsTerminal reports whether a job status ends the job
func IsTerminal(status api.JobStatus) bool {
	return jobTransitions.IsTerminal(status)
}

// CanTransition returns whether transition from one state to another is valid
func (t StateTransitions[T]) CanTransition(from, to T) bool {
	allowed, ok := t[from]
	if !ok {
		return false
	}
	return allowed.Contains(to)
}

// IsTerminal returns true if the state has no valid transitions
func (t StateTransitions[T]) IsTerminal(state T) bool {
	allowed, ok := t[state]
	return ok && allowed.IsEmpty()
}
