package autonav

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

type (
	// Input is everything a Handler may look at. State is the snapshot the
	// event was validated against
	Input struct {
		State  *api.FlowState
		Flow   *steps.Flow
		Event  api.JobEvent
		Status api.JobStatus
		Grace  time.Duration
	}

	// Handler describes the change an event makes without applying it
	Handler func(Input) (flow.JobUpdate, error)
)

var (
	ErrMissingJobID    = errors.New("event has no job id")
	ErrHandlerPanicked = errors.New("event handler panicked")
	ErrNoHandler       = errors.New("no handler for event")
)

// DefaultHandlers returns the handler table for the job lifecycle events
func DefaultHandlers() map[api.EventType]Handler {
	return map[api.EventType]Handler{
		api.EventJobAccepted:  Accepted,
		api.EventJobRejected:  Rejected,
		api.EventJobArrived:   Advance,
		api.EventJobStarted:   Advance,
		api.EventJobCompleted: Completed,
		api.EventJobCancelled: Cancelled,
	}
}

// Advance moves to the step that presents the new status, or one step
// forward when the flow has no step for it
func Advance(in Input) (flow.JobUpdate, error) {
	step, ok := in.Flow.StepFor(in.Status)
	if !ok {
		if step, ok = in.Flow.Next(in.State.Step); !ok {
			step = in.State.Step
		}
	}
	return flow.JobUpdate{
		JobID: in.State.JobID,
		From:  in.State.JobStatus,
		To:    in.Status,
		Step:  step,
	}, nil
}

// Accepted advances and records the matched agent and ETA
func Accepted(in Input) (flow.JobUpdate, error) {
	upd, err := Advance(in)
	if err != nil {
		return upd, err
	}
	res := gjson.GetManyBytes(in.Event.Data, "agentId", "etaMinutes")
	upd.AgentID = api.AgentID(res[0].String())
	upd.ETAMinutes = int(res[1].Int())
	return upd, nil
}

// Rejected retreats to the search step so the request can be retried
func Rejected(in Input) (flow.JobUpdate, error) {
	return flow.JobUpdate{
		JobID: in.State.JobID,
		From:  in.State.JobStatus,
		To:    in.Status,
		Step:  in.Flow.Search,
	}, nil
}

// Completed advances to the final step and schedules the reset
func Completed(in Input) (flow.JobUpdate, error) {
	upd, err := Advance(in)
	upd.ResetAfter = in.Grace
	return upd, err
}

// Cancelled moves to the cancelled step from wherever the flow is and
// schedules the reset
func Cancelled(in Input) (flow.JobUpdate, error) {
	return flow.JobUpdate{
		JobID:      in.State.JobID,
		From:       in.State.JobStatus,
		To:         in.Status,
		Step:       in.Flow.Cancelled,
		ResetAfter: in.Grace,
	}, nil
}

// JobIDOf extracts the job id from an event payload. Ids may be encoded
// as JSON strings or numbers
func JobIDOf(data json.RawMessage) (api.JobID, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: invalid payload", ErrMissingJobID)
	}
	res := gjson.GetBytes(data, "jobId")
	switch res.Type {
	case gjson.String, gjson.Number:
		if id := api.JobID(res.String()); id != "" {
			return id, nil
		}
		return "", ErrMissingJobID
	case gjson.Null:
		return "", ErrMissingJobID
	default:
		return "", fmt.Errorf("%w: %s", api.ErrInvalidJobID, res.Raw)
	}
}
