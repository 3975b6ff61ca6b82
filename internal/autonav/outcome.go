package autonav

import (
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/pkg/api"
)

type (
	// Outcome classifies what processing an event did
	Outcome string

	// Result reports the processing of a single event
	Result struct {
		Outcome Outcome
		Event   api.EventType
		JobID   api.JobID
		Config  flow.StepConfig
		Err     error
	}
)

const (
	// Applied events changed the flow
	Applied Outcome = "applied"

	// Foreign events carried a job other than the bound one
	Foreign Outcome = "foreign"

	// Illegal events implied an unreachable job status
	Illegal Outcome = "illegal"

	// Malformed events could not be decoded
	Malformed Outcome = "malformed"

	// Ignored events do not drive navigation
	Ignored Outcome = "ignored"

	// Failed events made their handler fail or panic
	Failed Outcome = "failed"
)
