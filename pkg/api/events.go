package api

import "encoding/json"

type (
	// EventType identifies an inbound job event pushed by the backend
	EventType string

	// JobEvent is the envelope of every inbound job event
	JobEvent struct {
		Type EventType       `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	// JobRequestedEvent announces a job that nearby drivers may accept
	JobRequestedEvent struct {
		JobID          JobID    `json:"jobId"`
		Service        Service  `json:"service,omitempty"`
		OriginLat      float64  `json:"originLat"`
		OriginLng      float64  `json:"originLng"`
		DestinationLat float64  `json:"destinationLat,omitempty"`
		DestinationLng float64  `json:"destinationLng,omitempty"`
		RideType       RideType `json:"rideType,omitempty"`
		EstimatedFare  float64  `json:"estimatedFare,omitempty"`
	}

	// JobAcceptedEvent is pushed when an agent accepts the job
	JobAcceptedEvent struct {
		JobID      JobID   `json:"jobId"`
		AgentID    AgentID `json:"agentId"`
		ETAMinutes int     `json:"etaMinutes"`
	}

	// JobRejectedEvent is pushed when the offered agent declines the job
	JobRejectedEvent struct {
		JobID   JobID   `json:"jobId"`
		AgentID AgentID `json:"agentId"`
		Reason  string  `json:"reason,omitempty"`
	}

	// JobProgressEvent is the payload shared by the arrived, started,
	// completed and cancelled events
	JobProgressEvent struct {
		JobID   JobID   `json:"jobId"`
		AgentID AgentID `json:"agentId"`
	}
)

const (
	EventJobRequested EventType = "job:requested"
	EventJobAccepted  EventType = "job:accepted"
	EventJobRejected  EventType = "job:rejected"
	EventJobArrived   EventType = "job:arrived"
	EventJobStarted   EventType = "job:started"
	EventJobCompleted EventType = "job:completed"
	EventJobCancelled EventType = "job:cancelled"
)

var eventStatuses = map[EventType]JobStatus{
	EventJobAccepted:  JobAccepted,
	EventJobRejected:  JobRejected,
	EventJobArrived:   JobArrived,
	EventJobStarted:   JobInProgress,
	EventJobCompleted: JobCompleted,
	EventJobCancelled: JobCancelled,
}

// Status returns the job status implied by the event type. The second
// result is false for events that do not drive the job lifecycle
func (t EventType) Status() (JobStatus, bool) {
	s, ok := eventStatuses[t]
	return s, ok
}

// NewJobEvent marshals a payload into a JobEvent envelope
func NewJobEvent(typ EventType, payload any) (JobEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return JobEvent{}, err
	}
	return JobEvent{Type: typ, Data: data}, nil
}
