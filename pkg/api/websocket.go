package api

type (
	// SubscribeRequest is sent to the backend to start or stop receiving
	// events for a single job
	SubscribeRequest struct {
		Type string          `json:"type"`
		Data JobSubscription `json:"data"`
	}

	// JobSubscription names the job a subscribe frame applies to
	JobSubscription struct {
		JobID JobID `json:"jobId"`
	}
)

const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
)
