package api

type (
	// ErrorResponse is returned by the inspector API on failure
	ErrorResponse struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}

	// StartRequest starts a flow for a role
	StartRequest struct {
		Role Role `json:"role" binding:"required"`
	}

	// StartServiceRequest selects the service of an active flow
	StartServiceRequest struct {
		Service Service `json:"service" binding:"required"`
		Role    Role    `json:"role,omitempty"`
	}

	// GoToRequest jumps to a step of the active namespace
	GoToRequest struct {
		Step StepID `json:"step" binding:"required"`
	}

	// AssignJobRequest binds the active flow to a backend job
	AssignJobRequest struct {
		JobID JobID `json:"jobId" binding:"required"`
	}

	// PhoneRequest sets the phone number for third-party bookings
	PhoneRequest struct {
		PhoneNumber string `json:"phone_number"`
	}

	// RideTypeRequest sets the chosen ride type
	RideTypeRequest struct {
		RideType RideType `json:"ride_type" binding:"required"`
	}

	// FlowResponse contains the current state and its rendered screen
	FlowResponse struct {
		State  *FlowState `json:"state"`
		Screen string     `json:"screen"`
		Tier   string     `json:"tier"`
	}

	// EventAcceptedResponse acknowledges an injected event
	EventAcceptedResponse struct {
		Type EventType `json:"type"`
	}

	// CoverageResponse reports registry coverage of the step catalog
	CoverageResponse struct {
		Complete bool     `json:"complete"`
		Missing  []StepID `json:"missing,omitempty"`
		Count    int      `json:"count"`
	}

	// NamespaceInfo describes one role/service step sequence
	NamespaceInfo struct {
		Role      Role     `json:"role"`
		Service   Service  `json:"service"`
		Steps     []StepID `json:"steps"`
		Cancelled StepID   `json:"cancelled"`
		Search    StepID   `json:"search"`
	}

	// HealthResponse is returned by the health endpoint
	HealthResponse struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
		Session string `json:"session"`
	}
)
