package api

type (
	// FlowState is the single source of truth for a dispatch flow. Values are
	// never edited in place; every setter returns a modified copy
	FlowState struct {
		Role                 Role        `json:"role,omitempty"`
		Service              Service     `json:"service,omitempty"`
		Step                 StepID      `json:"step"`
		IsActive             bool        `json:"is_active"`
		JobID                JobID       `json:"job_id,omitempty"`
		JobStatus            JobStatus   `json:"job_status,omitempty"`
		MatchedAgentID       AgentID     `json:"matched_agent_id,omitempty"`
		ETAMinutes           int         `json:"eta_minutes,omitempty"`
		ConfirmedOrigin      *Location   `json:"confirmed_origin,omitempty"`
		ConfirmedDestination *Location   `json:"confirmed_destination,omitempty"`
		PhoneNumber          string      `json:"phone_number,omitempty"`
		RideType             RideType    `json:"ride_type,omitempty"`
		Panel                PanelConfig `json:"panel"`
	}
)

// IdleStep is the sentinel step of an inactive flow
const IdleStep StepID = "idle"

// NewFlowState returns the created-state defaults of a flow
func NewFlowState() *FlowState {
	return &FlowState{
		Step: IdleStep,
	}
}

// SetRole returns a new FlowState with the role set
func (st *FlowState) SetRole(r Role) *FlowState {
	res := *st
	res.Role = r
	return &res
}

// SetService returns a new FlowState with the service set
func (st *FlowState) SetService(s Service) *FlowState {
	res := *st
	res.Service = s
	return &res
}

// SetStep returns a new FlowState positioned at the step with its panel
func (st *FlowState) SetStep(id StepID, panel PanelConfig) *FlowState {
	res := *st
	res.Step = id
	res.Panel = panel
	return &res
}

// SetActive returns a new FlowState with the active flag set
func (st *FlowState) SetActive(active bool) *FlowState {
	res := *st
	res.IsActive = active
	return &res
}

// SetJob returns a new FlowState bound to the job at the given status
func (st *FlowState) SetJob(id JobID, status JobStatus) *FlowState {
	res := *st
	res.JobID = id
	res.JobStatus = status
	return &res
}

// ClearJob returns a new FlowState with every job-derived field cleared
func (st *FlowState) ClearJob() *FlowState {
	res := *st
	res.JobID = ""
	res.JobStatus = ""
	res.MatchedAgentID = ""
	res.ETAMinutes = 0
	return &res
}

// SetMatchedAgent returns a new FlowState with the matched agent set
func (st *FlowState) SetMatchedAgent(id AgentID, eta int) *FlowState {
	res := *st
	res.MatchedAgentID = id
	res.ETAMinutes = eta
	return &res
}

// SetConfirmedOrigin returns a new FlowState with the origin set
func (st *FlowState) SetConfirmedOrigin(loc *Location) *FlowState {
	res := *st
	res.ConfirmedOrigin = copyLocation(loc)
	return &res
}

// SetConfirmedDestination returns a new FlowState with the destination set
func (st *FlowState) SetConfirmedDestination(loc *Location) *FlowState {
	res := *st
	res.ConfirmedDestination = copyLocation(loc)
	return &res
}

// SetPhoneNumber returns a new FlowState with the third-party phone set
func (st *FlowState) SetPhoneNumber(phone string) *FlowState {
	res := *st
	res.PhoneNumber = phone
	return &res
}

// SetRideType returns a new FlowState with the ride type set
func (st *FlowState) SetRideType(rt RideType) *FlowState {
	res := *st
	res.RideType = rt
	return &res
}

// HasJob reports whether the flow is bound to an in-flight job
func (st *FlowState) HasJob() bool {
	return st.JobID != ""
}

func copyLocation(loc *Location) *Location {
	if loc == nil {
		return nil
	}
	res := *loc
	return &res
}
