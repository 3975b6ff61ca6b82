package flow

import "github.com/kode4food/courier/pkg/api"

// SetConfirmedOrigin records the pickup or origin chosen on the map
func (s *Store) SetConfirmedOrigin(loc api.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	s.apply(func(st *api.FlowState) *api.FlowState {
		return st.SetConfirmedOrigin(&loc)
	})
	return nil
}

// SetConfirmedDestination records the drop-off or destination chosen on
// the map
func (s *Store) SetConfirmedDestination(loc api.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	s.apply(func(st *api.FlowState) *api.FlowState {
		return st.SetConfirmedDestination(&loc)
	})
	return nil
}

// SetPhoneNumber records the contact number for a third-party booking
func (s *Store) SetPhoneNumber(phone string) {
	s.apply(func(st *api.FlowState) *api.FlowState {
		return st.SetPhoneNumber(phone)
	})
}

// SetRideType records the chosen vehicle tier
func (s *Store) SetRideType(rt api.RideType) {
	s.apply(func(st *api.FlowState) *api.FlowState {
		return st.SetRideType(rt)
	})
}

// SetMatchedAgent records the agent matched to the job and their ETA
func (s *Store) SetMatchedAgent(id api.AgentID, etaMinutes int) {
	s.apply(func(st *api.FlowState) *api.FlowState {
		return st.SetMatchedAgent(id, etaMinutes)
	})
}

func (s *Store) apply(fn func(*api.FlowState) *api.FlowState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.update(fn(s.state.Load()))
}
