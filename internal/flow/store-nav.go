package flow

import (
	"context"
	"fmt"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

// Start activates the flow for a role on the service selection step.
// Starting a flow that is already waiting on service selection for the
// same role changes nothing
func (s *Store) Start(role api.Role) (StepConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if !role.Valid() {
		return s.refuse(cur, reasonInvalidRole,
			fmt.Errorf("%w: %q", ErrInvalidRole, role),
		)
	}
	sel := steps.SelectService.ID()
	sameRole := cur.IsActive && cur.Role == role
	if sameRole && cur.Step == sel && cur.Service == "" {
		return configOf(cur), nil
	}

	s.cancelReset()
	res := s.navigate("start", api.NewFlowState().
		SetRole(role).
		SetActive(true).
		SetStep(sel, genericPanel(sel)),
	)
	if !sameRole {
		s.prefetchRole(role)
	}
	return res, nil
}

// StartService enters the first step of a service's sequence. A zero role
// keeps the active role. Reference data for the service is prefetched
// concurrently; when the service is configured as required, the call
// waits for the prefetch after navigation has been committed
func (s *Store) StartService(
	ctx context.Context, service api.Service, role api.Role,
) (StepConfig, error) {
	res, done, err := s.startService(service, role)
	if err != nil {
		return res, err
	}
	if done != nil && s.config.IsRequired(service) {
		s.await(ctx, service, done)
	}
	return res, nil
}

func (s *Store) startService(
	service api.Service, role api.Role,
) (StepConfig, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if !cur.IsActive {
		res, err := s.refuse(cur, reasonNotActive, ErrNotActive)
		return res, nil, err
	}
	if role == "" {
		role = cur.Role
	}
	if !role.Valid() {
		res, err := s.refuse(cur, reasonInvalidRole,
			fmt.Errorf("%w: %q", ErrInvalidRole, role),
		)
		return res, nil, err
	}
	f, ok := steps.Lookup(steps.NamespaceOf(role, service))
	if !ok {
		res, err := s.refuse(cur, reasonInvalidService,
			fmt.Errorf("%w: %q", ErrInvalidService, service),
		)
		return res, nil, err
	}

	s.cancelReset()
	first := f.First()
	res := s.navigate("service", cur.
		SetRole(role).
		SetService(service).
		ClearJob().
		SetStep(first, steps.Panel(f.Namespace, first)),
	)
	return res, s.prefetchService(service), nil
}

// Next advances one step within the active sequence. It does nothing at
// the end of the sequence, on the cancelled step, or outside a service
func (s *Store) Next() StepConfig {
	return s.move("next", (*steps.Flow).Next)
}

// Back retreats one step within the active sequence. It does nothing at
// the start of the sequence, on the cancelled step, or outside a service
func (s *Store) Back() StepConfig {
	return s.move("back", (*steps.Flow).Prev)
}

func (s *Store) move(
	kind string, sel func(*steps.Flow, api.StepID) (api.StepID, bool),
) StepConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	f, ok := s.activeFlow(cur)
	if !ok || cur.Step == f.Cancelled {
		return configOf(cur)
	}
	id, ok := sel(f, cur.Step)
	if !ok {
		return configOf(cur)
	}
	return s.navigate(kind, cur.SetStep(id, steps.Panel(f.Namespace, id)))
}

// GoTo jumps to a step token declared in the active role and service, or
// to the service selection step. Any other token is foreign
func (s *Store) GoTo(id api.StepID) (StepConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if !cur.IsActive {
		return s.refuse(cur, reasonNotActive, ErrNotActive)
	}
	if id == steps.SelectService.ID() {
		return s.selectService(cur), nil
	}
	if cur.Service == "" || !steps.Contains(namespaceOf(cur), id) {
		return s.foreign(cur, id)
	}
	return s.navigate("goto",
		cur.SetStep(id, steps.Panel(namespaceOf(cur), id)),
	), nil
}

// GoToStep jumps to a typed step. The step's declaring namespace must be
// the active role and service
func (s *Store) GoToStep(step steps.Step) (StepConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.state.Load()
	if !cur.IsActive {
		return s.refuse(cur, reasonNotActive, ErrNotActive)
	}
	id := step.ID()
	ns := step.Namespace()
	switch {
	case ns.IsGeneric() && id == steps.SelectService.ID():
		return s.selectService(cur), nil
	case ns.IsGeneric() || cur.Service == "" || ns != namespaceOf(cur):
		return s.foreign(cur, id)
	default:
		return s.navigate("goto", cur.SetStep(id, steps.Panel(ns, id))), nil
	}
}

// Stop deactivates the flow and drops its job, keeping role and service
func (s *Store) Stop() StepConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelReset()
	cur := s.state.Load()
	return s.navigate("stop", cur.
		ClearJob().
		SetActive(false).
		SetStep(api.IdleStep, genericPanel(api.IdleStep)),
	)
}

// Reset returns the flow to its created state
func (s *Store) Reset() StepConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resetLocked(resetManual)
}

func (s *Store) resetLocked(trigger string) StepConfig {
	s.cancelReset()
	s.deps.Metrics.Reset(trigger)
	return s.navigate("reset", api.NewFlowState())
}

func (s *Store) selectService(cur *api.FlowState) StepConfig {
	sel := steps.SelectService.ID()
	return s.navigate("goto", cur.
		SetService("").
		ClearJob().
		SetStep(sel, genericPanel(sel)),
	)
}

func foreignStepError(id api.StepID, ns steps.Namespace) error {
	return fmt.Errorf("%w: %q in %s", ErrForeignStep, id, ns)
}
