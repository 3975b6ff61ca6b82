package flow

import (
	"context"

	"github.com/kode4food/courier/internal/lifecycle"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

// StartWithCustomerStep brings the flow to a customer step, starting the
// customer flow and its service when needed
func (s *Store) StartWithCustomerStep(
	ctx context.Context, step steps.CustomerStep,
) (StepConfig, error) {
	return s.startWith(ctx, step)
}

// StartWithDriverStep brings the flow to a driver step, starting the
// driver flow and its service when needed
func (s *Store) StartWithDriverStep(
	ctx context.Context, step steps.DriverStep,
) (StepConfig, error) {
	return s.startWith(ctx, step)
}

// StartWithTransportStep brings the flow to a transport step
func (s *Store) StartWithTransportStep(
	ctx context.Context, step steps.TransportStep,
) (StepConfig, error) {
	return s.startWith(ctx, step)
}

// StartWithDeliveryStep brings the flow to a delivery step
func (s *Store) StartWithDeliveryStep(
	ctx context.Context, step steps.DeliveryStep,
) (StepConfig, error) {
	return s.startWith(ctx, step)
}

// StartWithErrandStep brings the flow to an errand step
func (s *Store) StartWithErrandStep(
	ctx context.Context, step steps.ErrandStep,
) (StepConfig, error) {
	return s.startWith(ctx, step)
}

// StartWithParcelStep brings the flow to a parcel step
func (s *Store) StartWithParcelStep(
	ctx context.Context, step steps.ParcelStep,
) (StepConfig, error) {
	return s.startWith(ctx, step)
}

// StartWithConfig brings the flow to any step for a role. Generic steps
// start the role's flow first; a role-scoped step must belong to the role
func (s *Store) StartWithConfig(
	ctx context.Context, step steps.Step, role api.Role,
) (StepConfig, error) {
	ns := step.Namespace()
	if ns.IsGeneric() {
		if _, err := s.Start(role); err != nil {
			return s.Config(), err
		}
		return s.GoToStep(step)
	}
	if role != "" && role != ns.Role {
		s.mu.Lock()
		defer s.mu.Unlock()
		cur := s.state.Load()
		err := foreignStepError(step.ID(), steps.NamespaceOf(role, ns.Service))
		if s.config.IsDevelopment() {
			panic(err)
		}
		return s.refuse(cur, reasonForeignStep, err)
	}
	return s.startWith(ctx, step)
}

// GetInitialStepConfig returns the StepConfig a step would open with.
// Generic steps open in the active role
func (s *Store) GetInitialStepConfig(step steps.Step) StepConfig {
	id := step.ID()
	ns := step.Namespace()
	role := ns.Role
	if ns.IsGeneric() {
		role = s.state.Load().Role
	}
	return StepConfig{
		Step:    id,
		Role:    role,
		Service: ns.Service,
		Panel:   steps.Panel(ns, id),
	}
}

func (s *Store) startWith(
	ctx context.Context, step steps.Step,
) (StepConfig, error) {
	ns := step.Namespace()
	if ns.IsGeneric() {
		return s.GoToStep(step)
	}

	res, done, err := s.startWithLocked(step)
	if err != nil {
		return res, err
	}
	if done != nil && s.config.IsRequired(ns.Service) {
		s.await(ctx, ns.Service, done)
	}
	return res, nil
}

func (s *Store) startWithLocked(
	step steps.Step,
) (StepConfig, <-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns := step.Namespace()
	cur := s.state.Load()
	if cur.IsActive && cur.Role != ns.Role {
		res, err := s.foreign(cur, step.ID())
		return res, nil, err
	}

	next := cur
	starting := !cur.IsActive
	if starting {
		s.cancelReset()
		next = api.NewFlowState().SetRole(ns.Role).SetActive(true)
	}
	switching := next.Service != ns.Service
	if switching {
		next = next.SetService(ns.Service).ClearJob()
	} else if lifecycle.IsTerminal(next.JobStatus) {
		s.cancelReset()
		next = next.ClearJob()
	}

	id := step.ID()
	res := s.navigate("start_with", next.SetStep(id, steps.Panel(ns, id)))

	if starting {
		s.prefetchRole(ns.Role)
	}
	var done <-chan error
	if switching {
		done = s.prefetchService(ns.Service)
	}
	return res, done, nil
}
