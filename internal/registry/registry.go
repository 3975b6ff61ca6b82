package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

type (
	// Resolver builds the renderable unit for a step
	Resolver[T any] func(Request) T

	// Registration binds a resolver to a step, optionally constrained by
	// role and service
	Registration[T any] struct {
		Step     api.StepID
		Resolver Resolver[T]
		Role     api.Role
		Service  api.Service
		Priority int
		Fallback bool
	}

	// Registry maps (step, role, service) to exactly one renderable unit
	Registry[T any] struct {
		mu        sync.RWMutex
		entries   map[api.StepID][]*Registration[T]
		fallbacks map[api.StepID]*Registration[T]
	}

	// Coverage reports which required steps have no registration at all
	Coverage struct {
		Complete bool         `json:"complete"`
		Missing  []api.StepID `json:"missing"`
	}
)

var resolutionOrder = []Tier{TierExact, TierRole, TierService, TierGeneric}

var (
	ErrFallbackExists = errors.New("fallback already registered")
	ErrNilResolver    = errors.New("resolver is nil")
	ErrEmptyStep      = errors.New("step is empty")
)

// New returns an empty Registry
func New[T any]() *Registry[T] {
	return &Registry[T]{
		entries:   map[api.StepID][]*Registration[T]{},
		fallbacks: map[api.StepID]*Registration[T]{},
	}
}

// Register adds a resolver for a step token. Registrations of the same
// step are kept in descending priority order, ties in insertion order
func (r *Registry[T]) Register(
	step api.StepID, res Resolver[T], apps ...Applier,
) error {
	reg, err := newRegistration(step, res, apps...)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if reg.Fallback {
		if _, ok := r.fallbacks[step]; ok {
			return fmt.Errorf("%w: %s", ErrFallbackExists, step)
		}
		r.fallbacks[step] = reg
		return nil
	}
	r.insert(reg)
	return nil
}

// RegisterStep adds a resolver for a typed step, constrained to the role
// and service of the namespace the step was declared in
func (r *Registry[T]) RegisterStep(
	step steps.Step, res Resolver[T], apps ...Applier,
) error {
	ns := step.Namespace()
	all := append([]Applier{
		WithRole(ns.Role), WithService(ns.Service),
	}, apps...)
	return r.Register(step.ID(), res, all...)
}

// ReplaceFallback installs a step's fallback, overwriting any existing one
func (r *Registry[T]) ReplaceFallback(step api.StepID, res Resolver[T]) error {
	reg, err := newRegistration(step, res, AsFallback())
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks[step] = reg
	return nil
}

// Resolve finds the registration for a step. Exact role and service
// matches win, then role-only, service-only and generic registrations.
// Priority only orders registrations within a tier
func (r *Registry[T]) Resolve(
	step api.StepID, role api.Role, service api.Service,
) Resolution[T] {
	return r.resolve(Request{
		Step:    step,
		Role:    role,
		Service: service,
	})
}

// Render resolves the active step of a FlowState
func (r *Registry[T]) Render(st *api.FlowState) Resolution[T] {
	return r.resolve(Request{
		Step:    st.Step,
		Role:    st.Role,
		Service: st.Service,
		State:   st,
	})
}

// Renderer binds resolution to a single role and service
func (r *Registry[T]) Renderer(
	role api.Role, service api.Service,
) func(api.StepID) Resolution[T] {
	return func(step api.StepID) Resolution[T] {
		return r.Resolve(step, role, service)
	}
}

// HasRegistration reports whether a step has any registration, including
// a fallback
func (r *Registry[T]) HasRegistration(step api.StepID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fallbacks[step]
	return ok || len(r.entries[step]) > 0
}

// AllRegistrations returns every registration ordered by step and
// priority, with all fallbacks last
func (r *Registry[T]) AllRegistrations() []Registration[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []Registration[T]
	for _, step := range slices.Sorted(maps.Keys(r.entries)) {
		for _, reg := range r.entries[step] {
			res = append(res, *reg)
		}
	}
	for _, step := range slices.Sorted(maps.Keys(r.fallbacks)) {
		res = append(res, *r.fallbacks[step])
	}
	return res
}

// RegistrationsFor returns a step's registrations in resolution order:
// by tier, then priority, with the fallback last
func (r *Registry[T]) RegistrationsFor(step api.StepID) []Registration[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []Registration[T]{}
	for _, tier := range resolutionOrder {
		for _, reg := range r.entries[step] {
			if reg.tier() == tier {
				res = append(res, *reg)
			}
		}
	}
	if fb, ok := r.fallbacks[step]; ok {
		res = append(res, *fb)
	}
	return res
}

// ValidateCoverage reports the required steps that would resolve to
// nothing for every role and service
func (r *Registry[T]) ValidateCoverage(required []api.StepID) Coverage {
	missing := []api.StepID{}
	for _, step := range required {
		if !r.HasRegistration(step) {
			missing = append(missing, step)
		}
	}
	return Coverage{
		Complete: len(missing) == 0,
		Missing:  missing,
	}
}

func (r *Registry[T]) resolve(req Request) Resolution[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := r.entries[req.Step]
	for _, tier := range resolutionOrder {
		for _, reg := range regs {
			if reg.tier() == tier && reg.matches(req) {
				return Resolution[T]{
					Tier:         tier,
					Request:      req,
					Registration: reg,
				}
			}
		}
	}
	if fb, ok := r.fallbacks[req.Step]; ok {
		return Resolution[T]{
			Tier:         TierFallback,
			Request:      req,
			Registration: fb,
		}
	}
	return Resolution[T]{
		Tier:    TierUnregistered,
		Request: req,
	}
}

func (r *Registry[T]) insert(reg *Registration[T]) {
	regs := r.entries[reg.Step]
	idx := slices.IndexFunc(regs, func(e *Registration[T]) bool {
		return e.Priority < reg.Priority
	})
	if idx < 0 {
		idx = len(regs)
	}
	r.entries[reg.Step] = slices.Insert(regs, idx, reg)
}

func newRegistration[T any](
	step api.StepID, res Resolver[T], apps ...Applier,
) (*Registration[T], error) {
	if step == "" {
		return nil, ErrEmptyStep
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilResolver, step)
	}
	opt := DefaultOptions(apps...)
	return &Registration[T]{
		Step:     step,
		Resolver: res,
		Role:     opt.Role,
		Service:  opt.Service,
		Priority: opt.Priority,
		Fallback: opt.Fallback,
	}, nil
}

func (r *Registration[T]) tier() Tier {
	switch {
	case r.Role != "" && r.Service != "":
		return TierExact
	case r.Role != "":
		return TierRole
	case r.Service != "":
		return TierService
	default:
		return TierGeneric
	}
}

func (r *Registration[T]) matches(req Request) bool {
	return (r.Role == "" || r.Role == req.Role) &&
		(r.Service == "" || r.Service == req.Service)
}

// Tier returns the specificity tier this registration competes in
func (r *Registration[T]) Tier() Tier {
	if r.Fallback {
		return TierFallback
	}
	return r.tier()
}
