package registry

import "github.com/kode4food/courier/pkg/api"

type (
	// Tier describes how specifically a registration matched a request
	Tier int

	// Request is what a resolver is asked to render. State is nil when a
	// step is resolved outside of a live flow
	Request struct {
		Step    api.StepID
		Role    api.Role
		Service api.Service
		State   *api.FlowState
	}

	// Resolution is the outcome of resolving a step. It is never nil; an
	// unmatched step resolves to TierUnregistered
	Resolution[T any] struct {
		Tier         Tier
		Request      Request
		Registration *Registration[T]
	}
)

const (
	TierExact Tier = iota
	TierRole
	TierService
	TierGeneric
	TierFallback
	TierUnregistered
)

var tierNames = map[Tier]string{
	TierExact:        "exact",
	TierRole:         "role",
	TierService:      "service",
	TierGeneric:      "generic",
	TierFallback:     "fallback",
	TierUnregistered: "unregistered",
}

func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return "unknown"
}

// Found reports whether any registration matched
func (r Resolution[T]) Found() bool {
	return r.Registration != nil
}

// Unit builds the renderable unit, or returns the zero value of T when the
// step is unregistered
func (r Resolution[T]) Unit() T {
	var zero T
	return r.UnitOr(zero)
}

// UnitOr builds the renderable unit, or returns the placeholder when the
// step is unregistered
func (r Resolution[T]) UnitOr(placeholder T) T {
	if r.Registration == nil {
		return placeholder
	}
	return r.Registration.Resolver(r.Request)
}
