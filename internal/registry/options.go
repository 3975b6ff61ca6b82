package registry

import "github.com/kode4food/courier/pkg/api"

type (
	// Options constrain where a registration applies
	Options struct {
		Role     api.Role
		Service  api.Service
		Priority int
		Fallback bool
	}

	// Applier mutates Options during registration
	Applier func(*Options)
)

// DefaultOptions returns an unconstrained Options with appliers applied
func DefaultOptions(apps ...Applier) *Options {
	opt := &Options{}
	ApplyOptions(opt, apps...)
	return opt
}

// ApplyOptions applies option appliers in order
func ApplyOptions(opt *Options, apps ...Applier) {
	for _, app := range apps {
		app(opt)
	}
}

// WithRole restricts the registration to a role
func WithRole(role api.Role) Applier {
	return func(opt *Options) {
		opt.Role = role
	}
}

// WithService restricts the registration to a service
func WithService(service api.Service) Applier {
	return func(opt *Options) {
		opt.Service = service
	}
}

// WithPriority orders the registration among others of the same tier.
// Higher priorities are consulted first
func WithPriority(priority int) Applier {
	return func(opt *Options) {
		opt.Priority = priority
	}
}

// AsFallback marks the registration as the step's last resort, used only
// when no constrained or generic registration matches
func AsFallback() Applier {
	return func(opt *Options) {
		opt.Fallback = true
	}
}
