// Package screens provides the default screen registrations used when the
// inspector renders a flow. Every catalog step resolves to a screen, and
// steps without one resolve to a placeholder
package screens

import (
	"github.com/kode4food/courier/internal/registry"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

// Screen is the renderable unit for a step
type Screen struct {
	Name        string          `json:"name"`
	Step        api.StepID      `json:"step"`
	Role        api.Role        `json:"role,omitempty"`
	Service     api.Service     `json:"service,omitempty"`
	Panel       api.PanelConfig `json:"panel"`
	Placeholder bool            `json:"placeholder,omitempty"`
}

const placeholderName = "placeholder"

// Default returns a registry with a screen for every step of every
// namespace, role defaults for the service selection step, and a
// placeholder fallback for every catalog token
func Default() (*registry.Registry[Screen], error) {
	reg := registry.New[Screen]()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Register adds the default screens to reg
func Register(reg *registry.Registry[Screen]) error {
	for _, ns := range steps.Namespaces() {
		f, _ := steps.Lookup(ns)
		ids := append(f.Sequence(), f.Cancelled)
		for _, id := range ids {
			err := reg.Register(id, namespaced(ns, id),
				registry.WithRole(ns.Role),
				registry.WithService(ns.Service),
			)
			if err != nil {
				return err
			}
		}
	}

	for _, role := range api.Roles {
		err := reg.Register(steps.SelectService.ID(),
			generic(string(role)+"/", steps.SelectService.ID()),
			registry.WithRole(role),
		)
		if err != nil {
			return err
		}
	}
	err := reg.Register(steps.Idle.ID(), generic("", steps.Idle.ID()))
	if err != nil {
		return err
	}

	for _, id := range steps.Required() {
		err := reg.Register(id, Placeholder, registry.AsFallback())
		if err != nil {
			return err
		}
	}
	return nil
}

// Placeholder renders a step that has no matching screen
func Placeholder(req registry.Request) Screen {
	return Screen{
		Name:        placeholderName,
		Step:        req.Step,
		Role:        req.Role,
		Service:     req.Service,
		Placeholder: true,
	}
}

func namespaced(
	ns steps.Namespace, id api.StepID,
) registry.Resolver[Screen] {
	name := ns.String() + "/" + string(id)
	return func(registry.Request) Screen {
		return Screen{
			Name:    name,
			Step:    id,
			Role:    ns.Role,
			Service: ns.Service,
			Panel:   steps.Panel(ns, id),
		}
	}
}

func generic(prefix string, id api.StepID) registry.Resolver[Screen] {
	name := prefix + string(id)
	return func(req registry.Request) Screen {
		return Screen{
			Name:  name,
			Step:  id,
			Role:  req.Role,
			Panel: steps.Panel(steps.Generic, id),
		}
	}
}
