package reference

import (
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/pkg/api"
)

type (
	// PricingTier is one fare option offered for a service
	PricingTier struct {
		ID          string       `json:"id"`
		Name        string       `json:"name"`
		RideType    api.RideType `json:"rideType,omitempty"`
		BaseFare    float64      `json:"baseFare"`
		PerKm       float64      `json:"perKm"`
		PerMinute   float64      `json:"perMinute"`
		MinimumFare float64      `json:"minimumFare,omitempty"`
		Currency    string       `json:"currency"`
	}

	// ServiceCatalog lists the services offered to a role
	ServiceCatalog struct {
		Role     api.Role      `json:"role"`
		Services []api.Service `json:"services"`
	}

	// Loaders holds the reference loaders used while a flow is active
	Loaders struct {
		Pricing  map[api.Service]*Loader[[]PricingTier]
		Catalogs map[api.Role]*Loader[ServiceCatalog]
	}
)

// PricingKey returns the document key of a service's pricing tiers
func PricingKey(svc api.Service) string {
	return "pricing/" + string(svc)
}

// CatalogKey returns the document key of a role's service catalog
func CatalogKey(role api.Role) string {
	return "services/" + string(role)
}

// NewLoaders creates pricing loaders for every service and catalog
// loaders for every role, all sharing one Source and Cache
func NewLoaders(src Source, cache Cache) (*Loaders, error) {
	res := &Loaders{
		Pricing:  map[api.Service]*Loader[[]PricingTier]{},
		Catalogs: map[api.Role]*Loader[ServiceCatalog]{},
	}
	for _, svc := range api.Services {
		l, err := NewLoader[[]PricingTier](PricingKey(svc), src, cache)
		if err != nil {
			return nil, err
		}
		res.Pricing[svc] = l
	}
	for _, role := range api.Roles {
		l, err := NewLoader[ServiceCatalog](CatalogKey(role), src, cache)
		if err != nil {
			return nil, err
		}
		res.Catalogs[role] = l
	}
	return res, nil
}

// Dependencies exposes the loaders as Store prefetchers
func (l *Loaders) Dependencies() flow.Dependencies {
	deps := flow.Dependencies{
		Prefetchers:     map[api.Service]flow.Prefetcher{},
		RolePrefetchers: map[api.Role]flow.Prefetcher{},
	}
	for svc, p := range l.Pricing {
		deps.Prefetchers[svc] = p
	}
	for role, p := range l.Catalogs {
		deps.RolePrefetchers[role] = p
	}
	return deps
}
