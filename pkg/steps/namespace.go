package steps

import "github.com/kode4food/courier/pkg/api"

type (
	// Namespace scopes a step sequence to a role and service. The zero
	// value is the generic namespace
	Namespace struct {
		Role    api.Role    `json:"role,omitempty"`
		Service api.Service `json:"service,omitempty"`
	}

	// Step is a catalog step that knows the namespace it was declared in
	Step interface {
		ID() api.StepID
		Namespace() Namespace
	}

	// CustomerStep is any step declared for the customer role
	CustomerStep interface {
		Step
		customerStep()
	}

	// DriverStep is any step declared for the driver role
	DriverStep interface {
		Step
		driverStep()
	}

	// TransportStep is any step declared for the transport service
	TransportStep interface {
		Step
		transportStep()
	}

	// DeliveryStep is any step declared for the delivery service
	DeliveryStep interface {
		Step
		deliveryStep()
	}

	// ErrandStep is any step declared for the errand service
	ErrandStep interface {
		Step
		errandStep()
	}

	// ParcelStep is any step declared for the parcel service
	ParcelStep interface {
		Step
		parcelStep()
	}

	// GenericStep is a step outside of any role/service sequence
	GenericStep api.StepID

	CustomerTransport api.StepID
	CustomerDelivery  api.StepID
	CustomerErrand    api.StepID
	CustomerParcel    api.StepID
	DriverTransport   api.StepID
	DriverDelivery    api.StepID
	DriverErrand      api.StepID
	DriverParcel      api.StepID
)

// Generic is the namespace of the service selection steps
var Generic = Namespace{}

// NamespaceOf returns the namespace for a role and service
func NamespaceOf(role api.Role, service api.Service) Namespace {
	return Namespace{Role: role, Service: service}
}

// IsGeneric reports whether this is the generic namespace
func (ns Namespace) IsGeneric() bool {
	return ns == Generic
}

func (ns Namespace) String() string {
	if ns.IsGeneric() {
		return "generic"
	}
	return string(ns.Role) + "/" + string(ns.Service)
}

func (s GenericStep) ID() api.StepID { return api.StepID(s) }
func (s GenericStep) Namespace() Namespace { return Generic }
func (s GenericStep) String() string { return string(s) }
func (CustomerTransport) customerStep() {}
func (CustomerTransport) transportStep() {}
func (CustomerDelivery) customerStep() {}
func (CustomerDelivery) deliveryStep() {}
func (CustomerErrand) customerStep() {}
func (CustomerErrand) errandStep() {}
func (CustomerParcel) customerStep() {}
func (CustomerParcel) parcelStep() {}
func (DriverTransport) driverStep() {}
func (DriverTransport) transportStep() {}
func (DriverDelivery) driverStep() {}
func (DriverDelivery) deliveryStep() {}
func (DriverErrand) driverStep() {}
func (DriverErrand) errandStep() {}
func (DriverParcel) driverStep() {}
func (DriverParcel) parcelStep() {}
func (s CustomerTransport) ID() api.StepID { return api.StepID(s) }
func (s CustomerDelivery) ID() api.StepID { return api.StepID(s) }
func (s CustomerErrand) ID() api.StepID { return api.StepID(s) }
func (s CustomerParcel) ID() api.StepID { return api.StepID(s) }
func (s DriverTransport) ID() api.StepID { return api.StepID(s) }
func (s DriverDelivery) ID() api.StepID { return api.StepID(s) }
func (s DriverErrand) ID() api.StepID { return api.StepID(s) }
func (s DriverParcel) ID() api.StepID { return api.StepID(s) }

func (CustomerTransport) Namespace() Namespace {
	return Namespace{Role: api.RoleCustomer, Service: api.ServiceTransport}
}

func (CustomerDelivery) Namespace() Namespace {
	return Namespace{Role: api.RoleCustomer, Service: api.ServiceDelivery}
}

func (CustomerErrand) Namespace() Namespace {
	return Namespace{Role: api.RoleCustomer, Service: api.ServiceErrand}
}

func (CustomerParcel) Namespace() Namespace {
	return Namespace{Role: api.RoleCustomer, Service: api.ServiceParcel}
}

func (DriverTransport) Namespace() Namespace {
	return Namespace{Role: api.RoleDriver, Service: api.ServiceTransport}
}

func (DriverDelivery) Namespace() Namespace {
	return Namespace{Role: api.RoleDriver, Service: api.ServiceDelivery}
}

func (DriverErrand) Namespace() Namespace {
	return Namespace{Role: api.RoleDriver, Service: api.ServiceErrand}
}

func (DriverParcel) Namespace() Namespace {
	return Namespace{Role: api.RoleDriver, Service: api.ServiceParcel}
}
