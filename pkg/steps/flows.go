package steps

import (
	"cmp"
	"slices"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/util"
)

type (
	// Flow is the fixed step sequence of one role/service namespace
	Flow struct {
		Namespace Namespace
		Steps     []api.StepID
		Cancelled api.StepID
		Search    api.StepID
		statuses  map[api.JobStatus]api.StepID
		index     map[api.StepID]int
	}

	flowDef[T ~string] struct {
		seq       []T
		cancelled T
		search    T
		statuses  map[api.JobStatus]T
	}
)

var flows = map[Namespace]*Flow{}

func init() {
	register(flowDef[CustomerTransport]{
		seq: []CustomerTransport{
			CustomerTransportDefineTrip,
			CustomerTransportConfirmOrigin,
			CustomerTransportConfirmDestination,
			CustomerTransportSelectVehicle,
			CustomerTransportPaymentMethod,
			CustomerTransportMatching,
			CustomerTransportAwaitAcceptance,
			CustomerTransportEnRoute,
			CustomerTransportArrived,
			CustomerTransportInProgress,
			CustomerTransportCompleted,
		},
		cancelled: CustomerTransportCancelled,
		search:    CustomerTransportMatching,
		statuses: map[api.JobStatus]CustomerTransport{
			api.JobPending:    CustomerTransportAwaitAcceptance,
			api.JobAccepted:   CustomerTransportEnRoute,
			api.JobArrived:    CustomerTransportArrived,
			api.JobInProgress: CustomerTransportInProgress,
			api.JobCompleted:  CustomerTransportCompleted,
		},
	})

	register(flowDef[CustomerDelivery]{
		seq: []CustomerDelivery{
			CustomerDeliveryDetails,
			CustomerDeliveryConfirmPickup,
			CustomerDeliveryConfirmDropoff,
			CustomerDeliveryPackageDetails,
			CustomerDeliveryPaymentMethod,
			CustomerDeliveryMatching,
			CustomerDeliveryAwaitAcceptance,
			CustomerDeliveryCourierEnRoute,
			CustomerDeliveryCourierArrived,
			CustomerDeliveryInTransit,
			CustomerDeliveryDelivered,
		},
		cancelled: CustomerDeliveryCancelled,
		search:    CustomerDeliveryMatching,
		statuses: map[api.JobStatus]CustomerDelivery{
			api.JobPending:    CustomerDeliveryAwaitAcceptance,
			api.JobAccepted:   CustomerDeliveryCourierEnRoute,
			api.JobArrived:    CustomerDeliveryCourierArrived,
			api.JobInProgress: CustomerDeliveryInTransit,
			api.JobCompleted:  CustomerDeliveryDelivered,
		},
	})

	register(flowDef[CustomerErrand]{
		seq: []CustomerErrand{
			CustomerErrandDetails,
			CustomerErrandConfirmOrigin,
			CustomerErrandConfirmDestination,
			CustomerErrandBudget,
			CustomerErrandPaymentMethod,
			CustomerErrandMatching,
			CustomerErrandAwaitAcceptance,
			CustomerErrandEnRoute,
			CustomerErrandArrived,
			CustomerErrandInProgress,
			CustomerErrandCompleted,
		},
		cancelled: CustomerErrandCancelled,
		search:    CustomerErrandMatching,
		statuses: map[api.JobStatus]CustomerErrand{
			api.JobPending:    CustomerErrandAwaitAcceptance,
			api.JobAccepted:   CustomerErrandEnRoute,
			api.JobArrived:    CustomerErrandArrived,
			api.JobInProgress: CustomerErrandInProgress,
			api.JobCompleted:  CustomerErrandCompleted,
		},
	})

	register(flowDef[CustomerParcel]{
		seq: []CustomerParcel{
			CustomerParcelDetails,
			CustomerParcelConfirmPickup,
			CustomerParcelConfirmDropoff,
			CustomerParcelRecipientDetails,
			CustomerParcelSize,
			CustomerParcelPaymentMethod,
			CustomerParcelMatching,
			CustomerParcelAwaitAcceptance,
			CustomerParcelCourierEnRoute,
			CustomerParcelCourierArrived,
			CustomerParcelInTransit,
			CustomerParcelDelivered,
		},
		cancelled: CustomerParcelCancelled,
		search:    CustomerParcelMatching,
		statuses: map[api.JobStatus]CustomerParcel{
			api.JobPending:    CustomerParcelAwaitAcceptance,
			api.JobAccepted:   CustomerParcelCourierEnRoute,
			api.JobArrived:    CustomerParcelCourierArrived,
			api.JobInProgress: CustomerParcelInTransit,
			api.JobCompleted:  CustomerParcelDelivered,
		},
	})

	register(flowDef[DriverTransport]{
		seq: []DriverTransport{
			DriverTransportGoOnline,
			DriverTransportAwaitRequest,
			DriverTransportIncomingRequest,
			DriverTransportNavigateToPickup,
			DriverTransportAtPickup,
			DriverTransportInProgress,
			DriverTransportCompleted,
		},
		cancelled: DriverTransportCancelled,
		search:    DriverTransportAwaitRequest,
		statuses: map[api.JobStatus]DriverTransport{
			api.JobPending:    DriverTransportIncomingRequest,
			api.JobAccepted:   DriverTransportNavigateToPickup,
			api.JobArrived:    DriverTransportAtPickup,
			api.JobInProgress: DriverTransportInProgress,
			api.JobCompleted:  DriverTransportCompleted,
		},
	})

	register(flowDef[DriverDelivery]{
		seq: []DriverDelivery{
			DriverDeliveryGoOnline,
			DriverDeliveryAwaitRequest,
			DriverDeliveryIncomingRequest,
			DriverDeliveryNavigateToPickup,
			DriverDeliveryAtPickup,
			DriverDeliveryDelivering,
			DriverDeliveryDelivered,
		},
		cancelled: DriverDeliveryCancelled,
		search:    DriverDeliveryAwaitRequest,
		statuses: map[api.JobStatus]DriverDelivery{
			api.JobPending:    DriverDeliveryIncomingRequest,
			api.JobAccepted:   DriverDeliveryNavigateToPickup,
			api.JobArrived:    DriverDeliveryAtPickup,
			api.JobInProgress: DriverDeliveryDelivering,
			api.JobCompleted:  DriverDeliveryDelivered,
		},
	})

	register(flowDef[DriverErrand]{
		seq: []DriverErrand{
			DriverErrandGoOnline,
			DriverErrandAwaitRequest,
			DriverErrandIncomingRequest,
			DriverErrandNavigateToStore,
			DriverErrandAtStore,
			DriverErrandRunning,
			DriverErrandCompleted,
		},
		cancelled: DriverErrandCancelled,
		search:    DriverErrandAwaitRequest,
		statuses: map[api.JobStatus]DriverErrand{
			api.JobPending:    DriverErrandIncomingRequest,
			api.JobAccepted:   DriverErrandNavigateToStore,
			api.JobArrived:    DriverErrandAtStore,
			api.JobInProgress: DriverErrandRunning,
			api.JobCompleted:  DriverErrandCompleted,
		},
	})

	register(flowDef[DriverParcel]{
		seq: []DriverParcel{
			DriverParcelGoOnline,
			DriverParcelAwaitRequest,
			DriverParcelIncomingRequest,
			DriverParcelNavigateToPickup,
			DriverParcelAtPickup,
			DriverParcelDelivering,
			DriverParcelDelivered,
		},
		cancelled: DriverParcelCancelled,
		search:    DriverParcelAwaitRequest,
		statuses: map[api.JobStatus]DriverParcel{
			api.JobPending:    DriverParcelIncomingRequest,
			api.JobAccepted:   DriverParcelNavigateToPickup,
			api.JobArrived:    DriverParcelAtPickup,
			api.JobInProgress: DriverParcelDelivering,
			api.JobCompleted:  DriverParcelDelivered,
		},
	})
}

func register[T interface {
	~string
	Step
}](def flowDef[T]) {
	ns := def.cancelled.Namespace()
	f := &Flow{
		Namespace: ns,
		Steps:     make([]api.StepID, len(def.seq)),
		Cancelled: def.cancelled.ID(),
		Search:    def.search.ID(),
		statuses: map[api.JobStatus]api.StepID{
			api.JobCancelled: def.cancelled.ID(),
			api.JobRejected:  def.search.ID(),
		},
		index: make(map[api.StepID]int, len(def.seq)),
	}
	for i, s := range def.seq {
		f.Steps[i] = s.ID()
		f.index[s.ID()] = i
	}
	for status, s := range def.statuses {
		f.statuses[status] = s.ID()
	}
	flows[ns] = f
}

// Lookup returns the Flow declared for a namespace
func Lookup(ns Namespace) (*Flow, bool) {
	f, ok := flows[ns]
	return f, ok
}

// Namespaces returns every role/service namespace in catalog order
func Namespaces() []Namespace {
	res := make([]Namespace, 0, len(flows))
	for _, role := range api.Roles {
		for _, svc := range api.Services {
			ns := NamespaceOf(role, svc)
			if _, ok := flows[ns]; ok {
				res = append(res, ns)
			}
		}
	}
	return res
}

// IsGeneric reports whether the token names a generic step
func IsGeneric(id api.StepID) bool {
	return id == Idle.ID() || id == SelectService.ID()
}

// Contains reports whether the token is declared in the namespace. The
// generic namespace contains only the generic steps
func Contains(ns Namespace, id api.StepID) bool {
	if ns.IsGeneric() {
		return IsGeneric(id)
	}
	f, ok := flows[ns]
	return ok && f.Contains(id)
}

// Required returns every distinct step token in the catalog, sorted
func Required() []api.StepID {
	res := util.SetOf(Idle.ID(), SelectService.ID())
	for _, f := range flows {
		for _, id := range f.Steps {
			res.Add(id)
		}
		res.Add(f.Cancelled)
	}
	return res.Values(cmp.Compare[api.StepID])
}

// First returns the entry step of the sequence
func (f *Flow) First() api.StepID {
	return f.Steps[0]
}

// Last returns the terminal success step of the sequence
func (f *Flow) Last() api.StepID {
	return f.Steps[len(f.Steps)-1]
}

// Contains reports whether the token belongs to this Flow, including its
// off-sequence cancelled step
func (f *Flow) Contains(id api.StepID) bool {
	_, ok := f.index[id]
	return ok || id == f.Cancelled
}

// Index returns the sequence position of a step
func (f *Flow) Index(id api.StepID) (int, bool) {
	i, ok := f.index[id]
	return i, ok
}

// Next returns the step after id. The second result is false at the end of
// the sequence or when id is not part of it
func (f *Flow) Next(id api.StepID) (api.StepID, bool) {
	i, ok := f.index[id]
	if !ok || i+1 >= len(f.Steps) {
		return "", false
	}
	return f.Steps[i+1], true
}

// Prev returns the step before id. The second result is false at the start
// of the sequence or when id is not part of it
func (f *Flow) Prev(id api.StepID) (api.StepID, bool) {
	i, ok := f.index[id]
	if !ok || i == 0 {
		return "", false
	}
	return f.Steps[i-1], true
}

// StepFor returns the step that presents a job status in this Flow
func (f *Flow) StepFor(status api.JobStatus) (api.StepID, bool) {
	id, ok := f.statuses[status]
	return id, ok
}

// IsTerminal reports whether the step ends the flow
func (f *Flow) IsTerminal(id api.StepID) bool {
	return id == f.Cancelled || id == f.Last()
}

// Sequence returns a copy of the ordered steps
func (f *Flow) Sequence() []api.StepID {
	return slices.Clone(f.Steps)
}
