package steps_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

func TestNamespaces(t *testing.T) {
	nss := steps.Namespaces()
	assert.Len(t, nss, len(api.Roles)*len(api.Services))
	assert.Equal(t,
		steps.NamespaceOf(api.RoleCustomer, api.ServiceTransport), nss[0],
	)
	for _, ns := range nss {
		f, ok := steps.Lookup(ns)
		require.True(t, ok, ns.String())
		assert.Equal(t, ns, f.Namespace)
		assert.NotEmpty(t, f.Steps)
		assert.True(t, f.Contains(f.Cancelled))
		assert.True(t, f.Contains(f.Search))
		_, inSeq := f.Index(f.Cancelled)
		assert.False(t, inSeq, "cancelled is off-sequence")
	}
}

func TestNamespaceString(t *testing.T) {
	assert.Equal(t, "generic", steps.Generic.String())
	assert.Equal(t, "driver/errand",
		steps.NamespaceOf(api.RoleDriver, api.ServiceErrand).String(),
	)
}

func TestTypedStepNamespaces(t *testing.T) {
	assert.Equal(t, steps.Generic, steps.Idle.Namespace())
	assert.Equal(t, api.IdleStep, steps.Idle.ID())
	assert.Equal(t,
		steps.NamespaceOf(api.RoleCustomer, api.ServiceParcel),
		steps.CustomerParcelSize.Namespace(),
	)
	assert.Equal(t,
		steps.NamespaceOf(api.RoleDriver, api.ServiceDelivery),
		steps.DriverDeliveryDelivering.Namespace(),
	)

	for _, s := range []steps.Step{
		steps.CustomerTransportMatching,
		steps.CustomerErrandBudget,
		steps.DriverErrandRunning,
		steps.DriverParcelAtPickup,
	} {
		assert.True(t, steps.Contains(s.Namespace(), s.ID()), s.ID())
	}
}

func TestSharedTokens(t *testing.T) {
	ct := steps.NamespaceOf(api.RoleCustomer, api.ServiceTransport)
	cd := steps.NamespaceOf(api.RoleCustomer, api.ServiceDelivery)
	dt := steps.NamespaceOf(api.RoleDriver, api.ServiceTransport)

	assert.True(t, steps.Contains(ct, "matching"))
	assert.True(t, steps.Contains(cd, "matching"))
	assert.False(t, steps.Contains(dt, "matching"))
	assert.False(t, steps.Contains(cd, "define-trip"))
	assert.False(t, steps.Contains(steps.Generic, "define-trip"))
	assert.True(t, steps.Contains(steps.Generic, "select-service"))
	assert.False(t, steps.Contains(steps.NamespaceOf(api.RoleDriver, ""),
		"go-online",
	))
}

func TestNextPrev(t *testing.T) {
	f, ok := steps.Lookup(
		steps.NamespaceOf(api.RoleCustomer, api.ServiceTransport),
	)
	require.True(t, ok)

	next, ok := f.Next(steps.CustomerTransportDefineTrip.ID())
	assert.True(t, ok)
	assert.Equal(t, steps.CustomerTransportConfirmOrigin.ID(), next)

	_, ok = f.Next(steps.CustomerTransportCompleted.ID())
	assert.False(t, ok)

	prev, ok := f.Prev(steps.CustomerTransportConfirmOrigin.ID())
	assert.True(t, ok)
	assert.Equal(t, steps.CustomerTransportDefineTrip.ID(), prev)

	_, ok = f.Prev(steps.CustomerTransportDefineTrip.ID())
	assert.False(t, ok)

	_, ok = f.Next(steps.CustomerTransportCancelled.ID())
	assert.False(t, ok)
	_, ok = f.Prev(steps.CustomerTransportCancelled.ID())
	assert.False(t, ok)

	assert.Equal(t, steps.CustomerTransportDefineTrip.ID(), f.First())
	assert.Equal(t, steps.CustomerTransportCompleted.ID(), f.Last())
	assert.True(t, f.IsTerminal(steps.CustomerTransportCancelled.ID()))
	assert.False(t, f.IsTerminal(steps.CustomerTransportEnRoute.ID()))
}

func TestStepFor(t *testing.T) {
	as := assert.New(t)

	cust, _ := steps.Lookup(
		steps.NamespaceOf(api.RoleCustomer, api.ServiceDelivery),
	)
	drv, _ := steps.Lookup(
		steps.NamespaceOf(api.RoleDriver, api.ServiceErrand),
	)

	for status, want := range map[api.JobStatus]api.StepID{
		api.JobPending:    steps.CustomerDeliveryAwaitAcceptance.ID(),
		api.JobAccepted:   steps.CustomerDeliveryCourierEnRoute.ID(),
		api.JobArrived:    steps.CustomerDeliveryCourierArrived.ID(),
		api.JobInProgress: steps.CustomerDeliveryInTransit.ID(),
		api.JobCompleted:  steps.CustomerDeliveryDelivered.ID(),
		api.JobCancelled:  steps.CustomerDeliveryCancelled.ID(),
		api.JobRejected:   steps.CustomerDeliveryMatching.ID(),
	} {
		got, ok := cust.StepFor(status)
		as.True(ok, status)
		as.Equal(want, got, status)
	}

	got, ok := drv.StepFor(api.JobPending)
	as.True(ok)
	as.Equal(steps.DriverErrandIncomingRequest.ID(), got)

	got, ok = drv.StepFor(api.JobRejected)
	as.True(ok)
	as.Equal(steps.DriverErrandAwaitRequest.ID(), got)
}

func TestStatusStepsInSequence(t *testing.T) {
	statuses := []api.JobStatus{
		api.JobPending, api.JobAccepted, api.JobArrived,
		api.JobInProgress, api.JobCompleted,
	}
	for _, ns := range steps.Namespaces() {
		f, _ := steps.Lookup(ns)
		last := -1
		for _, status := range statuses {
			id, ok := f.StepFor(status)
			require.True(t, ok, "%s %s", ns, status)
			idx, ok := f.Index(id)
			require.True(t, ok, "%s %s", ns, id)
			assert.Greater(t, idx, last, "%s %s", ns, status)
			last = idx
		}
		assert.Equal(t, f.Last(), f.Steps[last])
	}
}

func TestRequired(t *testing.T) {
	req := steps.Required()
	assert.Contains(t, req, api.IdleStep)
	assert.Contains(t, req, steps.SelectService.ID())
	assert.Contains(t, req, steps.CustomerParcelRecipientDetails.ID())
	assert.Contains(t, req, steps.DriverErrandRunning.ID())
	assert.Contains(t, req, steps.CustomerTransportCancelled.ID())

	seen := map[api.StepID]bool{}
	for i, id := range req {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
		if i > 0 {
			assert.Less(t, req[i-1], id)
		}
	}
}

func TestPanel(t *testing.T) {
	ct := steps.NamespaceOf(api.RoleCustomer, api.ServiceTransport)

	assert.False(t, steps.Panel(steps.Generic, api.IdleStep).Visible)
	assert.True(t, steps.Panel(steps.Generic, "select-service").Visible)
	assert.True(t,
		steps.Panel(ct, steps.CustomerTransportDefineTrip.ID()).Draggable,
	)
	assert.True(t,
		steps.Panel(ct, steps.CustomerTransportEnRoute.ID()).Visible,
	)
	assert.False(t, steps.Panel(ct, "go-online").Visible)
}

func TestSequenceCopy(t *testing.T) {
	f, _ := steps.Lookup(steps.NamespaceOf(api.RoleDriver, api.ServiceParcel))
	seq := f.Sequence()
	seq[0] = "changed"
	assert.Equal(t, steps.DriverParcelGoOnline.ID(), f.First())
}
