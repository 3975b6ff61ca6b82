package flow_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	as "github.com/kode4food/courier/internal/assert"
	"github.com/kode4food/courier/internal/assert/helpers"
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

func startTransport(t *testing.T, st *flow.Store, role api.Role) {
	t.Helper()
	_, err := st.Start(role)
	require.NoError(t, err)
	_, err = st.StartService(context.Background(), api.ServiceTransport, "")
	require.NoError(t, err)
}

func TestAssignJob(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store

		_, err := st.AssignJob("42")
		a.ErrorIs(err, flow.ErrNotActive)

		_, err = st.Start(api.RoleCustomer)
		a.Require.NoError(err)
		_, err = st.AssignJob("42")
		a.ErrorIs(err, flow.ErrNoService)

		_, err = st.StartService(
			context.Background(), api.ServiceTransport, "",
		)
		a.Require.NoError(err)
		_, err = st.AssignJob("")
		a.ErrorIs(err, api.ErrInvalidJobID)

		cfg, err := st.AssignJob("42")
		a.Require.NoError(err)
		a.Equal(steps.CustomerTransportAwaitAcceptance.ID(), cfg.Step)
		a.FlowJob(st.State(), "42", api.JobPending)

		before := st.State()
		_, err = st.AssignJob("42")
		a.NoError(err)
		a.FlowUnchanged(before, st.State())
	})
}

func TestApplyJobUpdate(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store
		startTransport(t, st, api.RoleCustomer)
		_, err := st.AssignJob("42")
		a.Require.NoError(err)

		cfg, err := st.ApplyJobUpdate(flow.JobUpdate{
			JobID:      "42",
			From:       api.JobPending,
			To:         api.JobAccepted,
			Step:       steps.CustomerTransportEnRoute.ID(),
			AgentID:    "agent-1",
			ETAMinutes: 6,
		})
		a.Require.NoError(err)
		a.Equal(steps.CustomerTransportEnRoute.ID(), cfg.Step)
		a.FlowJob(st.State(), "42", api.JobAccepted)
		a.Equal(api.AgentID("agent-1"), st.State().MatchedAgentID)
		a.Equal(6, st.State().ETAMinutes)

		before := st.State()
		_, err = st.ApplyJobUpdate(flow.JobUpdate{
			JobID: "42",
			From:  api.JobPending,
			To:    api.JobAccepted,
			Step:  steps.CustomerTransportEnRoute.ID(),
		})
		a.ErrorIs(err, flow.ErrStaleUpdate)

		_, err = st.ApplyJobUpdate(flow.JobUpdate{
			JobID: "7",
			From:  api.JobAccepted,
			To:    api.JobArrived,
			Step:  steps.CustomerTransportArrived.ID(),
		})
		a.ErrorIs(err, flow.ErrStaleUpdate)

		_, err = st.ApplyJobUpdate(flow.JobUpdate{
			JobID: "42",
			From:  api.JobAccepted,
			To:    api.JobArrived,
			Step:  steps.DriverTransportAtPickup.ID(),
		})
		a.ErrorIs(err, flow.ErrForeignStep)
		a.FlowUnchanged(before, st.State())
	})
}

func TestApplyJobUpdateSchedulesReset(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store
		startTransport(t, st, api.RoleDriver)
		_, err := st.AssignJob("11")
		a.Require.NoError(err)

		_, err = st.ApplyJobUpdate(flow.JobUpdate{
			JobID:      "11",
			From:       api.JobPending,
			To:         api.JobCancelled,
			Step:       steps.DriverTransportCancelled.ID(),
			ResetAfter: 20 * time.Millisecond,
		})
		a.Require.NoError(err)
		a.Equal(steps.DriverTransportCancelled.ID(), st.State().Step)

		a.Eventually(func() bool {
			return !st.State().IsActive
		}, time.Second, "flow should reset after the grace period")
		a.Equal(api.NewFlowState(), st.State())
	})
}

func TestScheduledResetGuardedByJob(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store
		startTransport(t, st, api.RoleCustomer)
		_, err := st.AssignJob("1")
		a.Require.NoError(err)

		st.ScheduleReset("1", 30*time.Millisecond)
		st.Stop()
		_, err = st.Start(api.RoleCustomer)
		a.Require.NoError(err)

		a.Never(func() bool {
			return !st.State().IsActive
		}, 100*time.Millisecond, "stopped flow should cancel the reset")

		_, err = st.StartService(
			context.Background(), api.ServiceTransport, "",
		)
		a.Require.NoError(err)
		_, err = st.AssignJob("2")
		a.Require.NoError(err)

		st.ScheduleReset("1", 10*time.Millisecond)
		a.Never(func() bool {
			return !st.State().IsActive
		}, 80*time.Millisecond, "reset for a replaced job should be skipped")

		st.ScheduleReset("2", 10*time.Millisecond)
		a.Eventually(func() bool {
			return !st.State().IsActive
		}, time.Second, "reset for the bound job should apply")
	})
}

func TestScheduledResetReplaced(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store
		startTransport(t, st, api.RoleCustomer)
		_, err := st.AssignJob("3")
		a.Require.NoError(err)

		st.ScheduleReset("3", 20*time.Millisecond)
		st.ScheduleReset("3", time.Hour)

		a.Never(func() bool {
			return !st.State().IsActive
		}, 100*time.Millisecond, "later schedule should replace earlier")
	})
}

func cancelJob(t *testing.T, st *flow.Store, id api.JobID) {
	t.Helper()
	_, err := st.ApplyJobUpdate(flow.JobUpdate{
		JobID:      id,
		From:       api.JobPending,
		To:         api.JobCancelled,
		Step:       steps.CustomerTransportCancelled.ID(),
		ResetAfter: 30 * time.Millisecond,
	})
	require.NoError(t, err)
}

func TestStartAfterCancelledCancelsReset(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store
		startTransport(t, st, api.RoleCustomer)
		_, err := st.AssignJob("42")
		a.Require.NoError(err)
		cancelJob(t, st, "42")

		cfg, err := st.Start(api.RoleCustomer)
		a.Require.NoError(err)
		a.Equal(steps.SelectService.ID(), cfg.Step)
		a.Empty(st.State().Service)
		a.Empty(st.State().JobID)

		a.Never(func() bool {
			return !st.State().IsActive
		}, 100*time.Millisecond, "started flow should not be reset")
		a.FlowAt(st.State(), steps.SelectService.ID())
		a.Equal(api.RoleCustomer, st.State().Role)
	})
}

func TestStartWithAfterCancelledCancelsReset(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store
		startTransport(t, st, api.RoleCustomer)
		_, err := st.AssignJob("42")
		a.Require.NoError(err)
		cancelJob(t, st, "42")

		cfg, err := st.StartWithTransportStep(
			context.Background(), steps.CustomerTransportSelectVehicle,
		)
		a.Require.NoError(err)
		a.Equal(steps.CustomerTransportSelectVehicle.ID(), cfg.Step)
		a.Empty(st.State().JobID)
		a.Empty(st.State().JobStatus)

		a.Never(func() bool {
			return !st.State().IsActive
		}, 100*time.Millisecond, "restarted flow should not be reset")
		a.FlowAt(st.State(), steps.CustomerTransportSelectVehicle.ID())
	})
}

func TestStartWithKeepsLiveJob(t *testing.T) {
	helpers.WithTestStore(t, func(env *helpers.TestStoreEnv) {
		a := as.New(t)
		st := env.Store
		startTransport(t, st, api.RoleCustomer)
		_, err := st.AssignJob("7")
		a.Require.NoError(err)

		_, err = st.StartWithTransportStep(
			context.Background(), steps.CustomerTransportSelectVehicle,
		)
		a.Require.NoError(err)
		a.Equal(api.JobID("7"), st.State().JobID)
		a.Equal(api.JobPending, st.State().JobStatus)
	})
}

func TestScheduleResetAfterClose(t *testing.T) {
	env := helpers.NewTestStore(t, nil, flow.Dependencies{})
	a := as.New(t)
	st := env.Store
	startTransport(t, st, api.RoleCustomer)
	_, err := st.AssignJob("5")
	a.Require.NoError(err)

	st.Close()
	st.ScheduleReset("5", 10*time.Millisecond)
	a.Never(func() bool {
		return !st.State().IsActive
	}, 80*time.Millisecond, "closed store should not schedule resets")
}
