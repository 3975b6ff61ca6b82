package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	as "github.com/kode4food/courier/internal/assert"
	"github.com/kode4food/courier/internal/assert/helpers"
	"github.com/kode4food/courier/internal/autonav"
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/internal/screens"
	"github.com/kode4food/courier/internal/server"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/steps"
)

type testServerEnv struct {
	*helpers.TestStoreEnv
	Engine *autonav.Engine
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
}

func withTestServerEnv(t *testing.T, fn func(*testServerEnv)) {
	t.Helper()
	env := helpers.NewTestStore(t, nil, flow.Dependencies{})
	eng := autonav.New(env.Store, env.Config,
		autonav.WithMetrics(env.Metrics),
	)
	eng.Start()
	t.Cleanup(eng.Close)

	reg, err := screens.Default()
	require.NoError(t, err)

	srv, err := server.NewServer(server.Dependencies{
		Store:    env.Store,
		Engine:   eng,
		Screens:  reg,
		Gatherer: env.Registry,
		Name:     "courier",
		Version:  "test",
	})
	require.NoError(t, err)

	fn(&testServerEnv{
		TestStoreEnv: env,
		Engine:       eng,
		Router:       srv.SetupRoutes(),
	})
}

func (e *testServerEnv) do(
	t *testing.T, method, path string, body any,
) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decodeFlow(t *testing.T, w *httptest.ResponseRecorder) api.FlowResponse {
	t.Helper()
	var res api.FlowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := server.NewServer(server.Dependencies{})
	assert.ErrorIs(t, err, server.ErrNoStore)
}

func TestHealth(t *testing.T) {
	withTestServerEnv(t, func(env *testServerEnv) {
		w := env.do(t, "GET", "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var res api.HealthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "healthy", res.Status)
		assert.Equal(t, "test", res.Version)
		assert.Equal(t, env.Session.ID(), res.Session)
	})
}

func TestFlowNavigation(t *testing.T) {
	withTestServerEnv(t, func(env *testServerEnv) {
		w := env.do(t, "GET", "/flow", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, api.IdleStep, decodeFlow(t, w).State.Step)

		w = env.do(t, "POST", "/flow/start", api.StartRequest{
			Role: api.RoleCustomer,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		res := decodeFlow(t, w)
		assert.Equal(t, steps.SelectService.ID(), res.State.Step)
		assert.Equal(t, "customer/select-service", res.Screen)
		assert.Equal(t, "role", res.Tier)

		w = env.do(t, "POST", "/flow/service", api.StartServiceRequest{
			Service: api.ServiceTransport,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		res = decodeFlow(t, w)
		assert.Equal(t, steps.CustomerTransportDefineTrip.ID(), res.State.Step)
		assert.Equal(t, "customer/transport/define-trip", res.Screen)
		assert.Equal(t, "exact", res.Tier)

		w = env.do(t, "POST", "/flow/next", nil)
		assert.Equal(t,
			steps.CustomerTransportConfirmOrigin.ID(),
			decodeFlow(t, w).State.Step,
		)
		w = env.do(t, "POST", "/flow/back", nil)
		assert.Equal(t,
			steps.CustomerTransportDefineTrip.ID(),
			decodeFlow(t, w).State.Step,
		)

		w = env.do(t, "POST", "/flow/goto", api.GoToRequest{
			Step: steps.CustomerTransportPaymentMethod.ID(),
		})
		assert.Equal(t, http.StatusOK, w.Code)
		as.New(t).FlowAt(
			env.Store.State(), steps.CustomerTransportPaymentMethod.ID(),
		)

		w = env.do(t, "POST", "/flow/stop", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, env.Store.State().IsActive)

		w = env.do(t, "POST", "/flow/reset", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		as.New(t).FlowIdle(env.Store.State())
	})
}

func TestFlowErrors(t *testing.T) {
	withTestServerEnv(t, func(env *testServerEnv) {
		w := env.do(t, "POST", "/flow/service", api.StartServiceRequest{
			Service: api.ServiceErrand,
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = env.do(t, "POST", "/flow/start", api.StartRequest{
			Role: "dispatcher",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, "POST", "/flow/start", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		env.do(t, "POST", "/flow/start", api.StartRequest{
			Role: api.RoleDriver,
		})
		env.do(t, "POST", "/flow/service", api.StartServiceRequest{
			Service: api.ServiceErrand,
		})
		before := env.Store.State()
		w = env.do(t, "POST", "/flow/goto", api.GoToRequest{
			Step: steps.CustomerTransportDefineTrip.ID(),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		as.New(t).FlowUnchanged(before, env.Store.State())

		var res api.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, http.StatusBadRequest, res.Status)
		assert.Contains(t, res.Error, "define-trip")
	})
}

func TestFlowSetters(t *testing.T) {
	withTestServerEnv(t, func(env *testServerEnv) {
		env.do(t, "POST", "/flow/start", api.StartRequest{
			Role: api.RoleCustomer,
		})

		w := env.do(t, "PUT", "/flow/origin", api.Location{
			Lat: 52.52, Lng: 13.4, Address: "Alexanderplatz",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		w = env.do(t, "PUT", "/flow/destination", api.Location{
			Lat: 91, Lng: 0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		w = env.do(t, "PUT", "/flow/phone", api.PhoneRequest{
			PhoneNumber: "+4930123456",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		w = env.do(t, "PUT", "/flow/ride-type", api.RideTypeRequest{
			RideType: api.RidePremium,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		st := env.Store.State()
		require.NotNil(t, st.ConfirmedOrigin)
		assert.Equal(t, "Alexanderplatz", st.ConfirmedOrigin.Address)
		assert.Nil(t, st.ConfirmedDestination)
		assert.Equal(t, "+4930123456", st.PhoneNumber)
		assert.Equal(t, api.RidePremium, st.RideType)
	})
}

func TestEventInjection(t *testing.T) {
	withTestServerEnv(t, func(env *testServerEnv) {
		env.do(t, "POST", "/flow/start", api.StartRequest{
			Role: api.RoleDriver,
		})
		env.do(t, "POST", "/flow/service", api.StartServiceRequest{
			Service: api.ServiceTransport,
		})
		w := env.do(t, "POST", "/flow/job", api.AssignJobRequest{
			JobID: "42",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, api.JobPending, decodeFlow(t, w).State.JobStatus)

		ev, err := api.NewJobEvent(api.EventJobAccepted, api.JobAcceptedEvent{
			JobID: "42", AgentID: "driver-1", ETAMinutes: 3,
		})
		require.NoError(t, err)
		w = env.do(t, "POST", "/events", ev)
		assert.Equal(t, http.StatusAccepted, w.Code)

		as.New(t).Eventually(func() bool {
			return env.Store.State().JobStatus == api.JobAccepted
		}, time.Second, "injected event should apply")
		as.New(t).FlowAt(
			env.Store.State(), steps.DriverTransportNavigateToPickup.ID(),
		)

		w = env.do(t, "POST", "/events", map[string]any{"data": "{}"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStepsEndpoints(t *testing.T) {
	withTestServerEnv(t, func(env *testServerEnv) {
		w := env.do(t, "GET", "/steps", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var nss []api.NamespaceInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nss))
		assert.Len(t, nss, len(steps.Namespaces()))
		assert.Equal(t, api.RoleCustomer, nss[0].Role)
		assert.NotEmpty(t, nss[0].Steps)

		w = env.do(t, "GET", "/steps/coverage", nil)
		var cov api.CoverageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cov))
		assert.True(t, cov.Complete)
		assert.Equal(t, len(steps.Required()), cov.Count)
	})
}

func TestMetricsAndCORS(t *testing.T) {
	withTestServerEnv(t, func(env *testServerEnv) {
		env.do(t, "POST", "/flow/start", api.StartRequest{
			Role: api.RoleCustomer,
		})

		w := env.do(t, "GET", "/metrics", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.Contains(
			w.Body.String(), "courier_flow_navigations_total",
		))

		w = env.do(t, "OPTIONS", "/flow", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
