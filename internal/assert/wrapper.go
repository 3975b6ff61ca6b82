package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/pkg/api"
)

// Wrapper wraps testify assertions with courier-specific helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *require.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper with both assert and require from
// testify plus courier-specific helpers
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    require.New(t),
	}
}

// FlowAt asserts that a flow is active on the expected step
func (w *Wrapper) FlowAt(st *api.FlowState, step api.StepID) {
	w.Helper()
	w.True(st.IsActive, "flow should be active")
	w.Equal(step, st.Step)
}

// FlowIdle asserts the invariants of an inactive flow
func (w *Wrapper) FlowIdle(st *api.FlowState) {
	w.Helper()
	w.False(st.IsActive, "flow should be inactive")
	w.Equal(api.IdleStep, st.Step)
	w.Empty(st.JobID)
}

// FlowJob asserts the job bound to a flow and its last known status
func (w *Wrapper) FlowJob(
	st *api.FlowState, id api.JobID, status api.JobStatus,
) {
	w.Helper()
	w.Equal(id, st.JobID)
	w.Equal(status, st.JobStatus)
}

// FlowUnchanged asserts that no mutation replaced the snapshot
func (w *Wrapper) FlowUnchanged(before, after *api.FlowState) {
	w.Helper()
	w.Same(before, after, "flow state should not have been replaced")
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.ResetGracePeriod > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, target error) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if target != nil {
		w.ErrorIs(err, target)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}

// Never asserts that a condition stays false for the whole duration
func (w *Wrapper) Never(
	condition func() bool, duration time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if condition() {
			w.Fail(msg, args...)
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
}
