package helpers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/internal/metrics"
)

// TestStoreEnv holds a Store and the collaborators it was built with
type TestStoreEnv struct {
	Store    *flow.Store
	Config   *config.Config
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Session  *flow.Session
}

// NewTestConfig creates a default configuration with debug logging and
// short timeouts
func NewTestConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.LogLevel = "debug"
	cfg.ResetGracePeriod = 50 * time.Millisecond
	cfg.PrefetchTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	return cfg
}

// NewTestStore creates a Store for a fresh session with metrics recorded
// to a private registry. The Store is closed when the test ends
func NewTestStore(
	t *testing.T, cfg *config.Config, deps flow.Dependencies,
) *TestStoreEnv {
	t.Helper()
	if cfg == nil {
		cfg = NewTestConfig()
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	if deps.Metrics == nil {
		deps.Metrics = m
	}

	sess := flow.NewSession()
	st, err := flow.New(sess, cfg, deps)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	return &TestStoreEnv{
		Store:    st,
		Config:   cfg,
		Metrics:  deps.Metrics,
		Registry: reg,
		Session:  sess,
	}
}

// WithTestStore runs fn against a Store built with default test settings
func WithTestStore(t *testing.T, fn func(*TestStoreEnv)) {
	t.Helper()
	fn(NewTestStore(t, nil, flow.Dependencies{}))
}

// DevelopmentConfig returns a test configuration in development mode
func DevelopmentConfig() *config.Config {
	cfg := NewTestConfig()
	cfg.Mode = config.ModeDevelopment
	return cfg
}
