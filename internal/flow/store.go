package flow

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/internal/metrics"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
	"github.com/kode4food/courier/pkg/steps"
)

type (
	// Store is the Flow State Store of a single session
	Store struct {
		session   *Session
		config    *config.Config
		deps      Dependencies
		state     atomic.Pointer[api.FlowState]
		mu        sync.Mutex
		reset     *time.Timer
		lmu       sync.Mutex
		listeners map[uint64]Listener
		nextID    uint64
		ctx       context.Context
		cancel    context.CancelFunc
		wg        sync.WaitGroup
	}

	// Dependencies are the collaborators injected into a Store
	Dependencies struct {
		Prefetchers     map[api.Service]Prefetcher
		RolePrefetchers map[api.Role]Prefetcher
		Metrics         *metrics.Metrics
	}

	// StepConfig describes how a step opens
	StepConfig struct {
		Step    api.StepID      `json:"step"`
		Role    api.Role        `json:"role,omitempty"`
		Service api.Service     `json:"service,omitempty"`
		Panel   api.PanelConfig `json:"panel"`
	}

	// Listener is called after every committed state replacement. Calls
	// are made in commit order while the Store's write lock is held, so a
	// Listener must not call back into the Store's mutating operations
	Listener func(prev, next *api.FlowState)
)

const (
	reasonNotActive      = "not_active"
	reasonNoService      = "no_service"
	reasonInvalidRole    = "invalid_role"
	reasonInvalidService = "invalid_service"
	reasonForeignStep    = "foreign_step"
)

var (
	ErrNotActive      = errors.New("flow is not active")
	ErrNoService      = errors.New("flow has no service")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidService = errors.New("invalid service")
	ErrForeignStep    = errors.New("step is not declared in the active flow")
	ErrStaleUpdate    = errors.New("job update is stale")
	ErrStoreClosed    = errors.New("flow store is closed")
)

// New creates the Store for a session. A session can only be claimed once
func New(
	session *Session, cfg *config.Config, deps Dependencies,
) (*Store, error) {
	if err := session.claim(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		session:   session,
		config:    cfg,
		deps:      deps,
		listeners: map[uint64]Listener{},
		ctx:       ctx,
		cancel:    cancel,
	}
	s.state.Store(api.NewFlowState())
	return s, nil
}

// Session returns the session this Store belongs to
func (s *Store) Session() *Session {
	return s.session
}

// State returns the current FlowState snapshot. The value is shared and
// must not be modified
func (s *Store) State() *api.FlowState {
	return s.state.Load()
}

// Config returns the StepConfig of the active step
func (s *Store) Config() StepConfig {
	return configOf(s.state.Load())
}

// Subscribe registers a Listener and returns the function that removes it
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

// Close cancels pending resets and prefetches and waits for them to finish.
// A closed Store still navigates, but starts no prefetches and schedules no
// resets
func (s *Store) Close() {
	s.mu.Lock()
	s.cancel()
	s.cancelReset()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Store) closed() bool {
	return s.ctx.Err() != nil
}

// navigate commits a state replacement that moves the flow. Must be called
// with mu held
func (s *Store) navigate(kind string, next *api.FlowState) StepConfig {
	s.update(next)
	s.deps.Metrics.Navigated(kind, next)
	slog.Debug("Flow navigated",
		slog.String("kind", kind),
		log.Step(next.Step),
		log.Role(next.Role),
		log.Service(next.Service),
		log.Session(s.session.ID()))
	return configOf(next)
}

// update publishes a new snapshot and notifies listeners. Must be called
// with mu held
func (s *Store) update(next *api.FlowState) {
	prev := s.state.Swap(next)
	s.notify(prev, next)
}

func (s *Store) notify(prev, next *api.FlowState) {
	s.lmu.Lock()
	ids := slices.Sorted(maps.Keys(s.listeners))
	ls := make([]Listener, len(ids))
	for i, id := range ids {
		ls[i] = s.listeners[id]
	}
	s.lmu.Unlock()

	for _, l := range ls {
		s.callListener(l, prev, next)
	}
}

func (s *Store) callListener(l Listener, prev, next *api.FlowState) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Flow listener panicked",
				slog.Any("panic", r),
				log.Step(next.Step))
		}
	}()
	l(prev, next)
}

func (s *Store) refuse(
	cur *api.FlowState, reason string, err error,
) (StepConfig, error) {
	slog.Warn("Navigation refused",
		log.Step(cur.Step),
		log.Role(cur.Role),
		log.Service(cur.Service),
		log.Error(err))
	s.deps.Metrics.Rejected(reason)
	return configOf(cur), err
}

// foreign handles a navigation target outside the active namespace. In
// development mode this is a programmer error and panics
func (s *Store) foreign(
	cur *api.FlowState, id api.StepID,
) (StepConfig, error) {
	err := foreignStepError(id, namespaceOf(cur))
	if s.config.IsDevelopment() {
		panic(err)
	}
	return s.refuse(cur, reasonForeignStep, err)
}

func (s *Store) cancelReset() {
	if s.reset != nil {
		s.reset.Stop()
		s.reset = nil
	}
}

func (s *Store) activeFlow(st *api.FlowState) (*steps.Flow, bool) {
	if !st.IsActive || st.Service == "" {
		return nil, false
	}
	return steps.Lookup(namespaceOf(st))
}

func namespaceOf(st *api.FlowState) steps.Namespace {
	return steps.NamespaceOf(st.Role, st.Service)
}

func configOf(st *api.FlowState) StepConfig {
	return StepConfig{
		Step:    st.Step,
		Role:    st.Role,
		Service: st.Service,
		Panel:   st.Panel,
	}
}

func genericPanel(id api.StepID) api.PanelConfig {
	return steps.Panel(steps.Generic, id)
}
