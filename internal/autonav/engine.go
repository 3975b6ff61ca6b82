package autonav

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/internal/event"
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/internal/lifecycle"
	"github.com/kode4food/courier/internal/metrics"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
	"github.com/kode4food/courier/pkg/steps"
)

type (
	// Engine applies inbound job events to a Store
	Engine struct {
		store     *flow.Store
		config    *config.Config
		metrics   *metrics.Metrics
		sub       Subscriber
		handlers  map[api.EventType]Handler
		requested func(api.JobRequestedEvent)
		queue     *event.Queue

		mu    sync.Mutex
		bound api.JobID
		gen   uint64
		unsub func()

		pmu        sync.Mutex
		pending    api.JobID
		signal     chan struct{}
		stop       chan struct{}
		stopOnce   sync.Once
		storeUnsub func()
		wg         sync.WaitGroup
	}

	// Subscriber registers a per-job event listener on the event channel
	// and returns the function that removes it
	Subscriber interface {
		Subscribe(id api.JobID, h func(api.JobEvent)) (func(), error)
	}

	// Options contains the optional collaborators of an Engine
	Options struct {
		Metrics    *metrics.Metrics
		Subscriber Subscriber
		Handlers   map[api.EventType]Handler
		Requested  func(api.JobRequestedEvent)
	}

	// Applier mutates Options during construction
	Applier func(*Options)
)

// WithMetrics records event outcomes
func WithMetrics(m *metrics.Metrics) Applier {
	return func(opt *Options) {
		opt.Metrics = m
	}
}

// WithSubscriber binds the Engine to per-job subscriptions
func WithSubscriber(sub Subscriber) Applier {
	return func(opt *Options) {
		opt.Subscriber = sub
	}
}

// WithHandler replaces the handler of one event type
func WithHandler(typ api.EventType, h Handler) Applier {
	return func(opt *Options) {
		opt.Handlers[typ] = h
	}
}

// WithRequestedHook forwards job:requested events, which never navigate
func WithRequestedHook(fn func(api.JobRequestedEvent)) Applier {
	return func(opt *Options) {
		opt.Requested = fn
	}
}

// New creates an Engine for a Store
func New(store *flow.Store, cfg *config.Config, apps ...Applier) *Engine {
	opt := &Options{Handlers: DefaultHandlers()}
	for _, app := range apps {
		app(opt)
	}

	e := &Engine{
		store:     store,
		config:    cfg,
		metrics:   opt.Metrics,
		sub:       opt.Subscriber,
		handlers:  maps.Clone(opt.Handlers),
		requested: opt.Requested,
		signal:    make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	e.queue = event.NewQueue(e.handle, cfg.EventBatchSize)
	return e
}

// Start begins processing queued events and keeps the Engine bound to
// whichever job the Store carries
func (e *Engine) Start() {
	e.queue.Start()
	e.storeUnsub = e.store.Subscribe(func(prev, next *api.FlowState) {
		if prev.JobID != next.JobID {
			e.jobChanged(next.JobID)
		}
	})
	e.jobChanged(e.store.State().JobID)
	e.wg.Go(e.rebindLoop)
	slog.Info("Auto-navigation started")
}

// Close stops rebinding, removes the job subscription and drains queued
// events
func (e *Engine) Close() {
	e.stopOnce.Do(func() {
		if e.storeUnsub != nil {
			e.storeUnsub()
		}
		close(e.stop)
	})
	e.wg.Wait()
	e.unbind()
	e.queue.Flush()
	slog.Info("Auto-navigation stopped")
}

// Enqueue queues an event for sequential processing
func (e *Engine) Enqueue(ev api.JobEvent) error {
	return e.queue.Enqueue(ev)
}

// Process validates and applies a single event. It never panics
func (e *Engine) Process(ev api.JobEvent) (res Result) {
	st := e.store.State()
	defer func() {
		if r := recover(); r != nil {
			res = e.fail(ev, st, fmt.Errorf("%w: %v", ErrHandlerPanicked, r))
		}
		e.metrics.Event(ev.Type, string(res.Outcome))
	}()

	if ev.Type == api.EventJobRequested {
		return e.forwardRequested(ev)
	}

	status, ok := ev.Type.Status()
	if !ok {
		slog.Debug("Ignoring event", log.Event(ev.Type))
		return Result{Outcome: Ignored, Event: ev.Type}
	}

	id, err := JobIDOf(ev.Data)
	if err != nil {
		slog.Warn("Discarding malformed event",
			log.Event(ev.Type),
			slog.String("payload", string(ev.Data)),
			log.Error(err))
		return Result{Outcome: Malformed, Event: ev.Type, Err: err}
	}

	res = Result{Event: ev.Type, JobID: id}
	if !st.HasJob() || st.JobID != id {
		slog.Debug("Discarding event for another job",
			log.Event(ev.Type),
			log.JobID(id),
			slog.String("bound_job", string(st.JobID)))
		res.Outcome = Foreign
		return res
	}

	if !lifecycle.IsValidTransition(st.JobStatus, status) {
		slog.Warn("Discarding illegal job transition",
			log.Event(ev.Type),
			log.JobID(id),
			slog.String("from", string(st.JobStatus)),
			slog.String("to", string(status)))
		res.Outcome = Illegal
		return res
	}

	return e.apply(ev, st, status, res)
}

func (e *Engine) apply(
	ev api.JobEvent, st *api.FlowState, status api.JobStatus, res Result,
) Result {
	f, ok := steps.Lookup(steps.NamespaceOf(st.Role, st.Service))
	if !ok {
		return e.fail(ev, st, fmt.Errorf("%w: %s/%s",
			flow.ErrNoService, st.Role, st.Service))
	}
	h, ok := e.handlers[ev.Type]
	if !ok {
		return e.fail(ev, st, fmt.Errorf("%w: %s", ErrNoHandler, ev.Type))
	}

	upd, err := h(Input{
		State:  st,
		Flow:   f,
		Event:  ev,
		Status: status,
		Grace:  e.config.ResetGracePeriod,
	})
	if err != nil {
		return e.fail(ev, st, err)
	}

	cfg, err := e.store.ApplyJobUpdate(upd)
	switch {
	case errors.Is(err, flow.ErrStaleUpdate):
		slog.Debug("Discarding event overtaken by navigation",
			log.Event(ev.Type),
			log.JobID(res.JobID))
		res.Outcome = Ignored
		res.Err = err
		return res
	case err != nil:
		return e.fail(ev, st, err)
	}

	slog.Info("Job status applied",
		log.Event(ev.Type),
		log.JobID(res.JobID),
		log.Status(status),
		log.Step(cfg.Step))
	res.Outcome = Applied
	res.Config = cfg
	return res
}

func (e *Engine) forwardRequested(ev api.JobEvent) Result {
	var p api.JobRequestedEvent
	if err := json.Unmarshal(ev.Data, &p); err != nil {
		slog.Warn("Discarding malformed event",
			log.Event(ev.Type),
			slog.String("payload", string(ev.Data)),
			log.Error(err))
		return Result{Outcome: Malformed, Event: ev.Type, Err: err}
	}
	if e.requested != nil {
		e.requested(p)
	}
	return Result{Outcome: Ignored, Event: ev.Type, JobID: p.JobID}
}

func (e *Engine) fail(ev api.JobEvent, st *api.FlowState, err error) Result {
	state, _ := json.Marshal(st)
	slog.Error("Job event handler failed",
		log.Event(ev.Type),
		slog.String("payload", string(ev.Data)),
		slog.String("state", string(state)),
		log.Error(err))
	return Result{Outcome: Failed, Event: ev.Type, Err: err}
}

// handle always succeeds because Process has already logged failures
func (e *Engine) handle(ev api.JobEvent) error {
	e.Process(ev)
	return nil
}
