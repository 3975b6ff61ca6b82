package autonav

import (
	"log/slog"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
)

// Bind subscribes to events for a job. Every listener of the previously
// bound job is removed before the new one is registered, and listeners of
// a replaced binding are ignored even if their events are still in flight
func (e *Engine) Bind(id api.JobID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == e.bound {
		return nil
	}
	e.gen++
	e.unbindLocked()
	e.bound = id
	if id == "" || e.sub == nil {
		return nil
	}

	gen := e.gen
	unsub, err := e.sub.Subscribe(id, func(ev api.JobEvent) {
		e.deliver(gen, ev)
	})
	if err != nil {
		e.bound = ""
		return err
	}
	e.unsub = unsub
	slog.Debug("Bound job events", log.JobID(id))
	return nil
}

// Bound returns the job the Engine is currently subscribed to
func (e *Engine) Bound() api.JobID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bound
}

func (e *Engine) unbind() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.unbindLocked()
	e.bound = ""
}

func (e *Engine) unbindLocked() {
	if e.unsub != nil {
		e.unsub()
		e.unsub = nil
	}
}

func (e *Engine) deliver(gen uint64, ev api.JobEvent) {
	e.mu.Lock()
	current := gen == e.gen
	e.mu.Unlock()
	if !current {
		slog.Debug("Dropping event from replaced binding", log.Event(ev.Type))
		return
	}
	if err := e.Enqueue(ev); err != nil {
		slog.Warn("Dropping event", log.Event(ev.Type), log.Error(err))
	}
}

// jobChanged runs under the Store's write lock, so it only records the
// latest job and wakes the rebind loop
func (e *Engine) jobChanged(id api.JobID) {
	e.pmu.Lock()
	e.pending = id
	e.pmu.Unlock()
	select {
	case e.signal <- struct{}{}:
	default:
	}
}

func (e *Engine) rebindLoop() {
	for {
		select {
		case <-e.stop:
			return
		case <-e.signal:
			e.pmu.Lock()
			id := e.pending
			e.pmu.Unlock()
			if err := e.Bind(id); err != nil {
				slog.Warn("Failed to bind job events",
					log.JobID(id),
					log.Error(err))
			}
		}
	}
}
