// Package event sequences inbound job events so they are handled one at a
// time, in arrival order
package event

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/topic"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
)

type (
	// Queue hands inbound job events to a Handler sequentially. Events are
	// drained from the topic in bounded batches but handled individually
	Queue struct {
		prod        topic.Producer[api.JobEvent]
		cons        topic.Consumer[api.JobEvent]
		handler     Handler
		stop        chan struct{}
		batchSize   int
		closed      atomic.Bool
		wg          sync.WaitGroup
		startOnce   sync.Once
		stopOnce    sync.Once
		cleanupOnce sync.Once
	}

	// Handler processes a single job event
	Handler func(api.JobEvent) error
)

var (
	ErrHandlerPanicked = errors.New("event handler panicked")
	ErrQueueClosed     = errors.New("event queue closed")
)

// NewQueue creates a new job event queue with the provided batch size
func NewQueue(handler Handler, batchSize int) *Queue {
	queue := caravan.NewTopic[api.JobEvent]()
	return &Queue{
		prod:      queue.NewProducer(),
		cons:      queue.NewConsumer(),
		handler:   handler,
		stop:      make(chan struct{}),
		batchSize: max(batchSize, 1),
	}
}

// Start begins processing queued job events
func (q *Queue) Start() {
	q.startOnce.Do(func() {
		q.wg.Go(func() {
			for {
				select {
				case <-q.stop:
					return
				case ev, ok := <-q.cons.Receive():
					if !ok {
						return
					}
					q.handleBatch(q.collectBatch(ev))
				}
			}
		})
	})
}

// Enqueue adds a job event to the queue
func (q *Queue) Enqueue(ev api.JobEvent) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	q.prod.Send() <- ev
	return nil
}

// Flush waits for queued events to complete and stops the queue
func (q *Queue) Flush() {
	q.closed.Store(true)
	q.stopOnce.Do(func() {
		close(q.stop)
	})
	q.wg.Wait()
	q.cleanupOnce.Do(q.flush)
}

// Cancel immediately stops the queue without processing remaining events
func (q *Queue) Cancel() {
	q.closed.Store(true)
	q.stopOnce.Do(func() {
		close(q.stop)
	})
	q.wg.Wait()
	q.cleanupOnce.Do(q.close)
}

func (q *Queue) collectBatch(first api.JobEvent) []api.JobEvent {
	batch := []api.JobEvent{first}
	for len(batch) < q.batchSize {
		select {
		case ev, ok := <-q.cons.Receive():
			if !ok {
				return batch
			}
			batch = append(batch, ev)
		default:
			return batch
		}
	}
	return batch
}

func (q *Queue) flush() {
	for {
		select {
		case ev, ok := <-q.cons.Receive():
			if !ok {
				q.close()
				return
			}
			q.handleBatch(q.collectBatch(ev))
		default:
			q.close()
			return
		}
	}
}

func (q *Queue) close() {
	q.prod.Close()
	q.cons.Close()
}

// handleBatch logs and drops failed events; they are never retried
func (q *Queue) handleBatch(batch []api.JobEvent) {
	for _, ev := range batch {
		if err := q.tryHandle(ev); err != nil {
			slog.Error("Job event failed",
				log.Event(ev.Type),
				slog.String("payload", string(ev.Data)),
				log.Error(err))
		}
	}
}

func (q *Queue) tryHandle(ev api.JobEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanicked, r)
		}
	}()
	return q.handler(ev)
}
