package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
)

type (
	// Prefetcher warms the reference data that a flow's screens depend on
	Prefetcher interface {
		Prefetch(ctx context.Context) error
	}

	// PrefetchFunc adapts a function to the Prefetcher interface
	PrefetchFunc func(ctx context.Context) error
)

// Prefetch calls f(ctx)
func (f PrefetchFunc) Prefetch(ctx context.Context) error {
	return f(ctx)
}

func (s *Store) prefetchRole(role api.Role) {
	if p, ok := s.deps.RolePrefetchers[role]; ok {
		s.prefetch(string(role), p)
	}
}

func (s *Store) prefetchService(service api.Service) <-chan error {
	if p, ok := s.deps.Prefetchers[service]; ok {
		return s.prefetch(string(service), p)
	}
	return nil
}

// prefetch runs a Prefetcher in a tracked goroutine bounded by the
// configured timeout. The returned channel receives the outcome once.
// Must be called with mu held
func (s *Store) prefetch(scope string, p Prefetcher) <-chan error {
	done := make(chan error, 1)
	if s.closed() {
		done <- ErrStoreClosed
		return done
	}
	s.wg.Go(func() {
		ctx, cancel := context.WithTimeout(s.ctx, s.config.PrefetchTimeout)
		defer cancel()

		start := time.Now()
		err := safePrefetch(ctx, p)
		s.deps.Metrics.Prefetched(scope, err, time.Since(start))
		if err != nil {
			slog.Warn("Prefetch failed",
				slog.String("scope", scope),
				log.Session(s.session.ID()),
				log.Error(err))
		}
		done <- err
	})
	return done
}

func (s *Store) await(
	ctx context.Context, service api.Service, done <-chan error,
) {
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Stopped waiting for prefetch",
			log.Service(service),
			log.Error(ctx.Err()))
	}
}

func safePrefetch(ctx context.Context, p Prefetcher) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prefetch panicked: %v", r)
		}
	}()
	return p.Prefetch(ctx)
}
