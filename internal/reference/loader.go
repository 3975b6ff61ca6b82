package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kode4food/courier/pkg/log"
)

type (
	// Source fetches the authoritative copy of a reference document
	Source interface {
		Fetch(ctx context.Context, key string) ([]byte, error)
	}

	// Cache stores fetched reference documents between sessions
	Cache interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Set(ctx context.Context, key string, data []byte) error
	}

	// Loader loads one reference document of type T. Concurrent fetches
	// of the same document are collapsed into one Source call
	Loader[T any] struct {
		key    string
		source Source
		cache  Cache
		group  singleflight.Group

		mu     sync.RWMutex
		value  T
		loaded bool
	}
)

var (
	ErrCacheMiss   = errors.New("reference data not cached")
	ErrNotFound    = errors.New("reference data not found")
	ErrNoSource    = errors.New("reference source is required")
	ErrEmptyKey    = errors.New("reference key is required")
	ErrUnavailable = errors.New("reference source unavailable")
)

// NewLoader creates a Loader for the document stored under key. The cache
// may be nil
func NewLoader[T any](
	key string, src Source, cache Cache,
) (*Loader[T], error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if src == nil {
		return nil, ErrNoSource
	}
	return &Loader[T]{
		key:    key,
		source: src,
		cache:  cache,
	}, nil
}

// Key returns the document key
func (l *Loader[T]) Key() string {
	return l.key
}

// LoadCachedReferenceData returns the document without touching the
// Source. The second result is false when neither memory nor the cache
// holds it
func (l *Loader[T]) LoadCachedReferenceData(
	ctx context.Context,
) (T, bool, error) {
	if v, ok := l.memory(); ok {
		return v, true, nil
	}

	var zero T
	if l.cache == nil {
		return zero, false, nil
	}
	data, err := l.cache.Get(ctx, l.key)
	if errors.Is(err, ErrCacheMiss) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, err
	}

	v, err := decode[T](data)
	if err != nil {
		return zero, false, err
	}
	l.remember(v)
	return v, true, nil
}

// FetchReferenceData loads the document from the Source and refreshes
// the cache. Cache write failures are logged and otherwise ignored
func (l *Loader[T]) FetchReferenceData(ctx context.Context) (T, error) {
	res, err, _ := l.group.Do(l.key, func() (any, error) {
		data, err := l.source.Fetch(ctx, l.key)
		if err != nil {
			return nil, err
		}
		v, err := decode[T](data)
		if err != nil {
			return nil, err
		}
		l.remember(v)
		l.store(ctx, data)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}

// Prefetch makes the document available, fetching it only when it is not
// already cached
func (l *Loader[T]) Prefetch(ctx context.Context) error {
	_, ok, err := l.LoadCachedReferenceData(ctx)
	if err != nil {
		slog.Warn("Reference cache read failed",
			slog.String("key", l.key),
			log.Error(err))
	}
	if ok {
		return nil
	}
	_, err = l.FetchReferenceData(ctx)
	return err
}

func (l *Loader[T]) memory() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.loaded
}

func (l *Loader[T]) remember(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = v
	l.loaded = true
}

func (l *Loader[T]) store(ctx context.Context, data []byte) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, l.key, data); err != nil {
		slog.Warn("Reference cache write failed",
			slog.String("key", l.key),
			log.Error(err))
	}
}

func decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode reference data: %w", err)
	}
	return v, nil
}
