package reference_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/internal/reference"
)

type countingSource struct {
	calls atomic.Int32
	data  []byte
	err   error
	gate  chan struct{}
}

func (s *countingSource) Fetch(context.Context, string) ([]byte, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	return s.data, s.err
}

type tier struct {
	ID string `json:"id"`
}

func newRedisCache(
	t *testing.T,
) (*reference.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	cfg := config.NewDefaultConfig().Cache
	cfg.Addr = server.Addr()
	cfg.Prefix = "test"
	cfg.TTL = time.Minute

	cache, err := reference.NewRedisCache(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache, server
}

func TestNewLoaderErrors(t *testing.T) {
	_, err := reference.NewLoader[tier]("", &countingSource{}, nil)
	assert.ErrorIs(t, err, reference.ErrEmptyKey)

	_, err = reference.NewLoader[tier]("k", nil, nil)
	assert.ErrorIs(t, err, reference.ErrNoSource)
}

func TestLoadCachedWithoutCache(t *testing.T) {
	src := &countingSource{data: []byte(`[{"id":"eco"}]`)}
	l, err := reference.NewLoader[[]tier]("pricing/transport", src, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok, err := l.LoadCachedReferenceData(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, src.calls.Load())

	v, err := l.FetchReferenceData(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tier{{ID: "eco"}}, v)

	v, ok, err = l.LoadCachedReferenceData(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []tier{{ID: "eco"}}, v)
}

func TestFetchWritesRedis(t *testing.T) {
	cache, server := newRedisCache(t)
	src := &countingSource{data: []byte(`[{"id":"eco"}]`)}
	ctx := context.Background()

	l, err := reference.NewLoader[[]tier]("pricing/transport", src, cache)
	require.NoError(t, err)
	require.NoError(t, l.Prefetch(ctx))
	assert.Equal(t, int32(1), src.calls.Load())

	stored, err := server.Get("test:pricing/transport")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"eco"}]`, stored)
	assert.Equal(t, time.Minute, server.TTL("test:pricing/transport"))

	fresh, err := reference.NewLoader[[]tier]("pricing/transport", src, cache)
	require.NoError(t, err)
	v, ok, err := fresh.LoadCachedReferenceData(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []tier{{ID: "eco"}}, v)

	require.NoError(t, fresh.Prefetch(ctx))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestRedisCacheMissAndExpiry(t *testing.T) {
	cache, server := newRedisCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, reference.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "k", []byte("v")))
	data, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data)

	server.FastForward(2 * time.Minute)
	_, err = cache.Get(ctx, "k")
	assert.ErrorIs(t, err, reference.ErrCacheMiss)
	assert.NoError(t, cache.Ping(ctx))
}

func TestRedisCacheRequiresAddr(t *testing.T) {
	_, err := reference.NewRedisCache(config.CacheConfig{})
	assert.ErrorIs(t, err, reference.ErrCacheAddrRequired)
}

func TestPrefetchSurvivesCacheOutage(t *testing.T) {
	cfg := config.NewDefaultConfig().Cache
	cfg.Addr = "127.0.0.1:1"
	cache, err := reference.NewRedisCache(cfg)
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	src := &countingSource{data: []byte(`[]`)}
	l, err := reference.NewLoader[[]tier]("pricing/errand", src, cache)
	require.NoError(t, err)

	assert.NoError(t, l.Prefetch(context.Background()))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestFetchErrors(t *testing.T) {
	boom := errors.New("boom")
	l, err := reference.NewLoader[[]tier](
		"pricing/parcel", &countingSource{err: boom}, nil,
	)
	require.NoError(t, err)
	_, err = l.FetchReferenceData(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, l.Prefetch(context.Background()), boom)

	l, err = reference.NewLoader[[]tier](
		"pricing/parcel", &countingSource{data: []byte(`{`)}, nil,
	)
	require.NoError(t, err)
	_, err = l.FetchReferenceData(context.Background())
	assert.Error(t, err)
	_, ok, _ := l.LoadCachedReferenceData(context.Background())
	assert.False(t, ok)
}

func TestConcurrentFetchesCollapse(t *testing.T) {
	src := &countingSource{
		data: []byte(`[{"id":"eco"}]`),
		gate: make(chan struct{}),
	}
	l, err := reference.NewLoader[[]tier]("pricing/transport", src, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			v, err := l.FetchReferenceData(context.Background())
			assert.NoError(t, err)
			assert.Len(t, v, 1)
		})
	}
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	assert.Equal(t, int32(1), src.calls.Load())
}
