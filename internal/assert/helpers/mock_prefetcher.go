package helpers

import (
	"context"
	"sync"
)

// MockPrefetcher counts prefetches and returns a configured error. When
// Block is set, Prefetch waits for Release or context cancellation
type MockPrefetcher struct {
	mu      sync.Mutex
	calls   int
	err     error
	block   chan struct{}
	invoked chan struct{}
}

// NewMockPrefetcher creates a MockPrefetcher that succeeds immediately
func NewMockPrefetcher() *MockPrefetcher {
	return &MockPrefetcher{
		invoked: make(chan struct{}, 16),
	}
}

// Prefetch records the call and returns the configured outcome
func (p *MockPrefetcher) Prefetch(ctx context.Context) error {
	p.mu.Lock()
	p.calls++
	err := p.err
	block := p.block
	p.mu.Unlock()

	select {
	case p.invoked <- struct{}{}:
	default:
	}

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// SetError configures the error returned by later prefetches
func (p *MockPrefetcher) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Block makes later prefetches wait until Release is called
func (p *MockPrefetcher) Block() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.block = make(chan struct{})
}

// Release unblocks waiting prefetches
func (p *MockPrefetcher) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.block != nil {
		close(p.block)
		p.block = nil
	}
}

// Calls returns the number of prefetches started
func (p *MockPrefetcher) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Invoked receives once per started prefetch, up to its buffer size
func (p *MockPrefetcher) Invoked() <-chan struct{} {
	return p.invoked
}
