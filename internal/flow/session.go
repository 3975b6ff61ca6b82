package flow

import (
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// Session identifies one client session. A Session backs exactly one Store
type Session struct {
	id      string
	claimed atomic.Bool
}

var (
	ErrNilSession     = errors.New("session is nil")
	ErrSessionClaimed = errors.New("session already has a flow store")
)

// NewSession creates a Session with a random identifier
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

func (s *Session) claim() error {
	if s == nil {
		return ErrNilSession
	}
	if !s.claimed.CompareAndSwap(false, true) {
		return ErrSessionClaimed
	}
	return nil
}
