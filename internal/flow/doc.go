// Package flow holds the Flow State Store, the single mutation surface of
// a session's dispatch flow
//
// Every mutation replaces the whole FlowState with a new immutable value.
// Writers are serialized; readers load the current snapshot without locking.
// Manual navigation (the UI) and automatic navigation (job events) go
// through the same operations and share the same invariants
package flow
