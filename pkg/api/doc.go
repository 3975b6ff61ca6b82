// Package api defines the shared data model for dispatch flows
//
// This package contains the role, service and job status enumerations, the
// copy-on-write FlowState aggregate, the inbound job event payloads, and the
// HTTP and WebSocket message shapes
package api
