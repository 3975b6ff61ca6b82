// Package server implements the inspector HTTP API
//
// The inspector drives and observes the flow of a running session: it
// exposes navigation endpoints, accepts injected job events, lists the
// step catalog and serves Prometheus metrics
package server
