// Package courier identifies the courier dispatch flow service
package courier

const (
	// Name is the service name reported in logs and health checks
	Name = "courier"

	// Version is the release version, overridden at link time
	Version = "0.1.0"
)
