// Package helpers builds test environments and mock collaborators
package helpers
