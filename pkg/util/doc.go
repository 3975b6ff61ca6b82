// Package util provides small generic data structures shared across the
// flow packages
package util
