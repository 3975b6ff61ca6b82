// Package assert extends testify with flow and configuration assertions
// shared by the courier test suites
package assert
