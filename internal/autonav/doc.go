// Package autonav turns inbound job events into validated navigation
//
// Each event is filtered by job identity, checked against the job status
// transition table, and handed to a pure handler that describes the
// resulting change. The change is applied in one atomic Store call, so a
// failing or panicking handler leaves the flow untouched
package autonav
