package api

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

type (
	// Role identifies which side of the marketplace a flow represents
	Role string

	// Service identifies the kind of dispatch a flow is requesting
	Service string

	// JobStatus mirrors the backend status of an in-flight job
	JobStatus string

	// StepID is a step token drawn from the closed step catalog
	StepID string

	// JobID identifies a backend job (ride, delivery, errand or parcel)
	JobID string

	// AgentID identifies the agent matched to a job
	AgentID string

	// RideType is the vehicle tier chosen for a transport request
	RideType string

	// Location is a confirmed point on the map
	Location struct {
		Lat     float64 `json:"lat" yaml:"lat"`
		Lng     float64 `json:"lng" yaml:"lng"`
		Address string  `json:"address,omitempty" yaml:"address,omitempty"`
	}

	// PanelConfig contains the bottom panel hints for the active step
	PanelConfig struct {
		Visible       bool    `json:"visible"`
		MinExtent     float64 `json:"min_extent"`
		MaxExtent     float64 `json:"max_extent"`
		InitialExtent float64 `json:"initial_extent"`
		Draggable     bool    `json:"draggable"`
	}
)

const (
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
)

const (
	ServiceTransport Service = "transport"
	ServiceDelivery  Service = "delivery"
	ServiceErrand    Service = "errand"
	ServiceParcel    Service = "parcel"
)

const (
	JobPending    JobStatus = "pending"
	JobAccepted   JobStatus = "accepted"
	JobArrived    JobStatus = "arrived"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
	JobRejected   JobStatus = "rejected"
)

const (
	RideEconomy RideType = "economy"
	RidePremium RideType = "premium"
	RideXL      RideType = "xl"
)

var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrInvalidJobID    = errors.New("invalid job id")
)

var (
	// Roles lists every supported role
	Roles = []Role{RoleCustomer, RoleDriver}

	// Services lists every supported service
	Services = []Service{
		ServiceTransport, ServiceDelivery, ServiceErrand, ServiceParcel,
	}
)

// Valid reports whether the Role is one of the supported roles
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleDriver
}

// Valid reports whether the Service is one of the supported services
func (s Service) Valid() bool {
	switch s {
	case ServiceTransport, ServiceDelivery, ServiceErrand, ServiceParcel:
		return true
	default:
		return false
	}
}

// Validate checks that the coordinates fall within the WGS84 ranges
func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 || l.Lng < -180 || l.Lng > 180 {
		return ErrInvalidLocation
	}
	return nil
}

// UnmarshalJSON accepts job ids encoded either as strings or as numbers
func (id *JobID) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	switch res.Type {
	case gjson.String, gjson.Number:
		*id = JobID(res.String())
		return nil
	case gjson.Null:
		*id = ""
		return nil
	default:
		return ErrInvalidJobID
	}
}

// MarshalJSON encodes the job id as a JSON string
func (id JobID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}
