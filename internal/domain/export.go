package domain

import "time"

// ExportRow is a single row in the administrative flat export.
// It is a denormalized view: one row per passenger, with event fields
// repeated for every passenger on that event.
type ExportRow struct {
	// Event fields, repeated for every passenger on the event.
	EventID         int64
	EventCode       string
	Status          Status
	DestinationName string
	OutboundAt      *time.Time // nil when the leg was not requested
	ReturnAt        *time.Time
	OutboundDriver  string // empty when no transport is assigned
	OutboundVehicle string
	ReturnDriver    string
	ReturnVehicle   string

	// Passenger fields.
	PassengerName  string
	PassengerEmail string
	IsOwner        bool
}
