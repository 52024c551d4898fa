// Package domain contains the core data types and rules for fleet trip
// reservations: events, their legs, passenger rosters, lifecycle and
// transport assignment.
// This package has no dependencies outside the standard library and is
// imported by every other internal package.
package domain

import (
	"fmt"
	"time"
)

// TripType selects which legs an event carries.
type TripType string

const (
	TripRoundTrip    TripType = "round_trip"
	TripOutboundOnly TripType = "outbound_only"
	TripReturnOnly   TripType = "return_only"
)

// Valid reports whether t is a known trip type.
func (t TripType) Valid() bool {
	switch t {
	case TripRoundTrip, TripOutboundOnly, TripReturnOnly:
		return true
	}
	return false
}

func (t TripType) hasOutbound() bool { return t == TripRoundTrip || t == TripOutboundOnly }
func (t TripType) hasReturn() bool   { return t == TripRoundTrip || t == TripReturnOnly }

// Transport is the driver and vehicle assigned to a leg.
// Both ids are set or neither is; use NewTransport to build one.
type Transport struct {
	DriverID  *int64
	VehicleID *int64
}

// NewTransport returns an assigned Transport.
func NewTransport(driverID, vehicleID int64) Transport {
	return Transport{DriverID: &driverID, VehicleID: &vehicleID}
}

// Assigned reports whether both driver and vehicle are set.
func (t Transport) Assigned() bool { return t.DriverID != nil && t.VehicleID != nil }

// Leg is one direction of a trip.
type Leg struct {
	ScheduledAt time.Time
	Transport   Transport
	Voucher     VoucherStatus
}

// Denial records who denied an event and why. It is kept for read-only display.
type Denial struct {
	DeniedByName string
	Reason       string
}

// Event is the aggregate root: a trip request with one or two legs.
// A nil leg was never requested; it is not "unknown".
type Event struct {
	ID          int64
	Code        string
	Destination Destination
	Details     string
	Outbound    *Leg
	Return      *Leg
	Passengers  Roster
	Status      Status
	Denial      *Denial
	CreatedAt   time.Time
}

// TripType derives the trip type from the legs present.
func (e Event) TripType() TripType {
	switch {
	case e.Outbound != nil && e.Return != nil:
		return TripRoundTrip
	case e.Return != nil:
		return TripReturnOnly
	default:
		return TripOutboundOnly
	}
}

// RelevantDate is the date listings sort and bucket by: the outbound leg
// when present, otherwise the return leg. ok is false when neither leg has
// a concrete date.
func (e Event) RelevantDate() (t time.Time, ok bool) {
	for _, leg := range []*Leg{e.Outbound, e.Return} {
		if leg != nil && !leg.ScheduledAt.IsZero() && !IsSentinel(leg.ScheduledAt) {
			return leg.ScheduledAt, true
		}
	}
	return time.Time{}, false
}

// OwnerID returns the id of the roster owner, or 0 when the roster is empty.
func (e Event) OwnerID() int64 {
	o, _ := e.Passengers.Owner()
	return o.ID
}

// EventDraft is the requester's input for a new event.
type EventDraft struct {
	DestinationID int64
	Details       string
	TripType      TripType
	OutboundAt    *time.Time
	ReturnAt      *time.Time
	Passengers    Roster
}

// Build validates the draft and returns a Pending event without id or code.
// Dates for legs the trip type excludes are ignored.
func (d EventDraft) Build() (Event, error) {
	if d.DestinationID <= 0 {
		return Event{}, fmt.Errorf("%w: destination is required", ErrValidation)
	}
	out, ret, err := buildLegs(d.TripType, d.OutboundAt, d.ReturnAt)
	if err != nil {
		return Event{}, err
	}
	if err := d.Passengers.Validate(); err != nil {
		return Event{}, err
	}
	return Event{
		Destination: Destination{ID: d.DestinationID},
		Details:     d.Details,
		Outbound:    out,
		Return:      ret,
		Passengers:  NewRoster(d.Passengers.Passengers()...),
		Status:      StatusPending,
	}, nil
}

// EventEdit is a partial update. Nil fields keep the current value.
// An empty TripType keeps the event's current trip type, so a date for a
// leg the trip type excludes is dropped rather than adding that leg.
// A roster that leaves out the current owner needs ConfirmOwnerRemoval.
type EventEdit struct {
	DestinationID       *int64
	Details             *string
	TripType            TripType
	OutboundAt          *time.Time
	ReturnAt            *time.Time
	Passengers          *Roster
	ConfirmOwnerRemoval bool
}

// ApplyEdit returns e with edit applied, validated by the same rules as
// creation. Transport and voucher state of legs that survive are kept.
func ApplyEdit(e Event, edit EventEdit) (Event, error) {
	d := EventDraft{
		DestinationID: e.Destination.ID,
		Details:       e.Details,
		TripType:      e.TripType(),
		OutboundAt:    legTime(e.Outbound),
		ReturnAt:      legTime(e.Return),
		Passengers:    e.Passengers,
	}
	if edit.DestinationID != nil {
		d.DestinationID = *edit.DestinationID
	}
	if edit.Details != nil {
		d.Details = *edit.Details
	}
	if edit.TripType != "" {
		d.TripType = edit.TripType
	}
	if edit.OutboundAt != nil {
		d.OutboundAt = edit.OutboundAt
	}
	if edit.ReturnAt != nil {
		d.ReturnAt = edit.ReturnAt
	}
	if edit.Passengers != nil {
		if err := edit.Passengers.Validate(); err != nil {
			return Event{}, err
		}
		roster, err := Reconcile(e.Passengers, *edit.Passengers, edit.ConfirmOwnerRemoval)
		if err != nil {
			return Event{}, err
		}
		d.Passengers = roster
	}

	built, err := d.Build()
	if err != nil {
		return Event{}, err
	}

	out := e
	out.Details = built.Details
	out.Passengers = built.Passengers
	if built.Destination.ID != e.Destination.ID {
		out.Destination = built.Destination
	}
	out.Outbound = keepAssignment(built.Outbound, e.Outbound)
	out.Return = keepAssignment(built.Return, e.Return)
	return out, nil
}

func buildLegs(tt TripType, outboundAt, returnAt *time.Time) (out, ret *Leg, err error) {
	if !tt.Valid() {
		return nil, nil, fmt.Errorf("%w: trip type is required", ErrValidation)
	}
	if tt.hasOutbound() {
		if outboundAt == nil || outboundAt.IsZero() || IsSentinel(*outboundAt) {
			return nil, nil, fmt.Errorf("%w: outbound date is required", ErrValidation)
		}
		out = &Leg{ScheduledAt: *outboundAt}
	}
	if tt.hasReturn() {
		if returnAt == nil || returnAt.IsZero() || IsSentinel(*returnAt) {
			return nil, nil, fmt.Errorf("%w: return date is required", ErrValidation)
		}
		ret = &Leg{ScheduledAt: *returnAt}
	}
	if out != nil && ret != nil {
		if err := CheckLegOrder(&out.ScheduledAt, &ret.ScheduledAt); err != nil {
			return nil, nil, err
		}
	}
	return out, ret, nil
}

func keepAssignment(next, prev *Leg) *Leg {
	if next == nil || prev == nil {
		return next
	}
	next.Transport = prev.Transport
	next.Voucher = prev.Voucher
	return next
}

func legTime(l *Leg) *time.Time {
	if l == nil {
		return nil
	}
	t := l.ScheduledAt
	return &t
}
