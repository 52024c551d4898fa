package domain

import (
	"fmt"
	"slices"
)

// LegKind names one direction of a trip.
type LegKind string

const (
	LegOutbound LegKind = "outbound"
	LegReturn   LegKind = "return"
)

// LegRequest is what an administrator picked for one leg. Ids are optional;
// an id that does not match the fleet catalog counts as unresolved.
type LegRequest struct {
	DriverID  *int64
	VehicleID *int64
	Voucher   *VoucherStatus
}

// AssignmentRequest carries the per-leg picks. A nil leg is left untouched.
type AssignmentRequest struct {
	Outbound *LegRequest
	Return   *LegRequest
}

// Assignment is the payload actually submitted to the feed.
// A nil Transport or Voucher means that leg's value is not sent.
type Assignment struct {
	Outbound        *Transport
	Return          *Transport
	OutboundVoucher *VoucherStatus
	ReturnVoucher   *VoucherStatus
}

// Empty reports whether nothing would be submitted.
func (a Assignment) Empty() bool {
	return a.Outbound == nil && a.Return == nil && a.OutboundVoucher == nil && a.ReturnVoucher == nil
}

// AssignmentReport is the outcome of resolving an AssignmentRequest.
// Skipped holds one ErrTransportUnresolved per leg left out.
type AssignmentReport struct {
	Assignment Assignment
	Skipped    []error
}

// Fleet is a snapshot of the driver and vehicle catalogs.
type Fleet struct {
	Drivers  []Driver
	Vehicles []Vehicle
}

func (f Fleet) hasDriver(id int64) bool {
	return slices.ContainsFunc(f.Drivers, func(d Driver) bool { return d.ID == id })
}

func (f Fleet) hasVehicle(id int64) bool {
	return slices.ContainsFunc(f.Vehicles, func(v Vehicle) bool { return v.ID == id })
}

// ResolveAssignment turns req into the payload for e.
// A leg's transport is included only when both its driver and vehicle
// resolve against fleet; otherwise the leg is skipped, not failed.
// Legs the event does not have are always skipped.
// Voucher and transport are resolved independently.
func ResolveAssignment(e Event, req AssignmentRequest, fleet Fleet) (AssignmentReport, error) {
	var rep AssignmentReport
	legs := []struct {
		kind      LegKind
		leg       *Leg
		req       *LegRequest
		transport **Transport
		voucher   **VoucherStatus
	}{
		{LegOutbound, e.Outbound, req.Outbound, &rep.Assignment.Outbound, &rep.Assignment.OutboundVoucher},
		{LegReturn, e.Return, req.Return, &rep.Assignment.Return, &rep.Assignment.ReturnVoucher},
	}
	for _, l := range legs {
		if l.req == nil {
			continue
		}
		if l.leg == nil {
			rep.Skipped = append(rep.Skipped, fmt.Errorf("%w: %s leg was not requested", ErrTransportUnresolved, l.kind))
			continue
		}
		if v := l.req.Voucher; v != nil {
			if !v.Valid() {
				return AssignmentReport{}, fmt.Errorf("%w: unknown voucher status %q", ErrValidation, *v)
			}
			vv := *v
			*l.voucher = &vv
		}
		if l.req.DriverID == nil && l.req.VehicleID == nil {
			continue
		}
		if err := resolveLeg(l.kind, l.req, fleet); err != nil {
			rep.Skipped = append(rep.Skipped, err)
			continue
		}
		t := NewTransport(*l.req.DriverID, *l.req.VehicleID)
		*l.transport = &t
	}
	return rep, nil
}

func resolveLeg(kind LegKind, req *LegRequest, fleet Fleet) error {
	switch {
	case req.DriverID == nil || !fleet.hasDriver(*req.DriverID):
		return fmt.Errorf("%w: %s leg driver not resolved", ErrTransportUnresolved, kind)
	case req.VehicleID == nil || !fleet.hasVehicle(*req.VehicleID):
		return fmt.Errorf("%w: %s leg vehicle not resolved", ErrTransportUnresolved, kind)
	}
	return nil
}

// ApplyAssignment returns e with a written onto its legs.
// Legs e does not have are ignored.
func ApplyAssignment(e Event, a Assignment) Event {
	if e.Outbound != nil {
		leg := *e.Outbound
		if a.Outbound != nil {
			leg.Transport = *a.Outbound
		}
		if a.OutboundVoucher != nil {
			leg.Voucher = *a.OutboundVoucher
		}
		e.Outbound = &leg
	}
	if e.Return != nil {
		leg := *e.Return
		if a.Return != nil {
			leg.Transport = *a.Return
		}
		if a.ReturnVoucher != nil {
			leg.Voucher = *a.ReturnVoucher
		}
		e.Return = &leg
	}
	return e
}
