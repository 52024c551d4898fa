// Package wire defines the JSON shapes exchanged with the event feed and
// maps them to and from domain types.
// It is the only place raw status strings and sentinel dates are seen:
// everything past this package works with domain.Status and nil legs.
package wire

import (
	"fmt"
	"strings"
	"time"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// Destination is a destination catalog entry.
type Destination struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Passenger is one roster entry. DisplayName is never empty on output.
type Passenger struct {
	ID          int64  `json:"id"`
	IsOwner     bool   `json:"is_owner"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// Event is the feed representation of domain.Event.
// Both date fields are always present; an absent leg carries domain.SentinelString.
type Event struct {
	ID              int64       `json:"id"`
	Code            string      `json:"code"`
	Destination     Destination `json:"destination"`
	Details         string      `json:"details,omitempty"`
	StartDate       string      `json:"start_date"`
	ReturnDate      string      `json:"return_date"`
	Status          string      `json:"status"`
	Passengers      []Passenger `json:"passengers"`
	DriverStartID   *int64      `json:"driver_start_id,omitempty"`
	VehicleStartID  *int64      `json:"vehicle_start_id,omitempty"`
	DriverReturnID  *int64      `json:"driver_return_id,omitempty"`
	VehicleReturnID *int64      `json:"vehicle_return_id,omitempty"`
	VoucherStart    string      `json:"voucher_start,omitempty"`
	VoucherReturn   string      `json:"voucher_return,omitempty"`
	DeniedBy        string      `json:"denied_by,omitempty"`
	DenialReason    string      `json:"denial_reason,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Page is one page of the event feed. An empty Events slice ends the feed.
type Page struct {
	Events []Event `json:"events"`
}

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	DestinationID int64       `json:"destination_id"`
	Details       string      `json:"details,omitempty"`
	TripType      string      `json:"trip_type"`
	StartDate     string      `json:"start_date"`
	ReturnDate    string      `json:"return_date"`
	Passengers    []Passenger `json:"passengers"`
}

// UpdateEventRequest is the body of PUT /events/{id}. Omitted fields are kept.
type UpdateEventRequest struct {
	DestinationID       *int64       `json:"destination_id,omitempty"`
	Details             *string      `json:"details,omitempty"`
	TripType            string       `json:"trip_type,omitempty"`
	StartDate           *string      `json:"start_date,omitempty"`
	ReturnDate          *string      `json:"return_date,omitempty"`
	Passengers          *[]Passenger `json:"passengers,omitempty"`
	ConfirmOwnerRemoval bool         `json:"confirm_owner_removal,omitempty"`
}

// TransportPayload is the body of PUT /events/{id}/transport.
// Keys for a leg are present only when that leg is being assigned.
type TransportPayload struct {
	VehicleStartID  *int64  `json:"vehicle_start_id,omitempty"`
	DriverStartID   *int64  `json:"driver_start_id,omitempty"`
	VehicleReturnID *int64  `json:"vehicle_return_id,omitempty"`
	DriverReturnID  *int64  `json:"driver_return_id,omitempty"`
	VoucherStart    *string `json:"voucher_start,omitempty"`
	VoucherReturn   *string `json:"voucher_return,omitempty"`
}

// TransportResult reports what was applied and which legs were skipped.
type TransportResult struct {
	Event   Event    `json:"event"`
	Skipped []string `json:"skipped,omitempty"`
}

// DenyRequest is the body of POST /events/{id}/deny.
type DenyRequest struct {
	Reason string `json:"reason"`
}

// Driver is a driver catalog entry.
type Driver struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Vehicle is a vehicle catalog entry.
type Vehicle struct {
	ID    int64  `json:"id"`
	Plate string `json:"plate"`
	Model string `json:"model,omitempty"`
}

// User is a user catalog entry.
type User struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Nickname    string `json:"nickname,omitempty"`
	SocialName  string `json:"social_name,omitempty"`
	FullName    string `json:"full_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// ErrorDetail is the machine code and human message of a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Preferences is the body of GET /me/preferences.
type Preferences struct {
	NoticeSeen bool   `json:"notice_seen"`
	LastView   string `json:"last_view,omitempty"`
}

// PreferencesUpdate is the body of PUT /me/preferences. Omitted fields are kept.
type PreferencesUpdate struct {
	NoticeSeen *bool   `json:"notice_seen,omitempty"`
	LastView   *string `json:"last_view,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// statusSynonyms maps every raw status string the feed has been seen to
// send onto the canonical enum. Keys are already folded by foldStatus.
var statusSynonyms = map[string]domain.Status{
	"pending":      domain.StatusPending,
	"pendente":     domain.StatusPending,
	"aguardando":   domain.StatusPending,
	"em analise":   domain.StatusPending,
	"em análise":   domain.StatusPending,
	"requested":    domain.StatusPending,
	"solicitado":   domain.StatusPending,
	"approved":     domain.StatusApproved,
	"aprovado":     domain.StatusApproved,
	"pre approved": domain.StatusApproved,
	"preapproved":  domain.StatusApproved,
	"pre aprovado": domain.StatusApproved,
	"pré aprovado": domain.StatusApproved,
	"confirmed":    domain.StatusApproved,
	"confirmado":   domain.StatusApproved,
	"denied":       domain.StatusDenied,
	"negado":       domain.StatusDenied,
	"recusado":     domain.StatusDenied,
	"reprovado":    domain.StatusDenied,
	"rejected":     domain.StatusDenied,
	"canceled":     domain.StatusCanceled,
	"cancelled":    domain.StatusCanceled,
	"cancelado":    domain.StatusCanceled,
}

// ParseStatus translates a raw feed status into the canonical enum.
// Unrecognized values become domain.StatusUnknown.
func ParseStatus(raw string) domain.Status {
	if s, ok := statusSynonyms[foldStatus(raw)]; ok {
		return s
	}
	return domain.StatusUnknown
}

func foldStatus(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseVoucher translates a raw voucher status. Empty means no voucher.
func ParseVoucher(raw string) (domain.VoucherStatus, error) {
	v := domain.VoucherStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch v {
	case "gerado":
		v = domain.VoucherGenerated
	case "pendente":
		v = domain.VoucherPending
	case "negado":
		v = domain.VoucherDenied
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: unknown voucher status %q", domain.ErrValidation, raw)
	}
	return v, nil
}

// EncodeEvent converts e to its feed representation.
func EncodeEvent(e domain.Event) Event {
	out := Event{
		ID:          e.ID,
		Code:        e.Code,
		Destination: Destination{ID: e.Destination.ID, Name: e.Destination.Name},
		Details:     e.Details,
		StartDate:   domain.SentinelString,
		ReturnDate:  domain.SentinelString,
		Status:      string(e.Status),
		Passengers:  EncodePassengers(e.Passengers),
		CreatedAt:   e.CreatedAt,
	}
	if l := e.Outbound; l != nil {
		out.StartDate = l.ScheduledAt.Format(domain.CanonicalLayout)
		out.DriverStartID, out.VehicleStartID = l.Transport.DriverID, l.Transport.VehicleID
		out.VoucherStart = string(l.Voucher)
	}
	if l := e.Return; l != nil {
		out.ReturnDate = l.ScheduledAt.Format(domain.CanonicalLayout)
		out.DriverReturnID, out.VehicleReturnID = l.Transport.DriverID, l.Transport.VehicleID
		out.VoucherReturn = string(l.Voucher)
	}
	if e.Denial != nil {
		out.DeniedBy = e.Denial.DeniedByName
		out.DenialReason = e.Denial.Reason
	}
	return out
}

// DecodeEvent converts a feed event into the domain, reading dates as wall
// clock in loc. A sentinel date becomes a nil leg.
func DecodeEvent(in Event, loc *time.Location) (domain.Event, error) {
	e := domain.Event{
		ID:          in.ID,
		Code:        in.Code,
		Destination: domain.Destination{ID: in.Destination.ID, Name: in.Destination.Name},
		Details:     in.Details,
		Status:      ParseStatus(in.Status),
		Passengers:  DecodePassengers(in.Passengers),
		CreatedAt:   in.CreatedAt,
	}
	var err error
	if e.Outbound, err = decodeLeg(in.StartDate, in.DriverStartID, in.VehicleStartID, in.VoucherStart, loc); err != nil {
		return domain.Event{}, fmt.Errorf("event %d start_date: %w", in.ID, err)
	}
	if e.Return, err = decodeLeg(in.ReturnDate, in.DriverReturnID, in.VehicleReturnID, in.VoucherReturn, loc); err != nil {
		return domain.Event{}, fmt.Errorf("event %d return_date: %w", in.ID, err)
	}
	if e.Status == domain.StatusDenied && (in.DeniedBy != "" || in.DenialReason != "") {
		e.Denial = &domain.Denial{DeniedByName: in.DeniedBy, Reason: in.DenialReason}
	}
	return e, nil
}

// DecodePage decodes every event of a page, in order.
func DecodePage(p Page, loc *time.Location) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(p.Events))
	for _, we := range p.Events {
		e, err := DecodeEvent(we, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// EncodePage wraps events into a feed page. Events is never null.
func EncodePage(events []domain.Event) Page {
	p := Page{Events: make([]Event, 0, len(events))}
	for _, e := range events {
		p.Events = append(p.Events, EncodeEvent(e))
	}
	return p
}

func decodeLeg(raw string, driverID, vehicleID *int64, voucher string, loc *time.Location) (*domain.Leg, error) {
	t, ok, err := decodeDate(raw, loc)
	if err != nil || !ok {
		return nil, err
	}
	v, err := ParseVoucher(voucher)
	if err != nil {
		return nil, err
	}
	leg := &domain.Leg{ScheduledAt: t, Voucher: v}
	if driverID != nil && vehicleID != nil {
		leg.Transport = domain.NewTransport(*driverID, *vehicleID)
	}
	return leg, nil
}

// decodeDate normalizes raw to the canonical layout and reads that as a
// wall-clock time in loc; ok is false for empty input and for the sentinel.
func decodeDate(raw string, loc *time.Location) (t time.Time, ok bool, err error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false, nil
	}
	canonical, err := domain.NormalizeDate(raw)
	if err != nil {
		return time.Time{}, false, err
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err = time.ParseInLocation(domain.CanonicalLayout, canonical, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	if domain.IsSentinel(t) {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// EncodePassengers serializes a roster in order.
func EncodePassengers(r domain.Roster) []Passenger {
	ps := r.Passengers()
	out := make([]Passenger, 0, len(ps))
	for _, p := range ps {
		name := strings.TrimSpace(p.DisplayName)
		if name == "" {
			name = domain.FallbackDisplayName
		}
		out = append(out, Passenger{ID: p.ID, IsOwner: p.IsOwner, DisplayName: name, Email: p.Email})
	}
	return out
}

// DecodePassengers builds a roster as sent; ownership is validated later.
func DecodePassengers(in []Passenger) domain.Roster {
	ps := make([]domain.Passenger, 0, len(in))
	for _, p := range in {
		ps = append(ps, domain.Passenger{ID: p.ID, DisplayName: p.DisplayName, Email: p.Email, IsOwner: p.IsOwner})
	}
	return domain.NewRoster(ps...)
}

// DecodeCreate converts a create request into a draft.
func DecodeCreate(in CreateEventRequest, loc *time.Location) (domain.EventDraft, error) {
	d := domain.EventDraft{
		DestinationID: in.DestinationID,
		Details:       in.Details,
		TripType:      domain.TripType(in.TripType),
		Passengers:    DecodePassengers(in.Passengers),
	}
	var err error
	if d.OutboundAt, err = optionalDate(in.StartDate, loc); err != nil {
		return domain.EventDraft{}, err
	}
	if d.ReturnAt, err = optionalDate(in.ReturnDate, loc); err != nil {
		return domain.EventDraft{}, err
	}
	return d, nil
}

// EncodeCreate converts a draft into a create request. Excluded legs carry
// the sentinel.
func EncodeCreate(d domain.EventDraft) CreateEventRequest {
	return CreateEventRequest{
		DestinationID: d.DestinationID,
		Details:       d.Details,
		TripType:      string(d.TripType),
		StartDate:     domain.FormatDate(d.OutboundAt),
		ReturnDate:    domain.FormatDate(d.ReturnAt),
		Passengers:    EncodePassengers(d.Passengers),
	}
}

// DecodeUpdate converts an update request into a partial edit.
// A sentinel date is treated as "not provided".
func DecodeUpdate(in UpdateEventRequest, loc *time.Location) (domain.EventEdit, error) {
	edit := domain.EventEdit{
		DestinationID:       in.DestinationID,
		Details:             in.Details,
		TripType:            domain.TripType(in.TripType),
		ConfirmOwnerRemoval: in.ConfirmOwnerRemoval,
	}
	var err error
	if in.StartDate != nil {
		if edit.OutboundAt, err = optionalDate(*in.StartDate, loc); err != nil {
			return domain.EventEdit{}, err
		}
	}
	if in.ReturnDate != nil {
		if edit.ReturnAt, err = optionalDate(*in.ReturnDate, loc); err != nil {
			return domain.EventEdit{}, err
		}
	}
	if in.Passengers != nil {
		r := DecodePassengers(*in.Passengers)
		edit.Passengers = &r
	}
	return edit, nil
}

// EncodeUpdate converts a partial edit into an update request.
func EncodeUpdate(edit domain.EventEdit) UpdateEventRequest {
	out := UpdateEventRequest{
		DestinationID:       edit.DestinationID,
		Details:             edit.Details,
		TripType:            string(edit.TripType),
		ConfirmOwnerRemoval: edit.ConfirmOwnerRemoval,
	}
	if edit.OutboundAt != nil {
		s := domain.FormatDate(edit.OutboundAt)
		out.StartDate = &s
	}
	if edit.ReturnAt != nil {
		s := domain.FormatDate(edit.ReturnAt)
		out.ReturnDate = &s
	}
	if edit.Passengers != nil {
		ps := EncodePassengers(*edit.Passengers)
		out.Passengers = &ps
	}
	return out
}

func optionalDate(raw string, loc *time.Location) (*time.Time, error) {
	t, ok, err := decodeDate(raw, loc)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// DecodeAssignmentRequest reads the administrator's per-leg picks.
func DecodeAssignmentRequest(in TransportPayload) (domain.AssignmentRequest, error) {
	var req domain.AssignmentRequest
	out, err := legRequest(in.DriverStartID, in.VehicleStartID, in.VoucherStart)
	if err != nil {
		return req, err
	}
	ret, err := legRequest(in.DriverReturnID, in.VehicleReturnID, in.VoucherReturn)
	if err != nil {
		return req, err
	}
	req.Outbound, req.Return = out, ret
	return req, nil
}

func legRequest(driverID, vehicleID *int64, voucher *string) (*domain.LegRequest, error) {
	if driverID == nil && vehicleID == nil && voucher == nil {
		return nil, nil
	}
	lr := &domain.LegRequest{DriverID: driverID, VehicleID: vehicleID}
	if voucher != nil {
		v, err := ParseVoucher(*voucher)
		if err != nil {
			return nil, err
		}
		lr.Voucher = &v
	}
	return lr, nil
}

// EncodeAssignment renders the resolved payload. Legs that were skipped
// have no keys at all.
func EncodeAssignment(a domain.Assignment) TransportPayload {
	var out TransportPayload
	if a.Outbound != nil {
		out.DriverStartID, out.VehicleStartID = a.Outbound.DriverID, a.Outbound.VehicleID
	}
	if a.Return != nil {
		out.DriverReturnID, out.VehicleReturnID = a.Return.DriverID, a.Return.VehicleID
	}
	if a.OutboundVoucher != nil {
		s := string(*a.OutboundVoucher)
		out.VoucherStart = &s
	}
	if a.ReturnVoucher != nil {
		s := string(*a.ReturnVoucher)
		out.VoucherReturn = &s
	}
	return out
}

// Catalog encoders.

func EncodeDestination(d domain.Destination) Destination { return Destination{ID: d.ID, Name: d.Name} }

func EncodeDriver(d domain.Driver) Driver { return Driver{ID: d.ID, Name: d.Name, Phone: d.Phone} }

func EncodeVehicle(v domain.Vehicle) Vehicle { return Vehicle{ID: v.ID, Plate: v.Plate, Model: v.Model} }

func EncodeUser(u domain.User) User {
	return User{
		ID:          u.ID,
		DisplayName: u.DisplayName(),
		Nickname:    u.Nickname,
		SocialName:  u.SocialName,
		FullName:    u.FullName,
		Email:       u.Email,
	}
}

func DecodeDestination(d Destination) domain.Destination { return domain.Destination{ID: d.ID, Name: d.Name} }

func DecodeDriver(d Driver) domain.Driver { return domain.Driver{ID: d.ID, Name: d.Name, Phone: d.Phone} }

func DecodeVehicle(v Vehicle) domain.Vehicle { return domain.Vehicle{ID: v.ID, Plate: v.Plate, Model: v.Model} }

func DecodeUser(u User) domain.User {
	return domain.User{ID: u.ID, Nickname: u.Nickname, SocialName: u.SocialName, FullName: u.FullName, Email: u.Email}
}
