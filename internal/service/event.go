// Package service contains the business logic for the event reservation core.
// Services validate inputs, enforce lifecycle and authorization rules, and
// orchestrate repo calls. No SQL or HTTP lives here: services depend on repo
// interfaces, which the Postgres repos and the remote feed client both satisfy.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/repo"
)

// EventService implements the event lifecycle: create, edit, cancel,
// approve, deny and transport assignment.
type EventService struct {
	events  repo.EventRepo
	catalog repo.CatalogRepo
	log     *slog.Logger
	newCode func() string
}

// NewEventService constructs an EventService. A nil logger discards output.
func NewEventService(events repo.EventRepo, catalog repo.CatalogRepo, log *slog.Logger) *EventService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &EventService{events: events, catalog: catalog, log: log, newCode: NewEventCode}
}

// NewEventCode returns a human-facing event code: "EV-" and eight
// uppercase hex digits.
func NewEventCode() string {
	return "EV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Create validates the draft and stores a new Pending event.
// Requesters must own the roster they submit; administrators may create
// on anyone's behalf.
func (s *EventService) Create(ctx context.Context, v domain.Viewer, d domain.EventDraft) (domain.Event, error) {
	e, err := d.Build()
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	if !v.IsAdmin() && !e.Passengers.IsOwner(v.ID) {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w: the requester must own the roster", domain.ErrValidation)
	}
	dest, err := s.destination(ctx, e.Destination.ID)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	e.Destination = dest
	if e.Passengers, err = s.passengers(ctx, e.Passengers); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Create: %w", err)
	}
	e.Code = s.newCode()

	created, err := s.events.Create(ctx, e)
	if err != nil {
		return domain.Event{}, upstream("service.EventService.Create", err)
	}
	s.log.InfoContext(ctx, "event created", "event_id", created.ID, "code", created.Code, "viewer_id", v.ID)
	return created, nil
}

// GetByID returns a single event.
func (s *EventService) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, upstream("service.EventService.GetByID", err)
	}
	return e, nil
}

// ListPage returns one page of the raw feed.
func (s *EventService) ListPage(ctx context.Context, page int) ([]domain.Event, error) {
	if page < 1 {
		return nil, fmt.Errorf("service.EventService.ListPage: %w: page must be at least 1", domain.ErrValidation)
	}
	events, err := s.events.ListPage(ctx, page)
	if err != nil {
		return nil, upstream("service.EventService.ListPage", err)
	}
	return events, nil
}

// Edit applies a partial edit to destination, details, dates or roster.
// The result is validated by the same rules as creation before anything
// is sent to the store. Roster changes go through domain.Reconcile, so
// dropping the owner needs edit.ConfirmOwnerRemoval.
func (s *EventService) Edit(ctx context.Context, v domain.Viewer, id int64, edit domain.EventEdit) (domain.Event, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Edit: %w", err)
	}
	if err := domain.CheckEdit(current, v); err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Edit: %w", err)
	}
	next, err := domain.ApplyEdit(current, edit)
	if err != nil {
		return domain.Event{}, fmt.Errorf("service.EventService.Edit: %w", err)
	}
	if next.Destination.ID != current.Destination.ID {
		dest, err := s.destination(ctx, next.Destination.ID)
		if err != nil {
			return domain.Event{}, fmt.Errorf("service.EventService.Edit: %w", err)
		}
		next.Destination = dest
	}
	if edit.Passengers != nil {
		if next.Passengers, err = s.passengers(ctx, next.Passengers); err != nil {
			return domain.Event{}, fmt.Errorf("service.EventService.Edit: %w", err)
		}
	}

	updated, err := s.events.Update(ctx, next)
	if err != nil {
		return domain.Event{}, upstream("service.EventService.Edit", err)
	}
	return updated, nil
}

// Cancel moves a Pending event to Canceled. Open to the owner and to administrators.
func (s *EventService) Cancel(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error) {
	return s.transition(ctx, "service.EventService.Cancel", v, id, domain.StatusCanceled, nil)
}

// Approve moves a Pending event to Approved. Administrators only.
func (s *EventService) Approve(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error) {
	return s.transition(ctx, "service.EventService.Approve", v, id, domain.StatusApproved, nil)
}

// Deny moves a Pending event to Denied, recording who denied it and why.
// Administrators only; the reason is required.
func (s *EventService) Deny(ctx context.Context, v domain.Viewer, id int64, reason string) (domain.Event, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Event{}, fmt.Errorf("service.EventService.Deny: %w: reason is required", domain.ErrValidation)
	}
	name := strings.TrimSpace(v.Name)
	if name == "" {
		name = domain.FallbackDisplayName
	}
	return s.transition(ctx, "service.EventService.Deny", v, id, domain.StatusDenied, &domain.Denial{DeniedByName: name, Reason: reason})
}

func (s *EventService) transition(ctx context.Context, op string, v domain.Viewer, id int64, target domain.Status, denial *domain.Denial) (domain.Event, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := domain.CheckTransition(current, v, target); err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.events.UpdateStatus(ctx, id, target, denial); err != nil {
		return domain.Event{}, upstream(op, err)
	}
	s.log.InfoContext(ctx, "event status changed", "event_id", id, "from", current.Status, "to", target, "viewer_id", v.ID)

	// Re-read so the caller sees what the store holds, not what we asked for.
	fresh, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	return fresh, nil
}

// AssignTransport resolves req against the current fleet and writes the
// legs that resolved. Unresolved legs come back in the report's Skipped
// list; they do not fail the call. When nothing resolved the store is not
// touched.
func (s *EventService) AssignTransport(ctx context.Context, v domain.Viewer, id int64, req domain.AssignmentRequest) (domain.Event, domain.AssignmentReport, error) {
	const op = "service.EventService.AssignTransport"

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, domain.AssignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := domain.CheckAssign(current, v); err != nil {
		return domain.Event{}, domain.AssignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	fleet, err := s.fleet(ctx)
	if err != nil {
		return domain.Event{}, domain.AssignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	rep, err := domain.ResolveAssignment(current, req, fleet)
	if err != nil {
		return domain.Event{}, domain.AssignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, skipped := range rep.Skipped {
		s.log.InfoContext(ctx, "transport leg skipped", "event_id", id, "reason", skipped.Error())
	}
	if rep.Assignment.Empty() {
		return current, rep, nil
	}

	if err := s.events.AssignTransport(ctx, id, rep.Assignment); err != nil {
		return domain.Event{}, domain.AssignmentReport{}, upstream(op, err)
	}
	fresh, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Event{}, domain.AssignmentReport{}, fmt.Errorf("%s: %w", op, err)
	}
	return fresh, rep, nil
}

// destination resolves id against the catalog. An unknown destination is a
// validation error on the payload, not a missing resource.
func (s *EventService) destination(ctx context.Context, id int64) (domain.Destination, error) {
	d, err := s.catalog.GetDestination(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Destination{}, fmt.Errorf("%w: destination %d does not exist", domain.ErrValidation, id)
	}
	if err != nil {
		return domain.Destination{}, upstream("destination", err)
	}
	return d, nil
}

// passengers resolves r against the user catalog.
func (s *EventService) passengers(ctx context.Context, r domain.Roster) (domain.Roster, error) {
	users, err := s.catalog.ListUsers(ctx)
	if err != nil {
		return domain.Roster{}, upstream("users", err)
	}
	return domain.ResolvePassengers(r, users)
}

func (s *EventService) fleet(ctx context.Context) (domain.Fleet, error) {
	drivers, err := s.catalog.ListDrivers(ctx)
	if err != nil {
		return domain.Fleet{}, upstream("drivers", err)
	}
	vehicles, err := s.catalog.ListVehicles(ctx)
	if err != nil {
		return domain.Fleet{}, upstream("vehicles", err)
	}
	return domain.Fleet{Drivers: drivers, Vehicles: vehicles}, nil
}

// upstream wraps a store failure. Errors that already carry a domain
// sentinel or a context error pass through; anything else becomes
// domain.ErrUpstream with the cause still reachable via errors.Is.
func upstream(op string, err error) error {
	for _, known := range []error{
		domain.ErrNotFound, domain.ErrValidation, domain.ErrCapacity, domain.ErrForbidden,
		domain.ErrInvalidTransition, domain.ErrOwnerRemovalUnconfirmed, domain.ErrUpstream,
		context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, known) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
}
