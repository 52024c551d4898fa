package remote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// Create posts e as a new event. The server assigns id, code and created_at.
func (c *Client) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	body := wire.EncodeCreate(domain.EventDraft{
		DestinationID: e.Destination.ID,
		Details:       e.Details,
		TripType:      e.TripType(),
		OutboundAt:    legTime(e.Outbound),
		ReturnAt:      legTime(e.Return),
		Passengers:    e.Passengers,
	})
	var out wire.Event
	if err := c.do(ctx, http.MethodPost, "/events", body, &out); err != nil {
		return domain.Event{}, fmt.Errorf("remote.Client.Create: %w", err)
	}
	return c.decode("remote.Client.Create", out)
}

// GetByID fetches one event.
func (c *Client) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	var out wire.Event
	if err := c.do(ctx, http.MethodGet, eventPath(id, ""), nil, &out); err != nil {
		return domain.Event{}, fmt.Errorf("remote.Client.GetByID: %w", err)
	}
	return c.decode("remote.Client.GetByID", out)
}

// ListPage fetches one page of the feed. A page past the end is empty.
func (c *Client) ListPage(ctx context.Context, page int) ([]domain.Event, error) {
	var out wire.Page
	if err := c.do(ctx, http.MethodGet, "/events?page="+strconv.Itoa(page), nil, &out); err != nil {
		return nil, fmt.Errorf("remote.Client.ListPage: %w", err)
	}
	events, err := wire.DecodePage(out, c.loc)
	if err != nil {
		return nil, fmt.Errorf("remote.Client.ListPage: %w: %w", domain.ErrUpstream, err)
	}
	return events, nil
}

// Update replaces destination, details, legs and roster of e. e is the
// outcome of an edit the caller has already checked, owner removal
// included, so the removal is sent as confirmed.
func (c *Client) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	dest, details, roster := e.Destination.ID, e.Details, e.Passengers
	body := wire.EncodeUpdate(domain.EventEdit{
		DestinationID:       &dest,
		Details:             &details,
		TripType:            e.TripType(),
		OutboundAt:          legTime(e.Outbound),
		ReturnAt:            legTime(e.Return),
		Passengers:          &roster,
		ConfirmOwnerRemoval: true,
	})
	var out wire.Event
	if err := c.do(ctx, http.MethodPut, eventPath(e.ID, ""), body, &out); err != nil {
		return domain.Event{}, fmt.Errorf("remote.Client.Update: %w", err)
	}
	return c.decode("remote.Client.Update", out)
}

// UpdateStatus calls the transition endpoint matching status.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status domain.Status, denial *domain.Denial) error {
	var (
		path string
		body any
	)
	switch status {
	case domain.StatusCanceled:
		path = eventPath(id, "/cancel")
	case domain.StatusApproved:
		path = eventPath(id, "/approve")
	case domain.StatusDenied:
		path = eventPath(id, "/deny")
		req := wire.DenyRequest{}
		if denial != nil {
			req.Reason = denial.Reason
		}
		body = req
	default:
		return fmt.Errorf("remote.Client.UpdateStatus: %w: cannot move an event to %q", domain.ErrValidation, status)
	}
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("remote.Client.UpdateStatus: %w", err)
	}
	return nil
}

// AssignTransport submits an already-resolved assignment. Legs absent from a
// carry no keys, so the server leaves them untouched.
func (c *Client) AssignTransport(ctx context.Context, id int64, a domain.Assignment) error {
	var out wire.TransportResult
	if err := c.do(ctx, http.MethodPut, eventPath(id, "/transport"), wire.EncodeAssignment(a), &out); err != nil {
		return fmt.Errorf("remote.Client.AssignTransport: %w", err)
	}
	return nil
}

func (c *Client) decode(op string, in wire.Event) (domain.Event, error) {
	e, err := wire.DecodeEvent(in, c.loc)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w: %w", op, domain.ErrUpstream, err)
	}
	return e, nil
}

func legTime(l *domain.Leg) *time.Time {
	if l == nil {
		return nil
	}
	t := l.ScheduledAt
	return &t
}
