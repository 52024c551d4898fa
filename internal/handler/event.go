package handler

import (
	"context"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// ListEvents handles GET /events?page=N.
// Pages start at 1 and hold at most domain.FeedPageSize events; a page past
// the end returns {"events":[]}. There is no total.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	var page *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("page must be an integer"))
		return
	}
	p := 1
	if page != nil {
		p = *page
	}

	events, err := s.events.ListPage(r.Context(), p)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.EncodePage(events))
}

// CreateEvent handles POST /events.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	var body wire.CreateEventRequest
	if !decodeBody(w, r, &body) {
		return
	}
	draft, err := wire.DecodeCreate(body, s.loc)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	created, err := s.events.Create(r.Context(), v, draft)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wire.EncodeEvent(created))
}

// GetEvent handles GET /events/{id}.
func (s *Server) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	e, err := s.events.GetByID(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.EncodeEvent(e))
}

// UpdateEvent handles PUT /events/{id}. Omitted fields keep their value.
func (s *Server) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var body wire.UpdateEventRequest
	if !decodeBody(w, r, &body) {
		return
	}
	edit, err := wire.DecodeUpdate(body, s.loc)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	updated, err := s.events.Edit(r.Context(), v, id, edit)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.EncodeEvent(updated))
}

// CancelEvent handles POST /events/{id}/cancel.
func (s *Server) CancelEvent(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.events.Cancel)
}

// ApproveEvent handles POST /events/{id}/approve.
func (s *Server) ApproveEvent(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.events.Approve)
}

// DenyEvent handles POST /events/{id}/deny with {"reason": "..."}.
func (s *Server) DenyEvent(w http.ResponseWriter, r *http.Request) {
	var body wire.DenyRequest
	if !decodeBody(w, r, &body) {
		return
	}
	s.transition(w, r, func(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error) {
		return s.events.Deny(ctx, v, id, body.Reason)
	})
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, move func(context.Context, domain.Viewer, int64) (domain.Event, error)) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	e, err := move(r.Context(), v, id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.EncodeEvent(e))
}

// AssignTransport handles PUT /events/{id}/transport.
// Legs whose driver or vehicle did not resolve are listed under "skipped";
// they do not fail the request.
func (s *Server) AssignTransport(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var body wire.TransportPayload
	if !decodeBody(w, r, &body) {
		return
	}
	req, err := wire.DecodeAssignmentRequest(body)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	e, rep, err := s.events.AssignTransport(r.Context(), v, id, req)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	out := wire.TransportResult{Event: wire.EncodeEvent(e)}
	for _, skipped := range rep.Skipped {
		out.Skipped = append(out.Skipped, skipped.Error())
	}
	writeJSON(w, http.StatusOK, out)
}
