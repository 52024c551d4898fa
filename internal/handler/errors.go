package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cgfarias/mobifacil-front-sub000/internal/auth"
	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// errorMapping ties a sentinel to its HTTP status and machine code.
// Order matters: the first sentinel found in the chain wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{domain.ErrCapacity, http.StatusUnprocessableEntity, "capacity_exceeded"},
	{domain.ErrOwnerRemovalUnconfirmed, http.StatusUnprocessableEntity, "owner_removal_unconfirmed"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps err onto the API error body. Anything without a known
// sentinel is logged and reported as a 500 without leaking its text.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, errorBody(m.code, unwrapMessage(err, m.err)))
			return
		}
	}
	s.log.ErrorContext(r.Context(), "request failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
	)
	code := "internal_error"
	if errors.Is(err, domain.ErrUpstream) {
		code = "upstream_error"
	}
	writeJSON(w, http.StatusInternalServerError, errorBody(code, "internal server error"))
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) wire.ErrorResponse {
	return errorBody("bad_request", message)
}

func errorBody(code, message string) wire.ErrorResponse {
	return wire.ErrorResponse{Error: wire.ErrorDetail{Code: code, Message: message}}
}

// unwrapMessage extracts the human-readable part after the sentinel.
// e.g. "service.EventService.Create: validation error: destination is required"
// → "destination is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 && i+len(marker) < len(msg) {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

// decodeBody decodes the JSON request body into dst. Oversized bodies
// (cut off by the body size middleware) get 413, anything else malformed 400.
// It reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large"))
			return false
		}
		writeJSON(w, http.StatusBadRequest, requestBody("malformed JSON body"))
		return false
	}
	return true
}

// eventID parses the {id} path parameter.
func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid event id"))
		return 0, false
	}
	return id, true
}

// viewer returns the authenticated viewer. Routes behind the authenticator
// always have one; a missing viewer is a wiring bug and answers 401.
func viewer(w http.ResponseWriter, r *http.Request) (domain.Viewer, bool) {
	v, ok := auth.ViewerFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", "missing viewer"))
	}
	return v, ok
}
