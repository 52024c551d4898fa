package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the feed or catalogs.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a create or edit payload breaks a business
// rule (missing destination, missing leg date, return before outbound).
// It is always raised before any store call.
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrCapacity is returned when adding a passenger would exceed MaxPassengers.
var ErrCapacity = errors.New("roster capacity exceeded")

// ErrOwnerRemovalUnconfirmed is returned when the owner is removed from a
// roster without explicit confirmation.
var ErrOwnerRemovalUnconfirmed = errors.New("owner removal requires confirmation")

// ErrTransportUnresolved marks a leg whose driver and vehicle could not both
// be resolved. It is informational: the leg is left out of the submitted
// assignment and the rest of the request proceeds.
var ErrTransportUnresolved = errors.New("transport unresolved")

// ErrForbidden is returned when the viewer's role or relationship to the
// event does not allow the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned when a status change or an edit is not
// allowed from the event's current status.
// Handlers should map this to HTTP 409 Conflict.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUpstream wraps any failure of the event feed or a catalog call.
// Callers surface it as a retryable failure.
var ErrUpstream = errors.New("upstream error")
