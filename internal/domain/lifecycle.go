package domain

import "fmt"

// CanTransitionTo reports whether s may move to target.
// Only Pending events change status; Approved, Denied and Canceled are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	if s != StatusPending {
		return false
	}
	switch target {
	case StatusApproved, StatusDenied, StatusCanceled:
		return true
	}
	return false
}

// CheckTransition decides whether v may move e to target.
// Approve and deny are administrator actions; cancel is open to the owner
// and to administrators.
func CheckTransition(e Event, v Viewer, target Status) error {
	switch target {
	case StatusApproved, StatusDenied:
		if !v.IsAdmin() {
			return fmt.Errorf("%w: only administrators may %s events", ErrForbidden, verb(target))
		}
	case StatusCanceled:
		if !v.IsAdmin() && !e.Passengers.IsOwner(v.ID) {
			return fmt.Errorf("%w: only the requester may cancel this event", ErrForbidden)
		}
	}
	if !e.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: cannot %s a %s event", ErrInvalidTransition, verb(target), e.Status)
	}
	return nil
}

// CheckEdit decides whether v may edit the destination, details, dates and
// roster of e. The owner may edit while Pending; administrators while
// Pending or Approved.
func CheckEdit(e Event, v Viewer) error {
	if v.IsAdmin() {
		if e.Status != StatusPending && e.Status != StatusApproved {
			return fmt.Errorf("%w: %s events cannot be edited", ErrInvalidTransition, e.Status)
		}
		return nil
	}
	if !e.Passengers.IsOwner(v.ID) {
		return fmt.Errorf("%w: only the requester may edit this event", ErrForbidden)
	}
	if e.Status != StatusPending {
		return fmt.Errorf("%w: %s events cannot be edited by the requester", ErrInvalidTransition, e.Status)
	}
	return nil
}

// CheckAssign decides whether v may set transport or vouchers on e.
func CheckAssign(e Event, v Viewer) error {
	if !v.IsAdmin() {
		return fmt.Errorf("%w: only administrators may assign transport", ErrForbidden)
	}
	if e.Status != StatusPending && e.Status != StatusApproved {
		return fmt.Errorf("%w: cannot assign transport to a %s event", ErrInvalidTransition, e.Status)
	}
	return nil
}

// Transition returns e moved to target. denial is kept only for StatusDenied.
func Transition(e Event, target Status, denial *Denial) Event {
	e.Status = target
	if target == StatusDenied {
		e.Denial = denial
	}
	return e
}

func verb(s Status) string {
	switch s {
	case StatusApproved:
		return "approve"
	case StatusDenied:
		return "deny"
	case StatusCanceled:
		return "cancel"
	}
	return "move"
}
