package domain

import (
	"fmt"
	"slices"
	"strings"
)

// MaxPassengers bounds every roster, at creation and in later edits.
const MaxPassengers = 6

// FallbackDisplayName is used when a user has no name-like field set.
const FallbackDisplayName = "User"

// Passenger is one rider on an event.
// The single passenger with IsOwner set is the requester.
type Passenger struct {
	ID          int64
	DisplayName string
	Email       string
	IsOwner     bool
}

// NameFields carries the name-like fields a user record may have, in the
// order DisplayName consults them.
type NameFields struct {
	Nickname   string
	SocialName string
	FullName   string
}

// DisplayName returns the first non-blank of nickname, social name and full
// name, or FallbackDisplayName. It never returns an empty string.
func DisplayName(n NameFields) string {
	for _, v := range []string{n.Nickname, n.SocialName, n.FullName} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return FallbackDisplayName
}

// Roster is the ordered passenger list of an event.
// Mutating methods keep exactly one owner whenever the roster is non-empty.
// They copy before writing, so a Roster copied out of an Event never
// changes the Event behind the caller's back.
type Roster struct {
	passengers []Passenger
}

// NewRoster builds a roster from passengers as given. It does not repair
// ownership; call Validate before trusting input from outside the core.
func NewRoster(passengers ...Passenger) Roster {
	return Roster{passengers: append([]Passenger(nil), passengers...)}
}

// Passengers returns a copy of the roster in order.
func (r Roster) Passengers() []Passenger {
	return slices.Clone(r.passengers)
}

// Len returns the number of passengers.
func (r Roster) Len() int { return len(r.passengers) }

// Contains reports whether id is on the roster.
func (r Roster) Contains(id int64) bool {
	return r.index(id) >= 0
}

// Owner returns the owning passenger, if any.
func (r Roster) Owner() (Passenger, bool) {
	for _, p := range r.passengers {
		if p.IsOwner {
			return p, true
		}
	}
	return Passenger{}, false
}

// IsOwner reports whether id is the roster owner.
func (r Roster) IsOwner(id int64) bool {
	o, ok := r.Owner()
	return ok && o.ID == id
}

// Add appends p. The first passenger of an empty roster becomes the owner;
// later ones are added as plain riders regardless of p.IsOwner.
// Adding a passenger already present is a no-op.
func (r *Roster) Add(p Passenger) error {
	if r.Contains(p.ID) {
		return nil
	}
	if len(r.passengers) >= MaxPassengers {
		return fmt.Errorf("%w: at most %d passengers", ErrCapacity, MaxPassengers)
	}
	p.IsOwner = len(r.passengers) == 0
	r.passengers = append(slices.Clone(r.passengers), p)
	return nil
}

// Remove drops the passenger with id. Removing the owner requires
// confirmed=true; the first remaining passenger then becomes the owner.
// Removing an id that is not present is a no-op.
func (r *Roster) Remove(id int64, confirmed bool) error {
	i := r.index(id)
	if i < 0 {
		return nil
	}
	wasOwner := r.passengers[i].IsOwner
	if wasOwner && !confirmed {
		return ErrOwnerRemovalUnconfirmed
	}
	r.passengers = slices.Delete(slices.Clone(r.passengers), i, i+1)
	if wasOwner && len(r.passengers) > 0 {
		r.passengers[0].IsOwner = true
	}
	return nil
}

// MakeOwner makes id the only owner. No-op if id is not present.
func (r *Roster) MakeOwner(id int64) {
	if r.index(id) < 0 {
		return
	}
	r.passengers = slices.Clone(r.passengers)
	for i := range r.passengers {
		r.passengers[i].IsOwner = r.passengers[i].ID == id
	}
}

// Validate checks the roster invariants: non-empty, within capacity,
// exactly one owner, no duplicate ids.
func (r Roster) Validate() error {
	if len(r.passengers) == 0 {
		return fmt.Errorf("%w: passengers are required", ErrValidation)
	}
	if len(r.passengers) > MaxPassengers {
		return fmt.Errorf("%w: at most %d passengers", ErrCapacity, MaxPassengers)
	}
	owners := 0
	seen := make(map[int64]struct{}, len(r.passengers))
	for _, p := range r.passengers {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: passenger %d listed twice", ErrValidation, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.IsOwner {
			owners++
		}
	}
	if owners != 1 {
		return fmt.Errorf("%w: passengers must have exactly one owner, got %d", ErrValidation, owners)
	}
	return nil
}

// Reconcile turns current into next through Remove, Add and MakeOwner, so
// every roster edit obeys the same rules as the single-step operations.
// Passengers missing from next are removed first; dropping the current owner
// fails with ErrOwnerRemovalUnconfirmed unless confirmOwnerRemoval is set.
// Newcomers are then added in next's order and next's owner is made owner.
// next must already pass Validate.
func Reconcile(current, next Roster, confirmOwnerRemoval bool) (Roster, error) {
	out := current
	for _, p := range current.passengers {
		if next.Contains(p.ID) {
			continue
		}
		if err := out.Remove(p.ID, confirmOwnerRemoval); err != nil {
			return Roster{}, fmt.Errorf("%w: passenger %d owns the event", err, p.ID)
		}
	}
	for _, p := range next.passengers {
		if err := out.Add(p); err != nil {
			return Roster{}, err
		}
	}
	if o, ok := next.Owner(); ok {
		out.MakeOwner(o.ID)
	}
	return out, nil
}

// ResolvePassengers replaces every roster entry with the catalog record of
// the same id, keeping order and ownership. Names and e-mails sent by a
// client are never trusted. An id missing from users is ErrValidation.
func ResolvePassengers(r Roster, users []User) (Roster, error) {
	byID := make(map[int64]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]Passenger, 0, len(r.passengers))
	for _, p := range r.passengers {
		u, ok := byID[p.ID]
		if !ok {
			return Roster{}, fmt.Errorf("%w: passenger %d is not a registered user", ErrValidation, p.ID)
		}
		resolved := u.AsPassenger()
		resolved.IsOwner = p.IsOwner
		out = append(out, resolved)
	}
	return Roster{passengers: out}, nil
}

func (r Roster) index(id int64) int {
	return slices.IndexFunc(r.passengers, func(p Passenger) bool { return p.ID == id })
}
