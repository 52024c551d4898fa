package feed

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// Relation is how the viewer relates to an event.
type Relation int

const (
	// RelationOwned keeps events whose roster owner is the viewer.
	RelationOwned Relation = iota
	// RelationShared keeps events where the viewer rides but does not own.
	RelationShared
	// RelationAll keeps everything.
	RelationAll
)

// FilterByRelation returns the events matching rel for viewerID, in input order.
func FilterByRelation(events []domain.Event, viewerID int64, rel Relation) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		switch rel {
		case RelationOwned:
			if !e.Passengers.IsOwner(viewerID) {
				continue
			}
		case RelationShared:
			if !e.Passengers.Contains(viewerID) || e.Passengers.IsOwner(viewerID) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// Buckets is the temporal partition of a set of events.
// Today and Tomorrow are disjoint; History and Future are disjoint and
// together hold every event with a resolvable date. Undated holds the rest.
type Buckets struct {
	Today    []domain.Event
	Tomorrow []domain.Event
	Future   []domain.Event
	History  []domain.Event
	Undated  []domain.Event
}

// Partition buckets events by their relevant date against local midnight of
// now. Today and Tomorrow use calendar-date equality; History is strictly
// before midnight today and Future is everything else.
// Event dates are wall-clock values and are read in now's location as-is.
func Partition(events []domain.Event, now time.Time) Buckets {
	var b Buckets
	midnight := domain.StartOfDay(now)
	tomorrow := midnight.AddDate(0, 0, 1)
	for _, e := range events {
		d, ok := wallDate(e, now.Location())
		if !ok {
			b.Undated = append(b.Undated, e)
			continue
		}
		switch {
		case domain.SameDay(midnight, d):
			b.Today = append(b.Today, e)
		case domain.SameDay(tomorrow, d):
			b.Tomorrow = append(b.Tomorrow, e)
		}
		if d.Before(midnight) {
			b.History = append(b.History, e)
		} else {
			b.Future = append(b.Future, e)
		}
	}
	return b
}

// wallDate returns the event's relevant date re-anchored in loc without
// shifting its wall clock.
func wallDate(e domain.Event, loc *time.Location) (time.Time, bool) {
	d, ok := e.RelevantDate()
	if !ok {
		return time.Time{}, false
	}
	return time.Date(d.Year(), d.Month(), d.Day(), d.Hour(), d.Minute(), d.Second(), 0, loc), true
}

// SortAscending orders events soonest first. Undated events go last and
// ties break on id so the order is deterministic.
func SortAscending(events []domain.Event) {
	slices.SortStableFunc(events, func(a, b domain.Event) int { return compareDates(a, b) })
}

// SortDescending orders events most recent first. Undated events go last.
func SortDescending(events []domain.Event) {
	slices.SortStableFunc(events, func(a, b domain.Event) int {
		_, aok := a.RelevantDate()
		_, bok := b.RelevantDate()
		if aok != bok {
			return compareDates(a, b)
		}
		return compareDates(b, a)
	})
}

func compareDates(a, b domain.Event) int {
	ad, aok := a.RelevantDate()
	bd, bok := b.RelevantDate()
	switch {
	case aok && !bok:
		return -1
	case !aok && bok:
		return 1
	}
	if c := ad.Compare(bd); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// View names one listing screen.
type View string

const (
	ViewToday   View = "today"
	ViewFuture  View = "future"
	ViewHistory View = "history"
	ViewShared  View = "shared"
	ViewAll     View = "all"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewToday, ViewFuture, ViewHistory, ViewShared, ViewAll:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown view %q", domain.ErrValidation, s)
}

// Relation returns the viewer relation view draws its events from.
func (v View) Relation() Relation {
	switch v {
	case ViewShared:
		return RelationShared
	case ViewAll:
		return RelationAll
	}
	return RelationOwned
}

// Authorize reports whether viewer may open view. ViewAll is restricted to
// administrators.
func Authorize(viewer domain.Viewer, view View) error {
	if view == ViewAll && !viewer.IsAdmin() {
		return fmt.Errorf("%w: the all-events view is for administrators", domain.ErrForbidden)
	}
	return nil
}

// Select applies the viewer filter, partition and sort of view to events.
//
//	today   owned, today then tomorrow, each soonest first
//	future  owned, from today on, soonest first
//	history owned, before today, most recent first
//	shared  shared with the viewer, from today on, soonest first
//	all     every event, most recent first
func Select(events []domain.Event, viewerID int64, view View, now time.Time) ([]domain.Event, error) {
	switch view {
	case ViewToday:
		b := Partition(FilterByRelation(events, viewerID, RelationOwned), now)
		SortAscending(b.Today)
		SortAscending(b.Tomorrow)
		return append(nonNil(b.Today), b.Tomorrow...), nil
	case ViewFuture:
		b := Partition(FilterByRelation(events, viewerID, RelationOwned), now)
		SortAscending(b.Future)
		return nonNil(b.Future), nil
	case ViewHistory:
		b := Partition(FilterByRelation(events, viewerID, RelationOwned), now)
		SortDescending(b.History)
		return nonNil(b.History), nil
	case ViewShared:
		b := Partition(FilterByRelation(events, viewerID, RelationShared), now)
		SortAscending(b.Future)
		return nonNil(b.Future), nil
	case ViewAll:
		out := FilterByRelation(events, viewerID, RelationAll)
		SortDescending(out)
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown view %q", domain.ErrValidation, view)
}

func nonNil(events []domain.Event) []domain.Event {
	if events == nil {
		return []domain.Event{}
	}
	return events
}
