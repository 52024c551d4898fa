package domain

import (
	"fmt"
	"strings"
	"time"
)

// CanonicalLayout is the single textual form every leg date is normalized to
// before it crosses the wire.
const CanonicalLayout = "2006-01-02T15:04:05"

// SentinelString is the wire form of a leg that was never requested.
// The feed requires both date fields on every event, so an absent leg is
// sent as this fixed value instead of null.
const SentinelString = "1900-01-01T00:00:00"

// SentinelDate is SentinelString as a time.Time.
var SentinelDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// dateLayouts lists every shape ParseDate accepts, most specific first.
// Go's "2" and "1" verbs accept one or two digits, so "1/3/2025 8:00" parses too.
var dateLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses raw in any accepted shape and returns its wall-clock time
// in loc. Offsets carried by raw are dropped: the wall clock is what the
// requester picked. Fractional seconds are truncated.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is empty", ErrValidation)
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrValidation, raw)
}

// NormalizeDate rewrites raw into CanonicalLayout. Missing seconds become ":00".
// The sentinel normalizes to itself.
func NormalizeDate(raw string) (string, error) {
	t, err := ParseDate(raw, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(CanonicalLayout), nil
}

// FormatDate renders t in CanonicalLayout, or SentinelString when t is nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return SentinelString
	}
	return t.Format(CanonicalLayout)
}

// IsSentinel reports whether t falls on the sentinel calendar date.
// Only year, month and day are compared.
func IsSentinel(t time.Time) bool {
	y, m, d := t.Date()
	return y == 1900 && m == time.January && d == 1
}

// CheckLegOrder requires outbound to be strictly earlier than ret.
// The check is skipped when either side is missing or is the sentinel,
// so single-leg events never trip it.
func CheckLegOrder(outbound, ret *time.Time) error {
	if outbound == nil || ret == nil || IsSentinel(*outbound) || IsSentinel(*ret) {
		return nil
	}
	if !outbound.Before(*ret) {
		return fmt.Errorf("%w: return date must be after outbound date", ErrValidation)
	}
	return nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar date in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
