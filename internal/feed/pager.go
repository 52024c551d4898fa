package feed

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// DefaultPageSize is the number of rows a Pager reveals per step.
const DefaultPageSize = 10

// Pager reveals a filtered listing a fixed number of rows at a time.
// It never refetches: all rows are already in memory.
type Pager struct {
	items []domain.Event
	size  int
	shown int
}

// NewPager starts a pager over items showing nothing yet. A size below 1
// falls back to DefaultPageSize.
func NewPager(items []domain.Event, size int) *Pager {
	if size < 1 {
		size = DefaultPageSize
	}
	return &Pager{items: items, size: size}
}

// Next reveals the next slice and returns everything visible so far.
func (p *Pager) Next() []domain.Event {
	p.shown = min(p.shown+p.size, len(p.items))
	return p.Visible()
}

// Visible returns the rows revealed so far.
func (p *Pager) Visible() []domain.Event {
	return p.items[:p.shown]
}

// HasMore reports whether another call to Next would reveal more rows.
func (p *Pager) HasMore() bool {
	return p.shown < len(p.items)
}

// Search keeps the events whose destination name, code or status label
// contains term. Matching ignores case and accents; a blank term keeps all.
func Search(events []domain.Event, term string) []domain.Event {
	needle := fold(strings.TrimSpace(term))
	if needle == "" {
		return events
	}
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if strings.Contains(fold(e.Destination.Name), needle) ||
			strings.Contains(fold(e.Code), needle) ||
			strings.Contains(fold(e.Status.Label()), needle) {
			out = append(out, e)
		}
	}
	return out
}

// fold strips diacritics and case-folds s.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
