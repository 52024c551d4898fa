// Package feed aggregates the paginated event feed into the per-view
// listings a viewer sees: today/tomorrow, future, history, shared and all.
//
// The upstream feed caps every page and exposes no total, so the aggregator
// always reads it end to end, then filters, partitions and sorts locally.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// PageReader reads one page of the event feed. Page numbers start at 1 and
// an empty page marks the end. Both repo.EventRepo and the remote client
// satisfy it.
type PageReader interface {
	ListPage(ctx context.Context, page int) ([]domain.Event, error)
}

// Aggregator reads the whole feed and serves view slices from it.
type Aggregator struct {
	pages PageReader
	log   *slog.Logger
}

// NewAggregator constructs an Aggregator over pages. A nil logger discards output.
func NewAggregator(pages PageReader, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{pages: pages, log: log}
}

// FetchAll requests pages 1, 2, 3, … one at a time and stops on the first
// empty page. Pages are concatenated in page order. Each request depends on
// the previous page being non-empty, so the loop is never parallelized.
//
// If ctx is done by the time a page arrives, the partial result is dropped
// and ctx.Err() is returned: callers that lost interest never act on it.
func (a *Aggregator) FetchAll(ctx context.Context) ([]domain.Event, error) {
	all := []domain.Event{}
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events, err := a.pages.ListPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("feed.Aggregator.FetchAll: page %d: %w", page, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(events) == 0 {
			a.log.DebugContext(ctx, "feed fetched", "pages", page, "events", len(all))
			return all, nil
		}
		all = append(all, events...)
	}
}

// Load fetches the full feed and returns the listing for view as seen by
// viewer at now. ViewAll is restricted to administrators.
func (a *Aggregator) Load(ctx context.Context, viewer domain.Viewer, view View, now time.Time) ([]domain.Event, error) {
	if err := Authorize(viewer, view); err != nil {
		return nil, fmt.Errorf("feed.Aggregator.Load: %w", err)
	}
	events, err := a.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return Select(events, viewer.ID, view, now)
}
