package feed

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// Watcher keeps a cached copy of the events the viewer relates to by rel and
// replaces it only when a refresh returns something different.
type Watcher struct {
	agg      *Aggregator
	viewerID int64
	rel      Relation
	log      *slog.Logger

	mu      sync.Mutex
	watched []domain.Event
	loaded  bool
}

// NewWatcher constructs a Watcher for viewerID over the events matching rel.
// A nil logger discards output.
func NewWatcher(agg *Aggregator, viewerID int64, rel Relation, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{agg: agg, viewerID: viewerID, rel: rel, log: log}
}

// Refresh refetches the feed and reports whether the watched set changed.
// The first successful refresh always counts as a change. On error the
// cache is left untouched.
func (w *Watcher) Refresh(ctx context.Context) (bool, error) {
	events, err := w.agg.FetchAll(ctx)
	if err != nil {
		return false, fmt.Errorf("feed.Watcher.Refresh: %w", err)
	}
	watched := FilterByRelation(events, w.viewerID, w.rel)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded && reflect.DeepEqual(watched, w.watched) {
		return false, nil
	}
	w.watched = watched
	w.loaded = true
	return true, nil
}

// Snapshot returns a copy of the cached events. Select accepts it in place
// of the full feed for any view whose Relation matches the watcher's.
func (w *Watcher) Snapshot() []domain.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.watched)
}

// Schedule refreshes on the cron spec (e.g. "@every 30s") until ctx is done
// or stop is called, and calls onUpdate with the new snapshot after every
// change. A tick that fires while the previous refresh is still running is
// skipped, so at most one fetch is ever in flight. The returned stop func
// waits for a running refresh to finish and is safe to call more than once.
func (w *Watcher) Schedule(ctx context.Context, spec string, onUpdate func([]domain.Event)) (func(), error) {
	logger := cron.PrintfLogger(slog.NewLogLogger(w.log.Handler(), slog.LevelWarn))
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	_, err := c.AddFunc(spec, func() {
		updated, err := w.Refresh(ctx)
		if err != nil {
			if ctx.Err() == nil {
				w.log.WarnContext(ctx, "feed refresh failed", "error", err)
			}
			return
		}
		if updated {
			onUpdate(w.Snapshot())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("feed.Watcher.Schedule: %w: %w", domain.ErrValidation, err)
	}

	c.Start()
	var once sync.Once
	done := make(chan struct{})
	stop := func() {
		once.Do(func() {
			close(done)
			<-c.Stop().Done()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return stop, nil
}
