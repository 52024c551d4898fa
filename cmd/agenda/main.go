// Command agenda lists a viewer's reservations from the event API.
//
//	agenda --token $TOKEN --view future --search hospital
//	agenda --token $TOKEN --watch "@every 30s"
//	agenda --token $TOKEN --deny 42 --reason "no vehicle available"
//
// Listings are built locally from the full feed: the API pages are read end
// to end, filtered to the viewer, partitioned by date and sorted.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/cgfarias/mobifacil-front-sub000/internal/auth"
	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/feed"
	"github.com/cgfarias/mobifacil-front-sub000/internal/remote"
	"github.com/cgfarias/mobifacil-front-sub000/internal/service"
)

type options struct {
	apiURL   string
	token    string
	view     string
	search   string
	pageSize int
	more     int
	watch    string
	redisURL string
	tz       string
	logLevel string

	cancel  int64
	approve int64
	deny    int64
	reason  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "agenda:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := pflag.NewFlagSet("agenda", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.apiURL, "api-url", envOr("AGENDA_API_URL", "http://localhost:8080"), "event API base URL")
	fs.StringVar(&o.token, "token", os.Getenv("AGENDA_TOKEN"), "bearer token")
	fs.StringVarP(&o.view, "view", "v", "", "today, future, history, shared or all (default: last used, else today)")
	fs.StringVarP(&o.search, "search", "s", "", "filter by destination, code or status")
	fs.IntVar(&o.pageSize, "page-size", feed.DefaultPageSize, "rows revealed per page")
	fs.IntVar(&o.more, "more", 0, "reveal this many extra pages")
	fs.StringVarP(&o.watch, "watch", "w", "", `refresh on a cron schedule, e.g. "@every 30s"`)
	fs.StringVar(&o.redisURL, "redis-url", os.Getenv("REDIS_URL"), "keep preferences in Redis instead of on the server")
	fs.StringVar(&o.tz, "tz", "Local", "time zone that decides today and tomorrow")
	fs.StringVar(&o.logLevel, "log-level", "warn", "debug, info, warn or error")
	fs.Int64Var(&o.cancel, "cancel", 0, "cancel the event with this id")
	fs.Int64Var(&o.approve, "approve", 0, "approve the event with this id")
	fs.Int64Var(&o.deny, "deny", 0, "deny the event with this id (needs --reason)")
	fs.StringVar(&o.reason, "reason", "", "denial reason")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.token == "" {
		return options{}, errors.New("--token or AGENDA_TOKEN is required")
	}
	if o.more < 0 {
		return options{}, errors.New("--more must not be negative")
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	loc, err := time.LoadLocation(o.tz)
	if err != nil {
		return fmt.Errorf("--tz: %w", err)
	}

	// The server verifies the token; the CLI only needs to know who it is.
	viewer, err := auth.DecodeUnverified(o.token)
	if err != nil {
		return err
	}

	client, err := remote.NewClient(remote.Config{BaseURL: o.apiURL, Token: o.token, Location: loc, Logger: logger})
	if err != nil {
		return err
	}

	book, closeBook, err := openBook(ctx, o.redisURL, client, viewer.ID)
	if err != nil {
		return err
	}
	defer closeBook()

	if err := showNoticeOnce(ctx, book, stderr, logger); err != nil {
		return err
	}

	if o.cancel != 0 || o.approve != 0 || o.deny != 0 {
		svc := service.NewEventService(client, client, logger)
		return act(ctx, svc, viewer, o, stdout)
	}

	view, err := resolveView(ctx, book, o.view, logger)
	if err != nil {
		return err
	}

	agg := feed.NewAggregator(client, logger)
	now := func() time.Time { return time.Now().In(loc) }
	show := func(listing []domain.Event) error {
		p := feed.NewPager(feed.Search(listing, o.search), o.pageSize)
		p.Next()
		for range o.more {
			p.Next()
		}
		return render(stdout, view, p)
	}

	var (
		w       *feed.Watcher
		listing []domain.Event
	)
	if o.watch == "" {
		listing, err = agg.Load(ctx, viewer, view, now())
	} else {
		w = feed.NewWatcher(agg, viewer.ID, view.Relation(), logger)
		listing, err = seed(ctx, w, viewer, view, now())
	}
	if err != nil {
		return err
	}
	if err := show(listing); err != nil {
		return err
	}
	if err := book.setLastView(ctx, string(view)); err != nil {
		logger.WarnContext(ctx, "could not save last view", "error", err)
	}

	if w == nil {
		return nil
	}
	return watch(ctx, w, viewer, view, o.watch, now, logger, stdout, show)
}

// seed fills the watcher's cache and returns the first listing from it, so
// the first tick only reports real changes.
func seed(ctx context.Context, w *feed.Watcher, viewer domain.Viewer, view feed.View, now time.Time) ([]domain.Event, error) {
	if err := feed.Authorize(viewer, view); err != nil {
		return nil, err
	}
	if _, err := w.Refresh(ctx); err != nil {
		return nil, err
	}
	return feed.Select(w.Snapshot(), viewer.ID, view, now)
}

// watch redraws view from each changed snapshot until ctx is done.
func watch(ctx context.Context, w *feed.Watcher, viewer domain.Viewer, view feed.View, spec string, now func() time.Time, log *slog.Logger, stdout io.Writer, show func([]domain.Event) error) error {
	stop, err := w.Schedule(ctx, spec, func(events []domain.Event) {
		fmt.Fprintf(stdout, "\n-- updated %s --\n", now().Format("15:04:05"))
		listing, err := feed.Select(events, viewer.ID, view, now())
		if err == nil {
			err = show(listing)
		}
		if err != nil && ctx.Err() == nil {
			log.WarnContext(ctx, "redraw failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	stop()
	return nil
}

// act runs one lifecycle operation and prints the resulting event.
func act(ctx context.Context, svc *service.EventService, v domain.Viewer, o options, stdout io.Writer) error {
	var (
		e   domain.Event
		err error
	)
	switch {
	case o.cancel != 0:
		e, err = svc.Cancel(ctx, v, o.cancel)
	case o.approve != 0:
		e, err = svc.Approve(ctx, v, o.approve)
	default:
		e, err = svc.Deny(ctx, v, o.deny, o.reason)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s is now %s\n", e.Code, e.Status.Label())
	return nil
}

func resolveView(ctx context.Context, book preferenceBook, flag string, log *slog.Logger) (feed.View, error) {
	if flag != "" {
		return feed.ParseView(flag)
	}
	last, err := book.lastView(ctx)
	if err != nil {
		log.WarnContext(ctx, "could not read last view", "error", err)
	}
	if v, err := feed.ParseView(last); err == nil {
		return v, nil
	}
	return feed.ViewToday, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
