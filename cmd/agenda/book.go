package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cgfarias/mobifacil-front-sub000/internal/prefs"
	"github.com/cgfarias/mobifacil-front-sub000/internal/remote"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

const firstRunNotice = `Reservations are listed from the shared fleet feed. Events you requested
appear under today, future and history; events you ride on appear under shared.
Pending requests can still be edited or canceled.`

// preferenceBook is where the CLI keeps the viewer's notice flag and last view.
type preferenceBook interface {
	noticeSeen(ctx context.Context) (bool, error)
	markNoticeSeen(ctx context.Context) error
	lastView(ctx context.Context) (string, error)
	setLastView(ctx context.Context, view string) error
}

// storeBook keeps preferences in a prefs.Store, keyed by viewer.
type storeBook struct {
	store    prefs.Store
	viewerID int64
}

func (b storeBook) noticeSeen(ctx context.Context) (bool, error) {
	return prefs.NoticeSeen(ctx, b.store, b.viewerID)
}

func (b storeBook) markNoticeSeen(ctx context.Context) error {
	return prefs.MarkNoticeSeen(ctx, b.store, b.viewerID)
}

func (b storeBook) lastView(ctx context.Context) (string, error) {
	return prefs.LastView(ctx, b.store, b.viewerID)
}

func (b storeBook) setLastView(ctx context.Context, view string) error {
	return prefs.SetLastView(ctx, b.store, b.viewerID, view)
}

// serverBook keeps preferences on the API server.
type serverBook struct {
	client *remote.Client
}

func (b serverBook) noticeSeen(ctx context.Context) (bool, error) {
	p, err := b.client.Preferences(ctx)
	return p.NoticeSeen, err
}

func (b serverBook) markNoticeSeen(ctx context.Context) error {
	seen := true
	_, err := b.client.UpdatePreferences(ctx, wire.PreferencesUpdate{NoticeSeen: &seen})
	return err
}

func (b serverBook) lastView(ctx context.Context) (string, error) {
	p, err := b.client.Preferences(ctx)
	return p.LastView, err
}

func (b serverBook) setLastView(ctx context.Context, view string) error {
	_, err := b.client.UpdatePreferences(ctx, wire.PreferencesUpdate{LastView: &view})
	return err
}

// openBook uses Redis when redisURL is set and the server otherwise.
func openBook(ctx context.Context, redisURL string, client *remote.Client, viewerID int64) (preferenceBook, func(), error) {
	if redisURL == "" {
		return serverBook{client: client}, func() {}, nil
	}
	rs, err := prefs.NewRedisStore(ctx, redisURL, "agenda:")
	if err != nil {
		return nil, nil, fmt.Errorf("--redis-url: %w", err)
	}
	return storeBook{store: rs, viewerID: viewerID}, func() { _ = rs.Close() }, nil
}

// showNoticeOnce prints the first-run notice if this viewer has not seen it.
// A failing store only costs a repeated notice.
func showNoticeOnce(ctx context.Context, book preferenceBook, out io.Writer, log *slog.Logger) error {
	seen, err := book.noticeSeen(ctx)
	if err != nil {
		log.WarnContext(ctx, "could not read notice flag", "error", err)
	}
	if seen {
		return nil
	}
	fmt.Fprintln(out, firstRunNotice)
	fmt.Fprintln(out)
	if err := book.markNoticeSeen(ctx); err != nil {
		log.WarnContext(ctx, "could not save notice flag", "error", err)
	}
	return nil
}
