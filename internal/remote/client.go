// Package remote is an HTTP client for the event reservation API.
// It satisfies repo.EventRepo and repo.CatalogRepo, so the service layer and
// the feed aggregator run unchanged against a remote server.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cgfarias/mobifacil-front-sub000/internal/auth"
	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8080".
	BaseURL string
	// Token is sent as a bearer token on every request.
	Token string
	// HTTPClient is used for all requests. If nil, a client with a 15s
	// timeout is used.
	HTTPClient *http.Client
	// Location is the zone leg dates are read in. If nil, UTC.
	Location *time.Location
	// Logger receives one debug line per request. If nil, output is discarded.
	Logger *slog.Logger
}

// Client talks to one API server on behalf of one viewer.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	loc     *time.Location
	log     *slog.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("remote.NewClient: BaseURL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("remote.NewClient: invalid BaseURL %q", cfg.BaseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    cfg.HTTPClient,
		loc:     cfg.Location,
		log:     cfg.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.log == nil {
		c.log = slog.New(slog.DiscardHandler)
	}
	return c, nil
}

// do sends one request and decodes a 2xx JSON response into out (when non-nil).
// Non-2xx responses are mapped onto domain sentinels by statusError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", domain.ErrUpstream, method, path, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "remote request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", reqID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", domain.ErrUpstream, method, path, err)
	}
	return nil
}

// statusError maps an API error response back onto the sentinel the server
// derived it from. Unknown or 5xx statuses are upstream failures.
func statusError(resp *http.Response) error {
	var body wire.ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := body.Error.Message
	if msg == "" {
		msg = resp.Status
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = auth.ErrUnauthenticated
	case http.StatusForbidden:
		sentinel = domain.ErrForbidden
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusConflict:
		sentinel = domain.ErrInvalidTransition
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		sentinel = domain.ErrValidation
	case http.StatusUnprocessableEntity:
		switch body.Error.Code {
		case "capacity_exceeded":
			sentinel = domain.ErrCapacity
		case "owner_removal_unconfirmed":
			sentinel = domain.ErrOwnerRemovalUnconfirmed
		default:
			sentinel = domain.ErrValidation
		}
	default:
		return fmt.Errorf("%w: server returned %s", domain.ErrUpstream, resp.Status)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func eventPath(id int64, suffix string) string {
	return "/events/" + strconv.FormatInt(id, 10) + suffix
}
