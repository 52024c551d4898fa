package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// Preferences fetches the viewer's stored preferences.
func (c *Client) Preferences(ctx context.Context) (wire.Preferences, error) {
	var out wire.Preferences
	if err := c.do(ctx, http.MethodGet, "/me/preferences", nil, &out); err != nil {
		return wire.Preferences{}, fmt.Errorf("remote.Client.Preferences: %w", err)
	}
	return out, nil
}

// UpdatePreferences sends the fields set in up and returns the result.
func (c *Client) UpdatePreferences(ctx context.Context, up wire.PreferencesUpdate) (wire.Preferences, error) {
	var out wire.Preferences
	if err := c.do(ctx, http.MethodPut, "/me/preferences", up, &out); err != nil {
		return wire.Preferences{}, fmt.Errorf("remote.Client.UpdatePreferences: %w", err)
	}
	return out, nil
}
