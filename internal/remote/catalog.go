package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// ListDestinations fetches the destination catalog.
func (c *Client) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	return list(ctx, c, "/destinations", wire.DecodeDestination)
}

// GetDestination looks id up in the destination catalog.
// The API has no single-destination endpoint.
func (c *Client) GetDestination(ctx context.Context, id int64) (domain.Destination, error) {
	all, err := c.ListDestinations(ctx)
	if err != nil {
		return domain.Destination{}, err
	}
	for _, d := range all {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Destination{}, fmt.Errorf("remote.Client.GetDestination: %w: destination %d", domain.ErrNotFound, id)
}

// ListDrivers fetches the driver catalog.
func (c *Client) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	return list(ctx, c, "/drivers", wire.DecodeDriver)
}

// ListVehicles fetches the vehicle catalog.
func (c *Client) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return list(ctx, c, "/vehicles", wire.DecodeVehicle)
}

// ListUsers fetches the user catalog.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return list(ctx, c, "/users", wire.DecodeUser)
}

func list[W, D any](ctx context.Context, c *Client, path string, decode func(W) D) ([]D, error) {
	var in []W
	if err := c.do(ctx, http.MethodGet, path, nil, &in); err != nil {
		return nil, fmt.Errorf("remote.Client GET %s: %w", path, err)
	}
	out := make([]D, 0, len(in))
	for _, w := range in {
		out = append(out, decode(w))
	}
	return out, nil
}
