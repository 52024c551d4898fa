package handler

import (
	"context"
	"net/http"

	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

// ListDestinations handles GET /destinations.
func (s *Server) ListDestinations(w http.ResponseWriter, r *http.Request) {
	listCatalog(s, w, r, s.catalog.ListDestinations, wire.EncodeDestination)
}

// ListDrivers handles GET /drivers.
func (s *Server) ListDrivers(w http.ResponseWriter, r *http.Request) {
	listCatalog(s, w, r, s.catalog.ListDrivers, wire.EncodeDriver)
}

// ListVehicles handles GET /vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	listCatalog(s, w, r, s.catalog.ListVehicles, wire.EncodeVehicle)
}

// ListUsers handles GET /users. Every entry carries a non-empty display_name.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	listCatalog(s, w, r, s.catalog.ListUsers, wire.EncodeUser)
}

// listCatalog writes every item of list as a JSON array.
func listCatalog[D any, W any](s *Server, w http.ResponseWriter, r *http.Request, list func(context.Context) ([]D, error), encode func(D) W) {
	items, err := list(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	out := make([]W, 0, len(items))
	for _, it := range items {
		out = append(out, encode(it))
	}
	writeJSON(w, http.StatusOK, out)
}
