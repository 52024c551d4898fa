// Package handler implements the HTTP handlers for the event reservation API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, event.go, catalog.go, export.go, prefs.go) but share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/prefs"
	"github.com/cgfarias/mobifacil-front-sub000/spec"
)

// EventServicer defines the business operations the event handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type EventServicer interface {
	Create(ctx context.Context, v domain.Viewer, d domain.EventDraft) (domain.Event, error)
	GetByID(ctx context.Context, id int64) (domain.Event, error)
	ListPage(ctx context.Context, page int) ([]domain.Event, error)
	Edit(ctx context.Context, v domain.Viewer, id int64, edit domain.EventEdit) (domain.Event, error)
	Cancel(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error)
	Approve(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error)
	Deny(ctx context.Context, v domain.Viewer, id int64, reason string) (domain.Event, error)
	AssignTransport(ctx context.Context, v domain.Viewer, id int64, req domain.AssignmentRequest) (domain.Event, domain.AssignmentReport, error)
}

// CatalogServicer defines the read-only catalog operations.
type CatalogServicer interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// ExportServicer defines the business operation the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context, v domain.Viewer) ([]domain.ExportRow, error)
}

// Server holds the dependencies of every endpoint.
type Server struct {
	events  EventServicer
	catalog CatalogServicer
	export  ExportServicer
	prefs   prefs.Store
	ready   func(context.Context) error
	log     *slog.Logger

	// loc is the zone request dates are read in. Dates are wall-clock values,
	// so UTC keeps them unshifted end to end.
	loc *time.Location
}

// NewServer constructs the Server with all its dependencies. A nil logger discards output.
func NewServer(events EventServicer, catalog CatalogServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{events: events, catalog: catalog, export: export, prefs: &prefs.MemoryStore{}, log: log, loc: time.UTC}
}

// WithPreferences replaces the in-memory preference store.
func (s *Server) WithPreferences(store prefs.Store) *Server {
	s.prefs = store
	return s
}

// WithReadiness makes /healthz report 503 while check fails, typically a
// database ping. Without it /healthz only proves the process is up.
func (s *Server) WithReadiness(check func(context.Context) error) *Server {
	s.ready = check
	return s
}

// Routes registers every endpoint. /healthz and /openapi.yaml are public;
// everything else runs behind authn, which must put the viewer in the
// request context.
func (s *Server) Routes(authn func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveSpec)

	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.ListEvents)
			r.Post("/", s.CreateEvent)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetEvent)
				r.Put("/", s.UpdateEvent)
				r.Post("/cancel", s.CancelEvent)
				r.Post("/approve", s.ApproveEvent)
				r.Post("/deny", s.DenyEvent)
				r.Put("/transport", s.AssignTransport)
			})
		})

		r.Get("/destinations", s.ListDestinations)
		r.Get("/drivers", s.ListDrivers)
		r.Get("/vehicles", s.ListVehicles)
		r.Get("/users", s.ListUsers)
		r.Get("/export", s.GetExport)
		r.Get("/me/preferences", s.GetPreferences)
		r.Put("/me/preferences", s.UpdatePreferences)
	})
	return r
}

func serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
