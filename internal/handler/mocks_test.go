package handler_test

import (
	"context"
	"net/http"
	"time"

	"github.com/cgfarias/mobifacil-front-sub000/internal/auth"
	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/handler"
)

// mockEventServicer is a hand-written test double for handler.EventServicer.
// Each method is a function field; set only the ones your test needs.
type mockEventServicer struct {
	create          func(ctx context.Context, v domain.Viewer, d domain.EventDraft) (domain.Event, error)
	getByID         func(ctx context.Context, id int64) (domain.Event, error)
	listPage        func(ctx context.Context, page int) ([]domain.Event, error)
	edit            func(ctx context.Context, v domain.Viewer, id int64, edit domain.EventEdit) (domain.Event, error)
	cancel          func(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error)
	approve         func(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error)
	deny            func(ctx context.Context, v domain.Viewer, id int64, reason string) (domain.Event, error)
	assignTransport func(ctx context.Context, v domain.Viewer, id int64, req domain.AssignmentRequest) (domain.Event, domain.AssignmentReport, error)
}

func (m *mockEventServicer) Create(ctx context.Context, v domain.Viewer, d domain.EventDraft) (domain.Event, error) {
	return m.create(ctx, v, d)
}
func (m *mockEventServicer) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	return m.getByID(ctx, id)
}
func (m *mockEventServicer) ListPage(ctx context.Context, page int) ([]domain.Event, error) {
	return m.listPage(ctx, page)
}
func (m *mockEventServicer) Edit(ctx context.Context, v domain.Viewer, id int64, edit domain.EventEdit) (domain.Event, error) {
	return m.edit(ctx, v, id, edit)
}
func (m *mockEventServicer) Cancel(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error) {
	return m.cancel(ctx, v, id)
}
func (m *mockEventServicer) Approve(ctx context.Context, v domain.Viewer, id int64) (domain.Event, error) {
	return m.approve(ctx, v, id)
}
func (m *mockEventServicer) Deny(ctx context.Context, v domain.Viewer, id int64, reason string) (domain.Event, error) {
	return m.deny(ctx, v, id, reason)
}
func (m *mockEventServicer) AssignTransport(ctx context.Context, v domain.Viewer, id int64, req domain.AssignmentRequest) (domain.Event, domain.AssignmentReport, error) {
	return m.assignTransport(ctx, v, id, req)
}

// mockCatalogServicer is a hand-written test double for handler.CatalogServicer.
type mockCatalogServicer struct {
	listDestinations func(ctx context.Context) ([]domain.Destination, error)
	listDrivers      func(ctx context.Context) ([]domain.Driver, error)
	listVehicles     func(ctx context.Context) ([]domain.Vehicle, error)
	listUsers        func(ctx context.Context) ([]domain.User, error)
}

func (m *mockCatalogServicer) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	return m.listDestinations(ctx)
}
func (m *mockCatalogServicer) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	return m.listDrivers(ctx)
}
func (m *mockCatalogServicer) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return m.listVehicles(ctx)
}
func (m *mockCatalogServicer) ListUsers(ctx context.Context) ([]domain.User, error) {
	return m.listUsers(ctx)
}

// mockExportServicer is a hand-written test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context, v domain.Viewer) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, v domain.Viewer) ([]domain.ExportRow, error) {
	return m.export(ctx, v)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.EventServicer   = (*mockEventServicer)(nil)
	_ handler.CatalogServicer = (*mockCatalogServicer)(nil)
	_ handler.ExportServicer  = (*mockExportServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

var (
	requester = domain.Viewer{ID: 1, Name: "Ana", Role: domain.RoleRequester}
	admin     = domain.Viewer{ID: 100, Name: "Carla", Role: domain.RoleAdmin}
)

// as is an authenticator that trusts every request as v.
func as(v domain.Viewer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithViewer(r.Context(), v)))
		})
	}
}

// newHTTPHandler wires a Server with the given mocks, authenticated as v.
func newHTTPHandler(events handler.EventServicer, catalog handler.CatalogServicer, export handler.ExportServicer, v domain.Viewer) http.Handler {
	return handler.NewServer(events, catalog, export, nil).Routes(as(v))
}

// eventFixture returns a persisted outbound-only event owned by requester.
func eventFixture(id int64, status domain.Status) domain.Event {
	return domain.Event{
		ID:          id,
		Code:        "EV-00C0FFEE",
		Destination: domain.Destination{ID: 10, Name: "Hospital Regional"},
		Outbound:    &domain.Leg{ScheduledAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)},
		Passengers:  domain.NewRoster(domain.Passenger{ID: requester.ID, DisplayName: "Ana", IsOwner: true}),
		Status:      status,
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}
