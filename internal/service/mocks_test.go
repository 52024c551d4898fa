package service_test

import (
	"context"
	"time"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/repo"
)

// mockEventRepo is a hand-written test double for repo.EventRepo.
// Each method is a function field; set only the ones your test needs.
type mockEventRepo struct {
	create          func(ctx context.Context, e domain.Event) (domain.Event, error)
	getByID         func(ctx context.Context, id int64) (domain.Event, error)
	listPage        func(ctx context.Context, page int) ([]domain.Event, error)
	update          func(ctx context.Context, e domain.Event) (domain.Event, error)
	updateStatus    func(ctx context.Context, id int64, status domain.Status, denial *domain.Denial) error
	assignTransport func(ctx context.Context, id int64, a domain.Assignment) error
}

func (m *mockEventRepo) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.create(ctx, e)
}
func (m *mockEventRepo) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	return m.getByID(ctx, id)
}
func (m *mockEventRepo) ListPage(ctx context.Context, page int) ([]domain.Event, error) {
	return m.listPage(ctx, page)
}
func (m *mockEventRepo) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	return m.update(ctx, e)
}
func (m *mockEventRepo) UpdateStatus(ctx context.Context, id int64, status domain.Status, denial *domain.Denial) error {
	return m.updateStatus(ctx, id, status, denial)
}
func (m *mockEventRepo) AssignTransport(ctx context.Context, id int64, a domain.Assignment) error {
	return m.assignTransport(ctx, id, a)
}

// mockCatalogRepo is a hand-written test double for repo.CatalogRepo.
type mockCatalogRepo struct {
	listDestinations func(ctx context.Context) ([]domain.Destination, error)
	getDestination   func(ctx context.Context, id int64) (domain.Destination, error)
	listDrivers      func(ctx context.Context) ([]domain.Driver, error)
	listVehicles     func(ctx context.Context) ([]domain.Vehicle, error)
	listUsers        func(ctx context.Context) ([]domain.User, error)
}

func (m *mockCatalogRepo) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	return m.listDestinations(ctx)
}
func (m *mockCatalogRepo) GetDestination(ctx context.Context, id int64) (domain.Destination, error) {
	return m.getDestination(ctx, id)
}
func (m *mockCatalogRepo) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	return m.listDrivers(ctx)
}
func (m *mockCatalogRepo) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return m.listVehicles(ctx)
}
func (m *mockCatalogRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	return m.listUsers(ctx)
}

// compile-time checks: the mocks must satisfy the repo interfaces.
var (
	_ repo.EventRepo   = (*mockEventRepo)(nil)
	_ repo.CatalogRepo = (*mockCatalogRepo)(nil)
)

// ---- helpers ---------------------------------------------------------------

var (
	owner     = domain.Viewer{ID: 1, Name: "Ana", Role: domain.RoleRequester}
	stranger  = domain.Viewer{ID: 9, Name: "Zé", Role: domain.RoleRequester}
	admin     = domain.Viewer{ID: 100, Name: "Carla", Role: domain.RoleAdmin}
	outbound  = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	returning = time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
)

func ptr[T any](v T) *T { return &v }

// storedEvent returns a persisted round-trip event owned by owner.
func storedEvent(status domain.Status) domain.Event {
	return domain.Event{
		ID:          42,
		Code:        "EV-0000002A",
		Destination: domain.Destination{ID: 10, Name: "Hospital Regional"},
		Outbound:    &domain.Leg{ScheduledAt: outbound},
		Return:      &domain.Leg{ScheduledAt: returning},
		Passengers: domain.NewRoster(
			domain.Passenger{ID: owner.ID, DisplayName: "Ana", IsOwner: true},
			domain.Passenger{ID: 2, DisplayName: "Bruno"},
		),
		Status: status,
	}
}

// knownCatalog serves destination 10, driver 7, vehicle 3 and users 1 (Ana),
// 2 (Bruno) and 3 (Carla).
func knownCatalog() *mockCatalogRepo {
	return &mockCatalogRepo{
		getDestination: func(_ context.Context, id int64) (domain.Destination, error) {
			if id != 10 {
				return domain.Destination{}, domain.ErrNotFound
			}
			return domain.Destination{ID: 10, Name: "Hospital Regional"}, nil
		},
		listDrivers: func(context.Context) ([]domain.Driver, error) {
			return []domain.Driver{{ID: 7, Name: "Davi"}}, nil
		},
		listVehicles: func(context.Context) ([]domain.Vehicle, error) {
			return []domain.Vehicle{{ID: 3, Plate: "ABC1D23", Model: "Spin"}}, nil
		},
		listUsers: func(context.Context) ([]domain.User, error) {
			return []domain.User{
				{ID: 1, FullName: "Ana Lima", Nickname: "Ana", Email: "ana@example.com"},
				{ID: 2, FullName: "Bruno Reis", Nickname: "Bruno"},
				{ID: 3, SocialName: "Carla"},
			}, nil
		},
	}
}

// statefulRepo keeps one event in memory and applies status and transport
// writes to it, so re-fetch behavior can be observed.
func statefulRepo(e domain.Event) (*mockEventRepo, *domain.Event) {
	state := e
	return &mockEventRepo{
		getByID: func(_ context.Context, id int64) (domain.Event, error) {
			if id != state.ID {
				return domain.Event{}, domain.ErrNotFound
			}
			return state, nil
		},
		update: func(_ context.Context, next domain.Event) (domain.Event, error) {
			state = next
			return state, nil
		},
		updateStatus: func(_ context.Context, _ int64, status domain.Status, denial *domain.Denial) error {
			state = domain.Transition(state, status, denial)
			return nil
		},
		assignTransport: func(_ context.Context, _ int64, a domain.Assignment) error {
			state = domain.ApplyAssignment(state, a)
			return nil
		},
	}, &state
}
