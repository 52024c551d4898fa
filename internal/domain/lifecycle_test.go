package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

var (
	owner    = domain.Viewer{ID: 1, Name: "Ana", Role: domain.RoleRequester}
	rider    = domain.Viewer{ID: 2, Name: "Bruno", Role: domain.RoleRequester}
	admin    = domain.Viewer{ID: 90, Name: "Carla", Role: domain.RoleAdmin}
	statuses = []domain.Status{domain.StatusPending, domain.StatusApproved, domain.StatusDenied, domain.StatusCanceled}
)

func eventWithStatus(s domain.Status) domain.Event {
	return domain.Event{
		ID:     5,
		Status: s,
		Passengers: domain.NewRoster(
			domain.Passenger{ID: 1, IsOwner: true},
			domain.Passenger{ID: 2},
		),
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	for _, from := range statuses {
		for _, to := range statuses {
			want := from == domain.StatusPending && to != domain.StatusPending
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestStatus_Label(t *testing.T) {
	assert.Equal(t, "Approved", domain.StatusApproved.Label())
	assert.Equal(t, "Pending", domain.StatusPending.Label())
	assert.Equal(t, "Canceled", domain.StatusCanceled.Label())
	assert.Equal(t, "Denied", domain.StatusDenied.Label())
	assert.Equal(t, "Unknown", domain.Status("weird").Label())
}

func TestCheckTransition_Cancel(t *testing.T) {
	assert.NoError(t, domain.CheckTransition(eventWithStatus(domain.StatusPending), owner, domain.StatusCanceled))
	assert.NoError(t, domain.CheckTransition(eventWithStatus(domain.StatusPending), admin, domain.StatusCanceled))
	assert.ErrorIs(t, domain.CheckTransition(eventWithStatus(domain.StatusPending), rider, domain.StatusCanceled), domain.ErrForbidden)
	assert.ErrorIs(t, domain.CheckTransition(eventWithStatus(domain.StatusApproved), owner, domain.StatusCanceled), domain.ErrInvalidTransition)
	assert.ErrorIs(t, domain.CheckTransition(eventWithStatus(domain.StatusCanceled), owner, domain.StatusCanceled), domain.ErrInvalidTransition)
}

func TestCheckTransition_ApproveDenyAreAdminOnly(t *testing.T) {
	for _, target := range []domain.Status{domain.StatusApproved, domain.StatusDenied} {
		assert.ErrorIs(t, domain.CheckTransition(eventWithStatus(domain.StatusPending), owner, target), domain.ErrForbidden)
		assert.NoError(t, domain.CheckTransition(eventWithStatus(domain.StatusPending), admin, target))
		assert.ErrorIs(t, domain.CheckTransition(eventWithStatus(domain.StatusDenied), admin, target), domain.ErrInvalidTransition)
	}
}

func TestCheckEdit(t *testing.T) {
	assert.NoError(t, domain.CheckEdit(eventWithStatus(domain.StatusPending), owner))
	assert.ErrorIs(t, domain.CheckEdit(eventWithStatus(domain.StatusApproved), owner), domain.ErrInvalidTransition)
	assert.ErrorIs(t, domain.CheckEdit(eventWithStatus(domain.StatusPending), rider), domain.ErrForbidden)

	assert.NoError(t, domain.CheckEdit(eventWithStatus(domain.StatusPending), admin))
	assert.NoError(t, domain.CheckEdit(eventWithStatus(domain.StatusApproved), admin))
	assert.ErrorIs(t, domain.CheckEdit(eventWithStatus(domain.StatusDenied), admin), domain.ErrInvalidTransition)
	assert.ErrorIs(t, domain.CheckEdit(eventWithStatus(domain.StatusCanceled), admin), domain.ErrInvalidTransition)
}

func TestCheckAssign(t *testing.T) {
	assert.ErrorIs(t, domain.CheckAssign(eventWithStatus(domain.StatusPending), owner), domain.ErrForbidden)
	assert.NoError(t, domain.CheckAssign(eventWithStatus(domain.StatusPending), admin))
	assert.NoError(t, domain.CheckAssign(eventWithStatus(domain.StatusApproved), admin))
	assert.ErrorIs(t, domain.CheckAssign(eventWithStatus(domain.StatusCanceled), admin), domain.ErrInvalidTransition)
}

func TestTransition_DenialKeptOnlyForDenied(t *testing.T) {
	denial := &domain.Denial{DeniedByName: "Carla", Reason: "Sem veículo"}

	denied := domain.Transition(eventWithStatus(domain.StatusPending), domain.StatusDenied, denial)
	assert.Equal(t, domain.StatusDenied, denied.Status)
	assert.Equal(t, denial, denied.Denial)

	canceled := domain.Transition(eventWithStatus(domain.StatusPending), domain.StatusCanceled, denial)
	assert.Nil(t, canceled.Denial)
}
