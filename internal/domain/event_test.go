package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// ---- helpers ---------------------------------------------------------------

func ptr[T any](v T) *T { return &v }

func at(s string) time.Time {
	t, err := domain.ParseDate(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func validDraft() domain.EventDraft {
	return domain.EventDraft{
		DestinationID: 10,
		Details:       "Consulta médica",
		TripType:      domain.TripRoundTrip,
		OutboundAt:    ptr(at("2025-03-10T08:00")),
		ReturnAt:      ptr(at("2025-03-10T17:00")),
		Passengers:    domain.NewRoster(domain.Passenger{ID: 1, DisplayName: "Ana", IsOwner: true}),
	}
}

// ---- Build -----------------------------------------------------------------

func TestEventDraft_Build_RoundTrip(t *testing.T) {
	e, err := validDraft().Build()

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, e.Status)
	assert.Equal(t, domain.TripRoundTrip, e.TripType())
	require.NotNil(t, e.Outbound)
	require.NotNil(t, e.Return)
	assert.Equal(t, int64(1), e.OwnerID())
}

func TestEventDraft_Build_MissingFields(t *testing.T) {
	cases := map[string]func(d *domain.EventDraft){
		"destination":       func(d *domain.EventDraft) { d.DestinationID = 0 },
		"trip type":         func(d *domain.EventDraft) { d.TripType = "" },
		"outbound date":     func(d *domain.EventDraft) { d.OutboundAt = nil },
		"return date":       func(d *domain.EventDraft) { d.ReturnAt = nil },
		"sentinel outbound": func(d *domain.EventDraft) { d.OutboundAt = ptr(domain.SentinelDate) },
		"passengers":        func(d *domain.EventDraft) { d.Passengers = domain.NewRoster() },
		"return before outbound": func(d *domain.EventDraft) {
			d.ReturnAt = ptr(at("2025-03-09T08:00"))
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := validDraft()
			mutate(&d)

			_, err := d.Build()

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestEventDraft_Build_ErrorNamesField(t *testing.T) {
	d := validDraft()
	d.DestinationID = 0

	_, err := d.Build()

	assert.ErrorContains(t, err, "destination")
}

func TestEventDraft_Build_OutboundOnlyDropsReturn(t *testing.T) {
	d := validDraft()
	d.TripType = domain.TripOutboundOnly

	e, err := d.Build()

	require.NoError(t, err)
	assert.Nil(t, e.Return)
	assert.Equal(t, domain.TripOutboundOnly, e.TripType())
}

func TestEventDraft_Build_ReturnOnly(t *testing.T) {
	d := validDraft()
	d.TripType = domain.TripReturnOnly
	d.OutboundAt = nil

	e, err := d.Build()

	require.NoError(t, err)
	assert.Nil(t, e.Outbound)
	require.NotNil(t, e.Return)
	got, ok := e.RelevantDate()
	assert.True(t, ok)
	assert.True(t, got.Equal(at("2025-03-10T17:00")))
}

// ---- ApplyEdit -------------------------------------------------------------

func TestApplyEdit_AddPassengerKeepsLegsAndStatus(t *testing.T) {
	d := validDraft()
	d.TripType = domain.TripOutboundOnly
	d.ReturnAt = nil
	e, err := d.Build()
	require.NoError(t, err)

	roster := e.Passengers
	require.NoError(t, roster.Add(domain.Passenger{ID: 2}))

	got, err := domain.ApplyEdit(e, domain.EventEdit{Passengers: &roster})

	require.NoError(t, err)
	assert.Equal(t, []domain.Passenger{
		{ID: 1, DisplayName: "Ana", IsOwner: true},
		{ID: 2, IsOwner: false},
	}, got.Passengers.Passengers())
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.Return)
}

func TestApplyEdit_OutboundOnlyIgnoresReturnDate(t *testing.T) {
	d := validDraft()
	d.TripType = domain.TripOutboundOnly
	e, err := d.Build()
	require.NoError(t, err)

	got, err := domain.ApplyEdit(e, domain.EventEdit{ReturnAt: ptr(at("2025-03-12T08:00"))})

	require.NoError(t, err)
	assert.Nil(t, got.Return, "return leg must stay absent without an explicit trip type switch")
}

func TestApplyEdit_SwitchTripType(t *testing.T) {
	d := validDraft()
	d.TripType = domain.TripOutboundOnly
	e, err := d.Build()
	require.NoError(t, err)

	got, err := domain.ApplyEdit(e, domain.EventEdit{
		TripType: domain.TripRoundTrip,
		ReturnAt: ptr(at("2025-03-12T08:00")),
	})

	require.NoError(t, err)
	require.NotNil(t, got.Return)
	assert.Equal(t, domain.TripRoundTrip, got.TripType())
}

func TestApplyEdit_KeepsTransportOfSurvivingLegs(t *testing.T) {
	e, err := validDraft().Build()
	require.NoError(t, err)
	e.Outbound.Transport = domain.NewTransport(7, 3)
	e.Return.Voucher = domain.VoucherPending

	got, err := domain.ApplyEdit(e, domain.EventEdit{OutboundAt: ptr(at("2025-03-10T07:30"))})

	require.NoError(t, err)
	assert.True(t, got.Outbound.Transport.Assigned())
	assert.Equal(t, domain.VoucherPending, got.Return.Voucher)
	assert.True(t, got.Outbound.ScheduledAt.Equal(at("2025-03-10T07:30")))
}

func TestApplyEdit_InvalidEditLeavesEventUntouched(t *testing.T) {
	e, err := validDraft().Build()
	require.NoError(t, err)
	before := *e.Outbound

	_, err = domain.ApplyEdit(e, domain.EventEdit{OutboundAt: ptr(at("2025-03-11T08:00"))})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, before, *e.Outbound)
}

func TestEvent_RelevantDateSkipsSentinel(t *testing.T) {
	e := domain.Event{
		Outbound: &domain.Leg{ScheduledAt: domain.SentinelDate},
		Return:   &domain.Leg{ScheduledAt: at("2025-03-10T17:00")},
	}
	got, ok := e.RelevantDate()
	assert.True(t, ok)
	assert.True(t, got.Equal(at("2025-03-10T17:00")))

	_, ok = domain.Event{}.RelevantDate()
	assert.False(t, ok)
}

func TestApplyEdit_DroppingOwnerNeedsConfirmation(t *testing.T) {
	e, err := validDraft().Build()
	require.NoError(t, err)
	next := domain.NewRoster(domain.Passenger{ID: 2, IsOwner: true})

	_, err = domain.ApplyEdit(e, domain.EventEdit{Passengers: &next})
	require.ErrorIs(t, err, domain.ErrOwnerRemovalUnconfirmed)
	assert.True(t, e.Passengers.IsOwner(1))

	got, err := domain.ApplyEdit(e, domain.EventEdit{Passengers: &next, ConfirmOwnerRemoval: true})
	require.NoError(t, err)
	assert.False(t, got.Passengers.Contains(1))
	assert.True(t, got.Passengers.IsOwner(2))
}

func TestApplyEdit_InvalidRosterRejectedBeforeReconcile(t *testing.T) {
	e, err := validDraft().Build()
	require.NoError(t, err)
	twoOwners := domain.NewRoster(domain.Passenger{ID: 1, IsOwner: true}, domain.Passenger{ID: 2, IsOwner: true})

	_, err = domain.ApplyEdit(e, domain.EventEdit{Passengers: &twoOwners})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
