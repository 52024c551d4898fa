package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/wire"
)

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) wire.ErrorDetail {
	t.Helper()
	var body wire.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

// ---- GET /events -----------------------------------------------------------

func TestListEvents_DefaultsToPageOne(t *testing.T) {
	var gotPage int
	svc := &mockEventServicer{
		listPage: func(_ context.Context, page int) ([]domain.Event, error) {
			gotPage = page
			return []domain.Event{eventFixture(1, domain.StatusPending)}, nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodGet, "/events", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, gotPage)
	var page wire.Page
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	require.Len(t, page.Events, 1)
	assert.Equal(t, domain.SentinelString, page.Events[0].ReturnDate)
}

func TestListEvents_PastTheEndIsEmptyArray(t *testing.T) {
	svc := &mockEventServicer{
		listPage: func(_ context.Context, page int) ([]domain.Event, error) {
			assert.Equal(t, 7, page)
			return []domain.Event{}, nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodGet, "/events?page=7", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"events":[]}`, rec.Body.String())
}

func TestListEvents_BadPage(t *testing.T) {
	rec := do(newHTTPHandler(&mockEventServicer{}, nil, nil, requester), http.MethodGet, "/events?page=two", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---- POST /events ----------------------------------------------------------

const createBody = `{
	"destination_id": 10,
	"trip_type": "outbound_only",
	"start_date": "10/03/2025 08:00",
	"return_date": "1900-01-01T00:00:00",
	"passengers": [{"id": 1, "is_owner": true, "display_name": "Ana"}]
}`

func TestCreateEvent_Valid(t *testing.T) {
	svc := &mockEventServicer{
		create: func(_ context.Context, v domain.Viewer, d domain.EventDraft) (domain.Event, error) {
			assert.Equal(t, requester, v)
			assert.Nil(t, d.ReturnAt, "sentinel return date means no return leg")
			e, err := d.Build()
			require.NoError(t, err)
			e.ID, e.Code = 5, "EV-ABCDEF12"
			return e, nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodPost, "/events", createBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	var got wire.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "EV-ABCDEF12", got.Code)
	assert.Equal(t, "2025-03-10T08:00:00", got.StartDate)
	assert.Equal(t, "pending", got.Status)
}

func TestCreateEvent_MalformedJSON(t *testing.T) {
	rec := do(newHTTPHandler(&mockEventServicer{}, nil, nil, requester), http.MethodPost, "/events", `{"destination_id":`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", decodeError(t, rec).Code)
}

func TestCreateEvent_BadDateIs422(t *testing.T) {
	body := strings.Replace(createBody, "10/03/2025 08:00", "tomorrow", 1)

	rec := do(newHTTPHandler(&mockEventServicer{}, nil, nil, requester), http.MethodPost, "/events", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Code)
}

func TestCreateEvent_ServiceErrorsMapped(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("service.EventService.Create: %w: destination is required", domain.ErrValidation), http.StatusUnprocessableEntity, "validation_error"},
		{fmt.Errorf("%w: roster is full", domain.ErrCapacity), http.StatusUnprocessableEntity, "capacity_exceeded"},
		{fmt.Errorf("x: %w: %w", domain.ErrUpstream, errors.New("dial tcp")), http.StatusInternalServerError, "upstream_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		svc := &mockEventServicer{
			create: func(context.Context, domain.Viewer, domain.EventDraft) (domain.Event, error) {
				return domain.Event{}, tc.err
			},
		}

		rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodPost, "/events", createBody)

		require.Equal(t, tc.status, rec.Code, tc.err.Error())
		detail := decodeError(t, rec)
		assert.Equal(t, tc.code, detail.Code)
		assert.NotContains(t, detail.Message, "dial tcp", "internal causes are not leaked")
	}
}

func TestCreateEvent_ValidationMessageIsUnwrapped(t *testing.T) {
	svc := &mockEventServicer{
		create: func(context.Context, domain.Viewer, domain.EventDraft) (domain.Event, error) {
			return domain.Event{}, fmt.Errorf("service.EventService.Create: %w: destination 99 does not exist", domain.ErrValidation)
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodPost, "/events", createBody)

	assert.Equal(t, "destination 99 does not exist", decodeError(t, rec).Message)
}

// ---- GET/PUT /events/{id} --------------------------------------------------

func TestGetEvent_NotFound(t *testing.T) {
	svc := &mockEventServicer{
		getByID: func(context.Context, int64) (domain.Event, error) { return domain.Event{}, domain.ErrNotFound },
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodGet, "/events/9", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestGetEvent_BadID(t *testing.T) {
	rec := do(newHTTPHandler(&mockEventServicer{}, nil, nil, requester), http.MethodGet, "/events/abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateEvent_PartialBody(t *testing.T) {
	svc := &mockEventServicer{
		edit: func(_ context.Context, _ domain.Viewer, id int64, edit domain.EventEdit) (domain.Event, error) {
			assert.Equal(t, int64(3), id)
			require.NotNil(t, edit.Details)
			assert.Nil(t, edit.DestinationID)
			assert.Nil(t, edit.Passengers)
			e := eventFixture(id, domain.StatusPending)
			e.Details = *edit.Details
			return e, nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodPut, "/events/3", `{"details":"Consulta 9h"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got wire.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Consulta 9h", got.Details)
}

func TestUpdateEvent_Forbidden(t *testing.T) {
	svc := &mockEventServicer{
		edit: func(context.Context, domain.Viewer, int64, domain.EventEdit) (domain.Event, error) {
			return domain.Event{}, fmt.Errorf("%w: only the requester may edit this event", domain.ErrForbidden)
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodPut, "/events/3", `{}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateEvent_DroppingOwner(t *testing.T) {
	var stored = eventFixture(3, domain.StatusPending)
	svc := &mockEventServicer{
		edit: func(_ context.Context, _ domain.Viewer, _ int64, edit domain.EventEdit) (domain.Event, error) {
			next, err := domain.ApplyEdit(stored, edit)
			if err != nil {
				return domain.Event{}, err
			}
			stored = next
			return next, nil
		},
	}
	h := newHTTPHandler(svc, nil, nil, requester)
	roster := `"passengers":[{"id":2,"is_owner":true,"display_name":"Bruno"}]`

	rec := do(h, http.MethodPut, "/events/3", `{`+roster+`}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "owner_removal_unconfirmed", decodeError(t, rec).Code)
	assert.True(t, stored.Passengers.IsOwner(requester.ID))

	rec = do(h, http.MethodPut, "/events/3", `{`+roster+`,"confirm_owner_removal":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got wire.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Passengers, 1)
	assert.Equal(t, int64(2), got.Passengers[0].ID)
	assert.True(t, got.Passengers[0].IsOwner)
}

// ---- transitions -----------------------------------------------------------

func TestCancelEvent(t *testing.T) {
	svc := &mockEventServicer{
		cancel: func(_ context.Context, v domain.Viewer, id int64) (domain.Event, error) {
			assert.Equal(t, requester.ID, v.ID)
			return eventFixture(id, domain.StatusCanceled), nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, requester), http.MethodPost, "/events/4/cancel", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got wire.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "canceled", got.Status)
}

func TestApproveEvent_Conflict(t *testing.T) {
	svc := &mockEventServicer{
		approve: func(context.Context, domain.Viewer, int64) (domain.Event, error) {
			return domain.Event{}, fmt.Errorf("%w: cannot approve a canceled event", domain.ErrInvalidTransition)
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, admin), http.MethodPost, "/events/4/approve", "")

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "cannot approve a canceled event", decodeError(t, rec).Message)
}

func TestDenyEvent_PassesReason(t *testing.T) {
	svc := &mockEventServicer{
		deny: func(_ context.Context, _ domain.Viewer, id int64, reason string) (domain.Event, error) {
			assert.Equal(t, "Sem frota", reason)
			e := eventFixture(id, domain.StatusDenied)
			e.Denial = &domain.Denial{DeniedByName: "Carla", Reason: reason}
			return e, nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, admin), http.MethodPost, "/events/4/deny", `{"reason":"Sem frota"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got wire.Event
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Carla", got.DeniedBy)
	assert.Equal(t, "Sem frota", got.DenialReason)
}

// ---- PUT /events/{id}/transport --------------------------------------------

func TestAssignTransport_ReportsSkippedLegs(t *testing.T) {
	svc := &mockEventServicer{
		assignTransport: func(_ context.Context, _ domain.Viewer, id int64, req domain.AssignmentRequest) (domain.Event, domain.AssignmentReport, error) {
			require.NotNil(t, req.Outbound)
			assert.Equal(t, int64(7), *req.Outbound.DriverID)
			assert.Nil(t, req.Return)
			e := eventFixture(id, domain.StatusApproved)
			e.Outbound.Transport = domain.NewTransport(7, 3)
			rep := domain.AssignmentReport{Skipped: []error{fmt.Errorf("%w: return leg was not requested", domain.ErrTransportUnresolved)}}
			return e, rep, nil
		},
	}

	rec := do(newHTTPHandler(svc, nil, nil, admin), http.MethodPut, "/events/4/transport", `{"driver_start_id":7,"vehicle_start_id":3}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got wire.TransportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.NotNil(t, got.Event.DriverStartID)
	assert.Equal(t, int64(7), *got.Event.DriverStartID)
	require.Len(t, got.Skipped, 1)
	assert.Contains(t, got.Skipped[0], "return leg")
}

func TestAssignTransport_BadVoucher(t *testing.T) {
	rec := do(newHTTPHandler(&mockEventServicer{}, nil, nil, admin), http.MethodPut, "/events/4/transport", `{"voucher_start":"lost"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
