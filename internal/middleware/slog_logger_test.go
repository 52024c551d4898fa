package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgfarias/mobifacil-front-sub000/internal/middleware"
)

// loggedRouter mirrors the production chain: RequestID, then the logger,
// then a chi router with one parameterised route answering status.
func loggedRouter(buf *bytes.Buffer, status int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewSlogLogger(slog.New(slog.NewJSONHandler(buf, nil))))
	r.Get("/events/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	})
	return r
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSlogLogger_LogsRouteAndAdoptedRequestID(t *testing.T) {
	var buf bytes.Buffer
	h := loggedRouter(&buf, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/events/42", nil)
	req.Header.Set("X-Request-Id", "cli-7f3a")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cli-7f3a", rec.Header().Get("X-Request-Id"), "id is echoed back")

	entry := lastLine(t, &buf)
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/events/42", entry["path"])
	assert.Equal(t, "/events/{id}", entry["route"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.Equal(t, "cli-7f3a", entry["request_id"])
	assert.Contains(t, entry, "duration_ms")
}

func TestSlogLogger_MintsRequestID(t *testing.T) {
	var buf bytes.Buffer
	rec := httptest.NewRecorder()
	loggedRouter(&buf, http.StatusOK).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/1", nil))

	id := rec.Header().Get("X-Request-Id")
	assert.NotEmpty(t, id)
	assert.Equal(t, id, lastLine(t, &buf)["request_id"])
}

func TestSlogLogger_LevelFollowsStatus(t *testing.T) {
	for status, level := range map[int]string{
		http.StatusOK:                  "INFO",
		http.StatusConflict:            "WARN",
		http.StatusUnprocessableEntity: "WARN",
		http.StatusBadGateway:          "ERROR",
	} {
		var buf bytes.Buffer
		loggedRouter(&buf, status).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/1", nil))

		assert.Equal(t, level, lastLine(t, &buf)["level"], "status %d", status)
	}
}
