package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"event_id", "event_code", "status", "destination", "service_date",
	"outbound_at", "return_at", "outbound_driver", "outbound_vehicle",
	"return_driver", "return_vehicle", "passenger_name", "passenger_email", "is_owner",
}

// ExportRow is the JSON shape of one export row. Optional fields are omitted
// when empty.
type ExportRow struct {
	EventID         int64               `json:"event_id"`
	EventCode       string              `json:"event_code"`
	Status          string              `json:"status"`
	Destination     string              `json:"destination"`
	ServiceDate     *openapi_types.Date `json:"service_date,omitempty"`
	OutboundAt      *string             `json:"outbound_at,omitempty"`
	ReturnAt        *string             `json:"return_at,omitempty"`
	OutboundDriver  *string             `json:"outbound_driver,omitempty"`
	OutboundVehicle *string             `json:"outbound_vehicle,omitempty"`
	ReturnDriver    *string             `json:"return_driver,omitempty"`
	ReturnVehicle   *string             `json:"return_vehicle,omitempty"`
	PassengerName   string              `json:"passenger_name"`
	PassengerEmail  *string             `json:"passenger_email,omitempty"`
	IsOwner         bool                `json:"is_owner"`
}

// GetExport handles GET /export.
// It returns one row per passenger of every event. Administrators only.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		writeJSON(w, http.StatusBadRequest, requestBody("format must be csv or json"))
		return
	}

	rows, err := s.export.Export(r.Context(), v)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]ExportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainRowToJSONRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes domain rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never fails.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(domainRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// domainRowToJSONRow maps a domain.ExportRow to its JSON shape.
// Fields that are empty strings become nil pointers (omitempty in JSON).
func domainRowToJSONRow(r domain.ExportRow) ExportRow {
	row := ExportRow{
		EventID:         r.EventID,
		EventCode:       r.EventCode,
		Status:          r.Status.Label(),
		Destination:     r.DestinationName,
		OutboundAt:      optionalTime(r.OutboundAt),
		ReturnAt:        optionalTime(r.ReturnAt),
		OutboundDriver:  optional(r.OutboundDriver),
		OutboundVehicle: optional(r.OutboundVehicle),
		ReturnDriver:    optional(r.ReturnDriver),
		ReturnVehicle:   optional(r.ReturnVehicle),
		PassengerName:   r.PassengerName,
		PassengerEmail:  optional(r.PassengerEmail),
		IsOwner:         r.IsOwner,
	}
	if d := serviceDate(r); d != nil {
		row.ServiceDate = &openapi_types.Date{Time: *d}
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Nil times are encoded as empty strings.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	date := ""
	if d := serviceDate(r); d != nil {
		date = d.Format(time.DateOnly)
	}
	return []string{
		strconv.FormatInt(r.EventID, 10),
		r.EventCode,
		r.Status.Label(),
		r.DestinationName,
		date,
		deref(optionalTime(r.OutboundAt)),
		deref(optionalTime(r.ReturnAt)),
		r.OutboundDriver,
		r.OutboundVehicle,
		r.ReturnDriver,
		r.ReturnVehicle,
		r.PassengerName,
		r.PassengerEmail,
		strconv.FormatBool(r.IsOwner),
	}
}

// serviceDate is the calendar day of the row's first leg.
func serviceDate(r domain.ExportRow) *time.Time {
	t := r.OutboundAt
	if t == nil {
		t = r.ReturnAt
	}
	if t == nil {
		return nil
	}
	d := domain.StartOfDay(*t)
	return &d
}

// optionalTime returns the canonical wall-clock representation of t, or nil.
func optionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.FormatDate(t)
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
