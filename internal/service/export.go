package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/feed"
	"github.com/cgfarias/mobifacil-front-sub000/internal/repo"
)

// ExportService assembles a full flat export of all events and passengers.
type ExportService struct {
	feed    *feed.Aggregator
	catalog repo.CatalogRepo
}

// NewExportService constructs an ExportService reading the whole feed from events.
func NewExportService(events repo.EventRepo, catalog repo.CatalogRepo) *ExportService {
	return &ExportService{feed: feed.NewAggregator(events, nil), catalog: catalog}
}

// Export returns one ExportRow per passenger across all events, ordered by
// event id then roster position. Administrators only.
func (s *ExportService) Export(ctx context.Context, v domain.Viewer) ([]domain.ExportRow, error) {
	if !v.IsAdmin() {
		return nil, fmt.Errorf("service.ExportService.Export: %w: export is for administrators", domain.ErrForbidden)
	}
	events, err := s.feed.FetchAll(ctx)
	if err != nil {
		return nil, upstream("service.ExportService.Export", err)
	}
	drivers, err := s.catalog.ListDrivers(ctx)
	if err != nil {
		return nil, upstream("service.ExportService.Export", err)
	}
	vehicles, err := s.catalog.ListVehicles(ctx)
	if err != nil {
		return nil, upstream("service.ExportService.Export", err)
	}

	driverName := make(map[int64]string, len(drivers))
	for _, d := range drivers {
		driverName[d.ID] = d.Name
	}
	vehicleLabel := make(map[int64]string, len(vehicles))
	for _, veh := range vehicles {
		vehicleLabel[veh.ID] = veh.Plate
		if veh.Model != "" {
			vehicleLabel[veh.ID] = veh.Plate + " " + veh.Model
		}
	}

	slices.SortFunc(events, func(a, b domain.Event) int { return cmp.Compare(a.ID, b.ID) })

	rows := []domain.ExportRow{}
	for _, e := range events {
		base := domain.ExportRow{
			EventID:         e.ID,
			EventCode:       e.Code,
			Status:          e.Status,
			DestinationName: e.Destination.Name,
		}
		if e.Outbound != nil {
			at := e.Outbound.ScheduledAt
			base.OutboundAt = &at
			base.OutboundDriver = lookup(driverName, e.Outbound.Transport.DriverID)
			base.OutboundVehicle = lookup(vehicleLabel, e.Outbound.Transport.VehicleID)
		}
		if e.Return != nil {
			at := e.Return.ScheduledAt
			base.ReturnAt = &at
			base.ReturnDriver = lookup(driverName, e.Return.Transport.DriverID)
			base.ReturnVehicle = lookup(vehicleLabel, e.Return.Transport.VehicleID)
		}
		for _, p := range e.Passengers.Passengers() {
			row := base
			row.PassengerName = p.DisplayName
			row.PassengerEmail = p.Email
			row.IsOwner = p.IsOwner
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// lookup returns the catalog label for id, the bare id when the catalog no
// longer has it, or "" when id is nil.
func lookup(names map[int64]string, id *int64) string {
	if id == nil {
		return ""
	}
	if n, ok := names[*id]; ok {
		return n
	}
	return strconv.FormatInt(*id, 10)
}
