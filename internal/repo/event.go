package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// EventRepo defines the persistence operations for Events.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock and to run against the
// remote feed client in the CLI.
type EventRepo interface {
	// Create inserts a new event with its roster and returns the persisted record
	// (with DB-generated id and created_at populated).
	Create(ctx context.Context, e domain.Event) (domain.Event, error)

	// GetByID retrieves a single event by id.
	// Returns domain.ErrNotFound if no event with that id exists.
	GetByID(ctx context.Context, id int64) (domain.Event, error)

	// ListPage returns page (1-based) of the feed, at most domain.FeedPageSize
	// events ordered by id. A page past the end is empty, not an error.
	ListPage(ctx context.Context, page int) ([]domain.Event, error)

	// Update overwrites destination, details, legs and roster of an event and
	// returns the updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, e domain.Event) (domain.Event, error)

	// UpdateStatus moves a Pending event to status. denial is stored only for
	// domain.StatusDenied. Returns domain.ErrInvalidTransition when the event
	// is no longer Pending.
	UpdateStatus(ctx context.Context, id int64, status domain.Status, denial *domain.Denial) error

	// AssignTransport writes the legs present in a; other legs are untouched.
	AssignTransport(ctx context.Context, id int64, a domain.Assignment) error
}

// pgEventRepo is the Postgres implementation of EventRepo.
type pgEventRepo struct {
	db db
}

// NewEventRepo constructs an EventRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewEventRepo(db db) EventRepo {
	return &pgEventRepo{db: db}
}

const selectEvent = `
	SELECT e.id, e.code, e.destination_id, d.name, e.details,
	       e.outbound_at, e.return_at, e.status,
	       e.driver_start_id, e.vehicle_start_id, e.driver_return_id, e.vehicle_return_id,
	       e.voucher_start, e.voucher_return, e.denied_by, e.denial_reason, e.created_at
	FROM events e
	JOIN destinations d ON d.id = e.destination_id`

// Create inserts the event row and its passengers in one transaction.
func (r *pgEventRepo) Create(ctx context.Context, e domain.Event) (domain.Event, error) {
	const q = `
		INSERT INTO events (code, destination_id, details, outbound_at, return_at, status)
		VALUES (@code, @destination_id, @details, @outbound_at, @return_at, @status)
		RETURNING id`

	var id int64
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{
			"code":           e.Code,
			"destination_id": e.Destination.ID,
			"details":        e.Details,
			"outbound_at":    legTime(e.Outbound), // nil becomes NULL
			"return_at":      legTime(e.Return),
			"status":         string(domain.StatusPending),
		}
		if err := tx.QueryRow(ctx, q, args).Scan(&id); err != nil {
			return err
		}
		return insertPassengers(ctx, tx, id, e.Passengers)
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Create: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves an event by primary key, roster included.
func (r *pgEventRepo) GetByID(ctx context.Context, id int64) (domain.Event, error) {
	row := r.db.QueryRow(ctx, selectEvent+` WHERE e.id = @id`, pgx.NamedArgs{"id": id})
	e, err := scanEvent(row)
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}
	rosters, err := r.loadPassengers(ctx, []int64{id})
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.GetByID: %w", err)
	}
	e.Passengers = rosters[id]
	return e, nil
}

// ListPage returns one fixed-size page of events ordered by id.
func (r *pgEventRepo) ListPage(ctx context.Context, page int) ([]domain.Event, error) {
	win := domain.WindowFor(page)
	rows, err := r.db.Query(ctx, selectEvent+` ORDER BY e.id LIMIT @limit OFFSET @offset`,
		pgx.NamedArgs{"limit": win.Limit, "offset": win.Offset})
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListPage: %w", err)
	}
	defer rows.Close()

	var (
		events []domain.Event
		ids    []int64
	)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EventRepo.ListPage: scan: %w", err)
		}
		events = append(events, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListPage: rows: %w", err)
	}
	if len(events) == 0 {
		return []domain.Event{}, nil
	}

	rosters, err := r.loadPassengers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("repo.EventRepo.ListPage: %w", err)
	}
	for i := range events {
		events[i].Passengers = rosters[events[i].ID]
	}
	return events, nil
}

// Update rewrites the editable columns and replaces the roster.
func (r *pgEventRepo) Update(ctx context.Context, e domain.Event) (domain.Event, error) {
	const q = `
		UPDATE events
		SET destination_id    = @destination_id,
		    details           = @details,
		    outbound_at       = @outbound_at,
		    return_at         = @return_at,
		    driver_start_id   = @driver_start_id,
		    vehicle_start_id  = @vehicle_start_id,
		    driver_return_id  = @driver_return_id,
		    vehicle_return_id = @vehicle_return_id,
		    voucher_start     = @voucher_start,
		    voucher_return    = @voucher_return,
		    updated_at        = now()
		WHERE id = @id`

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		args := pgx.NamedArgs{
			"id":             e.ID,
			"destination_id": e.Destination.ID,
			"details":        e.Details,
			"outbound_at":    legTime(e.Outbound),
			"return_at":      legTime(e.Return),
		}
		for k, v := range legColumns(e) {
			args[k] = v
		}
		tag, err := tx.Exec(ctx, q, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM event_passengers WHERE event_id = @id`, pgx.NamedArgs{"id": e.ID}); err != nil {
			return err
		}
		return insertPassengers(ctx, tx, e.ID, e.Passengers)
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("repo.EventRepo.Update: %w", err)
	}
	return r.GetByID(ctx, e.ID)
}

// UpdateStatus flips status only while the row is still pending, so two
// racing transitions cannot both succeed.
func (r *pgEventRepo) UpdateStatus(ctx context.Context, id int64, status domain.Status, denial *domain.Denial) error {
	const q = `
		UPDATE events
		SET status        = @status,
		    denied_by     = @denied_by,
		    denial_reason = @denial_reason,
		    updated_at    = now()
		WHERE id = @id AND status = 'pending'`

	args := pgx.NamedArgs{"id": id, "status": string(status), "denied_by": "", "denial_reason": ""}
	if status == domain.StatusDenied && denial != nil {
		args["denied_by"] = denial.DeniedByName
		args["denial_reason"] = denial.Reason
	}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.EventRepo.UpdateStatus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.UpdateStatus: %w", r.missOrConflict(ctx, id))
	}
	return nil
}

// AssignTransport writes each leg of a that is set; NULL parameters keep the
// current column value.
func (r *pgEventRepo) AssignTransport(ctx context.Context, id int64, a domain.Assignment) error {
	const q = `
		UPDATE events
		SET driver_start_id   = COALESCE(@driver_start_id::bigint, driver_start_id),
		    vehicle_start_id  = COALESCE(@vehicle_start_id::bigint, vehicle_start_id),
		    driver_return_id  = COALESCE(@driver_return_id::bigint, driver_return_id),
		    vehicle_return_id = COALESCE(@vehicle_return_id::bigint, vehicle_return_id),
		    voucher_start     = COALESCE(@voucher_start::text, voucher_start),
		    voucher_return    = COALESCE(@voucher_return::text, voucher_return),
		    updated_at        = now()
		WHERE id = @id AND status IN ('pending', 'approved')`

	args := pgx.NamedArgs{
		"id":                id,
		"driver_start_id":   nil,
		"vehicle_start_id":  nil,
		"driver_return_id":  nil,
		"vehicle_return_id": nil,
		"voucher_start":     voucherArg(a.OutboundVoucher),
		"voucher_return":    voucherArg(a.ReturnVoucher),
	}
	if t := a.Outbound; t != nil {
		args["driver_start_id"], args["vehicle_start_id"] = *t.DriverID, *t.VehicleID
	}
	if t := a.Return; t != nil {
		args["driver_return_id"], args["vehicle_return_id"] = *t.DriverID, *t.VehicleID
	}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.EventRepo.AssignTransport: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.EventRepo.AssignTransport: %w", r.missOrConflict(ctx, id))
	}
	return nil
}

// missOrConflict tells a missing row from one whose status blocked the write.
func (r *pgEventRepo) missOrConflict(ctx context.Context, id int64) error {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM events WHERE id = @id`, pgx.NamedArgs{"id": id}).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: event is %s", domain.ErrInvalidTransition, status)
}

func (r *pgEventRepo) loadPassengers(ctx context.Context, ids []int64) (map[int64]domain.Roster, error) {
	const q = `
		SELECT event_id, user_id, display_name, email, is_owner
		FROM event_passengers
		WHERE event_id = ANY(@ids)
		ORDER BY event_id, position`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("passengers: %w", err)
	}
	defer rows.Close()

	grouped := make(map[int64][]domain.Passenger, len(ids))
	for rows.Next() {
		var (
			eventID int64
			p       domain.Passenger
		)
		if err := rows.Scan(&eventID, &p.ID, &p.DisplayName, &p.Email, &p.IsOwner); err != nil {
			return nil, fmt.Errorf("passengers: scan: %w", err)
		}
		grouped[eventID] = append(grouped[eventID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("passengers: rows: %w", err)
	}

	out := make(map[int64]domain.Roster, len(grouped))
	for id, ps := range grouped {
		out[id] = domain.NewRoster(ps...)
	}
	return out, nil
}

func insertPassengers(ctx context.Context, tx pgx.Tx, eventID int64, r domain.Roster) error {
	const q = `
		INSERT INTO event_passengers (event_id, user_id, position, display_name, email, is_owner)
		VALUES (@event_id, @user_id, @position, @display_name, @email, @is_owner)`

	batch := &pgx.Batch{}
	for i, p := range r.Passengers() {
		batch.Queue(q, pgx.NamedArgs{
			"event_id":     eventID,
			"user_id":      p.ID,
			"position":     i,
			"display_name": p.DisplayName,
			"email":        p.Email,
			"is_owner":     p.IsOwner,
		})
	}
	return tx.SendBatch(ctx, batch).Close()
}

// scanEvent maps a single selectEvent row into a domain.Event without its roster.
// It handles the nullable leg timestamps and transport ids.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		e                         domain.Event
		status                    string
		outboundAt, returnAt      pgtype.Timestamp
		driverStart, vehicleStart pgtype.Int8
		driverRet, vehicleRet     pgtype.Int8
		voucherStart, voucherRet  string
		deniedBy, denialReason    string
	)

	err := s.Scan(&e.ID, &e.Code, &e.Destination.ID, &e.Destination.Name, &e.Details,
		&outboundAt, &returnAt, &status,
		&driverStart, &vehicleStart, &driverRet, &vehicleRet,
		&voucherStart, &voucherRet, &deniedBy, &denialReason, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}

	e.Status = domain.Status(status)
	if !e.Status.Valid() {
		e.Status = domain.StatusUnknown
	}
	e.Outbound = scanLeg(outboundAt, driverStart, vehicleStart, voucherStart)
	e.Return = scanLeg(returnAt, driverRet, vehicleRet, voucherRet)
	if e.Status == domain.StatusDenied {
		e.Denial = &domain.Denial{DeniedByName: deniedBy, Reason: denialReason}
	}
	return e, nil
}

func scanLeg(at pgtype.Timestamp, driver, vehicle pgtype.Int8, voucher string) *domain.Leg {
	if !at.Valid {
		return nil
	}
	leg := &domain.Leg{ScheduledAt: at.Time, Voucher: domain.VoucherStatus(voucher)}
	if driver.Valid && vehicle.Valid {
		leg.Transport = domain.NewTransport(driver.Int64, vehicle.Int64)
	}
	return leg
}

// legColumns returns the transport and voucher columns of both legs.
// A missing leg clears its columns.
func legColumns(e domain.Event) map[string]any {
	cols := map[string]any{
		"driver_start_id": nil, "vehicle_start_id": nil, "voucher_start": "",
		"driver_return_id": nil, "vehicle_return_id": nil, "voucher_return": "",
	}
	if l := e.Outbound; l != nil {
		cols["driver_start_id"], cols["vehicle_start_id"] = l.Transport.DriverID, l.Transport.VehicleID
		cols["voucher_start"] = string(l.Voucher)
	}
	if l := e.Return; l != nil {
		cols["driver_return_id"], cols["vehicle_return_id"] = l.Transport.DriverID, l.Transport.VehicleID
		cols["voucher_return"] = string(l.Voucher)
	}
	return cols
}

func legTime(l *domain.Leg) any {
	if l == nil {
		return nil
	}
	return l.ScheduledAt
}

func voucherArg(v *domain.VoucherStatus) any {
	if v == nil {
		return nil
	}
	return string(*v)
}
