package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// CatalogRepo reads the reference catalogs events point at.
// The catalogs are read-only from the reservation core's point of view.
type CatalogRepo interface {
	// ListDestinations returns all destinations ordered by name.
	ListDestinations(ctx context.Context) ([]domain.Destination, error)

	// GetDestination returns one destination.
	// Returns domain.ErrNotFound if it does not exist.
	GetDestination(ctx context.Context, id int64) (domain.Destination, error)

	// ListDrivers returns all drivers ordered by name.
	ListDrivers(ctx context.Context) ([]domain.Driver, error)

	// ListVehicles returns all vehicles ordered by plate.
	ListVehicles(ctx context.Context) ([]domain.Vehicle, error)

	// ListUsers returns all users ordered by id.
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// pgCatalogRepo is the Postgres implementation of CatalogRepo.
type pgCatalogRepo struct {
	db db
}

// NewCatalogRepo constructs a CatalogRepo backed by the provided db connection.
func NewCatalogRepo(db db) CatalogRepo {
	return &pgCatalogRepo{db: db}
}

func (r *pgCatalogRepo) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	out, err := queryAll(ctx, r.db, `SELECT id, name FROM destinations ORDER BY name`,
		func(s scanner) (d domain.Destination, err error) {
			err = s.Scan(&d.ID, &d.Name)
			return d, err
		})
	if err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.ListDestinations: %w", err)
	}
	return out, nil
}

func (r *pgCatalogRepo) GetDestination(ctx context.Context, id int64) (domain.Destination, error) {
	var d domain.Destination
	err := r.db.QueryRow(ctx, `SELECT id, name FROM destinations WHERE id = @id`, pgx.NamedArgs{"id": id}).
		Scan(&d.ID, &d.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		err = domain.ErrNotFound
	}
	if err != nil {
		return domain.Destination{}, fmt.Errorf("repo.CatalogRepo.GetDestination: %w", err)
	}
	return d, nil
}

func (r *pgCatalogRepo) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	out, err := queryAll(ctx, r.db, `SELECT id, name, phone FROM drivers ORDER BY name`,
		func(s scanner) (d domain.Driver, err error) {
			err = s.Scan(&d.ID, &d.Name, &d.Phone)
			return d, err
		})
	if err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.ListDrivers: %w", err)
	}
	return out, nil
}

func (r *pgCatalogRepo) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	out, err := queryAll(ctx, r.db, `SELECT id, plate, model FROM vehicles ORDER BY plate`,
		func(s scanner) (v domain.Vehicle, err error) {
			err = s.Scan(&v.ID, &v.Plate, &v.Model)
			return v, err
		})
	if err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.ListVehicles: %w", err)
	}
	return out, nil
}

func (r *pgCatalogRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	out, err := queryAll(ctx, r.db, `SELECT id, nickname, social_name, full_name, email FROM users ORDER BY id`,
		func(s scanner) (u domain.User, err error) {
			err = s.Scan(&u.ID, &u.Nickname, &u.SocialName, &u.FullName, &u.Email)
			return u, err
		})
	if err != nil {
		return nil, fmt.Errorf("repo.CatalogRepo.ListUsers: %w", err)
	}
	return out, nil
}

// queryAll runs q and maps every row with scan. It returns a non-nil slice.
func queryAll[T any](ctx context.Context, d db, q string, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := d.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
