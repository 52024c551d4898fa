package service

import (
	"context"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
	"github.com/cgfarias/mobifacil-front-sub000/internal/repo"
)

// CatalogService exposes the read-only catalogs: destinations, drivers,
// vehicles and users.
type CatalogService struct {
	repo repo.CatalogRepo
}

// NewCatalogService constructs a CatalogService backed by the provided CatalogRepo.
func NewCatalogService(r repo.CatalogRepo) *CatalogService {
	return &CatalogService{repo: r}
}

func (s *CatalogService) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	out, err := s.repo.ListDestinations(ctx)
	if err != nil {
		return nil, upstream("service.CatalogService.ListDestinations", err)
	}
	return out, nil
}

func (s *CatalogService) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	out, err := s.repo.ListDrivers(ctx)
	if err != nil {
		return nil, upstream("service.CatalogService.ListDrivers", err)
	}
	return out, nil
}

func (s *CatalogService) ListVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	out, err := s.repo.ListVehicles(ctx)
	if err != nil {
		return nil, upstream("service.CatalogService.ListVehicles", err)
	}
	return out, nil
}

// ListUsers returns the user directory used to build rosters.
func (s *CatalogService) ListUsers(ctx context.Context) ([]domain.User, error) {
	out, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, upstream("service.CatalogService.ListUsers", err)
	}
	return out, nil
}
