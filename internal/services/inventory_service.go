package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cellar/internal/domain"
	"cellar/internal/repos"
)

type InventoryService struct {
	Inv  *repos.InventoryRepo
	Locs *repos.LocationRepo
}

func NewInventoryService(inv *repos.InventoryRepo, locs *repos.LocationRepo) *InventoryService {
	return &InventoryService{Inv: inv, Locs: locs}
}

func (s *InventoryService) List(f repos.StockFilter) ([]domain.StockRow, error) {
	return s.Inv.ListStock(f)
}

// LowStock lists rows whose quantity is below their minimum.
func (s *InventoryService) LowStock() ([]domain.StockRow, error) {
	return s.Inv.ListStock(repos.StockFilter{LowOnly: true})
}

func (s *InventoryService) Locations() ([]domain.Location, error) {
	return s.Locs.List()
}

// CreateLocation adds a named location. A name that already exists returns
// the existing location unchanged; locations are never renamed or merged.
func (s *InventoryService) CreateLocation(name string, cat domain.Category, description string) (domain.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Location{}, ErrLocationNameEmpty
	}
	if loc, err := s.Locs.ByName(name); err == nil {
		return loc, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return domain.Location{}, err
	}
	if _, err := s.Locs.Create(name, cat, strings.TrimSpace(description)); err != nil {
		return domain.Location{}, fmt.Errorf("create location %q: %w", name, err)
	}
	return s.Locs.ByName(name)
}
