package services

import (
	"database/sql"
	"errors"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/repos"
)

// CountService records stock counts. Each change of quantity updates the
// inventory row and appends one entry to the count log.
type CountService struct {
	Inv    *repos.InventoryRepo
	Counts *repos.CountRepo
}

func NewCountService(inv *repos.InventoryRepo, counts *repos.CountRepo) *CountService {
	return &CountService{Inv: inv, Counts: counts}
}

// SetQuantity stores a counted quantity. An unchanged quantity writes
// nothing and returns an entry with Delta 0. If the log append fails the
// quantity change stands and the failure is only logged.
func (s *CountService) SetQuantity(inventoryID int64, qty int, countedBy string) (domain.CountEntry, error) {
	if qty < 0 {
		return domain.CountEntry{}, ErrNegativeQuantity
	}
	cur, err := s.Inv.StockByID(inventoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CountEntry{}, ErrNotFound
	}
	if err != nil {
		return domain.CountEntry{}, err
	}

	entry := domain.CountEntry{
		VinID:            cur.VinID,
		InventoryID:      &inventoryID,
		PreviousQuantity: cur.Quantity,
		NewQuantity:      qty,
		Delta:            qty - cur.Quantity,
		CountedBy:        countedBy,
	}
	if entry.Delta == 0 {
		return entry, nil
	}
	if err := s.Inv.SetQuantity(inventoryID, qty); err != nil {
		return domain.CountEntry{}, err
	}
	id, err := s.Counts.Append(entry)
	if err != nil {
		applog.Error(nil, "count.log.fail", err, map[string]any{
			"inventory_id": inventoryID, "vin_id": cur.VinID, "previous": cur.Quantity, "new": qty,
		})
		return entry, nil
	}
	entry.ID = id
	return entry, nil
}

// Adjust adds delta (which may be negative) to the current quantity.
func (s *CountService) Adjust(inventoryID int64, delta int, countedBy string) (domain.CountEntry, error) {
	cur, err := s.Inv.Get(inventoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CountEntry{}, ErrNotFound
	}
	if err != nil {
		return domain.CountEntry{}, err
	}
	return s.SetQuantity(inventoryID, cur.Quantity+delta, countedBy)
}

// History lists count entries newest first; an empty vinID lists all wines.
func (s *CountService) History(vinID string, limit int) ([]domain.CountEntry, error) {
	if vinID == "" {
		return s.Counts.ListLatest(limit)
	}
	return s.Counts.ListByVinID(vinID, limit)
}
