package repos

import (
	"github.com/jmoiron/sqlx"

	"cellar/internal/domain"
)

type CountRepo struct{ db *sqlx.DB }

func NewCountRepo(db *sqlx.DB) *CountRepo { return &CountRepo{db: db} }

// Append writes a new entry. Entries are never updated or deleted.
func (r *CountRepo) Append(e domain.CountEntry) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO counts(vin_id, inventory_id, previous_quantity, new_quantity, delta, counted_by, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, e.VinID, e.InventoryID, e.PreviousQuantity, e.NewQuantity, e.Delta, e.CountedBy)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *CountRepo) ListByVinID(vinID string, limit int) ([]domain.CountEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.CountEntry
	err := r.db.Select(&out, `
	  SELECT id, vin_id, inventory_id, previous_quantity, new_quantity, delta, counted_by, created_at
	  FROM counts
	  WHERE vin_id = ?
	  ORDER BY id DESC
	  LIMIT ?
	`, vinID, limit)
	return out, err
}

func (r *CountRepo) ListLatest(limit int) ([]domain.CountEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.CountEntry
	err := r.db.Select(&out, `
	  SELECT id, vin_id, inventory_id, previous_quantity, new_quantity, delta, counted_by, created_at
	  FROM counts
	  ORDER BY id DESC
	  LIMIT ?
	`, limit)
	return out, err
}
