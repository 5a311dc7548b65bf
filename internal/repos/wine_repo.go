package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cellar/internal/domain"
)

type WineRepo struct{ db *sqlx.DB }

func NewWineRepo(db *sqlx.DB) *WineRepo { return &WineRepo{db: db} }

const wineColumns = `
    id, vin_id, item_number, name, type, category, country, region, grape,
    vintage, purchase_price, image_url,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

// ByVinID returns sql.ErrNoRows when the identifier is unknown.
func (r *WineRepo) ByVinID(vinID string) (domain.Wine, error) {
	var w domain.Wine
	err := r.db.Get(&w, `SELECT `+wineColumns+` FROM wines WHERE vin_id = ?`, vinID)
	return w, err
}

func (r *WineRepo) Exists(vinID string) (bool, error) {
	var id int64
	err := r.db.Get(&id, `SELECT id FROM wines WHERE vin_id = ?`, vinID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Upsert inserts the wine or, when vin_id already exists, overwrites its
// descriptive fields. It returns the row id either way.
func (r *WineRepo) Upsert(w domain.Wine) (int64, error) {
	var id int64
	err := r.db.Get(&id, `
		INSERT INTO wines(vin_id, item_number, name, type, category, country, region, grape,
		                  vintage, purchase_price, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(vin_id) DO UPDATE SET
		  item_number = excluded.item_number,
		  name = excluded.name,
		  type = excluded.type,
		  category = excluded.category,
		  country = excluded.country,
		  region = excluded.region,
		  grape = excluded.grape,
		  vintage = excluded.vintage,
		  purchase_price = excluded.purchase_price,
		  image_url = excluded.image_url,
		  updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`, w.VinID, w.ItemNumber, w.Name, w.Type, w.Category, w.Country, w.Region, w.Grape,
		w.Vintage, w.PurchasePrice, w.ImageURL)
	return id, err
}

func (r *WineRepo) List() ([]domain.Wine, error) {
	var out []domain.Wine
	err := r.db.Select(&out, `SELECT `+wineColumns+` FROM wines ORDER BY name, vin_id`)
	return out, err
}

// Classified is a wine reduced to the fields the category partition looks at.
type Classified struct {
	ID               int64  `db:"id"`
	VinID            string `db:"vin_id"`
	Type             string `db:"type"`
	Category         string `db:"category"`
	InOtherGoodsArea bool   `db:"in_other_goods_area"`
}

func (r *WineRepo) ListForClassification() ([]Classified, error) {
	var out []Classified
	err := r.db.Select(&out, `
		SELECT w.id, w.vin_id, w.type, w.category,
		       EXISTS(
		         SELECT 1 FROM inventory i
		         JOIN locations l ON l.id = i.location_id
		         WHERE i.wine_id = w.id AND l.category = 'other-goods'
		       ) AS in_other_goods_area
		FROM wines w
		ORDER BY w.id
	`)
	return out, err
}

// DeleteWithInventory removes the wines and every inventory row that points at
// them in one transaction. Count log entries are kept.
func (r *WineRepo) DeleteWithInventory(ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	deleted := 0
	for _, part := range chunk(ids, 500) {
		query, args, err := sqlx.In(`DELETE FROM inventory WHERE wine_id IN (?)`, part)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(query, args...); err != nil {
			return 0, err
		}
		query, args, err = sqlx.In(`DELETE FROM wines WHERE id IN (?)`, part)
		if err != nil {
			return 0, err
		}
		res, err := tx.Exec(query, args...)
		if err != nil {
			return 0, err
		}
		n, _ := res.RowsAffected()
		deleted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}
