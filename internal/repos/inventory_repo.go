package repos

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"cellar/internal/domain"
)

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const inventoryColumns = `id, wine_id, location_id, shelf_unit, shelf_level, quantity, min_quantity,
    COALESCE(updated_at,'') AS updated_at`

func (r *InventoryRepo) Get(id int64) (domain.Inventory, error) {
	var inv domain.Inventory
	err := r.db.Get(&inv, `SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id)
	return inv, err
}

// Find looks up the row for the compound key. sql.ErrNoRows means absent.
func (r *InventoryRepo) Find(wineID, locationID int64, shelfUnit, shelfLevel string) (domain.Inventory, error) {
	var inv domain.Inventory
	err := r.db.Get(&inv, `
		SELECT `+inventoryColumns+` FROM inventory
		WHERE wine_id = ? AND location_id = ? AND shelf_unit = ? AND shelf_level = ?
	`, wineID, locationID, shelfUnit, shelfLevel)
	return inv, err
}

func (r *InventoryRepo) Create(inv domain.Inventory) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO inventory(wine_id, location_id, shelf_unit, shelf_level, quantity, min_quantity, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, inv.WineID, inv.LocationID, inv.ShelfUnit, inv.ShelfLevel, inv.Quantity, inv.MinQuantity)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *InventoryRepo) UpdateQuantities(id int64, qty, minQty int) error {
	res, err := r.db.Exec(`
		UPDATE inventory SET quantity = ?, min_quantity = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, minQty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("inventory %d not found", id)
	}
	return nil
}

// SetQuantity overwrites the counted quantity and leaves the minimum alone.
func (r *InventoryRepo) SetQuantity(id int64, qty int) error {
	res, err := r.db.Exec(`
		UPDATE inventory SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, qty, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("inventory %d not found", id)
	}
	return nil
}

type StockFilter struct {
	Category string // location category: wine | other-goods | ""
	Location string
	Q        string // matched against vin id, name, grape, region
	LowOnly  bool
}

const stockSelect = `
	SELECT i.id AS inventory_id, w.vin_id, w.item_number, w.name, w.type, w.category,
	       w.country, w.region, w.grape, w.vintage,
	       i.shelf_unit, i.shelf_level, l.name AS location, l.category AS location_category,
	       i.quantity, i.min_quantity, w.purchase_price, w.image_url
	FROM inventory i
	JOIN wines w ON w.id = i.wine_id
	JOIN locations l ON l.id = i.location_id`

// ListStock returns the joined wine x inventory x location rows.
func (r *InventoryRepo) ListStock(f StockFilter) ([]domain.StockRow, error) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.Category != "" {
		where = append(where, "l.category = ?")
		args = append(args, f.Category)
	}
	if f.Location != "" {
		where = append(where, "l.name = ?")
		args = append(args, f.Location)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Q)); q != "" {
		where = append(where, "(LOWER(w.vin_id) LIKE ? OR LOWER(w.name) LIKE ? OR LOWER(w.grape) LIKE ? OR LOWER(w.region) LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like, like, like)
	}
	if f.LowOnly {
		where = append(where, "i.quantity < i.min_quantity")
	}

	var out []domain.StockRow
	err := r.db.Select(&out, stockSelect+`
	WHERE `+strings.Join(where, " AND ")+`
	ORDER BY w.name, w.vin_id, l.name, i.shelf_unit, i.shelf_level`, args...)
	return out, err
}

// StockByID returns the joined row for one inventory entry.
func (r *InventoryRepo) StockByID(id int64) (domain.StockRow, error) {
	var row domain.StockRow
	err := r.db.Get(&row, stockSelect+` WHERE i.id = ?`, id)
	return row, err
}
