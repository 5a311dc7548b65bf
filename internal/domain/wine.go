package domain

import "strings"

// Category partitions the cellar into wine and everything else sold or
// stored alongside it (water, soft drinks, snacks).
type Category string

const (
	CategoryWine       Category = "wine"
	CategoryOtherGoods Category = "other-goods"
)

// ParseCategory accepts the canonical names plus the Danish labels used by
// the import form. Unknown or empty input falls back to wine.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wine", "vin":
		return CategoryWine, true
	case "other-goods", "other", "othergoods", "andet", "oevrige", "øvrige":
		return CategoryOtherGoods, true
	}
	return CategoryWine, false
}

type Wine struct {
	ID            int64    `db:"id" json:"id"`
	VinID         string   `db:"vin_id" json:"vinId"`
	ItemNumber    string   `db:"item_number" json:"itemNumber"`
	Name          string   `db:"name" json:"name"`
	Type          string   `db:"type" json:"type"`
	Category      string   `db:"category" json:"category"`
	Country       string   `db:"country" json:"country"`
	Region        string   `db:"region" json:"region"`
	Grape         string   `db:"grape" json:"grape"`
	Vintage       *int     `db:"vintage" json:"vintage,omitempty"`
	PurchasePrice *float64 `db:"purchase_price" json:"purchasePrice,omitempty"`
	ImageURL      string   `db:"image_url" json:"imageUrl"`
	CreatedAt     string   `db:"created_at" json:"createdAt"`
	UpdatedAt     string   `db:"updated_at" json:"updatedAt"`
}

type Location struct {
	ID          int64    `db:"id" json:"id"`
	Name        string   `db:"name" json:"name"`
	Category    Category `db:"category" json:"category"`
	Description string   `db:"description" json:"description"`
	CreatedAt   string   `db:"created_at" json:"createdAt"`
}

// Inventory is the quantity of one wine on one shelf. The tuple
// (WineID, LocationID, ShelfUnit, ShelfLevel) is unique.
type Inventory struct {
	ID          int64  `db:"id" json:"id"`
	WineID      int64  `db:"wine_id" json:"wineId"`
	LocationID  int64  `db:"location_id" json:"locationId"`
	ShelfUnit   string `db:"shelf_unit" json:"shelfUnit"`
	ShelfLevel  string `db:"shelf_level" json:"shelfLevel"`
	Quantity    int    `db:"quantity" json:"quantity"`
	MinQuantity int    `db:"min_quantity" json:"minQuantity"`
	UpdatedAt   string `db:"updated_at" json:"updatedAt"`
}

// StockRow is the denormalized wine x inventory x location view used by
// listings and exports.
type StockRow struct {
	InventoryID   int64    `db:"inventory_id" json:"inventoryId"`
	VinID         string   `db:"vin_id" json:"vinId"`
	ItemNumber    string   `db:"item_number" json:"itemNumber"`
	Name          string   `db:"name" json:"name"`
	Type          string   `db:"type" json:"type"`
	Category      string   `db:"category" json:"category"`
	Country       string   `db:"country" json:"country"`
	Region        string   `db:"region" json:"region"`
	Grape         string   `db:"grape" json:"grape"`
	Vintage       *int     `db:"vintage" json:"vintage,omitempty"`
	ShelfUnit     string   `db:"shelf_unit" json:"shelfUnit"`
	ShelfLevel    string   `db:"shelf_level" json:"shelfLevel"`
	Location      string   `db:"location" json:"location"`
	LocationCat   Category `db:"location_category" json:"locationCategory"`
	Quantity      int      `db:"quantity" json:"quantity"`
	MinQuantity   int      `db:"min_quantity" json:"minQuantity"`
	PurchasePrice *float64 `db:"purchase_price" json:"purchasePrice,omitempty"`
	ImageURL      string   `db:"image_url" json:"imageUrl"`
}

// CountEntry is an append-only record of a quantity change.
type CountEntry struct {
	ID               int64  `db:"id" json:"id"`
	VinID            string `db:"vin_id" json:"vinId"`
	InventoryID      *int64 `db:"inventory_id" json:"inventoryId,omitempty"`
	PreviousQuantity int    `db:"previous_quantity" json:"previousQuantity"`
	NewQuantity      int    `db:"new_quantity" json:"newQuantity"`
	Delta            int    `db:"delta" json:"delta"`
	CountedBy        string `db:"counted_by" json:"countedBy"`
	CreatedAt        string `db:"created_at" json:"createdAt"`
}
