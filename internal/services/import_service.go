package services

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/repos"
	"cellar/internal/sheet"
)

const (
	DefaultLocation    = "Standard"
	DefaultMinQuantity = 24
)

type WineStore interface {
	Exists(vinID string) (bool, error)
	Upsert(w domain.Wine) (int64, error)
	ListForClassification() ([]repos.Classified, error)
	DeleteWithInventory(ids []int64) (int, error)
}

type LocationStore interface {
	ByName(name string) (domain.Location, error)
	Create(name string, cat domain.Category, description string) (int64, error)
}

type InventoryStore interface {
	Find(wineID, locationID int64, shelfUnit, shelfLevel string) (domain.Inventory, error)
	Create(inv domain.Inventory) (int64, error)
	UpdateQuantities(id int64, qty, minQty int) error
}

// ImportService reconciles uploaded stock sheets against wines, locations
// and inventory. Rows are processed one at a time, in file order.
type ImportService struct {
	Wines     WineStore
	Locations LocationStore
	Inv       InventoryStore
	UploadDir string
	Now       func() time.Time
}

func NewImportService(wines WineStore, locs LocationStore, inv InventoryStore, uploadDir string) *ImportService {
	return &ImportService{Wines: wines, Locations: locs, Inv: inv, UploadDir: uploadDir, Now: time.Now}
}

// ImportUpload spools src to a temporary file and imports it. The file is
// removed whether or not the import succeeds. The format is taken from the
// extension of filename.
func (s *ImportService) ImportUpload(src io.Reader, filename string, mode domain.ImportMode, target domain.Category) (domain.ImportResult, error) {
	format, err := sheet.DetectFormat(filename)
	if err != nil {
		return domain.ImportResult{}, err
	}
	tmp, err := os.CreateTemp(s.UploadDir, "import-*"+strings.ToLower(filepath.Ext(filename)))
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("spool upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		return domain.ImportResult{}, fmt.Errorf("spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.ImportResult{}, fmt.Errorf("spool upload: %w", err)
	}
	return s.ImportFile(tmp.Name(), format, mode, target)
}

// ImportFile parses the file and runs ImportRows. Parse failures come back as
// *sheet.ParseError before any row is touched.
func (s *ImportService) ImportFile(path string, format sheet.Format, mode domain.ImportMode, target domain.Category) (domain.ImportResult, error) {
	importID := uuid.NewString()
	raws, err := sheet.ParseFile(path, format)
	if err != nil {
		applog.Error(nil, "import.parse.fail", err, map[string]any{"import_id": importID, "format": string(format)})
		return domain.ImportResult{}, err
	}
	res, err := s.ImportRows(sheet.Normalize(raws), mode, target)
	if err != nil {
		applog.Error(nil, "import.fail", err, map[string]any{"import_id": importID, "mode": string(mode)})
		return res, err
	}
	applog.Info(nil, "import.done", map[string]any{
		"import_id": importID,
		"mode":      string(mode),
		"category":  string(target),
		"rows":      len(raws),
		"created":   res.Created,
		"updated":   res.Updated,
		"failed":    res.Failed(),
	})
	return res, nil
}

// ImportRows runs the overwrite pre-pass when asked to, then reconciles.
func (s *ImportService) ImportRows(rows []sheet.Row, mode domain.ImportMode, target domain.Category) (domain.ImportResult, error) {
	if mode == domain.ModeOverwrite {
		if _, err := s.ClearCategory(target); err != nil {
			return domain.ImportResult{Errors: []domain.RowError{}}, err
		}
	}
	return s.Reconcile(rows, mode, target), nil
}

// Reconcile applies every row and never stops early: a failing row is
// recorded with its source line and the loop moves on.
func (s *ImportService) Reconcile(rows []sheet.Row, mode domain.ImportMode, target domain.Category) domain.ImportResult {
	res := domain.ImportResult{Errors: []domain.RowError{}}
	for _, row := range rows {
		out, err := s.reconcileRow(row, mode, target)
		switch {
		case err != nil:
			res.AddError(row.Line, err)
		case out == outcomeCreated:
			res.AddCreated()
		case out == outcomeUpdated:
			res.AddUpdated()
		}
	}
	return res
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeUpdated
)

func (s *ImportService) reconcileRow(row sheet.Row, mode domain.ImportMode, target domain.Category) (outcome, error) {
	vinID := row.Get(sheet.FieldVinID)
	name := row.Get(sheet.FieldName)
	if vinID == "" && name != "" {
		vinID = synthesizeVinID(name, s.now())
	}
	if vinID == "" && name == "" {
		return outcomeSkipped, ErrMissingIdentity
	}

	wine := wineFromRow(row, vinID)
	stock := stockFromRow(row)

	if mode == domain.ModeAppend {
		exists, err := s.Wines.Exists(vinID)
		if err != nil {
			return outcomeSkipped, fmt.Errorf("look up wine %s: %w", vinID, err)
		}
		if exists {
			return outcomeSkipped, nil
		}
	}

	wineID, err := s.Wines.Upsert(wine)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("save wine %s: %w", vinID, err)
	}
	locID, err := s.ensureLocation(stock.location, target)
	if err != nil {
		return outcomeSkipped, err
	}

	inv, err := s.Inv.Find(wineID, locID, stock.shelfUnit, stock.shelfLevel)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.Inv.Create(domain.Inventory{
			WineID:      wineID,
			LocationID:  locID,
			ShelfUnit:   stock.shelfUnit,
			ShelfLevel:  stock.shelfLevel,
			Quantity:    stock.quantity,
			MinQuantity: stock.minQuantity,
		}); err != nil {
			return outcomeSkipped, fmt.Errorf("create inventory for %s: %w", vinID, err)
		}
		return outcomeCreated, nil
	case err != nil:
		return outcomeSkipped, fmt.Errorf("look up inventory for %s: %w", vinID, err)
	}
	if err := s.Inv.UpdateQuantities(inv.ID, stock.quantity, stock.minQuantity); err != nil {
		return outcomeSkipped, fmt.Errorf("update inventory for %s: %w", vinID, err)
	}
	return outcomeUpdated, nil
}

func (s *ImportService) ensureLocation(name string, target domain.Category) (int64, error) {
	loc, err := s.Locations.ByName(name)
	if err == nil {
		return loc.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("look up location %q: %w", name, err)
	}
	id, err := s.Locations.Create(name, target, "")
	if err != nil {
		return 0, fmt.Errorf("create location %q: %w", name, err)
	}
	return id, nil
}

func (s *ImportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type stockFields struct {
	location    string
	shelfUnit   string
	shelfLevel  string
	quantity    int
	minQuantity int
}

func wineFromRow(row sheet.Row, vinID string) domain.Wine {
	w := domain.Wine{
		VinID:         vinID,
		ItemNumber:    row.Get(sheet.FieldItemNumber),
		Name:          row.Get(sheet.FieldName),
		Type:          row.Get(sheet.FieldType),
		Category:      row.Get(sheet.FieldCategory),
		Country:       row.Get(sheet.FieldCountry),
		Region:        row.Get(sheet.FieldRegion),
		Grape:         row.Get(sheet.FieldGrape),
		Vintage:       sheet.ParseInt(row.Get(sheet.FieldVintage)),
		PurchasePrice: sheet.ParsePrice(row.Get(sheet.FieldPurchasePrice)),
		ImageURL:      row.Get(sheet.FieldImage),
	}
	if w.Category == "" {
		w.Category = w.Type
	}
	return w
}

func stockFromRow(row sheet.Row) stockFields {
	loc := row.Get(sheet.FieldLocation)
	if loc == "" {
		loc = DefaultLocation
	}
	return stockFields{
		location:    loc,
		shelfUnit:   row.Get(sheet.FieldShelfUnit),
		shelfLevel:  row.Get(sheet.FieldShelfLevel),
		quantity:    sheet.IntOr(row.Get(sheet.FieldQuantity), 0),
		minQuantity: sheet.IntOr(row.Get(sheet.FieldMinQuantity), DefaultMinQuantity),
	}
}

// synthesizeVinID builds an identifier for rows that only carry a name: the
// first ten ASCII letters/digits of the name, uppercased, followed by the last
// four digits of the millisecond clock. Collisions are not checked.
func synthesizeVinID(name string, now time.Time) string {
	var b strings.Builder
	for _, r := range name {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 10 {
				break
			}
		}
	}
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ts) > 4 {
		ts = ts[len(ts)-4:]
	}
	return strings.ToUpper(b.String()) + ts
}
