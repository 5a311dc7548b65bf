package services_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
	"cellar/internal/repos"
	"cellar/internal/services"
	"cellar/internal/sheet"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fixture struct {
	db     *sqlx.DB
	wines  *repos.WineRepo
	locs   *repos.LocationRepo
	inv    *repos.InventoryRepo
	svc    *services.ImportService
	export *services.ExportService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := memdb(t)
	f := fixture{
		db:    db,
		wines: repos.NewWineRepo(db),
		locs:  repos.NewLocationRepo(db),
		inv:   repos.NewInventoryRepo(db),
	}
	f.svc = services.NewImportService(f.wines, f.locs, f.inv, t.TempDir())
	f.export = services.NewExportService(f.inv)
	return f
}

func (f fixture) importCSV(t *testing.T, body string, mode domain.ImportMode, cat domain.Category) domain.ImportResult {
	t.Helper()
	raws, err := sheet.ParseCSV(strings.NewReader(body))
	require.NoError(t, err)
	res, err := f.svc.ImportRows(sheet.Normalize(raws), mode, cat)
	require.NoError(t, err)
	return res
}

func (f fixture) stock(t *testing.T) []domain.StockRow {
	t.Helper()
	rows, err := f.inv.ListStock(repos.StockFilter{})
	require.NoError(t, err)
	return rows
}

func TestAppendIntoEmptyDatabase(t *testing.T) {
	f := newFixture(t)
	res := f.importCSV(t, "vinId;navn;antal\nV1;Test Wine;12\n", domain.ModeAppend, domain.CategoryWine)

	assert.Equal(t, domain.ImportResult{Created: 1, Updated: 0, Errors: []domain.RowError{}}, res)

	w, err := f.wines.ByVinID("V1")
	require.NoError(t, err)
	assert.Equal(t, "Test Wine", w.Name)

	rows := f.stock(t)
	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].Quantity)
	assert.Equal(t, services.DefaultLocation, rows[0].Location)
	assert.Equal(t, services.DefaultMinQuantity, rows[0].MinQuantity)
	assert.Equal(t, domain.CategoryWine, rows[0].LocationCat)
}

func TestUpdateChangesQuantity(t *testing.T) {
	f := newFixture(t)
	f.importCSV(t, "vinId;navn;antal\nV1;Test Wine;12\n", domain.ModeAppend, domain.CategoryWine)

	res := f.importCSV(t, "vinId;navn;antal\nV1;Test Wine;20\n", domain.ModeUpdate, domain.CategoryWine)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Empty(t, res.Errors)

	rows := f.stock(t)
	require.Len(t, rows, 1)
	assert.Equal(t, 20, rows[0].Quantity)
}

func TestMissingIdentifierAndName(t *testing.T) {
	f := newFixture(t)
	res := f.importCSV(t, "vinId;navn;antal\n;;5\n", domain.ModeUpdate, domain.CategoryWine)

	assert.Equal(t, 0, res.Created+res.Updated)
	assert.Equal(t, []domain.RowError{{Row: 2, Error: "missing identifier or name"}}, res.Errors)

	all, err := f.wines.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAppendLeavesExistingWinesAlone(t *testing.T) {
	f := newFixture(t)
	f.importCSV(t, "vinId;navn;antal;lokation\nV1;Original;12;Kælder\n", domain.ModeUpdate, domain.CategoryWine)
	before := f.stock(t)

	res := f.importCSV(t, "vinId;navn;antal;lokation\nV1;Renamed;99;Kælder\nV1;Renamed;5;Garage\nV2;New;1;Kælder\n",
		domain.ModeAppend, domain.CategoryWine)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Empty(t, res.Errors)

	w, err := f.wines.ByVinID("V1")
	require.NoError(t, err)
	assert.Equal(t, "Original", w.Name)

	after, err := f.inv.ListStock(repos.StockFilter{Q: "V1"})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	body := "vinId;navn;type;land;årgang;indkøbspris;reol;hylde;lokation;antal;minimum\n" +
		"V1;Barolo;Rødvin;Italien;2016;189,50;A;2;Kælder;6;12\n" +
		"V1;Barolo;Rødvin;Italien;2016;189,50;B;1;Kælder;4;12\n" +
		"V2;Chablis;Hvidvin;Frankrig;2021;99.95;A;3;Kælder;11;\n"

	first := f.importCSV(t, body, domain.ModeUpdate, domain.CategoryWine)
	assert.Equal(t, 3, first.Created)
	state := f.stock(t)

	for i := 0; i < 3; i++ {
		res := f.importCSV(t, body, domain.ModeUpdate, domain.CategoryWine)
		assert.Equal(t, 0, res.Created)
		assert.Equal(t, 3, res.Updated)
		assert.Equal(t, state, f.stock(t))
	}

	w, err := f.wines.ByVinID("V1")
	require.NoError(t, err)
	require.NotNil(t, w.Vintage)
	assert.Equal(t, 2016, *w.Vintage)
	require.NotNil(t, w.PurchasePrice)
	assert.InDelta(t, 189.5, *w.PurchasePrice, 0.001)
	assert.Equal(t, "Rødvin", w.Category, "category falls back to type")

	w2, err := f.wines.ByVinID("V2")
	require.NoError(t, err)
	assert.InDelta(t, 99.95, *w2.PurchasePrice, 0.001)
}

func TestNonNumericValuesAreAbsentNotErrors(t *testing.T) {
	f := newFixture(t)
	res := f.importCSV(t, "vinId;navn;årgang;antal;minimum;pris\nV1;Cava;NV;mange;?;gratis\n", domain.ModeUpdate, domain.CategoryWine)
	assert.Equal(t, 1, res.Created)
	assert.Empty(t, res.Errors)

	w, err := f.wines.ByVinID("V1")
	require.NoError(t, err)
	assert.Nil(t, w.Vintage)
	assert.Nil(t, w.PurchasePrice)

	rows := f.stock(t)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].Quantity)
	assert.Equal(t, 24, rows[0].MinQuantity)
}

func TestSynthesizedIdentifier(t *testing.T) {
	f := newFixture(t)
	f.svc.Now = func() time.Time { return time.UnixMilli(1700000001234) }

	res := f.importCSV(t, "navn;antal\nChâteau Margaux 2015;3\n", domain.ModeUpdate, domain.CategoryWine)
	assert.Equal(t, 1, res.Created)

	w, err := f.wines.ByVinID("CHTEAUMARG1234")
	require.NoError(t, err)
	assert.Equal(t, "Château Margaux 2015", w.Name)
}

type failingUpsert struct {
	services.WineStore
	bad string
}

func (f failingUpsert) Upsert(w domain.Wine) (int64, error) {
	if w.VinID == f.bad {
		return 0, errors.New("constraint failed")
	}
	return f.WineStore.Upsert(w)
}

func TestRowFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	f.svc.Wines = failingUpsert{WineStore: f.wines, bad: "V2"}

	res := f.importCSV(t, "vinId;navn;antal\nV1;A;1\nV2;B;2\nV3;C;3\n", domain.ModeUpdate, domain.CategoryWine)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Error, "constraint failed")
}

type failingList struct{ services.WineStore }

func (failingList) ListForClassification() ([]repos.Classified, error) {
	return nil, errors.New("disk I/O error")
}

func TestOverwritePrePassFailureAbortsImport(t *testing.T) {
	f := newFixture(t)
	f.svc.Wines = failingList{WineStore: f.wines}

	raws, err := sheet.ParseCSV(strings.NewReader("vinId;navn;antal\nV1;A;1\n"))
	require.NoError(t, err)
	_, err = f.svc.ImportRows(sheet.Normalize(raws), domain.ModeOverwrite, domain.CategoryWine)

	var se *services.StorageError
	require.True(t, errors.As(err, &se))
	all, err := f.wines.List()
	require.NoError(t, err)
	assert.Empty(t, all, "no row may be processed after a failed pre-pass")
}

func TestOverwriteOnlyClearsTargetCategory(t *testing.T) {
	f := newFixture(t)
	f.importCSV(t, "vinId;navn;type;lokation;antal\nV1;Barolo;Rødvin;Kælder;6\nV2;Chablis;Hvidvin;Kælder;2\n",
		domain.ModeUpdate, domain.CategoryWine)
	f.importCSV(t, "vinId;navn;kategori;lokation;antal\nOG-1;Danskvand;Vand;Butik;48\nS2;Chips;Snacks;Butik;10\n",
		domain.ModeUpdate, domain.CategoryOtherGoods)

	goodsBefore, err := f.inv.ListStock(repos.StockFilter{Category: string(domain.CategoryOtherGoods)})
	require.NoError(t, err)
	require.Len(t, goodsBefore, 2)

	res := f.importCSV(t, "vinId;navn;lokation;antal\nV9;Rioja;Kælder;3\n", domain.ModeOverwrite, domain.CategoryWine)
	assert.Equal(t, 1, res.Created)

	_, err = f.wines.ByVinID("V1")
	assert.Error(t, err)
	_, err = f.wines.ByVinID("V2")
	assert.Error(t, err)

	goodsAfter, err := f.inv.ListStock(repos.StockFilter{Category: string(domain.CategoryOtherGoods)})
	require.NoError(t, err)
	assert.Equal(t, goodsBefore, goodsAfter)

	wines, err := f.inv.ListStock(repos.StockFilter{Category: string(domain.CategoryWine)})
	require.NoError(t, err)
	require.Len(t, wines, 1)
	assert.Equal(t, "V9", wines[0].VinID)
}

func TestOverwriteOtherGoodsKeepsWine(t *testing.T) {
	f := newFixture(t)
	f.importCSV(t, "vinId;navn;type;lokation;antal\nV1;Barolo;Rødvin;Kælder;6\n", domain.ModeUpdate, domain.CategoryWine)
	f.importCSV(t, "vinId;navn;kategori;antal\nOG-1;Danskvand;Vand;48\n", domain.ModeUpdate, domain.CategoryWine)

	n, err := f.svc.ClearCategory(domain.CategoryOtherGoods)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "keyword match classifies OG-1 even in a wine location")

	_, err = f.wines.ByVinID("V1")
	assert.NoError(t, err)
}

func TestIsOtherGoods(t *testing.T) {
	assert.True(t, services.IsOtherGoods(repos.Classified{Category: "Sodavand"}))
	assert.True(t, services.IsOtherGoods(repos.Classified{VinID: "og-17"}))
	assert.True(t, services.IsOtherGoods(repos.Classified{Category: "Rødvin", InOtherGoodsArea: true}))
	assert.False(t, services.IsOtherGoods(repos.Classified{VinID: "V1", Category: "Rødvin", Type: "Nebbiolo"}))
	// substring matching also catches unrelated words
	assert.True(t, services.IsOtherGoods(repos.Classified{Category: "Vandreflaske-vin"}))
}

func TestExportReimportRoundTrip(t *testing.T) {
	for _, format := range []sheet.Format{sheet.FormatCSV, sheet.FormatSpreadsheet} {
		t.Run(string(format), func(t *testing.T) {
			src := newFixture(t)
			src.importCSV(t, "vinId;varenummer;navn;type;kategori;land;region;drue;årgang;reol;hylde;lokation;antal;minimum;indkøbspris;billede\n"+
				"V1;1001;Barolo; Rødvin;Rødvin;Italien;Piemonte;Nebbiolo;2016;A;2;Kælder;6;12;189,50;img/v1.jpg\n"+
				"V1;1001;Barolo;Rødvin;Rødvin;Italien;Piemonte;Nebbiolo;2016;B;1;Garage;4;12;189,50;img/v1.jpg\n"+
				"V2;1002;\"Chablis; Premier Cru\";Hvidvin;Hvidvin;Frankrig;Bourgogne;Chardonnay;;A;3;Kælder;11;24;;\n",
				domain.ModeUpdate, domain.CategoryWine)

			var buf bytes.Buffer
			require.NoError(t, src.export.Write(&buf, format, ""))

			ext := ".csv"
			if format == sheet.FormatSpreadsheet {
				ext = ".xlsx"
			}
			dst := newFixture(t)
			res, err := dst.svc.ImportUpload(&buf, "lager"+ext, domain.ModeUpdate, domain.CategoryWine)
			require.NoError(t, err)
			assert.Equal(t, 3, res.Created)
			assert.Empty(t, res.Errors)

			want, got := src.stock(t), dst.stock(t)
			require.Len(t, got, len(want))
			for i := range want {
				want[i].InventoryID, got[i].InventoryID = 0, 0
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestImportUploadRemovesTempFile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ImportUpload(strings.NewReader("vinId;navn;antal\nV1;A;1\n"), "stock.csv", domain.ModeUpdate, domain.CategoryWine)
	require.NoError(t, err)

	_, err = f.svc.ImportUpload(strings.NewReader("\n\n"), "empty.csv", domain.ModeUpdate, domain.CategoryWine)
	var pe *sheet.ParseError
	require.True(t, errors.As(err, &pe))

	entries, err := os.ReadDir(f.svc.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.svc.ImportUpload(strings.NewReader("x"), "stock.pdf", domain.ModeUpdate, domain.CategoryWine)
	assert.True(t, errors.As(err, &pe))
}

func TestImportFileFromDisk(t *testing.T) {
	f := newFixture(t)
	p := filepath.Join(t.TempDir(), "lager.csv")
	require.NoError(t, os.WriteFile(p, []byte("id,name,qty,location\nA1,Prosecco,8,Køleskab\n"), 0o600))

	res, err := f.svc.ImportFile(p, sheet.FormatCSV, domain.ModeUpdate, domain.CategoryOtherGoods)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)

	loc, err := f.locs.ByName("Køleskab")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOtherGoods, loc.Category)
}
