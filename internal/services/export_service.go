package services

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"cellar/internal/domain"
	"cellar/internal/repos"
	"cellar/internal/sheet"
)

type ExportService struct {
	Inv *repos.InventoryRepo
}

func NewExportService(inv *repos.InventoryRepo) *ExportService { return &ExportService{Inv: inv} }

// Rows returns the joined stock rows, optionally limited to one location
// category.
func (s *ExportService) Rows(category string) ([]domain.StockRow, error) {
	return s.Inv.ListStock(repos.StockFilter{Category: category})
}

func (s *ExportService) Write(w io.Writer, format sheet.Format, category string) error {
	rows, err := s.Rows(category)
	if err != nil {
		return err
	}
	switch format {
	case sheet.FormatCSV:
		return sheet.WriteCSV(w, csvRecords(rows))
	case sheet.FormatSpreadsheet:
		return sheet.WriteXLSX(w, xlsxRecords(rows))
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Filename suggests a download name such as "lager-20260102-1504.csv".
func Filename(format sheet.Format, now time.Time) string {
	ext := "csv"
	if format == sheet.FormatSpreadsheet {
		ext = "xlsx"
	}
	return fmt.Sprintf("lager-%s.%s", now.Format("20060102-1504"), ext)
}

// Column order must match sheet.ExportHeader.
func csvRecords(rows []domain.StockRow) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.VinID, r.ItemNumber, r.Name, r.Type, r.Category, r.Country, r.Region, r.Grape,
			sheet.FormatInt(r.Vintage), r.ShelfUnit, r.ShelfLevel, r.Location,
			strconv.Itoa(r.Quantity), strconv.Itoa(r.MinQuantity),
			sheet.FormatPrice(r.PurchasePrice), r.ImageURL,
		})
	}
	return out
}

func xlsxRecords(rows []domain.StockRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		var vintage, price any = "", ""
		if r.Vintage != nil {
			vintage = *r.Vintage
		}
		if r.PurchasePrice != nil {
			price = *r.PurchasePrice
		}
		out = append(out, []any{
			r.VinID, r.ItemNumber, r.Name, r.Type, r.Category, r.Country, r.Region, r.Grape,
			vintage, r.ShelfUnit, r.ShelfLevel, r.Location,
			r.Quantity, r.MinQuantity, price, r.ImageURL,
		})
	}
	return out
}
