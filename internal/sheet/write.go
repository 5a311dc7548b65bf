package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportHeader is the fixed export column order. Every label maps back to a
// canonical field through CanonicalHeader.
var ExportHeader = []string{
	"vinId", "varenummer", "navn", "type", "kategori", "land", "region", "drue",
	"årgang", "reol", "hylde", "lokation", "antal", "minimum", "indkøbspris", "billede",
}

// SheetName is the worksheet name used for exported workbooks.
const SheetName = "Lager"

// WriteCSV writes a UTF-8 BOM, the header and the rows separated by ';'.
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(singleLine(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// singleLine folds line breaks inside cells into spaces; ParseCSV reads one
// record per physical line.
func singleLine(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if strings.ContainsAny(v, "\r\n") {
			v = strings.Join(strings.Fields(v), " ")
		}
		out[i] = v
	}
	return out
}

// WriteXLSX writes a single-sheet workbook. Cell values keep their Go type so
// numbers stay numeric in Excel.
func WriteXLSX(w io.Writer, rows [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, i+2, r); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

func setRow(f *excelize.File, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
