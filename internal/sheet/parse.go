package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

type Format string

const (
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatSpreadsheet, nil
	}
	return "", parseErr(fmt.Sprintf("unsupported file type %q", filepath.Ext(name)), nil)
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "spreadsheet", "xlsx", "excel":
		return FormatSpreadsheet, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// RawRow is one data row keyed by the header text found in the file.
type RawRow struct {
	Line    int
	Headers []string
	Values  []string
}

// Value returns the cell under header i, "" when the row is short.
func (r RawRow) Value(i int) string {
	if i < len(r.Values) {
		return r.Values[i]
	}
	return ""
}

func (r RawRow) blank() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseFile reads the whole file at path in the given format.
func ParseFile(path string, format Format) ([]RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, parseErr("open file", err)
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		return ParseCSV(f)
	case FormatSpreadsheet:
		return ParseXLSX(f)
	}
	return nil, parseErr(fmt.Sprintf("unknown format %q", format), nil)
}

// ParseCSV reads a delimited file line by line. The separator is ';' when
// the header (the first non-blank line) contains one, ',' otherwise. Input
// that is not valid UTF-8 is decoded as Windows-1252, which is what Excel
// writes on Danish Windows installs. A header-only file yields no rows and
// no error.
func ParseCSV(r io.Reader) ([]RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, parseErr("read csv", err)
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		if data, err = charmap.Windows1252.NewDecoder().Bytes(data); err != nil {
			return nil, parseErr("decode csv", err)
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, parseErr("file is empty", nil)
	}

	lines := strings.Split(string(data), "\n")
	h := 0
	for h < len(lines) && strings.TrimSpace(lines[h]) == "" {
		h++
	}
	headerLine := strings.TrimSuffix(lines[h], "\r")
	sep := ","
	if strings.Contains(headerLine, ";") {
		sep = ";"
	}
	header := trimAll(splitLine(headerLine, sep))

	var out []RawRow
	for i := h + 1; i < len(lines); i++ {
		line := strings.TrimSuffix(lines[i], "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := RawRow{Line: i + 1, Headers: header, Values: splitLine(line, sep)}
		if row.blank() {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// splitLine splits one physical line. Well-formed quoted fields are honored;
// a line with stray or unbalanced quotes is split on the separator as is.
// A quote never continues onto the next line.
func splitLine(line, sep string) []string {
	if n := strings.Count(line, `"`); n > 0 && n%2 == 0 {
		cr := csv.NewReader(strings.NewReader(line))
		cr.Comma = rune(sep[0])
		cr.FieldsPerRecord = -1
		if rec, err := cr.Read(); err == nil {
			return rec
		}
	}
	return strings.Split(line, sep)
}

// ParseXLSX reads the first worksheet of a workbook. Cells come back in their
// displayed (formatted) form; empty cells are "".
func ParseXLSX(r io.Reader) ([]RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, parseErr("open workbook", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, parseErr("workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, parseErr("read sheet "+sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, parseErr("first sheet is empty", nil)
	}

	header := trimAll(rows[0])
	var out []RawRow
	for i, rec := range rows[1:] {
		row := RawRow{Line: i + 2, Headers: header, Values: rec}
		if row.blank() {
			continue
		}
		out = append(out, row)
	}
	if len(out) == 0 {
		return nil, parseErr("sheet has no data rows", nil)
	}
	return out, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
