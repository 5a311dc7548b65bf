// Package sheet reads and writes the flat stock sheets exchanged with the
// cellar: semicolon or comma separated CSV and Excel workbooks.
//
// Reading happens in two steps. ParseFile turns a file into RawRows keyed by
// the header text found in the file, then Normalize maps those headers onto
// the canonical field names (see Field*) using a fixed alias table that
// covers the Danish and English labels seen in the wild. Writing goes the
// other way: WriteCSV and WriteXLSX emit ExportHeader followed by the rows,
// and those headers normalize back to the same fields.
package sheet
