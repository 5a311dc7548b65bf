package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalHeader(t *testing.T) {
	cases := map[string]string{
		"vinId":         FieldVinID,
		" VIN ID ":      FieldVinID,
		"Navn":          FieldName,
		"Antal":         FieldQuantity,
		"Årgang":        FieldVintage,
		"Indkøbspris":   FieldPurchasePrice,
		"Min Antal":     FieldMinQuantity,
		"Hylde":         FieldShelfLevel,
		"Reol":          FieldShelfUnit,
		"Lokation":      FieldLocation,
		"\ufeffvinId":   FieldVinID,
		"Smagsnoter 1 ": "smagsnoter1",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalHeader(in), in)
	}
}

func TestExportHeaderNormalizesBack(t *testing.T) {
	want := []string{
		FieldVinID, FieldItemNumber, FieldName, FieldType, FieldCategory, FieldCountry, FieldRegion, FieldGrape,
		FieldVintage, FieldShelfUnit, FieldShelfLevel, FieldLocation, FieldQuantity, FieldMinQuantity,
		FieldPurchasePrice, FieldImage,
	}
	for i, h := range ExportHeader {
		assert.Equal(t, want[i], CanonicalHeader(h), h)
	}
}

func TestNormalizeFirstNonEmptyWins(t *testing.T) {
	rows := Normalize([]RawRow{{
		Line:    2,
		Headers: []string{"navn", "name", "antal"},
		Values:  []string{"", "Chianti", " 7 "},
	}})
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Chianti", rows[0].Get(FieldName))
	assert.Equal(t, "7", rows[0].Get(FieldQuantity))
	assert.Equal(t, "", rows[0].Get(FieldGrape))
}
