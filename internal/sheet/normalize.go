package sheet

import (
	"strings"
	"unicode"
)

// Canonical field names.
const (
	FieldVinID         = "vinId"
	FieldItemNumber    = "itemNumber"
	FieldName          = "name"
	FieldType          = "type"
	FieldCategory      = "category"
	FieldCountry       = "country"
	FieldRegion        = "region"
	FieldGrape         = "grape"
	FieldVintage       = "vintage"
	FieldShelfUnit     = "shelfUnit"
	FieldShelfLevel    = "shelfLevel"
	FieldLocation      = "location"
	FieldQuantity      = "quantity"
	FieldMinQuantity   = "minQuantity"
	FieldPurchasePrice = "purchasePrice"
	FieldImage         = "imageUrl"
)

// aliases is keyed by the folded header (lowercase, no whitespace).
var aliases = map[string]string{
	"vinid": FieldVinID, "vin-id": FieldVinID, "vin_id": FieldVinID, "id": FieldVinID,
	"wineid": FieldVinID, "identifier": FieldVinID,

	"varenummer": FieldItemNumber, "varenr": FieldItemNumber, "varenr.": FieldItemNumber,
	"itemnumber": FieldItemNumber, "itemno": FieldItemNumber, "sku": FieldItemNumber,

	"navn": FieldName, "name": FieldName, "vinnavn": FieldName, "winename": FieldName,
	"produkt": FieldName, "betegnelse": FieldName,

	"type": FieldType, "vintype": FieldType, "winetype": FieldType,

	"kategori": FieldCategory, "category": FieldCategory, "varegruppe": FieldCategory,

	"land": FieldCountry, "country": FieldCountry, "oprindelsesland": FieldCountry,

	"region": FieldRegion, "område": FieldRegion, "omraade": FieldRegion, "distrikt": FieldRegion,

	"drue": FieldGrape, "druer": FieldGrape, "druesort": FieldGrape, "grape": FieldGrape,
	"grapes": FieldGrape, "variety": FieldGrape,

	"årgang": FieldVintage, "aargang": FieldVintage, "argang": FieldVintage,
	"vintage": FieldVintage, "year": FieldVintage, "år": FieldVintage,

	"reol": FieldShelfUnit, "reolnr": FieldShelfUnit, "reolnummer": FieldShelfUnit,
	"shelf": FieldShelfUnit, "shelfunit": FieldShelfUnit, "rack": FieldShelfUnit,

	"hylde": FieldShelfLevel, "hyldenr": FieldShelfLevel, "hyldenummer": FieldShelfLevel,
	"shelflevel": FieldShelfLevel, "level": FieldShelfLevel,

	"lokation": FieldLocation, "placering": FieldLocation, "location": FieldLocation,
	"lager": FieldLocation, "lagerplacering": FieldLocation,

	"antal": FieldQuantity, "quantity": FieldQuantity, "qty": FieldQuantity,
	"beholdning": FieldQuantity, "stk": FieldQuantity, "stock": FieldQuantity,

	"minimum": FieldMinQuantity, "minantal": FieldMinQuantity, "minimumantal": FieldMinQuantity,
	"minbeholdning": FieldMinQuantity, "minquantity": FieldMinQuantity, "min": FieldMinQuantity,

	"indkøbspris": FieldPurchasePrice, "indkobspris": FieldPurchasePrice, "indkoebspris": FieldPurchasePrice,
	"købspris": FieldPurchasePrice, "pris": FieldPurchasePrice, "price": FieldPurchasePrice,
	"purchaseprice": FieldPurchasePrice, "kostpris": FieldPurchasePrice,

	"billede": FieldImage, "billedurl": FieldImage, "image": FieldImage, "imageurl": FieldImage,
	"bilde": FieldImage,
}

// fold lowercases s and drops all whitespace and a leading byte-order mark.
func fold(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalHeader maps a source header to its canonical field name. Unknown
// headers come back folded.
func CanonicalHeader(h string) string {
	f := fold(h)
	if c, ok := aliases[f]; ok {
		return c
	}
	return f
}

// Row is a source row keyed by canonical field names.
type Row struct {
	Line   int // 1-based line/row in the source file, header included
	Fields map[string]string
}

// Get returns the trimmed value of a field, "" when absent.
func (r Row) Get(field string) string {
	return strings.TrimSpace(r.Fields[field])
}

// Normalize maps every RawRow onto canonical field names. When two source
// columns land on the same field the first non-empty value wins.
func Normalize(raws []RawRow) []Row {
	out := make([]Row, 0, len(raws))
	for _, raw := range raws {
		fields := make(map[string]string, len(raw.Headers))
		for i, h := range raw.Headers {
			v := raw.Value(i)
			c := CanonicalHeader(h)
			if prev, ok := fields[c]; ok && strings.TrimSpace(prev) != "" {
				continue
			}
			fields[c] = v
		}
		out = append(out, Row{Line: raw.Line, Fields: fields})
	}
	return out
}
