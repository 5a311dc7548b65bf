package services

import (
	"strings"

	"cellar/internal/domain"
	applog "cellar/internal/log"
	"cellar/internal/repos"
)

// Keywords that mark a wine record as other goods when found anywhere in its
// category or type. Substring matching is loose: a category such as
// "Vandreflaske" is classified as other goods.
var otherGoodsKeywords = []string{
	"vand", "sodavand", "juice", "saft", "øl", "cider", "kaffe", "snack",
	"chips", "slik", "chokolade", "andet", "øvrig", "other", "water", "soda", "beer",
}

// Identifier prefixes reserved for other goods.
var otherGoodsPrefixes = []string{"OG-", "AND-", "VAND"}

// IsOtherGoods classifies a wine record. A record stocked in any location
// tagged other-goods is other goods regardless of its text fields.
func IsOtherGoods(c repos.Classified) bool {
	if c.InOtherGoodsArea {
		return true
	}
	text := strings.ToLower(c.Category + " " + c.Type)
	for _, kw := range otherGoodsKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	id := strings.ToUpper(c.VinID)
	for _, p := range otherGoodsPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

// ClearCategory deletes every wine classified into target together with its
// inventory rows. Wines of the other category are left untouched. Any
// failure aborts with a *StorageError and nothing is deleted.
func (s *ImportService) ClearCategory(target domain.Category) (int, error) {
	all, err := s.Wines.ListForClassification()
	if err != nil {
		return 0, &StorageError{Op: "list wines", Err: err}
	}
	var ids []int64
	for _, c := range all {
		if IsOtherGoods(c) == (target == domain.CategoryOtherGoods) {
			ids = append(ids, c.ID)
		}
	}
	n, err := s.Wines.DeleteWithInventory(ids)
	if err != nil {
		return 0, &StorageError{Op: "delete " + string(target), Err: err}
	}
	applog.Audit(nil, "import.overwrite.clear", map[string]any{
		"category": string(target),
		"deleted":  n,
		"kept":     len(all) - n,
	})
	return n, nil
}
