package leadfilter

import (
	"sort"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator compares strings the way a browser's localeCompare would:
// case-insensitive, locale-aware. Collators are not safe for concurrent
// use, so each sort builds its own.
func newCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

// sortLeads sorts in place, ascending only. The slice handed in here is
// already a copy owned by Apply; callers of the engine never see their
// collection reordered. Unrecognized keys preserve the stable order.
func sortLeads(leads []domain.Lead, key string) {
	switch key {
	case domain.FieldOwnerName:
		c := newCollator()
		sort.SliceStable(leads, func(i, j int) bool {
			return c.CompareString(leads[i].OwnerName, leads[j].OwnerName) < 0
		})
	case domain.FieldPropertyAddress:
		c := newCollator()
		sort.SliceStable(leads, func(i, j int) bool {
			return c.CompareString(leads[i].PropertyAddress, leads[j].PropertyAddress) < 0
		})
	case domain.FieldTaxID:
		c := newCollator()
		sort.SliceStable(leads, func(i, j int) bool {
			return c.CompareString(leads[i].TaxID, leads[j].TaxID) < 0
		})
	case domain.FieldArrears:
		sort.SliceStable(leads, func(i, j int) bool {
			return arrearsOrZero(&leads[i]) < arrearsOrZero(&leads[j])
		})
	}
}

// arrearsOrZero treats missing arrears as 0 for sorting.
func arrearsOrZero(l *domain.Lead) float64 {
	if l.Arrears == nil {
		return 0
	}
	return *l.Arrears
}
