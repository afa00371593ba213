// Package leadfilter is the pure filter/sort engine for the in-memory
// lead collection. Apply is a pure function of its inputs: the same
// collection and query always produce the same, order-stable result, and
// the caller's slice is never mutated.
package leadfilter

import (
	"strconv"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

// getter returns a lead field as a string plus whether the field is
// present. Fields are accessed through this enumerated table instead of
// reflection so a typo in a condition is a silent no-match, never a
// runtime surprise.
type getter func(l *domain.Lead) (string, bool)

var fieldGetters = map[string]getter{
	domain.FieldOwnerName: func(l *domain.Lead) (string, bool) {
		return l.OwnerName, l.OwnerName != ""
	},
	domain.FieldPropertyAddress: func(l *domain.Lead) (string, bool) {
		return l.PropertyAddress, l.PropertyAddress != ""
	},
	domain.FieldTaxID: func(l *domain.Lead) (string, bool) {
		return l.TaxID, l.TaxID != ""
	},
	domain.FieldLawsuitNumber: func(l *domain.Lead) (string, bool) {
		return l.LawsuitNumber, l.LawsuitNumber != ""
	},
	domain.FieldPhone: func(l *domain.Lead) (string, bool) {
		return l.Phone, l.Phone != ""
	},
	domain.FieldEmail: func(l *domain.Lead) (string, bool) {
		return l.Email, l.Email != ""
	},
	domain.FieldNotes: func(l *domain.Lead) (string, bool) {
		return l.Notes, l.Notes != ""
	},
	domain.FieldStatus: func(l *domain.Lead) (string, bool) {
		return string(l.Status), l.Status != ""
	},
	domain.FieldArrears: func(l *domain.Lead) (string, bool) {
		if l.Arrears == nil {
			return "", false
		}
		return strconv.FormatFloat(*l.Arrears, 'f', -1, 64), true
	},
}

// fieldValue looks up a field by its canonical name. Unknown field names
// read as absent.
func fieldValue(l *domain.Lead, field string) (string, bool) {
	g, ok := fieldGetters[field]
	if !ok {
		return "", false
	}
	return g(l)
}
