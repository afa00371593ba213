package leadcsv

import (
	"sort"
	"strings"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

// Mapping maps a CSV header (as it appears in the file) to a canonical
// lead field name. It is mutable: callers may override or clear entries
// column-by-column before import. An empty value means the column is
// skipped.
type Mapping map[string]string

// fieldAliases is the dictionary of canonical field names and the header
// spellings commonly seen in county export files.
var fieldAliases = map[string][]string{
	domain.FieldOwnerName:       {"owner name", "owner", "name", "taxpayer name"},
	domain.FieldPropertyAddress: {"property address", "address", "situs address", "property"},
	domain.FieldTaxID:           {"tax id", "tax identifier", "parcel id", "account number"},
	domain.FieldLawsuitNumber:   {"tax lawsuit number", "lawsuit number", "cause number", "suit number"},
	domain.FieldArrears:         {"current arrears", "arrears", "amount due", "total due", "delinquent amount"},
	domain.FieldPhone:           {"phone", "phone number", "telephone"},
	domain.FieldEmail:           {"email", "email address", "e-mail"},
	domain.FieldNotes:           {"notes", "comments", "remarks"},
}

// normalizeHeader lowercases and strips everything but letters and digits,
// so "Owner Name", "owner_name" and "OwnerName" all compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// AutoMap produces a tentative header-to-field mapping.
//
// For each header, every alias of every canonical field is compared after
// normalization; a candidate matches when either string contains the
// other. Ambiguous matches are broken explicitly rather than by iteration
// order: an exact alias match beats a containment match, then the longest
// normalized alias wins, and remaining ties fall back to lexicographic
// field-name order so the result is deterministic.
func AutoMap(headers []string) Mapping {
	type candidate struct {
		field    string
		exact    bool
		aliasLen int
	}

	fields := make([]string, 0, len(fieldAliases))
	for f := range fieldAliases {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	m := make(Mapping, len(headers))
	for _, header := range headers {
		nh := normalizeHeader(header)
		if nh == "" {
			continue
		}

		var best *candidate
		for _, field := range fields {
			for _, alias := range fieldAliases[field] {
				na := normalizeHeader(alias)
				if na == "" {
					continue
				}
				if !strings.Contains(nh, na) && !strings.Contains(na, nh) {
					continue
				}
				c := &candidate{field: field, exact: na == nh, aliasLen: len(na)}
				if best == nil ||
					(c.exact && !best.exact) ||
					(c.exact == best.exact && c.aliasLen > best.aliasLen) {
					best = c
				}
			}
		}

		if best != nil {
			m[header] = best.field
		}
	}
	return m
}

// HasRequiredFields reports whether the mapping resolves at least one
// column to the owner name AND one to the property address. The import
// action is gated on this.
func (m Mapping) HasRequiredFields() bool {
	var owner, address bool
	for _, field := range m {
		switch field {
		case domain.FieldOwnerName:
			owner = true
		case domain.FieldPropertyAddress:
			address = true
		}
	}
	return owner && address
}
