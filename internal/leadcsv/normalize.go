package leadcsv

import (
	"strconv"
	"strings"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

// Normalize converts parsed rows into lead records using the current
// header-to-field mapping. It is a pure transform: submitting the records
// to the backend is the caller's job.
//
// Per row, each header with a non-empty cell and a non-empty mapping is
// assigned to the mapped field. The arrears field is cleaned and parsed
// as a decimal; a cell that still fails to parse is left unset. Ragged
// rows simply have fewer cells; missing cells are absent fields.
//
// Post-invariant: owner name and property address are never empty —
// "Unknown Owner" / "Unknown Address" are substituted when missing.
func Normalize(p *Parsed, m Mapping) []domain.Lead {
	leads := make([]domain.Lead, 0, len(p.Rows))
	for _, row := range p.Rows {
		lead := domain.Lead{Status: domain.StatusNew}
		for i, header := range p.Headers {
			if i >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			field := m[header]
			if field == "" {
				continue
			}
			assignField(&lead, field, cell)
		}

		if lead.OwnerName == "" {
			lead.OwnerName = domain.UnknownOwner
		}
		if lead.PropertyAddress == "" {
			lead.PropertyAddress = domain.UnknownAddress
		}

		leads = append(leads, lead)
	}
	return leads
}

func assignField(lead *domain.Lead, field, cell string) {
	switch field {
	case domain.FieldOwnerName:
		lead.OwnerName = cell
	case domain.FieldPropertyAddress:
		lead.PropertyAddress = cell
	case domain.FieldTaxID:
		lead.TaxID = cell
	case domain.FieldLawsuitNumber:
		lead.LawsuitNumber = cell
	case domain.FieldArrears:
		if v, ok := parseArrears(cell); ok {
			lead.Arrears = &v
		}
	case domain.FieldPhone:
		lead.Phone = cell
	case domain.FieldEmail:
		lead.Email = cell
	case domain.FieldNotes:
		if len(cell) > domain.MaxNotesLength {
			cell = cell[:domain.MaxNotesLength]
		}
		lead.Notes = cell
	}
}

// parseArrears strips everything but digits, dot and minus, then parses
// the remainder as a float. `"$1,234.56 (est.)"` becomes 1234.56.
func parseArrears(cell string) (float64, bool) {
	var b strings.Builder
	for _, r := range cell {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
