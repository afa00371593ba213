package leadcsv

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

// TemplateHeaders is the fixed column order of the exported CSV template.
var TemplateHeaders = []string{
	"Tax ID",
	"Owner Name",
	"Property Address",
	"Tax Lawsuit Number",
	"Current Arrears",
	"Phone",
	"Email",
	"Notes",
}

// Template returns the downloadable import template: the fixed header
// line plus one illustrative example row.
func Template() string {
	var b strings.Builder
	b.WriteString(strings.Join(TemplateHeaders, ","))
	b.WriteString("\n")
	b.WriteString(`"12-3456-789","Jane Sample","100 Main St Springfield","2024-TX-0042","15240.50","555-0100","jane@example.com","Example row"`)
	b.WriteString("\n")
	return b.String()
}

// Export renders leads in the template column order. Cells are quoted,
// matching what the parser strips back off on re-import.
func Export(leads []domain.Lead) string {
	var b strings.Builder
	b.WriteString(strings.Join(TemplateHeaders, ","))
	b.WriteString("\n")
	for _, l := range leads {
		arrears := ""
		if l.Arrears != nil {
			arrears = strconv.FormatFloat(*l.Arrears, 'f', -1, 64)
		}
		cells := []string{
			l.TaxID, l.OwnerName, l.PropertyAddress, l.LawsuitNumber,
			arrears, l.Phone, l.Email, l.Notes,
		}
		for i, c := range cells {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "%q", c)
		}
		b.WriteString("\n")
	}
	return b.String()
}
