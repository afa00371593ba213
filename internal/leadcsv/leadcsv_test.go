package leadcsv_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/leadcsv"
)

func TestParse_HeaderOnly(t *testing.T) {
	_, err := leadcsv.Parse("Owner Name,Property Address\n\n\n")
	if err == nil {
		t.Fatal("expected validation error for header-only CSV")
	}
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %T", err)
	}
}

func TestParse_StripsQuotesAndBlankLines(t *testing.T) {
	raw := "\"Owner Name\",\"Current Arrears\"\n\n\"John Doe\",\"$1,500\"\r\n"
	p, err := leadcsv.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Headers) != 2 || p.Headers[0] != "Owner Name" {
		t.Errorf("headers not stripped: %v", p.Headers)
	}
	// Naive split: the quoted "$1,500" becomes two cells. Known limitation.
	if len(p.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(p.Rows))
	}
	if p.Rows[0][0] != "John Doe" {
		t.Errorf("expected John Doe, got %q", p.Rows[0][0])
	}
}

func TestParse_RaggedRowsDoNotError(t *testing.T) {
	raw := "Owner Name,Property Address,Email\nJohn,123 Oak St\nMary,456 Pine St,mary@x.com,extra"
	p, err := leadcsv.Parse(raw)
	if err != nil {
		t.Fatalf("ragged rows must parse: %v", err)
	}
	if len(p.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(p.Rows))
	}

	leads := leadcsv.Normalize(p, leadcsv.AutoMap(p.Headers))
	if leads[0].Email != "" {
		t.Errorf("missing cell should be an absent field, got %q", leads[0].Email)
	}
	if leads[1].Email != "mary@x.com" {
		t.Errorf("expected mary@x.com, got %q", leads[1].Email)
	}
}

func TestAutoMap_CanonicalHeaders(t *testing.T) {
	headers := []string{"Tax ID", "Owner Name", "Property Address", "Tax Lawsuit Number", "Current Arrears", "Phone", "Email", "Notes"}
	m := leadcsv.AutoMap(headers)

	want := map[string]string{
		"Tax ID":             domain.FieldTaxID,
		"Owner Name":         domain.FieldOwnerName,
		"Property Address":   domain.FieldPropertyAddress,
		"Tax Lawsuit Number": domain.FieldLawsuitNumber,
		"Current Arrears":    domain.FieldArrears,
		"Phone":              domain.FieldPhone,
		"Email":              domain.FieldEmail,
		"Notes":              domain.FieldNotes,
	}
	for header, field := range want {
		if m[header] != field {
			t.Errorf("header %q mapped to %q, want %q", header, m[header], field)
		}
	}
	if !m.HasRequiredFields() {
		t.Error("template headers must satisfy the required-field gate")
	}
}

func TestAutoMap_LongestMatchWins(t *testing.T) {
	// "Tax Lawsuit Number" contains both the "tax id"-ish and the lawsuit
	// aliases after normalization; the longest alias must win.
	m := leadcsv.AutoMap([]string{"Tax Lawsuit Number"})
	if m["Tax Lawsuit Number"] != domain.FieldLawsuitNumber {
		t.Errorf("expected lawsuit number, got %q", m["Tax Lawsuit Number"])
	}
}

func TestAutoMap_IsDeterministic(t *testing.T) {
	headers := []string{"owner", "address", "amount due", "parcel id"}
	first := leadcsv.AutoMap(headers)
	for i := 0; i < 20; i++ {
		again := leadcsv.AutoMap(headers)
		for h, f := range first {
			if again[h] != f {
				t.Fatalf("mapping for %q changed between runs: %q vs %q", h, f, again[h])
			}
		}
	}
}

func TestMapping_RequiredFieldGate(t *testing.T) {
	m := leadcsv.Mapping{"Owner Name": domain.FieldOwnerName}
	if m.HasRequiredFields() {
		t.Error("owner alone must not satisfy the gate")
	}
	m["Address"] = domain.FieldPropertyAddress
	if !m.HasRequiredFields() {
		t.Error("owner + address must satisfy the gate")
	}
}

func TestNormalize_ArrearsCleaning(t *testing.T) {
	raw := "Owner Name,Property Address,Current Arrears\nJohn,123 Oak St,\"$1234.56 (est.)\"\nMary,456 Pine St,not-a-number"
	p, err := leadcsv.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leads := leadcsv.Normalize(p, leadcsv.AutoMap(p.Headers))

	if leads[0].Arrears == nil || *leads[0].Arrears != 1234.56 {
		t.Errorf("expected 1234.56, got %v", leads[0].Arrears)
	}
	if leads[1].Arrears != nil {
		t.Errorf("unparsable arrears must stay unset, got %v", leads[1].Arrears)
	}
}

func TestNormalize_UnknownDefaults(t *testing.T) {
	raw := "Owner Name,Property Address,Email\n,,someone@x.com"
	p, err := leadcsv.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leads := leadcsv.Normalize(p, leadcsv.AutoMap(p.Headers))

	if leads[0].OwnerName != domain.UnknownOwner {
		t.Errorf("expected %q, got %q", domain.UnknownOwner, leads[0].OwnerName)
	}
	if leads[0].PropertyAddress != domain.UnknownAddress {
		t.Errorf("expected %q, got %q", domain.UnknownAddress, leads[0].PropertyAddress)
	}
	if leads[0].Status != domain.StatusNew {
		t.Errorf("imported leads default to NEW, got %q", leads[0].Status)
	}
}

func TestNormalize_OversizedNotesTruncated(t *testing.T) {
	raw := "Owner Name,Property Address,Notes\nJohn,123 Oak St," + strings.Repeat("x", domain.MaxNotesLength+50)
	p, err := leadcsv.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leads := leadcsv.Normalize(p, leadcsv.AutoMap(p.Headers))

	if got := len(leads[0].Notes); got != domain.MaxNotesLength {
		t.Errorf("notes length %d, want %d", got, domain.MaxNotesLength)
	}
}

func TestNormalize_UnmappedColumnsSkipped(t *testing.T) {
	raw := "Owner Name,Mystery Column\nJohn,whatever"
	p, err := leadcsv.Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := leadcsv.AutoMap(p.Headers)
	delete(m, "Mystery Column")

	leads := leadcsv.Normalize(p, m)
	if leads[0].OwnerName != "John" {
		t.Errorf("expected John, got %q", leads[0].OwnerName)
	}
	if leads[0].Notes != "" {
		t.Errorf("unmapped column leaked into notes: %q", leads[0].Notes)
	}
}

func TestTemplate_RoundTrip(t *testing.T) {
	arrears := 15240.5
	original := domain.Lead{
		TaxID:           "12-3456-789",
		OwnerName:       "Jane Roundtrip",
		PropertyAddress: "100 Main St Springfield",
		LawsuitNumber:   "2024-TX-0042",
		Arrears:         &arrears,
		Phone:           "555-0100",
		Email:           "jane@example.com",
	}

	exported := leadcsv.Export([]domain.Lead{original})
	p, err := leadcsv.Parse(exported)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	leads := leadcsv.Normalize(p, leadcsv.AutoMap(p.Headers))
	if len(leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(leads))
	}

	got := leads[0]
	if got.OwnerName != original.OwnerName {
		t.Errorf("owner: got %q want %q", got.OwnerName, original.OwnerName)
	}
	if got.PropertyAddress != original.PropertyAddress {
		t.Errorf("address: got %q want %q", got.PropertyAddress, original.PropertyAddress)
	}
	if got.TaxID != original.TaxID {
		t.Errorf("tax id: got %q want %q", got.TaxID, original.TaxID)
	}
	if got.Arrears == nil || *got.Arrears != arrears {
		t.Errorf("arrears: got %v want %v", got.Arrears, arrears)
	}
}

func TestTemplate_HasFixedColumnOrder(t *testing.T) {
	first := strings.SplitN(leadcsv.Template(), "\n", 2)[0]
	want := "Tax ID,Owner Name,Property Address,Tax Lawsuit Number,Current Arrears,Phone,Email,Notes"
	if first != want {
		t.Errorf("template header order changed:\n got %q\nwant %q", first, want)
	}
}
