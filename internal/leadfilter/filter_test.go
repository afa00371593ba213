package leadfilter_test

import (
	"reflect"
	"testing"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/leadfilter"
)

func fixture() []domain.Lead {
	a1 := 5000.0
	a2 := 1200.5
	return []domain.Lead{
		{ID: "1", OwnerName: "Alice Johnson", PropertyAddress: "12 Birch Rd", TaxID: "T-100", Email: "alice@x.com", Status: domain.StatusHot, Arrears: &a1},
		{ID: "2", OwnerName: "Bob Meyer", PropertyAddress: "900 Cedar Ave", TaxID: "T-200", Status: domain.StatusCold, Arrears: &a2},
		{ID: "3", OwnerName: "carla DEAN", PropertyAddress: "4 Elm Street", Email: "carla@y.org", Status: domain.StatusWarm},
		{ID: "4", OwnerName: "Dmitri Volkov", PropertyAddress: "77 Birchwood Ln", TaxID: "T-050", Status: domain.StatusHot},
	}
}

func ids(leads []domain.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func TestApply_EmptyQueryIsIdentity(t *testing.T) {
	in := fixture()
	out := leadfilter.Apply(in, leadfilter.Query{})
	if !reflect.DeepEqual(ids(out), []string{"1", "2", "3", "4"}) {
		t.Errorf("empty query must preserve order, got %v", ids(out))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	leadfilter.Apply(in, leadfilter.Query{SortKey: domain.FieldOwnerName})
	if !reflect.DeepEqual(ids(in), []string{"1", "2", "3", "4"}) {
		t.Errorf("caller's slice was reordered: %v", ids(in))
	}
}

func TestApply_Idempotent(t *testing.T) {
	q := leadfilter.Query{
		Search:  "birch",
		SortKey: domain.FieldOwnerName,
	}
	in := fixture()
	first := leadfilter.Apply(in, q)
	second := leadfilter.Apply(in, q)
	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Errorf("engine not idempotent: %v vs %v", ids(first), ids(second))
	}
}

func TestApply_SearchMatchesAnyOfFourFields(t *testing.T) {
	in := fixture()

	cases := []struct {
		term string
		want []string
	}{
		{"alice johnson", []string{"1"}}, // owner name
		{"CEDAR", []string{"2"}},         // address, case-insensitive
		{"t-0", []string{"4"}},           // tax id
		{"carla@y", []string{"3"}},       // email
		{"birch", []string{"1", "4"}},    // substring across records
	}
	for _, tc := range cases {
		got := leadfilter.Apply(in, leadfilter.Query{Search: tc.term})
		if !reflect.DeepEqual(ids(got), tc.want) {
			t.Errorf("search %q: got %v want %v", tc.term, ids(got), tc.want)
		}
	}
}

func TestApply_StatusFilter(t *testing.T) {
	in := fixture()

	got := leadfilter.Apply(in, leadfilter.Query{Status: "hot"})
	if !reflect.DeepEqual(ids(got), []string{"1", "4"}) {
		t.Errorf("status hot: got %v", ids(got))
	}

	got = leadfilter.Apply(in, leadfilter.Query{Status: "ALL"})
	if len(got) != len(in) {
		t.Errorf(`status "all" must pass everything, got %d`, len(got))
	}
}

func TestApply_ConditionsAreANDed(t *testing.T) {
	in := fixture()
	q := leadfilter.Query{
		Conditions: []domain.FilterCondition{
			{Field: domain.FieldPropertyAddress, Operator: domain.OpContains, Value: "birch"},
			{Field: domain.FieldTaxID, Operator: domain.OpIsNotEmpty},
			{Field: domain.FieldOwnerName, Operator: domain.OpStartsWith, Value: "ali"},
		},
	}
	got := leadfilter.Apply(in, q)
	if !reflect.DeepEqual(ids(got), []string{"1"}) {
		t.Errorf("ANDed conditions: got %v", ids(got))
	}
}

func TestApply_EmptyValueConditionSkipped(t *testing.T) {
	in := fixture()
	q := leadfilter.Query{
		Conditions: []domain.FilterCondition{
			{Field: domain.FieldOwnerName, Operator: domain.OpContains, Value: ""},
		},
	}
	if got := leadfilter.Apply(in, q); len(got) != len(in) {
		t.Errorf("empty-valued contains must be skipped, got %d records", len(got))
	}
}

func TestApply_EmptinessOperators(t *testing.T) {
	in := fixture()

	q := leadfilter.Query{
		Conditions: []domain.FilterCondition{{Field: domain.FieldEmail, Operator: domain.OpIsEmpty}},
	}
	if got := leadfilter.Apply(in, q); !reflect.DeepEqual(ids(got), []string{"2", "4"}) {
		t.Errorf("is_empty email: got %v", ids(got))
	}

	q.Conditions[0].Operator = domain.OpIsNotEmpty
	if got := leadfilter.Apply(in, q); !reflect.DeepEqual(ids(got), []string{"1", "3"}) {
		t.Errorf("is_not_empty email: got %v", ids(got))
	}
}

func TestApply_NumericComparisons(t *testing.T) {
	in := fixture()

	q := leadfilter.Query{
		Conditions: []domain.FilterCondition{
			{Field: domain.FieldArrears, Operator: domain.OpGreater, Value: "2000"},
		},
	}
	if got := leadfilter.Apply(in, q); !reflect.DeepEqual(ids(got), []string{"1"}) {
		t.Errorf("greater_than 2000: got %v", ids(got))
	}

	// Absent numeric fields compare false, so leads 3 and 4 drop out.
	q.Conditions[0].Operator = domain.OpLess
	if got := leadfilter.Apply(in, q); !reflect.DeepEqual(ids(got), []string{"2"}) {
		t.Errorf("less_than 2000: got %v", ids(got))
	}
}

func TestApply_SortByOwnerIsCaseInsensitive(t *testing.T) {
	in := fixture()
	got := leadfilter.Apply(in, leadfilter.Query{SortKey: domain.FieldOwnerName})
	// "carla DEAN" must sort between Bob and Dmitri despite its casing.
	if !reflect.DeepEqual(ids(got), []string{"1", "2", "3", "4"}) {
		t.Errorf("owner sort: got %v", ids(got))
	}
}

func TestApply_SortByArrearsTreatsMissingAsZero(t *testing.T) {
	in := fixture()
	got := leadfilter.Apply(in, leadfilter.Query{SortKey: domain.FieldArrears})
	// 3 and 4 have no arrears (0), keeping their relative order (stable),
	// then 1200.5, then 5000.
	if !reflect.DeepEqual(ids(got), []string{"3", "4", "2", "1"}) {
		t.Errorf("arrears sort: got %v", ids(got))
	}
}

func TestApply_UnknownSortKeyIsNoOp(t *testing.T) {
	in := fixture()
	got := leadfilter.Apply(in, leadfilter.Query{SortKey: "favorite_color"})
	if !reflect.DeepEqual(ids(got), []string{"1", "2", "3", "4"}) {
		t.Errorf("unknown sort key must preserve order, got %v", ids(got))
	}
}

func TestApply_UnknownConditionFieldNeverMatches(t *testing.T) {
	in := fixture()
	q := leadfilter.Query{
		Conditions: []domain.FilterCondition{
			{Field: "favorite_color", Operator: domain.OpContains, Value: "blue"},
		},
	}
	if got := leadfilter.Apply(in, q); len(got) != 0 {
		t.Errorf("unknown field with a value must match nothing, got %v", ids(got))
	}
}
