package domain

import "time"

// Canonical lead field names, shared by the CSV mapper, the filter
// engine's accessor table and the sort keys.
const (
	FieldOwnerName       = "owner_name"
	FieldPropertyAddress = "property_address"
	FieldTaxID           = "tax_id"
	FieldLawsuitNumber   = "lawsuit_number"
	FieldArrears         = "current_arrears"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldNotes           = "notes"
	FieldStatus          = "status"
)

// FilterOperator is the comparison applied by a FilterCondition.
type FilterOperator string

const (
	OpEquals     FilterOperator = "equals"
	OpContains   FilterOperator = "contains"
	OpStartsWith FilterOperator = "starts_with"
	OpEndsWith   FilterOperator = "ends_with"
	OpGreater    FilterOperator = "greater_than"
	OpLess       FilterOperator = "less_than"
	OpIsEmpty    FilterOperator = "is_empty"
	OpIsNotEmpty FilterOperator = "is_not_empty"
)

// FilterCondition is a single user-authored predicate over a lead field.
// A list of conditions is ANDed in insertion order.
type FilterCondition struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    string         `json:"value"`
}

// SavedFilterSet is a named, persisted list of conditions. Owned by the
// client device, stored locally, never sent to the backend.
type SavedFilterSet struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Conditions []FilterCondition `json:"conditions"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ViewMode is a display preference for the lead list.
type ViewMode string

const (
	ViewTable  ViewMode = "table"
	ViewCards  ViewMode = "cards"
	ViewKanban ViewMode = "kanban"
)

// DefaultViewMode is the fallback when no valid preference is stored.
const DefaultViewMode = ViewTable

// ValidViewMode reports whether v is a recognized view mode.
func ValidViewMode(v ViewMode) bool {
	switch v {
	case ViewTable, ViewCards, ViewKanban:
		return true
	}
	return false
}
