package domain

// ============================================================
// Lead — Request / Response types
// ============================================================

// CreateLeadRequest is the body for POST /v1/leads.
type CreateLeadRequest struct {
	OwnerName       string      `json:"owner_name" validate:"required,min=1,max=200"`
	PropertyAddress string      `json:"property_address" validate:"required,min=1,max=300"`
	TaxID           string      `json:"tax_id,omitempty" validate:"max=60"`
	LawsuitNumber   string      `json:"lawsuit_number,omitempty" validate:"max=60"`
	Arrears         *float64    `json:"current_arrears,omitempty" validate:"omitempty,gte=0"`
	Status          LeadStatus  `json:"status,omitempty"`
	Temperature     Temperature `json:"temperature,omitempty"`
	Occupancy       Occupancy   `json:"occupancy,omitempty"`
	Disposition     Disposition `json:"disposition,omitempty"`
	Email           string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string      `json:"phone,omitempty" validate:"max=40"`
	Notes           string      `json:"notes,omitempty" validate:"max=4000"`
	Heirs           []Heir      `json:"heirs,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
}

// UpdateLeadRequest is the body for PUT /v1/leads/{id}. Nil fields are
// left untouched; the update is a partial patch.
type UpdateLeadRequest struct {
	OwnerName       *string      `json:"owner_name,omitempty" validate:"omitempty,min=1,max=200"`
	PropertyAddress *string      `json:"property_address,omitempty" validate:"omitempty,min=1,max=300"`
	TaxID           *string      `json:"tax_id,omitempty" validate:"omitempty,max=60"`
	LawsuitNumber   *string      `json:"lawsuit_number,omitempty" validate:"omitempty,max=60"`
	Arrears         *float64     `json:"current_arrears,omitempty" validate:"omitempty,gte=0"`
	Status          *LeadStatus  `json:"status,omitempty"`
	Temperature     *Temperature `json:"temperature,omitempty"`
	Occupancy       *Occupancy   `json:"occupancy,omitempty"`
	Disposition     *Disposition `json:"disposition,omitempty"`
	Email           *string      `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string      `json:"phone,omitempty" validate:"omitempty,max=40"`
	Notes           *string      `json:"notes,omitempty" validate:"omitempty,max=4000"`
	Heirs           []Heir       `json:"heirs,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
}

// QueryLeadsRequest is the body for POST /v1/leads/query: the filter
// engine's inputs.
type QueryLeadsRequest struct {
	Search     string            `json:"search,omitempty"`
	Status     string            `json:"status,omitempty"`
	Conditions []FilterCondition `json:"conditions,omitempty"`
	SortKey    string            `json:"sort_key,omitempty"`
}

// QueryLeadsResponse is the filtered, sorted lead page.
type QueryLeadsResponse struct {
	Leads []Lead `json:"leads"`
	Total int    `json:"total"`
}

// ============================================================
// Import — Request / Response types
// ============================================================

// ImportRequest is the body for POST /v1/leads/import. Mapping overrides
// the auto-mapper per column header; an empty map means auto-map only.
type ImportRequest struct {
	CSV     string            `json:"csv" validate:"required"`
	Mapping map[string]string `json:"mapping,omitempty"`
}

// ImportRowError reports one row that failed to submit.
type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ImportResult summarizes an import batch.
type ImportResult struct {
	Submitted int              `json:"submitted"`
	Imported  int              `json:"imported"`
	Failed    int              `json:"failed"`
	Errors    []ImportRowError `json:"errors,omitempty"`
}

// ImportPreview is the response for POST /v1/leads/import/preview: the
// detected headers, the auto-mapping and a handful of normalized sample
// records, so the caller can adjust the mapping before committing.
type ImportPreview struct {
	Headers       []string          `json:"headers"`
	Mapping       map[string]string `json:"mapping"`
	RequiredOK    bool              `json:"required_ok"`
	RowCount      int               `json:"row_count"`
	SampleRecords []Lead            `json:"sample_records"`
}
