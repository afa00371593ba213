// Package domain holds the core entities of the tax-lead CRM:
// leads, campaigns, activities, filters and auth types.
package domain

import "time"

// LeadStatus is the pipeline status of a lead.
type LeadStatus string

const (
	StatusNew  LeadStatus = "NEW"
	StatusHot  LeadStatus = "HOT"
	StatusWarm LeadStatus = "WARM"
	StatusCold LeadStatus = "COLD"
	StatusPass LeadStatus = "PASS"
	StatusKeep LeadStatus = "KEEP"
)

// Temperature is a coarse lead-priority signal.
type Temperature string

const (
	TempHot  Temperature = "HOT"
	TempWarm Temperature = "WARM"
	TempCold Temperature = "COLD"
)

// Occupancy describes who (if anyone) occupies the property.
type Occupancy string

const (
	OccupancyOwner   Occupancy = "OWNER_OCCUPIED"
	OccupancyTenant  Occupancy = "TENANT_OCCUPIED"
	OccupancyVacant  Occupancy = "VACANT"
	OccupancyGeneric Occupancy = "OCCUPIED"
	OccupancyUnknown Occupancy = "UNKNOWN"
)

// Disposition is the qualification outcome of a lead.
type Disposition string

const (
	DispositionUndecided    Disposition = "UNDECIDED"
	DispositionQualified    Disposition = "QUALIFIED"
	DispositionDisqualified Disposition = "DISQUALIFIED"
)

// MaxNotesLength bounds the free-text notes field.
const MaxNotesLength = 4000

// Defaults substituted by the normalizer when required fields are missing.
const (
	UnknownOwner   = "Unknown Owner"
	UnknownAddress = "Unknown Address"
)

// Heir is a person with a stake in an inherited property.
type Heir struct {
	ID           string  `json:"id,omitempty"`
	Name         string  `json:"name"`
	Relationship string  `json:"relationship,omitempty"`
	Percentage   float64 `json:"percentage,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Email        string  `json:"email,omitempty"`
}

// LeadFile is a document attached to a lead.
type LeadFile struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type,omitempty"`
	Size       int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Lead is the central entity: a tax-delinquent property being tracked
// through the qualification pipeline.
type Lead struct {
	ID              string      `json:"id,omitempty"`
	OwnerName       string      `json:"owner_name"`
	PropertyAddress string      `json:"property_address"`
	TaxID           string      `json:"tax_id,omitempty"`
	LawsuitNumber   string      `json:"lawsuit_number,omitempty"`
	Arrears         *float64    `json:"current_arrears,omitempty"`
	Status          LeadStatus  `json:"status"`
	Temperature     Temperature `json:"temperature,omitempty"`
	Occupancy       Occupancy   `json:"occupancy,omitempty"`
	Disposition     Disposition `json:"disposition,omitempty"`
	Email           string      `json:"email,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	Heirs           []Heir      `json:"heirs,omitempty"`
	Files           []LeadFile  `json:"files,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	CreatedAt       time.Time   `json:"created_at,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at,omitempty"`
}

// Badge is the display descriptor for a status value.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusBadges = map[LeadStatus]Badge{
	StatusNew:  {Label: "New", Color: "blue"},
	StatusHot:  {Label: "Hot", Color: "red"},
	StatusWarm: {Label: "Warm", Color: "orange"},
	StatusCold: {Label: "Cold", Color: "slate"},
	StatusPass: {Label: "Pass", Color: "gray"},
	StatusKeep: {Label: "Keep", Color: "green"},
}

// defaultBadge is returned for unrecognized status values.
var defaultBadge = Badge{Label: "Unknown", Color: "gray"}

// StatusBadge returns the display badge for a status, with a defined
// default for unrecognized values.
func StatusBadge(s LeadStatus) Badge {
	if b, ok := statusBadges[s]; ok {
		return b
	}
	return defaultBadge
}

// ValidStatus reports whether s is a recognized pipeline status.
func ValidStatus(s LeadStatus) bool {
	_, ok := statusBadges[s]
	return ok
}

// ValidTemperature reports whether t is a recognized temperature.
func ValidTemperature(t Temperature) bool {
	switch t {
	case TempHot, TempWarm, TempCold:
		return true
	}
	return false
}

// ValidOccupancy reports whether o is a recognized occupancy state.
func ValidOccupancy(o Occupancy) bool {
	switch o {
	case OccupancyOwner, OccupancyTenant, OccupancyVacant, OccupancyGeneric, OccupancyUnknown:
		return true
	}
	return false
}

// ValidDisposition reports whether d is a recognized disposition.
func ValidDisposition(d Disposition) bool {
	switch d {
	case DispositionUndecided, DispositionQualified, DispositionDisqualified:
		return true
	}
	return false
}
