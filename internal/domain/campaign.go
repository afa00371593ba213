package domain

import "time"

// CampaignStatus is the lifecycle state of a marketing campaign.
type CampaignStatus string

const (
	CampaignDraft    CampaignStatus = "DRAFT"
	CampaignActive   CampaignStatus = "ACTIVE"
	CampaignPaused   CampaignStatus = "PAUSED"
	CampaignArchived CampaignStatus = "ARCHIVED"
)

// Campaign groups leads targeted by a specific outreach effort.
type Campaign struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Status      CampaignStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty"`
}

// CreateCampaignRequest is the body for POST /v1/campaigns.
type CreateCampaignRequest struct {
	Name        string         `json:"name" validate:"required,min=1,max=200"`
	Description string         `json:"description,omitempty" validate:"max=2000"`
	Status      CampaignStatus `json:"status,omitempty"`
}

// UpdateCampaignRequest is the body for PUT /v1/campaigns/{id}. Nil
// fields are left untouched.
type UpdateCampaignRequest struct {
	Name        *string         `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *CampaignStatus `json:"status,omitempty"`
}

// CampaignLead is a lead scoped to a campaign: same shape as Lead minus
// the classification and heir fields. CampaignID is set at creation and
// never reassigned.
type CampaignLead struct {
	ID              string    `json:"id,omitempty"`
	CampaignID      string    `json:"campaign_id"`
	OwnerName       string    `json:"owner_name"`
	PropertyAddress string    `json:"property_address"`
	TaxID           string    `json:"tax_id,omitempty"`
	LawsuitNumber   string    `json:"lawsuit_number,omitempty"`
	Arrears         *float64  `json:"current_arrears,omitempty"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Tags            []string  `json:"tags,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	UpdatedAt       time.Time `json:"updated_at,omitempty"`
}
