package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// CampaignStore implementation — campaigns and campaign_leads tables
// ============================================================

type campaignRow struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func (r *campaignRow) toDomain() domain.Campaign {
	return domain.Campaign{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      domain.CampaignStatus(r.Status),
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

type campaignLeadRow struct {
	ID              string   `json:"id,omitempty"`
	CampaignID      string   `json:"campaign_id"`
	OwnerName       string   `json:"owner_name"`
	PropertyAddress string   `json:"property_address"`
	TaxID           string   `json:"tax_id,omitempty"`
	LawsuitNumber   string   `json:"lawsuit_number,omitempty"`
	Arrears         *float64 `json:"current_arrears,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

func (r *campaignLeadRow) toDomain() domain.CampaignLead {
	return domain.CampaignLead{
		ID:              r.ID,
		CampaignID:      r.CampaignID,
		OwnerName:       r.OwnerName,
		PropertyAddress: r.PropertyAddress,
		TaxID:           r.TaxID,
		LawsuitNumber:   r.LawsuitNumber,
		Arrears:         r.Arrears,
		Email:           r.Email,
		Phone:           r.Phone,
		Notes:           r.Notes,
		Tags:            r.Tags,
		CreatedAt:       parseTimestamp(r.CreatedAt),
		UpdatedAt:       parseTimestamp(r.UpdatedAt),
	}
}

// ListCampaigns fetches all campaigns, newest first.
func (c *Client) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCampaigns")
	defer span.End()

	var campaigns []domain.Campaign

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "campaigns?order=created_at.desc")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			campaigns = []domain.Campaign{}
			return nil
		}

		var rows []campaignRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode campaigns: %w", err)
		}
		campaigns = make([]domain.Campaign, 0, len(rows))
		for i := range rows {
			campaigns = append(campaigns, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/campaigns", Err: err}
	}

	span.SetAttributes(attribute.Int("campaigns.count", len(campaigns)))
	return campaigns, nil
}

// GetCampaign fetches a single campaign by id.
func (c *Client) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	var campaign *domain.Campaign

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("campaigns?id=eq.%s&limit=1", id)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "campaign", ID: id}
		}

		var rows []campaignRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode campaign: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "campaign", ID: id}
		}
		cp := rows[0].toDomain()
		campaign = &cp
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/campaigns", Err: err}
	}

	return campaign, nil
}

// CreateCampaign inserts a campaign.
func (c *Client) CreateCampaign(ctx context.Context, campaign *domain.Campaign) (*domain.Campaign, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCampaign")
	defer span.End()

	data := map[string]any{
		"name":   campaign.Name,
		"status": string(campaign.Status),
	}
	if campaign.Description != "" {
		data["description"] = campaign.Description
	}

	body, err := c.doPost(ctx, "campaigns", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/campaigns", Err: err}
	}

	var rows []campaignRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/campaigns",
			Err:     fmt.Errorf("decode created campaign: %w", err),
		}
	}
	created := rows[0].toDomain()
	return &created, nil
}

// UpdateCampaign patches the given columns.
func (c *Client) UpdateCampaign(ctx context.Context, id string, updates map[string]any) (*domain.Campaign, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	path := fmt.Sprintf("campaigns?id=eq.%s", id)
	body, err := c.doPatch(ctx, path, updates, true)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/campaigns", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "campaign", ID: id}
	}

	var rows []campaignRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/campaigns",
			Err:     fmt.Errorf("decode updated campaign: %w", err),
		}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

// DeleteCampaign removes a campaign. Scoped campaign_leads rows go with
// it via the table's ON DELETE CASCADE.
func (c *Client) DeleteCampaign(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	path := fmt.Sprintf("campaigns?id=eq.%s", id)
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/campaigns", Err: err}
	}
	return nil
}

// ListCampaignLeads fetches leads scoped to one campaign, newest first.
func (c *Client) ListCampaignLeads(ctx context.Context, campaignID string) ([]domain.CampaignLead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCampaignLeads")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", campaignID))

	var leads []domain.CampaignLead

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("campaign_leads?campaign_id=eq.%s&order=created_at.desc", campaignID)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			leads = []domain.CampaignLead{}
			return nil
		}

		var rows []campaignLeadRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode campaign leads: %w", err)
		}
		leads = make([]domain.CampaignLead, 0, len(rows))
		for i := range rows {
			leads = append(leads, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/campaign_leads", Err: err}
	}

	span.SetAttributes(attribute.Int("leads.count", len(leads)))
	return leads, nil
}

// CreateCampaignLead inserts a lead scoped to its campaign.
func (c *Client) CreateCampaignLead(ctx context.Context, lead *domain.CampaignLead) (*domain.CampaignLead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCampaignLead")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", lead.CampaignID))

	data := map[string]any{
		"campaign_id":      lead.CampaignID,
		"owner_name":       lead.OwnerName,
		"property_address": lead.PropertyAddress,
	}
	if lead.TaxID != "" {
		data["tax_id"] = lead.TaxID
	}
	if lead.LawsuitNumber != "" {
		data["lawsuit_number"] = lead.LawsuitNumber
	}
	if lead.Arrears != nil {
		data["current_arrears"] = *lead.Arrears
	}
	if lead.Email != "" {
		data["email"] = lead.Email
	}
	if lead.Phone != "" {
		data["phone"] = lead.Phone
	}
	if lead.Notes != "" {
		data["notes"] = lead.Notes
	}
	if len(lead.Tags) > 0 {
		data["tags"] = lead.Tags
	}

	body, err := c.doPost(ctx, "campaign_leads", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/campaign_leads", Err: err}
	}

	var rows []campaignLeadRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/campaign_leads",
			Err:     fmt.Errorf("decode created campaign lead: %w", err),
		}
	}
	created := rows[0].toDomain()
	return &created, nil
}

// DeleteCampaignLead removes a lead from a campaign. The campaign_id
// filter keeps the delete scoped even if the lead id leaks across
// campaigns.
func (c *Client) DeleteCampaignLead(ctx context.Context, campaignID, leadID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCampaignLead")
	defer span.End()
	span.SetAttributes(
		attribute.String("campaign.id", campaignID),
		attribute.String("lead.id", leadID),
	)

	path := fmt.Sprintf("campaign_leads?id=eq.%s&campaign_id=eq.%s", leadID, campaignID)
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/campaign_leads", Err: err}
	}
	return nil
}
