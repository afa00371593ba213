package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// LeadStore implementation — leads table via PostgREST
// ============================================================

// leadRow maps the leads table columns to our domain.
type leadRow struct {
	ID              string            `json:"id,omitempty"`
	OwnerName       string            `json:"owner_name"`
	PropertyAddress string            `json:"property_address"`
	TaxID           string            `json:"tax_id,omitempty"`
	LawsuitNumber   string            `json:"lawsuit_number,omitempty"`
	Arrears         *float64          `json:"current_arrears,omitempty"`
	Status          string            `json:"status"`
	Temperature     string            `json:"temperature,omitempty"`
	Occupancy       string            `json:"occupancy,omitempty"`
	Disposition     string            `json:"disposition,omitempty"`
	Email           string            `json:"email,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Heirs           []domain.Heir     `json:"heirs,omitempty"`
	Files           []domain.LeadFile `json:"files,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	CreatedAt       string            `json:"created_at,omitempty"`
	UpdatedAt       string            `json:"updated_at,omitempty"`
}

func (r *leadRow) toDomain() domain.Lead {
	return domain.Lead{
		ID:              r.ID,
		OwnerName:       r.OwnerName,
		PropertyAddress: r.PropertyAddress,
		TaxID:           r.TaxID,
		LawsuitNumber:   r.LawsuitNumber,
		Arrears:         r.Arrears,
		Status:          domain.LeadStatus(r.Status),
		Temperature:     domain.Temperature(r.Temperature),
		Occupancy:       domain.Occupancy(r.Occupancy),
		Disposition:     domain.Disposition(r.Disposition),
		Email:           r.Email,
		Phone:           r.Phone,
		Notes:           r.Notes,
		Heirs:           r.Heirs,
		Files:           r.Files,
		Tags:            r.Tags,
		CreatedAt:       parseTimestamp(r.CreatedAt),
		UpdatedAt:       parseTimestamp(r.UpdatedAt),
	}
}

// parseTimestamp accepts either RFC3339 or a bare date.
func parseTimestamp(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	if t.IsZero() {
		t, _ = time.Parse("2006-01-02", s)
	}
	return t
}

// ListLeads fetches the full lead collection, newest first.
func (c *Client) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListLeads")
	defer span.End()

	var leads []domain.Lead

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "leads?order=created_at.desc")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			leads = []domain.Lead{}
			return nil
		}

		var rows []leadRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode leads: %w", err)
		}
		leads = make([]domain.Lead, 0, len(rows))
		for i := range rows {
			leads = append(leads, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}

	span.SetAttributes(attribute.Int("leads.count", len(leads)))
	return leads, nil
}

// GetLead fetches a single lead by id.
func (c *Client) GetLead(ctx context.Context, id string) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	var lead *domain.Lead

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("leads?id=eq.%s&limit=1", id)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "lead", ID: id}
		}

		var rows []leadRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode lead: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "lead", ID: id}
		}
		l := rows[0].toDomain()
		lead = &l
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}

	return lead, nil
}

// CreateLead inserts a lead; the backend assigns the id.
func (c *Client) CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateLead")
	defer span.End()

	data := map[string]any{
		"owner_name":       lead.OwnerName,
		"property_address": lead.PropertyAddress,
		"status":           string(lead.Status),
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
	if lead.Temperature != "" {
		data["temperature"] = string(lead.Temperature)
	}
	if lead.Occupancy != "" {
		data["occupancy"] = string(lead.Occupancy)
	}
	if lead.Disposition != "" {
		data["disposition"] = string(lead.Disposition)
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
	if len(lead.Heirs) > 0 {
		data["heirs"] = lead.Heirs
	}
	if len(lead.Tags) > 0 {
		data["tags"] = lead.Tags
	}

	body, err := c.doPost(ctx, "leads", data)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}

	var rows []leadRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/leads",
			Err:     fmt.Errorf("decode created lead: %w", err),
		}
	}
	created := rows[0].toDomain()
	return &created, nil
}

// UpdateLead patches the given columns and returns the updated lead.
func (c *Client) UpdateLead(ctx context.Context, id string, updates map[string]any) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	path := fmt.Sprintf("leads?id=eq.%s", id)
	body, err := c.doPatch(ctx, path, updates, true)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "lead", ID: id}
	}

	var rows []leadRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/leads",
			Err:     fmt.Errorf("decode updated lead: %w", err),
		}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

// DeleteLead removes a lead row.
func (c *Client) DeleteLead(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteLead")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	path := fmt.Sprintf("leads?id=eq.%s", id)
	if err := c.doDelete(ctx, path); err != nil {
		return &domain.ErrExternalService{Service: "supabase/leads", Err: err}
	}
	return nil
}
