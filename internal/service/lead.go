package service

import (
	"context"
	"fmt"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/leadfilter"
	"github.com/calder/taxlead-crm-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var leadTracer = otel.Tracer("service/lead")

// leadsCacheKey caches the full collection; every mutation invalidates it.
const leadsCacheKey = "leads:all"

// LeadService owns the lead CRUD surface and the query endpoint.
type LeadService struct {
	store      port.LeadStore
	cache      port.Cache[[]domain.Lead]
	activities *ActivityService
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewLeadService creates a lead service.
func NewLeadService(store port.LeadStore, cache port.Cache[[]domain.Lead], activities *ActivityService, metrics *observability.Metrics, logger *zap.Logger) *LeadService {
	return &LeadService{
		store:      store,
		cache:      cache,
		activities: activities,
		metrics:    metrics,
		logger:     logger,
	}
}

// ============================================================
// List — GET /v1/leads
// ============================================================

func (s *LeadService) List(ctx context.Context) ([]domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.List")
	defer span.End()

	if cached, ok := s.cache.Get(leadsCacheKey); ok {
		s.metrics.IncrCacheHit("leads")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}
	s.metrics.IncrCacheMiss("leads")

	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	s.cache.Set(leadsCacheKey, leads)
	return leads, nil
}

// ============================================================
// Get — GET /v1/leads/{id}
// ============================================================

func (s *LeadService) Get(ctx context.Context, id string) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// ============================================================
// Create — POST /v1/leads
// ============================================================

func (s *LeadService) Create(ctx context.Context, actorID string, req *domain.CreateLeadRequest) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Create")
	defer span.End()

	if err := validateClassification(req.Status, req.Temperature, req.Occupancy, req.Disposition); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.StatusNew
	}

	lead := &domain.Lead{
		OwnerName:       req.OwnerName,
		PropertyAddress: req.PropertyAddress,
		TaxID:           req.TaxID,
		LawsuitNumber:   req.LawsuitNumber,
		Arrears:         req.Arrears,
		Status:          status,
		Temperature:     req.Temperature,
		Occupancy:       req.Occupancy,
		Disposition:     req.Disposition,
		Email:           req.Email,
		Phone:           req.Phone,
		Notes:           req.Notes,
		Heirs:           req.Heirs,
		Tags:            req.Tags,
	}

	created, err := s.store.CreateLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	s.cache.Delete(leadsCacheKey)
	s.activities.Record(ctx, &domain.ActivityItem{
		Type:    domain.ActivityLeadCreated,
		Title:   fmt.Sprintf("Lead created: %s", created.OwnerName),
		ActorID: actorID,
		Metadata: map[string]any{
			"lead_id": created.ID,
		},
	})

	s.logger.Info("lead created",
		zap.String("lead_id", created.ID),
		zap.String("actor_id", actorID),
	)
	return created, nil
}

// ============================================================
// Update — PUT /v1/leads/{id}
// ============================================================

func (s *LeadService) Update(ctx context.Context, actorID, id string, req *domain.UpdateLeadRequest) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	updates, err := buildLeadUpdates(req)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	// Fetch the current status only when a transition may be logged.
	var oldStatus domain.LeadStatus
	if req.Status != nil {
		if current, err := s.store.GetLead(ctx, id); err == nil {
			oldStatus = current.Status
		}
	}

	updated, err := s.store.UpdateLead(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(leadsCacheKey)

	if req.Status != nil && oldStatus != "" && oldStatus != updated.Status {
		s.activities.Record(ctx, &domain.ActivityItem{
			Type:    domain.ActivityStatusChanged,
			Title:   fmt.Sprintf("Lead %s moved %s → %s", updated.OwnerName, oldStatus, updated.Status),
			ActorID: actorID,
			Metadata: map[string]any{
				"lead_id": updated.ID,
				"from":    string(oldStatus),
				"to":      string(updated.Status),
			},
		})
	} else {
		s.activities.Record(ctx, &domain.ActivityItem{
			Type:    domain.ActivityLeadUpdated,
			Title:   fmt.Sprintf("Lead updated: %s", updated.OwnerName),
			ActorID: actorID,
			Metadata: map[string]any{
				"lead_id": updated.ID,
			},
		})
	}

	return updated, nil
}

// ============================================================
// Delete — DELETE /v1/leads/{id}
// ============================================================

func (s *LeadService) Delete(ctx context.Context, actorID, id string) error {
	ctx, span := leadTracer.Start(ctx, "LeadService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", id))

	// 404 before delete so callers can distinguish missing from removed
	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.DeleteLead(ctx, id); err != nil {
		return err
	}

	s.cache.Delete(leadsCacheKey)
	s.activities.Record(ctx, &domain.ActivityItem{
		Type:    domain.ActivityLeadDeleted,
		Title:   fmt.Sprintf("Lead deleted: %s", lead.OwnerName),
		ActorID: actorID,
		Metadata: map[string]any{
			"lead_id": id,
		},
	})

	s.logger.Info("lead deleted",
		zap.String("lead_id", id),
		zap.String("actor_id", actorID),
	)
	return nil
}

// ============================================================
// Query — POST /v1/leads/query
// ============================================================

// Query runs the filter/sort engine over the (cached) collection.
func (s *LeadService) Query(ctx context.Context, req *domain.QueryLeadsRequest) (*domain.QueryLeadsResponse, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Query")
	defer span.End()

	leads, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered := leadfilter.Apply(leads, leadfilter.Query{
		Search:     req.Search,
		Status:     req.Status,
		Conditions: req.Conditions,
		SortKey:    req.SortKey,
	})

	span.SetAttributes(
		attribute.Int("leads.total", len(leads)),
		attribute.Int("leads.matched", len(filtered)),
	)

	return &domain.QueryLeadsResponse{
		Leads: filtered,
		Total: len(filtered),
	}, nil
}

// ============================================================
// Internal helpers
// ============================================================

func validateClassification(status domain.LeadStatus, temp domain.Temperature, occ domain.Occupancy, disp domain.Disposition) error {
	if status != "" && !domain.ValidStatus(status) {
		return &domain.ErrValidation{Field: "status", Message: "unknown status"}
	}
	if temp != "" && !domain.ValidTemperature(temp) {
		return &domain.ErrValidation{Field: "temperature", Message: "unknown temperature"}
	}
	if occ != "" && !domain.ValidOccupancy(occ) {
		return &domain.ErrValidation{Field: "occupancy", Message: "unknown occupancy"}
	}
	if disp != "" && !domain.ValidDisposition(disp) {
		return &domain.ErrValidation{Field: "disposition", Message: "unknown disposition"}
	}
	return nil
}

// buildLeadUpdates translates a partial update request into PostgREST
// patch columns. Nil pointers are omitted; set-but-empty strings clear
// the column.
func buildLeadUpdates(req *domain.UpdateLeadRequest) (map[string]any, error) {
	var (
		status domain.LeadStatus
		temp   domain.Temperature
		occ    domain.Occupancy
		disp   domain.Disposition
	)
	if req.Status != nil {
		status = *req.Status
		if status == "" {
			return nil, &domain.ErrValidation{Field: "status", Message: "status cannot be cleared"}
		}
	}
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.Occupancy != nil {
		occ = *req.Occupancy
	}
	if req.Disposition != nil {
		disp = *req.Disposition
	}
	if err := validateClassification(status, temp, occ, disp); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.OwnerName != nil {
		updates["owner_name"] = *req.OwnerName
	}
	if req.PropertyAddress != nil {
		updates["property_address"] = *req.PropertyAddress
	}
	if req.TaxID != nil {
		updates["tax_id"] = *req.TaxID
	}
	if req.LawsuitNumber != nil {
		updates["lawsuit_number"] = *req.LawsuitNumber
	}
	if req.Arrears != nil {
		updates["current_arrears"] = *req.Arrears
	}
	if req.Status != nil {
		updates["status"] = string(*req.Status)
	}
	if req.Temperature != nil {
		updates["temperature"] = string(*req.Temperature)
	}
	if req.Occupancy != nil {
		updates["occupancy"] = string(*req.Occupancy)
	}
	if req.Disposition != nil {
		updates["disposition"] = string(*req.Disposition)
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Heirs != nil {
		updates["heirs"] = req.Heirs
	}
	if req.Tags != nil {
		updates["tags"] = req.Tags
	}
	return updates, nil
}
