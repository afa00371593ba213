package service

import (
	"context"
	"fmt"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var campaignTracer = otel.Tracer("service/campaign")

// CampaignService owns campaign CRUD and the campaign-scoped lead list.
type CampaignService struct {
	store      port.CampaignStore
	activities *ActivityService
	logger     *zap.Logger
}

// NewCampaignService creates a campaign service.
func NewCampaignService(store port.CampaignStore, activities *ActivityService, logger *zap.Logger) *CampaignService {
	return &CampaignService{
		store:      store,
		activities: activities,
		logger:     logger,
	}
}

// ============================================================
// Campaign CRUD
// ============================================================

func (s *CampaignService) List(ctx context.Context) ([]domain.Campaign, error) {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.List")
	defer span.End()

	return s.store.ListCampaigns(ctx)
}

func (s *CampaignService) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	return s.store.GetCampaign(ctx, id)
}

func (s *CampaignService) Create(ctx context.Context, actorID string, req *domain.CreateCampaignRequest) (*domain.Campaign, error) {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.Create")
	defer span.End()

	status := req.Status
	if status == "" {
		status = domain.CampaignDraft
	}
	if !validCampaignStatus(status) {
		return nil, &domain.ErrValidation{Field: "status", Message: "unknown campaign status"}
	}

	created, err := s.store.CreateCampaign(ctx, &domain.Campaign{
		Name:        req.Name,
		Description: req.Description,
		Status:      status,
	})
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}

	s.activities.Record(ctx, &domain.ActivityItem{
		Type:    domain.ActivityCampaignCreate,
		Title:   fmt.Sprintf("Campaign created: %s", created.Name),
		ActorID: actorID,
		Metadata: map[string]any{
			"campaign_id": created.ID,
		},
	})

	s.logger.Info("campaign created",
		zap.String("campaign_id", created.ID),
		zap.String("actor_id", actorID),
	)
	return created, nil
}

func (s *CampaignService) Update(ctx context.Context, id string, req *domain.UpdateCampaignRequest) (*domain.Campaign, error) {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !validCampaignStatus(*req.Status) {
			return nil, &domain.ErrValidation{Field: "status", Message: "unknown campaign status"}
		}
		updates["status"] = string(*req.Status)
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.store.UpdateCampaign(ctx, id, updates)
}

func (s *CampaignService) Delete(ctx context.Context, actorID, id string) error {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", id))

	if _, err := s.store.GetCampaign(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCampaign(ctx, id); err != nil {
		return err
	}

	s.logger.Info("campaign deleted",
		zap.String("campaign_id", id),
		zap.String("actor_id", actorID),
	)
	return nil
}

// ============================================================
// Campaign-scoped leads
// ============================================================

func (s *CampaignService) ListLeads(ctx context.Context, campaignID string) ([]domain.CampaignLead, error) {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.ListLeads")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", campaignID))

	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.store.ListCampaignLeads(ctx, campaignID)
}

func (s *CampaignService) AddLead(ctx context.Context, actorID, campaignID string, req *domain.CreateLeadRequest) (*domain.CampaignLead, error) {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.AddLead")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", campaignID))

	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	created, err := s.store.CreateCampaignLead(ctx, &domain.CampaignLead{
		CampaignID:      campaignID,
		OwnerName:       req.OwnerName,
		PropertyAddress: req.PropertyAddress,
		TaxID:           req.TaxID,
		LawsuitNumber:   req.LawsuitNumber,
		Arrears:         req.Arrears,
		Email:           req.Email,
		Phone:           req.Phone,
		Notes:           req.Notes,
		Tags:            req.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("create campaign lead: %w", err)
	}

	s.logger.Info("campaign lead added",
		zap.String("campaign_id", campaignID),
		zap.String("lead_id", created.ID),
		zap.String("actor_id", actorID),
	)
	return created, nil
}

func (s *CampaignService) RemoveLead(ctx context.Context, campaignID, leadID string) error {
	ctx, span := campaignTracer.Start(ctx, "CampaignService.RemoveLead")
	defer span.End()
	span.SetAttributes(
		attribute.String("campaign.id", campaignID),
		attribute.String("lead.id", leadID),
	)

	return s.store.DeleteCampaignLead(ctx, campaignID, leadID)
}

func validCampaignStatus(s domain.CampaignStatus) bool {
	switch s {
	case domain.CampaignDraft, domain.CampaignActive, domain.CampaignPaused, domain.CampaignArchived:
		return true
	}
	return false
}
