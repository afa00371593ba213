package service

import (
	"context"
	"fmt"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var commsTracer = otel.Tracer("service/comms")

// commsProvider names the (absent) telephony backend in responses and
// activity metadata.
const commsProvider = "mock"

// CommsService is the telephony boundary. It validates the target lead,
// records the intent in the activity feed and answers "queued" — an
// honest stub until a real provider is integrated.
type CommsService struct {
	leads      port.LeadStore
	activities *ActivityService
	logger     *zap.Logger
}

// NewCommsService creates a comms service.
func NewCommsService(leads port.LeadStore, activities *ActivityService, logger *zap.Logger) *CommsService {
	return &CommsService{
		leads:      leads,
		activities: activities,
		logger:     logger,
	}
}

// ============================================================
// Call — POST /v1/comms/call
// ============================================================

func (s *CommsService) Call(ctx context.Context, actorID string, req *domain.CallRequest) (*domain.CommResponse, error) {
	ctx, span := commsTracer.Start(ctx, "CommsService.Call")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", req.LeadID))

	lead, err := s.leads.GetLead(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.logger.Info("call intent queued",
		zap.String("comm_id", id),
		zap.String("lead_id", lead.ID),
		zap.String("actor_id", actorID),
	)

	s.activities.Record(ctx, &domain.ActivityItem{
		Type:    domain.ActivityCallPlaced,
		Title:   fmt.Sprintf("Call placed to %s", lead.OwnerName),
		ActorID: actorID,
		Metadata: map[string]any{
			"lead_id":  lead.ID,
			"comm_id":  id,
			"provider": commsProvider,
		},
	})

	return &domain.CommResponse{ID: id, Status: "queued", Provider: commsProvider}, nil
}

// ============================================================
// SMS — POST /v1/comms/sms
// ============================================================

func (s *CommsService) SMS(ctx context.Context, actorID string, req *domain.SMSRequest) (*domain.CommResponse, error) {
	ctx, span := commsTracer.Start(ctx, "CommsService.SMS")
	defer span.End()
	span.SetAttributes(attribute.String("lead.id", req.LeadID))

	lead, err := s.leads.GetLead(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	s.logger.Info("sms intent queued",
		zap.String("comm_id", id),
		zap.String("lead_id", lead.ID),
		zap.String("actor_id", actorID),
		zap.Int("message_len", len(req.Message)),
	)

	s.activities.Record(ctx, &domain.ActivityItem{
		Type:    domain.ActivitySMSSent,
		Title:   fmt.Sprintf("SMS sent to %s", lead.OwnerName),
		ActorID: actorID,
		Metadata: map[string]any{
			"lead_id":  lead.ID,
			"comm_id":  id,
			"provider": commsProvider,
		},
	})

	return &domain.CommResponse{ID: id, Status: "queued", Provider: commsProvider}, nil
}
