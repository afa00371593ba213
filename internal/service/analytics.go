package service

import (
	"context"
	"fmt"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var analyticsTracer = otel.Tracer("service/analytics")

// AnalyticsService aggregates lead counts for the dashboard and exposes
// the service usage counters to the admin analytics page.
type AnalyticsService struct {
	leads     *LeadService
	campaigns *CampaignService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(leads *LeadService, campaigns *CampaignService, metrics *observability.Metrics, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		leads:     leads,
		campaigns: campaigns,
		metrics:   metrics,
		logger:    logger,
	}
}

// Dashboard builds the lead summary from the (cached) collection.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*domain.DashboardSummary, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.Dashboard")
	defer span.End()

	leads, err := s.leads.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	byStatus := make(map[domain.LeadStatus]int)
	totalArrears := 0.0
	for i := range leads {
		byStatus[leads[i].Status]++
		if leads[i].Arrears != nil {
			totalArrears += *leads[i].Arrears
		}
	}

	campaigns, err := s.campaigns.List(ctx)
	if err != nil {
		// Campaigns are a secondary aggregate; a backend hiccup there
		// should not blank the whole dashboard.
		s.logger.Warn("dashboard: campaign count unavailable", zap.Error(err))
		campaigns = nil
	}

	usage := s.metrics.UsageSnapshot()

	return &domain.DashboardSummary{
		TotalLeads:    len(leads),
		ByStatus:      byStatus,
		TotalArrears:  totalArrears,
		Campaigns:     len(campaigns),
		RecentImports: usage.ImportBatches,
	}, nil
}

// Usage returns the raw counter snapshot for admin analytics.
func (s *AnalyticsService) Usage(ctx context.Context) *domain.UsageSnapshot {
	_, span := analyticsTracer.Start(ctx, "AnalyticsService.Usage")
	defer span.End()

	return s.metrics.UsageSnapshot()
}
