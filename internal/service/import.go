package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/infra/resilience"
	"github.com/calder/taxlead-crm-go/internal/leadcsv"
	"github.com/calder/taxlead-crm-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var importTracer = otel.Tracer("service/import")

// previewSampleSize is how many normalized records a preview returns.
const previewSampleSize = 5

// ImportService runs the CSV import pipeline: parse, auto-map (with
// caller overrides), gate on required fields, normalize, then fan the
// rows out to the backend with bounded concurrency.
type ImportService struct {
	leads      port.LeadStore
	campaigns  port.CampaignStore
	cache      port.Cache[[]domain.Lead]
	activities *ActivityService
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger

	// One import per user at a time — the server-side analog of the
	// client's disabled import button.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewImportService creates an import service. maxConcurrency bounds
// parallel row submissions per batch.
func NewImportService(leads port.LeadStore, campaigns port.CampaignStore, cache port.Cache[[]domain.Lead], activities *ActivityService, maxConcurrency int, metrics *observability.Metrics, logger *zap.Logger) *ImportService {
	if maxConcurrency < 1 {
		maxConcurrency = 4
	}
	return &ImportService{
		leads:      leads,
		campaigns:  campaigns,
		cache:      cache,
		activities: activities,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
		metrics:    metrics,
		logger:     logger,
		inFlight:   make(map[string]struct{}),
	}
}

// ============================================================
// Preview — POST /v1/leads/import/preview
// ============================================================

// Preview parses and auto-maps without submitting anything, so the
// caller can inspect and adjust the mapping before committing.
func (s *ImportService) Preview(ctx context.Context, req *domain.ImportRequest) (*domain.ImportPreview, error) {
	_, span := importTracer.Start(ctx, "ImportService.Preview")
	defer span.End()

	parsed, mapping, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	records := leadcsv.Normalize(parsed, mapping)
	sample := records
	if len(sample) > previewSampleSize {
		sample = sample[:previewSampleSize]
	}

	return &domain.ImportPreview{
		Headers:       parsed.Headers,
		Mapping:       mapping,
		RequiredOK:    mapping.HasRequiredFields(),
		RowCount:      len(parsed.Rows),
		SampleRecords: sample,
	}, nil
}

// ============================================================
// Import — POST /v1/leads/import
// ============================================================

func (s *ImportService) Import(ctx context.Context, actorID string, req *domain.ImportRequest) (*domain.ImportResult, error) {
	ctx, span := importTracer.Start(ctx, "ImportService.Import")
	defer span.End()

	if err := s.acquire(actorID); err != nil {
		return nil, err
	}
	defer s.release(actorID)

	records, err := s.normalizeGated(req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("import.rows", len(records)))

	result := s.submit(ctx, records, func(ctx context.Context, lead *domain.Lead) error {
		_, err := s.leads.CreateLead(ctx, lead)
		return err
	})

	s.cache.Delete(leadsCacheKey)
	s.finish(ctx, actorID, "", result)

	if result.Imported == 0 && result.Submitted > 0 {
		return nil, &domain.ErrImportFailed{
			Rows: result.Submitted,
			Err:  fmt.Errorf("%s", result.Errors[0].Error),
		}
	}
	return result, nil
}

// ============================================================
// ImportToCampaign — POST /v1/campaigns/{id}/leads/import
// ============================================================

func (s *ImportService) ImportToCampaign(ctx context.Context, actorID, campaignID string, req *domain.ImportRequest) (*domain.ImportResult, error) {
	ctx, span := importTracer.Start(ctx, "ImportService.ImportToCampaign")
	defer span.End()
	span.SetAttributes(attribute.String("campaign.id", campaignID))

	// Missing campaign fails the whole batch up front
	if _, err := s.campaigns.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}

	if err := s.acquire(actorID); err != nil {
		return nil, err
	}
	defer s.release(actorID)

	records, err := s.normalizeGated(req)
	if err != nil {
		return nil, err
	}

	result := s.submit(ctx, records, func(ctx context.Context, lead *domain.Lead) error {
		_, err := s.campaigns.CreateCampaignLead(ctx, &domain.CampaignLead{
			CampaignID:      campaignID,
			OwnerName:       lead.OwnerName,
			PropertyAddress: lead.PropertyAddress,
			TaxID:           lead.TaxID,
			LawsuitNumber:   lead.LawsuitNumber,
			Arrears:         lead.Arrears,
			Email:           lead.Email,
			Phone:           lead.Phone,
			Notes:           lead.Notes,
			Tags:            lead.Tags,
		})
		return err
	})

	s.finish(ctx, actorID, campaignID, result)

	if result.Imported == 0 && result.Submitted > 0 {
		return nil, &domain.ErrImportFailed{
			Rows: result.Submitted,
			Err:  fmt.Errorf("%s", result.Errors[0].Error),
		}
	}
	return result, nil
}

// ============================================================
// Pipeline internals
// ============================================================

// prepare parses the CSV and merges caller overrides onto the
// auto-mapping. An override with an empty value un-maps the column.
func (s *ImportService) prepare(req *domain.ImportRequest) (*leadcsv.Parsed, leadcsv.Mapping, error) {
	parsed, err := leadcsv.Parse(req.CSV)
	if err != nil {
		return nil, nil, err
	}

	mapping := leadcsv.AutoMap(parsed.Headers)
	for header, field := range req.Mapping {
		if field == "" {
			delete(mapping, header)
			continue
		}
		mapping[header] = field
	}
	return parsed, mapping, nil
}

func (s *ImportService) normalizeGated(req *domain.ImportRequest) ([]domain.Lead, error) {
	parsed, mapping, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	if !mapping.HasRequiredFields() {
		return nil, &domain.ErrValidation{
			Field:   "mapping",
			Message: "at least one column must map to owner name and one to property address",
		}
	}
	return leadcsv.Normalize(parsed, mapping), nil
}

// submit fans rows out to the backend. Row errors are collected, never
// short-circuited: one bad row must not sink the batch.
func (s *ImportService) submit(ctx context.Context, records []domain.Lead, create func(context.Context, *domain.Lead) error) *domain.ImportResult {
	var (
		mu       sync.Mutex
		rowErrs  []domain.ImportRowError
		imported int
	)

	g, gctx := errgroup.WithContext(ctx)
	for i := range records {
		i := i
		g.Go(func() error {
			if err := s.bulkhead.Acquire(gctx); err != nil {
				mu.Lock()
				rowErrs = append(rowErrs, domain.ImportRowError{Row: i + 1, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			defer s.bulkhead.Release()

			if err := create(gctx, &records[i]); err != nil {
				s.logger.Warn("import: row submission failed",
					zap.Int("row", i+1),
					zap.String("owner", records[i].OwnerName),
					zap.Error(err),
				)
				mu.Lock()
				rowErrs = append(rowErrs, domain.ImportRowError{Row: i + 1, Error: err.Error()})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			imported++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(rowErrs, func(a, b int) bool { return rowErrs[a].Row < rowErrs[b].Row })

	return &domain.ImportResult{
		Submitted: len(records),
		Imported:  imported,
		Failed:    len(rowErrs),
		Errors:    rowErrs,
	}
}

func (s *ImportService) finish(ctx context.Context, actorID, campaignID string, result *domain.ImportResult) {
	outcome := "completed"
	if result.Imported == 0 && result.Submitted > 0 {
		outcome = "failed"
	}
	s.metrics.RecordImport(outcome, result.Submitted, result.Failed)

	meta := map[string]any{
		"submitted": result.Submitted,
		"imported":  result.Imported,
		"failed":    result.Failed,
	}
	if campaignID != "" {
		meta["campaign_id"] = campaignID
	}
	s.activities.Record(ctx, &domain.ActivityItem{
		Type:     domain.ActivityLeadImported,
		Title:    fmt.Sprintf("Imported %d of %d leads", result.Imported, result.Submitted),
		ActorID:  actorID,
		Metadata: meta,
	})

	s.logger.Info("import batch finished",
		zap.String("actor_id", actorID),
		zap.String("outcome", outcome),
		zap.Int("submitted", result.Submitted),
		zap.Int("imported", result.Imported),
		zap.Int("failed", result.Failed),
	)
}

func (s *ImportService) acquire(actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[actorID]; busy {
		return &domain.ErrConflict{Message: "an import is already in progress for this user"}
	}
	s.inFlight[actorID] = struct{}{}
	return nil
}

func (s *ImportService) release(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, actorID)
}
