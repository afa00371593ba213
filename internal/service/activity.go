package service

import (
	"context"
	"fmt"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var activityTracer = otel.Tracer("service/activity")

// ActivityService owns the audit feed: best-effort writes on every
// mutating action, paged reads, the admin reset, and the push channel.
type ActivityService struct {
	store   port.ActivityStore
	watcher *FeedWatcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewActivityService creates an activity service. watcher may be nil in
// tests; Record then skips the push notification.
func NewActivityService(store port.ActivityStore, watcher *FeedWatcher, metrics *observability.Metrics, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		store:   store,
		watcher: watcher,
		metrics: metrics,
		logger:  logger,
	}
}

// ============================================================
// List — GET /v1/activities
// ============================================================

func (s *ActivityService) List(ctx context.Context, page, pageSize int) ([]domain.ActivityItem, error) {
	ctx, span := activityTracer.Start(ctx, "ActivityService.List")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page))

	items, err := s.store.ListActivities(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return items, nil
}

// ============================================================
// Record — best-effort write
// ============================================================

// Record writes one audit item. Failures are logged and swallowed; an
// audit write must never block or fail the action it describes.
func (s *ActivityService) Record(ctx context.Context, item *domain.ActivityItem) {
	ctx, span := activityTracer.Start(ctx, "ActivityService.Record")
	defer span.End()
	span.SetAttributes(attribute.String("activity.type", item.Type))

	if err := s.store.LogActivity(ctx, item); err != nil {
		s.logger.Warn("activity log write failed",
			zap.String("type", item.Type),
			zap.String("title", item.Title),
			zap.Error(err),
		)
		return
	}

	s.metrics.IncrActivity(item.Type)
	if s.watcher != nil {
		s.watcher.Invalidate()
	}
}

// ============================================================
// Reset — POST /v1/admin/activities/reset
// ============================================================

func (s *ActivityService) Reset(ctx context.Context, actorID string) error {
	ctx, span := activityTracer.Start(ctx, "ActivityService.Reset")
	defer span.End()

	if err := s.store.ResetActivityLogs(ctx); err != nil {
		return fmt.Errorf("reset activity logs: %w", err)
	}

	s.logger.Info("activity feed reset", zap.String("actor_id", actorID))
	if s.watcher != nil {
		s.watcher.Invalidate()
	}
	return nil
}

// Subscribe returns a channel of feed snapshots plus a cancel function.
// Nil watcher (tests) yields a closed channel.
func (s *ActivityService) Subscribe() (<-chan []domain.ActivityItem, func()) {
	if s.watcher == nil {
		ch := make(chan []domain.ActivityItem)
		close(ch)
		return ch, func() {}
	}
	return s.watcher.Subscribe()
}
