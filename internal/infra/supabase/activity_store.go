package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// ActivityStore implementation — lead_activities table + RPCs
// ============================================================

type activityRow struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"activity_type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	ActorID     string         `json:"actor_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   string         `json:"created_at,omitempty"`
}

func (r *activityRow) toDomain() domain.ActivityItem {
	return domain.ActivityItem{
		ID:          r.ID,
		Type:        r.Type,
		Title:       r.Title,
		Description: r.Description,
		ActorID:     r.ActorID,
		Metadata:    r.Metadata,
		CreatedAt:   parseTimestamp(r.CreatedAt),
	}
}

// ListActivities returns a page of the feed, newest first. page is
// 1-based.
func (c *Client) ListActivities(ctx context.Context, page, pageSize int) ([]domain.ActivityItem, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListActivities")
	defer span.End()
	span.SetAttributes(attribute.Int("page", page), attribute.Int("page_size", pageSize))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	var items []domain.ActivityItem

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("lead_activities?order=created_at.desc&limit=%d&offset=%d", pageSize, offset)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			items = []domain.ActivityItem{}
			return nil
		}

		var rows []activityRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode activities: %w", err)
		}
		items = make([]domain.ActivityItem, 0, len(rows))
		for i := range rows {
			items = append(items, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/lead_activities", Err: err}
	}

	span.SetAttributes(attribute.Int("activities.count", len(items)))
	return items, nil
}

// LogActivity appends one audit record through the log_lead_activity RPC,
// which stamps created_at server-side and enforces append-only access.
func (c *Client) LogActivity(ctx context.Context, item *domain.ActivityItem) error {
	ctx, span := tracer.Start(ctx, "Supabase.LogActivity")
	defer span.End()
	span.SetAttributes(attribute.String("activity.type", item.Type))

	params := map[string]any{
		"p_activity_type": item.Type,
		"p_title":         item.Title,
	}
	if item.Description != "" {
		params["p_description"] = item.Description
	}
	if item.ActorID != "" {
		params["p_actor_id"] = item.ActorID
	}
	if len(item.Metadata) > 0 {
		params["p_metadata"] = item.Metadata
	}

	if _, err := c.doRPC(ctx, "log_lead_activity", params); err != nil {
		return &domain.ErrExternalService{Service: "supabase/lead_activities", Err: err}
	}
	return nil
}

// ResetActivityLogs truncates the feed through the reset_activity_logs
// RPC. Admin-only; the handler enforces the role before calling.
func (c *Client) ResetActivityLogs(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.ResetActivityLogs")
	defer span.End()

	if _, err := c.doRPC(ctx, "reset_activity_logs", map[string]any{}); err != nil {
		return &domain.ErrExternalService{Service: "supabase/lead_activities", Err: err}
	}
	return nil
}
