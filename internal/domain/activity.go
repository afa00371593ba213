package domain

import "time"

// Activity type tags written by the services. The backend accepts free-form
// types; these are the ones this service emits.
const (
	ActivityLeadCreated    = "lead_created"
	ActivityLeadUpdated    = "lead_updated"
	ActivityLeadDeleted    = "lead_deleted"
	ActivityLeadImported   = "lead_imported"
	ActivityStatusChanged  = "status_changed"
	ActivityCampaignCreate = "campaign_created"
	ActivityCallPlaced     = "call_placed"
	ActivitySMSSent        = "sms_sent"
)

// ActivityItem is an immutable audit record. Written best-effort on every
// mutating action; consumed only for display (timeline, feed).
type ActivityItem struct {
	ID          string         `json:"id,omitempty"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	ActorID     string         `json:"actor_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
}
