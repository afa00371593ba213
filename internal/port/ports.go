// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

// LeadStore defines all data operations for leads.
// Implemented by the Supabase adapter (or any other persistence layer).
type LeadStore interface {
	ListLeads(ctx context.Context) ([]domain.Lead, error)
	GetLead(ctx context.Context, id string) (*domain.Lead, error)
	CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	UpdateLead(ctx context.Context, id string, updates map[string]any) (*domain.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

// CampaignStore defines data operations for campaigns and their scoped
// leads.
type CampaignStore interface {
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	CreateCampaign(ctx context.Context, c *domain.Campaign) (*domain.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, updates map[string]any) (*domain.Campaign, error)
	DeleteCampaign(ctx context.Context, id string) error

	ListCampaignLeads(ctx context.Context, campaignID string) ([]domain.CampaignLead, error)
	CreateCampaignLead(ctx context.Context, lead *domain.CampaignLead) (*domain.CampaignLead, error)
	DeleteCampaignLead(ctx context.Context, campaignID, leadID string) error
}

// ActivityStore writes and reads the immutable audit feed. LogActivity
// goes through the backend's log_lead_activity RPC; ResetActivityLogs
// through reset_activity_logs.
type ActivityStore interface {
	ListActivities(ctx context.Context, page, pageSize int) ([]domain.ActivityItem, error)
	LogActivity(ctx context.Context, item *domain.ActivityItem) error
	ResetActivityLogs(ctx context.Context) error
}

// AuthStore defines all data operations for the authentication system.
type AuthStore interface {
	// Profiles
	GetProfileByID(ctx context.Context, userID string) (*domain.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error)

	// Registration
	CreateUser(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.RegisterResponse, error)

	// Credentials
	GetCredentials(ctx context.Context, userID string) (*domain.AuthCredential, error)
	UpdateCredentials(ctx context.Context, userID string, updates map[string]any) error

	// Refresh tokens
	StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}
