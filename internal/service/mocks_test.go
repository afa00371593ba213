package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
)

func asErr[T error](err error, target *T) bool {
	return errors.As(err, target)
}

// --- Mocks ---

type mockLeadStore struct {
	mu      sync.Mutex
	leads   []domain.Lead
	lead    *domain.Lead
	err     error
	created []domain.Lead

	createFn func(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	deleted  []string
	updates  map[string]any
}

func (m *mockLeadStore) ListLeads(_ context.Context) ([]domain.Lead, error) {
	return m.leads, m.err
}

func (m *mockLeadStore) GetLead(_ context.Context, id string) (*domain.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.lead == nil {
		return nil, &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	return m.lead, nil
}

func (m *mockLeadStore) CreateLead(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if m.createFn != nil {
		return m.createFn(ctx, lead)
	}
	if m.err != nil {
		return nil, m.err
	}
	created := *lead
	created.ID = "lead-" + lead.OwnerName
	m.mu.Lock()
	m.created = append(m.created, created)
	m.mu.Unlock()
	return &created, nil
}

func (m *mockLeadStore) UpdateLead(_ context.Context, id string, updates map[string]any) (*domain.Lead, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.updates = updates
	if m.lead == nil {
		return nil, &domain.ErrNotFound{Resource: "lead", ID: id}
	}
	updated := *m.lead
	if v, ok := updates["status"].(string); ok {
		updated.Status = domain.LeadStatus(v)
	}
	return &updated, nil
}

func (m *mockLeadStore) DeleteLead(_ context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockCampaignStore struct {
	campaigns []domain.Campaign
	campaign  *domain.Campaign
	leads     []domain.CampaignLead
	err       error

	createLeadFn func(ctx context.Context, lead *domain.CampaignLead) (*domain.CampaignLead, error)
}

func (m *mockCampaignStore) ListCampaigns(_ context.Context) ([]domain.Campaign, error) {
	return m.campaigns, m.err
}

func (m *mockCampaignStore) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.campaign == nil {
		return nil, &domain.ErrNotFound{Resource: "campaign", ID: id}
	}
	return m.campaign, nil
}

func (m *mockCampaignStore) CreateCampaign(_ context.Context, c *domain.Campaign) (*domain.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	created := *c
	created.ID = "campaign-1"
	return &created, nil
}

func (m *mockCampaignStore) UpdateCampaign(_ context.Context, id string, _ map[string]any) (*domain.Campaign, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.campaign == nil {
		return nil, &domain.ErrNotFound{Resource: "campaign", ID: id}
	}
	return m.campaign, nil
}

func (m *mockCampaignStore) DeleteCampaign(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCampaignStore) ListCampaignLeads(_ context.Context, _ string) ([]domain.CampaignLead, error) {
	return m.leads, m.err
}

func (m *mockCampaignStore) CreateCampaignLead(ctx context.Context, lead *domain.CampaignLead) (*domain.CampaignLead, error) {
	if m.createLeadFn != nil {
		return m.createLeadFn(ctx, lead)
	}
	if m.err != nil {
		return nil, m.err
	}
	created := *lead
	created.ID = "cl-1"
	return &created, nil
}

func (m *mockCampaignStore) DeleteCampaignLead(_ context.Context, _, _ string) error {
	return m.err
}

type mockActivityStore struct {
	mu     sync.Mutex
	items  []domain.ActivityItem
	logged []domain.ActivityItem
	err    error
	logErr error
}

func (m *mockActivityStore) ListActivities(_ context.Context, _, _ int) ([]domain.ActivityItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items, m.err
}

func (m *mockActivityStore) LogActivity(_ context.Context, item *domain.ActivityItem) error {
	if m.logErr != nil {
		return m.logErr
	}
	m.mu.Lock()
	m.logged = append(m.logged, *item)
	m.mu.Unlock()
	return nil
}

func (m *mockActivityStore) ResetActivityLogs(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logged = nil
	return m.err
}

func (m *mockActivityStore) loggedTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.logged))
	for _, item := range m.logged {
		types = append(types, item.Type)
	}
	return types
}

type mockAuthStore struct {
	mu sync.Mutex

	profile    *domain.Profile
	profileErr error
	profiles   []domain.Profile

	cred    *domain.AuthCredential
	credErr error

	refreshToken *domain.AuthRefreshToken
	refreshErr   error

	credUpdates   map[string]any
	storedTokens  []string
	revokedTokens []string
	revokedUsers  []string

	createUserResp *domain.RegisterResponse
	createUserErr  error
}

func (m *mockAuthStore) GetProfileByID(_ context.Context, userID string) (*domain.Profile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	if m.profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}
	return m.profile, nil
}

func (m *mockAuthStore) GetProfileByEmail(_ context.Context, email string) (*domain.Profile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	if m.profile == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: email}
	}
	return m.profile, nil
}

func (m *mockAuthStore) ListProfiles(_ context.Context) ([]domain.Profile, error) {
	return m.profiles, m.profileErr
}

func (m *mockAuthStore) UpdateProfile(_ context.Context, userID string, updates map[string]any) (*domain.Profile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	updated := *m.profile
	if v, ok := updates["role"].(string); ok {
		updated.Role = domain.Role(v)
	}
	return &updated, nil
}

func (m *mockAuthStore) CreateUser(_ context.Context, req *domain.RegisterRequest, _ string) (*domain.RegisterResponse, error) {
	if m.createUserErr != nil {
		return nil, m.createUserErr
	}
	if m.createUserResp != nil {
		return m.createUserResp, nil
	}
	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	return &domain.RegisterResponse{UserID: "user-1", Email: req.Email, Role: role}, nil
}

func (m *mockAuthStore) GetCredentials(_ context.Context, userID string) (*domain.AuthCredential, error) {
	if m.credErr != nil {
		return nil, m.credErr
	}
	if m.cred == nil {
		return nil, &domain.ErrNotFound{Resource: "credentials", ID: userID}
	}
	return m.cred, nil
}

func (m *mockAuthStore) UpdateCredentials(_ context.Context, _ string, updates map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credUpdates = updates
	return nil
}

func (m *mockAuthStore) StoreRefreshToken(_ context.Context, _, tokenHash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storedTokens = append(m.storedTokens, tokenHash)
	return nil
}

func (m *mockAuthStore) GetRefreshToken(_ context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	if m.refreshToken == nil {
		return nil, &domain.ErrNotFound{Resource: "refresh token", ID: tokenHash}
	}
	return m.refreshToken, nil
}

func (m *mockAuthStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokedTokens = append(m.revokedTokens, tokenHash)
	return nil
}

func (m *mockAuthStore) RevokeAllRefreshTokens(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokedUsers = append(m.revokedUsers, userID)
	return nil
}
