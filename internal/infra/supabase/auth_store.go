package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// AuthStore implementation — profiles, auth_credentials,
// auth_refresh_tokens tables
// ============================================================

type profileRow struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func (r *profileRow) toDomain() domain.Profile {
	return domain.Profile{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        domain.Role(r.Role),
		CreatedAt:   parseTimestamp(r.CreatedAt),
		UpdatedAt:   parseTimestamp(r.UpdatedAt),
	}
}

type credentialRow struct {
	ID                string `json:"id"`
	UserID            string `json:"user_id"`
	PasswordHash      string `json:"password_hash"`
	FailedAttempts    int    `json:"failed_attempts"`
	LockedUntil       string `json:"locked_until,omitempty"`
	LastLoginAt       string `json:"last_login_at,omitempty"`
	PasswordChangedAt string `json:"password_changed_at,omitempty"`
}

func (r *credentialRow) toDomain() domain.AuthCredential {
	cred := domain.AuthCredential{
		ID:             r.ID,
		UserID:         r.UserID,
		PasswordHash:   r.PasswordHash,
		FailedAttempts: r.FailedAttempts,
	}
	if t := parseTimestamp(r.LockedUntil); !t.IsZero() {
		cred.LockedUntil = &t
	}
	if t := parseTimestamp(r.LastLoginAt); !t.IsZero() {
		cred.LastLoginAt = &t
	}
	if t := parseTimestamp(r.PasswordChangedAt); !t.IsZero() {
		cred.PasswordChangedAt = &t
	}
	return cred
}

type refreshTokenRow struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	TokenHash string `json:"token_hash"`
	ExpiresAt string `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
}

func (r *refreshTokenRow) toDomain() domain.AuthRefreshToken {
	return domain.AuthRefreshToken{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: parseTimestamp(r.ExpiresAt),
		Revoked:   r.Revoked,
	}
}

// ------------------------------------------------------------
// Profiles
// ------------------------------------------------------------

// GetProfileByID fetches a user's role profile.
func (c *Client) GetProfileByID(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfileByID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("profiles?id=eq.%s&limit=1", userID)
	return c.getProfile(ctx, path, userID)
}

// GetProfileByEmail fetches a user's role profile by email.
func (c *Client) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfileByEmail")
	defer span.End()

	path := fmt.Sprintf("profiles?email=eq.%s&limit=1", url.QueryEscape(email))
	return c.getProfile(ctx, path, email)
}

func (c *Client) getProfile(ctx context.Context, path, ref string) (*domain.Profile, error) {
	var profile *domain.Profile

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "profile", ID: ref}
		}

		var rows []profileRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode profile: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "profile", ID: ref}
		}
		p := rows[0].toDomain()
		profile = &p
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	return profile, nil
}

// ListProfiles fetches every user profile, for the admin user list.
func (c *Client) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProfiles")
	defer span.End()

	var profiles []domain.Profile

	err := c.execute(ctx, func() error {
		body, err := c.doRequest(ctx, http.MethodGet, "profiles?order=created_at.asc")
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			profiles = []domain.Profile{}
			return nil
		}

		var rows []profileRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode profiles: %w", err)
		}
		profiles = make([]domain.Profile, 0, len(rows))
		for i := range rows {
			profiles = append(profiles, rows[i].toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	span.SetAttributes(attribute.Int("profiles.count", len(profiles)))
	return profiles, nil
}

// UpdateProfile patches profile columns (display_name, role).
func (c *Client) UpdateProfile(ctx context.Context, userID string, updates map[string]any) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("profiles?id=eq.%s", userID)
	body, err := c.doPatch(ctx, path, updates, true)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID}
	}

	var rows []profileRow
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil, &domain.ErrExternalService{
			Service: "supabase/profiles",
			Err:     fmt.Errorf("decode updated profile: %w", err),
		}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

// ------------------------------------------------------------
// Registration
// ------------------------------------------------------------

// CreateUser inserts the profile and credential rows for a new account.
// The user id is minted here; a duplicate email surfaces as ErrConflict.
func (c *Client) CreateUser(ctx context.Context, req *domain.RegisterRequest, passwordHash string) (*domain.RegisterResponse, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUser")
	defer span.End()

	if _, err := c.GetProfileByEmail(ctx, req.Email); err == nil {
		return nil, &domain.ErrConflict{Message: "an account with this email already exists"}
	} else {
		var notFound *domain.ErrNotFound
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	role := req.Role
	if role == "" {
		role = domain.RoleEmployee
	}

	userID := uuid.NewString()
	profile := map[string]any{
		"id":           userID,
		"email":        req.Email,
		"display_name": req.DisplayName,
		"role":         string(role),
	}
	if _, err := c.doPost(ctx, "profiles", profile); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/profiles", Err: err}
	}

	cred := map[string]any{
		"id":            uuid.NewString(),
		"user_id":       userID,
		"password_hash": passwordHash,
	}
	if _, err := c.doPost(ctx, "auth_credentials", cred); err != nil {
		// Roll back the orphaned profile so the email can be retried.
		_ = c.doDelete(ctx, fmt.Sprintf("profiles?id=eq.%s", userID))
		return nil, &domain.ErrExternalService{Service: "supabase/auth_credentials", Err: err}
	}

	return &domain.RegisterResponse{
		UserID:  userID,
		Email:   req.Email,
		Role:    role,
		Message: "account created",
	}, nil
}

// ------------------------------------------------------------
// Credentials
// ------------------------------------------------------------

// GetCredentials fetches the stored credential row for a user.
func (c *Client) GetCredentials(ctx context.Context, userID string) (*domain.AuthCredential, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var cred *domain.AuthCredential

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("auth_credentials?user_id=eq.%s&limit=1", userID)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "credentials", ID: userID}
		}

		var rows []credentialRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode credentials: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "credentials", ID: userID}
		}
		cr := rows[0].toDomain()
		cred = &cr
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/auth_credentials", Err: err}
	}

	return cred, nil
}

// UpdateCredentials patches credential columns (password_hash,
// failed_attempts, locked_until, last_login_at, password_changed_at).
func (c *Client) UpdateCredentials(ctx context.Context, userID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCredentials")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("auth_credentials?user_id=eq.%s", userID)
	if _, err := c.doPatch(ctx, path, updates, false); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth_credentials", Err: err}
	}
	return nil
}

// ------------------------------------------------------------
// Refresh tokens
// ------------------------------------------------------------

// StoreRefreshToken persists a hashed refresh token.
func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreRefreshToken")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	data := map[string]any{
		"id":         uuid.NewString(),
		"user_id":    userID,
		"token_hash": tokenHash,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"revoked":    false,
	}
	if _, err := c.doPost(ctx, "auth_refresh_tokens", data); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth_refresh_tokens", Err: err}
	}
	return nil
}

// GetRefreshToken looks a refresh token up by its hash.
func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.AuthRefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetRefreshToken")
	defer span.End()

	var token *domain.AuthRefreshToken

	err := c.execute(ctx, func() error {
		path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s&limit=1", tokenHash)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}
		if body == nil || string(body) == "[]" {
			return &domain.ErrNotFound{Resource: "refresh token", ID: "given hash"}
		}

		var rows []refreshTokenRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode refresh token: %w", err)
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "refresh token", ID: "given hash"}
		}
		t := rows[0].toDomain()
		token = &t
		return nil
	})
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, notFound
		}
		return nil, &domain.ErrExternalService{Service: "supabase/auth_refresh_tokens", Err: err}
	}

	return token, nil
}

// RevokeRefreshToken marks one token revoked.
func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeRefreshToken")
	defer span.End()

	path := fmt.Sprintf("auth_refresh_tokens?token_hash=eq.%s", tokenHash)
	if _, err := c.doPatch(ctx, path, map[string]any{"revoked": true}, false); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth_refresh_tokens", Err: err}
	}
	return nil
}

// RevokeAllRefreshTokens revokes every live token for a user, ending all
// sessions after a password change or role downgrade.
func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.RevokeAllRefreshTokens")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := fmt.Sprintf("auth_refresh_tokens?user_id=eq.%s&revoked=eq.false", userID)
	if _, err := c.doPatch(ctx, path, map[string]any{"revoked": true}, false); err != nil {
		return &domain.ErrExternalService{Service: "supabase/auth_refresh_tokens", Err: err}
	}
	return nil
}
