package service

import (
	"context"
	"fmt"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Admin user management — /v1/admin/users
// ============================================================

// ListUsers returns every profile, for the admin user list.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.ListUsers")
	defer span.End()

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// UpdateUserRole changes a user's access level. Existing sessions keep
// the old role claim until they expire, so refresh tokens are revoked to
// force a re-login with the new role.
func (s *AuthService) UpdateUserRole(ctx context.Context, actorID, userID string, req *domain.UpdateRoleRequest) (*domain.Profile, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.UpdateUserRole")
	defer span.End()

	if !domain.ValidRole(req.Role) {
		return nil, &domain.ErrValidation{Field: "role", Message: "unknown role"}
	}
	if req.Role == domain.RoleGuest {
		return nil, &domain.ErrValidation{Field: "role", Message: "guest is not an assignable role"}
	}
	if actorID == userID {
		return nil, &domain.ErrValidation{Field: "id", Message: "cannot change your own role"}
	}

	profile, err := s.store.UpdateProfile(ctx, userID, map[string]any{
		"role": string(req.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	_ = s.store.RevokeAllRefreshTokens(ctx, userID)

	s.logger.Info("user role updated",
		zap.String("actor_id", actorID),
		zap.String("user_id", userID),
		zap.String("role", string(req.Role)),
	)

	return profile, nil
}
