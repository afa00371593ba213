package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// recoveryTTL bounds how long a password-recovery link stays valid.
const recoveryTTL = 10 * time.Minute

// ============================================================
// PasswordResetRequest — POST /v1/auth/password/reset-request
// ============================================================

// PasswordResetRequest generates a recovery token pair for the account.
// The pair is meant to be delivered by email as query parameters on the
// recovery URL. The response never reveals whether the account exists.
func (s *AuthService) PasswordResetRequest(ctx context.Context, req *domain.PasswordResetRequestBody) (*domain.PasswordResetRequestResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.PasswordResetRequest")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	profile, err := s.store.GetProfileByEmail(ctx, email)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return &domain.PasswordResetRequestResponse{
				Message:     "if the email is registered, a recovery link has been sent",
				MaskedEmail: "***@***.com",
				ExpiresIn:   int(recoveryTTL.Seconds()),
			}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	recoveryAccess, err := s.signToken(profile.ID, profile.Role, "recovery", recoveryTTL)
	if err != nil {
		return nil, fmt.Errorf("sign recovery token: %w", err)
	}

	recoveryRefresh, recoveryHash, err := s.generateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate recovery refresh token: %w", err)
	}
	if err := s.store.StoreRefreshToken(ctx, profile.ID, recoveryHash, time.Now().Add(recoveryTTL)); err != nil {
		return nil, fmt.Errorf("store recovery token: %w", err)
	}

	// Mail delivery is not wired up in this deployment; the recovery link
	// is logged so an operator can relay it.
	s.logger.Info("password recovery link generated",
		zap.String("user_id", profile.ID),
		zap.String("recovery_url", fmt.Sprintf("/reset-password?access_token=%s&refresh_token=%s", recoveryAccess, recoveryRefresh)),
	)

	return &domain.PasswordResetRequestResponse{
		Message:     "if the email is registered, a recovery link has been sent",
		MaskedEmail: maskEmail(profile.Email),
		ExpiresIn:   int(recoveryTTL.Seconds()),
	}, nil
}

// ============================================================
// PasswordRecover — POST /v1/auth/password/recover
// ============================================================

// PasswordRecover completes the recovery flow. The access token from the
// recovery URL proves possession of the link; it must carry the recovery
// type claim, not a regular access claim.
func (s *AuthService) PasswordRecover(ctx context.Context, req *domain.PasswordRecoverRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.PasswordRecover")
	defer span.End()

	if req.AccessToken == "" {
		return &domain.ErrUnauthorized{Message: "missing recovery token"}
	}

	claims, err := s.parseToken(req.AccessToken)
	if err != nil {
		return err
	}
	if claims.Type != "recovery" {
		return &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateCredentials(ctx, claims.Sub, map[string]any{
		"password_hash":       string(hash),
		"failed_attempts":     0,
		"locked_until":        nil,
		"password_changed_at": time.Now().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}

	// Force re-login everywhere, including the recovery refresh token
	_ = s.store.RevokeAllRefreshTokens(ctx, claims.Sub)

	s.logger.Info("password recovered", zap.String("user_id", claims.Sub))
	return nil
}

// ============================================================
// ChangePassword — PUT /v1/auth/password
// ============================================================

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *domain.ChangePasswordRequest) error {
	ctx, span := authTracer.Start(ctx, "AuthService.ChangePassword")
	defer span.End()

	cred, err := s.store.GetCredentials(ctx, userID)
	if err != nil {
		return fmt.Errorf("get credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("password change: wrong current password",
			zap.String("user_id", userID),
		)
		return &domain.ErrUnauthorized{Message: "current password is incorrect"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.UpdateCredentials(ctx, userID, map[string]any{
		"password_hash":       string(hash),
		"password_changed_at": time.Now().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}

	// Revoke all refresh tokens (force re-login on other devices)
	_ = s.store.RevokeAllRefreshTokens(ctx, userID)

	s.logger.Info("password changed", zap.String("user_id", userID))
	return nil
}
