package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(store *mockAuthStore) *service.AuthService {
	return service.NewAuthService(store, "test-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

func TestRegister_RejectsGuestRole(t *testing.T) {
	svc := newAuthService(&mockAuthStore{})

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:       "new@example.com",
		DisplayName: "New User",
		Password:    "password123",
		Role:        domain.RoleGuest,
	})

	var verr *domain.ErrValidation
	if err == nil || !asErr(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegister_RejectsUnknownRole(t *testing.T) {
	svc := newAuthService(&mockAuthStore{})

	_, err := svc.Register(context.Background(), &domain.RegisterRequest{
		Email:       "new@example.com",
		DisplayName: "New User",
		Password:    "password123",
		Role:        domain.Role("Superuser"),
	})

	var verr *domain.ErrValidation
	if err == nil || !asErr(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	store := &mockAuthStore{
		profile: &domain.Profile{ID: "user-1", Email: "ana@example.com", Role: domain.RoleAdmin, DisplayName: "Ana"},
		cred:    &domain.AuthCredential{UserID: "user-1", PasswordHash: hashPassword(t, "correct-horse")},
	}
	svc := newAuthService(store)

	resp, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "Ana@Example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if resp.Role != domain.RoleAdmin {
		t.Errorf("expected role Admin, got %s", resp.Role)
	}
	if resp.LandingRoute != "/admin/analytics" {
		t.Errorf("expected admin landing route, got %s", resp.LandingRoute)
	}
	if len(store.storedTokens) != 1 {
		t.Errorf("expected 1 stored refresh token, got %d", len(store.storedTokens))
	}

	// The issued access token must validate
	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("expected access token to validate, got %v", err)
	}
	if claims.Sub != "user-1" {
		t.Errorf("expected sub 'user-1', got '%s'", claims.Sub)
	}
	if claims.Role != string(domain.RoleAdmin) {
		t.Errorf("expected role claim Admin, got '%s'", claims.Role)
	}
}

func TestLogin_WrongPasswordCountsAttempts(t *testing.T) {
	store := &mockAuthStore{
		profile: &domain.Profile{ID: "user-1", Email: "ana@example.com", Role: domain.RoleEmployee},
		cred:    &domain.AuthCredential{UserID: "user-1", PasswordHash: hashPassword(t, "correct-horse"), FailedAttempts: 2},
	}
	svc := newAuthService(store)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ana@example.com",
		Password: "wrong",
	})

	var unauthorized *domain.ErrUnauthorized
	if err == nil || !asErr(err, &unauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !strings.Contains(err.Error(), "2 attempt(s) remaining") {
		t.Errorf("expected remaining-attempts message, got %q", err.Error())
	}
	if store.credUpdates["failed_attempts"] != 3 {
		t.Errorf("expected failed_attempts=3, got %v", store.credUpdates["failed_attempts"])
	}
}

func TestLogin_LocksAfterMaxAttempts(t *testing.T) {
	store := &mockAuthStore{
		profile: &domain.Profile{ID: "user-1", Email: "ana@example.com", Role: domain.RoleEmployee},
		cred:    &domain.AuthCredential{UserID: "user-1", PasswordHash: hashPassword(t, "correct-horse"), FailedAttempts: 4},
	}
	svc := newAuthService(store)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ana@example.com",
		Password: "wrong",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "locked") {
		t.Errorf("expected lock message, got %q", err.Error())
	}
	if _, ok := store.credUpdates["locked_until"]; !ok {
		t.Error("expected locked_until to be written")
	}
}

func TestLogin_RejectsLockedAccount(t *testing.T) {
	lockedUntil := time.Now().Add(20 * time.Minute)
	store := &mockAuthStore{
		profile: &domain.Profile{ID: "user-1", Email: "ana@example.com", Role: domain.RoleEmployee},
		cred: &domain.AuthCredential{
			UserID:       "user-1",
			PasswordHash: hashPassword(t, "correct-horse"),
			LockedUntil:  &lockedUntil,
		},
	}
	svc := newAuthService(store)

	// Even the correct password fails while locked
	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ana@example.com",
		Password: "correct-horse",
	})
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Fatalf("expected locked error, got %v", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthService(&mockAuthStore{})

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	var unauthorized *domain.ErrUnauthorized
	if err == nil || !asErr(err, &unauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
	if err.Error() != "invalid credentials" {
		t.Errorf("message must not leak account existence, got %q", err.Error())
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	store := &mockAuthStore{
		profile: &domain.Profile{ID: "user-1", Email: "ana@example.com", Role: domain.RoleManager},
		refreshToken: &domain.AuthRefreshToken{
			UserID:    "user-1",
			TokenHash: "stored-hash",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	svc := newAuthService(store)

	resp, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: "raw-token"})
	if err != nil {
		t.Fatalf("expected refresh to succeed, got %v", err)
	}
	if resp.RefreshToken == "raw-token" {
		t.Error("expected a new refresh token, got the old one back")
	}
	if len(store.revokedTokens) != 1 {
		t.Errorf("expected the presented token to be revoked, got %d revocations", len(store.revokedTokens))
	}
	if len(store.storedTokens) != 1 {
		t.Errorf("expected the replacement token to be stored, got %d", len(store.storedTokens))
	}
}

func TestRefresh_RejectsRevoked(t *testing.T) {
	store := &mockAuthStore{
		refreshToken: &domain.AuthRefreshToken{
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(time.Hour),
			Revoked:   true,
		},
	}
	svc := newAuthService(store)

	_, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: "raw-token"})

	var unauthorized *domain.ErrUnauthorized
	if err == nil || !asErr(err, &unauthorized) {
		t.Fatalf("expected unauthorized for revoked token, got %v", err)
	}
}

func TestRefresh_RejectsExpired(t *testing.T) {
	store := &mockAuthStore{
		refreshToken: &domain.AuthRefreshToken{
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(-time.Minute),
		},
	}
	svc := newAuthService(store)

	_, err := svc.Refresh(context.Background(), &domain.RefreshRequest{RefreshToken: "raw-token"})
	if err == nil {
		t.Fatal("expected error for expired token")
	}
	if len(store.revokedTokens) != 1 {
		t.Error("expected expired token to be revoked on use")
	}
}

func TestValidateAccessToken_RejectsGarbage(t *testing.T) {
	svc := newAuthService(&mockAuthStore{})

	if _, err := svc.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestValidateAccessToken_RejectsWrongSecret(t *testing.T) {
	store := &mockAuthStore{
		profile: &domain.Profile{ID: "user-1", Email: "ana@example.com", Role: domain.RoleAdmin},
		cred:    &domain.AuthCredential{UserID: "user-1", PasswordHash: hashPassword(t, "pw-12345")},
	}
	issuer := newAuthService(store)
	resp, err := issuer.Login(context.Background(), &domain.LoginRequest{Email: "ana@example.com", Password: "pw-12345"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	other := service.NewAuthService(store, "different-secret", 15*time.Minute, 24*time.Hour, zap.NewNop())
	if _, err := other.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	store := &mockAuthStore{}
	svc := newAuthService(store)

	if err := svc.Logout(context.Background(), "user-1"); err != nil {
		t.Fatalf("expected logout to succeed, got %v", err)
	}
	if len(store.revokedUsers) != 1 || store.revokedUsers[0] != "user-1" {
		t.Errorf("expected all tokens for user-1 revoked, got %v", store.revokedUsers)
	}
}
