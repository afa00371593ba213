package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/cache"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
)

func newGuardService(store *mockAuthStore) *service.GuardService {
	return service.NewGuardService(store, cache.New[domain.Profile](time.Minute), time.Second, observability.NewMetrics(), zap.NewNop())
}

func TestGuard_AnonymousRedirectsToLogin(t *testing.T) {
	svc := newGuardService(&mockAuthStore{})

	decision, err := svc.Evaluate(context.Background(), "", "/leads", nil)
	if err != nil {
		t.Fatalf("expected decision, got %v", err)
	}
	if decision.Outcome != domain.GuardRedirect {
		t.Fatalf("expected redirect, got %s", decision.Outcome)
	}
	if decision.RedirectTo != domain.LoginRoute {
		t.Errorf("expected login redirect, got %s", decision.RedirectTo)
	}
}

func TestGuard_AllowsPermittedRole(t *testing.T) {
	store := &mockAuthStore{profile: &domain.Profile{ID: "u1", Role: domain.RoleEmployee}}
	svc := newGuardService(store)

	decision, err := svc.Evaluate(context.Background(), "u1", "/leads", nil)
	if err != nil {
		t.Fatalf("expected decision, got %v", err)
	}
	if decision.Outcome != domain.GuardAllow {
		t.Errorf("expected allow, got %s (%s)", decision.Outcome, decision.Reason)
	}
}

func TestGuard_RedirectsToLandingOnForbiddenRoute(t *testing.T) {
	store := &mockAuthStore{profile: &domain.Profile{ID: "u1", Role: domain.RoleEmployee}}
	svc := newGuardService(store)

	decision, err := svc.Evaluate(context.Background(), "u1", "/admin/users", nil)
	if err != nil {
		t.Fatalf("expected decision, got %v", err)
	}
	if decision.Outcome != domain.GuardRedirect {
		t.Fatalf("expected redirect, got %s", decision.Outcome)
	}
	if decision.RedirectTo != "/leads" {
		t.Errorf("expected employee landing route /leads, got %s", decision.RedirectTo)
	}
}

func TestGuard_RequiredRolesNarrowAccess(t *testing.T) {
	store := &mockAuthStore{profile: &domain.Profile{ID: "u1", Role: domain.RoleEmployee}}
	svc := newGuardService(store)

	// /leads is open to employees, but the view demands Admin
	decision, err := svc.Evaluate(context.Background(), "u1", "/leads", []domain.Role{domain.RoleAdmin})
	if err != nil {
		t.Fatalf("expected decision, got %v", err)
	}
	if decision.Outcome != domain.GuardRedirect {
		t.Errorf("expected redirect when role not in required set, got %s", decision.Outcome)
	}
}

func TestGuard_UnresolvableProfileIsErrorOutcome(t *testing.T) {
	store := &mockAuthStore{profileErr: context.DeadlineExceeded}
	svc := newGuardService(store)

	decision, err := svc.Evaluate(context.Background(), "u1", "/leads", nil)
	if err != nil {
		t.Fatalf("unresolved profile must be a decision, not an error: %v", err)
	}
	if decision.Outcome != domain.GuardError {
		t.Errorf("expected error outcome, got %s", decision.Outcome)
	}
	if decision.Reason == "" {
		t.Error("expected a retry hint in the reason")
	}
}

func TestGuard_ProfileCacheServesRepeatChecks(t *testing.T) {
	store := &mockAuthStore{profile: &domain.Profile{ID: "u1", Role: domain.RoleAdmin}}
	svc := newGuardService(store)

	if _, err := svc.Evaluate(context.Background(), "u1", "/dashboard", nil); err != nil {
		t.Fatalf("first check: %v", err)
	}

	// Store failure is invisible while the profile is cached
	store.profileErr = context.DeadlineExceeded
	decision, err := svc.Evaluate(context.Background(), "u1", "/dashboard", nil)
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if decision.Outcome != domain.GuardAllow {
		t.Errorf("expected cached profile to allow, got %s", decision.Outcome)
	}
}

func TestGuard_RoutesForRole(t *testing.T) {
	store := &mockAuthStore{profile: &domain.Profile{ID: "u1", Role: domain.RoleAdmin}}
	svc := newGuardService(store)

	routes, landing, err := svc.Routes(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected routes, got %v", err)
	}
	if landing != "/admin/analytics" {
		t.Errorf("expected admin landing, got %s", landing)
	}

	found := false
	for _, r := range routes {
		if r == "/admin/users" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected /admin/users in admin routes, got %v", routes)
	}
}
