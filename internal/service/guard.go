package service

import (
	"context"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var guardTracer = otel.Tracer("service/guard")

// GuardService evaluates whether a role may enter a frontend route. The
// role comes from the profile store, not the token: a role change takes
// effect on the next guard check, not the next login.
type GuardService struct {
	store          port.AuthStore
	profileCache   port.Cache[domain.Profile]
	profileTimeout time.Duration
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewGuardService creates a guard service. profileTimeout bounds the
// profile fetch; past it the decision is an explicit error outcome, not
// an indefinite wait.
func NewGuardService(store port.AuthStore, profileCache port.Cache[domain.Profile], profileTimeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *GuardService {
	return &GuardService{
		store:          store,
		profileCache:   profileCache,
		profileTimeout: profileTimeout,
		metrics:        metrics,
		logger:         logger,
	}
}

// ============================================================
// Evaluate — GET /v1/nav/guard
// ============================================================

// Evaluate produces the guard decision for one path. requiredRoles is
// the caller-supplied per-view restriction; it is checked in addition to
// the route policy, and both failures redirect to the same place: the
// role's default landing route.
func (s *GuardService) Evaluate(ctx context.Context, userID, path string, requiredRoles []domain.Role) (*domain.GuardDecision, error) {
	ctx, span := guardTracer.Start(ctx, "GuardService.Evaluate")
	defer span.End()
	span.SetAttributes(attribute.String("guard.path", path))

	if userID == "" {
		return &domain.GuardDecision{
			Outcome:    domain.GuardRedirect,
			RedirectTo: domain.LoginRoute,
			Reason:     "not authenticated",
		}, nil
	}

	profile, err := s.resolveProfile(ctx, userID)
	if err != nil {
		// An unresolvable profile is a terminal error outcome, never a
		// loading loop. The handler maps this to 503 with a retry hint.
		s.logger.Warn("guard: profile unresolved",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return &domain.GuardDecision{
			Outcome: domain.GuardError,
			Reason:  "profile could not be resolved, retry shortly",
		}, nil
	}

	role := profile.Role
	landing := domain.LandingRoute(role)

	if !domain.RoleMayAccess(role, path) {
		span.SetAttributes(attribute.String("guard.outcome", "redirect"))
		return &domain.GuardDecision{
			Outcome:    domain.GuardRedirect,
			RedirectTo: landing,
			Reason:     "role not allowed on this route",
		}, nil
	}

	if len(requiredRoles) > 0 && !roleIn(role, requiredRoles) {
		span.SetAttributes(attribute.String("guard.outcome", "redirect"))
		return &domain.GuardDecision{
			Outcome:    domain.GuardRedirect,
			RedirectTo: landing,
			Reason:     "role not in the view's required set",
		}, nil
	}

	span.SetAttributes(attribute.String("guard.outcome", "allow"))
	return &domain.GuardDecision{Outcome: domain.GuardAllow}, nil
}

// Routes returns the navigation surface for a user: the routes the role
// may enter plus its landing route.
func (s *GuardService) Routes(ctx context.Context, userID string) ([]string, string, error) {
	ctx, span := guardTracer.Start(ctx, "GuardService.Routes")
	defer span.End()

	profile, err := s.resolveProfile(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return domain.KnownRoutes(profile.Role), domain.LandingRoute(profile.Role), nil
}

// resolveProfile fetches the profile under the guard timeout, with a
// short-TTL cache so a burst of guard checks does not hammer the
// backend.
func (s *GuardService) resolveProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	cacheKey := "profile:" + userID
	if cached, ok := s.profileCache.Get(cacheKey); ok {
		s.metrics.IncrCacheHit("profile")
		return &cached, nil
	}
	s.metrics.IncrCacheMiss("profile")

	fetchCtx, cancel := context.WithTimeout(ctx, s.profileTimeout)
	defer cancel()

	profile, err := s.store.GetProfileByID(fetchCtx, userID)
	if err != nil {
		if fetchCtx.Err() != nil {
			return nil, &domain.ErrTimeout{Operation: "resolve profile"}
		}
		return nil, err
	}

	s.profileCache.Set(cacheKey, *profile)
	return profile, nil
}

func roleIn(role domain.Role, set []domain.Role) bool {
	for _, r := range set {
		if r == role {
			return true
		}
	}
	return false
}
