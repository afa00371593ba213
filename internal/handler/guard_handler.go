package handler

import (
	"net/http"
	"strings"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Navigation guard — /v1/nav
// ============================================================

// optionalUserID extracts the subject from a Bearer token if one is
// present and valid. The guard endpoints are reachable without auth so
// the frontend can ask "where should this visitor go" before login; an
// absent or invalid token simply evaluates as anonymous.
func optionalUserID(r *http.Request, authSvc *service.AuthService) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	claims, err := authSvc.ValidateAccessToken(parts[1])
	if err != nil {
		return ""
	}
	return claims.Sub
}

func guardHandler(svc *service.GuardService, authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/nav/guard")
		defer span.End()

		path := r.URL.Query().Get("path")
		if path == "" {
			writeError(w, http.StatusBadRequest, "missing path parameter")
			return
		}

		var required []domain.Role
		if raw := r.URL.Query().Get("roles"); raw != "" {
			for _, part := range strings.Split(raw, ",") {
				if part = strings.TrimSpace(part); part != "" {
					required = append(required, domain.Role(part))
				}
			}
		}

		decision, err := svc.Evaluate(ctx, optionalUserID(r, authSvc), path, required)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		// An unresolvable profile is a 503 with a retry hint, so the
		// frontend backs off instead of treating the decision as final.
		status := http.StatusOK
		if decision.Outcome == domain.GuardError {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, decision)
	}
}

func navRoutesHandler(svc *service.GuardService, authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/nav/routes")
		defer span.End()

		routes, landing, err := svc.Routes(ctx, optionalUserID(r, authSvc))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"routes":        routes,
			"landing_route": landing,
		})
	}
}
