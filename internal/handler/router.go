package handler

import (
	"net/http"
	"time"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/infra/observability"
	"github.com/calder/taxlead-crm-go/internal/prefs"
	"github.com/calder/taxlead-crm-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps collects everything the router wires together.
type Deps struct {
	Auth       *service.AuthService
	Leads      *service.LeadService
	Imports    *service.ImportService
	Campaigns  *service.CampaignService
	Activities *service.ActivityService
	Comms      *service.CommsService
	Analytics  *service.AnalyticsService
	Guard      *service.GuardService
	Prefs      *prefs.Store
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.MetricsMiddleware(d.Metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Leads))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Public: auth entry points and the navigation guard. The guard
		// stays public so an unauthenticated visitor gets a login
		// redirect decision instead of a 401.
		r.Post("/auth/register", registerHandler(d.Auth, d.Logger))
		r.Post("/auth/login", loginHandler(d.Auth, d.Logger))
		r.Post("/auth/refresh", refreshHandler(d.Auth, d.Logger))
		r.Post("/auth/password/reset-request", passwordResetRequestHandler(d.Auth, d.Logger))
		r.Post("/auth/password/recover", passwordRecoverHandler(d.Auth, d.Logger))
		r.Get("/nav/guard", guardHandler(d.Guard, d.Auth, d.Logger))
		r.Get("/nav/routes", navRoutesHandler(d.Guard, d.Auth, d.Logger))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(d.Auth, d.Logger))

			r.Post("/auth/logout", logoutHandler(d.Auth, d.Logger))
			r.Put("/auth/password", changePasswordHandler(d.Auth, d.Logger))

			// Leads
			r.Get("/leads", listLeadsHandler(d.Leads, d.Logger))
			r.Post("/leads", createLeadHandler(d.Leads, d.Logger))
			r.Post("/leads/query", queryLeadsHandler(d.Leads, d.Logger))
			r.Get("/leads/template", leadTemplateHandler())
			r.Get("/leads/export", leadExportHandler(d.Leads, d.Logger))
			r.Post("/leads/import/preview", importPreviewHandler(d.Imports, d.Logger))
			r.Post("/leads/import", importLeadsHandler(d.Imports, d.Logger))
			r.Get("/leads/{id}", getLeadHandler(d.Leads, d.Logger))
			r.Put("/leads/{id}", updateLeadHandler(d.Leads, d.Logger))
			r.Delete("/leads/{id}", deleteLeadHandler(d.Leads, d.Logger))

			// Campaigns
			r.Get("/campaigns", listCampaignsHandler(d.Campaigns, d.Logger))
			r.Post("/campaigns", createCampaignHandler(d.Campaigns, d.Logger))
			r.Get("/campaigns/{id}", getCampaignHandler(d.Campaigns, d.Logger))
			r.Put("/campaigns/{id}", updateCampaignHandler(d.Campaigns, d.Logger))
			r.Delete("/campaigns/{id}", deleteCampaignHandler(d.Campaigns, d.Logger))
			r.Get("/campaigns/{id}/leads", listCampaignLeadsHandler(d.Campaigns, d.Logger))
			r.Post("/campaigns/{id}/leads", addCampaignLeadHandler(d.Campaigns, d.Logger))
			r.Post("/campaigns/{id}/leads/import", importCampaignLeadsHandler(d.Imports, d.Logger))
			r.Delete("/campaigns/{id}/leads/{leadId}", removeCampaignLeadHandler(d.Campaigns, d.Logger))

			// Activity feed
			r.Get("/activities", listActivitiesHandler(d.Activities, d.Logger))
			r.Get("/activities/stream", subscribeActivitiesHandler(d.Activities, d.Logger))

			// Communications
			r.Post("/comms/call", placeCallHandler(d.Comms, d.Logger))
			r.Post("/comms/sms", sendSMSHandler(d.Comms, d.Logger))

			// Analytics dashboard (any authenticated role)
			r.Get("/analytics/dashboard", dashboardHandler(d.Analytics, d.Logger))

			// Per-user preferences
			r.Get("/prefs/view-mode", getViewModeHandler(d.Prefs))
			r.Put("/prefs/view-mode", putViewModeHandler(d.Prefs))
			r.Get("/prefs/filter-sets", listFilterSetsHandler(d.Prefs, d.Logger))
			r.Post("/prefs/filter-sets", saveFilterSetHandler(d.Prefs, d.Logger))
			r.Put("/prefs/filter-sets/{id}", saveFilterSetHandler(d.Prefs, d.Logger))
			r.Delete("/prefs/filter-sets/{id}", deleteFilterSetHandler(d.Prefs, d.Logger))

			// Admin
			r.Group(func(r chi.Router) {
				r.Use(RequireRoles(d.Logger, domain.RoleAdmin))

				r.Get("/admin/users", listUsersHandler(d.Auth, d.Logger))
				r.Put("/admin/users/{id}/role", updateUserRoleHandler(d.Auth, d.Logger))
				r.Get("/admin/analytics/usage", usageHandler(d.Analytics))
				r.Post("/admin/activities/reset", resetActivitiesHandler(d.Activities, d.Logger))
			})
		})
	})

	return r
}

// ============================================================
// Health endpoints
// ============================================================

func healthzHandler(leadSvc *service.LeadService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "taxlead-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if leadSvc != nil {
			start := time.Now()
			_, err := leadSvc.List(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = "degraded"
				break
			}
		}
		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
