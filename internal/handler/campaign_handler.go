package handler

import (
	"net/http"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Campaigns — /v1/campaigns
// ============================================================

func listCampaignsHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/campaigns")
		defer span.End()

		campaigns, err := svc.List(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
	}
}

func getCampaignHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/campaigns/{id}")
		defer span.End()

		campaign, err := svc.Get(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, campaign)
	}
}

func createCampaignHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/campaigns")
		defer span.End()

		var req domain.CreateCampaignRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		campaign, err := svc.Create(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, campaign)
	}
}

func updateCampaignHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/campaigns/{id}")
		defer span.End()

		var req domain.UpdateCampaignRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		campaign, err := svc.Update(ctx, chi.URLParam(r, "id"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, campaign)
	}
}

func deleteCampaignHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/campaigns/{id}")
		defer span.End()

		if err := svc.Delete(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Campaign leads — /v1/campaigns/{id}/leads
// ============================================================

func listCampaignLeadsHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/campaigns/{id}/leads")
		defer span.End()

		leads, err := svc.ListLeads(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "total": len(leads)})
	}
}

func addCampaignLeadHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/campaigns/{id}/leads")
		defer span.End()

		var req domain.CreateLeadRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		lead, err := svc.AddLead(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, lead)
	}
}

func removeCampaignLeadHandler(svc *service.CampaignService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/campaigns/{id}/leads/{leadId}")
		defer span.End()

		if err := svc.RemoveLead(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "leadId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func importCampaignLeadsHandler(svc *service.ImportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/campaigns/{id}/leads/import")
		defer span.End()

		var req domain.ImportRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		result, err := svc.ImportToCampaign(ctx, UserIDFromContext(ctx), chi.URLParam(r, "id"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		status := http.StatusCreated
		if result.Failed > 0 {
			status = http.StatusMultiStatus
		}
		writeJSON(w, status, result)
	}
}
