package handler

import (
	"net/http"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Communications — /v1/comms
// ============================================================

func placeCallHandler(svc *service.CommsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/comms/call")
		defer span.End()

		var req domain.CallRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		resp, err := svc.Call(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, resp)
	}
}

func sendSMSHandler(svc *service.CommsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/comms/sms")
		defer span.End()

		var req domain.SMSRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}

		resp, err := svc.SMS(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusAccepted, resp)
	}
}
