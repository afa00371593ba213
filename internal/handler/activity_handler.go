package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/calder/taxlead-crm-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Activities — /v1/activities
// ============================================================

func listActivitiesHandler(svc *service.ActivityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/activities")
		defer span.End()

		page, pageSize := parsePagination(r)
		items, err := svc.List(ctx, page, pageSize)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"activities": items,
			"page":       page,
			"page_size":  pageSize,
		})
	}
}

// subscribeActivitiesHandler streams feed snapshots over Server-Sent
// Events. Each event carries the latest full snapshot — last fetch wins,
// consumers replace their state rather than appending.
func subscribeActivitiesHandler(svc *service.ActivityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		ch, cancel := svc.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case snapshot, open := <-ch:
				if !open {
					return
				}
				payload, err := json.Marshal(snapshot)
				if err != nil {
					logger.Warn("activity stream: marshal failed", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "event: feed\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}

func resetActivitiesHandler(svc *service.ActivityService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/activities/reset")
		defer span.End()

		if err := svc.Reset(ctx, UserIDFromContext(ctx)); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
