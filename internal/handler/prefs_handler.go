package handler

import (
	"net/http"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/prefs"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Preferences — /v1/prefs
// ============================================================

type viewModeBody struct {
	ViewMode domain.ViewMode `json:"view_mode" validate:"required"`
}

func getViewModeHandler(store *prefs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := store.ViewMode(r.Context(), UserIDFromContext(r.Context()))
		writeJSON(w, http.StatusOK, viewModeBody{ViewMode: mode})
	}
}

// putViewModeHandler is best-effort by contract: an unrecognized value
// or a storage failure never surfaces, the read side just falls back to
// the default.
func putViewModeHandler(store *prefs.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body viewModeBody
		if !decodeAndValidate(w, r, &body) {
			return
		}
		store.SetViewMode(r.Context(), UserIDFromContext(r.Context()), body.ViewMode)
		w.WriteHeader(http.StatusNoContent)
	}
}

type filterSetBody struct {
	ID         string                   `json:"id,omitempty"`
	Name       string                   `json:"name" validate:"required,min=1,max=120"`
	Conditions []domain.FilterCondition `json:"conditions"`
}

func listFilterSetsHandler(store *prefs.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets, err := store.ListFilterSets(r.Context(), UserIDFromContext(r.Context()))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"filter_sets": sets})
	}
}

func saveFilterSetHandler(store *prefs.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body filterSetBody
		if !decodeAndValidate(w, r, &body) {
			return
		}

		// On the id-addressed PUT the URL names the set; a body id may
		// only agree with it.
		if urlID := chi.URLParam(r, "id"); urlID != "" {
			if body.ID != "" && body.ID != urlID {
				writeError(w, http.StatusBadRequest, "filter set id in body does not match URL")
				return
			}
			body.ID = urlID
		}

		saved, err := store.SaveFilterSet(r.Context(), UserIDFromContext(r.Context()), &domain.SavedFilterSet{
			ID:         body.ID,
			Name:       body.Name,
			Conditions: body.Conditions,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		status := http.StatusCreated
		if body.ID != "" {
			status = http.StatusOK
		}
		writeJSON(w, status, saved)
	}
}

func deleteFilterSetHandler(store *prefs.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.DeleteFilterSet(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
