package handler

import (
	"encoding/json"
	"net/http"

	"github.com/boddenberg/leads-crm-go/internal/domain"
	"github.com/boddenberg/leads-crm-go/internal/infra/observability"
	"github.com/boddenberg/leads-crm-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type statusFilterRequest struct {
	Status string `json:"status"`
}

type searchRequest struct {
	Field *domain.SearchField `json:"field,omitempty"`
	Term  *string             `json:"term,omitempty"`
}

func sessionView(sessions *service.Sessions, r *http.Request) *service.LeadView {
	return sessions.Get(r.Context(), OperatorFromContext(r.Context()))
}

// respondView renders the operator's page. A transition error picks the status
// code; the page is returned either way so the client can redraw.
func respondView(w http.ResponseWriter, view *service.LeadView, err error, logger *zap.Logger) {
	if err != nil {
		status := statusFor(err, logger)
		writeJSON(w, status, viewResponse{Page: view.Render(), Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{Page: view.Render()})
}

// ============================================================
// View: GET /v1/leads/view, POST /v1/leads/reload
// ============================================================

func viewHandler(sessions *service.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, viewResponse{Page: sessionView(sessions, r).Render()})
	}
}

func reloadHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/leads/reload")
		defer span.End()

		view := sessionView(sessions, r)
		if err := view.Load(ctx); err != nil {
			// The page carries load_error; rendering never fails on a load.
			logger.Warn("reload failed", zap.String("operator", OperatorFromContext(ctx)), zap.Error(err))
		}
		writeJSON(w, http.StatusOK, viewResponse{Page: view.Render()})
	}
}

// ============================================================
// Filter / search
// ============================================================

func statusFilterHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusFilterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		view := sessionView(sessions, r)
		respondView(w, view, view.SetStatusFilter(req.Status), logger)
	}
}

func searchHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		view := sessionView(sessions, r)
		if req.Field != nil {
			if err := view.SetSearchField(*req.Field); err != nil {
				respondView(w, view, err, logger)
				return
			}
		}
		if req.Term != nil {
			view.SetSearchTerm(*req.Term)
		}
		respondView(w, view, nil, logger)
	}
}

func toggleSearchHandler(sessions *service.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := sessionView(sessions, r)
		view.ToggleSearch()
		writeJSON(w, http.StatusOK, viewResponse{Page: view.Render()})
	}
}

// ============================================================
// Selection
// ============================================================

func selectHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := sessionView(sessions, r)
		respondView(w, view, view.SelectByID(chi.URLParam(r, "leadId")), logger)
	}
}

func clearSelectionHandler(sessions *service.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := sessionView(sessions, r)
		view.ClearSelection()
		writeJSON(w, http.StatusOK, viewResponse{Page: view.Render()})
	}
}

// ============================================================
// Form
// ============================================================

func openNewHandler(sessions *service.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := sessionView(sessions, r)
		view.OpenNew()
		writeJSON(w, http.StatusOK, viewResponse{Page: view.Render()})
	}
}

func openEditHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := sessionView(sessions, r)
		respondView(w, view, view.OpenEditByID(chi.URLParam(r, "leadId")), logger)
	}
}

func submitHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/leads/form/submit")
		defer span.End()

		var fields domain.LeadFields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		view := sessionView(sessions, r)
		err := view.Submit(ctx, fields)
		respondView(w, view, err, logger)
	}
}

func cancelHandler(sessions *service.Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := sessionView(sessions, r)
		view.Cancel()
		writeJSON(w, http.StatusOK, viewResponse{Page: view.Render()})
	}
}

// ============================================================
// Delete: DELETE /v1/leads/{leadId}
// ============================================================

func deleteHandler(sessions *service.Sessions, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/leads/{leadId}")
		defer span.End()

		leadID := chi.URLParam(r, "leadId")
		span.SetAttributes(attribute.String("lead.id", leadID))
		observability.AddRequestFields(ctx, zap.String("lead_id", leadID))

		view := sessionView(sessions, r)
		respondView(w, view, view.Delete(ctx, leadID), logger)
	}
}
