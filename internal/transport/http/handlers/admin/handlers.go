package adminhandler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrforms/internal/domain/auth"
	"hrforms/internal/domain/request"
	"hrforms/internal/platform/metrics"
	"hrforms/internal/requestctx"
	"hrforms/internal/transport/http/api"
	"hrforms/internal/transport/http/middleware"
	"hrforms/internal/transport/http/shared"
)

type Handler struct {
	Service *request.Service
	Metrics *metrics.Collector
}

func NewHandler(service *request.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Get("/requests", h.handleList)
		r.Post("/requests/{id}/status", h.handleSetStatus)
		r.Patch("/requests/{id}/fields", h.handlePatchField)
		r.Put("/requests/{id}/remark", h.handleSetRemark)
		r.Delete("/requests/{id}", h.handleForceDelete)
		r.Get("/metrics", h.handleMetrics)
	})
}

func actorFrom(r *http.Request) request.Actor {
	user, _ := requestctx.GetUser(r.Context())
	return request.Actor{UserID: user.UserID, Role: user.Role}
}

func (h *Handler) count(event string) {
	if h.Metrics != nil {
		h.Metrics.Count(event)
	}
}

// handleList supports optional status, formType and ownerId filters.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.AllRequests(r.Context(), actorFrom(r))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}

	query := r.URL.Query()
	status := strings.TrimSpace(query.Get("status"))
	formType := strings.TrimSpace(query.Get("formType"))
	ownerID := strings.TrimSpace(query.Get("ownerId"))
	filtered := make([]request.AdminRow, 0, len(rows))
	for _, row := range rows {
		if status != "" && !strings.EqualFold(string(row.Status), status) {
			continue
		}
		if formType != "" && string(row.FormType) != formType {
			continue
		}
		if ownerID != "" && row.OwnerID != ownerID {
			continue
		}
		filtered = append(filtered, row)
	}
	api.Success(w, filtered, middleware.GetRequestID(r.Context()))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	v.Enum("status", payload.Status, []string{string(request.StatusApproved), string(request.StatusRejected)}, "must be Approved or Rejected")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	status := request.StatusApproved
	if strings.EqualFold(payload.Status, string(request.StatusRejected)) {
		status = request.StatusRejected
	}
	updated, err := h.Service.AdminSetStatus(r.Context(), actorFrom(r), chi.URLParam(r, "id"), status)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	h.count("request.status." + strings.ToLower(string(status)))
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type patchFieldRequest struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

func (h *Handler) handlePatchField(w http.ResponseWriter, r *http.Request) {
	var payload patchFieldRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("field", payload.Field, "is required")
	if len(payload.Value) == 0 {
		v.Add("value", "is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.AdminPatchField(r.Context(), actorFrom(r), chi.URLParam(r, "id"), payload.Field, payload.Value)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	h.count("request.patched")
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type remarkRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) handleSetRemark(w http.ResponseWriter, r *http.Request) {
	var payload remarkRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	updated, err := h.Service.AdminSetRemark(r.Context(), actorFrom(r), chi.URLParam(r, "id"), strings.TrimSpace(payload.Comment))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleForceDelete(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := chi.URLParam(r, "id")
	if r.URL.Query().Get("confirm") != "true" {
		if _, err := h.Service.AdminPrepareForceDelete(r.Context(), actor, id); err != nil {
			shared.WriteError(w, r, err)
			return
		}
		shared.WriteError(w, r, request.ErrConfirmRequired)
		return
	}

	if err := h.Service.AdminForceDelete(r.Context(), actor, id); err != nil {
		shared.WriteError(w, r, err)
		return
	}
	h.count("request.force_deleted")
	api.Success(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if h.Metrics == nil {
		api.Fail(w, http.StatusNotFound, "metrics_disabled", "metrics are not enabled", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, h.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
}
