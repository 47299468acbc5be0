package requesthandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hrforms/internal/domain/profile"
	"hrforms/internal/domain/request"
	"hrforms/internal/platform/metrics"
	"hrforms/internal/requestctx"
	"hrforms/internal/transport/http/api"
	"hrforms/internal/transport/http/middleware"
	"hrforms/internal/transport/http/shared"
)

type Handler struct {
	Service  *request.Service
	Profiles request.ProfileReader
	Metrics  *metrics.Collector
}

func NewHandler(service *request.Service, profiles request.ProfileReader, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Profiles: profiles, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/catalog", h.handleCatalog)
		r.Get("/leave/types", h.handleLeaveTypes)
		r.Get("/leave/balances", h.handleBalances)

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/{formType}", h.handleCreate)
			r.Get("/{id}", h.handleGet)
			r.Put("/{id}", h.handleEdit)
			r.Delete("/{id}", h.handleDelete)
			r.Get("/{id}/slip.pdf", h.handleSlip)
		})
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

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var terr *request.TransitionError
	if errors.As(err, &terr) {
		h.count("request.denied." + string(terr.Reason))
	}
	var verr *request.ValidationError
	if errors.As(err, &verr) {
		h.count("request.rejected." + string(verr.Rule))
	}
	shared.WriteError(w, r, err)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.MyRequests(r.Context(), actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, views, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	formType := request.FormType(chi.URLParam(r, "formType"))
	if !formType.Valid() {
		api.Fail(w, http.StatusNotFound, "unknown_form", fmt.Sprintf("unknown form type %q", formType), middleware.GetRequestID(r.Context()))
		return
	}
	draft, ok := decodeDraft(w, r, formType)
	if !ok {
		return
	}

	created, err := h.Service.Create(r.Context(), actorFrom(r), draft)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.count("request.created." + string(formType))
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, req, middleware.GetRequestID(r.Context()))
}

// handleEdit decodes the body as the stored request's form type; the form
// type of a request never changes.
func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := chi.URLParam(r, "id")
	var raw json.RawMessage
	if !shared.DecodeJSON(w, r, &raw) {
		return
	}

	updated, err := h.Service.EditJSON(r.Context(), actor, id, raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.count("request.edited." + string(updated.FormType))
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	id := chi.URLParam(r, "id")
	if r.URL.Query().Get("confirm") != "true" {
		if _, err := h.Service.PrepareDelete(r.Context(), actor, id); err != nil {
			h.fail(w, r, err)
			return
		}
		h.fail(w, r, request.ErrConfirmRequired)
		return
	}

	if err := h.Service.ConfirmDelete(r.Context(), actor, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.count("request.deleted")
	api.Success(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSlip(w http.ResponseWriter, r *http.Request) {
	req, err := h.Service.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	owner := profile.Profile{UserID: req.OwnerID}
	if h.Profiles != nil {
		p, err := h.Profiles.Get(r.Context(), req.OwnerID)
		switch {
		case err == nil:
			owner = p
		case !errors.Is(err, profile.ErrNotFound):
			h.fail(w, r, &request.PersistenceError{Op: "get profile", Err: err})
			return
		}
	}

	var buf bytes.Buffer
	if err := request.WriteSlip(&buf, req, owner); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "request-"+req.ID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleLeaveTypes(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Service.LeaveMenu(r.Context(), actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, menu, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.Service.BalanceSummary(r.Context(), actorFrom(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, balances, middleware.GetRequestID(r.Context()))
}

type formInfo struct {
	Type  request.FormType `json:"type"`
	Title string           `json:"title"`
}

func (h *Handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	forms := make([]formInfo, 0, len(request.FormTypes))
	for _, ft := range request.FormTypes {
		forms = append(forms, formInfo{Type: ft, Title: ft.Title()})
	}
	api.Success(w, map[string]any{
		"forms":                forms,
		"leaveTypes":           request.LeaveTypes,
		"entitlements":         request.Entitlements,
		"dayTypes":             request.DayTypes,
		"attendanceCategories": request.AttendanceCategories,
		"letterTypes":          request.LetterTypes,
		"coeTemplates":         request.COETemplates,
		"departments":          profile.Departments,
		"teams":                profile.Teams,
		"civilStatuses":        profile.CivilStatuses,
	}, middleware.GetRequestID(r.Context()))
}

// decodeDraft reads the body as the payload of formType.
func decodeDraft(w http.ResponseWriter, r *http.Request, formType request.FormType) (request.Payload, bool) {
	var raw json.RawMessage
	if !shared.DecodeJSON(w, r, &raw) {
		return nil, false
	}
	draft, err := request.DecodePayload(formType, raw)
	if err != nil {
		var verr *request.ValidationError
		if errors.As(err, &verr) {
			shared.WriteError(w, r, err)
			return nil, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload: "+err.Error(), middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return draft, true
}
