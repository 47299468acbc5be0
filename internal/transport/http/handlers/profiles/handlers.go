package profilehandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrforms/internal/domain/auth"
	"hrforms/internal/domain/profile"
	"hrforms/internal/requestctx"
	"hrforms/internal/transport/http/api"
	"hrforms/internal/transport/http/middleware"
	"hrforms/internal/transport/http/shared"
)

type Handler struct {
	Profiles profile.Writer
	Users    *auth.Service
}

func NewHandler(profiles profile.Writer, users *auth.Service) *Handler {
	return &Handler{Profiles: profiles, Users: users}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/profile", h.handleGetOwn)
		r.Put("/profile", h.handlePutOwn)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Post("/admin/users", h.handleCreateUser)
		r.Put("/admin/profiles/{userId}", h.handlePutProfile)
	})
}

type profileRequest struct {
	EmployeeID     string `json:"employeeId"`
	Name           string `json:"name"`
	EmploymentType string `json:"employmentType"`
	Department     string `json:"department"`
	Team           string `json:"team"`
	Position       string `json:"position"`
	Gender         string `json:"gender"`
	CivilStatus    string `json:"civilStatus"`
	SoloParent     bool   `json:"soloParent"`
}

func (p profileRequest) validate(v *shared.Validator) {
	v.Required("name", p.Name, "is required")
	v.Required("gender", p.Gender, "is required")
	v.Enum("gender", p.Gender, profile.Genders, "must be Male or Female")
	v.Enum("employmentType", p.EmploymentType, profile.EmploymentTypes, "is not a known employment type")
	v.Enum("department", p.Department, profile.Departments, "is not a known department")
	v.Enum("team", p.Team, profile.Teams, "is not a known team")
	v.Enum("civilStatus", p.CivilStatus, profile.CivilStatuses, "is not a known civil status")
}

func (p profileRequest) apply(out profile.Profile) profile.Profile {
	out.EmployeeID = strings.TrimSpace(p.EmployeeID)
	out.Name = strings.TrimSpace(p.Name)
	out.EmploymentType = canonical(p.EmploymentType, profile.EmploymentTypes)
	out.Department = canonical(p.Department, profile.Departments)
	out.Team = canonical(p.Team, profile.Teams)
	out.Position = strings.TrimSpace(p.Position)
	out.Gender = canonical(p.Gender, profile.Genders)
	out.CivilStatus = canonical(p.CivilStatus, profile.CivilStatuses)
	out.SoloParent = p.SoloParent
	return out
}

// canonical returns the catalog spelling of value, matched case-insensitively.
func canonical(value string, catalog []string) string {
	value = strings.TrimSpace(value)
	for _, candidate := range catalog {
		if strings.EqualFold(candidate, value) {
			return candidate
		}
	}
	return value
}

func (h *Handler) load(r *http.Request, userID, role string) (profile.Profile, error) {
	p, err := h.Profiles.Get(r.Context(), userID)
	if errors.Is(err, profile.ErrNotFound) {
		return profile.Profile{UserID: userID, Role: role}, nil
	}
	return p, err
}

func (h *Handler) handleGetOwn(w http.ResponseWriter, r *http.Request) {
	user, _ := requestctx.GetUser(r.Context())
	p, err := h.Profiles.Get(r.Context(), user.UserID)
	if errors.Is(err, profile.ErrNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "profile not set up yet", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		h.internal(w, r, err)
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePutOwn(w http.ResponseWriter, r *http.Request) {
	user, _ := requestctx.GetUser(r.Context())
	h.save(w, r, user.UserID, user.Role)
}

func (h *Handler) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "userId"), auth.RoleUser)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, userID, role string) {
	var payload profileRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	payload.validate(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	current, err := h.load(r, userID, role)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	updated := payload.apply(current)
	if err := h.Profiles.Upsert(r.Context(), updated); err != nil {
		h.internal(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type createUserRequest struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Role     string         `json:"role"`
	Profile  profileRequest `json:"profile"`
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var payload createUserRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.Role == "" {
		payload.Role = auth.RoleUser
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	if len(payload.Password) < 8 {
		v.Add("password", "must be at least 8 characters")
	}
	v.Enum("role", payload.Role, auth.Roles, "must be user or admin")
	payload.Profile.validate(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	user, err := h.Users.EnsureUser(r.Context(), strings.TrimSpace(payload.Username), payload.Password, strings.ToLower(payload.Role))
	if err != nil {
		h.internal(w, r, err)
		return
	}
	p := payload.Profile.apply(profile.Profile{UserID: user.ID, Role: user.Role})
	if err := h.Profiles.Upsert(r.Context(), p); err != nil {
		h.internal(w, r, err)
		return
	}
	slog.Info("user provisioned", "userId", user.ID, "role", user.Role)
	api.Created(w, map[string]any{"userId": user.ID, "username": user.Username, "role": user.Role, "profile": p}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("profile operation failed", "err", err, "requestId", middleware.GetRequestID(r.Context()))
	api.Fail(w, http.StatusInternalServerError, "internal_error", "unexpected error", middleware.GetRequestID(r.Context()))
}
