package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	tokens "hrforms/internal/auth"
	"hrforms/internal/domain/auth"
	"hrforms/internal/requestctx"
	"hrforms/internal/transport/http/api"
	"hrforms/internal/transport/http/shared"
)

type Handler struct {
	Users  *auth.Service
	Secret string
	TTL    time.Duration
}

func NewHandler(users *auth.Service, secret string, ttl time.Duration) *Handler {
	return &Handler{Users: users, Secret: secret, TTL: ttl}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := requestctx.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, requestID) {
		return
	}

	user, err := h.Users.Authenticate(r.Context(), payload.Username, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		slog.Error("login failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}

	token, err := tokens.GenerateToken(h.Secret, tokens.Claims{UserID: user.ID, Role: user.Role}, h.TTL)
	if err != nil {
		slog.Error("token signing failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}
	slog.Info("user logged in", "userId", user.ID, "role", user.Role)
	api.Success(w, loginResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(h.TTL),
		UserID:      user.ID,
		Role:        user.Role,
	}, requestID)
}
