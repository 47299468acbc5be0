package authhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tokens "hrforms/internal/auth"
	"hrforms/internal/domain/auth"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	users := auth.NewService(auth.NewMemoryStore())
	if _, err := users.EnsureUser(context.Background(), "jdoe", "pa55word", auth.RoleUser); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	return NewHandler(users, "test-secret", time.Hour)
}

func TestHandleLoginIssuesToken(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"jdoe","password":"pa55word"}`))
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data loginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := tokens.ParseToken("test-secret", body.Data.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != auth.RoleUser || claims.UserID != body.Data.UserID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestHandleLoginRejects(t *testing.T) {
	h := newTestHandler(t)
	cases := map[string]struct {
		body string
		want int
	}{
		"wrong password": {`{"username":"jdoe","password":"nope"}`, http.StatusUnauthorized},
		"unknown user":   {`{"username":"ghost","password":"pa55word"}`, http.StatusUnauthorized},
		"missing fields": {`{"username":""}`, http.StatusBadRequest},
		"bad json":       {`{`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		rec := httptest.NewRecorder()
		h.HandleLogin(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tc.body)))
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", name, tc.want, rec.Code)
		}
	}
}
