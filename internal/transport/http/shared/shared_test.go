package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hrforms/internal/domain/request"
	"hrforms/internal/transport/http/api"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) api.Envelope {
	t.Helper()
	var env api.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestWriteErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &request.ValidationError{Field: "days", Rule: request.RuleInsufficientBalance, Detail: "no"}, http.StatusBadRequest, "validation_failed"},
		{"transition", &request.TransitionError{Reason: request.DenialWindowExpired}, http.StatusConflict, "transition_denied"},
		{"not found", request.ErrNotFound, http.StatusNotFound, "not_found"},
		{"forbidden", request.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"confirm", request.ErrConfirmRequired, http.StatusPreconditionRequired, "confirmation_required"},
		{"persistence", &request.PersistenceError{Op: "create", Err: errors.New("db down")}, http.StatusInternalServerError, "persistence_failed"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Success || env.Error == nil || env.Error.Code != tc.code {
			t.Fatalf("%s: unexpected envelope %+v", tc.name, env)
		}
	}
}

func TestWriteErrorCarriesDenialReason(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), &request.TransitionError{Reason: request.DenialNotPending})
	if !strings.Contains(rec.Body.String(), `"reason":"not_pending"`) {
		t.Fatalf("expected reason in body, got %s", rec.Body.String())
	}
}

func TestValidatorIssuesSorted(t *testing.T) {
	v := NewValidator()
	v.Required("username", "", "is required")
	v.Required("password", " ", "is required")
	v.Enum("status", "pending", []string{"Approved", "Rejected"}, "must be Approved or Rejected")
	v.Enum("other", "approved", []string{"Approved"}, "unused")

	issues := v.Issues()
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %+v", issues)
	}
	if issues[0].Field != "password" || issues[2].Field != "username" {
		t.Fatalf("expected sorted issues, got %+v", issues)
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject to write a response")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	if !DecodeJSON(rec, req, &dst) || dst.Name != "x" {
		t.Fatalf("expected decode to succeed, got %+v", dst)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if DecodeJSON(rec, req, &dst) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
