package request

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Admin operations skip the owner guard and the validators entirely. They
// only require the admin role.

func (s *Service) requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// AdminSetStatus approves or rejects a request regardless of its current
// status or age.
func (s *Service) AdminSetStatus(ctx context.Context, actor Actor, id string, status Status) (Request, error) {
	if err := s.requireAdmin(actor); err != nil {
		return Request{}, err
	}
	if status != StatusApproved && status != StatusRejected {
		return Request{}, reject("status", RuleInvalidValue, fmt.Sprintf("status must be %s or %s", StatusApproved, StatusRejected))
	}
	updated, err := s.Store.Update(ctx, id, Patch{Status: &status})
	if err != nil {
		return Request{}, storeErr("update status", err)
	}
	slog.Info("request status set", "requestId", id, "status", status, "adminId", actor.UserID)
	return updated, nil
}

func (s *Service) AdminPrepareForceDelete(ctx context.Context, actor Actor, id string) (Request, error) {
	if err := s.requireAdmin(actor); err != nil {
		return Request{}, err
	}
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, storeErr("get request", err)
	}
	return req, nil
}

func (s *Service) AdminForceDelete(ctx context.Context, actor Actor, id string) error {
	if err := s.requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return storeErr("delete request", err)
	}
	slog.Info("request force deleted", "requestId", id, "adminId", actor.UserID)
	return nil
}

// AdminPatchField overwrites one payload field without running any policy
// rule. Derived fields are recomputed from the result.
func (s *Service) AdminPatchField(ctx context.Context, actor Actor, id, field string, value json.RawMessage) (Request, error) {
	if err := s.requireAdmin(actor); err != nil {
		return Request{}, err
	}
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, storeErr("get request", err)
	}
	patched, err := PatchField(current.Payload, field, value)
	if err != nil {
		return Request{}, err
	}
	if attendance, ok := patched.(Attendance); ok {
		owner, err := s.profile(ctx, current.OwnerID)
		if err != nil {
			return Request{}, err
		}
		patched = MarkLate(attendance, owner.Position)
	}
	updated, err := s.Store.Update(ctx, id, Patch{Payload: patched})
	if err != nil {
		return Request{}, storeErr("patch request", err)
	}
	slog.Info("request field patched", "requestId", id, "field", field, "adminId", actor.UserID)
	return updated, nil
}

func (s *Service) AdminSetRemark(ctx context.Context, actor Actor, id, comment string) (Request, error) {
	if err := s.requireAdmin(actor); err != nil {
		return Request{}, err
	}
	updated, err := s.Store.Update(ctx, id, Patch{AdminComment: &comment})
	if err != nil {
		return Request{}, storeErr("set remark", err)
	}
	slog.Info("request remark set", "requestId", id, "adminId", actor.UserID)
	return updated, nil
}
