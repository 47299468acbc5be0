package request

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"hrforms/internal/domain/profile"
)

// Service runs the request lifecycle: create, owner edit and delete, admin
// overrides and read projections. Every rule check reads time from Now.
type Service struct {
	Store    Store
	Profiles ProfileReader
	Now      func() time.Time
	Location *time.Location
	// Window is how long an owner may edit or delete a pending request.
	Window time.Duration

	locks keyedMutex
}

func NewService(store Store, profiles ProfileReader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Store:    store,
		Profiles: profiles,
		Now:      time.Now,
		Location: loc,
		Window:   DefaultMutabilityWindow,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) window() time.Duration {
	if s.Window <= 0 {
		return DefaultMutabilityWindow
	}
	return s.Window
}

// Create validates draft for actor and stores it as a new Pending request.
func (s *Service) Create(ctx context.Context, actor Actor, draft Payload) (Request, error) {
	if draft == nil {
		return Request{}, reject("formType", RuleRequired, "request payload is required")
	}
	defer s.lockLedger(actor.UserID, draft)()

	vc, err := s.validationContext(ctx, actor.UserID, "", draft.Kind())
	if err != nil {
		return Request{}, err
	}
	validated, err := Validate(draft, vc)
	if err != nil {
		return Request{}, err
	}

	created, err := s.Store.Create(ctx, Request{
		Envelope: Envelope{
			ID:        uuid.NewString(),
			OwnerID:   actor.UserID,
			FormType:  validated.Kind(),
			Status:    StatusPending,
			CreatedAt: vc.Now,
		},
		Payload: validated,
	})
	if err != nil {
		return Request{}, storeErr("create request", err)
	}
	slog.Info("request created", "requestId", created.ID, "formType", created.FormType, "ownerId", created.OwnerID)
	return created, nil
}

// Edit replaces the payload of a pending request the actor owns. The form
// type cannot change and the envelope is preserved.
func (s *Service) Edit(ctx context.Context, actor Actor, id string, draft Payload) (Request, error) {
	if draft == nil {
		return Request{}, reject("formType", RuleRequired, "request payload is required")
	}
	defer s.lockLedger(actor.UserID, draft)()

	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, storeErr("get request", err)
	}
	if err := s.ownerGuard(actor, current); err != nil {
		return Request{}, err
	}
	if draft.Kind() != current.FormType {
		return Request{}, reject("formType", RuleFormTypeMismatch, "an edit cannot change the form type")
	}
	if leave, ok := draft.(Leave); ok {
		if prior, ok := current.Payload.(Leave); ok && prior.HasAttachment {
			leave.HasAttachment = true
			draft = leave
		}
	}

	vc, err := s.validationContext(ctx, actor.UserID, id, draft.Kind())
	if err != nil {
		return Request{}, err
	}
	validated, err := Validate(draft, vc)
	if err != nil {
		return Request{}, err
	}

	updated, err := s.Store.Update(ctx, id, Patch{Payload: validated})
	if err != nil {
		return Request{}, storeErr("update request", err)
	}
	slog.Info("request edited", "requestId", id, "ownerId", actor.UserID)
	return updated, nil
}

// EditJSON decodes data as the stored request's form type and applies Edit.
// The owner guard runs before decoding so a caller learns why the request is
// locked ahead of any payload error.
func (s *Service) EditJSON(ctx context.Context, actor Actor, id string, data json.RawMessage) (Request, error) {
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, storeErr("get request", err)
	}
	if err := s.ownerGuard(actor, current); err != nil {
		return Request{}, err
	}
	draft, err := DecodePayload(current.FormType, data)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return Request{}, err
		}
		return Request{}, reject("data", RuleInvalidValue, err.Error())
	}
	return s.Edit(ctx, actor, id, draft)
}

// PrepareDelete runs the owner guard without deleting, so a caller can ask
// for confirmation first.
func (s *Service) PrepareDelete(ctx context.Context, actor Actor, id string) (Request, error) {
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, storeErr("get request", err)
	}
	if err := s.ownerGuard(actor, current); err != nil {
		return Request{}, err
	}
	return current, nil
}

// ConfirmDelete re-checks the owner guard and deletes the request.
func (s *Service) ConfirmDelete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.PrepareDelete(ctx, actor, id); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return storeErr("delete request", err)
	}
	slog.Info("request deleted", "requestId", id, "ownerId", actor.UserID)
	return nil
}

// Get returns one request to its owner or to an admin.
func (s *Service) Get(ctx context.Context, actor Actor, id string) (Request, error) {
	req, err := s.Store.Get(ctx, id)
	if err != nil {
		return Request{}, storeErr("get request", err)
	}
	if req.OwnerID != actor.UserID && !actor.IsAdmin() {
		return Request{}, ErrForbidden
	}
	return req, nil
}

// ownerGuard checks ownership, then status, then the mutability window.
func (s *Service) ownerGuard(actor Actor, req Request) error {
	if req.OwnerID != actor.UserID {
		return &TransitionError{Reason: DenialNotOwner}
	}
	if req.Status != StatusPending {
		return &TransitionError{Reason: DenialNotPending}
	}
	if !s.withinWindow(req) {
		return &TransitionError{Reason: DenialWindowExpired}
	}
	return nil
}

func (s *Service) withinWindow(req Request) bool {
	return s.now().Sub(req.CreatedAt) < s.window()
}

// lockLedger serializes leave writes per owner and leave type, so the
// balance read and the write that depends on it cannot interleave.
func (s *Service) lockLedger(ownerID string, draft Payload) func() {
	leave, ok := draft.(Leave)
	if !ok || !leave.LeaveType.Tracked() {
		return func() {}
	}
	return s.locks.Lock(ownerID + "|" + string(leave.LeaveType))
}

func (s *Service) validationContext(ctx context.Context, ownerID, editingID string, kind FormType) (ValidationContext, error) {
	vc := ValidationContext{
		Now:       s.now(),
		Location:  s.Location,
		OwnerID:   ownerID,
		Profile:   profile.Profile{UserID: ownerID},
		EditingID: editingID,
	}
	if kind != FormLeave && kind != FormAttendance {
		return vc, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.profile(gctx, ownerID)
		if err != nil {
			return err
		}
		vc.Profile = p
		return nil
	})
	if kind == FormLeave {
		g.Go(func() error {
			existing, err := s.Store.ListByOwner(gctx, ownerID)
			if err != nil {
				return storeErr("list requests", err)
			}
			vc.Existing = existing
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ValidationContext{}, err
	}
	return vc, nil
}

// profile falls back to an empty profile when none is on file.
func (s *Service) profile(ctx context.Context, userID string) (profile.Profile, error) {
	if s.Profiles == nil {
		return profile.Profile{UserID: userID}, nil
	}
	p, err := s.Profiles.Get(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		slog.Warn("employee profile missing", "userId", userID)
		return profile.Profile{UserID: userID}, nil
	}
	if err != nil {
		return profile.Profile{}, &PersistenceError{Op: "get profile", Err: err}
	}
	return p, nil
}
