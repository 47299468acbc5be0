package request

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"hrforms/internal/domain/profile"
)

// OwnerView is one row of an employee's own history.
type OwnerView struct {
	Request

	// Editable is true while the owner may still edit or delete the request.
	Editable bool      `json:"editable"`
	LockedAt time.Time `json:"lockedAt"`
}

// Employee is the profile excerpt shown next to a request in the admin view.
type Employee struct {
	UserID     string `json:"userId"`
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Team       string `json:"team"`
	Position   string `json:"position"`
}

type AdminRow struct {
	Request
	Employee Employee `json:"employee"`
}

// LeaveOption is one entry of the leave type menu offered to an employee.
type LeaveOption struct {
	LeaveType LeaveType `json:"leaveType"`
	Tracked   bool      `json:"tracked"`
	Remaining *int      `json:"remaining,omitempty"`
}

// MyRequests lists the actor's requests, newest first.
func (s *Service) MyRequests(ctx context.Context, actor Actor) ([]OwnerView, error) {
	requests, err := s.Store.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	sortNewestFirst(requests)

	out := make([]OwnerView, 0, len(requests))
	for _, req := range requests {
		out = append(out, OwnerView{
			Request:  req,
			Editable: s.ownerGuard(actor, req) == nil,
			LockedAt: req.CreatedAt.Add(s.window()),
		})
	}
	return out, nil
}

// AllRequests lists every request joined with its owner's profile, newest
// first. Requests whose owner has no profile keep an empty Employee.
func (s *Service) AllRequests(ctx context.Context, actor Actor) ([]AdminRow, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	requests, err := s.Store.ListAll(ctx)
	if err != nil {
		return nil, storeErr("list requests", err)
	}
	sortNewestFirst(requests)

	byUser := map[string]profile.Profile{}
	if s.Profiles != nil && len(requests) > 0 {
		seen := map[string]bool{}
		var ids []string
		for _, req := range requests {
			if !seen[req.OwnerID] {
				seen[req.OwnerID] = true
				ids = append(ids, req.OwnerID)
			}
		}
		profiles, err := s.Profiles.List(ctx, ids)
		if err != nil {
			return nil, &PersistenceError{Op: "list profiles", Err: err}
		}
		for _, p := range profiles {
			byUser[p.UserID] = p
		}
	}

	out := make([]AdminRow, 0, len(requests))
	for _, req := range requests {
		p := byUser[req.OwnerID]
		out = append(out, AdminRow{
			Request: req,
			Employee: Employee{
				UserID:     req.OwnerID,
				EmployeeID: p.EmployeeID,
				Name:       p.DisplayName(),
				Department: p.Department,
				Team:       p.Team,
				Position:   p.Position,
			},
		})
	}
	return out, nil
}

// BalanceSummary reports the tracked balances the actor is eligible for.
func (s *Service) BalanceSummary(ctx context.Context, actor Actor) ([]Balance, error) {
	p, requests, err := s.ledgerInputs(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return Balances(requests, actor.UserID, AvailableLeaveTypes(p)), nil
}

// LeaveMenu lists the leave types the actor may file, with the remaining
// balance of each tracked type.
func (s *Service) LeaveMenu(ctx context.Context, actor Actor) ([]LeaveOption, error) {
	p, requests, err := s.ledgerInputs(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	types := AvailableLeaveTypes(p)
	out := make([]LeaveOption, 0, len(types))
	for _, lt := range types {
		opt := LeaveOption{LeaveType: lt, Tracked: lt.Tracked()}
		if opt.Tracked {
			remaining := RemainingBalance(requests, actor.UserID, lt, "")
			opt.Remaining = &remaining
		}
		out = append(out, opt)
	}
	return out, nil
}

func (s *Service) ledgerInputs(ctx context.Context, userID string) (profile.Profile, []Request, error) {
	var (
		p        profile.Profile
		requests []Request
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = s.profile(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		requests, err = s.Store.ListByOwner(gctx, userID)
		return storeErr("list requests", err)
	})
	if err := g.Wait(); err != nil {
		return profile.Profile{}, nil, err
	}
	return p, requests, nil
}
