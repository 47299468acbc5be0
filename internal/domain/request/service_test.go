package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"hrforms/internal/domain/auth"
	"hrforms/internal/domain/profile"
)

var (
	employee = Actor{UserID: "u1", Role: auth.RoleUser}
	coworker = Actor{UserID: "u2", Role: auth.RoleUser}
	admin    = Actor{UserID: "a1", Role: auth.RoleAdmin}
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T, profiles ...profile.Profile) (*Service, *clock) {
	t.Helper()
	if len(profiles) == 0 {
		profiles = []profile.Profile{
			{UserID: "u1", Name: "Ana Cruz", Gender: profile.GenderFemale, Position: "Developer"},
			{UserID: "u2", Name: "Ben Reyes", Gender: profile.GenderMale, Position: "Manager"},
		}
	}
	c := &clock{now: time.Date(2025, 3, 10, 10, 0, 0, 0, testLocation)}
	svc := NewService(NewMemoryStore(), profile.NewMemoryStore(profiles...), testLocation)
	svc.Now = c.Now
	return svc, c
}

func vacation(days int) Leave {
	start := NewDate(2025, 3, 17)
	return Leave{StartDate: start, EndDate: start.AddDays(days - 1), LeaveType: LeaveVacation}
}

func expectDenial(t *testing.T, err error, reason DenialReason) {
	t.Helper()
	var terr *TransitionError
	if !errors.As(err, &terr) || terr.Reason != reason {
		t.Fatalf("expected %s denial, got %v", reason, err)
	}
	if !errors.Is(err, ErrTransitionDenied) {
		t.Fatal("denials must match ErrTransitionDenied")
	}
}

func TestCreateStampsEnvelope(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, employee, vacation(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.OwnerID != "u1" || created.Status != StatusPending || created.FormType != FormLeave {
		t.Fatalf("unexpected envelope %+v", created.Envelope)
	}
	if !created.CreatedAt.Equal(c.Now()) {
		t.Fatalf("expected creation time from the injected clock, got %v", created.CreatedAt)
	}
	if created.Payload.(Leave).Days != 2 {
		t.Fatalf("expected derived days, got %+v", created.Payload)
	}

	if _, err := svc.Create(ctx, employee, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for nil draft, got %v", err)
	}
}

func TestOwnerWindow(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c.Advance(23 * time.Hour)
	edited, err := svc.Edit(ctx, employee, created.ID, vacation(3))
	if err != nil {
		t.Fatalf("edit inside window: %v", err)
	}
	if edited.Payload.(Leave).Days != 3 || !edited.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected edit result %+v", edited)
	}

	c.Advance(2 * time.Hour)
	_, err = svc.Edit(ctx, employee, created.ID, vacation(1))
	expectDenial(t, err, DenialWindowExpired)
	_, err = svc.PrepareDelete(ctx, employee, created.ID)
	expectDenial(t, err, DenialWindowExpired)
}

func TestOwnerGuardOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Edit(ctx, coworker, created.ID, vacation(1))
	expectDenial(t, err, DenialNotOwner)

	if _, err := svc.AdminSetStatus(ctx, admin, created.ID, StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err = svc.Edit(ctx, employee, created.ID, vacation(1))
	expectDenial(t, err, DenialNotPending)
	err = svc.ConfirmDelete(ctx, employee, created.ID)
	expectDenial(t, err, DenialNotPending)
	_, err = svc.PrepareDelete(ctx, coworker, created.ID)
	expectDenial(t, err, DenialNotOwner)

	if _, err := svc.Edit(ctx, employee, "missing", vacation(1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEditRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	start := NewDate(2025, 3, 17)
	sick, err := svc.Create(ctx, employee, Leave{StartDate: start, EndDate: start.AddDays(1), LeaveType: LeaveSick, HasAttachment: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// An attachment filed earlier carries forward to the edit.
	edited, err := svc.Edit(ctx, employee, sick.ID, Leave{StartDate: start, EndDate: start.AddDays(2), LeaveType: LeaveSick})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !edited.Payload.(Leave).HasAttachment {
		t.Fatal("expected attachment to carry forward")
	}

	_, err = svc.Edit(ctx, employee, sick.ID, BusinessTrip{Destination: "Cebu", DepartureDate: start, ReturnDate: start, Purpose: "visit"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != RuleFormTypeMismatch {
		t.Fatalf("expected form type mismatch, got %v", err)
	}

	// Editing a request does not count its own days against the balance.
	big, err := svc.Create(ctx, employee, vacation(15))
	if err != nil {
		t.Fatalf("create full balance: %v", err)
	}
	if _, err := svc.Edit(ctx, employee, big.ID, vacation(14)); err != nil {
		t.Fatalf("edit within own balance: %v", err)
	}
	if _, err := svc.Create(ctx, employee, vacation(2)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
}

func TestEditJSONGuardsBeforeDecoding(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.EditJSON(ctx, coworker, created.ID, json.RawMessage(`{"startDate":"soon"}`))
	expectDenial(t, err, DenialNotOwner)

	_, err = svc.EditJSON(ctx, employee, created.ID, json.RawMessage(`{"startDate":"soon"}`))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for a malformed payload, got %v", err)
	}

	edited, err := svc.EditJSON(ctx, employee, created.ID, json.RawMessage(`{"startDate":"2025-03-17","endDate":"2025-03-18","leaveType":"Vacation Leave"}`))
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if got := edited.Payload.(Leave); got.Days != 2 {
		t.Fatalf("expected 2 days, got %+v", got)
	}
	if _, err := svc.EditJSON(ctx, employee, "missing", json.RawMessage(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteFlow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	prepared, err := svc.PrepareDelete(ctx, employee, created.ID)
	if err != nil || prepared.ID != created.ID {
		t.Fatalf("prepare: %+v %v", prepared, err)
	}
	if _, err := svc.Get(ctx, employee, created.ID); err != nil {
		t.Fatalf("prepare must not delete: %v", err)
	}
	if err := svc.ConfirmDelete(ctx, employee, created.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.Get(ctx, employee, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestAdminOverridesAreUnconditional(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(2))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	c.Advance(30 * 24 * time.Hour)

	if _, err := svc.AdminSetStatus(ctx, employee, created.ID, StatusApproved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non-admin, got %v", err)
	}
	if _, err := svc.AdminSetStatus(ctx, admin, created.ID, StatusPending); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for pending, got %v", err)
	}

	approved, err := svc.AdminSetStatus(ctx, admin, created.ID, StatusApproved)
	if err != nil || approved.Status != StatusApproved {
		t.Fatalf("approve: %+v %v", approved, err)
	}
	rejected, err := svc.AdminSetStatus(ctx, admin, created.ID, StatusRejected)
	if err != nil || rejected.Status != StatusRejected {
		t.Fatalf("reject after approve: %+v %v", rejected, err)
	}
	again, err := svc.AdminSetStatus(ctx, admin, created.ID, StatusRejected)
	if err != nil || again.Status != StatusRejected {
		t.Fatalf("setting the same status twice must succeed: %+v %v", again, err)
	}

	remarked, err := svc.AdminSetRemark(ctx, admin, created.ID, "see HR")
	if err != nil || remarked.AdminComment != "see HR" || remarked.Status != StatusRejected {
		t.Fatalf("remark: %+v %v", remarked, err)
	}

	patched, err := svc.AdminPatchField(ctx, admin, created.ID, "leaveType", json.RawMessage(`"Sick Leave"`))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got := patched.Payload.(Leave); got.LeaveType != LeaveSick || got.HasAttachment {
		t.Fatalf("admin patch must bypass policy, got %+v", got)
	}

	if _, err := svc.AdminPrepareForceDelete(ctx, admin, created.ID); err != nil {
		t.Fatalf("prepare force delete: %v", err)
	}
	if err := svc.AdminForceDelete(ctx, admin, created.ID); err != nil {
		t.Fatalf("force delete: %v", err)
	}
	if err := svc.AdminForceDelete(ctx, admin, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestAdminRemarkIsLogged(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AdminSetRemark(ctx, admin, created.ID, "see HR"); err != nil {
		t.Fatalf("remark: %v", err)
	}

	var entry map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var candidate map[string]any
		if json.Unmarshal([]byte(line), &candidate) == nil && candidate["msg"] == "request remark set" {
			entry = candidate
		}
	}
	if entry == nil {
		t.Fatalf("expected a remark log line, got %s", buf.String())
	}
	if entry["requestId"] != created.ID || entry["adminId"] != admin.UserID {
		t.Fatalf("unexpected log attributes: %v", entry)
	}
}

func TestAdminPatchRederivesLateness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, Attendance{
		Category: CategoryWorkFromHome,
		FromDate: NewDate(2025, 3, 10),
		EndDate:  NewDate(2025, 3, 10),
		TimeIn:   NewClockTime(9, 0),
		TimeOut:  NewClockTime(18, 0),
		Remarks:  "ok",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Payload.(Attendance).Late {
		t.Fatal("09:00 is on time")
	}

	late, err := svc.AdminPatchField(ctx, admin, created.ID, "timeIn", json.RawMessage(`"10:15"`))
	if err != nil {
		t.Fatalf("patch late: %v", err)
	}
	if got := late.Payload.(Attendance); !got.Late || got.Remarks != LateMarker+"ok" {
		t.Fatalf("expected late with marker, got %+v", got)
	}

	onTime, err := svc.AdminPatchField(ctx, admin, created.ID, "timeIn", json.RawMessage(`"09:00"`))
	if err != nil {
		t.Fatalf("patch on time: %v", err)
	}
	if got := onTime.Payload.(Attendance); got.Late || got.Remarks != "ok" {
		t.Fatalf("expected marker removed, got %+v", got)
	}

	exempt, err := svc.Create(ctx, coworker, Attendance{
		Category: CategoryWorkFromHome,
		FromDate: NewDate(2025, 3, 10),
		EndDate:  NewDate(2025, 3, 10),
		TimeIn:   NewClockTime(9, 0),
		TimeOut:  NewClockTime(18, 0),
	})
	if err != nil {
		t.Fatalf("create exempt: %v", err)
	}
	patched, err := svc.AdminPatchField(ctx, admin, exempt.ID, "timeIn", json.RawMessage(`"10:15"`))
	if err != nil {
		t.Fatalf("patch exempt: %v", err)
	}
	if patched.Payload.(Attendance).Late {
		t.Fatal("managers stay exempt after an admin patch")
	}
}

func TestAdminPatchClearsDerivedHours(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, Overtime{
		Date:    NewDate(2025, 3, 7),
		TimeIn:  NewClockTime(7, 0),
		TimeOut: NewClockTime(17, 0),
		DayType: DayRegular,
		Remarks: "release",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	patched, err := svc.AdminPatchField(ctx, admin, created.ID, "timeOut", json.RawMessage(`null`))
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if got := patched.Payload.(Overtime); got.DutyHours != 0 || got.TotalHours != 0 {
		t.Fatalf("expected hours zeroed, got %+v", got)
	}
}

func TestRejectedLeaveRestoresBalance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(15))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, employee, vacation(1)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected balance exhausted, got %v", err)
	}
	if _, err := svc.AdminSetStatus(ctx, admin, created.ID, StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Create(ctx, employee, vacation(15)); err != nil {
		t.Fatalf("expected balance restored: %v", err)
	}
}

func TestAttendanceUsesOwnerPosition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	draft := Attendance{
		Category: CategoryWorkFromHome,
		FromDate: NewDate(2025, 3, 10),
		EndDate:  NewDate(2025, 3, 10),
		TimeIn:   NewClockTime(9, 31),
		TimeOut:  NewClockTime(18, 30),
	}

	late, err := svc.Create(ctx, employee, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !late.Payload.(Attendance).Late {
		t.Fatal("expected developer to be flagged late")
	}
	exempt, err := svc.Create(ctx, coworker, draft)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if exempt.Payload.(Attendance).Late {
		t.Fatal("managers are never flagged late")
	}
}

func TestMissingProfileFallsBackToEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	stranger := Actor{UserID: "u9", Role: auth.RoleUser}

	if _, err := svc.Create(ctx, stranger, vacation(1)); err != nil {
		t.Fatalf("common leave types need no profile: %v", err)
	}
	start := NewDate(2025, 3, 17)
	_, err := svc.Create(ctx, stranger, Leave{StartDate: start, EndDate: start, LeaveType: LeaveMaternity})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != RuleLeaveTypeUnavailable {
		t.Fatalf("expected gated leave to be unavailable, got %v", err)
	}
}

func TestGetIsOwnerOrAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, employee, vacation(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, coworker, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, admin, created.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestConcurrentLeaveNeverOverdraws(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const attempts = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, employee, vacation(2))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 7 {
		t.Fatalf("expected 7 two-day requests to fit a 15-day balance, got %d", accepted)
	}
	balances, err := svc.BalanceSummary(ctx, employee)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	for _, b := range balances {
		if b.LeaveType == LeaveVacation && (b.Used != 14 || b.Remaining != 1) {
			t.Fatalf("unexpected vacation balance %+v", b)
		}
	}
}
