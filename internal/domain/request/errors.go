package request

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrTransitionDenied = errors.New("transition denied")
	ErrNotFound         = errors.New("request not found")
	ErrPersistence      = errors.New("persistence failed")
	ErrForbidden        = errors.New("forbidden")
	ErrConfirmRequired  = errors.New("confirmation required")
)

// Rule names the policy a ValidationError reports.
type Rule string

const (
	RuleRequired             Rule = "required"
	RuleInvalidValue         Rule = "invalid_value"
	RuleDateOrder            Rule = "date_order"
	RuleMinDays              Rule = "min_days"
	RuleLeaveTypeUnavailable Rule = "leave_type_unavailable"
	RuleAttachmentRequired   Rule = "attachment_required"
	RuleInsufficientBalance  Rule = "insufficient_balance"
	RuleFutureDate           Rule = "future_date"
	RuleFilingWindow         Rule = "filing_window"
	RuleMinDutyHours         Rule = "min_duty_hours"
	RuleNoOvertime           Rule = "no_overtime"
	RuleTimeOrder            Rule = "time_order"
	RuleLeadTime             Rule = "lead_time"
	RuleFormTypeMismatch     Rule = "form_type_mismatch"
	RuleDerivedField         Rule = "derived_field"
	RuleUnknownField         Rule = "unknown_field"
)

type ValidationError struct {
	Field  string
	Rule   Rule
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Detail, e.Rule)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func reject(field string, rule Rule, detail string) error {
	return &ValidationError{Field: field, Rule: rule, Detail: detail}
}

type DenialReason string

const (
	DenialNotOwner      DenialReason = "not_owner"
	DenialNotPending    DenialReason = "not_pending"
	DenialWindowExpired DenialReason = "window_expired"
)

type TransitionError struct {
	Reason DenialReason
}

func (e *TransitionError) Error() string {
	switch e.Reason {
	case DenialNotOwner:
		return "request belongs to another employee"
	case DenialNotPending:
		return "request is no longer pending"
	case DenialWindowExpired:
		return "request edit window has closed"
	}
	return "request cannot be changed"
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrTransitionDenied
}

// PersistenceError wraps a record store failure, unchanged and never retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// storeErr passes ErrNotFound through and wraps everything else.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return &PersistenceError{Op: op, Err: err}
}
