package request

import (
	"strings"

	"github.com/shopspring/decimal"

	"hrforms/internal/domain/profile"
)

var minutesPerHour = decimal.NewFromInt(60)

// LeaveDays returns the inclusive day count between start and end.
func LeaveDays(start, end Date) int {
	return start.DaysUntil(end) + 1
}

// DutyMinutes returns the elapsed minutes from in to out, wrapping past
// midnight when out is earlier than in.
func DutyMinutes(in, out ClockTime) int {
	minutes := out.Minutes() - in.Minutes()
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return minutes
}

// DutyHours is DutyMinutes in hours, rounded to two decimals.
func DutyHours(in, out ClockTime) decimal.Decimal {
	return decimal.NewFromInt(int64(DutyMinutes(in, out))).Div(minutesPerHour).Round(2)
}

// OvertimeHours counts the hours worked beyond the nine-hour base shift.
func OvertimeHours(in, out ClockTime) decimal.Decimal {
	extra := DutyMinutes(in, out) - baseShiftMinutes
	if extra <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(extra)).Div(minutesPerHour).Round(2)
}

// IsLateExempt reports whether position is never flagged late.
func IsLateExempt(position string) bool {
	return contains(LateExemptPositions, strings.TrimSpace(position))
}

// IsLate reports whether a work-from-home time-in is past 09:30 for a
// non-exempt position.
func IsLate(category AttendanceCategory, timeIn ClockTime, position string) bool {
	if category != CategoryWorkFromHome || timeIn.IsZero() {
		return false
	}
	return timeIn.Minutes() > lateAfterMinutes && !IsLateExempt(position)
}

// MarkLate sets the late flag of a for an owner holding position and keeps
// exactly one late marker at the front of the remarks while late.
func MarkLate(a Attendance, position string) Attendance {
	remarks := strings.TrimPrefix(a.Remarks, LateMarker)
	a.Late = IsLate(a.Category, a.TimeIn, position)
	if a.Late {
		remarks = LateMarker + remarks
	}
	a.Remarks = remarks
	return a
}

// AvailableLeaveTypes is the leave menu offered to p.
func AvailableLeaveTypes(p profile.Profile) []LeaveType {
	types := []LeaveType{LeaveSick, LeaveVacation, LeaveBereavement, LeaveWithoutPay}
	switch p.Gender {
	case profile.GenderMale:
		types = append(types, LeavePaternity)
	case profile.GenderFemale:
		types = append(types, LeaveMaternity)
	}
	if p.SoloParent {
		types = append(types, LeaveSoloParent)
	}
	return types
}

// Derive recomputes the arithmetic fields of p without applying any policy.
// Fields whose inputs are missing are zeroed. The attendance late flag also
// depends on the owner's position and is applied by MarkLate.
func Derive(p Payload) Payload {
	switch v := p.(type) {
	case Leave:
		v.Days = 0
		if !v.StartDate.IsZero() && !v.EndDate.IsZero() {
			v.Days = max(LeaveDays(v.StartDate, v.EndDate), 0)
		}
		return v
	case Overtime:
		v.DutyHours, v.TotalHours = 0, 0
		if !v.TimeIn.IsZero() && !v.TimeOut.IsZero() {
			v.DutyHours = DutyHours(v.TimeIn, v.TimeOut).InexactFloat64()
			v.TotalHours = OvertimeHours(v.TimeIn, v.TimeOut).InexactFloat64()
		}
		return v
	case BusinessTrip, Attendance, Letter:
		return v
	}
	return p
}
