package request

import (
	"fmt"
	"strings"
	"time"

	"hrforms/internal/domain/profile"
)

// ValidationContext is everything a validator may look at besides the draft.
// Validators never read the wall clock or the store.
type ValidationContext struct {
	Now      time.Time
	Location *time.Location
	OwnerID  string
	Profile  profile.Profile
	// Existing is the owner's request set, used by the leave ledger.
	Existing []Request
	// EditingID excludes the request being edited from balance sums.
	EditingID string
}

func (vc ValidationContext) Today() Date {
	return DateOf(vc.Now, vc.Location)
}

// Validate dispatches draft to the validator of its kind and returns the
// payload with derived fields populated.
func Validate(draft Payload, vc ValidationContext) (Payload, error) {
	switch v := draft.(type) {
	case Leave:
		return ValidateLeave(v, vc)
	case BusinessTrip:
		return ValidateBusinessTrip(v)
	case Overtime:
		return ValidateOvertime(v, vc)
	case Attendance:
		return ValidateAttendance(v, vc)
	case Letter:
		return ValidateLetter(v, vc)
	case nil:
		return nil, reject("formType", RuleRequired, "request payload is required")
	}
	return nil, fmt.Errorf("unsupported payload %T", draft)
}

func ValidateLeave(draft Leave, vc ValidationContext) (Leave, error) {
	if draft.StartDate.IsZero() {
		return Leave{}, reject("startDate", RuleRequired, "start date is required")
	}
	if draft.EndDate.IsZero() {
		return Leave{}, reject("endDate", RuleRequired, "end date is required")
	}
	if draft.LeaveType == "" {
		return Leave{}, reject("leaveType", RuleRequired, "leave type is required")
	}
	if !contains(LeaveTypes, draft.LeaveType) {
		return Leave{}, reject("leaveType", RuleInvalidValue, "unknown leave type")
	}
	if !contains(AvailableLeaveTypes(vc.Profile), draft.LeaveType) {
		return Leave{}, reject("leaveType", RuleLeaveTypeUnavailable, string(draft.LeaveType)+" is not available for this employee")
	}
	if draft.StartDate.After(draft.EndDate) {
		return Leave{}, reject("startDate", RuleDateOrder, "start date must not be later than end date")
	}

	draft.Days = LeaveDays(draft.StartDate, draft.EndDate)
	if draft.Days < 1 {
		return Leave{}, reject("endDate", RuleMinDays, "leave duration must be at least one day")
	}
	if draft.LeaveType == LeaveSick && draft.Days >= sickAttachmentMin && !draft.HasAttachment {
		return Leave{}, reject("hasAttachment", RuleAttachmentRequired, "a medical certificate is required for sick leave of 2 or more days")
	}
	if draft.LeaveType.Tracked() {
		remaining := RemainingBalance(vc.Existing, vc.OwnerID, draft.LeaveType, vc.EditingID)
		if draft.Days > remaining {
			return Leave{}, reject("days", RuleInsufficientBalance, fmt.Sprintf("insufficient %s balance, available: %d days", draft.LeaveType, remaining))
		}
	}
	return draft, nil
}

func ValidateBusinessTrip(draft BusinessTrip) (BusinessTrip, error) {
	draft.Destination = strings.TrimSpace(draft.Destination)
	draft.Purpose = strings.TrimSpace(draft.Purpose)
	switch {
	case draft.Destination == "":
		return BusinessTrip{}, reject("destination", RuleRequired, "destination is required")
	case draft.DepartureDate.IsZero():
		return BusinessTrip{}, reject("departureDate", RuleRequired, "departure date is required")
	case draft.ReturnDate.IsZero():
		return BusinessTrip{}, reject("returnDate", RuleRequired, "return date is required")
	case draft.Purpose == "":
		return BusinessTrip{}, reject("purpose", RuleRequired, "purpose is required")
	case draft.DepartureDate.After(draft.ReturnDate):
		return BusinessTrip{}, reject("departureDate", RuleDateOrder, "departure date must not be later than return date")
	}
	return draft, nil
}

func ValidateOvertime(draft Overtime, vc ValidationContext) (Overtime, error) {
	switch {
	case draft.Date.IsZero():
		return Overtime{}, reject("date", RuleRequired, "date is required")
	case draft.TimeIn.IsZero():
		return Overtime{}, reject("timeIn", RuleRequired, "time in is required")
	case draft.TimeOut.IsZero():
		return Overtime{}, reject("timeOut", RuleRequired, "time out is required")
	case draft.DayType == "":
		return Overtime{}, reject("dayType", RuleRequired, "day type is required")
	case strings.TrimSpace(draft.Remarks) == "":
		return Overtime{}, reject("remarks", RuleRequired, "remarks are required")
	case !contains(DayTypes, draft.DayType):
		return Overtime{}, reject("dayType", RuleInvalidValue, "unknown day type")
	}

	today := vc.Today()
	if draft.Date.After(today) {
		return Overtime{}, reject("date", RuleFutureDate, "overtime cannot be filed for a future date")
	}
	if draft.Date.Before(today.AddDays(-filingWindowDays)) {
		return Overtime{}, reject("date", RuleFilingWindow, "overtime must be filed within 7 days of the work date")
	}

	if DutyMinutes(draft.TimeIn, draft.TimeOut) < minDutyMinutes {
		return Overtime{}, reject("timeOut", RuleMinDutyHours, "overtime is only permitted after at least 10 hours of duty")
	}
	total := OvertimeHours(draft.TimeIn, draft.TimeOut)
	if !total.IsPositive() {
		return Overtime{}, reject("totalHours", RuleNoOvertime, "total overtime hours must be more than 0")
	}
	draft.DutyHours = DutyHours(draft.TimeIn, draft.TimeOut).InexactFloat64()
	draft.TotalHours = total.InexactFloat64()
	return draft, nil
}

func ValidateAttendance(draft Attendance, vc ValidationContext) (Attendance, error) {
	switch {
	case draft.Category == "":
		return Attendance{}, reject("category", RuleRequired, "category is required")
	case !contains(AttendanceCategories, draft.Category):
		return Attendance{}, reject("category", RuleInvalidValue, "unknown attendance category")
	case draft.FromDate.IsZero():
		return Attendance{}, reject("fromDate", RuleRequired, "from date is required")
	case draft.EndDate.IsZero():
		return Attendance{}, reject("endDate", RuleRequired, "end date is required")
	case draft.FromDate.After(draft.EndDate):
		return Attendance{}, reject("fromDate", RuleDateOrder, "from date cannot be later than end date")
	}

	today := vc.Today()
	earliest := today.AddDays(-filingWindowDays)
	if draft.FromDate.Before(earliest) || draft.EndDate.Before(earliest) {
		return Attendance{}, reject("fromDate", RuleFilingWindow, "regularization cannot be filed for dates more than 7 days ago")
	}
	if draft.FromDate.After(today) || draft.EndDate.After(today) {
		return Attendance{}, reject("endDate", RuleFutureDate, "regularization cannot be filed for future dates")
	}
	if !draft.TimeIn.IsZero() && !draft.TimeOut.IsZero() && draft.TimeOut.Minutes() <= draft.TimeIn.Minutes() {
		return Attendance{}, reject("timeOut", RuleTimeOrder, "time out must be later than time in")
	}

	return MarkLate(draft, vc.Profile.Position), nil
}

func ValidateLetter(draft Letter, vc ValidationContext) (Letter, error) {
	switch {
	case draft.LetterType == "":
		return Letter{}, reject("letterType", RuleRequired, "letter type is required")
	case !contains(LetterTypes, draft.LetterType):
		return Letter{}, reject("letterType", RuleInvalidValue, "unknown letter type")
	case draft.DateNeeded.IsZero():
		return Letter{}, reject("dateNeeded", RuleRequired, "date needed is required")
	case draft.DateNeeded.Before(vc.Today().AddDays(letterLeadDays)):
		return Letter{}, reject("dateNeeded", RuleLeadTime, "letters require at least a 3-day lead time")
	}

	draft.TemplateName = strings.TrimSpace(draft.TemplateName)
	if draft.LetterType == LetterCOE && draft.TemplateName == "" {
		return Letter{}, reject("templateName", RuleRequired, "template name is required for COE")
	}
	if draft.LetterType != LetterCOE {
		draft.TemplateName = ""
	}
	return draft, nil
}
