package request

import "time"

type LeaveType string

const (
	LeaveSick        LeaveType = "Sick Leave"
	LeaveVacation    LeaveType = "Vacation Leave"
	LeaveMaternity   LeaveType = "Maternity Leave"
	LeavePaternity   LeaveType = "Paternity Leave"
	LeaveBereavement LeaveType = "Bereavement Leave"
	LeaveWithoutPay  LeaveType = "Leave Without Pay"
	LeaveSoloParent  LeaveType = "Solo Parent Leave"
)

var LeaveTypes = []LeaveType{
	LeaveSick,
	LeaveVacation,
	LeaveMaternity,
	LeavePaternity,
	LeaveBereavement,
	LeaveWithoutPay,
	LeaveSoloParent,
}

// Entitlements holds the annual credits of the balance-tracked leave types.
var Entitlements = map[LeaveType]int{
	LeaveSick:       15,
	LeaveVacation:   15,
	LeaveSoloParent: 7,
}

// TrackedLeaveTypes lists the balance-tracked types in display order.
var TrackedLeaveTypes = []LeaveType{LeaveSick, LeaveVacation, LeaveSoloParent}

func (t LeaveType) Tracked() bool {
	_, ok := Entitlements[t]
	return ok
}

type DayType string

const (
	DayRegular        DayType = "Regular Workday"
	DayRest           DayType = "Rest Day"
	DaySpecialHoliday DayType = "Special Non-Working Holiday"
	DayRegularHoliday DayType = "Regular Holiday"
)

var DayTypes = []DayType{DayRegular, DayRest, DaySpecialHoliday, DayRegularHoliday}

type AttendanceCategory string

const (
	CategoryBranchVisit         AttendanceCategory = "Branch Visit"
	CategoryBusinessMeeting     AttendanceCategory = "Business Meeting"
	CategoryFieldWork           AttendanceCategory = "Field Work"
	CategorySchoolVisit         AttendanceCategory = "School Visit"
	CategorySeminar             AttendanceCategory = "Seminar"
	CategoryTraining            AttendanceCategory = "Training"
	CategoryTechnicalAssistance AttendanceCategory = "Technical Assistance"
	CategoryWorkFromHome        AttendanceCategory = "Work from Home"
)

var AttendanceCategories = []AttendanceCategory{
	CategoryBranchVisit,
	CategoryBusinessMeeting,
	CategoryFieldWork,
	CategorySchoolVisit,
	CategorySeminar,
	CategoryTraining,
	CategoryTechnicalAssistance,
	CategoryWorkFromHome,
}

type LetterType string

const (
	LetterCOE     LetterType = "COE"
	LetterBIR2316 LetterType = "BIR 2316"
)

var LetterTypes = []LetterType{LetterCOE, LetterBIR2316}

var COETemplates = []string{
	"Pag-Ibig Multipurpose Loan",
	"Bank Loan/Housing",
	"Credit Card Application",
	"Travel Order",
	"Employee Reference (with compensation)",
	"Employee Reference (without compensation)",
	"Visa Application",
}

// LateExemptPositions are never flagged late on work-from-home regularization.
var LateExemptPositions = []string{
	"Executive",
	"Manager",
	"Supervisor",
	"Team Leader",
	"Assistant Team Leader",
}

const (
	LateMarker = "[LATE RECORDED] "

	// DefaultMutabilityWindow is how long an owner may edit or delete a pending request.
	DefaultMutabilityWindow = 24 * time.Hour

	filingWindowDays  = 7
	letterLeadDays    = 3
	minDutyMinutes    = 10 * 60
	baseShiftMinutes  = 9 * 60
	lateAfterMinutes  = 9*60 + 30
	minutesPerDay     = 24 * 60
	sickAttachmentMin = 2
)

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
