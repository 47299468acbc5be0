package request

import (
	"time"

	"hrforms/internal/domain/auth"
)

type FormType string

const (
	FormLeave        FormType = "leave"
	FormBusinessTrip FormType = "business_trip"
	FormOvertime     FormType = "overtime"
	FormAttendance   FormType = "attendance"
	FormLetter       FormType = "letter"
)

var FormTypes = []FormType{FormLeave, FormBusinessTrip, FormOvertime, FormAttendance, FormLetter}

// Title returns the form name shown to employees.
func (f FormType) Title() string {
	switch f {
	case FormLeave:
		return "Leave Management Form"
	case FormBusinessTrip:
		return "Official Business Trip Form"
	case FormOvertime:
		return "Overtime Form"
	case FormAttendance:
		return "Attendance Regularization Form"
	case FormLetter:
		return "Letter Request Form"
	}
	return string(f)
}

func (f FormType) Valid() bool {
	switch f {
	case FormLeave, FormBusinessTrip, FormOvertime, FormAttendance, FormLetter:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// Envelope carries the fields shared by every request kind.
type Envelope struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	FormType     FormType  `json:"formType"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	AdminComment string    `json:"adminComment,omitempty"`
}

type Request struct {
	Envelope
	Payload Payload `json:"data"`
}

// Payload is implemented by exactly the five request kinds of this package.
type Payload interface {
	Kind() FormType
	sealed()
}

type Leave struct {
	StartDate     Date      `json:"startDate"`
	EndDate       Date      `json:"endDate"`
	Days          int       `json:"days"`
	LeaveType     LeaveType `json:"leaveType"`
	Remarks       string    `json:"remarks,omitempty"`
	HasAttachment bool      `json:"hasAttachment"`
}

type BusinessTrip struct {
	Destination   string `json:"destination"`
	DepartureDate Date   `json:"departureDate"`
	ReturnDate    Date   `json:"returnDate"`
	Purpose       string `json:"purpose"`
}

type Overtime struct {
	Date       Date      `json:"date"`
	TimeIn     ClockTime `json:"timeIn"`
	TimeOut    ClockTime `json:"timeOut"`
	DayType    DayType   `json:"dayType"`
	DutyHours  float64   `json:"dutyHours"`
	TotalHours float64   `json:"totalHours"`
	Remarks    string    `json:"remarks"`
}

type Attendance struct {
	Category AttendanceCategory `json:"category"`
	FromDate Date               `json:"fromDate"`
	EndDate  Date               `json:"endDate"`
	TimeIn   ClockTime          `json:"timeIn,omitzero"`
	TimeOut  ClockTime          `json:"timeOut,omitzero"`
	Remarks  string             `json:"remarks,omitempty"`
	Late     bool               `json:"late"`
}

type Letter struct {
	LetterType   LetterType `json:"letterType"`
	TemplateName string     `json:"templateName,omitempty"`
	DateNeeded   Date       `json:"dateNeeded"`
	Remarks      string     `json:"remarks,omitempty"`
}

func (Leave) Kind() FormType { return FormLeave }
func (BusinessTrip) Kind() FormType { return FormBusinessTrip }
func (Overtime) Kind() FormType { return FormOvertime }
func (Attendance) Kind() FormType { return FormAttendance }
func (Letter) Kind() FormType { return FormLetter }

func (Leave) sealed() {}
func (BusinessTrip) sealed() {}
func (Overtime) sealed() {}
func (Attendance) sealed() {}
func (Letter) sealed() {}

// Actor is the identity handed to the engine by the identity provider.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == auth.RoleAdmin
}

// Patch is a partial update keyed by request id. Nil fields are left untouched.
type Patch struct {
	Payload      Payload
	Status       *Status
	AdminComment *string
}
