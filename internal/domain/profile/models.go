package profile

import "time"

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

var Genders = []string{GenderMale, GenderFemale}

const (
	EmploymentRegular      = "Regular"
	EmploymentProbationary = "Probationary"
	EmploymentPartTime     = "Part-time"
)

var EmploymentTypes = []string{EmploymentRegular, EmploymentProbationary, EmploymentPartTime}

var CivilStatuses = []string{"Single", "Married", "Widowed", "Separated", "Annulled"}

var Departments = []string{"HR", "Engineering", "Sales", "Marketing", "Operations", "Finance", "Legal"}

var Teams = []string{"Team Alpha", "Team Beta", "Team Gamma", "Team Delta"}

// Profile is the employee record the request engine reads for eligibility.
// It is keyed by the identity provider's user id.
type Profile struct {
	UserID         string    `json:"userId"`
	EmployeeID     string    `json:"employeeId"`
	Name           string    `json:"name"`
	EmploymentType string    `json:"employmentType"`
	Department     string    `json:"department"`
	Team           string    `json:"team"`
	Position       string    `json:"position"`
	Gender         string    `json:"gender"`
	CivilStatus    string    `json:"civilStatus"`
	SoloParent     bool      `json:"soloParent"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// DisplayName falls back to the employee number when no name is on file.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.EmployeeID
}
