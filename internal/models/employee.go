package models

import "time"

// ScopeKey identifies the organizational unit whose roster is displayed.
// The zero value means no scope is selected and the roster stays empty.
type ScopeKey string

// ScopeUnset is the empty scope.
const ScopeUnset ScopeKey = ""

// IsSet reports whether a scope has been selected.
func (k ScopeKey) IsSet() bool {
	return k != ScopeUnset
}

// Employee represents a teacher record as served by the institution core API.
type Employee struct {
	ID             int    `json:"idEmployee"`
	Surname        string `json:"surname"`
	Name           string `json:"name"`
	SecondName     string `json:"secondName,omitempty"`
	BirthDate      string `json:"birthDate"`
	Email          string `json:"email"`
	DepartmentID   int    `json:"idDepartment"`
	DepartmentName string `json:"departmentName,omitempty"`
	PositionID     *int   `json:"idPosition,omitempty"`
	PositionName   string `json:"positionName,omitempty"`
	RoleID         *int   `json:"idRole,omitempty"`
}

// EmployeePayload is the outgoing create/update body. The password field is
// dropped from the JSON entirely when empty; the upstream reads its absence
// as "leave the stored password unchanged".
type EmployeePayload struct {
	Surname      string `json:"surname"`
	Name         string `json:"name"`
	SecondName   string `json:"secondName,omitempty"`
	BirthDate    string `json:"birthDate"`
	Email        string `json:"email"`
	DepartmentID int    `json:"idDepartment"`
	PositionID   int    `json:"idPosition"`
	RoleID       int    `json:"idRole,omitempty"`
	Password     string `json:"password,omitempty"`
}

// Birth dates travel in one calendar form and render in another. The
// conversion is presentational only and lossless for valid dates.
const (
	WireDateLayout    = "2006-01-02"
	DisplayDateLayout = "02.01.2006"
)

// DisplayDate converts a wire-form date to the localized display form.
// Values that do not parse are returned unchanged.
func DisplayDate(wire string) string {
	t, err := time.Parse(WireDateLayout, wire)
	if err != nil {
		return wire
	}
	return t.Format(DisplayDateLayout)
}
