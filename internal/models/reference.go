package models

// Department is an organizational unit. The faculty itself has no parent.
type Department struct {
	ID       int    `json:"idDepartment"`
	Name     string `json:"name"`
	ParentID *int   `json:"parentDepartment,omitempty"`
}

// Position is a read-only staff position reference.
type Position struct {
	ID   int    `json:"idPosition"`
	Name string `json:"name"`
}

// Role is a read-only role classification reference.
type Role struct {
	ID   int    `json:"idRole"`
	Name string `json:"name"`
}

// FacultyInfo describes the faculty the authenticated staff member belongs to.
type FacultyInfo struct {
	Name string `json:"name"`
}
