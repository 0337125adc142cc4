package models

// FormMode distinguishes the add and edit flavors of the employee form.
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// FormPhase tracks where a form session is in its submission lifecycle.
type FormPhase string

const (
	FormPhaseIdle       FormPhase = "idle"
	FormPhaseSubmitting FormPhase = "submitting"
	FormPhaseError      FormPhase = "error"
)

// Field names accepted by the form buffer.
const (
	FieldSurname    = "surname"
	FieldName       = "name"
	FieldSecondName = "secondName"
	FieldBirthDate  = "birthDate"
	FieldEmail      = "email"
	FieldDepartment = "idDepartment"
	FieldPosition   = "idPosition"
	FieldRole       = "idRole"
	FieldPassword   = "password"
)

// FormSession is the transient add/edit interaction state. At most one
// session exists per workspace; it is destroyed on cancel or on a
// successful submission.
type FormSession struct {
	Mode        FormMode
	TargetID    *int
	Fields      map[string]string
	FieldErrors map[string]string
	Phase       FormPhase
	Message     string
}

// FormView is the JSON projection of a form session. The password value is
// write-only and never echoed back.
type FormView struct {
	Mode        FormMode          `json:"mode"`
	TargetID    *int              `json:"target_id,omitempty"`
	Fields      map[string]string `json:"fields"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Phase       FormPhase         `json:"phase"`
	Message     string            `json:"message,omitempty"`
}

// CollectionState tracks the roster fetch/mutation lifecycle.
type CollectionState string

const (
	CollectionIdle       CollectionState = "idle"
	CollectionLoading    CollectionState = "loading"
	CollectionSubmitting CollectionState = "submitting"
	CollectionErrored    CollectionState = "errored"
)

// RosterEntry is a display row of the scoped collection.
type RosterEntry struct {
	Employee
	BirthDateDisplay string `json:"birthDateDisplay"`
}

// WorkspaceView is the full snapshot of a staff workspace.
type WorkspaceView struct {
	Scope  ScopeKey        `json:"scope"`
	State  CollectionState `json:"state"`
	Error  string          `json:"error,omitempty"`
	Roster []RosterEntry   `json:"roster"`
	Form   *FormView       `json:"form,omitempty"`
}
