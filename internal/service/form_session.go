package service

import (
	"strconv"
	"strings"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

var formFieldNames = map[string]struct{}{
	models.FieldSurname:    {},
	models.FieldName:       {},
	models.FieldSecondName: {},
	models.FieldBirthDate:  {},
	models.FieldEmail:      {},
	models.FieldDepartment: {},
	models.FieldPosition:   {},
	models.FieldRole:       {},
	models.FieldPassword:   {},
}

// NewFormSession begins an editing session. In edit mode the buffer is
// seeded from the source entity; the password always starts empty, meaning
// "do not change", since the upstream never returns stored passwords.
func NewFormSession(mode models.FormMode, source *models.Employee) *models.FormSession {
	session := &models.FormSession{
		Mode:        mode,
		Fields:      make(map[string]string, len(formFieldNames)),
		FieldErrors: make(map[string]string),
		Phase:       models.FormPhaseIdle,
	}
	for name := range formFieldNames {
		session.Fields[name] = ""
	}

	if mode == models.FormModeEdit && source != nil {
		id := source.ID
		session.TargetID = &id
		session.Fields[models.FieldSurname] = source.Surname
		session.Fields[models.FieldName] = source.Name
		session.Fields[models.FieldSecondName] = source.SecondName
		session.Fields[models.FieldBirthDate] = source.BirthDate
		session.Fields[models.FieldEmail] = source.Email
		session.Fields[models.FieldDepartment] = strconv.Itoa(source.DepartmentID)
		if source.PositionID != nil {
			session.Fields[models.FieldPosition] = strconv.Itoa(*source.PositionID)
		}
		if source.RoleID != nil {
			session.Fields[models.FieldRole] = strconv.Itoa(*source.RoleID)
		}
	}
	return session
}

// SetFormField updates one buffer field. A prior validation error on that
// field is cleared; errors on other fields are left alone.
func SetFormField(session *models.FormSession, name, value string) error {
	if _, ok := formFieldNames[name]; !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown form field "+strconv.Quote(name))
	}
	session.Fields[name] = value
	delete(session.FieldErrors, name)
	return nil
}

// ValidateForm recomputes the full field-error mapping from scratch.
// Only presence is checked here; format validation is the upstream's job.
func ValidateForm(session *models.FormSession) map[string]string {
	errs := make(map[string]string)

	required := map[string]string{
		models.FieldSurname:   "surname is required",
		models.FieldName:      "name is required",
		models.FieldEmail:     "email is required",
		models.FieldBirthDate: "birth date is required",
		models.FieldPosition:  "position is required",
	}
	if session.Mode == models.FormModeCreate {
		required[models.FieldPassword] = "password is required"
	}

	for name, message := range required {
		if strings.TrimSpace(session.Fields[name]) == "" {
			errs[name] = message
		}
	}

	session.FieldErrors = errs
	return errs
}

// BuildFormPayload converts the textual buffer into the upstream payload.
// An empty password in edit mode is dropped from the payload so the
// upstream leaves the stored password unchanged.
func BuildFormPayload(session *models.FormSession) models.EmployeePayload {
	payload := models.EmployeePayload{
		Surname:      strings.TrimSpace(session.Fields[models.FieldSurname]),
		Name:         strings.TrimSpace(session.Fields[models.FieldName]),
		SecondName:   strings.TrimSpace(session.Fields[models.FieldSecondName]),
		BirthDate:    strings.TrimSpace(session.Fields[models.FieldBirthDate]),
		Email:        strings.TrimSpace(session.Fields[models.FieldEmail]),
		DepartmentID: parseRef(session.Fields[models.FieldDepartment]),
		PositionID:   parseRef(session.Fields[models.FieldPosition]),
		RoleID:       parseRef(session.Fields[models.FieldRole]),
		Password:     session.Fields[models.FieldPassword],
	}
	return payload
}

// FormView projects a session for rendering, withholding the password.
func FormView(session *models.FormSession) *models.FormView {
	if session == nil {
		return nil
	}
	fields := make(map[string]string, len(session.Fields))
	for name, value := range session.Fields {
		if name == models.FieldPassword {
			continue
		}
		fields[name] = value
	}
	errs := make(map[string]string, len(session.FieldErrors))
	for name, message := range session.FieldErrors {
		errs[name] = message
	}
	return &models.FormView{
		Mode:        session.Mode,
		TargetID:    session.TargetID,
		Fields:      fields,
		FieldErrors: errs,
		Phase:       session.Phase,
		Message:     session.Message,
	}
}

// parseRef converts a select-option value. Reference values come from the
// supplied option lists, so a non-numeric value degrades to zero and is
// rejected upstream.
func parseRef(raw string) int {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return id
}
