package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

// workspace is one user's teachers-management screen: the selected scope,
// the scoped roster and at most one open form session. Operations are
// serialized by the mutex, the Go rendition of the original client's
// single-threaded cooperative execution. The mutex is held across the
// upstream call of a submission, so no other operation can observe a
// submission in flight: a concurrent edit or cancel blocks and then sees
// the closed or errored form.
type workspace struct {
	mu    sync.Mutex
	scope models.ScopeKey
	coll  *CollectionManager
	form  *models.FormSession
}

// WorkspaceService manages the per-user staff workspaces.
type WorkspaceService struct {
	up     EmployeeUpstream
	logger *zap.Logger

	mu     sync.Mutex
	spaces map[string]*workspace
}

// NewWorkspaceService constructs a WorkspaceService.
func NewWorkspaceService(up EmployeeUpstream, logger *zap.Logger) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceService{
		up:     up,
		logger: logger,
		spaces: make(map[string]*workspace),
	}
}

func (s *WorkspaceService) workspace(session models.SessionContext) *workspace {
	key := session.UserID
	if key == "" {
		key = session.Email
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.spaces[key]
	if !ok {
		ws = &workspace{coll: NewCollectionManager()}
		s.spaces[key] = ws
	}
	return ws
}

// Snapshot returns the current workspace view without touching the network.
func (s *WorkspaceService) Snapshot(session models.SessionContext) *models.WorkspaceView {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return s.viewLocked(ws)
}

// SetScope selects the department filter and is the sole trigger of a
// roster refresh. Selecting the unset scope empties the roster without a
// network call. Fetch failures are reported inline in the view; only an
// expired upstream session is fatal for the screen.
func (s *WorkspaceService) SetScope(ctx context.Context, session models.SessionContext, scope models.ScopeKey) (*models.WorkspaceView, error) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.scope = scope
	return s.refreshLocked(ctx, ws, session)
}

// Refresh re-fetches the roster for the current scope. This is the manual
// retry path; failed fetches are never retried automatically.
func (s *WorkspaceService) Refresh(ctx context.Context, session models.SessionContext) (*models.WorkspaceView, error) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	return s.refreshLocked(ctx, ws, session)
}

func (s *WorkspaceService) refreshLocked(ctx context.Context, ws *workspace, session models.SessionContext) (*models.WorkspaceView, error) {
	if err := ws.coll.Refresh(ctx, s.up, session, ws.scope); err != nil {
		if appErrors.HasCode(err, appErrors.ErrSessionExpired) {
			return nil, err
		}
		s.logger.Warn("roster refresh failed",
			zap.String("scope", string(ws.scope)), zap.Error(err))
	}
	return s.viewLocked(ws), nil
}

// OpenForm begins a form session. Only one session may be open at a time;
// in edit mode the target must be part of the active collection.
func (s *WorkspaceService) OpenForm(session models.SessionContext, mode models.FormMode, targetID *int) (*models.WorkspaceView, error) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.form != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a form session is already open")
	}

	switch mode {
	case models.FormModeCreate:
		ws.form = NewFormSession(models.FormModeCreate, nil)
		if ws.scope.IsSet() {
			// New employees default into the department being viewed.
			ws.form.Fields[models.FieldDepartment] = string(ws.scope)
		}
	case models.FormModeEdit:
		if targetID == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "employee id is required in edit mode")
		}
		source := ws.coll.Find(*targetID)
		if source == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found in the active scope")
		}
		ws.form = NewFormSession(models.FormModeEdit, source)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown form mode")
	}

	return s.viewLocked(ws), nil
}

// SetField updates one field of the open form session and clears only that
// field's validation error.
func (s *WorkspaceService) SetField(session models.SessionContext, name, value string) (*models.WorkspaceView, error) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.form == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no form session is open")
	}
	if err := SetFormField(ws.form, name, value); err != nil {
		return nil, err
	}
	return s.viewLocked(ws), nil
}

// Submit validates the open form and, when valid, transmits it through the
// collection manager. A validation failure never reaches the network. On
// success the session closes and the roster is already a re-read of server
// state; on failure the session stays open with the buffer preserved.
func (s *WorkspaceService) Submit(ctx context.Context, session models.SessionContext) (*models.WorkspaceView, error) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.form == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no form session is open")
	}

	ws.form.Message = ""
	if errs := ValidateForm(ws.form); len(errs) > 0 {
		return s.viewLocked(ws), nil
	}

	ws.form.Phase = models.FormPhaseSubmitting
	payload := BuildFormPayload(ws.form)

	var err error
	if ws.form.Mode == models.FormModeCreate {
		err = ws.coll.Create(ctx, s.up, session, ws.scope, payload)
	} else {
		err = ws.coll.Update(ctx, s.up, session, ws.scope, *ws.form.TargetID, payload)
	}

	if err == nil {
		ws.form = nil
		return s.viewLocked(ws), nil
	}
	if appErrors.HasCode(err, appErrors.ErrSessionExpired) {
		return nil, err
	}

	appErr := appErrors.FromError(err)
	ws.form.Phase = models.FormPhaseError
	ws.form.Message = appErr.Message
	if appErrors.HasCode(err, appErrors.ErrConflict) {
		// Route the uniqueness violation to the email field as well.
		ws.form.FieldErrors[models.FieldEmail] = appErr.Message
	}
	s.logger.Warn("form submission failed",
		zap.String("mode", string(ws.form.Mode)), zap.String("code", appErr.Code))
	return s.viewLocked(ws), nil
}

// CancelForm destroys the open form session, discarding the buffer. A
// cancel issued while a submission is in flight blocks on the workspace
// mutex until the submission settles.
func (s *WorkspaceService) CancelForm(session models.SessionContext) (*models.WorkspaceView, error) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.form == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no form session is open")
	}

	ws.form = nil
	return s.viewLocked(ws), nil
}

// DeleteEmployee removes an employee from the active scope and re-reads
// the roster. There is no form involved, so failures surface as typed
// errors rather than form state; an expired session stays fatal.
func (s *WorkspaceService) DeleteEmployee(ctx context.Context, session models.SessionContext, id int) (*models.WorkspaceView, error) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.coll.Find(id) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found in the active scope")
	}

	if err := ws.coll.Delete(ctx, s.up, session, ws.scope, id); err != nil {
		if appErrors.HasCode(err, appErrors.ErrSessionExpired) {
			return nil, err
		}
		s.logger.Warn("employee delete failed",
			zap.Int("employee_id", id), zap.String("code", appErrors.FromError(err).Code))
		return nil, err
	}
	return s.viewLocked(ws), nil
}

// Roster returns the display-sorted collection and its scope, for export.
func (s *WorkspaceService) Roster(session models.SessionContext) ([]models.Employee, models.ScopeKey) {
	ws := s.workspace(session)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.coll.Sorted(), ws.scope
}

func (s *WorkspaceService) viewLocked(ws *workspace) *models.WorkspaceView {
	sorted := ws.coll.Sorted()
	roster := make([]models.RosterEntry, len(sorted))
	for i, emp := range sorted {
		roster[i] = models.RosterEntry{Employee: emp, BirthDateDisplay: models.DisplayDate(emp.BirthDate)}
	}

	view := &models.WorkspaceView{
		Scope:  ws.scope,
		State:  ws.coll.State(),
		Roster: roster,
		Form:   FormView(ws.form),
	}
	if lastErr := ws.coll.LastError(); lastErr != nil {
		view.Error = lastErr.Message
	}
	return view
}
