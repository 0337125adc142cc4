package service

import (
	"context"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

// EmployeeUpstream is the slice of the upstream client the roster workflow
// depends on.
type EmployeeUpstream interface {
	ListEmployees(ctx context.Context, session models.SessionContext, scope models.ScopeKey) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, session models.SessionContext, payload models.EmployeePayload) (*models.Employee, error)
	UpdateEmployee(ctx context.Context, session models.SessionContext, id int, payload models.EmployeePayload) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, session models.SessionContext, id int) error
}

// CollectionManager owns the fetched roster for the active scope. The list
// is only ever replaced wholesale by a successful fetch; mutations go to
// the upstream and are followed by a re-read, never by a local patch.
//
// The manager is not safe for concurrent use; its workspace serializes
// access, mirroring the single-threaded cooperative model of the client it
// replaces.
type CollectionManager struct {
	employees []models.Employee
	state     models.CollectionState
	lastErr   *appErrors.Error
}

// NewCollectionManager returns an empty, idle manager.
func NewCollectionManager() *CollectionManager {
	return &CollectionManager{state: models.CollectionIdle}
}

// State returns the manager's lifecycle state.
func (m *CollectionManager) State() models.CollectionState {
	return m.state
}

// LastError returns the retained fetch error, if any.
func (m *CollectionManager) LastError() *appErrors.Error {
	return m.lastErr
}

// Employees returns the collection in fetch order.
func (m *CollectionManager) Employees() []models.Employee {
	return m.employees
}

// Find returns the employee with the given id from the active collection.
func (m *CollectionManager) Find(id int) *models.Employee {
	for i := range m.employees {
		if m.employees[i].ID == id {
			return &m.employees[i]
		}
	}
	return nil
}

// Refresh re-reads the roster for the given scope. An unset scope empties
// the collection without touching the network. A failed fetch leaves the
// previous collection in place and retains the error for display; there is
// no automatic retry.
func (m *CollectionManager) Refresh(ctx context.Context, up EmployeeUpstream, session models.SessionContext, scope models.ScopeKey) error {
	if !scope.IsSet() {
		m.employees = nil
		m.state = models.CollectionIdle
		m.lastErr = nil
		return nil
	}

	m.state = models.CollectionLoading
	list, err := up.ListEmployees(ctx, session, scope)
	if err != nil {
		m.state = models.CollectionErrored
		m.lastErr = appErrors.FromError(err)
		return err
	}

	m.employees = list
	m.state = models.CollectionIdle
	m.lastErr = nil
	return nil
}

// Create transmits a new employee. The payload must already have passed the
// form session's validation; the manager only transmits.
func (m *CollectionManager) Create(ctx context.Context, up EmployeeUpstream, session models.SessionContext, scope models.ScopeKey, payload models.EmployeePayload) error {
	return m.mutate(ctx, up, session, scope, func() error {
		_, err := up.CreateEmployee(ctx, session, payload)
		return err
	})
}

// Update transmits changes to an existing employee.
func (m *CollectionManager) Update(ctx context.Context, up EmployeeUpstream, session models.SessionContext, scope models.ScopeKey, id int, payload models.EmployeePayload) error {
	return m.mutate(ctx, up, session, scope, func() error {
		_, err := up.UpdateEmployee(ctx, session, id, payload)
		return err
	})
}

// Delete removes an existing employee.
func (m *CollectionManager) Delete(ctx context.Context, up EmployeeUpstream, session models.SessionContext, scope models.ScopeKey, id int) error {
	return m.mutate(ctx, up, session, scope, func() error {
		return up.DeleteEmployee(ctx, session, id)
	})
}

// mutate runs a write and, on success, re-reads the roster before
// signaling completion, so the displayed list is always server truth.
func (m *CollectionManager) mutate(ctx context.Context, up EmployeeUpstream, session models.SessionContext, scope models.ScopeKey, write func() error) error {
	if m.state == models.CollectionSubmitting {
		return appErrors.Clone(appErrors.ErrConflict, "another submission is already in flight")
	}

	m.state = models.CollectionSubmitting
	if err := write(); err != nil {
		m.state = models.CollectionErrored
		return err
	}

	// The write succeeded; a refresh failure here must not be reported as
	// a mutation failure. Refresh already flags the stale roster through
	// the errored state and the retained error.
	_ = m.Refresh(ctx, up, session, scope)
	return nil
}

/// Sorted returns the collection ordered for display: surname then given
// name under locale-aware collation, stable for ties. The order is
// recomputed on every read and never persisted.
func (m *CollectionManager) Sorted() []models.Employee {
	out := make([]models.Employee, len(m.employees))
	copy(out, m.employees)

	c := collate.New(language.Russian, collate.IgnoreCase)
	sort.SliceStable(out, func(i, j int) bool {
		if r := c.CompareString(out[i].Surname, out[j].Surname); r != 0 {
			return r < 0
		}
		return c.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
