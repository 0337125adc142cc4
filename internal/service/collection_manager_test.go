package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

type mockEmployeeUpstream struct {
	lists     map[models.ScopeKey][]models.Employee
	listErr   error
	listCalls int

	created   []models.EmployeePayload
	createErr error
	nextID    int

	updated   map[int]models.EmployeePayload
	updateErr error

	deleted   []int
	deleteErr error
}

func (m *mockEmployeeUpstream) ListEmployees(ctx context.Context, session models.SessionContext, scope models.ScopeKey) ([]models.Employee, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.lists[scope], nil
}

func (m *mockEmployeeUpstream) CreateEmployee(ctx context.Context, session models.SessionContext, payload models.EmployeePayload) (*models.Employee, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, payload)
	m.nextID++
	emp := models.Employee{
		ID:           m.nextID,
		Surname:      payload.Surname,
		Name:         payload.Name,
		BirthDate:    payload.BirthDate,
		Email:        payload.Email,
		DepartmentID: payload.DepartmentID,
	}
	scope := models.ScopeKey("")
	for key := range m.lists {
		scope = key
	}
	if m.lists == nil {
		m.lists = make(map[models.ScopeKey][]models.Employee)
	}
	m.lists[scope] = append(m.lists[scope], emp)
	return &emp, nil
}

func (m *mockEmployeeUpstream) UpdateEmployee(ctx context.Context, session models.SessionContext, id int, payload models.EmployeePayload) (*models.Employee, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updated == nil {
		m.updated = make(map[int]models.EmployeePayload)
	}
	m.updated[id] = payload
	for scope, list := range m.lists {
		for i := range list {
			if list[i].ID == id {
				list[i].Surname = payload.Surname
				list[i].Name = payload.Name
				list[i].Email = payload.Email
				m.lists[scope] = list
			}
		}
	}
	return &models.Employee{ID: id}, nil
}

func (m *mockEmployeeUpstream) DeleteEmployee(ctx context.Context, session models.SessionContext, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	for scope, list := range m.lists {
		kept := list[:0]
		for _, emp := range list {
			if emp.ID != id {
				kept = append(kept, emp)
			}
		}
		m.lists[scope] = kept
	}
	return nil
}

func TestCollectionManagerRefreshUnsetScope(t *testing.T) {
	up := &mockEmployeeUpstream{}
	m := NewCollectionManager()
	m.employees = []models.Employee{{ID: 1}}

	err := m.Refresh(context.Background(), up, models.SessionContext{}, models.ScopeUnset)
	require.NoError(t, err)
	assert.Empty(t, m.Employees())
	assert.Equal(t, models.CollectionIdle, m.State())
	assert.Zero(t, up.listCalls, "unset scope must not reach the network")
}

func TestCollectionManagerRefreshReplacesCollection(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{
		"7": {{ID: 1, Surname: "Иванов"}, {ID: 2, Surname: "Петров"}},
	}}
	m := NewCollectionManager()

	require.NoError(t, m.Refresh(context.Background(), up, models.SessionContext{}, "7"))
	assert.Len(t, m.Employees(), 2)
	assert.Equal(t, models.CollectionIdle, m.State())
	assert.Nil(t, m.LastError())
}

func TestCollectionManagerRefreshFailureKeepsPrevious(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{
		"7": {{ID: 1, Surname: "Иванов"}},
	}}
	m := NewCollectionManager()
	require.NoError(t, m.Refresh(context.Background(), up, models.SessionContext{}, "7"))

	up.listErr = appErrors.ErrFetchFailed
	err := m.Refresh(context.Background(), up, models.SessionContext{}, "7")
	require.Error(t, err)
	assert.Equal(t, models.CollectionErrored, m.State())
	require.NotNil(t, m.LastError())
	assert.Equal(t, appErrors.ErrFetchFailed.Code, m.LastError().Code)
	assert.Len(t, m.Employees(), 1, "failed fetch must not clear the previous collection")
}

func TestCollectionManagerCreateRefreshesBeforeReturning(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{"7": {}}}
	m := NewCollectionManager()
	require.NoError(t, m.Refresh(context.Background(), up, models.SessionContext{}, "7"))
	require.Equal(t, 1, up.listCalls)

	err := m.Create(context.Background(), up, models.SessionContext{}, "7", models.EmployeePayload{
		Surname: "Иванов", Name: "Пётр", Email: "ivanov@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, up.listCalls, "successful write must be followed by a re-read")
	assert.Len(t, m.Employees(), 1)
	assert.Equal(t, models.CollectionIdle, m.State())
}

func TestCollectionManagerCreateFailure(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{"7": {}}}
	m := NewCollectionManager()
	require.NoError(t, m.Refresh(context.Background(), up, models.SessionContext{}, "7"))
	listCallsBefore := up.listCalls

	up.createErr = appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	err := m.Create(context.Background(), up, models.SessionContext{}, "7", models.EmployeePayload{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Equal(t, models.CollectionErrored, m.State())
	assert.Equal(t, listCallsBefore, up.listCalls, "failed write must not trigger a re-read")
}

func TestCollectionManagerDeleteRefreshesBeforeReturning(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{
		"7": {{ID: 1, Surname: "Иванов"}, {ID: 2, Surname: "Петров"}},
	}}
	m := NewCollectionManager()
	require.NoError(t, m.Refresh(context.Background(), up, models.SessionContext{}, "7"))
	require.Equal(t, 1, up.listCalls)

	err := m.Delete(context.Background(), up, models.SessionContext{}, "7", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, up.deleted)
	assert.Equal(t, 2, up.listCalls, "successful delete must be followed by a re-read")
	require.Len(t, m.Employees(), 1)
	assert.Equal(t, 2, m.Employees()[0].ID)
	assert.Equal(t, models.CollectionIdle, m.State())
}

func TestCollectionManagerDeleteFailure(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{
		"7": {{ID: 1, Surname: "Иванов"}},
	}}
	m := NewCollectionManager()
	require.NoError(t, m.Refresh(context.Background(), up, models.SessionContext{}, "7"))
	listCallsBefore := up.listCalls

	up.deleteErr = appErrors.ErrMutationFailed
	err := m.Delete(context.Background(), up, models.SessionContext{}, "7", 1)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrMutationFailed))
	assert.Equal(t, models.CollectionErrored, m.State())
	assert.Equal(t, listCallsBefore, up.listCalls, "failed delete must not trigger a re-read")
	assert.Len(t, m.Employees(), 1, "the collection is untouched by a failed delete")
}

func TestCollectionManagerRejectsOverlappingMutation(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{"7": {}}}
	m := NewCollectionManager()
	m.state = models.CollectionSubmitting

	err := m.Create(context.Background(), up, models.SessionContext{}, "7", models.EmployeePayload{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Empty(t, up.created)
}

func TestCollectionManagerUpdateSuccessRefreshFailure(t *testing.T) {
	up := &mockEmployeeUpstream{lists: map[models.ScopeKey][]models.Employee{
		"7": {{ID: 1, Surname: "Иванов"}},
	}}
	m := NewCollectionManager()
	require.NoError(t, m.Refresh(context.Background(), up, models.SessionContext{}, "7"))

	up.listErr = appErrors.ErrFetchFailed
	err := m.Update(context.Background(), up, models.SessionContext{}, "7", 1, models.EmployeePayload{Surname: "Иванов"})
	require.NoError(t, err, "a failed re-read after a successful write is not a mutation failure")
	assert.Equal(t, models.CollectionErrored, m.State(), "the stale roster must still be flagged")
	require.NotNil(t, m.LastError())
	assert.Equal(t, appErrors.ErrFetchFailed.Code, m.LastError().Code)
}

func TestCollectionManagerSortedByRussianCollation(t *testing.T) {
	m := NewCollectionManager()
	m.employees = []models.Employee{
		{ID: 1, Surname: "Иванов", Name: "Пётр"},
		{ID: 2, Surname: "Алексеев", Name: "Борис"},
		{ID: 3, Surname: "Иванов", Name: "Андрей"},
		{ID: 4, Surname: "алексеев", Name: "Антон"},
	}

	sorted := m.Sorted()
	require.Len(t, sorted, 4)
	assert.Equal(t, "Антон", sorted[0].Name)
	assert.Equal(t, "Борис", sorted[1].Name)
	assert.Equal(t, "Андрей", sorted[2].Name)
	assert.Equal(t, "Пётр", sorted[3].Name)

	// The stored order is untouched; sorting is a read-time projection.
	assert.Equal(t, 1, m.Employees()[0].ID)
}

func TestCollectionManagerFind(t *testing.T) {
	m := NewCollectionManager()
	m.employees = []models.Employee{{ID: 1}, {ID: 2}}

	require.NotNil(t, m.Find(2))
	assert.Nil(t, m.Find(99))
}
