package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

type mockReferenceUpstream struct {
	departments []models.Department
	positions   []models.Position
	roles       []models.Role
	faculty     *models.FacultyInfo
	err         error

	departmentCalls int
	positionCalls   int
}

func (m *mockReferenceUpstream) Departments(ctx context.Context, session models.SessionContext) ([]models.Department, error) {
	m.departmentCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.departments, nil
}

func (m *mockReferenceUpstream) Positions(ctx context.Context, session models.SessionContext) ([]models.Position, error) {
	m.positionCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.positions, nil
}

func (m *mockReferenceUpstream) Roles(ctx context.Context, session models.SessionContext) ([]models.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.roles, nil
}

func (m *mockReferenceUpstream) FacultyInfo(ctx context.Context, session models.SessionContext) (*models.FacultyInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.faculty, nil
}

// memoryCacheRepo is an in-memory stand-in for the Redis-backed repository.
type memoryCacheRepo struct {
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.entries[key] = raw
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.entries = make(map[string][]byte)
	return nil
}

func cachedReferenceService(up *mockReferenceUpstream) *ReferenceService {
	cacheSvc := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, zap.NewNop(), true)
	return NewReferenceService(up, cacheSvc, time.Minute, zap.NewNop())
}

func TestReferenceDepartmentsCached(t *testing.T) {
	up := &mockReferenceUpstream{departments: []models.Department{{ID: 7, Name: "Кафедра математики"}}}
	svc := cachedReferenceService(up)

	first, err := svc.Departments(context.Background(), staffSession())
	require.NoError(t, err)
	second, err := svc.Departments(context.Background(), staffSession())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, up.departmentCalls, "the second read must come from cache")
}

func TestReferenceDepartmentsCacheDisabled(t *testing.T) {
	up := &mockReferenceUpstream{departments: []models.Department{{ID: 7}}}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewReferenceService(up, cacheSvc, time.Minute, zap.NewNop())

	_, err := svc.Departments(context.Background(), staffSession())
	require.NoError(t, err)
	_, err = svc.Departments(context.Background(), staffSession())
	require.NoError(t, err)
	assert.Equal(t, 2, up.departmentCalls)
}

func TestReferencePositionName(t *testing.T) {
	up := &mockReferenceUpstream{positions: []models.Position{{ID: 3, Name: "доцент"}}}
	svc := cachedReferenceService(up)

	id := 3
	assert.Equal(t, "доцент", svc.PositionName(context.Background(), staffSession(), &id))

	unknown := 99
	assert.Equal(t, UnspecifiedPosition, svc.PositionName(context.Background(), staffSession(), &unknown))
	assert.Equal(t, UnspecifiedPosition, svc.PositionName(context.Background(), staffSession(), nil))
}

func TestReferencePositionNameLookupFailure(t *testing.T) {
	up := &mockReferenceUpstream{err: appErrors.ErrFetchFailed}
	svc := cachedReferenceService(up)

	id := 3
	assert.Equal(t, UnspecifiedPosition, svc.PositionName(context.Background(), staffSession(), &id))
}

func TestReferenceFetchFailurePropagates(t *testing.T) {
	up := &mockReferenceUpstream{err: appErrors.ErrFetchFailed}
	svc := cachedReferenceService(up)

	_, err := svc.Roles(context.Background(), staffSession())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrFetchFailed))
}
