package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
)

// UnspecifiedPosition is displayed when a position reference has no match
// in the supplied reference list.
const UnspecifiedPosition = "unspecified"

type referenceUpstream interface {
	Departments(ctx context.Context, session models.SessionContext) ([]models.Department, error)
	Positions(ctx context.Context, session models.SessionContext) ([]models.Position, error)
	Roles(ctx context.Context, session models.SessionContext) ([]models.Role, error)
	FacultyInfo(ctx context.Context, session models.SessionContext) (*models.FacultyInfo, error)
}

// ReferenceService serves the read-only reference data the workflow
// consumes: departments, positions, roles and faculty info. The workflow
// never writes any of it; a read-through cache keeps the option lists
// cheap to re-render.
type ReferenceService struct {
	up     referenceUpstream
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

// NewReferenceService constructs a ReferenceService.
func NewReferenceService(up referenceUpstream, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{up: up, cache: cache, ttl: ttl, logger: logger}
}

// Departments lists the organizational units available to the staff
// member's faculty. Cached per user since the set depends on the faculty.
func (s *ReferenceService) Departments(ctx context.Context, session models.SessionContext) ([]models.Department, error) {
	key := "reference:departments:" + session.Email
	var departments []models.Department
	if hit, _ := s.cache.Get(ctx, key, &departments); hit {
		return departments, nil
	}

	departments, err := s.up.Departments(ctx, session)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, departments, s.ttl)
	return departments, nil
}

// Positions lists the institution-wide position references.
func (s *ReferenceService) Positions(ctx context.Context, session models.SessionContext) ([]models.Position, error) {
	const key = "reference:positions"
	var positions []models.Position
	if hit, _ := s.cache.Get(ctx, key, &positions); hit {
		return positions, nil
	}

	positions, err := s.up.Positions(ctx, session)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, positions, s.ttl)
	return positions, nil
}

// Roles lists the institution-wide role classifications.
func (s *ReferenceService) Roles(ctx context.Context, session models.SessionContext) ([]models.Role, error) {
	const key = "reference:roles"
	var roles []models.Role
	if hit, _ := s.cache.Get(ctx, key, &roles); hit {
		return roles, nil
	}

	roles, err := s.up.Roles(ctx, session)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, roles, s.ttl)
	return roles, nil
}

// Faculty returns the faculty of the authenticated staff member.
func (s *ReferenceService) Faculty(ctx context.Context, session models.SessionContext) (*models.FacultyInfo, error) {
	key := "reference:faculty:" + session.Email
	var info models.FacultyInfo
	if hit, _ := s.cache.Get(ctx, key, &info); hit {
		return &info, nil
	}

	fetched, err := s.up.FacultyInfo(ctx, session)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, fetched, s.ttl)
	return fetched, nil
}

// PositionName resolves a position reference for display. A reference with
// no match in the supplied list renders as "unspecified" rather than
// erroring.
func (s *ReferenceService) PositionName(ctx context.Context, session models.SessionContext, id *int) string {
	if id == nil {
		return UnspecifiedPosition
	}
	positions, err := s.Positions(ctx, session)
	if err != nil {
		s.logger.Warn("position lookup failed", zap.Error(err))
		return UnspecifiedPosition
	}
	for _, position := range positions {
		if position.ID == *id {
			return position.Name
		}
	}
	return UnspecifiedPosition
}
