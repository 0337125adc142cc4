package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

type mockAuthUpstream struct {
	token string
	user  *models.UpstreamUser
	err   error
	calls int
}

func (m *mockAuthUpstream) Login(ctx context.Context, creds models.LoginRequest) (string, *models.UpstreamUser, error) {
	m.calls++
	if m.err != nil {
		return "", nil, m.err
	}
	return m.token, m.user, nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test_secret", Expiration: time.Hour, Issuer: "attendance-panel"}
}

func TestAuthServiceLoginIssuesValidToken(t *testing.T) {
	up := &mockAuthUpstream{
		token: "sess-42",
		user:  &models.UpstreamUser{Type: "employee", Email: "staff@example.com", Name: "Иванов Пётр", Role: "ROLE_STAFF"},
	}
	svc := NewAuthService(up, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, res.User.Role)
	assert.Equal(t, int64(3600), res.ExpiresIn)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "staff@example.com", claims.Email)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.Equal(t, "sess-42", claims.UpstreamToken)
	assert.NotEmpty(t, claims.ID)
}

func TestAuthServiceLoginStudentType(t *testing.T) {
	up := &mockAuthUpstream{
		token: "sess-43",
		user:  &models.UpstreamUser{Type: "student", Email: "student@example.com", Name: "Петров Иван"},
	}
	svc := NewAuthService(up, validator.New(), zap.NewNop(), testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "student@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, res.User.Role)
}

func TestAuthServiceLoginUnknownRoleForbidden(t *testing.T) {
	up := &mockAuthUpstream{
		token: "sess-44",
		user:  &models.UpstreamUser{Type: "employee", Email: "x@example.com", Role: "ROLE_JANITOR"},
	}
	svc := NewAuthService(up, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "x@example.com", Password: "secret"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestAuthServiceLoginInvalidPayloadSkipsUpstream(t *testing.T) {
	up := &mockAuthUpstream{}
	svc := NewAuthService(up, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	assert.Zero(t, up.calls)
}

func TestAuthServiceLoginPropagatesInvalidCredentials(t *testing.T) {
	up := &mockAuthUpstream{err: appErrors.ErrInvalidCredentials}
	svc := NewAuthService(up, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceValidateTokenRejectsForgery(t *testing.T) {
	up := &mockAuthUpstream{
		token: "sess-42",
		user:  &models.UpstreamUser{Type: "employee", Email: "staff@example.com", Role: "ROLE_STAFF"},
	}
	issuer := NewAuthService(up, validator.New(), zap.NewNop(), testAuthConfig())
	res, err := issuer.Login(context.Background(), models.LoginRequest{Email: "staff@example.com", Password: "secret"})
	require.NoError(t, err)

	other := NewAuthService(up, validator.New(), zap.NewNop(), AuthConfig{Secret: "other_secret", Expiration: time.Hour})
	_, err = other.ValidateToken(res.AccessToken)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))

	_, err = issuer.ValidateToken("garbage")
	require.Error(t, err)
}
