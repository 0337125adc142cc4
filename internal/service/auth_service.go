package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

type authUpstream interface {
	Login(ctx context.Context, creds models.LoginRequest) (string, *models.UpstreamUser, error)
}

// AuthConfig defines configuration for the panel's own access tokens.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AuthService authenticates users against the upstream and issues panel
// access tokens that carry the upstream session and the explicit role.
type AuthService struct {
	up        authUpstream
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(up authUpstream, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{up: up, validator: validate, logger: logger, config: config}
}

// Login forwards credentials to the upstream and wraps its session in a
// panel token. The panel never stores or verifies credentials itself.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	token, user, err := s.up.Login(ctx, req)
	if err != nil {
		return nil, err
	}

	role, err := resolveRole(user)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claims := &models.JWTClaims{
		Email:         user.Email,
		Role:          role,
		UpstreamToken: token,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			Issuer:    s.config.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign access token")
	}

	s.logger.Info("user logged in", zap.String("email", user.Email), zap.String("role", string(role)))

	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.Expiration.Seconds()),
		User:        models.UserInfo{Email: user.Email, Name: user.Name, Role: role},
	}, nil
}

// ValidateToken parses and verifies a panel access token.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown role")
	}
	return claims, nil
}

// resolveRole maps the upstream principal onto the explicit role enum.
func resolveRole(user *models.UpstreamUser) (models.UserRole, error) {
	if user.Type == "student" {
		return models.RoleStudent, nil
	}

	normalized := strings.ToLower(strings.TrimPrefix(user.Role, "ROLE_"))
	switch models.UserRole(normalized) {
	case models.RoleAdmin:
		return models.RoleAdmin, nil
	case models.RoleStaff:
		return models.RoleStaff, nil
	case models.RoleTeacher:
		return models.RoleTeacher, nil
	}
	return "", appErrors.Clone(appErrors.ErrForbidden, "account role is not allowed in the panel")
}
