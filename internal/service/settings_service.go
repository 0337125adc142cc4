package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
)

const minPasswordLength = 6

type settingsUpstream interface {
	ChangePassword(ctx context.Context, session models.SessionContext, req models.ChangePasswordRequest) error
}

// SettingsService handles the password-change form: a simple submission
// flow with local presence checks and no conflict semantics.
type SettingsService struct {
	up     settingsUpstream
	logger *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(up settingsUpstream, logger *zap.Logger) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{up: up, logger: logger}
}

// ChangePassword validates the form locally and forwards it to the
// upstream settings endpoint. A non-empty field-error mapping means the
// request never reached the network.
func (s *SettingsService) ChangePassword(ctx context.Context, session models.SessionContext, req models.ChangePasswordRequest) (map[string]string, error) {
	errs := make(map[string]string)
	if strings.TrimSpace(req.NewPassword) == "" {
		errs["newPassword"] = "new password is required"
	} else if len(req.NewPassword) < minPasswordLength {
		errs["newPassword"] = "password must be at least 6 characters"
	}
	if strings.TrimSpace(req.ConfirmPassword) == "" {
		errs["confirmPassword"] = "password confirmation is required"
	} else if len(errs) == 0 && req.NewPassword != req.ConfirmPassword {
		errs["confirmPassword"] = "passwords do not match"
	}
	if len(errs) > 0 {
		return errs, nil
	}

	if err := s.up.ChangePassword(ctx, session, req); err != nil {
		return nil, err
	}

	s.logger.Info("password changed", zap.String("email", session.Email))
	return nil, nil
}
