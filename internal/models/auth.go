package models

// LoginRequest holds credentials forwarded to the upstream auth endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpstreamUser describes the authenticated principal as reported by the
// upstream /auth/user endpoint.
type UpstreamUser struct {
	Type     string `json:"type"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Position string `json:"position,omitempty"`
}

// UserInfo describes the authenticated user in panel responses.
type UserInfo struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// LoginResponse returns the issued panel token and user info.
type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	ExpiresIn   int64    `json:"expires_in"`
	User        UserInfo `json:"user"`
}

// ChangePasswordRequest is the settings form payload.
type ChangePasswordRequest struct {
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}
