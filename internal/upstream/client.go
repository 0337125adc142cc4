package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
	"github.com/unidesk/attendance-panel-api/pkg/config"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

// CallObserver records upstream call metrics.
type CallObserver interface {
	ObserveUpstreamCall(op string, status int, duration time.Duration)
}

// Client is the typed HTTP client for the institution core API. Every
// record the panel displays is owned by that API; the client only
// translates its wire contract into domain values and typed errors.
type Client struct {
	baseURL string
	cookie  string
	http    *http.Client
	logger  *zap.Logger
	metrics CallObserver
}

// NewClient constructs an upstream client. The configured timeout bounds
// every call so a hung upstream surfaces as a failure instead of a stuck
// submitting phase.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, metrics CallObserver) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	cookie := cfg.SessionCookie
	if cookie == "" {
		cookie = "JSESSIONID"
	}
	return &Client{
		baseURL: cfg.BaseURL,
		cookie:  cookie,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// ListEmployees returns the teacher roster of one department.
func (c *Client) ListEmployees(ctx context.Context, session models.SessionContext, scope models.ScopeKey) ([]models.Employee, error) {
	query := url.Values{"departmentId": {string(scope)}}
	var employees []models.Employee
	if err := c.do(ctx, "list_employees", session.UpstreamToken, http.MethodGet, "/api/staff/teachers", query, nil, &employees, false); err != nil {
		return nil, err
	}
	return employees, nil
}

// CreateEmployee registers a new teacher and returns the persisted record.
func (c *Client) CreateEmployee(ctx context.Context, session models.SessionContext, payload models.EmployeePayload) (*models.Employee, error) {
	var created models.Employee
	if err := c.do(ctx, "create_employee", session.UpstreamToken, http.MethodPost, "/api/staff/teachers", nil, payload, &created, true); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateEmployee modifies an existing teacher. A payload without a password
// leaves the stored password unchanged.
func (c *Client) UpdateEmployee(ctx context.Context, session models.SessionContext, id int, payload models.EmployeePayload) (*models.Employee, error) {
	path := "/api/staff/teachers/" + strconv.Itoa(id)
	var updated models.Employee
	if err := c.do(ctx, "update_employee", session.UpstreamToken, http.MethodPut, path, nil, payload, &updated, true); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEmployee removes a teacher record.
func (c *Client) DeleteEmployee(ctx context.Context, session models.SessionContext, id int) error {
	path := "/api/staff/teachers/" + strconv.Itoa(id)
	return c.do(ctx, "delete_employee", session.UpstreamToken, http.MethodDelete, path, nil, nil, nil, true)
}

// Departments lists the organizational units below the staff member's faculty.
func (c *Client) Departments(ctx context.Context, session models.SessionContext) ([]models.Department, error) {
	var departments []models.Department
	if err := c.do(ctx, "departments", session.UpstreamToken, http.MethodGet, "/api/staff/teachers/departments", nil, nil, &departments, false); err != nil {
		return nil, err
	}
	return departments, nil
}

// Positions lists the position references.
func (c *Client) Positions(ctx context.Context, session models.SessionContext) ([]models.Position, error) {
	var positions []models.Position
	if err := c.do(ctx, "positions", session.UpstreamToken, http.MethodGet, "/api/staff/teachers/positions", nil, nil, &positions, false); err != nil {
		return nil, err
	}
	return positions, nil
}

// Roles lists the role classification references.
func (c *Client) Roles(ctx context.Context, session models.SessionContext) ([]models.Role, error) {
	var roles []models.Role
	if err := c.do(ctx, "roles", session.UpstreamToken, http.MethodGet, "/api/staff/teachers/roles", nil, nil, &roles, false); err != nil {
		return nil, err
	}
	return roles, nil
}

// FacultyInfo returns the faculty the authenticated staff member belongs to.
func (c *Client) FacultyInfo(ctx context.Context, session models.SessionContext) (*models.FacultyInfo, error) {
	var info models.FacultyInfo
	if err := c.do(ctx, "faculty_info", session.UpstreamToken, http.MethodGet, "/api/staff/faculty/info", nil, nil, &info, false); err != nil {
		return nil, err
	}
	return &info, nil
}

// Login authenticates against the upstream and returns its session token
// together with the resolved principal.
func (c *Client) Login(ctx context.Context, creds models.LoginRequest) (string, *models.UpstreamUser, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode login payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("login", 0, time.Since(start))
		return "", nil, appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "upstream login unreachable")
	}
	defer resp.Body.Close()
	c.observe("login", resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", nil, appErrors.ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", nil, appErrors.Clone(appErrors.ErrFetchFailed, detailFromBody(resp.Body, "upstream login failed"))
	}

	token := ""
	for _, ck := range resp.Cookies() {
		if ck.Name == c.cookie {
			token = ck.Value
		}
	}
	if token == "" {
		return "", nil, appErrors.Clone(appErrors.ErrFetchFailed, "upstream login returned no session")
	}

	user, err := c.CurrentUser(ctx, token)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CurrentUser resolves the principal behind an upstream session token.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.UpstreamUser, error) {
	var user models.UpstreamUser
	if err := c.do(ctx, "current_user", token, http.MethodGet, "/api/auth/user", nil, nil, &user, false); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword forwards a password change to the role-specific settings
// endpoint.
func (c *Client) ChangePassword(ctx context.Context, session models.SessionContext, req models.ChangePasswordRequest) error {
	path := fmt.Sprintf("/api/%s/settings/change-password", rolePathSegment(session.Role))
	return c.do(ctx, "change_password", session.UpstreamToken, http.MethodPost, path, nil, req, nil, true)
}

func rolePathSegment(role models.UserRole) string {
	if role.Valid() {
		return string(role)
	}
	return "staff"
}

func (c *Client) do(ctx context.Context, op, token, method, path string, query url.Values, body, out interface{}, mutation bool) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: c.cookie, Value: token})
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.observe(op, 0, duration)
		c.logger.Warn("upstream call failed", zap.String("op", op), zap.Error(err))
		return c.transportError(err, mutation)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, duration)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return appErrors.ErrSessionExpired
	case resp.StatusCode == http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, detailFromBody(resp.Body, "email is already registered"))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		kind := appErrors.ErrFetchFailed
		fallback := "upstream read failed"
		if mutation {
			kind = appErrors.ErrMutationFailed
			fallback = "upstream write failed"
		}
		detail := detailFromBody(resp.Body, fallback)
		c.logger.Warn("upstream rejected request",
			zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("detail", detail))
		return appErrors.Clone(kind, detail)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, "decode upstream response")
	}
	return nil
}

func (c *Client) transportError(err error, mutation bool) error {
	if mutation {
		return appErrors.Wrap(err, appErrors.ErrMutationFailed.Code, appErrors.ErrMutationFailed.Status, appErrors.ErrMutationFailed.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, appErrors.ErrFetchFailed.Message)
}

func (c *Client) observe(op string, status int, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveUpstreamCall(op, status, duration)
	}
}

type errorBody struct {
	Message string `json:"message"`
}

func detailFromBody(r io.Reader, fallback string) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return fallback
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		return fallback
	}
	return body.Message
}
