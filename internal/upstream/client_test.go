package upstream

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unidesk/attendance-panel-api/internal/models"
	"github.com/unidesk/attendance-panel-api/pkg/config"
	appErrors "github.com/unidesk/attendance-panel-api/pkg/errors"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.UpstreamConfig{
		BaseURL:       srv.URL,
		Timeout:       2 * time.Second,
		SessionCookie: "JSESSIONID",
	}, zap.NewNop(), nil)
}

func staffSession() models.SessionContext {
	return models.SessionContext{Email: "staff@example.com", Role: models.RoleStaff, UpstreamToken: "tok-1"}
}

func TestListEmployeesSendsScopeAndCookie(t *testing.T) {
	var gotQuery, gotCookie string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("departmentId")
		if ck, err := r.Cookie("JSESSIONID"); err == nil {
			gotCookie = ck.Value
		}
		_ = json.NewEncoder(w).Encode([]models.Employee{{ID: 1, Surname: "Иванов"}})
	})

	employees, err := client.ListEmployees(context.Background(), staffSession(), "7")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "7", gotQuery)
	assert.Equal(t, "tok-1", gotCookie)
}

func TestListEmployeesUnauthorizedMapsToSessionExpired(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListEmployees(context.Background(), staffSession(), "7")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSessionExpired))
}

func TestListEmployeesServerErrorMapsToFetchFailed(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "database is down"})
	})

	_, err := client.ListEmployees(context.Background(), staffSession(), "7")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrFetchFailed))
	assert.Equal(t, "database is down", appErrors.FromError(err).Message)
}

func TestCreateEmployeeConflict(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	_, err := client.CreateEmployee(context.Background(), staffSession(), models.EmployeePayload{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.Equal(t, "email is already registered", appErrors.FromError(err).Message)
}

func TestCreateEmployeeServerErrorMapsToMutationFailed(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.CreateEmployee(context.Background(), staffSession(), models.EmployeePayload{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrMutationFailed))
}

func TestUpdateEmployeeOmitsEmptyPassword(t *testing.T) {
	var gotBody []byte
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/staff/teachers/14", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.Employee{ID: 14})
	})

	_, err := client.UpdateEmployee(context.Background(), staffSession(), 14, models.EmployeePayload{
		Surname: "Иванов", Name: "Пётр",
	})
	require.NoError(t, err)
	assert.NotContains(t, string(gotBody), `"password"`)
}

func TestDeleteEmployeeSendsDeleteToIDPath(t *testing.T) {
	var gotMethod, gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.DeleteEmployee(context.Background(), staffSession(), 14)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/staff/teachers/14", gotPath)
}

func TestDeleteEmployeeServerErrorMapsToMutationFailed(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "teacher is still assigned"})
	})

	err := client.DeleteEmployee(context.Background(), staffSession(), 14)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrMutationFailed))
	assert.Equal(t, "teacher is still assigned", appErrors.FromError(err).Message)
}

func TestClientTimeoutSurfacesAsTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	client := NewClient(config.UpstreamConfig{
		BaseURL: srv.URL,
		Timeout: 20 * time.Millisecond,
	}, zap.NewNop(), nil)

	_, err := client.ListEmployees(context.Background(), staffSession(), "7")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrFetchFailed))

	_, err = client.CreateEmployee(context.Background(), staffSession(), models.EmployeePayload{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrMutationFailed))
}

func TestLoginReadsSessionCookie(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "sess-42"})
			w.WriteHeader(http.StatusOK)
		case "/api/auth/user":
			ck, err := r.Cookie("JSESSIONID")
			require.NoError(t, err)
			assert.Equal(t, "sess-42", ck.Value)
			_ = json.NewEncoder(w).Encode(models.UpstreamUser{
				Type: "employee", Email: "staff@example.com", Name: "Иванов Пётр", Role: "ROLE_STAFF",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	token, user, err := client.Login(context.Background(), models.LoginRequest{
		Email: "staff@example.com", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-42", token)
	assert.Equal(t, "ROLE_STAFF", user.Role)
}

func TestLoginInvalidCredentials(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, _, err := client.Login(context.Background(), models.LoginRequest{
		Email: "staff@example.com", Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestLoginWithoutSessionCookieFails(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, _, err := client.Login(context.Background(), models.LoginRequest{
		Email: "staff@example.com", Password: "secret",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrFetchFailed))
}

func TestChangePasswordUsesRolePath(t *testing.T) {
	var gotPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	err := client.ChangePassword(context.Background(), staffSession(), models.ChangePasswordRequest{
		NewPassword: "newpass", ConfirmPassword: "newpass",
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/staff/settings/change-password", gotPath)
}
