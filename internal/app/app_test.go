package app_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_backend/internal/app"
	"campus_backend/internal/config"
	"campus_backend/internal/testutil"
)

const adminPassword = "admin-pass1"

type testServer struct {
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.TTL = 60
	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Upload.MaxSize = 1 << 20
	cfg.Upload.AllowedTypes = []string{"image/png", "application/pdf"}
	cfg.Upload.ImageQuality = 85
	cfg.Upload.MaxImageSide = 256
	cfg.FirstAdmin.Email = "admin@campus.test"
	cfg.FirstAdmin.Username = "admin"
	cfg.FirstAdmin.Password = adminPassword

	db := testutil.NewTestDB(t)
	router, cleanup, err := app.SetupRouter(cfg, db)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		cleanup()
	})
	return &testServer{server: server}
}

func (ts *testServer) send(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, raw
}

func (ts *testServer) signup(t *testing.T, username, role string) string {
	t.Helper()

	status, body := ts.send(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]any{
		"username":   username,
		"email":      username + "@campus.test",
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
		"role":       role,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	return accessToken(t, body)
}

func (ts *testServer) login(t *testing.T, login, password string) string {
	t.Helper()

	status, body := ts.send(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"login":    login,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	return accessToken(t, body)
}

func accessToken(t *testing.T, body []byte) string {
	t.Helper()

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

type jobBody struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	IsApplied        bool   `json:"is_applied"`
	ApplicationCount int64  `json:"application_count"`
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newJobPayload(title string) map[string]any {
	return map[string]any{
		"title":          title,
		"description":    "Build and run backend services",
		"category":       "Technology",
		"job_type":       "Full-time",
		"workplace_type": "Hybrid",
		"location":       "Campus",
		"company_name":   "Acme",
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.send(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestJobApplicationFlow(t *testing.T) {
	ts := newTestServer(t)
	recruiter := ts.signup(t, "recruiter1", "Recruiter")
	student := ts.signup(t, "student1", "")

	status, body := ts.send(t, http.MethodPost, "/api/v1/jobs", recruiter, newJobPayload("Backend Dev"))
	require.Equal(t, http.StatusCreated, status, string(body))
	job := decode[jobBody](t, body)
	assert.Equal(t, "Backend Dev", job.Title)
	assert.Equal(t, int64(0), job.ApplicationCount)

	status, body = ts.send(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", student, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	application := decode[struct {
		JobID    string `json:"job_id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}](t, body)
	assert.Equal(t, job.ID, application.JobID)
	assert.Equal(t, "Test User", application.FullName)
	assert.Equal(t, "student1@campus.test", application.Email)

	status, body = ts.send(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", student, map[string]any{})
	assert.Equal(t, http.StatusConflict, status, string(body))

	status, body = ts.send(t, http.MethodGet, "/api/v1/jobs/"+job.ID, student, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	viewed := decode[jobBody](t, body)
	assert.True(t, viewed.IsApplied)
	assert.Equal(t, int64(1), viewed.ApplicationCount)

	status, body = ts.send(t, http.MethodGet, "/api/v1/jobs/"+job.ID, "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	anonymous := decode[jobBody](t, body)
	assert.False(t, anonymous.IsApplied)
	assert.Equal(t, int64(1), anonymous.ApplicationCount)

	status, body = ts.send(t, http.MethodGet, "/api/v1/jobs/"+job.ID+"/applications", recruiter, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), "student1@campus.test")

	status, _ = ts.send(t, http.MethodGet, "/api/v1/jobs/"+job.ID+"/applications", student, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestJobRoleChecks(t *testing.T) {
	ts := newTestServer(t)
	recruiter := ts.signup(t, "recruiter2", "Recruiter")
	student := ts.signup(t, "student2", "Basic")

	status, _ := ts.send(t, http.MethodPost, "/api/v1/jobs", "", newJobPayload("No Auth"))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ts.send(t, http.MethodPost, "/api/v1/jobs", student, newJobPayload("Student Job"))
	assert.Equal(t, http.StatusForbidden, status)

	status, body := ts.send(t, http.MethodPost, "/api/v1/jobs", recruiter, newJobPayload("Data Engineer"))
	require.Equal(t, http.StatusCreated, status, string(body))
	job := decode[jobBody](t, body)

	status, _ = ts.send(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", recruiter, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = ts.send(t, http.MethodGet, "/api/v1/jobs/"+uuid.NewString(), student, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = ts.send(t, http.MethodPost, "/api/v1/jobs", recruiter, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", decode[errorBody](t, body).Error.Code)
}

func TestLikeFlow(t *testing.T) {
	ts := newTestServer(t)
	student := ts.signup(t, "student3", "")
	targetID := uuid.NewString()
	likePath := fmt.Sprintf("/api/v1/likes/%s?target_type=job_offer", targetID)

	status, _ := ts.send(t, http.MethodPost, likePath, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := ts.send(t, http.MethodPost, likePath, student, nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = ts.send(t, http.MethodPost, likePath, student, nil)
	require.Equal(t, http.StatusCreated, status, string(body))

	status, body = ts.send(t, http.MethodGet, fmt.Sprintf("/api/v1/likes/%s/count?target_type=job_offer", targetID), "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	count := decode[struct {
		Count int64 `json:"count"`
	}](t, body)
	assert.Equal(t, int64(1), count.Count)

	status, body = ts.send(t, http.MethodGet, fmt.Sprintf("/api/v1/likes/%s/status?target_type=job_offer", targetID), student, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"is_liked":true`)

	status, _ = ts.send(t, http.MethodDelete, likePath, student, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = ts.send(t, http.MethodDelete, likePath, student, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.send(t, http.MethodPost, "/api/v1/likes/not-a-uuid?target_type=job_offer", student, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = ts.send(t, http.MethodPost, fmt.Sprintf("/api/v1/likes/%s?target_type=car", targetID), student, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	student := ts.signup(t, "student4", "")
	admin := ts.login(t, "admin@campus.test", adminPassword)

	status, _ := ts.send(t, http.MethodGet, "/api/v1/admin/users", student, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := ts.send(t, http.MethodGet, "/api/v1/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	list := decode[struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
		Total int64 `json:"total"`
	}](t, body)
	assert.Equal(t, int64(2), list.Total)

	var studentID string
	for _, u := range list.Users {
		if u.Username == "student4" {
			studentID = u.ID
		}
	}
	require.NotEmpty(t, studentID)

	status, body = ts.send(t, http.MethodPatch, "/api/v1/admin/users/"+studentID+"/role", admin, map[string]any{"role": "Moderator"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"role":"Moderator"`)
}
