package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haroonyaqubi/task-flow-app/internal/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/config"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "admin-password"
)

// fakeEnqueuer records enqueued tasks instead of talking to redis
type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: "default"}, nil
}

func (f *fakeEnqueuer) enqueued() []*asynq.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*asynq.Task(nil), f.tasks...)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		HTTP:     config.HTTPConfig{Port: "0", CORSOrigins: []string{"http://localhost:3000"}},
		Database: config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "taskflow-test.sqlite")},
		Auth: config.AuthConfig{
			JWTSecret:            "test-secret",
			AccessTokenLifetime:  30 * time.Minute,
			RefreshTokenLifetime: 24 * time.Hour,
			AdminUsername:        testAdminUsername,
			AdminPassword:        testAdminPassword,
		},
		Logging: config.LoggingConfig{Level: "disabled", Format: "json"},
	}
}

func newTestServer(t *testing.T) (*Server, *fakeEnqueuer) {
	t.Helper()

	cfg := testConfig(t)
	db, err := OpenDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	enq := &fakeEnqueuer{}
	srv, err := New(cfg, db, enq, zerolog.Nop(), "test")
	require.NoError(t, err)
	return srv, enq
}

func createTestUser(t *testing.T, srv *Server, username, password string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	user := models.User{Username: username, PasswordHash: hash, IsActive: true}
	require.NoError(t, srv.db.Create(&user).Error)
	return user
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func login(t *testing.T, srv *Server, username, password string) TokenPairResponse {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/token/", "", TokenObtainRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[TokenPairResponse](t, rec)
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestBootstrapAdmin(t *testing.T) {
	srv, _ := newTestServer(t)

	var admin models.User
	require.NoError(t, srv.db.Where("username = ?", testAdminUsername).First(&admin).Error)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsActive)

	// A second bootstrap is a no-op once users exist
	require.NoError(t, srv.bootstrapAdmin())
	var count int64
	require.NoError(t, srv.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoadJWTSecret_GeneratedOnce(t *testing.T) {
	cfg := testConfig(t)
	db, err := OpenDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	first, err := loadJWTSecret(db, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := loadJWTSecret(db, "", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	configured, err := loadJWTSecret(db, "from-env", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "from-env", configured)
}
