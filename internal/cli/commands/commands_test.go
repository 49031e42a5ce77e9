package commands

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/haroonyaqubi/task-flow-app/internal/auth"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/session"
	"github.com/haroonyaqubi/task-flow-app/internal/config"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
	"github.com/haroonyaqubi/task-flow-app/internal/server"
)

const (
	adminUsername = "admin"
	adminPassword = "admin-password"
)

// discardEnqueuer accepts every task without a queue behind it
type discardEnqueuer struct{}

func (discardEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{Type: task.Type(), Queue: "default"}, nil
}

// testEnv is a real API server on httptest plus the CLI-side session and output
type testEnv struct {
	srv   *httptest.Server
	api   *server.Server
	store *session.MemoryStore
	out   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		HTTP:     config.HTTPConfig{CORSOrigins: []string{"http://localhost:3000"}},
		Database: config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "taskflow-cli-test.sqlite")},
		Auth: config.AuthConfig{
			JWTSecret:            "cli-test-secret",
			AccessTokenLifetime:  30 * time.Minute,
			RefreshTokenLifetime: 24 * time.Hour,
			AdminUsername:        adminUsername,
			AdminPassword:        adminPassword,
		},
	}

	db, err := server.OpenDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	api, err := server.New(cfg, db, discardEnqueuer{}, zerolog.Nop(), "1.0.0")
	require.NoError(t, err)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		srv:   srv,
		api:   api,
		store: session.NewMemoryStore(),
		out:   &bytes.Buffer{},
	}
}

func (e *testEnv) opts() []Option {
	return []Option{
		WithBaseURL(e.srv.URL + "/api/"),
		WithStore(e.store),
		WithOutput(e.out),
		WithHTTPClient(e.srv.Client()),
		WithInteractive(false),
	}
}

func (e *testEnv) createUser(t *testing.T, username, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, e.api.GetDB().Create(&models.User{Username: username, PasswordHash: hash, IsActive: true}).Error)
}

// loginAs signs in through the login command and resets the output
func (e *testEnv) loginAs(t *testing.T, username, password string) {
	t.Helper()
	require.NoError(t, runLogin(context.Background(), username, password, e.opts()...))
	e.out.Reset()
}

func (e *testEnv) stored(field session.Field) string {
	v, _ := e.store.Get(field)
	return v
}
