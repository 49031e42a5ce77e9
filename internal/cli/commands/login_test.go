package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/session"
)

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-alice")

	err := runLogin(context.Background(), "alice", "pw-alice", env.opts()...)
	require.NoError(t, err)

	assert.Contains(t, env.out.String(), "Login successful")
	assert.Contains(t, env.out.String(), "User: alice")
	assert.NotEmpty(t, env.stored(session.FieldAccess))
	assert.NotEmpty(t, env.stored(session.FieldRefresh))
	assert.Equal(t, "false", env.stored(session.FieldIsStaff))

	snap := session.Snapshot(env.store)
	require.NotNil(t, snap.User)
	assert.Equal(t, "alice", snap.User.Username)
}

func TestLogin_AdminRole(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, runLogin(context.Background(), adminUsername, adminPassword, env.opts()...))
	assert.Contains(t, env.out.String(), "Role: Admin")
	assert.Equal(t, "true", env.stored(session.FieldIsStaff))
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-alice")

	err := runLogin(context.Background(), "alice", "wrong", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")

	for _, field := range session.Fields {
		assert.Empty(t, env.stored(field), "field %s must not be written", field)
	}
}

func TestLogin_EnvironmentCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-alice")
	t.Setenv("TASKFLOW_USERNAME", "alice")
	t.Setenv("TASKFLOW_PASSWORD", "pw-alice")

	require.NoError(t, runLogin(context.Background(), "", "", env.opts()...))
	assert.NotEmpty(t, env.stored(session.FieldAccess))
}

func TestLogin_NonInteractiveRequiresPassword(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("TASKFLOW_PASSWORD", "")

	err := runLogin(context.Background(), "alice", "", env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required in non-interactive mode")
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-alice")
	env.loginAs(t, "alice", "pw-alice")
	refresh := env.stored(session.FieldRefresh)

	require.NoError(t, runLogout(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Logged out")
	for _, field := range session.Fields {
		assert.Empty(t, env.stored(field))
	}

	// The refresh token was revoked server-side
	require.NoError(t, env.store.Set(session.FieldRefresh, refresh))
	require.NoError(t, env.store.Set(session.FieldAccess, "expired"))
	err := runTasksList(context.Background(), 1, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, env.out.String(), "session has expired")
}

func TestLogout_NotLoggedIn(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, runLogout(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Not logged in")
}

func TestWhoami(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-alice")

	err := runWhoami(context.Background(), env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	env.loginAs(t, "alice", "pw-alice")
	require.NoError(t, runWhoami(context.Background(), env.opts()...))
	assert.Contains(t, env.out.String(), "Username: alice")
}

func TestRegisterThenLogin(t *testing.T) {
	env := newTestEnv(t)

	o := registerOptions{
		username:      "carol",
		email:         "carol@example.com",
		firstName:     "Carol",
		password:      "pw-carol",
		acceptPrivacy: true,
	}
	require.NoError(t, runRegister(context.Background(), o, env.opts()...))
	assert.Contains(t, env.out.String(), "Registration successful")

	// Registration does not sign in
	assert.Empty(t, env.stored(session.FieldAccess))

	env.loginAs(t, "carol", "pw-carol")
	assert.NotEmpty(t, env.stored(session.FieldAccess))
}

func TestRegister_Rejected(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "carol", "pw-carol")

	o := registerOptions{username: "dave", email: "dave@example.com", password: "pw"}
	err := runRegister(context.Background(), o, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "You must accept the privacy policy.")

	o = registerOptions{username: "carol", email: "carol@example.com", password: "pw", acceptPrivacy: true}
	err = runRegister(context.Background(), o, env.opts()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username: A user with that username already exists.")
}
