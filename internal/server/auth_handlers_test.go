package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObtainToken(t *testing.T) {
	srv, _ := newTestServer(t)
	createTestUser(t, srv, "alice", "correct-horse")

	t.Run("valid credentials", func(t *testing.T) {
		pair := login(t, srv, "alice", "correct-horse")
		assert.NotEmpty(t, pair.Access)
		assert.NotEmpty(t, pair.Refresh)
		assert.NotEqual(t, pair.Access, pair.Refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/token/", "", TokenObtainRequest{Username: "alice", Password: "wrong"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "No active account found with the given credentials", body["detail"])
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/token/", "", TokenObtainRequest{Username: "nobody", Password: "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/token/", "", map[string]string{"username": "alice"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[map[string][]string](t, rec)
		assert.Equal(t, []string{"This field is required."}, body["password"])
	})
}

func TestRefreshToken(t *testing.T) {
	srv, _ := newTestServer(t)
	createTestUser(t, srv, "alice", "correct-horse")
	pair := login(t, srv, "alice", "correct-horse")

	rec := doJSON(t, srv, http.MethodPost, "/api/token/refresh/", "", RefreshRequest{Refresh: pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := decode[AccessResponse](t, rec)
	require.NotEmpty(t, access.Access)

	// The refreshed access token authenticates
	rec = doJSON(t, srv, http.MethodGet, "/api/user/me/", access.Access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// An access token is not accepted as a refresh token
	rec = doJSON(t, srv, http.MethodPost, "/api/token/refresh/", "", RefreshRequest{Refresh: pair.Access})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "token_not_valid", body["code"])
}

func TestBlacklistToken(t *testing.T) {
	srv, _ := newTestServer(t)
	createTestUser(t, srv, "alice", "correct-horse")
	pair := login(t, srv, "alice", "correct-horse")

	rec := doJSON(t, srv, http.MethodPost, "/api/token/blacklist/", "", RefreshRequest{Refresh: pair.Refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodPost, "/api/token/refresh/", "", RefreshRequest{Refresh: pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Blacklisting twice is rejected like any revoked token
	rec = doJSON(t, srv, http.MethodPost, "/api/token/blacklist/", "", RefreshRequest{Refresh: pair.Refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("requires consent", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/user/register/", "", RegisterRequest{
			Username: "bob",
			Password: "secret-pass",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "You must accept the privacy policy.", body["error"])
	})

	t.Run("creates account", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/user/register/", "", RegisterRequest{
			Username:       "bob",
			FirstName:      "Bob",
			LastName:       "Martin",
			Email:          "bob@example.com",
			Password:       "secret-pass",
			PrivacyConsent: true,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := decode[RegisterResponse](t, rec)
		assert.Equal(t, "bob", body.Username)
		assert.Equal(t, "bob@example.com", body.Email)

		login(t, srv, "bob", "secret-pass")
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/user/register/", "", RegisterRequest{
			Username:       "bob",
			Password:       "another",
			PrivacyConsent: true,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[map[string][]string](t, rec)
		assert.Equal(t, []string{"A user with that username already exists."}, body["username"])
	})

	t.Run("invalid email", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/user/register/", "", RegisterRequest{
			Username:       "carol",
			Email:          "not-an-email",
			Password:       "secret-pass",
			PrivacyConsent: true,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[map[string][]string](t, rec)
		assert.Equal(t, []string{"Enter a valid email address."}, body["email"])
	})
}

func TestGetCurrentUser(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/user/me/", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Authentication credentials were not provided.", decode[map[string]string](t, rec)["detail"])

	rec = doJSON(t, srv, http.MethodGet, "/api/user/me/", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token_not_valid", decode[map[string]string](t, rec)["code"])

	pair := login(t, srv, testAdminUsername, testAdminPassword)
	rec = doJSON(t, srv, http.MethodGet, "/api/user/me/", pair.Access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]any](t, rec)
	assert.Equal(t, testAdminUsername, body["nom_utilisateur"])
	assert.Equal(t, true, body["est_admin"])
	assert.Contains(t, body, "prenom")
	assert.Contains(t, body, "nom")
	assert.Contains(t, body, "email")
}
