package client

import (
	"context"
	"net/http"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/session"
)

// Credentials is the login payload
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is returned by a successful login
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessToken is returned by a successful refresh
type AccessToken struct {
	Access string `json:"access"`
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username       string `json:"username"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Email          string `json:"email,omitempty"`
	Password       string `json:"password"`
	PrivacyConsent bool   `json:"consentement_rgpd"`
}

// RegisteredUser echoes the created account
type RegisteredUser struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// AuthAPI covers token and account endpoints
type AuthAPI struct {
	c *Client
}

// Auth returns the authentication endpoints
func (c *Client) Auth() *AuthAPI {
	return &AuthAPI{c: c}
}

// Login exchanges credentials for a token pair
func (a *AuthAPI) Login(ctx context.Context, username, password string) Result[TokenPair] {
	return DoPublic[TokenPair](ctx, a.c, http.MethodPost, "token/", Credentials{Username: username, Password: password})
}

// Refresh exchanges a refresh token for a new access token without storing it
func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) Result[AccessToken] {
	return a.c.postRefresh(ctx, refreshToken)
}

// CurrentUser fetches the signed-in user's profile
func (a *AuthAPI) CurrentUser(ctx context.Context) Result[session.UserProfile] {
	return Do[session.UserProfile](ctx, a.c, http.MethodGet, "user/me/", nil)
}

// Register creates an account
func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) Result[RegisteredUser] {
	return DoPublic[RegisteredUser](ctx, a.c, http.MethodPost, "user/register/", req)
}

// Blacklist revokes a refresh token server-side
func (a *AuthAPI) Blacklist(ctx context.Context, refreshToken string) Result[struct{}] {
	return DoPublic[struct{}](ctx, a.c, http.MethodPost, "token/blacklist/", map[string]string{"refresh": refreshToken})
}
