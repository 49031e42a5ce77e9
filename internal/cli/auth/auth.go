// Package auth runs the client's sign-in flows on top of the API client and
// keeps the observable authentication state.
package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/session"
)

const (
	msgLoginFailed        = "Login failed"
	msgUserInfoFailed     = "Failed to get user information"
	msgRegisterFailed     = "Registration failed"
	msgNotAuthenticated   = "Not authenticated"
	msgLoginSucceeded     = "Login successful"
	msgRegisterSucceeded  = "Registration successful. Please login."
	msgProfileStoreFailed = "Failed to save user information"
)

// LoginOutcome is the result of a complete login
type LoginOutcome struct {
	User    *session.UserProfile
	Message string
}

// Service orchestrates login, registration and logout
type Service struct {
	api    *client.AuthAPI
	store  session.Store
	logger zerolog.Logger

	mu      sync.RWMutex
	loading bool
	err     string
	user    *session.UserProfile
}

// NewService creates an auth service over c, seeded from the stored session
func NewService(c *client.Client, logger zerolog.Logger) *Service {
	return &Service{
		api:    c.Auth(),
		store:  c.Store(),
		logger: logger,
		user:   session.Snapshot(c.Store()).User,
	}
}

// Login signs in: token/ → persist tokens → user/me/ → persist profile.
// It succeeds only when both calls succeed. A failed profile fetch leaves
// the tokens stored without a profile.
func (s *Service) Login(ctx context.Context, username, password string) client.Result[LoginOutcome] {
	s.begin()
	defer s.end()

	tokens := s.api.Login(ctx, username, password)
	if !tokens.Success {
		msg := tokens.Error.Detail()
		if msg == "" {
			msg = msgLoginFailed
		}
		return s.fail(tokens.Error, msg)
	}

	// A previous account's profile must not outlive the new tokens
	if err := s.store.ClearAll(); err != nil {
		return s.fail(&client.APIError{Kind: client.NetworkError, Message: err.Error(), Err: err}, msgLoginFailed)
	}
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Set(session.FieldAccess, tokens.Data.Access); err != nil {
		return s.fail(&client.APIError{Kind: client.NetworkError, Message: err.Error(), Err: err}, msgLoginFailed)
	}
	if err := s.store.Set(session.FieldRefresh, tokens.Data.Refresh); err != nil {
		return s.fail(&client.APIError{Kind: client.NetworkError, Message: err.Error(), Err: err}, msgLoginFailed)
	}

	me := s.api.CurrentUser(ctx)
	if !me.Success {
		s.logger.Warn().Err(me.Error).Str("username", username).Msg("Signed in but the profile could not be loaded")
		return s.fail(me.Error, msgUserInfoFailed)
	}

	profile := me.Data
	if err := session.SaveProfile(s.store, &profile); err != nil {
		return s.fail(&client.APIError{Kind: client.NetworkError, Message: err.Error(), Err: err}, msgProfileStoreFailed)
	}

	s.mu.Lock()
	s.user = &profile
	s.mu.Unlock()

	s.logger.Debug().Str("username", profile.Username).Bool("admin", profile.IsAdmin).Msg("Signed in")
	return client.Result[LoginOutcome]{
		Success: true,
		Data:    LoginOutcome{User: &profile, Message: msgLoginSucceeded},
		Status:  me.Status,
	}
}

// Register creates an account. It does not sign in.
func (s *Service) Register(ctx context.Context, req client.RegisterRequest) client.Result[string] {
	s.begin()
	defer s.end()

	res := s.api.Register(ctx, req)
	if !res.Success {
		return fail[string](s, res.Error, RegistrationMessage(res.Error))
	}
	return client.Result[string]{Success: true, Data: msgRegisterSucceeded, Status: res.Status}
}

// RegistrationMessage extracts the most specific message from a rejected registration
func RegistrationMessage(e *client.APIError) string {
	if e == nil {
		return msgRegisterFailed
	}
	if msg := e.StringField("error"); msg != "" {
		return msg
	}
	if msg := e.Detail(); msg != "" {
		return msg
	}
	for _, field := range []string{"username", "password", "email", "first_name", "last_name"} {
		if msg := e.FirstFieldError(field); msg != "" {
			return field + ": " + msg
		}
	}
	if e.Kind == client.NetworkError {
		return e.Message
	}
	return msgRegisterFailed
}

// Logout revokes the refresh token (best effort) and clears the session
func (s *Service) Logout(ctx context.Context) error {
	if refresh, ok := s.store.Get(session.FieldRefresh); ok && refresh != "" {
		if res := s.api.Blacklist(ctx, refresh); !res.Success {
			s.logger.Debug().Err(res.Error).Msg("Refresh token revocation failed")
		}
	}

	s.mu.Lock()
	s.user = nil
	s.err = ""
	s.mu.Unlock()

	return s.store.ClearAll()
}

// CurrentSession returns the stored session
func (s *Service) CurrentSession() session.Session {
	return session.Snapshot(s.store)
}

// LoadUser refreshes the cached profile from the server. When signed in but
// the profile cannot be fetched, the session is ended.
func (s *Service) LoadUser(ctx context.Context) client.Result[session.UserProfile] {
	if !s.IsAuthenticated() {
		return client.Result[session.UserProfile]{
			Error: &client.APIError{Kind: client.Unauthenticated, Message: msgNotAuthenticated},
		}
	}

	s.begin()
	defer s.end()

	me := s.api.CurrentUser(ctx)
	if !me.Success {
		s.logger.Debug().Err(me.Error).Msg("Stored session is no longer valid")
		if err := s.Logout(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear session")
		}
		return me
	}

	profile := me.Data
	if err := session.SaveProfile(s.store, &profile); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache user profile")
	}
	s.mu.Lock()
	s.user = &profile
	s.mu.Unlock()
	return me
}

// Loading reports whether a flow is in progress
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last flow's error message, or ""
func (s *Service) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ClearError resets the error message
func (s *Service) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// User returns the signed-in user's profile, or nil when unknown
func (s *Service) User() *session.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether an access token is stored
func (s *Service) IsAuthenticated() bool {
	return session.Snapshot(s.store).Authenticated()
}

// IsAdmin reports whether the stored profile grants admin rights
func (s *Service) IsAdmin() bool {
	u := session.Snapshot(s.store).User
	return u != nil && u.IsAdmin
}

func (s *Service) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.err = ""
}

func (s *Service) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}

func (s *Service) fail(cause *client.APIError, msg string) client.Result[LoginOutcome] {
	return fail[LoginOutcome](s, cause, msg)
}

// fail records msg as the service error and wraps cause under it
func fail[T any](s *Service, cause *client.APIError, msg string) client.Result[T] {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()

	return client.Result[T]{
		Error: &client.APIError{
			Kind:    cause.Kind,
			Status:  cause.Status,
			Message: msg,
			Payload: cause.Payload,
			Err:     cause,
		},
		Status: cause.Status,
	}
}
