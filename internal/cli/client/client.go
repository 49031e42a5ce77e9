// Package client is the taskflow API client: it attaches the stored bearer
// token, refreshes it once on a 401, and normalises every outcome into a
// Result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/session"
)

const (
	// DefaultTimeout bounds every request
	DefaultTimeout = 10 * time.Second

	// LoginLocation is where the user signs in
	LoginLocation = "/login"

	// SessionExpiredLocation is where the user is sent when the session ends
	SessionExpiredLocation = "/login?session=expired"

	refreshPath = "token/refresh/"
)

// Navigator is told where to send the user when the session ends
type Navigator interface {
	Location() string
	Redirect(location string)
}

// Request is an immutable description of one outgoing call. Attempt is 1
// for the original send and 2 for the single retry after a refresh.
type Request struct {
	Method    string
	Path      string
	Body      []byte
	Attempt   int
	RequestID string
	Public    bool // sent without a bearer token and never refreshed
}

func (r Request) retry() Request {
	r.Attempt = 2
	return r
}

type response struct {
	status int
	body   []byte
}

// Client represents an HTTP client for the taskflow API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	store      session.Store
	navigator  Navigator
	logger     zerolog.Logger
	timeout    time.Duration

	refreshes singleflight.Group
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithNavigator sets the session-expiry redirect target
func WithNavigator(n Navigator) Option {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithTimeout bounds each request. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the request logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a new API client for baseURL backed by store
func New(baseURL string, store session.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		store:      store,
		logger:     zerolog.Nop(),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root every relative path is resolved against
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Store returns the session store
func (c *Client) Store() session.Store {
	return c.store
}

// Do sends an authenticated call and decodes a successful body into T
func Do[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	return do[T](ctx, c, method, path, body, false)
}

// DoPublic sends a call without the bearer token. A 401 is final and does
// not touch the session.
func DoPublic[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	return do[T](ctx, c, method, path, body, true)
}

func do[T any](ctx context.Context, c *Client, method, path string, body any, public bool) Result[T] {
	req := Request{
		Method:    method,
		Path:      path,
		Attempt:   1,
		RequestID: uuid.NewString(),
		Public:    public,
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return failure[T](&APIError{Kind: ValidationError, Message: "failed to encode request", Err: err})
		}
		req.Body = raw
	}

	resp, apiErr := c.execute(ctx, req)
	if apiErr != nil {
		return failure[T](apiErr)
	}

	var data T
	if len(bytes.TrimSpace(resp.body)) > 0 {
		if err := json.Unmarshal(resp.body, &data); err != nil {
			return failure[T](&APIError{
				Kind:    ServerError,
				Status:  resp.status,
				Message: "failed to decode response",
				Payload: json.RawMessage(resp.body),
				Err:     err,
			})
		}
	}
	return Result[T]{Success: true, Data: data, Status: resp.status}
}

// execute runs the pipeline: attachAuth → send → refreshOnce → resend
func (c *Client) execute(ctx context.Context, req Request) (*response, *APIError) {
	resp, apiErr := c.send(ctx, req)
	if apiErr != nil {
		return nil, apiErr
	}
	if resp.status != http.StatusUnauthorized || req.Public || req.Attempt > 1 {
		return c.classify(resp)
	}

	refreshToken, ok := c.store.Get(session.FieldRefresh)
	if !ok || refreshToken == "" {
		c.logger.Debug().Str("request_id", req.RequestID).Msg("No refresh token, ending session")
		c.expireSession()
		return nil, statusError(resp.status, resp.body)
	}

	if apiErr := c.refreshOnce(ctx, refreshToken); apiErr != nil {
		c.logger.Debug().Err(apiErr).Str("request_id", req.RequestID).Msg("Token refresh failed, ending session")
		c.expireSession()
		return nil, apiErr
	}

	resp, apiErr = c.send(ctx, req.retry())
	if apiErr != nil {
		return nil, apiErr
	}
	return c.classify(resp)
}

func (c *Client) classify(resp *response) (*response, *APIError) {
	if resp.status >= 200 && resp.status < 300 {
		return resp, nil
	}
	return nil, statusError(resp.status, resp.body)
}

// resolve prefixes relative paths with the base URL. Absolute URLs (such as
// pagination links) are used as-is.
func (c *Client) resolve(path string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	return c.baseURL.ResolveReference(&url.URL{
		Path:     strings.TrimPrefix(u.Path, "/"),
		RawQuery: u.RawQuery,
	}).String(), nil
}

// attachAuth sets the bearer header from the token stored at send time
func (c *Client) attachAuth(httpReq *http.Request, req Request) {
	if req.Public {
		return
	}
	if token, ok := c.store.Get(session.FieldAccess); ok && token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) send(ctx context.Context, req Request) (*response, *APIError) {
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, &APIError{Kind: NetworkError, Message: fmt.Sprintf("invalid request path %q", req.Path), Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &APIError{Kind: NetworkError, Message: "failed to create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", req.RequestID)
	c.attachAuth(httpReq, req)

	start := time.Now()
	c.logger.Debug().
		Str("method", req.Method).
		Str("url", target).
		Int("attempt", req.Attempt).
		Str("request_id", req.RequestID).
		Msg("API request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		msg := "network error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			msg = fmt.Sprintf("request timed out after %s", c.timeout)
		}
		c.logger.Debug().Err(err).Str("request_id", req.RequestID).Msg("API request failed")
		return nil, &APIError{Kind: NetworkError, Message: msg, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: NetworkError, Status: resp.StatusCode, Message: "failed to read response", Err: err}
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("url", target).
		Dur("duration", time.Since(start)).
		Str("request_id", req.RequestID).
		Msg("API response")

	return &response{status: resp.StatusCode, body: raw}, nil
}

// refreshOnce exchanges the refresh token for a new access token and stores
// it. Concurrent callers holding the same refresh token share one exchange,
// which is detached from the first caller's cancellation but still bounded
// by the request timeout.
func (c *Client) refreshOnce(ctx context.Context, refreshToken string) *APIError {
	shared := context.WithoutCancel(ctx)
	v, _, _ := c.refreshes.Do(refreshToken, func() (any, error) {
		res := c.postRefresh(shared, refreshToken)
		if !res.Success {
			return res.Error, nil
		}
		if err := c.store.Set(session.FieldAccess, res.Data.Access); err != nil {
			return &APIError{Kind: Unauthenticated, Message: "failed to store refreshed access token", Err: err}, nil
		}
		c.logger.Debug().Msg("Access token refreshed")
		return (*APIError)(nil), nil
	})
	return v.(*APIError)
}

// postRefresh calls token/refresh/ outside the pipeline: no bearer, no retry
func (c *Client) postRefresh(ctx context.Context, refreshToken string) Result[AccessToken] {
	res := DoPublic[AccessToken](ctx, c, http.MethodPost, refreshPath, map[string]string{"refresh": refreshToken})
	if res.Success && res.Data.Access == "" {
		return failure[AccessToken](&APIError{
			Kind:    ServerError,
			Status:  res.Status,
			Message: "refresh response carried no access token",
		})
	}
	return res
}

// expireSession clears the stored session and sends the user to the login
// page unless they are already there
func (c *Client) expireSession() {
	if err := c.store.ClearAll(); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to clear session")
	}
	if c.navigator == nil {
		return
	}
	location := c.navigator.Location()
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if location != LoginLocation {
		c.navigator.Redirect(SessionExpiredLocation)
	}
}
