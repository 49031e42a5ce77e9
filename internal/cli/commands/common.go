package commands

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/haroonyaqubi/task-flow-app/internal/cli/client"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/session"
	"github.com/haroonyaqubi/task-flow-app/internal/cli/userconfig"
	"github.com/haroonyaqubi/task-flow-app/internal/logger"
)

// runtime carries what a command needs to talk to the API
type runtime struct {
	out         io.Writer
	errOut      io.Writer
	baseURL     string
	store       session.Store
	httpClient  *http.Client
	logger      zerolog.Logger
	interactive bool
	navigator   *hintNavigator
	client      *client.Client
}

// Option configures a command's runtime. Tests use them to swap the API
// address, the session store and the output.
type Option func(*runtime)

// WithOutput sets where command output goes
func WithOutput(w io.Writer) Option {
	return func(r *runtime) {
		r.out = w
		r.errOut = w
	}
}

// WithBaseURL skips the configured API address
func WithBaseURL(baseURL string) Option {
	return func(r *runtime) {
		r.baseURL = baseURL
	}
}

// WithStore replaces the keychain-backed session store
func WithStore(store session.Store) Option {
	return func(r *runtime) {
		r.store = store
	}
}

// WithHTTPClient sets the HTTP client used for API calls
func WithHTTPClient(httpClient *http.Client) Option {
	return func(r *runtime) {
		r.httpClient = httpClient
	}
}

// WithInteractive forces prompts on or off
func WithInteractive(interactive bool) Option {
	return func(r *runtime) {
		r.interactive = interactive
	}
}

// newRuntime resolves the API address and session store and builds the
// client. location is where the command "is", for session-expiry redirects.
func newRuntime(location string, opts ...Option) (*runtime, error) {
	r := &runtime{
		out:         os.Stdout,
		errOut:      os.Stderr,
		logger:      logger.GetLogger(),
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.baseURL == "" {
		baseURL, err := userconfig.ResolveBaseURL()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve API address: %w", err)
		}
		r.baseURL = baseURL
	}
	if r.store == nil {
		r.store = session.NewKeyringStore(r.baseURL)
	}

	r.navigator = &hintNavigator{location: location, out: r.errOut}

	clientOpts := []client.Option{
		client.WithNavigator(r.navigator),
		client.WithLogger(r.logger),
	}
	if r.httpClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(r.httpClient))
	}

	c, err := client.New(r.baseURL, r.store, clientOpts...)
	if err != nil {
		return nil, err
	}
	r.client = c
	return r, nil
}

func (r *runtime) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// requireSession fails early when no access token is stored
func (r *runtime) requireSession() error {
	if !session.Snapshot(r.store).Authenticated() {
		return fmt.Errorf("not logged in. Run 'taskflow login' first")
	}
	return nil
}

// hintNavigator stands in for page navigation: the CLI has no pages, so a
// redirect to the login page becomes a hint to run the login command
type hintNavigator struct {
	location   string
	out        io.Writer
	redirected string
}

func (n *hintNavigator) Location() string {
	return n.location
}

func (n *hintNavigator) Redirect(location string) {
	n.redirected = location
	if strings.HasPrefix(location, client.SessionExpiredLocation) {
		fmt.Fprintln(n.out, "Your session has expired. Run 'taskflow login' to sign in again.")
		return
	}
	fmt.Fprintf(n.out, "Please run 'taskflow login' (%s)\n", location)
}

// failed turns an unsuccessful operation into a command error. message is
// the user-facing text; when empty the API error's own message is used.
func failed(action, message string, e *client.APIError) error {
	if message == "" && e != nil {
		message = e.Message
	}
	return fmt.Errorf("%s: %s", action, message)
}
