// Package app wires one process worth of CLI state: configuration, logger,
// credential store, session, HTTP client and router.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/hireboard-dev/hireboard/internal/cli/auth"
	"github.com/hireboard-dev/hireboard/internal/cli/client"
	"github.com/hireboard-dev/hireboard/internal/cli/notify"
	"github.com/hireboard-dev/hireboard/internal/cli/router"
	"github.com/hireboard-dev/hireboard/internal/cli/session"
	"github.com/hireboard-dev/hireboard/internal/config"
)

// App is the dependency graph shared by every command
type App struct {
	Config   *config.Config
	BaseURL  string
	Logger   zerolog.Logger
	Store    auth.TokenStore
	Session  *session.Session
	Client   *client.Client
	Router   *router.Router
	Notifier *notify.Writer

	Out io.Writer
	Err io.Writer
}

type options struct {
	store      auth.TokenStore
	httpClient *http.Client
	logger     *zerolog.Logger
	out        io.Writer
	err        io.Writer
}

// Option customizes New
type Option func(*options)

// WithStore replaces the keychain-backed token store
func WithStore(store auth.TokenStore) Option {
	return func(o *options) { o.store = store }
}

// WithHTTPClient sets the HTTP client used by the pipeline
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// WithLogger sets the diagnostics logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// WithOutput sets where command output and notifications go
func WithOutput(out, errOut io.Writer) Option {
	return func(o *options) {
		o.out = out
		o.err = errOut
	}
}

// New builds the application for baseURL. The session is bound to the client
// after both exist.
func New(cfg *config.Config, baseURL string, opts ...Option) (*App, error) {
	o := &options{out: os.Stdout, err: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	logger := zerolog.Nop()
	if o.logger != nil {
		logger = *o.logger
	}

	store := o.store
	if store == nil {
		if cfg.Keyring {
			store = auth.NewKeyringStore(baseURL)
		} else {
			store = auth.NewMemoryStore("")
		}
	}

	sess := session.New(store, session.WithLogger(logger.With().Str("component", "session").Logger()))

	rt, err := router.New(router.DefaultRoutes, router.NewGuard(sess),
		logger.With().Str("component", "router").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	notifier := notify.New(o.err, logger)

	clientOpts := []client.Option{
		client.WithTimeout(cfg.API.Timeout),
		client.WithSession(sess, sess),
		client.WithNavigator(rt, router.RouteLogin),
		client.WithNotifier(notifier),
		client.WithLogger(logger.With().Str("component", "http").Logger()),
	}
	if o.httpClient != nil {
		// WithTimeout writes to the client, so it has to come after
		clientOpts = append([]client.Option{client.WithHTTPClient(o.httpClient)}, clientOpts...)
	}

	apiClient, err := client.New(baseURL, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	sess.Bind(apiClient)

	return &App{
		Config:   cfg,
		BaseURL:  apiClient.BaseURL(),
		Logger:   logger,
		Store:    store,
		Session:  sess,
		Client:   apiClient,
		Router:   rt,
		Notifier: notifier,
		Out:      o.out,
		Err:      o.err,
	}, nil
}

// Close waits for background profile fetches
func (a *App) Close() {
	a.Session.Wait()
}

type contextKey struct{}

// NewContext returns ctx carrying a
func NewContext(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the App stored by NewContext, or nil
func FromContext(ctx context.Context) *App {
	if ctx == nil {
		return nil
	}
	a, _ := ctx.Value(contextKey{}).(*App)
	return a
}
