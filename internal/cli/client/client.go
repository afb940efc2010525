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

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hireboard-dev/hireboard/internal/cli/apierror"
)

const (
	DefaultTimeout = 15 * time.Second
	UserAgent      = "hireboard-cli"

	// maxErrorBody caps how much of a failed response is read for "detail"
	maxErrorBody = 1 << 20
)

// CredentialSource supplies the bearer token for outbound requests
type CredentialSource interface {
	Credential() (string, error)
}

// SessionInvalidator is told to drop the session when the backend answers 401.
// token is the credential the rejected request carried; Invalidate reports
// whether the session was dropped.
type SessionInvalidator interface {
	Invalidate(token string) (bool, error)
}

// Navigator receives the redirect requested after a 401
type Navigator interface {
	Redirect(name string)
}

// Notifier shows a classified failure to the operator
type Notifier interface {
	Notify(err *apierror.Error)
}

// Client represents an HTTP client for the recruitment API. Every call runs
// through the request stages, the transport and the response classifier.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	stages     []RequestStage

	credentials CredentialSource
	session     SessionInvalidator
	navigator   Navigator
	notifier    Notifier
	loginRoute  string

	validate *validator.Validate
	logger   zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the fixed request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient sets a custom HTTP client. The client is copied, so the
// caller's value keeps its timeout and transport.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient == nil {
			return
		}
		hc := *httpClient
		c.httpClient = &hc
	}
}

// WithSession wires the credential source and the 401 handler, usually both
// the same *session.Session
func WithSession(credentials CredentialSource, invalidator SessionInvalidator) Option {
	return func(c *Client) {
		c.credentials = credentials
		c.session = invalidator
	}
}

// WithNavigator sets where the 401 redirect goes and the route name to use
func WithNavigator(navigator Navigator, loginRoute string) Option {
	return func(c *Client) {
		c.navigator = navigator
		c.loginRoute = loginRoute
	}
}

// WithNotifier sets the operator-facing notifier
func WithNotifier(notifier Notifier) Option {
	return func(c *Client) {
		c.notifier = notifier
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestStages appends stages run after the built-in ones
func WithRequestStages(stages ...RequestStage) Option {
	return func(c *Client) {
		c.stages = append(c.stages, stages...)
	}
}

// New creates a new API client for baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		validate: validator.New(),
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Transport = LoggingTransport(c.httpClient.Transport, c.logger)
	c.stages = append([]RequestStage{
		RequestIDStage(),
		UserAgentStage(UserAgent),
		BearerStage(c.credentials),
	}, c.stages...)

	return c, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends req through the pipeline. On success the caller owns resp.Body.
// Every failure is classified, reported once and returned as *apierror.Error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for _, stage := range c.stages {
		if err := stage(req); err != nil {
			return nil, c.fail(req, apierror.Construction(err))
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(req, apierror.Network(err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, c.fail(req, apierror.FromStatus(resp.StatusCode, body))
}

// fail runs the side effects of a classified failure and returns it
func (c *Client) fail(req *http.Request, apiErr *apierror.Error) error {
	if req != nil {
		apiErr.Method = req.Method
		if req.URL != nil {
			apiErr.Path = req.URL.Path
		}
	}

	c.logger.Debug().
		Str("kind", string(apiErr.Kind)).
		Int("status", apiErr.Status).
		Str("detail", apiErr.Detail).
		Str("path", apiErr.Path).
		Msg("Request failed")

	if c.notifier != nil {
		c.notifier.Notify(apiErr)
	}

	if apiErr.Kind == apierror.KindUnauthorized {
		invalidated := true
		if c.session != nil {
			var err error
			invalidated, err = c.session.Invalidate(sentToken(req))
			if err != nil {
				c.logger.Warn().Err(err).Msg("Failed to clear session after 401")
			}
		}
		// A 401 for a token replaced since the request was sent changes nothing
		if invalidated && c.navigator != nil && c.loginRoute != "" {
			c.navigator.Redirect(c.loginRoute)
		}
	}

	return apiErr
}

// newRequest builds a request against the base URL. A failure here is a
// construction error and goes through fail like any other.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, c.fail(nil, apierror.Construction(fmt.Errorf("failed to create request: %w", err)))
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// check validates a request payload before it is sent
func (c *Client) check(method, path string, payload any) error {
	if err := c.validate.Struct(payload); err != nil {
		return c.fail(&http.Request{Method: method, URL: &url.URL{Path: path}},
			apierror.Construction(fmt.Errorf("invalid request: %w", err)))
	}
	return nil
}

// doJSON sends in (if not nil) as JSON and decodes the response into out
// (if not nil)
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return c.fail(&http.Request{Method: method, URL: &url.URL{Path: path}},
				apierror.Construction(fmt.Errorf("failed to marshal request: %w", err)))
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Get sends a GET and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends in as JSON and decodes the response into out
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, in, out)
}

// Put sends in as JSON and decodes the response into out
func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, nil, in, out)
}

// Delete sends a DELETE and discards the response body
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// PostForm sends form url-encoded and decodes the response into out
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil,
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, out)
}

// Download streams a successful response body into w
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("failed to read response: %w", err)
	}
	return n, nil
}
