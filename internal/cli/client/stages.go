package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// RequestStage transforms an outbound request before it is sent. A stage
// error aborts the call as a request construction failure.
type RequestStage func(req *http.Request) error

const (
	headerRequestID     = "X-Request-ID"
	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"
	bearerPrefix        = "Bearer "
)

// RequestIDStage tags each request with a fresh ULID unless one is set
func RequestIDStage() RequestStage {
	return func(req *http.Request) error {
		if req.Header.Get(headerRequestID) == "" {
			req.Header.Set(headerRequestID, ulid.Make().String())
		}
		return nil
	}
}

// UserAgentStage sets the User-Agent header when ua is not empty
func UserAgentStage(ua string) RequestStage {
	return func(req *http.Request) error {
		if ua != "" {
			req.Header.Set(headerUserAgent, ua)
		}
		return nil
	}
}

// BearerStage attaches the current credential. No credential means no header.
func BearerStage(source CredentialSource) RequestStage {
	return func(req *http.Request) error {
		if source == nil {
			return nil
		}
		token, err := source.Credential()
		if err != nil {
			return fmt.Errorf("failed to read credential: %w", err)
		}
		if token != "" {
			req.Header.Set(headerAuthorization, bearerPrefix+token)
		}
		return nil
	}
}

// sentToken returns the bearer token req carried, "" if none
func sentToken(req *http.Request) string {
	if req == nil {
		return ""
	}
	return strings.TrimPrefix(req.Header.Get(headerAuthorization), bearerPrefix)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// LoggingTransport logs every round trip at debug level
func LoggingTransport(next http.RoundTripper, logger zerolog.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)

		event := logger.Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Str("request_id", req.Header.Get(headerRequestID)).
			Dur("duration", time.Since(start))
		if err != nil {
			event.Err(err).Msg("HTTP request failed")
			return nil, err
		}
		event.Int("status", resp.StatusCode).Msg("HTTP request")
		return resp, nil
	})
}
