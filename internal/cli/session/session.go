// Package session owns the CLI's authentication state: the bearer token, the
// logged-in flag and the lazily fetched profile of the current operator.
//
// A Session is constructed once per process and handed to the HTTP client
// and the router. Only its methods mutate it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hireboard-dev/hireboard/internal/cli/apierror"
	"github.com/hireboard-dev/hireboard/internal/cli/auth"
	"github.com/hireboard-dev/hireboard/internal/models"
)

var (
	ErrEmptyToken = errors.New("empty token")
	ErrNotBound   = errors.New("session has no profile source")
)

// ProfileSource loads the profile of the user owning the current token
type ProfileSource interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Session is the process-wide authentication record.
// Invariant: loggedIn == (token != "").
type Session struct {
	mu       sync.RWMutex
	store    auth.TokenStore
	source   ProfileSource
	logger   zerolog.Logger
	token    string
	username string
	profile  *models.User
	loggedIn bool

	// generation changes on every login, restore and logout so that a profile
	// response belonging to an earlier state is dropped.
	generation uint64
	fetches    sync.WaitGroup

	// settled is set once Restore, a login or a logout has decided the
	// in-memory state; the store is not consulted for credentials after that.
	settled bool

	cache cache
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the logger used for state transitions
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithProfileSource sets the backend used by FetchProfile
func WithProfileSource(source ProfileSource) Option {
	return func(s *Session) {
		s.source = source
	}
}

// New creates a logged-out session backed by store
func New(store auth.TokenStore, opts ...Option) *Session {
	s := &Session{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind sets the profile source after construction. The HTTP client needs the
// session and the session needs the client, so one side is wired late.
func (s *Session) Bind(source ProfileSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = source
}

// LoginSucceeded records a fresh token and schedules a profile fetch without
// waiting for it.
func (s *Session) LoginSucceeded(ctx context.Context, token, username string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if err := s.store.Set(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.username = username
	s.profile = nil
	s.loggedIn = true
	s.settled = true
	s.generation++
	s.mu.Unlock()

	s.logger.Debug().Str("username", username).Msg("Session logged in")

	s.scheduleFetch(ctx)
	return nil
}

// Restore loads a token persisted by an earlier run into memory and schedules
// one profile fetch. It reports whether a token is loaded. Once a token is
// loaded, or a login or logout happened, calling it again does nothing.
func (s *Session) Restore(ctx context.Context) bool {
	s.mu.Lock()
	if s.loggedIn || s.settled {
		loggedIn := s.loggedIn
		s.mu.Unlock()
		return loggedIn
	}

	token, err := s.store.Get()
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn().Err(err).Msg("Failed to read stored token")
		return false
	}
	s.settled = true
	if token == "" {
		s.mu.Unlock()
		return false
	}

	s.token = token
	s.loggedIn = true
	s.generation++
	s.mu.Unlock()

	s.logger.Debug().Msg("Session restored from token store")

	s.scheduleFetch(ctx)
	return true
}

// IsAuthenticated reports the in-memory logged-in flag. It has no side
// effects; call Restore first after process start.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Credential returns the token to attach to outbound requests. Before Restore,
// a login or a logout has run it falls back to the token store. A logged-out
// session attaches nothing, even if the store could not be cleared.
func (s *Session) Credential() (string, error) {
	s.mu.RLock()
	token, loaded, settled := s.token, s.loggedIn, s.settled
	s.mu.RUnlock()

	if loaded || settled {
		return token, nil
	}
	return s.store.Get()
}

// Token returns the in-memory token, "" when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns a copy of the current profile, or nil if none is loaded
func (s *Session) Profile() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// IsAdmin reports whether a loaded profile carries the admin flag. An absent
// profile is not admin.
func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil && s.profile.IsAdmin
}

// Username returns the profile username, or the name given at login
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile != nil && s.profile.Username != "" {
		return s.profile.Username
	}
	return s.username
}

// FetchProfile makes one attempt to load the current user. A 401 logs the
// session out. Other failures leave state untouched.
func (s *Session) FetchProfile(ctx context.Context) (*models.User, error) {
	s.mu.RLock()
	source, generation := s.source, s.generation
	s.mu.RUnlock()

	if source == nil {
		return nil, ErrNotBound
	}

	profile, err := source.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, apierror.ErrUnauthorized) {
			if _, logoutErr := s.logoutGeneration(generation); logoutErr != nil {
				s.logger.Warn().Err(logoutErr).Msg("Failed to clear session after 401")
			}
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	s.mu.Lock()
	if s.generation != generation || !s.loggedIn {
		s.mu.Unlock()
		s.logger.Debug().Msg("Discarding profile for a previous session")
		return profile, nil
	}
	s.profile = profile
	s.mu.Unlock()

	s.logger.Debug().Uint("user_id", profile.ID).Bool("is_admin", profile.IsAdmin).Msg("Profile loaded")
	return profile, nil
}

// Logout clears the token everywhere and forgets the profile. Calling it on a
// logged-out session is a no-op apart from re-clearing the store.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.clearLocked()
	s.mu.Unlock()
	return s.clearStore()
}

// Invalidate logs out after the backend rejected token. A rejection of a token
// the session no longer holds belongs to an earlier login and is ignored. It
// reports whether the session was logged out.
func (s *Session) Invalidate(token string) (bool, error) {
	s.mu.Lock()
	if s.loggedIn && s.token != token {
		s.mu.Unlock()
		s.logger.Debug().Msg("Ignoring 401 for a previous token")
		return false, nil
	}
	s.clearLocked()
	s.mu.Unlock()
	return true, s.clearStore()
}

// logoutGeneration logs out only if no login, restore or logout happened
// since generation was read
func (s *Session) logoutGeneration(generation uint64) (bool, error) {
	s.mu.Lock()
	if s.generation != generation {
		s.mu.Unlock()
		s.logger.Debug().Msg("Ignoring 401 for a previous session")
		return false, nil
	}
	s.clearLocked()
	s.mu.Unlock()
	return true, s.clearStore()
}

func (s *Session) clearLocked() {
	if s.loggedIn {
		s.logger.Debug().Msg("Session logged out")
	}
	s.token = ""
	s.username = ""
	s.profile = nil
	s.loggedIn = false
	s.settled = true
	s.generation++
	s.cache = cache{}
}

func (s *Session) clearStore() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// Wait blocks until every scheduled profile fetch has finished
func (s *Session) Wait() {
	s.fetches.Wait()
}

func (s *Session) scheduleFetch(ctx context.Context) {
	s.mu.RLock()
	bound := s.source != nil
	s.mu.RUnlock()
	if !bound {
		return
	}

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		if _, err := s.FetchProfile(ctx); err != nil {
			s.logger.Debug().Err(err).Msg("Background profile fetch failed")
		}
	}()
}
