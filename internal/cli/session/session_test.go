package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hireboard-dev/hireboard/internal/cli/apierror"
	"github.com/hireboard-dev/hireboard/internal/cli/auth"
	"github.com/hireboard-dev/hireboard/internal/models"
)

// mockProfileSource returns a fixed profile or error and counts calls
type mockProfileSource struct {
	mu      sync.Mutex
	profile *models.User
	err     error
	calls   atomic.Int32
	release chan struct{} // when set, calls block until closed
}

func (m *mockProfileSource) CurrentUser(ctx context.Context) (*models.User, error) {
	m.calls.Add(1)
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p := *m.profile
	return &p, nil
}

func newProfile(id uint, admin bool) *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: id},
		Username:  "operator",
		IsAdmin:   admin,
	}
}

// failingStore simulates a keychain that cannot be read or written
type failingStore struct{}

func (failingStore) Get() (string, error) { return "", errors.New("keychain locked") }
func (failingStore) Set(string) error     { return errors.New("keychain locked") }
func (failingStore) Clear() error         { return errors.New("keychain locked") }

func TestLoginThenLogout(t *testing.T) {
	store := auth.NewMemoryStore("")
	source := &mockProfileSource{profile: newProfile(1, false)}
	s := New(store, WithProfileSource(source))

	require.False(t, s.IsAuthenticated())

	require.NoError(t, s.LoginSucceeded(context.Background(), "abc", "alice"))
	require.True(t, s.IsAuthenticated(), "authenticated immediately after login")

	stored, _ := store.Get()
	require.Equal(t, "abc", stored)

	require.NoError(t, s.Logout())
	require.False(t, s.IsAuthenticated(), "not authenticated immediately after logout")

	s.Wait()
	require.False(t, s.IsAuthenticated(), "late profile fetch must not log back in")
	require.Nil(t, s.Profile())

	stored, _ = store.Get()
	require.Empty(t, stored)
}

func TestLoginSucceeded_SchedulesProfileFetch(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(1, false)}
	s := New(auth.NewMemoryStore(""), WithProfileSource(source))

	require.NoError(t, s.LoginSucceeded(context.Background(), "abc", "alice"))
	s.Wait()

	require.Equal(t, int32(1), source.calls.Load())
	require.NotNil(t, s.Profile())
	require.Equal(t, uint(1), s.Profile().ID)
	require.False(t, s.IsAdmin())
}

func TestLoginSucceeded_DoesNotBlockOnFetch(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(1, true), release: make(chan struct{})}
	s := New(auth.NewMemoryStore(""), WithProfileSource(source))

	require.NoError(t, s.LoginSucceeded(context.Background(), "abc", "alice"))

	// The fetch is still parked; login already returned
	require.True(t, s.IsAuthenticated())
	require.Nil(t, s.Profile())
	require.Equal(t, "alice", s.Username())

	close(source.release)
	s.Wait()
	require.True(t, s.IsAdmin())
	require.Equal(t, "operator", s.Username())
}

func TestLoginSucceeded_EmptyToken(t *testing.T) {
	s := New(auth.NewMemoryStore(""))

	err := s.LoginSucceeded(context.Background(), "", "alice")
	require.ErrorIs(t, err, ErrEmptyToken)
	require.False(t, s.IsAuthenticated())
}

func TestLoginSucceeded_StoreFailureLeavesStateUntouched(t *testing.T) {
	s := New(failingStore{})

	err := s.LoginSucceeded(context.Background(), "abc", "alice")
	require.Error(t, err)
	require.Contains(t, err.Error(), "keychain locked")
	require.False(t, s.IsAuthenticated())
}

func TestRestore_TokenOnlyInStore(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(7, false)}
	s := New(auth.NewMemoryStore("persisted"), WithProfileSource(source))

	require.False(t, s.IsAuthenticated(), "nothing loaded before restore")

	require.True(t, s.Restore(context.Background()))
	require.True(t, s.IsAuthenticated())

	// Idempotent: the token is loaded, no second fetch
	require.True(t, s.Restore(context.Background()))
	require.True(t, s.Restore(context.Background()))

	s.Wait()
	require.Equal(t, int32(1), source.calls.Load(), "exactly one profile fetch")

	token, err := s.Credential()
	require.NoError(t, err)
	require.Equal(t, "persisted", token)
}

func TestRestore_NoToken(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(7, false)}
	s := New(auth.NewMemoryStore(""), WithProfileSource(source))

	require.False(t, s.Restore(context.Background()))
	require.False(t, s.IsAuthenticated())

	s.Wait()
	require.Zero(t, source.calls.Load())
}

func TestRestore_StoreReadFailure(t *testing.T) {
	s := New(failingStore{})

	require.False(t, s.Restore(context.Background()))
	require.False(t, s.IsAuthenticated())
}

func TestIsAuthenticated_IsPure(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(7, false)}
	s := New(auth.NewMemoryStore("persisted"), WithProfileSource(source))

	require.False(t, s.IsAuthenticated())
	require.False(t, s.IsAuthenticated())
	s.Wait()
	require.Zero(t, source.calls.Load())
}

func TestCredential_FallsBackToStoreBeforeRestore(t *testing.T) {
	s := New(auth.NewMemoryStore("persisted"))

	token, err := s.Credential()
	require.NoError(t, err)
	require.Equal(t, "persisted", token)

	_, err = New(failingStore{}).Credential()
	require.Error(t, err)
}

func TestFetchProfile_UnauthorizedLogsOut(t *testing.T) {
	store := auth.NewMemoryStore("")
	source := &mockProfileSource{profile: newProfile(1, false)}
	s := New(store, WithProfileSource(source))

	require.NoError(t, s.LoginSucceeded(context.Background(), "stale", "alice"))
	s.Wait()

	source.mu.Lock()
	source.err = apierror.FromStatus(http.StatusUnauthorized, []byte(`{"detail":"token expired"}`))
	source.mu.Unlock()

	_, err := s.FetchProfile(context.Background())
	require.ErrorIs(t, err, apierror.ErrUnauthorized)
	require.False(t, s.IsAuthenticated())
	require.Nil(t, s.Profile())

	stored, _ := store.Get()
	require.Empty(t, stored)
}

func TestFetchProfile_OtherFailureKeepsState(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(1, true)}
	s := New(auth.NewMemoryStore(""), WithProfileSource(source))

	require.NoError(t, s.LoginSucceeded(context.Background(), "abc", "alice"))
	s.Wait()
	require.True(t, s.IsAdmin())

	for _, status := range []int{http.StatusForbidden, http.StatusInternalServerError} {
		source.mu.Lock()
		source.err = apierror.FromStatus(status, nil)
		source.mu.Unlock()

		_, err := s.FetchProfile(context.Background())
		require.Error(t, err)
		require.True(t, s.IsAuthenticated())
		require.True(t, s.IsAdmin(), "prior profile kept")
	}

	source.mu.Lock()
	source.err = apierror.Network(context.DeadlineExceeded)
	source.mu.Unlock()

	_, err := s.FetchProfile(context.Background())
	require.ErrorIs(t, err, apierror.ErrNetwork)
	require.True(t, s.IsAuthenticated())
	require.Equal(t, int32(4), source.calls.Load(), "one attempt per call, no retries")
}

func TestFetchProfile_Unbound(t *testing.T) {
	s := New(auth.NewMemoryStore(""))

	_, err := s.FetchProfile(context.Background())
	require.ErrorIs(t, err, ErrNotBound)

	// Login without a source schedules nothing and does not panic
	require.NoError(t, s.LoginSucceeded(context.Background(), "abc", "alice"))
	s.Wait()
	require.Nil(t, s.Profile())
}

func TestFetchProfile_StaleResponseAfterRelogin(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(1, true), release: make(chan struct{})}
	s := New(auth.NewMemoryStore(""), WithProfileSource(source))

	require.NoError(t, s.LoginSucceeded(context.Background(), "first", "alice"))
	require.NoError(t, s.Logout())

	close(source.release)
	s.Wait()

	require.False(t, s.IsAuthenticated())
	require.Nil(t, s.Profile(), "response for the first login is discarded")
}

func TestBind(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(3, false)}
	s := New(auth.NewMemoryStore("persisted"))
	s.Bind(source)

	require.True(t, s.Restore(context.Background()))
	s.Wait()
	require.Equal(t, uint(3), s.Profile().ID)
}

func TestLogout_Idempotent(t *testing.T) {
	store := auth.NewMemoryStore("")
	s := New(store, WithProfileSource(&mockProfileSource{profile: newProfile(1, true)}))

	require.NoError(t, s.LoginSucceeded(context.Background(), "abc", "alice"))
	s.Wait()
	s.SetJobs([]models.Job{{PositionName: "Go engineer"}})

	require.NoError(t, s.Logout())
	once := snapshot(s, store)

	require.NoError(t, s.Logout())
	twice := snapshot(s, store)

	require.Equal(t, once, twice)
	require.False(t, twice.loggedIn)
	require.Empty(t, twice.stored)
	require.Nil(t, s.Jobs())
}

func TestLogout_StoreFailureStillClearsMemory(t *testing.T) {
	s := New(failingStore{})
	err := s.Logout()
	require.Error(t, err)
	require.False(t, s.IsAuthenticated())

	token, err := s.Credential()
	require.NoError(t, err)
	require.Empty(t, token)
}

// stickyStore keeps its token because Clear always fails
type stickyStore struct {
	*auth.MemoryStore
}

func (stickyStore) Clear() error { return errors.New("keychain locked") }

func TestLogout_UnclearedStoreIsNotReused(t *testing.T) {
	store := stickyStore{auth.NewMemoryStore("")}
	s := New(store)

	require.NoError(t, s.LoginSucceeded(context.Background(), "abc", "alice"))
	require.Error(t, s.Logout())

	stored, _ := store.Get()
	require.Equal(t, "abc", stored, "the keychain still holds the token")

	token, err := s.Credential()
	require.NoError(t, err)
	require.Empty(t, token, "a logged-out session attaches no credential")

	require.False(t, s.Restore(context.Background()))
	require.False(t, s.IsAuthenticated())
}

// gatedSource blocks its first call until release is closed and rejects it
// with a 401; later calls succeed
type gatedSource struct {
	calls   atomic.Int32
	release chan struct{}
}

func (g *gatedSource) CurrentUser(ctx context.Context) (*models.User, error) {
	if g.calls.Add(1) == 1 {
		<-g.release
		return nil, apierror.FromStatus(http.StatusUnauthorized, []byte(`{"detail":"token expired"}`))
	}
	return newProfile(5, false), nil
}

func TestFetchProfile_UnauthorizedAfterRelogin(t *testing.T) {
	store := auth.NewMemoryStore("expired")
	source := &gatedSource{release: make(chan struct{})}
	s := New(store, WithProfileSource(source))

	require.True(t, s.Restore(context.Background()))
	require.Eventually(t, func() bool { return source.calls.Load() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.LoginSucceeded(context.Background(), "fresh", "alice"))
	close(source.release)
	s.Wait()

	require.True(t, s.IsAuthenticated(), "401 for the restored token is discarded")
	require.Equal(t, "fresh", s.Token())
	require.Equal(t, uint(5), s.Profile().ID)

	stored, _ := store.Get()
	require.Equal(t, "fresh", stored)
}

func TestInvalidate(t *testing.T) {
	store := auth.NewMemoryStore("")
	s := New(store)
	require.NoError(t, s.LoginSucceeded(context.Background(), "fresh", "alice"))

	dropped, err := s.Invalidate("old")
	require.NoError(t, err)
	require.False(t, dropped)
	require.True(t, s.IsAuthenticated())

	dropped, err = s.Invalidate("fresh")
	require.NoError(t, err)
	require.True(t, dropped)
	require.False(t, s.IsAuthenticated())

	stored, _ := store.Get()
	require.Empty(t, stored)

	// Logged out already: a 401 still clears the store
	dropped, err = s.Invalidate("")
	require.NoError(t, err)
	require.True(t, dropped)
}

func TestCaches_LastWriteWins(t *testing.T) {
	s := New(auth.NewMemoryStore(""))

	s.SetJobs([]models.Job{{PositionName: "first"}})
	s.SetJobs([]models.Job{{PositionName: "second"}, {PositionName: "third"}})
	require.Len(t, s.Jobs(), 2)

	job := &models.Job{PositionName: "detail"}
	s.SetCurrentJob(job)
	require.Same(t, job, s.CurrentJob())

	s.SetResumes([]models.Resume{{CandidateName: "Li"}})
	s.SetCurrentResume(&models.Resume{CandidateName: "Wang"})
	require.Equal(t, "Li", s.Resumes()[0].CandidateName)
	require.Equal(t, "Wang", s.CurrentResume().CandidateName)

	s.SetMatches([]models.Match{{MatchScore: 0.9}})
	s.SetCurrentMatch(&models.Match{MatchScore: 0.5})
	require.InDelta(t, 0.9, s.Matches()[0].MatchScore, 1e-9)
	require.InDelta(t, 0.5, s.CurrentMatch().MatchScore, 1e-9)

	s.SetPlans([]models.Plan{{Title: "Q3 hiring"}})
	s.SetCurrentPlan(&models.Plan{Title: "Q4 hiring"})
	require.Equal(t, "Q3 hiring", s.Plans()[0].Title)
	require.Equal(t, "Q4 hiring", s.CurrentPlan().Title)
}

func TestConcurrentFetches_LastAppliedWins(t *testing.T) {
	source := &mockProfileSource{profile: newProfile(1, false)}
	s := New(auth.NewMemoryStore("persisted"), WithProfileSource(source))
	require.True(t, s.Restore(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.FetchProfile(context.Background())
		}()
	}
	wg.Wait()
	s.Wait()

	require.NotNil(t, s.Profile())
	require.Equal(t, uint(1), s.Profile().ID)
}

type sessionSnapshot struct {
	loggedIn bool
	stored   string
	profile  *models.User
	username string
}

func snapshot(s *Session, store auth.TokenStore) sessionSnapshot {
	stored, _ := store.Get()
	return sessionSnapshot{
		loggedIn: s.IsAuthenticated(),
		stored:   stored,
		profile:  s.Profile(),
		username: s.Username(),
	}
}
