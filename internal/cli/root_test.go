package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hireboard-dev/hireboard/internal/cli/apierror"
	"github.com/hireboard-dev/hireboard/internal/cli/app"
	"github.com/hireboard-dev/hireboard/internal/cli/auth"
	"github.com/hireboard-dev/hireboard/internal/cli/commands"
	"github.com/hireboard-dev/hireboard/internal/testbackend"
)

// testEnv runs the command tree against an in-process backend. The memory
// store outlives each run, like the keychain does between processes.
type testEnv struct {
	t       *testing.T
	backend *testbackend.Backend
	server  *httptest.Server
	store   *auth.MemoryStore
	dir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend, err := testbackend.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("HIREBOARD_API_BASE_URL", server.URL)
	t.Setenv("HIREBOARD_USERNAME", "")
	t.Setenv("HIREBOARD_PASSWORD", "")
	t.Setenv("LOG_LEVEL", "disabled")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = backend.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	_, err = backend.CreateUser("root", "secret1", true)
	require.NoError(t, err)

	return &testEnv{t: t, backend: backend, server: server, store: auth.NewMemoryStore(""), dir: dir}
}

func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()

	var out, errOut bytes.Buffer
	root := NewRoot(app.WithStore(e.store), app.WithOutput(&out, &errOut), app.WithHTTPClient(e.server.Client()))
	root.errOut = &errOut
	root.Cmd.SetOut(&out)
	root.Cmd.SetErr(&errOut)
	root.Cmd.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func (e *testEnv) login(username string) {
	e.t.Helper()
	_, _, err := e.run("login", "--username", username, "--password", "secret1")
	require.NoError(e.t, err)
}

func (e *testEnv) token() string {
	token, err := e.store.Get()
	require.NoError(e.t, err)
	return token
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("version")
	require.NoError(t, err)
	require.Equal(t, "hireboard version dev\n", out)
}

func TestProtectedCommandRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, err := env.run("jobs", "ls")
	require.ErrorIs(t, err, commands.ErrNotAuthenticated)
	require.Contains(t, stderr, "Error: not authenticated. Please run 'hireboard login' first")
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("login", "--username", "alice", "--password", "secret1")
	require.NoError(t, err)
	require.Contains(t, out, "✓ Login successful!")
	require.Contains(t, out, "User: alice (alice@example.com)")
	require.NotContains(t, out, "Role: Admin")
	require.NotEmpty(t, env.token())

	out, _, err = env.run("whoami")
	require.NoError(t, err)
	require.Contains(t, out, "alice")
	require.Contains(t, out, "Recruiter")

	out, _, err = env.run("logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")
	require.Empty(t, env.token())

	_, _, err = env.run("whoami")
	require.ErrorIs(t, err, commands.ErrNotAuthenticated)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, stderr, err := env.run("login", "--username", "alice", "--password", "wrong")
	require.ErrorIs(t, err, apierror.ErrUnauthorized)
	require.Contains(t, stderr, "Error: unauthorized, please log in again")
	require.NotContains(t, stderr, "Session expired")
	require.Empty(t, env.token())
}

func TestAdminRouteGuard(t *testing.T) {
	env := newTestEnv(t)

	env.login("alice")
	_, stderr, err := env.run("users", "ls")
	require.ErrorIs(t, err, commands.ErrAdminRequired)
	require.Contains(t, stderr, "admin access required")
	require.NotEmpty(t, env.token(), "a denied admin route keeps the session")

	env.login("root")
	out, _, err := env.run("users", "ls")
	require.NoError(t, err)
	require.Contains(t, out, "alice")
	require.Contains(t, out, "root")
}

func TestRecruitmentFlow(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")

	out, _, err := env.run("jobs", "create",
		"--position", "Go engineer",
		"--responsibilities", "Build services",
		"--requirements", "golang postgres kubernetes",
		"--tag", "golang")
	require.NoError(t, err)
	require.Contains(t, out, "Job 1 created: Go engineer")

	out, _, err = env.run("jobs", "ls")
	require.NoError(t, err)
	require.Contains(t, out, "Go engineer")

	cv := filepath.Join(env.dir, "li-lei.pdf")
	require.NoError(t, os.WriteFile(cv, []byte("golang developer with postgres experience"), 0644))

	out, _, err = env.run("resumes", "upload", cv, "--candidate", "Li Lei")
	require.NoError(t, err)
	require.Contains(t, out, "Resume 1 uploaded: Li Lei")

	out, _, err = env.run("matches", "run", "--job", "1", "--resume", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Matches on: golang, postgres")

	out, _, err = env.run("matches", "best", "--job", "1")
	require.NoError(t, err)
	require.Contains(t, out, "0.67")

	out, _, err = env.run("plans", "generate", "--job", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Plan 1 generated")

	target := filepath.Join(env.dir, "plan.pdf")
	out, _, err = env.run("plans", "export", "1", "-o", target)
	require.NoError(t, err)
	require.Contains(t, out, "exported to")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "%PDF"))

	out, _, err = env.run("plans", "create", "--job", "1", "--title", "Backlog hiring", "--candidate", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Plan 2 created: Backlog hiring")

	out, _, err = env.run("plans", "update", "2", "--strategy", "One onsite round")
	require.NoError(t, err)
	require.Contains(t, out, "Plan 2 updated")
	require.Contains(t, out, "Backlog hiring (job 1)")
	require.Contains(t, out, "One onsite round")

	out, _, err = env.run("plans", "ls")
	require.NoError(t, err)
	require.Contains(t, out, "Backlog hiring")

	doc := filepath.Join(env.dir, "platform-engineer.docx")
	require.NoError(t, os.WriteFile(doc, []byte("terraform kubernetes golang"), 0644))

	out, _, err = env.run("jobs", "parse", doc)
	require.NoError(t, err)
	require.Contains(t, out, "platform-engineer")
	require.Contains(t, out, "terraform, kubernetes, golang")

	out, _, err = env.run("jobs", "ls")
	require.NoError(t, err)
	require.NotContains(t, out, "platform-engineer", "parsing does not create a job")
}

func TestPlanCreate_MissingTitleIsNotSent(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")

	_, stderr, err := env.run("plans", "create", "--job", "1")
	require.ErrorIs(t, err, apierror.ErrRequestConstruction)
	require.Equal(t, 1, strings.Count(stderr, "Error:"))
}

func TestNotFoundIsReportedOnce(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")

	_, stderr, err := env.run("jobs", "show", "42")
	require.ErrorIs(t, err, apierror.ErrNotFound)
	require.Equal(t, 1, strings.Count(stderr, "Error:"))
	require.Contains(t, stderr, "the requested resource does not exist")
}

func TestRevokedTokenLogsOut(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")

	env.backend.RevokeAllTokens()

	_, stderr, err := env.run("jobs", "ls")
	require.True(t,
		errors.Is(err, apierror.ErrUnauthorized) || errors.Is(err, commands.ErrNotAuthenticated),
		"unexpected error: %v", err)
	require.Empty(t, env.token())
	require.Contains(t, stderr, "Session expired. Please run 'hireboard login' again.")

	_, _, err = env.run("jobs", "ls")
	require.ErrorIs(t, err, commands.ErrNotAuthenticated)
}

func TestForbiddenKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")
	token := env.token()

	env.backend.FailAuthenticated(http.StatusForbidden, "not enough privileges")

	_, stderr, err := env.run("jobs", "ls")
	require.ErrorIs(t, err, apierror.ErrForbidden)
	require.Contains(t, stderr, "you do not have permission to access this resource")
	require.NotContains(t, stderr, "Session expired")
	require.Equal(t, token, env.token())
}

func TestServerCommandSavesBackend(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("server", env.server.URL+"/")
	require.NoError(t, err)
	require.Contains(t, out, "Selected backend: "+env.server.URL)

	t.Setenv("HIREBOARD_API_BASE_URL", "http://127.0.0.1:1")
	env.login("alice")

	out, _, err = env.run("server", "--reset")
	require.NoError(t, err)
	require.Contains(t, out, "reset")
}
