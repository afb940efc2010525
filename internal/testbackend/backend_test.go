package testbackend

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hireboard-dev/hireboard/internal/models"
)

func newServer(t *testing.T, opts ...Option) (*Backend, *httptest.Server) {
	t.Helper()

	b, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

func do(t *testing.T, method, target, token, body string) (*http.Response, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestLogin(t *testing.T) {
	b, srv := newServer(t)
	_, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)

	resp, err := http.PostForm(srv.URL+"/auth/login", url.Values{"username": {"alice"}, "password": {"secret1"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token models.Token
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&token))
	require.NotEmpty(t, token.AccessToken)
	require.Equal(t, "bearer", token.TokenType)

	claims, err := b.issuer.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	require.False(t, claims.IsAdmin)
}

func TestLogin_WrongPassword(t *testing.T) {
	b, srv := newServer(t)
	_, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)

	resp, err := http.PostForm(srv.URL+"/auth/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCurrentUser(t *testing.T) {
	b, srv := newServer(t)
	user, err := b.CreateUser("admin", "secret1", true)
	require.NoError(t, err)
	token, err := b.IssueToken(user)
	require.NoError(t, err)

	resp, body := do(t, http.MethodGet, srv.URL+"/auth/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "admin", body["username"])
	require.Equal(t, true, body["is_superuser"])
	require.NotContains(t, body, "hashed_password")
}

func TestUnauthorizedDetails(t *testing.T) {
	b, srv := newServer(t, WithTokenTTL(-time.Minute))
	user, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	expired, err := b.IssueToken(user)
	require.NoError(t, err)

	resp, body := do(t, http.MethodGet, srv.URL+"/jobs", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Not authenticated", body["detail"])

	resp, body = do(t, http.MethodGet, srv.URL+"/jobs", expired, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "token expired", body["detail"])
}

func TestRevokeAllTokens(t *testing.T) {
	b, srv := newServer(t)
	user, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	token, err := b.IssueToken(user)
	require.NoError(t, err)

	resp, _ := do(t, http.MethodGet, srv.URL+"/auth/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b.RevokeAllTokens()

	resp, body := do(t, http.MethodGet, srv.URL+"/auth/me", token, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Could not validate credentials", body["detail"])
}

func TestAdminOnly(t *testing.T) {
	b, srv := newServer(t)
	user, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	token, err := b.IssueToken(user)
	require.NoError(t, err)

	resp, _ := do(t, http.MethodGet, srv.URL+"/auth/users", token, "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestJobLifecycle(t *testing.T) {
	b, srv := newServer(t)
	user, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	token, err := b.IssueToken(user)
	require.NoError(t, err)

	resp, body := do(t, http.MethodPost, srv.URL+"/jobs", token,
		`{"position_name":"Go engineer","responsibilities":"build services","requirements":"go postgres","tags":["go"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Go engineer", body["position_name"])

	resp, body = do(t, http.MethodPost, srv.URL+"/jobs", token, `{"department":"R&D"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.IsType(t, []any{}, body["detail"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/jobs/1", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/jobs/1", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/jobs/1", token, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Job not found", body["detail"])
}

func TestPlanCreateAndUpdate(t *testing.T) {
	b, srv := newServer(t)
	user, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	token, err := b.IssueToken(user)
	require.NoError(t, err)

	resp, _ := do(t, http.MethodPost, srv.URL+"/plans", token, `{"title":"Q3 hiring","job_id":1}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/jobs", token,
		`{"position_name":"Go engineer","responsibilities":"build services","requirements":"go postgres"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodPost, srv.URL+"/plans", token, `{"job_id":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	require.IsType(t, []any{}, body["detail"])

	resp, body = do(t, http.MethodPost, srv.URL+"/plans", token,
		`{"title":"Q3 hiring","job_id":1,"strategy":"two rounds","candidate_ids":[4,5]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Q3 hiring", body["title"])
	require.Equal(t, []any{4.0, 5.0}, body["candidate_ids"])

	resp, body = do(t, http.MethodPut, srv.URL+"/plans/1", token, `{"description":"backend team"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Q3 hiring", body["title"], "unset fields are kept")
	require.Equal(t, "backend team", body["description"])
	require.Equal(t, "two rounds", body["strategy"])

	resp, _ = do(t, http.MethodPut, srv.URL+"/plans/1", token, `{"job_id":9}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, srv.URL+"/plans/2", token, `{"title":"x"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseJobDocument(t *testing.T) {
	b, srv := newServer(t)
	user, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	token, err := b.IssueToken(user)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "backend-engineer.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("Golang services, postgres and kubernetes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/jobs/parse", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result models.JobParseResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.Equal(t, "backend-engineer", result.PositionName)
	require.Equal(t, []string{"golang", "services", "postgres", "and", "kubernetes"}, result.Tags)

	var count int64
	require.NoError(t, b.DB().Model(&models.Job{}).Count(&count).Error)
	require.Zero(t, count, "parsing saves nothing")
}

func TestFailAuthenticated(t *testing.T) {
	b, srv := newServer(t)
	user, err := b.CreateUser("alice", "secret1", false)
	require.NoError(t, err)
	token, err := b.IssueToken(user)
	require.NoError(t, err)

	b.FailAuthenticated(http.StatusInternalServerError, "database is down")
	resp, body := do(t, http.MethodGet, srv.URL+"/jobs", token, "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "database is down", body["detail"])

	b.FailAuthenticated(0, "")
	resp, _ = do(t, http.MethodGet, srv.URL+"/auth/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestScore(t *testing.T) {
	s, shared := score("go postgres kubernetes", "Senior Go developer, Postgres and Redis")
	require.InDelta(t, 0.5, s, 1e-9)
	require.Equal(t, []string{"postgres"}, shared, "two-letter words are ignored")

	s, _ = score("", "anything")
	require.Zero(t, s)
}

func TestCORSPreflight(t *testing.T) {
	_, srv := newServer(t, WithCORSOrigins("http://hr.example.com"))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/jobs", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://hr.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://hr.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	_, srv := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "healthy", body["status"])
}
