package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobport/jobport/internal/web"
	"github.com/jobport/jobport/pkg/authflow"
	"github.com/jobport/jobport/pkg/backendapi"
	"github.com/jobport/jobport/pkg/jobs"
	"github.com/jobport/jobport/pkg/kvstore"
	"github.com/jobport/jobport/pkg/session"
)

// fakeBackend is a programmable authflow.Backend.
type fakeBackend struct {
	loginURL    string
	loginErr    error
	exchange    *backendapi.ExchangeResult
	exchangeErr error
	gotRole     string
	gotCode     string
}

func (f *fakeBackend) LoginURL(ctx context.Context, role string) (string, error) {
	f.gotRole = role
	return f.loginURL, f.loginErr
}

func (f *fakeBackend) ExchangeCode(ctx context.Context, code, role string) (*backendapi.ExchangeResult, error) {
	f.gotCode = code
	f.gotRole = role
	return f.exchange, f.exchangeErr
}

type fixture struct {
	backend  *fakeBackend
	sessions *session.State
	store    *kvstore.MemoryStore
	srv      *httptest.Server
	client   *http.Client
}

func newFixture(t *testing.T, backend *fakeBackend) *fixture {
	t.Helper()

	store := kvstore.NewMemoryStore()
	sessions := session.New(context.Background(), store)
	flow := authflow.New(backend, sessions, store)
	handler := web.New(flow, sessions, jobs.MustLoad())

	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &fixture{backend: backend, sessions: sessions, store: store, srv: srv, client: client}
}

func (f *fixture) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := f.client.Get(f.srv.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHome(t *testing.T) {
	t.Parallel()

	t.Run("lists postings for anonymous visitors", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{})
		resp := f.get(t, "/")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := readBody(t, resp)
		assert.Contains(t, body, "Backend Developer")
		assert.Contains(t, body, "Sign in as student")
		assert.NotContains(t, body, "Sign out")
	})

	t.Run("shows profile when authenticated", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{})
		ctx := context.Background()
		require.NoError(t, f.sessions.SetTokens(ctx, session.TokenPair{Access: "T1"}))
		require.NoError(t, f.sessions.SetUser(ctx, session.User{
			FirstName: "Ada", LastName: "Lovelace",
			Role: session.RoleStudent, Status: session.StatusApproved,
		}))

		body := readBody(t, f.get(t, "/"))
		assert.Contains(t, body, "Ada Lovelace")
		assert.Contains(t, body, "Sign out")
		assert.NotContains(t, body, "awaiting approval")
	})

	t.Run("unknown paths redirect to front page", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{})
		resp := f.get(t, "/no/such/page")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("redirects to provider and persists role", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{loginURL: "https://idp.example/auth"})
		resp := f.get(t, "/login?role=company")

		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://idp.example/auth", resp.Header.Get("Location"))
		assert.Equal(t, "company", f.backend.gotRole)

		pending, err := f.store.Get(context.Background(), "auth_pending_role")
		require.NoError(t, err)
		assert.Equal(t, "company", pending)
	})

	t.Run("failure redirects home with recorded error", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{loginErr: &backendapi.Error{StatusCode: 500, Detail: "provider unavailable"}})
		resp := f.get(t, "/login?role=student")

		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))
		assert.Equal(t, "provider unavailable", f.sessions.Err())

		body := readBody(t, f.get(t, "/"))
		assert.Contains(t, body, "provider unavailable")
	})
}

func TestCallback(t *testing.T) {
	t.Parallel()

	t.Run("successful exchange redirects home authenticated", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{exchange: &backendapi.ExchangeResult{
			Tokens: session.TokenPair{Access: "T1"},
			User:   session.User{ID: "7", Role: session.RoleStudent, Status: session.StatusPending},
		}})
		require.NoError(t, f.store.Set(context.Background(), "auth_pending_role", "student"))

		resp := f.get(t, "/auth/callback?code="+url.QueryEscape("abc123"))
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get("Location"))

		assert.Equal(t, "abc123", f.backend.gotCode)
		assert.Equal(t, "student", f.backend.gotRole)
		assert.True(t, f.sessions.IsAuthenticated())
	})

	t.Run("failed exchange renders error page", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{exchangeErr: &backendapi.Error{StatusCode: 400, Detail: "invalid code"}})

		resp := f.get(t, "/auth/callback?code=bad")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := readBody(t, resp)
		assert.Contains(t, body, "Sign-in failed")
		assert.Contains(t, body, "invalid code")
		assert.False(t, f.sessions.IsAuthenticated())
	})

	t.Run("missing code renders error page", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, &fakeBackend{})
		resp := f.get(t, "/auth/callback")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), "Sign-in failed")
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeBackend{})
	ctx := context.Background()
	require.NoError(t, f.sessions.SetTokens(ctx, session.TokenPair{Access: "T1"}))
	require.NoError(t, f.sessions.SetUser(ctx, session.User{ID: "7"}))

	resp, err := f.client.Post(f.srv.URL+"/logout", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.False(t, f.sessions.IsAuthenticated())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &fakeBackend{})
	resp := f.get(t, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"status":"ok"`)
}
