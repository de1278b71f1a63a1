package api

import (
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemarkapp/pagemark-server/internal/catalog"
	"github.com/pagemarkapp/pagemark-server/internal/identity"
	"github.com/pagemarkapp/pagemark-server/internal/ratelimit"
	"github.com/pagemarkapp/pagemark-server/internal/service"
	"github.com/pagemarkapp/pagemark-server/internal/store"
	"github.com/pagemarkapp/pagemark-server/internal/store/sqlite"
)

type testServer struct {
	*Server
	store store.Store
}

// setupTestServer builds a server over a fresh SQLite store with
// registration enabled and a rate limit too generous to trip by accident.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "pagemark.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	limiter := ratelimit.New(1000, 1000)
	t.Cleanup(limiter.Stop)

	authService := service.NewAuthService(s, true, logger)
	syncService := service.NewSyncService(s, logger)

	return &testServer{
		Server: NewServer(authService, syncService, limiter, logger),
		store:  s,
	}
}

// do runs one request through the full middleware stack.
func (ts *testServer) do(t *testing.T, method, path, body string, creds ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if len(creds) == 2 {
		req.Header.Set("x-auth-user", creds[0])
		req.Header.Set("x-auth-key", creds[1])
	}

	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)
	return w
}

// registerUser creates an account directly through the endpoint.
func (ts *testServer) registerUser(t *testing.T, username, key string) {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/users/create",
		`{"username":"`+username+`","password":"`+key+`"}`)
	require.Equal(t, http.StatusCreated, resp.Code)
}

// projectBooks pushes catalog books through the projector and returns the
// derived document name of the first one.
func (ts *testServer) projectBooks(t *testing.T, books ...catalog.Book) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	projector := service.NewProjectorService(&staticCatalog{books: books}, ts.store, logger)
	_, err := projector.Project(context.Background())
	require.NoError(t, err)

	b := books[0]
	author := b.PrimaryAuthor()
	if author == "" {
		author = identity.UnknownAuthor
	}
	return identity.Resolve(b.Title, author, b.PrimaryFormat())
}

type staticCatalog struct {
	books []catalog.Book
}

func (c *staticCatalog) ListBooks(_ context.Context) ([]catalog.Book, error) {
	return c.books, nil
}

func decodeBody[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.do(t, http.MethodGet, "/healthcheck", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "OK", body["state"])
}

func TestHealthCheckNeedsNoAuth(t *testing.T) {
	ts := setupTestServer(t)

	// No credentials at all.
	resp := ts.do(t, http.MethodGet, "/healthcheck", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}
