package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quolldev/grantd/internal/issuer/cache"
	"github.com/quolldev/grantd/internal/issuer/notify"
	"github.com/quolldev/grantd/internal/issuer/service"
	"github.com/quolldev/grantd/internal/issuer/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	dispatcher := notify.NewDispatcher(notify.LoggingSink{Logger: slog.Default()}, slog.Default(), 16)
	t.Cleanup(dispatcher.Close)

	registry := service.NewClientRegistry(st.Clients())

	router := NewRouter("test", st, slog.Default())
	router.IssueService = &service.IssueService{
		Store:           st,
		Registry:        registry,
		Codes:           cache.Noop{},
		Issuer:          service.RandomCodeIssuer{},
		Dispatcher:      dispatcher,
		DefaultValidity: 10 * time.Minute,
	}
	router.ClientService = &service.ClientService{Store: st, Registry: registry}
	router.ApplyRoutes()

	return router
}

func doJSON(t *testing.T, router *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createClient(t *testing.T, router *Router, confidential bool) CreateClientResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/v1/clients", CreateClientRequest{
		Name:         "web-app",
		Confidential: confidential,
		RedirectURIs: []string{"https://app.example/callback"},
		Scopes:       []string{"profile:read"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp CreateClientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.ClientID)
	return resp
}

func TestIssueEndpoint(t *testing.T) {
	router := newTestRouter(t)
	client := createClient(t, router, false)

	t.Run("issues a code", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/issue", IssueRequest{
			ClientID:       client.ClientID,
			RedirectURI:    "https://app.example/callback",
			Scope:          "profile:read",
			UserID:         "user-1",
			Username:       "alice",
			SessionDataKey: "sdk-1",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		var resp IssueResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Code)
		require.NotEmpty(t, resp.CodeID)
		require.Equal(t, int64(600), resp.ExpiresIn)
		require.Equal(t, "sdk-1", resp.SessionDataKey)
	})

	t.Run("validity override shortens expiry", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/issue", IssueRequest{
			ClientID:        client.ClientID,
			RedirectURI:     "https://app.example/callback",
			UserID:          "user-1",
			ValiditySeconds: 60,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp IssueResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, int64(60), resp.ExpiresIn)
	})

	t.Run("unknown client", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/issue", IssueRequest{
			ClientID:    "ghost",
			RedirectURI: "https://app.example/callback",
			UserID:      "user-1",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_client")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/issue", IssueRequest{
			ClientID: client.ClientID,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid_request")
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/issue", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClientsEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("confidential client gets a secret once", func(t *testing.T) {
		resp := createClient(t, router, true)
		require.NotEmpty(t, resp.ClientSecret)
	})

	t.Run("public client gets no secret", func(t *testing.T) {
		resp := createClient(t, router, false)
		require.Empty(t, resp.ClientSecret)
	})

	t.Run("list reflects registrations", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/v1/clients", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ListClientsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Clients, 2)
	})

	t.Run("delete removes a client", func(t *testing.T) {
		created := createClient(t, router, false)

		rec := doJSON(t, router, http.MethodDelete, "/v1/clients/"+created.ClientID, nil)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, router, http.MethodDelete, "/v1/clients/"+created.ClientID, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodPost, "/v1/clients", CreateClientRequest{
			RedirectURIs: []string{"https://app.example/callback"},
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	t.Run("livez", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/livez", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "ok", resp.Status)
		require.Equal(t, "test", resp.Version)
	})

	t.Run("readyz with healthy store", func(t *testing.T) {
		rec := doJSON(t, router, http.MethodGet, "/readyz", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "ok", resp.Status)
		require.NotNil(t, resp.Checks)
		require.Equal(t, "ok", resp.Checks.Database)
	})
}
