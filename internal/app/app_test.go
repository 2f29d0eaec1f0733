package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-facebook/internal/config"
	"github.com/dropDatabas3/hellojohn-facebook/internal/providers/facebook"
	"github.com/dropDatabas3/hellojohn-facebook/internal/store/memory"
)

const (
	graphClientID = "1001"
	graphSecret   = "s3cret"
	graphAppToken = "1001|app"
	userToken     = "EAAB-user"
)

// graphStub answers the three Graph resources used by a login.
type graphStub struct {
	mu       sync.Mutex
	meFields []string
}

func (g *graphStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		switch r.PostForm.Get("grant_type") {
		case facebook.GrantTypeClientCredentials:
			fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer"}`, graphAppToken)
		case facebook.GrantTypeExchangeToken:
			fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer","expires_in":5183944}`, "LL-"+r.PostForm.Get("fb_exchange_token"))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unsupported_grant_type"}`))
		}
	})
	mux.HandleFunc("/debug_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("input_token") != userToken {
			_, _ = w.Write([]byte(`{"data":{"is_valid":false}}`))
			return
		}
		fmt.Fprintf(w, `{"data":{"app_id":%q,"is_valid":true,"user_id":10215003870218111,"scopes":["email","public_profile"]}}`, graphClientID)
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.meFields = strings.Split(r.URL.Query().Get("fields"), ",")
		g.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"10215003870218111","first_name":"Ada","last_name":"Lovelace","email":"ada@example.com"}`))
	})
	return mux
}

func (g *graphStub) lastFields() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.meFields
}

const configTemplate = `
app:
  env: dev
security:
  roles: [ROLE_USER]
facebook:
  client_id: "%s"
  client_secret: "%s"
  graph_endpoint: "%s"
  token_endpoint: "%s/oauth/access_token"
  scopes: [email]
  authenticate_roles: [ROLE_USER]
  party_creation: true
  fields: [%s]
`

func writeConfig(t *testing.T, path, graphURL, fields string) {
	t.Helper()
	body := fmt.Sprintf(configTemplate, graphClientID, graphSecret, graphURL, graphURL, fields)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func newTestApp(t *testing.T) (*App, *config.Holder, *graphStub, func(fields string)) {
	t.Helper()
	g := &graphStub{}
	srv := httptest.NewServer(g.handler())
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	rewrite := func(fields string) { writeConfig(t, path, srv.URL, fields) }
	rewrite("first_name, last_name, email")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	holder := config.NewHolder(path, cfg)

	a, err := Build(context.Background(), holder, Options{Version: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, holder, g, rewrite
}

func postLogin(t *testing.T, h http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/facebook", strings.NewReader(`{"access_token":"`+token+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuild_LoginCreatesAccountAndProfile(t *testing.T) {
	a, _, _, _ := newTestApp(t)

	rec := postLogin(t, a.Handler, userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AUTHENTICATION_SUCCESSFUL", body["status"])
	assert.Equal(t, "10215003870218111", body["account_identifier"])
	assert.Equal(t, facebook.DefaultProviderName, body["provider"])
	assert.NotEmpty(t, body["profile_id"])

	rec = postLogin(t, a.Handler, userToken)
	require.Equal(t, http.StatusOK, rec.Code)

	accounts, profiles := a.Store.(*memory.Store).Len()
	assert.Equal(t, 1, accounts)
	assert.Equal(t, 1, profiles)
}

func TestBuild_RejectedTokenIsUnauthorized(t *testing.T) {
	a, _, _, _ := newTestApp(t)

	rec := postLogin(t, a.Handler, "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	accounts, _ := a.Store.(*memory.Store).Len()
	assert.Zero(t, accounts)
}

func TestBuild_ReloadChangesRequestedFields(t *testing.T) {
	a, holder, g, rewrite := newTestApp(t)

	rewrite("first_name, last_name, email, birthday")
	require.NoError(t, holder.Reload())

	rec := postLogin(t, a.Handler, userToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"first_name", "last_name", "email", "birthday"}, g.lastFields())
}

func TestBuild_ReadyzAndMetrics(t *testing.T) {
	a, _, _, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	_ = postLogin(t, a.Handler, userToken)

	rec = httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fbauth_authentication_attempts_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestBuild_UnknownStorageDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.Driver = "mongo"
	_, err := Build(context.Background(), config.NewHolder("", cfg), Options{})
	require.Error(t, err)
}
