package facebook

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

const (
	testClientID = "123"
	testSecret   = "app-secret"
	testAppToken = "123|app-token"
	longLivedPfx = "LL-"
)

// fakeGraph emulates the token endpoint, debug_token and /me.
type fakeGraph struct {
	mu sync.Mutex

	// debugData maps an input_token to the raw JSON of the data object.
	debugData map[string]string
	// me maps a user access token to the raw /me body.
	me map[string]string

	debugStatus  int
	exchangeFail bool

	// appTokenGate, when set before the first request, holds client_credentials
	// responses until it is closed. appTokenWaiting counts requests that reached it.
	appTokenGate    chan struct{}
	appTokenWaiting atomic.Int32

	appTokenCalls int
	debugCalls    int
	exchangeCalls int
	meCalls       int
	lastMeQuery   string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{debugData: map[string]string{}, me: map[string]string{}}
}

func (f *fakeGraph) addUser(accessToken, userID string, scopes []string, me map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sc, _ := json.Marshal(scopes)
	f.debugData[accessToken] = fmt.Sprintf(`{"app_id":%q,"type":"USER","is_valid":true,"user_id":%s,"scopes":%s,"expires_at":1893456000}`,
		testClientID, userID, sc)
	if me != nil {
		b, _ := json.Marshal(me)
		f.me[accessToken] = string(b)
	}
}

func (f *fakeGraph) calls() (app, debug, exchange, me int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appTokenCalls, f.debugCalls, f.exchangeCalls, f.meCalls
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeGraph) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, `{"error":"invalid_request"}`)
			return
		}
		if r.PostForm.Get("client_id") != testClientID || r.PostForm.Get("client_secret") != testSecret {
			writeJSON(w, http.StatusUnauthorized, `{"error":"invalid_client"}`)
			return
		}
		if r.PostForm.Get("grant_type") == GrantTypeClientCredentials && f.appTokenGate != nil {
			f.appTokenWaiting.Add(1)
			<-f.appTokenGate
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.PostForm.Get("grant_type") {
		case GrantTypeClientCredentials:
			f.appTokenCalls++
			writeJSON(w, http.StatusOK, fmt.Sprintf(`{"access_token":%q,"token_type":"bearer"}`, testAppToken))
		case GrantTypeExchangeToken:
			f.exchangeCalls++
			if f.exchangeFail {
				writeJSON(w, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Error validating access token"}`)
				return
			}
			writeJSON(w, http.StatusOK, fmt.Sprintf(`{"access_token":%q,"token_type":"bearer","expires_in":5183944}`,
				longLivedPfx+r.PostForm.Get("fb_exchange_token")))
		default:
			writeJSON(w, http.StatusBadRequest, `{"error":"unsupported_grant_type"}`)
		}
	})

	mux.HandleFunc("/debug_token", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f.mu.Lock()
		defer f.mu.Unlock()
		f.debugCalls++
		if f.debugStatus != 0 {
			writeJSON(w, f.debugStatus, `{"error":{"message":"unavailable","code":2}}`)
			return
		}
		if q.Get("access_token") != testAppToken || q.Get("appsecret_proof") != AppSecretProof(testSecret, testAppToken) {
			writeJSON(w, http.StatusBadRequest, `{"error":{"message":"invalid appsecret_proof","code":100}}`)
			return
		}
		data, ok := f.debugData[q.Get("input_token")]
		if !ok {
			data = `{"is_valid":false,"error":{"code":190,"message":"Invalid OAuth access token."}}`
		}
		writeJSON(w, http.StatusOK, `{"data":`+data+`}`)
	})

	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		token := q.Get("access_token")
		f.mu.Lock()
		defer f.mu.Unlock()
		f.meCalls++
		f.lastMeQuery = r.URL.RawQuery
		body, ok := f.me[token]
		if !ok || q.Get("appsecret_proof") != AppSecretProof(testSecret, token) {
			writeJSON(w, http.StatusBadRequest, `{"error":{"message":"Invalid OAuth access token.","code":190}}`)
			return
		}
		writeJSON(w, http.StatusOK, body)
	})

	return mux
}

type fixture struct {
	graph    *fakeGraph
	server   *httptest.Server
	api      *APIClient
	endpoint *TokenEndpoint
}

func newFixture(t *testing.T, mod ...func(*EndpointOptions)) *fixture {
	t.Helper()
	g := newFakeGraph()
	srv := httptest.NewServer(g.handler())
	t.Cleanup(srv.Close)

	api := NewAPIClient(srv.URL, testSecret, srv.Client())
	opts := EndpointOptions{
		ClientID:     testClientID,
		ClientSecret: testSecret,
		TokenURL:     srv.URL + "/oauth/access_token",
		HTTPClient:   srv.Client(),
	}
	for _, m := range mod {
		m(&opts)
	}
	return &fixture{graph: g, server: srv, api: api, endpoint: NewTokenEndpoint(api, opts)}
}
