package facebook

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/oauth2"

	"github.com/dropDatabas3/hellojohn-facebook/internal/cache"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return logger.ToContext(context.Background(), zap.New(core)), logs
}

func TestRequestClientCredentialsGrantAccessToken(t *testing.T) {
	f := newFixture(t)
	tok, err := f.endpoint.RequestClientCredentialsGrantAccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAppToken, tok.AccessToken)
}

func TestRequestValidatedTokenInformation_Valid(t *testing.T) {
	f := newFixture(t)
	f.graph.addUser("AT1", "999", []string{"email", "public_profile"}, nil)

	info, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, info.IsValid)
	assert.Equal(t, "123", info.AppID)
	assert.Equal(t, "999", info.UserID)
	assert.Equal(t, []string{"email", "public_profile"}, info.Scopes)
	assert.Equal(t, time.Unix(1893456000, 0).UTC(), info.ExpiresAt)
}

func TestRequestValidatedTokenInformation_LargeIDsKeepPrecision(t *testing.T) {
	f := newFixture(t)
	f.graph.addUser("AT1", "9223372036854775807", []string{"email"}, nil)

	info, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "9223372036854775807", info.UserID)
}

func TestRequestValidatedTokenInformation_NumericAppIDMatches(t *testing.T) {
	f := newFixture(t)
	f.graph.debugData["AT1"] = `{"app_id":123,"is_valid":true,"user_id":"999","scopes":[]}`

	info, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "123", info.AppID)
}

func TestRequestValidatedTokenInformation_Rejected(t *testing.T) {
	cases := map[string]string{
		"invalid":       `{"app_id":"123","is_valid":false,"user_id":"999","scopes":["email"]}`,
		"foreign app":   `{"app_id":"456","is_valid":true,"user_id":"999","scopes":["email"]}`,
		"missing data":  `{}`,
		"no user_id":    `{"app_id":"123","type":"APP","is_valid":true,"scopes":["email"]}`,
		"empty user_id": `{"app_id":"123","is_valid":true,"user_id":"","scopes":["email"]}`,
		"string valid":  `{"app_id":"123","is_valid":"1","user_id":"999","scopes":["email"]}`,
		"numeric valid": `{"app_id":"123","is_valid":1,"user_id":"999","scopes":["email"]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.graph.debugData["AT1"] = data
			ctx, logs := observedContext()

			info, ok, err := f.endpoint.RequestValidatedTokenInformation(ctx, security.Credentials{AccessToken: "AT1"})
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, info)

			notices := logs.FilterField(zap.String("event", "token_rejected")).All()
			require.Len(t, notices, 1)
			assert.Equal(t, "notice", notices[0].ContextMap()["severity"])
			assert.Equal(t, testClientID, notices[0].ContextMap()["client_id"])
		})
	}
}

func TestRequestValidatedTokenInformation_ScalarScopesIgnored(t *testing.T) {
	f := newFixture(t)
	f.graph.debugData["AT1"] = `{"app_id":"123","is_valid":true,"user_id":"999","scopes":"email"}`

	info, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, info.Scopes)
}

func TestRequestValidatedTokenInformation_UnknownToken(t *testing.T) {
	f := newFixture(t)
	_, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "nope"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequestValidatedTokenInformation_Non200IsProtocolError(t *testing.T) {
	f := newFixture(t)
	f.graph.debugStatus = http.StatusServiceUnavailable

	_, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.Error(t, err)
	assert.False(t, ok)
	var pe *ProtocolError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusServiceUnavailable, pe.StatusCode)
	assert.Equal(t, "/debug_token", pe.Resource)
	assert.True(t, IsProtocolError(err))
}

func TestRequestValidatedTokenInformation_BadClientSecret(t *testing.T) {
	f := newFixture(t, func(o *EndpointOptions) { o.ClientSecret = "wrong" })

	_, _, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.Error(t, err)
	var re *oauth2.RetrieveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusUnauthorized, re.Response.StatusCode)
	_, debug, _, _ := f.graph.calls()
	assert.Zero(t, debug)
}

func TestRequestLongLivedToken(t *testing.T) {
	f := newFixture(t)
	tok, err := f.endpoint.RequestLongLivedToken(context.Background(), "AT1")
	require.NoError(t, err)
	assert.Equal(t, "LL-AT1", tok.AccessToken)
	assert.False(t, tok.Expiry.IsZero())

	f.graph.exchangeFail = true
	_, err = f.endpoint.RequestLongLivedToken(context.Background(), "AT1")
	var re *oauth2.RetrieveError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "invalid_grant", re.ErrorCode)
}

func TestApplicationToken_PerRequestByDefault(t *testing.T) {
	f := newFixture(t)
	f.graph.addUser("AT1", "999", []string{"email"}, nil)
	for i := 0; i < 3; i++ {
		_, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
		require.NoError(t, err)
		require.True(t, ok)
	}
	app, _, _, _ := f.graph.calls()
	assert.Equal(t, 3, app)
}

func TestApplicationToken_Cached(t *testing.T) {
	f := newFixture(t, func(o *EndpointOptions) {
		o.AppTokenCache = cache.NewMemory("test")
		o.AppTokenCacheTTL = time.Hour
	})
	f.graph.addUser("AT1", "999", []string{"email"}, nil)

	for i := 0; i < 3; i++ {
		_, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
		require.NoError(t, err)
		require.True(t, ok)
	}
	app, debug, _, _ := f.graph.calls()
	assert.Equal(t, 1, app)
	assert.Equal(t, 3, debug)

	// A protocol error drops the cached token.
	f.graph.debugStatus = http.StatusBadRequest
	_, _, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.Error(t, err)
	f.graph.debugStatus = 0
	_, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), security.Credentials{AccessToken: "AT1"})
	require.NoError(t, err)
	require.True(t, ok)
	app, _, _, _ = f.graph.calls()
	assert.Equal(t, 2, app)
}

func TestApplicationToken_SharedFetchOutlivesCancelledCaller(t *testing.T) {
	f := newFixture(t, func(o *EndpointOptions) {
		o.AppTokenCache = cache.NewMemory("test")
		o.AppTokenCacheTTL = time.Hour
	})
	gate := make(chan struct{})
	f.graph.appTokenGate = gate
	f.graph.addUser("AT1", "999", []string{"email"}, nil)
	creds := security.Credentials{AccessToken: "AT1"}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := f.endpoint.RequestValidatedTokenInformation(ctx, creds)
		first <- err
	}()
	require.Eventually(t, func() bool { return f.graph.appTokenWaiting.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-first:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		close(gate)
		t.Fatal("cancelled caller kept waiting on the shared fetch")
	}

	close(gate)
	info, ok, err := f.endpoint.RequestValidatedTokenInformation(context.Background(), creds)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "999", info.UserID)

	app, _, _, _ := f.graph.calls()
	assert.Equal(t, 1, app)
}
