package facebook

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/hellojohn-facebook/internal/audit"
	"github.com/dropDatabas3/hellojohn-facebook/internal/cache"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

// DefaultTokenURL is Facebook's OAuth2 token endpoint.
const DefaultTokenURL = "https://graph.facebook.com/oauth/access_token"

// appTokenFetchTimeout bounds a shared application-token fetch that no single
// request context controls.
const appTokenFetchTimeout = 30 * time.Second

const (
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeExchangeToken     = "fb_exchange_token"
)

// TokenInformation is the data object of a debug_token response.
// AppID and UserID keep the exact decimal text sent by Facebook.
type TokenInformation struct {
	IsValid   bool
	AppID     string
	UserID    string
	Scopes    []string
	ExpiresAt time.Time
}

// EndpointOptions configures a TokenEndpoint.
type EndpointOptions struct {
	ClientID     string
	ClientSecret string
	// TokenURL defaults to DefaultTokenURL.
	TokenURL   string
	HTTPClient *http.Client

	// AppTokenCache, when set together with a positive AppTokenCacheTTL, keeps
	// the application token across requests. Otherwise a new one is requested
	// for every validation.
	AppTokenCache    cache.Client
	AppTokenCacheTTL time.Duration
}

// TokenEndpoint talks to the Facebook token endpoint and the debug_token resource.
type TokenEndpoint struct {
	opts  EndpointOptions
	api   GraphQuerier
	group singleflight.Group
}

// NewTokenEndpoint creates an endpoint that validates tokens through api.
func NewTokenEndpoint(api GraphQuerier, opts EndpointOptions) *TokenEndpoint {
	if opts.TokenURL == "" {
		opts.TokenURL = DefaultTokenURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TokenEndpoint{opts: opts, api: api}
}

// RequestAccessToken performs a token request with the given grant type.
// Client credentials are sent as form parameters, as Facebook expects.
func (e *TokenEndpoint) RequestAccessToken(ctx context.Context, grantType string, params url.Values) (*oauth2.Token, error) {
	ep := url.Values{}
	for k, v := range params {
		ep[k] = v
	}
	ep.Set("grant_type", grantType)

	cfg := clientcredentials.Config{
		ClientID:       e.opts.ClientID,
		ClientSecret:   e.opts.ClientSecret,
		TokenURL:       e.opts.TokenURL,
		EndpointParams: ep,
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.opts.HTTPClient)
	tok, err := cfg.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("facebook: %s grant: %w", grantType, err)
	}
	return tok, nil
}

// RequestClientCredentialsGrantAccessToken obtains an application token.
func (e *TokenEndpoint) RequestClientCredentialsGrantAccessToken(ctx context.Context) (*oauth2.Token, error) {
	return e.RequestAccessToken(ctx, GrantTypeClientCredentials, nil)
}

// RequestLongLivedToken exchanges a short-lived user access token for a long-lived one.
func (e *TokenEndpoint) RequestLongLivedToken(ctx context.Context, shortLivedAccessToken string) (*oauth2.Token, error) {
	return e.RequestAccessToken(ctx, GrantTypeExchangeToken, url.Values{
		"fb_exchange_token": {shortLivedAccessToken},
	})
}

// RequestValidatedTokenInformation asks debug_token about the submitted access token.
//
// It returns ok=false when Facebook reports the token invalid or issued for a
// different application; this is a trust decision, not an error. A non-200
// debug_token response is a *ProtocolError. Token endpoint and transport
// failures are returned wrapped.
func (e *TokenEndpoint) RequestValidatedTokenInformation(ctx context.Context, creds security.Credentials) (*TokenInformation, bool, error) {
	appToken, err := e.applicationToken(ctx)
	if err != nil {
		return nil, false, err
	}

	resource := "/debug_token?input_token=" + url.QueryEscape(creds.AccessToken)
	resp, err := e.api.Query(ctx, appToken, resource)
	if err != nil {
		return nil, false, fmt.Errorf("facebook: debug_token: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		// A cached application token may have been revoked; fetch a fresh one next time.
		if err := e.InvalidateApplicationToken(ctx); err != nil {
			logger.From(ctx).Warn("app token cache delete failed", logger.Err(err))
		}
		return nil, false, &ProtocolError{Resource: "/debug_token", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	doc := resp.JSON()
	if !doc.IsObject() {
		return nil, false, &ProtocolError{Resource: "/debug_token", StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	data := doc.Get("data")
	info := &TokenInformation{
		// Only a JSON true counts; "1", "true" or 1 are not a validity claim.
		IsValid: data.Get("is_valid").Type == gjson.True,
		AppID:   idString(data.Get("app_id")),
		UserID:  idString(data.Get("user_id")),
	}
	if scopes := data.Get("scopes"); scopes.IsArray() {
		for _, s := range scopes.Array() {
			if s.Type == gjson.String {
				info.Scopes = append(info.Scopes, s.Str)
			}
		}
	}
	if exp := data.Get("expires_at").Int(); exp > 0 {
		info.ExpiresAt = time.Unix(exp, 0).UTC()
	}

	if !info.IsValid || info.AppID != e.opts.ClientID || info.UserID == "" {
		audit.Notice(ctx, audit.EventTokenRejected, "facebook access token rejected",
			logger.Bool("is_valid", info.IsValid),
			logger.AppID(info.AppID),
			logger.ClientID(e.opts.ClientID),
			logger.Bool("has_user_id", info.UserID != ""),
			logger.String("response", string(resp.Body)),
		)
		return nil, false, nil
	}
	return info, true, nil
}

func (e *TokenEndpoint) appTokenCacheKey() string {
	return "facebook:app_token:" + e.opts.ClientID
}

// applicationToken returns an application token, from the cache when enabled.
func (e *TokenEndpoint) applicationToken(ctx context.Context) (string, error) {
	if e.opts.AppTokenCache == nil || e.opts.AppTokenCacheTTL <= 0 {
		tok, err := e.RequestClientCredentialsGrantAccessToken(ctx)
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}

	key := e.appTokenCacheKey()
	if v, err := e.opts.AppTokenCache.Get(ctx, key); err == nil {
		return v, nil
	} else if !cache.IsNotFound(err) {
		logger.From(ctx).Warn("app token cache read failed", logger.Err(err))
	}

	// The shared fetch is detached from the caller that started it, so one
	// cancelled request does not fail everyone waiting on the same key.
	ch := e.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appTokenFetchTimeout)
		defer cancel()

		tok, err := e.RequestClientCredentialsGrantAccessToken(fetchCtx)
		if err != nil {
			return "", err
		}
		ttl := e.opts.AppTokenCacheTTL
		if !tok.Expiry.IsZero() {
			if left := time.Until(tok.Expiry); left < ttl {
				ttl = left
			}
		}
		if ttl > 0 {
			if err := e.opts.AppTokenCache.Set(fetchCtx, key, tok.AccessToken, ttl); err != nil {
				logger.From(ctx).Warn("app token cache write failed", logger.Err(err))
			}
		}
		return tok.AccessToken, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// InvalidateApplicationToken drops a cached application token.
func (e *TokenEndpoint) InvalidateApplicationToken(ctx context.Context) error {
	if e.opts.AppTokenCache == nil {
		return nil
	}
	return e.opts.AppTokenCache.Delete(ctx, e.appTokenCacheKey())
}

// idString returns the decimal text of a JSON string or number, "" for anything else.
// Numbers keep their raw text so IDs >= 2^53 are not rounded.
func idString(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return strings.TrimSpace(r.Str)
	case gjson.Number:
		return r.Raw
	default:
		return ""
	}
}
