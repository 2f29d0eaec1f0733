package facebook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dropDatabas3/hellojohn-facebook/internal/metrics"
)

// DefaultGraphEndpoint is the Graph API base URL.
const DefaultGraphEndpoint = "https://graph.facebook.com"

// maxResponseBytes bounds Graph API response bodies.
const maxResponseBytes = 1 << 20

// Response is a raw Graph API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON parses the body without decoding numbers into floats.
func (r *Response) JSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

// GraphQuerier performs signed Graph API requests.
type GraphQuerier interface {
	Query(ctx context.Context, accessToken, resource string) (*Response, error)
}

// APIClient sends signed GET requests to the Graph API. It holds no per-call
// state and may be shared by concurrent authentication attempts.
type APIClient struct {
	endpoint  string
	appSecret string
	http      *http.Client
}

// NewAPIClient creates a client for endpoint (DefaultGraphEndpoint when empty).
func NewAPIClient(endpoint, appSecret string, httpClient *http.Client) *APIClient {
	if endpoint == "" {
		endpoint = DefaultGraphEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &APIClient{
		endpoint:  strings.TrimRight(endpoint, "/"),
		appSecret: appSecret,
		http:      httpClient,
	}
}

// AppSecretProof returns hex(HMAC-SHA256(key=appSecret, msg=accessToken)).
func AppSecretProof(appSecret, accessToken string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// Query performs GET endpoint+resource, adding access_token and appsecret_proof
// to the query parameters already present in resource. Transport errors are
// returned as is; non-2xx statuses are not errors at this level.
func (c *APIClient) Query(ctx context.Context, accessToken, resource string) (*Response, error) {
	u, err := url.Parse(c.endpoint + resource)
	if err != nil {
		return nil, fmt.Errorf("facebook: invalid resource %q: %w", resource, err)
	}
	q := u.Query()
	q.Set("access_token", accessToken)
	q.Set("appsecret_proof", AppSecretProof(c.appSecret, accessToken))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.GraphRequestDuration.WithLabelValues(u.Path, "error").Observe(time.Since(start).Seconds())
		return nil, redactURLError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	metrics.GraphRequestDuration.WithLabelValues(u.Path, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("facebook: read %s response: %w", u.Path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// redactURLError strips the query string (access_token) from *url.Error messages.
func redactURLError(err error) error {
	if ue, ok := err.(*url.Error); ok {
		if u, perr := url.Parse(ue.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
		}
	}
	return err
}
