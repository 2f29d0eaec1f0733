// Package security holds the authentication request model shared by all
// providers: credentials, tokens and their status, scope checks and roles.
package security

import (
	"errors"
	"time"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
)

// ErrUnsupportedToken is returned when a provider is handed a token kind it cannot authenticate.
var ErrUnsupportedToken = errors.New("security: unsupported authentication token")

// Status is the state of an authentication attempt.
type Status int

const (
	// StatusPending means no decision has been made yet.
	StatusPending Status = iota
	StatusWrongCredentials
	StatusAuthenticationSuccessful
)

func (s Status) String() string {
	switch s {
	case StatusWrongCredentials:
		return "WRONG_CREDENTIALS"
	case StatusAuthenticationSuccessful:
		return "AUTHENTICATION_SUCCESSFUL"
	default:
		return "PENDING"
	}
}

// Terminal reports whether s is a final decision.
func (s Status) Terminal() bool { return s != StatusPending }

// Credentials are the provider-issued access token submitted by the client.
type Credentials struct {
	AccessToken string
	// ExpiresAt is zero when the client did not send an expiry.
	ExpiresAt time.Time
}

// Token is one authentication attempt. Providers read its credentials and
// report their result through SetStatus and SetAccount.
type Token interface {
	Credentials() Credentials
	Status() Status
	SetStatus(s Status)
	Account() *repository.Account
	SetAccount(a *repository.Account)
	IsAuthenticated() bool
}

// ClientToken is the base Token implementation for OAuth2 client providers.
// Provider-specific token kinds embed it.
type ClientToken struct {
	credentials Credentials
	status      Status
	account     *repository.Account
}

// NewClientToken wraps the submitted credentials in a pending attempt.
func NewClientToken(c Credentials) *ClientToken {
	return &ClientToken{credentials: c}
}

func (t *ClientToken) Credentials() Credentials { return t.credentials }

func (t *ClientToken) Status() Status { return t.status }

// SetStatus records a decision. Once terminal the status never changes.
func (t *ClientToken) SetStatus(s Status) {
	if t.status.Terminal() {
		return
	}
	t.status = s
}

func (t *ClientToken) Account() *repository.Account { return t.account }

func (t *ClientToken) SetAccount(a *repository.Account) { t.account = a }

// IsAuthenticated is true once the attempt succeeded and an account is attached.
func (t *ClientToken) IsAuthenticated() bool {
	return t.status == StatusAuthenticationSuccessful && t.account != nil
}

// String identifies the token without exposing the secret, e.g. for cache keys in logs.
func (t *ClientToken) String() string {
	return "client-token:" + t.status.String()
}
