package facebook

import (
	"sync"
	"time"

	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

// Token is an authentication attempt carrying a Facebook user access token.
// It also holds the /me responses fetched during the attempt; they go away with it.
type Token struct {
	*security.ClientToken

	mu       sync.Mutex
	userData map[string]string // fields -> raw JSON
}

// NewToken wraps a user access token submitted by the client.
func NewToken(accessToken string) *Token {
	return NewTokenWithExpiry(accessToken, time.Time{})
}

// NewTokenWithExpiry wraps a user access token and the expiry reported by the client SDK.
func NewTokenWithExpiry(accessToken string, expiresAt time.Time) *Token {
	return &Token{ClientToken: security.NewClientToken(security.Credentials{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	})}
}

func (t *Token) cachedUserData(fields string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	raw, ok := t.userData[fields]
	return raw, ok
}

func (t *Token) storeUserData(fields, raw string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.userData == nil {
		t.userData = make(map[string]string)
	}
	t.userData[fields] = raw
}
