// Package providers selects the authentication provider able to handle a token.
//
// Each provider handles one token kind (e.g. *facebook.Token). The Registry
// plays the role of an authentication manager: it dispatches a token to the
// first registered provider that accepts it.
package providers

import (
	"context"

	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

// Provider authenticates tokens of the kinds it accepts.
type Provider interface {
	// Name is the provider name stored on accounts.
	Name() string
	CanAuthenticate(t security.Token) bool
	// Authenticate decides t's status. Rejections are a status, not an error.
	Authenticate(ctx context.Context, t security.Token) error
}
