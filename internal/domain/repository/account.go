package repository

import (
	"context"
	"time"
)

// Role is a policy role assigned to an account, e.g. "Acme.Site:Customer".
type Role struct {
	Identifier string
}

// Account is the local identity record for a remote identity, keyed by
// (AccountIdentifier, AuthenticationProviderName).
type Account struct {
	ID                         string
	AccountIdentifier          string
	AuthenticationProviderName string
	Roles                      []Role
	// CredentialsSource holds the long-lived provider access token.
	CredentialsSource string
	// ProfileID references the linked Profile; empty until provisioned.
	ProfileID string

	LastSuccessfulAuthenticationAt *time.Time
	FailedAuthenticationCount      int
	CreatedAt                      time.Time
	UpdatedAt                      time.Time
}

// AuthenticationAttempted records the outcome of an authentication attempt.
func (a *Account) AuthenticationAttempted(successful bool, at time.Time) {
	if successful {
		t := at.UTC()
		a.LastSuccessfulAuthenticationAt = &t
		a.FailedAuthenticationCount = 0
		return
	}
	a.FailedAuthenticationCount++
}

// RoleIdentifiers returns the identifiers of the assigned roles.
func (a *Account) RoleIdentifiers() []string {
	out := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		out = append(out, r.Identifier)
	}
	return out
}

// Clone returns a deep copy, used by stores that snapshot staged entities.
func (a *Account) Clone() *Account {
	c := *a
	c.Roles = append([]Role(nil), a.Roles...)
	if a.LastSuccessfulAuthenticationAt != nil {
		t := *a.LastSuccessfulAuthenticationAt
		c.LastSuccessfulAuthenticationAt = &t
	}
	return &c
}

// AccountRepository reads accounts.
type AccountRepository interface {
	// FindByAccountIdentifierAndProviderName returns ErrNotFound if no account matches.
	// Implementations perform no authorization filtering: callers decide who may use it.
	FindByAccountIdentifierAndProviderName(ctx context.Context, identifier, providerName string) (*Account, error)

	// Get returns ErrNotFound if the account does not exist.
	Get(ctx context.Context, id string) (*Account, error)
}
