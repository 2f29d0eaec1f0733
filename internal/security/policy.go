package security

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
)

// ErrNoSuchRole is returned for role identifiers the policy does not define.
var ErrNoSuchRole = errors.New("security: no such role")

// StaticPolicy resolves role identifiers against a fixed, configured set.
type StaticPolicy struct {
	roles map[string]repository.Role
}

// NewStaticPolicy builds a policy knowing exactly the given role identifiers.
func NewStaticPolicy(identifiers []string) *StaticPolicy {
	p := &StaticPolicy{roles: make(map[string]repository.Role, len(identifiers))}
	for _, id := range identifiers {
		p.roles[id] = repository.Role{Identifier: id}
	}
	return p
}

// GetRole returns the role or ErrNoSuchRole.
func (p *StaticPolicy) GetRole(identifier string) (repository.Role, error) {
	r, ok := p.roles[identifier]
	if !ok {
		return repository.Role{}, fmt.Errorf("%w: %q", ErrNoSuchRole, identifier)
	}
	return r, nil
}

// AccountLookup finds an account by (identifier, provider name). It runs
// without a principal: it is used before any account is attached to the attempt.
type AccountLookup func(ctx context.Context, identifier, providerName string) (*repository.Account, error)

// PrivilegedAccountLookup exposes only the single unrestricted finder of repo,
// so the code holding it cannot perform any other unauthenticated read.
func PrivilegedAccountLookup(repo repository.AccountRepository) AccountLookup {
	return func(ctx context.Context, identifier, providerName string) (*repository.Account, error) {
		return repo.FindByAccountIdentifierAndProviderName(ctx, identifier, providerName)
	}
}
