// Package memory is an in-process repository.Store. Units of work are applied
// under a single lock so concurrent attempts never observe partial writes.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
)

type accountKey struct {
	identifier string
	provider   string
}

// Store keeps accounts and profiles in maps.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*repository.Account
	byKey    map[accountKey]string
	profiles map[string]*repository.Profile
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		accounts: make(map[string]*repository.Account),
		byKey:    make(map[accountKey]string),
		profiles: make(map[string]*repository.Profile),
	}
}

func (s *Store) Accounts() repository.AccountRepository { return accountRepo{s} }
func (s *Store) Profiles() repository.ProfileRepository { return profileRepo{s} }

func (s *Store) NewUnitOfWork() repository.UnitOfWork { return &unitOfWork{store: s} }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// Len returns the number of accounts and profiles stored.
func (s *Store) Len() (accounts, profiles int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), len(s.profiles)
}

type accountRepo struct{ s *Store }

func (r accountRepo) FindByAccountIdentifierAndProviderName(_ context.Context, identifier, providerName string) (*repository.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byKey[accountKey{identifier, providerName}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.s.accounts[id].Clone(), nil
}

func (r accountRepo) Get(_ context.Context, id string) (*repository.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a.Clone(), nil
}

type profileRepo struct{ s *Store }

func (r profileRepo) Get(_ context.Context, id string) (*repository.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

type opKind int

const (
	opAddAccount opKind = iota
	opUpdateAccount
	opAddProfile
)

type op struct {
	kind    opKind
	account *repository.Account
	profile *repository.Profile
}

type unitOfWork struct {
	store *Store
	ops   []op
}

func (u *unitOfWork) AddAccount(a *repository.Account) {
	u.ops = append(u.ops, op{kind: opAddAccount, account: a})
}

func (u *unitOfWork) UpdateAccount(a *repository.Account) {
	u.ops = append(u.ops, op{kind: opUpdateAccount, account: a})
}

func (u *unitOfWork) AddProfile(p *repository.Profile) {
	u.ops = append(u.ops, op{kind: opAddProfile, profile: p})
}

func (u *unitOfWork) Pending() int { return len(u.ops) }

func (u *unitOfWork) Discard() { u.ops = nil }

// PersistAll validates every operation against a staged view first, then applies
// them. Entities are copied at this point, so later changes by the caller are
// not visible in the store.
func (u *unitOfWork) PersistAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	newAccounts := map[string]*repository.Account{}
	newKeys := map[accountKey]string{}
	newProfiles := map[string]*repository.Profile{}

	for _, o := range u.ops {
		switch o.kind {
		case opAddAccount:
			a := o.account
			k := accountKey{a.AccountIdentifier, a.AuthenticationProviderName}
			if _, ok := s.accounts[a.ID]; ok {
				return fmt.Errorf("account %s: %w", a.ID, repository.ErrConflict)
			}
			if _, ok := s.byKey[k]; ok {
				return fmt.Errorf("account %s/%s: %w", k.identifier, k.provider, repository.ErrConflict)
			}
			if _, ok := newKeys[k]; ok {
				return fmt.Errorf("account %s/%s: %w", k.identifier, k.provider, repository.ErrConflict)
			}
			newAccounts[a.ID] = a.Clone()
			newKeys[k] = a.ID
		case opUpdateAccount:
			a := o.account
			_, existing := s.accounts[a.ID]
			_, staged := newAccounts[a.ID]
			if !existing && !staged {
				return fmt.Errorf("account %s: %w", a.ID, repository.ErrNotFound)
			}
			newAccounts[a.ID] = a.Clone()
		case opAddProfile:
			p := o.profile
			if _, ok := s.profiles[p.ID]; ok {
				return fmt.Errorf("profile %s: %w", p.ID, repository.ErrConflict)
			}
			newProfiles[p.ID] = p.Clone()
		}
	}

	for id, a := range newAccounts {
		if a.ProfileID != "" {
			_, existing := s.profiles[a.ProfileID]
			_, staged := newProfiles[a.ProfileID]
			if !existing && !staged {
				return fmt.Errorf("account %s references profile %s: %w", id, a.ProfileID, repository.ErrNotFound)
			}
		}
	}

	for id, a := range newAccounts {
		s.accounts[id] = a
		s.byKey[accountKey{a.AccountIdentifier, a.AuthenticationProviderName}] = id
	}
	for id, p := range newProfiles {
		s.profiles[id] = p
	}
	u.ops = nil
	return nil
}
