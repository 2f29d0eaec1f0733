package repository

import "context"

// UnitOfWork collects pending writes of one authentication attempt and applies
// them together. Nothing is visible to readers before PersistAll succeeds.
type UnitOfWork interface {
	AddAccount(a *Account)
	UpdateAccount(a *Account)
	AddProfile(p *Profile)

	// Pending returns the number of staged operations.
	Pending() int

	// PersistAll applies every staged operation atomically and clears the queue.
	// On error nothing is applied.
	PersistAll(ctx context.Context) error

	// Discard drops staged operations.
	Discard()
}

// Store bundles repositories and the unit-of-work factory of one backend.
type Store interface {
	Accounts() AccountRepository
	Profiles() ProfileRepository
	NewUnitOfWork() UnitOfWork
	Ping(ctx context.Context) error
	Close() error
}
