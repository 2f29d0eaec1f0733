// Package pg implementa repository.Store sobre PostgreSQL usando pgxpool.
// Cada unit of work se aplica en una única transacción.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
)

// PoolConfig ajusta el pool de conexiones.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	ConnMaxLifetime time.Duration
}

type Store struct{ pool *pgxpool.Pool }

var _ repository.Store = (*Store)(nil)

// New abre el pool y verifica la conexión.
func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 10
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Accounts() repository.AccountRepository { return &accountRepo{pool: s.pool} }
func (s *Store) Profiles() repository.ProfileRepository { return &profileRepo{pool: s.pool} }

func (s *Store) NewUnitOfWork() repository.UnitOfWork { return &unitOfWork{pool: s.pool} }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool (idempotente).
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// ─── AccountRepository ───

type accountRepo struct{ pool *pgxpool.Pool }

const accountColumns = `id, account_identifier, provider_name, roles, credentials_source, profile_id,
	last_successful_authentication_at, failed_authentication_count, created_at, updated_at`

func (r *accountRepo) FindByAccountIdentifierAndProviderName(ctx context.Context, identifier, providerName string) (*repository.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM account WHERE account_identifier = $1 AND provider_name = $2`
	return scanAccount(r.pool.QueryRow(ctx, query, identifier, providerName))
}

func (r *accountRepo) Get(ctx context.Context, id string) (*repository.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM account WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func scanAccount(row pgx.Row) (*repository.Account, error) {
	var (
		a         repository.Account
		roles     []string
		profileID *string
	)
	err := row.Scan(&a.ID, &a.AccountIdentifier, &a.AuthenticationProviderName, &roles, &a.CredentialsSource,
		&profileID, &a.LastSuccessfulAuthenticationAt, &a.FailedAuthenticationCount, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if profileID != nil {
		a.ProfileID = *profileID
	}
	for _, id := range roles {
		a.Roles = append(a.Roles, repository.Role{Identifier: id})
	}
	return &a, nil
}

// ─── ProfileRepository ───

type profileRepo struct{ pool *pgxpool.Pool }

func (r *profileRepo) Get(ctx context.Context, id string) (*repository.Profile, error) {
	const query = `
		SELECT id, title, first_name, middle_name, last_name, primary_electronic_address, created_at
		FROM profile WHERE id = $1
	`
	var p repository.Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name.Title, &p.Name.FirstName, &p.Name.MiddleName,
		&p.Name.LastName, &p.PrimaryElectronicAddress, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT type, identifier, approved FROM electronic_address
		WHERE profile_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ea repository.ElectronicAddress
		if err := rows.Scan(&ea.Type, &ea.Identifier, &ea.Approved); err != nil {
			return nil, err
		}
		p.ElectronicAddresses = append(p.ElectronicAddresses, ea)
	}
	return &p, rows.Err()
}

// nullIfEmpty returns nil if the string is empty, otherwise returns the string pointer.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mapError traduce unique_violation a repository.ErrConflict.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, repository.ErrConflict)
	}
	return err
}
