package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
)

// unitOfWork acumula operaciones y las aplica en una transacción en PersistAll.
// Las entidades se copian al encolar.
type unitOfWork struct {
	pool *pgxpool.Pool
	ops  []func(ctx context.Context, tx pgx.Tx) error
}

func (u *unitOfWork) AddAccount(a *repository.Account) {
	a = a.Clone()
	u.ops = append(u.ops, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO account (id, account_identifier, provider_name, roles, credentials_source, profile_id,
				last_successful_authentication_at, failed_authentication_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, a.ID, a.AccountIdentifier, a.AuthenticationProviderName, a.RoleIdentifiers(), a.CredentialsSource,
			nullIfEmpty(a.ProfileID), a.LastSuccessfulAuthenticationAt, a.FailedAuthenticationCount, a.CreatedAt, a.UpdatedAt)
		return err
	})
}

func (u *unitOfWork) UpdateAccount(a *repository.Account) {
	a = a.Clone()
	u.ops = append(u.ops, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE account SET roles = $2, credentials_source = $3, profile_id = $4,
				last_successful_authentication_at = $5, failed_authentication_count = $6, updated_at = $7
			WHERE id = $1
		`, a.ID, a.RoleIdentifiers(), a.CredentialsSource, nullIfEmpty(a.ProfileID),
			a.LastSuccessfulAuthenticationAt, a.FailedAuthenticationCount, a.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("account %s: %w", a.ID, repository.ErrNotFound)
		}
		return nil
	})
}

func (u *unitOfWork) AddProfile(p *repository.Profile) {
	p = p.Clone()
	u.ops = append(u.ops, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO profile (id, title, first_name, middle_name, last_name, primary_electronic_address, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.Name.Title, p.Name.FirstName, p.Name.MiddleName, p.Name.LastName, p.PrimaryElectronicAddress, p.CreatedAt)
		if err != nil {
			return err
		}
		for i, ea := range p.ElectronicAddresses {
			if _, err := tx.Exec(ctx, `
				INSERT INTO electronic_address (profile_id, position, type, identifier, approved)
				VALUES ($1, $2, $3, $4, $5)
			`, p.ID, i, ea.Type, ea.Identifier, ea.Approved); err != nil {
				return err
			}
		}
		return nil
	})
}

func (u *unitOfWork) Pending() int { return len(u.ops) }

func (u *unitOfWork) Discard() { u.ops = nil }

func (u *unitOfWork) PersistAll(ctx context.Context) error {
	if len(u.ops) == 0 {
		return nil
	}
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, op := range u.ops {
		if err := op(ctx, tx); err != nil {
			return mapError(err)
		}
	}
	// profile_id es DEFERRABLE INITIALLY DEFERRED: la FK se verifica acá.
	if err := tx.Commit(ctx); err != nil {
		return mapError(err)
	}
	u.ops = nil
	return nil
}
