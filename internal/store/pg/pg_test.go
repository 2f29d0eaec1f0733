package pg

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
	migrations "github.com/dropDatabas3/hellojohn-facebook/migrations/postgres"
)

func TestParseMigrations_Embedded(t *testing.T) {
	migs, err := ParseMigrations(migrations.FS, migrations.Dir)
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, 1, migs[0].Version)
	assert.Equal(t, "accounts_profiles", migs[0].Name)
	assert.Contains(t, migs[0].SQL, "DEFERRABLE INITIALLY DEFERRED")
	assert.Contains(t, migs[0].SQL, "UNIQUE (account_identifier, provider_name)")
}

func TestParseMigrations_OrderAndDuplicates(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql": {Data: []byte("SELECT 2")},
		"m/0001_a.sql": {Data: []byte("SELECT 1")},
		"m/readme.txt": {Data: []byte("ignored")},
		"m/0010_c.sql": {Data: []byte("SELECT 10")},
	}
	migs, err := ParseMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migs, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{migs[0].Version, migs[1].Version, migs[2].Version})

	fsys["m/0002_dup.sql"] = &fstest.MapFile{Data: []byte("SELECT 2")}
	_, err = ParseMigrations(fsys, "m")
	require.Error(t, err)
}

func TestMapError(t *testing.T) {
	err := mapError(&pgconn.PgError{Code: "23505", ConstraintName: "account_identifier_provider_uq"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Contains(t, err.Error(), "account_identifier_provider_uq")

	other := errors.New("boom")
	assert.Same(t, other, mapError(other))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("x"))
	assert.Equal(t, "x", *nullIfEmpty("x"))
}
