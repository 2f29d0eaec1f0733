// Package store abre el backend de persistencia configurado.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/hellojohn-facebook/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-facebook/internal/store/memory"
	"github.com/dropDatabas3/hellojohn-facebook/internal/store/pg"
)

// Open devuelve el store para driver ("memory" | "postgres").
func Open(ctx context.Context, driver, dsn string) (repository.Store, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return memory.New(), nil
	case "postgres", "pg", "postgresql":
		return pg.New(ctx, dsn, pg.PoolConfig{})
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}
