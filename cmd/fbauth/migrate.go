package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-facebook/internal/store/pg"
	migrations "github.com/dropDatabas3/hellojohn-facebook/migrations/postgres"
)

func newMigrateCmd(load loadFunc) *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL pendientes en Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if dsn == "" {
				dsn = cfg.Storage.DSN
			}
			if dsn == "" {
				return errors.New("falta DSN (flag --dsn o storage.dsn)")
			}

			st, err := pg.New(cmd.Context(), dsn, pg.PoolConfig{})
			if err != nil {
				return err
			}
			defer st.Close()

			res, err := st.Migrate(cmd.Context(), migrations.FS, migrations.Dir)
			if err != nil {
				return err
			}
			logger.L().Info("migrations done",
				logger.Any("applied", res.Applied),
				logger.Any("skipped", res.Skipped),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "applied=%d skipped=%d\n", len(res.Applied), len(res.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "DSN de Postgres; por defecto storage.dsn")
	return cmd
}
