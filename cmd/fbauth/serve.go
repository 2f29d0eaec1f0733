package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-facebook/internal/app"
	"github.com/dropDatabas3/hellojohn-facebook/internal/config"
	apphttp "github.com/dropDatabas3/hellojohn-facebook/internal/http"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
)

func newServeCmd(configPath *string, load loadFunc) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP (POST /v1/auth/facebook, /readyz, /metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log := logger.L()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			holder := config.NewHolder(*configPath, cfg)
			a, err := app.Build(ctx, holder, app.Options{Version: version})
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Warn("close failed", logger.Err(err))
				}
			}()

			go watchReload(ctx, holder)

			log.Info("fbauth starting",
				logger.String("version", version),
				logger.String("env", cfg.App.Env),
				logger.String("storage", cfg.Storage.Driver),
				logger.String("cache", cfg.Cache.Kind),
				logger.Provider(cfg.Facebook.ProviderName),
				logger.ClientID(cfg.Facebook.ClientID),
			)
			return apphttp.Start(ctx, cfg.Server.Addr, a.Handler)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Dirección de escucha; pisa server.addr")
	return cmd
}

// watchReload relee la config con SIGHUP. Solo facebook.fields se aplica en caliente;
// el resto requiere reiniciar.
func watchReload(ctx context.Context, holder *config.Holder) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	log := logger.Named("config")
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := holder.Reload(); err != nil {
				log.Error("reload failed, keeping current config", logger.Err(err))
				continue
			}
			log.Info("config reloaded", logger.Any("facebook_fields", holder.FacebookFields()))
		}
	}
}
