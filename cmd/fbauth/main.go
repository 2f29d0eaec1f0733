package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-facebook/internal/config"
	"github.com/dropDatabas3/hellojohn-facebook/internal/observability/logger"
)

// version se sobreescribe con -ldflags "-X main.version=..."
var version = "dev"

func main() {
	var (
		configPath = envOr("CONFIG_PATH", "")
		envFile    = envOr("ENV_FILE", ".env")
	)

	root := &cobra.Command{
		Use:           "fbauth",
		Short:         "Autenticación de cuentas locales con access tokens de Facebook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env es opcional; las variables del entorno real siguen teniendo prioridad.
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", configPath, "Ruta del YAML de configuración (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&envFile, "env-file", envFile, "Archivo dotenv a cargar antes de leer la config")

	load := func() (*config.Config, error) {
		if configPath == "" {
			configPath = os.Getenv("CONFIG_PATH")
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "fbauth"})
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(&configPath, load),
		newInspectCmd(load),
		newMigrateCmd(load),
		newConfigCmd(load),
		&cobra.Command{
			Use:   "version",
			Short: "Imprime la versión",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			},
		},
	)

	err := root.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

type loadFunc func() (*config.Config, error)

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
