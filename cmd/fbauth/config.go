package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/hellojohn-facebook/internal/util"
)

func newConfigCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Imprime la config efectiva (YAML + env) con los secretos enmascarados",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			cfg.Facebook.ClientSecret = util.MaskSecret(cfg.Facebook.ClientSecret)
			cfg.Storage.DSN = util.MaskDSN(cfg.Storage.DSN)
			cfg.Cache.Redis.Password = util.MaskSecret(cfg.Cache.Redis.Password)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
}
