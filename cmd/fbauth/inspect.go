package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/hellojohn-facebook/internal/providers/facebook"
	"github.com/dropDatabas3/hellojohn-facebook/internal/security"
)

func newInspectCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <access-token>",
		Short: "Valida un access token contra debug_token y muestra la información",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			fb := cfg.Facebook
			httpClient, err := facebook.NewHTTPClient(facebook.TransportOptions{CAFile: fb.CAFile, Timeout: fb.HTTPTimeout})
			if err != nil {
				return err
			}
			api := facebook.NewAPIClient(fb.GraphEndpoint, fb.ClientSecret, httpClient)
			endpoint := facebook.NewTokenEndpoint(api, facebook.EndpointOptions{
				ClientID:     fb.ClientID,
				ClientSecret: fb.ClientSecret,
				TokenURL:     fb.TokenEndpoint,
				HTTPClient:   httpClient,
			})

			info, ok, err := endpoint.RequestValidatedTokenInformation(cmd.Context(), security.Credentials{AccessToken: args[0]})
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("token rechazado: inválido o emitido para otra app")
			}

			out := map[string]any{
				"is_valid":        info.IsValid,
				"app_id":          info.AppID,
				"user_id":         info.UserID,
				"scopes":          info.Scopes,
				"missing_scopes":  security.MissingScopes(fb.Scopes, info.Scopes),
				"required_scopes": fb.Scopes,
			}
			if !info.ExpiresAt.IsZero() {
				out["expires_at"] = info.ExpiresAt.UTC().Format(time.RFC3339)
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
