package main

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rwx-research/lms-cli/internal/authserver"
	"github.com/rwx-research/lms-cli/internal/errors"
)

var (
	AuthServerAddr string

	authServerCmd = &cobra.Command{
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := settings.AuthServer

			secret, err := sessionSecret(cfg.SessionSecret)
			if err != nil {
				return err
			}

			server, err := authserver.New(authserver.Config{
				TokenURL:      cfg.TokenURL,
				ClientID:      cfg.ClientID,
				ClientSecret:  cfg.ClientSecret,
				Scopes:        cfg.Scopes,
				SessionSecret: secret,
				CookieName:    settings.CookieName,
				SecureCookies: cfg.SecureCookies,
				Logger:        log.With(slog.String("component", "auth-server")),
			})
			if err != nil {
				return errors.Wrap(err, "unable to initialize auth server")
			}

			addr := cfg.Addr
			if AuthServerAddr != "" {
				addr = AuthServerAddr
			}

			log.Info("auth server listening", slog.String("addr", addr))
			return server.ListenAndServe(cmd.Context(), addr)
		},
		Short: "Serve the /api/auth routes that hold the session and exchange it for access tokens",
		Use:   "auth-server [flags]",
	}
)

func init() {
	authServerCmd.Flags().StringVar(&AuthServerAddr, "addr", "", "address to listen on (default from auth_server.addr)")
}

// sessionSecret decodes the configured base64 secret, or generates a temporary one.
func sessionSecret(encoded string) ([]byte, error) {
	if encoded != "" {
		secret, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, errors.Wrap(err, "unable to decode session secret")
		}
		return secret, nil
	}

	log.Warn("no session secret configured, generating a random one (sessions won't survive a restart)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Wrap(err, "unable to generate session secret")
	}
	return secret, nil
}
