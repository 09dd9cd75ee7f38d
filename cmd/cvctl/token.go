package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"folio/client"
	"folio/middleware"
)

func newTokenCmd(v *viper.Viper) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for the contact message routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := v.GetString("ADMIN_JWT_SECRET")
			if secret == "" {
				return errors.New("ADMIN_JWT_SECRET not set")
			}

			token, err := middleware.GenerateAdminToken(secret, subject, ttl)
			if err != nil {
				return err
			}

			if save {
				store, err := tokenStore(v)
				if err != nil {
					return err
				}
				if err := store.Set(token); err != nil {
					return fmt.Errorf("failed to save token: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "owner", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().BoolVar(&save, "save", false, "store the token for later cvctl calls")
	return cmd
}

// tokenStore opens the file store at CVCTL_TOKEN_FILE, or ~/.folio/session.json.
func tokenStore(v *viper.Viper) (*client.FileTokenStore, error) {
	path := v.GetString("CVCTL_TOKEN_FILE")
	if path == "" {
		var err error
		if path, err = client.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}

	defaults := client.DefaultConfig()
	tokenKey := v.GetString("AUTH_TOKEN_KEY")
	if tokenKey == "" {
		tokenKey = defaults.TokenKey
	}
	sessionKey := v.GetString("AUTH_SESSION_KEY")
	if sessionKey == "" {
		sessionKey = defaults.SessionKey
	}
	return client.NewFileTokenStore(path, tokenKey, sessionKey), nil
}
