package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jrsteele09/go-catalog-admin/internal/config"
	"github.com/jrsteele09/go-catalog-admin/token"
	"github.com/jrsteele09/go-catalog-admin/token/refresh"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted session without contacting the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printStatus(cmd, cfg, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(cmd *cobra.Command, cfg config.Config, out io.Writer) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := token.Load(store)
	if err != nil {
		return err
	}
	if !rec.HasAccessToken() {
		fmt.Fprintln(out, "Signed out")
		return nil
	}

	session, err := token.NewDecoder(nil).Decode(cmd.Context(), rec.AccessToken)
	if err != nil {
		fmt.Fprintf(out, "Persisted access token is unusable: %v\n", err)
		return nil
	}

	now := refresh.NowTimeFunc()
	fmt.Fprintf(out, "Signed in as %s (%s)\n", session.Email, session.Role)
	fmt.Fprintf(out, "Access token expires %s\n", session.Expiry().UTC().Format(time.RFC3339))
	if rec.RefreshToken == "" {
		fmt.Fprintln(out, "No refresh token persisted, the next start signs out")
		return nil
	}
	delay := refresh.Delay(session.ExpiresAt, now, cfg.GetRefreshMargin())
	fmt.Fprintf(out, "Refresh due %s\n", now.Add(delay).UTC().Format(time.RFC3339))
	return nil
}
