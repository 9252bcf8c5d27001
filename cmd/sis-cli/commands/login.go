package commands

import (
	"fmt"

	"sisassist-backend/cmd/sis-cli/globals"
	"sisassist-backend/internal/scrapers/sis"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs in with the configured credentials and stores the session.",
	RunE: func(cmd *cobra.Command, args []string) error {
		g := globals.Get(cmd.Context())
		cfg := g.Config

		session, err := sis.NewSession(cfg.Institution, sessionOptions(g)...)
		if err != nil {
			return err
		}
		err = login(cmd.Context(), g, session)
		if err != nil {
			return err
		}
		fmt.Printf("logged in to %s as %s\n", cfg.Institution, cfg.Username)
		return nil
	},
}
