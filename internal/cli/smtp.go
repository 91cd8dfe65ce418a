package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fieldreport/internal/service"
)

func newSMTPPasswordCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "set-smtp-password",
		Short: "Store the SMTP password in the database (read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			if user == "" {
				user = cfg.SMTP.User
			}
			password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && password == "" {
				return errors.New("no password on stdin")
			}
			password = strings.TrimRight(password, "\r\n")

			db, err := service.OpenDatabase(cmd.Context(), cfg, loggerFrom(cmd))
			if err != nil {
				if service.IsDisabled(err) {
					return errors.New("DATABASE_URL is required to store credentials")
				}
				return err
			}
			defer db.Close()

			if err := db.Credentials.SetSMTPPassword(cmd.Context(), user, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "smtp password stored for %q\n", user)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "SMTP user the password belongs to (default: SMTP_USER)")
	return cmd
}
