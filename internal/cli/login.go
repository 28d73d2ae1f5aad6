package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dspworks/dispatch/backend/internal/domain"
)

type authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)
}

func loginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and print the token to export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, ok := app.Backend.(authenticator)
			if !ok {
				return errors.New("this backend does not support login")
			}

			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				fmt.Fprint(app.Out, "Password: ")
				line, err := bufio.NewReader(app.In).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			user, err := auth.Login(cmd.Context(), args[0], password)
			if err != nil {
				return app.fail(cmd.Context(), app.platform(), err)
			}

			app.success(fmt.Sprintf("Logged in as %s (%s, %s)", user.FullName, user.Role, user.DSPCode))
			fmt.Fprintf(app.Out, "export DISPATCH_TOKEN=%s\n", app.Session.Token)
			fmt.Fprintf(app.Out, "export DISPATCH_DSP_CODE=%s\n", app.Session.DSPCode)
			return nil
		},
	}

	cmd.Flags().StringP("password", "p", "", "Password (read from stdin when empty)")
	return cmd
}
