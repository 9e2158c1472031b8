package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// readPassword takes the password from the flag, CONTENTCTL_PASSWORD, or one line of stdin
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if v := os.Getenv("CONTENTCTL_PASSWORD"); v != "" {
		return v, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newRegisterCmd(a *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			c, _, err := a.client()
			if err != nil {
				return err
			}
			user, err := c.Register(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			printf(cmd, "Registered %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (or set CONTENTCTL_PASSWORD)")
	return cmd
}

func newLoginCmd(a *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, password)
			if err != nil {
				return err
			}
			c, saved, err := a.client()
			if err != nil {
				return err
			}
			sess, err := c.Login(cmd.Context(), args[0], pw)
			if err != nil {
				return err
			}
			if err := a.saveSession(&session{
				Server:      a.serverURL(saved),
				Email:       sess.User.Email,
				UserID:      sess.User.ID,
				AccessToken: sess.AccessToken,
				ExpiresAt:   sess.ExpiresAt,
			}); err != nil {
				return err
			}
			printf(cmd, "Logged in as %s\n", sess.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (or set CONTENTCTL_PASSWORD)")
	return cmd
}

func newLogoutCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err == errNotLoggedIn {
				printf(cmd, "Not logged in\n")
				return nil
			}
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := a.clearSession(); err != nil {
				return err
			}
			printf(cmd, "Logged out\n")
			return nil
		},
	}
}

func newWhoamiCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.authed()
			if err != nil {
				return err
			}
			user, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "%s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}
