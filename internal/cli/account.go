package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/config"
	"github.com/pasc-cca/ccadash/internal/session"
)

func newLoginCommand(a *app) *cobra.Command {
	var (
		email    string
		password string
		admin    bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long: `Sign in to the CCA API and save the session token.

The password is read from --password, or from the first line of standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd)
				if err != nil {
					return err
				}
				password = p
			}

			role := session.RoleUser
			if admin {
				role = session.RoleAdmin
			}

			// a rejected login must not be treated as an expired session
			ctx := client.ContextWithScreen(cmd.Context(), config.LoginScreen)

			res, err := a.client.Auth.Login(ctx, email, password, role)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.out.json(res.Raw)
			}
			if !res.Success {
				return responseError(res.Message, "Login failed. Please check your email and password and try again.")
			}

			a.out.line("Signed in as %s (%s)", res.Data.User.Name, a.store.Role())
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&admin, "admin", false, "sign in with the admin role")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", errors.New("no password given")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Auth.Logout(); err != nil {
				return err
			}
			a.out.line("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}

			info := struct {
				AccountID   int          `json:"accountId,omitempty"`
				Role        session.Role `json:"role"`
				APIBaseURL  string       `json:"apiBaseUrl"`
				SessionFile string       `json:"sessionFile"`
			}{
				Role:        a.store.Role(),
				APIBaseURL:  a.client.BaseURL(),
				SessionFile: a.store.Path(),
			}
			if claims, err := session.ParseClaims(a.store.Token()); err == nil {
				info.AccountID = claims.AccountID()
			}

			if a.jsonOutput {
				return a.out.value(info)
			}
			if info.AccountID != 0 {
				a.out.line("Account: %d", info.AccountID)
			}
			a.out.line("Role:    %s", info.Role)
			a.out.line("API:     %s", info.APIBaseURL)
			a.out.line("Session: %s", info.SessionFile)
			return nil
		},
	}
}

// responseError reports an unsuccessful envelope
func responseError(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return errors.New(message)
}
