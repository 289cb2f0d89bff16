package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"leave-portal/internal/auth"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				email = prompt(cmd, reader, "Email: ")
			}
			if password == "" {
				password = prompt(cmd, reader, "Password: ")
			}

			sess, err := portal.Guard.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %s", Describe(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.Email, sess.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			portal.Guard.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := portal.Guard.Status()
			if !st.State.Active() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s), idle timeout in %s\n",
				st.Email, st.Role, st.Remaining.Round(time.Second))
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var req auth.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			score := auth.PasswordStrength(req.Password)
			fmt.Fprintf(cmd.OutOrStdout(), "Password strength: %s (%d/100)\n", auth.StrengthLabel(score), score)

			user, err := portal.Auth.Register(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("register: %s", Describe(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as %s. Sign in with `leavectl login`.\n", user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&req.Role, "role", "", "EMPLOYEE, MANAGER or ADMIN (default EMPLOYEE)")
	return cmd
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
