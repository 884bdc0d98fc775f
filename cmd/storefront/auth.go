package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storefront-client/internal/model"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and merge the guest cart and wishlist into the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if password == "" {
				password = os.Getenv("STOREFRONT_PASSWORD")
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			resp, err := c.app.auth.Login(ctx, email, password)
			if err != nil {
				return err
			}
			// Login fires the guest migration before returning.
			if err := c.app.session.Login(ctx, resp.User, resp.Token); err != nil {
				return err
			}

			snap := c.app.session.Snapshot()
			p := newPrinter(cmd.OutOrStdout(), c.output)
			if c.output == "json" {
				return p.json(snap)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", snap.Email, joinRoles(snap.Roles))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or STOREFRONT_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !c.app.session.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			if err := c.app.auth.Logout(ctx); err != nil {
				c.app.logger.Warn("server logout failed", "error", err)
			}
			c.app.session.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := c.app.session.Snapshot()
			p := newPrinter(cmd.OutOrStdout(), c.output)
			if !snap.Authenticated() {
				return p.fields(snap, "User", "guest", "Active role", string(snap.ActiveRole))
			}
			return p.fields(snap,
				"User", snap.UserID.String(),
				"Email", snap.Email,
				"Roles", joinRoles(snap.Roles),
				"Active role", string(snap.ActiveRole),
				"Department", orDash(snap.Department),
				"Manages", orDash(strings.Join(snap.ManagedDepartments, ", ")),
			)
		},
	}
}

func (c *cli) roleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role [role]",
		Short: "Show or switch the active portal role",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := c.app.session.Snapshot()
			if len(args) == 0 {
				for _, r := range snap.Roles {
					marker := " "
					if r == snap.ActiveRole {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, r)
				}
				return nil
			}

			role := model.Role(args[0])
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", args[0])
			}
			if !c.app.session.SetActiveRole(cmd.Context(), role) {
				return fmt.Errorf("role %q is not granted to this account", role)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active role: %s\n", role)
			return nil
		},
	}
}

func joinRoles(roles []model.Role) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
