package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"covtrack/internal/domain"
)

func newUserCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage tracker accounts",
	}
	cmd.AddCommand(
		newUserCreateCmd(flags),
		newUserListCmd(flags),
		newUserDeleteCmd(flags),
		newUserSetRoleCmd(flags),
	)
	return cmd
}

func newUserCreateCmd(flags *rootFlags) *cobra.Command {
	var (
		email    string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			u, err := env.svcs.Security.CreateUser(cmd.Context(), args[0], email, password, role)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", u.Username, u.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (minimum 8 characters)")
	cmd.Flags().StringVar(&role, "role", domain.RoleViewer, "Role: admin or viewer")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newUserListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			users, err := env.svcs.Security.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tEMAIL")
			for _, u := range users {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Role, u.Email)
			}
			return w.Flush()
		},
	}
}

func newUserDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.svcs.Security.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %d\n", id)
			return nil
		},
	}
}

func newUserSetRoleCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <id> <role>",
		Short: "Change an account's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}

			env, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.svcs.Security.SetRole(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User %d is now %s\n", id, args[1])
			return nil
		},
	}
}
