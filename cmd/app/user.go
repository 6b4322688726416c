package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage board users",
	}

	var role string
	add := &cobra.Command{
		Use:   "add <full-name> <email>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			p, err := a.board(db).CreateUser(ctx, args[0], args[1], models.Role(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User created: %s  %s <%s>\n", p.ID, p.FullName, p.Email)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", string(models.RoleUser), "admin or user")

	list := &cobra.Command{
		Use:   "list",
		Short: "List active users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			users, err := a.board(db).Users(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s %s (%s)\n", u.ID, u.FullName, u.Email, u.Role)
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
