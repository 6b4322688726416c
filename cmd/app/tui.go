package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/akyairhashvil/tasktrack/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Show running timers and this week's hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("tui needs an interactive terminal")
			}
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			user, err := a.actingUser(ctx, db)
			if err != nil {
				return err
			}
			tui.SetTheme(theme)
			return tui.Run(ctx, a.engine(db), db, user.ID, a.loc)
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "default", "color theme: default or dracula")
	return cmd
}
