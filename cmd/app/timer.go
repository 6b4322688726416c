package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/timetrack"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

func newTimerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start, stop and inspect timers",
	}

	start := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start a timer on a task for the acting user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			user, err := a.actingUser(ctx, db)
			if err != nil {
				return err
			}
			entry, err := a.engine(db).StartTimer(ctx, args[0], user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Timer started: %s (%s)\n", entry.ID, entry.StartTime.In(a.loc).Format(config.CSVDateLayout))
			return nil
		},
	}

	stop := &cobra.Command{
		Use:   "stop <entry-id>",
		Short: "Stop a running timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			entry, err := a.engine(db).StopTimer(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Timer stopped: %s, %d min\n", entry.ID, util.Deref(entry.DurationMinutes))
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "List the acting user's running timers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			user, err := a.actingUser(ctx, db)
			if err != nil {
				return err
			}
			timers, err := a.engine(db).ActiveTimers(ctx, user.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(timers) == 0 {
				fmt.Fprintln(out, "No running timers.")
				return nil
			}
			for _, t := range timers {
				fmt.Fprintf(out, "%s  %-32s  %s\n", t.Entry.ID, t.TaskTitle, formatElapsed(t))
			}
			return nil
		},
	}

	var minutes int
	var note, startAt string
	log := &cobra.Command{
		Use:   "log <task-id>",
		Short: "Record a manual block of work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			user, err := a.actingUser(ctx, db)
			if err != nil {
				return err
			}
			eng := a.engine(db)
			at := eng.Now().Add(-time.Duration(minutes) * time.Minute)
			if startAt != "" {
				if at, err = time.ParseInLocation("2006-01-02 15:04", startAt, a.loc); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}
			entry, err := eng.AddManualEntry(ctx, timetrack.ManualEntry{
				TaskID: args[0], UserID: user.ID, Start: at, Minutes: minutes, Note: note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %d min: %s\n", minutes, entry.ID)
			return nil
		},
	}
	log.Flags().IntVar(&minutes, "minutes", 0, "duration in minutes")
	log.Flags().StringVar(&startAt, "start", "", "start time as YYYY-MM-DD HH:MM (default: minutes ago)")
	log.Flags().StringVar(&note, "note", "", "optional note")

	cmd.AddCommand(start, stop, status, log)
	return cmd
}

func formatElapsed(t timetrack.ActiveTimer) string {
	return t.Elapsed.Truncate(time.Second).String()
}
