package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/tasktrack/internal/board"
	"github.com/akyairhashvil/tasktrack/internal/models"
)

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create and list tasks",
	}

	var in board.NewTask
	var priority, status string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
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
			in.Title = strings.Join(args, " ")
			in.CreatorID = user.ID
			in.Priority = models.TaskPriority(priority)
			in.Status = models.TaskStatus(status)
			task, err := a.board(db).CreateTask(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task created: %s  %s\n", task.ID, task.Title)
			return nil
		},
	}
	add.Flags().StringVar(&in.Description, "desc", "", "description; #hashtags become tags")
	add.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	add.Flags().StringVar(&status, "status", "", "pending, in_progress, blocked or completed")
	add.Flags().StringVar(&in.ResponsibleID, "responsible", "", "responsible user ID")
	add.Flags().StringSliceVar(&in.Tags, "tag", nil, "tag (repeatable)")

	list := &cobra.Command{
		Use:   "list [query...]",
		Short: "List tasks, optionally filtered with status:, priority:, origin:, tag: and free text",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			tasks, err := a.board(db).ListTasks(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			for _, t := range tasks {
				fmt.Fprintf(out, "%s  [%s] %-6s %s (%d min)\n", t.ID, t.Status, t.Priority, t.Title, t.TotalMinutes)
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
