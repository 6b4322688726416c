package main

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	var preset, from, to, userID, taskID, format, out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise tracked hours as text, CSV or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := a.open(ctx)
			if err != nil {
				return err
			}
			var fromT, toT time.Time
			if from != "" {
				if fromT, err = time.ParseInLocation(config.DateInputLayout, from, a.loc); err != nil {
					return fmt.Errorf("--from: %w", err)
				}
			}
			if to != "" {
				if toT, err = time.ParseInLocation(config.DateInputLayout, to, a.loc); err != nil {
					return fmt.Errorf("--to: %w", err)
				}
			}
			r, err := report.Resolve(preset, time.Now(), a.loc, fromT, toT)
			if err != nil {
				return err
			}
			entries, err := report.Fetch(ctx, db, report.Filter{Range: r, UserID: userID, TaskID: taskID})
			if err != nil {
				return err
			}
			summary := report.Summarize(entries, a.loc)

			var buf bytes.Buffer
			name := report.CSVFileName(time.Now(), a.loc)
			switch strings.ToLower(format) {
			case "text", "":
				writeSummary(cmd.OutOrStdout(), r, summary)
				return nil
			case "csv":
				err = report.WriteCSV(&buf, entries, a.loc)
			case "pdf":
				name = strings.TrimSuffix(name, ".csv") + ".pdf"
				err = report.WritePDF(&buf, summary, r, "Informe de horas")
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if out == "" {
				out = filepath.Join(a.cfg.ReportsDir, name)
			}
			cleanupStaleArtifacts(out)
			if err := writeFileAtomic(out, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written: %s\n", out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&preset, "preset", report.PresetWeek, "week, last-week, month, last-month or custom")
	f.StringVar(&from, "from", "", "custom range start, YYYY-MM-DD")
	f.StringVar(&to, "to", "", "custom range end (inclusive), YYYY-MM-DD")
	f.StringVar(&userID, "user-id", "", "only this user's entries")
	f.StringVar(&taskID, "task-id", "", "only this task's entries")
	f.StringVar(&format, "format", "text", "text, csv or pdf")
	f.StringVar(&out, "out", "", "output file for csv/pdf; - for stdout")
	return cmd
}

func writeSummary(w io.Writer, r report.Range, s report.Summary) {
	fmt.Fprintf(w, "%s - %s\n", r.From.Format(config.CSVDateLayout), r.To.Format(config.CSVDateLayout))
	fmt.Fprintf(w, "Total: %.1f h (%d entries)\n", s.TotalHours, s.Entries)
	fmt.Fprintf(w, "Average per user: %d h\n", s.AverageHoursPerUser)
	fmt.Fprintf(w, "Average per task: %d h\n", s.AverageHoursPerTask)
	fmt.Fprintln(w, "\nBy user:")
	for _, g := range report.Ranked(s.ByUser) {
		fmt.Fprintf(w, "  %-24s %6.1f h\n", g.Name, g.Hours)
	}
	fmt.Fprintln(w, "\nBy task:")
	for _, g := range report.Ranked(s.ByTask) {
		fmt.Fprintf(w, "  %-24s %6.1f h\n", g.Name, g.Hours)
	}
	fmt.Fprintln(w, "\nBy day:")
	for _, d := range s.ByDay {
		fmt.Fprintf(w, "  %s %6.1f h\n", d.Label, d.Hours)
	}
}
