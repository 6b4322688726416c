package database

import (
	"context"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

// DashboardStats counts tasks by status, overdue tasks, and the minutes
// userID logged today and this week (weeks start Monday in loc).
func (d *Database) DashboardStats(ctx context.Context, userID string, now time.Time, loc *time.Location) (models.DashboardStats, error) {
	stats, err := withDBContextResult(d, ctx, func(ctx context.Context) (models.DashboardStats, error) {
		var s models.DashboardStats
		rows, err := d.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
		if err != nil {
			return s, err
		}
		defer rows.Close()
		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return s, err
			}
			switch models.TaskStatus(status) {
			case models.TaskStatusPending:
				s.Pending = n
			case models.TaskStatusInProgress:
				s.InProgress = n
			case models.TaskStatusBlocked:
				s.Blocked = n
			case models.TaskStatusCompleted:
				s.Completed = n
			}
		}
		if err := rows.Err(); err != nil {
			return s, err
		}
		rows.Close()

		err = d.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM tasks WHERE due_date IS NOT NULL AND due_date <= ? AND status != ?",
			formatTime(now), string(models.TaskStatusCompleted)).Scan(&s.Overdue)
		if err != nil {
			return s, err
		}
		if userID == "" {
			return s, nil
		}
		if s.MinutesToday, err = minutesSince(ctx, d, userID, util.StartOfDay(now, loc)); err != nil {
			return s, err
		}
		s.MinutesWeek, err = minutesSince(ctx, d, userID, util.StartOfWeek(now, loc))
		return s, err
	})
	return stats, wrapErr(EntityTask, "dashboard", "", err)
}

func minutesSince(ctx context.Context, d *Database, userID string, from time.Time) (int, error) {
	var total int
	err := d.DB.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(duration_minutes), 0) FROM time_entries WHERE user_id = ? AND duration_minutes IS NOT NULL AND start_time >= ?",
		userID, formatTime(from)).Scan(&total)
	return total, err
}
