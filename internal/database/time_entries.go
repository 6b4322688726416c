package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

func scanTimeEntry(row rowScanner, extra ...any) (models.TimeEntry, error) {
	var e models.TimeEntry
	var entryType string
	var start, end, created dbTime
	var duration sql.NullInt64
	var note sql.NullString
	dest := []any{&e.ID, &e.TaskID, &e.UserID, &start, &end, &duration, &entryType, &note, &created}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return e, err
	}
	e.StartTime = start.Time
	e.EndTime = end.Ptr()
	e.DurationMinutes = nullIntPtr(duration)
	e.EntryType = models.EntryType(entryType)
	e.Note = nullStringPtr(note)
	e.CreatedAt = created.Time
	return e, nil
}

func scanTimeEntryDetail(row rowScanner) (models.TimeEntryDetail, error) {
	var userName, taskTitle sql.NullString
	e, err := scanTimeEntry(row, &userName, &taskTitle)
	if err != nil {
		return models.TimeEntryDetail{}, err
	}
	return models.TimeEntryDetail{
		TimeEntry: e,
		UserName:  nullStringPtr(userName),
		TaskTitle: nullStringPtr(taskTitle),
	}, nil
}

func getTimeEntry(ctx context.Context, q queryer, id string) (models.TimeEntry, error) {
	return scanTimeEntry(q.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM time_entries te WHERE te.id = ?", id))
}

func activeTimeEntry(ctx context.Context, q queryer, taskID, userID string) (*models.TimeEntry, error) {
	e, err := scanTimeEntry(q.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM time_entries te WHERE te.task_id = ? AND te.user_id = ? AND te.end_time IS NULL",
		taskID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertTimeEntry stores a running or completed entry. A running entry for a
// (task, user) that already has one fails with models.ErrConflict, both from
// the in-transaction check and from the partial unique index.
func (d *Database) InsertTimeEntry(ctx context.Context, e models.TimeEntry) (models.TimeEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EntryType == "" {
		e.EntryType = models.EntryAutomatic
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = d.now().UTC()
	}
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		return d.WithTx(ctx, func(tx *sql.Tx) error {
			if e.EndTime == nil {
				existing, err := activeTimeEntry(ctx, tx, e.TaskID, e.UserID)
				if err != nil {
					return err
				}
				if existing != nil {
					return models.ErrConflict
				}
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO time_entries
				(id, task_id, user_id, start_time, end_time, duration_minutes, entry_type, note, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				e.ID, e.TaskID, e.UserID, formatTime(e.StartTime), nullableTime(e.EndTime),
				toNullableArg(e.DurationMinutes), string(e.EntryType), toNullableArg(e.Note), formatTime(e.CreatedAt))
			if err != nil {
				return err
			}
			if e.EndTime != nil {
				return recomputeTaskMinutes(ctx, tx, e.TaskID)
			}
			return nil
		})
	})
	if err != nil {
		return models.TimeEntry{}, wrapErr(EntityTimeEntry, "insert", e.ID, err)
	}
	d.publish(TableEntries, OpInsert, e.ID, entryKeys(e))
	if e.EndTime != nil {
		d.publish(TableTasks, OpUpdate, e.TaskID, nil)
	}
	return d.GetTimeEntry(ctx, e.ID)
}

func (d *Database) GetTimeEntry(ctx context.Context, id string) (models.TimeEntry, error) {
	e, err := withDBContextResult(d, ctx, func(ctx context.Context) (models.TimeEntry, error) {
		return getTimeEntry(ctx, d.DB, id)
	})
	return e, wrapErr(EntityTimeEntry, "get", id, err)
}

// ActiveTimeEntry returns the running entry for (task, user), or nil.
func (d *Database) ActiveTimeEntry(ctx context.Context, taskID, userID string) (*models.TimeEntry, error) {
	e, err := withDBContextResult(d, ctx, func(ctx context.Context) (*models.TimeEntry, error) {
		return activeTimeEntry(ctx, d.DB, taskID, userID)
	})
	return e, wrapErr(EntityTimeEntry, "get active", "", err)
}

// ActiveTimeEntriesForUser lists every running timer of a user, oldest first.
func (d *Database) ActiveTimeEntriesForUser(ctx context.Context, userID string) ([]models.TimeEntryDetail, error) {
	return d.ListTimeEntryDetails(ctx, NewTimeEntryQuery().WhereUser(userID).WhereRunning())
}

// FinishTimeEntry closes a running entry. A second call fails with
// models.ErrAlreadyStopped.
func (d *Database) FinishTimeEntry(ctx context.Context, id string, end time.Time, minutes int) (models.TimeEntry, error) {
	var taskID string
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		return d.WithTx(ctx, func(tx *sql.Tx) error {
			current, err := getTimeEntry(ctx, tx, id)
			if err != nil {
				return err
			}
			taskID = current.TaskID
			res, err := tx.ExecContext(ctx,
				"UPDATE time_entries SET end_time = ?, duration_minutes = ? WHERE id = ? AND end_time IS NULL",
				formatTime(end), minutes, id)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err != nil {
				return err
			} else if n == 0 {
				return models.ErrAlreadyStopped
			}
			return recomputeTaskMinutes(ctx, tx, taskID)
		})
	})
	if err != nil {
		return models.TimeEntry{}, wrapErr(EntityTimeEntry, "finish", id, err)
	}
	d.publish(TableEntries, OpUpdate, id, map[string]string{"task_id": taskID})
	d.publish(TableTasks, OpUpdate, taskID, nil)
	return d.GetTimeEntry(ctx, id)
}

// DeleteTimeEntry removes an entry and refreshes the task total.
func (d *Database) DeleteTimeEntry(ctx context.Context, id string) error {
	var taskID string
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		return d.WithTx(ctx, func(tx *sql.Tx) error {
			if err := tx.QueryRowContext(ctx, "SELECT task_id FROM time_entries WHERE id = ?", id).Scan(&taskID); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM time_entries WHERE id = ?", id); err != nil {
				return err
			}
			return recomputeTaskMinutes(ctx, tx, taskID)
		})
	})
	if err != nil {
		return wrapErr(EntityTimeEntry, "delete", id, err)
	}
	d.publish(TableEntries, OpDelete, id, map[string]string{"task_id": taskID})
	d.publish(TableTasks, OpUpdate, taskID, nil)
	return nil
}

// ListTimeEntryDetails runs q with user and task labels expanded.
func (d *Database) ListTimeEntryDetails(ctx context.Context, q *TimeEntryQuery) ([]models.TimeEntryDetail, error) {
	if q == nil {
		q = NewTimeEntryQuery()
	}
	query, args := q.Build()
	entries, err := withDBContextResult(d, ctx, func(ctx context.Context) ([]models.TimeEntryDetail, error) {
		rows, err := d.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []models.TimeEntryDetail{}
		for rows.Next() {
			e, err := scanTimeEntryDetail(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, rows.Err()
	})
	return entries, wrapErr(EntityTimeEntry, "list", "", err)
}

func entryKeys(e models.TimeEntry) map[string]string {
	return map[string]string{"task_id": e.TaskID, "user_id": e.UserID}
}
