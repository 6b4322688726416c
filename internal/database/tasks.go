package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

// TaskUpdate carries optional field changes. Nil pointers are left alone;
// an empty ResponsibleID, zero EstimatedMinutes or zero DueDate clears the column.
type TaskUpdate struct {
	Title            *string
	Description      *string
	Priority         *models.TaskPriority
	ResponsibleID    *string
	EstimatedMinutes *int
	DueDate          *time.Time
	Tags             *[]string
}

func (u TaskUpdate) empty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil && u.ResponsibleID == nil &&
		u.EstimatedMinutes == nil && u.DueDate == nil && u.Tags == nil
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var status, priority, origin, tags string
	var responsible, chat, msgID, phone sql.NullString
	var estimated sql.NullInt64
	var due, completed, created, updated dbTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &origin, &responsible, &t.CreatorID,
		&t.TotalMinutes, &estimated, &due, &completed, &tags,
		&chat, &msgID, &phone, &created, &updated)
	if err != nil {
		return t, err
	}
	t.Status = models.TaskStatus(status)
	t.Priority = models.TaskPriority(priority)
	t.Origin = models.TaskOrigin(origin)
	t.ResponsibleID = nullStringPtr(responsible)
	t.EstimatedMinutes = nullIntPtr(estimated)
	t.DueDate = due.Ptr()
	t.CompletedAt = completed.Ptr()
	t.Tags = util.JSONToTags(tags)
	t.WhatsAppChat = nullStringPtr(chat)
	t.WhatsAppMessage = nullStringPtr(msgID)
	t.WhatsAppPhone = nullStringPtr(phone)
	t.CreatedAt = created.Time
	t.UpdatedAt = updated.Time
	return t, nil
}

func (d *Database) prepareTask(t models.Task) models.Task {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := d.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt
	if t.Status == "" {
		t.Status = models.TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Origin == "" {
		t.Origin = models.OriginManual
	}
	if t.Status == models.TaskStatusCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

func insertTask(ctx context.Context, q queryer, t models.Task) error {
	_, err := q.ExecContext(ctx, `INSERT INTO tasks (id, title, description, status, priority, origin, responsible_id, creator_id,
		total_minutes, estimated_minutes, due_date, completed_at, tags,
		whatsapp_chat_name, whatsapp_message_id, whatsapp_phone_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), string(t.Origin),
		toNullableArg(t.ResponsibleID), t.CreatorID, t.TotalMinutes, toNullableArg(t.EstimatedMinutes),
		nullableTime(t.DueDate), nullableTime(t.CompletedAt), util.TagsToJSON(t.Tags),
		toNullableArg(t.WhatsAppChat), toNullableArg(t.WhatsAppMessage), toNullableArg(t.WhatsAppPhone),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	return err
}

// CreateTask inserts a task, assigning an ID and defaults when missing.
func (d *Database) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	t = d.prepareTask(t)
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		return insertTask(ctx, d.DB, t)
	})
	if err != nil {
		return models.Task{}, wrapErr(EntityTask, "create", t.ID, err)
	}
	d.publish(TableTasks, OpInsert, t.ID, taskKeys(t))
	return d.GetTask(ctx, t.ID)
}

// CreateTasks inserts several tasks atomically.
func (d *Database) CreateTasks(ctx context.Context, tasks []models.Task) ([]models.Task, error) {
	prepared := make([]models.Task, len(tasks))
	for i, t := range tasks {
		prepared[i] = d.prepareTask(t)
	}
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		return d.WithTx(ctx, func(tx *sql.Tx) error {
			for _, t := range prepared {
				if err := insertTask(ctx, tx, t); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapErr(EntityTask, "create batch", "", err)
	}
	out := make([]models.Task, 0, len(prepared))
	for _, t := range prepared {
		d.publish(TableTasks, OpInsert, t.ID, taskKeys(t))
		created, err := d.GetTask(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func (d *Database) GetTask(ctx context.Context, id string) (models.Task, error) {
	task, err := withDBContextResult(d, ctx, func(ctx context.Context) (models.Task, error) {
		return scanTask(d.DB.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	})
	return task, wrapErr(EntityTask, "get", id, err)
}

// ListTasks runs q, or lists every task newest first when q is nil.
func (d *Database) ListTasks(ctx context.Context, q *TaskQuery) ([]models.Task, error) {
	if q == nil {
		q = NewTaskQuery()
	}
	query, args := q.Build()
	tasks, err := withDBContextResult(d, ctx, func(ctx context.Context) ([]models.Task, error) {
		rows, err := d.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		tasks := []models.Task{}
		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
		return tasks, rows.Err()
	})
	return tasks, wrapErr(EntityTask, "list", "", err)
}

// UpdateTask applies the non-nil fields of u.
func (d *Database) UpdateTask(ctx context.Context, id string, u TaskUpdate) (models.Task, error) {
	if u.empty() {
		return d.GetTask(ctx, id)
	}
	var sets []string
	var args []interface{}
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*u.Title))
	}
	if u.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, string(*u.Priority))
	}
	if u.ResponsibleID != nil {
		sets = append(sets, "responsible_id = ?")
		args = append(args, nullableString(*u.ResponsibleID))
	}
	if u.EstimatedMinutes != nil {
		sets = append(sets, "estimated_minutes = ?")
		if *u.EstimatedMinutes > 0 {
			args = append(args, *u.EstimatedMinutes)
		} else {
			args = append(args, nil)
		}
	}
	if u.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, nullableTime(u.DueDate))
	}
	if u.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, util.TagsToJSON(util.NormalizeTags(*u.Tags)))
	}
	args = append(args, id)

	err := d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
	if err != nil {
		return models.Task{}, wrapErr(EntityTask, "update", id, err)
	}
	d.publish(TableTasks, OpUpdate, id, nil)
	return d.GetTask(ctx, id)
}

// UpdateTaskStatus sets status. Entering completed stamps completed_at and
// re-completing keeps the first stamp; any other status clears it.
func (d *Database) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	query := "UPDATE tasks SET status = ?, completed_at = NULL WHERE id = ?"
	args := []any{string(status), id}
	if status == models.TaskStatusCompleted {
		query = "UPDATE tasks SET status = ?, completed_at = COALESCE(completed_at, ?) WHERE id = ?"
		args = []any{string(status), formatTime(d.now()), id}
	}
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
	if err != nil {
		return models.Task{}, wrapErr(EntityTask, "update status", id, err)
	}
	d.publish(TableTasks, OpUpdate, id, map[string]string{"status": string(status)})
	return d.GetTask(ctx, id)
}

// PromoteTaskStatus moves a task from one status to another only if it is
// still in from. It reports whether the row changed.
func (d *Database) PromoteTaskStatus(ctx context.Context, id string, from, to models.TaskStatus) (bool, error) {
	changed, err := withDBContextResult(d, ctx, func(ctx context.Context) (bool, error) {
		res, err := d.DB.ExecContext(ctx, "UPDATE tasks SET status = ? WHERE id = ? AND status = ?", string(to), id, string(from))
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		return n > 0, err
	})
	if err != nil {
		return false, wrapErr(EntityTask, "promote status", id, err)
	}
	if changed {
		d.publish(TableTasks, OpUpdate, id, map[string]string{"status": string(to)})
	}
	return changed, nil
}

// DeleteTask removes a task; checklist, comments and entries cascade.
func (d *Database) DeleteTask(ctx context.Context, id string) error {
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
	if err != nil {
		return wrapErr(EntityTask, "delete", id, err)
	}
	d.publish(TableTasks, OpDelete, id, nil)
	return nil
}

// recomputeTaskMinutes keeps tasks.total_minutes equal to the sum of
// completed entry durations.
func recomputeTaskMinutes(ctx context.Context, q queryer, taskID string) error {
	_, err := q.ExecContext(ctx, `UPDATE tasks SET total_minutes = (
		SELECT COALESCE(SUM(duration_minutes), 0) FROM time_entries
		WHERE task_id = ? AND end_time IS NOT NULL AND duration_minutes IS NOT NULL
	) WHERE id = ?`, taskID, taskID)
	if err != nil {
		return fmt.Errorf("recompute total minutes: %w", err)
	}
	return nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func taskKeys(t models.Task) map[string]string {
	keys := map[string]string{"status": string(t.Status), "creator_id": t.CreatorID}
	if t.ResponsibleID != nil {
		keys["responsible_id"] = *t.ResponsibleID
	}
	return keys
}
