package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

const checklistColumns = "id, task_id, text, done, position, created_at"

func scanChecklistItem(row rowScanner) (models.ChecklistItem, error) {
	var item models.ChecklistItem
	var created dbTime
	if err := row.Scan(&item.ID, &item.TaskID, &item.Text, &item.Done, &item.Position, &created); err != nil {
		return item, err
	}
	item.CreatedAt = created.Time
	return item, nil
}

// AddChecklistItem appends an item at the end of the task's list.
func (d *Database) AddChecklistItem(ctx context.Context, taskID, text string) (models.ChecklistItem, error) {
	item := models.ChecklistItem{ID: uuid.NewString(), TaskID: taskID, Text: text, CreatedAt: d.now().UTC()}
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		return d.WithTx(ctx, func(tx *sql.Tx) error {
			pos, err := nextChecklistPosition(ctx, tx, taskID)
			if err != nil {
				return err
			}
			item.Position = pos
			_, err = tx.ExecContext(ctx, "INSERT INTO checklist_items ("+checklistColumns+") VALUES (?, ?, ?, 0, ?, ?)",
				item.ID, item.TaskID, item.Text, item.Position, formatTime(item.CreatedAt))
			return err
		})
	})
	if err != nil {
		return models.ChecklistItem{}, wrapErr(EntityChecklist, "add", "", err)
	}
	d.publish(TableChecklist, OpInsert, item.ID, map[string]string{"task_id": taskID})
	return item, nil
}

func (d *Database) ListChecklist(ctx context.Context, taskID string) ([]models.ChecklistItem, error) {
	items, err := withDBContextResult(d, ctx, func(ctx context.Context) ([]models.ChecklistItem, error) {
		rows, err := d.DB.QueryContext(ctx, "SELECT "+checklistColumns+" FROM checklist_items WHERE task_id = ? ORDER BY position ASC, created_at ASC", taskID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		items := []models.ChecklistItem{}
		for rows.Next() {
			item, err := scanChecklistItem(rows)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, rows.Err()
	})
	return items, wrapErr(EntityChecklist, "list", "", err)
}

// ToggleChecklistItem flips the done flag and returns the updated item.
func (d *Database) ToggleChecklistItem(ctx context.Context, id string) (models.ChecklistItem, error) {
	item, err := withDBContextResult(d, ctx, func(ctx context.Context) (models.ChecklistItem, error) {
		res, err := d.DB.ExecContext(ctx, "UPDATE checklist_items SET done = 1 - done WHERE id = ?", id)
		if err != nil {
			return models.ChecklistItem{}, err
		}
		if err := expectAffected(res); err != nil {
			return models.ChecklistItem{}, err
		}
		return scanChecklistItem(d.DB.QueryRowContext(ctx, "SELECT "+checklistColumns+" FROM checklist_items WHERE id = ?", id))
	})
	if err != nil {
		return models.ChecklistItem{}, wrapErr(EntityChecklist, "toggle", id, err)
	}
	d.publish(TableChecklist, OpUpdate, id, map[string]string{"task_id": item.TaskID})
	return item, nil
}

func (d *Database) DeleteChecklistItem(ctx context.Context, id string) error {
	var taskID string
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		if err := d.DB.QueryRowContext(ctx, "SELECT task_id FROM checklist_items WHERE id = ?", id).Scan(&taskID); err != nil {
			return err
		}
		_, err := d.DB.ExecContext(ctx, "DELETE FROM checklist_items WHERE id = ?", id)
		return err
	})
	if err != nil {
		return wrapErr(EntityChecklist, "delete", id, err)
	}
	d.publish(TableChecklist, OpDelete, id, map[string]string{"task_id": taskID})
	return nil
}
