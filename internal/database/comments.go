package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

const commentColumns = "id, task_id, author_id, text, created_at"

func scanComment(row rowScanner) (models.Comment, error) {
	var c models.Comment
	var created dbTime
	if err := row.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Text, &created); err != nil {
		return c, err
	}
	c.CreatedAt = created.Time
	return c, nil
}

func (d *Database) AddComment(ctx context.Context, taskID, authorID, text string) (models.Comment, error) {
	c := models.Comment{ID: uuid.NewString(), TaskID: taskID, AuthorID: authorID, Text: text, CreatedAt: d.now().UTC()}
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		_, err := d.DB.ExecContext(ctx, "INSERT INTO comments ("+commentColumns+") VALUES (?, ?, ?, ?, ?)",
			c.ID, c.TaskID, c.AuthorID, c.Text, formatTime(c.CreatedAt))
		return err
	})
	if err != nil {
		return models.Comment{}, wrapErr(EntityComment, "add", "", err)
	}
	d.publish(TableComments, OpInsert, c.ID, map[string]string{"task_id": taskID, "author_id": authorID})
	return c, nil
}

// ListComments returns a task's comments oldest first.
func (d *Database) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	comments, err := withDBContextResult(d, ctx, func(ctx context.Context) ([]models.Comment, error) {
		rows, err := d.DB.QueryContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE task_id = ? ORDER BY created_at ASC", taskID)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []models.Comment{}
		for rows.Next() {
			c, err := scanComment(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, rows.Err()
	})
	return comments, wrapErr(EntityComment, "list", "", err)
}

// DeleteComment removes a comment only when authorID wrote it; otherwise it
// reports models.ErrNotFound and leaves the row alone.
func (d *Database) DeleteComment(ctx context.Context, id, authorID string) error {
	var taskID string
	err := d.withDBContext(ctx, func(ctx context.Context) error {
		err := d.DB.QueryRowContext(ctx, "SELECT task_id FROM comments WHERE id = ? AND author_id = ?", id, authorID).Scan(&taskID)
		if err != nil {
			return err
		}
		res, err := d.DB.ExecContext(ctx, "DELETE FROM comments WHERE id = ? AND author_id = ?", id, authorID)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
	if err != nil {
		return wrapErr(EntityComment, "delete", id, err)
	}
	d.publish(TableComments, OpDelete, id, map[string]string{"task_id": taskID, "author_id": authorID})
	return nil
}

