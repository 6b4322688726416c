package database

import "context"

// nextChecklistPosition returns max(position)+1 for the task, or 0 when the
// list is empty.
func nextChecklistPosition(ctx context.Context, q queryer, taskID string) (int, error) {
	var maxPos int
	err := q.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) FROM checklist_items WHERE task_id = ?", taskID).Scan(&maxPos)
	if err != nil {
		return 0, err
	}
	return maxPos + 1, nil
}
