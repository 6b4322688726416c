package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

const taskColumns = `id, title, description, status, priority, origin, responsible_id, creator_id,
	total_minutes, estimated_minutes, due_date, completed_at, tags,
	whatsapp_chat_name, whatsapp_message_id, whatsapp_phone_number, created_at, updated_at`

const entryColumns = `te.id, te.task_id, te.user_id, te.start_time, te.end_time, te.duration_minutes,
	te.entry_type, te.note, te.created_at`

type baseQuery struct {
	filters []string
	args    []interface{}
	orderBy string
	limit   int
}

func (q *baseQuery) where(filter string, args ...interface{}) {
	q.filters = append(q.filters, filter)
	q.args = append(q.args, args...)
}

func (q *baseQuery) build(selectFrom string) (string, []interface{}) {
	query := selectFrom
	if len(q.filters) > 0 {
		query += " WHERE " + strings.Join(q.filters, " AND ")
	}
	if q.orderBy != "" {
		query += " ORDER BY " + q.orderBy
	}
	if q.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.limit)
	}
	return query, q.args
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// TaskQuery builds filtered task listings.
type TaskQuery struct {
	baseQuery
}

func NewTaskQuery() *TaskQuery {
	q := &TaskQuery{}
	q.orderBy = "created_at DESC"
	return q
}

func (q *TaskQuery) Where(filter string, args ...interface{}) *TaskQuery {
	q.where(filter, args...)
	return q
}

func (q *TaskQuery) WhereStatus(statuses ...models.TaskStatus) *TaskQuery {
	if len(statuses) == 0 {
		return q
	}
	args := make([]interface{}, len(statuses))
	for i, s := range statuses {
		args[i] = string(s)
	}
	return q.Where("status IN ("+placeholders(len(args))+")", args...)
}

func (q *TaskQuery) WherePriority(priorities ...models.TaskPriority) *TaskQuery {
	if len(priorities) == 0 {
		return q
	}
	args := make([]interface{}, len(priorities))
	for i, p := range priorities {
		args[i] = string(p)
	}
	return q.Where("priority IN ("+placeholders(len(args))+")", args...)
}

func (q *TaskQuery) WhereOrigin(origins ...models.TaskOrigin) *TaskQuery {
	if len(origins) == 0 {
		return q
	}
	args := make([]interface{}, len(origins))
	for i, o := range origins {
		args[i] = string(o)
	}
	return q.Where("origin IN ("+placeholders(len(args))+")", args...)
}

func (q *TaskQuery) WhereResponsible(profileID string) *TaskQuery {
	return q.Where("responsible_id = ?", profileID)
}

// WhereTag matches tasks whose JSON tag array contains tag.
func (q *TaskQuery) WhereTag(tag string) *TaskQuery {
	return q.Where("tags LIKE ?", `%"`+strings.ToLower(tag)+`"%`)
}

// WhereText matches every word against title or description.
func (q *TaskQuery) WhereText(words ...string) *TaskQuery {
	for _, w := range words {
		like := "%" + w + "%"
		q.Where("(title LIKE ? OR description LIKE ?)", like, like)
	}
	return q
}

// WhereDueBy matches unfinished tasks due at or before t.
func (q *TaskQuery) WhereDueBy(t time.Time) *TaskQuery {
	return q.Where("due_date IS NOT NULL AND due_date <= ? AND status != ?", formatTime(t), string(models.TaskStatusCompleted))
}

// ApplySearch folds a parsed search string into the query.
func (q *TaskQuery) ApplySearch(sq util.SearchQuery) *TaskQuery {
	if sq.Empty() {
		return q
	}
	statuses := make([]models.TaskStatus, 0, len(sq.Status))
	for _, s := range sq.Status {
		statuses = append(statuses, models.TaskStatus(s))
	}
	priorities := make([]models.TaskPriority, 0, len(sq.Priority))
	for _, p := range sq.Priority {
		priorities = append(priorities, models.TaskPriority(p))
	}
	origins := make([]models.TaskOrigin, 0, len(sq.Origin))
	for _, o := range sq.Origin {
		origins = append(origins, models.TaskOrigin(o))
	}
	q.WhereStatus(statuses...).WherePriority(priorities...).WhereOrigin(origins...)
	for _, tag := range sq.Tags {
		q.WhereTag(tag)
	}
	for _, id := range sq.Responsible {
		q.WhereResponsible(id)
	}
	if sq.Limit > 0 {
		q.Limit(sq.Limit)
	}
	return q.WhereText(sq.Text...)
}

func (q *TaskQuery) OrderBy(orderBy string) *TaskQuery {
	q.orderBy = orderBy
	return q
}

func (q *TaskQuery) Limit(limit int) *TaskQuery {
	q.limit = limit
	return q
}

func (q *TaskQuery) Build() (string, []interface{}) {
	return q.build("SELECT " + taskColumns + " FROM tasks")
}

// TimeEntryQuery builds time-entry listings joined with user and task labels.
type TimeEntryQuery struct {
	baseQuery
}

func NewTimeEntryQuery() *TimeEntryQuery {
	q := &TimeEntryQuery{}
	q.orderBy = "te.start_time ASC"
	return q
}

func (q *TimeEntryQuery) Where(filter string, args ...interface{}) *TimeEntryQuery {
	q.where(filter, args...)
	return q
}

// WhereStartFrom keeps entries that started at or after t.
func (q *TimeEntryQuery) WhereStartFrom(t time.Time) *TimeEntryQuery {
	return q.Where("te.start_time >= ?", formatTime(t))
}

// WhereStartTo keeps entries that started at or before t.
func (q *TimeEntryQuery) WhereStartTo(t time.Time) *TimeEntryQuery {
	return q.Where("te.start_time <= ?", formatTime(t))
}

func (q *TimeEntryQuery) WhereUser(userID string) *TimeEntryQuery {
	return q.Where("te.user_id = ?", userID)
}

func (q *TimeEntryQuery) WhereTask(taskID string) *TimeEntryQuery {
	return q.Where("te.task_id = ?", taskID)
}

// WhereCompleted drops running timers.
func (q *TimeEntryQuery) WhereCompleted() *TimeEntryQuery {
	return q.Where("te.duration_minutes IS NOT NULL")
}

func (q *TimeEntryQuery) WhereRunning() *TimeEntryQuery {
	return q.Where("te.end_time IS NULL")
}

func (q *TimeEntryQuery) OrderBy(orderBy string) *TimeEntryQuery {
	q.orderBy = orderBy
	return q
}

func (q *TimeEntryQuery) Limit(limit int) *TimeEntryQuery {
	q.limit = limit
	return q
}

func (q *TimeEntryQuery) Build() (string, []interface{}) {
	return q.build("SELECT " + entryColumns + `, p.full_name, t.title
		FROM time_entries te
		LEFT JOIN profiles p ON p.id = te.user_id
		LEFT JOIN tasks t ON t.id = te.task_id`)
}
