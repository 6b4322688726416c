package models

import "time"

// TaskStatus enumerates the board columns a task can sit in.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusCompleted  TaskStatus = "completed"
)

// TaskPriority enumerates task urgency levels.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// TaskOrigin records how a task entered the board.
type TaskOrigin string

const (
	OriginManual          TaskOrigin = "manual"
	OriginWhatsAppMessage TaskOrigin = "whatsapp_message"
	OriginWhatsAppPoll    TaskOrigin = "whatsapp_poll"
)

// EntryType distinguishes timer-driven entries from directly entered ones.
type EntryType string

const (
	EntryAutomatic EntryType = "automatic"
	EntryManual    EntryType = "manual"
)

// Role is a profile's permission level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var validStatuses = map[TaskStatus]struct{}{
	TaskStatusPending:    {},
	TaskStatusInProgress: {},
	TaskStatusBlocked:    {},
	TaskStatusCompleted:  {},
}

var validPriorities = map[TaskPriority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

var validOrigins = map[TaskOrigin]struct{}{
	OriginManual:          {},
	OriginWhatsAppMessage: {},
	OriginWhatsAppPoll:    {},
}

func (s TaskStatus) Valid() bool {
	_, ok := validStatuses[s]
	return ok
}

func (p TaskPriority) Valid() bool {
	_, ok := validPriorities[p]
	return ok
}

func (o TaskOrigin) Valid() bool {
	_, ok := validOrigins[o]
	return ok
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Task is a single card on the board.
type Task struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Status           TaskStatus   `json:"status"`
	Priority         TaskPriority `json:"priority"`
	Origin           TaskOrigin   `json:"origin"`
	ResponsibleID    *string      `json:"responsible_id,omitempty"`
	CreatorID        string       `json:"creator_id"`
	TotalMinutes     int          `json:"total_minutes"` // sum of completed entry durations
	EstimatedMinutes *int         `json:"estimated_minutes,omitempty"`
	DueDate          *time.Time   `json:"due_date,omitempty"`
	CompletedAt      *time.Time   `json:"completed_at,omitempty"`
	Tags             []string     `json:"tags"`
	WhatsAppChat     *string      `json:"whatsapp_chat_name,omitempty"`
	WhatsAppMessage  *string      `json:"whatsapp_message_id,omitempty"`
	WhatsAppPhone    *string      `json:"whatsapp_phone_number,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TimeEntry is one tracked session. EndTime and DurationMinutes stay nil
// while the timer runs.
type TimeEntry struct {
	ID              string     `json:"id"`
	TaskID          string     `json:"task_id"`
	UserID          string     `json:"user_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	EntryType       EntryType  `json:"entry_type"`
	Note            *string    `json:"note,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Running reports whether the entry is an active timer.
func (e TimeEntry) Running() bool {
	return e.EndTime == nil
}

// TimeEntryDetail is a TimeEntry joined with its user and task labels.
type TimeEntryDetail struct {
	TimeEntry
	UserName  *string `json:"user_name,omitempty"`
	TaskTitle *string `json:"task_title,omitempty"`
}

// ChecklistItem is a sub-item of a task, ordered by Position.
type ChecklistItem struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is a board user.
type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DashboardStats summarises the board for the landing view.
type DashboardStats struct {
	Pending      int `json:"pending"`
	InProgress   int `json:"in_progress"`
	Blocked      int `json:"blocked"`
	Completed    int `json:"completed"`
	Overdue      int `json:"overdue"`
	MinutesToday int `json:"minutes_today"`
	MinutesWeek  int `json:"minutes_week"`
}
