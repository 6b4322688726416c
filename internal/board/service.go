// Package board holds the task lifecycle rules shared by the HTTP API,
// the CLI and the TUI: validation, defaults, WhatsApp intake, checklist
// and comment handling.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/database"
	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

// NewTask is the input for creating a task.
type NewTask struct {
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Status           models.TaskStatus   `json:"status"`
	Priority         models.TaskPriority `json:"priority"`
	ResponsibleID    string              `json:"responsible_id"`
	CreatorID        string              `json:"creator_id"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
	DueDate          *time.Time          `json:"due_date"`
	Tags             []string            `json:"tags"`
	WhatsAppChat     string              `json:"whatsapp_chat_name"`
	WhatsAppMessage  string              `json:"whatsapp_message_id"`
	WhatsAppPhone    string              `json:"whatsapp_phone_number"`
}

// Poll is a WhatsApp poll whose options each become a task.
type Poll struct {
	Title           string              `json:"title"`
	Options         string              `json:"options"`
	Priority        models.TaskPriority `json:"priority"`
	ResponsibleID   string              `json:"responsible_id"`
	CreatorID       string              `json:"creator_id"`
	DueDate         *time.Time          `json:"due_date"`
	WhatsAppChat    string              `json:"whatsapp_chat_name"`
	WhatsAppMessage string              `json:"whatsapp_message_id"`
	WhatsAppPhone   string              `json:"whatsapp_phone_number"`
}

// TaskDetail is a task with its checklist and comment thread.
type TaskDetail struct {
	models.Task
	Checklist []models.ChecklistItem `json:"checklist"`
	Comments  []models.Comment       `json:"comments"`
}

type Service struct {
	repo   database.Repository
	clock  func() time.Time
	loc    *time.Location
	logger *slog.Logger
}

type Option func(*Service)

func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithLocation sets the zone used for "today" and "this week" on the dashboard.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(repo database.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, clock: time.Now, loc: time.Local, logger: util.DiscardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) buildTask(in NewTask, origin models.TaskOrigin) (models.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, models.Invalid("title", "is required")
	}
	if strings.TrimSpace(in.CreatorID) == "" {
		return models.Task{}, models.Invalid("creator_id", "is required")
	}
	if in.Status == "" {
		in.Status = models.TaskStatusPending
	}
	if !in.Status.Valid() {
		return models.Task{}, models.Invalid("status", "unknown status %q", in.Status)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !in.Priority.Valid() {
		return models.Task{}, models.Invalid("priority", "unknown priority %q", in.Priority)
	}
	if in.EstimatedMinutes < 0 {
		return models.Task{}, models.Invalid("estimated_minutes", "must not be negative")
	}

	tags := util.NormalizeTags(append(append([]string{}, in.Tags...), util.ExtractTags(in.Description)...))
	t := models.Task{
		Title:           title,
		Description:     strings.TrimSpace(in.Description),
		Status:          in.Status,
		Priority:        in.Priority,
		Origin:          origin,
		ResponsibleID:   util.OptionalString(in.ResponsibleID),
		CreatorID:       in.CreatorID,
		DueDate:         in.DueDate,
		Tags:            tags,
		WhatsAppChat:    util.OptionalString(in.WhatsAppChat),
		WhatsAppMessage: util.OptionalString(in.WhatsAppMessage),
		WhatsAppPhone:   util.OptionalString(in.WhatsAppPhone),
	}
	if in.EstimatedMinutes > 0 {
		t.EstimatedMinutes = util.Ptr(in.EstimatedMinutes)
	}
	return t, nil
}

// CreateTask creates a manually entered task.
func (s *Service) CreateTask(ctx context.Context, in NewTask) (models.Task, error) {
	t, err := s.buildTask(in, models.OriginManual)
	if err != nil {
		return models.Task{}, err
	}
	created, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.logger.Info("task created", slog.String("task_id", created.ID), slog.String("origin", string(created.Origin)))
	return created, nil
}

// CreateFromWhatsAppMessage creates a task whose description carries the
// forwarded message below a separator.
func (s *Service) CreateFromWhatsAppMessage(ctx context.Context, in NewTask, message string) (models.Task, error) {
	msg := strings.TrimSpace(message)
	if err := requireFields(
		"title", in.Title,
		"whatsapp_chat_name", in.WhatsAppChat,
		"whatsapp_message", msg,
	); err != nil {
		return models.Task{}, err
	}
	in.Description = strings.TrimRight(in.Description, " \n") + config.WhatsAppMessageSeparator + msg
	t, err := s.buildTask(in, models.OriginWhatsAppMessage)
	if err != nil {
		return models.Task{}, err
	}
	created, err := s.repo.CreateTask(ctx, t)
	if err != nil {
		return models.Task{}, fmt.Errorf("create task from whatsapp message: %w", err)
	}
	s.logger.Info("task created", slog.String("task_id", created.ID), slog.String("origin", string(created.Origin)))
	return created, nil
}

// requireFields takes (field, value) pairs and reports every blank value.
func requireFields(pairs ...string) error {
	var errs []error
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			errs = append(errs, models.Invalid(pairs[i], "is required"))
		}
	}
	return errors.Join(errs...)
}

// PollOptions splits poll text into trimmed, non-empty option lines.
func PollOptions(text string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// CreateFromPoll creates one task per poll option in a single transaction.
func (s *Service) CreateFromPoll(ctx context.Context, p Poll) ([]models.Task, error) {
	if err := requireFields("title", p.Title, "whatsapp_chat_name", p.WhatsAppChat); err != nil {
		return nil, err
	}
	options := PollOptions(p.Options)
	if len(options) == 0 {
		return nil, models.Invalid("options", "at least one option is required")
	}
	description := fmt.Sprintf(config.PollDescriptionFormat, strings.TrimSpace(p.Title))
	tasks := make([]models.Task, 0, len(options))
	for _, opt := range options {
		t, err := s.buildTask(NewTask{
			Title:           opt,
			Description:     description,
			Priority:        p.Priority,
			ResponsibleID:   p.ResponsibleID,
			CreatorID:       p.CreatorID,
			DueDate:         p.DueDate,
			WhatsAppChat:    p.WhatsAppChat,
			WhatsAppMessage: p.WhatsAppMessage,
			WhatsAppPhone:   p.WhatsAppPhone,
		}, models.OriginWhatsAppPoll)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	created, err := s.repo.CreateTasks(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("create tasks from poll: %w", err)
	}
	s.logger.Info("poll imported", slog.Int("tasks", len(created)))
	return created, nil
}

// ListTasks lists tasks matching a search string such as
// "status:pending tag:urgent invoice".
func (s *Service) ListTasks(ctx context.Context, search string) ([]models.Task, error) {
	q := database.NewTaskQuery().ApplySearch(util.ParseSearchQuery(search))
	tasks, err := s.repo.ListTasks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Service) Task(ctx context.Context, id string) (TaskDetail, error) {
	t, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return TaskDetail{}, err
	}
	items, err := s.repo.ListChecklist(ctx, id)
	if err != nil {
		return TaskDetail{}, err
	}
	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return TaskDetail{}, err
	}
	return TaskDetail{Task: t, Checklist: items, Comments: comments}, nil
}

// UpdateTask validates and applies a partial update.
func (s *Service) UpdateTask(ctx context.Context, id string, u database.TaskUpdate) (models.Task, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return models.Task{}, models.Invalid("title", "is required")
	}
	if u.Priority != nil && !u.Priority.Valid() {
		return models.Task{}, models.Invalid("priority", "unknown priority %q", *u.Priority)
	}
	t, err := s.repo.UpdateTask(ctx, id, u)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// ChangeStatus moves a task to any status.
func (s *Service) ChangeStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error) {
	if !status.Valid() {
		return models.Task{}, models.Invalid("status", "unknown status %q", status)
	}
	t, err := s.repo.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return models.Task{}, fmt.Errorf("change status: %w", err)
	}
	s.logger.Info("task status changed", slog.String("task_id", id), slog.String("status", string(status)))
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.logger.Info("task deleted", slog.String("task_id", id))
	return nil
}

func (s *Service) AddChecklistItem(ctx context.Context, taskID, text string) (models.ChecklistItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChecklistItem{}, models.Invalid("text", "is required")
	}
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return models.ChecklistItem{}, fmt.Errorf("add checklist item: %w", err)
	}
	return s.repo.AddChecklistItem(ctx, taskID, text)
}

func (s *Service) ToggleChecklistItem(ctx context.Context, id string) (models.ChecklistItem, error) {
	return s.repo.ToggleChecklistItem(ctx, id)
}

func (s *Service) DeleteChecklistItem(ctx context.Context, id string) error {
	return s.repo.DeleteChecklistItem(ctx, id)
}

// AddComment appends a comment to a task's thread.
func (s *Service) AddComment(ctx context.Context, taskID, authorID, text string) (models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, models.Invalid("text", "is required")
	}
	if strings.TrimSpace(authorID) == "" {
		return models.Comment{}, models.Invalid("author_id", "is required")
	}
	if _, err := s.repo.GetTask(ctx, taskID); err != nil {
		return models.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return s.repo.AddComment(ctx, taskID, authorID, text)
}

func (s *Service) Comments(ctx context.Context, taskID string) ([]models.Comment, error) {
	return s.repo.ListComments(ctx, taskID)
}

// DeleteComment removes a comment written by actorID. Other users' comments
// report models.ErrNotFound.
func (s *Service) DeleteComment(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return models.Invalid("author_id", "is required")
	}
	return s.repo.DeleteComment(ctx, id, actorID)
}

// Users lists active profiles by name.
func (s *Service) Users(ctx context.Context) ([]models.Profile, error) {
	return s.repo.ListProfiles(ctx, true)
}

// CreateUser registers a profile.
func (s *Service) CreateUser(ctx context.Context, name, email string, role models.Role) (models.Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" {
		return models.Profile{}, models.Invalid("full_name", "is required")
	}
	if !strings.Contains(email, "@") {
		return models.Profile{}, models.Invalid("email", "is not a valid address")
	}
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return models.Profile{}, models.Invalid("role", "unknown role %q", role)
	}
	return s.repo.CreateProfile(ctx, models.Profile{FullName: name, Email: email, Role: role, Active: true})
}

// Dashboard counts tasks by status and the user's tracked minutes.
func (s *Service) Dashboard(ctx context.Context, userID string) (models.DashboardStats, error) {
	return s.repo.DashboardStats(ctx, userID, s.clock(), s.loc)
}
