package database

import (
	"context"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
)

// TaskRepository defines task-related database operations.
type TaskRepository interface {
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	CreateTasks(ctx context.Context, tasks []models.Task) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	ListTasks(ctx context.Context, q *TaskQuery) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, u TaskUpdate) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (models.Task, error)
	PromoteTaskStatus(ctx context.Context, id string, from, to models.TaskStatus) (bool, error)
	DeleteTask(ctx context.Context, id string) error
	DashboardStats(ctx context.Context, userID string, now time.Time, loc *time.Location) (models.DashboardStats, error)
}

// TimeEntryRepository defines time-entry database operations.
type TimeEntryRepository interface {
	InsertTimeEntry(ctx context.Context, e models.TimeEntry) (models.TimeEntry, error)
	GetTimeEntry(ctx context.Context, id string) (models.TimeEntry, error)
	ActiveTimeEntry(ctx context.Context, taskID, userID string) (*models.TimeEntry, error)
	ActiveTimeEntriesForUser(ctx context.Context, userID string) ([]models.TimeEntryDetail, error)
	FinishTimeEntry(ctx context.Context, id string, end time.Time, minutes int) (models.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) error
	ListTimeEntryDetails(ctx context.Context, q *TimeEntryQuery) ([]models.TimeEntryDetail, error)
}

// ChecklistRepository defines checklist operations.
type ChecklistRepository interface {
	AddChecklistItem(ctx context.Context, taskID, text string) (models.ChecklistItem, error)
	ListChecklist(ctx context.Context, taskID string) ([]models.ChecklistItem, error)
	ToggleChecklistItem(ctx context.Context, id string) (models.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, id string) error
}

// CommentRepository defines comment operations.
type CommentRepository interface {
	AddComment(ctx context.Context, taskID, authorID, text string) (models.Comment, error)
	ListComments(ctx context.Context, taskID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id, authorID string) error
}

// ProfileRepository defines profile operations.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error)
	GetProfile(ctx context.Context, id string) (models.Profile, error)
	ListProfiles(ctx context.Context, activeOnly bool) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, p models.Profile) (models.Profile, error)
	SetProfileActive(ctx context.Context, id string, active bool) error
}

// Repository combines all repository interfaces.
type Repository interface {
	TaskRepository
	TimeEntryRepository
	ChecklistRepository
	CommentRepository
	ProfileRepository
	Feed() *Feed
}

var _ Repository = (*Database)(nil)
