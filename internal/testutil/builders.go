package testutil

import (
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

// TaskBuilder provides fluent API for creating test tasks.
type TaskBuilder struct {
	task models.Task
}

func NewTask() *TaskBuilder {
	return &TaskBuilder{
		task: models.Task{
			Title:     "Test Task",
			Status:    models.TaskStatusPending,
			Priority:  models.PriorityMedium,
			Origin:    models.OriginManual,
			Tags:      []string{},
			CreatedAt: time.Now(),
		},
	}
}

func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.task.Title = title
	return b
}

func (b *TaskBuilder) WithStatus(s models.TaskStatus) *TaskBuilder {
	b.task.Status = s
	return b
}

func (b *TaskBuilder) WithPriority(p models.TaskPriority) *TaskBuilder {
	b.task.Priority = p
	return b
}

func (b *TaskBuilder) WithTags(tags ...string) *TaskBuilder {
	b.task.Tags = util.NormalizeTags(tags)
	return b
}

func (b *TaskBuilder) WithCreator(id string) *TaskBuilder {
	b.task.CreatorID = id
	return b
}

func (b *TaskBuilder) WithResponsible(id string) *TaskBuilder {
	b.task.ResponsibleID = &id
	return b
}

func (b *TaskBuilder) Build() models.Task {
	return b.task
}

// EntryBuilder provides fluent API for creating detailed time entries.
type EntryBuilder struct {
	entry models.TimeEntryDetail
}

func NewEntry() *EntryBuilder {
	return &EntryBuilder{
		entry: models.TimeEntryDetail{
			TimeEntry: models.TimeEntry{
				StartTime: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),
				EntryType: models.EntryAutomatic,
			},
		},
	}
}

func (b *EntryBuilder) WithID(id string) *EntryBuilder {
	b.entry.ID = id
	return b
}

func (b *EntryBuilder) WithUser(name string) *EntryBuilder {
	b.entry.UserName = &name
	return b
}

func (b *EntryBuilder) WithTask(title string) *EntryBuilder {
	b.entry.TaskTitle = &title
	return b
}

func (b *EntryBuilder) StartingAt(t time.Time) *EntryBuilder {
	b.entry.StartTime = t
	return b
}

// WithMinutes completes the entry with the given duration.
func (b *EntryBuilder) WithMinutes(m int) *EntryBuilder {
	end := b.entry.StartTime.Add(time.Duration(m) * time.Minute)
	b.entry.EndTime = &end
	b.entry.DurationMinutes = &m
	return b
}

func (b *EntryBuilder) Build() models.TimeEntryDetail {
	return b.entry
}

// ProfileBuilder provides fluent API for creating test profiles.
type ProfileBuilder struct {
	profile models.Profile
}

func NewProfile() *ProfileBuilder {
	return &ProfileBuilder{
		profile: models.Profile{
			FullName: "Test User",
			Email:    "test@example.com",
			Role:     models.RoleUser,
			Active:   true,
		},
	}
}

func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.profile.FullName = name
	return b
}

func (b *ProfileBuilder) WithEmail(email string) *ProfileBuilder {
	b.profile.Email = email
	return b
}

func (b *ProfileBuilder) WithRole(r models.Role) *ProfileBuilder {
	b.profile.Role = r
	return b
}

func (b *ProfileBuilder) Inactive() *ProfileBuilder {
	b.profile.Active = false
	return b
}

func (b *ProfileBuilder) Build() models.Profile {
	return b.profile
}
