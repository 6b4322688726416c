package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

func setupTestDB(t *testing.T, ctx context.Context) *Database {
	t.Helper()
	return setupTestDBWithDriver(t, ctx, DriverCGO)
}

func setupTestDBWithDriver(t *testing.T, ctx context.Context, driver string) *Database {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := Open(ctx, dbPath, Options{Driver: driver})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("db close failed: %v", err)
		}
	})
	return db
}

type TestDataBuilder struct {
	t        *testing.T
	ctx      context.Context
	db       *Database
	profiles []models.Profile
	tasks    []models.Task
}

func NewTestDataBuilder(t *testing.T) *TestDataBuilder {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	return &TestDataBuilder{t: t, ctx: ctx, db: db}
}

func (b *TestDataBuilder) WithProfile(name string) *TestDataBuilder {
	b.t.Helper()
	p, err := b.db.CreateProfile(b.ctx, models.Profile{
		FullName: name,
		Email:    name + "@example.com",
		Active:   true,
	})
	if err != nil {
		b.t.Fatalf("CreateProfile failed: %v", err)
	}
	b.profiles = append(b.profiles, p)
	return b
}

func (b *TestDataBuilder) WithTask(title string, status models.TaskStatus) *TestDataBuilder {
	b.t.Helper()
	if len(b.profiles) == 0 {
		b.WithProfile("owner")
	}
	task, err := b.db.CreateTask(b.ctx, models.Task{
		Title:     title,
		Status:    status,
		CreatorID: b.profiles[0].ID,
	})
	if err != nil {
		b.t.Fatalf("CreateTask failed: %v", err)
	}
	b.tasks = append(b.tasks, task)
	return b
}

// WithCompletedEntry logs minutes on the latest task for the first profile.
func (b *TestDataBuilder) WithCompletedEntry(start time.Time, minutes int) *TestDataBuilder {
	b.t.Helper()
	if len(b.tasks) == 0 {
		b.WithTask("Task", models.TaskStatusPending)
	}
	end := start.Add(time.Duration(minutes) * time.Minute)
	_, err := b.db.InsertTimeEntry(b.ctx, models.TimeEntry{
		TaskID:          b.Task().ID,
		UserID:          b.Profile().ID,
		StartTime:       start,
		EndTime:         &end,
		DurationMinutes: util.Ptr(minutes),
		EntryType:       models.EntryManual,
	})
	if err != nil {
		b.t.Fatalf("InsertTimeEntry failed: %v", err)
	}
	return b
}

func (b *TestDataBuilder) Build() *Database {
	return b.db
}

func (b *TestDataBuilder) Profile() models.Profile {
	if len(b.profiles) == 0 {
		return models.Profile{}
	}
	return b.profiles[0]
}

func (b *TestDataBuilder) Task() models.Task {
	if len(b.tasks) == 0 {
		return models.Task{}
	}
	return b.tasks[len(b.tasks)-1]
}
