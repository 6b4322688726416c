package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

func TestInitDB_MigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if err := db.Close(); err != nil {
		t.Fatalf("db close failed: %v", err)
	}
	again, err := Open(ctx, db.dbFile, Options{})
	if err != nil {
		t.Fatalf("Open second run failed: %v", err)
	}
	_ = again.Close()
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), t.TempDir()+"/x.db", Options{Driver: "postgres"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestPureGoDriver(t *testing.T) {
	ctx := context.Background()
	db := setupTestDBWithDriver(t, ctx, DriverPure)
	p, err := db.CreateProfile(ctx, models.Profile{FullName: "Ana", Email: "ana@example.com", Active: true})
	if err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	task, err := db.CreateTask(ctx, models.Task{Title: "Pure", CreatorID: p.ID})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := db.InsertTimeEntry(ctx, models.TimeEntry{TaskID: task.ID, UserID: p.ID, StartTime: time.Now()}); err != nil {
		t.Fatalf("InsertTimeEntry failed: %v", err)
	}
	_, err = db.InsertTimeEntry(ctx, models.TimeEntry{TaskID: task.ID, UserID: p.ID, StartTime: time.Now()})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithProfile("ana")
	db := b.Build()

	due := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	task, err := db.CreateTask(ctx, models.Task{
		Title:         "Preparar factura",
		CreatorID:     b.Profile().ID,
		ResponsibleID: util.Ptr(b.Profile().ID),
		DueDate:       &due,
		Tags:          []string{"cliente"},
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != models.TaskStatusPending || task.Priority != models.PriorityMedium || task.Origin != models.OriginManual {
		t.Fatalf("unexpected defaults: %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Fatalf("DueDate = %v, want %v", task.DueDate, due)
	}

	done, err := db.UpdateTaskStatus(ctx, task.ID, models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected completed_at to be set")
	}
	reopened, err := db.UpdateTaskStatus(ctx, task.ID, models.TaskStatusPending)
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Fatalf("expected completed_at to be cleared")
	}

	title := "Enviar factura"
	updated, err := db.UpdateTask(ctx, task.ID, TaskUpdate{Title: &title, Tags: &[]string{"Urgente", "urgente"}})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Title != title || len(updated.Tags) != 1 || updated.Tags[0] != "urgente" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := db.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if _, err := db.GetTask(ctx, task.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteTask(ctx, task.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestPromoteTaskStatusOnlyFromPending(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithTask("Blocked", models.TaskStatusBlocked)
	db := b.Build()

	changed, err := db.PromoteTaskStatus(ctx, b.Task().ID, models.TaskStatusPending, models.TaskStatusInProgress)
	if err != nil {
		t.Fatalf("PromoteTaskStatus failed: %v", err)
	}
	if changed {
		t.Fatalf("blocked task must not be promoted")
	}
}

func TestListTasksWithSearch(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).
		WithTask("Llamar proveedor", models.TaskStatusPending).
		WithTask("Revisar contrato", models.TaskStatusBlocked).
		WithTask("Llamar cliente", models.TaskStatusCompleted)
	db := b.Build()

	tasks, err := db.ListTasks(ctx, NewTaskQuery().ApplySearch(util.ParseSearchQuery("status:pending status:completed llamar")))
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	blocked, err := db.ListTasks(ctx, NewTaskQuery().WhereStatus(models.TaskStatusBlocked))
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(blocked) != 1 || blocked[0].Title != "Revisar contrato" {
		t.Fatalf("unexpected blocked tasks: %+v", blocked)
	}
}

func TestActiveTimerUniqueness(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithProfile("ana").WithTask("Timer", models.TaskStatusPending)
	db := b.Build()
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	entry, err := db.InsertTimeEntry(ctx, models.TimeEntry{TaskID: b.Task().ID, UserID: b.Profile().ID, StartTime: start})
	if err != nil {
		t.Fatalf("InsertTimeEntry failed: %v", err)
	}
	_, err = db.InsertTimeEntry(ctx, models.TimeEntry{TaskID: b.Task().ID, UserID: b.Profile().ID, StartTime: start})
	if !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Bypass the pre-check: the partial unique index still rejects the row.
	_, err = db.DB.ExecContext(ctx, `INSERT INTO time_entries (id, task_id, user_id, start_time, entry_type, created_at)
		VALUES ('raw', ?, ?, ?, 'automatic', ?)`, b.Task().ID, b.Profile().ID, formatTime(start), formatTime(start))
	if wrapped := wrapErr(EntityTimeEntry, "insert", "raw", err); !errors.Is(wrapped, models.ErrConflict) {
		t.Fatalf("expected index violation mapped to ErrConflict, got %v", err)
	}

	end := start.Add(95 * time.Second)
	stopped, err := db.FinishTimeEntry(ctx, entry.ID, end, 1)
	if err != nil {
		t.Fatalf("FinishTimeEntry failed: %v", err)
	}
	if stopped.EndTime == nil || stopped.DurationMinutes == nil || *stopped.DurationMinutes != 1 {
		t.Fatalf("unexpected stopped entry: %+v", stopped)
	}
	if _, err := db.FinishTimeEntry(ctx, entry.ID, end, 1); !errors.Is(err, models.ErrAlreadyStopped) {
		t.Fatalf("expected ErrAlreadyStopped, got %v", err)
	}
	if _, err := db.FinishTimeEntry(ctx, "missing", end, 1); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := db.InsertTimeEntry(ctx, models.TimeEntry{TaskID: b.Task().ID, UserID: b.Profile().ID, StartTime: end}); err != nil {
		t.Fatalf("restart after stop failed: %v", err)
	}
}

func TestTotalMinutesTracksCompletedEntries(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	b := NewTestDataBuilder(t).
		WithTask("Sum", models.TaskStatusInProgress).
		WithCompletedEntry(start, 30).
		WithCompletedEntry(start.Add(time.Hour), 45)
	db := b.Build()

	task, err := db.GetTask(ctx, b.Task().ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task.TotalMinutes != 75 {
		t.Fatalf("TotalMinutes = %d, want 75", task.TotalMinutes)
	}

	entries, err := db.ListTimeEntryDetails(ctx, NewTimeEntryQuery().WhereTask(task.ID))
	if err != nil {
		t.Fatalf("ListTimeEntryDetails failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserName == nil || *entries[0].UserName != "owner" || entries[0].TaskTitle == nil || *entries[0].TaskTitle != "Sum" {
		t.Fatalf("relation expansion missing: %+v", entries[0])
	}
	if err := db.DeleteTimeEntry(ctx, entries[0].ID); err != nil {
		t.Fatalf("DeleteTimeEntry failed: %v", err)
	}
	task, err = db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task.TotalMinutes != 45 {
		t.Fatalf("TotalMinutes after delete = %d, want 45", task.TotalMinutes)
	}
}

func TestTimeEntryRangeFilter(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	b := NewTestDataBuilder(t).
		WithTask("Range", models.TaskStatusInProgress).
		WithCompletedEntry(day.Add(-time.Hour), 10).
		WithCompletedEntry(day.Add(9*time.Hour), 20).
		WithCompletedEntry(day.Add(30*time.Hour), 30)
	db := b.Build()
	if _, err := db.InsertTimeEntry(ctx, models.TimeEntry{TaskID: b.Task().ID, UserID: b.Profile().ID, StartTime: day.Add(10 * time.Hour)}); err != nil {
		t.Fatalf("InsertTimeEntry failed: %v", err)
	}

	q := NewTimeEntryQuery().
		WhereStartFrom(day).
		WhereStartTo(util.EndOfDay(day, time.UTC)).
		WhereUser(b.Profile().ID).
		WhereCompleted()
	entries, err := db.ListTimeEntryDetails(ctx, q)
	if err != nil {
		t.Fatalf("ListTimeEntryDetails failed: %v", err)
	}
	if len(entries) != 1 || *entries[0].DurationMinutes != 20 {
		t.Fatalf("unexpected filtered entries: %+v", entries)
	}

	running, err := db.ActiveTimeEntriesForUser(ctx, b.Profile().ID)
	if err != nil {
		t.Fatalf("ActiveTimeEntriesForUser failed: %v", err)
	}
	if len(running) != 1 || running[0].EndTime != nil {
		t.Fatalf("unexpected running entries: %+v", running)
	}
}

func TestChecklistPositions(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithTask("Checklist", models.TaskStatusPending)
	db := b.Build()

	first, err := db.AddChecklistItem(ctx, b.Task().ID, "uno")
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	second, err := db.AddChecklistItem(ctx, b.Task().ID, "dos")
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	if first.Position != 0 || second.Position != 1 {
		t.Fatalf("positions = %d, %d; want 0, 1", first.Position, second.Position)
	}

	toggled, err := db.ToggleChecklistItem(ctx, first.ID)
	if err != nil {
		t.Fatalf("ToggleChecklistItem failed: %v", err)
	}
	if !toggled.Done {
		t.Fatalf("expected item to be done")
	}
	if err := db.DeleteChecklistItem(ctx, second.ID); err != nil {
		t.Fatalf("DeleteChecklistItem failed: %v", err)
	}
	third, err := db.AddChecklistItem(ctx, b.Task().ID, "tres")
	if err != nil {
		t.Fatalf("AddChecklistItem failed: %v", err)
	}
	if third.Position != 1 {
		t.Fatalf("position after delete = %d, want 1", third.Position)
	}
	items, err := db.ListChecklist(ctx, b.Task().ID)
	if err != nil {
		t.Fatalf("ListChecklist failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != first.ID || items[1].ID != third.ID {
		t.Fatalf("unexpected checklist order: %+v", items)
	}
}

func TestCommentsAuthorOnlyDelete(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithProfile("ana").WithProfile("luis").WithTask("Comments", models.TaskStatusPending)
	db := b.Build()
	ana, luis := b.profiles[0], b.profiles[1]

	first, err := db.AddComment(ctx, b.Task().ID, ana.ID, "hola")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	db.now = func() time.Time { return time.Now().Add(time.Second) }
	if _, err := db.AddComment(ctx, b.Task().ID, luis.ID, "buenas"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	if err := db.DeleteComment(ctx, first.ID, luis.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-author delete, got %v", err)
	}
	comments, err := db.ListComments(ctx, b.Task().ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 || comments[0].ID != first.ID {
		t.Fatalf("unexpected comments: %+v", comments)
	}
	if err := db.DeleteComment(ctx, first.ID, ana.ID); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
}

func TestProfilesActiveOrderedByName(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithProfile("zoe").WithProfile("ana").WithProfile("luis")
	db := b.Build()
	if err := db.SetProfileActive(ctx, b.profiles[2].ID, false); err != nil {
		t.Fatalf("SetProfileActive failed: %v", err)
	}
	profiles, err := db.ListProfiles(ctx, true)
	if err != nil {
		t.Fatalf("ListProfiles failed: %v", err)
	}
	if len(profiles) != 2 || profiles[0].FullName != "ana" || profiles[1].FullName != "zoe" {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}
}

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC) // Wednesday
	b := NewTestDataBuilder(t).
		WithTask("a", models.TaskStatusPending).
		WithTask("b", models.TaskStatusInProgress).
		WithTask("c", models.TaskStatusCompleted).
		WithCompletedEntry(now.Add(-2*time.Hour), 30).
		WithCompletedEntry(now.AddDate(0, 0, -1), 20).
		WithCompletedEntry(now.AddDate(0, 0, -7), 60)
	db := b.Build()
	past := now.Add(-time.Hour)
	if _, err := db.UpdateTask(ctx, b.tasks[0].ID, TaskUpdate{DueDate: &past}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if _, err := db.UpdateTask(ctx, b.tasks[2].ID, TaskUpdate{DueDate: &past}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	stats, err := db.DashboardStats(ctx, b.Profile().ID, now, time.UTC)
	if err != nil {
		t.Fatalf("DashboardStats failed: %v", err)
	}
	want := models.DashboardStats{Pending: 1, InProgress: 1, Completed: 1, Overdue: 1, MinutesToday: 30, MinutesWeek: 50}
	if stats != want {
		t.Fatalf("DashboardStats = %+v, want %+v", stats, want)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if _, ok, err := db.GetSetting(ctx, "missing"); err != nil || ok {
		t.Fatalf("GetSetting(missing) = %v, %v", ok, err)
	}
	if err := db.SetSetting(ctx, "k", "v1"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := db.SetSetting(ctx, "k", "v2"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	v, ok, err := db.GetSetting(ctx, "k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("GetSetting = %q, %v, %v", v, ok, err)
	}
}

func TestDuplicateProfileEmail(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if _, err := db.CreateProfile(ctx, models.Profile{FullName: "Ana", Email: "ana@example.com", Active: true}); err != nil {
		t.Fatalf("CreateProfile failed: %v", err)
	}
	_, err := db.CreateProfile(ctx, models.Profile{FullName: "Ana B", Email: "ANA@example.com ", Active: true})
	if !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRecompletingKeepsCompletedAt(t *testing.T) {
	ctx := context.Background()
	b := NewTestDataBuilder(t).WithProfile("ana").WithTask("Cerrar mes", models.TaskStatusPending)
	db := b.Build()

	first := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return first }
	done, err := db.UpdateTaskStatus(ctx, b.Task().ID, models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}

	db.now = func() time.Time { return first.Add(48 * time.Hour) }
	again, err := db.UpdateTaskStatus(ctx, b.Task().ID, models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if again.CompletedAt == nil || !again.CompletedAt.Equal(*done.CompletedAt) || !again.CompletedAt.Equal(first) {
		t.Fatalf("completed_at = %v, want %v", again.CompletedAt, first)
	}

	if _, err := db.UpdateTaskStatus(ctx, b.Task().ID, models.TaskStatusBlocked); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	reopened, err := db.UpdateTaskStatus(ctx, b.Task().ID, models.TaskStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if reopened.CompletedAt == nil || !reopened.CompletedAt.Equal(first.Add(48*time.Hour)) {
		t.Fatalf("completed_at after reopen = %v", reopened.CompletedAt)
	}
}
