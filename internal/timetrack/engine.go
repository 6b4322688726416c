// Package timetrack runs per-user task timers on top of the store.
//
// The store row with a NULL end is the only record of a running timer;
// elapsed time is always derived from its start timestamp.
package timetrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

// Store is the persistence the engine needs.
//
//go:generate mockgen -source=engine.go -destination=mock_store_test.go -package=timetrack
type Store interface {
	GetTask(ctx context.Context, id string) (models.Task, error)
	PromoteTaskStatus(ctx context.Context, id string, from, to models.TaskStatus) (bool, error)
	InsertTimeEntry(ctx context.Context, e models.TimeEntry) (models.TimeEntry, error)
	GetTimeEntry(ctx context.Context, id string) (models.TimeEntry, error)
	ActiveTimeEntry(ctx context.Context, taskID, userID string) (*models.TimeEntry, error)
	ActiveTimeEntriesForUser(ctx context.Context, userID string) ([]models.TimeEntryDetail, error)
	FinishTimeEntry(ctx context.Context, id string, end time.Time, minutes int) (models.TimeEntry, error)
}

// ActiveTimer is a running entry with its elapsed time at lookup.
type ActiveTimer struct {
	Entry     models.TimeEntry `json:"entry"`
	TaskTitle string           `json:"task_title,omitempty"`
	Elapsed   time.Duration    `json:"elapsed"`
}

// ManualEntry is a directly entered block of work.
type ManualEntry struct {
	TaskID  string
	UserID  string
	Start   time.Time
	Minutes int
	Note    string
}

type Engine struct {
	store  Store
	clock  func() time.Time
	logger *slog.Logger
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, clock: time.Now, logger: util.DiscardLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock()
}

// StartTimer opens a running entry for (task, user). It fails with
// models.ErrConflict when one is already open. A pending task moves to
// in_progress.
func (e *Engine) StartTimer(ctx context.Context, taskID, userID string) (models.TimeEntry, error) {
	if err := requireIDs(taskID, userID); err != nil {
		return models.TimeEntry{}, err
	}
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return models.TimeEntry{}, fmt.Errorf("start timer: %w", err)
	}
	active, err := e.store.ActiveTimeEntry(ctx, taskID, userID)
	if err != nil {
		return models.TimeEntry{}, fmt.Errorf("start timer: %w", err)
	}
	if active != nil {
		return models.TimeEntry{}, fmt.Errorf("start timer: %w", models.ErrConflict)
	}

	entry, err := e.store.InsertTimeEntry(ctx, models.TimeEntry{
		TaskID:    taskID,
		UserID:    userID,
		StartTime: e.clock(),
		EntryType: models.EntryAutomatic,
	})
	if err != nil {
		return models.TimeEntry{}, fmt.Errorf("start timer: %w", err)
	}

	if task.Status == models.TaskStatusPending {
		if _, err := e.store.PromoteTaskStatus(ctx, taskID, models.TaskStatusPending, models.TaskStatusInProgress); err != nil {
			util.LogError(e.logger, "promote task to in_progress", err)
		}
	}
	e.logger.Info("timer started",
		slog.String("entry_id", entry.ID), slog.String("task_id", taskID), slog.String("user_id", userID))
	return entry, nil
}

// StopTimer closes a running entry, recording whole elapsed minutes.
// Stopping is terminal: a stopped entry fails with models.ErrAlreadyStopped.
func (e *Engine) StopTimer(ctx context.Context, entryID string) (models.TimeEntry, error) {
	if strings.TrimSpace(entryID) == "" {
		return models.TimeEntry{}, models.Invalid("entry_id", "is required")
	}
	entry, err := e.store.GetTimeEntry(ctx, entryID)
	if err != nil {
		return models.TimeEntry{}, fmt.Errorf("stop timer: %w", err)
	}
	if !entry.Running() {
		return models.TimeEntry{}, fmt.Errorf("stop timer: %w", models.ErrAlreadyStopped)
	}
	end := e.clock()
	minutes := DurationMinutes(entry.StartTime, end)
	stopped, err := e.store.FinishTimeEntry(ctx, entryID, end, minutes)
	if err != nil {
		return models.TimeEntry{}, fmt.Errorf("stop timer: %w", err)
	}
	e.logger.Info("timer stopped",
		slog.String("entry_id", entryID), slog.String("task_id", entry.TaskID), slog.Int("minutes", minutes))
	return stopped, nil
}

// ResumeActiveTimer returns the running timer for (task, user), or nil.
func (e *Engine) ResumeActiveTimer(ctx context.Context, taskID, userID string) (*ActiveTimer, error) {
	if err := requireIDs(taskID, userID); err != nil {
		return nil, err
	}
	entry, err := e.store.ActiveTimeEntry(ctx, taskID, userID)
	if err != nil {
		return nil, fmt.Errorf("resume timer: %w", err)
	}
	if entry == nil {
		return nil, nil
	}
	return &ActiveTimer{Entry: *entry, Elapsed: Elapsed(e.clock(), entry.StartTime)}, nil
}

// ActiveTimers lists every running timer of a user.
func (e *Engine) ActiveTimers(ctx context.Context, userID string) ([]ActiveTimer, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, models.Invalid("user_id", "is required")
	}
	entries, err := e.store.ActiveTimeEntriesForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("active timers: %w", err)
	}
	now := e.clock()
	timers := make([]ActiveTimer, 0, len(entries))
	for _, d := range entries {
		timers = append(timers, ActiveTimer{
			Entry:     d.TimeEntry,
			TaskTitle: util.Deref(d.TaskTitle),
			Elapsed:   Elapsed(now, d.StartTime),
		})
	}
	return timers, nil
}

// AddManualEntry stores an already finished block of work.
func (e *Engine) AddManualEntry(ctx context.Context, m ManualEntry) (models.TimeEntry, error) {
	if err := requireIDs(m.TaskID, m.UserID); err != nil {
		return models.TimeEntry{}, err
	}
	if m.Minutes <= 0 {
		return models.TimeEntry{}, models.Invalid("minutes", "must be positive")
	}
	if m.Start.IsZero() {
		return models.TimeEntry{}, models.Invalid("start_time", "is required")
	}
	if _, err := e.store.GetTask(ctx, m.TaskID); err != nil {
		return models.TimeEntry{}, fmt.Errorf("manual entry: %w", err)
	}
	end := m.Start.Add(time.Duration(m.Minutes) * time.Minute)
	entry, err := e.store.InsertTimeEntry(ctx, models.TimeEntry{
		TaskID:          m.TaskID,
		UserID:          m.UserID,
		StartTime:       m.Start,
		EndTime:         &end,
		DurationMinutes: util.Ptr(m.Minutes),
		EntryType:       models.EntryManual,
		Note:            util.OptionalString(m.Note),
	})
	if err != nil {
		return models.TimeEntry{}, fmt.Errorf("manual entry: %w", err)
	}
	return entry, nil
}

// Elapsed is the wall-clock time since start, never negative.
func Elapsed(now, start time.Time) time.Duration {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// DurationMinutes truncates the span to whole minutes: 90s is 1, 120s is 2.
func DurationMinutes(start, end time.Time) int {
	return int(Elapsed(end, start) / time.Minute)
}

func requireIDs(taskID, userID string) error {
	var errs []error
	if strings.TrimSpace(taskID) == "" {
		errs = append(errs, models.Invalid("task_id", "is required"))
	}
	if strings.TrimSpace(userID) == "" {
		errs = append(errs, models.Invalid("user_id", "is required"))
	}
	return errors.Join(errs...)
}
