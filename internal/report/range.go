package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/database"
	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/util"
)

// Range presets.
const (
	PresetWeek      = "week"
	PresetLastWeek  = "last-week"
	PresetMonth     = "month"
	PresetLastMonth = "last-month"
	PresetCustom    = "custom"
)

// Range is an inclusive reporting window.
type Range struct {
	Preset string    `json:"preset"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
}

// Resolve turns a preset into concrete bounds in loc. Weeks start on
// Monday. An empty preset means the current week; custom needs from and to
// and runs through the end of the to day.
func Resolve(preset string, now time.Time, loc *time.Location, from, to time.Time) (Range, error) {
	if loc == nil {
		loc = time.Local
	}
	preset = strings.ToLower(strings.TrimSpace(preset))
	if preset == "" {
		preset = PresetWeek
	}
	r := Range{Preset: preset}
	switch preset {
	case PresetWeek:
		r.From = util.StartOfWeek(now, loc)
		r.To = r.From.AddDate(0, 0, 7).Add(-time.Nanosecond)
	case PresetLastWeek:
		thisWeek := util.StartOfWeek(now, loc)
		r.From = thisWeek.AddDate(0, 0, -7)
		r.To = thisWeek.Add(-time.Nanosecond)
	case PresetMonth:
		r.From = util.StartOfMonth(now, loc)
		r.To = r.From.AddDate(0, 1, 0).Add(-time.Nanosecond)
	case PresetLastMonth:
		thisMonth := util.StartOfMonth(now, loc)
		r.From = thisMonth.AddDate(0, -1, 0)
		r.To = thisMonth.Add(-time.Nanosecond)
	case PresetCustom:
		if from.IsZero() || to.IsZero() {
			return Range{}, models.Invalid("range", "custom range needs both from and to")
		}
		r.From = util.StartOfDay(from, loc)
		r.To = util.EndOfDay(to, loc)
		if r.To.Before(r.From) {
			return Range{}, models.Invalid("range", "from is after to")
		}
	default:
		return Range{}, models.Invalid("preset", "unknown preset %q", preset)
	}
	return r, nil
}

// Filter narrows a report to a window and optionally one user or task.
type Filter struct {
	Range  Range
	UserID string
	TaskID string
}

// Query builds the store query; running timers are never reported.
func (f Filter) Query() *database.TimeEntryQuery {
	q := database.NewTimeEntryQuery().WhereCompleted()
	if !f.Range.From.IsZero() {
		q.WhereStartFrom(f.Range.From)
	}
	if !f.Range.To.IsZero() {
		q.WhereStartTo(f.Range.To)
	}
	if f.UserID != "" {
		q.WhereUser(f.UserID)
	}
	if f.TaskID != "" {
		q.WhereTask(f.TaskID)
	}
	return q
}

// EntrySource lists detailed time entries.
type EntrySource interface {
	ListTimeEntryDetails(ctx context.Context, q *database.TimeEntryQuery) ([]models.TimeEntryDetail, error)
}

func Fetch(ctx context.Context, src EntrySource, f Filter) ([]models.TimeEntryDetail, error) {
	entries, err := src.ListTimeEntryDetails(ctx, f.Query())
	if err != nil {
		return nil, fmt.Errorf("fetch report entries: %w", err)
	}
	return entries, nil
}
