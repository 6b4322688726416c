// Package report aggregates tracked time into totals, per-group breakdowns
// and CSV or PDF exports. Everything except Fetch is a pure function of its
// input entries.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/models"
)

// DayTotal is the tracked time of one calendar day.
type DayTotal struct {
	Date    time.Time `json:"date"`
	Label   string    `json:"label"`
	Minutes int       `json:"minutes"`
	Hours   float64   `json:"hours"`
}

// GroupTotal is one row of a per-user or per-task breakdown.
type GroupTotal struct {
	Name    string  `json:"name"`
	Minutes int     `json:"minutes"`
	Hours   float64 `json:"hours"`
}

// Summary is the full aggregate shown by the reports screen.
type Summary struct {
	TotalMinutes        int            `json:"total_minutes"`
	TotalHours          float64        `json:"total_hours"`
	Entries             int            `json:"entries"`
	ByUser              map[string]int `json:"by_user"`
	ByTask              map[string]int `json:"by_task"`
	ByDay               []DayTotal     `json:"by_day"`
	AverageHoursPerUser int            `json:"average_hours_per_user"`
	AverageHoursPerTask int            `json:"average_hours_per_task"`
}

func minutesOf(e models.TimeEntryDetail) int {
	if e.DurationMinutes == nil {
		return 0
	}
	return *e.DurationMinutes
}

func labelOr(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}

// TotalMinutes sums entry durations; running entries count as zero.
func TotalMinutes(entries []models.TimeEntryDetail) int {
	total := 0
	for _, e := range entries {
		total += minutesOf(e)
	}
	return total
}

// GroupByUser totals minutes per user name.
func GroupByUser(entries []models.TimeEntryDetail) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		out[labelOr(e.UserName, config.UnassignedLabel)] += minutesOf(e)
	}
	return out
}

// GroupByTask totals minutes per task title.
func GroupByTask(entries []models.TimeEntryDetail) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		out[labelOr(e.TaskTitle, config.NoTaskLabel)] += minutesOf(e)
	}
	return out
}

// GroupByDay buckets entries by the local calendar day they started on,
// oldest day first.
func GroupByDay(entries []models.TimeEntryDetail, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.Local
	}
	byDay := make(map[time.Time]int)
	for _, e := range entries {
		t := e.StartTime.In(loc)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		byDay[day] += minutesOf(e)
	}
	days := make([]DayTotal, 0, len(byDay))
	for day, minutes := range byDay {
		days = append(days, DayTotal{
			Date:    day,
			Label:   day.Format(config.DayLabelLayout),
			Minutes: minutes,
			Hours:   RoundHours(minutes),
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}

// RoundHours converts minutes to hours rounded half-up to one decimal.
func RoundHours(minutes int) float64 {
	tenths := (minutes*10 + 30) / 60
	return float64(tenths) / 10
}

// AveragePerGroup is whole hours per group, truncated.
func AveragePerGroup(totalMinutes, groupCount int) int {
	if groupCount <= 0 {
		return 0
	}
	return totalMinutes / groupCount / 60
}

// Ranked orders a breakdown by minutes, largest first, then by name.
func Ranked(groups map[string]int) []GroupTotal {
	out := make([]GroupTotal, 0, len(groups))
	for name, minutes := range groups {
		out = append(out, GroupTotal{Name: name, Minutes: minutes, Hours: RoundHours(minutes)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func Summarize(entries []models.TimeEntryDetail, loc *time.Location) Summary {
	total := TotalMinutes(entries)
	byUser := GroupByUser(entries)
	byTask := GroupByTask(entries)
	return Summary{
		TotalMinutes:        total,
		TotalHours:          RoundHours(total),
		Entries:             len(entries),
		ByUser:              byUser,
		ByTask:              byTask,
		ByDay:               GroupByDay(entries, loc),
		AverageHoursPerUser: AveragePerGroup(total, len(byUser)),
		AverageHoursPerTask: AveragePerGroup(total, len(byTask)),
	}
}
