package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/akyairhashvil/tasktrack/internal/config"
	"github.com/akyairhashvil/tasktrack/internal/models"
	"github.com/akyairhashvil/tasktrack/internal/report"
	"github.com/akyairhashvil/tasktrack/internal/timetrack"
)

// Timers is the slice of the timer engine the screen drives.
type Timers interface {
	ActiveTimers(ctx context.Context, userID string) ([]timetrack.ActiveTimer, error)
	StopTimer(ctx context.Context, entryID string) (models.TimeEntry, error)
	Now() time.Time
}

// --- Messages ---
type TickMsg time.Time

type timersLoadedMsg struct {
	timers []timetrack.ActiveTimer
	err    error
}

type weekLoadedMsg struct {
	days  []report.DayTotal
	total int
	err   error
}

type timerStoppedMsg struct {
	entry models.TimeEntry
	err   error
}

func tickCmd() tea.Cmd {
	return tea.Tick(config.TimerTick, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// TimerModel lists the user's running timers and this week's totals.
type TimerModel struct {
	ctx         context.Context
	timers      Timers
	entries     report.EntrySource
	userID      string
	loc         *time.Location
	table       table.Model
	active      []timetrack.ActiveTimer
	week        []report.DayTotal
	weekTotal   int
	now         time.Time
	lastRefresh time.Time
	err         error
	Message     string
	width       int
}

func NewTimerModel(ctx context.Context, timers Timers, entries report.EntrySource, userID string, loc *time.Location) TimerModel {
	if loc == nil {
		loc = time.Local
	}
	t := table.New(
		table.WithColumns(timerColumns(config.TargetTitleWidth)),
		table.WithFocused(true),
		table.WithHeight(config.MaxVisibleTimers),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderForeground(CurrentTheme.Border).Bold(true)
	styles.Selected = CurrentTheme.Focused
	t.SetStyles(styles)

	return TimerModel{
		ctx:     ctx,
		timers:  timers,
		entries: entries,
		userID:  userID,
		loc:     loc,
		table:   t,
		now:     timers.Now(),
	}
}

func timerColumns(titleWidth int) []table.Column {
	return []table.Column{
		{Title: "Tarea", Width: titleWidth},
		{Title: "Inicio", Width: 16},
		{Title: "Transcurrido", Width: 12},
	}
}

func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(m.loadTimers(), m.loadWeek(), tickCmd())
}

func (m TimerModel) loadTimers() tea.Cmd {
	return func() tea.Msg {
		timers, err := m.timers.ActiveTimers(m.ctx, m.userID)
		return timersLoadedMsg{timers: timers, err: err}
	}
}

func (m TimerModel) loadWeek() tea.Cmd {
	return func() tea.Msg {
		r, err := report.Resolve(report.PresetWeek, m.timers.Now(), m.loc, time.Time{}, time.Time{})
		if err != nil {
			return weekLoadedMsg{err: err}
		}
		entries, err := report.Fetch(m.ctx, m.entries, report.Filter{Range: r, UserID: m.userID})
		if err != nil {
			return weekLoadedMsg{err: err}
		}
		return weekLoadedMsg{days: report.GroupByDay(entries, m.loc), total: report.TotalMinutes(entries)}
	}
}

func (m TimerModel) stopSelected() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.active) {
		return nil
	}
	entryID := m.active[idx].Entry.ID
	return func() tea.Msg {
		entry, err := m.timers.StopTimer(m.ctx, entryID)
		return timerStoppedMsg{entry: entry, err: err}
	}
}

func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		titleWidth := config.TargetTitleWidth
		if msg.Width < config.CompactModeThreshold {
			titleWidth = config.MinTitleWidth
		}
		m.table.SetColumns(timerColumns(titleWidth))
		m.refreshRows()
		return m, nil

	case TickMsg:
		m.now = m.timers.Now()
		m.refreshRows()
		cmds := []tea.Cmd{tickCmd()}
		if m.now.Sub(m.lastRefresh) >= config.TUIRefreshEvery {
			m.lastRefresh = m.now
			cmds = append(cmds, m.loadTimers(), m.loadWeek())
		}
		return m, tea.Batch(cmds...)

	case timersLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.active = msg.timers
		m.refreshRows()
		return m, nil

	case weekLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.week = msg.days
		m.weekTotal = msg.total
		return m, nil

	case timerStoppedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.Message = fmt.Sprintf("Temporizador detenido: %d min", derefInt(msg.entry.DurationMinutes))
		return m, tea.Batch(m.loadTimers(), m.loadWeek())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.Message = ""
			m.now = m.timers.Now()
			m.lastRefresh = m.now
			return m, tea.Batch(m.loadTimers(), m.loadWeek())
		case "s":
			return m, m.stopSelected()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// refreshRows re-derives every elapsed time from the entry start.
func (m *TimerModel) refreshRows() {
	width := m.table.Columns()[0].Width
	rows := make([]table.Row, 0, len(m.active))
	for _, t := range m.active {
		title := t.TaskTitle
		if title == "" {
			title = config.NoTaskLabel
		}
		rows = append(rows, table.Row{
			truncate(title, width),
			t.Entry.StartTime.In(m.loc).Format(config.CSVDateLayout),
			formatClock(timetrack.Elapsed(m.now, t.Entry.StartTime)),
		})
	}
	m.table.SetRows(rows)
}

func (m TimerModel) View() string {
	theme := CurrentTheme
	var b strings.Builder

	b.WriteString(theme.Header.Render("Temporizadores activos"))
	b.WriteString("  ")
	b.WriteString(theme.Dim.Render(config.AppName + " " + VersionLabel()))
	b.WriteString("\n\n")
	if len(m.active) == 0 {
		b.WriteString(theme.Dim.Render("No hay temporizadores en marcha."))
		b.WriteString("\n")
	} else {
		b.WriteString(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(theme.Border).Render(m.table.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Header.Render("Esta semana"))
	b.WriteString("\n")
	for _, d := range m.week {
		fmt.Fprintf(&b, "%s  %5.1f h  %s\n", d.Label, d.Hours, theme.Bar.Render(hoursBar(d.Minutes, 40)))
	}
	b.WriteString(theme.Total.Render(fmt.Sprintf("Total: %s", FormatDuration(time.Duration(m.weekTotal)*time.Minute))))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(theme.Error.Render(m.err.Error()))
		b.WriteString("\n")
	} else if m.Message != "" {
		b.WriteString(theme.Running.Render(m.Message))
		b.WriteString("\n")
	}
	b.WriteString(theme.Dim.Render("↑/↓ seleccionar • s detener • r refrescar • q salir"))
	return theme.Base.Render(b.String())
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Run starts the full-screen timer view and blocks until the user quits.
func Run(ctx context.Context, timers Timers, entries report.EntrySource, userID string, loc *time.Location) error {
	p := tea.NewProgram(NewTimerModel(ctx, timers, entries, userID, loc), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
