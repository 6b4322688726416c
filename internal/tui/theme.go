package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name    string
	Base    lipgloss.Style
	Border  lipgloss.Color
	Header  lipgloss.Style
	Running lipgloss.Style
	Total   lipgloss.Style
	Bar     lipgloss.Style
	Error   lipgloss.Style
	Focused lipgloss.Style
	Dim     lipgloss.Style
}

var Themes = map[string]Theme{
	"default": {
		Name:    "Default",
		Base:    lipgloss.NewStyle().Margin(1, 2),
		Border:  lipgloss.Color("63"),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Running: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		Total:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		Bar:     lipgloss.NewStyle().Foreground(lipgloss.Color("63")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Focused: lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	},
	"dracula": {
		Name:    "Dracula",
		Base:    lipgloss.NewStyle().Margin(1, 2),
		Border:  lipgloss.Color("62"),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("50")).Bold(true),
		Running: lipgloss.NewStyle().Foreground(lipgloss.Color("120")).Bold(true),
		Total:   lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		Bar:     lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Focused: lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("60")),
	},
}

// CurrentTheme holds the currently active theme.
var CurrentTheme = Themes["default"]

// SetTheme switches themes; unknown names are ignored.
func SetTheme(name string) {
	if t, ok := Themes[name]; ok {
		CurrentTheme = t
	}
}
