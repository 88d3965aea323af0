package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the UI
type Theme struct {
	Primary   lipgloss.Color // main accent color (prompt, selection)
	Secondary lipgloss.Color // secondary accent (titles, borders)
	Accent    lipgloss.Color // command names, spinner

	Success lipgloss.Color // success states
	Error   lipgloss.Color // error states
	Warning lipgloss.Color // warnings
	Muted   lipgloss.Color // dimmed/secondary text
	Text    lipgloss.Color // primary text

	Border lipgloss.Color // popup borders and dividers
	Prompt lipgloss.Color // composer prompt marker
}

// DefaultTheme returns the default color theme (one dark)
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#61afef"), // blue
		Secondary: lipgloss.Color("#c678dd"), // magenta
		Accent:    lipgloss.Color("#56b6c2"), // cyan
		Success:   lipgloss.Color("#98c379"), // green
		Error:     lipgloss.Color("#e06c75"), // red
		Warning:   lipgloss.Color("#e5c07b"), // yellow
		Muted:     lipgloss.Color("#5c6370"), // gray
		Text:      lipgloss.Color("#abb2bf"), // foreground
		Border:    lipgloss.Color("#3e4452"), // dark gray
		Prompt:    lipgloss.Color("#98c379"), // green
	}
}

// ThemeConfig mirrors config.ThemeConfig for applying palette overrides.
// Empty fields keep the default.
type ThemeConfig struct {
	Primary   string
	Secondary string
	Accent    string
	Success   string
	Error     string
	Warning   string
	Muted     string
	Text      string
	Border    string
	Prompt    string
}

// ThemeFromConfig creates a theme with config overrides applied
func ThemeFromConfig(cfg ThemeConfig) *Theme {
	theme := DefaultTheme()

	if cfg.Primary != "" {
		theme.Primary = lipgloss.Color(cfg.Primary)
	}
	if cfg.Secondary != "" {
		theme.Secondary = lipgloss.Color(cfg.Secondary)
	}
	if cfg.Accent != "" {
		theme.Accent = lipgloss.Color(cfg.Accent)
	}
	if cfg.Success != "" {
		theme.Success = lipgloss.Color(cfg.Success)
	}
	if cfg.Error != "" {
		theme.Error = lipgloss.Color(cfg.Error)
	}
	if cfg.Warning != "" {
		theme.Warning = lipgloss.Color(cfg.Warning)
	}
	if cfg.Muted != "" {
		theme.Muted = lipgloss.Color(cfg.Muted)
	}
	if cfg.Text != "" {
		theme.Text = lipgloss.Color(cfg.Text)
	}
	if cfg.Border != "" {
		theme.Border = lipgloss.Color(cfg.Border)
	}
	if cfg.Prompt != "" {
		theme.Prompt = lipgloss.Color(cfg.Prompt)
	}

	return theme
}

// currentTheme is the active theme instance
var currentTheme = DefaultTheme()

// GetTheme returns the current active theme
func GetTheme() *Theme {
	return currentTheme
}

// SetTheme sets the current active theme
func SetTheme(t *Theme) {
	currentTheme = t
}

// InitTheme applies config overrides to the active theme. Call once at
// startup, before any Styles are built.
func InitTheme(cfg ThemeConfig) {
	SetTheme(ThemeFromConfig(cfg))
}

// Status icons
const (
	IconPrompt  = "❯"
	IconDot     = "●"
	IconPending = "○"
	IconOK      = "✓"
	IconErr     = "✗"
)

// Styles holds the prebuilt lipgloss styles used across the app
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Bold     lipgloss.Style

	Prompt  lipgloss.Style
	Status  lipgloss.Style
	Spinner lipgloss.Style

	Popup        lipgloss.Style
	PopupItem    lipgloss.Style
	PopupCurrent lipgloss.Style
	CommandName  lipgloss.Style
	CommandDesc  lipgloss.Style
}

// NewStyles creates styles bound to a renderer for the given output, so
// color degradation matches the actual destination.
func NewStyles(output *os.File) *Styles {
	theme := GetTheme()
	r := lipgloss.NewRenderer(output)

	return &Styles{
		Title:    r.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: r.NewStyle().Foreground(theme.Secondary),
		Text:     r.NewStyle().Foreground(theme.Text),
		Muted:    r.NewStyle().Foreground(theme.Muted),
		Success:  r.NewStyle().Foreground(theme.Success),
		Error:    r.NewStyle().Foreground(theme.Error),
		Warning:  r.NewStyle().Foreground(theme.Warning),
		Bold:     r.NewStyle().Bold(true),

		Prompt:  r.NewStyle().Bold(true).Foreground(theme.Prompt),
		Status:  r.NewStyle().Foreground(theme.Muted),
		Spinner: r.NewStyle().Foreground(theme.Accent),

		Popup: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		PopupItem:    r.NewStyle().Foreground(theme.Text),
		PopupCurrent: r.NewStyle().Bold(true).Foreground(theme.Primary),
		CommandName:  r.NewStyle().Foreground(theme.Accent),
		CommandDesc:  r.NewStyle().Foreground(theme.Muted),
	}
}

// DefaultStyles returns styles for stderr, where interactive chrome goes
func DefaultStyles() *Styles {
	return NewStyles(os.Stderr)
}
