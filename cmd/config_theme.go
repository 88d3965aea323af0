package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/ui"
)

var configThemeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Select a UI color theme",
	Long: `Interactively select from predefined color themes.

Use arrow keys to navigate and see a live preview of each theme.
Press enter to select and save, or esc to cancel.

Available themes: ` + strings.Join(ui.PresetThemeNames, ", "),
	RunE: runConfigTheme,
}

func init() {
	configCmd.AddCommand(configThemeCmd)
}

func runConfigTheme(cmd *cobra.Command, args []string) error {
	current := ""
	if cfg, err := config.Load(); err == nil {
		current = ui.MatchPresetTheme(uiThemeConfig(cfg))
	}

	selected, err := runThemeSelector(current)
	if err != nil {
		return err
	}
	if selected == "" {
		return nil // cancelled
	}

	preset := ui.GetPresetTheme(selected)
	if preset == nil {
		return fmt.Errorf("unknown theme: %s", selected)
	}

	if err := saveThemeToConfig(preset.Config); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	ui.InitTheme(preset.Config)

	fmt.Printf("Theme set to: %s\n", selected)
	return nil
}

// saveThemeToConfig writes the theme colors into the config file through
// the yaml.Node tree, preserving the rest of the file.
func saveThemeToConfig(tc ui.ThemeConfig) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	root, err := loadYAMLFile(path)
	if err != nil {
		return err
	}

	fields := []struct{ key, value string }{
		{"theme.primary", tc.Primary},
		{"theme.secondary", tc.Secondary},
		{"theme.accent", tc.Accent},
		{"theme.success", tc.Success},
		{"theme.error", tc.Error},
		{"theme.warning", tc.Warning},
		{"theme.muted", tc.Muted},
		{"theme.text", tc.Text},
		{"theme.border", tc.Border},
		{"theme.prompt", tc.Prompt},
	}
	for _, f := range fields {
		if err := setYAMLValue(root, strings.Split(f.key, "."), f.value); err != nil {
			return err
		}
	}

	return writeYAMLFile(path, root)
}

// themeSelectorModel is the bubbletea model for theme selection.
type themeSelectorModel struct {
	presets   []ui.ThemePreset
	cursor    int
	current   string
	selected  string
	cancelled bool
	width     int
}

func newThemeSelectorModel(current string) themeSelectorModel {
	var presets []ui.ThemePreset
	for _, name := range ui.PresetThemeNames {
		if preset := ui.GetPresetTheme(name); preset != nil {
			presets = append(presets, *preset)
		}
	}

	cursor := 0
	for i, p := range presets {
		if p.Name == current {
			cursor = i
			break
		}
	}

	return themeSelectorModel{presets: presets, cursor: cursor, current: current}
}

func (m themeSelectorModel) Init() tea.Cmd {
	return nil
}

func (m themeSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
			if m.cursor < len(m.presets)-1 {
				m.cursor++
			}
		case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
			m.selected = m.presets[m.cursor].Name
			return m, tea.Quit
		case key.Matches(msg, key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"))):
			m.cancelled = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, nil
}

func (m themeSelectorModel) View() string {
	if len(m.presets) == 0 {
		return "No themes available"
	}

	hovered := m.presets[m.cursor]
	previewTheme := ui.ThemeFromConfig(hovered.Config)

	var list strings.Builder
	list.WriteString(lipgloss.NewStyle().Bold(true).Render("Select Theme"))
	list.WriteString("\n\n")

	for i, preset := range m.presets {
		cursor := "  "
		if i == m.cursor {
			cursor = ui.IconPrompt + " "
		}

		label := preset.Name
		if preset.Name == m.current {
			label += " (current)"
		}

		if i == m.cursor {
			style := lipgloss.NewStyle().Bold(true).Foreground(previewTheme.Primary)
			list.WriteString(style.Render(cursor + label))
		} else {
			list.WriteString(cursor + label)
		}
		list.WriteString("\n")
	}

	list.WriteString("\n")
	list.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("↑/↓ navigate · enter select · esc cancel"))

	listCol := lipgloss.NewStyle().Width(30).Render(list.String())
	preview := renderThemePreview(previewTheme, hovered)

	return lipgloss.JoinHorizontal(lipgloss.Top, listCol, "  ", preview)
}

// renderThemePreview renders a panel showing the hovered theme's colors.
func renderThemePreview(theme *ui.Theme, preset ui.ThemePreset) string {
	var b strings.Builder

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(1, 2)

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Text)
	primaryStyle := lipgloss.NewStyle().Foreground(theme.Primary)
	secondaryStyle := lipgloss.NewStyle().Foreground(theme.Secondary)
	accentStyle := lipgloss.NewStyle().Foreground(theme.Accent)
	successStyle := lipgloss.NewStyle().Foreground(theme.Success)
	errorStyle := lipgloss.NewStyle().Foreground(theme.Error)
	warningStyle := lipgloss.NewStyle().Foreground(theme.Warning)
	mutedStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	promptStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.Prompt)

	b.WriteString(titleStyle.Render("Preview: "+preset.Name) + "\n")
	b.WriteString(mutedStyle.Render(preset.Description) + "\n\n")

	b.WriteString(promptStyle.Render(ui.IconPrompt+" ") + "how do I exit vim?\n\n")
	b.WriteString(primaryStyle.Render(ui.IconDot+" Primary: titles and selection") + "\n")
	b.WriteString(secondaryStyle.Render(ui.IconDot+" Secondary: headers") + "\n")
	b.WriteString(accentStyle.Render(ui.IconDot+" Accent: command names") + "\n")
	b.WriteString(successStyle.Render(ui.IconOK+" Success message") + "\n")
	b.WriteString(errorStyle.Render(ui.IconErr+" Error message") + "\n")
	b.WriteString(warningStyle.Render("Warning message") + "\n")
	b.WriteString(mutedStyle.Render(ui.IconPending+" Muted: status line"))

	return borderStyle.Render(b.String())
}

// runThemeSelector runs the interactive selector and returns the chosen
// theme name, or "" when cancelled.
func runThemeSelector(current string) (string, error) {
	// Use /dev/tty directly so the selector works under shell redirections.
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		tty = nil
	}

	var opts []tea.ProgramOption
	if tty != nil {
		defer tty.Close()
		opts = append(opts, tea.WithInput(tty), tea.WithOutput(tty))
	}

	p := tea.NewProgram(newThemeSelectorModel(current), opts...)
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	m := finalModel.(themeSelectorModel)
	if m.cancelled {
		return "", nil
	}
	return m.selected, nil
}
