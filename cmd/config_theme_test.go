package cmd

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/ui"
)

func TestThemeSelectorStartsAtCurrent(t *testing.T) {
	m := newThemeSelectorModel("nord")

	if len(m.presets) != len(ui.PresetThemeNames) {
		t.Fatalf("got %d presets, want %d", len(m.presets), len(ui.PresetThemeNames))
	}
	if m.presets[m.cursor].Name != "nord" {
		t.Fatalf("cursor on %q, want nord", m.presets[m.cursor].Name)
	}
}

func TestThemeSelectorNavigateAndSelect(t *testing.T) {
	m := newThemeSelectorModel("")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(themeSelectorModel)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d after down, want 1", m.cursor)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(themeSelectorModel)
	if m.selected != m.presets[1].Name {
		t.Fatalf("selected = %q, want %q", m.selected, m.presets[1].Name)
	}
	if cmd == nil {
		t.Fatal("enter should quit the program")
	}
}

func TestThemeSelectorCursorStaysInRange(t *testing.T) {
	m := newThemeSelectorModel("")

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(themeSelectorModel)
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, up at top should not move", m.cursor)
	}

	for range ui.PresetThemeNames {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = next.(themeSelectorModel)
	}
	if m.cursor != len(m.presets)-1 {
		t.Fatalf("cursor = %d, want clamped to last preset", m.cursor)
	}
}

func TestThemeSelectorEscCancels(t *testing.T) {
	m := newThemeSelectorModel("")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(themeSelectorModel)
	if !m.cancelled {
		t.Fatal("esc should cancel")
	}
	if cmd == nil {
		t.Fatal("esc should quit the program")
	}
}

func TestThemeSelectorViewListsPresets(t *testing.T) {
	m := newThemeSelectorModel("dracula")
	view := m.View()

	for _, name := range ui.PresetThemeNames {
		if !strings.Contains(view, name) {
			t.Errorf("view missing preset %q", name)
		}
	}
	if !strings.Contains(view, "dracula (current)") {
		t.Errorf("view should mark the current theme:\n%s", view)
	}
	if !strings.Contains(view, "Preview:") {
		t.Errorf("view missing preview panel:\n%s", view)
	}
}
