package ui

import "testing"

func TestEveryPresetNameResolves(t *testing.T) {
	for _, name := range PresetThemeNames {
		preset := GetPresetTheme(name)
		if preset == nil {
			t.Fatalf("preset %q not found", name)
		}
		if preset.Name != name {
			t.Errorf("preset %q has Name %q", name, preset.Name)
		}
		if preset.Description == "" {
			t.Errorf("preset %q has no description", name)
		}
	}
	if len(PresetThemes) != len(PresetThemeNames) {
		t.Errorf("PresetThemes has %d entries, PresetThemeNames %d", len(PresetThemes), len(PresetThemeNames))
	}
}

func TestPresetsDefineAllColors(t *testing.T) {
	for _, name := range PresetThemeNames {
		c := GetPresetTheme(name).Config
		fields := map[string]string{
			"primary": c.Primary, "secondary": c.Secondary, "accent": c.Accent,
			"success": c.Success, "error": c.Error, "warning": c.Warning,
			"muted": c.Muted, "text": c.Text, "border": c.Border, "prompt": c.Prompt,
		}
		for field, value := range fields {
			if value == "" {
				t.Errorf("preset %q leaves %s empty", name, field)
			}
		}
	}
}

func TestGetPresetThemeUnknown(t *testing.T) {
	if GetPresetTheme("neon-zebra") != nil {
		t.Error("unknown preset should return nil")
	}
}

// The first preset is the built-in default palette; config init relies on
// that to skip writing theme keys for the default choice.
func TestFirstPresetMatchesDefaultTheme(t *testing.T) {
	first := GetPresetTheme(PresetThemeNames[0])
	if first == nil {
		t.Fatal("first preset missing")
	}

	def := DefaultTheme()
	got := ThemeFromConfig(first.Config)
	if *got != *def {
		t.Errorf("first preset theme = %+v, want default %+v", got, def)
	}
}

func TestMatchPresetTheme(t *testing.T) {
	for _, name := range PresetThemeNames {
		preset := GetPresetTheme(name)
		if got := MatchPresetTheme(preset.Config); got != name {
			t.Errorf("MatchPresetTheme(%s config) = %q", name, got)
		}
	}

	if got := MatchPresetTheme(ThemeConfig{Primary: "#010203"}); got != "" {
		t.Errorf("partial custom config matched %q", got)
	}
	if got := MatchPresetTheme(ThemeConfig{}); got != "" {
		t.Errorf("empty config matched %q", got)
	}
}
