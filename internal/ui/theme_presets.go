package ui

// ThemePreset is a predefined color palette selectable by name.
type ThemePreset struct {
	Name        string
	Description string
	Config      ThemeConfig
}

// PresetThemeNames defines the display order of themes
var PresetThemeNames = []string{
	"onedark",
	"dracula",
	"nord",
	"solarized",
	"gruvbox",
	"classic",
}

// PresetThemes contains all predefined themes
var PresetThemes = map[string]ThemePreset{
	"onedark": {
		Name:        "onedark",
		Description: "Atom One Dark (default)",
		Config: ThemeConfig{
			Primary:   "#61afef", // blue
			Secondary: "#c678dd", // magenta
			Accent:    "#56b6c2", // cyan
			Success:   "#98c379", // green
			Error:     "#e06c75", // red
			Warning:   "#e5c07b", // yellow
			Muted:     "#5c6370", // gray
			Text:      "#abb2bf", // foreground
			Border:    "#3e4452", // dark gray
			Prompt:    "#98c379", // green
		},
	},
	"dracula": {
		Name:        "dracula",
		Description: "Dark theme with purple accents",
		Config: ThemeConfig{
			Primary:   "#bd93f9", // purple
			Secondary: "#8be9fd", // cyan
			Accent:    "#ff79c6", // pink
			Success:   "#50fa7b", // green
			Error:     "#ff5555", // red
			Warning:   "#f1fa8c", // yellow
			Muted:     "#6272a4", // comment grey
			Text:      "#f8f8f2", // foreground
			Border:    "#44475a", // current line
			Prompt:    "#50fa7b", // green
		},
	},
	"nord": {
		Name:        "nord",
		Description: "Arctic, north-bluish palette",
		Config: ThemeConfig{
			Primary:   "#88c0d0", // frost cyan
			Secondary: "#81a1c1", // frost blue
			Accent:    "#b48ead", // aurora purple
			Success:   "#a3be8c", // aurora green
			Error:     "#bf616a", // aurora red
			Warning:   "#ebcb8b", // aurora yellow
			Muted:     "#4c566a", // polar night
			Text:      "#eceff4", // snow storm
			Border:    "#3b4252", // polar night
			Prompt:    "#a3be8c", // aurora green
		},
	},
	"solarized": {
		Name:        "solarized",
		Description: "Precision colors for machines and people",
		Config: ThemeConfig{
			Primary:   "#268bd2", // blue
			Secondary: "#2aa198", // cyan
			Accent:    "#d33682", // magenta
			Success:   "#859900", // green
			Error:     "#dc322f", // red
			Warning:   "#b58900", // yellow
			Muted:     "#586e75", // base01
			Text:      "#839496", // base0
			Border:    "#073642", // base02
			Prompt:    "#859900", // green
		},
	},
	"gruvbox": {
		Name:        "gruvbox",
		Description: "Retro groove color scheme",
		Config: ThemeConfig{
			Primary:   "#b8bb26", // green
			Secondary: "#83a598", // aqua
			Accent:    "#d3869b", // purple
			Success:   "#b8bb26", // green
			Error:     "#fb4934", // red
			Warning:   "#fabd2f", // yellow
			Muted:     "#928374", // gray
			Text:      "#ebdbb2", // foreground
			Border:    "#504945", // dark gray
			Prompt:    "#b8bb26", // green
		},
	},
	"classic": {
		Name:        "classic",
		Description: "Plain ANSI colors for any terminal",
		Config: ThemeConfig{
			Primary:   "12",  // bright blue
			Secondary: "13",  // bright magenta
			Accent:    "14",  // bright cyan
			Success:   "10",  // bright green
			Error:     "9",   // bright red
			Warning:   "11",  // yellow
			Muted:     "245", // light grey
			Text:      "15",  // white
			Border:    "240", // dark grey
			Prompt:    "10",  // bright green
		},
	},
}

// GetPresetTheme returns a preset by name, or nil if not found
func GetPresetTheme(name string) *ThemePreset {
	if preset, ok := PresetThemes[name]; ok {
		return &preset
	}
	return nil
}

// MatchPresetTheme finds a preset that matches the given config, or returns empty string
func MatchPresetTheme(cfg ThemeConfig) string {
	for name, preset := range PresetThemes {
		if themesMatch(cfg, preset.Config) {
			return name
		}
	}
	return ""
}

func themesMatch(a, b ThemeConfig) bool {
	return a.Primary == b.Primary &&
		a.Secondary == b.Secondary &&
		a.Accent == b.Accent &&
		a.Success == b.Success &&
		a.Error == b.Error &&
		a.Warning == b.Warning &&
		a.Muted == b.Muted &&
		a.Text == b.Text &&
		a.Border == b.Border &&
		a.Prompt == b.Prompt
}
