package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

// resetViper clears the global viper state so each test sees only its own
// config paths.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestApplyOverrides(t *testing.T) {
	cfg := &Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-5",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-5.2",
		},
	}

	cfg.ApplyOverrides("openai", "gpt-4o")
	if cfg.Provider != "openai" {
		t.Fatalf("provider=%q, want %q", cfg.Provider, "openai")
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("openai model=%q, want %q", cfg.OpenAI.Model, "gpt-4o")
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-5" {
		t.Fatalf("anthropic model changed unexpectedly: %q", cfg.Anthropic.Model)
	}

	cfg.ApplyOverrides("", "gpt-5.2-mini")
	if cfg.Provider != "openai" {
		t.Fatalf("provider changed unexpectedly: %q", cfg.Provider)
	}
	if cfg.OpenAI.Model != "gpt-5.2-mini" {
		t.Fatalf("openai model=%q, want %q", cfg.OpenAI.Model, "gpt-5.2-mini")
	}
}

func TestActiveModel(t *testing.T) {
	cfg := &Config{
		Provider:  "anthropic",
		Anthropic: AnthropicConfig{Model: "claude-sonnet-4-5"},
		OpenAI:    OpenAIConfig{Model: "gpt-5.2"},
	}
	if got := cfg.ActiveModel(); got != "claude-sonnet-4-5" {
		t.Errorf("ActiveModel() = %q", got)
	}

	cfg.Provider = "openai"
	if got := cfg.ActiveModel(); got != "gpt-5.2" {
		t.Errorf("ActiveModel() = %q", got)
	}

	// Unknown and empty providers fall back to anthropic.
	cfg.Provider = ""
	if got := cfg.ActiveModel(); got != "claude-sonnet-4-5" {
		t.Errorf("ActiveModel() = %q", got)
	}
}

func TestDefaultsMatchLoadDefaults(t *testing.T) {
	resetViper(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	def := Defaults()
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Provider != def.Provider {
		t.Errorf("provider: load=%q defaults=%q", loaded.Provider, def.Provider)
	}
	if loaded.Anthropic.Model != def.Anthropic.Model {
		t.Errorf("anthropic model: load=%q defaults=%q", loaded.Anthropic.Model, def.Anthropic.Model)
	}
	if loaded.OpenAI.Model != def.OpenAI.Model {
		t.Errorf("openai model: load=%q defaults=%q", loaded.OpenAI.Model, def.OpenAI.Model)
	}
	if loaded.Session != def.Session {
		t.Errorf("session: load=%+v defaults=%+v", loaded.Session, def.Session)
	}
	if loaded.Chat.Highlight != def.Chat.Highlight {
		t.Errorf("highlight: load=%t defaults=%t", loaded.Chat.Highlight, def.Chat.Highlight)
	}
}

func TestLoadExplicitConfigFile(t *testing.T) {
	resetViper(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("provider: openai\n"), 0600); err != nil {
		t.Fatal(err)
	}

	SetConfigFile(path)
	t.Cleanup(func() { SetConfigFile("") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q, want value from explicit file", cfg.Provider)
	}

	// An explicit file that does not exist is an error, unlike the search
	// paths.
	resetViper(t)
	SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Load should fail for a missing explicit config file")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("PARLEY_TEST_KEY", "sk-test")
	if got := expandEnv("${PARLEY_TEST_KEY}"); got != "sk-test" {
		t.Errorf("expandEnv(${...}) = %q", got)
	}
	if got := expandEnv("$PARLEY_TEST_KEY"); got != "sk-test" {
		t.Errorf("expandEnv($...) = %q", got)
	}
	if got := expandEnv("literal-value"); got != "literal-value" {
		t.Errorf("expandEnv(literal) = %q", got)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	parleyDir := filepath.Join(dir, "parley")
	if err := os.MkdirAll(parleyDir, 0755); err != nil {
		t.Fatal(err)
	}
	yaml := `provider: openai
openai:
  model: custom-model
  api_key: from-file
chat:
  persona: pirate
theme:
  primary: "#ff0000"
`
	if err := os.WriteFile(filepath.Join(parleyDir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.OpenAI.Model != "custom-model" {
		t.Errorf("openai model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.APIKey != "from-file" {
		t.Errorf("openai api key = %q", cfg.OpenAI.APIKey)
	}
	if cfg.Chat.Persona != "pirate" {
		t.Errorf("persona = %q", cfg.Chat.Persona)
	}
	if cfg.Theme.Primary != "#ff0000" {
		t.Errorf("theme primary = %q", cfg.Theme.Primary)
	}

	// Defaults fill what the file left out.
	if cfg.Anthropic.Model != "claude-sonnet-4-5" {
		t.Errorf("anthropic default model = %q", cfg.Anthropic.Model)
	}
	if !cfg.Session.Enabled {
		t.Error("session.enabled default should be true")
	}
	if cfg.Session.MaxAgeDays != 90 {
		t.Errorf("session.max_age_days default = %d", cfg.Session.MaxAgeDays)
	}
	if !cfg.Chat.Highlight {
		t.Error("chat.highlight default should be true")
	}
}

func TestSaveRoundTrips(t *testing.T) {
	resetViper(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := &Config{
		Provider:  "anthropic",
		Anthropic: AnthropicConfig{Model: "claude-sonnet-4-5"},
		OpenAI:    OpenAIConfig{Model: "gpt-5.2"},
		Chat:      ChatConfig{Highlight: true},
		Session:   SessionConfig{Enabled: true, MaxAgeDays: 90, MaxCount: 500},
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("config file not written")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if loaded.Provider != "anthropic" {
		t.Errorf("provider = %q", loaded.Provider)
	}
	if loaded.Session.MaxCount != 500 {
		t.Errorf("max_count = %d", loaded.Session.MaxCount)
	}
}
