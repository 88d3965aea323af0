package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/parleyhq/parley/internal/ui"
)

func parseYAML(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(text), &root); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	return &root
}

func encodeYAML(t *testing.T, root *yaml.Node) string {
	t.Helper()
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		t.Fatalf("yaml encode error = %v", err)
	}
	enc.Close()
	return sb.String()
}

func TestSetYAMLValuePreservesComments(t *testing.T) {
	root := parseYAML(t, `# pick anthropic or openai
provider: anthropic # active

anthropic:
  model: claude-sonnet-4-5
`)

	if err := setYAMLValue(root, []string{"provider"}, "openai"); err != nil {
		t.Fatalf("setYAMLValue() error = %v", err)
	}

	out := encodeYAML(t, root)
	if !strings.Contains(out, "provider: openai") {
		t.Fatalf("value not updated:\n%s", out)
	}
	if !strings.Contains(out, "# pick anthropic or openai") {
		t.Fatalf("head comment lost:\n%s", out)
	}
	if !strings.Contains(out, "# active") {
		t.Fatalf("inline comment lost:\n%s", out)
	}
	if !strings.Contains(out, "model: claude-sonnet-4-5") {
		t.Fatalf("unrelated key touched:\n%s", out)
	}
}

func TestSetYAMLValueCreatesNestedKeys(t *testing.T) {
	root := parseYAML(t, "provider: anthropic\n")

	if err := setYAMLValue(root, []string{"theme", "primary"}, "#61afef"); err != nil {
		t.Fatalf("setYAMLValue() error = %v", err)
	}

	got, err := getYAMLValue(root, []string{"theme", "primary"})
	if err != nil {
		t.Fatalf("getYAMLValue() error = %v", err)
	}
	if got != "#61afef" {
		t.Fatalf("getYAMLValue() = %q", got)
	}
}

func TestSetYAMLValueUpdatesNestedExisting(t *testing.T) {
	root := parseYAML(t, `anthropic:
  # keep me
  model: claude-sonnet-4-5
`)

	if err := setYAMLValue(root, []string{"anthropic", "model"}, "claude-opus-4-1"); err != nil {
		t.Fatalf("setYAMLValue() error = %v", err)
	}

	out := encodeYAML(t, root)
	if !strings.Contains(out, "model: claude-opus-4-1") {
		t.Fatalf("nested value not updated:\n%s", out)
	}
	if !strings.Contains(out, "# keep me") {
		t.Fatalf("nested comment lost:\n%s", out)
	}
}

func TestGetYAMLValueMissingKey(t *testing.T) {
	root := parseYAML(t, "provider: anthropic\n")

	if _, err := getYAMLValue(root, []string{"nope"}); err == nil {
		t.Fatal("expected error for missing key")
	}
	if _, err := getYAMLValue(root, []string{"provider", "deeper"}); err == nil {
		t.Fatal("expected error for descending into a scalar")
	}
}

func TestGetYAMLValueRejectsNonScalar(t *testing.T) {
	root := parseYAML(t, "anthropic:\n  model: x\n")

	if _, err := getYAMLValue(root, []string{"anthropic"}); err == nil {
		t.Fatal("expected error for mapping value")
	}
}

func TestSetConfigValueCreatesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := setConfigValue("anthropic.model", "claude-opus-4-1"); err != nil {
		t.Fatalf("setConfigValue() error = %v", err)
	}

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "parley", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "model: claude-opus-4-1") {
		t.Fatalf("config content = %q", data)
	}
}

func TestSetConfigValueKeepsExistingContent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "parley")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	seed := "# my settings\nprovider: anthropic\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := setConfigValue("chat.persona", "concise"); err != nil {
		t.Fatalf("setConfigValue() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(cfgDir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "# my settings") {
		t.Fatalf("comment lost:\n%s", out)
	}
	if !strings.Contains(out, "provider: anthropic") {
		t.Fatalf("existing key lost:\n%s", out)
	}
	if !strings.Contains(out, "persona: concise") {
		t.Fatalf("new key missing:\n%s", out)
	}
}

func TestSaveThemeToConfigWritesAllColors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	preset := ui.GetPresetTheme("dracula")
	if preset == nil {
		t.Fatal("dracula preset missing")
	}
	if err := saveThemeToConfig(preset.Config); err != nil {
		t.Fatalf("saveThemeToConfig() error = %v", err)
	}

	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "parley", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	root := parseYAML(t, string(data))
	for _, key := range []string{"primary", "secondary", "accent", "success", "error", "warning", "muted", "text", "border", "prompt"} {
		if _, err := getYAMLValue(root, []string{"theme", key}); err != nil {
			t.Errorf("theme.%s not written: %v", key, err)
		}
	}

	got, err := getYAMLValue(root, []string{"theme", "primary"})
	if err != nil {
		t.Fatal(err)
	}
	if got != preset.Config.Primary {
		t.Fatalf("theme.primary = %q, want %q", got, preset.Config.Primary)
	}
}
