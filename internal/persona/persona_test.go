package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "pirate.yaml")
	personaYAML := `name: pirate
description: "Talks like a pirate"
system: "You are a pirate. Answer every question in pirate speak."
temperature: 1.2
`
	if err := os.WriteFile(path, []byte(personaYAML), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Name != "pirate" {
		t.Errorf("Name = %q, want %q", p.Name, "pirate")
	}
	if p.Description != "Talks like a pirate" {
		t.Errorf("Description = %q, want %q", p.Description, "Talks like a pirate")
	}
	if !strings.Contains(p.System, "pirate speak") {
		t.Errorf("System = %q, want pirate instructions", p.System)
	}
	if p.Temperature != 1.2 {
		t.Errorf("Temperature = %v, want 1.2", p.Temperature)
	}
	if p.Source != SourceUser {
		t.Errorf("Source = %v, want %v", p.Source, SourceUser)
	}
}

func TestLoadFileNameFromFilename(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "haiku.yml")
	if err := os.WriteFile(path, []byte(`system: "Reply only in haiku."`), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Name != "haiku" {
		t.Errorf("Name = %q, want %q", p.Name, "haiku")
	}
}

func TestLoadFileRejectsBadTemperature(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "hot.yaml")
	if err := os.WriteFile(path, []byte("temperature: 3.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for temperature 3.5")
	}
}

func TestLoadDir(t *testing.T) {
	tmpDir := t.TempDir()
	files := map[string]string{
		"zeta.yaml":  "system: z\n",
		"alpha.yaml": "system: a\n",
		"notes.txt":  "not a persona\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	personas, err := LoadDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("len(personas) = %d, want 2", len(personas))
	}
	if personas[0].Name != "alpha" || personas[1].Name != "zeta" {
		t.Errorf("names = %q, %q, want alpha, zeta", personas[0].Name, personas[1].Name)
	}
}

func TestLoadDirMissing(t *testing.T) {
	personas, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("LoadDir on missing dir: %v", err)
	}
	if len(personas) != 0 {
		t.Errorf("len(personas) = %d, want 0", len(personas))
	}
}

func TestGetBuiltin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p, err := Get("reviewer")
	if err != nil {
		t.Fatalf("Get(reviewer): %v", err)
	}
	if p.Source != SourceBuiltin {
		t.Errorf("Source = %v, want %v", p.Source, SourceBuiltin)
	}
	if p.System == "" {
		t.Error("builtin reviewer has empty system prompt")
	}
}

func TestGetUserShadowsBuiltin(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	personaDir := filepath.Join(configHome, "parley", "personas")
	if err := os.MkdirAll(personaDir, 0755); err != nil {
		t.Fatal(err)
	}
	override := `system: "My own default prompt."`
	if err := os.WriteFile(filepath.Join(personaDir, "default.yaml"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := Get("default")
	if err != nil {
		t.Fatalf("Get(default): %v", err)
	}
	if p.Source != SourceUser {
		t.Errorf("Source = %v, want %v", p.Source, SourceUser)
	}
	if p.System != "My own default prompt." {
		t.Errorf("System = %q, want override", p.System)
	}
}

func TestGetNotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := Get("no-such-persona"); err == nil {
		t.Fatal("expected error for unknown persona")
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p := Default()
	if p.Name != "default" {
		t.Errorf("Name = %q, want %q", p.Name, "default")
	}
	if p.System == "" {
		t.Error("default persona has empty system prompt")
	}
}

func TestAllIncludesBuiltinsAndUser(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	personaDir := filepath.Join(configHome, "parley", "personas")
	if err := os.MkdirAll(personaDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(personaDir, "pirate.yaml"), []byte(`system: "Arr."`), 0644); err != nil {
		t.Fatal(err)
	}

	personas, err := All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}

	byName := make(map[string]*Persona)
	for _, p := range personas {
		byName[p.Name] = p
	}
	for _, want := range []string{"default", "concise", "reviewer", "pirate"} {
		if byName[want] == nil {
			t.Errorf("All() missing %q", want)
		}
	}
	if byName["pirate"].Source != SourceUser {
		t.Errorf("pirate Source = %v, want %v", byName["pirate"].Source, SourceUser)
	}

	// Built-ins sort ahead of user personas.
	if personas[0].Source != SourceBuiltin {
		t.Errorf("first persona Source = %v, want builtin", personas[0].Source)
	}
}

func TestNames(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	personaDir := filepath.Join(configHome, "parley", "personas")
	if err := os.MkdirAll(personaDir, 0755); err != nil {
		t.Fatal(err)
	}
	// Broken YAML still contributes its name; Names never parses files.
	if err := os.WriteFile(filepath.Join(personaDir, "broken.yaml"), []byte("{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	names := Names()
	want := []string{"broken", "concise", "default", "reviewer"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestIsBuiltin(t *testing.T) {
	if !IsBuiltin("default") {
		t.Error("IsBuiltin(default) = false, want true")
	}
	if IsBuiltin("pirate") {
		t.Error("IsBuiltin(pirate) = true, want false")
	}
}

func TestValidate(t *testing.T) {
	p := &Persona{Name: "", System: "x"}
	if err := p.Validate(); err == nil {
		t.Error("expected error for empty name")
	}

	p = &Persona{Name: "ok", Temperature: -0.1}
	if err := p.Validate(); err == nil {
		t.Error("expected error for negative temperature")
	}

	p = &Persona{Name: "ok", Temperature: 2.0}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
