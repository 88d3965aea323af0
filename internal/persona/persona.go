// Package persona loads system prompt presets for chat and ask.
//
// A persona is a YAML file in ~/.config/parley/personas/ holding a system
// prompt and an optional sampling temperature. Built-in personas ship
// embedded in the binary; a user file with the same name shadows them.
package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/parleyhq/parley/internal/config"
)

// Source indicates where a persona definition came from.
type Source int

const (
	SourceBuiltin Source = iota
	SourceUser
)

func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}

// Persona is a named system prompt preset.
type Persona struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	System      string  `yaml:"system,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`

	// Where this persona was loaded from (not serialized)
	Source Source `yaml:"-"`
}

// Validate checks that the persona is usable.
func (p *Persona) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("persona has no name")
	}
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("persona %s: temperature %.2f out of range [0, 2]", p.Name, p.Temperature)
	}
	return nil
}

// Dir returns the user persona directory (~/.config/parley/personas).
func Dir() (string, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "personas"), nil
}

// LoadFile loads one persona from a YAML file. When the file does not set
// a name, the file's base name (without extension) is used.
func LoadFile(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}

	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse persona %s: %w", filepath.Base(path), err)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	p.Source = SourceUser

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadDir loads every persona file (*.yaml, *.yml) in dir, sorted by name.
// A missing directory is not an error.
func LoadDir(dir string) ([]*Persona, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var personas []*Persona
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		p, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		personas = append(personas, p)
	}

	sort.Slice(personas, func(i, j int) bool {
		return personas[i].Name < personas[j].Name
	})
	return personas, nil
}

// All returns every available persona, built-ins first then user personas,
// each sorted by name. A user persona shadows a built-in with the same name.
func All() ([]*Persona, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	user, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var personas []*Persona
	for _, p := range user {
		if !seen[p.Name] {
			seen[p.Name] = true
			personas = append(personas, p)
		}
	}
	for _, p := range builtinPersonas() {
		if !seen[p.Name] {
			seen[p.Name] = true
			personas = append(personas, p)
		}
	}

	sort.Slice(personas, func(i, j int) bool {
		if personas[i].Source != personas[j].Source {
			return personas[i].Source < personas[j].Source
		}
		return personas[i].Name < personas[j].Name
	})
	return personas, nil
}

// Names returns the names of all available personas, sorted.
func Names() []string {
	seen := make(map[string]bool)
	var names []string

	if dir, err := Dir(); err == nil {
		if entries, err := os.ReadDir(dir); err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				ext := filepath.Ext(entry.Name())
				if ext != ".yaml" && ext != ".yml" {
					continue
				}
				name := strings.TrimSuffix(entry.Name(), ext)
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}

	for _, name := range builtinNames {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	sort.Strings(names)
	return names
}

// Get resolves a persona by name. User files win over built-ins.
func Get(name string) (*Persona, error) {
	if dir, err := Dir(); err == nil {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, statErr := os.Stat(path); statErr == nil {
				return LoadFile(path)
			}
		}
	}

	if p, err := builtinPersona(name); err == nil {
		return p, nil
	}
	return nil, fmt.Errorf("persona not found: %s", name)
}

// Default returns the persona used when none is configured.
func Default() *Persona {
	if p, err := Get("default"); err == nil {
		return p
	}
	// The embedded default always parses; this only covers a user file
	// named default.yaml that fails validation.
	return &Persona{Name: "default", Source: SourceBuiltin}
}
