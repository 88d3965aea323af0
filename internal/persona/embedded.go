package persona

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// builtinNames lists all built-in persona names.
var builtinNames = []string{
	"concise",
	"default",
	"reviewer",
}

// builtinPersona loads a built-in persona by name.
func builtinPersona(name string) (*Persona, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin persona %s not found", name)
	}

	var p Persona
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse builtin persona %s: %w", name, err)
	}
	if p.Name == "" {
		p.Name = name
	}
	p.Source = SourceBuiltin
	return &p, nil
}

// builtinPersonas returns all built-in personas.
func builtinPersonas() []*Persona {
	var personas []*Persona
	for _, name := range builtinNames {
		if p, err := builtinPersona(name); err == nil {
			personas = append(personas, p)
		}
	}
	return personas
}

// IsBuiltin checks whether a persona name is a built-in.
func IsBuiltin(name string) bool {
	for _, n := range builtinNames {
		if n == name {
			return true
		}
	}
	return false
}

// DescribeBuiltins returns a short listing of built-in personas for help text.
func DescribeBuiltins() string {
	var b strings.Builder
	for _, p := range builtinPersonas() {
		fmt.Fprintf(&b, "  %-10s %s\n", p.Name, p.Description)
	}
	return b.String()
}
