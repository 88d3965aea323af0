package cmd

import (
	"testing"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/session"
)

func TestResolvePersonaExplicit(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	p, err := resolvePersona(&config.Config{}, "concise")
	if err != nil {
		t.Fatalf("resolvePersona() error = %v", err)
	}
	if p.Name != "concise" {
		t.Fatalf("persona = %q, want concise", p.Name)
	}
}

func TestResolvePersonaExplicitUnknown(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := resolvePersona(&config.Config{}, "doesnotexist"); err == nil {
		t.Fatal("expected error for unknown persona flag")
	}
}

func TestResolvePersonaFromConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &config.Config{}
	cfg.Chat.Persona = "reviewer"
	p, err := resolvePersona(cfg, "")
	if err != nil {
		t.Fatalf("resolvePersona() error = %v", err)
	}
	if p.Name != "reviewer" {
		t.Fatalf("persona = %q, want reviewer", p.Name)
	}
}

func TestResolvePersonaConfigUnknownFallsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &config.Config{}
	cfg.Chat.Persona = "ghost"
	p, err := resolvePersona(cfg, "")
	if err != nil {
		t.Fatalf("resolvePersona() should fall back, got error %v", err)
	}
	if p.Name != "default" {
		t.Fatalf("persona = %q, want default fallback", p.Name)
	}
}

func TestOpenStoreDisabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Session.Enabled = true

	store, err := openStore(cfg, true) // --no-session wins over config
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer store.Close()

	ls, ok := store.(*session.LoggingStore)
	if !ok {
		t.Fatalf("store = %T, want LoggingStore wrapper", store)
	}
	if _, ok := ls.Store.(*session.NoopStore); !ok {
		t.Fatalf("inner store = %T, want NoopStore when disabled", ls.Store)
	}
}

func TestProviderModelKey(t *testing.T) {
	if got := providerModelKey("openai"); got != "openai.model" {
		t.Fatalf("providerModelKey(openai) = %q", got)
	}
	if got := providerModelKey("anthropic"); got != "anthropic.model" {
		t.Fatalf("providerModelKey(anthropic) = %q", got)
	}
	if got := providerModelKey(""); got != "anthropic.model" {
		t.Fatalf("providerModelKey(\"\") = %q", got)
	}
}
