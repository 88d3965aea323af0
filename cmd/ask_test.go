package cmd

import (
	"strings"
	"testing"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/input"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/markdown"
	"github.com/parleyhq/parley/internal/persona"
)

func TestBuildAskPromptQuestionOnly(t *testing.T) {
	got := buildAskPrompt("why is the sky blue?", nil, "")
	if got != "why is the sky blue?" {
		t.Fatalf("buildAskPrompt() = %q", got)
	}
}

func TestBuildAskPromptStdinOnly(t *testing.T) {
	got := buildAskPrompt("", nil, "panic: runtime error")
	if !strings.Contains(got, "<<<<< STDIN >>>>>") {
		t.Fatalf("stdin not delimited: %q", got)
	}
	if !strings.Contains(got, "panic: runtime error") {
		t.Fatalf("stdin content missing: %q", got)
	}
}

func TestBuildAskPromptCombined(t *testing.T) {
	files := []input.FileContent{{Path: "main.go", Content: "package main\n"}}
	got := buildAskPrompt("explain this", files, "some stdin")

	if !strings.HasPrefix(got, "explain this\n\n") {
		t.Fatalf("question should lead the prompt: %q", got)
	}
	wantOrder := []string{"explain this", "<<<<< FILE: main.go >>>>>", "package main", "<<<<< STDIN >>>>>", "some stdin"}
	last := -1
	for _, part := range wantOrder {
		idx := strings.Index(got, part)
		if idx < 0 {
			t.Fatalf("prompt missing %q: %q", part, got)
		}
		if idx < last {
			t.Fatalf("prompt parts out of order at %q: %q", part, got)
		}
		last = idx
	}
}

func TestBuildAskPromptEmpty(t *testing.T) {
	if got := buildAskPrompt("", nil, ""); got != "" {
		t.Fatalf("buildAskPrompt() = %q, want empty", got)
	}
}

func TestAskMessagesIncludesSystemPrompt(t *testing.T) {
	cfg := &config.Config{}
	cfg.Ask.Instructions = "Answer briefly."
	p := &persona.Persona{Name: "test", System: "You are terse."}

	msgs := askMessages(cfg, p, "hello")
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != llm.RoleSystem {
		t.Fatalf("first message role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Content, "You are terse.") || !strings.Contains(msgs[0].Content, "Answer briefly.") {
		t.Fatalf("system prompt missing parts: %q", msgs[0].Content)
	}
	if msgs[1].Role != llm.RoleUser || msgs[1].Content != "hello" {
		t.Fatalf("user message = %+v", msgs[1])
	}
}

func TestAskMessagesNoSystemPrompt(t *testing.T) {
	msgs := askMessages(&config.Config{}, &persona.Persona{Name: "bare"}, "hi")
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want just the user turn", len(msgs))
	}
	if msgs[0].Role != llm.RoleUser {
		t.Fatalf("message role = %q", msgs[0].Role)
	}
}

func TestAskRenderOptsMarkupFlag(t *testing.T) {
	orig := askMarkup
	defer func() { askMarkup = orig }()

	cfg := &config.Config{}

	askMarkup = false
	if out := markdown.Render("**bold**", askRenderOpts(cfg)...); strings.Contains(out, "**") {
		t.Fatalf("strip mode kept delimiters: %q", out)
	}

	askMarkup = true
	if out := markdown.Render("**bold**", askRenderOpts(cfg)...); !strings.Contains(out, "**") {
		t.Fatalf("markup mode dropped delimiters: %q", out)
	}
}
