package session

import (
	"strings"
	"testing"

	"github.com/parleyhq/parley/internal/llm"
)

func TestTruncateSummary(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short question", "short question"},
		{"  padded  ", "padded"},
		{"first line\nsecond line", "first line"},
		{strings.Repeat("x", 100), strings.Repeat("x", 100)},
		{strings.Repeat("x", 150), strings.Repeat("x", 97) + "..."},
	}

	for _, tt := range tests {
		if got := TruncateSummary(tt.in); got != tt.want {
			t.Errorf("TruncateSummary(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewMessageRoundTrip(t *testing.T) {
	orig := llm.AssistantText("hello there")
	msg := NewMessage("sess-1", orig, -1)

	if msg.SessionID != "sess-1" {
		t.Errorf("session id = %q", msg.SessionID)
	}
	if msg.Sequence != -1 {
		t.Errorf("sequence = %d, want -1", msg.Sequence)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if got := msg.ToLLMMessage(); got != orig {
		t.Errorf("round trip = %+v, want %+v", got, orig)
	}
}

func TestNewIDIsUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatalf("NewID() returned duplicate %q", a)
	}
	if len(a) != 36 {
		t.Errorf("NewID() length = %d, want 36", len(a))
	}
}
