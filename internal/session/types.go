// Package session persists chat transcripts in a local SQLite database
// and exposes listing, search, and resume over them.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parleyhq/parley/internal/llm"
)

// Session is one stored conversation.
type Session struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Summary      string    `json:"summary,omitempty"` // First user message, truncated
	Provider     string    `json:"provider"`          // Provider display label
	Model        string    `json:"model"`
	Persona      string    `json:"persona,omitempty"` // Persona active when the session started
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	UserTurns    int       `json:"user_turns,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
}

// Message is one stored turn of a session.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      llm.Role  `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Sequence  int       `json:"sequence"`
}

// SessionSummary is a lightweight view of a session for listing.
type SessionSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	UserTurns    int       `json:"user_turns,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SearchResult is one full-text search match.
type SearchResult struct {
	SessionID   string    `json:"session_id"`
	MessageID   int64     `json:"message_id"`
	SessionName string    `json:"session_name"`
	Summary     string    `json:"summary"`
	Snippet     string    `json:"snippet"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// NewMessage builds a stored message from an llm.Message. A negative
// sequence asks the store to allocate the next one.
func NewMessage(sessionID string, msg llm.Message, sequence int) *Message {
	return &Message{
		SessionID: sessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: time.Now(),
		Sequence:  sequence,
	}
}

// ToLLMMessage converts a stored message back into conversation context.
func (m *Message) ToLLMMessage() llm.Message {
	return llm.Message{
		Role:    m.Role,
		Content: m.Content,
	}
}

// TruncateSummary returns the first line of content, truncated to 100 chars.
func TruncateSummary(content string) string {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "\n"); idx != -1 {
		content = content[:idx]
	}
	if len(content) > 100 {
		content = content[:97] + "..."
	}
	return content
}
