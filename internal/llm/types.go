// Package llm defines the provider abstraction for streaming chat
// completions, with implementations for Anthropic and OpenAI.
package llm

import "context"

// Role identifies who authored a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of conversation context.
type Message struct {
	Role    Role
	Content string
}

// SystemText builds a system message.
func SystemText(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserText builds a user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantText builds an assistant message.
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// Request is a single completion request. Model overrides the provider's
// default when non-empty.
type Request struct {
	Model           string
	Messages        []Message
	MaxOutputTokens int
	Temperature     float64
}

// EventType discriminates stream events.
type EventType string

const (
	// EventTextDelta carries a fragment of assistant text.
	EventTextDelta EventType = "text_delta"
	// EventUsage carries token accounting, usually once near the end.
	EventUsage EventType = "usage"
	// EventDone marks the successful end of the response.
	EventDone EventType = "done"
	// EventError carries a terminal error.
	EventError EventType = "error"
)

// Event is one notification from a response stream.
type Event struct {
	Type  EventType
	Text  string
	Usage *Usage
	Err   error
}

// Usage is token accounting for one response.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ModelInfo describes one model available from a provider.
type ModelInfo struct {
	ID          string
	DisplayName string
	Created     int64
}

// Stream yields events for one response. Recv returns io.EOF after the
// final event, the event's own error for EventError, and the context error
// when the stream is cancelled. Close releases the underlying connection;
// it is safe to call more than once.
type Stream interface {
	Recv() (Event, error)
	Close() error
}

// Provider is a chat completion backend.
type Provider interface {
	// Name returns a human-readable provider description including the
	// default model.
	Name() string
	// Stream starts a completion and returns a stream of events.
	Stream(ctx context.Context, req Request) (Stream, error)
	// ListModels returns the models this provider can serve.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}
