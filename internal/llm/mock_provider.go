package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockTurn scripts one response from a MockProvider.
type MockTurn struct {
	// Text is streamed as EventTextDelta fragments.
	Text string
	// ChunkSize is the fragment size in runes. Zero uses a default.
	ChunkSize int
	// Err ends the turn with a terminal error instead of a response.
	Err error
	// Delay pauses before the first event, to exercise cancellation.
	Delay time.Duration
	// Usage overrides the synthesized usage event.
	Usage *Usage
}

// MockProvider is a scripted Provider for tests. Each Stream call consumes
// the next configured turn and records the request it was given.
type MockProvider struct {
	mu       sync.Mutex
	name     string
	turns    []MockTurn
	turn     int
	Requests []Request
}

func NewMockProvider(name string) *MockProvider {
	return &MockProvider{name: name}
}

// AddTextResponse scripts a turn that streams text in small fragments.
func (p *MockProvider) AddTextResponse(text string) {
	p.AddTurn(MockTurn{Text: text})
}

// AddError scripts a turn that fails with err.
func (p *MockProvider) AddError(err error) {
	p.AddTurn(MockTurn{Err: err})
}

func (p *MockProvider) AddTurn(turn MockTurn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.turns = append(p.turns, turn)
}

// Reset forgets recorded requests and replays turns from the beginning.
func (p *MockProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = nil
	p.turn = 0
}

// CurrentTurn reports how many turns have been consumed.
func (p *MockProvider) CurrentTurn() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.turn
}

func (p *MockProvider) Name() string {
	return p.name
}

func (p *MockProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return []ModelInfo{
		{ID: "mock-small", DisplayName: "Mock Small"},
		{ID: "mock-large", DisplayName: "Mock Large"},
	}, nil
}

func (p *MockProvider) Stream(ctx context.Context, req Request) (Stream, error) {
	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	if p.turn >= len(p.turns) {
		turn := p.turn
		p.mu.Unlock()
		return nil, fmt.Errorf("mock provider %q: no response scripted for turn %d", p.name, turn)
	}
	turn := p.turns[p.turn]
	p.turn++
	p.mu.Unlock()

	return newEventStream(ctx, func(ctx context.Context, events chan<- Event) error {
		if turn.Delay > 0 {
			select {
			case <-time.After(turn.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if turn.Err != nil {
			return turn.Err
		}

		size := turn.ChunkSize
		if size <= 0 {
			size = 10
		}
		chunks := chunkText(turn.Text, size)
		for _, chunk := range chunks {
			if !emit(ctx, events, Event{Type: EventTextDelta, Text: chunk}) {
				return ctx.Err()
			}
		}

		usage := turn.Usage
		if usage == nil {
			usage = &Usage{OutputTokens: len(chunks)}
		}
		emit(ctx, events, Event{Type: EventUsage, Usage: usage})
		emit(ctx, events, Event{Type: EventDone})
		return nil
	}), nil
}

// chunkText splits text into rune-aligned fragments of at most size runes.
func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
