package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/session"
)

// streamEventMsg carries one provider event into Update.
type streamEventMsg struct {
	event llm.Event
}

// modelsLoadedMsg is the async result of /models.
type modelsLoadedMsg struct {
	models []llm.ModelInfo
	err    error
}

func (m *Model) sendMessage(content string) (tea.Model, tea.Cmd) {
	expanded, attached := expandMentions(content)

	userMsg := session.NewMessage(m.sess.ID, llm.UserText(expanded), -1)
	m.messages = append(m.messages, *userMsg)

	ctx := context.Background()
	_ = m.store.AddMessage(ctx, m.sess.ID, userMsg)
	_ = m.store.IncrementUserTurns(ctx, m.sess.ID)
	m.sess.UserTurns++
	if m.sess.Summary == "" {
		m.sess.Summary = session.TruncateSummary(content)
		_ = m.store.Update(ctx, m.sess)
	}

	// Echo the typed text to scrollback with the prompt on the first line
	// and indented continuations. Attachments get a muted trailer.
	prompt := m.styles.Prompt.Render("❯") + " "
	wrapWidth := m.width - 2
	if wrapWidth < 20 {
		wrapWidth = 20
	}
	var echo strings.Builder
	for i, line := range strings.Split(wordwrap.String(content, wrapWidth), "\n") {
		if i == 0 {
			echo.WriteString(prompt)
		} else {
			echo.WriteString("\n  ")
		}
		echo.WriteString(line)
	}
	if len(attached) > 0 {
		echo.WriteString("\n")
		echo.WriteString(m.styles.Muted.Render(fmt.Sprintf("[with: %s]", strings.Join(attached, ", "))))
	}

	m.pushHistory(content)
	m.editor.Clear()
	m.completions.Hide()

	m.streaming = true
	m.waiting = true
	m.cancelled = false
	m.streamStart = time.Now()
	m.turnIn = 0
	m.turnOut = 0
	m.renderer.Reset()
	m.raw.Reset()

	m.beginStream()

	return m, tea.Batch(
		tea.Println(echo.String()),
		m.listenStream(),
		m.spinner.Tick,
	)
}

// beginStream starts the provider request and a pump goroutine that feeds
// events into m.events. Setup happens here, on the Update goroutine, so the
// model is never mutated from a command.
func (m *Model) beginStream() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelStream = cancel

	ch := make(chan llm.Event, 32)
	m.events = ch

	req := m.buildRequest()
	provider := m.provider

	go func() {
		defer close(ch)

		stream, err := provider.Stream(ctx, req)
		if err != nil {
			ch <- llm.Event{Type: llm.EventError, Err: err}
			return
		}
		defer stream.Close()

		for {
			ev, err := stream.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				select {
				case ch <- llm.Event{Type: llm.EventError, Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
}

// listenStream returns a command that blocks on the next stream event. It is
// re-issued from Update after every event. The channel is captured so a
// session reset cannot race with a pending listen.
func (m *Model) listenStream() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamEventMsg{event: llm.Event{Type: llm.EventDone}}
		}
		return streamEventMsg{event: ev}
	}
}

func (m *Model) buildRequest() llm.Request {
	req := llm.Request{
		Model:    m.modelName,
		Messages: m.buildMessages(),
	}
	if m.persona != nil && m.persona.Temperature > 0 {
		req.Temperature = m.persona.Temperature
	}
	return req
}

// buildMessages assembles conversation context. The system prompt is
// derived per request rather than stored, so switching personas mid-session
// takes effect on the next message.
func (m *Model) buildMessages() []llm.Message {
	var messages []llm.Message
	if sys := m.systemPrompt(); sys != "" {
		messages = append(messages, llm.SystemText(sys))
	}
	for _, msg := range m.messages {
		messages = append(messages, msg.ToLLMMessage())
	}
	return messages
}

// systemPrompt is the persona's prompt plus any configured extra
// instructions.
func (m *Model) systemPrompt() string {
	var parts []string
	if m.persona != nil && m.persona.System != "" {
		parts = append(parts, m.persona.System)
	}
	if m.cfg.Chat.Instructions != "" {
		parts = append(parts, m.cfg.Chat.Instructions)
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	ev := msg.event

	switch ev.Type {
	case llm.EventTextDelta:
		m.waiting = false
		m.raw.WriteString(ev.Text)
		// Consume returns only complete styled lines; commit them to
		// scrollback immediately and keep the unstyled tail in View.
		if out := m.renderer.Consume(ev.Text); out != "" {
			return m, tea.Batch(
				tea.Println(strings.TrimSuffix(out, "\n")),
				m.listenStream(),
			)
		}
		return m, m.listenStream()

	case llm.EventUsage:
		if ev.Usage != nil {
			m.turnIn = ev.Usage.InputTokens
			m.turnOut = ev.Usage.OutputTokens
		}
		return m, m.listenStream()

	case llm.EventError:
		return m.finishStream(ev.Err)

	case llm.EventDone:
		return m.finishStream(nil)
	}

	return m, m.listenStream()
}

// finishStream flushes the renderer, persists whatever text arrived even on
// cancel or error, and prints the turn footer.
func (m *Model) finishStream(streamErr error) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if tail := m.renderer.Flush(); tail != "" {
		cmds = append(cmds, tea.Println(tail))
	}

	if m.cancelStream != nil {
		m.cancelStream()
		m.cancelStream = nil
	}
	m.streaming = false
	m.waiting = false
	m.events = nil

	ctx := context.Background()
	if full := m.raw.String(); full != "" {
		asstMsg := session.NewMessage(m.sess.ID, llm.AssistantText(full), -1)
		m.messages = append(m.messages, *asstMsg)
		_ = m.store.AddMessage(ctx, m.sess.ID, asstMsg)
	}
	if m.turnIn > 0 || m.turnOut > 0 {
		_ = m.store.UpdateMetrics(ctx, m.sess.ID, m.turnIn, m.turnOut)
		m.sessIn += m.turnIn
		m.sessOut += m.turnOut
	}

	if footer := m.streamFooter(streamErr); footer != "" {
		cmds = append(cmds, tea.Println(footer+"\n"))
	}

	m.renderer.Reset()
	m.raw.Reset()
	m.turnIn = 0
	m.turnOut = 0

	return m, tea.Batch(cmds...)
}

func (m *Model) streamFooter(streamErr error) string {
	if streamErr != nil && !errors.Is(streamErr, context.Canceled) {
		return m.styles.Error.Render("✗ " + streamErr.Error())
	}

	dur := time.Since(m.streamStart).Round(100 * time.Millisecond)
	parts := []string{dur.String()}
	if m.turnIn > 0 || m.turnOut > 0 {
		parts = append(parts, fmt.Sprintf("%d in / %d out", m.turnIn, m.turnOut))
	}
	line := strings.Join(parts, " · ")

	if m.cancelled || errors.Is(streamErr, context.Canceled) {
		return m.styles.Muted.Render("cancelled · " + line)
	}
	return m.styles.Muted.Render(line)
}

// cancelStreaming asks the in-flight stream to stop. The pump notices the
// cancelled context and the usual finish path runs from the event loop.
func (m *Model) cancelStreaming() {
	if m.cancelStream != nil {
		m.cancelled = true
		m.cancelStream()
	}
}
