package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/persona"
	"github.com/parleyhq/parley/internal/session"
)

// recordingStore captures writes so tests can assert on persistence without
// a database. Reads fall back to the scripted fixtures.
type recordingStore struct {
	session.NoopStore
	mu        sync.Mutex
	created   []*session.Session
	updated   []*session.Session
	added     []session.Message
	metrics   [][2]int
	summaries []session.SessionSummary
	sessions  map[string]*session.Session
	msgs      map[string][]session.Message
}

func newRecordingStore() *recordingStore {
	return &recordingStore{
		sessions: make(map[string]*session.Session),
		msgs:     make(map[string][]session.Message),
	}
}

func (s *recordingStore) Create(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, sess)
	s.sessions[sess.ID] = sess
	return nil
}

func (s *recordingStore) Update(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, sess)
	return nil
}

func (s *recordingStore) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, sess := range s.sessions {
		if strings.HasPrefix(key, id) {
			return sess, nil
		}
	}
	return nil, session.ErrNotFound
}

func (s *recordingStore) AddMessage(ctx context.Context, sessionID string, msg *session.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, *msg)
	s.msgs[sessionID] = append(s.msgs[sessionID], *msg)
	return nil
}

func (s *recordingStore) GetMessages(ctx context.Context, sessionID string) ([]session.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msgs[sessionID], nil
}

func (s *recordingStore) List(ctx context.Context, limit int) ([]session.SessionSummary, error) {
	return s.summaries, nil
}

func (s *recordingStore) UpdateMetrics(ctx context.Context, id string, inputTokens, outputTokens int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = append(s.metrics, [2]int{inputTokens, outputTokens})
	return nil
}

func (s *recordingStore) addedMessages() []session.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]session.Message, len(s.added))
	copy(out, s.added)
	return out
}

func newTestModel(t *testing.T, store session.Store, provider llm.Provider) *Model {
	t.Helper()
	cfg := &config.Config{Provider: "anthropic"}
	cfg.Anthropic.Model = "test-model"
	m := New(Options{
		Config:   cfg,
		Provider: provider,
		Store:    store,
		Persona:  &persona.Persona{Name: "default", System: "be helpful"},
	})
	m.width = 80
	return m
}

// drainStream runs the event loop until the in-flight response finishes,
// the way bubbletea would re-issue the listen command per event.
func drainStream(t *testing.T, m *Model) {
	t.Helper()
	for i := 0; m.streaming; i++ {
		if i > 1000 {
			t.Fatal("stream did not finish")
		}
		msg := m.listenStream()()
		m.Update(msg)
	}
}

func typeString(m *Model, s string) {
	for _, r := range s {
		m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestNewCreatesSession(t *testing.T) {
	store := newRecordingStore()
	m := newTestModel(t, store, llm.NewMockProvider("mock"))

	if len(store.created) != 1 {
		t.Fatalf("expected 1 created session, got %d", len(store.created))
	}
	if m.sess.ID == "" {
		t.Error("session should have an ID")
	}
	if m.sess.Persona != "default" {
		t.Errorf("session persona = %q, want default", m.sess.Persona)
	}
	if m.modelName != "test-model" {
		t.Errorf("modelName = %q, want test-model", m.modelName)
	}
}

func TestNewResumesSession(t *testing.T) {
	store := newRecordingStore()
	sess := &session.Session{ID: "resume-1", Model: "older-model", InputTokens: 10, OutputTokens: 20}
	msgs := []session.Message{
		{SessionID: "resume-1", Role: llm.RoleUser, Content: "earlier question"},
		{SessionID: "resume-1", Role: llm.RoleAssistant, Content: "earlier answer"},
	}

	cfg := &config.Config{Provider: "anthropic"}
	cfg.Anthropic.Model = "test-model"
	m := New(Options{
		Config:   cfg,
		Provider: llm.NewMockProvider("mock"),
		Store:    store,
		Persona:  &persona.Persona{Name: "default"},
		Session:  sess,
		Messages: msgs,
	})

	if len(store.created) != 0 {
		t.Error("resume should not create a new session")
	}
	if m.modelName != "older-model" {
		t.Errorf("modelName = %q, want the session's model", m.modelName)
	}
	if m.sessIn != 10 || m.sessOut != 20 {
		t.Errorf("session tokens = %d/%d, want 10/20", m.sessIn, m.sessOut)
	}
	if len(m.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(m.messages))
	}
	if !strings.Contains(m.greeting, "resumed") {
		t.Error("greeting should mention the resumed session")
	}
}

func TestTypingFlowsToEditor(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))

	typeString(m, "hello world")

	if got := m.editor.Text(); got != "hello world" {
		t.Errorf("editor text = %q, want %q", got, "hello world")
	}
	if m.completions.IsVisible() {
		t.Error("plain text should not open completions")
	}
}

func TestEscClearsEditor(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))
	typeString(m, "half a thought")

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEscape})

	if !m.editor.Empty() {
		t.Errorf("editor should be empty after esc, got %q", m.editor.Text())
	}
	if m.decoder.Buffering() {
		t.Error("decoder should be reset after esc")
	}
}

func TestSlashOpensCompletions(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))

	typeString(m, "/")
	if !m.completions.IsVisible() {
		t.Fatal("typing / should open completions")
	}
	if len(m.completions.filtered) != len(AllCommands()) {
		t.Errorf("expected all commands, got %d", len(m.completions.filtered))
	}

	typeString(m, "he")
	sel := m.completions.Selected()
	if sel == nil || sel.Name != "help" {
		t.Fatalf("expected help selected for /he, got %+v", sel)
	}
}

func TestTabAcceptsCompletion(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))

	typeString(m, "/he")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyTab})

	if got := m.editor.Text(); got != "/help " {
		t.Errorf("editor text = %q, want %q", got, "/help ")
	}
}

func TestEnterOnCompletionRunsArglessCommand(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))

	typeString(m, "/qu")
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEnter})

	if !m.quitting {
		t.Error("accepting /quit with enter should quit")
	}
}

func TestHistoryNavigation(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))
	m.pushHistory("first message")
	m.pushHistory("second message")

	typeString(m, "work in progress")

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.editor.Text(); got != "second message" {
		t.Errorf("after up, editor = %q", got)
	}
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.editor.Text(); got != "first message" {
		t.Errorf("after up up, editor = %q", got)
	}
	// Bottom of history restores the draft.
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.editor.Text(); got != "work in progress" {
		t.Errorf("after down down, editor = %q, want the draft back", got)
	}
}

func TestSubmitStreamsAndPersists(t *testing.T) {
	store := newRecordingStore()
	provider := llm.NewMockProvider("mock")
	provider.AddTurn(llm.MockTurn{
		Text:  "Hello back.",
		Usage: &llm.Usage{InputTokens: 12, OutputTokens: 5},
	})
	m := newTestModel(t, store, provider)

	m.editor.SetText("hello there")
	m.submit()

	if !m.streaming {
		t.Fatal("submit should start streaming")
	}
	drainStream(t, m)

	added := store.addedMessages()
	if len(added) != 2 {
		t.Fatalf("expected user + assistant persisted, got %d messages", len(added))
	}
	if added[0].Role != llm.RoleUser || added[0].Content != "hello there" {
		t.Errorf("user message = %+v", added[0])
	}
	if added[1].Role != llm.RoleAssistant || added[1].Content != "Hello back." {
		t.Errorf("assistant message = %+v", added[1])
	}

	if len(store.metrics) != 1 || store.metrics[0] != [2]int{12, 5} {
		t.Errorf("metrics = %v, want [[12 5]]", store.metrics)
	}
	if m.sessIn != 12 || m.sessOut != 5 {
		t.Errorf("session tokens = %d/%d, want 12/5", m.sessIn, m.sessOut)
	}

	// The request carried the system prompt and the conversation.
	reqs := provider.Requests
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Model != "test-model" {
		t.Errorf("request model = %q", reqs[0].Model)
	}
	if len(reqs[0].Messages) != 2 || reqs[0].Messages[0].Role != llm.RoleSystem {
		t.Fatalf("request messages = %+v", reqs[0].Messages)
	}
	if reqs[0].Messages[0].Content != "be helpful" {
		t.Errorf("system prompt = %q", reqs[0].Messages[0].Content)
	}

	// Summary comes from the first user message.
	if m.sess.Summary != "hello there" {
		t.Errorf("session summary = %q", m.sess.Summary)
	}
	if m.editor.Text() != "" {
		t.Error("editor should be cleared after send")
	}
}

func TestSecondTurnCarriesHistory(t *testing.T) {
	store := newRecordingStore()
	provider := llm.NewMockProvider("mock")
	provider.AddTextResponse("one")
	provider.AddTextResponse("two")
	m := newTestModel(t, store, provider)

	m.editor.SetText("first")
	m.submit()
	drainStream(t, m)

	m.editor.SetText("second")
	m.submit()
	drainStream(t, m)

	reqs := provider.Requests
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	// system + first + "one" + second
	if len(reqs[1].Messages) != 4 {
		t.Fatalf("second request messages = %d, want 4", len(reqs[1].Messages))
	}
	if reqs[1].Messages[2].Role != llm.RoleAssistant || reqs[1].Messages[2].Content != "one" {
		t.Errorf("history not carried: %+v", reqs[1].Messages[2])
	}
}

func TestEscCancelsStreaming(t *testing.T) {
	store := newRecordingStore()
	provider := llm.NewMockProvider("mock")
	provider.AddTurn(llm.MockTurn{Text: "never arrives", Delay: 30 * time.Second})
	m := newTestModel(t, store, provider)

	m.editor.SetText("long question")
	m.submit()
	if !m.streaming {
		t.Fatal("expected streaming")
	}

	m.handleKeyMsg(tea.KeyMsg{Type: tea.KeyEscape})
	if !m.cancelled {
		t.Error("esc during streaming should mark cancelled")
	}
	drainStream(t, m)

	if m.streaming {
		t.Error("stream should be finished after cancel")
	}
	// Nothing arrived, so only the user message was persisted.
	if added := store.addedMessages(); len(added) != 1 {
		t.Errorf("expected only the user message persisted, got %d", len(added))
	}
}

func TestStreamErrorShowsInFooter(t *testing.T) {
	store := newRecordingStore()
	provider := llm.NewMockProvider("mock")
	provider.AddError(errors.New("rate limited"))
	m := newTestModel(t, store, provider)

	m.editor.SetText("hi")
	m.submit()
	drainStream(t, m)

	if m.streaming {
		t.Error("stream should be finished after error")
	}
	footer := m.streamFooter(errors.New("rate limited"))
	if !strings.Contains(footer, "rate limited") {
		t.Errorf("footer = %q, want the error text", footer)
	}
}

func TestSubmitWhileStreamingIsIgnored(t *testing.T) {
	store := newRecordingStore()
	provider := llm.NewMockProvider("mock")
	provider.AddTurn(llm.MockTurn{Text: "slow", Delay: 30 * time.Second})
	m := newTestModel(t, store, provider)

	m.editor.SetText("first")
	m.submit()

	m.editor.SetText("second")
	m.submit()
	if got := len(provider.Requests); got != 1 {
		t.Errorf("expected 1 request while streaming, got %d", got)
	}

	m.cancelStreaming()
	drainStream(t, m)
}

func TestMentionExpandsIntoRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("remember the milk"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newRecordingStore()
	provider := llm.NewMockProvider("mock")
	provider.AddTextResponse("noted")
	m := newTestModel(t, store, provider)

	m.editor.SetText("summarize @" + path)
	m.submit()
	drainStream(t, m)

	added := store.addedMessages()
	if len(added) < 1 {
		t.Fatal("no messages persisted")
	}
	if !strings.Contains(added[0].Content, "remember the milk") {
		t.Error("user message should embed the mentioned file")
	}
	if !strings.Contains(added[0].Content, "<<<<< FILE: "+path+" >>>>>") {
		t.Error("user message should carry the file delimiter")
	}
}

func TestSlashCommandSubmitStartsNewSession(t *testing.T) {
	store := newRecordingStore()
	m := newTestModel(t, store, llm.NewMockProvider("mock"))
	oldID := m.sess.ID

	m.editor.SetText("/new")
	m.submit()

	if m.sess.ID == oldID {
		t.Error("/new should start a fresh session")
	}
	if len(store.created) != 2 {
		t.Errorf("expected 2 created sessions, got %d", len(store.created))
	}
	if m.history[len(m.history)-1] != "/new" {
		t.Error("slash commands should land in input history")
	}
}

func TestViewShowsStatusLine(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))
	m.sessIn, m.sessOut = 100, 50

	view := m.View()
	if !strings.Contains(view, "test-model") {
		t.Error("view should show the model name")
	}
	if !strings.Contains(view, "100 in / 50 out") {
		t.Error("view should show session token counts")
	}
}

func TestViewDuringStreamingShowsTail(t *testing.T) {
	m := newTestModel(t, newRecordingStore(), llm.NewMockProvider("mock"))
	m.streaming = true
	m.raw.WriteString("done line\npartial li")

	view := m.View()
	if !strings.Contains(view, "partial li") {
		t.Error("view should preview the line in flight")
	}
	if strings.Contains(view, "done line") {
		t.Error("completed lines live in scrollback, not the view")
	}
}
