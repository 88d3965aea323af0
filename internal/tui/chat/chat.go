// Package chat implements the interactive chat TUI: a line editor fed by an
// escape-sequence decoder, slash commands with a completions popup, and
// responses streamed straight into the terminal's scrollback.
//
// The program runs inline rather than in the alt screen. Finished output is
// committed with tea.Println; View only draws the live bottom area, so a
// long conversation scrolls back naturally after exit.
package chat

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/editor"
	"github.com/parleyhq/parley/internal/input"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/markdown"
	"github.com/parleyhq/parley/internal/persona"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/ui"
)

type completionKind int

const (
	completionCommands completionKind = iota
	completionArgs
)

// Options configures a new chat model.
type Options struct {
	Config   *config.Config
	Provider llm.Provider
	Store    session.Store
	Persona  *persona.Persona
	Session  *session.Session  // non-nil resumes an existing session
	Messages []session.Message // transcript of the resumed session
}

// Model is the bubbletea model for interactive chat.
type Model struct {
	width  int
	height int

	cfg       *config.Config
	provider  llm.Provider
	modelName string
	persona   *persona.Persona

	store    session.Store
	sess     *session.Session
	messages []session.Message

	editor         *editor.Editor
	decoder        *input.Decoder
	completions    *CompletionsModel
	completionKind completionKind
	spinner        spinner.Model
	styles         *ui.Styles
	keyMap         KeyMap
	renderer       *markdown.StreamRenderer

	// Input history, newest last. histIdx == len(history) means the live
	// draft is being edited.
	history []string
	histIdx int
	draft   string

	streaming    bool
	waiting      bool // no delta received yet
	cancelled    bool
	events       chan llm.Event
	cancelStream context.CancelFunc
	streamStart  time.Time
	raw          strings.Builder // unstyled response text for persistence
	turnIn       int
	turnOut      int
	sessIn       int
	sessOut      int

	// Cached /models listing for argument completion.
	models []llm.ModelInfo

	greeting string
	quitting bool
}

// New builds the chat model. A nil Options.Session starts a fresh session;
// otherwise the given session and transcript are resumed.
func New(opts Options) *Model {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width, height = 80, 24
	}

	styles := ui.DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Spinner

	p := opts.Persona
	if p == nil {
		p = persona.Default()
	}

	m := &Model{
		width:     width,
		height:    height,
		cfg:       opts.Config,
		provider:  opts.Provider,
		modelName: opts.Config.ActiveModel(),
		persona:   p,
		store:     opts.Store,
		editor:    editor.New(),
		decoder:   &input.Decoder{},
		spinner:   sp,
		styles:    styles,
		keyMap:    DefaultKeyMap(),
	}
	m.completions = NewCompletionsModel(styles)
	m.completions.SetWidth(width)
	m.renderer = markdown.NewStreamRenderer(m.renderOpts()...)

	ctx := context.Background()
	if opts.Session != nil {
		m.sess = opts.Session
		m.messages = opts.Messages
		m.sessIn = opts.Session.InputTokens
		m.sessOut = opts.Session.OutputTokens
		if opts.Session.Model != "" {
			m.modelName = opts.Session.Model
		}
		if opts.Session.Persona != "" {
			if pp, err := persona.Get(opts.Session.Persona); err == nil {
				m.persona = pp
			}
		}
		_ = m.store.SetCurrent(ctx, m.sess.ID)
	} else {
		m.sess = m.newSession()
		_ = m.store.Create(ctx, m.sess)
		_ = m.store.SetCurrent(ctx, m.sess.ID)
	}

	m.greeting = m.buildGreeting(opts.Session != nil)
	return m
}

// Run starts the interactive chat program.
func Run(opts Options) error {
	_, err := tea.NewProgram(New(opts)).Run()
	return err
}

func (m *Model) newSession() *session.Session {
	now := time.Now()
	return &session.Session{
		ID:        session.NewID(),
		Provider:  m.provider.Name(),
		Model:     m.modelName,
		Persona:   m.persona.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *Model) buildGreeting(resumed bool) string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("parley"))
	b.WriteString(" ")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("· %s · /help for commands", m.modelName)))
	if resumed {
		label := m.sess.Name
		if label == "" {
			label = m.sess.Summary
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("resumed %q (%d messages)", label, len(m.messages))))
		if tail := m.transcriptTail(4); tail != "" {
			b.WriteString("\n\n" + tail)
		}
	}
	return b.String()
}

// transcriptTail renders the last n stored messages, truncated, so a
// resumed conversation shows where it left off.
func (m *Model) transcriptTail(n int) string {
	msgs := m.messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	var parts []string
	for _, msg := range msgs {
		switch msg.Role {
		case llm.RoleUser:
			parts = append(parts, m.styles.Prompt.Render("❯")+" "+firstLine(truncateRunes(msg.Content, 200)))
		case llm.RoleAssistant:
			parts = append(parts, m.renderMarkdown(truncateRunes(msg.Content, 400)))
		}
	}
	return strings.Join(parts, "\n")
}

func (m *Model) Init() tea.Cmd {
	if m.greeting == "" {
		return nil
	}
	return tea.Println(m.greeting + "\n")
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.completions.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case streamEventMsg:
		return m.handleStreamEvent(msg)

	case modelsLoadedMsg:
		return m.handleModelsLoaded(msg)

	case spinner.TickMsg:
		if !m.streaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The popup owns navigation and acceptance while visible. Anything else
	// falls through to the editor and refilters.
	if m.completions.IsVisible() {
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("up", "down", "ctrl+p", "ctrl+n"))):
			_, cmd := m.completions.Update(msg)
			return m, cmd
		case key.Matches(msg, m.keyMap.Cancel):
			m.completions.Hide()
			return m, nil
		case key.Matches(msg, m.keyMap.Tab):
			return m.acceptCompletion(false)
		case key.Matches(msg, m.keyMap.Send):
			return m.acceptCompletion(true)
		}
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		if m.streaming {
			m.cancelStreaming()
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		// Esc never reaches the decoder; a lone ESC would sit in its
		// buffer waiting for a sequence that is not coming.
		m.decoder.Reset()
		if m.streaming {
			m.cancelStreaming()
			return m, nil
		}
		m.editor.Clear()
		return m, nil

	case key.Matches(msg, m.keyMap.Clear):
		return m.cmdClear()

	case key.Matches(msg, m.keyMap.New):
		return m.cmdNew()

	case key.Matches(msg, m.keyMap.Commands):
		m.completionKind = completionCommands
		m.completions.Show()
		return m, nil

	case key.Matches(msg, m.keyMap.Up):
		m.historyPrev()
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.historyNext()
		return m, nil

	case key.Matches(msg, m.keyMap.Tab):
		if strings.HasPrefix(m.editor.Text(), "/") {
			m.updateCompletions()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Send):
		return m.submit()
	}

	// Everything else flows through the escape decoder into the editor.
	act, _ := m.decoder.Decode(input.FromKeyMsg(msg))
	switch act.Kind {
	case input.ActionIgnore, input.ActionStillBuffering:
		return m, nil
	case input.ActionSubmit:
		return m.submit()
	}
	m.editor.Apply(act)
	m.updateCompletions()
	return m, nil
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.editor.Text())
	if text == "" {
		return m, nil
	}
	if m.streaming {
		// One response at a time.
		return m, nil
	}
	m.completions.Hide()
	if strings.HasPrefix(text, "/") {
		m.pushHistory(text)
		m.editor.Clear()
		return m.ExecuteCommand(text)
	}
	return m.sendMessage(text)
}

// acceptCompletion writes the selected item into the editor. With execute
// set, argument items and argument-less commands run immediately; commands
// that take an argument are inserted ready for it either way.
func (m *Model) acceptCompletion(execute bool) (tea.Model, tea.Cmd) {
	sel := m.completions.Selected()
	if sel == nil {
		m.completions.Hide()
		return m, nil
	}

	if m.completionKind == completionArgs {
		fields := strings.Fields(m.editor.Text())
		if len(fields) == 0 {
			m.completions.Hide()
			return m, nil
		}
		line := fields[0] + " " + sel.Name
		m.completions.Hide()
		if execute {
			m.pushHistory(line)
			m.editor.Clear()
			return m.ExecuteCommand(line)
		}
		m.editor.SetText(line)
		return m, nil
	}

	hasArg := strings.ContainsAny(sel.Usage, "<[")
	line := "/" + sel.Name
	if execute && !hasArg {
		m.completions.Hide()
		m.pushHistory(line)
		m.editor.Clear()
		return m.ExecuteCommand(line)
	}
	m.editor.SetText(line + " ")
	m.updateCompletions()
	return m, nil
}

// updateCompletions syncs the popup with the editor. A leading slash shows
// command completions; a command plus a space switches to argument
// completions for the commands that take one.
func (m *Model) updateCompletions() {
	text := m.editor.Text()
	if !strings.HasPrefix(text, "/") {
		if m.completions.IsVisible() {
			m.completions.Hide()
		}
		return
	}

	rest := strings.TrimPrefix(text, "/")
	if name, arg, ok := strings.Cut(rest, " "); ok {
		items := m.argCompletions(name, strings.TrimSpace(arg))
		m.completionKind = completionArgs
		if len(items) == 0 {
			m.completions.Hide()
			return
		}
		m.completions.SetItems(items)
		return
	}

	m.completionKind = completionCommands
	if !m.completions.IsVisible() {
		m.completions.Show()
	}
	m.completions.SetQuery(rest)
}

func (m *Model) argCompletions(name, arg string) []Command {
	var items []Command
	switch name {
	case "persona", "p":
		personas, err := persona.All()
		if err != nil {
			return nil
		}
		for _, p := range personas {
			if strings.HasPrefix(p.Name, arg) {
				items = append(items, Command{Name: p.Name, Description: p.Description})
			}
		}
	case "resume", "r":
		summaries, err := m.store.List(context.Background(), 10)
		if err != nil {
			return nil
		}
		for _, s := range summaries {
			if m.sess != nil && s.ID == m.sess.ID {
				continue
			}
			id := s.ID
			if len(id) > 8 {
				id = id[:8]
			}
			if !strings.HasPrefix(id, arg) {
				continue
			}
			items = append(items, Command{Name: id, Description: s.Summary})
		}
	case "model", "m":
		for _, info := range m.models {
			if strings.HasPrefix(info.ID, arg) {
				items = append(items, Command{Name: info.ID, Description: info.DisplayName})
			}
		}
	}
	return items
}

func (m *Model) pushHistory(text string) {
	if n := len(m.history); n == 0 || m.history[n-1] != text {
		m.history = append(m.history, text)
	}
	m.histIdx = len(m.history)
	m.draft = ""
}

func (m *Model) historyPrev() {
	if len(m.history) == 0 || m.histIdx == 0 {
		return
	}
	if m.histIdx == len(m.history) {
		m.draft = m.editor.Text()
	}
	m.histIdx--
	m.editor.SetText(m.history[m.histIdx])
}

func (m *Model) historyNext() {
	if m.histIdx >= len(m.history) {
		return
	}
	m.histIdx++
	if m.histIdx == len(m.history) {
		m.editor.SetText(m.draft)
		return
	}
	m.editor.SetText(m.history[m.histIdx])
}

func (m *Model) handleModelsLoaded(msg modelsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, tea.Println(m.styles.Error.Render("✗ list models: " + msg.err.Error()))
	}
	m.models = msg.models

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Models · "+m.provider.Name()) + "\n")
	for _, info := range msg.models {
		marker := "  "
		if info.ID == m.modelName {
			marker = m.styles.Success.Render("● ")
		}
		line := marker + m.styles.Text.Render(info.ID)
		if info.DisplayName != "" && info.DisplayName != info.ID {
			line += "  " + m.styles.Muted.Render(info.DisplayName)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(m.styles.Muted.Render("Use /model <id> to switch."))
	return m, tea.Println(b.String())
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if m.streaming {
		if tail := m.streamTail(); tail != "" {
			b.WriteString(tail)
			b.WriteString("\n")
		}
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(m.styles.Muted.Render(m.streamStatus()))
		b.WriteString("\n")
		if !m.editor.Empty() {
			b.WriteString(m.editor.View(m.styles.Prompt.Render("❯")+" ", m.width))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString(m.editor.View(m.styles.Prompt.Render("❯")+" ", m.width))
	b.WriteString("\n")

	if popup := m.completions.View(); popup != "" {
		b.WriteString(popup)
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	return b.String()
}

// streamTail is the raw text since the last completed line. Completed lines
// are already styled in scrollback; this previews the line in flight.
func (m *Model) streamTail() string {
	raw := m.raw.String()
	if i := strings.LastIndexByte(raw, '\n'); i >= 0 {
		raw = raw[i+1:]
	}
	if raw == "" {
		return ""
	}
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	return wordwrap.String(raw, w)
}

func (m *Model) streamStatus() string {
	elapsed := time.Since(m.streamStart).Round(time.Second)
	if m.waiting {
		return fmt.Sprintf("thinking · %s · esc to cancel", elapsed)
	}
	return fmt.Sprintf("streaming · %s · esc to cancel", elapsed)
}

func (m *Model) statusLine() string {
	parts := []string{m.modelName, m.persona.Name}
	if m.sessIn+m.sessOut > 0 {
		parts = append(parts, fmt.Sprintf("%d in / %d out", m.sessIn, m.sessOut))
	}
	return m.styles.Status.Render(strings.Join(parts, " · "))
}

func (m *Model) renderOpts() []markdown.Option {
	opts := []markdown.Option{
		markdown.WithWidth(func() int { return m.width }),
		markdown.WithHighlight(m.cfg.Chat.Highlight),
	}
	if m.cfg.Chat.Markup {
		opts = append(opts, markdown.WithMode(markdown.ModeKeep))
	}
	return opts
}

func (m *Model) renderMarkdown(content string) string {
	return markdown.Render(content, m.renderOpts()...)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
