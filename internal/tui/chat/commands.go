package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/parleyhq/parley/internal/persona"
	"github.com/parleyhq/parley/internal/session"
)

// Command represents a slash command
type Command struct {
	Name        string
	Aliases     []string
	Description string
	Usage       string
}

// AllCommands returns all available slash commands
func AllCommands() []Command {
	return []Command{
		{
			Name:        "help",
			Aliases:     []string{"h", "?"},
			Description: "Show commands and keybindings",
			Usage:       "/help",
		},
		{
			Name:        "clear",
			Aliases:     []string{"c"},
			Description: "Clear the screen and start a new session",
			Usage:       "/clear",
		},
		{
			Name:        "model",
			Aliases:     []string{"m"},
			Description: "Show or switch the model",
			Usage:       "/model [id]",
		},
		{
			Name:        "models",
			Description: "List models for the active provider",
			Usage:       "/models",
		},
		{
			Name:        "persona",
			Aliases:     []string{"p"},
			Description: "Show or switch the persona",
			Usage:       "/persona [name]",
		},
		{
			Name:        "sessions",
			Aliases:     []string{"ls"},
			Description: "List recent sessions",
			Usage:       "/sessions",
		},
		{
			Name:        "resume",
			Aliases:     []string{"r"},
			Description: "Resume a previous session",
			Usage:       "/resume <id>",
		},
		{
			Name:        "new",
			Aliases:     []string{"n"},
			Description: "Start a new session (keeps scrollback)",
			Usage:       "/new",
		},
		{
			Name:        "quit",
			Aliases:     []string{"q", "exit"},
			Description: "Exit chat",
			Usage:       "/quit",
		},
	}
}

// CommandSource implements fuzzy.Source for command searching
type CommandSource []Command

func (c CommandSource) String(i int) string {
	return c[i].Name
}

func (c CommandSource) Len() int {
	return len(c)
}

// FilterCommands returns commands matching the query using fuzzy search.
// A query with a space is argument territory and matches nothing here;
// argument completion is the model's job.
func FilterCommands(query string) []Command {
	commands := AllCommands()
	if query == "" {
		return commands
	}

	query = strings.TrimPrefix(query, "/")
	if strings.Contains(query, " ") {
		return nil
	}

	// Exact name/alias match short-circuits, but only for multi-character
	// queries so "/m" still shows both model and models.
	queryLower := strings.ToLower(query)
	if len(query) > 1 {
		for _, cmd := range commands {
			if cmd.Name == queryLower {
				return []Command{cmd}
			}
			for _, alias := range cmd.Aliases {
				if alias == queryLower {
					return []Command{cmd}
				}
			}
		}
	}

	source := CommandSource(commands)
	matches := fuzzy.FindFrom(query, source)

	var result []Command
	for _, match := range matches {
		result = append(result, commands[match.Index])
	}

	// Fuzzy can miss pure prefixes of short names; fall back to a prefix scan.
	if len(result) == 0 {
		for _, cmd := range commands {
			if strings.HasPrefix(cmd.Name, queryLower) {
				result = append(result, cmd)
			}
		}
	}

	return result
}

// ExecuteCommand handles slash command execution
func (m *Model) ExecuteCommand(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	cmdName := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	args := parts[1:]

	var cmd *Command
	for _, c := range AllCommands() {
		if c.Name == cmdName {
			cmd = &c
			break
		}
		for _, alias := range c.Aliases {
			if alias == cmdName {
				cmd = &c
				break
			}
		}
		if cmd != nil {
			break
		}
	}

	// Unique prefixes work too, so /mod resolves to /model.
	if cmd == nil {
		var prefixMatches []Command
		for _, c := range AllCommands() {
			if strings.HasPrefix(c.Name, cmdName) {
				prefixMatches = append(prefixMatches, c)
			}
		}
		switch len(prefixMatches) {
		case 0:
			return m.showSystemMessage(fmt.Sprintf("Unknown command: /%s\nType /help for available commands.", cmdName))
		case 1:
			cmd = &prefixMatches[0]
		default:
			var names []string
			for _, c := range prefixMatches {
				names = append(names, "/"+c.Name)
			}
			return m.showSystemMessage(fmt.Sprintf("Ambiguous command: /%s\nDid you mean: %s?", cmdName, strings.Join(names, ", ")))
		}
	}

	switch cmd.Name {
	case "help":
		return m.cmdHelp()
	case "clear":
		return m.cmdClear()
	case "model":
		return m.cmdModel(args)
	case "models":
		return m.cmdModels()
	case "persona":
		return m.cmdPersona(args)
	case "sessions":
		return m.cmdSessions()
	case "resume":
		return m.cmdResume(args)
	case "new":
		return m.cmdNew()
	case "quit":
		return m.cmdQuit()
	default:
		return m.showSystemMessage(fmt.Sprintf("Command /%s is not yet implemented.", cmd.Name))
	}
}

// Command implementations

// showSystemMessage prints rendered markdown to scrollback and clears the
// composer.
func (m *Model) showSystemMessage(content string) (tea.Model, tea.Cmd) {
	m.editor.Clear()
	m.completions.Hide()
	return m, tea.Println(m.renderMarkdown(content))
}

func (m *Model) showError(text string) (tea.Model, tea.Cmd) {
	m.editor.Clear()
	m.completions.Hide()
	return m, tea.Println(m.styles.Error.Render("✗ " + text))
}

func (m *Model) cmdHelp() (tea.Model, tea.Cmd) {
	var b strings.Builder
	b.WriteString("## Commands\n\n")
	for _, cmd := range AllCommands() {
		b.WriteString(fmt.Sprintf("**%s**", cmd.Usage))
		if len(cmd.Aliases) > 0 {
			b.WriteString(fmt.Sprintf(" (aliases: %s)", strings.Join(cmd.Aliases, ", ")))
		}
		b.WriteString(fmt.Sprintf("\n  %s\n\n", cmd.Description))
	}

	b.WriteString("## Keys\n\n")
	b.WriteString("- `enter` send, `esc` cancel streaming or clear the line\n")
	b.WriteString("- `up`/`down` input history, `tab` accept completion\n")
	b.WriteString("- `ctrl+a`/`ctrl+e` line start/end, `alt+b`/`alt+f` word motion\n")
	b.WriteString("- `ctrl+w` delete word back, `ctrl+u`/`ctrl+k` kill line\n")
	b.WriteString("- `ctrl+l` clear, `ctrl+n` new session, `ctrl+p` command palette\n\n")
	b.WriteString("Mention files with `@path` (globs work: `@internal/**/*.go`); ")
	b.WriteString("their contents are attached to the message.\n")

	return m.showSystemMessage(b.String())
}

func (m *Model) cmdClear() (tea.Model, tea.Cmd) {
	m.startNewSession()
	m.editor.Clear()
	m.completions.Hide()
	return m, tea.Sequence(
		tea.ClearScreen,
		tea.Println(m.styles.Muted.Render("Started a fresh conversation.")),
	)
}

func (m *Model) cmdNew() (tea.Model, tea.Cmd) {
	m.startNewSession()
	return m.showSystemMessage(m.styles.Muted.Render("Started a new session."))
}

// startNewSession leaves the old session in the store and begins a new one.
func (m *Model) startNewSession() {
	ctx := context.Background()
	m.sess = m.newSession()
	_ = m.store.Create(ctx, m.sess)
	_ = m.store.SetCurrent(ctx, m.sess.ID)
	m.messages = nil
	m.sessIn = 0
	m.sessOut = 0
	m.renderer.Reset()
	m.raw.Reset()
}

func (m *Model) cmdQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m *Model) cmdModel(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.showSystemMessage(fmt.Sprintf(
			"Model: **%s** on %s\nUse `/model <id>` to switch, `/models` to list.",
			m.modelName, m.provider.Name()))
	}

	id := args[0]
	m.modelName = id
	m.cfg.ApplyOverrides("", id)
	if m.sess != nil {
		m.sess.Model = id
		_ = m.store.Update(context.Background(), m.sess)
	}
	return m.showSystemMessage(fmt.Sprintf("Model set to **%s**.", id))
}

func (m *Model) cmdModels() (tea.Model, tea.Cmd) {
	m.editor.Clear()
	m.completions.Hide()
	provider := m.provider
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		models, err := provider.ListModels(ctx)
		return modelsLoadedMsg{models: models, err: err}
	}
}

func (m *Model) cmdPersona(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		personas, err := persona.All()
		if err != nil {
			return m.showError("list personas: " + err.Error())
		}
		var b strings.Builder
		b.WriteString("## Personas\n\n")
		for _, p := range personas {
			marker := "  "
			if m.persona != nil && p.Name == m.persona.Name {
				marker = "● "
			}
			b.WriteString(fmt.Sprintf("%s**%s** (%s)", marker, p.Name, p.Source))
			if p.Description != "" {
				b.WriteString(" - " + p.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\nUse `/persona <name>` to switch.")
		return m.showSystemMessage(b.String())
	}

	p, err := persona.Get(args[0])
	if err != nil {
		return m.showError(err.Error())
	}
	m.persona = p
	if m.sess != nil {
		m.sess.Persona = p.Name
		_ = m.store.Update(context.Background(), m.sess)
	}
	return m.showSystemMessage(fmt.Sprintf("Persona set to **%s**.", p.Name))
}

func (m *Model) cmdSessions() (tea.Model, tea.Cmd) {
	summaries, err := m.store.List(context.Background(), 10)
	if err != nil {
		return m.showError("list sessions: " + err.Error())
	}
	if len(summaries) == 0 {
		return m.showSystemMessage(m.styles.Muted.Render("No saved sessions yet."))
	}

	var b strings.Builder
	b.WriteString(m.styles.Subtitle.Render("Recent sessions") + "\n")
	for _, s := range summaries {
		b.WriteString(m.formatSessionLine(s) + "\n")
	}
	b.WriteString(m.styles.Muted.Render("Use /resume <id> to pick one up."))

	m.editor.Clear()
	m.completions.Hide()
	return m, tea.Println(b.String())
}

func (m *Model) formatSessionLine(s session.SessionSummary) string {
	id := s.ID
	if len(id) > 8 {
		id = id[:8]
	}
	label := s.Summary
	if label == "" {
		label = "(empty)"
	}
	marker := "  "
	if m.sess != nil && s.ID == m.sess.ID {
		marker = m.styles.Success.Render("● ")
	}
	return fmt.Sprintf("%s%s  %s %s",
		marker,
		m.styles.Text.Render(label),
		m.styles.Muted.Render(id),
		m.styles.Muted.Render(fmt.Sprintf("(%d msgs, %s)", s.MessageCount, humanTime(s.UpdatedAt))),
	)
}

func (m *Model) cmdResume(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		return m.cmdSessions()
	}

	ctx := context.Background()
	sess, err := m.store.Get(ctx, args[0])
	if err != nil {
		return m.showError(err.Error())
	}
	messages, err := m.store.GetMessages(ctx, sess.ID)
	if err != nil {
		return m.showError("load messages: " + err.Error())
	}

	m.sess = sess
	m.messages = messages
	m.sessIn = sess.InputTokens
	m.sessOut = sess.OutputTokens
	if sess.Model != "" {
		m.modelName = sess.Model
	}
	if sess.Persona != "" {
		if p, err := persona.Get(sess.Persona); err == nil {
			m.persona = p
		}
	}
	_ = m.store.SetCurrent(ctx, sess.ID)
	m.renderer.Reset()
	m.raw.Reset()

	m.editor.Clear()
	m.completions.Hide()

	var b strings.Builder
	label := sess.Name
	if label == "" {
		label = sess.Summary
	}
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Resumed %q (%d messages)", label, len(messages))))
	if tail := m.transcriptTail(6); tail != "" {
		b.WriteString("\n" + tail)
	}
	return m, tea.Println(b.String())
}

// humanTime renders a timestamp relative to now, the way session listings
// usually do.
func humanTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
