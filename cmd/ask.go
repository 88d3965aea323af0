package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/input"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/markdown"
	"github.com/parleyhq/parley/internal/persona"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/signal"
	"github.com/parleyhq/parley/internal/ui"
)

var (
	askPersona   string
	askFiles     []string
	askMarkup    bool
	askPlain     bool
	askNoSession bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and stream the answer",
	Long: `Ask the LLM a single question and stream the styled answer to stdout.
The question comes from the arguments, piped stdin, or both; --file attaches
files as context.

Examples:
  parley ask "What is the capital of France?"
  parley ask "How do I reverse a string in Go?"
  parley ask -f main.go "Explain this code"
  parley ask -f 'internal/**/*.go' "Any obvious bugs?"
  cat error.log | parley ask "What went wrong?"
  parley ask --plain "Write a haiku" > haiku.txt`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askPersona, "persona", "p", "", "Persona to answer as")
	askCmd.Flags().StringArrayVarP(&askFiles, "file", "f", nil, "File(s) to include as context (supports globs, repeatable)")
	askCmd.Flags().BoolVar(&askMarkup, "markup", false, "Keep markup delimiters visible in the styled output")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "Print the raw response without styling")
	askCmd.Flags().BoolVar(&askNoSession, "no-session", false, "Do not save this exchange")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext()
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// Ask-specific config overrides sit between the config defaults and the
	// CLI flags, which always win.
	cfg.ApplyOverrides(cfg.Ask.Provider, cfg.Ask.Model)
	cfg.ApplyOverrides(rootProvider, rootModel)

	p, err := resolvePersona(cfg, askPersona)
	if err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))

	var files []input.FileContent
	if len(askFiles) > 0 {
		files, err = input.ReadFiles(askFiles)
		if err != nil {
			return fmt.Errorf("failed to read files: %w", err)
		}
	}

	stdin, err := input.ReadStdin()
	if err != nil {
		return err
	}

	prompt := buildAskPrompt(question, files, stdin)
	if prompt == "" {
		return fmt.Errorf("nothing to ask: pass a question, pipe stdin, or use --file")
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	req := llm.Request{
		Model:       cfg.ActiveModel(),
		Messages:    askMessages(cfg, p, prompt),
		Temperature: p.Temperature,
	}

	start := time.Now()
	stream, err := provider.Stream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	var raw strings.Builder
	var usage llm.Usage
	renderer := markdown.NewStreamRenderer(askRenderOpts(cfg)...)

	var streamErr error
	for {
		ev, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			streamErr = err
			break
		}
		switch ev.Type {
		case llm.EventTextDelta:
			raw.WriteString(ev.Text)
			if askPlain {
				fmt.Print(ev.Text)
			} else {
				fmt.Print(renderer.Consume(ev.Text))
			}
		case llm.EventUsage:
			if ev.Usage != nil {
				usage.InputTokens += ev.Usage.InputTokens
				usage.OutputTokens += ev.Usage.OutputTokens
			}
		}
	}
	if !askPlain {
		fmt.Print(renderer.Flush())
	}
	if text := raw.String(); text != "" && !strings.HasSuffix(text, "\n") {
		fmt.Println()
	}

	cancelled := errors.Is(streamErr, context.Canceled)
	if streamErr != nil && !cancelled {
		return streamErr
	}

	printAskFooter(time.Since(start), usage, cancelled)
	saveAskExchange(cfg, provider, p, prompt, raw.String(), usage)
	return nil
}

// buildAskPrompt assembles the user prompt from the question and any file
// or stdin context.
func buildAskPrompt(question string, files []input.FileContent, stdin string) string {
	attachments := input.FormatFiles(files, stdin)
	switch {
	case question == "":
		return attachments
	case attachments == "":
		return question
	default:
		return question + "\n\n" + attachments
	}
}

// askMessages builds the request transcript: the system prompt when the
// persona or config provide one, then the user prompt.
func askMessages(cfg *config.Config, p *persona.Persona, prompt string) []llm.Message {
	var msgs []llm.Message
	if sys := askSystemPrompt(cfg, p); sys != "" {
		msgs = append(msgs, llm.SystemText(sys))
	}
	return append(msgs, llm.UserText(prompt))
}

func askSystemPrompt(cfg *config.Config, p *persona.Persona) string {
	var parts []string
	if p != nil && p.System != "" {
		parts = append(parts, p.System)
	}
	if cfg.Ask.Instructions != "" {
		parts = append(parts, cfg.Ask.Instructions)
	}
	return strings.Join(parts, "\n\n")
}

func askRenderOpts(cfg *config.Config) []markdown.Option {
	opts := []markdown.Option{
		markdown.WithHighlight(cfg.Chat.Highlight),
	}
	if askMarkup || cfg.Chat.Markup {
		opts = append(opts, markdown.WithMode(markdown.ModeKeep))
	}
	return opts
}

// printAskFooter writes timing and token usage to stderr so pipelines only
// see the answer on stdout.
func printAskFooter(dur time.Duration, usage llm.Usage, cancelled bool) {
	parts := []string{dur.Round(100 * time.Millisecond).String()}
	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		parts = append(parts, fmt.Sprintf("%d in / %d out", usage.InputTokens, usage.OutputTokens))
	}
	line := strings.Join(parts, " · ")
	if cancelled {
		line = "cancelled · " + line
	}
	st := ui.NewStyles(os.Stderr)
	fmt.Fprintln(os.Stderr, st.Muted.Render(line))
}

// saveAskExchange persists the exchange best-effort. A failing store never
// fails the command; the answer was already printed.
func saveAskExchange(cfg *config.Config, provider llm.Provider, p *persona.Persona, prompt, response string, usage llm.Usage) {
	if response == "" {
		return
	}
	store, err := openStore(cfg, askNoSession)
	if err != nil {
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	sess := &session.Session{
		ID:        session.NewID(),
		Summary:   session.TruncateSummary(prompt),
		Provider:  provider.Name(),
		Model:     cfg.ActiveModel(),
		Persona:   p.Name,
		CreatedAt: now,
		UpdatedAt: now,
		UserTurns: 1,
	}
	if err := store.Create(ctx, sess); err != nil {
		return
	}
	_ = store.AddMessage(ctx, sess.ID, session.NewMessage(sess.ID, llm.UserText(prompt), -1))
	_ = store.AddMessage(ctx, sess.ID, session.NewMessage(sess.ID, llm.AssistantText(response), -1))
	if usage.InputTokens > 0 || usage.OutputTokens > 0 {
		_ = store.UpdateMetrics(ctx, sess.ID, usage.InputTokens, usage.OutputTokens)
	}
	_ = store.SetCurrent(ctx, sess.ID)
}
