package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/persona"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/tui/chat"
)

var (
	chatPersona   string
	chatResume    string
	chatNoSession bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session. This is also what bare parley runs.

Examples:
  parley chat
  parley chat --persona reviewer
  parley chat --resume                  # pick up the last conversation
  parley chat --resume 3f2a             # resume by id prefix

Keys:
  Enter        send message
  Esc          cancel streaming / clear input
  Ctrl+C       cancel streaming / quit
  Up/Down      input history
  Ctrl+L       clear screen
  Ctrl+N       new conversation
  Ctrl+P       command palette

Type / for commands and @path to attach a file to your message.

Built-in personas (user files in the config dir shadow these):
` + persona.DescribeBuiltins(),
	RunE: runChat,
}

func init() {
	addChatFlags(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

// addChatFlags registers the chat flags; they also live on the root command
// because bare parley starts the chat.
func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&chatPersona, "persona", "p", "", "Persona to chat with")
	cmd.Flags().StringVarP(&chatResume, "resume", "r", "", "Resume a session (no value for most recent, or id prefix)")
	cmd.Flags().Lookup("resume").NoOptDefVal = " " // space means the flag was passed bare
	cmd.Flags().BoolVar(&chatNoSession, "no-session", false, "Do not persist this conversation")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	p, err := resolvePersona(cfg, chatPersona)
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, chatNoSession)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := chat.Options{
		Config:   cfg,
		Provider: provider,
		Store:    store,
		Persona:  p,
	}

	if cmd.Flags().Changed("resume") {
		sess, msgs, err := resumeSession(cmd.Context(), store, strings.TrimSpace(chatResume))
		if err != nil {
			return err
		}
		opts.Session = sess
		opts.Messages = msgs
	}

	return chat.Run(opts)
}

// resumeSession loads the session to continue: the most recent one when id
// is empty, otherwise the session matching the id or unique id prefix.
func resumeSession(ctx context.Context, store session.Store, id string) (*session.Session, []session.Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var sess *session.Session
	var err error
	if id == "" {
		sess, err = store.GetCurrent(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up last session: %w", err)
		}
		if sess == nil {
			return nil, nil, fmt.Errorf("no session to resume (is session storage enabled?)")
		}
	} else {
		sess, err = store.Get(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resume session %q: %w", id, err)
		}
	}

	msgs, err := store.GetMessages(ctx, sess.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load session messages: %w", err)
	}
	return sess, msgs, nil
}
