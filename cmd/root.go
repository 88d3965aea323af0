package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/persona"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/ui"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	rootConfigFile string
	rootProvider   string
	rootModel      string
	rootNoColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Chat with LLMs from your terminal",
	Long: `parley is a terminal chat client for LLMs with streaming markup
rendering, personas, and local conversation history.

Examples:
  parley                                # interactive chat
  parley ask "what does SIGHUP mean?"
  cat crash.log | parley ask "what went wrong?"
  parley fmt README.md                  # render markup to the terminal
  parley sessions                       # list saved conversations
  parley config init                    # first-time setup`,
	RunE:              runChat,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceUsage:      true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&rootConfigFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/parley/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootProvider, "provider", "P", "", "Override provider (anthropic, openai)")
	rootCmd.PersistentFlags().StringVarP(&rootModel, "model", "m", "", "Override model for the active provider")
	rootCmd.PersistentFlags().BoolVar(&rootNoColor, "no-color", false, "Disable colored output")

	// Bare `parley` runs chat, so the chat flags must parse on the root
	// command too.
	addChatFlags(rootCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the configuration, applies the global flag overrides and
// installs the configured theme. Every command goes through here so flags
// and theme behave identically everywhere.
func loadConfig() (*config.Config, error) {
	if rootConfigFile != "" {
		config.SetConfigFile(rootConfigFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(rootProvider, rootModel)

	if rootNoColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	ui.InitTheme(uiThemeConfig(cfg))

	return cfg, nil
}

// uiThemeConfig copies the configured palette into the ui package's own
// config type, which stays free of the config package.
func uiThemeConfig(cfg *config.Config) ui.ThemeConfig {
	return ui.ThemeConfig{
		Primary:   cfg.Theme.Primary,
		Secondary: cfg.Theme.Secondary,
		Accent:    cfg.Theme.Accent,
		Success:   cfg.Theme.Success,
		Error:     cfg.Theme.Error,
		Warning:   cfg.Theme.Warning,
		Muted:     cfg.Theme.Muted,
		Text:      cfg.Theme.Text,
		Border:    cfg.Theme.Border,
		Prompt:    cfg.Theme.Prompt,
	}
}

// resolvePersona picks the persona for a command. An explicit flag value
// must resolve; a name from the config falls back to the builtin default
// with a warning, so a stale config never blocks startup.
func resolvePersona(cfg *config.Config, explicit string) (*persona.Persona, error) {
	if explicit != "" {
		p, err := persona.Get(explicit)
		if err != nil {
			return nil, fmt.Errorf("unknown persona %q (available: %s)",
				explicit, strings.Join(persona.Names(), ", "))
		}
		return p, nil
	}
	if cfg.Chat.Persona != "" {
		if p, err := persona.Get(cfg.Chat.Persona); err == nil {
			return p, nil
		}
		fmt.Fprintf(os.Stderr, "Warning: persona %q from config not found, using default\n", cfg.Chat.Persona)
	}
	return persona.Default(), nil
}

// openStore opens the session store. With persistence disabled (in config
// or via --no-session) this returns a no-op store, so callers never branch.
// The store is wrapped so persistence failures surface as warnings instead
// of killing the conversation.
func openStore(cfg *config.Config, disabled bool) (session.Store, error) {
	store, err := session.NewStore(session.Config{
		Enabled:    cfg.Session.Enabled && !disabled,
		Path:       cfg.Session.Path,
		MaxAgeDays: cfg.Session.MaxAgeDays,
		MaxCount:   cfg.Session.MaxCount,
	})
	if err != nil {
		return nil, err
	}
	return session.NewLoggingStore(store, func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
	}), nil
}
