package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Provider  string          `mapstructure:"provider"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Ask       AskConfig       `mapstructure:"ask"`
	Theme     ThemeConfig     `mapstructure:"theme"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Session   SessionConfig   `mapstructure:"session"`
}

// ChatConfig configures the interactive chat command
type ChatConfig struct {
	Persona      string `mapstructure:"persona"`      // Default persona name
	Instructions string `mapstructure:"instructions"` // Extra system prompt appended to the persona
	Highlight    bool   `mapstructure:"highlight"`    // Syntax highlight fenced code blocks
	Markup       bool   `mapstructure:"markup"`       // Keep markup delimiters visible in styled output
}

// AskConfig configures the one-shot ask command
type AskConfig struct {
	Provider     string `mapstructure:"provider"`     // Override provider for ask
	Model        string `mapstructure:"model"`        // Override model for ask
	Instructions string `mapstructure:"instructions"` // Custom system prompt for ask
}

// ThemeConfig allows customization of UI colors
// Colors can be ANSI color numbers (0-255) or hex codes (#RRGGBB)
type ThemeConfig struct {
	Primary   string `mapstructure:"primary"`   // main accent (prompt, selection)
	Secondary string `mapstructure:"secondary"` // secondary accent (titles)
	Accent    string `mapstructure:"accent"`    // command names, spinner
	Success   string `mapstructure:"success"`   // success states
	Error     string `mapstructure:"error"`     // error states
	Warning   string `mapstructure:"warning"`   // warnings
	Muted     string `mapstructure:"muted"`     // dimmed text
	Text      string `mapstructure:"text"`      // primary text
	Border    string `mapstructure:"border"`    // popup borders
	Prompt    string `mapstructure:"prompt"`    // composer prompt marker
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// SessionConfig configures local conversation history
type SessionConfig struct {
	Enabled    bool   `mapstructure:"enabled"`      // Persist sessions to the local database
	Path       string `mapstructure:"path"`         // Database path override (default: XDG data dir)
	MaxAgeDays int    `mapstructure:"max_age_days"` // Delete sessions older than this (0 = keep forever)
	MaxCount   int    `mapstructure:"max_count"`    // Keep at most this many sessions (0 = unlimited)
}

// Defaults returns the built-in configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		Provider:  "anthropic",
		Chat:      ChatConfig{Highlight: true},
		Anthropic: AnthropicConfig{Model: "claude-sonnet-4-5"},
		OpenAI:    OpenAIConfig{Model: "gpt-5.2"},
		Session:   SessionConfig{Enabled: true, MaxAgeDays: 90, MaxCount: 500},
	}
}

// configFile, when set, bypasses the normal search paths.
var configFile string

// SetConfigFile forces Load to read an explicit file instead of searching
// the XDG config directory.
func SetConfigFile(path string) {
	configFile = path
}

func Load() (*Config, error) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		configPath, err := GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config dir: %w", err)
		}

		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(configPath)
		viper.AddConfigPath(".")
	}

	def := Defaults()
	viper.SetDefault("provider", def.Provider)
	viper.SetDefault("chat.highlight", def.Chat.Highlight)
	viper.SetDefault("anthropic.model", def.Anthropic.Model)
	viper.SetDefault("openai.model", def.OpenAI.Model)
	viper.SetDefault("session.enabled", def.Session.Enabled)
	viper.SetDefault("session.max_age_days", def.Session.MaxAgeDays)
	viper.SetDefault("session.max_count", def.Session.MaxCount)

	// Read config file (optional - won't error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	resolveAnthropicCredentials(&cfg.Anthropic)
	resolveOpenAICredentials(&cfg.OpenAI)

	return &cfg, nil
}

// ApplyOverrides applies provider and model overrides to the config.
// If provider is non-empty, it overrides the global provider.
// If model is non-empty, it overrides the model for the active provider.
func (c *Config) ApplyOverrides(provider, model string) {
	if provider != "" {
		c.Provider = provider
	}
	if model != "" {
		switch strings.ToLower(strings.TrimSpace(c.Provider)) {
		case "", "anthropic":
			c.Anthropic.Model = model
		case "openai":
			c.OpenAI.Model = model
		}
	}
}

// ActiveModel returns the configured model for the active provider.
func (c *Config) ActiveModel() string {
	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "openai":
		return c.OpenAI.Model
	default:
		return c.Anthropic.Model
	}
}

func resolveAnthropicCredentials(cfg *AnthropicConfig) {
	cfg.APIKey = expandEnv(cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

func resolveOpenAICredentials(cfg *OpenAIConfig) {
	cfg.APIKey = expandEnv(cfg.APIKey)
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

// expandEnv expands ${VAR} or $VAR in a string
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// GetConfigDir returns the XDG config directory for parley.
// Uses $XDG_CONFIG_HOME if set, otherwise ~/.config
func GetConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "parley"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "parley"), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// NeedsSetup returns true if config file doesn't exist
func NeedsSetup() bool {
	return !Exists()
}

// Save writes the config to disk
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`provider: %s

anthropic:
  model: %s
  # api_key: set here or via ANTHROPIC_API_KEY

openai:
  model: %s
  # api_key: set here or via OPENAI_API_KEY

chat:
  highlight: %t
  # persona: default persona name (see %s/personas/)
  # instructions: |
  #   Extra system prompt appended to every chat.

session:
  enabled: %t
  max_age_days: %d
  max_count: %d
  # path: override the database location
`, cfg.Provider, cfg.Anthropic.Model, cfg.OpenAI.Model, cfg.Chat.Highlight,
		dir, cfg.Session.Enabled, cfg.Session.MaxAgeDays, cfg.Session.MaxCount)

	return os.WriteFile(path, []byte(content), 0600)
}
