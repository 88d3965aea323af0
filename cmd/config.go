package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage parley configuration",
	Long: `View or edit your parley configuration.

Examples:
  parley config                         # show resolved configuration
  parley config init                    # interactive first-time setup
  parley config set openai.model gpt-5.2
  parley config get provider
  parley config theme                   # pick a color theme
  parley config completion zsh          # shell completion script`,
	RunE: runConfigShow, // Default to show
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file interactively",
	Long: `Walk through provider, API key, session and theme choices and write
the configuration file.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by dotted key, preserving any comments in
the file.

Examples:
  parley config set provider openai
  parley config set anthropic.model claude-sonnet-4-5
  parley config set chat.persona concise
  parley config set session.enabled false`,
	Args:              cobra.ExactArgs(2),
	RunE:              runConfigSet,
	ValidArgsFunction: configKeyCompletion,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a raw configuration value by dotted key.

Examples:
  parley config get provider
  parley config get anthropic.model`,
	Args:              cobra.ExactArgs(1),
	RunE:              runConfigGet,
	ValidArgsFunction: configKeyCompletion,
}

var installCompletions bool

var configCompletionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script, or install it with --install.

Examples:
  parley config completion zsh --install
  parley config completion bash > /etc/bash_completion.d/parley`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:      runConfigCompletion,
}

func init() {
	configCompletionCmd.Flags().BoolVar(&installCompletions, "install", false, "Install the script to the shell's completion directory")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configCompletionCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	st := ui.NewStyles(os.Stdout)
	if config.Exists() {
		fmt.Println(st.Muted.Render("# " + path))
	} else {
		fmt.Println(st.Muted.Render("# No config file (using defaults)"))
		fmt.Println(st.Muted.Render("# Create one with: parley config init"))
	}
	fmt.Println()

	fmt.Printf("provider: %s\n\n", cfg.Provider)

	fmt.Println("anthropic:")
	fmt.Printf("  model: %s\n", cfg.Anthropic.Model)
	printKeyStatus(st, cfg.Anthropic.APIKey, "ANTHROPIC_API_KEY")

	fmt.Println("openai:")
	fmt.Printf("  model: %s\n", cfg.OpenAI.Model)
	printKeyStatus(st, cfg.OpenAI.APIKey, "OPENAI_API_KEY")

	fmt.Println("chat:")
	if cfg.Chat.Persona != "" {
		fmt.Printf("  persona: %s\n", cfg.Chat.Persona)
	}
	fmt.Printf("  highlight: %t\n", cfg.Chat.Highlight)
	fmt.Printf("  markup: %t\n\n", cfg.Chat.Markup)

	fmt.Println("session:")
	fmt.Printf("  enabled: %t\n", cfg.Session.Enabled)
	fmt.Printf("  max_age_days: %d\n", cfg.Session.MaxAgeDays)
	fmt.Printf("  max_count: %d\n", cfg.Session.MaxCount)

	if name := ui.MatchPresetTheme(uiThemeConfig(cfg)); name != "" {
		fmt.Printf("\ntheme: %s\n", name)
	}

	return nil
}

// printKeyStatus reports whether a credential resolved, never the value.
func printKeyStatus(st *ui.Styles, key, envVar string) {
	if key != "" {
		fmt.Printf("  api_key: %s\n\n", st.Success.Render("[set]"))
	} else {
		fmt.Printf("  api_key: %s\n\n", st.Warning.Render("[NOT SET - export "+envVar+"]"))
	}
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	if config.Exists() {
		var overwrite bool
		err := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Config already exists at %s. Overwrite?", path)).
				Affirmative("Overwrite").
				Negative("Keep").
				Value(&overwrite),
		)).Run()
		if err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	cfg := config.Defaults()

	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Which provider do you want to use?").
			Options(
				huh.NewOption("Anthropic (Claude)", "anthropic"),
				huh.NewOption("OpenAI", "openai"),
			).
			Value(&cfg.Provider),
	)).Run()
	if err != nil {
		return err
	}

	envVar := "ANTHROPIC_API_KEY"
	if cfg.Provider == "openai" {
		envVar = "OPENAI_API_KEY"
	}

	var apiKey string
	if os.Getenv(envVar) == "" {
		err = huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("API key").
				Description(fmt.Sprintf("Stored in the config file. Leave empty to export %s instead.", envVar)).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		)).Run()
		if err != nil {
			return err
		}
	}

	themeOptions := make([]huh.Option[string], 0, len(ui.PresetThemeNames))
	for _, name := range ui.PresetThemeNames {
		label := name
		if preset := ui.GetPresetTheme(name); preset != nil {
			label = fmt.Sprintf("%-10s %s", name, preset.Description)
		}
		themeOptions = append(themeOptions, huh.NewOption(label, name))
	}
	theme := ui.PresetThemeNames[0]

	err = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save conversations locally?").
			Description("History lives in a SQLite database in your data directory.").
			Affirmative("Yes").
			Negative("No").
			Value(&cfg.Session.Enabled),
		huh.NewSelect[string]().
			Title("Color theme").
			Options(themeOptions...).
			Value(&theme),
	)).Run()
	if err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	if apiKey != "" {
		if err := setConfigValue(cfg.Provider+".api_key", apiKey); err != nil {
			return err
		}
	}
	// The first preset matches the built-in default, so only non-default
	// choices need writing.
	if theme != ui.PresetThemeNames[0] {
		if preset := ui.GetPresetTheme(theme); preset != nil {
			if err := saveThemeToConfig(preset.Config); err != nil {
				return err
			}
		}
	}

	st := ui.NewStyles(os.Stdout)
	fmt.Println(st.Success.Render(ui.IconOK+" ") + "Wrote " + path)
	if apiKey == "" && os.Getenv(envVar) == "" {
		fmt.Println(st.Warning.Render("No API key configured. Export " + envVar + " before chatting."))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := setConfigValue(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no config file (create one with: parley config init)")
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	value, err := getYAMLValue(&root, strings.Split(args[0], "."))
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runConfigCompletion(cmd *cobra.Command, args []string) error {
	shell := args[0]
	if installCompletions {
		return installShellCompletion(shell)
	}
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		return rootCmd.GenZshCompletion(os.Stdout)
	case "fish":
		return rootCmd.GenFishCompletion(os.Stdout, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
	}
	return nil
}

// installShellCompletion writes the completion script to the shell's
// conventional user directory and prints what to add to the shell rc.
func installShellCompletion(shell string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	var path string
	buf := new(bytes.Buffer)
	switch shell {
	case "bash":
		path = filepath.Join(home, ".bash_completion.d", "parley")
		err = rootCmd.GenBashCompletion(buf)
	case "zsh":
		path = filepath.Join(home, ".local", "share", "zsh", "site-functions", "_parley")
		err = rootCmd.GenZshCompletion(buf)
	case "fish":
		path = filepath.Join(home, ".config", "fish", "completions", "parley.fish")
		err = rootCmd.GenFishCompletion(buf, true)
	case "powershell":
		path = filepath.Join(home, ".config", "powershell", "completions", "parley.ps1")
		err = rootCmd.GenPowerShellCompletionWithDesc(buf)
	default:
		return fmt.Errorf("unknown shell: %s", shell)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write completion file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Installed completions to %s\n", path)
	switch shell {
	case "bash":
		fmt.Fprintf(os.Stderr, "\nAdd to ~/.bashrc:\n  source %s\n", path)
	case "zsh":
		fmt.Fprintf(os.Stderr, "\nEnsure ~/.zshrc has (before compinit):\n  fpath+=(%s)\n", filepath.Dir(path))
	case "fish":
		fmt.Fprintln(os.Stderr, "\nCompletions load automatically; restart your shell or run: exec fish")
	case "powershell":
		fmt.Fprintf(os.Stderr, "\nAdd to your PowerShell profile:\n  . %s\n", path)
	}
	return nil
}

// setConfigValue writes one dotted key into the config file through the
// yaml.Node tree, so user comments and ordering survive the edit.
func setConfigValue(key, value string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	root, err := loadYAMLFile(path)
	if err != nil {
		return err
	}
	if err := setYAMLValue(root, strings.Split(key, "."), value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return writeYAMLFile(path, root)
}

// loadYAMLFile parses path into a yaml.Node tree, or returns an empty
// document when the file does not exist yet.
func loadYAMLFile(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &root, nil
}

func writeYAMLFile(path string, root *yaml.Node) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	enc.Close()
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// setYAMLValue navigates or creates the path in a yaml.Node tree and sets
// the value.
func setYAMLValue(root *yaml.Node, path []string, value string) error {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid document structure")
	}

	current := root.Content[0]
	if current.Kind != yaml.MappingNode {
		return fmt.Errorf("root is not a mapping")
	}

	for i, part := range path {
		isLast := i == len(path)-1

		found := false
		for j := 0; j < len(current.Content); j += 2 {
			if current.Content[j].Value != part {
				continue
			}
			if isLast {
				valueNode := current.Content[j+1]
				valueNode.Value = value
				valueNode.Tag = ""
				valueNode.Kind = yaml.ScalarNode
				valueNode.Content = nil
			} else {
				current = current.Content[j+1]
				if current.Kind != yaml.MappingNode {
					current.Kind = yaml.MappingNode
					current.Content = nil
					current.Value = ""
					current.Tag = ""
				}
			}
			found = true
			break
		}
		if found {
			continue
		}

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: part}
		if isLast {
			current.Content = append(current.Content,
				keyNode, &yaml.Node{Kind: yaml.ScalarNode, Value: value})
		} else {
			mapping := &yaml.Node{Kind: yaml.MappingNode}
			current.Content = append(current.Content, keyNode, mapping)
			current = mapping
		}
	}

	return nil
}

// getYAMLValue navigates the yaml.Node tree and returns the scalar at path.
func getYAMLValue(root *yaml.Node, path []string) (string, error) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return "", fmt.Errorf("invalid document structure")
	}

	current := root.Content[0]
	for _, part := range path {
		if current.Kind != yaml.MappingNode {
			return "", fmt.Errorf("key not found: %s", part)
		}
		found := false
		for j := 0; j < len(current.Content); j += 2 {
			if current.Content[j].Value == part {
				current = current.Content[j+1]
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("key not found: %s", part)
		}
	}

	if current.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("value is not a scalar")
	}
	return current.Value, nil
}

// configKeys are the dotted keys offered in shell completion for set/get.
var configKeys = []string{
	"provider",
	"anthropic.model",
	"anthropic.api_key",
	"openai.model",
	"openai.api_key",
	"chat.persona",
	"chat.instructions",
	"chat.highlight",
	"chat.markup",
	"ask.provider",
	"ask.model",
	"ask.instructions",
	"session.enabled",
	"session.path",
	"session.max_age_days",
	"session.max_count",
}

func configKeyCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []string
	for _, k := range configKeys {
		if strings.HasPrefix(k, toComplete) {
			keys = append(keys, k)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}
