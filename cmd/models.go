package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/ui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models for the active provider",
	Long: `List the models the active provider can serve. The configured model
is marked.

Examples:
  parley models
  parley models -P openai`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := provider.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	st := ui.NewStyles(os.Stdout)
	fmt.Println(st.Title.Render("Models") + st.Muted.Render(" · "+provider.Name()))

	current := cfg.ActiveModel()
	for _, m := range models {
		marker := "  "
		if m.ID == current {
			marker = st.Success.Render("● ")
		}
		line := marker + m.ID
		if m.DisplayName != "" && m.DisplayName != m.ID {
			line += st.Muted.Render("  " + m.DisplayName)
		}
		fmt.Println(line)
	}

	fmt.Println(st.Muted.Render("\nSwitch with: parley config set " + providerModelKey(cfg.Provider) + " <id>"))
	return nil
}

// providerModelKey returns the config key holding the model for a provider.
func providerModelKey(provider string) string {
	if provider == "openai" {
		return "openai.model"
	}
	return "anthropic.model"
}
