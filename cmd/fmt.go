package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/input"
	"github.com/parleyhq/parley/internal/markdown"
)

var (
	fmtMarkup bool
	fmtWidth  int
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Render markup to styled terminal text",
	Long: `Render markup from a file or stdin to ANSI styled terminal text,
using the same renderer the chat uses for streamed responses.

Examples:
  parley fmt README.md
  parley fmt --markup NOTES.md          # keep the markup delimiters visible
  curl -s https://example.com/doc.md | parley fmt
  parley fmt --width 72 README.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtMarkup, "markup", false, "Keep markup delimiters visible")
	fmtCmd.Flags().IntVar(&fmtWidth, "width", 0, "Render width (default: terminal width)")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var text string
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		text = string(data)
	} else {
		stdin, err := input.ReadStdin()
		if err != nil {
			return err
		}
		if stdin == "" {
			return fmt.Errorf("nothing to render: pass a file or pipe stdin")
		}
		text = stdin
	}

	opts := []markdown.Option{
		markdown.WithHighlight(cfg.Chat.Highlight),
	}
	if fmtMarkup || cfg.Chat.Markup {
		opts = append(opts, markdown.WithMode(markdown.ModeKeep))
	}
	if fmtWidth > 0 {
		opts = append(opts, markdown.WithWidth(func() int { return fmtWidth }))
	}

	out := markdown.Render(text, opts...)
	fmt.Print(out)
	if out != "" && !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return nil
}
