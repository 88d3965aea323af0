package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleyhq/parley/internal/config"
	"github.com/parleyhq/parley/internal/llm"
	"github.com/parleyhq/parley/internal/session"
	"github.com/parleyhq/parley/internal/ui"
)

var (
	sessionsLimit int
	sessionsJSON  bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved conversations",
	Long: `List, inspect, search and delete saved conversations.

Examples:
  parley sessions                       # list recent sessions
  parley sessions show 3f2a             # show a session by id prefix
  parley sessions search "rate limit"
  parley sessions delete 3f2a

Any unique id prefix works wherever an id is expected.`,
	RunE: runSessionsList, // Default to list
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search across session messages",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSessionsSearch,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	sessionsCmd.PersistentFlags().IntVar(&sessionsLimit, "limit", 20, "Maximum number of results")
	sessionsShowCmd.Flags().BoolVar(&sessionsJSON, "json", false, "Output as JSON")

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsSearchCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func openSessionStore() (session.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Session.Enabled {
		return nil, nil, fmt.Errorf("session storage is disabled in config")
	}
	store, err := openStore(cfg, false)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, _, err := openSessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(context.Background(), sessionsLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No sessions yet. Start one with: parley")
		return nil
	}

	st := ui.NewStyles(os.Stdout)
	fmt.Println(st.Muted.Render(fmt.Sprintf("%-10s %-40s %5s %12s %s",
		"ID", "SUMMARY", "MSGS", "TOKENS", "AGE")))

	for _, s := range summaries {
		summary := s.Summary
		if s.Name != "" {
			summary = s.Name
		}
		if summary == "" {
			summary = "(empty)"
		}
		if len(summary) > 40 {
			summary = summary[:37] + "..."
		}

		id := st.CommandName.Render(fmt.Sprintf("%-10s", shortID(s.ID)))
		fmt.Printf("%s %-40s %5d %12s %s\n",
			id, summary, s.MessageCount,
			formatTokenCounts(s.InputTokens, s.OutputTokens),
			formatAge(s.UpdatedAt))
	}

	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	store, _, err := openSessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	sess, err := store.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get session %q: %w", args[0], err)
	}

	messages, err := store.GetMessages(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("failed to get messages: %w", err)
	}

	if sessionsJSON {
		data := struct {
			Session  *session.Session  `json:"session"`
			Messages []session.Message `json:"messages"`
		}{sess, messages}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	st := ui.NewStyles(os.Stdout)
	field := func(name, value string) {
		if value != "" {
			fmt.Printf("%s %s\n", st.Muted.Render(fmt.Sprintf("%-9s", name+":")), value)
		}
	}
	field("Session", sess.ID)
	field("Name", sess.Name)
	field("Provider", sess.Provider)
	field("Model", sess.Model)
	field("Persona", sess.Persona)
	field("Created", sess.CreatedAt.Format(time.RFC3339))
	field("Updated", sess.UpdatedAt.Format(time.RFC3339))
	field("Messages", fmt.Sprintf("%d", len(messages)))
	if sess.InputTokens > 0 || sess.OutputTokens > 0 {
		field("Tokens", fmt.Sprintf("%d in / %d out", sess.InputTokens, sess.OutputTokens))
	}
	fmt.Println()

	for _, msg := range messages {
		if msg.Role == llm.RoleUser {
			fmt.Println(st.Prompt.Render(ui.IconPrompt) + " " + msg.Content)
		} else {
			fmt.Println(msg.Content)
		}
		fmt.Println()
	}

	return nil
}

func runSessionsSearch(cmd *cobra.Command, args []string) error {
	store, _, err := openSessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	query := strings.Join(args, " ")
	results, err := store.Search(context.Background(), query, sessionsLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No matches for %q\n", query)
		return nil
	}

	st := ui.NewStyles(os.Stdout)
	fmt.Printf("%d matches for %q:\n\n", len(results), query)
	for _, r := range results {
		label := r.SessionName
		if label == "" {
			label = r.Summary
		}
		if label == "" {
			label = "(empty)"
		}
		fmt.Printf("%s  %s\n", st.CommandName.Render(shortID(r.SessionID)), label)
		fmt.Printf("   %s\n\n", st.Muted.Render(r.Snippet))
	}

	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	store, _, err := openSessionStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	// Resolve prefixes through Get so delete accepts the same ids the other
	// subcommands do.
	sess, err := store.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get session %q: %w", args[0], err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Printf("Deleted session %s\n", shortID(sess.ID))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTokenCounts renders token usage compactly, like "1.2k/340".
func formatTokenCounts(input, output int) string {
	if input == 0 && output == 0 {
		return "-"
	}
	return compactCount(input) + "/" + compactCount(output)
}

func compactCount(n int) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1000000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1000), ".0") + "k"
	default:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1000000), ".0") + "M"
	}
}

// formatAge renders how long ago a time was, coarsely.
func formatAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
