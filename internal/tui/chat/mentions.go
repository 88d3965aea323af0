package chat

import (
	"regexp"
	"strings"

	"github.com/parleyhq/parley/internal/input"
)

// Files above this size are truncated before being attached so one stray
// @mention of a log file cannot blow the context window.
const maxMentionFileSize = 64 * 1024

// A mention is @ at the start of a word. The preceding boundary check keeps
// emails and decorators like foo@bar.com out.
var mentionRe = regexp.MustCompile(`(?:^|\s)@([^\s@]+)`)

// expandMentions reads files referenced by @path mentions and appends their
// contents to the message. Globs work (@internal/**/*.go). Tokens that do
// not resolve to a readable file stay plain text, so pasted code and
// handles keep working. Returns the expanded text and the attached paths.
func expandMentions(text string) (string, []string) {
	matches := mentionRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var files []input.FileContent
	var attached []string
	seen := make(map[string]bool)

	for _, match := range matches {
		spec := strings.TrimRight(match[1], `,.;:!?)"'`)
		if spec == "" {
			continue
		}
		read, err := input.ReadFiles([]string{spec})
		if err != nil {
			continue
		}
		for _, f := range read {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			if len(f.Content) > maxMentionFileSize {
				f.Content = f.Content[:maxMentionFileSize] + "\n[truncated]"
			}
			files = append(files, f)
			attached = append(attached, f.Path)
		}
	}

	if len(files) == 0 {
		return text, nil
	}
	return text + "\n\n" + input.FormatFiles(files, ""), attached
}
