package input

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/term"
)

// FileContent is one file resolved for inclusion in a prompt.
type FileContent struct {
	Path    string
	Content string
}

// ReadFiles resolves each spec and reads the matching files. A spec can be
// a literal path, a doublestar glob like internal/**/*.go, or a path with a
// line range like main.go:11-22. Directories are skipped, as are glob
// patterns that match nothing; a literal path that does not exist is an
// error.
func ReadFiles(specs []string) ([]FileContent, error) {
	var result []FileContent

	for _, raw := range specs {
		spec, err := ParseFileSpec(raw)
		if err != nil {
			return nil, err
		}

		path := expandPath(spec.Path)
		matches, err := doublestar.FilepathGlob(path)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", spec.Path, err)
		}
		if len(matches) == 0 {
			if containsGlobChars(spec.Path) {
				continue
			}
			matches = []string{path}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("stat %q: %w", match, err)
			}
			if info.IsDir() {
				continue
			}

			data, err := os.ReadFile(match)
			if err != nil {
				return nil, fmt.Errorf("read %q: %w", match, err)
			}

			content := string(data)
			display := match
			if spec.HasRegion {
				content = ExtractLines(content, spec.StartLine, spec.EndLine)
				display = FileSpec{
					Path:      match,
					StartLine: spec.StartLine,
					EndLine:   spec.EndLine,
					HasRegion: true,
				}.FormatSpecPath()
			}

			result = append(result, FileContent{Path: display, Content: content})
		}
	}

	return result, nil
}

// HasStdin reports whether stdin has piped data.
func HasStdin() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode()&os.ModeCharDevice) == 0 || fi.Size() > 0
}

// ReadStdin reads all of stdin. Returns "" when stdin is a terminal.
func ReadStdin() (string, error) {
	if !HasStdin() || term.IsTerminal(int(os.Stdin.Fd())) {
		return "", nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// FormatFiles renders file and stdin content between delimiters that survive
// inside a prompt regardless of what the files themselves contain. Fenced
// code blocks would break on files that contain backticks.
func FormatFiles(files []FileContent, stdin string) string {
	if len(files) == 0 && stdin == "" {
		return ""
	}

	var sb strings.Builder
	for _, f := range files {
		sb.WriteString("<<<<< FILE: ")
		sb.WriteString(f.Path)
		sb.WriteString(" >>>>>\n")
		sb.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("<<<<< END FILE >>>>>\n")
	}

	if stdin != "" {
		sb.WriteString("<<<<< STDIN >>>>>\n")
		sb.WriteString(stdin)
		if !strings.HasSuffix(stdin, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("<<<<< END STDIN >>>>>\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Brace patterns count as globs too; doublestar expands them.
func containsGlobChars(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
