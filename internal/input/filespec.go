package input

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// FileSpec is a file path with an optional 1-indexed line range.
type FileSpec struct {
	Path      string
	StartLine int // 0 means from the beginning
	EndLine   int // 0 means to the end
	HasRegion bool
}

// The suffix after the last colon must look like a range with at least one
// bound, so paths that merely contain colons keep their full name.
var lineRangeRe = regexp.MustCompile(`^(\d*)-(\d*)$`)

// ParseFileSpec parses a file spec with an optional line range suffix:
//
//	main.go        the whole file
//	main.go:11-22  lines 11 through 22
//	main.go:11-    line 11 to the end
//	main.go:-22    the start through line 22
func ParseFileSpec(spec string) (FileSpec, error) {
	if spec == "" {
		return FileSpec{}, fmt.Errorf("empty file spec")
	}

	i := strings.LastIndex(spec, ":")
	if i <= 0 {
		return FileSpec{Path: spec}, nil
	}

	m := lineRangeRe.FindStringSubmatch(spec[i+1:])
	if m == nil || (m[1] == "" && m[2] == "") {
		return FileSpec{Path: spec}, nil
	}

	fs := FileSpec{Path: spec[:i], HasRegion: true}
	if m[1] != "" {
		fs.StartLine, _ = strconv.Atoi(m[1])
	}
	if m[2] != "" {
		fs.EndLine, _ = strconv.Atoi(m[2])
	}
	if fs.EndLine > 0 && fs.StartLine > fs.EndLine {
		return FileSpec{}, fmt.Errorf("invalid line range in %q: start %d after end %d", spec, fs.StartLine, fs.EndLine)
	}
	return fs, nil
}

// ExtractLines returns the 1-indexed line range [startLine, endLine] of
// content. Zero bounds extend to the corresponding end of the file.
func ExtractLines(content string, startLine, endLine int) string {
	lines := strings.Split(content, "\n")

	start := 0
	if startLine > 0 {
		start = startLine - 1
	}
	if start >= len(lines) {
		return ""
	}

	end := len(lines)
	if endLine > 0 && endLine < end {
		end = endLine
	}
	if start >= end {
		return ""
	}

	return strings.Join(lines[start:end], "\n")
}

// FormatSpecPath returns the path with the region suffix, if any.
func (fs FileSpec) FormatSpecPath() string {
	if !fs.HasRegion {
		return fs.Path
	}
	return fmt.Sprintf("%s:%d-%d", fs.Path, fs.StartLine, fs.EndLine)
}
