// Package markdown renders markup arriving as arbitrary stream fragments
// into ANSI styled terminal text. The renderer is incremental: it emits each
// styled line as soon as the line is complete and withholds the trailing
// unterminated line until more input or a flush resolves it, so already
// printed output never has to be retracted.
package markdown

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// StreamRenderer converts a markup stream into styled output one fragment at
// a time. It is not safe for concurrent use; each message stream gets its
// own renderer, or a Reset in between.
type StreamRenderer struct {
	rules []rule
	mode  Mode

	insideFence bool
	fenceLang   string
	hl          *highlighter

	// tail is the raw text after the last emitted newline. nlRun counts
	// the newlines the emitted stream currently ends with, which is what
	// caps blank line runs without ever retracting output.
	tail  string
	nlRun int

	width     func() int
	highlight bool
}

// Option configures a StreamRenderer.
type Option func(*StreamRenderer)

// WithMode selects between stripping markup and keeping it visible.
func WithMode(m Mode) Option {
	return func(r *StreamRenderer) { r.mode = m }
}

// WithWidth overrides the terminal width used for horizontal rules.
func WithWidth(f func() int) Option {
	return func(r *StreamRenderer) { r.width = f }
}

// WithHighlight toggles syntax highlighting of fenced code blocks.
func WithHighlight(on bool) Option {
	return func(r *StreamRenderer) { r.highlight = on }
}

// NewStreamRenderer returns a renderer ready to consume a stream.
func NewStreamRenderer(opts ...Option) *StreamRenderer {
	r := &StreamRenderer{
		mode:      ModeStrip,
		width:     TerminalWidth,
		highlight: true,
	}
	for _, o := range opts {
		o(r)
	}
	r.rules = newRules(func() int { return r.width() })
	return r
}

// TerminalWidth reports the current terminal column count, defaulting to 80
// when stdout is not a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// Consume appends one fragment to the stream and returns the styled text
// that became ready. Fragments may split the input anywhere, including
// mid-word, mid-token, or mid-rune; the concatenated output for a given
// stream is the same regardless of how it was fragmented. An empty fragment
// returns an empty string.
func (r *StreamRenderer) Consume(fragment string) string {
	if fragment == "" {
		return ""
	}
	working := r.tail + fragment
	idx := strings.LastIndexByte(working, '\n')
	if idx < 0 {
		r.tail = working
		return ""
	}
	complete := working[:idx+1]
	r.tail = working[idx+1:]

	var out strings.Builder
	lines := strings.Split(complete, "\n")
	for _, line := range lines[:len(lines)-1] {
		r.emitLine(&out, line, true)
	}
	return out.String()
}

// Flush force-resolves the withheld tail as if the stream had ended there
// and returns its styled form. Flushing an empty tail returns an empty
// string, so Flush is idempotent. Fence state survives a flush; Reset
// clears it.
func (r *StreamRenderer) Flush() string {
	if r.tail == "" {
		return ""
	}
	line := r.tail
	r.tail = ""
	var out strings.Builder
	r.emitLine(&out, line, false)
	return out.String()
}

// Reset returns the renderer to its initial state for a fresh stream.
func (r *StreamRenderer) Reset() {
	r.tail = ""
	r.insideFence = false
	r.fenceLang = ""
	r.hl = nil
	r.nlRun = 0
}

// Render formats a complete document in one pass.
func Render(text string, opts ...Option) string {
	r := NewStreamRenderer(opts...)
	return r.Consume(text) + r.Flush()
}

// emitLine styles one line and appends it to out. Runs of blank lines are
// capped at two: once the emitted stream ends in three newlines, further
// blank lines are dropped rather than emitted, so the cap never requires
// rewriting text that already left the renderer.
func (r *StreamRenderer) emitLine(out *strings.Builder, line string, newline bool) {
	if line == "" {
		if r.nlRun >= 3 {
			return
		}
		if newline {
			out.WriteByte('\n')
			r.nlRun++
		}
		return
	}

	out.WriteString(r.styleLine(line))
	r.nlRun = 0
	if newline {
		out.WriteByte('\n')
		r.nlRun = 1
	}
}

// styleLine routes one line through the fence state machine or the rule
// table. Fence markers toggle the state and render faint; lines inside a
// fence bypass the rule table entirely.
func (r *StreamRenderer) styleLine(line string) string {
	if isFenceLine(line) {
		r.toggleFence(line)
		return sgrFaint + line + sgrReset
	}
	if r.insideFence {
		return r.styleCode(line)
	}
	return applyRules(r.rules, line, r.mode)
}

// isFenceLine reports whether a line opens or closes a fenced code block: a
// line whose trimmed form starts with ``` and contains no further backticks.
func isFenceLine(line string) bool {
	s := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(s, "```") {
		return false
	}
	return !strings.Contains(s[3:], "`")
}

func (r *StreamRenderer) toggleFence(line string) {
	if r.insideFence {
		r.insideFence = false
		r.fenceLang = ""
		r.hl = nil
		return
	}
	r.insideFence = true
	r.fenceLang = strings.TrimSpace(strings.TrimLeft(line, " \t")[3:])
	if r.highlight {
		r.hl = newHighlighter(r.fenceLang)
	}
}

func (r *StreamRenderer) styleCode(line string) string {
	if r.hl != nil {
		return r.hl.Line(line)
	}
	return sgrYellow + line + sgrFgOff
}
