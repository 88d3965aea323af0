// Package editor implements the single-line edit buffer behind the chat
// composer. It holds text as runes, applies decoded EditActions, and
// renders a windowed view for narrow terminals.
package editor

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/parleyhq/parley/internal/input"
	"github.com/parleyhq/parley/internal/textutil"
)

var cursorStyle = lipgloss.NewStyle().Reverse(true)

// Editor is a line buffer with a cursor. The zero value is an empty editor.
type Editor struct {
	buf    []rune
	cursor int
	// killed holds the last killed span, emacs style, though there is no
	// yank binding yet.
	killed []rune
}

func New() *Editor {
	return &Editor{}
}

// Text returns the buffer contents.
func (e *Editor) Text() string {
	return string(e.buf)
}

// SetText replaces the buffer and moves the cursor to the end.
func (e *Editor) SetText(s string) {
	e.buf = []rune(s)
	e.cursor = len(e.buf)
}

// Cursor returns the cursor position in runes from the start.
func (e *Editor) Cursor() int {
	return e.cursor
}

// Empty reports whether the buffer contains no text.
func (e *Editor) Empty() bool {
	return len(e.buf) == 0
}

// Killed returns the most recently killed text.
func (e *Editor) Killed() string {
	return string(e.killed)
}

// Word characters are ASCII alphanumerics and underscore; everything else,
// including multibyte runes, separates words.
func isWordRune(r rune) bool {
	return r == '_' ||
		('0' <= r && r <= '9') ||
		('a' <= r && r <= 'z') ||
		('A' <= r && r <= 'Z')
}

// wordLeft returns the index of the start of the word left of the cursor.
func (e *Editor) wordLeft() int {
	i := e.cursor
	for i > 0 && !isWordRune(e.buf[i-1]) {
		i--
	}
	for i > 0 && isWordRune(e.buf[i-1]) {
		i--
	}
	return i
}

// wordRight returns the index just past the word right of the cursor.
func (e *Editor) wordRight() int {
	i := e.cursor
	for i < len(e.buf) && !isWordRune(e.buf[i]) {
		i++
	}
	for i < len(e.buf) && isWordRune(e.buf[i]) {
		i++
	}
	return i
}

func (e *Editor) kill(from, to int) {
	e.killed = append(e.killed[:0], e.buf[from:to]...)
	e.buf = slices.Delete(e.buf, from, to)
}

// Apply executes one edit action and reports whether the buffer or cursor
// changed. Submit, Ignore, and StillBuffering are no-ops here; they belong
// to the caller.
func (e *Editor) Apply(a input.EditAction) bool {
	switch a.Kind {
	case input.ActionInsert:
		if a.Text == "" {
			return false
		}
		rs := []rune(a.Text)
		e.buf = slices.Insert(e.buf, e.cursor, rs...)
		e.cursor += len(rs)
		return true

	case input.ActionBackspace:
		if e.cursor == 0 {
			return false
		}
		e.buf = slices.Delete(e.buf, e.cursor-1, e.cursor)
		e.cursor--
		return true

	case input.ActionDeleteCharForward:
		if e.cursor >= len(e.buf) {
			return false
		}
		e.buf = slices.Delete(e.buf, e.cursor, e.cursor+1)
		return true

	case input.ActionCursorLeft:
		if e.cursor == 0 {
			return false
		}
		e.cursor--
		return true

	case input.ActionCursorRight:
		if e.cursor >= len(e.buf) {
			return false
		}
		e.cursor++
		return true

	case input.ActionWordLeft:
		target := e.wordLeft()
		if target == e.cursor {
			return false
		}
		e.cursor = target
		return true

	case input.ActionWordRight:
		target := e.wordRight()
		if target == e.cursor {
			return false
		}
		e.cursor = target
		return true

	case input.ActionDeleteWordBack:
		from := e.wordLeft()
		if from == e.cursor {
			return false
		}
		e.kill(from, e.cursor)
		e.cursor = from
		return true

	case input.ActionDeleteWordForward:
		to := e.wordRight()
		if to == e.cursor {
			return false
		}
		e.kill(e.cursor, to)
		return true

	case input.ActionLineStart:
		if e.cursor == 0 {
			return false
		}
		e.cursor = 0
		return true

	case input.ActionLineEnd:
		if e.cursor == len(e.buf) {
			return false
		}
		e.cursor = len(e.buf)
		return true

	case input.ActionKillLineBack:
		if e.cursor == 0 {
			return false
		}
		e.kill(0, e.cursor)
		e.cursor = 0
		return true

	case input.ActionKillLineForward:
		if e.cursor >= len(e.buf) {
			return false
		}
		e.kill(e.cursor, len(e.buf))
		return true
	}
	return false
}

// Clear empties the buffer.
func (e *Editor) Clear() {
	e.buf = e.buf[:0]
	e.cursor = 0
}

// View renders the prompt and buffer clipped to width cells, keeping the
// cursor visible by scrolling horizontally. The cursor cell is drawn in
// reverse video.
func (e *Editor) View(prompt string, width int) string {
	avail := width - textutil.Width(prompt)
	if avail < 2 {
		avail = 2
	}

	// Scroll so the cursor stays inside the window.
	start := 0
	for runeWidth(e.buf[start:e.cursor]) > avail-1 {
		start++
	}

	var b strings.Builder
	b.WriteString(prompt)
	used := 0
	for i := start; i < e.cursor; i++ {
		b.WriteRune(e.buf[i])
		used += textutil.RuneWidth(e.buf[i])
	}

	// Cursor cell: the rune under the cursor, or a space at end of line.
	cur := " "
	if e.cursor < len(e.buf) {
		cur = string(e.buf[e.cursor])
	}
	b.WriteString(cursorStyle.Render(cur))
	used += textutil.Width(cur)

	for i := e.cursor + 1; i < len(e.buf); i++ {
		w := textutil.RuneWidth(e.buf[i])
		if used+w > avail {
			break
		}
		b.WriteRune(e.buf[i])
		used += w
	}
	return b.String()
}

func runeWidth(rs []rune) int {
	w := 0
	for _, r := range rs {
		w += textutil.RuneWidth(r)
	}
	return w
}
