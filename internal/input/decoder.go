package input

import "strings"

// escBufferMax bounds the escape buffer to the longest plausible sequence
// plus slack. Anything longer is reclassified wholesale as literal input.
const escBufferMax = 12

// escSequences maps complete escape sequences to actions. The decoder keeps
// reading while the buffer is a strict prefix of any entry, so a longer
// sequence always beats its own prefix.
var escSequences = map[string]ActionKind{
	// ESC-letter word commands, the form macOS Option sends in most
	// terminals.
	"\x1bb": ActionWordLeft,
	"\x1bf": ActionWordRight,
	"\x1bd": ActionDeleteWordForward,

	// xterm modified arrows. Parameter 3 and 9 are Option, 5 is Control.
	"\x1b[1;3D": ActionWordLeft,
	"\x1b[1;5D": ActionWordLeft,
	"\x1b[1;9D": ActionWordLeft,
	"\x1b[1;3C": ActionWordRight,
	"\x1b[1;5C": ActionWordRight,
	"\x1b[1;9C": ActionWordRight,

	// Legacy short forms without the "1;" parameter prefix.
	"\x1b[3D": ActionWordLeft,
	"\x1b[5D": ActionWordLeft,
	"\x1b[9D": ActionWordLeft,
	"\x1b[3C": ActionWordRight,
	"\x1b[5C": ActionWordRight,
	"\x1b[9C": ActionWordRight,

	// Parameter 2 is Shift on xterm, but macOS terminals send it for
	// Command-arrow, which jumps to the line boundary.
	"\x1b[1;2D": ActionLineStart,
	"\x1b[1;2C": ActionLineEnd,

	// Home and End, CSI and SS3 forms.
	"\x1b[H": ActionLineStart,
	"\x1b[F": ActionLineEnd,
	"\x1bOH": ActionLineStart,
	"\x1bOF": ActionLineEnd,

	// Forward delete and its modified forms. Command-delete kills to end
	// of line, Option-delete deletes the word ahead.
	"\x1b[3~":   ActionDeleteCharForward,
	"\x1b[3;2~": ActionKillLineForward,
	"\x1b[3;3~": ActionDeleteWordForward,
	"\x1b[3;5~": ActionDeleteWordForward,

	// Some terminals prefix a plain arrow with a second ESC for Option.
	"\x1b\x1b[D": ActionWordLeft,
	"\x1b\x1b[C": ActionWordRight,

	// Bare arrows arriving as raw bytes rather than decoded key flags.
	"\x1b[D": ActionCursorLeft,
	"\x1b[C": ActionCursorRight,
	"\x1bOD": ActionCursorLeft,
	"\x1bOC": ActionCursorRight,
	"\x1b[A": ActionIgnore,
	"\x1b[B": ActionIgnore,
	"\x1bOA": ActionIgnore,
	"\x1bOB": ActionIgnore,
}

// viablePrefix reports whether buf is a strict prefix of some sequence in
// the table, meaning more bytes could still complete it.
func viablePrefix(buf string) bool {
	for seq := range escSequences {
		if len(seq) > len(buf) && strings.HasPrefix(seq, buf) {
			return true
		}
	}
	return false
}

// Decoder turns KeyEvents into EditActions, buffering partial escape
// sequences between calls. The zero value is ready to use. A Decoder is
// stateful and not safe for concurrent use.
type Decoder struct {
	buf string
}

// Buffering reports whether a partial escape sequence is pending.
func (d *Decoder) Buffering() bool {
	return d.buf != ""
}

// Reset discards any pending partial sequence.
func (d *Decoder) Reset() {
	d.buf = ""
}

// Decode classifies one key event. The returned bool reports whether the
// event interacted with a previously non-empty buffer, by extending,
// resolving, or discarding it, which callers can use to tell a buffered
// resolution apart from a direct classification.
//
// Exactly one action is returned per call. Bytes are never dropped: a
// buffered sequence that turns out to match nothing is returned as a
// literal insert of the original bytes in arrival order.
func (d *Decoder) Decode(ev KeyEvent) (EditAction, bool) {
	consumed := d.buf != ""

	// Structural keys owned by other layers win over everything and
	// abandon any partial sequence.
	if ev.UpArrow || ev.DownArrow || ev.Tab || (ev.Ctrl && ev.Bytes == "c") {
		d.buf = ""
		return action(ActionIgnore), consumed
	}
	if ev.Return {
		d.buf = ""
		return action(ActionSubmit), consumed
	}

	// Canonical whole sequences delivered as one event take the fast
	// path when nothing is buffered.
	if d.buf == "" {
		switch ev.Bytes {
		case "\x1bb":
			return action(ActionWordLeft), false
		case "\x1bf":
			return action(ActionWordRight), false
		case "\x1bd":
			return action(ActionDeleteWordForward), false
		}
	}

	// Anything mid-sequence, or containing a fresh ESC, goes through the
	// byte table.
	if d.buf != "" || strings.Contains(ev.Bytes, "\x1b") {
		return d.resolve(ev.Bytes), consumed
	}

	// Modifier flags decoded upstream. These must land on the same
	// actions as the equivalent raw sequences.
	if a, ok := classifyModifier(ev); ok {
		return a, false
	}

	switch {
	case ev.LeftArrow:
		return action(ActionCursorLeft), false
	case ev.RightArrow:
		return action(ActionCursorRight), false
	case ev.Backspace, ev.Delete:
		return action(ActionBackspace), false
	}

	if ev.Bytes != "" && !ev.Ctrl && !ev.Meta {
		return insert(ev.Bytes), false
	}
	return action(ActionIgnore), false
}

// classifyModifier maps modifier-flag chords to actions, mirroring the byte
// sequence table for terminals that decode modifiers upstream.
func classifyModifier(ev KeyEvent) (EditAction, bool) {
	if ev.Meta {
		switch {
		case ev.LeftArrow:
			return action(ActionWordLeft), true
		case ev.RightArrow:
			return action(ActionWordRight), true
		case ev.Backspace, ev.Delete:
			return action(ActionDeleteWordBack), true
		}
		switch ev.Bytes {
		case "b":
			return action(ActionWordLeft), true
		case "f":
			return action(ActionWordRight), true
		case "d":
			return action(ActionDeleteWordForward), true
		}
		return EditAction{}, false
	}
	if ev.Ctrl {
		switch {
		case ev.LeftArrow:
			return action(ActionWordLeft), true
		case ev.RightArrow:
			return action(ActionWordRight), true
		}
		switch ev.Bytes {
		case "a":
			return action(ActionLineStart), true
		case "e":
			return action(ActionLineEnd), true
		case "b":
			return action(ActionCursorLeft), true
		case "f":
			return action(ActionCursorRight), true
		case "d":
			return action(ActionDeleteCharForward), true
		case "k":
			return action(ActionKillLineForward), true
		case "u":
			return action(ActionKillLineBack), true
		case "w":
			return action(ActionDeleteWordBack), true
		}
	}
	return EditAction{}, false
}

// resolve appends bytes to the escape buffer and classifies the result:
// still viable, complete, or a dead end. Dead ends become literal inserts,
// except that a trailing slice which could open a new sequence stays
// buffered for the next call.
func (d *Decoder) resolve(bytes string) EditAction {
	working := d.buf + bytes
	d.buf = ""

	if len(working) > escBufferMax {
		return insert(working)
	}
	if viablePrefix(working) {
		d.buf = working
		return action(ActionStillBuffering)
	}
	if kind, ok := escSequences[working]; ok {
		return action(kind)
	}
	for i := 1; i < len(working); i++ {
		if viablePrefix(working[i:]) {
			d.buf = working[i:]
			return insert(working[:i])
		}
	}
	return insert(working)
}
