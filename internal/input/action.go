// Package input classifies raw terminal key input into logical edit
// actions. Terminals deliver word-navigation and line-navigation chords as
// multi-byte escape sequences that may arrive split across reads, so the
// decoder buffers partial sequences between calls and resolves them with
// longest-match semantics.
package input

// ActionKind identifies a logical edit action, independent of which key
// chord or escape sequence produced it.
type ActionKind int

const (
	// ActionIgnore marks input owned by another layer, like history
	// navigation or completion cycling.
	ActionIgnore ActionKind = iota
	// ActionStillBuffering means the bytes so far are a prefix of a
	// longer sequence and the decoder is waiting for the rest.
	ActionStillBuffering
	// ActionInsert inserts EditAction.Text at the cursor.
	ActionInsert
	ActionSubmit
	ActionBackspace
	ActionDeleteCharForward
	ActionCursorLeft
	ActionCursorRight
	ActionWordLeft
	ActionWordRight
	ActionDeleteWordBack
	ActionDeleteWordForward
	ActionLineStart
	ActionLineEnd
	ActionKillLineBack
	ActionKillLineForward
)

func (k ActionKind) String() string {
	switch k {
	case ActionIgnore:
		return "Ignore"
	case ActionStillBuffering:
		return "StillBuffering"
	case ActionInsert:
		return "Insert"
	case ActionSubmit:
		return "Submit"
	case ActionBackspace:
		return "Backspace"
	case ActionDeleteCharForward:
		return "DeleteCharForward"
	case ActionCursorLeft:
		return "CursorLeft"
	case ActionCursorRight:
		return "CursorRight"
	case ActionWordLeft:
		return "WordLeft"
	case ActionWordRight:
		return "WordRight"
	case ActionDeleteWordBack:
		return "DeleteWordBack"
	case ActionDeleteWordForward:
		return "DeleteWordForward"
	case ActionLineStart:
		return "LineStart"
	case ActionLineEnd:
		return "LineEnd"
	case ActionKillLineBack:
		return "KillLineBack"
	case ActionKillLineForward:
		return "KillLineForward"
	default:
		return "Unknown"
	}
}

// EditAction is the decoder's classification of one input notification.
// Text is set only for ActionInsert and holds the literal characters to
// insert, in arrival order. A dead-end escape buffer is reclassified as a
// single multi-character insert rather than being dropped.
type EditAction struct {
	Kind ActionKind
	Text string
}

func action(k ActionKind) EditAction {
	return EditAction{Kind: k}
}

func insert(text string) EditAction {
	return EditAction{Kind: ActionInsert, Text: text}
}
