package input

import tea "github.com/charmbracelet/bubbletea"

// KeyEvent is one normalized input notification. Bytes carries the raw
// characters, if any; the flags carry whatever the terminal layer already
// decoded. Either side may be the only signal present for a given chord,
// and the decoder maps both onto the same actions.
type KeyEvent struct {
	Bytes string

	UpArrow    bool
	DownArrow  bool
	LeftArrow  bool
	RightArrow bool

	Return    bool
	Tab       bool
	Backspace bool
	Delete    bool

	Ctrl  bool
	Shift bool
	Meta  bool
}

// FromKeyMsg converts a bubbletea key message into a KeyEvent. This is the
// only place the package touches bubbletea; the decoder itself works on
// KeyEvents alone. Home and End are translated to their CSI byte forms so a
// single table entry covers both delivery paths.
func FromKeyMsg(msg tea.KeyMsg) KeyEvent {
	ev := KeyEvent{Meta: msg.Alt}

	switch msg.Type {
	case tea.KeyUp:
		ev.UpArrow = true
	case tea.KeyDown:
		ev.DownArrow = true
	case tea.KeyLeft:
		ev.LeftArrow = true
	case tea.KeyRight:
		ev.RightArrow = true
	case tea.KeyEnter:
		ev.Return = true
	case tea.KeyTab:
		ev.Tab = true
	case tea.KeyBackspace:
		ev.Backspace = true
	case tea.KeyDelete:
		ev.Delete = true
	case tea.KeyEscape:
		ev.Bytes = "\x1b"
	case tea.KeySpace:
		ev.Bytes = " "
	case tea.KeyRunes:
		ev.Bytes = string(msg.Runes)
	case tea.KeyHome:
		ev.Bytes = "\x1b[H"
	case tea.KeyEnd:
		ev.Bytes = "\x1b[F"
	case tea.KeyCtrlLeft:
		ev.Ctrl = true
		ev.LeftArrow = true
	case tea.KeyCtrlRight:
		ev.Ctrl = true
		ev.RightArrow = true
	case tea.KeyShiftLeft:
		ev.Shift = true
		ev.LeftArrow = true
	case tea.KeyShiftRight:
		ev.Shift = true
		ev.RightArrow = true
	case tea.KeyCtrlA:
		ev.Ctrl, ev.Bytes = true, "a"
	case tea.KeyCtrlB:
		ev.Ctrl, ev.Bytes = true, "b"
	case tea.KeyCtrlC:
		ev.Ctrl, ev.Bytes = true, "c"
	case tea.KeyCtrlD:
		ev.Ctrl, ev.Bytes = true, "d"
	case tea.KeyCtrlE:
		ev.Ctrl, ev.Bytes = true, "e"
	case tea.KeyCtrlF:
		ev.Ctrl, ev.Bytes = true, "f"
	case tea.KeyCtrlK:
		ev.Ctrl, ev.Bytes = true, "k"
	case tea.KeyCtrlU:
		ev.Ctrl, ev.Bytes = true, "u"
	case tea.KeyCtrlW:
		ev.Ctrl, ev.Bytes = true, "w"
	}
	return ev
}
