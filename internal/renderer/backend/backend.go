// Package backend is the terminal under the editor: it puts styled
// clusters on a tcell screen and turns tcell's events into Events.
package backend

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/hybridmd/internal/config"
	"github.com/dshills/hybridmd/internal/renderer/paint"
)

// EventType identifies the type of event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventPaste
	// EventInterrupt is posted from other goroutines to wake the loop.
	EventInterrupt
)

// Event is an input event.
type Event struct {
	Type EventType

	// Key events. Control chords arrive as KeyRune with a lower-case
	// letter and ModCtrl.
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse events.
	MouseX, MouseY int
	Button         MouseButton

	// Resize events.
	Width, Height int

	// Paste events: true at the start of a bracketed paste.
	PasteStart bool

	// Interrupt events.
	Data any
}

// Key is a non-character key.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// ModMask is a set of modifier keys.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has reports whether m contains mod.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton is the button state of a mouse event.
type MouseButton int

const (
	// MouseNone is a release or a move with no button held.
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Theme turns paint attributes into tcell styles.
type Theme struct {
	roles     [paint.RoleRule + 1]tcell.Style
	syntax    [paint.SyntaxComment + 1]tcell.Color
	selection tcell.Color
	status    tcell.Style
}

// NewTheme builds a Theme from configured colors.
func NewTheme(th config.Theme) *Theme {
	t := &Theme{selection: tcellColor(th.Selection)}
	fg := func(c colorful.Color) tcell.Style {
		return tcell.StyleDefault.Foreground(tcellColor(c))
	}
	t.roles[paint.RoleText] = fg(th.Text)
	t.roles[paint.RoleMarker] = fg(th.Marker)
	t.roles[paint.RoleHeading] = fg(th.Heading)
	t.roles[paint.RoleCode] = fg(th.Code)
	t.roles[paint.RoleLink] = fg(th.Link).Underline(true)
	t.roles[paint.RoleQuote] = fg(th.Quote).Italic(true)
	t.roles[paint.RoleRule] = fg(th.Marker)
	t.syntax[paint.SyntaxKeyword] = tcellColor(th.Keyword)
	t.syntax[paint.SyntaxString] = tcellColor(th.String)
	t.syntax[paint.SyntaxNumber] = tcellColor(th.Number)
	t.syntax[paint.SyntaxComment] = tcellColor(th.Comment)

	// The status line sits on a background and uses the text color.
	t.status = fg(th.Text).Background(tcellColor(th.Status))
	return t
}

// Style returns the style of a character.
func (t *Theme) Style(a paint.Attr, selected bool) tcell.Style {
	st := t.roles[paint.RoleText]
	if int(a.Role) < len(t.roles) {
		st = t.roles[a.Role]
	}
	if a.Syntax != paint.SyntaxNone && int(a.Syntax) < len(t.syntax) {
		st = st.Foreground(t.syntax[a.Syntax])
	}
	if a.Bold {
		st = st.Bold(true)
	}
	if a.Italic {
		st = st.Italic(true)
	}
	if a.Strike {
		st = st.StrikeThrough(true)
	}
	if a.Role == paint.RoleMarker {
		st = st.Dim(true)
	}
	if selected {
		st = st.Background(t.selection)
	}
	return st
}

// Status returns the style of the status line.
func (t *Theme) Status() tcell.Style { return t.status }

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
