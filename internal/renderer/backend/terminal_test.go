package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/dshills/hybridmd/internal/config"
	"github.com/dshills/hybridmd/internal/renderer/paint"
)

func newSimTerminal(t *testing.T, w, h int) *Terminal {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := New(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(term.Shutdown)
	return term
}

func TestConvertKeyEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Event
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone),
			Event{Type: EventKey, Key: KeyRune, Rune: 'x'}},
		{"ctrl constant", tcell.NewEventKey(tcell.KeyCtrlB, 0, tcell.ModCtrl),
			Event{Type: EventKey, Key: KeyRune, Rune: 'b', Mod: ModCtrl}},
		{"ctrl rune", tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModCtrl),
			Event{Type: EventKey, Key: KeyRune, Rune: 'b', Mod: ModCtrl}},
		{"control code", tcell.NewEventKey(tcell.KeyRune, 0x13, tcell.ModNone),
			Event{Type: EventKey, Key: KeyRune, Rune: 's', Mod: ModCtrl}},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModAlt),
			Event{Type: EventKey, Key: KeyRune, Rune: 's', Mod: ModAlt}},
		{"backspace", tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
			Event{Type: EventKey, Key: KeyBackspace}},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			Event{Type: EventKey, Key: KeyEnter}},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone),
			Event{Type: EventKey, Key: KeyTab}},
		{"shift left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModShift),
			Event{Type: EventKey, Key: KeyLeft, Mod: ModShift}},
		{"ctrl shift right", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModShift|tcell.ModCtrl),
			Event{Type: EventKey, Key: KeyRight, Mod: ModShift | ModCtrl}},
		{"page down", tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone),
			Event{Type: EventKey, Key: KeyPageDown}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, convertEvent(tt.ev)); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertMouseEvents(t *testing.T) {
	tests := []struct {
		btn  tcell.ButtonMask
		want MouseButton
	}{
		{tcell.Button1, MouseLeft},
		{tcell.Button3, MouseRight},
		{tcell.WheelUp, MouseWheelUp},
		{tcell.WheelDown, MouseWheelDown},
		{tcell.ButtonNone, MouseNone},
	}
	for _, tt := range tests {
		got := convertEvent(tcell.NewEventMouse(3, 4, tt.btn, tcell.ModNone))
		want := Event{Type: EventMouse, MouseX: 3, MouseY: 4, Button: tt.want}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("button %v (-want +got):\n%s", tt.btn, diff)
		}
	}
}

func TestConvertOtherEvents(t *testing.T) {
	if got := convertEvent(tcell.NewEventResize(80, 24)); got.Type != EventResize || got.Width != 80 || got.Height != 24 {
		t.Errorf("resize = %+v", got)
	}
	if got := convertEvent(tcell.NewEventPaste(true)); got.Type != EventPaste || !got.PasteStart {
		t.Errorf("paste = %+v", got)
	}
	if got := convertEvent(tcell.NewEventInterrupt("redraw")); got.Type != EventInterrupt || got.Data != "redraw" {
		t.Errorf("interrupt = %+v", got)
	}
}

func TestTerminalPut(t *testing.T) {
	term := newSimTerminal(t, 10, 3)
	st := tcell.StyleDefault.Bold(true)

	term.Put(1, 0, "é", st)
	term.Put(-1, 0, "x", st)
	term.Put(10, 0, "x", st)
	term.Put(0, 3, "x", st)
	term.Fill(6, 2, 10, '~', tcell.StyleDefault)

	if r, got := term.Cell(1, 0); r != 'é' || got != st {
		t.Errorf("cell (1,0) = %q %v", r, got)
	}
	for x := 6; x < 10; x++ {
		if r, _ := term.Cell(x, 2); r != '~' {
			t.Errorf("cell (%d,2) = %q", x, r)
		}
	}
	if r, _ := term.Cell(5, 2); r == '~' {
		t.Error("Fill wrote before its start")
	}
}

func TestTerminalCursor(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	term := New(screen)
	if err := term.Init(); err != nil {
		t.Fatal(err)
	}
	defer term.Shutdown()
	screen.SetSize(10, 3)

	term.ShowCursor(4, 1)
	if x, y, _ := screen.GetCursor(); x != 4 || y != 1 {
		t.Errorf("cursor = (%d, %d)", x, y)
	}
	term.HideCursor()
	if x, y, _ := screen.GetCursor(); x >= 0 && y >= 0 {
		t.Errorf("cursor still at (%d, %d)", x, y)
	}
}

func TestTerminalInterrupt(t *testing.T) {
	term := newSimTerminal(t, 10, 3)
	go term.Interrupt(42)
	// The screen may report its initial size first.
	for range 5 {
		ev, ok := term.PollEvent()
		if !ok {
			t.Fatal("screen closed")
		}
		if ev.Type == EventInterrupt {
			if ev.Data != 42 {
				t.Errorf("data = %v", ev.Data)
			}
			return
		}
	}
	t.Fatal("no interrupt event")
}

func TestThemeStyle(t *testing.T) {
	th, err := config.Default().UI.Theme.Parse()
	if err != nil {
		t.Fatal(err)
	}
	theme := NewTheme(th)

	_, _, attrs := theme.Style(paint.Attr{Role: paint.RoleHeading, Bold: true}, false).Decompose()
	if attrs&tcell.AttrBold == 0 {
		t.Error("heading not bold")
	}
	_, _, attrs = theme.Style(paint.Attr{Role: paint.RoleMarker}, false).Decompose()
	if attrs&tcell.AttrDim == 0 {
		t.Error("marker not dim")
	}
	_, _, attrs = theme.Style(paint.Attr{Italic: true, Strike: true}, false).Decompose()
	if attrs&tcell.AttrItalic == 0 || attrs&tcell.AttrStrikeThrough == 0 {
		t.Error("italic or strike missing")
	}

	fg, _, _ := theme.Style(paint.Attr{Role: paint.RoleCode}, false).Decompose()
	r, g, b := fg.RGB()
	wr, wg, wb := th.Code.Clamped().RGB255()
	if r != int32(wr) || g != int32(wg) || b != int32(wb) {
		t.Errorf("code color = %d,%d,%d", r, g, b)
	}
	fg, _, _ = theme.Style(paint.Attr{Role: paint.RoleCode, Syntax: paint.SyntaxKeyword}, false).Decompose()
	if fg != tcellColor(th.Keyword) {
		t.Errorf("keyword color = %v", fg)
	}
	_, bg, _ := theme.Style(paint.Attr{}, true).Decompose()
	if bg != tcellColor(th.Selection) {
		t.Errorf("selection background = %v", bg)
	}
}
