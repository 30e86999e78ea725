package backend

import (
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal draws on a tcell screen.
type Terminal struct {
	screen tcell.Screen
	mu     sync.Mutex
}

// NewTerminal creates a terminal on the controlling tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return New(screen), nil
}

// New wraps an existing screen, such as a simulation screen.
func New(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init initializes the screen with mouse and bracketed paste enabled.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnableMouse()
	t.screen.EnablePaste()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// Put draws one grapheme cluster at (x, y). Cells off screen are ignored.
func (t *Terminal) Put(x, y int, cluster string, style tcell.Style) {
	if cluster == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	runes := []rune(cluster)
	t.screen.SetContent(x, y, runes[0], runes[1:], style)
}

// Fill sets the cells [x, x+n) of row y to r.
func (t *Terminal) Fill(x, y, n int, r rune, style tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w, h := t.screen.Size()
	if y < 0 || y >= h {
		return
	}
	for i := max(x, 0); i < x+n && i < w; i++ {
		t.screen.SetContent(i, y, r, nil, style)
	}
}

// Cell returns the character at (x, y), for tests and diagnostics.
func (t *Terminal) Cell(x, y int) (rune, tcell.Style) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, _, style, _ := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return mainc, style
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Clear()
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

// Sync redraws the whole screen, after a resize.
func (t *Terminal) Sync() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Sync()
}

func (t *Terminal) ShowCursor(x, y int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetCursorStyle(tcell.CursorStyleSteadyBar)
	t.screen.ShowCursor(x, y)
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

func (t *Terminal) Beep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	_ = t.screen.Beep() // best-effort; terminal may not support beep
}

// PollEvent blocks for the next event. It returns EventNone with ok
// false once the screen has been shut down.
func (t *Terminal) PollEvent() (Event, bool) {
	ev := t.screen.PollEvent()
	if ev == nil {
		return Event{}, false
	}
	return convertEvent(ev), true
}

// Pending reports whether another event is already queued.
func (t *Terminal) Pending() bool {
	return t.screen.HasPendingEvent()
}

// Interrupt wakes PollEvent with an EventInterrupt carrying data. It is
// safe to call from any goroutine.
func (t *Terminal) Interrupt(data any) {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(data)) // best-effort; event queue may be full
}

// convertEvent converts tcell events to our Event type.
func convertEvent(ev tcell.Event) Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		k, r, mod := convertKey(e.Key(), e.Rune(), convertMod(e.Modifiers()))
		return Event{Type: EventKey, Key: k, Rune: r, Mod: mod}

	case *tcell.EventMouse:
		x, y := e.Position()
		return Event{
			Type:   EventMouse,
			MouseX: x,
			MouseY: y,
			Button: convertMouseButton(e.Buttons()),
			Mod:    convertMod(e.Modifiers()),
		}

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}

	case *tcell.EventPaste:
		// The pasted text arrives as key events between start and end.
		return Event{Type: EventPaste, PasteStart: e.Start()}

	case *tcell.EventInterrupt:
		return Event{Type: EventInterrupt, Data: e.Data()}

	default:
		return Event{Type: EventNone}
	}
}

// convertKey converts a tcell key. Depending on the terminal, a control
// chord is reported as a KeyCtrl* constant, as a raw control code or as
// a rune with ModCtrl; all three come out as a lower-case rune with
// ModCtrl.
func convertKey(k tcell.Key, r rune, mod ModMask) (Key, rune, ModMask) {
	switch k {
	case tcell.KeyRune:
		if mod.Has(ModCtrl) && r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		return KeyRune, r, mod
	case tcell.KeyEscape:
		return KeyEscape, 0, mod
	case tcell.KeyEnter:
		return KeyEnter, 0, mod
	case tcell.KeyTab:
		return KeyTab, 0, mod
	case tcell.KeyBacktab:
		return KeyTab, 0, mod | ModShift
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return KeyBackspace, 0, mod
	case tcell.KeyDelete:
		return KeyDelete, 0, mod
	case tcell.KeyHome:
		return KeyHome, 0, mod
	case tcell.KeyEnd:
		return KeyEnd, 0, mod
	case tcell.KeyPgUp:
		return KeyPageUp, 0, mod
	case tcell.KeyPgDn:
		return KeyPageDown, 0, mod
	case tcell.KeyUp:
		return KeyUp, 0, mod
	case tcell.KeyDown:
		return KeyDown, 0, mod
	case tcell.KeyLeft:
		return KeyLeft, 0, mod
	case tcell.KeyRight:
		return KeyRight, 0, mod
	}
	switch {
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return KeyRune, 'a' + rune(k-tcell.KeyCtrlA), mod | ModCtrl
	case k > 0 && k <= 26:
		return KeyRune, 'a' + rune(k-1), mod | ModCtrl
	}
	return KeyNone, 0, mod
}

// convertMod converts tcell modifier mask to our ModMask.
func convertMod(m tcell.ModMask) ModMask {
	var result ModMask
	if m&tcell.ModShift != 0 {
		result |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= ModMeta
	}
	return result
}

// convertMouseButton converts tcell button mask to our MouseButton.
func convertMouseButton(b tcell.ButtonMask) MouseButton {
	switch {
	case b&tcell.Button1 != 0:
		return MouseLeft
	case b&tcell.Button2 != 0:
		return MouseMiddle
	case b&tcell.Button3 != 0:
		return MouseRight
	case b&tcell.WheelUp != 0:
		return MouseWheelUp
	case b&tcell.WheelDown != 0:
		return MouseWheelDown
	default:
		return MouseNone
	}
}
