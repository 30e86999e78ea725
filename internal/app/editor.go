package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/hybridmd/internal/engine"
	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/event"
	"github.com/dshills/hybridmd/internal/renderer/backend"
	"github.com/dshills/hybridmd/internal/renderer/layout"
	"github.com/dshills/hybridmd/internal/renderer/paint"
	"github.com/dshills/hybridmd/internal/renderer/viewport"
)

// wheelLines is how far one wheel step scrolls.
const wheelLines = 3

// interrupt values posted to the terminal's event queue.
type interrupt int

const (
	interruptRedraw interrupt = iota
	interruptQuit
)

// Editor is the terminal front-end of one document. It lays out the
// visible lines in cells, hands the metrics to the engine and turns
// keys and mouse clicks into engine commands.
//
// Editor methods must be called from one goroutine; only the
// subscription installed by Subscribe runs elsewhere.
type Editor struct {
	doc    *Document
	eng    *engine.Engine
	term   *backend.Terminal
	theme  *backend.Theme
	shaper *layout.CellShaper
	view   *viewport.Viewport
	log    *Logger
	clip   Clipboard

	status    string
	quitArmed bool
	reveal    bool

	dragging bool
	anchor   buffer.ByteOffset

	pasting bool
	paste   strings.Builder
}

// NewEditor creates an editor drawing doc on term.
func NewEditor(doc *Document, term *backend.Terminal, theme *backend.Theme, tabWidth int, log *Logger) *Editor {
	if log == nil {
		log = NullLogger
	}
	_, h := term.Size()
	ed := &Editor{
		doc:    doc,
		eng:    doc.Engine,
		term:   term,
		theme:  theme,
		shaper: layout.NewCellShaper(tabWidth),
		view:   viewport.New(max(h-1, 1), viewport.DefaultMargin),
		log:    log.WithComponent("editor"),
		clip:   &SystemClipboard{},
		reveal: true,
	}
	if len(doc.Warnings) > 0 {
		ed.status = strings.Join(doc.Warnings, "; ")
	}
	return ed
}

// SetClipboard replaces the system clipboard.
func (ed *Editor) SetClipboard(c Clipboard) {
	if c != nil {
		ed.clip = c
	}
}

// Status returns the current status message.
func (ed *Editor) Status() string { return ed.status }

// Subscribe redraws the screen whenever the background tokenizer
// finishes, so the remainder of a large document picks up its styling.
func (ed *Editor) Subscribe(bus *event.Bus) (*event.Subscription, error) {
	return bus.Subscribe("background.*", event.PriorityLow, func(event.Event) {
		ed.term.Interrupt(interruptRedraw)
	})
}

// Run draws the document and handles events until the user quits or ctx
// is done.
func (ed *Editor) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { ed.term.Interrupt(interruptQuit) })
	defer stop()

	ed.Draw()
	for {
		ev, ok := ed.term.PollEvent()
		if !ok {
			return nil
		}
		if ev.Type == backend.EventInterrupt && ev.Data == interruptQuit {
			return nil
		}
		if ed.Handle(ev) {
			return nil
		}
		// Coalesce bursts of input, such as key repeat, into one frame.
		if !ed.term.Pending() {
			ed.Draw()
		}
	}
}

// Handle applies one event. It reports whether the editor should quit.
func (ed *Editor) Handle(ev backend.Event) bool {
	switch ev.Type {
	case backend.EventKey:
		if ed.pasting {
			ed.collectPaste(ev)
			return false
		}
		return ed.handleKey(ev)
	case backend.EventMouse:
		ed.handleMouse(ev)
	case backend.EventPaste:
		if ev.PasteStart {
			ed.pasting = true
			ed.paste.Reset()
			return false
		}
		ed.pasting = false
		if ed.paste.Len() > 0 {
			ed.exec(engine.Paste(ed.paste.String()))
		}
	case backend.EventResize:
		ed.term.Sync()
		ed.reveal = true
	}
	return false
}

func (ed *Editor) collectPaste(ev backend.Event) {
	switch ev.Key {
	case backend.KeyRune:
		if !ev.Mod.Has(backend.ModCtrl) {
			ed.paste.WriteRune(ev.Rune)
		}
	case backend.KeyEnter:
		ed.paste.WriteByte('\n')
	case backend.KeyTab:
		ed.paste.WriteByte('\t')
	}
}

// exec runs a command, reporting failures on the status line. Commands
// that move the cursor scroll it into view on the next draw.
func (ed *Editor) exec(cmd engine.Command) (engine.Result, bool) {
	res, err := ed.eng.Execute(cmd)
	if err != nil {
		ed.status = err.Error()
		ed.log.Debug("command %s: %v", cmd, err)
		return res, false
	}
	ed.reveal = true
	return res, true
}

func (ed *Editor) handleMouse(ev backend.Event) {
	switch ev.Button {
	case backend.MouseLeft:
		off, err := ed.offsetAt(ev.MouseX, ev.MouseY)
		if err != nil {
			ed.log.Debug("click (%d, %d): %v", ev.MouseX, ev.MouseY, err)
			return
		}
		switch {
		case ed.dragging:
			ed.exec(engine.SetSelection(ed.anchor, off))
		case ev.Mod.Has(backend.ModShift):
			ed.dragging = true
			ed.anchor = ed.eng.Selection().Anchor
			ed.exec(engine.SetSelection(ed.anchor, off))
		default:
			ed.dragging = true
			ed.anchor = off
			ed.exec(engine.SetCursor(off))
		}
	case backend.MouseNone:
		ed.dragging = false
	case backend.MouseWheelUp:
		ed.view.ScrollBy(-wheelLines)
	case backend.MouseWheelDown:
		ed.view.ScrollBy(wheelLines)
	}
}

// offsetAt maps a cell to a byte offset through the last drawn layout.
// The middle of the row is used so the click lands inside its line.
func (ed *Editor) offsetAt(x, y int) (buffer.ByteOffset, error) {
	y = min(max(y, 0), ed.view.Height()-1)
	return ed.eng.ScreenToOffset(float64(x), float64(y)+0.5)
}

// Draw paints the visible lines and the status line.
func (ed *Editor) Draw() {
	w, h := ed.term.Size()
	if w <= 0 || h <= 0 {
		return
	}
	ed.view.Resize(max(h-1, 1))

	v := ed.eng.View()
	r := v.Snapshot.Rope()
	ed.view.SetLineCount(r.LineCount())
	head := r.OffsetToPoint(v.Selection.Head)
	if ed.reveal {
		ed.view.ScrollToReveal(head.Line)
		ed.reveal = false
	}

	ed.term.Clear()
	start, end := ed.view.VisibleLineRange()
	selStart, selEnd := v.Selection.Start(), v.Selection.End()
	frame := layout.Frame{Lines: make([]layout.LineMetrics, 0, end-start)}

	for line := start; line < end; line++ {
		row := int(line - start)
		lineStart := r.LineStartOffset(line)
		text := r.LineText(line)
		attrs := paint.Line(v.Tree, v.Modes, v.Snapshot, lineStart, text)
		lm, clusters := ed.shaper.Layout(line, text, func(c int) bool { return attrs[c].Hidden })
		frame.Lines = append(frame.Lines, lm)

		offs := charOffsets(text)
		for _, cl := range clusters {
			off := lineStart + offs[cl.Char]
			st := ed.theme.Style(attrs[cl.Char], off >= selStart && off < selEnd)
			if cl.Text == "\t" {
				ed.term.Fill(cl.X, row, cl.Width, ' ', st)
				continue
			}
			ed.term.Put(cl.X, row, cl.Text, st)
		}

		// A selected line break shows as one selected cell.
		lineEnd := lineStart + buffer.ByteOffset(len(text))
		if lineEnd < r.Len() && lineEnd >= selStart && lineEnd < selEnd {
			ed.term.Fill(int(lm.Width()), row, 1, ' ', ed.theme.Style(paint.Attr{}, true))
		}
	}

	if err := ed.eng.UpdateLayout(frame); err != nil {
		ed.log.Warn("layout: %v", err)
	}
	ed.placeCursor(head.Line, start, end)
	ed.drawStatus(w, h-1, head.Line, head.Column)
	ed.term.Show()
}

func (ed *Editor) placeCursor(line, start, end uint32) {
	if line < start || line >= end {
		ed.term.HideCursor()
		return
	}
	p, err := ed.eng.OffsetToPoint(ed.eng.Cursor())
	if err != nil {
		ed.term.HideCursor()
		return
	}
	x, y, err := ed.eng.PointToScreen(p)
	if err != nil {
		ed.log.Debug("cursor %v: %v", p, err)
		ed.term.HideCursor()
		return
	}
	ed.term.ShowCursor(int(x), int(y))
}

func (ed *Editor) drawStatus(w, row int, line, col uint32) {
	st := ed.theme.Status()
	ed.term.Fill(0, row, w, ' ', st)

	left := ed.doc.Name
	if ed.doc.Modified() {
		left += " *"
	}
	left = fmt.Sprintf(" %s  %d:%d", left, line+1, col+1)
	if ed.eng.Background() {
		left += "  parsing"
	}
	x := putString(ed.term, 0, row, left, st)
	if ed.status != "" {
		putString(ed.term, x+2, row, ed.status, st)
	}
}

// putString draws s from column x and returns the column after it.
func putString(t *backend.Terminal, x, y int, s string, st tcell.Style) int {
	state := -1
	for len(s) > 0 {
		var cluster string
		var width int
		cluster, s, width, state = uniseg.FirstGraphemeClusterInString(s, state)
		t.Put(x, y, cluster, st)
		x += width
	}
	return x
}

// charOffsets returns the byte offset of each character of text.
func charOffsets(text string) []buffer.ByteOffset {
	offs := make([]buffer.ByteOffset, 0, len(text))
	for i := range text {
		offs = append(offs, buffer.ByteOffset(i))
	}
	return offs
}
