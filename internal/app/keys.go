package app

import (
	"fmt"

	"github.com/dshills/hybridmd/internal/engine"
	"github.com/dshills/hybridmd/internal/engine/cursor"
	"github.com/dshills/hybridmd/internal/markdown"
	"github.com/dshills/hybridmd/internal/renderer/backend"
)

// chord is a key with its modifiers. Rune is set only for KeyRune.
type chord struct {
	key  backend.Key
	r    rune
	mods backend.ModMask
}

type action func(ed *Editor) (quit bool)

func ctrl(r rune) chord { return chord{key: backend.KeyRune, r: r, mods: backend.ModCtrl} }
func alt(r rune) chord  { return chord{key: backend.KeyRune, r: r, mods: backend.ModAlt} }

func key(k backend.Key, mods backend.ModMask) chord { return chord{key: k, mods: mods} }

// do wraps a command that never quits.
func do(cmd engine.Command) action {
	return func(ed *Editor) bool {
		ed.exec(cmd)
		return false
	}
}

// keymap holds the editor's bindings. Ctrl-I is Tab on terminals, so
// emphasis is on Ctrl-T.
var keymap = buildKeymap()

func buildKeymap() map[chord]action {
	const (
		shift = backend.ModShift
		ctl   = backend.ModCtrl
		none  = backend.ModNone
	)
	m := map[chord]action{
		key(backend.KeyEnter, none):  do(engine.InsertText("\n")),
		key(backend.KeyTab, none):    do(engine.InsertText("\t")),
		key(backend.KeyEscape, none): do(engine.CollapseSelection()),

		key(backend.KeyBackspace, none):             do(engine.DeleteBackward()),
		key(backend.KeyBackspace, ctl):              do(engine.DeleteWord(cursor.Backward)),
		key(backend.KeyBackspace, backend.ModAlt):   do(engine.DeleteWord(cursor.Backward)),
		key(backend.KeyDelete, none):                do(engine.DeleteForward()),
		key(backend.KeyDelete, ctl):                 do(engine.DeleteWord(cursor.Forward)),
		key(backend.KeyDelete, backend.ModAlt):      do(engine.DeleteWord(cursor.Forward)),
		ctrl('w'):                                   do(engine.DeleteWord(cursor.Backward)),
		ctrl('k'):                                   do(engine.DeleteToLineBoundary(cursor.Forward)),
		ctrl('u'):                                   do(engine.DeleteToLineBoundary(cursor.Backward)),
		ctrl('d'):                                   do(engine.DeleteLine()),
		key(backend.KeyPageUp, none):                func(ed *Editor) bool { ed.page(cursor.Backward, false); return false },
		key(backend.KeyPageDown, none):              func(ed *Editor) bool { ed.page(cursor.Forward, false); return false },
		key(backend.KeyPageUp, shift):               func(ed *Editor) bool { ed.page(cursor.Backward, true); return false },
		key(backend.KeyPageDown, shift):             func(ed *Editor) bool { ed.page(cursor.Forward, true); return false },

		ctrl('a'): do(engine.SelectAll()),
		ctrl('c'): (*Editor).copySelection,
		ctrl('x'): (*Editor).cutSelection,
		ctrl('v'): (*Editor).pasteClipboard,

		ctrl('b'): do(engine.ToggleFormatting(markdown.Strong)),
		ctrl('t'): do(engine.ToggleFormatting(markdown.Emphasis)),
		ctrl('e'): do(engine.ToggleFormatting(markdown.CodeSpan)),
		alt('s'):  do(engine.ToggleFormatting(markdown.Strikethrough)),

		ctrl('s'): (*Editor).save,
		ctrl('q'): (*Editor).quit,
		ctrl('l'): func(ed *Editor) bool { ed.term.Sync(); return false },
	}

	// Motions: plain moves, Shift extends, Ctrl widens the unit.
	motions := []struct {
		k        backend.Key
		unit     cursor.Unit
		ctrlUnit cursor.Unit
		dir      cursor.Direction
	}{
		{backend.KeyLeft, cursor.Character, cursor.Word, cursor.Backward},
		{backend.KeyRight, cursor.Character, cursor.Word, cursor.Forward},
		{backend.KeyUp, cursor.Line, cursor.Line, cursor.Backward},
		{backend.KeyDown, cursor.Line, cursor.Line, cursor.Forward},
		{backend.KeyHome, cursor.LineBoundary, cursor.Document, cursor.Backward},
		{backend.KeyEnd, cursor.LineBoundary, cursor.Document, cursor.Forward},
	}
	for _, mv := range motions {
		m[key(mv.k, none)] = do(engine.MoveCursor(mv.unit, mv.dir))
		m[key(mv.k, shift)] = do(engine.ExtendSelection(mv.unit, mv.dir))
		m[key(mv.k, ctl)] = do(engine.MoveCursor(mv.ctrlUnit, mv.dir))
		m[key(mv.k, ctl|shift)] = do(engine.ExtendSelection(mv.ctrlUnit, mv.dir))
	}
	return m
}

func (ed *Editor) handleKey(ev backend.Event) bool {
	ed.status = ""
	mods := ev.Mod
	if mods.Has(backend.ModMeta) {
		mods = mods&^backend.ModMeta | backend.ModAlt
	}
	if ev.Key == backend.KeyRune && !mods.Has(backend.ModCtrl) && !mods.Has(backend.ModAlt) {
		ed.quitArmed = false
		ed.exec(engine.InsertText(string(ev.Rune)))
		return false
	}

	c := chord{key: ev.Key, mods: mods}
	if ev.Key == backend.KeyRune {
		c.r = ev.Rune
	}
	act, ok := keymap[c]
	if !ok {
		return false
	}
	if c != ctrl('q') {
		ed.quitArmed = false
	}
	return act(ed)
}

// page moves the cursor by one screen of lines and scrolls with it.
func (ed *Editor) page(dir cursor.Direction, extend bool) {
	cmd := engine.MoveCursor(cursor.Line, dir)
	if extend {
		cmd = engine.ExtendSelection(cursor.Line, dir)
	}
	if dir == cursor.Backward {
		ed.view.PageUp()
	} else {
		ed.view.PageDown()
	}
	for range max(ed.view.Height()-1, 1) {
		if _, ok := ed.exec(cmd); !ok {
			return
		}
	}
}

func (ed *Editor) copySelection() bool {
	if ed.eng.Selection().IsEmpty() {
		return false
	}
	res, ok := ed.exec(engine.Copy())
	if ok {
		ed.toClipboard(res.Text)
	}
	return false
}

func (ed *Editor) cutSelection() bool {
	if ed.eng.Selection().IsEmpty() {
		return false
	}
	res, ok := ed.exec(engine.Cut())
	if ok {
		ed.toClipboard(res.Text)
	}
	return false
}

func (ed *Editor) toClipboard(text string) {
	if err := ed.clip.WriteText(text); err != nil {
		ed.status = "clipboard: " + err.Error()
		return
	}
	ed.status = fmt.Sprintf("copied %d bytes", len(text))
}

func (ed *Editor) pasteClipboard() bool {
	text, err := ed.clip.ReadText()
	if err != nil {
		ed.status = "clipboard: " + err.Error()
		return false
	}
	if text != "" {
		ed.exec(engine.Paste(text))
	}
	return false
}

func (ed *Editor) save() bool {
	n, err := ed.doc.Save()
	if err != nil {
		ed.status = err.Error()
		ed.log.Error("%v", err)
		return false
	}
	ed.status = fmt.Sprintf("wrote %d bytes", n)
	ed.log.Info("saved %s (%d bytes)", ed.doc.Path, n)
	return false
}

// quit exits, asking for a second Ctrl-Q when there are unsaved changes.
func (ed *Editor) quit() bool {
	if ed.doc.Modified() && !ed.quitArmed {
		ed.quitArmed = true
		ed.status = "unsaved changes; Ctrl-Q again to quit"
		return false
	}
	return true
}
