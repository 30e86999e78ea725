package engine

import (
	"fmt"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/engine/cursor"
	"github.com/dshills/hybridmd/internal/markdown"
	"github.com/dshills/hybridmd/internal/renderer/mode"
)

// CommandKind identifies a command.
type CommandKind uint8

const (
	CmdInsertText CommandKind = iota
	CmdDeleteRange
	CmdDeleteBackward
	CmdDeleteForward
	CmdMoveCursor
	CmdExtendSelection
	CmdSetSelection
	CmdToggleFormatting
	CmdSetCursor
	CmdSelectAll
	CmdCollapseSelection
	CmdCopy
	CmdCut
	CmdPaste
	CmdDeleteWord
	CmdDeleteToLineBoundary
	CmdDeleteLine
)

var commandNames = [...]string{
	CmdInsertText:           "InsertText",
	CmdDeleteRange:          "DeleteRange",
	CmdDeleteBackward:       "DeleteBackward",
	CmdDeleteForward:        "DeleteForward",
	CmdMoveCursor:           "MoveCursor",
	CmdExtendSelection:      "ExtendSelection",
	CmdSetSelection:         "SetSelection",
	CmdToggleFormatting:     "ToggleFormatting",
	CmdSetCursor:            "SetCursor",
	CmdSelectAll:            "SelectAll",
	CmdCollapseSelection:    "CollapseSelection",
	CmdCopy:                 "Copy",
	CmdCut:                  "Cut",
	CmdPaste:                "Paste",
	CmdDeleteWord:           "DeleteWord",
	CmdDeleteToLineBoundary: "DeleteToLineBoundary",
	CmdDeleteLine:           "DeleteLine",
}

func (k CommandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("CommandKind(%d)", k)
}

// Command is one input from the command vocabulary. Only the fields its
// Kind uses are read.
type Command struct {
	Kind      CommandKind
	Text      string           // InsertText, Paste
	Anchor    buffer.ByteOffset // SetSelection, DeleteRange (start), SetCursor
	Head      buffer.ByteOffset // SetSelection, DeleteRange (end)
	Unit      cursor.Unit
	Direction cursor.Direction
	Format    markdown.Kind // ToggleFormatting
}

func (c Command) String() string {
	switch c.Kind {
	case CmdInsertText, CmdPaste:
		return fmt.Sprintf("%s(%q)", c.Kind, c.Text)
	case CmdDeleteRange, CmdSetSelection:
		return fmt.Sprintf("%s(%d, %d)", c.Kind, c.Anchor, c.Head)
	case CmdSetCursor:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Anchor)
	case CmdMoveCursor, CmdExtendSelection:
		return fmt.Sprintf("%s(%s, %s)", c.Kind, c.Unit, c.Direction)
	case CmdDeleteWord, CmdDeleteToLineBoundary:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Direction)
	case CmdToggleFormatting:
		return fmt.Sprintf("%s(%s)", c.Kind, c.Format)
	}
	return c.Kind.String()
}

// InsertText replaces the selection with text, or inserts it at the cursor.
func InsertText(text string) Command { return Command{Kind: CmdInsertText, Text: text} }

// DeleteRange removes [start, end).
func DeleteRange(start, end buffer.ByteOffset) Command {
	return Command{Kind: CmdDeleteRange, Anchor: start, Head: end}
}

// DeleteBackward removes the selection or the character before the cursor.
func DeleteBackward() Command { return Command{Kind: CmdDeleteBackward} }

// DeleteForward removes the selection or the character after the cursor.
func DeleteForward() Command { return Command{Kind: CmdDeleteForward} }

// MoveCursor moves the cursor, dropping any selection.
func MoveCursor(unit cursor.Unit, dir cursor.Direction) Command {
	return Command{Kind: CmdMoveCursor, Unit: unit, Direction: dir}
}

// ExtendSelection moves the selection head, keeping the anchor.
func ExtendSelection(unit cursor.Unit, dir cursor.Direction) Command {
	return Command{Kind: CmdExtendSelection, Unit: unit, Direction: dir}
}

// SetSelection selects from anchor to head. Offsets are clamped.
func SetSelection(anchor, head buffer.ByteOffset) Command {
	return Command{Kind: CmdSetSelection, Anchor: anchor, Head: head}
}

// SetCursor places the cursor. The offset is clamped.
func SetCursor(offset buffer.ByteOffset) Command {
	return Command{Kind: CmdSetCursor, Anchor: offset}
}

// ToggleFormatting adds or removes Strong, Emphasis, Strikethrough or
// CodeSpan markers around the selection.
func ToggleFormatting(kind markdown.Kind) Command {
	return Command{Kind: CmdToggleFormatting, Format: kind}
}

// SelectAll selects the whole document.
func SelectAll() Command { return Command{Kind: CmdSelectAll} }

// CollapseSelection drops the selection, keeping the cursor at its head.
func CollapseSelection() Command { return Command{Kind: CmdCollapseSelection} }

// Copy returns the selected text in Result.Text.
func Copy() Command { return Command{Kind: CmdCopy} }

// Cut removes the selection and returns it in Result.Text.
func Cut() Command { return Command{Kind: CmdCut} }

// Paste replaces the selection with text.
func Paste(text string) Command { return Command{Kind: CmdPaste, Text: text} }

// DeleteWord removes to the previous word start or next word end.
func DeleteWord(dir cursor.Direction) Command {
	return Command{Kind: CmdDeleteWord, Direction: dir}
}

// DeleteToLineBoundary removes to the start or end of the line.
func DeleteToLineBoundary(dir cursor.Direction) Command {
	return Command{Kind: CmdDeleteToLineBoundary, Direction: dir}
}

// DeleteLine removes the cursor's line.
func DeleteLine() Command { return Command{Kind: CmdDeleteLine} }

// Result reports what a command did.
type Result struct {
	// Change is the edit applied, if Changed.
	Change  buffer.Change
	Changed bool
	// Span is the region the tokenizer re-read, if Changed.
	Span markdown.Span
	// Text is the copied or cut text.
	Text      string
	Cursor    buffer.ByteOffset
	Selection cursor.Selection
	Modes     mode.Decision
	Revision  uint64
}
