package markdown

import "fmt"

// Kind identifies a token's syntax.
type Kind uint8

const (
	Text Kind = iota
	Paragraph
	Heading
	Strong
	Emphasis
	Strikethrough
	CodeSpan
	CodeBlock
	Link
	Image
	ListItem
	TaskItem
	Blockquote
	Table
	TableRow
	TableCell
	ThematicBreak
	HtmlInline
)

var kindNames = [...]string{
	Text:          "Text",
	Paragraph:     "Paragraph",
	Heading:       "Heading",
	Strong:        "Strong",
	Emphasis:      "Emphasis",
	Strikethrough: "Strikethrough",
	CodeSpan:      "CodeSpan",
	CodeBlock:     "CodeBlock",
	Link:          "Link",
	Image:         "Image",
	ListItem:      "ListItem",
	TaskItem:      "TaskItem",
	Blockquote:    "Blockquote",
	Table:         "Table",
	TableRow:      "TableRow",
	TableCell:     "TableCell",
	ThematicBreak: "ThematicBreak",
	HtmlInline:    "HtmlInline",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Opaque reports whether a token of this kind must render as a whole:
// if any part of it is shown raw, all of it is. Inline composites and
// headings are opaque; block containers and plain text are not.
func (k Kind) Opaque() bool {
	switch k {
	case Strong, Emphasis, Strikethrough, CodeSpan, Link, Image, HtmlInline, Heading:
		return true
	}
	return false
}

// IsBlock reports whether the kind appears at the top level.
func (k Kind) IsBlock() bool {
	switch k {
	case Paragraph, Heading, CodeBlock, ListItem, TaskItem, Blockquote, Table, ThematicBreak:
		return true
	}
	return false
}
