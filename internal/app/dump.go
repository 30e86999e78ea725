package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/tidwall/sjson"

	"github.com/dshills/hybridmd/internal/engine"
	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/markdown"
	"github.com/dshills/hybridmd/internal/renderer/mode"
)

// Dump formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatGo   = "go"
)

// snippetLen bounds the source excerpt printed per token.
const snippetLen = 40

// DumpToken is one token as printed by Dump.
type DumpToken struct {
	ID    int32
	Depth int
	Kind  string
	Start int64
	End   int64
	Mode  string

	Level   int
	Info    string
	URL     string
	Alt     string
	Ordered bool
	Checked bool
	Pending bool
}

// DumpTokens flattens a tree in document order with each token's mode.
func DumpTokens(t *markdown.Tree, d mode.Decision) []DumpToken {
	out := make([]DumpToken, 0, t.NumTokens())
	depth := make([]int, t.NumTokens())
	t.Walk(func(id markdown.TokenID, tok markdown.Token) bool {
		if p := t.Parent(id); p != markdown.NoToken {
			depth[id] = depth[p] + 1
		}
		out = append(out, DumpToken{
			ID:      int32(id),
			Depth:   depth[id],
			Kind:    tok.Kind.String(),
			Start:   tok.Range.Start,
			End:     tok.Range.End,
			Mode:    d.Mode(id).String(),
			Level:   tok.Level,
			Info:    tok.Info,
			URL:     tok.URL,
			Alt:     tok.Alt,
			Ordered: tok.Ordered,
			Checked: tok.Checked,
			Pending: tok.Pending,
		})
		return true
	})
	return out
}

// Dump writes the engine's token tree and modes to w in the given
// format: an indented listing, a JSON document or Go syntax.
func Dump(w io.Writer, eng *engine.Engine, format string) error {
	v := eng.View()
	tokens := DumpTokens(v.Tree, v.Modes)

	var out string
	switch format {
	case FormatText, "":
		out = dumpText(v, tokens)
	case FormatJSON:
		s, err := dumpJSON(v, tokens)
		if err != nil {
			return err
		}
		out = s + "\n"
	case FormatGo:
		out = litter.Options{StripPackageNames: true}.Sdump(tokens) + "\n"
	default:
		return fmt.Errorf("dump format %q: %w", format, ErrUnknownFormat)
	}
	_, err := io.WriteString(w, out)
	return err
}

func dumpText(v engine.View, tokens []DumpToken) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "revision %d, %d bytes, %d tokens, cursor %d, selection %d:%d\n",
		v.Snapshot.Revision(), v.Snapshot.Len(), len(tokens),
		v.Selection.Head, v.Selection.Anchor, v.Selection.Head)
	if n := v.Tree.Degraded(); n > 0 {
		fmt.Fprintf(&sb, "degraded %d\n", n)
	}
	for _, tok := range tokens {
		sb.WriteString(strings.Repeat("  ", tok.Depth))
		fmt.Fprintf(&sb, "%s [%d,%d) %s", tok.Kind, tok.Start, tok.End, tok.Mode)
		switch {
		case tok.Level > 0:
			fmt.Fprintf(&sb, " level=%d", tok.Level)
		case tok.Info != "":
			fmt.Fprintf(&sb, " info=%s", tok.Info)
		case tok.URL != "":
			fmt.Fprintf(&sb, " url=%s", tok.URL)
		case tok.Pending:
			sb.WriteString(" pending")
		}
		sb.WriteByte(' ')
		sb.WriteString(snippet(v.Snapshot, tok.Start, tok.End))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// snippet quotes the start of [start, end), cut on a character boundary.
func snippet(s buffer.Snapshot, start, end int64) string {
	text := s.Slice(start, min(end, start+snippetLen))
	if end-start > snippetLen {
		text = strings.ToValidUTF8(text, "") + "..."
	}
	return strconv.Quote(text)
}

func dumpJSON(v engine.View, tokens []DumpToken) (string, error) {
	doc := `{}`
	var err error
	set := func(path string, val any) {
		if err == nil {
			doc, err = sjson.Set(doc, path, val)
		}
	}
	set("revision", v.Snapshot.Revision())
	set("bytes", v.Snapshot.Len())
	set("cursor", v.Selection.Head)
	set("selection.anchor", v.Selection.Anchor)
	set("selection.head", v.Selection.Head)
	set("degraded", v.Tree.Degraded())
	_, pending := v.Tree.Pending()
	set("pending", pending)

	// Objects are built separately and joined once; appending to the
	// array in place would copy the document per token.
	objs := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		obj := `{}`
		setObj := func(path string, val any) {
			if err == nil {
				obj, err = sjson.Set(obj, path, val)
			}
		}
		setObj("id", tok.ID)
		setObj("depth", tok.Depth)
		setObj("kind", tok.Kind)
		setObj("start", tok.Start)
		setObj("end", tok.End)
		setObj("mode", tok.Mode)
		if tok.Level > 0 {
			setObj("level", tok.Level)
		}
		if tok.Info != "" {
			setObj("info", tok.Info)
		}
		if tok.URL != "" {
			setObj("url", tok.URL)
		}
		if tok.Alt != "" {
			setObj("alt", tok.Alt)
		}
		if tok.Checked {
			setObj("checked", true)
		}
		objs = append(objs, obj)
	}
	if err != nil {
		return "", err
	}
	return sjson.SetRaw(doc, "tokens", "["+strings.Join(objs, ",")+"]")
}

// ParseSelection parses "A:B" into an anchor and head.
func ParseSelection(s string) (anchor, head buffer.ByteOffset, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("selection %q is not A:B: %w", s, ErrInvalidArgument)
	}
	anchor, errA := strconv.ParseInt(a, 10, 64)
	head, errB := strconv.ParseInt(b, 10, 64)
	if errA != nil || errB != nil {
		return 0, 0, fmt.Errorf("selection %q is not A:B: %w", s, ErrInvalidArgument)
	}
	return anchor, head, nil
}
