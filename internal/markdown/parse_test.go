package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// shape renders a tree as one indented "Kind[start:end)" line per token.
func shape(tr *Tree) []string {
	var out []string
	depth := map[TokenID]int{}
	tr.Walk(func(id TokenID, tok Token) bool {
		d := 0
		if p := tr.Parent(id); p != NoToken {
			d = depth[p] + 1
		}
		depth[id] = d
		out = append(out, strings.Repeat("  ", d)+tok.Kind.String()+tok.Range.String())
		return true
	})
	return out
}

// checkTree verifies coverage and nesting: top-level tokens tile the
// document, children sit inside their parent and siblings do not overlap.
func checkTree(t *testing.T, tr *Tree, text string) {
	t.Helper()
	if tr.Len() != ByteOffset(len(text)) {
		t.Fatalf("tree length %d, text length %d", tr.Len(), len(text))
	}
	var prev ByteOffset
	for _, id := range tr.Roots() {
		r := tr.Token(id).Range
		if r.Start != prev || r.End <= r.Start {
			t.Fatalf("top-level token %v does not continue from %d", r, prev)
		}
		if tr.Parent(id) != NoToken {
			t.Fatalf("top-level token %v has a parent", r)
		}
		prev = r.End
	}
	if prev != ByteOffset(len(text)) {
		t.Fatalf("top-level tokens end at %d, want %d", prev, len(text))
	}
	for i := 0; i < tr.NumTokens(); i++ {
		id := TokenID(i)
		r := tr.Token(id).Range
		if r.IsEmpty() {
			t.Fatalf("empty token %s%v", tr.Token(id).Kind, r)
		}
		var last ByteOffset = -1
		for _, c := range tr.Children(id) {
			cr := tr.Token(c).Range
			if !r.ContainsRange(cr) {
				t.Fatalf("child %v escapes parent %v", cr, r)
			}
			if tr.Parent(c) != id {
				t.Fatalf("child %v has parent %d, want %d", cr, tr.Parent(c), id)
			}
			if cr.Start < last {
				t.Fatalf("sibling %v overlaps previous ending at %d", cr, last)
			}
			last = cr.End
		}
	}
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "strong in paragraph",
			text: "a **b** c",
			want: []string{
				"Paragraph[0:9)",
				"  Text[0:2)",
				"  Strong[2:7)",
				"    Text[4:5)",
				"  Text[7:9)",
			},
		},
		{
			name: "heading blank paragraph",
			text: "# Title\n\nbody\n",
			want: []string{
				"Heading[0:8)",
				"  Text[2:7)",
				"Text[8:9)",
				"Paragraph[9:14)",
				"  Text[9:13)",
			},
		},
		{
			name: "fenced code",
			text: "```go\nx := 1\n```\nafter",
			want: []string{
				"CodeBlock[0:17)",
				"Paragraph[17:22)",
				"  Text[17:22)",
			},
		},
		{
			name: "unterminated fence runs to end",
			text: "```\ncode\n\nmore",
			want: []string{"CodeBlock[0:14)"},
		},
		{
			name: "indented code",
			text: "    code\n",
			want: []string{"CodeBlock[0:9)"},
		},
		{
			name: "list items",
			text: "- one\n- [x] two\n3. three\n",
			want: []string{
				"ListItem[0:6)",
				"  Text[2:5)",
				"TaskItem[6:16)",
				"  Text[12:15)",
				"ListItem[16:25)",
				"  Text[19:24)",
			},
		},
		{
			name: "table",
			text: "| a | b |\n|---|---|\n| 1 | 2 |\n",
			want: []string{
				"Table[0:30)",
				"  TableRow[0:10)",
				"    TableCell[2:3)",
				"      Text[2:3)",
				"    TableCell[6:7)",
				"      Text[6:7)",
				"  TableRow[10:20)",
				"  TableRow[20:30)",
				"    TableCell[22:23)",
				"      Text[22:23)",
				"    TableCell[26:27)",
				"      Text[26:27)",
			},
		},
		{
			name: "blockquote",
			text: "> quote *em*\n> more\n",
			want: []string{
				"Blockquote[0:20)",
				"  Text[2:8)",
				"  Emphasis[8:12)",
				"    Text[9:11)",
				"  Text[15:19)",
			},
		},
		{
			name: "break link image",
			text: "---\n[go](https://go.dev) ![i](a.png)\n",
			want: []string{
				"ThematicBreak[0:4)",
				"Paragraph[4:37)",
				"  Link[4:24)",
				"    Text[5:7)",
				"  Text[24:25)",
				"  Image[25:36)",
			},
		},
		{
			name: "strikethrough and code span",
			text: "~~x~~ `y`",
			want: []string{
				"Paragraph[0:9)",
				"  Strikethrough[0:5)",
				"    Text[2:3)",
				"  Text[5:6)",
				"  CodeSpan[6:9)",
			},
		},
		{
			name: "emphasis around strong",
			text: "***a***",
			want: []string{
				"Paragraph[0:7)",
				"  Emphasis[0:7)",
				"    Strong[1:6)",
				"      Text[3:4)",
			},
		},
		{
			name: "strong inside emphasis",
			text: "*a **b** c*",
			want: []string{
				"Paragraph[0:11)",
				"  Emphasis[0:11)",
				"    Text[1:3)",
				"    Strong[3:8)",
				"      Text[5:6)",
				"    Text[8:10)",
			},
		},
		{
			name: "inline html and autolink",
			text: "<b>x</b> <https://a.b>",
			want: []string{
				"Paragraph[0:22)",
				"  HtmlInline[0:3)",
				"  Text[3:4)",
				"  HtmlInline[4:8)",
				"  Text[8:9)",
				"  Link[9:22)",
			},
		},
		{
			name: "escaped bracket in label",
			text: "[a\\]b](c) [[x](y)",
			want: []string{
				"Paragraph[0:17)",
				"  Link[0:9)",
				"    Text[1:5)",
				"  Text[9:11)",
				"  Link[11:17)",
				"    Text[12:13)",
			},
		},
		{
			name: "runs pair across text",
			text: "*a* _b_ **c",
			want: []string{
				"Paragraph[0:11)",
				"  Emphasis[0:3)",
				"    Text[1:2)",
				"  Text[3:4)",
				"  Emphasis[4:7)",
				"    Text[5:6)",
				"  Text[7:11)",
			},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := Parse(tt.text)
			checkTree(t, tr, tt.text)
			if diff := cmp.Diff(tt.want, shape(tr)); diff != "" {
				t.Errorf("shape mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	tr := Parse("## Hi ##\n```go run\nx\n```\n2) item\n\n[a](<b c> \"t\")\n")
	var got []Token
	for _, id := range tr.Roots() {
		got = append(got, tr.Token(id))
	}
	if got[0].Kind != Heading || got[0].Level != 2 {
		t.Errorf("heading = %+v", got[0])
	}
	if kids := tr.Children(tr.Roots()[0]); len(kids) != 1 || tr.Token(kids[0]).Range != (Range{Start: 3, End: 5}) {
		t.Errorf("closing hashes should be excluded from heading content: %v", shape(tr))
	}
	if got[1].Kind != CodeBlock || !got[1].Fenced || got[1].Info != "go" {
		t.Errorf("code block = %+v", got[1])
	}
	if got[2].Kind != ListItem || !got[2].Ordered || got[2].Number != 2 {
		t.Errorf("list item = %+v", got[2])
	}
	link := tr.Lookup(got[4].Range.Start)
	if tok := tr.Token(link); tok.Kind != Link || tok.URL != "b c" {
		t.Errorf("link = %+v", tok)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		text     string
		degraded int
	}{
		{"**bold", 1},
		{"`tick", 1},
		{"a * b", 0},
		{"[x](", 0},
		{"snake_case_name", 0},
		{"<!-- open", 1},
		{"**a* b", 1},
	}
	for _, tt := range tests {
		tr := Parse(tt.text)
		checkTree(t, tr, tt.text)
		if tr.Degraded() != tt.degraded {
			t.Errorf("%q: degraded = %d, want %d", tt.text, tr.Degraded(), tt.degraded)
		}
		if tt.degraded > 0 {
			root := tr.Roots()[0]
			if tok := tr.Token(tr.Children(root)[0]); tok.Kind != Text {
				t.Errorf("%q: malformed span should start as Text, got %v", tt.text, shape(tr))
			}
		}
	}
}

func TestInlineScalesLinearly(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		kind  Kind
		count int
	}{
		{"many emphasis pairs", strings.Repeat("*a* ", 20000), Emphasis, 20000},
		{"unclosed brackets", strings.Repeat("[", 100000), Link, 0},
		{"unclosed destinations", strings.Repeat("[a](", 20000), Link, 0},
		{"unmatched openers", strings.Repeat("*a ", 20000) + "b*", Emphasis, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			tr := Parse(tt.text)
			if d := time.Since(start); d > 2*time.Second {
				t.Errorf("parse of %d bytes took %v", len(tt.text), d)
			}
			n := 0
			tr.Walk(func(_ TokenID, tok Token) bool {
				if tok.Kind == tt.kind {
					n++
				}
				return true
			})
			if n != tt.count {
				t.Errorf("%d %s tokens, want %d", n, tt.kind, tt.count)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tr := Parse("a **b** c")
	tests := []struct {
		offset ByteOffset
		kind   Kind
		rng    Range
	}{
		{0, Text, Range{Start: 0, End: 2}},
		{2, Strong, Range{Start: 2, End: 7}},
		{4, Text, Range{Start: 4, End: 5}},
		{6, Strong, Range{Start: 2, End: 7}},
		{7, Text, Range{Start: 7, End: 9}},
		{9, Text, Range{Start: 7, End: 9}},
	}
	for _, tt := range tests {
		id := tr.Lookup(tt.offset)
		if id == NoToken {
			t.Fatalf("Lookup(%d) found nothing", tt.offset)
		}
		if tok := tr.Token(id); tok.Kind != tt.kind || tok.Range != tt.rng {
			t.Errorf("Lookup(%d) = %s%v, want %s%v", tt.offset, tok.Kind, tok.Range, tt.kind, tt.rng)
		}
	}
	if id := tr.Lookup(10); id != NoToken {
		t.Errorf("Lookup past end = %d", id)
	}
	if id := Parse("").Lookup(0); id != NoToken {
		t.Errorf("Lookup in empty document = %d", id)
	}

	var kinds []Kind
	for _, id := range tr.Path(4) {
		kinds = append(kinds, tr.Token(id).Kind)
	}
	if diff := cmp.Diff([]Kind{Paragraph, Strong, Text}, kinds); diff != "" {
		t.Errorf("Path(4) (-want +got):\n%s", diff)
	}
	opaque := func(tok Token) bool { return tok.Kind.Opaque() }
	if p := tr.Nearest(tr.Lookup(4), opaque); tr.Token(p).Kind != Strong {
		t.Errorf("Nearest opaque = %v", tr.Token(p))
	}
	nested := Parse("x **a *b* c** y\n")
	if p := nested.Nearest(nested.Lookup(7), opaque); nested.Token(p).Range != (Range{Start: 6, End: 9}) {
		t.Errorf("Nearest opaque in nested = %s%v", nested.Token(p).Kind, nested.Token(p).Range)
	}
	if p := nested.Nearest(nested.Lookup(0), opaque); p != NoToken {
		t.Errorf("Nearest opaque of plain text = %v", nested.Token(p))
	}
}

func TestOverlapping(t *testing.T) {
	tr := Parse("a **b** c")
	var got []string
	for _, id := range tr.Overlapping(Range{Start: 3, End: 8}) {
		tok := tr.Token(id)
		got = append(got, tok.Kind.String()+tok.Range.String())
	}
	want := []string{"Paragraph[0:9)", "Strong[2:7)", "Text[4:5)", "Text[7:9)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Overlapping (-want +got):\n%s", diff)
	}
}

func TestKindOpaque(t *testing.T) {
	for _, k := range []Kind{Strong, Emphasis, Strikethrough, CodeSpan, Link, Image, HtmlInline, Heading} {
		if !k.Opaque() {
			t.Errorf("%s should be opaque", k)
		}
	}
	for _, k := range []Kind{Text, Paragraph, ListItem, TaskItem, Blockquote, Table, TableRow, TableCell, CodeBlock, ThematicBreak} {
		if k.Opaque() {
			t.Errorf("%s should not be opaque", k)
		}
	}
	if Kind(200).String() != "Kind(200)" {
		t.Errorf("unknown kind string = %q", Kind(200).String())
	}
}
