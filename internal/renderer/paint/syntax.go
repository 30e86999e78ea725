package paint

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/hybridmd/internal/engine/buffer"
	"github.com/dshills/hybridmd/internal/markdown"
)

// Syntax is the highlight class of a character inside a fenced code
// block.
type Syntax uint8

const (
	SyntaxNone Syntax = iota
	SyntaxKeyword
	SyntaxString
	SyntaxNumber
	SyntaxComment
)

func (s Syntax) String() string {
	switch s {
	case SyntaxKeyword:
		return "keyword"
	case SyntaxString:
		return "string"
	case SyntaxNumber:
		return "number"
	case SyntaxComment:
		return "comment"
	}
	return "none"
}

// highlight sets Syntax on the characters of a code line when the line
// lies between the fences of a code block whose info string names a
// language chroma knows. Lines are lexed one at a time, so constructs
// spanning lines, such as block comments, are only classed on their
// first line.
func highlight(attrs []Attr, t *markdown.Tree, start buffer.ByteOffset, text string) {
	id := t.Lookup(start)
	if id == markdown.NoToken {
		return
	}
	tok := t.Token(id)
	if tok.Kind != markdown.CodeBlock || !tok.Fenced || start == tok.Range.Start {
		return
	}
	if isFence(text) {
		return
	}
	classes := Code(tok.Info, text)
	for i := range min(len(classes), len(attrs)) {
		attrs[i].Syntax = classes[i]
	}
}

func isFence(line string) bool {
	s := strings.TrimLeft(line, " ")
	return strings.HasPrefix(s, "```") || strings.HasPrefix(s, "~~~")
}

// Code classes each character of one line of source in lang. It returns
// nil when lang is empty or unknown.
func Code(lang, line string) []Syntax {
	if f := strings.Fields(lang); len(f) > 0 {
		lang = f[0]
	}
	lexer := lexerFor(lang)
	if lexer == nil {
		return nil
	}
	// Line-anchored rules, such as line comments, expect the newline.
	it, err := lexer.Tokenise(nil, line+"\n")
	if err != nil {
		return nil
	}

	out := make([]Syntax, 0, utf8.RuneCountInString(line))
	for tok := it(); tok != chroma.EOF; tok = it() {
		class := classOf(tok.Type)
		for range utf8.RuneCountInString(tok.Value) {
			out = append(out, class)
		}
	}
	return out[:min(len(out), utf8.RuneCountInString(line))]
}

var (
	lexerMu    sync.Mutex
	lexerCache = map[string]chroma.Lexer{}
)

// lexerFor finds the lexer for a fence language by name, alias or file
// extension. Misses are cached too.
func lexerFor(lang string) chroma.Lexer {
	if lang == "" {
		return nil
	}
	lexerMu.Lock()
	defer lexerMu.Unlock()
	if l, ok := lexerCache[lang]; ok {
		return l
	}
	l := lexers.Get(lang)
	if l == nil {
		l = lexers.Match("file." + lang)
	}
	if l != nil {
		l = chroma.Coalesce(l)
	}
	lexerCache[lang] = l
	return l
}

func classOf(tt chroma.TokenType) Syntax {
	switch {
	case tt.InCategory(chroma.Keyword):
		return SyntaxKeyword
	case tt.InSubCategory(chroma.LiteralString):
		return SyntaxString
	case tt.InSubCategory(chroma.LiteralNumber):
		return SyntaxNumber
	case tt.InCategory(chroma.Comment):
		return SyntaxComment
	}
	return SyntaxNone
}
