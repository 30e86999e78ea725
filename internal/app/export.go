package app

import (
	"bytes"
	"context"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// htmlRenderer converts GitHub-flavored markdown, the dialect the
// tokenizer reads, to HTML.
var htmlRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

// ExportHTML writes text rendered as an HTML fragment to w.
func ExportHTML(w io.Writer, text string) error {
	var buf bytes.Buffer
	if err := htmlRenderer.Convert([]byte(text), &buf); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// Export prints path rendered as HTML.
func (a *Application) Export(ctx context.Context, path string) error {
	doc, err := a.OpenDocument(ctx, path)
	if err != nil {
		return err
	}
	defer doc.Close()
	if err := ExportHTML(a.stdout, doc.Engine.Text()); err != nil {
		return NewOperationError("export", path, err)
	}
	return nil
}
