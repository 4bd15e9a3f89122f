package convert

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownToHTML renders markdown source into a standalone HTML document the
// office converter can turn into a PDF.
func MarkdownToHTML(source []byte, title string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert(source, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	if title == "" {
		title = "document"
	}

	var doc bytes.Buffer
	doc.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&doc, "<title>%s</title>\n", html.EscapeString(title))
	doc.WriteString("</head>\n<body>\n")
	doc.Write(body.Bytes())
	doc.WriteString("</body>\n</html>\n")
	return doc.Bytes(), nil
}
