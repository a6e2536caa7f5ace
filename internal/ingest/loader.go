package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Page is the text of one page of a document. Number is 1-based, or 0 when
// the document has no page structure.
type Page struct {
	Number int
	Text   string
}

// Supported reports whether the index builder can load the file at path.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown":
		return true
	}
	return false
}

// Load reads a document and returns its pages. Plain text split by form
// feeds (as written by pdftotext) yields numbered pages; Markdown is
// rendered to plain text.
func Load(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return []Page{{Text: MarkdownText(data)}}, nil
	case ".txt":
		return textPages(string(data)), nil
	default:
		return nil, fmt.Errorf("unsupported document type: %s", path)
	}
}

func textPages(s string) []Page {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if !strings.Contains(s, "\f") {
		return []Page{{Text: s}}
	}
	var pages []Page
	for i, p := range strings.Split(s, "\f") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		pages = append(pages, Page{Number: i + 1, Text: p})
	}
	return pages
}

var markdown = goldmark.New()

// MarkdownText renders Markdown source to plain text, keeping one blank
// line between blocks so the splitter sees paragraph boundaries.
func MarkdownText(src []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	blockEnd := func() {
		if buf.Len() == 0 {
			return
		}
		b := buf.Bytes()
		switch {
		case bytes.HasSuffix(b, []byte("\n\n")):
		case bytes.HasSuffix(b, []byte("\n")):
			buf.WriteByte('\n')
		default:
			buf.WriteString("\n\n")
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.HardLineBreak() {
					buf.WriteByte('\n')
				} else if node.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(node.Label(src))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					buf.Write(seg.Value(src))
				}
				blockEnd()
			}
			return ast.WalkSkipChildren, nil
		default:
			if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
				blockEnd()
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(buf.String())
}
