package refdoc

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor handles Markdown files using goldmark. Headings are kept
// as standalone lines so the model sees the document structure.
type MarkdownExtractor struct{}

func (e *MarkdownExtractor) Extract(r io.Reader, filename string) (Doc, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Doc{}, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := Doc{Title: titleFromFilename(filename)}
	var paragraphs []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := string(node.Text(src))
			if doc.Title == titleFromFilename(filename) && node.Level == 1 && title != "" {
				doc.Title = title
			}
			paragraphs = append(paragraphs, title)
		default:
			if t := nodeText(n, src); t != "" {
				paragraphs = append(paragraphs, t)
			}
		}
	}

	doc.Text = joinParagraphs(paragraphs)
	return doc, nil
}

// nodeText collects the plain text of a goldmark AST node, dropping the
// markup. Code blocks keep their raw lines since they have no inline
// children.
func nodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			return
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(src))
			}
			return
		case *ast.AutoLink:
			buf.Write(t.URL(src))
			return
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
			if c.Type() == ast.TypeBlock && c.NextSibling() != nil {
				buf.WriteByte('\n')
			}
		}
	}
	walk(n)
	return strings.TrimSpace(buf.String())
}
