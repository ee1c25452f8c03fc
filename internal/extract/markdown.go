package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor reduces Markdown to the text a reader would see
type MarkdownExtractor struct{}

// NewMarkdownExtractor creates a Markdown extractor
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{}
}

// Name returns the extractor name
func (e *MarkdownExtractor) Name() string {
	return "markdown"
}

// CanHandle accepts .md/.markdown files and text/markdown
func (e *MarkdownExtractor) CanHandle(name string, contentType string) bool {
	return hasExt(name, ".md", ".markdown") || mediaType(contentType) == "text/markdown"
}

// Extract keeps text, code and link labels. Images and raw HTML are dropped.
// Form feeds still separate pages.
func (e *MarkdownExtractor) Extract(data []byte) (string, error) {
	src := strings.ReplaceAll(string(data), "\r\n", "\n")

	pages := strings.Split(src, PageBreak)
	for i, page := range pages {
		out, err := e.plainText([]byte(page))
		if err != nil {
			return "", err
		}
		pages[i] = out
	}
	return strings.Join(pages, PageBreak), nil
}

func (e *MarkdownExtractor) plainText(src []byte) (string, error) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var b strings.Builder
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			switch node := n.(type) {
			case *ast.Emphasis:
				if intraword(node, src) {
					b.WriteString(emphasisMarker(node, src))
				}
			default:
				if n.Type() == ast.TypeBlock {
					endLine(&b)
				}
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Image, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Emphasis:
			// 2*3 and 4*5 parse as emphasis; the markers are part of the text
			if intraword(node, src) {
				b.WriteString(emphasisMarker(node, src))
			}
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.AutoLink:
			b.Write(node.Label(src))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

func endLine(b *strings.Builder) {
	s := b.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
}

// intraword reports whether emphasis touches a letter or digit outside its markers
func intraword(n *ast.Emphasis, src []byte) bool {
	if prev, ok := n.PreviousSibling().(*ast.Text); ok && !prev.SoftLineBreak() && !prev.HardLineBreak() {
		if v := prev.Segment.Value(src); len(v) > 0 && isWordByte(v[len(v)-1]) {
			return true
		}
	}
	if next, ok := n.NextSibling().(*ast.Text); ok {
		if v := next.Segment.Value(src); len(v) > 0 && isWordByte(v[0]) {
			return true
		}
	}
	return false
}

func emphasisMarker(n *ast.Emphasis, src []byte) string {
	marker := "*"
	for c := n.FirstChild(); c != nil; c = c.FirstChild() {
		if t, ok := c.(*ast.Text); ok {
			if start := t.Segment.Start; start > 0 && src[start-1] == '_' {
				marker = "_"
			}
			break
		}
	}
	return strings.Repeat(marker, n.Level)
}

func isWordByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
