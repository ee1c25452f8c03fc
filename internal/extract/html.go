package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor extracts visible text from HTML documents
type HTMLExtractor struct{}

// NewHTMLExtractor creates an HTML extractor
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Name returns the extractor name
func (e *HTMLExtractor) Name() string {
	return "html"
}

// CanHandle accepts .html/.htm files and HTML content types
func (e *HTMLExtractor) CanHandle(name string, contentType string) bool {
	ct := mediaType(contentType)
	return hasExt(name, ".html", ".htm", ".xhtml") || ct == "text/html" || ct == "application/xhtml+xml"
}

// Extract parses the document and returns its visible text. Block elements
// end a line and elements styled with a page break start a new page.
func (e *HTMLExtractor) Extract(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return extractVisibleText(doc), nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"table": true, "section": true, "article": true, "header": true, "footer": true,
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template":
				return
			}
			if isPageBreak(n) {
				buf.WriteString(PageBreak)
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return tidyLines(buf.String())
}

func isPageBreak(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "style":
			v := strings.ReplaceAll(strings.ToLower(attr.Val), " ", "")
			if strings.Contains(v, "page-break-before:always") || strings.Contains(v, "break-before:page") {
				return true
			}
		case "class":
			for _, class := range strings.Fields(attr.Val) {
				if class == "page-break" {
					return true
				}
			}
		}
	}
	return false
}

// tidyLines trims each line and drops blank ones, keeping page breaks
func tidyLines(s string) string {
	pages := strings.Split(s, PageBreak)
	for i, page := range pages {
		var lines []string
		for _, line := range strings.Split(page, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		pages[i] = strings.Join(lines, "\n")
	}
	return strings.Join(pages, PageBreak)
}
