package extract

import "strings"

// PlainTextExtractor passes text through with line endings normalized
type PlainTextExtractor struct{}

// NewPlainTextExtractor creates a plain text extractor
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Name returns the extractor name
func (e *PlainTextExtractor) Name() string {
	return "plaintext"
}

// CanHandle accepts .txt files and text/plain
func (e *PlainTextExtractor) CanHandle(name string, contentType string) bool {
	return hasExt(name, ".txt", ".text") || mediaType(contentType) == "text/plain"
}

// Extract returns the text with CRLF line endings normalized
func (e *PlainTextExtractor) Extract(data []byte) (string, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}
