// Package extract turns uploaded documents into plain text for analysis.
package extract

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat is returned for formats that need OCR or PDF parsing
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor converts one document format to text
type Extractor interface {
	// Name returns the extractor name
	Name() string

	// CanHandle checks if this extractor can handle the file name / content type
	CanHandle(name string, contentType string) bool

	// Extract returns the document's text
	Extract(data []byte) (string, error)
}

// Registry picks an extractor per document
type Registry struct {
	extractors []Extractor
	fallback   Extractor
}

// NewRegistry creates a registry with the built-in extractors
func NewRegistry() *Registry {
	r := &Registry{}

	r.Register(NewHTMLExtractor())
	r.Register(NewMarkdownExtractor())

	r.fallback = NewPlainTextExtractor()

	return r
}

// Register adds an extractor; earlier registrations win
func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Find returns the extractor for a document, or nil when the format is unsupported
func (r *Registry) Find(name string, contentType string) Extractor {
	if isUnsupported(name, contentType) {
		return nil
	}
	for _, e := range r.extractors {
		if e.CanHandle(name, contentType) {
			return e
		}
	}
	return r.fallback
}

// Extract converts data to text using the matching extractor
func (r *Registry) Extract(name string, contentType string, data []byte) (string, error) {
	e := r.Find(name, contentType)
	if e == nil || looksBinary(data) {
		return "", ErrUnsupportedFormat
	}
	return e.Extract(data)
}

var unsupportedExt = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".tif": true, ".tiff": true, ".heic": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

func isUnsupported(name, contentType string) bool {
	if unsupportedExt[strings.ToLower(filepath.Ext(name))] {
		return true
	}
	ct := mediaType(contentType)
	return ct == "application/pdf" || strings.HasPrefix(ct, "image/")
}

// looksBinary reports NUL bytes or invalid UTF-8 in the first 8KB
func looksBinary(data []byte) bool {
	head := data
	if len(head) > 8192 {
		head = head[:8192]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	// Tolerate a rune cut off at the boundary
	for i := 0; i < utf8.UTFMax && len(head) > 0 && !utf8.Valid(head); i++ {
		head = head[:len(head)-1]
	}
	return !utf8.Valid(head)
}

func mediaType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

func hasExt(name string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
