package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/taxlens/internal/extract"
	"github.com/ppiankov/taxlens/internal/logger"
	"github.com/ppiankov/taxlens/internal/model"
)

// Document is loaded document text with its file metadata
type Document struct {
	Source string
	Text   string
	File   model.FileMeta
}

// Loader reads documents from disk or the network and extracts their text
type Loader struct {
	fetcher    *Fetcher
	extractors *extract.Registry
}

// NewLoader creates a loader
func NewLoader(fetcher *Fetcher, extractors *extract.Registry) *Loader {
	return &Loader{fetcher: fetcher, extractors: extractors}
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads source and extracts its text. Unsupported formats yield empty
// text and a logged warning rather than an error.
func (l *Loader) Load(ctx context.Context, source string) (*Document, error) {
	var (
		data        []byte
		name        string
		contentType string
	)

	if IsRemote(source) {
		if l.fetcher == nil {
			return nil, fmt.Errorf("remote documents are not enabled")
		}
		result, err := l.fetcher.FetchWithRetry(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		data, name, contentType = result.Data, result.Name, result.ContentType
	} else {
		var err error
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		name = filepath.Base(source)
	}

	doc := &Document{
		Source: source,
		File:   model.FileMeta{Name: name, Size: int64(len(data))},
	}

	text, err := l.extractors.Extract(name, contentType, data)
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		logger.WithField("source", source).Warn("unsupported document format, analyzing empty text")
	case err != nil:
		return nil, fmt.Errorf("extract text: %w", err)
	default:
		doc.Text = text
	}

	return doc, nil
}
