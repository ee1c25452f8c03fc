package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/taxlens/internal/model"
	"gopkg.in/yaml.v3"
)

// Entry is one document listed in a batch manifest
type Entry struct {
	ID          string `yaml:"id"`
	Path        string `yaml:"path"`         // Local path (relative to the manifest) or http(s) URL
	Name        string `yaml:"name"`         // Display name; defaults to the path base name
	TaxType     string `yaml:"tax_type"`
	AccountType string `yaml:"account_type"`
	Size        int64  `yaml:"size"`
	Analyzed    bool   `yaml:"analyzed"`
}

// Meta returns the file metadata for the entry
func (e Entry) Meta() model.FileMeta {
	return model.FileMeta{Name: e.Name, Size: e.Size, Analyzed: e.Analyzed}
}

// IsRemote reports whether the entry points at a URL
func (e Entry) IsRemote() bool {
	return strings.HasPrefix(e.Path, "http://") || strings.HasPrefix(e.Path, "https://")
}

// Manifest is the batch input file
type Manifest struct {
	Documents []Entry `yaml:"documents"`
}

// LoadManifest reads a YAML manifest. Relative paths are resolved against the
// manifest's directory, missing ids default to the path, and missing sizes are
// read from the filesystem.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool)

	for i := range m.Documents {
		e := &m.Documents[i]
		if strings.TrimSpace(e.Path) == "" {
			return nil, fmt.Errorf("manifest entry %d: path is required", i)
		}
		if !e.IsRemote() && !filepath.IsAbs(e.Path) {
			e.Path = filepath.Join(base, e.Path)
		}
		if e.ID == "" {
			e.ID = e.Path
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("manifest entry %d: duplicate id %q", i, e.ID)
		}
		seen[e.ID] = true

		if e.Name == "" {
			e.Name = filepath.Base(e.Path)
		}
		if e.Size == 0 && !e.IsRemote() {
			if info, err := os.Stat(e.Path); err == nil {
				e.Size = info.Size()
			}
		}
	}

	return &m, nil
}

// Register adds every manifest entry to the registry
func (m *Manifest) Register(r *Memory) {
	for _, e := range m.Documents {
		r.Register(e.ID, e.Meta())
	}
}
