// Package redflag finds higher-severity issues in tax document text.
package redflag

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/taxlens/internal/model"
)

// Detector produces red flags for a document.
// Flags carry no kind; the highlight engine stamps them.
type Detector interface {
	Detect(ctx context.Context, text string, file model.FileMeta, taxType model.TaxType) ([]Flag, error)
}

// Flag is one detector finding
type Flag struct {
	Message     string            `json:"message"`
	Page        int               `json:"page,omitempty"`         // 1-based; 0 means unknown
	BoundingBox model.BoundingBox `json:"bounding_box,omitempty"` // Zero means no location
	Rule        string            `json:"rule,omitempty"`
}

// Multi runs detectors in order and concatenates their flags
type Multi struct {
	detectors []Detector
}

// NewMulti creates a detector that fans out to the given detectors (nil entries are skipped)
func NewMulti(detectors ...Detector) *Multi {
	m := &Multi{}
	for _, d := range detectors {
		if d != nil {
			m.detectors = append(m.detectors, d)
		}
	}
	return m
}

// Len returns the number of member detectors
func (m *Multi) Len() int {
	return len(m.detectors)
}

// Detect collects flags from every member. A failing member contributes no
// flags and its error is joined into the returned error; flags from the
// other members are still returned.
func (m *Multi) Detect(ctx context.Context, text string, file model.FileMeta, taxType model.TaxType) ([]Flag, error) {
	var flags []Flag
	var errs []error

	for i, d := range m.detectors {
		found, err := d.Detect(ctx, text, file, taxType)
		if err != nil {
			errs = append(errs, fmt.Errorf("detector %d: %w", i, err))
			continue
		}
		flags = append(flags, found...)
	}

	return flags, errors.Join(errs...)
}
