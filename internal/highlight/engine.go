// Package highlight turns document text into ordered annotations.
//
// Three passes run in a fixed order and their outputs are concatenated:
// suggestions, warnings, then red flags from a delegated detector. Matching is
// case-insensitive containment over the whole text. Bounding boxes are
// placeholders keyed by rule position within a pass; they do not reflect where
// the matched text sits on the page.
package highlight

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ppiankov/taxlens/internal/logger"
	"github.com/ppiankov/taxlens/internal/model"
	"github.com/ppiankov/taxlens/internal/redflag"
	"github.com/ppiankov/taxlens/internal/registry"
	"github.com/sirupsen/logrus"
)

// Engine runs the annotation passes. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	detector redflag.Detector
	newID    func() string
}

// Option configures an Engine
type Option func(*Engine)

// WithIDGenerator replaces the UUID generator (useful for stable output in tests)
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine creates an engine. A nil detector disables the red flag pass.
func NewEngine(detector redflag.Detector, opts ...Option) *Engine {
	e := &Engine{
		detector: detector,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze annotates one document. It never fails: degraded input yields a
// shorter list, and a failing detector yields zero red flags.
func (e *Engine) Analyze(ctx context.Context, in model.DocumentInput) []model.Annotation {
	s := scope{
		taxType:     model.ParseTaxType(in.TaxType),
		accountType: model.ParseAccountType(in.AccountType),
		text:        strings.ToLower(in.Text),
	}

	annotations := make([]model.Annotation, 0, len(suggestionRules)+len(warningRules))
	annotations = append(annotations, e.runPass(model.KindSuggestion, suggestionRules, s)...)
	annotations = append(annotations, e.runPass(model.KindWarning, warningRules, s)...)
	annotations = append(annotations, e.redFlags(ctx, in, s.taxType)...)

	logger.WithFields(logrus.Fields{
		"file_id":     in.FileID,
		"tax_type":    s.taxType.String(),
		"annotations": len(annotations),
	}).Debug("document analyzed")

	return annotations
}

// AnalyzeFile resolves fileID through the registry and analyzes the text.
// An unknown file id yields an empty list.
func (e *Engine) AnalyzeFile(ctx context.Context, reg registry.Registry, fileID, text, taxType, accountType string) []model.Annotation {
	if reg == nil {
		return []model.Annotation{}
	}
	meta, ok := reg.Lookup(fileID)
	if !ok {
		logger.WithField("file_id", fileID).Debug("file not registered, skipping analysis")
		return []model.Annotation{}
	}

	return e.Analyze(ctx, model.DocumentInput{
		FileID:      fileID,
		Text:        text,
		TaxType:     taxType,
		AccountType: accountType,
		File:        meta,
	})
}

func (e *Engine) runPass(kind model.Kind, rules []rule, s scope) []model.Annotation {
	var out []model.Annotation
	for i, r := range rules {
		if !r.applies(s) {
			continue
		}
		out = append(out, model.Annotation{
			ID:          e.newID(),
			Kind:        kind,
			Message:     r.message,
			Page:        1,
			BoundingBox: placeholderBox(kind, i),
			Rule:        string(kind) + ":" + r.key,
		})
	}
	return out
}

// redFlags delegates to the detector and stamps every result as a red flag
func (e *Engine) redFlags(ctx context.Context, in model.DocumentInput, taxType model.TaxType) (out []model.Annotation) {
	if e.detector == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("file_id", in.FileID).Errorf("red flag detector panicked: %v", r)
			out = nil
		}
	}()

	flags, err := e.detector.Detect(ctx, in.Text, in.File, taxType)
	if err != nil {
		logger.WithError(err).WithField("file_id", in.FileID).Warn("red flag detection failed")
		// Multi detectors return partial flags alongside the error
		if len(flags) == 0 {
			return nil
		}
	}

	for i, f := range flags {
		page := f.Page
		if page < 1 {
			page = 1
		}
		box := f.BoundingBox
		if box.IsZero() {
			box = placeholderBox(model.KindRedFlag, i)
		}
		rule := f.Rule
		if rule == "" {
			rule = fmt.Sprintf("redflag:%d", i)
		}
		out = append(out, model.Annotation{
			ID:          e.newID(),
			Kind:        model.KindRedFlag,
			Message:     f.Message,
			Page:        page,
			BoundingBox: box.Clamp(),
			Rule:        rule,
		})
	}
	return out
}

// placeholderBox returns a fixed region for the index-th rule of a pass.
// Suggestions stack down the right margin, warnings down the left, and red
// flags across the top.
func placeholderBox(kind model.Kind, index int) model.BoundingBox {
	switch kind {
	case model.KindSuggestion:
		return model.BoundingBox{X: 60, Y: 10 + float64(index%6)*12, Width: 35, Height: 10}
	case model.KindWarning:
		return model.BoundingBox{X: 5, Y: 10 + float64(index%6)*12, Width: 35, Height: 10}
	default:
		return model.BoundingBox{X: 10 + float64(index%4)*20, Y: 2, Width: 18, Height: 6}
	}
}
