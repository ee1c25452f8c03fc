// Package score turns annotations into a transparent readiness index.
package score

import (
	"fmt"

	"github.com/ppiankov/taxlens/internal/model"
)

const (
	warningPenalty    = 10
	warningPenaltyCap = 50
	redFlagPenalty    = 15
	redFlagPenaltyCap = 60
)

// Input is everything the scorer looks at
type Input struct {
	Annotations []model.Annotation
	EmptyText   bool
	TaxType     model.TaxType
}

// Scorer calculates the readiness index and generates signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate computes the readiness index. It reads the annotations and never
// changes them.
func (s *Scorer) Calculate(in Input) model.Score {
	counts := model.CountByKind(in.Annotations)
	var signals []model.Signal

	// 1. Missing information (0-50 point penalty)
	warningScore, warningSignal := s.calculateWarnings(counts.Warnings)
	signals = append(signals, warningSignal)

	// 2. Red flags (0-60 point penalty)
	redFlagScore, redFlagSignal := s.calculateRedFlags(counts.RedFlags)
	signals = append(signals, redFlagSignal)

	// 3. Opportunities (informational)
	if counts.Suggestions > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalOpportunities,
			Severity:    model.SeverityInfo,
			Description: fmt.Sprintf("%d tax saving opportunities found", counts.Suggestions),
			Data: map[string]interface{}{
				"suggestions": counts.Suggestions,
				"penalty":     0,
			},
		})
	}

	// 4. Input quality
	if in.EmptyText {
		signals = append(signals, model.Signal{
			Type:        model.SignalEmptyText,
			Severity:    model.SeverityCritical,
			Description: "No text could be extracted; only absence checks ran",
		})
	}
	if in.TaxType == model.TaxTypeUnknown {
		signals = append(signals, model.Signal{
			Type:        model.SignalUnknownType,
			Severity:    model.SeverityWarning,
			Description: "Tax type not recognized; category rules were skipped",
		})
	}

	total := 100 - warningScore - redFlagScore
	if total < 0 {
		total = 0
	}

	return model.Score{
		Index:      total,
		Confidence: s.determineConfidence(total, in),
		Signals:    signals,
	}
}

// calculateWarnings returns the warning penalty
func (s *Scorer) calculateWarnings(count int) (int, model.Signal) {
	penalty := min(count*warningPenalty, warningPenaltyCap)

	severity := model.SeverityInfo
	if count >= 3 {
		severity = model.SeverityCritical
	} else if count > 0 {
		severity = model.SeverityWarning
	}

	return penalty, model.Signal{
		Type:        model.SignalWarnings,
		Severity:    severity,
		Description: fmt.Sprintf("%d missing or incomplete items", count),
		Data: map[string]interface{}{
			"warnings": count,
			"penalty":  penalty,
			"formula":  fmt.Sprintf("min(warnings * %d, %d)", warningPenalty, warningPenaltyCap),
		},
	}
}

// calculateRedFlags returns the red flag penalty
func (s *Scorer) calculateRedFlags(count int) (int, model.Signal) {
	penalty := min(count*redFlagPenalty, redFlagPenaltyCap)

	severity := model.SeverityInfo
	if count > 0 {
		severity = model.SeverityCritical
	}

	return penalty, model.Signal{
		Type:        model.SignalRedFlags,
		Severity:    severity,
		Description: fmt.Sprintf("%d potential audit triggers", count),
		Data: map[string]interface{}{
			"red_flags": count,
			"penalty":   penalty,
			"formula":   fmt.Sprintf("min(red_flags * %d, %d)", redFlagPenalty, redFlagPenaltyCap),
		},
	}
}

// determineConfidence maps the index to a level. Empty text is always low and
// an unknown tax type is at most medium.
func (s *Scorer) determineConfidence(score int, in Input) string {
	if in.EmptyText {
		return "low"
	}

	level := "low"
	if score >= 80 {
		level = "high"
	} else if score >= 50 {
		level = "medium"
	}

	if level == "high" && in.TaxType == model.TaxTypeUnknown {
		return "medium"
	}
	return level
}
