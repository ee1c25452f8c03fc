package score

import (
	"testing"

	"github.com/ppiankov/taxlens/internal/model"
)

func annotations(suggestions, warnings, redFlags int) []model.Annotation {
	var out []model.Annotation
	for i := 0; i < suggestions; i++ {
		out = append(out, model.Annotation{Kind: model.KindSuggestion})
	}
	for i := 0; i < warnings; i++ {
		out = append(out, model.Annotation{Kind: model.KindWarning})
	}
	for i := 0; i < redFlags; i++ {
		out = append(out, model.Annotation{Kind: model.KindRedFlag})
	}
	return out
}

func TestScorer_Calculate(t *testing.T) {
	scorer := NewScorer()

	tests := []struct {
		name        string
		suggestions int
		warnings    int
		redFlags    int
		wantIndex   int
		wantConf    string
	}{
		{"clean", 0, 0, 0, 100, "high"},
		{"suggestions never penalize", 5, 0, 0, 100, "high"},
		{"one warning", 0, 1, 0, 90, "high"},
		{"two warnings", 0, 2, 0, 80, "high"},
		{"three warnings", 0, 3, 0, 70, "medium"},
		{"warning cap", 0, 9, 0, 50, "medium"},
		{"one red flag", 0, 0, 1, 85, "high"},
		{"red flag cap", 0, 0, 6, 40, "low"},
		{"both capped", 0, 10, 10, 0, "low"},
		{"mixed", 2, 2, 2, 50, "medium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Calculate(Input{
				Annotations: annotations(tt.suggestions, tt.warnings, tt.redFlags),
				TaxType:     model.TaxTypeIncome,
			})
			if result.Index != tt.wantIndex {
				t.Errorf("expected index %d, got %d", tt.wantIndex, result.Index)
			}
			if result.Confidence != tt.wantConf {
				t.Errorf("expected confidence %s, got %s", tt.wantConf, result.Confidence)
			}
		})
	}
}

func TestScorer_Signals(t *testing.T) {
	result := NewScorer().Calculate(Input{
		Annotations: annotations(1, 2, 1),
		TaxType:     model.TaxTypeBusiness,
	})

	byType := make(map[model.SignalType]model.Signal)
	for _, s := range result.Signals {
		byType[s.Type] = s
	}

	warnings, ok := byType[model.SignalWarnings]
	if !ok {
		t.Fatal("expected warnings signal")
	}
	if warnings.Data["penalty"] != 20 || warnings.Data["formula"] != "min(warnings * 10, 50)" {
		t.Errorf("unexpected warnings data: %v", warnings.Data)
	}
	if warnings.Severity != model.SeverityWarning {
		t.Errorf("expected warning severity, got %s", warnings.Severity)
	}

	redFlags := byType[model.SignalRedFlags]
	if redFlags.Data["penalty"] != 15 || redFlags.Severity != model.SeverityCritical {
		t.Errorf("unexpected red flag signal: %+v", redFlags)
	}

	if _, ok := byType[model.SignalOpportunities]; !ok {
		t.Error("expected opportunities signal")
	}
	if _, ok := byType[model.SignalEmptyText]; ok {
		t.Error("unexpected empty text signal")
	}
	if _, ok := byType[model.SignalUnknownType]; ok {
		t.Error("unexpected unknown type signal")
	}
}

func TestScorer_EmptyText(t *testing.T) {
	result := NewScorer().Calculate(Input{EmptyText: true, TaxType: model.TaxTypeSales})

	if result.Index != 100 {
		t.Errorf("expected index 100 without annotations, got %d", result.Index)
	}
	if result.Confidence != "low" {
		t.Errorf("expected low confidence for empty text, got %s", result.Confidence)
	}

	found := false
	for _, s := range result.Signals {
		if s.Type == model.SignalEmptyText && s.Severity == model.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("expected critical empty text signal")
	}
}

func TestScorer_UnknownTypeCapsConfidence(t *testing.T) {
	result := NewScorer().Calculate(Input{TaxType: model.TaxTypeUnknown})

	if result.Confidence != "medium" {
		t.Errorf("expected medium confidence for unknown type, got %s", result.Confidence)
	}

	low := NewScorer().Calculate(Input{Annotations: annotations(0, 0, 4), TaxType: model.TaxTypeUnknown})
	if low.Confidence != "low" {
		t.Errorf("expected low confidence to stay low, got %s", low.Confidence)
	}
}

func TestScorer_DoesNotModifyAnnotations(t *testing.T) {
	in := []model.Annotation{{ID: "a", Kind: model.KindWarning, Message: "m", Page: 1}}
	NewScorer().Calculate(Input{Annotations: in, TaxType: model.TaxTypeIncome})

	if in[0].ID != "a" || in[0].Kind != model.KindWarning || in[0].Message != "m" {
		t.Errorf("annotations were modified: %+v", in[0])
	}
}
