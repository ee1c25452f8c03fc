package model

// TaxTypeGuideline is the display-only review guide for one tax category
type TaxTypeGuideline struct {
	WhatToLookFor []string `json:"what_to_look_for" yaml:"what_to_look_for"` // Fields and concepts to find
	KeyFields     []string `json:"key_fields" yaml:"key_fields"`             // Required field names
	AnalysisFocus []string `json:"analysis_focus" yaml:"analysis_focus"`     // Review directives
}

// Clone returns a deep copy so callers cannot mutate catalogue data
func (g TaxTypeGuideline) Clone() TaxTypeGuideline {
	return TaxTypeGuideline{
		WhatToLookFor: append([]string(nil), g.WhatToLookFor...),
		KeyFields:     append([]string(nil), g.KeyFields...),
		AnalysisFocus: append([]string(nil), g.AnalysisFocus...),
	}
}

// IsEmpty reports whether the guideline carries no content
func (g TaxTypeGuideline) IsEmpty() bool {
	return len(g.WhatToLookFor) == 0 && len(g.KeyFields) == 0 && len(g.AnalysisFocus) == 0
}
