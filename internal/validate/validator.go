// Package validate checks analysis requests and suggests corrections.
//
// Problems are reported, never enforced: the engine accepts any input and
// simply skips scoped rules for unknown categories.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/ppiankov/taxlens/internal/model"
)

// maxHintDistance is the largest edit distance still offered as a suggestion
const maxHintDistance = 3

// Issue is one problem found in a request
type Issue struct {
	Field      string // tax_type, account_type, file_id, text
	Value      string
	Message    string
	Suggestion string // Closest valid value, if any
}

// String renders the issue as a one-line hint
func (i Issue) String() string {
	if i.Suggestion != "" {
		return fmt.Sprintf("%s (did you mean %q?)", i.Message, i.Suggestion)
	}
	return i.Message
}

// Request is the subset of an analysis request that can be checked up front
type Request struct {
	FileID      string
	TaxType     string
	AccountType string
	Text        string
}

// Validator checks requests against the known categories
type Validator struct {
	taxTypes     []string
	accountTypes []string
}

// NewValidator creates a validator for the built-in tax and account types
func NewValidator() *Validator {
	v := &Validator{}
	for _, t := range model.TaxTypes {
		v.taxTypes = append(v.taxTypes, t.String())
	}
	for _, a := range model.AccountTypes {
		v.accountTypes = append(v.accountTypes, a.String())
	}
	return v
}

// Validate returns every issue found, in field order
func (v *Validator) Validate(req Request) []Issue {
	var issues []Issue

	if strings.TrimSpace(req.FileID) == "" {
		issues = append(issues, Issue{
			Field:   "file_id",
			Message: "file id is empty; the document will not be found in the registry",
		})
	}

	if req.TaxType == "" {
		issues = append(issues, Issue{
			Field:   "tax_type",
			Message: "tax type is empty; only general checks will run",
		})
	} else if model.ParseTaxType(req.TaxType) == model.TaxTypeUnknown {
		issues = append(issues, Issue{
			Field:      "tax_type",
			Value:      req.TaxType,
			Message:    fmt.Sprintf("unknown tax type %q; category rules will be skipped", req.TaxType),
			Suggestion: Closest(req.TaxType, v.taxTypes),
		})
	}

	if req.AccountType != "" && model.ParseAccountType(req.AccountType) == model.AccountTypeUnknown {
		issues = append(issues, Issue{
			Field:      "account_type",
			Value:      req.AccountType,
			Message:    fmt.Sprintf("unknown account type %q", req.AccountType),
			Suggestion: Closest(req.AccountType, v.accountTypes),
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		issues = append(issues, Issue{
			Field:   "text",
			Message: "document text is empty; expect missing signature and date warnings",
		})
	}

	return issues
}

// Hints renders issues as strings for the report
func Hints(issues []Issue) []string {
	if len(issues) == 0 {
		return nil
	}
	hints := make([]string, len(issues))
	for i, issue := range issues {
		hints[i] = issue.String()
	}
	return hints
}

// Closest returns the candidate nearest to value by edit distance, or "" when
// none is within maxHintDistance. Ties go to the earlier candidate.
func Closest(value string, candidates []string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}

	type scored struct {
		name     string
		distance int
		order    int
	}
	var matches []scored
	for i, c := range candidates {
		d := levenshtein.Distance(value, c)
		// Prefixes such as "biz" or "prop" count as close
		if strings.HasPrefix(c, value) && len(value) >= 3 {
			d = 1
		}
		if d <= maxHintDistance && d < len(c) {
			matches = append(matches, scored{name: c, distance: d, order: i})
		}
	}
	if len(matches) == 0 {
		return ""
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].order < matches[j].order
	})
	return matches[0].name
}
