package highlight

import (
	"regexp"
	"strings"

	"github.com/ppiankov/taxlens/internal/model"
)

var (
	ssnPattern      = regexp.MustCompile(`\d{3}-\d{2}-\d{4}`)
	dollarPattern   = regexp.MustCompile(`\$[\d,]+(\.\d{2})?`)
	currencyPattern = regexp.MustCompile(`\d+\.\d{2}`)
	datePattern     = regexp.MustCompile(`\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2}`)
)

// scope is the parsed context a rule is evaluated in
type scope struct {
	taxType     model.TaxType
	accountType model.AccountType
	text        string // lowercased
}

func (s scope) individualIncome() bool {
	return s.taxType == model.TaxTypeIncome && s.accountType == model.AccountTypeIndividual
}

func (s scope) business() bool {
	return s.taxType == model.TaxTypeBusiness || s.accountType == model.AccountTypeBusiness
}

func (s scope) has(subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s.text, sub) {
			return true
		}
	}
	return false
}

// rule is one independent check; every matching rule fires
type rule struct {
	key     string
	message string
	applies func(s scope) bool
}

var suggestionRules = []rule{
	{
		key:     "itemize",
		message: "Consider itemizing deductions. Mortgage interest and charitable contributions may exceed the standard deduction.",
		applies: func(s scope) bool {
			return s.individualIncome() && s.has("mortgage interest", "charitable")
		},
	},
	{
		key:     "child-credit",
		message: "Check eligibility for the Child Tax Credit and the Earned Income Tax Credit (EITC).",
		applies: func(s scope) bool {
			return s.individualIncome() && s.has("child", "dependent")
		},
	},
	{
		key:     "retirement",
		message: "Contributions to an IRA or 401k could reduce taxable income.",
		applies: func(s scope) bool {
			return s.individualIncome() && !s.has("ira", "401k")
		},
	},
	{
		key:     "business-deductions",
		message: "Claim standard business deductions: home office, vehicle, equipment and supplies.",
		applies: func(s scope) bool {
			return s.business() && s.has("schedule c", "business")
		},
	},
	{
		key:     "qbi",
		message: "You may qualify for the Qualified Business Income (QBI) deduction of up to 20%.",
		applies: func(s scope) bool {
			return s.business() && s.has("qualified business income", "qbi")
		},
	},
	{
		key:     "salt",
		message: "Property taxes are deductible under the state and local tax (SALT) deduction, capped at $10,000.",
		applies: func(s scope) bool {
			return s.taxType == model.TaxTypeProperty
		},
	},
}

var warningRules = []rule{
	{
		key:     "missing-ssn",
		message: "Social Security Number not found. Verify the SSN is present and readable.",
		applies: func(s scope) bool {
			return s.taxType == model.TaxTypeIncome && !ssnPattern.MatchString(s.text)
		},
	},
	{
		key:     "missing-income-amount",
		message: "Wage income is mentioned but no income amount is visible.",
		applies: func(s scope) bool {
			return s.taxType == model.TaxTypeIncome &&
				s.has("w-2", "wage") &&
				!dollarPattern.MatchString(s.text) &&
				!currencyPattern.MatchString(s.text)
		},
	},
	{
		key:     "missing-ein",
		message: "Employer Identification Number (EIN) not found. Business filings require an EIN.",
		applies: func(s scope) bool {
			return s.business() && !s.has("ein", "employer identification")
		},
	},
	{
		// Fires on presence of the keywords: an advisory, not an absence check
		key:     "documentation",
		message: "Keep receipts and documentation for all claimed deductions and expenses.",
		applies: func(s scope) bool {
			return s.business() && s.has("deduction", "expense")
		},
	},
	{
		key:     "missing-signature",
		message: "No signature found. The document may need to be signed.",
		applies: func(s scope) bool {
			return !s.has("signature", "signed")
		},
	},
	{
		key:     "missing-date",
		message: "No date found. Verify the document is dated.",
		applies: func(s scope) bool {
			return !datePattern.MatchString(s.text)
		},
	},
}
