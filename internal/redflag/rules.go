package redflag

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/taxlens/internal/model"
)

var amountPattern = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})+|\d+)(?:\.(\d{2}))?`)

// RuleDetector applies the built-in static red flag rules
type RuleDetector struct {
	cashThreshold   float64
	roundAmountsMin int
}

// NewRuleDetector creates a rule detector. Non-positive settings fall back to
// a $10,000 cash threshold and three round amounts.
func NewRuleDetector(cashThreshold float64, roundAmountsMin int) *RuleDetector {
	if cashThreshold <= 0 {
		cashThreshold = 10000
	}
	if roundAmountsMin <= 0 {
		roundAmountsMin = 3
	}
	return &RuleDetector{
		cashThreshold:   cashThreshold,
		roundAmountsMin: roundAmountsMin,
	}
}

// Detect evaluates every rule against the lowercased text. It never fails.
func (d *RuleDetector) Detect(ctx context.Context, text string, file model.FileMeta, taxType model.TaxType) ([]Flag, error) {
	lower := strings.ToLower(text)
	amounts := parseAmounts(lower)

	var flags []Flag
	add := func(rule, message string) {
		flags = append(flags, Flag{Message: message, Page: 1, Rule: "redflag:" + rule})
	}

	if strings.Contains(lower, "cash") {
		if largest := maxAmount(amounts); largest >= d.cashThreshold {
			add("large-cash", fmt.Sprintf("Cash amount of %s meets the reporting threshold; Form 8300 may be required", formatAmount(largest)))
		}
	}

	if n := countRound(amounts); n >= d.roundAmountsMin {
		add("round-amounts", fmt.Sprintf("%d round-thousand amounts found; figures may be estimates rather than actual records", n))
	}

	if containsAny(lower, "amended", "1040-x", "1040x") {
		add("amended", "Amended return detected; make sure every change is explained and supported")
	}

	if file.Analyzed {
		add("duplicate", "This document was analyzed before; confirm it is not a duplicate submission")
	}

	switch taxType {
	case model.TaxTypeIncome:
		if containsAny(lower, "foreign account", "offshore", "fbar") {
			add("foreign-accounts", "Foreign accounts may require FBAR (FinCEN 114) and Form 8938 reporting")
		}
	case model.TaxTypeBusiness:
		if strings.Contains(lower, "personal") && containsAny(lower, "vehicle", "meal", "travel") {
			add("personal-expenses", "Personal expenses appear alongside business expenses; mixed use must be allocated")
		}
	case model.TaxTypeProperty:
		if strings.Contains(lower, "rental") && !strings.Contains(lower, "depreciation") {
			add("rental-depreciation", "Rental property reported without a depreciation schedule")
		}
	case model.TaxTypeSales:
		if strings.Contains(lower, "exempt") && !strings.Contains(lower, "certificate") {
			add("exempt-certificates", "Exempt sales claimed without exemption certificates on file")
		}
	case model.TaxTypeEstate:
		if strings.Contains(lower, "gift") && !strings.Contains(lower, "709") {
			add("gift-return", "Gifts mentioned without a Form 709 gift tax return")
		}
	}

	return flags, nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// parseAmounts extracts every dollar amount in the text
func parseAmounts(text string) []float64 {
	var amounts []float64
	for _, m := range amountPattern.FindAllStringSubmatch(text, -1) {
		whole := strings.ReplaceAll(m[1], ",", "")
		if m[2] != "" {
			whole += "." + m[2]
		}
		v, err := strconv.ParseFloat(whole, 64)
		if err != nil {
			continue
		}
		amounts = append(amounts, v)
	}
	return amounts
}

func maxAmount(amounts []float64) float64 {
	largest := 0.0
	for _, a := range amounts {
		largest = math.Max(largest, a)
	}
	return largest
}

// countRound counts amounts of at least 1,000 that are exact multiples of 1,000
func countRound(amounts []float64) int {
	n := 0
	for _, a := range amounts {
		if a >= 1000 && math.Mod(a, 1000) == 0 {
			n++
		}
	}
	return n
}

// formatAmount renders whole dollars with thousands separators at any magnitude
func formatAmount(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	s := strconv.FormatFloat(math.Trunc(v), 'f', 0, 64)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String()
}
