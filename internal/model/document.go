package model

import "strings"

// TaxType is the tax category a document belongs to
type TaxType int

const (
	TaxTypeUnknown  TaxType = iota // Unrecognized; category-scoped rules never fire
	TaxTypeIncome                  // Individual or corporate income tax
	TaxTypeProperty                // Real estate and personal property tax
	TaxTypeBusiness                // Business and self-employment tax
	TaxTypeSales                   // Sales and use tax
	TaxTypeEstate                  // Estate and gift tax
)

// TaxTypes lists the known categories in declaration order
var TaxTypes = []TaxType{
	TaxTypeIncome,
	TaxTypeProperty,
	TaxTypeBusiness,
	TaxTypeSales,
	TaxTypeEstate,
}

func (t TaxType) String() string {
	switch t {
	case TaxTypeIncome:
		return "income"
	case TaxTypeProperty:
		return "property"
	case TaxTypeBusiness:
		return "business"
	case TaxTypeSales:
		return "sales"
	case TaxTypeEstate:
		return "estate"
	default:
		return "unknown"
	}
}

// MarshalText encodes the category by name
func (t TaxType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a category name; unrecognized names become TaxTypeUnknown
func (t *TaxType) UnmarshalText(text []byte) error {
	*t = ParseTaxType(string(text))
	return nil
}

// ParseTaxType parses a free-form category name (case-insensitive)
func ParseTaxType(s string) TaxType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TaxTypeIncome
	case "property":
		return TaxTypeProperty
	case "business":
		return TaxTypeBusiness
	case "sales":
		return TaxTypeSales
	case "estate":
		return TaxTypeEstate
	default:
		return TaxTypeUnknown
	}
}

// AccountType is the kind of filer
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeIndividual
	AccountTypeBusiness
)

// AccountTypes lists the known account types
var AccountTypes = []AccountType{AccountTypeIndividual, AccountTypeBusiness}

func (a AccountType) String() string {
	switch a {
	case AccountTypeIndividual:
		return "individual"
	case AccountTypeBusiness:
		return "business"
	default:
		return "unknown"
	}
}

// MarshalText encodes the account type by name
func (a AccountType) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an account type name; unrecognized names become AccountTypeUnknown
func (a *AccountType) UnmarshalText(text []byte) error {
	*a = ParseAccountType(string(text))
	return nil
}

// ParseAccountType parses a free-form account type (case-insensitive)
func ParseAccountType(s string) AccountType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual":
		return AccountTypeIndividual
	case "business":
		return AccountTypeBusiness
	default:
		return AccountTypeUnknown
	}
}

// FileMeta describes an uploaded document
type FileMeta struct {
	Name     string `json:"name" yaml:"name"`
	Size     int64  `json:"size" yaml:"size"`
	Analyzed bool   `json:"analyzed" yaml:"analyzed"` // Whether the file went through analysis before
}

// DocumentInput is everything the highlight engine needs for one document
type DocumentInput struct {
	FileID      string   `json:"file_id"`
	Text        string   `json:"text"`         // Extracted text; empty when extraction failed
	TaxType     string   `json:"tax_type"`     // Free-form, parsed by the engine
	AccountType string   `json:"account_type"` // Free-form, parsed by the engine
	File        FileMeta `json:"file"`
}
