package catalogue

import "github.com/ppiankov/taxlens/internal/model"

// defaultGuidelines is the built-in review guide per tax category
func defaultGuidelines() map[model.TaxType]model.TaxTypeGuideline {
	return map[model.TaxType]model.TaxTypeGuideline{
		model.TaxTypeIncome: {
			WhatToLookFor: []string{
				"W-2 wage statements and 1099 income forms",
				"Filing status and dependents claimed",
				"Itemized deductions (mortgage interest, charitable gifts, medical)",
				"Retirement contributions (IRA, 401k)",
				"Federal and state withholding amounts",
			},
			KeyFields: []string{
				"Social Security Number",
				"Filing Status",
				"Total Income",
				"Adjusted Gross Income",
				"Taxable Income",
				"Total Tax",
				"Federal Tax Withheld",
			},
			AnalysisFocus: []string{
				"Verify all income sources are reported",
				"Compare itemized and standard deduction",
				"Check credit eligibility (Child Tax Credit, EITC)",
				"Confirm withholding matches W-2 totals",
			},
		},
		model.TaxTypeProperty: {
			WhatToLookFor: []string{
				"Assessed property value and assessment date",
				"Property tax bills and payment receipts",
				"Exemptions (homestead, senior, veteran)",
				"Rental income and expenses for investment property",
			},
			KeyFields: []string{
				"Parcel Number",
				"Property Address",
				"Assessed Value",
				"Tax Amount",
				"Payment Date",
			},
			AnalysisFocus: []string{
				"Check the SALT deduction cap",
				"Verify exemptions are applied",
				"Review assessment for appeal opportunities",
				"Track depreciation on rental property",
			},
		},
		model.TaxTypeBusiness: {
			WhatToLookFor: []string{
				"Schedule C or business income statements",
				"Business expenses with supporting receipts",
				"Employer Identification Number",
				"Payroll and contractor payments (W-2, 1099-NEC)",
				"Asset purchases and depreciation schedules",
			},
			KeyFields: []string{
				"Employer Identification Number",
				"Gross Receipts",
				"Cost of Goods Sold",
				"Total Expenses",
				"Net Profit",
			},
			AnalysisFocus: []string{
				"Separate business and personal expenses",
				"Check Qualified Business Income deduction",
				"Verify estimated tax payments",
				"Review home office and vehicle deductions",
			},
		},
		model.TaxTypeSales: {
			WhatToLookFor: []string{
				"Gross and taxable sales per period",
				"Exempt sales with exemption certificates",
				"Sales tax collected by jurisdiction",
				"Use tax on untaxed purchases",
			},
			KeyFields: []string{
				"Sales Tax Permit Number",
				"Reporting Period",
				"Gross Sales",
				"Taxable Sales",
				"Tax Collected",
			},
			AnalysisFocus: []string{
				"Reconcile collected tax with reported sales",
				"Confirm exemption certificates are on file",
				"Check nexus in each jurisdiction",
				"Verify filing deadlines per period",
			},
		},
		model.TaxTypeEstate: {
			WhatToLookFor: []string{
				"Inventory of estate assets and valuations",
				"Lifetime gifts and gift tax returns (Form 709)",
				"Debts and administrative expenses of the estate",
				"Beneficiary designations and distributions",
			},
			KeyFields: []string{
				"Decedent Name",
				"Date of Death",
				"Gross Estate Value",
				"Deductions",
				"Taxable Estate",
			},
			AnalysisFocus: []string{
				"Check the exemption amount against the gross estate",
				"Verify valuation dates and appraisals",
				"Confirm prior gift tax filings",
				"Review portability election for a surviving spouse",
			},
		},
	}
}
