package service

import (
	"github.com/shopspring/decimal"

	"github.com/MangousteEnFeu/TaxProjectV2/dto"
)

// TaxBracket is a contiguous income range [Lower, Upper) taxed at a marginal
// rate. A nil Upper means the bracket is open-ended.
type TaxBracket struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

// Simplified Vaud progressive scale. Brackets are ascending, gap-free and
// partition [0, ∞).
var incomeBrackets = []TaxBracket{
	{Lower: amount(0), Upper: amountPtr(20000), Rate: rate("0.05")},
	{Lower: amount(20000), Upper: amountPtr(50000), Rate: rate("0.10")},
	{Lower: amount(50000), Upper: nil, Rate: rate("0.15")},
}

var (
	wealthExemption = amount(50000)
	wealthRate      = rate("0.001")
)

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func amountPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func rate(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// TaxCalculator derives taxable income and wealth from a fiscal profile and
// computes the estimated tax. It is stateless and has no failure mode. The
// result is an estimate, not a legally compliant computation.
type TaxCalculator struct{}

func NewTaxCalculator() *TaxCalculator {
	return &TaxCalculator{}
}

func (c *TaxCalculator) ComputeTax(profile dto.FiscalProfile) dto.TaxResult {
	income := profile.Salary.Add(profile.OtherIncome)
	deductions := profile.ProfessionalExpenses.
		Add(profile.InsurancePremiums).
		Add(profile.CharitableDonations)

	taxableIncome := income.Sub(deductions)
	if taxableIncome.IsNegative() {
		taxableIncome = decimal.Zero
	}

	// Marginal accumulation: each bracket taxes only the slice of income
	// falling inside it.
	taxOnIncome := decimal.Zero
	for _, bracket := range incomeBrackets {
		if taxableIncome.LessThanOrEqual(bracket.Lower) {
			break
		}
		upper := taxableIncome
		if bracket.Upper != nil && bracket.Upper.LessThan(taxableIncome) {
			upper = *bracket.Upper
		}
		taxOnIncome = taxOnIncome.Add(upper.Sub(bracket.Lower).Mul(bracket.Rate))
	}

	taxableWealth := profile.SecuritiesValue.Sub(wealthExemption)
	if taxableWealth.IsNegative() {
		taxableWealth = decimal.Zero
	}
	taxOnWealth := taxableWealth.Mul(wealthRate)

	// Fractional cents are discarded, not rounded.
	totalTax := taxOnIncome.Add(taxOnWealth).Floor().IntPart()

	return dto.TaxResult{
		TaxableIncome: taxableIncome,
		TaxOnIncome:   taxOnIncome,
		TaxableWealth: taxableWealth,
		TaxOnWealth:   taxOnWealth,
		TotalTax:      totalTax,
	}
}
