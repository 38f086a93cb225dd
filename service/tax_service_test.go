package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MangousteEnFeu/TaxProjectV2/dto"
)

func TestComputeTaxBracketBoundaries(t *testing.T) {
	calc := NewTaxCalculator()

	// Exactly at the first bracket boundary: the whole amount is taxed at 5%.
	result := calc.ComputeTax(dto.FiscalProfile{Salary: decimal.NewFromInt(20000)})
	assert.True(t, result.TaxableIncome.Equal(decimal.NewFromInt(20000)))
	assert.True(t, result.TaxOnIncome.Equal(decimal.NewFromInt(1000)), "got %s", result.TaxOnIncome)

	// Exactly at the second boundary: 1000 + 30000 * 0.10.
	result = calc.ComputeTax(dto.FiscalProfile{Salary: decimal.NewFromInt(50000)})
	assert.True(t, result.TaxOnIncome.Equal(decimal.NewFromInt(4000)), "got %s", result.TaxOnIncome)
}

func TestComputeTaxWealthExemptionBoundary(t *testing.T) {
	calc := NewTaxCalculator()

	result := calc.ComputeTax(dto.FiscalProfile{SecuritiesValue: decimal.NewFromInt(50000)})

	assert.True(t, result.TaxableWealth.IsZero())
	assert.True(t, result.TaxOnWealth.IsZero())
}

func TestComputeTaxDeductionsClampToZero(t *testing.T) {
	calc := NewTaxCalculator()

	result := calc.ComputeTax(dto.FiscalProfile{
		Salary:               decimal.NewFromInt(1000),
		ProfessionalExpenses: decimal.NewFromInt(5000),
	})

	assert.True(t, result.TaxableIncome.IsZero())
	assert.True(t, result.TaxOnIncome.IsZero())
	assert.Equal(t, int64(0), result.TotalTax)
}

func TestComputeTaxEndToEnd(t *testing.T) {
	calc := NewTaxCalculator()

	profile := dto.FiscalProfile{
		Salary:               decimal.NewFromInt(80000),
		OtherIncome:          decimal.NewFromInt(5000),
		ProfessionalExpenses: decimal.NewFromInt(3000),
		InsurancePremiums:    decimal.NewFromInt(4000),
		CharitableDonations:  decimal.NewFromInt(1000),
		SecuritiesValue:      decimal.NewFromInt(120000),
	}

	result := calc.ComputeTax(profile)

	assert.True(t, result.TaxableIncome.Equal(decimal.NewFromInt(77000)))
	assert.True(t, result.TaxOnIncome.Equal(decimal.NewFromInt(8050)), "got %s", result.TaxOnIncome)
	assert.True(t, result.TaxableWealth.Equal(decimal.NewFromInt(70000)))
	assert.True(t, result.TaxOnWealth.Equal(decimal.NewFromInt(70)), "got %s", result.TaxOnWealth)
	assert.Equal(t, int64(8120), result.TotalTax)
}

func TestComputeTaxFlooredNotRounded(t *testing.T) {
	calc := NewTaxCalculator()

	// 19.99 * 0.05 = 0.9995: fractional cents are discarded, never rounded up.
	result := calc.ComputeTax(dto.FiscalProfile{Salary: decimal.RequireFromString("19.99")})

	assert.Equal(t, int64(0), result.TotalTax)
}
