package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseSwissAmount(t *testing.T) {
	cases := map[string]string{
		"10'000.50": "10000.50",
		"10 000,50": "10000.50",
		"1’250.00":  "1250.00",
		"5432.10":   "5432.10",
		"":          "0",
		"abc":       "0",
		"12,34,56":  "0",
	}

	for input, expected := range cases {
		got := ParseSwissAmount(input)
		assert.True(t, got.Equal(decimal.RequireFromString(expected)),
			"ParseSwissAmount(%q) = %s, want %s", input, got, expected)
	}
}

func TestFindAmountInText(t *testing.T) {
	text := `Certificat de salaire 2024
Employeur: ACME SA
Salaire net: 5'432.10
Retenues AVS: 320.00`

	got := FindAmountInText(text, []string{"salaire net"})
	assert.True(t, got.Equal(decimal.RequireFromString("5432.10")), "got %s", got)
}

func TestFindAmountInTextNoKeywordMatch(t *testing.T) {
	text := "Salaire net: 5'432.10"

	got := FindAmountInText(text, []string{"inexistant"})
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestFindAmountInTextLastNumberOnLineWins(t *testing.T) {
	text := "Salaire brut 6000.00 Salaire net 5000.00"

	got := FindAmountInText(text, []string{"salaire"})
	assert.True(t, got.Equal(decimal.RequireFromString("5000.00")), "got %s", got)
}

func TestFindAmountInTextKeywordOrderIsPreference(t *testing.T) {
	text := `Revenu net 4500.00
Salaire net 5000.00`

	got := FindAmountInText(text, []string{"salaire net", "revenu net"})
	assert.True(t, got.Equal(decimal.RequireFromString("5000.00")), "got %s", got)
}

func TestFindAmountInTable(t *testing.T) {
	rows := [][]any{
		{"Libellé", "Montant"},
		{"Dividende", "", "1200.00"},
	}

	got := FindAmountInTable(rows, []string{"dividende"})
	assert.True(t, got.Equal(decimal.RequireFromString("1200.00")), "got %s", got)
}

func TestFindAmountInTableNumericCell(t *testing.T) {
	rows := [][]any{
		{"Solde du compte", 15000.50},
	}

	got := FindAmountInTable(rows, []string{"solde"})
	assert.True(t, got.Equal(decimal.RequireFromString("15000.5")), "got %s", got)
}

func TestFindAmountInTableKeepsScanningPastEmptyMatch(t *testing.T) {
	// First keyword row has no usable amount in the next three cells; the
	// search must continue to later rows instead of giving up.
	rows := [][]any{
		{"Bonus", "", "", ""},
		{"Bonus exceptionnel", "2'500.00"},
	}

	got := FindAmountInTable(rows, []string{"bonus"})
	assert.True(t, got.Equal(decimal.RequireFromString("2500.00")), "got %s", got)
}

func TestFindAmountInTableExhausted(t *testing.T) {
	rows := [][]any{
		{"Libellé", "Montant"},
		{"Loyer", "n/a"},
	}

	got := FindAmountInTable(rows, []string{"dividende"})
	assert.True(t, got.IsZero(), "got %s", got)
}
