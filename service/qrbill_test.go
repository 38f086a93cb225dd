package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const qrBillPayload = `SPC
0200
1
CH4431999123000889012
S
Helsana Assurances SA
Avenue de Provence
15
1007
Lausanne
CH







4800.00
CHF
S
Jean Dupont
Chemin des Vignes
12
1000
Lausanne
CH
QRR
210000000003139471430009017
Prime 2024
EPD`

func TestParseQRBillAmount(t *testing.T) {
	amount, ok := ParseQRBillAmount(qrBillPayload)

	assert.True(t, ok)
	assert.True(t, amount.Equal(decimal.RequireFromString("4800.00")), "got %s", amount)
}

func TestParseQRBillAmountRejectsNonSPCPayload(t *testing.T) {
	_, ok := ParseQRBillAmount("https://example.com/not-a-bill")

	assert.False(t, ok)
}

func TestParseQRBillAmountMissingAmount(t *testing.T) {
	// QR-bills may omit the amount (open invoices); no fallback value then.
	payload := "SPC\n0200\n1\nCH4431999123000889012\n\nCHF\n"

	amount, ok := ParseQRBillAmount(payload)

	assert.False(t, ok)
	assert.True(t, amount.IsZero())
}
