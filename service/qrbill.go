package service

import (
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/shopspring/decimal"
)

// DecodeQRBillAmount looks for a Swiss QR-bill payment code in the image and
// returns its amount. Scanned insurance invoices usually carry one, and the
// amount encoded there is more reliable than whatever OCR reads off the
// label next to it.
func DecodeQRBillAmount(img image.Image) (decimal.Decimal, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return decimal.Zero, false
	}

	qrReader := qrcode.NewQRCodeReader()
	result, err := qrReader.Decode(bmp, nil)
	if err != nil {
		return decimal.Zero, false
	}

	return ParseQRBillAmount(result.GetText())
}

// ParseQRBillAmount extracts the payment amount from an SPC (Swiss Payments
// Code) payload. The amount line directly precedes the currency line, so we
// scan for a positive decimal followed by CHF or EUR rather than trusting a
// fixed line offset across payload versions.
func ParseQRBillAmount(payload string) (decimal.Decimal, bool) {
	payload = strings.ReplaceAll(payload, "\r\n", "\n")
	lines := strings.Split(payload, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "SPC" {
		return decimal.Zero, false
	}

	for i := 0; i+1 < len(lines); i++ {
		currency := strings.TrimSpace(lines[i+1])
		if currency != "CHF" && currency != "EUR" {
			continue
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(lines[i]))
		if err != nil || !amount.IsPositive() {
			continue
		}
		return amount, true
	}

	return decimal.Zero, false
}
