package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// amountTokenRe matches monetary-shaped tokens like "5'432.10", "10 000,50"
// or "6000.00" inside a line.
var amountTokenRe = regexp.MustCompile(`[0-9]['’\s0-9]*[.,]?[0-9]{2}`)

// ParseSwissAmount parses a Swiss-locale amount string ("10'000.50",
// "10 000,50") into a decimal. Apostrophes, right single quotes and
// whitespace are treated as thousands separators, a comma as the decimal
// separator. Malformed input yields zero, never an error.
func ParseSwissAmount(raw string) decimal.Decimal {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\'' || r == '’' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// FindAmountInText locates the amount associated with the first matching
// keyword in unstructured text. Keywords are tried in order of preference.
// For each keyword the whole text is searched first for the keyword followed
// by a monetary figure at the end of a line; failing that, every line
// containing the keyword is scanned and the last monetary token on the line
// wins (labels usually precede a trailing running-total figure). No match
// over the whole set yields zero.
func FindAmountInText(text string, keywords []string) decimal.Decimal {
	lines := strings.Split(text, "\n")

	for _, keyword := range keywords {
		pattern := `(?ims)` + regexp.QuoteMeta(keyword) + `.*?([0-9]['’\s0-9]*[.,]?[0-9]{2})[ \t]*\r?$`
		re, err := regexp.Compile(pattern)
		if err == nil {
			if m := re.FindStringSubmatch(text); len(m) > 1 {
				return ParseSwissAmount(m[1])
			}
		}

		// Fallback: check line by line for safer context
		for _, line := range lines {
			if !strings.Contains(strings.ToLower(line), strings.ToLower(keyword)) {
				continue
			}
			tokens := amountTokenRe.FindAllString(line, -1)
			if len(tokens) > 0 {
				return ParseSwissAmount(tokens[len(tokens)-1])
			}
		}
	}

	return decimal.Zero
}

// FindAmountInTable locates the amount associated with any of the keywords
// in row/column data. Within each row the first cell containing a keyword is
// the anchor; the three cells to its right are inspected in order and the
// first numeric cell, or the first string cell normalizing to a positive
// amount, wins. Rows keep being scanned until a positive amount turns up or
// the table is exhausted.
func FindAmountInTable(rows [][]any, keywords []string) decimal.Decimal {
	for _, row := range rows {
		idx := keywordCellIndex(row, keywords)
		if idx < 0 {
			continue
		}

		for offset := 1; offset <= 3; offset++ {
			if idx+offset >= len(row) {
				break
			}
			switch v := row[idx+offset].(type) {
			case float64:
				if v != 0 {
					return decimal.NewFromFloat(v)
				}
			case int:
				if v != 0 {
					return decimal.NewFromInt(int64(v))
				}
			case decimal.Decimal:
				if !v.IsZero() {
					return v
				}
			case string:
				if v == "" {
					continue
				}
				if parsed := ParseSwissAmount(v); parsed.IsPositive() {
					return parsed
				}
			}
		}
	}

	return decimal.Zero
}

// keywordCellIndex returns the index of the first cell in the row whose
// stringified, lower-cased value contains any keyword, or -1.
func keywordCellIndex(row []any, keywords []string) int {
	for i, cell := range row {
		cellStr := strings.ToLower(fmt.Sprint(cell))
		for _, keyword := range keywords {
			if strings.Contains(cellStr, strings.ToLower(keyword)) {
				return i
			}
		}
	}
	return -1
}
