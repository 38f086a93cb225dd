package dto

import "errors"

// Custom errors
var (
	ErrNoDocuments = errors.New("at least one document is required")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ExtractionResponse is the final response structure
type ExtractionResponse struct {
	Profile     FiscalProfile `json:"profile"`
	Tax         TaxResult     `json:"tax"`
	Partial     bool          `json:"partial"`
	ProcessedAt string        `json:"processed_at"`
}
