package dto

import (
	"errors"
	"mime/multipart"
)

// ExtractionRequest carries the uploaded documents plus the JSON metadata
// mapping each filename to its declared kind.
type ExtractionRequest struct {
	Files    []*multipart.FileHeader `form:"files[]" binding:"required"`
	Metadata string                  `form:"metadata" binding:"required"`
}

// Validate performs basic validation on the request
func (r *ExtractionRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoDocuments
	}
	if r.Metadata == "" {
		return errors.New("metadata is required")
	}
	return nil
}
