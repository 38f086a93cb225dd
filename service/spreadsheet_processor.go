package service

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"
)

type SpreadsheetProcessor interface {
	ExtractRows(data []byte) ([][]any, error)
}

type spreadsheetProcessor struct{}

func NewSpreadsheetProcessor() SpreadsheetProcessor {
	return &spreadsheetProcessor{}
}

// ExtractRows reads the first worksheet of an xlsx workbook into rows of
// cells. Cells come back as strings; numeric detection happens later in the
// table locator.
func (p *spreadsheetProcessor) ExtractRows(data []byte) ([][]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close workbook: %v", err)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	rows := make([][]any, len(raw))
	for i, r := range raw {
		cells := make([]any, len(r))
		for j, c := range r {
			cells[j] = c
		}
		rows[i] = cells
	}
	return rows, nil
}
