package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"

	_ "image/jpeg"

	"github.com/MangousteEnFeu/TaxProjectV2/client"
	"github.com/MangousteEnFeu/TaxProjectV2/dto"
)

// DocumentDecoder turns raw uploaded bytes into the decoded content the
// extraction strategies consume. It is injected into the batch pipeline per
// run; no decoder state is shared across runs.
type DocumentDecoder interface {
	Decode(ctx context.Context, doc dto.RawDocument) (dto.DocumentContent, error)
}

type documentDecoder struct {
	pdf    PDFProcessor
	sheets SpreadsheetProcessor
	ocr    *client.TesseractClient
}

func NewDocumentDecoder(pdf PDFProcessor, sheets SpreadsheetProcessor, ocr *client.TesseractClient) DocumentDecoder {
	return &documentDecoder{
		pdf:    pdf,
		sheets: sheets,
		ocr:    ocr,
	}
}

func (d *documentDecoder) Decode(ctx context.Context, doc dto.RawDocument) (dto.DocumentContent, error) {
	switch doc.Kind {
	case dto.KindText:
		return d.decodePDF(doc)
	case dto.KindTabular:
		rows, err := d.sheets.ExtractRows(doc.Data)
		if err != nil {
			return dto.DocumentContent{}, fmt.Errorf("spreadsheet decoding failed: %w", err)
		}
		return dto.DocumentContent{Rows: rows}, nil
	case dto.KindScanned:
		return d.decodeImage(doc)
	default:
		// Unrecognized kinds decode to empty content; the dispatcher then
		// yields a success with no fields rather than a failure.
		return dto.DocumentContent{}, nil
	}
}

func (d *documentDecoder) decodePDF(doc dto.RawDocument) (dto.DocumentContent, error) {
	text, err := d.pdf.ExtractText(doc.Data)
	if err != nil {
		return dto.DocumentContent{}, fmt.Errorf("pdf text extraction failed: %w", err)
	}

	// A near-empty text layer means the PDF is a scan; OCR its page images.
	if len(strings.TrimSpace(text)) < 20 {
		log.Printf("PDF %s has minimal text, attempting image-based OCR", doc.Name)

		images, imgErr := d.pdf.ExtractImages(doc.Data)
		if imgErr != nil {
			return dto.DocumentContent{}, fmt.Errorf("scanned pdf image extraction failed: %w", imgErr)
		}

		var combined strings.Builder
		for _, img := range images {
			pageText, ocrErr := d.ocrImage(img)
			if ocrErr != nil {
				log.Printf("OCR failed for a page in %s: %v", doc.Name, ocrErr)
				continue
			}
			combined.WriteString(pageText)
			combined.WriteString("\n")
		}
		text = combined.String()
	}

	return dto.DocumentContent{Text: text}, nil
}

func (d *documentDecoder) decodeImage(doc dto.RawDocument) (dto.DocumentContent, error) {
	text, err := d.ocr.ExtractTextFromBytes(doc.Data, doc.Name)
	if err != nil {
		return dto.DocumentContent{}, fmt.Errorf("image OCR failed: %w", err)
	}

	content := dto.DocumentContent{Text: text}

	// A decodable payment QR on the scan carries an authoritative amount.
	if img, _, imgErr := image.Decode(bytes.NewReader(doc.Data)); imgErr == nil {
		if amount, ok := DecodeQRBillAmount(img); ok {
			log.Printf("QR-bill decoded on %s: %s", doc.Name, amount)
			content.QRAmount = &amount
		}
	}

	return content, nil
}

func (d *documentDecoder) ocrImage(img image.Image) (string, error) {
	tempFile, err := saveImageToTempFile(img)
	if err != nil {
		return "", err
	}
	defer os.Remove(tempFile)

	return d.ocr.ExtractTextFromFile(tempFile)
}

// saveImageToTempFile saves an image.Image to a temporary PNG file.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "ocr-img-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		return "", fmt.Errorf("failed to encode image to PNG: %w", err)
	}

	return tempFile.Name(), nil
}
