package client

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"
)

// TesseractClient runs OCR over scanned documents. Language defaults to
// French since the supported documents (certificats de salaire, primes
// d'assurance, attestations de dons) are Swiss-French paperwork.
type TesseractClient struct {
	dataPath string
	language string
}

func NewTesseractClient(dataPath, language string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		language: language,
	}
}

// ExtractTextFromBytes writes the image bytes to a temporary file and runs
// Tesseract over it. gosseract only accepts file paths, hence the round trip
// through the filesystem.
func (tc *TesseractClient) ExtractTextFromBytes(data []byte, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tempFile, err := os.CreateTemp("", "ocr-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	tempFile.Close()

	return tc.ExtractTextFromFile(tempFile.Name())
}

// ExtractTextFromFile runs Tesseract OCR over an image on disk.
func (tc *TesseractClient) ExtractTextFromFile(filePath string) (string, error) {
	ocr := gosseract.NewClient()
	defer ocr.Close()

	if tc.dataPath != "" {
		ocr.SetTessdataPrefix(tc.dataPath)
	}

	if err := ocr.SetLanguage(tc.language); err != nil {
		return "", fmt.Errorf("failed to set language %q: %w", tc.language, err)
	}

	if err := ocr.SetImage(filePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := ocr.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return text, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Println("Tesseract client closed")
}
