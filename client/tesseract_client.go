package client

import (
	"fmt"
	"log"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/JuanParadigma/factura-extractor/utils"
)

// TesseractClient wraps Tesseract OCR for page images of scanned invoices.
type TesseractClient struct {
	dataPath  string
	languages []string
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		// Argentine invoices mix Spanish labels with English product text.
		languages: []string{"spa", "eng"},
	}
}

// ExtractLines runs OCR over one page image and returns its normalized
// non-empty text lines in reading order.
func (tc *TesseractClient) ExtractLines(imagePath string) ([]string, error) {
	lines, _, err := tc.ExtractLinesAndConfidence(imagePath)
	return lines, err
}

// ExtractLinesAndConfidence additionally reports the mean word confidence
// of the recognition, useful to spot scans not worth trusting.
func (tc *TesseractClient) ExtractLinesAndConfidence(imagePath string) ([]string, float64, error) {
	ocr := gosseract.NewClient()
	defer ocr.Close()

	if tc.dataPath != "" {
		ocr.SetTessdataPrefix(tc.dataPath)
	}
	if err := ocr.SetLanguage(tc.languages...); err != nil {
		return nil, 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := ocr.SetImage(imagePath); err != nil {
		return nil, 0, fmt.Errorf("failed to set image: %w", err)
	}
	text, err := ocr.Text()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to extract text: %w", err)
	}

	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if line := utils.NormLine(raw); line != "" {
			lines = append(lines, line)
		}
	}

	confidence := 0.0
	boxes, err := ocr.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil && len(boxes) > 0 {
		var total float64
		for _, box := range boxes {
			total += box.Confidence
		}
		confidence = total / float64(len(boxes))
	}
	return lines, confidence, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	log.Println("Tesseract client closed")
}
