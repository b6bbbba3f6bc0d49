package service

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/JuanParadigma/factura-extractor/client"
	"github.com/JuanParadigma/factura-extractor/utils"
)

// LineReader acquires the ordered text lines of a document, reporting
// whether optical recognition produced them.
type LineReader interface {
	Read(pdfPath string, useOCRHint *bool) ([]string, bool)
}

// PDFLineReader reads PDF text either from the embedded text layer or by
// running OCR over the page images. The preferred method is tried first and
// the other one silently covers for it when it yields nothing.
type PDFLineReader struct {
	ocr       *client.TesseractClient
	preferOCR bool
}

func NewPDFLineReader(ocr *client.TesseractClient, preferOCR bool) *PDFLineReader {
	return &PDFLineReader{ocr: ocr, preferOCR: preferOCR}
}

// Read returns the normalized non-empty lines of the document and a flag
// telling whether OCR produced them. An unreadable document yields an empty
// slice, never an error; the pipeline downstream tolerates emptiness.
func (r *PDFLineReader) Read(pdfPath string, useOCRHint *bool) ([]string, bool) {
	preferOCR := r.preferOCR
	if useOCRHint != nil {
		preferOCR = *useOCRHint
	}
	if preferOCR {
		lines := r.readOCR(pdfPath)
		if len(lines) > 0 {
			return lines, true
		}
		return r.readTextLayer(pdfPath), false
	}
	lines := r.readTextLayer(pdfPath)
	if len(lines) > 0 {
		return lines, false
	}
	lines = r.readOCR(pdfPath)
	return lines, len(lines) > 0
}

// readTextLayer extracts the embedded text layer row by row.
func (r *PDFLineReader) readTextLayer(pdfPath string) []string {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		log.Printf("text layer open failed for %s: %v", pdfPath, err)
		return nil
	}
	defer f.Close()

	var lines []string
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := utils.NormLine(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// readOCR extracts the page images and runs Tesseract over each of them.
func (r *PDFLineReader) readOCR(pdfPath string) []string {
	if r.ocr == nil {
		return nil
	}
	tempDir, files, err := extractImageFiles(pdfPath)
	if err != nil {
		log.Printf("image extraction failed for %s: %v", pdfPath, err)
		return nil
	}
	defer os.RemoveAll(tempDir)

	var lines []string
	for _, imgPath := range files {
		pageLines, confidence, err := r.ocr.ExtractLinesAndConfidence(imgPath)
		if err != nil {
			log.Printf("OCR failed for page image %s: %v", imgPath, err)
			continue
		}
		if confidence > 0 && confidence < 40 {
			log.Printf("low OCR confidence (%.1f) for page image %s", confidence, imgPath)
		}
		lines = append(lines, pageLines...)
	}
	return lines
}

// extractImageFiles dumps the embedded page images of a PDF into a fresh
// temp dir. The caller removes tempDir when done.
func extractImageFiles(pdfPath string) (tempDir string, files []string, err error) {
	tempDir, err = os.MkdirTemp("", "factura_images")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractImagesFile(pdfPath, tempDir, nil, conf); err != nil {
		os.RemoveAll(tempDir)
		return "", nil, fmt.Errorf("failed to extract images: %w", err)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		os.RemoveAll(tempDir)
		return "", nil, fmt.Errorf("failed to read temp dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, filepath.Join(tempDir, entry.Name()))
	}
	return tempDir, files, nil
}

// PageImages decodes the embedded page images of a PDF, used by the barcode
// reinforcement pass.
func PageImages(pdfPath string) ([]image.Image, error) {
	tempDir, files, err := extractImageFiles(pdfPath)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	var images []image.Image
	for _, imgPath := range files {
		imgFile, err := os.Open(imgPath)
		if err != nil {
			continue
		}
		img, _, err := image.Decode(imgFile)
		imgFile.Close()
		if err != nil {
			continue
		}
		images = append(images, img)
	}
	return images, nil
}
