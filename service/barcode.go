package service

import (
	"fmt"
	"image"
	"log"
	"regexp"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"

	"github.com/JuanParadigma/factura-extractor/dto"
)

// BarcodeData is the payload of the Interleaved-2-of-5 barcode printed on
// AFIP invoices: CUIT, invoice type, point of sale, CAE and its due date.
type BarcodeData struct {
	CUIT        string
	InvoiceType string
	PointOfSale string
	CAE         string
	CAEDue      string
}

var reBarcodeDigits = regexp.MustCompile(`^\d{40}\d?$`)

// DecodeAFIPBarcode decodes the fiscal barcode from one page image.
func DecodeAFIPBarcode(img image.Image) (*BarcodeData, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	reader := oned.NewITFReader()
	result, err := reader.Decode(bmp, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ITF barcode: %w", err)
	}

	digits := result.GetText()
	if !reBarcodeDigits.MatchString(digits) {
		return nil, fmt.Errorf("unexpected barcode length %d", len(digits))
	}

	// Layout: CUIT(11) type(2) point-of-sale(4) CAE(14) due(YYYYMMDD) check(1)
	due := digits[31:39]
	return &BarcodeData{
		CUIT:        digits[0:2] + "-" + digits[2:10] + "-" + digits[10:11],
		InvoiceType: digits[11:13],
		PointOfSale: digits[13:17],
		CAE:         digits[17:31],
		CAEDue:      due[0:4] + "-" + due[4:6] + "-" + due[6:8],
	}, nil
}

// ReinforceFromBarcode backfills header fields the text locators missed
// using the fiscal barcode on the page images. Purely additive: fields the
// locators already resolved are never overwritten.
func ReinforceFromBarcode(pdfPath string, out *dto.Extraction) {
	if out.Header.CAE != "" && out.Provider.CUIT != "" {
		return
	}
	images, err := PageImages(pdfPath)
	if err != nil {
		log.Printf("barcode pass skipped for %s: %v", pdfPath, err)
		return
	}
	for _, img := range images {
		data, err := DecodeAFIPBarcode(img)
		if err != nil {
			continue
		}
		if out.Header.CAE == "" {
			out.Header.CAE = data.CAE
		}
		if out.Header.CAEDue == "" {
			out.Header.CAEDue = data.CAEDue
		}
		if out.Provider.CUIT == "" {
			out.Provider.CUIT = data.CUIT
		}
		log.Printf("fiscal barcode decoded for %s (CAE %s)", pdfPath, data.CAE)
		return
	}
}
