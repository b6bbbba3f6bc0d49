package service

import (
	"log"
	"strings"

	"github.com/JuanParadigma/factura-extractor/config"
	"github.com/JuanParadigma/factura-extractor/dto"
	"github.com/JuanParadigma/factura-extractor/utils"
	"github.com/JuanParadigma/factura-extractor/vendors"
)

// reconcileTolerance is the accepted drift between the declared total and
// subtotal + IVA + percepciones before a warning is recorded.
const reconcileTolerance = 0.05

// InvoiceService coordinates line acquisition, vendor detection and
// normalization into the minimal payload.
type InvoiceService struct {
	reader        LineReader
	registry      *vendors.Registry
	vendorCfgPath string
}

func NewInvoiceService(reader LineReader, registry *vendors.Registry, vendorCfgPath string) *InvoiceService {
	return &InvoiceService{
		reader:        reader,
		registry:      registry,
		vendorCfgPath: vendorCfgPath,
	}
}

// BuildExtraction runs the extraction pipeline over an already-acquired line
// sequence and returns the raw extraction record. It never fails: missing or
// garbled content leaves the affected fields nil.
func BuildExtraction(lines []string, usedOCR bool, vendorHint string, cfg *dto.VendorConfig, registry *vendors.Registry) *dto.Extraction {
	if cfg == nil {
		cfg = dto.EmptyVendorConfig()
	}

	header := utils.ExtractHeader(lines)

	vendorGuess := strings.ToUpper(strings.TrimSpace(vendorHint))
	if vendorGuess == "" {
		vendorGuess = utils.DetectVendorByName(lines, cfg.Names)
	}

	provider, client := utils.ExtractParties(lines, vendorGuess)

	vendor := vendorGuess
	if vendor == "" {
		vendor = utils.DetectVendorByCUIT(provider.CUIT, cfg.CUITs)
	}

	out := &dto.Extraction{
		Provider: provider,
		Client:   client,
		Header:   header,
		Debug: dto.Debug{
			Vendor:    vendor,
			LineCount: len(lines),
			UsedOCR:   usedOCR,
		},
	}
	if out.Debug.Vendor == "" {
		out.Debug.Vendor = "UNKNOWN"
	}

	if handler, ok := registry.Lookup(vendor); ok {
		handler(lines, out)
	} else {
		vendors.FallbackTotals(lines, out)
	}
	return out
}

// Extract is the core operation: an ordered line sequence in, a structurally
// valid minimal payload out, whatever the state of the document.
func Extract(lines []string, usedOCR bool, vendorHint string, cfg *dto.VendorConfig, registry *vendors.Registry) dto.MinimalPayload {
	out := BuildExtraction(lines, usedOCR, vendorHint, cfg, registry)
	ValidateAndRepair(out, reconcileTolerance)
	payload := BuildMinimalPayload(out)
	payload.UsedOCR = usedOCR
	return payload
}

// ExtractFromPDF acquires the document lines, lets the barcode pass backfill
// what the text locators missed and normalizes the result. The vendor
// configuration is reloaded per call so edits to vendors.yaml apply without
// a restart.
func (s *InvoiceService) ExtractFromPDF(pdfPath, vendorHint string, useOCRHint *bool) dto.MinimalPayload {
	lines, usedOCR := s.reader.Read(pdfPath, useOCRHint)
	cfg := config.LoadVendorConfig(s.vendorCfgPath)

	out := BuildExtraction(lines, usedOCR, vendorHint, cfg, s.registry)
	ReinforceFromBarcode(pdfPath, out)
	ValidateAndRepair(out, reconcileTolerance)
	for _, warning := range out.Warnings {
		log.Printf("%s: %s", pdfPath, warning)
	}

	payload := BuildMinimalPayload(out)
	payload.UsedOCR = usedOCR
	return payload
}
