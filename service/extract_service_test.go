package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JuanParadigma/factura-extractor/dto"
	"github.com/JuanParadigma/factura-extractor/vendors"
)

func TestExtractNumericWindowEndToEnd(t *testing.T) {
	lines := []string{
		"FACTURA A",
		"GUERRINI NEUMATICOS S.A.",
		"CUIT: 30-50000000-1",
		"0001-00001234",
		"15/03/2024",
		"SUBTOTAL",
		"100,00",
		"21,00",
		"0,00",
		"121,00",
	}

	payload := Extract(lines, false, "GUERRINI", nil, vendors.NewRegistry())

	assert.Equal(t, "0001-00001234", payload.Number)
	assert.Equal(t, "2024-03-15", payload.Date)
	assert.Equal(t, "30-50000000-1", payload.CUIT)
	assert.Equal(t, 100.0, payload.Subtotal)
	assert.Equal(t, 121.0, payload.Total)
	iva, ok := payload.IVA.Get("21")
	assert.True(t, ok)
	assert.Equal(t, 21.0, iva)
	assert.Len(t, payload.IVA, 1)
	assert.Empty(t, payload.Percepciones)
	assert.Empty(t, payload.Retenciones)
	assert.False(t, payload.UsedOCR)
}

func TestExtractEmptyDocument(t *testing.T) {
	payload := Extract(nil, false, "", nil, vendors.NewRegistry())

	assert.Equal(t, "", payload.Number)
	assert.Equal(t, "", payload.Date)
	assert.Equal(t, "", payload.CUIT)
	assert.Equal(t, 0.0, payload.Subtotal)
	assert.Equal(t, 0.0, payload.Total)
	assert.Len(t, payload.IVA, 0)
	assert.Empty(t, payload.Percepciones)
	assert.Empty(t, payload.Retenciones)

	raw, err := json.Marshal(payload)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), `"iva":{}`)
	assert.Contains(t, string(raw), `"percepciones":{}`)
	assert.Contains(t, string(raw), `"retenciones":{}`)
}

func TestExtractFallbackWithGarbledKeywords(t *testing.T) {
	lines := []string{
		"SU8T0TAL",
		"100,00",
		"IVA",
		"21,00",
		"T0TAL",
		"121,00",
	}

	payload := Extract(lines, true, "", nil, vendors.NewRegistry())

	assert.Equal(t, 100.0, payload.Subtotal)
	assert.Equal(t, 121.0, payload.Total)
	iva, ok := payload.IVA.Get("otros")
	assert.True(t, ok, "fallback IVA lines carry no rate label and land in otros")
	assert.Equal(t, 21.0, iva)
	assert.True(t, payload.UsedOCR)
}

func TestBuildExtractionVendorByConfiguredName(t *testing.T) {
	cfg := &dto.VendorConfig{
		Names: map[string][]string{"GUERRINI": {"GUERRINI"}},
		CUITs: map[string]string{},
	}
	lines := []string{
		"GUERRINI NEUMATICOS S.A.",
		"CUIT: 30-50000000-1",
	}

	out := BuildExtraction(lines, false, "", cfg, vendors.NewRegistry())

	assert.Equal(t, "GUERRINI", out.Debug.Vendor)
	assert.Equal(t, "30-50000000-1", out.Provider.CUIT)
	assert.Equal(t, 2, out.Debug.LineCount)
}

func TestBuildExtractionVendorByCUITMap(t *testing.T) {
	cfg := &dto.VendorConfig{
		Names: map[string][]string{},
		CUITs: map[string]string{"30-50000000-1": "PIRELLI"},
	}
	lines := []string{
		"NEUMATICOS DEL SUR S.A.",
		"CUIT: 30-50000000-1",
	}

	out := BuildExtraction(lines, false, "", cfg, vendors.NewRegistry())

	assert.Equal(t, "PIRELLI", out.Debug.Vendor)
}

func TestBuildExtractionHintBeatsDetection(t *testing.T) {
	lines := []string{
		"GUERRINI NEUMATICOS S.A.",
		"CUIT: 30-50000000-1",
	}
	cfg := &dto.VendorConfig{
		Names: map[string][]string{"GUERRINI": {"GUERRINI"}},
		CUITs: map[string]string{},
	}

	out := BuildExtraction(lines, false, "pirelli", cfg, vendors.NewRegistry())

	assert.Equal(t, "PIRELLI", out.Debug.Vendor)
}

func TestBuildExtractionUnknownVendor(t *testing.T) {
	out := BuildExtraction([]string{"algo sin nada"}, true, "", nil, vendors.NewRegistry())

	assert.Equal(t, "UNKNOWN", out.Debug.Vendor)
	assert.True(t, out.Debug.UsedOCR)
	assert.Nil(t, out.Total)
}
