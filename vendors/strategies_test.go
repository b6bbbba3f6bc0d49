package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JuanParadigma/factura-extractor/dto"
)

func TestExtractTotalsNumeric(t *testing.T) {
	lines := []string{"SUBTOTAL", "100.00", "21.00", "0.00", "121.00"}
	out := &dto.Extraction{}

	ok := extractTotalsNumeric(lines, out)

	assert.True(t, ok)
	assert.Equal(t, 100.0, *out.Subtotal)
	assert.Equal(t, 21.0, *out.IVATotal)
	assert.Equal(t, 0.0, *out.PercTotal)
	assert.Equal(t, 121.0, *out.Total)
	assert.Equal(t, []dto.IVAItem{{Rate: "21.00", Amount: 21.0}}, out.IVADetail)
}

func TestExtractTotalsNumericComputesMissingTotal(t *testing.T) {
	lines := []string{"items", "SUBTOTAL", "100.00", "21.00"}
	out := &dto.Extraction{}

	ok := extractTotalsNumeric(lines, out)

	assert.True(t, ok)
	assert.Equal(t, 121.0, *out.Total, "total computed as subtotal + IVA when absent")
}

func TestExtractTotalsNumericNeedsTwoValues(t *testing.T) {
	out := &dto.Extraction{}

	assert.False(t, extractTotalsNumeric([]string{"SUBTOTAL", "100.00"}, out))
	assert.False(t, extractTotalsNumeric([]string{"sin subtotal", "100.00"}, out))
	assert.Nil(t, out.Subtotal)
}

func TestExtractTotalsNumericUsesLastSubtotal(t *testing.T) {
	lines := []string{
		"SUBTOTAL", "999.00",
		"mas items",
		"SUBTOTAL", "100.00", "21.00", "0.00", "121.00",
	}
	out := &dto.Extraction{}

	assert.True(t, extractTotalsNumeric(lines, out))
	assert.Equal(t, 100.0, *out.Subtotal)
}

func TestExtractTotalsColon(t *testing.T) {
	lines := []string{
		"SUBTOTAL: 1.000,00",
		"IVA 21.00: 210,00",
		"IVA RESPONSABLE INSCRIPTO",
		"PERCEP IIBB ARBA: 50,00",
		"TOTAL: 1.260,00",
		"TOTAL REMITOS: 9.999,99",
	}
	out := &dto.Extraction{}

	ok := extractTotalsColon(lines, out)

	assert.True(t, ok)
	assert.Equal(t, 1000.0, *out.Subtotal)
	assert.Equal(t, 210.0, *out.IVATotal)
	assert.Equal(t, 50.0, *out.PercTotal)
	assert.Equal(t, "PERCEP IIBB ARBA: 50,00", out.PercDetail[0].Description)
	assert.Equal(t, 1260.0, *out.Total, "scan stops at the first TOTAL line")
}

func TestExtractTotalsColonComputesMissingTotal(t *testing.T) {
	lines := []string{
		"SUBTOTAL: 100,00",
		"IVA: 21,00",
	}
	out := &dto.Extraction{}

	ok := extractTotalsColon(lines, out)

	assert.True(t, ok)
	assert.Equal(t, 121.0, *out.Total)
}

func TestDualStrategyFallsBack(t *testing.T) {
	// A clean numeric block: the colon strategy finds nothing in it, so
	// with the OCR flag set the second strategy must still recover it.
	lines := []string{"SUBTOTAL", "100.00", "21.00", "0.00", "121.00"}
	out := &dto.Extraction{Debug: dto.Debug{UsedOCR: true}}

	dualStrategy(lines, out)

	assert.NotNil(t, out.Subtotal)
	assert.Equal(t, 100.0, *out.Subtotal)
	assert.Equal(t, 121.0, *out.Total)
}

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()

	_, ok := registry.Lookup("GUERRINI")
	assert.True(t, ok)
	_, ok = registry.Lookup("guerrini")
	assert.True(t, ok, "lookup is case-insensitive")
	_, ok = registry.Lookup("PIRELLI")
	assert.True(t, ok)
	_, ok = registry.Lookup("DESCONOCIDO")
	assert.False(t, ok)
}
