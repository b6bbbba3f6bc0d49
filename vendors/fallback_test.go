package vendors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JuanParadigma/factura-extractor/dto"
)

func TestFallbackTotals(t *testing.T) {
	lines := []string{
		"detalle de articulos",
		"SUBTOTAL",
		"100,00",
		"IVA 21%",
		"21,00",
		"PERCEP IIBB ARBA",
		"5,00",
		"TOTAL",
		"126,00",
	}
	out := &dto.Extraction{}

	FallbackTotals(lines, out)

	assert.Equal(t, 100.0, *out.Subtotal)
	assert.Equal(t, 21.0, *out.IVATotal)
	assert.Equal(t, 5.0, *out.PercTotal)
	assert.Equal(t, 126.0, *out.Total)
	assert.Len(t, out.IVADetail, 1)
	assert.Equal(t, "PERCEP IIBB ARBA", out.PercDetail[0].Description)
}

func TestFallbackTotalsOCRConfusedKeywords(t *testing.T) {
	// Digits standing in for letters in the keywords themselves.
	lines := []string{
		"SU8T0TAL",
		"100,00",
		"T0TAL",
		"121,00",
	}
	out := &dto.Extraction{}

	FallbackTotals(lines, out)

	assert.NotNil(t, out.Subtotal)
	assert.Equal(t, 100.0, *out.Subtotal)
	assert.Equal(t, 121.0, *out.Total)
}

func TestFallbackTotalsAccumulatesIVA(t *testing.T) {
	lines := []string{
		"IVA",
		"210,00",
		"IVA 10.5",
		"52,50",
		"TOTAL",
		"1.262,50",
	}
	out := &dto.Extraction{}

	FallbackTotals(lines, out)

	assert.Equal(t, 262.5, *out.IVATotal, "multiple IVA lines are summed, not overwritten")
	assert.Len(t, out.IVADetail, 2)
	assert.Equal(t, 1262.5, *out.Total)
}

func TestFallbackTotalsSubtotalLineAlsoMatchesTotal(t *testing.T) {
	// "SUBTOTAL" contains "TOTAL", so its amount seeds the total as well;
	// a later TOTAL line overwrites it, absent one it stands.
	lines := []string{
		"SUBTOTAL",
		"100,00",
	}
	out := &dto.Extraction{}

	FallbackTotals(lines, out)

	assert.Equal(t, 100.0, *out.Subtotal)
	assert.Equal(t, 100.0, *out.Total)
}

func TestFallbackTotalsEmptyDocument(t *testing.T) {
	out := &dto.Extraction{}

	FallbackTotals(nil, out)

	assert.Nil(t, out.Subtotal)
	assert.Nil(t, out.IVATotal)
	assert.Nil(t, out.PercTotal)
	assert.Nil(t, out.Total)
}
