package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JuanParadigma/factura-extractor/dto"
)

func fptr(v float64) *float64 { return &v }

func TestValidateAndRepairMissingTotal(t *testing.T) {
	out := &dto.Extraction{
		Subtotal:  fptr(100),
		IVATotal:  fptr(21),
		PercTotal: fptr(0),
	}

	ValidateAndRepair(out, 0.05)

	assert.NotNil(t, out.Total)
	assert.Equal(t, 121.0, *out.Total)
	assert.Len(t, out.Warnings, 1)
}

func TestValidateAndRepairMismatchKeepsTotal(t *testing.T) {
	out := &dto.Extraction{
		Subtotal:  fptr(100),
		IVATotal:  fptr(21),
		PercTotal: fptr(0),
		Total:     fptr(200),
	}

	ValidateAndRepair(out, 0.05)

	assert.Equal(t, 200.0, *out.Total, "observed total is advisory-checked, not overwritten")
	assert.Len(t, out.Warnings, 1)
}

func TestValidateAndRepairWithinTolerance(t *testing.T) {
	out := &dto.Extraction{
		Subtotal: fptr(100),
		IVATotal: fptr(21),
		Total:    fptr(121.04),
	}

	ValidateAndRepair(out, 0.05)

	assert.Empty(t, out.Warnings)
}

func TestSumIVAByRateCanonicalOrdering(t *testing.T) {
	details := []dto.IVAItem{
		{Rate: "21.00", Amount: 210},
		{Rate: "27", Amount: 27},
	}

	breakdown := sumIVAByRate(details, nil)

	assert.Len(t, breakdown, 2)
	assert.Equal(t, "27", breakdown[0].Rate, "canonical preference order, not discovery order")
	assert.Equal(t, "21", breakdown[1].Rate)

	raw, err := json.Marshal(breakdown)
	assert.NoError(t, err)
	assert.Equal(t, `{"27":27,"21":210}`, string(raw))
}

func TestSumIVAByRateUnknownRates(t *testing.T) {
	details := []dto.IVAItem{
		{Rate: "", Amount: 10},
		{Rate: "10,5%", Amount: 105},
		{Rate: "13", Amount: 13},
	}

	breakdown := sumIVAByRate(details, nil)

	// 10.5 snaps to canonical and leads; "otros" and the odd 13 follow in
	// discovery order.
	assert.Equal(t, "10.5", breakdown[0].Rate)
	assert.Equal(t, "otros", breakdown[1].Rate)
	assert.Equal(t, "13", breakdown[2].Rate)
}

func TestSumIVAByRateAggregateOnly(t *testing.T) {
	breakdown := sumIVAByRate(nil, fptr(42))

	assert.Len(t, breakdown, 1)
	assert.Equal(t, "otros", breakdown[0].Rate)
	assert.Equal(t, 42.0, breakdown[0].Amount)
}

func TestClassifyTaxDescription(t *testing.T) {
	cases := map[string]string{
		"RETENCION IVA RG 18/99":        "retencion_iva",
		"RET. GANANCIAS":                "retencion_ganancias",
		"RETENCION SIRTAC":              "retencion_iibb_sirtac",
		"PERCEP. IVA RG 2126":           "percepcion_iva",
		"PERCEP IIBB ARBA":              "percepcion_iibb_bs_as",
		"IIBB CABA":                     "percepcion_iibb_caba",
		"AGIP":                          "percepcion_iibb_caba",
		"IIBB RIO NEGRO":                "percepcion_iibb_rio_negro",
		"IMPUESTO AL COMBUSTIBLE":       "impuesto_combustible",
		"SELLOS":                        "impuestos_y_sellados",
		"texto sin clasificacion plena": "",
	}

	for desc, want := range cases {
		assert.Equal(t, want, classifyTaxDescription(desc), "description %q", desc)
	}
}

func TestClassifyTaxDescriptionOrderMatters(t *testing.T) {
	// "RETENCION IVA" also mentions IVA, but the retención rules sit before
	// the percepción ones, so the retención bucket must win.
	assert.Equal(t, "retencion_iva", classifyTaxDescription("RETENCION IVA"))
	// Generic IMPUESTOS is the final catch-all.
	assert.Equal(t, "impuestos_y_sellados", classifyTaxDescription("IMPUESTOS VARIOS"))
}

func TestRulesTargetClosedBucketSet(t *testing.T) {
	known := map[string]bool{}
	for _, k := range FixedTaxKeys {
		known[k] = true
	}
	for _, r := range normalizationRules {
		assert.True(t, known[r.key], "rule maps to unknown bucket %q", r.key)
	}
}

func TestNormalizeFixedSchemaSyntheticItem(t *testing.T) {
	// An aggregate-only percepción total classifies through a synthetic
	// generic IIBB item. Without a jurisdiction in the description no rule
	// matches, so the amount stays out of the fixed schema.
	out := &dto.Extraction{PercTotal: fptr(50)}
	assert.Empty(t, normalizeFixedSchema(out))

	// With detail items the description drives the bucket as usual.
	out = &dto.Extraction{
		PercDetail: []dto.PercItem{
			{Description: "PERCEP IIBB ARBA", Amount: 30},
			{Description: "PERCEP IIBB ARBA", Amount: 20},
		},
	}
	buckets := normalizeFixedSchema(out)
	assert.Equal(t, 50.0, buckets["percepcion_iibb_bs_as"], "same-bucket amounts accumulate")
}

func TestBuildMinimalPayloadComputesSubtotal(t *testing.T) {
	out := &dto.Extraction{
		Header:    dto.Header{Number: "0001-00000999", Date: "04/08/2025"},
		Provider:  dto.Party{CUIT: "30-11111111-1"},
		IVATotal:  fptr(21),
		IVADetail: []dto.IVAItem{{Rate: "21.00", Amount: 21}},
		Total:     fptr(121),
	}

	payload := BuildMinimalPayload(out)

	assert.Equal(t, "0001-00000999", payload.Number)
	assert.Equal(t, "2025-08-04", payload.Date)
	assert.Equal(t, 100.0, payload.Subtotal)
	assert.Equal(t, 121.0, payload.Total)

	amount, ok := payload.IVA.Get("21")
	assert.True(t, ok)
	assert.Equal(t, 21.0, amount)
}

func TestBuildMinimalPayloadEmptyExtraction(t *testing.T) {
	out := &dto.Extraction{}
	ValidateAndRepair(out, 0.05)

	payload := BuildMinimalPayload(out)

	assert.Equal(t, 0.0, payload.Subtotal)
	assert.Equal(t, 0.0, payload.Total)
	assert.Empty(t, payload.IVA)
	assert.Empty(t, payload.Percepciones)
	assert.Empty(t, payload.Retenciones)
}

func TestToISODate(t *testing.T) {
	assert.Equal(t, "2025-08-04", toISODate("04/08/2025"))
	assert.Equal(t, "2025-08-04", toISODate("04-08-2025"))
	assert.Equal(t, "2025-08-04", toISODate("2025-08-04"))
	assert.Equal(t, "8/4/25", toISODate("8/4/25"), "unrecognized formats pass through verbatim")
	assert.Equal(t, "", toISODate(""))
}
