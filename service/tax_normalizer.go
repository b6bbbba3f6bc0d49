package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/JuanParadigma/factura-extractor/dto"
	"github.com/JuanParadigma/factura-extractor/utils"
)

// FixedTaxKeys is the closed canonical tax bucket set. Every classification
// rule maps into this set; no bucket is invented at runtime.
var FixedTaxKeys = []string{
	"percepcion_iva",
	"percepcion_iibb_bs_as",
	"percepcion_ganancias",
	"percepcion_iibb_la_pampa",
	"percepcion_iibb_rio_negro",
	"percepcion_iibb_neuquen",
	"percepcion_iibb_caba",
	"percepcion_iibb_cordoba",
	"percepcion_iibb_chubut",
	"percepcion_iibb_mendoza",
	"percepcion_iibb_santa_cruz",
	"percepcion_iibb_santa_fe",
	"percepcion_iibb_tucuman",
	"percepcion_iibb_entre_rios",
	"percepcion_iibb_la_rioja",
	"impuesto_combustible",
	"impuestos_y_sellados",
	"retencion_iva",
	"retencion_iibb_pcia_bs_as",
	"retencion_ganancias",
	"retencion_iibb_pcia_rio_negro",
	"retencion_iibb_pcia_neuquen",
	"retencion_iibb_sirtac",
}

type taxRule struct {
	pattern *regexp.Regexp
	key     string
}

func rule(pattern, key string) taxRule {
	return taxRule{pattern: regexp.MustCompile(`(?i)` + pattern), key: key}
}

// normalizationRules maps free-text tax descriptions to canonical bucket
// keys. The list is ordered and the first match wins; reordering it changes
// classification outcomes, so the order is part of the tested contract.
var normalizationRules = []taxRule{
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIVA\b`, "retencion_iva"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bGANANCIAS?\b`, "retencion_ganancias"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIIBB\b.*\b(BUENOS\s*AIRES|ARBA|P\.?B\.?A)\b`, "retencion_iibb_pcia_bs_as"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIIBB\b.*\bR[ÍI]O\s*NEGRO\b`, "retencion_iibb_pcia_rio_negro"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bIIBB\b.*\bNEUQU[ÉE]N\b`, "retencion_iibb_pcia_neuquen"),
	rule(`\bRET(ENCI[ÓO]N|\.?)\b.*\bSIRTAC\b`, "retencion_iibb_sirtac"),
	rule(`\bPERCEP(CCI[ÓO]N|\.?)\b.*\bIVA\b`, "percepcion_iva"),
	rule(`\bRG\s*3337\b|\bR\.?G\.?\s*3337\b|\bDGI\s*3337\b`, "percepcion_iva"),
	rule(`\bRG\s*2126\b|\bR\.?G\.?\s*2126\b`, "percepcion_iva"),
	rule(`\b(?:IB|IIBB)\s*BA\b.*\bLOC(?:AL)?\.?\b.*\bDN\b\s*B\s*70\s*[/\-]?\s*0?7\b`, "percepcion_iibb_bs_as"),
	rule(`\bDN\b\s*B\s*70\s*[/\-]?\s*0?7\b`, "percepcion_iibb_bs_as"),
	rule(`\bIIBB\b.*\b(BUENOS\s*AIRES|ARBA|P\.?B\.?A)\b`, "percepcion_iibb_bs_as"),
	rule(`\bIIBB\b.*\bCABA\b|\bAGIP\b`, "percepcion_iibb_caba"),
	rule(`\bIIBB\b.*\bNEUQU[ÉE]N\b|\bIB\s*(CONV\.?|CONVENIO)\s*NEUQ`, "percepcion_iibb_neuquen"),
	rule(`\bIIBB\b.*\bR[ÍI]O\s*NEGRO\b|\bRIO\s*NEG\b|\bIB\s*(CONV\.?|CONVENIO)\s*R[ÍI]O\s*NEG`, "percepcion_iibb_rio_negro"),
	rule(`\bIIBB\b.*\bLA\s*PAMPA\b`, "percepcion_iibb_la_pampa"),
	rule(`\bIIBB\b.*\bC[ÓO]RDOBA\b`, "percepcion_iibb_cordoba"),
	rule(`\bIIBB\b.*\bCHUBUT\b`, "percepcion_iibb_chubut"),
	rule(`\bIIBB\b.*\bMENDOZA\b`, "percepcion_iibb_mendoza"),
	rule(`\bIIBB\b.*\bSANTA\s*CRUZ\b`, "percepcion_iibb_santa_cruz"),
	rule(`\bIIBB\b.*\bSANTA\s*FE\b`, "percepcion_iibb_santa_fe"),
	rule(`\bIIBB\b.*\bTUCUM[ÁA]N\b`, "percepcion_iibb_tucuman"),
	rule(`\bIIBB\b.*\bENTRE\s*R[IÍ]OS\b`, "percepcion_iibb_entre_rios"),
	rule(`\bIIBB\b.*\bLA\s*RIOJA\b`, "percepcion_iibb_la_rioja"),
	rule(`\bDN\s*B70(?:/0?7)?\b|\bIB\s*BA\b`, "percepcion_iibb_bs_as"),
	rule(`\bPERCEP(CCI[ÓO]N|\.?)\b.*\bGANANCIAS?\b`, "percepcion_ganancias"),
	rule(`IMPUESTO\s+AL\s+COMBUSTIBLE|ITC\b`, "impuesto_combustible"),
	rule(`\bSELLOS\b|\bIMPUESTOS?\s+VARIOS\b|\bIMPUESTOS?\b`, "impuestos_y_sellados"),
}

// ivaRatesCanon is the preferred ordering of the canonical IVA rates.
var ivaRatesCanon = []float64{27.0, 21.0, 10.5, 5.0, 2.5}

func classifyTaxDescription(desc string) string {
	upper := strings.ToUpper(desc)
	for _, r := range normalizationRules {
		if r.pattern.MatchString(upper) {
			return r.key
		}
	}
	return ""
}

// normalizeFixedSchema classifies each percepción/retención detail item into
// the fixed bucket set. With no detail items but a nonzero aggregate total,
// a single synthetic IIBB item stands in. Unmatched descriptions are dropped.
func normalizeFixedSchema(out *dto.Extraction) map[string]float64 {
	fixed := map[string]float64{}
	items := out.PercDetail
	if len(items) == 0 && out.PercTotal != nil {
		items = []dto.PercItem{{Description: "PERCEP. IIBB", Amount: *out.PercTotal}}
	}
	for _, item := range items {
		key := classifyTaxDescription(item.Description)
		if key == "" {
			continue
		}
		fixed[key] = utils.Round2(fixed[key] + item.Amount)
	}
	return fixed
}

func toISODate(maybeDate string) string {
	s := strings.TrimSpace(maybeDate)
	if s == "" {
		return ""
	}
	if m := regexp.MustCompile(`^(\d{2})[/\-.](\d{2})[/\-.](\d{4})$`).FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	if m := regexp.MustCompile(`^(\d{4})[/\-](\d{2})[/\-](\d{2})$`).FindStringSubmatch(s); m != nil {
		return m[1] + "-" + m[2] + "-" + m[3]
	}
	return s
}

// parseRateLabel parses an IVA rate label ("21.00", "10,5%") and snaps it to
// the nearest canonical rate. Returns false for unparseable labels.
func parseRateLabel(label string) (float64, bool) {
	s := strings.TrimSpace(label)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	for _, canon := range ivaRatesCanon {
		if v > canon-1e-6 && v < canon+1e-6 {
			return canon, true
		}
	}
	return v, true
}

func rateKey(rate float64) string {
	if rate == float64(int64(rate)) {
		return strconv.FormatInt(int64(rate), 10)
	}
	return strconv.FormatFloat(rate, 'f', -1, 64)
}

const unknownRate = 999.0

// sumIVAByRate buckets IVA detail items by rate and orders the result.
// Canonical rates come first in preference order, remaining non-zero buckets
// follow in discovery order; zero-valued buckets are omitted.
func sumIVAByRate(details []dto.IVAItem, ivaTotal *float64) dto.IVABreakdown {
	sums := map[float64]float64{}
	var discovered []float64
	add := func(rate, amount float64) {
		if _, seen := sums[rate]; !seen {
			discovered = append(discovered, rate)
		}
		sums[rate] = utils.Round2(sums[rate] + amount)
	}
	for _, item := range details {
		if rate, ok := parseRateLabel(item.Rate); ok {
			add(rate, item.Amount)
		} else {
			add(unknownRate, item.Amount)
		}
	}
	if len(sums) == 0 && ivaTotal != nil && *ivaTotal != 0 {
		add(unknownRate, utils.Round2(*ivaTotal))
	}

	var ordered dto.IVABreakdown
	taken := map[float64]bool{}
	for _, canon := range ivaRatesCanon {
		if v, ok := sums[canon]; ok && v > 0 {
			ordered = append(ordered, dto.RateAmount{Rate: rateKey(canon), Amount: v})
			taken[canon] = true
		}
	}
	for _, rate := range discovered {
		if taken[rate] {
			continue
		}
		v := sums[rate]
		if v <= 0 {
			continue
		}
		label := rateKey(rate)
		if rate == unknownRate {
			label = "otros"
		}
		ordered = append(ordered, dto.RateAmount{Rate: label, Amount: v})
	}
	return ordered
}

// splitPercRet divides the classified buckets into the percepciones group
// (percepcion_ prefix plus the two standalone fuel/stamp categories) and the
// retenciones group. Zero entries never make it into either map.
func splitPercRet(buckets map[string]float64) (map[string]float64, map[string]float64) {
	percepciones := map[string]float64{}
	retenciones := map[string]float64{}
	for k, v := range buckets {
		if v == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(k, "percepcion_"), k == "impuesto_combustible", k == "impuestos_y_sellados":
			percepciones[k] = v
		case strings.HasPrefix(k, "retencion_"):
			retenciones[k] = v
		}
	}
	return percepciones, retenciones
}

// BuildMinimalPayload reduces a raw extraction record to the normalized
// minimal payload consumed downstream.
func BuildMinimalPayload(out *dto.Extraction) dto.MinimalPayload {
	total := 0.0
	if out.Total != nil {
		total = *out.Total
	}

	ivaByRate := sumIVAByRate(out.IVADetail, out.IVATotal)
	ivaTotal := 0.0
	if len(ivaByRate) > 0 {
		ivaTotal = utils.Round2(ivaByRate.Sum())
	} else if out.IVATotal != nil {
		ivaTotal = *out.IVATotal
	}

	buckets := normalizeFixedSchema(out)
	percepciones, retenciones := splitPercRet(buckets)
	percTotal := 0.0
	for _, v := range percepciones {
		percTotal += v
	}
	percTotal = utils.Round2(percTotal)

	var subtotal float64
	if out.Subtotal != nil {
		subtotal = *out.Subtotal
	} else if total != 0 {
		subtotal = utils.Round2(total - ivaTotal - percTotal)
		if subtotal > -1e-6 && subtotal < 1e-6 {
			subtotal = 0
		}
	}

	return dto.MinimalPayload{
		Number:       out.Header.Number,
		Date:         toISODate(out.Header.Date),
		CUIT:         out.Provider.CUIT,
		Subtotal:     utils.Round2(subtotal),
		Total:        utils.Round2(total),
		IVA:          ivaByRate,
		Percepciones: percepciones,
		Retenciones:  retenciones,
	}
}

// ValidateAndRepair reconciles the totals of a raw extraction record. A
// missing total is repaired from subtotal + IVA + percepciones; a present
// total that strays beyond the tolerance only gets a warning, the observed
// value is kept.
func ValidateAndRepair(out *dto.Extraction, tol float64) {
	sub, iva, perc := 0.0, 0.0, 0.0
	if out.Subtotal != nil {
		sub = *out.Subtotal
	}
	if out.IVATotal != nil {
		iva = *out.IVATotal
	}
	if out.PercTotal != nil {
		perc = *out.PercTotal
	}
	computed := utils.Round2(sub + iva + perc)
	if out.Total == nil {
		out.Total = &computed
		out.Warnings = append(out.Warnings, "TOTAL estimado = SUBTOTAL + IVA + PERCEPCIONES")
		return
	}
	diff := *out.Total - computed
	if diff < 0 {
		diff = -diff
	}
	if diff > tol {
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("Diferencia contable: total(%v) != subtotal+iva+percepciones(%v)", *out.Total, computed))
	}
}
