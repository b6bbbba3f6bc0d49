package vendors

import (
	"strings"

	"github.com/JuanParadigma/factura-extractor/dto"
	"github.com/JuanParadigma/factura-extractor/utils"
)

// Keywords that mark a percepción-class line.
var percKeywords = []string{"PERC", "PERCEP", "IIBB", "INGRESOS BRUTOS", "ARBA", "AGIP"}

func hasPercKeyword(upper string) bool {
	for _, k := range percKeywords {
		if strings.Contains(upper, k) {
			return true
		}
	}
	return false
}

func lastSubtotalIndex(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToUpper(lines[i]), "SUBTOTAL") {
			return i
		}
	}
	return -1
}

func f64(v float64) *float64 { return &v }

// extractTotalsNumeric is the clean text-layer strategy: after the last
// SUBTOTAL line, the totals block is a run of purely numeric lines in the
// fixed order subtotal, IVA, percepciones, total. At least 2 values are
// required to declare success; a missing total is computed from the rest.
func extractTotalsNumeric(lines []string, out *dto.Extraction) bool {
	idxSub := lastSubtotalIndex(lines)
	if idxSub < 0 {
		return false
	}
	end := idxSub + 60
	if end > len(lines) {
		end = len(lines)
	}
	var values []float64
	for _, line := range lines[idxSub:end] {
		if !utils.NumPure.MatchString(line) {
			continue
		}
		if v, ok := utils.ParseNumberSmart(line); ok {
			values = append(values, v)
			if len(values) == 4 {
				break
			}
		}
	}
	if len(values) < 2 {
		return false
	}

	subtotal := values[0]
	iva := values[1]
	percep := 0.0
	if len(values) >= 3 {
		percep = values[2]
	}
	total := utils.Round2(subtotal + iva + percep)
	if len(values) >= 4 {
		total = values[3]
	}

	out.Subtotal = f64(subtotal)
	out.IVATotal = f64(iva)
	out.IVADetail = []dto.IVAItem{{Rate: "21.00", Amount: iva}}
	out.PercTotal = f64(percep)
	if len(values) >= 3 {
		out.PercDetail = []dto.PercItem{{Description: "PERCEP. IIBB", Amount: percep}}
	}
	out.Total = f64(total)
	return true
}

// extractTotalsColon is the OCR strategy: totals lines carry their amount
// after a colon ("SUBTOTAL: 1.234,56"), classified by keyword. Lines
// mentioning RESPONSABLE are skipped so the tax-status line is not taken
// for an IVA amount. Scanning stops at the first TOTAL line.
func extractTotalsColon(lines []string, out *dto.Extraction) bool {
	idxSub := lastSubtotalIndex(lines)
	if idxSub < 0 {
		return false
	}
	end := idxSub + 80
	if end > len(lines) {
		end = len(lines)
	}

	var subtotal, iva, perc, total *float64
	percDesc := ""

	for _, line := range lines[idxSub:end] {
		up := strings.ToUpper(line)
		if subtotal == nil && strings.Contains(up, "SUBTOTAL") {
			if v, ok := utils.AmountFromLine(line, false); ok {
				subtotal = f64(v)
			}
			continue
		}
		if strings.Contains(up, "IVA") && !strings.Contains(up, "RESPONSABLE") {
			if v, ok := utils.AmountFromLine(line, true); ok {
				iva = f64(v)
			}
			continue
		}
		if hasPercKeyword(up) {
			if v, ok := utils.AmountFromLine(line, true); ok {
				perc = f64(v)
				percDesc = strings.TrimSpace(line)
			}
			continue
		}
		if strings.Contains(up, "TOTAL") {
			if v, ok := utils.AmountFromLine(line, false); ok {
				total = f64(v)
			}
			break
		}
	}

	if subtotal == nil && iva == nil && perc == nil && total == nil {
		return false
	}

	if subtotal != nil {
		out.Subtotal = subtotal
	}
	if iva != nil {
		out.IVATotal = iva
		out.IVADetail = []dto.IVAItem{{Rate: "21.00", Amount: *iva}}
	}
	if perc != nil {
		out.PercTotal = perc
		if percDesc == "" {
			percDesc = "PERCEP. IIBB"
		}
		out.PercDetail = []dto.PercItem{{Description: percDesc, Amount: *perc}}
	}
	if total != nil {
		out.Total = total
	} else if subtotal != nil {
		sum := *subtotal
		if iva != nil {
			sum += *iva
		}
		if perc != nil {
			sum += *perc
		}
		out.Total = f64(utils.Round2(sum))
	}
	return true
}

// dualStrategy runs the two strategies in an order chosen by the used-OCR
// flag, attempting the second only when the first yields nothing.
func dualStrategy(lines []string, out *dto.Extraction) {
	first, second := extractTotalsNumeric, extractTotalsColon
	if out.Debug.UsedOCR {
		first, second = extractTotalsColon, extractTotalsNumeric
	}
	if !first(lines, out) {
		second(lines, out)
	}
}
