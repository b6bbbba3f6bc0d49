package vendors

import (
	"strings"

	"github.com/JuanParadigma/factura-extractor/dto"
	"github.com/JuanParadigma/factura-extractor/utils"
)

// OCR backends misread letters in keywords as the digits they resemble.
// Mapping the digits back before keyword matching lets "SU8T0TAL" match
// SUBTOTAL. Applied to the keyword lookup only, never to the amounts.
var ocrKeywordFixes = strings.NewReplacer(
	"0", "O",
	"1", "I",
	"5", "S",
	"6", "G",
	"8", "B",
	"|", "I",
	"@", "A",
)

func normalizeOCRKeyword(text string) string {
	return ocrKeywordFixes.Replace(text)
}

// FallbackTotals derives subtotal/IVA/percepciones/total when no vendor
// handler matched. Only the last 150 lines are searched since totals sit at
// the end of the document. IVA and percepción matches accumulate additively;
// the last TOTAL match wins.
func FallbackTotals(lines []string, out *dto.Extraction) {
	start := len(lines) - 150
	if start < 0 {
		start = 0
	}
	tail := lines[start:]

	var sub, iva, perc, tot *float64
	var ivaItems []dto.IVAItem
	var percItems []dto.PercItem

	for i, line := range tail {
		upKey := normalizeOCRKeyword(strings.ToUpper(line))
		if sub == nil && strings.Contains(upKey, "SUBTOTAL") {
			if v, ok := utils.FirstAmountForward(tail, i, 12); ok {
				sub = f64(v)
			}
		}
		if strings.Contains(upKey, "IVA") {
			if v, ok := utils.FirstAmountForward(tail, i, 12); ok {
				if iva == nil {
					iva = f64(0)
				}
				*iva += v
				ivaItems = append(ivaItems, dto.IVAItem{Amount: v})
			}
		}
		if hasPercKeyword(upKey) {
			if v, ok := utils.FirstAmountForward(tail, i, 12); ok {
				if perc == nil {
					perc = f64(0)
				}
				*perc += v
				percItems = append(percItems, dto.PercItem{Description: line, Amount: v})
			}
		}
		if strings.Contains(upKey, "TOTAL") {
			if v, ok := utils.FirstAmountForward(tail, i, 12); ok {
				tot = f64(v)
			}
		}
	}

	out.Subtotal = sub
	out.IVATotal = iva
	out.IVADetail = ivaItems
	out.PercTotal = perc
	out.PercDetail = percItems
	out.Total = tot
	if out.Total == nil && sub != nil {
		sum := *sub
		if iva != nil {
			sum += *iva
		}
		if perc != nil {
			sum += *perc
		}
		out.Total = f64(utils.Round2(sum))
	}
}
