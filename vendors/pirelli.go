package vendors

import "github.com/JuanParadigma/factura-extractor/dto"

// PirelliTotals extracts the totals block from PIRELLI invoices. Same
// totals layout as GUERRINI: numeric column on digital invoices, keyword
// plus colon on scanned ones.
func PirelliTotals(lines []string, out *dto.Extraction) {
	dualStrategy(lines, out)
}
