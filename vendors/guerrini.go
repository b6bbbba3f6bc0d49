package vendors

import "github.com/JuanParadigma/factura-extractor/dto"

// GuerriniTotals extracts the totals block from GUERRINI invoices. Their
// text-layer PDFs print the totals as a bare numeric column, while scanned
// copies need the colon-value reading.
func GuerriniTotals(lines []string, out *dto.Extraction) {
	dualStrategy(lines, out)
}
