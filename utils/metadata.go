package utils

import (
	"regexp"
	"strings"

	"github.com/JuanParadigma/factura-extractor/dto"
)

var (
	reInvoiceType     = regexp.MustCompile(`(?i)\bFactura\s*([ABC])\b`)
	reInvoiceTypeOnly = regexp.MustCompile(`(?i)^[ABC]$`)
	reClientKeywords  = regexp.MustCompile(`(?i)(ALVAREZ|NEUM[AÁ]TIC|S\.A\.|SRL|RESPONSABLE|CLIENTE)`)
)

// Vendor-specific provider name patterns, matched in the header region.
var vendorNamePatterns = map[string]*regexp.Regexp{
	"GUERRINI": regexp.MustCompile(`(?i)GUERRINI\s+NEUM[AÁ]TICOS?\s*S\.?A\.?`),
	"PIRELLI":  regexp.MustCompile(`(?i)PIRELLI\s+NEUM[AÁ]TICOS?\s*S\.?A\.?I\.?C\.?`),
}

func findInvoiceType(lines []string) string {
	limit := len(lines)
	if limit > 200 {
		limit = 200
	}
	for _, line := range lines[:limit] {
		if m := reInvoiceType.FindStringSubmatch(line); m != nil {
			return strings.ToUpper(m[1])
		}
		stripped := strings.TrimSpace(line)
		if reInvoiceTypeOnly.MatchString(stripped) {
			return strings.ToUpper(stripped)
		}
	}
	return ""
}

// findInvoiceNumber keeps the last match: invoice numbers recur in footers
// and barcodes, and the last occurrence is the canonical one.
func findInvoiceNumber(lines []string) string {
	number := ""
	for _, line := range lines {
		if m := ReInvoiceNumber.FindString(line); m != "" {
			number = m
		}
	}
	return number
}

// findFirstDate keeps the first match: the header date precedes due dates.
func findFirstDate(lines []string) string {
	for _, line := range lines {
		if m := ReDate.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

func dateFromNeighbors(lines []string, idx int) string {
	if m := ReDate.FindString(lines[idx]); m != "" {
		return m
	}
	upper := idx + 3
	if upper > len(lines) {
		upper = len(lines)
	}
	for neighbor := idx + 1; neighbor < upper; neighbor++ {
		if m := ReDate.FindString(lines[neighbor]); m != "" {
			return m
		}
	}
	return ""
}

func extractCAEData(lines []string) (string, string) {
	cae := ""
	caeDue := ""
	for idx, line := range lines {
		upperLine := strings.ToUpper(line)
		if !strings.Contains(upperLine, "CAE") {
			continue
		}
		m := ReCAE.FindString(line)
		if m == "" {
			m = ReCAE.FindString(strings.ReplaceAll(line, "CAE", ""))
		}
		if m != "" {
			cae = m
		}
		if strings.Contains(upperLine, "VTO") || strings.Contains(upperLine, "VENC") {
			caeDue = dateFromNeighbors(lines, idx)
		}
	}
	return cae, caeDue
}

// ExtractHeader locates the common header fields: invoice type, number,
// date, CAE and its due date.
func ExtractHeader(lines []string) dto.Header {
	header := dto.Header{
		Type:   findInvoiceType(lines),
		Number: findInvoiceNumber(lines),
		Date:   findFirstDate(lines),
	}
	header.CAE, header.CAEDue = extractCAEData(lines)
	return header
}

type cuitPosition struct {
	idx  int
	cuit string
}

func collectCUITPositions(lines []string) []cuitPosition {
	var positions []cuitPosition
	for idx, line := range lines {
		for _, m := range ReCUIT.FindAllString(line, -1) {
			positions = append(positions, cuitPosition{idx: idx, cuit: m})
		}
	}
	return positions
}

// guessClientName scans up to 5 lines back from the client CUIT line for a
// fully upper-case line or one carrying a client-indicator keyword.
func guessClientName(lines []string, idx int) string {
	lower := idx - 5
	if lower < 0 {
		lower = 0
	}
	for lineIdx := lower; lineIdx <= idx && lineIdx < len(lines); lineIdx++ {
		candidate := strings.TrimSpace(lines[lineIdx])
		if candidate == "" {
			continue
		}
		if reClientKeywords.MatchString(candidate) || isUpperCase(candidate) {
			return candidate
		}
	}
	return ""
}

func isUpperCase(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

func guessVendorName(lines []string, vendor string) string {
	if vendor == "" {
		return ""
	}
	pattern, ok := vendorNamePatterns[strings.ToUpper(vendor)]
	if !ok {
		return ""
	}
	limit := len(lines)
	if limit > 80 {
		limit = 80
	}
	for _, line := range lines[:limit] {
		line = strings.TrimSpace(line)
		if pattern.MatchString(line) {
			return line
		}
	}
	return ""
}

// ExtractParties resolves provider and client identity. The first CUIT in
// the document belongs to the provider; among the remaining occurrences that
// differ from it, the last one belongs to the client.
func ExtractParties(lines []string, vendor string) (provider dto.Party, client dto.Party) {
	positions := collectCUITPositions(lines)
	if len(positions) > 0 {
		provider.CUIT = positions[0].cuit
		var rest []cuitPosition
		for _, p := range positions {
			if p.cuit != provider.CUIT {
				rest = append(rest, p)
			}
		}
		if len(rest) > 0 {
			last := rest[len(rest)-1]
			client.CUIT = last.cuit
			client.Name = guessClientName(lines, last.idx)
		}
	}
	provider.Name = guessVendorName(lines, vendor)
	return provider, client
}

// DetectVendorByName matches configured name fragments against the header
// region (first 120 lines, case-insensitive).
func DetectVendorByName(lines []string, nameKeywords map[string][]string) string {
	limit := len(lines)
	if limit > 120 {
		limit = 120
	}
	header := strings.ToUpper(strings.Join(lines[:limit], " "))
	for vid, keywords := range nameKeywords {
		for _, keyword := range keywords {
			if keyword != "" && strings.Contains(header, strings.ToUpper(keyword)) {
				return vid
			}
		}
	}
	return ""
}

// DetectVendorByCUIT resolves a vendor from the provider CUIT mapping.
func DetectVendorByCUIT(cuit string, cuitMap map[string]string) string {
	if cuit == "" {
		return ""
	}
	return cuitMap[cuit]
}
