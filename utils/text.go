package utils

import (
	"regexp"
	"strconv"
	"strings"
)

// Shared patterns for Argentine fiscal documents.
var (
	// CUIT: 11 digits, optional dash/space separators (DD-DDDDDDDD-D)
	ReCUIT = regexp.MustCompile(`\b\d{2}[- ]?\d{7,8}[- ]?\d\b`)

	// Dates: DD/MM/YYYY, DD-MM-YY, YYYY-MM-DD, optional time suffix
	ReDate = regexp.MustCompile(`\b(?:\d{2}[/\-.]\d{2}[/\-.]\d{2,4}|\d{4}[/\-]\d{2}[/\-]\d{2})(?:\s+\d{1,2}:\d{1,2}:\d{1,2})?\b`)

	// Invoice number: NNNN-NNNNNNNN (point of sale + sequence)
	ReInvoiceNumber = regexp.MustCompile(`\b\d{4}-\d{8}\b`)

	// CAE: 14-digit authorization code
	ReCAE = regexp.MustCompile(`\b\d{14}\b`)

	// A line that is nothing but an amount ("1.234,56", "169000.00", ...)
	NumPure = regexp.MustCompile(`^\s*-?\s*\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})\s*$`)

	// Any amount-looking fragment inside a line
	NumAny = regexp.MustCompile(`-?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})|-?\d+(?:[.,]\d{2})`)

	reSpaces       = regexp.MustCompile(`\s+`)
	reCurrency     = regexp.MustCompile(`[$]`)
	reNonNumeric   = regexp.MustCompile(`[^0-9,.\-]`)
	reDecimalTail  = regexp.MustCompile(`[.,]\d{2}$`)
	reAnySeparator = regexp.MustCompile(`[.,]`)
)

// NormLine collapses whitespace and trims a raw text line.
func NormLine(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(text, " "))
}

// StripCurrency removes currency symbols from an amount candidate.
func StripCurrency(value string) string {
	return strings.TrimSpace(reCurrency.ReplaceAllString(value, ""))
}

func cleanNumberCandidate(value string) string {
	cleaned := strings.ReplaceAll(StripCurrency(value), " ", "")
	return reNonNumeric.ReplaceAllString(cleaned, "")
}

func safeFloat(value string) (float64, bool) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Strategy 1: a 2-digit fractional tail fixes the decimal separator, the
// other symbol is treated as thousands separator.
func parseWithDecimalTail(value string) (float64, bool) {
	if !reDecimalTail.MatchString(value) {
		return 0, false
	}
	decimalSep := value[len(value)-3]
	var normalized string
	if decimalSep == ',' {
		normalized = strings.ReplaceAll(strings.ReplaceAll(value, ".", ""), ",", ".")
	} else {
		normalized = strings.ReplaceAll(value, ",", "")
	}
	return safeFloat(normalized)
}

// Strategy 2: a single separator kind is a decimal point if the parse
// succeeds, otherwise a thousands separator to be dropped.
func parseWithSingleSeparator(value string) (float64, bool) {
	hasComma := strings.Contains(value, ",")
	hasDot := strings.Contains(value, ".")
	if hasComma && !hasDot {
		return safeFloat(strings.ReplaceAll(value, ",", ""))
	}
	if hasDot && !hasComma {
		if v, ok := safeFloat(value); ok {
			return v, true
		}
		return safeFloat(strings.ReplaceAll(value, ".", ""))
	}
	return 0, false
}

// Strategy 3: the rightmost separator is the decimal one, everything
// before it is a thousands separator.
func parseWithLastSeparator(value string) (float64, bool) {
	matches := reAnySeparator.FindAllString(value, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var normalized string
	if matches[len(matches)-1] == "," {
		normalized = strings.ReplaceAll(strings.ReplaceAll(value, ".", ""), ",", ".")
	} else {
		normalized = strings.ReplaceAll(value, ",", "")
	}
	return safeFloat(normalized)
}

// ParseNumberSmart turns a noisy amount substring into a float. Both "." and
// "," occur as decimal or thousands separator depending on locale and OCR
// quality, so an ordered chain of strategies is tried and the first success
// wins. The strategy order is a contract the vendor handlers rely on.
func ParseNumberSmart(raw string) (float64, bool) {
	value := cleanNumberCandidate(raw)
	if value == "" {
		return 0, false
	}
	strategies := []func(string) (float64, bool){
		parseWithDecimalTail,
		parseWithSingleSeparator,
		parseWithLastSeparator,
		safeFloat,
	}
	for _, resolve := range strategies {
		if v, ok := resolve(value); ok {
			return v, true
		}
	}
	return 0, false
}

func matchNumericFragment(line string) string {
	if m := NumPure.FindString(line); m != "" {
		return m
	}
	return NumAny.FindString(line)
}

// FirstAmountForward scans from startIdx up to maxAhead lines ahead and
// returns the first parseable amount found.
func FirstAmountForward(lines []string, startIdx, maxAhead int) (float64, bool) {
	upper := startIdx + maxAhead + 1
	if upper > len(lines) {
		upper = len(lines)
	}
	for idx := startIdx; idx < upper; idx++ {
		line := strings.TrimSpace(lines[idx])
		if line == "" {
			continue
		}
		fragment := matchNumericFragment(line)
		if fragment == "" {
			continue
		}
		if v, ok := ParseNumberSmart(fragment); ok {
			return v, true
		}
	}
	return 0, false
}

// AmountFromLine extracts the amount from the text after the last colon on a
// line, or from the first/last numeric fragment when no colon is present.
// OCR lines like "IVA 21.00: 0.00" or "TOTAL: 169,000.00 ... 0800 222 6678"
// are the motivating cases.
func AmountFromLine(line string, preferLast bool) (float64, bool) {
	segment := line
	if idx := strings.LastIndex(line, ":"); idx >= 0 {
		segment = line[idx+1:]
	}
	matches := NumAny.FindAllString(segment, -1)
	if len(matches) == 0 {
		matches = NumAny.FindAllString(line, -1)
	}
	if len(matches) == 0 {
		return 0, false
	}
	pick := matches[0]
	if preferLast {
		pick = matches[len(matches)-1]
	}
	return ParseNumberSmart(pick)
}

// Round2 rounds to 2 decimals the way the payload contract expects.
func Round2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}
