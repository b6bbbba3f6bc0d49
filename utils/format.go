package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JuanParadigma/factura-extractor/dto"
)

var (
	reNonDigit = regexp.MustCompile(`\D`)
	reKVUnsafe = regexp.MustCompile(`[\r\n=]+`)
	boolAsFlag = map[bool]string{true: "1", false: "0"}
)

// formatAmount renders an amount as plain decimal text with a dot separator,
// the only numeric shape the legacy VB6 consumer parses.
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).String()
}

func cleanValue(s string) string {
	return strings.TrimSpace(reKVUnsafe.ReplaceAllString(s, " "))
}

// CleanCUIT keeps only the digits of a CUIT.
func CleanCUIT(cuit string) string {
	return reNonDigit.ReplaceAllString(cuit, "")
}

func sortedBuckets(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ToKV renders the minimal payload as flat key=value lines with indexed
// counters, the dialect the legacy desktop client consumes.
func ToKV(minimal *dto.MinimalPayload) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("status=ok")
	add("version=1")
	add("ocr=%s", boolAsFlag[minimal.UsedOCR])
	add("numero=%s", cleanValue(minimal.Number))
	add("fecha=%s", cleanValue(minimal.Date))
	add("cuit=%s", cleanValue(minimal.CUIT))
	add("subtotal=%s", formatAmount(minimal.Subtotal))
	add("total=%s", formatAmount(minimal.Total))

	add("iva_count=%d", len(minimal.IVA))
	for i, item := range minimal.IVA {
		add("iva_%d_tasa=%s", i+1, cleanValue(item.Rate))
		add("iva_%d_monto=%s", i+1, formatAmount(item.Amount))
	}

	percKeys := sortedBuckets(minimal.Percepciones)
	add("percepciones_count=%d", len(percKeys))
	for i, key := range percKeys {
		add("percepciones_%d_clave=%s", i+1, key)
		add("percepciones_%d_monto=%s", i+1, formatAmount(minimal.Percepciones[key]))
	}

	retKeys := sortedBuckets(minimal.Retenciones)
	add("retenciones_count=%d", len(retKeys))
	for i, key := range retKeys {
		add("retenciones_%d_clave=%s", i+1, key)
		add("retenciones_%d_monto=%s", i+1, formatAmount(minimal.Retenciones[key]))
	}

	return strings.Join(lines, "\n")
}

// ToINI renders the minimal payload grouped into INI sections.
func ToINI(minimal *dto.MinimalPayload) string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	add("[meta]")
	add("status=ok")
	add("version=1")
	add("ocr=%s", boolAsFlag[minimal.UsedOCR])
	add("")

	add("[factura]")
	add("numero=%s", cleanValue(minimal.Number))
	add("fecha=%s", cleanValue(minimal.Date))
	add("cuit=%s", cleanValue(minimal.CUIT))
	add("total=%s", formatAmount(minimal.Total))
	add("")

	add("[iva]")
	for _, item := range minimal.IVA {
		if item.Amount != 0 {
			add("%s=%s", cleanValue(item.Rate), formatAmount(item.Amount))
		}
	}
	add("")

	add("[percepciones]")
	for _, key := range sortedBuckets(minimal.Percepciones) {
		add("%s=%s", key, formatAmount(minimal.Percepciones[key]))
	}
	add("")

	add("[retenciones]")
	for _, key := range sortedBuckets(minimal.Retenciones) {
		add("%s=%s", key, formatAmount(minimal.Retenciones[key]))
	}
	add("")

	return strings.Join(out, "\n")
}
