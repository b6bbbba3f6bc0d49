package dto

import (
	"bytes"
	"encoding/json"
)

// Header holds the common invoice header fields. Empty string means the
// locator found nothing; locators never fail.
type Header struct {
	Type   string `json:"tipo"`
	Number string `json:"numero"`
	Date   string `json:"fecha"`
	CAE    string `json:"cae"`
	CAEDue string `json:"cae_vto"`
}

// Party identifies one side of the invoice (provider or client).
type Party struct {
	Name string `json:"nombre"`
	CUIT string `json:"cuit"`
}

// IVAItem is one IVA line at a given rate. Rate is the raw label as seen in
// the document ("21.00", "10,5%"); empty means unknown.
type IVAItem struct {
	Rate   string  `json:"alicuota"`
	Amount float64 `json:"monto"`
}

// PercItem is one percepción/retención line with its free-text description.
type PercItem struct {
	Description string  `json:"desc"`
	Amount      float64 `json:"monto"`
}

// Debug carries diagnostic context for one extraction run.
type Debug struct {
	Vendor    string `json:"vendor"`
	LineCount int    `json:"lines_count"`
	UsedOCR   bool   `json:"used_ocr"`
}

// Extraction is the raw extraction record built once per document and
// discarded after normalization. Monetary fields are nil until a strategy
// populates them.
type Extraction struct {
	Provider   Party      `json:"proveedor"`
	Client     Party      `json:"cliente"`
	Header     Header     `json:"cabecera"`
	Subtotal   *float64   `json:"subtotal"`
	IVATotal   *float64   `json:"iva"`
	IVADetail  []IVAItem  `json:"iva_detalle"`
	PercTotal  *float64   `json:"percepciones_total"`
	PercDetail []PercItem `json:"percepciones_detalle"`
	Total      *float64   `json:"total"`
	Warnings   []string   `json:"warnings"`
	Debug      Debug      `json:"debug"`
}

// RateAmount is one IVA bucket in the minimal payload.
type RateAmount struct {
	Rate   string
	Amount float64
}

// IVABreakdown is the per-rate IVA mapping of the minimal payload. It is a
// slice, not a map, because the canonical rates must serialize in the order
// 27, 21, 10.5, 5, 2.5 followed by remaining buckets in discovery order.
type IVABreakdown []RateAmount

// MarshalJSON renders the breakdown as a JSON object preserving slice order.
func (b IVABreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Rate)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(item.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the amount for a rate label.
func (b IVABreakdown) Get(rate string) (float64, bool) {
	for _, item := range b {
		if item.Rate == rate {
			return item.Amount, true
		}
	}
	return 0, false
}

// Sum totals all bucket amounts.
func (b IVABreakdown) Sum() float64 {
	var total float64
	for _, item := range b {
		total += item.Amount
	}
	return total
}

// MinimalPayload is the normalized output schema. Field names, rate labels
// and bucket keys are an external contract consumed by the VB6 client side.
type MinimalPayload struct {
	Number       string             `json:"numero"`
	Date         string             `json:"fecha"`
	CUIT         string             `json:"cuit"`
	Subtotal     float64            `json:"subtotal"`
	Total        float64            `json:"total"`
	IVA          IVABreakdown       `json:"iva"`
	Percepciones map[string]float64 `json:"percepciones"`
	Retenciones  map[string]float64 `json:"retenciones"`
	UsedOCR      bool               `json:"ocr"`
}
