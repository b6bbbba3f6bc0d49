// Package vendors holds the per-issuer total-extraction strategies and the
// registry that binds a detected vendor to its handler.
package vendors

import (
	"strings"

	"github.com/JuanParadigma/factura-extractor/dto"
)

// Handler inspects the document lines and populates the monetary fields of
// the raw extraction record. Handlers never fail; an unproductive handler
// simply leaves fields nil.
type Handler func(lines []string, out *dto.Extraction)

// Registry maps a vendor identity to exactly one handler. It is built once
// at startup and passed into the pipeline as a read-only capability; nothing
// registers behind its back after construction.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry builds the registry with all known vendor handlers.
func NewRegistry() *Registry {
	return &Registry{
		handlers: map[string]Handler{
			"GUERRINI": GuerriniTotals,
			"PIRELLI":  PirelliTotals,
		},
	}
}

// Lookup resolves the handler for a vendor identity, case-insensitive.
func (r *Registry) Lookup(vendor string) (Handler, bool) {
	h, ok := r.handlers[strings.ToUpper(vendor)]
	return h, ok
}
